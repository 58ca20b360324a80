package puzzle

import (
	"errors"
	"fmt"
)

// Rules holds the fixed tuning tables of the game. Index i of each table is the
// setting for level i; level 0 is never played.
type Rules struct {
	// Gravity is the number of milliseconds between automatic one-row descents.
	Gravity [10]int
	// Colors is the number of tile colours used for new pieces. It must never
	// decrease with level or the player could be left with unclearable tiles.
	Colors [10]int
	// LevelBoundary is the cumulative piece count that ends each level.
	LevelBoundary [10]int

	CriticalMass  int
	LandGraceMs   int
	PhaseStepMs   int
	ChainDelayMs  int
	SoftDropCapMs int
	MaxMultiplier int
	MaxLevel      int
	// GameOverGuardMs is how long the game over screen ignores input.
	GameOverGuardMs int
}

// DefaultRules returns the standard tables.
func DefaultRules() Rules {
	return Rules{
		Gravity:       [10]int{400, 400, 290, 180, 300, 200, 120, 80, 60, 50},
		Colors:        [10]int{5, 5, 5, 5, 6, 6, 6, 6, 6, 6},
		LevelBoundary: [10]int{0, 30, 60, 90, 120, 150, 180, 210, 250, -1},

		CriticalMass:    12,
		LandGraceMs:     200,
		PhaseStepMs:     100,
		ChainDelayMs:    150,
		SoftDropCapMs:   80,
		MaxMultiplier:   64,
		MaxLevel:        9,
		GameOverGuardMs: 500,
	}
}

// Validate reports malformed tables. The simulation itself trusts its rules;
// callers that build rules from outside input should check them first.
func (r Rules) Validate() error {
	var errs []error
	if r.MaxLevel < 1 || r.MaxLevel >= len(r.Gravity) {
		errs = append(errs, fmt.Errorf("max level %d out of range 1..%d", r.MaxLevel, len(r.Gravity)-1))
	}
	for lvl := 1; lvl < len(r.Gravity); lvl++ {
		if r.Gravity[lvl] <= 0 {
			errs = append(errs, fmt.Errorf("level %d: gravity must be positive, got %d", lvl, r.Gravity[lvl]))
		}
		if r.Colors[lvl] < 1 || r.Colors[lvl] > 255 {
			errs = append(errs, fmt.Errorf("level %d: colour count %d out of range 1..255", lvl, r.Colors[lvl]))
		}
		if lvl > 1 && r.Colors[lvl] < r.Colors[lvl-1] {
			errs = append(errs, fmt.Errorf("level %d: colour count decreases from %d to %d", lvl, r.Colors[lvl-1], r.Colors[lvl]))
		}
	}
	if r.CriticalMass < 2 {
		errs = append(errs, fmt.Errorf("critical mass must be at least 2, got %d", r.CriticalMass))
	}
	if r.PhaseStepMs <= 0 {
		errs = append(errs, fmt.Errorf("phase step must be positive, got %d", r.PhaseStepMs))
	}
	if r.MaxMultiplier < 1 || r.MaxMultiplier&(r.MaxMultiplier-1) != 0 {
		errs = append(errs, fmt.Errorf("max multiplier must be a power of two, got %d", r.MaxMultiplier))
	}
	if r.LandGraceMs < 0 || r.ChainDelayMs < 0 || r.SoftDropCapMs < 0 || r.GameOverGuardMs < 0 {
		errs = append(errs, errors.New("timings must not be negative"))
	}
	return errors.Join(errs...)
}

func (r *Rules) softDropInterval(level int) int {
	return min(r.Gravity[level]/2, r.SoftDropCapMs)
}

// Award for a landing that created n new joins.
func landingScore(n int) int {
	return n*n*10 + 10
}

// Award for an explosion of removed tiles, before the chain multiplier.
func explosionScore(removed, criticalMass int) int {
	extra := (removed - criticalMass) / 4
	return 300 + extra*100 + extra*extra*100
}
