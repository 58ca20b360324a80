// Package puzzle is the headless simulation of a falling-block colour matching
// game: pieces land on a board, same-coloured tiles join into groups, and
// groups that reach critical mass explode and let the tiles above them fall.
package puzzle

import (
	"fmt"
	"math/rand/v2"

	"github.com/rs/zerolog"
)

//go:generate go tool stringer -type=Mode -trimprefix=Mode

// Mode is the phase of the simulation state machine.
type Mode int

const (
	// ModeActivePiece: a piece is under player control.
	ModeActivePiece Mode = iota
	// ModeFalling: unsupported tiles drop one row per phase step.
	ModeFalling
	// ModeExploding: qualifying groups are removed one per phase step.
	ModeExploding
	// ModeGameOver: a new piece could not be placed. Only Reset leaves this mode.
	ModeGameOver
)

// Input carries the player's intents for one tick.
type Input struct {
	// Horizontal is the requested sideways displacement in cells, normally -1, 0 or 1.
	Horizontal int
	// Rotation is the requested quarter turn: -1, 0 or 1.
	Rotation int
	// SoftDrop is true while the player holds the piece down.
	SoftDrop bool
}

// Snapshot is a read-only copy of everything a renderer needs.
type Snapshot struct {
	Board  Grid
	Active Grid
	Next   Grid

	// PiecePos is the board position of the active piece buffer's origin. Y may be
	// negative while the piece is entering from above.
	PiecePos Point

	Mode       Mode
	Score      int
	Level      int
	Multiplier int
	PieceCount int

	// GameOverReady turns true once the game over screen may accept input.
	GameOverReady bool
}

// Simulation owns the board, the active and next pieces and the scoring state,
// and advances them one tick at a time. It is not safe for concurrent use.
type Simulation struct {
	rules   Rules
	rng     *rand.Rand
	log     zerolog.Logger
	effects EffectSink

	board    Grid
	active   Grid
	next     Grid
	piecePos Point

	mode           Mode
	timer          int
	landTimer      int
	slideDirection int
	softDropHeld   bool

	score      int
	level      int
	pieceCount int
	multiplier int
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithRules replaces the default tuning tables.
func WithRules(r Rules) Option {
	return func(s *Simulation) { s.rules = r }
}

// WithRand sets the random source used for pieces and effect jitter.
func WithRand(rng *rand.Rand) Option {
	return func(s *Simulation) { s.rng = rng }
}

// WithSeed seeds a private random source, making the piece sequence reproducible.
func WithSeed(seed uint64) Option {
	return func(s *Simulation) { s.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

// WithLogger sets the logger used for state machine tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Simulation) { s.log = l }
}

// WithEffects sets the receiver of visual effect requests.
func WithEffects(sink EffectSink) Option {
	return func(s *Simulation) {
		if sink == nil {
			sink = NopEffects{}
		}
		s.effects = sink
	}
}

// New creates a simulation and starts the first game.
func New(opts ...Option) *Simulation {
	s := &Simulation{
		rules:   DefaultRules(),
		log:     zerolog.Nop(),
		effects: NopEffects{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	s.board = NewGrid(BoardWidth, BoardHeight)
	s.Reset()
	return s
}

// Reset starts a new game: empty board, score 0, level 1.
func (s *Simulation) Reset() {
	s.score = 0
	s.pieceCount = 0
	s.level = 1

	s.board.Clear()
	CreateRandomPiece(&s.next, s.rules.Colors[s.level], s.rng)
	s.newPiece()

	s.log.Debug().Msg("game reset")
}

// AdvanceLevel bumps the difficulty level by one, up to the maximum.
func (s *Simulation) AdvanceLevel() {
	if s.level < s.rules.MaxLevel {
		s.level++
		s.log.Debug().Int("level", s.level).Msg("level advanced manually")
	}
}

func (s *Simulation) Mode() Mode { return s.mode }
func (s *Simulation) Score() int { return s.score }
func (s *Simulation) Level() int { return s.level }
func (s *Simulation) Multiplier() int { return s.multiplier }
func (s *Simulation) Rules() Rules { return s.rules }
func (s *Simulation) PiecePos() Point { return s.piecePos }
func (s *Simulation) TimerMs() int { return s.timer }
func (s *Simulation) LandTimerMs() int { return s.landTimer }

// Snapshot returns a copy of the current state.
func (s *Simulation) Snapshot() Snapshot {
	return Snapshot{
		Board:         s.board,
		Active:        s.active,
		Next:          s.next,
		PiecePos:      s.piecePos,
		Mode:          s.mode,
		Score:         s.score,
		Level:         s.level,
		Multiplier:    s.multiplier,
		PieceCount:    s.pieceCount,
		GameOverReady: s.mode == ModeGameOver && s.timer > s.rules.GameOverGuardMs,
	}
}

// Update advances the simulation by durationMs of virtual time. The caller is
// expected to clamp the duration; large values run several gravity steps in
// one call.
func (s *Simulation) Update(durationMs int, in Input) Snapshot {
	softDropPressed := in.SoftDrop && !s.softDropHeld
	s.softDropHeld = in.SoftDrop

	s.timer += durationMs

	switch s.mode {
	case ModeGameOver:
		// terminal until Reset

	case ModeExploding:
		if s.timer >= s.rules.PhaseStepMs {
			s.timer = 0
			if !s.explode() {
				if s.board.MakeFall() {
					s.setMode(ModeFalling)
				} else {
					s.newPiece()
				}
			}
		}

	case ModeFalling:
		if s.timer >= s.rules.PhaseStepMs {
			s.timer = 0
			if !s.board.MakeFall() {
				s.board.UpdateConnections()
				if s.explode() {
					s.setMode(ModeExploding)
				} else {
					s.newPiece()
				}
			}
		}

	case ModeActivePiece:
		s.updateActivePiece(durationMs, in, softDropPressed)
	}

	return s.Snapshot()
}

func (s *Simulation) updateActivePiece(durationMs int, in Input, softDropPressed bool) {
	xMovement, rotation := in.Horizontal, in.Rotation
	down := in.SoftDrop

	s.applyUserInput(&xMovement, &rotation)

	gravity := s.rules.Gravity[s.level]
	downTime := s.rules.softDropInterval(s.level)

	if softDropPressed {
		s.timer = downTime
	}

	for s.timer > gravity || (down && s.timer >= downTime) {
		if !s.movePiece(0, 1, 0) {
			// resting on something: land once the grace period runs out
			s.landTimer += durationMs
			if down || s.landTimer > s.rules.LandGraceMs {
				s.landPiece()
			} else {
				s.timer = min(s.timer, gravity)
			}
			break
		}

		if down {
			s.timer -= downTime
		} else {
			s.timer -= gravity
		}
		s.landTimer = 0
		s.slideDirection = 0

		// lets the player thread a piece into a gap even at high fall speeds
		s.applyUserInput(&xMovement, &rotation)
	}
}

// applyUserInput consumes as much of the requested movement and rotation as
// the board allows. Whatever could not be applied is left in the arguments so
// the caller can retry after the next descent.
func (s *Simulation) applyUserInput(xMovement, rotation *int) {
	dir := 0
	switch {
	case *xMovement < 0:
		dir = -1
	case *xMovement > 0:
		dir = 1
	}

	for *xMovement != 0 && s.movePiece(dir, 0, 0) {
		// Sliding in one direction keeps the piece from locking, so it can be
		// pushed along the floor. Changing direction does not.
		if s.slideDirection == *xMovement || s.slideDirection == 0 {
			s.slideDirection = *xMovement
			s.landTimer = 0
		}
		*xMovement -= dir
	}

	if *rotation == 0 {
		return
	}
	for _, kick := range rotationKicks {
		if s.movePiece(kick.X, kick.Y, *rotation) {
			*rotation = 0
			return
		}
	}
}

// Offsets tried, in order, when rotating in place is blocked.
var rotationKicks = [...]Point{{0, 0}, {1, 0}, {-1, 0}, {0, 1}, {0, 2}}

// movePiece shifts and rotates the active piece if the result does not collide.
func (s *Simulation) movePiece(dx, dy, rotation int) bool {
	if dx == 0 && dy == 0 && rotation == 0 {
		return true
	}

	s.active.Rotate(rotation)
	if !s.active.Collide(&s.board, s.piecePos.X+dx, s.piecePos.Y+dy) {
		s.piecePos.X += dx
		s.piecePos.Y += dy
		return true
	}

	s.active.Rotate(-rotation)
	return false
}

// newPiece promotes the next piece, advances the level and checks for game over.
func (s *Simulation) newPiece() {
	s.active = s.next

	s.piecePos = Point{X: (s.board.Width() - s.active.Width()) / 2}
	// lift the piece so its first occupied row touches the top edge
	for y := 0; y < s.active.Height() && s.active.RowEmpty(y); y++ {
		s.piecePos.Y--
	}

	s.pieceCount++
	if s.level < s.rules.MaxLevel && s.pieceCount > s.rules.LevelBoundary[s.level] {
		s.level++
		s.log.Debug().Int("level", s.level).Int("pieces", s.pieceCount).Msg("level up")
	}

	CreateRandomPiece(&s.next, s.rules.Colors[s.level], s.rng)

	s.timer = 0
	s.landTimer = 0
	s.slideDirection = 0
	s.multiplier = 1

	if s.active.Collide(&s.board, s.piecePos.X, s.piecePos.Y) {
		s.setMode(ModeGameOver)
		s.log.Info().Int("score", s.score).Int("level", s.level).Int("pieces", s.pieceCount).Msg("game over")
		return
	}
	s.setMode(ModeActivePiece)
}

// landPiece commits the active piece to the board and scores the new joins.
func (s *Simulation) landPiece() {
	s.active.AddToWorld(&s.board, s.piecePos.X, s.piecePos.Y)
	s.active.Clear()

	joins := s.board.UpdateConnections()
	s.board.CreateGroups()

	s.setMode(ModeExploding)
	s.timer = 0

	award := landingScore(joins)
	s.score += award
	s.log.Debug().Int("joins", joins).Int("award", award).Int("score", s.score).Msg("piece landed")
}

// explode removes one qualifying group, if any, and scores it.
func (s *Simulation) explode() bool {
	removed, centre := s.board.CheckForExplosions(s.rules.CriticalMass, s.effects, s.rng)
	if removed == 0 {
		return false
	}

	award := explosionScore(removed, s.rules.CriticalMass)
	s.score += award * s.multiplier

	text := fmt.Sprintf("%d", award)
	if s.multiplier > 1 {
		text = fmt.Sprintf("%dx%d", award, s.multiplier)
	}
	s.effects.SpawnFloatText(centre.Centre(), text)

	s.log.Debug().
		Int("tiles", removed).
		Int("award", award).
		Int("multiplier", s.multiplier).
		Int("score", s.score).
		Msg("group exploded")

	if s.multiplier < s.rules.MaxMultiplier {
		s.multiplier *= 2
	}

	// hold the next step back so the chain is visible
	s.timer -= s.rules.ChainDelayMs
	return true
}

func (s *Simulation) setMode(m Mode) {
	if s.mode != m {
		s.log.Debug().Stringer("from", s.mode).Stringer("to", m).Msg("mode change")
	}
	s.mode = m
}
