package main

import (
	"context"
	"errors"
	"fmt"
	"math/bits"
	"math/rand/v2"
	"time"

	"github.com/plus3/tilefall/control"
	"github.com/plus3/tilefall/ecs"
	"github.com/plus3/tilefall/effects"
	"github.com/plus3/tilefall/puzzle"
	"github.com/rs/zerolog"
)

// ErrInvariant is wrapped by every error reporting a broken simulation invariant.
var ErrInvariant = errors.New("invariant violated")

type Config struct {
	Duration  time.Duration
	MaxPieces int
	Seed      uint64
	TickMs    int
}

// countingSink forwards effects and counts explosions, one ripple each.
type countingSink struct {
	puzzle.EffectSink
	explosions int
}

func (c *countingSink) SpawnRipple(center puzzle.Vec, durationMs int) {
	c.explosions++
	c.EffectSink.SpawnRipple(center, durationMs)
}

// soak drives one simulation with random intents, restarting it whenever a
// game ends, and checks the simulation invariants after every tick.
type soak struct {
	cfg Config
	log zerolog.Logger

	rng        *rand.Rand
	sim        *puzzle.Simulation
	sink       *countingSink
	effects    *effects.Manager
	scheduler  *ecs.Scheduler
	controller *control.Controller

	intents   control.Intents
	holdTicks int

	prev   puzzle.Snapshot
	report *Report
}

func newSoak(cfg Config, log zerolog.Logger) *soak {
	if cfg.TickMs <= 0 {
		cfg.TickMs = 16
	}
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed+1))

	storage := ecs.NewStorage(ecs.NewComponentRegistry())
	manager := effects.New(storage, rand.New(rand.NewPCG(cfg.Seed, cfg.Seed+2)))
	scheduler := ecs.NewScheduler(storage)
	for _, sys := range manager.Systems() {
		scheduler.Register(sys)
	}

	sink := &countingSink{EffectSink: manager}
	sim := puzzle.New(
		puzzle.WithSeed(cfg.Seed),
		puzzle.WithEffects(sink),
		puzzle.WithLogger(log),
	)

	return &soak{
		cfg:        cfg,
		log:        log,
		rng:        rng,
		sim:        sim,
		sink:       sink,
		effects:    manager,
		scheduler:  scheduler,
		controller: control.NewController(),
		prev:       sim.Snapshot(),
		report: &Report{
			Duration:  cfg.Duration,
			MaxPieces: cfg.MaxPieces,
			Seed:      cfg.Seed,
			TickMs:    cfg.TickMs,
			MaxLevel:  1,
		},
	}
}

// randomIntents holds a random key combination for a few ticks, like a
// player mashing keys.
func (s *soak) randomIntents() control.Intents {
	if s.holdTicks > 0 {
		s.holdTicks--
		in := s.intents
		// rotations are presses, not holds
		in.RotateCW, in.RotateCCW = false, false
		return in
	}

	s.holdTicks = s.rng.IntN(20)
	s.intents = control.Intents{
		Left:      s.rng.IntN(4) == 0,
		Right:     s.rng.IntN(4) == 0,
		RotateCW:  s.rng.IntN(6) == 0,
		RotateCCW: s.rng.IntN(8) == 0,
		Down:      s.rng.IntN(3) == 0,
	}
	return s.intents
}

func (s *soak) pieces() int {
	return s.report.Pieces + s.prev.PieceCount
}

func (s *soak) done(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	return s.cfg.MaxPieces > 0 && s.pieces() >= s.cfg.MaxPieces
}

// run ticks until the context ends or the piece budget is spent.
func (s *soak) run(ctx context.Context) (*Report, error) {
	start := time.Now()
	for !s.done(ctx) {
		if err := s.tick(); err != nil {
			return s.finish(start), err
		}
	}
	s.endGame()
	return s.finish(start), nil
}

func (s *soak) tick() error {
	in := s.controller.Input(s.randomIntents(), s.cfg.TickMs)

	tickStart := time.Now()
	snap := s.sim.Update(s.cfg.TickMs, in)
	s.scheduler.Once(float64(s.cfg.TickMs) / 1000)
	s.report.TickTime.Samples = append(s.report.TickTime.Samples, time.Since(tickStart))
	s.report.Ticks++

	if err := checkSnapshot(&s.prev, &snap, s.sim.Rules()); err != nil {
		return fmt.Errorf("tick %d, game %d: %w", s.report.Ticks, s.report.Games+1, err)
	}

	s.report.MaxMultiplier = max(s.report.MaxMultiplier, snap.Multiplier)
	s.report.MaxLevel = max(s.report.MaxLevel, snap.Level)
	s.report.PeakEffects = max(s.report.PeakEffects, s.scheduler.Storage().Len())
	s.prev = snap

	if snap.GameOverReady {
		s.endGame()
		s.sim.Reset()
		s.effects.Clear()
		s.controller.Reset()
		s.prev = s.sim.Snapshot()
	}
	return nil
}

// endGame records the game in progress.
func (s *soak) endGame() {
	if s.prev.PieceCount == 0 {
		return
	}
	s.report.Games++
	s.report.Pieces += s.prev.PieceCount
	s.report.Scores = append(s.report.Scores, s.prev.Score)
	s.log.Debug().
		Int("game", s.report.Games).
		Int("score", s.prev.Score).
		Int("level", s.prev.Level).
		Int("pieces", s.prev.PieceCount).
		Msg("game finished")
	s.prev.PieceCount = 0
}

func (s *soak) finish(start time.Time) *Report {
	s.report.TotalTime = time.Since(start)
	s.report.Explosions = s.sink.explosions
	s.report.TickTime.Finalize()
	s.report.finalizeScores()
	return s.report
}

// checkSnapshot verifies next against the invariants that hold for every tick.
func checkSnapshot(prev, next *puzzle.Snapshot, rules puzzle.Rules) error {
	if next.Level < 1 || next.Level > rules.MaxLevel {
		return fmt.Errorf("%w: level %d out of range", ErrInvariant, next.Level)
	}
	if next.Multiplier < 1 || next.Multiplier > rules.MaxMultiplier || bits.OnesCount(uint(next.Multiplier)) != 1 {
		return fmt.Errorf("%w: multiplier %d is not a power of two up to %d", ErrInvariant, next.Multiplier, rules.MaxMultiplier)
	}
	if next.PieceCount >= prev.PieceCount {
		// same game
		if next.Score < prev.Score {
			return fmt.Errorf("%w: score fell from %d to %d", ErrInvariant, prev.Score, next.Score)
		}
		if next.Level < prev.Level {
			return fmt.Errorf("%w: level fell from %d to %d", ErrInvariant, prev.Level, next.Level)
		}
	}
	if prev.Mode == puzzle.ModeGameOver && next.Mode == puzzle.ModeGameOver && prev.Board != next.Board {
		return fmt.Errorf("%w: board changed after game over", ErrInvariant)
	}
	if next.Mode == puzzle.ModeActivePiece && next.Active.Collide(&next.Board, next.PiecePos.X, next.PiecePos.Y) {
		return fmt.Errorf("%w: active piece overlaps the board at %v", ErrInvariant, next.PiecePos)
	}
	if err := checkConnections(&next.Board); err != nil {
		return err
	}
	return checkGroups(next.Board)
}

// checkConnections verifies that joins are symmetric and only link same colours.
func checkConnections(board *puzzle.Grid) error {
	for x := 0; x < board.Width(); x++ {
		for y := 0; y < board.Height(); y++ {
			t := board.At(x, y)
			if !t.Occupied() {
				if t.Connect != 0 {
					return fmt.Errorf("%w: empty tile (%d,%d) has connections", ErrInvariant, x, y)
				}
				continue
			}
			if x+1 < board.Width() {
				if err := checkJoin(t, board.At(x+1, y), puzzle.ConnectRight, puzzle.ConnectLeft); err != nil {
					return fmt.Errorf("(%d,%d) to the right: %w", x, y, err)
				}
			}
			if y+1 < board.Height() {
				if err := checkJoin(t, board.At(x, y+1), puzzle.ConnectDown, puzzle.ConnectUp); err != nil {
					return fmt.Errorf("(%d,%d) downwards: %w", x, y, err)
				}
			}
		}
	}
	return nil
}

func checkJoin(a, b puzzle.Tile, towardB, towardA puzzle.Connection) error {
	ab := a.Connect&towardB != 0
	ba := b.Connect&towardA != 0
	if ab != ba {
		return fmt.Errorf("%w: asymmetric join", ErrInvariant)
	}
	if ab && !a.Joins(b) {
		return fmt.Errorf("%w: joined to a different colour", ErrInvariant)
	}
	return nil
}

// checkGroups regroups a copy of the board and verifies the groups partition
// exactly the occupied tiles.
func checkGroups(board puzzle.Grid) error {
	board.CreateGroups()
	total := 0
	for id := range board.NumGroups() {
		total += board.GroupSize(id)
	}
	if occupied := board.Occupied(); total != occupied {
		return fmt.Errorf("%w: groups hold %d tiles, board has %d", ErrInvariant, total, occupied)
	}
	return nil
}
