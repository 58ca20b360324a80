// Command tilefall-term runs the puzzle in a terminal.
package main

import (
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/plus3/tilefall/control"
	"github.com/plus3/tilefall/ecs"
	"github.com/plus3/tilefall/effects"
	"github.com/plus3/tilefall/puzzle"
	"github.com/plus3/tilefall/sound"
)

const frameInterval = 16 * time.Millisecond

type game struct {
	screen tcell.Screen
	log    zerolog.Logger

	sim       *puzzle.Simulation
	snap      puzzle.Snapshot
	effects   *effects.Manager
	scheduler *ecs.Scheduler
	keys      keyInput

	player *sound.Player
	muted  bool
}

func newGame(screen tcell.Screen, seed uint64, logger zerolog.Logger) *game {
	storage := ecs.NewStorage(ecs.NewComponentRegistry())
	manager := effects.New(storage, rand.New(rand.NewPCG(seed, ^seed)))
	scheduler := ecs.NewScheduler(storage)
	for _, sys := range manager.Systems() {
		scheduler.Register(sys)
	}

	sim := puzzle.New(
		puzzle.WithSeed(seed),
		puzzle.WithEffects(manager),
		puzzle.WithLogger(logger.With().Str("component", "puzzle").Logger()),
	)

	return &game{
		screen:    screen,
		log:       logger,
		sim:       sim,
		snap:      sim.Snapshot(),
		effects:   manager,
		scheduler: scheduler,
		player:    sound.NewPlayer(),
		muted:     true,
	}
}

func (g *game) reset() {
	g.sim.Reset()
	g.effects.Clear()
	g.keys.reset()
	g.snap = g.sim.Snapshot()
}

// handleKey applies a key event and reports whether the game should keep running.
func (g *game) handleKey(ev *tcell.EventKey, now time.Time) bool {
	switch g.keys.handle(ev, now) {
	case CommandQuit:
		return false
	case CommandReset:
		g.log.Info().Msg("reset requested")
		g.reset()
	case CommandLevelUp:
		g.sim.AdvanceLevel()
	case CommandConfirm:
		if g.snap.GameOverReady {
			g.reset()
		}
	}
	return true
}

// step advances the simulation and effects by dtMs and plays the resulting cues.
func (g *game) step(dtMs int, now time.Time) {
	prev := g.snap
	g.snap = g.sim.Update(dtMs, g.keys.take(now))
	g.scheduler.Once(float64(dtMs) / 1000)
	g.player.Play(sound.Events(prev, g.snap)...)
}

func (g *game) run() {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := g.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	last := time.Now()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !g.handleKey(ev, time.Now()) {
					return
				}
			case *tcell.EventResize:
				g.screen.Sync()
			}

		case now := <-ticker.C:
			g.step(control.FrameMs(now.Sub(last)), now)
			last = now
			drawScene(g.screen, &g.snap, g.effects, g.muted)
			g.screen.Show()
		}
	}
}

func main() {
	_ = godotenv.Load()

	seed := flag.Uint64("seed", envSeed(), "Random seed for the piece sequence.")
	mute := flag.Bool("mute", false, "Disable sound.")
	logPath := flag.String("log", getEnv("TILEFALL_LOG", "tilefall.log"), "Log file. The terminal belongs to the game.")
	flag.Parse()

	logFile, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open log: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: logFile, NoColor: true, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if err := run(*seed, *mute, logger); err != nil {
		logger.Error().Err(err).Msg("tilefall-term failed")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(seed uint64, mute bool, logger zerolog.Logger) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()
	screen.HideCursor()

	g := newGame(screen, seed, logger)
	if !mute {
		if err := g.player.Init(); err != nil {
			// the game runs without sound
			logger.Warn().Err(err).Msg("audio unavailable")
		} else {
			g.muted = false
		}
	}
	defer g.player.Close()

	logger.Info().Uint64("seed", seed).Bool("sound", !g.muted).Msg("starting tilefall-term")
	g.run()
	logger.Info().Int("score", g.snap.Score).Int("level", g.snap.Level).Msg("quit")
	return nil
}

func envSeed() uint64 {
	if v, err := strconv.ParseUint(os.Getenv("TILEFALL_SEED"), 10, 64); err == nil {
		return v
	}
	return uint64(time.Now().UnixNano())
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
