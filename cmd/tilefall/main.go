// Command tilefall runs the puzzle in a window.
package main

import (
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/plus3/tilefall/puzzle"
)

const (
	ScreenWidth  = 640
	ScreenHeight = 600
)

func main() {
	_ = godotenv.Load()

	debug := flag.Bool("debug", false, "Show the Dear ImGui developer overlay.")
	seed := flag.Uint64("seed", envSeed(), "Random seed for the piece sequence.")
	level := flag.Int("level", 1, "Starting level.")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	rules := puzzle.DefaultRules()
	if err := rules.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid rules")
	}
	if *level < 1 || *level > rules.MaxLevel {
		log.Fatal().Int("level", *level).Int("max", rules.MaxLevel).Msg("starting level out of range")
	}

	game := NewGame(Options{
		Rules:      rules,
		Seed:       *seed,
		StartLevel: *level,
		Debug:      *debug,
		Logger:     log.Logger,
	})

	if !*debug {
		ebiten.SetWindowSize(ScreenWidth, ScreenHeight)
		ebiten.SetWindowTitle("Tilefall")
	}

	log.Info().Uint64("seed", *seed).Bool("debug", *debug).Msg("starting tilefall")
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal().Err(err).Msg("game exited")
	}
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
