// Command tilefall-soak plays the puzzle headlessly with random input and
// checks the simulation invariants after every tick.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load()

	duration := flag.Duration("duration", 10*time.Second, "Wall time to play for. Zero plays until the piece budget is spent.")
	maxPieces := flag.Int("pieces", 0, "Stop after this many pieces. Zero means no limit.")
	seed := flag.Uint64("seed", envSeed(), "Random seed for pieces and input.")
	tickMs := flag.Int("tick", 16, "Virtual milliseconds per tick.")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if *duration <= 0 && *maxPieces <= 0 {
		log.Fatal().Msg("either -duration or -pieces must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	cfg := Config{Duration: *duration, MaxPieces: *maxPieces, Seed: *seed, TickMs: *tickMs}
	log.Info().Uint64("seed", cfg.Seed).Dur("duration", cfg.Duration).Int("pieces", cfg.MaxPieces).Msg("starting soak run")

	report, runErr := newSoak(cfg, log.Logger).run(ctx)

	fmt.Println("\n--- Soak Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("failed to generate report")
	}
	fmt.Println("--- End of Report ---")

	if runErr != nil {
		log.Fatal().Err(runErr).Uint64("seed", cfg.Seed).Msg("soak run failed")
	}
	log.Info().Msg("soak run complete")
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
