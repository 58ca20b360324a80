package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/plus3/tilefall/puzzle"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runPieces(t *testing.T, seed uint64, pieces int) *Report {
	t.Helper()
	report, err := newSoak(Config{MaxPieces: pieces, Seed: seed}, zerolog.Nop()).run(context.Background())
	require.NoError(t, err)
	return report
}

func TestSoakRun(t *testing.T) {
	report := runPieces(t, 7, 300)

	assert.GreaterOrEqual(t, report.Pieces, 300)
	assert.GreaterOrEqual(t, report.Games, 1)
	assert.Len(t, report.Scores, report.Games)
	assert.Positive(t, report.Ticks)
	assert.Len(t, report.TickTime.Samples, int(report.Ticks))
	assert.LessOrEqual(t, report.MaxMultiplier, 64)
	assert.GreaterOrEqual(t, report.MaxLevel, 1)
	assert.LessOrEqual(t, report.ScoreStats.Min, report.ScoreStats.Median)
	assert.LessOrEqual(t, report.ScoreStats.Median, report.ScoreStats.Max)
}

func TestSoakDeterministic(t *testing.T) {
	a := runPieces(t, 42, 150)
	b := runPieces(t, 42, 150)

	assert.Equal(t, a.Scores, b.Scores)
	assert.Equal(t, a.Ticks, b.Ticks)
	assert.Equal(t, a.Explosions, b.Explosions)
	assert.Equal(t, a.MaxMultiplier, b.MaxMultiplier)
}

func TestSoakStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := newSoak(Config{Seed: 1}, zerolog.Nop()).run(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Ticks)
	assert.Equal(t, 1, report.Games, "the game in progress is recorded")
	assert.Equal(t, 1, report.Pieces)
}

func TestReportGenerate(t *testing.T) {
	report := runPieces(t, 3, 50)

	var buf bytes.Buffer
	require.NoError(t, report.Generate(&buf))
	out := buf.String()
	assert.Contains(t, out, "# Tilefall Soak Report")
	assert.Contains(t, out, "**Seed:** 3")
	assert.Contains(t, out, "**Piece Budget:** 50")
	assert.NotContains(t, out, "Run Duration")
	assert.Contains(t, out, "**Score:** min")
}

func TestCheckSnapshot(t *testing.T) {
	rules := puzzle.DefaultRules()
	base := puzzle.New(puzzle.WithSeed(5)).Snapshot()

	t.Run("fresh game is valid", func(t *testing.T) {
		prev := base
		assert.NoError(t, checkSnapshot(&prev, &base, rules))
	})

	t.Run("score may not fall", func(t *testing.T) {
		prev := base
		prev.Score = 100
		err := checkSnapshot(&prev, &base, rules)
		assert.True(t, errors.Is(err, ErrInvariant))
	})

	t.Run("a new game may lower the score", func(t *testing.T) {
		prev := base
		prev.Score = 100
		prev.PieceCount = 40
		assert.NoError(t, checkSnapshot(&prev, &base, rules))
	})

	t.Run("multiplier must be a power of two", func(t *testing.T) {
		next := base
		next.Multiplier = 3
		assert.ErrorIs(t, checkSnapshot(&base, &next, rules), ErrInvariant)
		next.Multiplier = 128
		assert.ErrorIs(t, checkSnapshot(&base, &next, rules), ErrInvariant)
	})

	t.Run("level range", func(t *testing.T) {
		next := base
		next.Level = 10
		assert.ErrorIs(t, checkSnapshot(&base, &next, rules), ErrInvariant)
	})

	t.Run("active piece overlapping the board", func(t *testing.T) {
		next := base
		for x := 0; x < next.Board.Width(); x++ {
			for y := 0; y < 4; y++ {
				next.Board.SetTile(x, y, 1)
			}
		}
		next.Board.UpdateConnections()
		assert.ErrorIs(t, checkSnapshot(&base, &next, rules), ErrInvariant)
	})

	t.Run("asymmetric join", func(t *testing.T) {
		next := base
		next.Board.SetTile(0, 15, 1)
		next.Board.SetTile(1, 15, 1)
		next.Board.Get(0, 15).Connect = puzzle.ConnectRight
		assert.ErrorIs(t, checkSnapshot(&base, &next, rules), ErrInvariant)
	})

	t.Run("join across colours", func(t *testing.T) {
		next := base
		next.Board.SetTile(0, 15, 1)
		next.Board.SetTile(1, 15, 2)
		next.Board.Get(0, 15).Connect = puzzle.ConnectRight
		next.Board.Get(1, 15).Connect = puzzle.ConnectLeft
		assert.ErrorIs(t, checkSnapshot(&base, &next, rules), ErrInvariant)
	})

	t.Run("board frozen after game over", func(t *testing.T) {
		prev := base
		prev.Mode = puzzle.ModeGameOver
		next := prev
		next.Board.SetTile(5, 15, 3)
		assert.ErrorIs(t, checkSnapshot(&prev, &next, rules), ErrInvariant)
	})
}
