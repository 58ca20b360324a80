package puzzle

import (
	"bytes"
	"math/rand/v2"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// restingSquare puts a square piece on the floor at the left of an empty board.
func restingSquare(s *Simulation) {
	s.board.Clear()
	CreatePiece(&s.active, ShapeSquare, 1)
	s.piecePos = Point{X: 0, Y: 13}
	s.timer = 0
	s.landTimer = 0
	s.slideDirection = 0
}

func checkerBoard() Grid {
	g := NewGrid(BoardWidth, BoardHeight)
	for x := 0; x < BoardWidth; x++ {
		for y := 0; y < BoardHeight; y++ {
			g.SetTile(x, y, uint8(1+(x+y)%2))
		}
	}
	g.UpdateConnections()
	return g
}

func assertFreshGame(t *testing.T, snap Snapshot) {
	t.Helper()
	assert.Equal(t, ModeActivePiece, snap.Mode)
	assert.Equal(t, 0, snap.Score)
	assert.Equal(t, 1, snap.Level)
	assert.Equal(t, 1, snap.Multiplier)
	assert.Equal(t, 1, snap.PieceCount)
	assert.Equal(t, 0, snap.Board.Occupied())
	assert.Equal(t, 4, snap.Active.Occupied())
	assert.Equal(t, 4, snap.Next.Occupied())

	// spawned centred with the first occupied row on the top edge
	assert.Equal(t, (BoardWidth-PieceSize)/2, snap.PiecePos.X)
	top := -snap.PiecePos.Y
	for y := 0; y < top; y++ {
		assert.True(t, snap.Active.RowEmpty(y))
	}
	assert.False(t, snap.Active.RowEmpty(top))
}

func TestSimulationReset(t *testing.T) {
	s := New(WithSeed(1))
	assertFreshGame(t, s.Snapshot())

	for i := 0; i < 200; i++ {
		s.Update(50, Input{SoftDrop: true})
	}
	require.Greater(t, s.Snapshot().PieceCount, 1)

	s.Reset()
	assertFreshGame(t, s.Snapshot())
}

func TestSimulationGravity(t *testing.T) {
	s := New(WithSeed(3))
	y := s.PiecePos().Y

	s.Update(400, Input{})
	assert.Equal(t, y, s.PiecePos().Y, "gravity needs strictly more than the interval")

	s.Update(1, Input{})
	assert.Equal(t, y+1, s.PiecePos().Y)
	assert.Equal(t, 1, s.TimerMs())
}

func TestSimulationSoftDrop(t *testing.T) {
	s := New(WithSeed(3))
	y := s.PiecePos().Y

	s.Update(16, Input{SoftDrop: true})
	assert.Equal(t, y+1, s.PiecePos().Y, "pressing drops a row at once")

	for i := 0; i < 4; i++ {
		s.Update(16, Input{SoftDrop: true})
	}
	assert.Equal(t, y+1, s.PiecePos().Y)
	s.Update(16, Input{SoftDrop: true})
	assert.Equal(t, y+2, s.PiecePos().Y, "held drop runs at the soft drop interval")

	var snap Snapshot
	for i := 0; i < 200 && snap.Mode != ModeExploding; i++ {
		snap = s.Update(16, Input{SoftDrop: true})
	}
	assert.Equal(t, ModeExploding, snap.Mode)
	assert.Equal(t, 4, snap.Board.Occupied())
	assert.Equal(t, 10, snap.Score)

	snap = s.Update(100, Input{})
	assert.Equal(t, ModeActivePiece, snap.Mode)
	assert.Equal(t, 2, snap.PieceCount)
}

func TestSimulationLandingGrace(t *testing.T) {
	t.Run("lands after the grace period", func(t *testing.T) {
		s := New(WithSeed(4))
		restingSquare(s)
		s.timer = 400

		for i := 0; i < 4; i++ {
			s.Update(50, Input{})
			require.Equal(t, ModeActivePiece, s.Mode())
			assert.Equal(t, 400, s.TimerMs())
		}
		assert.Equal(t, 200, s.LandTimerMs())

		s.Update(50, Input{})
		assert.Equal(t, ModeExploding, s.Mode())
		assert.Equal(t, 10, s.Score())
	})

	t.Run("sliding one way resets the grace period", func(t *testing.T) {
		s := New(WithSeed(4))
		restingSquare(s)
		s.timer = 400
		for i := 0; i < 4; i++ {
			s.Update(50, Input{})
		}

		s.Update(50, Input{Horizontal: 1})
		assert.Equal(t, ModeActivePiece, s.Mode())
		assert.Equal(t, 1, s.PiecePos().X)
		assert.Equal(t, 50, s.LandTimerMs())

		s.Update(50, Input{Horizontal: -1})
		assert.Equal(t, 0, s.PiecePos().X)
		assert.Equal(t, 100, s.LandTimerMs(), "reversing does not reset")
	})

	t.Run("soft drop lands immediately", func(t *testing.T) {
		s := New(WithSeed(4))
		restingSquare(s)

		s.Update(16, Input{SoftDrop: true})
		assert.Equal(t, ModeExploding, s.Mode())
	})
}

func TestSimulationWallKick(t *testing.T) {
	s := New(WithSeed(5))
	s.board = boardFromRows(t,
		"..5.......",
		"..........",
		"..........",
		"..........",
	)
	CreatePiece(&s.active, ShapeLong, 1)
	s.piecePos = Point{X: 0, Y: 11}
	s.timer = 0

	s.Update(0, Input{Rotation: 1})
	assert.Equal(t, 1, s.active.Rotation())
	assert.Equal(t, Point{X: 1, Y: 11}, s.PiecePos(), "kicked one column right")
}

func TestSimulationBlockedMovementIsIgnored(t *testing.T) {
	s := New(WithSeed(5))
	restingSquare(s)
	s.piecePos.X = -1

	s.Update(0, Input{Horizontal: -1})
	assert.Equal(t, -1, s.PiecePos().X)

	s.Update(0, Input{Horizontal: 3})
	assert.Equal(t, 2, s.PiecePos().X)
}

func TestSimulationLandingScore(t *testing.T) {
	s := New(WithSeed(6))
	s.board = boardFromRows(t,
		"1.........",
		"1.........",
	)
	CreatePiece(&s.active, ShapeSquare, 1)
	s.piecePos = Point{X: 0, Y: 13}

	s.landPiece()
	assert.Equal(t, 50, s.Score(), "two new joins")
	assert.Equal(t, ModeExploding, s.Mode())
	assert.Equal(t, 0, s.TimerMs())
	assert.Equal(t, 0, s.active.Occupied())
	assert.Equal(t, []string{
		"111.......",
		"111.......",
	}, rowsOf(&s.board, 2))
}

func TestSimulationExplosionScore(t *testing.T) {
	t.Run("sixteen tiles", func(t *testing.T) {
		fx := &recordingEffects{}
		s := New(WithSeed(7), WithEffects(fx))
		s.board = boardFromRows(t,
			"1111......",
			"1111......",
			"1111......",
			"1111......",
		)
		require.True(t, s.explode())
		assert.Equal(t, 500, s.Score())
		assert.Equal(t, []string{"500"}, fx.texts)
		assert.Equal(t, -150, s.TimerMs())
		assert.Len(t, fx.particles, 32)
	})

	t.Run("chain doubles the multiplier", func(t *testing.T) {
		fx := &recordingEffects{}
		s := New(WithSeed(7), WithEffects(fx))
		s.board = boardFromRows(t,
			"111222333.",
			"111222333.",
			"111222333.",
			"111222333.",
		)
		for i := 0; i < 3; i++ {
			require.True(t, s.explode())
		}
		assert.False(t, s.explode())

		assert.Equal(t, 300+600+1200, s.Score())
		assert.Equal(t, []string{"300", "300x2", "300x4"}, fx.texts)
		assert.Equal(t, 8, s.Multiplier())
	})

	t.Run("multiplier is capped", func(t *testing.T) {
		s := New(WithSeed(7))
		s.board = boardFromRows(t,
			"111.......",
			"111.......",
			"111.......",
			"111.......",
		)
		s.multiplier = 64
		require.True(t, s.explode())
		assert.Equal(t, 300*64, s.Score())
		assert.Equal(t, 64, s.Multiplier())
	})
}

func TestSimulationExplodingPhase(t *testing.T) {
	s := New(WithSeed(8))
	s.board = boardFromRows(t,
		"111222....",
		"111222....",
		"111222....",
		"111222....",
	)
	s.setMode(ModeExploding)
	s.timer = 0

	s.Update(99, Input{})
	assert.Equal(t, 0, s.Score())

	s.Update(1, Input{})
	assert.Equal(t, 300, s.Score())
	assert.Equal(t, -150, s.TimerMs())

	s.Update(100, Input{})
	assert.Equal(t, 300, s.Score(), "chain delay holds the next explosion")

	s.Update(150, Input{})
	assert.Equal(t, 900, s.Score())
	assert.Equal(t, ModeExploding, s.Mode())

	s.Update(250, Input{})
	assert.Equal(t, ModeActivePiece, s.Mode())
	assert.Equal(t, 2, s.Snapshot().PieceCount)
	assert.Equal(t, 1, s.Multiplier(), "new piece resets the chain")
}

func TestSimulationFallingPhase(t *testing.T) {
	t.Run("settles then spawns", func(t *testing.T) {
		s := New(WithSeed(9))
		s.board = boardFromRows(t,
			"..2.......",
			"..........",
			"1.........",
		)
		s.setMode(ModeExploding)
		s.timer = 0

		s.Update(100, Input{})
		assert.Equal(t, ModeFalling, s.Mode())

		s.Update(100, Input{})
		assert.Equal(t, ModeFalling, s.Mode())

		s.Update(100, Input{})
		assert.Equal(t, ModeActivePiece, s.Mode())
		assert.Equal(t, []string{"1.2......."}, rowsOf(&s.board, 1))
	})

	t.Run("fallen tiles can complete a group", func(t *testing.T) {
		s := New(WithSeed(9))
		s.board = boardFromRows(t,
			"1.........",
			"..........",
			"111111....",
			"11111.....",
		)
		s.setMode(ModeExploding)
		s.timer = 0

		s.Update(100, Input{})
		require.Equal(t, ModeFalling, s.Mode())

		s.Update(100, Input{})
		assert.Equal(t, ModeExploding, s.Mode())
		assert.Equal(t, 300, s.Score())
		assert.Equal(t, 0, s.board.Occupied())
	})
}

func TestSimulationGameOver(t *testing.T) {
	s := New(WithSeed(10))
	s.board = checkerBoard()
	s.newPiece()
	require.Equal(t, ModeGameOver, s.Mode())

	before := s.Snapshot()
	assert.False(t, before.GameOverReady)

	snap := s.Update(400, Input{Horizontal: 1, Rotation: 1, SoftDrop: true})
	assert.Equal(t, before.Board, snap.Board)
	assert.Equal(t, before.Active, snap.Active)
	assert.Equal(t, before.Next, snap.Next)
	assert.Equal(t, before.PiecePos, snap.PiecePos)
	assert.Equal(t, before.Score, snap.Score)
	assert.Equal(t, ModeGameOver, snap.Mode)
	assert.False(t, snap.GameOverReady)

	snap = s.Update(200, Input{})
	assert.True(t, snap.GameOverReady)

	s.Reset()
	assertFreshGame(t, s.Snapshot())
}

func TestSimulationLevels(t *testing.T) {
	s := New(WithSeed(11))

	s.pieceCount = 30
	s.newPiece()
	assert.Equal(t, 2, s.Level())

	s.level = 9
	s.pieceCount = 10_000
	s.newPiece()
	assert.Equal(t, 9, s.Level())

	s.AdvanceLevel()
	assert.Equal(t, 9, s.Level())

	s.Reset()
	s.AdvanceLevel()
	assert.Equal(t, 2, s.Level())
}

func TestSimulationDeterministic(t *testing.T) {
	play := func() Snapshot {
		s := New(WithSeed(42))
		in := rand.New(rand.NewPCG(1, 1))
		var snap Snapshot
		for i := 0; i < 2000; i++ {
			snap = s.Update(in.IntN(40), Input{
				Horizontal: in.IntN(3) - 1,
				Rotation:   in.IntN(3) - 1,
				SoftDrop:   in.IntN(4) == 0,
			})
			if snap.Mode == ModeGameOver {
				s.Reset()
			}
		}
		return snap
	}

	assert.Equal(t, play(), play())
}

func TestSimulationRandomPlayInvariants(t *testing.T) {
	s := New(WithSeed(99))
	in := rand.New(rand.NewPCG(3, 4))

	last := 0
	for i := 0; i < 20_000; i++ {
		snap := s.Update(in.IntN(100), Input{
			Horizontal: in.IntN(3) - 1,
			Rotation:   in.IntN(3) - 1,
			SoftDrop:   in.IntN(3) == 0,
		})

		require.GreaterOrEqual(t, snap.Score, last)
		last = snap.Score

		require.GreaterOrEqual(t, snap.Level, 1)
		require.LessOrEqual(t, snap.Level, 9)
		require.Contains(t, []int{1, 2, 4, 8, 16, 32, 64}, snap.Multiplier)

		if snap.Mode == ModeActivePiece {
			require.False(t, snap.Active.Collide(&snap.Board, snap.PiecePos.X, snap.PiecePos.Y))
		}
		if snap.Mode == ModeGameOver {
			s.Reset()
			last = 0
		}
	}
}

func TestSimulationLogging(t *testing.T) {
	var buf bytes.Buffer
	s := New(WithSeed(12), WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)))
	restingSquare(s)

	s.Update(16, Input{SoftDrop: true})
	assert.Contains(t, buf.String(), `"message":"piece landed"`)
	assert.Contains(t, buf.String(), `"to":"Exploding"`)
}
