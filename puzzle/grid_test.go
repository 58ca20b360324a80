package puzzle

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridResize(t *testing.T) {
	g := NewGrid(3, 2)
	g.SetTile(1, 1, 4)

	g.Resize(3, 2)
	assert.Equal(t, uint8(4), g.At(1, 1).Color, "same size keeps contents")

	g.Resize(2, 3)
	assert.Equal(t, 0, g.Occupied(), "new size clears contents")

	assert.Panics(t, func() { g.Resize(BoardWidth+1, BoardHeight) })
	assert.Panics(t, func() { g.Get(2, 0) })
}

func TestGridUpdateConnections(t *testing.T) {
	g := NewGrid(3, 1)
	g.SetTile(0, 0, 1)
	g.SetTile(1, 0, 1)
	g.SetTile(2, 0, 2)

	assert.Equal(t, 1, g.UpdateConnections())
	assert.Equal(t, 0, g.UpdateConnections(), "second pass adds nothing")

	assert.Equal(t, ConnectRight, g.At(0, 0).Connect)
	assert.Equal(t, ConnectLeft, g.At(1, 0).Connect)
	assert.Equal(t, Connection(0), g.At(2, 0).Connect)

	g.SetTile(2, 0, 1)
	assert.Equal(t, 1, g.UpdateConnections())
	assert.Equal(t, ConnectLeft|ConnectRight, g.At(1, 0).Connect)
}

func TestGridConnectionsSymmetric(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	g := NewGrid(BoardWidth, BoardHeight)
	for x := 0; x < BoardWidth; x++ {
		for y := 0; y < BoardHeight; y++ {
			if rng.IntN(3) > 0 {
				g.SetTile(x, y, uint8(rng.IntN(3)+1))
			}
		}
	}
	g.UpdateConnections()

	for x := 0; x < BoardWidth; x++ {
		for y := 0; y < BoardHeight; y++ {
			c := g.At(x, y).Connect
			if x < BoardWidth-1 {
				assert.Equal(t, c&ConnectRight != 0, g.At(x+1, y).Connect&ConnectLeft != 0)
			}
			if y < BoardHeight-1 {
				assert.Equal(t, c&ConnectDown != 0, g.At(x, y+1).Connect&ConnectUp != 0)
			}
		}
	}
}

func TestGridCreateGroups(t *testing.T) {
	g := boardFromRows(t,
		"11.2......",
		"1222...33.",
		"11.2....3.",
	)
	g.CreateGroups()

	require.Equal(t, 3, g.NumGroups())

	total := 0
	for id := 0; id < g.NumGroups(); id++ {
		total += g.GroupSize(id)
	}
	assert.Equal(t, g.Occupied(), total, "groups partition the occupied tiles")

	// ids follow column-major discovery
	assert.Equal(t, int16(0), g.At(0, 13).Group)
	assert.Equal(t, int16(1), g.At(1, 14).Group)
	assert.Equal(t, int16(2), g.At(7, 14).Group)
	assert.Equal(t, 5, g.GroupSize(0))
	assert.Equal(t, 5, g.GroupSize(1))
	assert.Equal(t, 3, g.GroupSize(2))

	for x := 0; x < BoardWidth; x++ {
		for y := 0; y < BoardHeight; y++ {
			tile := g.At(x, y)
			if !tile.Occupied() {
				continue
			}
			if x < BoardWidth-1 && g.At(x+1, y).Color == tile.Color {
				assert.Equal(t, tile.Group, g.At(x+1, y).Group)
			}
			if y < BoardHeight-1 && g.At(x, y+1).Color == tile.Color {
				assert.Equal(t, tile.Group, g.At(x, y+1).Group)
			}
		}
	}

	assert.Panics(t, func() { g.GroupSize(3) })
}

func TestGridRotate(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		for shape := Shape(0); int(shape) < NumShapes; shape++ {
			var g Grid
			CreatePiece(&g, shape, 2)
			orig := g

			g.Rotate(1)
			g.Rotate(-1)
			assert.Equal(t, orig, g, "%s: rotate and back", shape)

			for i := 0; i < 4; i++ {
				g.Rotate(1)
			}
			assert.Equal(t, orig, g, "%s: four quarter turns", shape)
		}
	})

	t.Run("connections follow the tiles", func(t *testing.T) {
		var g Grid
		CreatePiece(&g, ShapeL, 3)
		g.Rotate(1)

		check := g
		assert.Equal(t, 0, check.UpdateConnections())
		assert.Equal(t, g, check)
	})

	t.Run("two-state pieces alternate", func(t *testing.T) {
		var g Grid
		CreatePiece(&g, ShapeLong, 1)
		orig := g

		g.Rotate(1)
		assert.Equal(t, 1, g.Rotation())
		assert.Equal(t, uint8(1), g.At(2, 0).Color)
		assert.Equal(t, uint8(1), g.At(2, 3).Color)

		g.Rotate(1)
		assert.Equal(t, 0, g.Rotation())
		assert.Equal(t, orig, g)
	})

	t.Run("square never turns", func(t *testing.T) {
		var g Grid
		CreatePiece(&g, ShapeSquare, 1)
		orig := g
		g.Rotate(1)
		assert.Equal(t, orig, g)
	})

	t.Run("non-square grid panics", func(t *testing.T) {
		g := NewGrid(3, 2)
		assert.Panics(t, func() { g.Rotate(1) })
	})
}

func TestGridCollide(t *testing.T) {
	board := boardFromRows(t,
		"5.........",
	)
	var piece Grid
	CreatePiece(&piece, ShapeSquare, 1) // cells (1..2, 1..2)

	assert.False(t, piece.Collide(&board, 0, 0))
	assert.False(t, piece.Collide(&board, -1, 0))
	assert.True(t, piece.Collide(&board, -2, 0), "left wall")
	assert.True(t, piece.Collide(&board, 8, 0), "right wall")
	assert.True(t, piece.Collide(&board, 0, 14), "floor")
	assert.False(t, piece.Collide(&board, 0, 13))
	assert.True(t, piece.Collide(&board, -1, 13), "occupied tile")
	assert.False(t, piece.Collide(&board, 0, -1))
	assert.True(t, piece.Collide(&board, 0, -2), "above the top edge")

	piece.AddToWorld(&board, 0, 13)
	assert.Equal(t, []string{
		".11.......",
		"511.......",
	}, rowsOf(&board, 2))
}

func TestGridMakeFall(t *testing.T) {
	t.Run("single tile drops one row per call", func(t *testing.T) {
		g := boardFromRows(t,
			"..2.......",
			"..........",
			"1.........",
		)
		g.CreateGroups()

		assert.True(t, g.MakeFall())
		assert.True(t, g.MakeFall())
		assert.False(t, g.MakeFall())
		assert.Equal(t, []string{
			"..........",
			"..........",
			"1.2.......",
		}, rowsOf(&g, 3))
	})

	t.Run("groups fall as rigid units", func(t *testing.T) {
		g := boardFromRows(t,
			"33........",
			".3........",
			"..........",
			"1.........",
		)
		g.CreateGroups()

		steps := 0
		for g.MakeFall() {
			steps++
			require.Less(t, steps, BoardHeight)
		}
		assert.Equal(t, 2, steps)
		assert.Equal(t, []string{
			"..........",
			"..........",
			"33........",
			"13........",
		}, rowsOf(&g, 4))
	})

	t.Run("stack supported through another group", func(t *testing.T) {
		g := boardFromRows(t,
			"2.........",
			"1.........",
			"3.........",
		)
		g.CreateGroups()
		assert.False(t, g.MakeFall())
	})
}

func TestGridCheckForExplosions(t *testing.T) {
	g := boardFromRows(t,
		"......2222",
		"1111112222",
		"1111112222",
	)
	fx := &recordingEffects{}
	rng := rand.New(rand.NewPCG(1, 2))

	n, centre := g.CheckForExplosions(12, fx, rng)
	assert.Equal(t, 12, n)
	assert.Equal(t, Point{2, 14}, centre)
	assert.Equal(t, []Vec{{2.5, 14.5}}, fx.ripples)
	assert.Len(t, fx.particles, 24)
	assert.Equal(t, []string{
		"......2222",
		"......2222",
		"......2222",
	}, rowsOf(&g, 3), "only one group per call")

	for _, p := range fx.particles {
		speed := p.vel.Len()
		assert.True(t, speed > 6.7 && speed < 6.8 || speed > 14.9 && speed < 15.1, "speed %f", speed)
		assert.Equal(t, uint8(1), p.color)
	}

	n, _ = g.CheckForExplosions(12, fx, rng)
	assert.Equal(t, 12, n)
	assert.Equal(t, 0, g.Occupied())

	n, _ = g.CheckForExplosions(12, nil, rng)
	assert.Equal(t, 0, n)
}

func TestGridCheckForExplosionsBelowCriticalMass(t *testing.T) {
	g := boardFromRows(t,
		"1111111111",
		"1.........",
	)
	n, _ := g.CheckForExplosions(12, nil, rand.New(rand.NewPCG(1, 2)))
	assert.Equal(t, 0, n)
	assert.Equal(t, 11, g.Occupied())
}
