package puzzle

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreatePiece(t *testing.T) {
	joins := map[Shape]int{
		ShapeSquare:     4,
		ShapeLong:       3,
		ShapeZ:          3,
		ShapeS:          3,
		ShapeT:          3,
		ShapeBackwardsL: 3,
		ShapeL:          3,
	}

	for shape, want := range joins {
		t.Run(shape.String(), func(t *testing.T) {
			var g Grid
			CreatePiece(&g, shape, 4)

			assert.Equal(t, PieceSize, g.Width())
			assert.Equal(t, PieceSize, g.Height())
			assert.Equal(t, 4, g.Occupied())

			bits := 0
			for x := 0; x < g.Width(); x++ {
				for y := 0; y < g.Height(); y++ {
					tile := g.At(x, y)
					if tile.Occupied() {
						assert.Equal(t, uint8(4), tile.Color)
					}
					bits += tile.Connect.Count()
				}
			}
			assert.Equal(t, want, bits/2, "piece is linked internally")
		})
	}
}

func TestCreatePieceRotationCounts(t *testing.T) {
	var g Grid
	for shape, want := range map[Shape]int{ShapeSquare: 1, ShapeLong: 2, ShapeZ: 2, ShapeS: 2, ShapeT: 4, ShapeBackwardsL: 4, ShapeL: 4} {
		CreatePiece(&g, shape, 1)
		assert.Equal(t, want, g.NumRotations(), shape.String())
		assert.Equal(t, 0, g.Rotation())
	}
}

func TestCreatePiecePanics(t *testing.T) {
	var g Grid
	assert.Panics(t, func() { CreatePiece(&g, Shape(NumShapes), 1) })
	assert.Panics(t, func() { CreatePiece(&g, ShapeT, 0) })
}

func TestCreateRandomPiece(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 9))
	seen := map[Shape]bool{}

	var g Grid
	for i := 0; i < 500; i++ {
		shape := CreateRandomPiece(&g, 3, rng)
		seen[shape] = true

		for x := 0; x < g.Width(); x++ {
			for y := 0; y < g.Height(); y++ {
				if c := g.At(x, y).Color; c != 0 {
					assert.LessOrEqual(t, c, uint8(3))
				}
			}
		}
	}
	assert.Len(t, seen, NumShapes)
}

func TestShapeString(t *testing.T) {
	assert.Equal(t, "BackwardsL", ShapeBackwardsL.String())
	assert.Equal(t, "Shape(9)", Shape(9).String())
	assert.Equal(t, "GameOver", ModeGameOver.String())
}
