package puzzle

import (
	"fmt"
	"math/rand/v2"
)

//go:generate go tool stringer -type=Shape -trimprefix=Shape

// Shape identifies one of the fixed piece layouts.
type Shape int

const (
	ShapeSquare Shape = iota
	ShapeLong
	ShapeZ
	ShapeS
	ShapeT
	ShapeBackwardsL
	ShapeL

	NumShapes = int(ShapeL) + 1
)

type shapeLayout struct {
	cells     [4]Point
	rotations int
}

// Layouts are stamped into a 5x5 buffer so rotation happens about its centre.
var shapeLayouts = [NumShapes]shapeLayout{
	ShapeSquare:     {cells: [4]Point{{1, 1}, {1, 2}, {2, 1}, {2, 2}}, rotations: 1},
	ShapeLong:       {cells: [4]Point{{0, 2}, {1, 2}, {2, 2}, {3, 2}}, rotations: 2},
	ShapeZ:          {cells: [4]Point{{1, 1}, {2, 1}, {2, 2}, {3, 2}}, rotations: 2},
	ShapeS:          {cells: [4]Point{{1, 2}, {2, 2}, {2, 1}, {3, 1}}, rotations: 2},
	ShapeT:          {cells: [4]Point{{2, 1}, {1, 2}, {2, 2}, {3, 2}}, rotations: 4},
	ShapeBackwardsL: {cells: [4]Point{{1, 1}, {1, 2}, {2, 2}, {3, 2}}, rotations: 4},
	ShapeL:          {cells: [4]Point{{3, 1}, {1, 2}, {2, 2}, {3, 2}}, rotations: 4},
}

// CreatePiece fills g with the given shape in a single colour. The piece's
// internal connections are linked before it is returned.
func CreatePiece(g *Grid, shape Shape, color uint8) {
	if int(shape) < 0 || int(shape) >= NumShapes {
		panic(fmt.Sprintf("puzzle: unknown shape %d", shape))
	}
	if color == 0 {
		panic("puzzle: piece colour must be non-zero")
	}

	g.Resize(PieceSize, PieceSize)
	g.Clear()

	layout := shapeLayouts[shape]
	for _, c := range layout.cells {
		g.SetTile(c.X, c.Y, color)
	}
	g.SetNumRotations(layout.rotations)
	g.UpdateConnections()
}

// CreateRandomPiece fills g with a uniformly chosen shape in a uniformly chosen
// colour from 1..numColors.
func CreateRandomPiece(g *Grid, numColors int, rng *rand.Rand) Shape {
	color := uint8(rng.IntN(numColors) + 1)
	shape := Shape(rng.IntN(NumShapes))
	CreatePiece(g, shape, color)
	return shape
}
