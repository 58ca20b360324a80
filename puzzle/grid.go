package puzzle

import (
	"fmt"
	"math/rand/v2"
)

const (
	BoardWidth  = 10
	BoardHeight = 16
	PieceSize   = 5

	// MaxCells is the capacity of every Grid; the board is the largest grid in play.
	MaxCells = BoardWidth * BoardHeight
)

const (
	fragmentSlowSpeed = 6.75
	fragmentFastSpeed = 15.0
	fragmentJitter    = 1000.0 / 4096.0
	rippleDurationMs  = 500
)

// Grid is a rectangular array of tiles. It backs both the board and the 5x5
// buffers that hold the active and next pieces.
//
// Storage is a fixed-capacity array so assigning one Grid to another copies it.
// Group information is only meaningful between a CreateGroups call and the next
// mutation of the grid.
type Grid struct {
	width, height int
	tiles         [MaxCells]Tile

	groupSizes [MaxCells]int
	numGroups  int

	numRotations    int
	currentRotation int
}

// NewGrid returns a cleared grid of the given dimensions.
func NewGrid(width, height int) Grid {
	var g Grid
	g.Resize(width, height)
	g.Clear()
	return g
}

// Resize changes the dimensions of the grid. Contents are only reset when the
// dimensions actually change.
func (g *Grid) Resize(width, height int) {
	if width < 0 || height < 0 || width*height > MaxCells {
		panic(fmt.Sprintf("puzzle: grid size %dx%d exceeds capacity %d", width, height, MaxCells))
	}
	if g.width == width && g.height == height {
		return
	}
	g.width = width
	g.height = height
	for i := range g.tiles {
		g.tiles[i].Clear()
	}
	g.numGroups = 0
}

// Clear empties every tile and resets rotation state.
func (g *Grid) Clear() {
	g.currentRotation = 0
	g.numRotations = 4
	for i := 0; i < g.width*g.height; i++ {
		g.tiles[i].Clear()
	}
	g.numGroups = 0
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// NumRotations is the number of distinct orientations the grid cycles through.
func (g *Grid) NumRotations() int { return g.numRotations }

// Rotation is the current orientation index, 0..NumRotations-1.
func (g *Grid) Rotation() int { return g.currentRotation }

// SetNumRotations restricts the orientation cycle used by Rotate.
func (g *Grid) SetNumRotations(n int) {
	if n != 1 && n != 2 && n != 4 {
		panic(fmt.Sprintf("puzzle: unsupported rotation count %d", n))
	}
	g.numRotations = n
	g.currentRotation = 0
}

// Valid reports whether (x, y) lies inside the grid.
func (g *Grid) Valid(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.width && y < g.height
}

// Get returns the tile at (x, y). Out-of-range coordinates are a programming error.
func (g *Grid) Get(x, y int) *Tile {
	if !g.Valid(x, y) {
		panic(fmt.Sprintf("puzzle: coordinate out of range for grid (%d,%d)", x, y))
	}
	return &g.tiles[x+y*g.width]
}

// At returns a copy of the tile at (x, y).
func (g *Grid) At(x, y int) Tile {
	return *g.Get(x, y)
}

// SetTile sets a tile's colour. Connections are left untouched; call
// UpdateConnections afterwards.
func (g *Grid) SetTile(x, y int, color uint8) {
	g.Get(x, y).Color = color
}

// RowEmpty reports whether row y holds no occupied tiles.
func (g *Grid) RowEmpty(y int) bool {
	for x := 0; x < g.width; x++ {
		if g.Get(x, y).Occupied() {
			return false
		}
	}
	return true
}

// Occupied counts the occupied tiles in the grid.
func (g *Grid) Occupied() int {
	n := 0
	for i := 0; i < g.width*g.height; i++ {
		if g.tiles[i].Occupied() {
			n++
		}
	}
	return n
}

// Rotate turns the grid by r quarter turns, snapped onto the grid's orientation
// cycle. Only square grids can be rotated.
func (g *Grid) Rotate(r int) {
	if g.width != g.height {
		panic(fmt.Sprintf("puzzle: only square grids can be rotated (%dx%d)", g.width, g.height))
	}
	if g.numRotations <= 1 || r == 0 {
		return
	}

	n := g.numRotations
	r = ((g.currentRotation+4+r)%n+n)%n - g.currentRotation
	r &= 3

	g.currentRotation = (g.currentRotation + r) % n

	if r != 0 {
		for i := 0; i < g.width*g.height; i++ {
			g.tiles[i].RotateConnections(r)
		}
	}

	w := g.width
	for ; r > 0; r-- {
		for x := 0; x < w/2; x++ {
			for y := 0; y < (w+1)/2; y++ {
				tmp := *g.Get(x, y)
				*g.Get(x, y) = *g.Get(y, w-1-x)
				*g.Get(y, w-1-x) = *g.Get(w-1-x, w-1-y)
				*g.Get(w-1-x, w-1-y) = *g.Get(w-1-y, x)
				*g.Get(w-1-y, x) = tmp
			}
		}
	}
}

// AddToWorld copies every occupied tile into target at the given offset.
// The caller must already have checked Collide.
func (g *Grid) AddToWorld(target *Grid, offsetX, offsetY int) {
	for x := 0; x < g.width; x++ {
		for y := 0; y < g.height; y++ {
			if t := g.At(x, y); t.Occupied() {
				*target.Get(x+offsetX, y+offsetY) = t
			}
		}
	}
}

// Collide reports whether any occupied tile, shifted by the offset, lands
// outside target or on an occupied tile of target.
func (g *Grid) Collide(target *Grid, offsetX, offsetY int) bool {
	for x := 0; x < g.width; x++ {
		for y := 0; y < g.height; y++ {
			if !g.Get(x, y).Occupied() {
				continue
			}
			tx, ty := x+offsetX, y+offsetY
			if !target.Valid(tx, ty) {
				return true
			}
			if target.Get(tx, ty).Occupied() {
				return true
			}
		}
	}
	return false
}

// UpdateConnections links every tile to its same-coloured neighbours and returns
// the number of joins that did not exist before.
func (g *Grid) UpdateConnections() int {
	count := 0
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			count += g.UpdateTileConnections(x, y)
		}
	}
	// every join is seen from both ends
	return count / 2
}

// UpdateTileConnections recomputes the connection mask of one tile and returns
// how many bits were newly set.
func (g *Grid) UpdateTileConnections(x, y int) int {
	t := g.Get(x, y)
	if !t.Occupied() {
		return 0
	}

	var connect Connection
	if x > 0 && t.Joins(g.At(x-1, y)) {
		connect |= ConnectLeft
	}
	if x < g.width-1 && t.Joins(g.At(x+1, y)) {
		connect |= ConnectRight
	}
	if y > 0 && t.Joins(g.At(x, y-1)) {
		connect |= ConnectUp
	}
	if y < g.height-1 && t.Joins(g.At(x, y+1)) {
		connect |= ConnectDown
	}

	if connect == t.Connect {
		return 0
	}
	added := connect &^ t.Connect
	t.Connect = connect
	return added.Count()
}

// CreateGroups assigns a group id to every occupied tile so that each group is a
// maximal 4-connected region of one colour. Ids are handed out in column-major
// scan order.
func (g *Grid) CreateGroups() {
	for i := 0; i < g.width*g.height; i++ {
		g.tiles[i].Group = -1
	}
	g.numGroups = 0

	for x := 0; x < g.width; x++ {
		for y := 0; y < g.height; y++ {
			t := g.Get(x, y)
			if t.Occupied() && t.Group == -1 {
				id := g.numGroups
				g.groupSizes[id] = 0
				g.numGroups++
				g.floodFill(x, y, id)
			}
		}
	}
}

// NumGroups is the number of groups found by the last CreateGroups.
func (g *Grid) NumGroups() int { return g.numGroups }

// GroupSize is the member count of a group found by the last CreateGroups.
func (g *Grid) GroupSize(id int) int {
	if id < 0 || id >= g.numGroups {
		panic(fmt.Sprintf("puzzle: group id %d out of range (%d groups)", id, g.numGroups))
	}
	return g.groupSizes[id]
}

type cell struct{ x, y int }

func (g *Grid) floodFill(x, y, id int) {
	var stack [MaxCells]cell
	sp := 0

	claim := func(x, y int) {
		t := g.Get(x, y)
		t.Group = int16(id)
		g.groupSizes[id]++
		stack[sp] = cell{x, y}
		sp++
	}

	claim(x, y)
	for sp > 0 {
		sp--
		c := stack[sp]
		t := g.At(c.x, c.y)

		if c.x > 0 && t.CanFloodFillTo(g.At(c.x-1, c.y)) {
			claim(c.x-1, c.y)
		}
		if c.x < g.width-1 && t.CanFloodFillTo(g.At(c.x+1, c.y)) {
			claim(c.x+1, c.y)
		}
		if c.y > 0 && t.CanFloodFillTo(g.At(c.x, c.y-1)) {
			claim(c.x, c.y-1)
		}
		if c.y < g.height-1 && t.CanFloodFillTo(g.At(c.x, c.y+1)) {
			claim(c.x, c.y+1)
		}
	}
}

// MakeFall moves every group that is not resting on the floor or on a supported
// group down by one row. Groups move as rigid units; they are not recomputed.
// Requires valid groups. Reports whether anything moved.
func (g *Grid) MakeFall() bool {
	var supported [MaxCells]bool

	for {
		changed := false
		for y := g.height - 1; y >= 0; y-- {
			for x := 0; x < g.width; x++ {
				t := g.At(x, y)
				if !t.Occupied() || supported[t.Group] {
					continue
				}
				if y == g.height-1 {
					supported[t.Group] = true
					changed = true
					continue
				}
				if below := g.At(x, y+1); below.Occupied() && supported[below.Group] {
					supported[t.Group] = true
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}

	falling := false
	for y := g.height - 1; y >= 0; y-- {
		for x := 0; x < g.width; x++ {
			t := g.Get(x, y)
			if t.Occupied() && !supported[t.Group] {
				*g.Get(x, y+1) = *t
				t.Clear()
				falling = true
			}
		}
	}
	return falling
}

// CheckForExplosions regroups the grid and removes the first group, in
// column-major scan order, whose size reaches criticalMass. Only one group is
// removed per call. It returns the number of removed tiles and the integer
// centroid of the group; effect requests are sent to sink.
func (g *Grid) CheckForExplosions(criticalMass int, sink EffectSink, rng *rand.Rand) (int, Point) {
	g.CreateGroups()

	var centre Point
	count := 0
	explodeGroup := int16(-1)
	for x := 0; x < g.width; x++ {
		for y := 0; y < g.height; y++ {
			t := g.At(x, y)
			if !t.Occupied() || g.groupSizes[t.Group] < criticalMass {
				continue
			}
			if explodeGroup == -1 || explodeGroup == t.Group {
				explodeGroup = t.Group
				count++
				centre.X += x
				centre.Y += y
			}
		}
	}

	if count == 0 {
		return 0, Point{}
	}

	centre.X /= count
	centre.Y /= count
	mid := centre.Centre()

	if sink == nil {
		sink = NopEffects{}
	}
	sink.SpawnRipple(mid, rippleDurationMs)

	for x := 0; x < g.width; x++ {
		for y := 0; y < g.height; y++ {
			t := g.Get(x, y)
			if !t.Occupied() || t.Group != explodeGroup {
				continue
			}
			p := Point{x, y}.Centre()
			v := p.Sub(mid)
			v.X += fragmentJitter * float64(rng.IntN(2000)-1000) / 1000
			v.Y += fragmentJitter * float64(rng.IntN(2000)-1000) / 1000
			v = v.Normalize()

			sink.SpawnParticle(p, v.Scale(fragmentSlowSpeed), t.Color)
			sink.SpawnParticle(p, v.Scale(fragmentFastSpeed), t.Color)

			t.Clear()
		}
	}

	return count, centre
}
