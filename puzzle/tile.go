package puzzle

// Connection is a bitfield recording which sides of a tile touch a tile of the same colour.
type Connection uint8

const (
	ConnectUp Connection = 1 << iota
	ConnectLeft
	ConnectDown
	ConnectRight

	connectAll = ConnectUp | ConnectLeft | ConnectDown | ConnectRight
)

// Tile is a single cell of a Grid.
// Color 0 means empty; Group is -1 until Grid.CreateGroups assigns one.
type Tile struct {
	Color   uint8
	Connect Connection
	Group   int16
}

// EmptyTile returns a cleared tile.
func EmptyTile() Tile {
	return Tile{Group: -1}
}

// Clear resets the tile to the empty state.
func (t *Tile) Clear() {
	*t = EmptyTile()
}

// Occupied reports whether the tile holds a colour.
func (t Tile) Occupied() bool {
	return t.Color != 0
}

// Joins reports whether two tiles share a colour.
func (t Tile) Joins(other Tile) bool {
	return t.Color == other.Color
}

// CanFloodFillTo reports whether a flood fill started at t may spread into other.
func (t Tile) CanFloodFillTo(other Tile) bool {
	return t.Color == other.Color && other.Group == -1
}

// RotateConnections cycles the connection bits by r quarter turns (0..3) so they
// stay consistent with a grid that has been physically rotated.
func (t *Tile) RotateConnections(r int) {
	if r&3 != r {
		panic("puzzle: illegal rotation in Tile.RotateConnections")
	}
	c := t.Connect
	t.Connect = (c>>r | c<<(4-r)) & connectAll
}

// Count returns the number of set connection bits.
func (c Connection) Count() int {
	n := 0
	for ; c != 0; c >>= 1 {
		if c&1 != 0 {
			n++
		}
	}
	return n
}
