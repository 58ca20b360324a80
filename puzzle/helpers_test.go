package puzzle

import (
	"fmt"
	"testing"
)

// boardFromRows builds a full-size board whose bottom rows are given as
// strings: '.' is empty, '1'..'9' are colours. Connections are linked.
func boardFromRows(t *testing.T, rows ...string) Grid {
	t.Helper()

	g := NewGrid(BoardWidth, BoardHeight)
	top := BoardHeight - len(rows)
	for i, row := range rows {
		if len(row) != BoardWidth {
			t.Fatalf("row %d has width %d, want %d", i, len(row), BoardWidth)
		}
		for x, ch := range row {
			if ch == '.' {
				continue
			}
			g.SetTile(x, top+i, uint8(ch-'0'))
		}
	}
	g.UpdateConnections()
	return g
}

// rowsOf renders the bottom n rows of g in the same notation.
func rowsOf(g *Grid, n int) []string {
	out := make([]string, 0, n)
	for y := g.Height() - n; y < g.Height(); y++ {
		row := make([]byte, g.Width())
		for x := range row {
			c := g.At(x, y).Color
			if c == 0 {
				row[x] = '.'
			} else {
				row[x] = fmt.Sprint(c)[0]
			}
		}
		out = append(out, string(row))
	}
	return out
}

type particle struct {
	pos, vel Vec
	color    uint8
}

type recordingEffects struct {
	particles []particle
	texts     []string
	ripples   []Vec
}

func (r *recordingEffects) SpawnParticle(pos, vel Vec, color uint8) {
	r.particles = append(r.particles, particle{pos, vel, color})
}

func (r *recordingEffects) SpawnFloatText(_ Vec, text string) {
	r.texts = append(r.texts, text)
}

func (r *recordingEffects) SpawnRipple(center Vec, _ int) {
	r.ripples = append(r.ripples, center)
}
