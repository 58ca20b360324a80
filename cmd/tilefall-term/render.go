package main

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/plus3/tilefall/effects"
	"github.com/plus3/tilefall/palette"
	"github.com/plus3/tilefall/puzzle"
)

const (
	// each tile is two terminal cells wide so the board looks square
	cellWidth = 2

	boardLeft = 2
	boardTop  = 1
	sideLeft  = boardLeft + puzzle.BoardWidth*cellWidth + 4
)

func rgb(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

var (
	backgroundStyle = tcell.StyleDefault.Background(rgb(palette.Background)).Foreground(rgb(palette.Text))
	wellStyle       = tcell.StyleDefault.Background(rgb(palette.Well)).Foreground(rgb(palette.Shade(palette.Text, 0.25)))
	dimStyle        = backgroundStyle.Foreground(rgb(palette.Shade(palette.Text, 0.6)))
)

func drawText(s tcell.Screen, x, y int, text string, style tcell.Style) {
	for i, r := range []rune(text) {
		s.SetContent(x+i, y, r, nil, style)
	}
}

// boardCell maps a board tile to the terminal column and row of its left half.
func boardCell(x, y int) (int, int) {
	return boardLeft + x*cellWidth, boardTop + y
}

// vecCell maps a board-space position in tiles to a terminal cell.
func vecCell(v puzzle.Vec) (int, int) {
	return boardLeft + int(math.Floor(v.X*cellWidth)), boardTop + int(math.Floor(v.Y))
}

func tileStyle(c uint8, fade float64) tcell.Style {
	col := palette.Shade(palette.Tile(c), fade)
	return tcell.StyleDefault.Background(rgb(col)).Foreground(rgb(palette.Shade(col, 0.7)))
}

// tileRunes picks the glyphs for a tile so a join to the right stays solid and
// an unjoined edge shows a thin gap.
func tileRunes(t puzzle.Tile) (rune, rune) {
	if t.Connect&puzzle.ConnectRight != 0 {
		return ' ', ' '
	}
	return ' ', '▕'
}

func drawGrid(s tcell.Screen, g *puzzle.Grid, left, top, ox, oy int, fade float64) {
	for x := 0; x < g.Width(); x++ {
		for y := 0; y < g.Height(); y++ {
			t := g.At(x, y)
			if !t.Occupied() || oy+y < 0 {
				continue
			}
			cx, cy := left+(ox+x)*cellWidth, top+oy+y
			a, b := tileRunes(t)
			style := tileStyle(t.Color, fade)
			s.SetContent(cx, cy, a, nil, style)
			s.SetContent(cx+1, cy, b, nil, style)
		}
	}
}

func drawScene(s tcell.Screen, snap *puzzle.Snapshot, fx *effects.Manager, muted bool) {
	s.Fill(' ', backgroundStyle)

	w, h := snap.Board.Width(), snap.Board.Height()
	for y := 0; y < h; y++ {
		cx, cy := boardCell(0, y)
		s.SetContent(cx-1, cy, '│', nil, dimStyle)
		for x := 0; x < w; x++ {
			s.SetContent(cx+x*cellWidth, cy, '·', nil, wellStyle)
			s.SetContent(cx+x*cellWidth+1, cy, ' ', nil, wellStyle)
		}
		s.SetContent(cx+w*cellWidth, cy, '│', nil, dimStyle)
	}
	drawText(s, boardLeft-1, boardTop+h, "└"+strings.Repeat("─", w*cellWidth)+"┘", dimStyle)

	fade := 1.0
	if snap.Mode == puzzle.ModeGameOver {
		fade = 0.45
	}
	drawGrid(s, &snap.Board, boardLeft, boardTop, 0, 0, fade)
	if snap.Mode == puzzle.ModeActivePiece {
		drawGrid(s, &snap.Active, boardLeft, boardTop, snap.PiecePos.X, snap.PiecePos.Y, 1)
	}

	drawEffects(s, fx, w, h)
	drawSidebar(s, snap, muted)

	if snap.Mode == puzzle.ModeGameOver {
		cx, cy := boardCell(w/2, h/2)
		msg := "GAME OVER"
		drawText(s, cx-len(msg)/2, cy, msg, backgroundStyle.Bold(true))
		if snap.GameOverReady {
			msg = "enter: play again"
			drawText(s, cx-len(msg)/2, cy+1, msg, dimStyle)
		}
	}
}

func drawSidebar(s tcell.Screen, snap *puzzle.Snapshot, muted bool) {
	drawText(s, sideLeft, boardTop, "NEXT", backgroundStyle.Bold(true))
	drawGrid(s, &snap.Next, sideLeft, boardTop+1, 0, 0, 1)

	y := boardTop + puzzle.PieceSize + 2
	lines := []string{
		fmt.Sprintf("SCORE  %d", snap.Score),
		fmt.Sprintf("LEVEL  %d", snap.Level),
		fmt.Sprintf("PIECES %d", snap.PieceCount),
	}
	if snap.Multiplier > 1 {
		lines = append(lines, fmt.Sprintf("CHAIN  x%d", snap.Multiplier))
	}
	for _, line := range lines {
		drawText(s, sideLeft, y, line, backgroundStyle)
		y++
	}

	y++
	help := []string{"←/→ a/d  move", "↑ z x    rotate", "↓ s      drop", "r        restart", "q/esc    quit"}
	if muted {
		help = append(help, "(sound off)")
	}
	for _, line := range help {
		drawText(s, sideLeft, y, line, dimStyle)
		y++
	}
}

func drawEffects(s tcell.Screen, fx *effects.Manager, w, h int) {
	inBoard := func(cx, cy int) bool {
		return cx >= boardLeft && cx < boardLeft+w*cellWidth && cy >= boardTop && cy < boardTop+h
	}

	if r, ok := fx.Ripple(); ok {
		radius := r.Progress() * 3
		style := wellStyle.Foreground(rgb(palette.Shade(palette.Text, 1-r.Progress())))
		for x := 0; x < w; x++ {
			for y := 0; y < h; y++ {
				c := puzzle.Point{X: x, Y: y}.Centre()
				if math.Abs(c.Sub(r.Center).Len()-radius) < 0.5 {
					cx, cy := boardCell(x, y)
					s.SetContent(cx, cy, '░', nil, style)
				}
			}
		}
	}

	for p := range fx.Particles() {
		cx, cy := vecCell(p.Pos)
		if !inBoard(cx, cy) {
			continue
		}
		style := wellStyle.Foreground(rgb(palette.Shade(palette.Tile(p.Color), p.Fade())))
		s.SetContent(cx, cy, '*', nil, style)
	}

	for t := range fx.Texts() {
		cx, cy := vecCell(t.Pos)
		if cy < boardTop {
			continue
		}
		style := backgroundStyle.Foreground(rgb(palette.Shade(palette.Text, t.Fade()))).Bold(true)
		drawText(s, cx-len(t.Text)/2, cy, t.Text, style)
	}
}
