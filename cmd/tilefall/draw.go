package main

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/plus3/tilefall/effects"
	"github.com/plus3/tilefall/palette"
	"github.com/plus3/tilefall/puzzle"
)

const (
	tileSize = 32
	tileGap  = 2

	boardX = 40
	boardY = 44

	sideX = boardX + puzzle.BoardWidth*tileSize + 40

	rippleRadius = 4 // tiles
)

// toScreen maps a board-space position in tiles to pixels.
func toScreen(v puzzle.Vec) (float32, float32) {
	return boardX + float32(v.X*tileSize), boardY + float32(v.Y*tileSize)
}

// tileRects returns the rectangles that draw one tile at pixel (x, y): an inset
// body plus a bridge across the gap toward every connected neighbour, so joined
// tiles read as one shape.
func tileRects(x, y float32, c puzzle.Connection) [][4]float32 {
	const in = tileGap
	const body = tileSize - 2*tileGap
	rects := [][4]float32{{x + in, y + in, body, body}}
	if c&puzzle.ConnectLeft != 0 {
		rects = append(rects, [4]float32{x, y + in, in, body})
	}
	if c&puzzle.ConnectRight != 0 {
		rects = append(rects, [4]float32{x + tileSize - in, y + in, in, body})
	}
	if c&puzzle.ConnectUp != 0 {
		rects = append(rects, [4]float32{x + in, y, body, in})
	}
	if c&puzzle.ConnectDown != 0 {
		rects = append(rects, [4]float32{x + in, y + tileSize - in, body, in})
	}
	return rects
}

func drawTile(screen *ebiten.Image, x, y float32, t puzzle.Tile, clr color.Color) {
	for _, r := range tileRects(x, y, t.Connect) {
		vector.DrawFilledRect(screen, r[0], r[1], r[2], r[3], clr, false)
	}
}

// drawGrid draws every occupied tile of g with its origin at tile (ox, oy) of
// the board. Rows above the board are skipped.
func drawGrid(screen *ebiten.Image, g *puzzle.Grid, ox, oy int, originX, originY float32, fade float64) {
	for x := 0; x < g.Width(); x++ {
		for y := 0; y < g.Height(); y++ {
			t := g.At(x, y)
			if !t.Occupied() || oy+y < 0 {
				continue
			}
			px := originX + float32((ox+x)*tileSize)
			py := originY + float32((oy+y)*tileSize)
			drawTile(screen, px, py, t, palette.Shade(palette.Tile(t.Color), fade))
		}
	}
}

func drawScene(screen *ebiten.Image, snap *puzzle.Snapshot, fx *effects.Manager) {
	screen.Fill(palette.Background)

	w := float32(snap.Board.Width() * tileSize)
	h := float32(snap.Board.Height() * tileSize)
	vector.DrawFilledRect(screen, boardX, boardY, w, h, palette.Well, false)
	vector.StrokeRect(screen, boardX-1, boardY-1, w+2, h+2, 2, palette.Shade(palette.Text, 0.5), false)

	boardFade := 1.0
	if snap.Mode == puzzle.ModeGameOver {
		boardFade = 0.45
	}
	drawGrid(screen, &snap.Board, 0, 0, boardX, boardY, boardFade)
	if snap.Mode == puzzle.ModeActivePiece {
		drawGrid(screen, &snap.Active, snap.PiecePos.X, snap.PiecePos.Y, boardX, boardY, 1)
	}

	drawSidebar(screen, snap)
	drawEffects(screen, fx)

	if snap.Mode == puzzle.ModeGameOver {
		drawGameOver(screen, snap)
	}
}

func drawSidebar(screen *ebiten.Image, snap *puzzle.Snapshot) {
	face := basicfont.Face7x13

	text.Draw(screen, "NEXT", face, sideX, boardY+10, palette.Text)
	vector.DrawFilledRect(screen, sideX, boardY+20, puzzle.PieceSize*tileSize, puzzle.PieceSize*tileSize, palette.Well, false)
	drawGrid(screen, &snap.Next, 0, 0, sideX, boardY+20, 1)

	lines := []string{
		fmt.Sprintf("SCORE  %d", snap.Score),
		fmt.Sprintf("LEVEL  %d", snap.Level),
		fmt.Sprintf("PIECES %d", snap.PieceCount),
	}
	if snap.Multiplier > 1 {
		lines = append(lines, fmt.Sprintf("CHAIN  x%d", snap.Multiplier))
	}
	y := boardY + 20 + puzzle.PieceSize*tileSize + 30
	for _, line := range lines {
		text.Draw(screen, line, face, sideX, y, palette.Text)
		y += 20
	}

	y += 20
	for _, help := range []string{"arrows  move", "up/z/x  rotate", "down    drop", "r       restart", "esc     quit"} {
		text.Draw(screen, help, face, sideX, y, palette.Shade(palette.Text, 0.6))
		y += 16
	}
}

func drawEffects(screen *ebiten.Image, fx *effects.Manager) {
	if r, ok := fx.Ripple(); ok {
		cx, cy := toScreen(r.Center)
		radius := float32(r.Progress() * rippleRadius * tileSize)
		clr := palette.Fade(color.RGBA{0xff, 0xff, 0xff, 0xff}, 1-r.Progress())
		vector.StrokeCircle(screen, cx, cy, radius, 3, clr, true)
	}

	for p := range fx.Particles() {
		x, y := toScreen(p.Pos)
		vector.DrawFilledCircle(screen, x, y, 3, palette.Fade(palette.Tile(p.Color), p.Fade()), true)
	}

	face := basicfont.Face7x13
	for t := range fx.Texts() {
		x, y := toScreen(t.Pos)
		width := len(t.Text) * 7
		text.Draw(screen, t.Text, face, int(x)-width/2, int(y), palette.Fade(palette.Text, t.Fade()))
	}
}

func drawGameOver(screen *ebiten.Image, snap *puzzle.Snapshot) {
	face := basicfont.Face7x13
	cx := boardX + snap.Board.Width()*tileSize/2
	cy := boardY + snap.Board.Height()*tileSize/2

	msg := "GAME OVER"
	text.Draw(screen, msg, face, cx-len(msg)*7/2, cy, palette.Text)
	if snap.GameOverReady {
		msg = "press enter to play again"
		text.Draw(screen, msg, face, cx-len(msg)*7/2, cy+24, palette.Shade(palette.Text, 0.7))
	}
}
