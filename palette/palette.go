// Package palette maps tile colour indices to display colours shared by every
// frontend.
package palette

import "image/color"

var (
	Background = color.RGBA{0x10, 0x12, 0x1c, 0xff}
	Well       = color.RGBA{0x1c, 0x20, 0x30, 0xff}
	Text       = color.RGBA{0xe8, 0xe8, 0xf0, 0xff}
)

var tiles = [...]color.RGBA{
	{0x00, 0x00, 0x00, 0x00},
	{0xe0, 0x3c, 0x3c, 0xff},
	{0x3c, 0xb4, 0x4b, 0xff},
	{0x42, 0x7a, 0xe8, 0xff},
	{0xf0, 0xc8, 0x32, 0xff},
	{0xb4, 0x50, 0xdc, 0xff},
	{0x3c, 0xd2, 0xd2, 0xff},
	{0xf0, 0x8c, 0x3c, 0xff},
	{0xf0, 0xf0, 0xf0, 0xff},
	{0x96, 0x96, 0x96, 0xff},
}

// Tile returns the colour of a tile. Index 0 (empty) is transparent.
func Tile(c uint8) color.RGBA {
	return tiles[int(c)%len(tiles)]
}

// Shade scales the colour channels of c by f, clamped to 0..1.
func Shade(c color.RGBA, f float64) color.RGBA {
	f = min(max(f, 0), 1)
	return color.RGBA{
		R: uint8(float64(c.R) * f),
		G: uint8(float64(c.G) * f),
		B: uint8(float64(c.B) * f),
		A: c.A,
	}
}

// Fade scales every channel of the premultiplied colour c by f, clamped to 0..1.
func Fade(c color.RGBA, f float64) color.RGBA {
	f = min(max(f, 0), 1)
	return color.RGBA{
		R: uint8(float64(c.R) * f),
		G: uint8(float64(c.G) * f),
		B: uint8(float64(c.B) * f),
		A: uint8(float64(c.A) * f),
	}
}
