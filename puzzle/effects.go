package puzzle

import "math"

// Vec is a position or velocity in board space, measured in tiles.
type Vec struct {
	X, Y float64
}

func (v Vec) Add(o Vec) Vec { return Vec{v.X + o.X, v.Y + o.Y} }
func (v Vec) Sub(o Vec) Vec { return Vec{v.X - o.X, v.Y - o.Y} }
func (v Vec) Scale(s float64) Vec { return Vec{v.X * s, v.Y * s} }
func (v Vec) Len() float64 { return math.Hypot(v.X, v.Y) }

// Normalize returns v scaled to unit length. A zero vector points straight up.
func (v Vec) Normalize() Vec {
	l := v.Len()
	if l == 0 {
		return Vec{0, -1}
	}
	return Vec{v.X / l, v.Y / l}
}

// Point is an integer tile coordinate.
type Point struct {
	X, Y int
}

// Centre returns the board-space centre of the tile at p.
func (p Point) Centre() Vec {
	return Vec{float64(p.X) + 0.5, float64(p.Y) + 0.5}
}

// EffectSink receives the visual requests emitted by the simulation. The
// simulation never renders anything itself.
type EffectSink interface {
	// SpawnParticle requests an explosion fragment; vel is in tiles per second.
	SpawnParticle(pos, vel Vec, color uint8)
	// SpawnFloatText requests a drifting score label.
	SpawnFloatText(pos Vec, text string)
	// SpawnRipple requests a shockwave centred on center.
	SpawnRipple(center Vec, durationMs int)
}

// NopEffects discards every request.
type NopEffects struct{}

func (NopEffects) SpawnParticle(Vec, Vec, uint8) {}
func (NopEffects) SpawnFloatText(Vec, string) {}
func (NopEffects) SpawnRipple(Vec, int) {}
