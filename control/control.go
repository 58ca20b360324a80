// Package control turns raw key state from a frontend into per-tick
// puzzle.Input values.
package control

import (
	"time"

	"github.com/plus3/tilefall/puzzle"
)

const (
	// MaxFrameMs caps a single simulation step so a stalled frame cannot
	// fast-forward the game.
	MaxFrameMs = 100

	DefaultInitialDelayMs = 200
	DefaultRepeatMs       = 100
)

// Clamp limits a frame delta to 0..MaxFrameMs.
func Clamp(ms int) int {
	return min(max(ms, 0), MaxFrameMs)
}

// FrameMs converts a measured frame duration to a clamped millisecond delta.
func FrameMs(d time.Duration) int {
	return Clamp(int(d / time.Millisecond))
}

// Intents is the key state sampled for one tick. Left, Right and Down are
// held states; the rotations are presses.
type Intents struct {
	Left      bool
	Right     bool
	RotateCW  bool
	RotateCCW bool
	Down      bool
}

// Repeater emits a held direction once when it changes, again after
// InitialDelayMs, then every RepeatMs.
type Repeater struct {
	InitialDelayMs int
	RepeatMs       int

	value   int
	timerMs int
}

// NewRepeater returns a repeater with the standard timings.
func NewRepeater() *Repeater {
	return &Repeater{InitialDelayMs: DefaultInitialDelayMs, RepeatMs: DefaultRepeatMs}
}

// Update feeds the held direction (-1, 0 or 1) for a tick of dtMs and returns
// the movement to apply this tick.
func (r *Repeater) Update(dir, dtMs int) int {
	if dir != r.value || dir == 0 {
		r.value = dir
		r.timerMs = 0
		return dir
	}

	r.timerMs += dtMs
	if r.timerMs < r.InitialDelayMs {
		return 0
	}
	r.timerMs = r.InitialDelayMs - r.RepeatMs
	return dir
}

// Controller maps intents to simulation input.
type Controller struct {
	repeat *Repeater
}

func NewController() *Controller {
	return &Controller{repeat: NewRepeater()}
}

// Input builds the simulation input for a tick of dtMs.
func (c *Controller) Input(in Intents, dtMs int) puzzle.Input {
	dir := 0
	if in.Left {
		dir--
	}
	if in.Right {
		dir++
	}

	rotation := 0
	if in.RotateCW {
		rotation = 1
	}
	if in.RotateCCW {
		rotation = -1
	}

	return puzzle.Input{
		Horizontal: c.repeat.Update(dir, dtMs),
		Rotation:   rotation,
		SoftDrop:   in.Down,
	}
}

// Reset forgets any held direction.
func (c *Controller) Reset() {
	*c.repeat = Repeater{InitialDelayMs: c.repeat.InitialDelayMs, RepeatMs: c.repeat.RepeatMs}
}
