package main

import (
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/plus3/tilefall/puzzle"
)

// softDropHold is how long soft drop stays on after the last down key event.
// Terminals report key presses and repeats but never releases.
const softDropHold = 150 * time.Millisecond

// Command is a non-movement key.
type Command int

const (
	CommandNone Command = iota
	CommandQuit
	CommandReset
	CommandLevelUp
	CommandConfirm
)

// keyInput collects key events between ticks. The terminal delivers its own
// auto-repeat, so every horizontal event moves the piece exactly once.
type keyInput struct {
	horizontal int
	rotation   int
	lastDown   time.Time
}

// handle records ev and returns the command it maps to, if any.
func (k *keyInput) handle(ev *tcell.EventKey, now time.Time) Command {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return CommandQuit
	case tcell.KeyEnter:
		return CommandConfirm
	case tcell.KeyLeft:
		k.horizontal--
	case tcell.KeyRight:
		k.horizontal++
	case tcell.KeyUp:
		k.rotation = -1
	case tcell.KeyDown:
		k.lastDown = now
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return CommandQuit
		case 'r':
			return CommandReset
		case 'l':
			return CommandLevelUp
		case ' ':
			return CommandConfirm
		case 'a', 'h':
			k.horizontal--
		case 'd':
			k.horizontal++
		case 'z', 'w':
			k.rotation = -1
		case 'x':
			k.rotation = 1
		case 's', 'j':
			k.lastDown = now
		}
	}
	return CommandNone
}

// take returns the input gathered since the previous call and starts a new tick.
func (k *keyInput) take(now time.Time) puzzle.Input {
	in := puzzle.Input{
		Horizontal: k.horizontal,
		Rotation:   k.rotation,
		SoftDrop:   !k.lastDown.IsZero() && now.Sub(k.lastDown) < softDropHold,
	}
	k.horizontal, k.rotation = 0, 0
	return in
}

// reset forgets pending input.
func (k *keyInput) reset() {
	*k = keyInput{}
}
