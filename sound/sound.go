// Package sound plays short synthesised cues for game events through the
// system speaker. A Player that failed to open the audio device stays silent.
package sound

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/plus3/tilefall/puzzle"
)

const SampleRate = beep.SampleRate(44100)

// Cue is a game event with a sound.
type Cue int

const (
	CueLand Cue = iota
	CueExplode
	CueLevelUp
	CueGameOver
)

// Event is a cue together with the chain multiplier it was raised at.
type Event struct {
	Cue        Cue
	Multiplier int
}

// Events compares two consecutive snapshots and reports what happened between them.
func Events(prev, next puzzle.Snapshot) []Event {
	var events []Event
	if next.Mode == puzzle.ModeGameOver {
		if prev.Mode != puzzle.ModeGameOver {
			events = append(events, Event{Cue: CueGameOver})
		}
		return events
	}
	if prev.Mode == puzzle.ModeActivePiece && next.Mode == puzzle.ModeExploding {
		events = append(events, Event{Cue: CueLand})
	}
	// an explosion doubles the multiplier, or leaves it at the cap
	if prev.Mode != puzzle.ModeActivePiece && next.Score > prev.Score {
		events = append(events, Event{Cue: CueExplode, Multiplier: prev.Multiplier})
	}
	if next.Level > prev.Level && next.PieceCount == prev.PieceCount+1 {
		events = append(events, Event{Cue: CueLevelUp})
	}
	return events
}

// Streamer builds the sound for an event.
func Streamer(sr beep.SampleRate, ev Event) (beep.Streamer, error) {
	switch ev.Cue {
	case CueLand:
		return tone(sr, 220, 40*time.Millisecond, 0.25)
	case CueExplode:
		// each step of a chain is a semitone higher
		step := math.Log2(float64(max(ev.Multiplier, 1)))
		return tone(sr, 523.25*math.Pow(2, step/12), 120*time.Millisecond, 0.35)
	case CueLevelUp:
		a, err := tone(sr, 659.25, 80*time.Millisecond, 0.3)
		if err != nil {
			return nil, err
		}
		b, err := tone(sr, 987.77, 120*time.Millisecond, 0.3)
		if err != nil {
			return nil, err
		}
		return beep.Seq(a, b), nil
	case CueGameOver:
		low, err := tone(sr, 110, 600*time.Millisecond, 0.3)
		if err != nil {
			return nil, err
		}
		fifth, err := tone(sr, 164.81, 600*time.Millisecond, 0.2)
		if err != nil {
			return nil, err
		}
		return beep.Mix(low, fifth), nil
	}
	return nil, fmt.Errorf("sound: unknown cue %d", ev.Cue)
}

func tone(sr beep.SampleRate, freq float64, d time.Duration, vol float64) (beep.Streamer, error) {
	sine, err := generators.SineTone(sr, freq)
	if err != nil {
		return nil, fmt.Errorf("sine tone %.1fHz: %w", freq, err)
	}
	return &effects.Volume{
		Streamer: beep.Take(sr.N(d), sine),
		Base:     2,
		Volume:   math.Log2(vol),
	}, nil
}

// Player mixes cues onto the speaker.
type Player struct {
	mu      sync.Mutex
	mixer   *beep.Mixer
	enabled bool
}

// NewPlayer returns a silent player; call Init to open the audio device.
func NewPlayer() *Player {
	return &Player{mixer: &beep.Mixer{}}
}

// Init opens the speaker. On error the player remains usable and silent.
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.enabled {
		return nil
	}
	if err := speaker.Init(SampleRate, SampleRate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(p.mixer)
	p.enabled = true
	return nil
}

// Play queues the sounds for events. It never blocks on audio.
func (p *Player) Play(events ...Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.enabled {
		return
	}
	for _, ev := range events {
		s, err := Streamer(SampleRate, ev)
		if err != nil {
			continue
		}
		speaker.Lock()
		p.mixer.Add(s)
		speaker.Unlock()
	}
}

// Close silences the player and releases the speaker.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.enabled {
		return
	}
	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	p.enabled = false
}
