// Package effects keeps the short-lived visuals requested by the puzzle
// simulation (explosion fragments, score labels and the shockwave ripple) as
// ecs entities, and ages them with systems run by an ecs.Scheduler.
package effects

import (
	"iter"
	"math/rand/v2"

	"github.com/plus3/tilefall/ecs"
	"github.com/plus3/tilefall/puzzle"
)

const (
	ParticleLifeMs = 1000
	TextLifeMs     = 2000

	// fragments start part way through their life so a burst fades unevenly
	particleMaxStartAgeMs = 200

	// board-space units: tiles, tiles per second, tiles per second squared
	particleKick    = 6.0
	particleGravity = 18.0
	textRiseSpeed   = 1.5
)

// Particle is an explosion fragment.
type Particle struct {
	Pos   puzzle.Vec
	Vel   puzzle.Vec
	Color uint8
	AgeMs int
}

// Fade is 1 for a new particle and 0 at the end of its life.
func (p Particle) Fade() float64 {
	return max(0, float64(ParticleLifeMs-p.AgeMs)/ParticleLifeMs)
}

// FloatText is a score label drifting up from an explosion.
type FloatText struct {
	Pos   puzzle.Vec
	Text  string
	AgeMs int
}

// Fade is 1 for a new label and 0 at the end of its life.
func (t FloatText) Fade() float64 {
	return max(0, float64(TextLifeMs-t.AgeMs)/TextLifeMs)
}

// Ripple is the shockwave of the most recent explosion. There is at most one.
type Ripple struct {
	Center      puzzle.Vec
	RemainingMs int
	DurationMs  int
}

// Active reports whether the ripple is still visible.
func (r Ripple) Active() bool {
	return r.RemainingMs > 0
}

// Progress runs from 0 when the ripple starts to 1 when it ends.
func (r Ripple) Progress() float64 {
	if r.DurationMs <= 0 {
		return 1
	}
	return 1 - float64(r.RemainingMs)/float64(r.DurationMs)
}

// Register adds the effect components to registry.
func Register(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[Particle](registry)
	ecs.RegisterComponent[FloatText](registry)
}

type particleItem struct {
	*Particle
}

type textItem struct {
	*FloatText
}

// Manager is a puzzle.EffectSink that stores effects in an ecs.Storage.
type Manager struct {
	storage *ecs.Storage
	rng     *rand.Rand

	particles *ecs.View[particleItem]
	texts     *ecs.View[textItem]
	ripple    *ecs.Singleton[Ripple]
}

var _ puzzle.EffectSink = (*Manager)(nil)

// New registers the effect components with the storage's registry and returns
// a manager spawning into storage.
func New(storage *ecs.Storage, rng *rand.Rand) *Manager {
	Register(storage.Registry())
	return &Manager{
		storage:   storage,
		rng:       rng,
		particles: ecs.NewView[particleItem](storage),
		texts:     ecs.NewView[textItem](storage),
		ripple:    ecs.NewSingleton[Ripple](storage),
	}
}

func (m *Manager) SpawnParticle(pos, vel puzzle.Vec, color uint8) {
	vel.Y -= particleKick
	m.storage.Spawn(Particle{
		Pos:   pos,
		Vel:   vel,
		Color: color,
		AgeMs: m.rng.IntN(particleMaxStartAgeMs),
	})
}

func (m *Manager) SpawnFloatText(pos puzzle.Vec, text string) {
	m.storage.Spawn(FloatText{Pos: pos, Text: text})
}

func (m *Manager) SpawnRipple(center puzzle.Vec, durationMs int) {
	*m.ripple.Get() = Ripple{Center: center, RemainingMs: durationMs, DurationMs: durationMs}
}

// Clear removes every effect, leaving other entities in the storage alone.
func (m *Manager) Clear() {
	var ids []ecs.EntityId
	for id := range m.particles.Iter() {
		ids = append(ids, id)
	}
	for id := range m.texts.Iter() {
		ids = append(ids, id)
	}
	for _, id := range ids {
		m.storage.Delete(id)
	}
	*m.ripple.Get() = Ripple{}
}

// Systems returns the systems that age and expire effects, in the order they
// should be registered.
func (m *Manager) Systems() []ecs.System {
	return []ecs.System{&ParticleSystem{}, &FloatTextSystem{}, &RippleSystem{}}
}

// Particles yields a copy of every live particle.
func (m *Manager) Particles() iter.Seq[Particle] {
	return func(yield func(Particle) bool) {
		for item := range m.particles.Values() {
			if !yield(*item.Particle) {
				return
			}
		}
	}
}

// Texts yields a copy of every live label.
func (m *Manager) Texts() iter.Seq[FloatText] {
	return func(yield func(FloatText) bool) {
		for item := range m.texts.Values() {
			if !yield(*item.FloatText) {
				return
			}
		}
	}
}

// Ripple returns the current ripple and whether it is visible.
func (m *Manager) Ripple() (Ripple, bool) {
	r := *m.ripple.Get()
	return r, r.Active()
}

// ParticleSystem moves fragments under gravity and removes expired ones.
type ParticleSystem struct {
	Items ecs.Query[particleItem]
}

func (s *ParticleSystem) Execute(frame *ecs.UpdateFrame) {
	dt := frame.DeltaTime
	ms := frame.DeltaMs()
	for id, p := range s.Items.Iter() {
		p.AgeMs += ms
		if p.AgeMs >= ParticleLifeMs {
			frame.Commands.Delete(id)
			continue
		}
		p.Pos = p.Pos.Add(p.Vel.Scale(dt))
		p.Vel.Y += particleGravity * dt
	}
}

// FloatTextSystem drifts labels upward and removes expired ones.
type FloatTextSystem struct {
	Items ecs.Query[textItem]
}

func (s *FloatTextSystem) Execute(frame *ecs.UpdateFrame) {
	ms := frame.DeltaMs()
	for id, t := range s.Items.Iter() {
		t.AgeMs += ms
		if t.AgeMs >= TextLifeMs {
			frame.Commands.Delete(id)
			continue
		}
		t.Pos.Y -= textRiseSpeed * frame.DeltaTime
	}
}

// RippleSystem counts the ripple down.
type RippleSystem struct {
	Ripple ecs.Singleton[Ripple]
}

func (s *RippleSystem) Execute(frame *ecs.UpdateFrame) {
	r := s.Ripple.Get()
	if r == nil || r.RemainingMs <= 0 {
		return
	}
	r.RemainingMs = max(0, r.RemainingMs-frame.DeltaMs())
}
