package ecs_test

import (
	"testing"

	"github.com/plus3/tilefall/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mover struct {
	*Position
	*Velocity
}

type labelled struct {
	*Position
	Label *Label `ecs:"optional"`
}

func TestViewGet(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	view := ecs.NewView[mover](storage)

	moving := storage.Spawn(Position{X: 1}, Velocity{DX: 2})
	still := storage.Spawn(Position{X: 3})

	m := view.Get(moving)
	require.NotNil(t, m)
	assert.Equal(t, 1.0, m.Position.X)
	assert.Equal(t, 2.0, m.Velocity.DX)

	m.Position.X += m.Velocity.DX
	assert.Equal(t, 3.0, ecs.ReadComponent[Position](storage, moving).X)

	assert.Nil(t, view.Get(still), "missing required component")

	storage.Delete(moving)
	assert.Nil(t, view.Get(moving))
}

func TestViewOptional(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	view := ecs.NewView[labelled](storage)

	named := storage.Spawn(Position{X: 1}, Label("a"))
	anon := storage.Spawn(Position{X: 2}, Velocity{})

	got := view.Get(named)
	require.NotNil(t, got)
	require.NotNil(t, got.Label)
	assert.Equal(t, Label("a"), *got.Label)

	got = view.Get(anon)
	require.NotNil(t, got)
	assert.Nil(t, got.Label)
	assert.Equal(t, 2.0, got.Position.X)
}

func TestViewIterOrder(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	view := ecs.NewView[labelled](storage)

	storage.Spawn(Position{X: 1}, Label("first archetype"))
	storage.Spawn(Position{X: 2})
	storage.Spawn(Position{X: 3}, Label("first archetype"))
	storage.Spawn(Velocity{})

	var xs []float64
	for _, item := range view.Iter() {
		xs = append(xs, item.Position.X)
	}
	assert.Equal(t, []float64{1, 3, 2}, xs, "archetypes in creation order, slots in order")

	count := 0
	for range view.Values() {
		count++
		break
	}
	assert.Equal(t, 1, count, "early break stops iteration")
}

func TestViewSpawn(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	view := ecs.NewView[labelled](storage)

	label := Label("spawned")
	id := view.Spawn(labelled{Position: &Position{X: 9}, Label: &label})
	assert.Equal(t, Label("spawned"), *ecs.ReadComponent[Label](storage, id))

	id = view.Spawn(labelled{Position: &Position{X: 8}})
	assert.Nil(t, ecs.ReadComponent[Label](storage, id))
	assert.Equal(t, 8.0, ecs.ReadComponent[Position](storage, id).X)

	assert.Panics(t, func() { view.Spawn(labelled{}) })
}

func TestViewInvalidTypes(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	assert.Panics(t, func() { ecs.NewView[int](storage) })
	assert.Panics(t, func() { ecs.NewView[struct{ P Position }](storage) })
	assert.Panics(t, func() {
		ecs.NewView[struct {
			P *Position `ecs:"sometimes"`
		}](storage)
	})
}
