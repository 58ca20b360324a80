package ecs_test

import "github.com/plus3/tilefall/ecs"

type Position struct {
	X, Y float64
}

type Velocity struct {
	DX, DY float64
}

type Lifetime struct {
	RemainingMs int
}

type Label string

type Score int

func newTestRegistry() *ecs.ComponentRegistry {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Velocity](registry)
	ecs.RegisterComponent[Lifetime](registry)
	ecs.RegisterComponent[Label](registry)
	ecs.RegisterComponent[Score](registry)
	return registry
}
