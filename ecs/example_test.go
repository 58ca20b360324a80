package ecs_test

import (
	"fmt"

	"github.com/plus3/tilefall/ecs"
)

type falling struct {
	*Position
	*Velocity
}

type fallSystem struct {
	Items ecs.Query[falling]
}

func (s *fallSystem) Execute(frame *ecs.UpdateFrame) {
	for id, item := range s.Items.Iter() {
		item.Position.Y += item.Velocity.DY * frame.DeltaTime
		if item.Position.Y >= 10 {
			frame.Commands.Delete(id)
		}
	}
}

// Example shows a system moving entities and removing them through the
// frame's command buffer.
func Example() {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Velocity](registry)

	storage := ecs.NewStorage(registry)
	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(&fallSystem{})

	storage.Spawn(Position{Y: 0}, Velocity{DY: 4})
	storage.Spawn(Position{Y: 7}, Velocity{DY: 4})

	for frame := 1; frame <= 3; frame++ {
		scheduler.Once(1)
		fmt.Printf("frame %d: %d entities\n", frame, storage.Len())
	}

	// Output:
	// frame 1: 1 entities
	// frame 2: 1 entities
	// frame 3: 0 entities
}

// ExampleNewSingleton shows that every handle to a singleton shares one value.
func ExampleNewSingleton() {
	storage := ecs.NewStorage(ecs.NewComponentRegistry())

	best := ecs.NewSingleton[Score](storage, 100)
	*best.Get() = 250

	again := ecs.NewSingleton[Score](storage, 999)
	fmt.Println(*again.Get(), *ecs.ReadSingleton[Score](storage))

	// Output:
	// 250 250
}
