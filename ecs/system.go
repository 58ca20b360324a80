package ecs

// System is one step of a frame. Implementations are usually struct pointers
// whose Query and Singleton fields are bound by Scheduler.Register; other
// fields are free to hold state between frames.
type System interface {
	Execute(frame *UpdateFrame)
}

// SystemFunc adapts a plain function to System.
type SystemFunc func(frame *UpdateFrame)

func (f SystemFunc) Execute(frame *UpdateFrame) { f(frame) }
