package ecs

// UpdateFrame is handed to every system of one scheduler pass.
type UpdateFrame struct {
	// DeltaTime is the frame length in seconds.
	DeltaTime float64
	Commands  *Commands
	Storage   *Storage
}

// DeltaMs is DeltaTime in whole milliseconds.
func (f *UpdateFrame) DeltaMs() int {
	return int(f.DeltaTime*1000 + 0.5)
}
