// Package debugui draws Dear ImGui developer windows from inside the ECS
// frame. Windows are entities carrying an ImguiItem; ImguiSystem queues their
// render functions so they run after every other system has updated.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/tilefall/ecs"
)

// ImguiItem is a component that holds a Dear ImGui render function.
type ImguiItem struct {
	Name   string
	Render func()
}

// ImguiInputState mirrors Dear ImGui's input capture flags. Game input should be
// ignored while a window wants the keyboard.
type ImguiInputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// ImguiSystem refreshes ImguiInputState and defers every ImguiItem render.
type ImguiSystem struct {
	Items      ecs.Query[struct{ *ImguiItem }]
	InputState ecs.Singleton[ImguiInputState]
}

func (i *ImguiSystem) Execute(frame *ecs.UpdateFrame) {
	if state := i.InputState.Get(); state != nil {
		io := imgui.CurrentIO()
		state.WantCaptureMouse = io.WantCaptureMouse()
		state.WantCaptureKeyboard = io.WantCaptureKeyboard()
	}

	for item := range i.Items.Values() {
		if item.Render != nil {
			frame.Commands.Defer(item.Render)
		}
	}
}

// Register adds the debug UI components to registry.
func Register(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[ImguiItem](registry)
	ecs.RegisterComponent[ImguiInputState](registry)
}

// Window is anything that can draw itself as an ImGui window.
type Window interface {
	Title() string
	Render()
}

// Spawn creates the input state singleton and one ImguiItem entity per window.
func Spawn(storage *ecs.Storage, windows ...Window) {
	if ecs.ReadSingleton[ImguiInputState](storage) == nil {
		storage.AddSingleton(ImguiInputState{})
	}
	for _, w := range windows {
		storage.Spawn(ImguiItem{Name: w.Title(), Render: w.Render})
	}
}

// WantsKeyboard reports whether ImGui currently owns keyboard input.
func WantsKeyboard(storage *ecs.Storage) bool {
	state := ecs.ReadSingleton[ImguiInputState](storage)
	return state != nil && state.WantCaptureKeyboard
}
