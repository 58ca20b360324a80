// Package ebiten hosts the debug UI on the Ebiten game engine.
package ebiten

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/tilefall/ecs"
)

// ImguiBackend wraps the Ebiten Dear ImGui backend.
type ImguiBackend struct {
	*ebitenbackend.EbitenBackend
}

// New creates the backend and its window. Dear ImGui's ini persistence is
// disabled so window layout does not leak between runs.
func New(title string, width, height int) *ImguiBackend {
	backend := ebitenbackend.NewEbitenBackend()
	backend.CreateWindow(title, width, height)
	imgui.CurrentIO().SetIniFilename("")
	return &ImguiBackend{EbitenBackend: backend}
}

// Update runs one scheduler frame between BeginFrame and EndFrame, so systems
// such as debugui.ImguiSystem may issue ImGui calls.
func (b *ImguiBackend) Update(scheduler *ecs.Scheduler, dt float64) {
	b.BeginFrame()
	scheduler.Once(dt)
	b.EndFrame()
}

// Overlay draws the ImGui frame on top of screen.
func (b *ImguiBackend) Overlay(screen *ebiten.Image) {
	b.Draw(screen)
}
