package debugui

import (
	"fmt"
	"strings"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/tilefall/ecs"
)

// PerformanceWindow shows frame times, storage contents and per-system timings.
type PerformanceWindow struct {
	scheduler *ecs.Scheduler

	frameHistory []float32
	frameIndex   int
	lastFrame    time.Time
}

func NewPerformanceWindow(scheduler *ecs.Scheduler, historyFrames int) *PerformanceWindow {
	return &PerformanceWindow{
		scheduler:    scheduler,
		frameHistory: make([]float32, max(historyFrames, 1)),
	}
}

func (pw *PerformanceWindow) Title() string { return "Performance" }

// record stores the time since the previous call in the frame history ring.
func (pw *PerformanceWindow) record(now time.Time) {
	if !pw.lastFrame.IsZero() {
		pw.frameHistory[pw.frameIndex] = float32(now.Sub(pw.lastFrame).Seconds() * 1000)
		pw.frameIndex = (pw.frameIndex + 1) % len(pw.frameHistory)
	}
	pw.lastFrame = now
}

// AverageFrameMs is the mean of the recorded frame history.
func (pw *PerformanceWindow) AverageFrameMs() float32 {
	var total float32
	for _, ft := range pw.frameHistory {
		total += ft
	}
	return total / float32(len(pw.frameHistory))
}

func (pw *PerformanceWindow) Render() {
	pw.record(time.Now())

	imgui.SetNextWindowPosV(imgui.NewVec2(10, 10), imgui.CondOnce, imgui.NewVec2(0, 0))
	imgui.SetNextWindowSizeV(imgui.NewVec2(360, 420), imgui.CondOnce)
	if !imgui.BeginV(pw.Title(), nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	stats := pw.scheduler.Storage().CollectStats()
	imgui.Text(fmt.Sprintf("Entities: %d", stats.TotalEntityCount))
	imgui.Text(fmt.Sprintf("Archetypes: %d", stats.ArchetypeCount))
	imgui.Text(fmt.Sprintf("Singletons: %d", stats.SingletonCount))

	avg := pw.AverageFrameMs()
	if avg > 0 {
		imgui.Text(fmt.Sprintf("Avg Frame Time: %.2f ms (%.0f FPS)", avg, 1000/avg))
	}

	imgui.Separator()
	imgui.Text("Frame Time Graph (ms)")
	imgui.PlotLinesFloatPtr("##frametime", &pw.frameHistory[0], int32(len(pw.frameHistory)))

	if imgui.TreeNodeStr("Systems") {
		pw.renderSystems(pw.scheduler.GetStats())
		imgui.TreePop()
	}

	if imgui.TreeNodeStr("Archetypes") {
		renderArchetypes(stats.ArchetypeBreakdown)
		imgui.TreePop()
	}

	if imgui.TreeNodeStr("Singletons") {
		for _, name := range stats.SingletonTypes {
			imgui.BulletText(name)
		}
		imgui.TreePop()
	}

	imgui.End()
}

func (pw *PerformanceWindow) renderSystems(stats *ecs.SchedulerStats) {
	imgui.Text(fmt.Sprintf("Frames: %d", stats.TotalExecutions))

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
	if !imgui.BeginTableV("SystemTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
		return
	}
	imgui.TableSetupColumn("System")
	imgui.TableSetupColumn("Last")
	imgui.TableSetupColumn("Avg")
	imgui.TableSetupColumn("Max")
	imgui.TableHeadersRow()

	for _, sys := range stats.Systems {
		imgui.TableNextRow()
		imgui.TableNextColumn()
		imgui.Text(sys.Name)
		imgui.TableNextColumn()
		imgui.Text(sys.LastDuration.String())
		imgui.TableNextColumn()
		imgui.Text(sys.AvgDuration.String())
		imgui.TableNextColumn()
		imgui.Text(sys.MaxDuration.String())
	}
	imgui.EndTable()
}

func renderArchetypes(archetypes []ecs.ArchetypeStats) {
	maxEntities := 0
	for _, arch := range archetypes {
		maxEntities = max(maxEntities, arch.EntityCount)
	}

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
	if !imgui.BeginTableV("ArchetypeTable", 3, tableFlags, imgui.NewVec2(0, 0), 0) {
		return
	}
	imgui.TableSetupColumn("Id")
	imgui.TableSetupColumn("Components")
	imgui.TableSetupColumn("Entities")
	imgui.TableHeadersRow()

	for _, arch := range archetypes {
		imgui.TableNextRow()
		imgui.TableNextColumn()
		imgui.Text(fmt.Sprintf("0x%X", arch.Id))
		imgui.TableNextColumn()
		imgui.Text(shortTypeNames(arch.ComponentTypes))
		imgui.TableNextColumn()
		imgui.Text(fmt.Sprintf("%d", arch.EntityCount))

		if maxEntities > 0 {
			barWidth := float32(arch.EntityCount) / float32(maxEntities) * 60
			imgui.SameLine()
			pos := imgui.CursorScreenPos()
			color := imgui.ColorU32Vec4(imgui.NewVec4(0.2, 0.6, 0.8, 0.6))
			imgui.WindowDrawList().AddRectFilled(pos, imgui.NewVec2(pos.X+barWidth, pos.Y+10), color)
		}
	}
	imgui.EndTable()
}

// shortTypeNames drops package qualifiers, so "effects.Particle" reads "Particle".
func shortTypeNames(names []string) string {
	short := make([]string, len(names))
	for i, n := range names {
		if dot := strings.LastIndexByte(n, '.'); dot >= 0 {
			n = n[dot+1:]
		}
		short[i] = n
	}
	return strings.Join(short, ", ")
}
