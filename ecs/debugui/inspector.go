package debugui

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/tilefall/palette"
	"github.com/plus3/tilefall/puzzle"
)

// GroupRow describes one same-coloured region of the board.
type GroupRow struct {
	Id    int
	Color uint8
	Size  int
	// Critical is true when the group is large enough to explode.
	Critical bool
}

// BoardGroups regroups a copy of board and lists its groups, largest first.
func BoardGroups(board puzzle.Grid, criticalMass int) []GroupRow {
	board.CreateGroups()

	rows := make([]GroupRow, board.NumGroups())
	for i := range rows {
		rows[i] = GroupRow{Id: i, Size: board.GroupSize(i), Critical: board.GroupSize(i) >= criticalMass}
	}
	for x := 0; x < board.Width(); x++ {
		for y := 0; y < board.Height(); y++ {
			if t := board.At(x, y); t.Occupied() {
				rows[t.Group].Color = t.Color
			}
		}
	}

	slices.SortStableFunc(rows, func(a, b GroupRow) int {
		return cmp.Compare(b.Size, a.Size)
	})
	return rows
}

// SimulationInspector shows the internals of a running simulation and lets the
// developer pause, single-step, reset and bump the level.
type SimulationInspector struct {
	sim *puzzle.Simulation

	// OnReset runs after the inspector resets the simulation.
	OnReset func()

	Paused bool
	step   bool
}

func NewSimulationInspector(sim *puzzle.Simulation) *SimulationInspector {
	return &SimulationInspector{sim: sim}
}

func (si *SimulationInspector) Title() string { return "Simulation" }

// ShouldAdvance reports whether the game loop should update the simulation this
// frame. A pending single step is consumed.
func (si *SimulationInspector) ShouldAdvance() bool {
	if !si.Paused {
		return true
	}
	if si.step {
		si.step = false
		return true
	}
	return false
}

func (si *SimulationInspector) Render() {
	imgui.SetNextWindowPosV(imgui.NewVec2(10, 440), imgui.CondOnce, imgui.NewVec2(0, 0))
	imgui.SetNextWindowSizeV(imgui.NewVec2(360, 460), imgui.CondOnce)
	if !imgui.BeginV(si.Title(), nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	snap := si.sim.Snapshot()
	rules := si.sim.Rules()

	imgui.Text(fmt.Sprintf("Mode: %s", snap.Mode))
	imgui.Text(fmt.Sprintf("Score: %d", snap.Score))
	imgui.Text(fmt.Sprintf("Level: %d  (gravity %dms, %d colours)", snap.Level, rules.Gravity[snap.Level], rules.Colors[snap.Level]))
	imgui.Text(fmt.Sprintf("Multiplier: x%d", snap.Multiplier))
	imgui.Text(fmt.Sprintf("Pieces: %d", snap.PieceCount))
	imgui.Text(fmt.Sprintf("Timer: %dms  Land timer: %dms", si.sim.TimerMs(), si.sim.LandTimerMs()))
	imgui.Text(fmt.Sprintf("Piece at: (%d, %d)", snap.PiecePos.X, snap.PiecePos.Y))

	imgui.Separator()
	imgui.Checkbox("Paused", &si.Paused)
	imgui.SameLine()
	if imgui.Button("Step") {
		si.step = true
	}
	imgui.SameLine()
	if imgui.Button("Level up") {
		si.sim.AdvanceLevel()
	}
	imgui.SameLine()
	if imgui.Button("Reset") {
		si.sim.Reset()
		if si.OnReset != nil {
			si.OnReset()
		}
	}

	imgui.Separator()
	drawBoard(&snap)

	if imgui.TreeNodeStr("Groups") {
		renderGroups(BoardGroups(snap.Board, rules.CriticalMass))
		imgui.TreePop()
	}

	imgui.End()
}

const previewCell = 10

// drawBoard paints the board and the active piece as coloured squares.
func drawBoard(snap *puzzle.Snapshot) {
	drawList := imgui.WindowDrawList()
	origin := imgui.CursorScreenPos()
	w, h := snap.Board.Width(), snap.Board.Height()

	well := imgui.ColorU32Vec4(imgui.NewVec4(0.11, 0.12, 0.19, 1))
	drawList.AddRectFilled(origin, imgui.NewVec2(origin.X+float32(w*previewCell), origin.Y+float32(h*previewCell)), well)

	cellAt := func(x, y int, c uint8, alpha float32) {
		col := palette.Tile(c)
		lo := imgui.NewVec2(origin.X+float32(x*previewCell), origin.Y+float32(y*previewCell))
		hi := imgui.NewVec2(lo.X+previewCell-1, lo.Y+previewCell-1)
		rgba := imgui.NewVec4(float32(col.R)/255, float32(col.G)/255, float32(col.B)/255, alpha)
		drawList.AddRectFilled(lo, hi, imgui.ColorU32Vec4(rgba))
	}

	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			if t := snap.Board.At(x, y); t.Occupied() {
				cellAt(x, y, t.Color, 1)
			}
		}
	}
	for x := 0; x < snap.Active.Width(); x++ {
		for y := 0; y < snap.Active.Height(); y++ {
			bx, by := snap.PiecePos.X+x, snap.PiecePos.Y+y
			if t := snap.Active.At(x, y); t.Occupied() && snap.Board.Valid(bx, by) {
				cellAt(bx, by, t.Color, 0.6)
			}
		}
	}

	imgui.Dummy(imgui.NewVec2(float32(w*previewCell), float32(h*previewCell)))
}

func renderGroups(rows []GroupRow) {
	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
	if !imgui.BeginTableV("GroupTable", 3, tableFlags, imgui.NewVec2(0, 0), 0) {
		return
	}
	imgui.TableSetupColumn("Group")
	imgui.TableSetupColumn("Colour")
	imgui.TableSetupColumn("Size")
	imgui.TableHeadersRow()

	for _, row := range rows {
		imgui.TableNextRow()
		imgui.TableNextColumn()
		imgui.Text(fmt.Sprintf("%d", row.Id))
		imgui.TableNextColumn()
		imgui.Text(fmt.Sprintf("%d", row.Color))
		imgui.TableNextColumn()
		if row.Critical {
			imgui.TextColored(imgui.NewVec4(1, 0.4, 0.3, 1), fmt.Sprintf("%d!", row.Size))
		} else {
			imgui.Text(fmt.Sprintf("%d", row.Size))
		}
	}
	imgui.EndTable()
}
