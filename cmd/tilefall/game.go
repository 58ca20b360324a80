package main

import (
	"math/rand/v2"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/rs/zerolog"

	"github.com/plus3/tilefall/control"
	"github.com/plus3/tilefall/ecs"
	"github.com/plus3/tilefall/ecs/debugui"
	debugui_ebiten "github.com/plus3/tilefall/ecs/debugui/ebiten"
	"github.com/plus3/tilefall/effects"
	"github.com/plus3/tilefall/puzzle"
)

type Options struct {
	Rules      puzzle.Rules
	Seed       uint64
	StartLevel int
	Debug      bool
	Logger     zerolog.Logger
}

// Game implements ebiten.Game around one simulation.
type Game struct {
	log zerolog.Logger

	sim        *puzzle.Simulation
	snap       puzzle.Snapshot
	effects    *effects.Manager
	storage    *ecs.Storage
	scheduler  *ecs.Scheduler
	controller *control.Controller
	startLevel int

	backend     *debugui_ebiten.ImguiBackend
	inspector   *debugui.SimulationInspector
	showOverlay bool

	lastUpdate time.Time
}

func NewGame(opts Options) *Game {
	g := &Game{
		log:        opts.Logger,
		controller: control.NewController(),
		startLevel: opts.StartLevel,
	}

	registry := ecs.NewComponentRegistry()
	g.storage = ecs.NewStorage(registry)
	g.effects = effects.New(g.storage, rand.New(rand.NewPCG(opts.Seed, ^opts.Seed)))
	g.scheduler = ecs.NewScheduler(g.storage)
	for _, sys := range g.effects.Systems() {
		g.scheduler.Register(sys)
	}

	g.sim = puzzle.New(
		puzzle.WithRules(opts.Rules),
		puzzle.WithSeed(opts.Seed),
		puzzle.WithEffects(g.effects),
		puzzle.WithLogger(opts.Logger.With().Str("component", "puzzle").Logger()),
	)
	g.applyStartLevel()

	if opts.Debug {
		g.backend = debugui_ebiten.New("Tilefall (debug)", ScreenWidth+400, ScreenHeight+320)
		debugui.Register(registry)
		g.scheduler.Register(&debugui.ImguiSystem{})

		g.inspector = debugui.NewSimulationInspector(g.sim)
		g.inspector.OnReset = g.afterReset
		debugui.Spawn(g.storage, g.inspector, debugui.NewPerformanceWindow(g.scheduler, 120))
		g.showOverlay = true
	}

	g.snap = g.sim.Snapshot()
	return g
}

func (g *Game) applyStartLevel() {
	for g.sim.Level() < g.startLevel {
		g.sim.AdvanceLevel()
	}
}

func (g *Game) reset() {
	g.sim.Reset()
	g.afterReset()
}

func (g *Game) afterReset() {
	g.applyStartLevel()
	g.effects.Clear()
	g.controller.Reset()
	g.snap = g.sim.Snapshot()
}

func (g *Game) keyboardCaptured() bool {
	return g.backend != nil && g.showOverlay && debugui.WantsKeyboard(g.storage)
}

// intents samples the held movement keys and the rotation presses.
func intents() control.Intents {
	return control.Intents{
		Left:      ebiten.IsKeyPressed(ebiten.KeyLeft) || ebiten.IsKeyPressed(ebiten.KeyA),
		Right:     ebiten.IsKeyPressed(ebiten.KeyRight) || ebiten.IsKeyPressed(ebiten.KeyD),
		Down:      ebiten.IsKeyPressed(ebiten.KeyDown) || ebiten.IsKeyPressed(ebiten.KeyS),
		RotateCW:  inpututil.IsKeyJustPressed(ebiten.KeyX),
		RotateCCW: inpututil.IsKeyJustPressed(ebiten.KeyUp) || inpututil.IsKeyJustPressed(ebiten.KeyZ) || inpututil.IsKeyJustPressed(ebiten.KeyW),
	}
}

func (g *Game) Update() error {
	now := time.Now()
	if g.lastUpdate.IsZero() {
		g.lastUpdate = now
	}
	dt := control.FrameMs(now.Sub(g.lastUpdate))
	g.lastUpdate = now

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if g.backend != nil && inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		g.showOverlay = !g.showOverlay
	}

	var in control.Intents
	if !g.keyboardCaptured() {
		in = intents()
		switch {
		case inpututil.IsKeyJustPressed(ebiten.KeyR):
			g.log.Info().Msg("reset requested")
			g.reset()
		case inpututil.IsKeyJustPressed(ebiten.KeyL):
			g.sim.AdvanceLevel()
		case g.snap.GameOverReady && (inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeySpace)):
			g.reset()
		}
	}

	if g.inspector == nil || g.inspector.ShouldAdvance() {
		g.snap = g.sim.Update(dt, g.controller.Input(in, dt))
	} else {
		g.snap = g.sim.Snapshot()
	}

	frame := float64(dt) / 1000
	if g.backend != nil {
		g.backend.Update(g.scheduler, frame)
	} else {
		g.scheduler.Once(frame)
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	drawScene(screen, &g.snap, g.effects)
	if g.backend != nil && g.showOverlay {
		g.backend.Overlay(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if g.backend != nil {
		g.backend.Layout(outsideWidth, outsideHeight)
		return outsideWidth, outsideHeight
	}
	return ScreenWidth, ScreenHeight
}
