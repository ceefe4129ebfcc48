package game

import (
	"context"
	"log"
	"math/rand"
	"time"

	"github.com/rawlph/floodgame/internal/persistence/archive"
	"github.com/rawlph/floodgame/internal/persistence/progress"
	"github.com/rawlph/floodgame/internal/sim/events"
	"github.com/rawlph/floodgame/internal/sim/evolution"
	"github.com/rawlph/floodgame/internal/sim/model"
	"github.com/rawlph/floodgame/internal/sim/player"
	"github.com/rawlph/floodgame/internal/sim/stage"
	"github.com/rawlph/floodgame/internal/sim/tuning"
)

// Store is the slice of the persistence layer the controller needs.
type Store interface {
	stage.ProgressStore
	LoadRecord() (progress.Record, bool, error)
}

// Archiver appends run-history entries. Failures are logged, never
// fatal.
type Archiver interface {
	Append(archive.RunEntry) error
}

// StateSink receives the per-frame state snapshot for the shell.
// Implementations must not block; the transport keeps only the latest
// frame.
type StateSink interface {
	PublishState(Snapshot)
}

// Shell bundles the browser-side collaborators. Any field may be nil;
// the simulation runs headless without them.
type Shell struct {
	HUD      stage.HUD
	Controls stage.Controls
	Notifier player.Notifier
	Visual   player.VisualSink
	State    StateSink
}

// Deps carries everything a Game needs at construction.
type Deps struct {
	Tuning  tuning.Tuning
	Catalog *events.Catalog
	Stages  stage.Configs
	Factory stage.SceneFactory
	Store   Store
	Archive Archiver
	Shell   Shell
	Logger  *log.Logger
	Rng     *rand.Rand
}

// Game is the run-level controller. It owns the simulation goroutine:
// a single select loop over the frame ticker, the 1 Hz wall-clock
// ticker and the command inbox. Everything below it (stage manager,
// event engine, player) is called only from that goroutine.
type Game struct {
	log   *log.Logger
	cfg   tuning.Tuning
	state *model.GameState

	engine  *events.Engine
	manager *stage.Manager
	player  *player.Player

	store   Store
	archive Archiver
	shell   Shell

	cmds chan func()
	stop chan struct{}

	move      model.Vec2
	intensity float64
	lastPhase stage.Phase
}

func New(deps Deps) *Game {
	deps.Tuning.Normalize()
	g := &Game{
		log:     deps.Logger,
		cfg:     deps.Tuning,
		state:   model.NewGameState(),
		store:   deps.Store,
		archive: deps.Archive,
		shell:   deps.Shell,
		cmds:    make(chan func(), 64),
		stop:    make(chan struct{}),
	}
	g.engine = events.NewEngine(deps.Catalog, g.state, g, g, deps.Logger, deps.Rng, deps.Tuning.WorldBound)

	var ps stage.ProgressStore
	if deps.Store != nil {
		ps = deps.Store
	}
	g.manager = stage.NewManager(deps.Stages, g.state, g.engine, g, ps,
		deps.Shell.HUD, deps.Shell.Controls, deps.Factory,
		stage.Hooks{
			OnRestart:    g.onStageFailed,
			OnComplete:   g.onRunComplete,
			OnLoadFailed: g.onLoadFailed,
		}, deps.Logger)
	return g
}

// State exposes the shared game state. Read it only from the
// simulation goroutine.
func (g *Game) State() *model.GameState { return g.state }

func (g *Game) Engine() *events.Engine { return g.engine }

func (g *Game) Manager() *stage.Manager { return g.manager }

// Dispatch enqueues fn onto the simulation goroutine. It implements
// the stage manager's Dispatcher and doubles as the inbox for the
// transport layer.
func (g *Game) Dispatch(fn func()) {
	select {
	case g.cmds <- fn:
	case <-g.stop:
	}
}

// After runs fn on the simulation goroutine after a wall-clock delay.
func (g *Game) After(d time.Duration, fn func()) {
	time.AfterFunc(d, func() { g.Dispatch(fn) })
}

// PauseGame and ResumeGame implement the event engine's hooks and the
// shell's pause button. Simulation goroutine only.
func (g *Game) PauseGame() { g.state.Paused = true }

// ResumeGame unpauses unless an event is open: the modal pause holds
// until the event resolves. The engine's resolve hook clears the
// active event before calling here, so resolution still resumes.
func (g *Game) ResumeGame() {
	if g.engine.Active() != nil {
		return
	}
	g.state.Paused = false
}

// Started reports whether a run is in progress.
func (g *Game) Started() bool { return g.player != nil }

// ModifyTrait implements the event effect sink by forwarding to the
// player, which owns clamping and the philosophical feedback.
func (g *Game) ModifyTrait(name string, delta float64) {
	if g.player != nil {
		g.player.ModifyTrait(name, delta)
	}
}

// Run drives the loop until ctx is cancelled or Stop is called.
func (g *Game) Run(ctx context.Context) error {
	frame := time.NewTicker(time.Second / time.Duration(g.cfg.FrameRateHz))
	defer frame.Stop()
	wall := time.NewTicker(time.Second)
	defer wall.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-g.stop:
			return nil
		case fn := <-g.cmds:
			fn()
		case now := <-frame.C:
			dt := now.Sub(last).Seconds()
			last = now
			g.StepFrame(dt)
		case <-wall.C:
			g.TickSecond()
		}
	}
}

func (g *Game) Stop() { close(g.stop) }

// StepFrame advances one render frame. The delta is clamped so a
// stalled tab cannot teleport the player, then scaled by the global
// slowdown.
func (g *Game) StepFrame(dt float64) {
	if max := float64(g.cfg.MaxFrameDeltaMs) / 1000; dt > max {
		dt = max
	}
	dt *= g.cfg.Slowdown

	if !g.state.Paused {
		if g.player != nil && (g.move.X != 0 || g.move.Z != 0) {
			g.player.Move(g.move, g.intensity, dt)
		}
		g.manager.Update(dt)
	}
	g.observePhase()
	g.publish()
}

// TickSecond is the wall-clock tick: event cooldowns always elapse,
// the flood countdown only while active and unpaused.
func (g *Game) TickSecond() {
	g.engine.TickCooldown(1)
	if !g.state.Paused {
		g.manager.TickSecond()
	}
	g.observePhase()
}

// observePhase archives stage outcomes by watching the manager's
// phase transitions. Run completion is archived from its hook instead,
// where the achievement list is at hand.
func (g *Game) observePhase() {
	ph := g.manager.Phase()
	if ph == g.lastPhase {
		return
	}
	g.lastPhase = ph
	switch ph {
	case stage.PhaseSucceeded:
		g.archiveEntry(archive.KindStageSuccess, nil)
	case stage.PhaseFailed:
		g.archiveEntry(archive.KindStageFailure, nil)
	}
}

func (g *Game) archiveEntry(kind string, achievements []string) {
	if g.archive == nil {
		return
	}
	err := g.archive.Append(archive.RunEntry{
		Kind:          kind,
		Stage:         g.state.Stage,
		EvolutionType: g.state.EvolutionType,
		Resources:     g.state.Resources,
		Restarts:      g.state.Restarts,
		Achievements:  achievements,
		Choices:       g.engine.History(),
	})
	if err != nil && g.log != nil {
		g.log.Printf("archive %s: %v", kind, err)
	}
}

func (g *Game) notify(severity, text string) {
	if g.shell.Notifier != nil {
		g.shell.Notifier.Notify(severity, text)
	}
}

// SetMove stores the latest movement input; the frame step applies it.
// Latest wins, there is no input queue.
func (g *Game) SetMove(dir model.Vec2, intensity float64) {
	g.move = dir
	g.intensity = intensity
}

// ActionPressed runs the single contextual action against the active
// scene. While the game is paused, including the modal pause of an
// open event, input is dropped: nothing may mutate resources or feed
// the event engine until play resumes.
func (g *Game) ActionPressed() {
	if g.player == nil || g.state.Paused {
		return
	}
	var w player.World
	if sc := g.manager.Scene(); sc != nil {
		w = sc
	}
	g.player.PerformAction(w)
}

// ChooseEvent resolves the active event with the picked choice and
// surfaces the outcome narrative.
func (g *Game) ChooseEvent(choiceIndex int) {
	narrative, err := g.engine.ResolveEvent(choiceIndex)
	if err != nil {
		g.notify("warn", err.Error())
		return
	}
	g.notify("event", narrative)
}

func (g *Game) publish() {
	if g.shell.State == nil {
		return
	}
	s := Snapshot{
		Stage:            g.state.Stage,
		Phase:            g.manager.Phase(),
		Timer:            g.state.Timer,
		Resources:        g.state.Resources,
		ResourceGoal:     g.state.ResourceGoal,
		Restarts:         g.state.Restarts,
		HighestResources: g.state.HighestResources,
		EvolutionType:    g.state.EvolutionType,
		Paused:           g.state.Paused,
		NewGame:          g.state.NewGame,
		WillToLive:       g.state.WillToLive,
		Triggers:         g.engine.Triggers(),
		EventCooldown:    g.engine.CooldownRemaining(),
		Summary:          g.engine.ChoicesSummary(),
	}
	if a := g.engine.Active(); a != nil {
		s.ActiveEvent = &a.Def
	}
	if g.player != nil {
		s.PlayerPos = g.player.Pos()
		s.CameraTarget = g.player.Pos()
		s.Traits = g.player.Traits()
	}
	g.shell.State.PublishState(s)
}

// Snapshot is the full shell-facing view of one frame.
type Snapshot struct {
	Stage            model.Stage
	Phase            stage.Phase
	Timer            int
	Resources        int
	ResourceGoal     int
	Restarts         int
	HighestResources int
	EvolutionType    model.Archetype
	Paused           bool
	NewGame          bool
	WillToLive       bool

	PlayerPos    model.Vec2
	CameraTarget model.Vec2
	Traits       evolution.Traits

	Triggers      []events.Trigger
	ActiveEvent   *events.Definition
	EventCooldown float64
	Summary       events.Summary
}
