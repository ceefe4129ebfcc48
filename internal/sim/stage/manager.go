package stage

import (
	"fmt"
	"log"
	"time"

	"github.com/rawlph/floodgame/internal/persistence/progress"
	"github.com/rawlph/floodgame/internal/sim/events"
	"github.com/rawlph/floodgame/internal/sim/evolution"
	"github.com/rawlph/floodgame/internal/sim/model"
	"github.com/rawlph/floodgame/internal/sim/player"
)

const (
	// floodWarningAt is the countdown threshold for the sustained
	// warning signal.
	floodWarningAt = 30

	// Transition pacing.
	triggerSpawnDelay = 2 * time.Second
	advanceDelay      = 3 * time.Second
	restartDelay      = 3 * time.Second
)

// Phase is the manager's lifecycle state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseActive
	PhaseSucceeded
	PhaseFailed
	PhaseCompleted
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseActive:
		return "active"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	case PhaseCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Scene is the per-stage world collaborator. It extends the player's
// view with the flood signals and the per-frame update.
type Scene interface {
	player.World
	ShowFloodWarning()
	ShowFloodSurvival()
	ShowFloodFailure()
	Update(dt float64)
}

// SceneFactory builds the world for a stage. Construction may be slow
// (procedural generation); the manager calls it off the simulation
// goroutine and re-enters through the dispatcher.
type SceneFactory func(stage model.Stage, cfg Config) (Scene, error)

// Dispatcher re-enters the simulation goroutine: Dispatch enqueues fn
// for the next loop iteration, After runs it there after a wall-clock
// delay.
type Dispatcher interface {
	Dispatch(fn func())
	After(d time.Duration, fn func())
}

// HUD is the shell surface the manager drives directly.
type HUD interface {
	ConfigureForStage(s model.Stage, cfg Config)
	ShowFloodWarning(on bool)
	ShowEvolutionNotification(title, text string)
}

// Controls is reconfigured per stage (input mapping differs between
// swimming, walking and village stages).
type Controls interface {
	ConfigureForStage(s model.Stage)
}

// ProgressStore is the slice of the persistence layer the manager
// needs. I/O failures are non-fatal: logged and played through.
type ProgressStore interface {
	SaveRecord(progress.Record) error
	SaveCompletion(progress.Completion) error
}

// PlayerRef is what the manager needs from the player on transitions.
type PlayerRef interface {
	Evolve(next model.Stage) error
	Traits() evolution.Traits
}

// Hooks are the controller callbacks for run-level transitions.
type Hooks struct {
	// OnRestart performs the full game restart after a failed stage.
	OnRestart func()
	// OnComplete ends the run after final-stage success.
	OnComplete func(achievements []string)
	// OnLoadFailed hears about an abandoned stage load.
	OnLoadFailed func(s model.Stage, err error)
}

// Manager drives the stage lifecycle: Loading -> Active -> outcome.
// All methods and callbacks run on the simulation goroutine; only the
// scene factory call leaves it.
type Manager struct {
	log      *log.Logger
	cfgs     Configs
	state    *model.GameState
	engine   *events.Engine
	disp     Dispatcher
	store    ProgressStore
	hud      HUD
	controls Controls
	newScene SceneFactory
	hooks    Hooks

	player PlayerRef

	scene   Scene
	phase   Phase
	gen     uint64 // load generation; stale callbacks check it and bail
	warning bool
}

func NewManager(cfgs Configs, gs *model.GameState, engine *events.Engine, disp Dispatcher, store ProgressStore, hud HUD, controls Controls, factory SceneFactory, hooks Hooks, logger *log.Logger) *Manager {
	return &Manager{
		log:      logger,
		cfgs:     cfgs,
		state:    gs,
		engine:   engine,
		disp:     disp,
		store:    store,
		hud:      hud,
		controls: controls,
		newScene: factory,
		hooks:    hooks,
	}
}

// SetPlayer attaches the player reference; a new player is built per
// run start, after the manager.
func (m *Manager) SetPlayer(p PlayerRef) { m.player = p }

func (m *Manager) Phase() Phase { return m.phase }

// Scene returns the active scene, or nil while loading.
func (m *Manager) Scene() Scene {
	if m.phase != PhaseActive {
		return nil
	}
	return m.scene
}

// Config returns the configuration of a stage, failing fast on an
// unknown name.
func (m *Manager) Config(s model.Stage) (Config, error) {
	cfg, ok := m.cfgs[s]
	if !ok {
		return Config{}, fmt.Errorf("unknown stage %q", s)
	}
	return cfg, nil
}

// LoadStage starts loading a stage. Any running countdown stops
// immediately; the countdown for the new stage starts only once the
// scene is built. Unknown stages error synchronously.
func (m *Manager) LoadStage(s model.Stage) error {
	cfg, err := m.Config(s)
	if err != nil {
		return err
	}

	m.gen++
	gen := m.gen
	m.phase = PhaseLoading
	m.scene = nil
	m.warning = false

	m.state.Stage = s
	m.state.Timer = cfg.TimerSeconds
	m.state.ResourceGoal = cfg.ResourceGoal
	m.state.Resources = 0

	sceneGen := m.engine.OnStageLoad(s)

	go func() {
		scene, err := m.newScene(s, cfg)
		m.disp.Dispatch(func() {
			if gen != m.gen {
				return // a newer load superseded this one
			}
			if err != nil {
				if m.log != nil {
					m.log.Printf("stage %s: scene build failed: %v", s, err)
				}
				m.phase = PhaseIdle
				if m.hooks.OnLoadFailed != nil {
					m.hooks.OnLoadFailed(s, err)
				}
				return
			}
			m.activate(s, cfg, scene, gen, sceneGen)
		})
	}()
	return nil
}

func (m *Manager) activate(s model.Stage, cfg Config, scene Scene, gen, sceneGen uint64) {
	m.scene = scene
	m.phase = PhaseActive

	if m.hud != nil {
		m.hud.ConfigureForStage(s, cfg)
		m.hud.ShowFloodWarning(false)
	}
	if m.controls != nil {
		m.controls.ConfigureForStage(s)
	}

	// Event triggers arrive a beat after the transition, except in the
	// first stage before the awakening (the engine suppresses that case
	// too; this check just avoids scheduling dead work).
	if !(s == model.InitialStage && !m.state.WillToLive) {
		m.disp.After(triggerSpawnDelay, func() {
			if gen != m.gen {
				return
			}
			m.engine.CreateInteractiveTriggers(s, sceneGen)
		})
	}
}

// TickSecond advances the flood countdown by one second. The caller
// (the game loop's wall-clock ticker) must not call it while the game
// is paused; pause suspends the countdown, unlike event cooldowns.
func (m *Manager) TickSecond() {
	if m.phase != PhaseActive {
		return
	}
	m.state.Timer--
	if m.state.Timer <= floodWarningAt && !m.warning {
		m.warning = true
		if m.hud != nil {
			m.hud.ShowFloodWarning(true)
		}
		if m.scene != nil {
			m.scene.ShowFloodWarning()
		}
	}
	if m.state.Timer <= 0 {
		m.state.Timer = 0
		m.resolveOutcome()
	}
}

// Update forwards the frame delta to the active scene.
func (m *Manager) Update(dt float64) {
	if m.phase == PhaseActive && m.scene != nil {
		m.scene.Update(dt)
	}
}

// resolveOutcome decides the stage at timer zero. The boundary is
// inclusive: reaching the goal exactly as the flood lands is survival.
func (m *Manager) resolveOutcome() {
	if m.state.Resources >= m.state.ResourceGoal {
		m.succeed()
	} else {
		m.fail()
	}
}

func (m *Manager) succeed() {
	gen := m.gen
	m.phase = PhaseSucceeded
	if m.hud != nil {
		m.hud.ShowFloodWarning(false)
	}
	if m.scene != nil {
		m.scene.ShowFloodSurvival()
	}
	m.state.RecordHighWater()

	next, hasNext := m.state.Stage.Next()
	if !hasNext {
		m.complete()
		return
	}

	if m.player != nil {
		if err := m.player.Evolve(next); err != nil && m.log != nil {
			m.log.Printf("evolve into %s: %v", next, err)
		}
	}
	m.persistProgress()

	m.disp.After(advanceDelay, func() {
		if gen != m.gen {
			return
		}
		if err := m.LoadStage(next); err != nil && m.log != nil {
			m.log.Printf("advance to %s: %v", next, err)
		}
	})
}

func (m *Manager) fail() {
	gen := m.gen
	m.phase = PhaseFailed
	if m.hud != nil {
		m.hud.ShowFloodWarning(false)
	}
	if m.scene != nil {
		m.scene.ShowFloodFailure()
	}

	m.state.Restarts++
	m.state.RecordHighWater()
	m.persistProgress()

	m.disp.After(restartDelay, func() {
		if gen != m.gen {
			return
		}
		if m.hooks.OnRestart != nil {
			m.hooks.OnRestart()
		}
	})
}

// complete runs final-stage success: achievements are evaluated once,
// here, against the final traits and state.
func (m *Manager) complete() {
	m.phase = PhaseCompleted

	var traits evolution.Traits
	if m.player != nil {
		traits = m.player.Traits()
	}
	earned := evolution.EvaluateAchievements(traits, m.state)
	m.state.Achievements = map[string]bool{}
	for _, id := range earned {
		m.state.Achievements[id] = true
	}

	m.persistProgress()
	if m.store != nil {
		err := m.store.SaveCompletion(progress.Completion{
			CompletedAt:    time.Now().UTC().Format(time.RFC3339),
			EvolutionType:  m.state.EvolutionType,
			Restarts:       m.state.Restarts,
			FinalResources: m.state.Resources,
			Achievements:   earned,
		})
		if err != nil && m.log != nil {
			m.log.Printf("save completion: %v", err)
		}
	}

	if m.hooks.OnComplete != nil {
		m.hooks.OnComplete(earned)
	}
}

// persistProgress writes the durable snapshot. Storage trouble is a
// warning, not a game over.
func (m *Manager) persistProgress() {
	if m.store == nil {
		return
	}
	err := m.store.SaveRecord(progress.Record{
		Stage:            m.state.Stage,
		EvolutionType:    m.state.EvolutionType,
		Restarts:         m.state.Restarts,
		HighestResources: m.state.HighestResources,
	})
	if err != nil && m.log != nil {
		m.log.Printf("save progress: %v", err)
	}
}
