package events

import (
	"fmt"
	"log"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/rawlph/floodgame/internal/sim/model"
)

const (
	// Trigger placement constraints.
	maxTriggersPerStage = 2
	minAngularSep       = math.Pi / 2 // 90 degrees
	minLinearSep        = 8.0
	placementRetries    = 12
	boundaryMargin      = 5.0

	// Cooldowns, in real-time seconds.
	cooldownAfterTrigger = 20.0
	cooldownAfterResolve = 30.0

	// The lazy spawn path fires at exactly this many collections.
	lazySpawnCollection = 3
)

// GameHooks is the slice of the controller the engine needs: the game
// pauses for the duration of an active event and resumes on resolution.
type GameHooks interface {
	PauseGame()
	ResumeGame()
}

// Trigger is a world-placed, depletable source of narrative events.
// The engine owns every trigger in a flat map keyed by id; the world
// and the shell only ever see copies for positioning and visuals.
type Trigger struct {
	ID     string
	Stage  model.Stage
	Pos    model.Vec2
	Active bool
	// Pool holds definition ids still available on this trigger.
	Pool []string
	// Gen ties the trigger to the scene load that created it.
	Gen uint64
}

// ActiveEvent is the single event currently presented to the player.
type ActiveEvent struct {
	Def       Definition
	TriggerID string
}

// ChoiceRecord is a compact history entry for a resolved choice.
type ChoiceRecord struct {
	EventID    string    `json:"event_id"`
	ChoiceText string    `json:"choice_text"`
	Category   string    `json:"category,omitempty"`
	At         time.Time `json:"at"`
}

// Engine runs the stage-scoped narrative event machinery: trigger
// spawning and depletion, the single active event, cooldowns and the
// rolling choice history. All methods must be called from the
// simulation goroutine.
type Engine struct {
	log     *log.Logger
	catalog *Catalog
	state   *model.GameState
	sink    TraitSink
	hooks   GameHooks
	rng     *rand.Rand

	// bound is the playable half-extent; triggers stay inside
	// bound-boundaryMargin on both axes.
	bound float64

	triggers   map[string]*Trigger
	nextTrigID int

	active   *ActiveEvent
	sceneGen uint64

	cooldown    float64
	history     []ChoiceRecord
	collections int
}

func NewEngine(catalog *Catalog, gs *model.GameState, sink TraitSink, hooks GameHooks, logger *log.Logger, rng *rand.Rand, bound float64) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if bound <= boundaryMargin {
		bound = 40
	}
	return &Engine{
		log:      logger,
		catalog:  catalog,
		state:    gs,
		sink:     sink,
		hooks:    hooks,
		rng:      rng,
		bound:    bound,
		triggers: map[string]*Trigger{},
	}
}

// SceneGen identifies the current scene load. Deferred work captured
// under an older generation must become a no-op.
func (e *Engine) SceneGen() uint64 { return e.sceneGen }

// OnStageLoad resets the per-stage engine state for a fresh scene and
// returns the new scene generation.
func (e *Engine) OnStageLoad(stage model.Stage) uint64 {
	e.sceneGen++
	e.triggers = map[string]*Trigger{}
	e.active = nil
	e.collections = 0
	e.cooldown = 0
	return e.sceneGen
}

// Active returns the event currently presented to the player, if any.
func (e *Engine) Active() *ActiveEvent { return e.active }

// CooldownRemaining reports the real-time seconds until a new event may
// fire.
func (e *Engine) CooldownRemaining() float64 { return e.cooldown }

// History returns the resolved-choice records in order.
func (e *Engine) History() []ChoiceRecord {
	out := make([]ChoiceRecord, len(e.history))
	copy(out, e.history)
	return out
}

// Triggers returns a positional snapshot of the live triggers, sorted
// by id. Callers hold no reference into engine state.
func (e *Engine) Triggers() []Trigger {
	ids := make([]string, 0, len(e.triggers))
	for id := range e.triggers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]Trigger, 0, len(ids))
	for _, id := range ids {
		t := *e.triggers[id]
		t.Pool = append([]string(nil), t.Pool...)
		out = append(out, t)
	}
	return out
}

// CreateInteractiveTriggers spawns the stage's world triggers. It is
// idempotent: when triggers already exist for the stage it does nothing.
// In the first stage nothing spawns before the will-to-live is found.
// Returns the number of triggers created.
func (e *Engine) CreateInteractiveTriggers(stage model.Stage, gen uint64) int {
	if gen != e.sceneGen {
		return 0 // stale scene, the stage moved on
	}
	if stage == model.InitialStage && !e.state.WillToLive {
		return 0
	}
	for _, t := range e.triggers {
		if t.Stage == stage {
			return 0
		}
	}
	defs := e.catalog.ForStage(stage)
	if len(defs) == 0 {
		return 0
	}
	n := len(defs)
	if n > maxTriggersPerStage {
		n = maxTriggersPerStage
	}
	created := 0
	for i := 0; i < n; i++ {
		// Round-robin by index: trigger i carries event i.
		e.spawnTrigger(stage, []string{defs[i].ID})
		created++
	}
	return created
}

func (e *Engine) spawnTrigger(stage model.Stage, pool []string) *Trigger {
	e.nextTrigID++
	t := &Trigger{
		ID:     fmt.Sprintf("trig_%d", e.nextTrigID),
		Stage:  stage,
		Pos:    e.placeTrigger(),
		Active: true,
		Pool:   pool,
		Gen:    e.sceneGen,
	}
	e.triggers[t.ID] = t
	return t
}

// placeTrigger picks a position inside the boundary margin that keeps
// either 90 degrees of angular separation or 8 units of distance from
// every existing trigger. Best effort: after the retry budget the last
// candidate is clamped in-bounds and used anyway.
func (e *Engine) placeTrigger() model.Vec2 {
	usable := e.bound - boundaryMargin
	var candidate model.Vec2
	for attempt := 0; attempt < placementRetries; attempt++ {
		candidate = model.Vec2{
			X: (e.rng.Float64()*2 - 1) * usable,
			Z: (e.rng.Float64()*2 - 1) * usable,
		}
		if e.separated(candidate) {
			return candidate
		}
	}
	return candidate.Clamp(usable)
}

func (e *Engine) separated(pos model.Vec2) bool {
	for _, t := range e.triggers {
		if model.AngleBetween(pos, t.Pos) >= minAngularSep {
			continue
		}
		if pos.Dist(t.Pos) >= minLinearSep {
			continue
		}
		return false
	}
	return true
}

// NearbyTrigger returns the first active trigger with a non-empty pool
// within radius of pos, or nil.
func (e *Engine) NearbyTrigger(pos model.Vec2, radius float64) *Trigger {
	ids := make([]string, 0, len(e.triggers))
	for id := range e.triggers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		t := e.triggers[id]
		if !t.Active || len(t.Pool) == 0 {
			continue
		}
		if t.Pos.Dist(pos) <= radius {
			return t
		}
	}
	return nil
}

// TriggerFromObject pops one random event from the trigger's pool and
// presents it. Returns false without touching game state when the pool
// is already empty (the trigger is then permanently inactive), when the
// trigger is unknown, when another event is active, or while the
// inter-event cooldown is still running.
func (e *Engine) TriggerFromObject(triggerID string) bool {
	t, ok := e.triggers[triggerID]
	if !ok {
		return false
	}
	if len(t.Pool) == 0 {
		t.Active = false
		return false
	}
	if !t.Active || e.active != nil || e.cooldown > 0 {
		return false
	}

	idx := e.rng.Intn(len(t.Pool))
	defID := t.Pool[idx]
	t.Pool = append(t.Pool[:idx], t.Pool[idx+1:]...)
	if len(t.Pool) == 0 {
		t.Active = false
	}

	def, ok := e.catalog.Lookup(t.Stage, defID)
	if !ok {
		// Catalog and trigger pools are built from the same source;
		// a miss here is a programming error worth hearing about.
		if e.log != nil {
			e.log.Printf("event engine: trigger %s references unknown event %s", triggerID, defID)
		}
		return false
	}

	e.active = &ActiveEvent{Def: def, TriggerID: triggerID}
	e.cooldown = cooldownAfterTrigger
	if e.hooks != nil {
		e.hooks.PauseGame()
	}
	return true
}

// ResolveEvent applies the chosen effects, records the choice, removes
// the originating trigger and resumes the game. The active event is
// always nil afterwards.
func (e *Engine) ResolveEvent(choiceIndex int) (string, error) {
	if e.active == nil {
		return "", fmt.Errorf("no active event")
	}
	def := e.active.Def
	if choiceIndex < 0 || choiceIndex >= len(def.Choices) {
		return "", fmt.Errorf("event %s: choice index %d out of range", def.ID, choiceIndex)
	}
	ch := def.Choices[choiceIndex]

	narrative := applyEffects(ch, e.state, e.sink)

	e.history = append(e.history, ChoiceRecord{
		EventID:    def.ID,
		ChoiceText: ch.Text,
		Category:   ch.Category,
		At:         time.Now(),
	})

	delete(e.triggers, e.active.TriggerID)
	e.active = nil
	e.cooldown = cooldownAfterResolve
	if e.hooks != nil {
		e.hooks.ResumeGame()
	}
	return narrative, nil
}

// OnResourceCollected counts collections since stage start. At exactly
// the third one, if the stage still has no trigger, one spawns with a
// single event. This lazy path is distinct from the delayed spawn after
// a stage transition.
func (e *Engine) OnResourceCollected() {
	e.collections++
	if e.collections != lazySpawnCollection {
		return
	}
	stage := e.state.Stage
	if stage == model.InitialStage && !e.state.WillToLive {
		return
	}
	for _, t := range e.triggers {
		if t.Stage == stage {
			return
		}
	}
	defs := e.catalog.ForStage(stage)
	if len(defs) == 0 {
		return
	}
	e.spawnTrigger(stage, []string{defs[0].ID})
}

// TickCooldown advances the inter-event cooldown by dt real-time
// seconds. While an event is active the cooldown holds; random ambient
// event firing is deliberately absent, triggers only fire from direct
// world-object interaction.
func (e *Engine) TickCooldown(dt float64) {
	if e.active != nil {
		return
	}
	if e.cooldown > 0 {
		e.cooldown -= dt
		if e.cooldown < 0 {
			e.cooldown = 0
		}
	}
}
