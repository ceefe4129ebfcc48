package events

import (
	"math"
	"math/rand"
	"testing"

	"github.com/rawlph/floodgame/internal/sim/model"
)

type hooksStub struct {
	paused  int
	resumed int
	state   *model.GameState
}

func (h *hooksStub) PauseGame() {
	h.paused++
	if h.state != nil {
		h.state.Paused = true
	}
}

func (h *hooksStub) ResumeGame() {
	h.resumed++
	if h.state != nil {
		h.state.Paused = false
	}
}

type sinkStub struct {
	deltas map[string]float64
}

func (s *sinkStub) ModifyTrait(name string, delta float64) {
	if s.deltas == nil {
		s.deltas = map[string]float64{}
	}
	s.deltas[name] += delta
}

func newTestEngine(t *testing.T, stage model.Stage) (*Engine, *model.GameState, *hooksStub, *sinkStub) {
	t.Helper()
	gs := model.NewGameState()
	gs.Stage = stage
	gs.WillToLive = true
	hooks := &hooksStub{state: gs}
	sink := &sinkStub{}
	e := NewEngine(DefaultCatalog(), gs, sink, hooks, nil, rand.New(rand.NewSource(7)), 40)
	e.OnStageLoad(stage)
	return e, gs, hooks, sink
}

func TestCreateInteractiveTriggers_Idempotent(t *testing.T) {
	e, _, _, _ := newTestEngine(t, model.StagePrehistoric)
	gen := e.SceneGen()
	n := e.CreateInteractiveTriggers(model.StagePrehistoric, gen)
	if n != 2 {
		t.Fatalf("first create: got %d triggers, want 2", n)
	}
	if again := e.CreateInteractiveTriggers(model.StagePrehistoric, gen); again != 0 {
		t.Fatalf("second create spawned %d triggers, want 0", again)
	}
	if got := len(e.Triggers()); got != 2 {
		t.Fatalf("trigger count after double create: %d want 2", got)
	}
}

func TestCreateInteractiveTriggers_SuppressedPreAwakening(t *testing.T) {
	e, gs, _, _ := newTestEngine(t, model.StagePrimordial)
	gs.WillToLive = false
	if n := e.CreateInteractiveTriggers(model.StagePrimordial, e.SceneGen()); n != 0 {
		t.Fatalf("spawned %d triggers before awakening, want 0", n)
	}
	gs.WillToLive = true
	if n := e.CreateInteractiveTriggers(model.StagePrimordial, e.SceneGen()); n == 0 {
		t.Fatalf("expected triggers after awakening")
	}
}

func TestCreateInteractiveTriggers_StaleGeneration(t *testing.T) {
	e, _, _, _ := newTestEngine(t, model.StageOrdered)
	stale := e.SceneGen()
	e.OnStageLoad(model.StageOrdered) // scene replaced
	if n := e.CreateInteractiveTriggers(model.StageOrdered, stale); n != 0 {
		t.Fatalf("stale-generation create spawned %d triggers, want 0", n)
	}
}

func TestTriggerPlacement_SeparationOrClamped(t *testing.T) {
	e, _, _, _ := newTestEngine(t, model.StagePrehistoric)
	e.CreateInteractiveTriggers(model.StagePrehistoric, e.SceneGen())
	trigs := e.Triggers()
	if len(trigs) != 2 {
		t.Fatalf("want 2 triggers, got %d", len(trigs))
	}
	for _, tr := range trigs {
		if math.Abs(tr.Pos.X) > 35 || math.Abs(tr.Pos.Z) > 35 {
			t.Fatalf("trigger %s outside boundary margin: %+v", tr.ID, tr.Pos)
		}
	}
	a, b := trigs[0].Pos, trigs[1].Pos
	if model.AngleBetween(a, b) < math.Pi/2 && a.Dist(b) < 8 {
		t.Fatalf("triggers violate both separation rules: %+v %+v", a, b)
	}
}

func TestTriggerPoolExhaustion(t *testing.T) {
	e, gs, _, _ := newTestEngine(t, model.StagePrehistoric)
	e.CreateInteractiveTriggers(model.StagePrehistoric, e.SceneGen())
	id := e.Triggers()[0].ID

	if !e.TriggerFromObject(id) {
		t.Fatalf("first interaction should fire an event")
	}
	if e.Active() == nil {
		t.Fatalf("expected an active event")
	}
	if _, err := e.ResolveEvent(0); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	// The trigger had a pool of one; it is gone after resolution.
	for _, tr := range e.Triggers() {
		if tr.ID == id {
			t.Fatalf("resolved trigger %s still tracked", id)
		}
	}

	// A second trigger still holds its event; drain it below cooldown.
	other := e.Triggers()[0]
	resBefore := gs.Resources
	if e.TriggerFromObject(other.ID) {
		t.Fatalf("trigger fired during inter-event cooldown")
	}
	if gs.Resources != resBefore {
		t.Fatalf("refused trigger mutated resources")
	}
}

func TestTriggerFromObject_EmptyPoolReturnsFalseSilently(t *testing.T) {
	e, gs, hooks, _ := newTestEngine(t, model.StageOrdered)
	tr := e.spawnTrigger(model.StageOrdered, []string{"stranger_gate"})

	if !e.TriggerFromObject(tr.ID) {
		t.Fatalf("expected event to fire")
	}
	if _, err := e.ResolveEvent(0); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	// Re-spawn a trigger then deplete its pool by hand to exercise the
	// exhausted path directly.
	tr2 := e.spawnTrigger(model.StageOrdered, []string{})
	resBefore := gs.Resources
	pausedBefore := hooks.paused
	if e.TriggerFromObject(tr2.ID) {
		t.Fatalf("empty pool must not fire")
	}
	if e.TriggerFromObject(tr2.ID) {
		t.Fatalf("empty pool must stay permanently inactive")
	}
	if gs.Resources != resBefore || hooks.paused != pausedBefore {
		t.Fatalf("exhausted trigger mutated game state")
	}
}

func TestAtMostOneActiveEvent(t *testing.T) {
	e, gs, hooks, _ := newTestEngine(t, model.StagePrehistoric)
	e.CreateInteractiveTriggers(model.StagePrehistoric, e.SceneGen())
	trigs := e.Triggers()

	if !e.TriggerFromObject(trigs[0].ID) {
		t.Fatalf("first trigger should fire")
	}
	if !gs.Paused {
		t.Fatalf("game must pause while an event is active")
	}
	if e.TriggerFromObject(trigs[1].ID) {
		t.Fatalf("second event fired while one is active")
	}
	if _, err := e.ResolveEvent(0); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if e.Active() != nil {
		t.Fatalf("active event not cleared by resolve")
	}
	if gs.Paused {
		t.Fatalf("game must resume the instant the event clears")
	}
	if hooks.paused != 1 || hooks.resumed != 1 {
		t.Fatalf("pause/resume counts: %d/%d", hooks.paused, hooks.resumed)
	}
}

func TestResolveEvent_AppliesEffectsAndHistory(t *testing.T) {
	e, gs, _, sink := newTestEngine(t, model.StagePrimordial)
	tr := e.spawnTrigger(model.StagePrimordial, []string{"drifting_spore"})
	if !e.TriggerFromObject(tr.ID) {
		t.Fatalf("trigger should fire")
	}
	narrative, err := e.ResolveEvent(0) // nudge: compassion +0.3
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if narrative == "" {
		t.Fatalf("expected outcome narrative")
	}
	if sink.deltas["compassion"] != 0.3 {
		t.Fatalf("compassion delta: got %v want 0.3", sink.deltas["compassion"])
	}
	hist := e.History()
	if len(hist) != 1 || hist[0].EventID != "drifting_spore" {
		t.Fatalf("history: %+v", hist)
	}
	_ = gs
}

func TestCooldownTicksInRealTime(t *testing.T) {
	e, _, _, _ := newTestEngine(t, model.StagePrimordial)
	tr := e.spawnTrigger(model.StagePrimordial, []string{"strange_vent"})
	if !e.TriggerFromObject(tr.ID) {
		t.Fatalf("trigger should fire")
	}
	// While active the cooldown holds.
	e.TickCooldown(5)
	if e.CooldownRemaining() != cooldownAfterTrigger {
		t.Fatalf("cooldown moved while event active: %v", e.CooldownRemaining())
	}
	if _, err := e.ResolveEvent(0); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if e.CooldownRemaining() != cooldownAfterResolve {
		t.Fatalf("resolve cooldown: %v want %v", e.CooldownRemaining(), cooldownAfterResolve)
	}
	for i := 0; i < 30; i++ {
		e.TickCooldown(1)
	}
	if e.CooldownRemaining() != 0 {
		t.Fatalf("cooldown should reach zero, got %v", e.CooldownRemaining())
	}
}

func TestOnResourceCollected_LazySpawnAtThird(t *testing.T) {
	e, _, _, _ := newTestEngine(t, model.StagePrehistoric)
	e.OnResourceCollected()
	e.OnResourceCollected()
	if len(e.Triggers()) != 0 {
		t.Fatalf("trigger spawned before third collection")
	}
	e.OnResourceCollected()
	if len(e.Triggers()) != 1 {
		t.Fatalf("third collection should spawn exactly one trigger, got %d", len(e.Triggers()))
	}
	// Further collections never spawn again.
	e.OnResourceCollected()
	e.OnResourceCollected()
	if len(e.Triggers()) != 1 {
		t.Fatalf("extra collections spawned triggers")
	}
}

func TestOnResourceCollected_NoDuplicateWhenTriggersExist(t *testing.T) {
	e, _, _, _ := newTestEngine(t, model.StageOrdered)
	e.CreateInteractiveTriggers(model.StageOrdered, e.SceneGen())
	before := len(e.Triggers())
	e.OnResourceCollected()
	e.OnResourceCollected()
	e.OnResourceCollected()
	if len(e.Triggers()) != before {
		t.Fatalf("lazy spawn duplicated triggers: %d -> %d", before, len(e.Triggers()))
	}
}

func TestNearbyTrigger(t *testing.T) {
	e, _, _, _ := newTestEngine(t, model.StageOrdered)
	tr := e.spawnTrigger(model.StageOrdered, []string{"night_sky"})
	if got := e.NearbyTrigger(tr.Pos, 2); got == nil || got.ID != tr.ID {
		t.Fatalf("expected trigger %s nearby", tr.ID)
	}
	far := tr.Pos.Add(model.Vec2{X: 50, Z: 50})
	if got := e.NearbyTrigger(far, 2); got != nil {
		t.Fatalf("unexpected trigger found at distance")
	}
	tr.Pool = nil
	if got := e.NearbyTrigger(tr.Pos, 2); got != nil {
		t.Fatalf("empty-pool trigger reported as nearby")
	}
}
