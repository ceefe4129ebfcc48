package game

import (
	"fmt"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/rawlph/floodgame/internal/persistence/archive"
	"github.com/rawlph/floodgame/internal/persistence/progress"
	"github.com/rawlph/floodgame/internal/sim/events"
	"github.com/rawlph/floodgame/internal/sim/evolution"
	"github.com/rawlph/floodgame/internal/sim/model"
	"github.com/rawlph/floodgame/internal/sim/stage"
	"github.com/rawlph/floodgame/internal/sim/tuning"
)

type stubScene struct {
	updates   int
	resources []model.Resource
	collected int
}

func (s *stubScene) GetNearbyResources(model.Vec2, float64) []model.Resource { return s.resources }
func (s *stubScene) CollectResource(string) (int, error) {
	s.collected++
	return 4, nil
}
func (s *stubScene) GetEnvironmentInteractable(model.Vec2, float64) *model.Environment {
	return nil
}
func (s *stubScene) GetNearbyVillage(model.Vec2, float64) *model.Village { return nil }
func (s *stubScene) GetWillToLiveObject() *model.Vec2                    { return nil }
func (s *stubScene) OnWillToLiveFound()                                  {}
func (s *stubScene) InteractEnvironment(model.Environment, evolution.Traits) string {
	return ""
}
func (s *stubScene) InteractVillage(model.Village, evolution.Traits) string { return "" }
func (s *stubScene) ShowFloodWarning()                                      {}
func (s *stubScene) ShowFloodSurvival()                                     {}
func (s *stubScene) ShowFloodFailure()                                      {}
func (s *stubScene) Update(float64)                                         { s.updates++ }

type stubNotifier struct {
	notes []string
}

func (n *stubNotifier) Notify(severity, text string) {
	n.notes = append(n.notes, severity+": "+text)
}
func (n *stubNotifier) ShowEvolutionNotification(string, string) {}

type stubSink struct {
	frames []Snapshot
}

func (s *stubSink) PublishState(snap Snapshot) { s.frames = append(s.frames, snap) }

type stubStore struct {
	rec     progress.Record
	found   bool
	loadErr error
	saved   []progress.Record
}

func (s *stubStore) SaveRecord(r progress.Record) error { s.saved = append(s.saved, r); return nil }
func (s *stubStore) SaveCompletion(progress.Completion) error { return nil }
func (s *stubStore) LoadRecord() (progress.Record, bool, error) {
	return s.rec, s.found, s.loadErr
}

type stubArchive struct {
	entries []archive.RunEntry
	fail    bool
}

func (a *stubArchive) Append(e archive.RunEntry) error {
	if a.fail {
		return fmt.Errorf("archive offline")
	}
	a.entries = append(a.entries, e)
	return nil
}

type gameFixture struct {
	g        *Game
	scene    *stubScene
	notifier *stubNotifier
	sink     *stubSink
	store    *stubStore
	arch     *stubArchive
}

func newGameFixture(t *testing.T) *gameFixture {
	t.Helper()
	f := &gameFixture{
		scene:    &stubScene{},
		notifier: &stubNotifier{},
		sink:     &stubSink{},
		store:    &stubStore{},
		arch:     &stubArchive{},
	}
	f.g = New(Deps{
		Tuning:  tuning.Default(),
		Catalog: events.DefaultCatalog(),
		Stages:  stage.DefaultConfigs(),
		Factory: func(model.Stage, stage.Config) (stage.Scene, error) { return f.scene, nil },
		Store:   f.store,
		Archive: f.arch,
		Shell: Shell{
			Notifier: f.notifier,
			State:    f.sink,
		},
		Rng: rand.New(rand.NewSource(11)),
	})
	return f
}

// pump executes dispatched work on the test goroutine, standing in for
// the running loop.
func (f *gameFixture) pump(t *testing.T) {
	t.Helper()
	select {
	case fn := <-f.g.cmds:
		fn()
	case <-time.After(2 * time.Second):
		t.Fatalf("no dispatched work within deadline")
	}
}

func (f *gameFixture) startActive(t *testing.T, a model.Archetype) {
	t.Helper()
	f.g.Init(false)
	if err := f.g.StartGame(a); err != nil {
		t.Fatalf("start: %v", err)
	}
	f.pump(t)
	if f.g.manager.Phase() != stage.PhaseActive {
		t.Fatalf("phase after start: %v", f.g.manager.Phase())
	}
	f.g.lastPhase = stage.PhaseActive
}

func TestStartGame_BuildsPlayerAndLoadsFirstStage(t *testing.T) {
	f := newGameFixture(t)
	f.startActive(t, model.ArchetypeStrong)

	if f.g.state.Stage != model.InitialStage {
		t.Fatalf("stage: %s", f.g.state.Stage)
	}
	if f.g.state.NewGame {
		t.Fatalf("NewGame still set after start")
	}
	if f.g.player == nil {
		t.Fatalf("no player")
	}
	if got := f.g.player.Traits().Get(evolution.TraitSpeed, 0); got != 1.5 {
		t.Fatalf("strong base speed: %v", got)
	}
}

func TestStartGame_UnknownArchetype(t *testing.T) {
	f := newGameFixture(t)
	f.g.Init(false)
	if err := f.g.StartGame("demigod"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestStartGame_RestartBonusResources(t *testing.T) {
	f := newGameFixture(t)
	f.g.Init(false)
	f.g.state.Restarts = 2
	if err := f.g.StartGame(model.ArchetypeMeek); err != nil {
		t.Fatalf("start: %v", err)
	}
	if f.g.state.Resources != 10 {
		t.Fatalf("starting resources: %d want 10", f.g.state.Resources)
	}
}

func TestInit_AdoptsPersistedRecord(t *testing.T) {
	f := newGameFixture(t)
	f.store.rec = progress.Record{
		Stage:            model.StageOrdered,
		EvolutionType:    model.ArchetypeMeek,
		Restarts:         3,
		HighestResources: 120,
	}
	f.store.found = true

	f.g.Init(false)
	if f.g.state.Restarts != 3 || f.g.state.HighestResources != 120 {
		t.Fatalf("record not adopted: %+v", f.g.state)
	}
	if f.g.state.EvolutionType != model.ArchetypeMeek {
		t.Fatalf("archetype: %s", f.g.state.EvolutionType)
	}
	// Progress is write-only: play always resumes from the first stage.
	if f.g.state.Stage != model.InitialStage {
		t.Fatalf("stage not forced to initial: %s", f.g.state.Stage)
	}
	if f.g.state.NewGame {
		t.Fatalf("NewGame with a persisted record")
	}
}

func TestInit_LoadErrorDegradesToFresh(t *testing.T) {
	f := newGameFixture(t)
	f.store.loadErr = fmt.Errorf("locked")
	f.g.Init(false)
	if !f.g.state.NewGame {
		t.Fatalf("load error must leave a fresh state")
	}
}

func TestStepFrame_ClampsDeltaAndMoves(t *testing.T) {
	f := newGameFixture(t)
	f.startActive(t, model.ArchetypeStrong)

	f.g.SetMove(model.Vec2{X: 1}, 1.0)
	f.g.StepFrame(10) // absurd delta, clamped to 100ms

	// strong speed 1.5 x base 4.0 x 0.1s
	if got := f.g.player.Pos().X; math.Abs(got-0.6) > 1e-9 {
		t.Fatalf("pos after clamped frame: %v want 0.6", got)
	}
	if f.scene.updates != 1 {
		t.Fatalf("scene updates: %d", f.scene.updates)
	}
	if len(f.sink.frames) == 0 {
		t.Fatalf("no snapshot published")
	}
}

func TestStepFrame_PausedSkipsSimButStillPublishes(t *testing.T) {
	f := newGameFixture(t)
	f.startActive(t, model.ArchetypeStrong)
	f.g.SetMove(model.Vec2{X: 1}, 1.0)
	f.g.PauseGame()

	before := len(f.sink.frames)
	f.g.StepFrame(0.05)
	if f.g.player.Pos().X != 0 {
		t.Fatalf("moved while paused")
	}
	if f.scene.updates != 0 {
		t.Fatalf("scene updated while paused")
	}
	if len(f.sink.frames) != before+1 {
		t.Fatalf("paused frame not published")
	}
	if !f.sink.frames[len(f.sink.frames)-1].Paused {
		t.Fatalf("snapshot does not reflect pause")
	}
}

func TestTickSecond_PauseHoldsCountdown(t *testing.T) {
	f := newGameFixture(t)
	f.startActive(t, model.ArchetypeStrong)
	start := f.g.state.Timer

	f.g.PauseGame()
	f.g.TickSecond()
	if f.g.state.Timer != start {
		t.Fatalf("countdown moved while paused: %d", f.g.state.Timer)
	}
	f.g.ResumeGame()
	f.g.TickSecond()
	if f.g.state.Timer != start-1 {
		t.Fatalf("countdown after resume: %d want %d", f.g.state.Timer, start-1)
	}
}

// openEvent walks a trigger into an active event, which pauses the
// game.
func (f *gameFixture) openEvent(t *testing.T) {
	t.Helper()
	f.g.state.WillToLive = true
	eng := f.g.Engine()
	if n := eng.CreateInteractiveTriggers(f.g.state.Stage, eng.SceneGen()); n == 0 {
		t.Fatalf("no triggers spawned")
	}
	if !eng.TriggerFromObject(eng.Triggers()[0].ID) {
		t.Fatalf("trigger did not open an event")
	}
	if !f.g.state.Paused {
		t.Fatalf("open event did not pause the game")
	}
}

func TestActionPressed_IgnoredWhilePaused(t *testing.T) {
	f := newGameFixture(t)
	f.startActive(t, model.ArchetypeStrong)
	// A corner spot keeps the action probe clear of any spawned
	// trigger, so it can only resolve to the resource.
	corner := model.Vec2{X: 39, Z: 39}
	f.g.player.SetPos(corner)
	f.scene.resources = []model.Resource{{ID: "r1", Pos: corner, Amount: 4}}

	f.openEvent(t)
	f.g.ActionPressed()
	if f.scene.collected != 0 {
		t.Fatalf("collected a resource while paused with an open event")
	}
	if f.g.state.Resources != 0 {
		t.Fatalf("resources mutated while paused: %d", f.g.state.Resources)
	}

	if _, err := f.g.Engine().ResolveEvent(0); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	f.g.ActionPressed()
	if f.scene.collected != 1 {
		t.Fatalf("action after resume collected %d times", f.scene.collected)
	}
}

func TestResumeGame_HeldWhileEventOpen(t *testing.T) {
	f := newGameFixture(t)
	f.startActive(t, model.ArchetypeStrong)
	f.openEvent(t)

	f.g.ResumeGame()
	if !f.g.state.Paused {
		t.Fatalf("resume bypassed an open event")
	}

	if _, err := f.g.Engine().ResolveEvent(0); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if f.g.state.Paused {
		t.Fatalf("still paused after the event resolved")
	}
}

func TestRestartGameFull_ClearsActiveEventAndTriggers(t *testing.T) {
	f := newGameFixture(t)
	f.startActive(t, model.ArchetypeStrong)
	f.openEvent(t)

	if err := f.g.RestartGame(true); err != nil {
		t.Fatalf("restart: %v", err)
	}
	eng := f.g.Engine()
	if eng.Active() != nil {
		t.Fatalf("active event survived a full restart")
	}
	if n := len(eng.Triggers()); n != 0 {
		t.Fatalf("%d stale triggers after a full restart", n)
	}
	if f.g.state.Paused {
		t.Fatalf("still paused after a full restart")
	}
	last := f.sink.frames[len(f.sink.frames)-1]
	if last.ActiveEvent != nil || len(last.Triggers) != 0 {
		t.Fatalf("published frame carries stale event state")
	}
}

func TestStageFailure_ArchivedAndRestartKeepsEarnedGround(t *testing.T) {
	f := newGameFixture(t)
	f.startActive(t, model.ArchetypeStrong)
	f.g.state.Timer = 1
	f.g.state.Resources = 7

	f.g.TickSecond()
	if f.g.manager.Phase() != stage.PhaseFailed {
		t.Fatalf("phase: %v", f.g.manager.Phase())
	}
	if len(f.arch.entries) != 1 || f.arch.entries[0].Kind != archive.KindStageFailure {
		t.Fatalf("archive entries: %+v", f.arch.entries)
	}

	// The delayed restart hook is exercised in the stage tests; drive
	// the restart directly here.
	if err := f.g.RestartGame(false); err != nil {
		t.Fatalf("restart: %v", err)
	}
	f.pump(t)
	if f.g.state.Restarts != 1 {
		t.Fatalf("restarts: %d", f.g.state.Restarts)
	}
	if f.g.state.HighestResources != 7 {
		t.Fatalf("high water: %d", f.g.state.HighestResources)
	}
	// Restart bonus: +10% resourceGain per restart, +5 starting resources.
	g := f.g.player.Traits().Get(evolution.TraitResourceGain, 0)
	if math.Abs(g-1.2*1.1) > 1e-9 {
		t.Fatalf("resourceGain after one restart: %v", g)
	}
	if f.g.state.Resources != 5 {
		t.Fatalf("starting resources after restart: %d", f.g.state.Resources)
	}
}

func TestStageSuccess_Archived(t *testing.T) {
	f := newGameFixture(t)
	f.startActive(t, model.ArchetypeStrong)
	f.g.state.Timer = 1
	f.g.state.Resources = f.g.state.ResourceGoal

	f.g.TickSecond()
	if len(f.arch.entries) != 1 || f.arch.entries[0].Kind != archive.KindStageSuccess {
		t.Fatalf("archive entries: %+v", f.arch.entries)
	}
	if f.arch.entries[0].Stage != model.StagePrimordial {
		t.Fatalf("archived stage: %s", f.arch.entries[0].Stage)
	}
}

func TestRunComplete_ArchivedWithAchievements(t *testing.T) {
	f := newGameFixture(t)
	f.startActive(t, model.ArchetypeStrong)

	// Jump to the final stage and win it.
	if err := f.g.manager.LoadStage(model.StageOrdered); err != nil {
		t.Fatalf("load: %v", err)
	}
	f.pump(t)
	f.g.lastPhase = f.g.manager.Phase()
	f.g.state.Timer = 1
	f.g.state.Resources = 250
	f.g.state.Restarts = 0

	f.g.TickSecond()
	if f.g.manager.Phase() != stage.PhaseCompleted {
		t.Fatalf("phase: %v", f.g.manager.Phase())
	}
	var complete *archive.RunEntry
	for i := range f.arch.entries {
		if f.arch.entries[i].Kind == archive.KindRunComplete {
			complete = &f.arch.entries[i]
		}
	}
	if complete == nil {
		t.Fatalf("no run_complete entry: %+v", f.arch.entries)
	}
	found := false
	for _, id := range complete.Achievements {
		if id == "resourceHoarder" {
			found = true
		}
	}
	if !found {
		t.Fatalf("achievements in archive: %v", complete.Achievements)
	}
}

func TestRestartGameFull_BackToArchetypeChoice(t *testing.T) {
	f := newGameFixture(t)
	f.startActive(t, model.ArchetypeStrong)
	f.g.state.Resources = 30
	f.g.state.RecordHighWater()

	if err := f.g.RestartGame(true); err != nil {
		t.Fatalf("full restart: %v", err)
	}
	if f.g.player != nil {
		t.Fatalf("player survives full reset")
	}
	if !f.g.state.NewGame || f.g.state.Resources != 0 {
		t.Fatalf("state after full reset: %+v", f.g.state)
	}
	if f.g.state.HighestResources != 30 {
		t.Fatalf("high water must survive the wipe: %d", f.g.state.HighestResources)
	}
}

func TestChooseEvent_WithoutActiveEventWarns(t *testing.T) {
	f := newGameFixture(t)
	f.startActive(t, model.ArchetypeStrong)
	f.g.ChooseEvent(0)
	if len(f.notifier.notes) == 0 {
		t.Fatalf("expected a warning notice")
	}
}

func TestModifyTrait_BeforePlayerExistsIsNoop(t *testing.T) {
	f := newGameFixture(t)
	f.g.ModifyTrait(evolution.PhilCuriosity, 0.2) // must not panic
}

func TestActionPressed_WithoutPlayerIsNoop(t *testing.T) {
	f := newGameFixture(t)
	f.g.ActionPressed()
}

func TestArchiveFailureIsNonFatal(t *testing.T) {
	f := newGameFixture(t)
	f.arch.fail = true
	f.startActive(t, model.ArchetypeStrong)
	f.g.state.Timer = 1
	f.g.state.Resources = 0
	f.g.TickSecond()
	if f.g.manager.Phase() != stage.PhaseFailed {
		t.Fatalf("phase: %v", f.g.manager.Phase())
	}
}
