package model

// GameState is the single mutable record describing the current run.
// It is owned by the game controller; every other component receives a
// pointer and mutates it only from the simulation goroutine.
type GameState struct {
	Stage         Stage
	Resources     int
	ResourceGoal  int
	Timer         int // seconds until the flood
	EvolutionType Archetype
	Restarts      int
	// HighestResources is the high-water mark across restarts of a session.
	HighestResources int
	Achievements     map[string]bool
	NewGame          bool
	Paused           bool
	WillToLive       bool
}

func NewGameState() *GameState {
	return &GameState{
		Stage:        InitialStage,
		Achievements: map[string]bool{},
		NewGame:      true,
	}
}

// AddResources adjusts the collected amount, clamping at zero.
func (gs *GameState) AddResources(n int) {
	gs.Resources += n
	if gs.Resources < 0 {
		gs.Resources = 0
	}
}

// RecordHighWater folds the current resource count into the
// session high-water mark. Returns true when the mark moved.
func (gs *GameState) RecordHighWater() bool {
	if gs.Resources > gs.HighestResources {
		gs.HighestResources = gs.Resources
		return true
	}
	return false
}

// AddTime adjusts the flood countdown, clamping at zero.
func (gs *GameState) AddTime(seconds int) {
	gs.Timer += seconds
	if gs.Timer < 0 {
		gs.Timer = 0
	}
}

// ResetForRestart clears the per-run fields while keeping the
// archetype, restart count and high-water mark.
func (gs *GameState) ResetForRestart() {
	gs.Stage = InitialStage
	gs.Resources = 0
	gs.ResourceGoal = 0
	gs.Timer = 0
	gs.Achievements = map[string]bool{}
	gs.NewGame = false
	gs.Paused = false
	gs.WillToLive = false
}

// ResetFull wipes the state back to a fresh session, preserving only
// the high-water mark.
func (gs *GameState) ResetFull() {
	high := gs.HighestResources
	*gs = *NewGameState()
	gs.HighestResources = high
}
