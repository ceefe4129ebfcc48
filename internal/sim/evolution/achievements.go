package evolution

import (
	"sort"

	"github.com/rawlph/floodgame/internal/sim/model"
)

// Achievement pairs a description with a pure predicate over the final
// traits and game state. Predicates run once at completion, never
// continuously during play.
type Achievement struct {
	ID          string
	Description string
	Earned      func(t Traits, gs *model.GameState) bool
}

var Achievements = []Achievement{
	{
		ID:          "floodSurvivor",
		Description: "Completed the climb without a single failed stage.",
		Earned: func(t Traits, gs *model.GameState) bool {
			return gs.Restarts == 0
		},
	},
	{
		ID:          "resourceHoarder",
		Description: "Finished holding 200 or more resources.",
		Earned: func(t Traits, gs *model.GameState) bool {
			return gs.Resources >= 200
		},
	},
	{
		ID:          "speedDemon",
		Description: "Evolved a speed multiplier of 2.5 or better.",
		Earned: func(t Traits, gs *model.GameState) bool {
			return t.Get(TraitSpeed, 0) >= 2.5
		},
	},
	{
		ID:          "awakened",
		Description: "Raised consciousness beyond its ordered-stage baseline.",
		Earned: func(t Traits, gs *model.GameState) bool {
			return t.Get(TraitConsciousness, 0) > ConsciousnessBaseline
		},
	},
	{
		ID:          "villageElder",
		Description: "Ended the run with village influence above 1.5.",
		Earned: func(t Traits, gs *model.GameState) bool {
			return t.Get(TraitVillageInfluence, 0) > 1.5
		},
	},
}

// EvaluateAchievements returns the sorted ids of every achievement whose
// predicate holds. No partial credit, no ordering significance beyond
// determinism of the returned slice.
func EvaluateAchievements(t Traits, gs *model.GameState) []string {
	var earned []string
	for _, a := range Achievements {
		if a.Earned(t, gs) {
			earned = append(earned, a.ID)
		}
	}
	sort.Strings(earned)
	return earned
}

// AchievementDescription resolves an id for display, or "" when unknown.
func AchievementDescription(id string) string {
	for _, a := range Achievements {
		if a.ID == id {
			return a.Description
		}
	}
	return ""
}
