package evolution

import (
	"fmt"

	"github.com/rawlph/floodgame/internal/sim/model"
)

// Bonuses is the carry-over advantage granted after a failed stage.
// Multipliers scale linearly with the cumulative restart count, so a
// player who keeps failing keeps getting a little stronger.
type Bonuses struct {
	// TraitMultipliers are folded into the player's starting traits.
	TraitMultipliers Traits
	// StartingResources is a one-time bump applied at run start.
	StartingResources int
	// FloodWarning grants early countdown visibility when the previous
	// run reached the final stage.
	FloodWarning bool
}

// RestartBonuses is a pure function of its inputs: the same archetype,
// restart count and previous stage always produce the same bonuses.
func RestartBonuses(a model.Archetype, restarts int, prevStage model.Stage) (Bonuses, error) {
	if !a.Valid() {
		return Bonuses{}, fmt.Errorf("unknown archetype %q", a)
	}
	if prevStage != "" && !prevStage.Valid() {
		return Bonuses{}, fmt.Errorf("unknown stage %q", prevStage)
	}
	if restarts < 0 {
		restarts = 0
	}

	r := float64(restarts)
	mult := Traits{
		TraitResourceGain: 1 + r*0.10,
	}
	switch a {
	case model.ArchetypeStrong:
		mult[TraitSpeed] = 1 + r*0.05
	case model.ArchetypeMeek:
		mult[TraitCoopBonus] = 1 + r*0.08
	case model.ArchetypeAllRounder:
		mult[TraitAdaptability] = 1 + r*0.06
	}

	b := Bonuses{
		TraitMultipliers:  mult,
		StartingResources: restarts * 5,
		FloodWarning:      prevStage.Final(),
	}
	return b, nil
}

// Apply folds the bonus multipliers into a trait set. Only traits the
// entity already carries are scaled; bonuses never introduce traits.
func (b Bonuses) Apply(t Traits) {
	for name, mult := range b.TraitMultipliers {
		if cur, ok := t[name]; ok {
			t[name] = cur * mult
		}
	}
}
