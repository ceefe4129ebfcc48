package evolution

import (
	"fmt"

	"github.com/rawlph/floodgame/internal/sim/model"
)

// baseTraits seeds each archetype. The three archetypes are mutually
// exclusive specializations: strong trades energy cost for raw speed and
// gain, meek carries the cooperation bonus, allRounder the adaptability.
var baseTraits = map[model.Archetype]Traits{
	model.ArchetypeStrong: {
		TraitSpeed:        1.5,
		TraitEnergyCost:   1.3,
		TraitResourceGain: 1.2,
		TraitSize:         1.2,
	},
	model.ArchetypeMeek: {
		TraitSpeed:        1.0,
		TraitEnergyCost:   0.8,
		TraitResourceGain: 1.0,
		TraitSize:         0.9,
		TraitCoopBonus:    1.2,
	},
	model.ArchetypeAllRounder: {
		TraitSpeed:        1.2,
		TraitEnergyCost:   1.0,
		TraitResourceGain: 1.1,
		TraitSize:         1.0,
		TraitAdaptability: 1.2,
	},
}

// stageModifiers are applied generic-first, then archetype-specific.
// An entry multiplies the trait when the entity already carries it and
// introduces it at the given value when it does not. The primordial
// stage has no modifiers: evolving into it yields base traits untouched.
var genericStageModifiers = map[model.Stage]Traits{
	model.StagePrimordial: {},
	model.StagePrehistoric: {
		TraitSize: 1.15,
	},
	model.StageOrdered: {
		// Every entity gains consciousness capability in the ordered stage.
		TraitConsciousness:    ConsciousnessBaseline,
		TraitVillageInfluence: 1.0,
	},
}

var archetypeStageModifiers = map[model.Stage]map[model.Archetype]Traits{
	model.StagePrimordial: {
		model.ArchetypeStrong:     {},
		model.ArchetypeMeek:       {},
		model.ArchetypeAllRounder: {},
	},
	model.StagePrehistoric: {
		model.ArchetypeStrong: {
			TraitSpeed: 1.2,
			TraitSize:  1.25,
		},
		model.ArchetypeMeek: {
			TraitSpeed:     1.1,
			TraitCoopBonus: 1.3,
		},
		model.ArchetypeAllRounder: {
			TraitResourceGain: 1.1,
			TraitAdaptability: 1.25,
		},
	},
	model.StageOrdered: {
		model.ArchetypeStrong: {
			TraitResourceGain:     1.2,
			TraitVillageInfluence: 1.1,
		},
		model.ArchetypeMeek: {
			TraitCoopBonus:        1.4,
			TraitVillageInfluence: 1.25,
		},
		model.ArchetypeAllRounder: {
			TraitAdaptability:     1.3,
			TraitVillageInfluence: 1.15,
		},
	},
}

// BaseTraits returns a fresh copy of the archetype's seed traits.
func BaseTraits(a model.Archetype) (Traits, error) {
	seed, ok := baseTraits[a]
	if !ok {
		return nil, fmt.Errorf("unknown archetype %q", a)
	}
	return seed.Clone(), nil
}

// EvolveEntity computes the traits an entity carries in the given stage.
// When current is nil the archetype's base traits seed the computation;
// otherwise current is carried forward. Generic stage modifiers apply
// before archetype ones, and each modifier multiplies an existing trait
// or introduces an absent one. Inputs are never mutated.
func EvolveEntity(a model.Archetype, stage model.Stage, current Traits) (Traits, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("unknown archetype %q", a)
	}
	generic, ok := genericStageModifiers[stage]
	if !ok {
		return nil, fmt.Errorf("unknown stage %q", stage)
	}

	var out Traits
	if current != nil {
		out = current.Clone()
	} else {
		seed, err := BaseTraits(a)
		if err != nil {
			return nil, err
		}
		out = seed
	}

	applyModifiers(out, generic)
	applyModifiers(out, archetypeStageModifiers[stage][a])
	return out, nil
}

// applyModifiers multiplies traits the entity already has and adds the
// ones it does not. The order compounds existing traits but introduces
// new ones at face value.
func applyModifiers(t Traits, mods Traits) {
	for name, mod := range mods {
		if cur, ok := t[name]; ok {
			t[name] = cur * mod
		} else {
			t[name] = mod
		}
	}
}
