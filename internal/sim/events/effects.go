package events

import (
	"fmt"

	"github.com/rawlph/floodgame/internal/sim/model"
)

// EffectKind enumerates the typed effects a choice may carry. Effects
// are data, not code: a small evaluator interprets them against the
// game state, so the catalog stays serializable.
type EffectKind string

const (
	EffectAddResources EffectKind = "add_resources"
	EffectAddTime      EffectKind = "add_time"
	EffectModifyTrait  EffectKind = "modify_trait"
)

type Effect struct {
	Kind EffectKind `yaml:"kind"`
	// Resources is the signed amount for add_resources.
	Resources int `yaml:"resources,omitempty"`
	// Seconds is the signed countdown adjustment for add_time.
	Seconds int `yaml:"seconds,omitempty"`
	// Trait and Amount parameterize modify_trait. Philosophical trait
	// names route through the clamp-and-feedback path of the sink.
	Trait  string  `yaml:"trait,omitempty"`
	Amount float64 `yaml:"amount,omitempty"`
}

func (e Effect) Validate() error {
	switch e.Kind {
	case EffectAddResources, EffectAddTime:
		return nil
	case EffectModifyTrait:
		if e.Trait == "" {
			return fmt.Errorf("modify_trait effect with empty trait")
		}
		return nil
	}
	return fmt.Errorf("unknown effect kind %q", e.Kind)
}

// TraitSink receives trait deltas from event effects. The player state
// implements it; philosophical names are clamped and fed back there.
type TraitSink interface {
	ModifyTrait(name string, delta float64)
}

// applyEffects runs every effect of a choice against the game state and
// trait sink, returning the choice's outcome narrative.
func applyEffects(ch Choice, gs *model.GameState, sink TraitSink) string {
	for _, e := range ch.Effects {
		switch e.Kind {
		case EffectAddResources:
			gs.AddResources(e.Resources)
		case EffectAddTime:
			gs.AddTime(e.Seconds)
		case EffectModifyTrait:
			if sink != nil {
				sink.ModifyTrait(e.Trait, e.Amount)
			}
		}
	}
	return ch.Outcome
}
