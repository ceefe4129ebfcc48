package player

import (
	"github.com/rawlph/floodgame/internal/sim/evolution"
	"github.com/rawlph/floodgame/internal/sim/model"
)

// ModifyTrait adjusts a trait by delta. Philosophical names are clamped
// to [0,2] and re-derive the gameplay trait effects; gameplay names
// mutate directly and rebuild the visual when appearance is affected.
func (p *Player) ModifyTrait(name string, delta float64) {
	if evolution.IsPhilosophical(name) {
		v := p.phil[name] + delta
		if v < 0 {
			v = 0
		}
		if v > 2 {
			v = 2
		}
		p.phil[name] = v
		p.applyPhilosophicalEffects()
		return
	}

	p.traits[name] = p.traits.Get(name, 0) + delta
	if name == evolution.TraitSize || name == evolution.TraitConsciousness {
		if p.visual != nil {
			p.visual.RebuildPlayerVisual()
		}
	}
}

// applyPhilosophicalEffects recomputes gameplay traits from the live
// philosophical vector. Each call scales from the current trait value,
// so repeated calls compound multiplicatively. That drift is the
// shipped behavior and is kept as-is.
func (p *Player) applyPhilosophicalEffects() {
	if p.traits.Has(evolution.TraitCoopBonus) {
		p.traits[evolution.TraitCoopBonus] *= 0.8 + p.phil[evolution.PhilCompassion]*0.2
	}
	if p.traits.Has(evolution.TraitAdaptability) {
		p.traits[evolution.TraitAdaptability] *= 0.8 + p.phil[evolution.PhilCuriosity]*0.2
	}
	if c := p.phil[evolution.PhilConsciousness]; c > 0 {
		// The gameplay trait tracks the philosophical vector from its
		// stage baseline. Monotone: repeated recomputes never lower it.
		if p.traits.Has(evolution.TraitConsciousness) {
			if v := evolution.ConsciousnessBaseline + c; v > p.traits[evolution.TraitConsciousness] {
				p.traits[evolution.TraitConsciousness] = v
			}
		}
		if p.traits.Has(evolution.TraitSpeed) {
			p.traits[evolution.TraitSpeed] *= 1 + c*0.05
		}
		if p.traits.Has(evolution.TraitResourceGain) {
			p.traits[evolution.TraitResourceGain] *= 1 + c*0.05
		}
	}
	if p.traits.Has(evolution.TraitVillageInfluence) && p.phil[evolution.PhilCooperation] > 0.7 {
		p.traits[evolution.TraitVillageInfluence] *= 0.8 + p.phil[evolution.PhilCooperation]*0.3
	}
}

// Evolve re-derives the trait set for the next stage, carrying the
// current traits forward, and rebuilds the visual.
func (p *Player) Evolve(nextStage model.Stage) error {
	next, err := evolution.EvolveEntity(p.archetype, nextStage, p.traits)
	if err != nil {
		return err
	}
	p.traits = next
	if p.visual != nil {
		p.visual.RebuildPlayerVisual()
	}
	if p.notifier != nil {
		p.notifier.ShowEvolutionNotification("Evolution", "Your form shifts to meet the new world.")
	}
	return nil
}
