package evolution

// Trait names used by the gameplay layer. A trait absent from a Traits
// map is not applicable to that archetype, never implicitly zero.
const (
	TraitSpeed            = "speed"
	TraitEnergyCost       = "energyCost"
	TraitResourceGain     = "resourceGain"
	TraitSize             = "size"
	TraitCoopBonus        = "coopBonus"
	TraitAdaptability     = "adaptability"
	TraitVillageInfluence = "villageInfluence"
	TraitConsciousness    = "consciousness"
)

// ConsciousnessBaseline is the value the ordered stage introduces the
// consciousness trait at. Philosophical growth raises it from there.
const ConsciousnessBaseline = 0.5

// Philosophical trait names. These live in their own vector on the
// player and feed back into gameplay traits; see ApplyPhilosophicalEffects.
const (
	PhilCompassion    = "compassion"
	PhilCuriosity     = "curiosity"
	PhilConsciousness = "consciousness"
	PhilCooperation   = "cooperation"
)

var PhilosophicalTraits = []string{PhilCompassion, PhilCuriosity, PhilConsciousness, PhilCooperation}

func IsPhilosophical(name string) bool {
	for _, p := range PhilosophicalTraits {
		if p == name {
			return true
		}
	}
	return false
}

// Traits maps a trait name to its numeric multiplier or value.
type Traits map[string]float64

func (t Traits) Clone() Traits {
	c := make(Traits, len(t))
	for k, v := range t {
		c[k] = v
	}
	return c
}

func (t Traits) Has(name string) bool {
	_, ok := t[name]
	return ok
}

// Get returns the trait value, or fallback when the trait is absent.
func (t Traits) Get(name string, fallback float64) float64 {
	if v, ok := t[name]; ok {
		return v
	}
	return fallback
}
