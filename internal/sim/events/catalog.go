package events

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rawlph/floodgame/internal/sim/model"
)

// Choice categories used by the choices summary.
const (
	CategoryCompassion  = "compassion"
	CategoryCuriosity   = "curiosity"
	CategoryCooperation = "cooperation"
	CategoryEfficiency  = "efficiency"
)

var knownCategories = map[string]bool{
	CategoryCompassion:  true,
	CategoryCuriosity:   true,
	CategoryCooperation: true,
	CategoryEfficiency:  true,
}

// Definition is an immutable catalog entry. The catalog is static per
// stage and never mutated at runtime; triggers reference entries by id.
type Definition struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Choices     []Choice `yaml:"choices"`
}

// Choice carries an authored category tag alongside its typed effects.
// The tag drives the choices summary directly; free-text keyword
// matching is only a fallback for untagged entries.
type Choice struct {
	Text     string   `yaml:"text"`
	Outcome  string   `yaml:"outcome"`
	Category string   `yaml:"category"`
	Effects  []Effect `yaml:"effects"`
}

// Catalog holds the stage-scoped event definitions.
type Catalog struct {
	ByStage map[model.Stage][]Definition `yaml:"stages"`
}

// ForStage returns the definitions authored for a stage.
func (c *Catalog) ForStage(s model.Stage) []Definition {
	return c.ByStage[s]
}

// Lookup resolves a definition id within a stage.
func (c *Catalog) Lookup(s model.Stage, id string) (Definition, bool) {
	for _, d := range c.ByStage[s] {
		if d.ID == id {
			return d, true
		}
	}
	return Definition{}, false
}

// LoadCatalog reads an events catalog from a yaml file. An empty path
// yields the built-in defaults.
func LoadCatalog(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultCatalog(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Catalog
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("events.yaml: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("events.yaml: %w", err)
	}
	return &c, nil
}

func (c *Catalog) Validate() error {
	seen := map[string]bool{}
	for stage, defs := range c.ByStage {
		if !stage.Valid() {
			return fmt.Errorf("unknown stage %q", stage)
		}
		for _, d := range defs {
			if d.ID == "" {
				return fmt.Errorf("stage %s: event with empty id", stage)
			}
			if seen[d.ID] {
				return fmt.Errorf("duplicate event id %q", d.ID)
			}
			seen[d.ID] = true
			if len(d.Choices) == 0 {
				return fmt.Errorf("event %s: no choices", d.ID)
			}
			for i, ch := range d.Choices {
				if ch.Text == "" {
					return fmt.Errorf("event %s choice %d: empty text", d.ID, i)
				}
				if ch.Category != "" && !knownCategories[ch.Category] {
					return fmt.Errorf("event %s choice %d: unknown category %q", d.ID, i, ch.Category)
				}
				for _, ef := range ch.Effects {
					if err := ef.Validate(); err != nil {
						return fmt.Errorf("event %s choice %d: %w", d.ID, i, err)
					}
				}
			}
		}
	}
	return nil
}
