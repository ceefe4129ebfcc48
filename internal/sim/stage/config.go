package stage

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rawlph/floodgame/internal/sim/model"
)

// Config is the static per-stage tuning: how long until the flood, how
// much must be gathered, and what the catastrophe looks like.
type Config struct {
	TimerSeconds int    `yaml:"timer_seconds"`
	ResourceGoal int    `yaml:"resource_goal"`
	FloodKind    string `yaml:"flood_kind"` // "water" or "meteor"
	// Ambient parameters forwarded verbatim to the scene and shell.
	Ambient map[string]float64 `yaml:"ambient,omitempty"`
}

// Configs maps each stage to its configuration.
type Configs map[model.Stage]Config

// DefaultConfigs mirrors the shipped stage pacing.
func DefaultConfigs() Configs {
	return Configs{
		model.StagePrimordial: {
			TimerSeconds: 180,
			ResourceGoal: 50,
			FloodKind:    "water",
			Ambient:      map[string]float64{"light": 0.4, "fog": 0.8},
		},
		model.StagePrehistoric: {
			TimerSeconds: 240,
			ResourceGoal: 100,
			FloodKind:    "meteor",
			Ambient:      map[string]float64{"light": 0.7, "fog": 0.4},
		},
		model.StageOrdered: {
			TimerSeconds: 300,
			ResourceGoal: 150,
			FloodKind:    "water",
			Ambient:      map[string]float64{"light": 0.9, "fog": 0.2},
		},
	}
}

// LoadConfigs reads stages.yaml; an empty path yields the defaults.
func LoadConfigs(path string) (Configs, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultConfigs(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw struct {
		Stages Configs `yaml:"stages"`
	}
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("stages.yaml: %w", err)
	}
	if err := raw.Stages.Validate(); err != nil {
		return nil, fmt.Errorf("stages.yaml: %w", err)
	}
	return raw.Stages, nil
}

func (c Configs) Validate() error {
	for _, s := range model.Stages {
		cfg, ok := c[s]
		if !ok {
			return fmt.Errorf("missing stage %q", s)
		}
		if cfg.TimerSeconds <= 0 {
			return fmt.Errorf("stage %s: timer_seconds must be positive", s)
		}
		if cfg.ResourceGoal <= 0 {
			return fmt.Errorf("stage %s: resource_goal must be positive", s)
		}
		switch cfg.FloodKind {
		case "water", "meteor":
		default:
			return fmt.Errorf("stage %s: unknown flood_kind %q", s, cfg.FloodKind)
		}
	}
	for s := range c {
		if !s.Valid() {
			return fmt.Errorf("unknown stage %q", s)
		}
	}
	return nil
}
