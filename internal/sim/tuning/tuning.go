package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	FrameRateHz     int     `yaml:"frame_rate_hz"`
	MaxFrameDeltaMs int     `yaml:"max_frame_delta_ms"`
	Slowdown        float64 `yaml:"slowdown"`
	WorldBound      float64 `yaml:"world_bound"`
	WorldSeed       int64   `yaml:"world_seed"`

	ProgressDB string `yaml:"progress_db"`
	ArchiveDir string `yaml:"archive_dir"`
	EventsFile string `yaml:"events_file"`
	StagesFile string `yaml:"stages_file"`
}

func Load(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	t.Normalize()
	return t, nil
}

// Normalize fills zero values so a partial file still yields a
// runnable config.
func (t *Tuning) Normalize() {
	if t.ProtocolVersion == "" {
		t.ProtocolVersion = "flood-1"
	}
	if t.FrameRateHz <= 0 {
		t.FrameRateHz = 30
	}
	if t.MaxFrameDeltaMs <= 0 {
		t.MaxFrameDeltaMs = 100
	}
	if t.Slowdown <= 0 {
		t.Slowdown = 1.0
	}
	if t.WorldBound <= 0 {
		t.WorldBound = 40
	}
	if t.WorldSeed == 0 {
		t.WorldSeed = 1
	}
	if t.ProgressDB == "" {
		t.ProgressDB = "data/progress.db"
	}
	if t.ArchiveDir == "" {
		t.ArchiveDir = "data/archive"
	}
}

func (t Tuning) Validate() error {
	if t.FrameRateHz > 240 {
		return fmt.Errorf("frame_rate_hz %d too high", t.FrameRateHz)
	}
	if t.Slowdown > 10 {
		return fmt.Errorf("slowdown %v too high", t.Slowdown)
	}
	return nil
}

func Default() Tuning {
	var t Tuning
	t.Normalize()
	return t
}
