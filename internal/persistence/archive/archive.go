package archive

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/rawlph/floodgame/internal/sim/events"
	"github.com/rawlph/floodgame/internal/sim/model"
)

// RunEntry is one line of the run archive: a stage outcome or a full
// run completion, with enough context to replay the session offline.
type RunEntry struct {
	At            string               `json:"at"`
	Kind          string               `json:"kind"` // "stage_success","stage_failure","run_complete"
	Stage         model.Stage          `json:"stage"`
	EvolutionType model.Archetype      `json:"evolution_type,omitempty"`
	Resources     int                  `json:"resources"`
	Restarts      int                  `json:"restarts"`
	Achievements  []string             `json:"achievements,omitempty"`
	Choices       []events.ChoiceRecord `json:"choices,omitempty"`
}

const (
	KindStageSuccess = "stage_success"
	KindStageFailure = "stage_failure"
	KindRunComplete  = "run_complete"
)

// Writer appends zstd-compressed JSONL entries, rotating hourly.
type Writer struct {
	baseDir string
	prefix  string

	mu      sync.Mutex
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

func NewWriter(baseDir, prefix string) *Writer {
	return &Writer{baseDir: baseDir, prefix: prefix}
}

func (w *Writer) Append(v RunEntry) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if v.At == "" {
		v.At = time.Now().UTC().Format(time.RFC3339)
	}

	hour := time.Now().UTC().Format("2006-01-02-15")
	if hour != w.curHour {
		if err := w.rotateLocked(hour); err != nil {
			return err
		}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *Writer) rotateLocked(hour string) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	path := w.pathForHour(hour)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 64*1024)
	w.curHour = hour
	return nil
}

func (w *Writer) closeLocked() error {
	var err error
	if w.w != nil {
		_ = w.w.Flush()
	}
	if w.enc != nil {
		err = w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	w.w = nil
	return err
}

func (w *Writer) pathForHour(hour string) string {
	return filepath.Join(w.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", w.prefix, hour))
}
