package archive

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"

	"github.com/rawlph/floodgame/internal/sim/model"
)

func TestWriter_AppendsDecodableJSONL(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, "runs")

	entries := []RunEntry{
		{Kind: "stage_success", Stage: model.StagePrimordial, Resources: 55, Restarts: 0},
		{Kind: "run_complete", Stage: model.StageOrdered, Resources: 210, Restarts: 1,
			EvolutionType: model.ArchetypeStrong, Achievements: []string{"resourceHoarder"}},
	}
	for _, e := range entries {
		if err := w.Append(e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "runs-*.jsonl.zst"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("archive files: %v err=%v", matches, err)
	}

	f, err := os.Open(matches[0])
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("zstd reader: %v", err)
	}
	defer dec.Close()

	var got []RunEntry
	sc := bufio.NewScanner(dec)
	for sc.Scan() {
		var e RunEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("decode line: %v", err)
		}
		got = append(got, e)
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("entries: got %d want 2", len(got))
	}
	if got[0].Kind != "stage_success" || got[1].Resources != 210 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got[0].At == "" {
		t.Fatalf("timestamp not defaulted")
	}
}
