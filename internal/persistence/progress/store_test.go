package progress

import (
	"path/filepath"
	"testing"

	"github.com/rawlph/floodgame/internal/sim/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "progress.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_RecordRoundTrip(t *testing.T) {
	s := openTestStore(t)

	if _, ok, err := s.LoadRecord(); err != nil || ok {
		t.Fatalf("fresh store: ok=%v err=%v", ok, err)
	}

	want := Record{
		Stage:            model.StageOrdered,
		EvolutionType:    model.ArchetypeMeek,
		Restarts:         3,
		HighestResources: 142,
	}
	if err := s.SaveRecord(want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := s.LoadRecord()
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Fatalf("record: got %+v want %+v", got, want)
	}

	// Upsert replaces the single row.
	want.Restarts = 4
	if err := s.SaveRecord(want); err != nil {
		t.Fatalf("save again: %v", err)
	}
	got, _, _ = s.LoadRecord()
	if got.Restarts != 4 {
		t.Fatalf("restarts after upsert: %d", got.Restarts)
	}
}

func TestStore_CompletionHistoryAppendOnly(t *testing.T) {
	s := openTestStore(t)

	for i := 0; i < 2; i++ {
		err := s.SaveCompletion(Completion{
			EvolutionType:  model.ArchetypeStrong,
			Restarts:       i,
			FinalResources: 200 + i,
			Achievements:   []string{"floodSurvivor", "resourceHoarder"},
		})
		if err != nil {
			t.Fatalf("save completion: %v", err)
		}
	}

	hist, err := s.Completions()
	if err != nil {
		t.Fatalf("completions: %v", err)
	}
	if len(hist) != 2 {
		t.Fatalf("history length: %d want 2", len(hist))
	}
	if hist[0].FinalResources != 200 || hist[1].FinalResources != 201 {
		t.Fatalf("history order: %+v", hist)
	}
	if len(hist[1].Achievements) != 2 {
		t.Fatalf("achievements: %+v", hist[1].Achievements)
	}
	if hist[0].CompletedAt == "" {
		t.Fatalf("completedAt not defaulted")
	}
}
