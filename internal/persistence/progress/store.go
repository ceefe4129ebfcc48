package progress

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/rawlph/floodgame/internal/sim/model"
)

// Record is the durable cross-run progress snapshot, written after
// every stage success or failure. The stage field is stored truthfully
// but the game always restarts the climb from the initial stage; the
// record only carries archetype, restart count and high-score
// continuity.
type Record struct {
	Stage            model.Stage     `db:"stage" json:"stage"`
	EvolutionType    model.Archetype `db:"evolution_type" json:"evolutionType"`
	Restarts         int             `db:"restarts" json:"restarts"`
	HighestResources int             `db:"highest_resources" json:"highestResources"`
}

// Completion records a finished run. Rows are append-only history.
type Completion struct {
	CompletedAt    string          `db:"completed_at" json:"completedAt"`
	EvolutionType  model.Archetype `db:"evolution_type" json:"evolutionType"`
	Restarts       int             `db:"restarts" json:"restarts"`
	FinalResources int             `db:"final_resources" json:"finalResources"`
	Achievements   []string        `json:"achievements"`
}

type completionRow struct {
	CompletedAt    string `db:"completed_at"`
	EvolutionType  string `db:"evolution_type"`
	Restarts       int    `db:"restarts"`
	FinalResources int    `db:"final_resources"`
	Achievements   string `db:"achievements"`
}

// Store keeps the progress and completion records in a small sqlite
// database. A single connection is enough; writes are rare.
type Store struct {
	db *sqlx.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS progress (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	stage TEXT NOT NULL,
	evolution_type TEXT NOT NULL,
	restarts INTEGER NOT NULL,
	highest_resources INTEGER NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS completions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	completed_at TEXT NOT NULL,
	evolution_type TEXT NOT NULL,
	restarts INTEGER NOT NULL,
	final_resources INTEGER NOT NULL,
	achievements TEXT NOT NULL
);
`

func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("pragma: %w", err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// SaveRecord upserts the single progress row.
func (s *Store) SaveRecord(r Record) error {
	_, err := s.db.Exec(`
		INSERT INTO progress (id, stage, evolution_type, restarts, highest_resources, updated_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			stage = excluded.stage,
			evolution_type = excluded.evolution_type,
			restarts = excluded.restarts,
			highest_resources = excluded.highest_resources,
			updated_at = excluded.updated_at`,
		string(r.Stage), string(r.EvolutionType), r.Restarts, r.HighestResources,
		time.Now().UTC().Format(time.RFC3339))
	return err
}

// LoadRecord reads the progress row. The second return is false when no
// record has ever been written.
func (s *Store) LoadRecord() (Record, bool, error) {
	var r Record
	err := s.db.Get(&r, `SELECT stage, evolution_type, restarts, highest_resources FROM progress WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, err
	}
	return r, true, nil
}

// SaveCompletion appends a completion row.
func (s *Store) SaveCompletion(c Completion) error {
	ach, err := json.Marshal(c.Achievements)
	if err != nil {
		return err
	}
	if c.CompletedAt == "" {
		c.CompletedAt = time.Now().UTC().Format(time.RFC3339)
	}
	_, err = s.db.Exec(`
		INSERT INTO completions (completed_at, evolution_type, restarts, final_resources, achievements)
		VALUES (?, ?, ?, ?, ?)`,
		c.CompletedAt, string(c.EvolutionType), c.Restarts, c.FinalResources, string(ach))
	return err
}

// Completions returns the append-only completion history, oldest first.
func (s *Store) Completions() ([]Completion, error) {
	var rows []completionRow
	if err := s.db.Select(&rows, `SELECT completed_at, evolution_type, restarts, final_resources, achievements FROM completions ORDER BY id`); err != nil {
		return nil, err
	}
	out := make([]Completion, 0, len(rows))
	for _, row := range rows {
		c := Completion{
			CompletedAt:    row.CompletedAt,
			EvolutionType:  model.Archetype(row.EvolutionType),
			Restarts:       row.Restarts,
			FinalResources: row.FinalResources,
		}
		if err := json.Unmarshal([]byte(row.Achievements), &c.Achievements); err != nil {
			return nil, fmt.Errorf("completion achievements: %w", err)
		}
		out = append(out, c)
	}
	return out, nil
}
