// Package snapshot persists fetched course data so reports can be rebuilt
// offline. Each fetch is stored as a run: the ordering catalog, the media
// engagement table, the gradebook table, and the enrolled-student count,
// keyed by a generated run ID.
package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"courselens/internal/catalog"
	"courselens/internal/tabular"
)

// ErrNoRuns indicates the store holds no saved runs yet.
var ErrNoRuns = errors.New("no saved runs")

// Run describes one saved fetch.
type Run struct {
	ID        string    `json:"id"`
	CourseID  int64     `json:"course_id"`
	SectionID string    `json:"section_id"`
	Enrolled  int       `json:"enrolled"`
	CreatedAt time.Time `json:"created_at"`
}

// Snapshot is the full payload of one run.
type Snapshot struct {
	Run
	Catalog   []catalog.Item `json:"catalog"`
	Media     *tabular.Table `json:"media"`
	Gradebook *tabular.Table `json:"gradebook"`
}

// Store manages snapshot persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open initializes or connects to the snapshot database under dir and
// applies migrations.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "snapshots.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{
		db:   db,
		path: dbPath,
		lock: flock.New(filepath.Join(dir, "snapshots.lock")),
	}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// SaveRun stores a snapshot under a fresh run ID, holding the directory
// lock for the duration of the write.
func (s *Store) SaveRun(ctx context.Context, snap *Snapshot) (*Run, error) {
	if snap == nil {
		return nil, errors.New("nil snapshot")
	}
	if err := s.lock.Lock(); err != nil {
		return nil, fmt.Errorf("acquire snapshot lock: %w", err)
	}
	defer func() {
		_ = s.lock.Unlock()
	}()

	run := Run{
		ID:        uuid.NewString(),
		CourseID:  snap.CourseID,
		SectionID: snap.SectionID,
		Enrolled:  snap.Enrolled,
		CreatedAt: time.Now().UTC(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO runs (id, course_id, section_id, enrolled, created_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID,
		run.CourseID,
		run.SectionID,
		run.Enrolled,
		run.CreatedAt.Format(time.RFC3339Nano),
	); err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	payloads := []struct {
		kind  string
		value any
	}{
		{"catalog", snap.Catalog},
		{"media", snap.Media},
		{"gradebook", snap.Gradebook},
	}
	for _, p := range payloads {
		data, err := json.Marshal(p.value)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", p.kind, err)
		}
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO run_payloads (run_id, kind, payload) VALUES (?, ?, ?)`,
			run.ID,
			p.kind,
			string(data),
		); err != nil {
			return nil, fmt.Errorf("insert %s payload: %w", p.kind, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit snapshot: %w", err)
	}
	return &run, nil
}

// LoadLatest returns the most recently saved snapshot.
func (s *Store) LoadLatest(ctx context.Context) (*Snapshot, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, course_id, section_id, enrolled, created_at
         FROM runs ORDER BY created_at DESC, rowid DESC LIMIT 1`,
	)
	run, err := scanRun(row)
	if err != nil {
		return nil, err
	}
	return s.loadPayloads(ctx, run)
}

// LoadRun returns the snapshot saved under the given run ID.
func (s *Store) LoadRun(ctx context.Context, runID string) (*Snapshot, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, course_id, section_id, enrolled, created_at FROM runs WHERE id = ?`,
		runID,
	)
	run, err := scanRun(row)
	if err != nil {
		return nil, err
	}
	return s.loadPayloads(ctx, run)
}

// ListRuns returns saved runs newest first, up to limit (0 means all).
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, course_id, section_id, enrolled, created_at
              FROM runs ORDER BY created_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var createdAt string
	if err := row.Scan(&run.ID, &run.CourseID, &run.SectionID, &run.Enrolled, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoRuns
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	parsed, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse run timestamp: %w", err)
	}
	run.CreatedAt = parsed
	return &run, nil
}

func (s *Store) loadPayloads(ctx context.Context, run *Run) (*Snapshot, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT kind, payload FROM run_payloads WHERE run_id = ?`,
		run.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("load payloads: %w", err)
	}
	defer rows.Close()

	snap := &Snapshot{Run: *run}
	for rows.Next() {
		var kind, payload string
		if err := rows.Scan(&kind, &payload); err != nil {
			return nil, fmt.Errorf("scan payload: %w", err)
		}
		var dest any
		switch kind {
		case "catalog":
			dest = &snap.Catalog
		case "media":
			dest = &snap.Media
		case "gradebook":
			dest = &snap.Gradebook
		default:
			continue
		}
		if err := json.Unmarshal([]byte(payload), dest); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", kind, err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payloads: %w", err)
	}
	return snap, nil
}
