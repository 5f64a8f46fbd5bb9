/*
Package sqlite persists published attendance datasets and settings.

PURPOSE:
  The engine keeps its raw dataset in memory. This store makes every
  published upload durable so a restarted server comes back with the last
  file and the last parameters instead of an empty screen.

KEY TABLES:
  uploads:  One row per published file (id, name, generation, counts)
  swipes:   The extracted entries of an upload, in dataset order
  settings: Key/value pairs; "params" holds the JSON-encoded parameters

ORDERING:
  Swipes are written person by person, day by day, in the dataset's own
  order and numbered by seq. Replaying them through attendance.Builder
  therefore rebuilds the same people order and the same first-seen day
  order, which the reference-month rule depends on.

  Uploads are ordered by generation, not by save time. Saves of two
  overlapping uploads may commit in either order; the higher generation
  is still the latest.

IMMUTABILITY:
  An upload is written once in a single transaction and never updated.
  Old uploads are removed whole by PruneUploads.

CONCURRENCY:
  Uses sync.RWMutex around the handle. ":memory:" databases are pinned to
  one connection so every query sees the same database.

SEE ALSO:
  - attendance/dataset.go: Builder used to rebuild datasets
  - api/handlers.go:       Saves after publish, restores on startup
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/traffic-engine/attendance"
)

const paramsKey = "params"

// timeLayout has a fixed width so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store implements upload and settings persistence using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Upload describes one published file.
type Upload struct {
	ID         string
	Filename   string
	Generation uint64
	Rows       int
	People     int
	CreatedAt  time.Time
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS uploads (
		id TEXT PRIMARY KEY,
		filename TEXT NOT NULL,
		generation INTEGER NOT NULL,
		row_count INTEGER NOT NULL,
		people_count INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_uploads_generation
		ON uploads(generation DESC);

	CREATE TABLE IF NOT EXISTS swipes (
		upload_id TEXT NOT NULL REFERENCES uploads(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		person_id TEXT NOT NULL,
		person_name TEXT NOT NULL,
		date_key TEXT NOT NULL,
		time TEXT NOT NULL,
		description TEXT NOT NULL,
		PRIMARY KEY (upload_id, seq)
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// UPLOADS
// =============================================================================

// SaveUpload writes an upload and its dataset atomically. A missing ID is
// generated; the stored record is returned.
func (s *Store) SaveUpload(ctx context.Context, u Upload, ds *attendance.Dataset) (Upload, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	u.Rows = ds.Rows()
	u.People = ds.Len()

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Upload{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO uploads (id, filename, generation, row_count, people_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Filename, u.Generation, u.Rows, u.People, u.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return Upload{}, fmt.Errorf("failed to save upload: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO swipes (upload_id, seq, person_id, person_name, date_key, time, description)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return Upload{}, err
	}
	defer stmt.Close()

	seq := 0
	for _, p := range ds.People() {
		for _, d := range p.Days {
			for _, e := range d.Entries {
				if _, err := stmt.ExecContext(ctx, u.ID, seq, p.ID, p.Name, d.Date, e.Time, e.Description); err != nil {
					return Upload{}, fmt.Errorf("failed to save swipe %d: %w", seq, err)
				}
				seq++
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return Upload{}, err
	}
	return u, nil
}

// GetUpload retrieves an upload by ID. Returns nil if it does not exist.
func (s *Store) GetUpload(ctx context.Context, id string) (*Upload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	uploads, err := s.queryUploads(ctx, "WHERE id = ?", id)
	if err != nil || len(uploads) == 0 {
		return nil, err
	}
	return &uploads[0], nil
}

// LatestUpload returns the upload with the highest generation, or nil. The
// save order does not matter: a slow save of an older generation never
// displaces a newer one.
func (s *Store) LatestUpload(ctx context.Context) (*Upload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	uploads, err := s.queryUploads(ctx, "ORDER BY generation DESC, created_at DESC LIMIT 1")
	if err != nil || len(uploads) == 0 {
		return nil, err
	}
	return &uploads[0], nil
}

// ListUploads returns all uploads, highest generation first.
func (s *Store) ListUploads(ctx context.Context) ([]Upload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryUploads(ctx, "ORDER BY generation DESC, created_at DESC")
}

func (s *Store) queryUploads(ctx context.Context, clause string, args ...any) ([]Upload, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, filename, generation, row_count, people_count, created_at FROM uploads "+clause,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var uploads []Upload
	for rows.Next() {
		var u Upload
		var createdAt string
		if err := rows.Scan(&u.ID, &u.Filename, &u.Generation, &u.Rows, &u.People, &createdAt); err != nil {
			return nil, err
		}
		u.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		uploads = append(uploads, u)
	}
	return uploads, rows.Err()
}

// LoadDataset rebuilds the raw dataset of an upload. Returns nil if the
// upload does not exist.
func (s *Store) LoadDataset(ctx context.Context, uploadID string) (*attendance.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM uploads WHERE id = ?", uploadID).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT person_id, person_name, date_key, time, description
		FROM swipes WHERE upload_id = ? ORDER BY seq`, uploadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	b := attendance.NewBuilder()
	for rows.Next() {
		var ev attendance.Event
		if err := rows.Scan(&ev.PersonID, &ev.Name, &ev.Entry.Date, &ev.Entry.Time, &ev.Entry.Description); err != nil {
			return nil, err
		}
		b.Add(ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return b.Build(), nil
}

// PruneUploads keeps the keep highest generations and deletes the rest.
func (s *Store) PruneUploads(ctx context.Context, keep int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM uploads WHERE id NOT IN (
			SELECT id FROM uploads ORDER BY generation DESC, created_at DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// =============================================================================
// SETTINGS
// =============================================================================

// SaveParams stores the current parameters.
func (s *Store) SaveParams(ctx context.Context, p attendance.Params) error {
	value, err := json.Marshal(p)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		paramsKey, string(value), time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// LoadParams returns the stored parameters; ok is false if none were saved.
func (s *Store) LoadParams(ctx context.Context) (p attendance.Params, ok bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err = s.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", paramsKey).Scan(&value)
	if err == sql.ErrNoRows {
		return attendance.Params{}, false, nil
	}
	if err != nil {
		return attendance.Params{}, false, err
	}
	if err := json.Unmarshal([]byte(value), &p); err != nil {
		return attendance.Params{}, false, fmt.Errorf("corrupt stored params: %w", err)
	}
	return p.Clamp(), true, nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"swipes", "uploads", "settings"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}
