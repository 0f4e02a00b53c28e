// Package store caches fetched catalog snapshots and the last good transform
// result in a local SQLite database. The cache belongs to the CLI layer; the
// transformation engine itself never touches it.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"catalogctl/internal/engine"
	"catalogctl/internal/model"
)

// Snapshot is one cached catalog fetch.
type Snapshot struct {
	ID          string    `json:"id"`
	SourceURL   string    `json:"source_url"`
	FetchedAt   time.Time `json:"fetched_at"`
	RecordCount int       `json:"record_count"`
	Payload     []byte    `json:"-"`
}

// Result is a persisted transform result. Only the most recent good result
// is kept; a failed transform never replaces it.
type Result struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	SchemaSrc string    `json:"schema"`
	RowCount  int       `json:"row_count"`
	Payload   []byte    `json:"-"`
}

// SQLiteStore implements the snapshot cache on SQLite.
type SQLiteStore struct {
	db      *sql.DB
	entropy *rand.Rand
}

// NewSQLiteStore opens or creates the cache database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id           TEXT PRIMARY KEY,
		source_url   TEXT NOT NULL,
		fetched_at   TEXT NOT NULL,
		record_count INTEGER NOT NULL,
		payload      BLOB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_snapshots_fetched ON snapshots(fetched_at DESC);

	CREATE TABLE IF NOT EXISTS results (
		id         TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		schema_src TEXT NOT NULL,
		row_count  INTEGER NOT NULL,
		payload    BLOB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_results_created ON results(created_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveSnapshot stores a fetched catalog and returns its snapshot metadata.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, sourceURL string, cat *model.Catalog) (*Snapshot, error) {
	payload, err := json.Marshal(cat)
	if err != nil {
		return nil, fmt.Errorf("encode catalog: %w", err)
	}

	snap := &Snapshot{
		ID:          s.newID(),
		SourceURL:   sourceURL,
		FetchedAt:   time.Now().UTC(),
		RecordCount: len(cat.Services),
		Payload:     payload,
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, source_url, fetched_at, record_count, payload)
		 VALUES (?, ?, ?, ?, ?)`,
		snap.ID, snap.SourceURL, snap.FetchedAt.Format(time.RFC3339), snap.RecordCount, snap.Payload)
	if err != nil {
		return nil, fmt.Errorf("insert snapshot: %w", err)
	}
	return snap, nil
}

// LatestCatalog loads the most recently fetched catalog.
func (s *SQLiteStore) LatestCatalog(ctx context.Context) (*model.Catalog, *Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source_url, fetched_at, record_count, payload
		 FROM snapshots ORDER BY fetched_at DESC, id DESC LIMIT 1`)
	snap, err := scanSnapshot(row)
	if err == sql.ErrNoRows {
		return nil, nil, fmt.Errorf("no catalog cached: run fetch or import first")
	}
	if err != nil {
		return nil, nil, err
	}

	var cat model.Catalog
	if err := json.Unmarshal(snap.Payload, &cat); err != nil {
		return nil, nil, fmt.Errorf("decode snapshot %s: %w", snap.ID, err)
	}
	return &cat, snap, nil
}

// GetCatalog loads a specific snapshot's catalog by ID.
func (s *SQLiteStore) GetCatalog(ctx context.Context, id string) (*model.Catalog, *Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source_url, fetched_at, record_count, payload
		 FROM snapshots WHERE id = ?`, id)
	snap, err := scanSnapshot(row)
	if err == sql.ErrNoRows {
		return nil, nil, fmt.Errorf("snapshot not found: %s", id)
	}
	if err != nil {
		return nil, nil, err
	}

	var cat model.Catalog
	if err := json.Unmarshal(snap.Payload, &cat); err != nil {
		return nil, nil, fmt.Errorf("decode snapshot %s: %w", snap.ID, err)
	}
	return &cat, snap, nil
}

// ListSnapshots returns snapshot metadata, newest first, without payloads.
func (s *SQLiteStore) ListSnapshots(ctx context.Context, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_url, fetched_at, record_count
		 FROM snapshots ORDER BY fetched_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var snap Snapshot
		var fetchedAt string
		if err := rows.Scan(&snap.ID, &snap.SourceURL, &fetchedAt, &snap.RecordCount); err != nil {
			return nil, err
		}
		snap.FetchedAt, _ = time.Parse(time.RFC3339, fetchedAt)
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

// DeleteSnapshot removes one cached snapshot.
func (s *SQLiteStore) DeleteSnapshot(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("snapshot not found: %s", id)
	}
	return nil
}

// SaveResult persists a successful transform result, replacing earlier ones.
func (s *SQLiteStore) SaveResult(ctx context.Context, schemaSrc string, rowsOut []engine.Row) (*Result, error) {
	payload, err := json.Marshal(rowsOut)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}

	res := &Result{
		ID:        s.newID(),
		CreatedAt: time.Now().UTC(),
		SchemaSrc: schemaSrc,
		RowCount:  len(rowsOut),
		Payload:   payload,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM results`); err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO results (id, created_at, schema_src, row_count, payload)
		 VALUES (?, ?, ?, ?, ?)`,
		res.ID, res.CreatedAt.Format(time.RFC3339), res.SchemaSrc, res.RowCount, res.Payload)
	if err != nil {
		return nil, fmt.Errorf("insert result: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return res, nil
}

// LastResult returns the most recent persisted transform result, or nil if
// none exists.
func (s *SQLiteStore) LastResult(ctx context.Context) (*Result, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, schema_src, row_count, payload
		 FROM results ORDER BY created_at DESC, id DESC LIMIT 1`)

	var res Result
	var createdAt string
	err := row.Scan(&res.ID, &createdAt, &res.SchemaSrc, &res.RowCount, &res.Payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	res.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &res, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (*Snapshot, error) {
	var snap Snapshot
	var fetchedAt string
	err := row.Scan(&snap.ID, &snap.SourceURL, &fetchedAt, &snap.RecordCount, &snap.Payload)
	if err != nil {
		return nil, err
	}
	snap.FetchedAt, _ = time.Parse(time.RFC3339, fetchedAt)
	return &snap, nil
}
