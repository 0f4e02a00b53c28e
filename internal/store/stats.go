package store

import (
	"context"
	"os"
	"time"
)

// CacheStats describes the local cache, shown alongside catalog stats.
type CacheStats struct {
	DBPath      string     `json:"db_path"`
	DBSizeBytes int64      `json:"db_size_bytes"`
	Snapshots   int        `json:"snapshots"`
	LastFetched *time.Time `json:"last_fetched,omitempty"`
	HasResult   bool       `json:"has_result"`
}

// CacheStats returns cache statistics.
func (s *SQLiteStore) CacheStats(ctx context.Context, dbPath string) (*CacheStats, error) {
	st := &CacheStats{DBPath: dbPath}

	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshots`).Scan(&st.Snapshots)

	var fetchedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT fetched_at FROM snapshots ORDER BY fetched_at DESC LIMIT 1`).Scan(&fetchedAt)
	if err == nil {
		if t, perr := time.Parse(time.RFC3339, fetchedAt); perr == nil {
			st.LastFetched = &t
		}
	}

	var results int
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM results`).Scan(&results)
	st.HasResult = results > 0

	return st, nil
}
