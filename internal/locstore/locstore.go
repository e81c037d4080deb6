// Package locstore is the persistent on-disk location cache (C10):
// rounded (lat,lon) -> area_code, with a hit counter and creation time, so a
// proxy chain doesn't re-resolve coordinates it has already seen across
// process restarts.
//
// Grounded on the pack's modernc.org/sqlite usage (the elida/acars_parser
// lineage in other_examples) as the pure-Go, CGO-free persistent store; the
// schema itself has no teacher analogue since IPMI has no chained-lookup
// concept.
package locstore

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	_ "modernc.org/sqlite"
)

// Precision is the number of decimal places coordinates are rounded to
// before being used as a cache key, trading resolver precision (roughly
// 11m at 4 decimal places) for cache hit rate.
const Precision = 4

const schema = `
CREATE TABLE IF NOT EXISTS locations (
	lat REAL NOT NULL,
	lon REAL NOT NULL,
	area_code INTEGER NOT NULL,
	created_at INTEGER NOT NULL,
	hit_count INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (lat, lon)
);
`

// Store wraps a sqlite-backed table of resolved coordinates.
type Store struct {
	db  *sql.DB
	ttl time.Duration
}

// Open creates or opens the sqlite database at path ("" or ":memory:" for a
// transient in-process store, useful in tests). Entries older than ttl are
// treated as expired on Lookup and re-resolved; ttl <= 0 means entries never
// expire.
func Open(path string, ttl time.Duration) (*Store, error) {
	if path == "" {
		path = ":memory:"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("locstore: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("locstore: migrate: %w", err)
	}
	return &Store{db: db, ttl: ttl}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func round(v float64) float64 {
	scale := math.Pow(10, Precision)
	return math.Round(v*scale) / scale
}

// Lookup returns the area code previously stored for (lat, lon), bumping its
// hit counter, or ok=false if no entry exists at this precision or the entry
// is older than the store's ttl as of now (a Unix timestamp). An expired
// entry is left in place; the next Store call overwrites it.
func (s *Store) Lookup(ctx context.Context, lat, lon float64, now int64) (areaCode uint32, ok bool, err error) {
	rlat, rlon := round(lat), round(lon)
	var createdAt int64
	row := s.db.QueryRowContext(ctx,
		`SELECT area_code, created_at FROM locations WHERE lat = ? AND lon = ?`, rlat, rlon)
	if err := row.Scan(&areaCode, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("locstore: lookup: %w", err)
	}
	if s.ttl > 0 && now-createdAt >= int64(s.ttl/time.Second) {
		return 0, false, nil
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE locations SET hit_count = hit_count + 1 WHERE lat = ? AND lon = ?`, rlat, rlon); err != nil {
		return areaCode, true, fmt.Errorf("locstore: hit count update: %w", err)
	}
	return areaCode, true, nil
}

// Store records the resolution of (lat, lon) to areaCode as of now (a Unix
// timestamp, supplied by the caller since this package doesn't read the
// clock itself).
func (s *Store) Store(ctx context.Context, lat, lon float64, areaCode uint32, now int64) error {
	rlat, rlon := round(lat), round(lon)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO locations (lat, lon, area_code, created_at, hit_count)
		VALUES (?, ?, ?, ?, 0)
		ON CONFLICT(lat, lon) DO UPDATE SET
			area_code = excluded.area_code,
			created_at = excluded.created_at,
			hit_count = 0`,
		rlat, rlon, areaCode, now)
	if err != nil {
		return fmt.Errorf("locstore: store: %w", err)
	}
	return nil
}

// Len returns the number of distinct coordinates cached, for diagnostics.
func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM locations`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("locstore: count: %w", err)
	}
	return n, nil
}
