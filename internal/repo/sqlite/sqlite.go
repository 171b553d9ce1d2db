package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/hamed0406/uptimewatch/internal/repo"
)

var _ repo.Store = (*Store)(nil)

// Store is the embedded durable store. Timestamps are kept as unix
// milliseconds so range predicates compare numerically.
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS endpoints (
	id               TEXT PRIMARY KEY,
	name             TEXT NOT NULL,
	url              TEXT NOT NULL,
	notify_email     TEXT NOT NULL DEFAULT '',
	is_active        INTEGER NOT NULL DEFAULT 1,
	status           TEXT NOT NULL DEFAULT 'unknown',
	last_checked_ms  INTEGER NULL,
	response_time_ms INTEGER NULL,
	last_downtime_ms INTEGER NULL,
	created_at_ms    INTEGER NOT NULL,
	updated_at_ms    INTEGER NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS uq_endpoints_url ON endpoints (lower(url));

CREATE TABLE IF NOT EXISTS downtime_intervals (
	id            TEXT PRIMARY KEY,
	endpoint_id   TEXT NOT NULL REFERENCES endpoints(id) ON DELETE CASCADE,
	started_at_ms INTEGER NOT NULL,
	ended_at_ms   INTEGER NULL,
	reason        TEXT NOT NULL DEFAULT ''
);
CREATE UNIQUE INDEX IF NOT EXISTS uq_downtime_open ON downtime_intervals (endpoint_id) WHERE ended_at_ms IS NULL;
CREATE INDEX IF NOT EXISTS idx_downtime_endpoint_start ON downtime_intervals (endpoint_id, started_at_ms);
`

// Open opens (creating if needed) the database file and applies the schema.
func Open(ctx context.Context, path string, log *zap.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer keeps "database is locked" out of the probe path
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}
	log.Info("sqlite_opened", zap.String("path", path))
	return &Store{db: db, log: log}, nil
}

func (s *Store) Close() {
	if err := s.db.Close(); err != nil {
		s.log.Warn("sqlite_close_error", zap.Error(err))
	}
}

func toMS(t time.Time) int64 { return t.UnixMilli() }

func fromMS(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func nullMS(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMS(*t), Valid: true}
}

func timePtr(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := fromMS(n.Int64)
	return &t
}

func sqliteCode(err error) sqlite3.ErrNoExtended {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode
	}
	return 0
}

type scanner interface {
	Scan(dest ...any) error
}
