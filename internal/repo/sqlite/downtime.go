package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/hamed0406/uptimewatch/internal/domain"
	"github.com/hamed0406/uptimewatch/internal/repo"
)

const downtimeCols = `id, endpoint_id, started_at_ms, ended_at_ms, reason`

func (s *Store) queryDowntime(ctx context.Context, q string, args ...any) ([]domain.DowntimeInterval, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DowntimeInterval
	for rows.Next() {
		var (
			d       domain.DowntimeInterval
			eid     string
			started int64
			ended   sql.NullInt64
		)
		if err := rows.Scan(&d.ID, &eid, &started, &ended, &d.Reason); err != nil {
			return nil, fmt.Errorf("scan downtime: %w", err)
		}
		d.EndpointID = domain.EndpointID(eid)
		d.StartedAt = fromMS(started)
		d.EndedAt = timePtr(ended)
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) FindOpenDowntime(ctx context.Context, id domain.EndpointID) (*domain.DowntimeInterval, error) {
	open, err := s.queryDowntime(ctx,
		`SELECT `+downtimeCols+` FROM downtime_intervals WHERE endpoint_id = ? AND ended_at_ms IS NULL ORDER BY started_at_ms`,
		string(id))
	if err != nil {
		return nil, fmt.Errorf("find open downtime: %w", err)
	}
	switch len(open) {
	case 0:
		return nil, nil
	case 1:
		return &open[0], nil
	default:
		return nil, &repo.InvariantError{EndpointID: id, Open: len(open)}
	}
}

func (s *Store) CreateDowntime(ctx context.Context, id domain.EndpointID, start time.Time, reason string) (*domain.DowntimeInterval, error) {
	d := &domain.DowntimeInterval{
		ID:         uuid.NewString(),
		EndpointID: id,
		StartedAt:  fromMS(toMS(start)),
		Reason:     reason,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO downtime_intervals (id, endpoint_id, started_at_ms, reason) VALUES (?, ?, ?, ?)`,
		d.ID, string(id), toMS(start), reason)
	switch sqliteCode(err) {
	case sqlite3.ErrConstraintUnique:
		return nil, repo.ErrOpenIntervalExists
	case sqlite3.ErrConstraintForeignKey:
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("insert downtime: %w", err)
	}
	return d, nil
}

func (s *Store) CloseDowntime(ctx context.Context, intervalID string, end time.Time) error {
	res, err := s.db.ExecContext(ctx, `UPDATE downtime_intervals SET ended_at_ms = ? WHERE id = ?`, toMS(end), intervalID)
	if err != nil {
		return fmt.Errorf("close downtime: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *Store) DowntimeInWindow(ctx context.Context, id domain.EndpointID, windowStart, now time.Time) ([]domain.DowntimeInterval, error) {
	out, err := s.queryDowntime(ctx,
		`SELECT `+downtimeCols+` FROM downtime_intervals
		  WHERE endpoint_id = ?
		    AND started_at_ms < ?
		    AND (ended_at_ms IS NULL OR ended_at_ms >= ?)
		  ORDER BY started_at_ms`,
		string(id), toMS(now), toMS(windowStart))
	if err != nil {
		return nil, fmt.Errorf("downtime in window: %w", err)
	}
	return out, nil
}

func (s *Store) RecentDowntime(ctx context.Context, id domain.EndpointID, limit int) ([]domain.DowntimeInterval, error) {
	if limit <= 0 {
		limit = 5
	}
	out, err := s.queryDowntime(ctx,
		`SELECT `+downtimeCols+` FROM downtime_intervals WHERE endpoint_id = ? ORDER BY started_at_ms DESC LIMIT ?`,
		string(id), limit)
	if err != nil {
		return nil, fmt.Errorf("recent downtime: %w", err)
	}
	return out, nil
}
