package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hamed0406/uptimewatch/internal/domain"
	"github.com/hamed0406/uptimewatch/internal/repo"
)

const downtimeCols = `id, endpoint_id, started_at, ended_at, reason`

func (s *Store) queryDowntime(ctx context.Context, q string, args ...any) ([]domain.DowntimeInterval, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DowntimeInterval
	for rows.Next() {
		var (
			d   domain.DowntimeInterval
			eid string
		)
		if err := rows.Scan(&d.ID, &eid, &d.StartedAt, &d.EndedAt, &d.Reason); err != nil {
			return nil, fmt.Errorf("scan downtime: %w", err)
		}
		d.EndpointID = domain.EndpointID(eid)
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) FindOpenDowntime(ctx context.Context, id domain.EndpointID) (*domain.DowntimeInterval, error) {
	// LIMIT 2 is enough to tell "one" from "more than one".
	open, err := s.queryDowntime(ctx,
		`SELECT `+downtimeCols+` FROM downtime_intervals
		  WHERE endpoint_id = $1 AND ended_at IS NULL
		  ORDER BY started_at
		  LIMIT 2`, string(id))
	if err != nil {
		return nil, fmt.Errorf("find open downtime: %w", err)
	}
	switch len(open) {
	case 0:
		return nil, nil
	case 1:
		return &open[0], nil
	default:
		var n int
		if err := s.pool.QueryRow(ctx,
			`SELECT count(*) FROM downtime_intervals WHERE endpoint_id = $1 AND ended_at IS NULL`,
			string(id)).Scan(&n); err != nil {
			n = len(open)
		}
		return nil, &repo.InvariantError{EndpointID: id, Open: n}
	}
}

func (s *Store) CreateDowntime(ctx context.Context, id domain.EndpointID, start time.Time, reason string) (*domain.DowntimeInterval, error) {
	d := &domain.DowntimeInterval{
		ID:         uuid.NewString(),
		EndpointID: id,
		StartedAt:  start,
		Reason:     reason,
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO downtime_intervals (id, endpoint_id, started_at, reason) VALUES ($1, $2, $3, $4)`,
		d.ID, string(id), start, reason)
	switch pgCode(err) {
	case codeUniqueViolation:
		return nil, repo.ErrOpenIntervalExists
	case codeForeignKeyViolation:
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("insert downtime: %w", err)
	}
	return d, nil
}

func (s *Store) CloseDowntime(ctx context.Context, intervalID string, end time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE downtime_intervals SET ended_at = $2 WHERE id = $1`, intervalID, end)
	if err != nil {
		return fmt.Errorf("close downtime: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *Store) DowntimeInWindow(ctx context.Context, id domain.EndpointID, windowStart, now time.Time) ([]domain.DowntimeInterval, error) {
	out, err := s.queryDowntime(ctx,
		`SELECT `+downtimeCols+` FROM downtime_intervals
		  WHERE endpoint_id = $1
		    AND started_at < $3
		    AND (ended_at IS NULL OR ended_at >= $2)
		  ORDER BY started_at`, string(id), windowStart, now)
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
		`SELECT `+downtimeCols+` FROM downtime_intervals
		  WHERE endpoint_id = $1
		  ORDER BY started_at DESC
		  LIMIT $2`, string(id), limit)
	if err != nil {
		return nil, fmt.Errorf("recent downtime: %w", err)
	}
	return out, nil
}
