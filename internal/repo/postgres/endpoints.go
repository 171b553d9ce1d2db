package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hamed0406/uptimewatch/internal/domain"
	"github.com/hamed0406/uptimewatch/internal/repo"
)

const endpointCols = `id, name, url, notify_email, is_active, status, last_checked, response_time_ms, last_downtime, created_at, updated_at`

func scanEndpoint(row scanner) (domain.Endpoint, error) {
	var (
		e      domain.Endpoint
		id     string
		status string
	)
	err := row.Scan(&id, &e.Name, &e.URL, &e.NotifyEmail, &e.Active, &status,
		&e.LastChecked, &e.ResponseTimeMS, &e.LastDowntime, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return domain.Endpoint{}, err
	}
	e.ID = domain.EndpointID(id)
	e.Status = domain.ParseStatus(status)
	return e, nil
}

func (s *Store) queryEndpoints(ctx context.Context, q string, args ...any) ([]domain.Endpoint, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Endpoint
	for rows.Next() {
		e, err := scanEndpoint(rows)
		if err != nil {
			return nil, fmt.Errorf("scan endpoint: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ---- EndpointCatalog ----

func (s *Store) Create(ctx context.Context, e *domain.Endpoint) error {
	if e.ID == "" {
		e.ID = domain.EndpointID(uuid.NewString())
	}
	now := time.Now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now
	if e.Status == "" {
		e.Status = domain.StatusUnknown
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO endpoints (id, name, url, notify_email, is_active, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		string(e.ID), e.Name, e.URL, e.NotifyEmail, e.Active, string(e.Status), e.CreatedAt, e.UpdatedAt,
	)
	if pgCode(err) == codeUniqueViolation {
		return repo.ErrDuplicateURL
	}
	if err != nil {
		return fmt.Errorf("insert endpoint: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id domain.EndpointID) (*domain.Endpoint, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+endpointCols+` FROM endpoints WHERE id = $1`, string(id))
	e, err := scanEndpoint(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get endpoint: %w", err)
	}
	return &e, nil
}

func (s *Store) GetByURL(ctx context.Context, url string) (*domain.Endpoint, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+endpointCols+` FROM endpoints WHERE lower(url) = lower($1)`, url)
	e, err := scanEndpoint(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get endpoint by url: %w", err)
	}
	return &e, nil
}

func (s *Store) List(ctx context.Context) ([]domain.Endpoint, error) {
	out, err := s.queryEndpoints(ctx, `SELECT `+endpointCols+` FROM endpoints ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list endpoints: %w", err)
	}
	return out, nil
}

func (s *Store) Update(ctx context.Context, e *domain.Endpoint) error {
	row := s.pool.QueryRow(ctx,
		`UPDATE endpoints
		    SET name = $2, url = $3, notify_email = $4, is_active = $5, updated_at = now()
		  WHERE id = $1
		 RETURNING `+endpointCols,
		string(e.ID), e.Name, e.URL, e.NotifyEmail, e.Active)
	got, err := scanEndpoint(row)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return repo.ErrNotFound
	case pgCode(err) == codeUniqueViolation:
		return repo.ErrDuplicateURL
	case err != nil:
		return fmt.Errorf("update endpoint: %w", err)
	}
	*e = got
	return nil
}

func (s *Store) Delete(ctx context.Context, id domain.EndpointID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM endpoints WHERE id = $1`, string(id))
	if err != nil {
		return fmt.Errorf("delete endpoint: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// ---- EndpointStore ----

func (s *Store) ListActive(ctx context.Context) ([]domain.Endpoint, error) {
	out, err := s.queryEndpoints(ctx, `SELECT `+endpointCols+` FROM endpoints WHERE is_active ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list active endpoints: %w", err)
	}
	return out, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id domain.EndpointID, status domain.Status, checkedAt time.Time, responseTimeMS *int64) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE endpoints SET status = $2, last_checked = $3, response_time_ms = $4 WHERE id = $1`,
		string(id), string(status), checkedAt, responseTimeMS)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *Store) SetLastDowntime(ctx context.Context, id domain.EndpointID, at time.Time) error {
	tag, err := s.pool.Exec(ctx, `UPDATE endpoints SET last_downtime = $2 WHERE id = $1`, string(id), at)
	if err != nil {
		return fmt.Errorf("set last downtime: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}
