package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/hamed0406/uptimewatch/internal/domain"
	"github.com/hamed0406/uptimewatch/internal/repo"
)

const endpointCols = `id, name, url, notify_email, is_active, status, last_checked_ms, response_time_ms, last_downtime_ms, created_at_ms, updated_at_ms`

func scanEndpoint(row scanner) (domain.Endpoint, error) {
	var (
		e                         domain.Endpoint
		id, status                string
		active                    int
		lastChecked, lastDowntime sql.NullInt64
		responseTime              sql.NullInt64
		createdAt, updatedAt      int64
	)
	if err := row.Scan(&id, &e.Name, &e.URL, &e.NotifyEmail, &active, &status,
		&lastChecked, &responseTime, &lastDowntime, &createdAt, &updatedAt); err != nil {
		return domain.Endpoint{}, err
	}
	e.ID = domain.EndpointID(id)
	e.Active = active == 1
	e.Status = domain.ParseStatus(status)
	e.LastChecked = timePtr(lastChecked)
	e.LastDowntime = timePtr(lastDowntime)
	if responseTime.Valid {
		v := responseTime.Int64
		e.ResponseTimeMS = &v
	}
	e.CreatedAt = fromMS(createdAt)
	e.UpdatedAt = fromMS(updatedAt)
	return e, nil
}

func (s *Store) queryEndpoints(ctx context.Context, q string, args ...any) ([]domain.Endpoint, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
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

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
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
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO endpoints (id, name, url, notify_email, is_active, status, created_at_ms, updated_at_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(e.ID), e.Name, e.URL, e.NotifyEmail, boolInt(e.Active), string(e.Status), toMS(e.CreatedAt), toMS(e.UpdatedAt))
	if sqliteCode(err) == sqlite3.ErrConstraintUnique {
		return repo.ErrDuplicateURL
	}
	if err != nil {
		return fmt.Errorf("insert endpoint: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id domain.EndpointID) (*domain.Endpoint, error) {
	e, err := scanEndpoint(s.db.QueryRowContext(ctx, `SELECT `+endpointCols+` FROM endpoints WHERE id = ?`, string(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get endpoint: %w", err)
	}
	return &e, nil
}

func (s *Store) GetByURL(ctx context.Context, url string) (*domain.Endpoint, error) {
	e, err := scanEndpoint(s.db.QueryRowContext(ctx, `SELECT `+endpointCols+` FROM endpoints WHERE lower(url) = lower(?)`, url))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get endpoint by url: %w", err)
	}
	return &e, nil
}

func (s *Store) List(ctx context.Context) ([]domain.Endpoint, error) {
	out, err := s.queryEndpoints(ctx, `SELECT `+endpointCols+` FROM endpoints ORDER BY created_at_ms, id`)
	if err != nil {
		return nil, fmt.Errorf("list endpoints: %w", err)
	}
	return out, nil
}

func (s *Store) Update(ctx context.Context, e *domain.Endpoint) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE endpoints SET name = ?, url = ?, notify_email = ?, is_active = ?, updated_at_ms = ? WHERE id = ?`,
		e.Name, e.URL, e.NotifyEmail, boolInt(e.Active), toMS(time.Now().UTC()), string(e.ID))
	if sqliteCode(err) == sqlite3.ErrConstraintUnique {
		return repo.ErrDuplicateURL
	}
	if err != nil {
		return fmt.Errorf("update endpoint: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repo.ErrNotFound
	}
	got, err := s.Get(ctx, e.ID)
	if err != nil {
		return err
	}
	*e = *got
	return nil
}

func (s *Store) Delete(ctx context.Context, id domain.EndpointID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM endpoints WHERE id = ?`, string(id))
	if err != nil {
		return fmt.Errorf("delete endpoint: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// ---- EndpointStore ----

func (s *Store) ListActive(ctx context.Context) ([]domain.Endpoint, error) {
	out, err := s.queryEndpoints(ctx, `SELECT `+endpointCols+` FROM endpoints WHERE is_active = 1 ORDER BY created_at_ms, id`)
	if err != nil {
		return nil, fmt.Errorf("list active endpoints: %w", err)
	}
	return out, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id domain.EndpointID, status domain.Status, checkedAt time.Time, responseTimeMS *int64) error {
	var rt sql.NullInt64
	if responseTimeMS != nil {
		rt = sql.NullInt64{Int64: *responseTimeMS, Valid: true}
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE endpoints SET status = ?, last_checked_ms = ?, response_time_ms = ? WHERE id = ?`,
		string(status), toMS(checkedAt), rt, string(id))
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *Store) SetLastDowntime(ctx context.Context, id domain.EndpointID, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `UPDATE endpoints SET last_downtime_ms = ? WHERE id = ?`, toMS(at), string(id))
	if err != nil {
		return fmt.Errorf("set last downtime: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repo.ErrNotFound
	}
	return nil
}
