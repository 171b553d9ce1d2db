package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hamed0406/uptimewatch/internal/domain"
	"github.com/hamed0406/uptimewatch/internal/repo"
)

// Store keeps everything in process memory. It is the default when no
// database is configured and the backing store for most tests.
type Store struct {
	mu        sync.RWMutex
	endpoints map[domain.EndpointID]*domain.Endpoint
	downtime  map[string]*domain.DowntimeInterval
}

var _ repo.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		endpoints: make(map[domain.EndpointID]*domain.Endpoint),
		downtime:  make(map[string]*domain.DowntimeInterval),
	}
}

func (m *Store) Close() {}

// ---- EndpointCatalog ----

func (m *Store) Create(ctx context.Context, e *domain.Endpoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cur := range m.endpoints {
		if strings.EqualFold(cur.URL, e.URL) {
			return repo.ErrDuplicateURL
		}
	}
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
	cp := *e
	m.endpoints[e.ID] = &cp
	return nil
}

func (m *Store) Get(ctx context.Context, id domain.EndpointID) (*domain.Endpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.endpoints[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *Store) GetByURL(ctx context.Context, url string) (*domain.Endpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.endpoints {
		if strings.EqualFold(e.URL, url) {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *Store) List(ctx context.Context) ([]domain.Endpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sorted(func(*domain.Endpoint) bool { return true }), nil
}

func (m *Store) Update(ctx context.Context, e *domain.Endpoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.endpoints[e.ID]
	if !ok {
		return repo.ErrNotFound
	}
	for id, other := range m.endpoints {
		if id != e.ID && strings.EqualFold(other.URL, e.URL) {
			return repo.ErrDuplicateURL
		}
	}
	cur.Name = e.Name
	cur.URL = e.URL
	cur.NotifyEmail = e.NotifyEmail
	cur.Active = e.Active
	cur.UpdatedAt = time.Now().UTC()
	*e = *cur
	return nil
}

func (m *Store) Delete(ctx context.Context, id domain.EndpointID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.endpoints[id]; !ok {
		return repo.ErrNotFound
	}
	delete(m.endpoints, id)
	for k, d := range m.downtime {
		if d.EndpointID == id {
			delete(m.downtime, k)
		}
	}
	return nil
}

// ---- EndpointStore ----

func (m *Store) ListActive(ctx context.Context) ([]domain.Endpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sorted(func(e *domain.Endpoint) bool { return e.Active }), nil
}

func (m *Store) UpdateStatus(ctx context.Context, id domain.EndpointID, status domain.Status, checkedAt time.Time, responseTimeMS *int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.endpoints[id]
	if !ok {
		return repo.ErrNotFound
	}
	e.Status = status
	at := checkedAt
	e.LastChecked = &at
	if responseTimeMS != nil {
		v := *responseTimeMS
		e.ResponseTimeMS = &v
	} else {
		e.ResponseTimeMS = nil
	}
	return nil
}

func (m *Store) SetLastDowntime(ctx context.Context, id domain.EndpointID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.endpoints[id]
	if !ok {
		return repo.ErrNotFound
	}
	t := at
	e.LastDowntime = &t
	return nil
}

// ---- DowntimeStore ----

func (m *Store) FindOpenDowntime(ctx context.Context, id domain.EndpointID) (*domain.DowntimeInterval, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	open := m.openFor(id)
	switch len(open) {
	case 0:
		return nil, nil
	case 1:
		cp := *open[0]
		return &cp, nil
	default:
		return nil, &repo.InvariantError{EndpointID: id, Open: len(open)}
	}
}

func (m *Store) CreateDowntime(ctx context.Context, id domain.EndpointID, start time.Time, reason string) (*domain.DowntimeInterval, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.endpoints[id]; !ok {
		return nil, repo.ErrNotFound
	}
	if len(m.openFor(id)) > 0 {
		return nil, repo.ErrOpenIntervalExists
	}
	d := &domain.DowntimeInterval{
		ID:         uuid.NewString(),
		EndpointID: id,
		StartedAt:  start,
		Reason:     reason,
	}
	m.downtime[d.ID] = d
	cp := *d
	return &cp, nil
}

func (m *Store) CloseDowntime(ctx context.Context, intervalID string, end time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.downtime[intervalID]
	if !ok {
		return repo.ErrNotFound
	}
	e := end
	d.EndedAt = &e
	return nil
}

func (m *Store) DowntimeInWindow(ctx context.Context, id domain.EndpointID, windowStart, now time.Time) ([]domain.DowntimeInterval, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.DowntimeInterval
	for _, d := range m.downtime {
		if d.EndpointID != id || !d.StartedAt.Before(now) {
			continue
		}
		if d.EndedAt != nil && d.EndedAt.Before(windowStart) {
			continue
		}
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out, nil
}

func (m *Store) RecentDowntime(ctx context.Context, id domain.EndpointID, limit int) ([]domain.DowntimeInterval, error) {
	if limit <= 0 {
		limit = 5
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.DowntimeInterval
	for _, d := range m.downtime {
		if d.EndpointID == id {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// InjectDowntime stores an interval verbatim, bypassing the open-interval
// check. It exists for seeding history and for repair tooling.
func (m *Store) InjectDowntime(d domain.DowntimeInterval) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	m.downtime[d.ID] = &d
}

// caller holds m.mu
func (m *Store) openFor(id domain.EndpointID) []*domain.DowntimeInterval {
	var open []*domain.DowntimeInterval
	for _, d := range m.downtime {
		if d.EndpointID == id && d.EndedAt == nil {
			open = append(open, d)
		}
	}
	return open
}

// caller holds m.mu
func (m *Store) sorted(keep func(*domain.Endpoint) bool) []domain.Endpoint {
	out := make([]domain.Endpoint, 0, len(m.endpoints))
	for _, e := range m.endpoints {
		if keep(e) {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
