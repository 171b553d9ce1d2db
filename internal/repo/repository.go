package repo

import (
	"context"
	"time"

	"github.com/hamed0406/uptimewatch/internal/domain"
)

// Ports implemented by the memory, sqlite and postgres adapters.

// EndpointStore is what the monitoring engine reads and mutates every cycle.
type EndpointStore interface {
	ListActive(ctx context.Context) ([]domain.Endpoint, error)
	UpdateStatus(ctx context.Context, id domain.EndpointID, status domain.Status, checkedAt time.Time, responseTimeMS *int64) error
	SetLastDowntime(ctx context.Context, id domain.EndpointID, at time.Time) error
}

// EndpointCatalog is the create/read/update/delete boundary used by the API
// and by seeding.
type EndpointCatalog interface {
	Create(ctx context.Context, e *domain.Endpoint) error
	Get(ctx context.Context, id domain.EndpointID) (*domain.Endpoint, error)
	// GetByURL returns nil, nil when no endpoint has that URL.
	GetByURL(ctx context.Context, url string) (*domain.Endpoint, error)
	List(ctx context.Context) ([]domain.Endpoint, error)
	Update(ctx context.Context, e *domain.Endpoint) error
	Delete(ctx context.Context, id domain.EndpointID) error
}

type DowntimeStore interface {
	// FindOpenDowntime returns nil, nil when no interval is open and an
	// *InvariantError when more than one is.
	FindOpenDowntime(ctx context.Context, id domain.EndpointID) (*domain.DowntimeInterval, error)
	// CreateDowntime returns ErrOpenIntervalExists if the endpoint already has an open interval.
	CreateDowntime(ctx context.Context, id domain.EndpointID, start time.Time, reason string) (*domain.DowntimeInterval, error)
	CloseDowntime(ctx context.Context, intervalID string, end time.Time) error
	// DowntimeInWindow returns intervals overlapping [windowStart, now]:
	// started before now and either still open or ended at/after windowStart.
	DowntimeInWindow(ctx context.Context, id domain.EndpointID, windowStart, now time.Time) ([]domain.DowntimeInterval, error)
	// RecentDowntime returns up to limit intervals, newest first.
	RecentDowntime(ctx context.Context, id domain.EndpointID, limit int) ([]domain.DowntimeInterval, error)
}

// Store is the full durable store.
type Store interface {
	EndpointStore
	EndpointCatalog
	DowntimeStore
	Close()
}
