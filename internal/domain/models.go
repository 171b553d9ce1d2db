package domain

import "time"

type EndpointID string

// Status is the last classified probe outcome of an endpoint.
type Status string

const (
	StatusUp      Status = "up"
	StatusDown    Status = "down"
	StatusUnknown Status = "unknown"
)

// ParseStatus maps stored values back to a Status; anything unrecognised is unknown.
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusUp, StatusDown:
		return Status(s)
	default:
		return StatusUnknown
	}
}

type Endpoint struct {
	ID             EndpointID `json:"id"`
	Name           string     `json:"name"`
	URL            string     `json:"url"`
	NotifyEmail    string     `json:"email,omitempty"`
	Active         bool       `json:"is_active"`
	Status         Status     `json:"status"`
	LastChecked    *time.Time `json:"last_checked"`
	ResponseTimeMS *int64     `json:"response_time_ms"` // nil when the last probe got no response
	LastDowntime   *time.Time `json:"last_downtime"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// DowntimeInterval is one recorded outage. EndedAt is nil while it is still open.
type DowntimeInterval struct {
	ID         string     `json:"id"`
	EndpointID EndpointID `json:"endpoint_id"`
	StartedAt  time.Time  `json:"started_at"`
	EndedAt    *time.Time `json:"ended_at"`
	Reason     string     `json:"reason"`
}

func (d DowntimeInterval) Open() bool { return d.EndedAt == nil }

// Duration is the time spent down, measured up to now for open intervals.
func (d DowntimeInterval) Duration(now time.Time) time.Duration {
	end := now
	if d.EndedAt != nil {
		end = *d.EndedAt
	}
	if end.Before(d.StartedAt) {
		return 0
	}
	return end.Sub(d.StartedAt)
}

// Tick is one probe outcome in an endpoint's short-term history.
type Tick struct {
	Status Status    `json:"status"`
	At     time.Time `json:"timestamp"`
}

type Stats struct {
	UptimePercentage float64 `json:"uptime_percentage"`
	TotalDowntimeMS  int64   `json:"total_downtime_ms"`
	DowntimeCount    int     `json:"downtime_count"`
}
