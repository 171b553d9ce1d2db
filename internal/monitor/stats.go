package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/hamed0406/uptimewatch/internal/domain"
	"github.com/hamed0406/uptimewatch/internal/repo"
)

// Window is the trailing period uptime is reported over.
const Window = 30 * 24 * time.Hour

type StatsCalculator struct {
	downtime repo.DowntimeStore
	window   time.Duration
}

func NewStatsCalculator(downtime repo.DowntimeStore) *StatsCalculator {
	return &StatsCalculator{downtime: downtime, window: Window}
}

// Compute summarises the intervals overlapping [now-Window, now]. Each
// interval counts only for the part inside the window; open intervals run
// until now.
func (s *StatsCalculator) Compute(ctx context.Context, id domain.EndpointID, now time.Time) (domain.Stats, error) {
	windowStart := now.Add(-s.window)
	intervals, err := s.downtime.DowntimeInWindow(ctx, id, windowStart, now)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("downtime in window: %w", err)
	}
	return summarise(intervals, windowStart, now, s.window), nil
}

func summarise(intervals []domain.DowntimeInterval, windowStart, now time.Time, window time.Duration) domain.Stats {
	var total time.Duration
	for _, d := range intervals {
		start := d.StartedAt
		if start.Before(windowStart) {
			start = windowStart
		}
		end := now
		if d.EndedAt != nil && d.EndedAt.Before(now) {
			end = *d.EndedAt
		}
		if end.After(start) {
			total += end.Sub(start)
		}
	}

	uptime := float64(window-total) / float64(window) * 100
	if uptime < 0 {
		uptime = 0
	}
	if uptime > 100 {
		uptime = 100
	}
	return domain.Stats{
		UptimePercentage: uptime,
		TotalDowntimeMS:  total.Milliseconds(),
		DowntimeCount:    len(intervals),
	}
}
