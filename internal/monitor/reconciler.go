package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hamed0406/uptimewatch/internal/domain"
	"github.com/hamed0406/uptimewatch/internal/repo"
)

type Action int

const (
	ActionNone Action = iota
	ActionOpened
	ActionClosed
)

func (a Action) String() string {
	switch a {
	case ActionOpened:
		return "opened"
	case ActionClosed:
		return "closed"
	default:
		return "none"
	}
}

// DowntimeReconciler keeps the durable downtime log in step with the latest
// observation: at most one open interval per endpoint, opened on the first
// down and closed on the first up.
type DowntimeReconciler struct {
	endpoints repo.EndpointStore
	downtime  repo.DowntimeStore
}

func NewDowntimeReconciler(endpoints repo.EndpointStore, downtime repo.DowntimeStore) *DowntimeReconciler {
	return &DowntimeReconciler{endpoints: endpoints, downtime: downtime}
}

// Reconcile applies one observation. An *repo.InvariantError from the store
// is returned unchanged.
func (r *DowntimeReconciler) Reconcile(ctx context.Context, id domain.EndpointID, status domain.Status, reason string, now time.Time) (Action, error) {
	open, err := r.downtime.FindOpenDowntime(ctx, id)
	if err != nil {
		var inv *repo.InvariantError
		if errors.As(err, &inv) {
			return ActionNone, err
		}
		return ActionNone, fmt.Errorf("find open downtime: %w", err)
	}

	switch status {
	case domain.StatusDown:
		if open != nil {
			return ActionNone, nil
		}
		if _, err := r.downtime.CreateDowntime(ctx, id, now, reason); err != nil {
			if errors.Is(err, repo.ErrOpenIntervalExists) {
				return ActionNone, nil
			}
			return ActionNone, fmt.Errorf("open downtime: %w", err)
		}
		if err := r.endpoints.SetLastDowntime(ctx, id, now); err != nil {
			return ActionOpened, fmt.Errorf("set last downtime: %w", err)
		}
		return ActionOpened, nil

	case domain.StatusUp:
		if open == nil {
			return ActionNone, nil
		}
		end := now
		if end.Before(open.StartedAt) {
			end = open.StartedAt
		}
		if err := r.downtime.CloseDowntime(ctx, open.ID, end); err != nil {
			return ActionNone, fmt.Errorf("close downtime: %w", err)
		}
		return ActionClosed, nil
	}
	return ActionNone, nil
}
