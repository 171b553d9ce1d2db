package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hamed0406/uptimewatch/internal/domain"
	"github.com/hamed0406/uptimewatch/internal/repo"
	"github.com/hamed0406/uptimewatch/internal/repo/memory"
)

func seedEndpoint(t *testing.T, s *memory.Store, url string) domain.Endpoint {
	t.Helper()
	e := &domain.Endpoint{Name: "site", URL: url, NotifyEmail: "ops@example.com", Active: true}
	if err := s.Create(context.Background(), e); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return *e
}

func TestReconciler_RepeatedDownKeepsOneOpenInterval(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	ep := seedEndpoint(t, store, "https://a.example")
	r := NewDowntimeReconciler(store, store)

	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	want := []Action{ActionOpened, ActionNone, ActionNone}
	for i, w := range want {
		got, err := r.Reconcile(ctx, ep.ID, domain.StatusDown, "HTTP 500", t0.Add(time.Duration(i)*time.Minute))
		if err != nil {
			t.Fatalf("Reconcile %d: %v", i, err)
		}
		if got != w {
			t.Fatalf("Reconcile %d: want %s, got %s", i, w, got)
		}
	}

	rows, _ := store.RecentDowntime(ctx, ep.ID, 10)
	if len(rows) != 1 || !rows[0].Open() || !rows[0].StartedAt.Equal(t0) || rows[0].Reason != "HTTP 500" {
		t.Fatalf("want one open interval from t0, got %+v", rows)
	}
	got, _ := store.Get(ctx, ep.ID)
	if got.LastDowntime == nil || !got.LastDowntime.Equal(t0) {
		t.Fatalf("last downtime not stamped: %v", got.LastDowntime)
	}
}

func TestReconciler_UpClosesInterval(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	ep := seedEndpoint(t, store, "https://b.example")
	r := NewDowntimeReconciler(store, store)

	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, err := r.Reconcile(ctx, ep.ID, domain.StatusDown, "timeout", t0); err != nil {
		t.Fatalf("open: %v", err)
	}
	act, err := r.Reconcile(ctx, ep.ID, domain.StatusUp, "", t0.Add(10*time.Minute))
	if err != nil || act != ActionClosed {
		t.Fatalf("close: act=%s err=%v", act, err)
	}
	act, err = r.Reconcile(ctx, ep.ID, domain.StatusUp, "", t0.Add(11*time.Minute))
	if err != nil || act != ActionNone {
		t.Fatalf("sustained up: act=%s err=%v", act, err)
	}

	rows, _ := store.RecentDowntime(ctx, ep.ID, 10)
	if len(rows) != 1 || rows[0].EndedAt == nil || !rows[0].EndedAt.Equal(t0.Add(10*time.Minute)) {
		t.Fatalf("unexpected intervals: %+v", rows)
	}
}

func TestReconciler_EndNeverBeforeStart(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	ep := seedEndpoint(t, store, "https://skew.example")
	r := NewDowntimeReconciler(store, store)

	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, err := r.Reconcile(ctx, ep.ID, domain.StatusDown, "x", t0); err != nil {
		t.Fatalf("open: %v", err)
	}
	// clock stepped backwards
	if _, err := r.Reconcile(ctx, ep.ID, domain.StatusUp, "", t0.Add(-time.Minute)); err != nil {
		t.Fatalf("close: %v", err)
	}
	rows, _ := store.RecentDowntime(ctx, ep.ID, 1)
	if rows[0].EndedAt.Before(rows[0].StartedAt) {
		t.Fatalf("end %v before start %v", rows[0].EndedAt, rows[0].StartedAt)
	}
}

// racingStore reports no open interval but then loses the insert race.
type racingStore struct {
	*memory.Store
}

func (racingStore) FindOpenDowntime(context.Context, domain.EndpointID) (*domain.DowntimeInterval, error) {
	return nil, nil
}

func (racingStore) CreateDowntime(context.Context, domain.EndpointID, time.Time, string) (*domain.DowntimeInterval, error) {
	return nil, repo.ErrOpenIntervalExists
}

func TestReconciler_LostInsertRaceIsNoop(t *testing.T) {
	s := racingStore{memory.New()}
	r := NewDowntimeReconciler(s, s)
	act, err := r.Reconcile(context.Background(), "a", domain.StatusDown, "x", time.Now())
	if err != nil || act != ActionNone {
		t.Fatalf("want none/nil, got %s/%v", act, err)
	}
}

func TestReconciler_InvariantViolationPassesThrough(t *testing.T) {
	store := memory.New()
	ep := seedEndpoint(t, store, "https://c.example")
	now := time.Now().UTC()
	store.InjectDowntime(domain.DowntimeInterval{ID: "d1", EndpointID: ep.ID, StartedAt: now.Add(-time.Hour)})
	store.InjectDowntime(domain.DowntimeInterval{ID: "d2", EndpointID: ep.ID, StartedAt: now.Add(-time.Minute)})

	_, err := NewDowntimeReconciler(store, store).Reconcile(context.Background(), ep.ID, domain.StatusUp, "", now)
	var inv *repo.InvariantError
	if !errors.As(err, &inv) || inv.Open != 2 {
		t.Fatalf("want InvariantError, got %v", err)
	}
}
