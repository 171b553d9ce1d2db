package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/uptimewatch/internal/domain"
	"github.com/hamed0406/uptimewatch/internal/notify"
	"github.com/hamed0406/uptimewatch/internal/probe"
	"github.com/hamed0406/uptimewatch/internal/repo"
)

type Options struct {
	ProbeTimeout  time.Duration
	NotifyEnabled bool
	NotifyTimeout time.Duration

	// Status and Ticks are created when nil.
	Status *StatusCache
	Ticks  *TickHistory

	// Clock defaults to time.Now in UTC.
	Clock func() time.Time
}

// Observation is what one probe of one endpoint produced.
type Observation struct {
	EndpointID domain.EndpointID
	Status     domain.Status
	Previous   domain.Status
	Transition Transition
	Action     Action
	Result     probe.Result
	At         time.Time
}

// Engine turns probe results into cached status, tick history, downtime
// intervals, endpoint status updates and notifications.
type Engine struct {
	log        *zap.Logger
	endpoints  repo.EndpointStore
	checker    probe.Checker
	notifier   notify.Notifier
	reconciler *DowntimeReconciler
	stats      *StatsCalculator
	status     *StatusCache
	ticks      *TickHistory
	opts       Options
	locks      keyedMutex
	notifying  sync.WaitGroup
}

func New(
	logger *zap.Logger,
	endpoints repo.EndpointStore,
	downtime repo.DowntimeStore,
	checker probe.Checker,
	notifier notify.Notifier,
	opts Options,
) *Engine {
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = 10 * time.Second
	}
	if opts.NotifyTimeout <= 0 {
		opts.NotifyTimeout = 10 * time.Second
	}
	if opts.Status == nil {
		opts.Status = NewStatusCache()
	}
	if opts.Ticks == nil {
		opts.Ticks = NewTickHistory(MaxTicks)
	}
	if opts.Clock == nil {
		opts.Clock = func() time.Time { return time.Now().UTC() }
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Engine{
		log:        logger,
		endpoints:  endpoints,
		checker:    checker,
		notifier:   notifier,
		reconciler: NewDowntimeReconciler(endpoints, downtime),
		stats:      NewStatsCalculator(downtime),
		status:     opts.Status,
		ticks:      opts.Ticks,
		opts:       opts,
	}
}

// ProbeEndpoint probes ep once and applies the outcome. If ctx is cancelled
// while the probe is running the outcome is discarded and ctx.Err() returned.
// Store failures do not stop later steps; they are combined into the error.
// A transition alert is sent in the background once the endpoint lock is
// released; Wait blocks until pending alerts are done.
func (e *Engine) ProbeEndpoint(ctx context.Context, ep domain.Endpoint) (Observation, error) {
	obs, err := e.probeLocked(ctx, ep)
	if obs.Transition != TransitionNone {
		e.dispatchAlert(ctx, ep, obs)
	}
	return obs, err
}

func (e *Engine) probeLocked(ctx context.Context, ep domain.Endpoint) (Observation, error) {
	unlock := e.locks.lock(ep.ID)
	defer unlock()

	pctx, cancel := context.WithTimeout(ctx, e.opts.ProbeTimeout)
	res := e.checker.Check(pctx, ep.URL)
	cancel()
	if err := ctx.Err(); err != nil {
		e.log.Debug("probe_abandoned", zap.String("endpoint_id", string(ep.ID)), zap.Error(err))
		return Observation{}, err
	}

	now := e.opts.Clock()
	status := domain.StatusDown
	if res.Up {
		status = domain.StatusUp
	}

	obs := Observation{EndpointID: ep.ID, Status: status, Result: res, At: now}
	obs.Previous = e.status.Swap(ep.ID, status)
	obs.Transition = DetectTransition(obs.Previous, status)
	e.ticks.Append(ep.ID, domain.Tick{Status: status, At: now})

	var errs error
	action, err := e.reconciler.Reconcile(ctx, ep.ID, status, res.Reason, now)
	obs.Action = action
	if err != nil {
		var inv *repo.InvariantError
		if errors.As(err, &inv) {
			e.log.Error("downtime_invariant_violation",
				zap.String("endpoint_id", string(ep.ID)),
				zap.Int("open_intervals", inv.Open))
		}
		errs = multierr.Append(errs, err)
	}

	if err := e.endpoints.UpdateStatus(ctx, ep.ID, status, now, res.ResponseTimeMS); err != nil {
		errs = multierr.Append(errs, err)
	}

	e.log.Debug("probe_done",
		zap.String("endpoint_id", string(ep.ID)),
		zap.String("url", ep.URL),
		zap.String("status", string(status)),
		zap.Int("http_status", res.StatusCode),
		zap.String("reason", res.Reason),
		zap.Stringer("transition", obs.Transition),
		zap.Stringer("downtime", obs.Action),
	)

	return obs, errs
}

// dispatchAlert sends the transition alert on its own goroutine, bounded by
// NotifyTimeout and detached from ctx cancellation so shutdown does not cut
// an alert that is already on its way.
func (e *Engine) dispatchAlert(ctx context.Context, ep domain.Endpoint, obs Observation) {
	fields := []zap.Field{
		zap.String("endpoint_id", string(ep.ID)),
		zap.String("url", ep.URL),
		zap.Stringer("transition", obs.Transition),
	}
	if !e.opts.NotifyEnabled {
		e.log.Info("notify_skipped_disabled", fields...)
		return
	}

	subject, body := alertMessage(ep, obs.Transition, obs.Result, obs.At)
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.opts.NotifyTimeout)
	e.notifying.Add(1)
	go func() {
		defer e.notifying.Done()
		defer cancel()
		if err := e.notifier.Notify(nctx, ep.NotifyEmail, subject, body); err != nil {
			e.log.Warn("notify_failed", append(fields, zap.Error(err))...)
			return
		}
		e.log.Info("notify_sent", fields...)
	}()
}

// Wait blocks until every dispatched alert has been sent or timed out.
func (e *Engine) Wait() { e.notifying.Wait() }

// ComputeStats reports uptime over the trailing Window ending at now.
func (e *Engine) ComputeStats(ctx context.Context, id domain.EndpointID, now time.Time) (domain.Stats, error) {
	return e.stats.Compute(ctx, id, now)
}

func (e *Engine) RecentTicks(id domain.EndpointID) []domain.Tick { return e.ticks.Recent(id) }

// CachedStatus returns the last status seen by this process.
func (e *Engine) CachedStatus(id domain.EndpointID) domain.Status { return e.status.Get(id) }

// Forget drops in-memory state for a removed endpoint.
func (e *Engine) Forget(id domain.EndpointID) {
	e.status.Forget(id)
	e.ticks.Forget(id)
	e.locks.forget(id)
}

// keyedMutex serialises work per endpoint while leaving others independent.
// Entries are reference counted so forget never drops a mutex that a
// probe still holds or waits on.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[domain.EndpointID]*keyedEntry
}

type keyedEntry struct {
	mu        sync.Mutex
	refs      int
	forgotten bool
}

func (k *keyedMutex) lock(id domain.EndpointID) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[domain.EndpointID]*keyedEntry)
	}
	ent, ok := k.locks[id]
	if !ok {
		ent = &keyedEntry{}
		k.locks[id] = ent
	}
	ent.refs++
	k.mu.Unlock()

	ent.mu.Lock()
	return func() {
		ent.mu.Unlock()
		k.mu.Lock()
		ent.refs--
		if ent.refs == 0 && ent.forgotten && k.locks[id] == ent {
			delete(k.locks, id)
		}
		k.mu.Unlock()
	}
}

// forget drops the entry now if idle, otherwise when the last holder unlocks.
func (k *keyedMutex) forget(id domain.EndpointID) {
	k.mu.Lock()
	defer k.mu.Unlock()
	ent, ok := k.locks[id]
	if !ok {
		return
	}
	if ent.refs == 0 {
		delete(k.locks, id)
		return
	}
	ent.forgotten = true
}
