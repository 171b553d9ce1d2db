package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hamed0406/uptimewatch/internal/domain"
	"github.com/hamed0406/uptimewatch/internal/monitor"
	"github.com/hamed0406/uptimewatch/internal/repo"
)

var (
	// ErrCycleInProgress is returned when a cycle is requested while another
	// one is still draining.
	ErrCycleInProgress = errors.New("probe cycle already in progress")
	// ErrEndpointInFlight is returned by ProbeNow when the endpoint is being
	// probed by a running cycle.
	ErrEndpointInFlight = errors.New("endpoint probe already in flight")
)

// Prober is the part of the monitoring engine the scheduler drives.
type Prober interface {
	ProbeEndpoint(ctx context.Context, ep domain.Endpoint) (monitor.Observation, error)
}

type Options struct {
	// Interval between cycles; 0 disables the periodic loop.
	Interval    time.Duration
	Concurrency int
}

type CycleReport struct {
	Started   time.Time
	Duration  time.Duration
	Endpoints int
	Probed    int
	Skipped   int // already in flight
	Failed    int
	Down      int
}

type Scheduler struct {
	log       *zap.Logger
	endpoints repo.EndpointStore
	engine    Prober
	opts      Options

	running  atomic.Bool
	mu       sync.Mutex
	inFlight map[domain.EndpointID]struct{}
}

func New(logger *zap.Logger, endpoints repo.EndpointStore, engine Prober, opts Options) *Scheduler {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Interval < 0 {
		opts.Interval = 0
	}
	return &Scheduler{
		log:       logger,
		endpoints: endpoints,
		engine:    engine,
		opts:      opts,
		inFlight:  make(map[domain.EndpointID]struct{}),
	}
}

// Run does an immediate cycle, then one every Interval until ctx is
// cancelled. It returns once the last running cycle has finished.
func (s *Scheduler) Run(ctx context.Context) {
	if s.opts.Interval == 0 {
		s.log.Info("scheduler_disabled")
		return
	}

	l := cronLogger{s: s.log.Sugar()}
	c := cron.New(
		cron.WithLogger(l),
		cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
	)
	c.Schedule(every(s.opts.Interval), cron.FuncJob(func() { s.tick(ctx) }))

	s.log.Info("scheduler_started",
		zap.Duration("interval", s.opts.Interval),
		zap.Int("concurrency", s.opts.Concurrency))

	s.tick(ctx)
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	s.log.Info("scheduler_stopped")
}

// every is a cron.Schedule firing one period after each activation.
// cron.Every rounds to whole seconds, which would not honour millisecond
// intervals.
type every time.Duration

func (d every) Next(t time.Time) time.Time { return t.Add(time.Duration(d)) }

func (s *Scheduler) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.RunCycleOnce(ctx); err != nil {
		if errors.Is(err, ErrCycleInProgress) {
			s.log.Info("cycle_skipped_in_progress")
			return
		}
		s.log.Warn("cycle_error", zap.Error(err))
	}
}

// RunCycleOnce probes every active endpoint once with bounded parallelism
// and waits for all of them. A failing endpoint is logged and counted; it
// never aborts the others.
func (s *Scheduler) RunCycleOnce(ctx context.Context) (CycleReport, error) {
	if !s.running.CompareAndSwap(false, true) {
		return CycleReport{}, ErrCycleInProgress
	}
	defer s.running.Store(false)

	rep := CycleReport{Started: time.Now().UTC()}
	eps, err := s.endpoints.ListActive(ctx)
	if err != nil {
		return rep, fmt.Errorf("list active endpoints: %w", err)
	}
	rep.Endpoints = len(eps)

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(s.opts.Concurrency)

	for _, ep := range eps {
		if !s.claim(ep.ID) {
			s.log.Info("probe_skipped_in_flight", zap.String("endpoint_id", string(ep.ID)))
			mu.Lock()
			rep.Skipped++
			mu.Unlock()
			continue
		}
		ep := ep
		g.Go(func() error {
			defer s.release(ep.ID)
			obs, err := s.engine.ProbeEndpoint(ctx, ep)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				rep.Failed++
				s.log.Warn("probe_endpoint_error",
					zap.String("endpoint_id", string(ep.ID)),
					zap.String("url", ep.URL),
					zap.Error(err))
				// an abandoned probe has no observation to count
				if ctx.Err() != nil {
					return nil
				}
			}
			rep.Probed++
			if obs.Status == domain.StatusDown {
				rep.Down++
			}
			return nil
		})
	}
	_ = g.Wait()

	rep.Duration = time.Since(rep.Started)
	s.log.Info("cycle_done",
		zap.Int("endpoints", rep.Endpoints),
		zap.Int("probed", rep.Probed),
		zap.Int("skipped", rep.Skipped),
		zap.Int("failed", rep.Failed),
		zap.Int("down", rep.Down),
		zap.Duration("duration", rep.Duration))
	return rep, nil
}

// ProbeNow probes a single endpoint outside the cycle, unless a cycle is
// already probing it.
func (s *Scheduler) ProbeNow(ctx context.Context, ep domain.Endpoint) (monitor.Observation, error) {
	if !s.claim(ep.ID) {
		return monitor.Observation{}, ErrEndpointInFlight
	}
	defer s.release(ep.ID)
	return s.engine.ProbeEndpoint(ctx, ep)
}

func (s *Scheduler) claim(id domain.EndpointID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[id]; busy {
		return false
	}
	s.inFlight[id] = struct{}{}
	return true
}

func (s *Scheduler) release(id domain.EndpointID) {
	s.mu.Lock()
	delete(s.inFlight, id)
	s.mu.Unlock()
}
