package monitor

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Krause140/eudr-monitor-24-7/internal/metrics"
)

// SchedulerConfig controls sweep cadence and pacing.
type SchedulerConfig struct {
	// Interval between sweep starts.
	Interval time.Duration
	// Spacing is the mandatory delay between two source fetches within a
	// sweep, to avoid hammering the remote hosts.
	Spacing time.Duration
	// FetchTimeout bounds each source fetch.
	FetchTimeout time.Duration
}

func (c SchedulerConfig) withDefaults() SchedulerConfig {
	if c.Interval <= 0 {
		c.Interval = time.Hour
	}
	if c.Spacing < 0 {
		c.Spacing = 0
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 30 * time.Second
	}
	return c
}

// Scheduler drives sweeps over the source catalog. Sweeps never overlap:
// both the periodic timer and the on-demand trigger go through a
// single-flight guard. Within a sweep, sources are checked strictly
// sequentially in catalog order.
type Scheduler struct {
	cfg      SchedulerConfig
	registry *Registry
	state    *State
	fetcher  Fetcher
	hasher   Hasher
	clock    Clock
	notifier Notifier
	store    SnapshotStore
	logger   *zap.Logger
	pause    pauseController

	running atomic.Bool
	baseCtx atomic.Pointer[context.Context]
}

// NewScheduler wires the sweep pipeline. notifier and store may be nil, which
// disables outbound alerts and persistence respectively.
func NewScheduler(
	cfg SchedulerConfig,
	registry *Registry,
	state *State,
	fetcher Fetcher,
	hasher Hasher,
	clock Clock,
	notifier Notifier,
	store SnapshotStore,
	logger *zap.Logger,
) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cfg:      cfg.withDefaults(),
		registry: registry,
		state:    state,
		fetcher:  fetcher,
		hasher:   hasher,
		clock:    clock,
		notifier: notifier,
		store:    store,
		logger:   logger,
		pause:    &timerPauseController{},
	}
}

// Run sweeps once immediately, then on every interval tick, and blocks until
// the context finishes. New sweeps stop being accepted once ctx is done; a
// sweep already in flight runs to completion.
func (s *Scheduler) Run(ctx context.Context) {
	s.baseCtx.Store(&ctx)
	s.trigger(ctx, "startup")

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.trigger(ctx, "interval")
		}
	}
}

// RequestCheck starts an on-demand sweep asynchronously. It never blocks and
// never queues: if a sweep is already in flight the request is rejected.
func (s *Scheduler) RequestCheck() TriggerResult {
	ctx := context.Background()
	if p := s.baseCtx.Load(); p != nil {
		ctx = *p
	}
	if ctx.Err() != nil {
		return TriggerAlreadyRunning
	}
	if !s.running.CompareAndSwap(false, true) {
		return TriggerAlreadyRunning
	}
	go func() {
		defer s.running.Store(false)
		s.sweep(ctx)
	}()
	return TriggerAccepted
}

// RunOnce executes a single sweep synchronously, for one-shot CLI use.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("a sweep is already running")
	}
	defer s.running.Store(false)
	s.sweep(ctx)
	return nil
}

func (s *Scheduler) trigger(ctx context.Context, reason string) {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn("sweep still in flight, skipping", zap.String("trigger", reason))
		return
	}
	go func() {
		defer s.running.Store(false)
		s.sweep(ctx)
	}()
}

// sweep iterates the full catalog in stable order. One source's failure is
// isolated: it is recorded against that source and the sweep moves on. There
// is no retry within a sweep; the next sweep is the retry.
func (s *Scheduler) sweep(ctx context.Context) {
	start := s.clock.Now()
	s.state.SetSweepInFlight(true)
	defer s.state.SetSweepInFlight(false)

	s.state.AppendEvent(start, SeverityInfo,
		fmt.Sprintf("sweep started over %d sources", s.registry.Len()))

	var changes []Change
	checked := 0
	for i, src := range s.registry.Sources() {
		if ctx.Err() != nil {
			s.logger.Info("sweep interrupted by shutdown", zap.Int("checked", checked))
			break
		}
		if i > 0 {
			s.pause.Pause(ctx, s.cfg.Spacing)
		}
		checked++
		if change, changed := s.checkSource(ctx, src); changed {
			changes = append(changes, change)
		}
	}

	end := s.clock.Now()
	s.state.FinishSweep(end, checked, len(changes), end.Add(s.cfg.Interval))
	metrics.ObserveSweep(end.Sub(start))
	s.state.AppendEvent(end, SeveritySuccess,
		fmt.Sprintf("sweep finished: %d sources checked, %d change(s)", checked, len(changes)))

	s.notify(ctx, changes)
	s.persist(ctx)
}

func (s *Scheduler) checkSource(ctx context.Context, src Source) (Change, bool) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	body, err := s.fetcher.Fetch(fetchCtx, src)
	cancel()
	now := s.clock.Now()

	if err != nil {
		fe := ClassifyFetchError(src.ID, err)
		s.state.RecordFailure(src, fe, now)
		s.state.AppendEvent(now, SeverityWarning,
			fmt.Sprintf("check failed for %s: %v", src.DisplayName, fe))
		s.logger.Warn("source check failed",
			zap.String("source", src.ID),
			zap.String("kind", string(fe.Kind)),
			zap.Error(fe),
		)
		metrics.ObserveFetchFailure(string(fe.Kind))
		return Change{}, false
	}

	digest, err := s.hasher.Hash(body)
	if err != nil {
		s.state.RecordFailure(src, err, now)
		s.logger.Error("digest failed", zap.String("source", src.ID), zap.Error(err))
		return Change{}, false
	}

	outcome, change := s.state.ApplyCheck(src, digest, now)
	switch outcome {
	case OutcomeFirstSeen:
		s.state.AppendEvent(now, SeverityInfo,
			fmt.Sprintf("baseline established for %s", src.DisplayName))
		s.logger.Info("baseline established", zap.String("source", src.ID))
	case OutcomeChanged:
		s.state.AppendEvent(now, SeverityWarning,
			fmt.Sprintf("change detected on %s", src.DisplayName))
		s.logger.Info("change detected",
			zap.String("source", src.ID),
			zap.String("category", string(src.Category)),
			zap.String("priority", string(src.Priority)),
		)
		metrics.ObserveChange(string(src.Category))
		return change, true
	default:
		s.logger.Debug("source unchanged", zap.String("source", src.ID))
	}
	return Change{}, false
}

// notify hands the sweep's whole change batch to the notifier in a single
// call. Delivery failure is logged and never retried.
func (s *Scheduler) notify(ctx context.Context, changes []Change) {
	if s.notifier == nil || len(changes) == 0 {
		return
	}
	if err := s.notifier.Notify(ctx, changes); err != nil {
		now := s.clock.Now()
		s.state.AppendEvent(now, SeverityError,
			fmt.Sprintf("notification failed: %v", err))
		s.logger.Error("notification failed", zap.Error(err))
		metrics.ObserveNotification("error")
		return
	}
	metrics.ObserveNotification("ok")
}

// persist snapshots the state after the sweep. A write failure is logged and
// swallowed; durability is advisory.
func (s *Scheduler) persist(ctx context.Context) {
	if s.store == nil {
		return
	}
	if err := s.store.Save(ctx, s.state.Export()); err != nil {
		now := s.clock.Now()
		s.state.AppendEvent(now, SeverityError,
			fmt.Sprintf("state save failed: %v", err))
		s.logger.Warn("state save failed", zap.Error(err))
	}
}

// pauseController abstracts how the sweep waits between source fetches.
type pauseController interface {
	Pause(ctx context.Context, delay time.Duration)
}

type timerPauseController struct{}

func (p *timerPauseController) Pause(ctx context.Context, delay time.Duration) {
	if delay <= 0 {
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
