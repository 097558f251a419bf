// Package scheduler drives the periodic extraction cycle: both
// extractors in sequence, then a cache invalidation so the dashboard
// picks up the fresh workbooks.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/techcarrot/defectdash/common/id"
	"github.com/techcarrot/defectdash/common/logger"
	"github.com/techcarrot/defectdash/internal/extractor"
)

type Scheduler struct {
	extractors  []extractor.Extractor
	interval    time.Duration
	onCycleDone func()

	// inFlight guards against a slow cycle overlapping the next tick.
	// Overlapping cycles would race on the workbook files; the later
	// tick is skipped and logged instead of run concurrently.
	inFlight atomic.Bool
	skipped  atomic.Int64
	wg       sync.WaitGroup

	trigger   chan struct{}
	stopCh    chan struct{}
	stoppedCh chan struct{}
}

// New builds a scheduler over the given extractors. onCycleDone runs
// after every completed cycle, successful or not; the server hooks the
// snapshot-cache invalidation in there.
func New(extractors []extractor.Extractor, interval time.Duration, onCycleDone func()) *Scheduler {
	return &Scheduler{
		extractors:  extractors,
		interval:    interval,
		onCycleDone: onCycleDone,
		trigger:     make(chan struct{}, 1),
		stopCh:      make(chan struct{}),
		stoppedCh:   make(chan struct{}),
	}
}

// Run dispatches one cycle immediately, then ticks until the context is
// cancelled or Stop is called. Cycles run on their own goroutine so a
// slow upstream can never stall the loop; the in-flight guard keeps at
// most one cycle alive.
func (s *Scheduler) Run(ctx context.Context) error {
	defer close(s.stoppedCh)
	defer s.wg.Wait()

	slog.InfoContext(ctx, "scheduler started", "interval", s.interval, "sources", len(s.extractors))

	s.dispatch(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			slog.InfoContext(ctx, "scheduler stopping")
			return nil
		case <-ticker.C:
			s.dispatch(ctx)
		case <-s.trigger:
			s.dispatch(ctx)
		}
	}
}

// Stop blocks until the run loop has exited and any mid-flight cycle
// has finished.
func (s *Scheduler) Stop() {
	close(s.stopCh)
	<-s.stoppedCh
}

// TriggerNow requests an immediate cycle (the dashboard's refresh
// button). It never blocks; it reports false when a cycle is already
// running or pending.
func (s *Scheduler) TriggerNow() bool {
	if s.inFlight.Load() {
		return false
	}
	select {
	case s.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

// SkippedCycles reports how many ticks were dropped by the overlap
// guard since startup.
func (s *Scheduler) SkippedCycles() int64 {
	return s.skipped.Load()
}

func (s *Scheduler) dispatch(ctx context.Context) {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.skipped.Add(1)
		slog.WarnContext(ctx, "extraction cycle skipped, previous cycle still running",
			"skipped_total", s.skipped.Load())
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.inFlight.Store(false)
		s.runCycle(ctx)
	}()
}

func (s *Scheduler) runCycle(ctx context.Context) {
	runID := id.New()
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		RunID:     logger.Ptr(runID),
		Component: "defectdash.scheduler",
	})

	start := time.Now()
	slog.InfoContext(ctx, "extraction cycle starting")

	for _, ext := range s.extractors {
		if ctx.Err() != nil {
			return
		}
		rows, err := ext.Run(ctx)
		if err != nil {
			// One source failing must not starve the other; the stale
			// workbook simply survives until the next cycle.
			slog.ErrorContext(ctx, "extraction failed", "source", ext.Name(), "error", err)
			continue
		}
		slog.InfoContext(ctx, "source extracted", "source", ext.Name(), "rows", rows)
	}

	if s.onCycleDone != nil {
		s.onCycleDone()
	}

	slog.InfoContext(ctx, "extraction cycle complete",
		"elapsed", time.Since(start).Round(time.Millisecond))
}
