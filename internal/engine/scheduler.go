package engine

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/mfell/rungine/internal/image"
	"github.com/mfell/rungine/internal/ladder"
)

// DefaultScanPeriod is the scan period used when none is configured.
const DefaultScanPeriod = 100 * time.Millisecond

// ScanObserver is notified after each scan commits. The outputs image
// is a value copy; the observer may keep it.
//
// Implemented by trace.Recorder (persistence) and by test doubles.
// Observation happens on the scan goroutine - a slow observer slows
// the cycle, so implementations should hand off promptly.
type ScanObserver interface {
	ObserveScan(seq int64, overrun bool, outputs image.Image)
}

// Scheduler owns the fixed-period scan loop.
//
// CRITICAL: All program and block-state mutation happens in the
// single goroutine running Run. External callers interact through the
// control methods (Start/Stop/Step/Reset/Load), the shared
// image.Table, and Telemetry().
//
// Thread-safety model:
//   - Run(): must be called from exactly one goroutine
//   - control methods: safe from any goroutine
//   - Telemetry(): safe from any goroutine (atomic reads)
type Scheduler struct {
	table    *image.Table
	period   time.Duration
	observer ScanObserver

	// now and sleep are injectable for deterministic tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration)

	ctrl chan command

	mode         atomicMode
	scanCount    atomic.Int64
	overruns     atomic.Int64
	actualPeriod atomic.Int64 // nanoseconds, start-to-start

	counters Counters

	// Owned by the Run goroutine; never touched elsewhere.
	program       *ladder.Program
	order         []int
	states        *StateTable
	lastScanStart time.Time
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithPeriod sets the scan period. Periods below 1ms are rejected by
// clamping to 1ms; a PLC scanning faster than that should not be
// sharing a lock-based image.
func WithPeriod(d time.Duration) Option {
	return func(s *Scheduler) {
		if d < time.Millisecond {
			d = time.Millisecond
		}
		s.period = d
	}
}

// WithObserver attaches a post-commit scan observer.
func WithObserver(obs ScanObserver) Option {
	return func(s *Scheduler) {
		s.observer = obs
	}
}

// WithClock overrides the wall clock and sleep function.
// Used by tests to drive the loop deterministically.
func WithClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration)) Option {
	return func(s *Scheduler) {
		s.now = now
		s.sleep = sleep
	}
}

// NewScheduler creates a scheduler in STOPPED mode with an empty
// program. Load a program and Start (or Step) to begin scanning.
func NewScheduler(table *image.Table, opts ...Option) *Scheduler {
	s := &Scheduler{
		table:   table,
		period:  DefaultScanPeriod,
		ctrl:    make(chan command, 16),
		program: &ladder.Program{},
		order:   nil,
		states:  NewStateTable(),
	}
	s.now = time.Now
	s.sleep = func(ctx context.Context, d time.Duration) {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-timer.C:
		}
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Period returns the configured scan period.
func (s *Scheduler) Period() time.Duration {
	return s.period
}

// Mode returns the current run state.
func (s *Scheduler) Mode() Mode {
	return s.mode.Load()
}

// Telemetry returns a snapshot of the scheduler's observable state.
func (s *Scheduler) Telemetry() Telemetry {
	return Telemetry{
		Mode:             s.mode.Load(),
		ScanCount:        s.scanCount.Load(),
		OverrunCount:     s.overruns.Load(),
		ActualScanPeriod: time.Duration(s.actualPeriod.Load()),
		UnknownKinds:     s.counters.UnknownKinds.Load(),
		TypeMismatches:   s.counters.TypeMismatches.Load(),
	}
}

// Run executes the scan loop until ctx is cancelled.
//
// One iteration is one scan when not STOPPED: record the tick start,
// snapshot the image, evaluate every rung, commit the result, then
// drain pending control messages and sleep out the remainder of the
// period. A scan that overruns its period skips the sleep, counts the
// overrun, and starts the next scan immediately.
//
// While STOPPED the loop blocks on the control channel; no CPU is
// burned between commands.
func (s *Scheduler) Run(ctx context.Context) error {
	slog.Info("scheduler starting", "period", s.period, "mode", s.Mode())

	for {
		if s.mode.Load() == ModeStopped {
			select {
			case <-ctx.Done():
				slog.Info("scheduler stopping: context cancelled")
				return ctx.Err()
			case cmd := <-s.ctrl:
				s.apply(cmd)
			}
			continue
		}

		tickStart := s.now()
		s.runScan(tickStart)

		if s.mode.Load() == ModeSingleStep {
			s.mode.Store(ModeStopped)
			slog.Debug("single step complete")
		}

		// Drain any control messages that arrived during the scan.
	drain:
		for {
			select {
			case cmd := <-s.ctrl:
				s.apply(cmd)
			default:
				break drain
			}
		}

		if ctx.Err() != nil {
			slog.Info("scheduler stopping: context cancelled")
			return ctx.Err()
		}

		elapsed := s.now().Sub(tickStart)
		if elapsed >= s.period {
			s.overruns.Add(1)
			slog.Warn("scan overrun",
				"elapsed", elapsed,
				"period", s.period,
				"overruns", s.overruns.Load(),
			)
			continue // no sleep; recover cadence on the next scan
		}
		if s.mode.Load() != ModeStopped {
			s.sleep(ctx, s.period-elapsed)
		}
	}
}

// runScan executes one scan: snapshot, evaluate, commit, observe.
// The commit is a single atomic merge - external readers see either
// the whole scan or none of it.
func (s *Scheduler) runScan(tickStart time.Time) {
	if !s.lastScanStart.IsZero() {
		s.actualPeriod.Store(int64(tickStart.Sub(s.lastScanStart)))
	}
	s.lastScanStart = tickStart

	snapshot := s.table.Snapshot()
	out := EvalScan(s.program, s.order, snapshot, s.states, 1, &s.counters)

	// Commit only what this scan changed, so an external Set that landed
	// after the snapshot is not overwritten with its stale snapshot value.
	delta := image.New()
	for id, v := range out {
		if prev, present := snapshot[id]; !present || prev != v {
			delta[id] = v
		}
	}
	s.table.Commit(delta)

	seq := s.scanCount.Add(1)

	if s.observer != nil {
		overrun := s.now().Sub(tickStart) >= s.period
		s.observer.ObserveScan(seq, overrun, s.table.SnapshotOutputs())
	}
}

// apply handles one control message. Called only from the Run
// goroutine, always between scans.
func (s *Scheduler) apply(cmd command) {
	switch cmd.kind {
	case cmdStart:
		s.mode.Store(ModeRunning)
		slog.Info("scheduler running")

	case cmdStop:
		s.mode.Store(ModeStopped)
		slog.Info("scheduler stopped", "scans", s.scanCount.Load())

	case cmdStep:
		s.mode.Store(ModeSingleStep)
		slog.Debug("single step requested")

	case cmdReset:
		s.table.Reset()
		s.states.Reset()
		s.scanCount.Store(0)
		s.actualPeriod.Store(0)
		s.lastScanStart = time.Time{}
		slog.Info("image and element state reset")

	case cmdLoad:
		s.program = cmd.program
		s.order = cmd.order
		s.states.Reset()
		s.table.MarkOutputs(OutputIDs(cmd.program))
		slog.Info("program loaded",
			"name", cmd.program.Name,
			"rungs", len(cmd.program.Rungs),
		)

	default:
		slog.Error("unknown control command", "kind", int(cmd.kind))
	}
}
