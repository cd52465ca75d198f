package engine

import (
	"sync/atomic"
	"time"
)

// Mode is the scheduler's run state.
type Mode int32

const (
	// ModeStopped means no scans run until a Start or Step command.
	ModeStopped Mode = iota
	// ModeRunning means scans execute continuously at the scan period.
	ModeRunning
	// ModeSingleStep means exactly one scan runs, then the scheduler stops.
	ModeSingleStep
)

// String returns the mode name for logs and telemetry.
func (m Mode) String() string {
	switch m {
	case ModeStopped:
		return "STOPPED"
	case ModeRunning:
		return "RUNNING"
	case ModeSingleStep:
		return "SINGLE_STEP"
	default:
		return "UNKNOWN"
	}
}

// atomicMode stores a Mode with atomic load/store so control-plane
// goroutines can read the run state without taking a lock.
type atomicMode struct {
	v atomic.Int32
}

func (a *atomicMode) Load() Mode {
	return Mode(a.v.Load())
}

func (a *atomicMode) Store(m Mode) {
	a.v.Store(int32(m))
}

// Counters accumulates the engine's soft errors. Runtime anomalies are
// counted and surfaced here, never raised - nothing aborts a scan.
type Counters struct {
	// UnknownKinds counts rung elements whose kind the evaluator does
	// not recognize (treated as pass-through).
	UnknownKinds atomic.Int64

	// TypeMismatches counts image reads where the stored value had the
	// wrong type (read returned the typed zero).
	TypeMismatches atomic.Int64
}

// Telemetry is a read-only snapshot of the scheduler's observable state.
type Telemetry struct {
	// Mode is the run state at snapshot time.
	Mode Mode

	// ScanCount is the number of completed scans since construction or
	// the last Reset.
	ScanCount int64

	// OverrunCount is the number of scans whose evaluation exceeded the
	// scan period.
	OverrunCount int64

	// ActualScanPeriod is the measured start-to-start interval of the
	// two most recent scans; zero until two scans have run.
	ActualScanPeriod time.Duration

	// UnknownKinds and TypeMismatches mirror the soft-error counters.
	UnknownKinds   int64
	TypeMismatches int64
}
