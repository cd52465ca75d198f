package engine

import "github.com/mfell/rungine/internal/fblock"

// StateTable holds the persistent per-instance state of every stateful
// element, keyed by element ID in a dense side-table rather than inline
// in the rung elements. Two visual occurrences of the same timer ID
// share one state entry, which is how feedback contacts observe a
// timer's output elsewhere in the program.
//
// Only the program evaluator touches the table, and only during a scan;
// no locking is needed.
type StateTable struct {
	timers   map[string]fblock.TimerState
	counters map[string]fblock.CounterState
	latches  map[string]fblock.LatchState
}

// NewStateTable creates an empty state table.
func NewStateTable() *StateTable {
	return &StateTable{
		timers:   make(map[string]fblock.TimerState),
		counters: make(map[string]fblock.CounterState),
		latches:  make(map[string]fblock.LatchState),
	}
}

// Timer returns the state for a timer instance; zero state on first use.
func (s *StateTable) Timer(id string) fblock.TimerState {
	return s.timers[id]
}

// SetTimer stores the next state for a timer instance.
func (s *StateTable) SetTimer(id string, st fblock.TimerState) {
	s.timers[id] = st
}

// Counter returns the state for a counter instance; zero state on first use.
func (s *StateTable) Counter(id string) fblock.CounterState {
	return s.counters[id]
}

// SetCounter stores the next state for a counter instance.
func (s *StateTable) SetCounter(id string, st fblock.CounterState) {
	s.counters[id] = st
}

// Latch returns the state for a latch instance; zero state on first use.
func (s *StateTable) Latch(id string) fblock.LatchState {
	return s.latches[id]
}

// SetLatch stores the next state for a latch instance.
func (s *StateTable) SetLatch(id string, st fblock.LatchState) {
	s.latches[id] = st
}

// Reset returns every instance to its default state.
func (s *StateTable) Reset() {
	s.timers = make(map[string]fblock.TimerState)
	s.counters = make(map[string]fblock.CounterState)
	s.latches = make(map[string]fblock.LatchState)
}
