package image

import (
	"sync"
	"sync/atomic"

	"github.com/mfell/rungine/internal/ladder"
)

// Change is one observed value transition, delivered to subscribers.
type Change struct {
	ID    string
	Value ladder.Value
}

// subscription delivers changes for a set of IDs to one subscriber.
// An empty ID set matches everything.
type subscription struct {
	ids map[string]bool
	ch  chan Change
}

func (s *subscription) matches(id string) bool {
	return len(s.ids) == 0 || s.ids[id]
}

// Table is the shared, thread-safe I/O image.
//
// Thread-safety model:
//   - Snapshot/Commit: used by the scheduler; acquire, copy/merge, release
//   - Set/Get (and the Read/Write/ReadBit/ReadWord external surface):
//     single-key operations, each individually atomic
//
// No reader ever observes a half-committed scan: Commit merges the whole
// delta under one lock acquisition. Ordering between independent Set
// calls is not specified beyond each call being atomic.
//
// Callers must never hold their own references into a returned snapshot
// expecting it to track the table - snapshots are value copies.
type Table struct {
	mu      sync.Mutex
	current Image
	outputs map[string]bool // advisory output partition, set at program load
	subs    []*subscription

	// typeMismatches counts reads where the caller's expected type did
	// not match the stored value. Soft error per the engine's policy:
	// counted, surfaced via telemetry, never fatal.
	typeMismatches atomic.Int64
}

// NewTable creates an empty I/O table.
func NewTable() *Table {
	return &Table{
		current: New(),
		outputs: make(map[string]bool),
	}
}

// Snapshot returns a value copy of the current image.
// Atomic with respect to concurrent Set/Commit.
func (t *Table) Snapshot() Image {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current.Clone()
}

// Commit merges a delta image onto the table atomically and notifies
// subscribers of every key present in the delta.
//
// Subscriber delivery is non-blocking: a subscriber that has fallen
// behind loses intermediate changes rather than stalling the scan
// cycle. Subscribers needing every edge should drain promptly.
func (t *Table) Commit(delta Image) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.current.Merge(delta)
	t.notifyLocked(delta)
}

// Set stores one value. Used by external writers (Modbus, UI).
// Last write wins.
func (t *Table) Set(id string, v ladder.Value) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.current[id] = v
	t.notifyOneLocked(id, v)
}

// Get returns the value for id, or nil if absent.
func (t *Table) Get(id string) ladder.Value {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current[id]
}

// Read is the external read surface; identical to Get.
func (t *Table) Read(id string) ladder.Value {
	return t.Get(id)
}

// Write is the external write surface; identical to Set.
func (t *Table) Write(id string, v ladder.Value) {
	t.Set(id, v)
}

// ReadBit reads id as a bit, counting a soft error on type mismatch.
func (t *Table) ReadBit(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	val, mismatch := t.current.Bit(id)
	if mismatch {
		t.typeMismatches.Add(1)
	}
	return val
}

// ReadWord reads id as a word, counting a soft error on type mismatch.
func (t *Table) ReadWord(id string) int32 {
	t.mu.Lock()
	defer t.mu.Unlock()

	val, mismatch := t.current.Word(id)
	if mismatch {
		t.typeMismatches.Add(1)
	}
	return val
}

// MarkOutputs records which IDs belong to the output partition.
// The scheduler calls this at program load with every coil target and
// output element ID, so SnapshotOutputs knows what to return.
func (t *Table) MarkOutputs(ids []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.outputs = make(map[string]bool, len(ids))
	for _, id := range ids {
		t.outputs[id] = true
	}
}

// SnapshotOutputs returns a value copy of just the output partition.
// IDs marked as outputs but never yet driven are absent from the result.
func (t *Table) SnapshotOutputs() Image {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(Image, len(t.outputs))
	for id := range t.outputs {
		if v, present := t.current[id]; present {
			out[id] = v
		}
	}
	return out
}

// Subscribe registers interest in changes to the given IDs (all IDs if
// empty) and returns the change stream plus a cancel function. The
// channel is buffered; delivery never blocks a commit.
func (t *Table) Subscribe(ids []string) (<-chan Change, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	sub := &subscription{
		ids: make(map[string]bool, len(ids)),
		ch:  make(chan Change, 64),
	}
	for _, id := range ids {
		sub.ids[id] = true
	}
	t.subs = append(t.subs, sub)

	cancel := func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		for i, s := range t.subs {
			if s == sub {
				t.subs = append(t.subs[:i], t.subs[i+1:]...)
				close(s.ch)
				return
			}
		}
	}
	return sub.ch, cancel
}

// Reset clears every value in the table. Subscribers stay registered.
func (t *Table) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = New()
}

// TypeMismatches returns the soft-error count for typed reads.
func (t *Table) TypeMismatches() int64 {
	return t.typeMismatches.Load()
}

// Len returns the number of IDs currently present.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.current)
}

// notifyLocked delivers one change per delta key, in sorted order so
// subscribers observe a deterministic sequence. Caller holds t.mu.
func (t *Table) notifyLocked(delta Image) {
	if len(t.subs) == 0 {
		return
	}
	for _, id := range delta.SortedIDs() {
		t.notifyOneLocked(id, delta[id])
	}
}

// notifyOneLocked delivers a single change without blocking.
// Caller holds t.mu.
func (t *Table) notifyOneLocked(id string, v ladder.Value) {
	for _, sub := range t.subs {
		if !sub.matches(id) {
			continue
		}
		select {
		case sub.ch <- Change{ID: id, Value: v}:
		default:
			// Subscriber is behind; drop rather than stall the scan.
		}
	}
}
