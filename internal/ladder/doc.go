// Package ladder defines the in-memory program model for the scan engine:
// elements, rungs, programs, and the tagged-union value type used by the
// I/O image.
//
// A program is constructed once by a loader, validated once, and then
// owned by the scheduler. Element attributes (presets, contact polarity,
// geometry) are immutable during execution; runtime state for timers,
// counters, and latches lives in the engine's state table, keyed by
// element ID, never inside the elements themselves.
package ladder
