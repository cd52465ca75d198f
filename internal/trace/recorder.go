package trace

import (
	"context"
	"log/slog"

	"github.com/mfell/rungine/internal/image"
)

// Recorder adapts a Store to the scheduler's scan observer interface.
//
// Recording failures are logged and dropped - the trace is diagnostic
// data, and a full disk must not stop the scan cycle.
type Recorder struct {
	store *Store
	runID string
}

// NewRecorder creates a recorder appending to the given run.
func NewRecorder(store *Store, runID string) *Recorder {
	return &Recorder{store: store, runID: runID}
}

// RunID returns the run token this recorder appends to.
func (r *Recorder) RunID() string {
	return r.runID
}

// ObserveScan persists one committed scan.
func (r *Recorder) ObserveScan(seq int64, overrun bool, outputs image.Image) {
	if err := r.store.RecordScan(context.Background(), r.runID, seq, overrun, outputs); err != nil {
		slog.Error("scan trace write failed",
			"run", r.runID,
			"seq", seq,
			"error", err,
		)
	}
}
