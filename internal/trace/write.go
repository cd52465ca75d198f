package trace

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mfell/rungine/internal/image"
)

// BeginRun registers a new run and returns its token.
//
// Run tokens are UUIDv7, so sorting runs by ID sorts them by start
// time - handy when picking the latest run for inspection.
func (s *Store) BeginRun(ctx context.Context, programName string, scanPeriod time.Duration) (string, error) {
	id := uuid.Must(uuid.NewV7()).String()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, program, scan_period_ms, started_at) VALUES (?, ?, ?, ?)`,
		id, programName, scanPeriod.Milliseconds(), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// RecordScan appends one scan row to a run.
// Idempotent per (run, seq): re-recording the same scan is a no-op, so
// a retried write after a transient failure cannot duplicate a row.
func (s *Store) RecordScan(ctx context.Context, runID string, seq int64, overrun bool, outputs image.Image) error {
	payload, err := MarshalImage(outputs)
	if err != nil {
		return fmt.Errorf("serialize outputs for scan %d: %w", seq, err)
	}

	overrunInt := 0
	if overrun {
		overrunInt = 1
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO scans (run_id, seq, overrun, outputs) VALUES (?, ?, ?, ?)
		 ON CONFLICT (run_id, seq) DO NOTHING`,
		runID, seq, overrunInt, string(payload),
	)
	if err != nil {
		return fmt.Errorf("insert scan %d: %w", seq, err)
	}
	return nil
}
