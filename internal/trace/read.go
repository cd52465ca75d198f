package trace

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mfell/rungine/internal/image"
)

// ErrNoRuns is returned by LatestRun on an empty trace database.
var ErrNoRuns = errors.New("trace: no recorded runs")

// Run describes one recorded scheduler run.
type Run struct {
	ID         string
	Program    string
	ScanPeriod time.Duration
	StartedAt  string
}

// ScanRecord is one recorded scan.
type ScanRecord struct {
	Seq     int64
	Overrun bool
	Outputs image.Image
}

// ListRuns returns every recorded run, oldest first.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, program, scan_period_ms, started_at FROM runs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var periodMs int64
		if err := rows.Scan(&r.ID, &r.Program, &periodMs, &r.StartedAt); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		r.ScanPeriod = time.Duration(periodMs) * time.Millisecond
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// LatestRun returns the most recently started run.
// UUIDv7 run IDs sort by creation time, so MAX(id) is the latest.
func (s *Store) LatestRun(ctx context.Context) (Run, error) {
	var r Run
	var periodMs int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, program, scan_period_ms, started_at FROM runs ORDER BY id DESC LIMIT 1`,
	).Scan(&r.ID, &r.Program, &periodMs, &r.StartedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNoRuns
	}
	if err != nil {
		return Run{}, fmt.Errorf("query latest run: %w", err)
	}
	r.ScanPeriod = time.Duration(periodMs) * time.Millisecond
	return r, nil
}

// ReadScans returns a run's scans in sequence order.
func (s *Store) ReadScans(ctx context.Context, runID string) ([]ScanRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, overrun, outputs FROM scans WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("query scans for run %s: %w", runID, err)
	}
	defer rows.Close()

	var records []ScanRecord
	for rows.Next() {
		var rec ScanRecord
		var overrunInt int
		var payload string
		if err := rows.Scan(&rec.Seq, &overrunInt, &payload); err != nil {
			return nil, fmt.Errorf("scan trace row: %w", err)
		}
		rec.Overrun = overrunInt != 0
		rec.Outputs, err = UnmarshalImage([]byte(payload))
		if err != nil {
			return nil, fmt.Errorf("decode outputs for seq %d: %w", rec.Seq, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scans: %w", err)
	}
	return records, nil
}
