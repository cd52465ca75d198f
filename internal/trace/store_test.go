package trace

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfell/rungine/internal/image"
	"github.com/mfell/rungine/internal/ladder"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func outputsImage(pairs map[string]ladder.Value) image.Image {
	img := image.New()
	for id, v := range pairs {
		img.Set(id, v)
	}
	return img
}

func TestStore_RecordAndReadRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	runID, err := store.BeginRun(ctx, "motor", 100*time.Millisecond)
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	require.NoError(t, store.RecordScan(ctx, runID, 1, false,
		outputsImage(map[string]ladder.Value{"out1": ladder.Bit(true)})))
	require.NoError(t, store.RecordScan(ctx, runID, 2, true,
		outputsImage(map[string]ladder.Value{"out1": ladder.Bit(false), "t1.et": ladder.Word(3)})))

	scans, err := store.ReadScans(ctx, runID)
	require.NoError(t, err)
	require.Len(t, scans, 2)

	assert.Equal(t, int64(1), scans[0].Seq)
	assert.False(t, scans[0].Overrun)
	assert.Equal(t, image.Image{"out1": ladder.Bit(true)}, scans[0].Outputs)

	assert.Equal(t, int64(2), scans[1].Seq)
	assert.True(t, scans[1].Overrun)
	assert.Equal(t, ladder.Word(3), scans[1].Outputs.Get("t1.et"))
}

func TestStore_RecordScanIsIdempotent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	runID, err := store.BeginRun(ctx, "p", 50*time.Millisecond)
	require.NoError(t, err)

	img := outputsImage(map[string]ladder.Value{"a": ladder.Bit(true)})
	require.NoError(t, store.RecordScan(ctx, runID, 1, false, img))
	require.NoError(t, store.RecordScan(ctx, runID, 1, false, img), "re-recording must not error")

	scans, err := store.ReadScans(ctx, runID)
	require.NoError(t, err)
	assert.Len(t, scans, 1)
}

func TestStore_ListAndLatestRuns(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.LatestRun(ctx)
	assert.ErrorIs(t, err, ErrNoRuns)

	first, err := store.BeginRun(ctx, "one", 100*time.Millisecond)
	require.NoError(t, err)
	second, err := store.BeginRun(ctx, "two", 200*time.Millisecond)
	require.NoError(t, err)

	runs, err := store.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, first, runs[0].ID, "runs list oldest first")
	assert.Equal(t, 100*time.Millisecond, runs[0].ScanPeriod)

	latest, err := store.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, latest.ID)
	assert.Equal(t, "two", latest.Program)
}

func TestRecorder_ObserveScanPersists(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	runID, err := store.BeginRun(ctx, "obs", 100*time.Millisecond)
	require.NoError(t, err)

	rec := NewRecorder(store, runID)
	assert.Equal(t, runID, rec.RunID())

	rec.ObserveScan(1, false, outputsImage(map[string]ladder.Value{"out": ladder.Bit(true)}))
	rec.ObserveScan(2, false, outputsImage(map[string]ladder.Value{"out": ladder.Bit(false)}))

	scans, err := store.ReadScans(ctx, runID)
	require.NoError(t, err)
	require.Len(t, scans, 2)
	assert.Equal(t, image.Image{"out": ladder.Bit(false)}, scans[1].Outputs)
}
