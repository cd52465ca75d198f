package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfell/rungine/internal/image"
	"github.com/mfell/rungine/internal/ladder"
	"github.com/mfell/rungine/internal/trace"
)

const testProgram = `name: blinker
rungs:
  - elements:
      - id: in1
        kind: contact
        normally_open: true
      - id: out1
        kind: coil
`

func writeProgramFile(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "program.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

// execute runs the CLI with args and returns combined output.
func execute(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	if ctx == nil {
		ctx = context.Background()
	}
	err := cmd.ExecuteContext(ctx)
	return buf.String(), err
}

func TestValidateCommand_ValidProgram(t *testing.T) {
	path := writeProgramFile(t, testProgram)

	out, err := execute(t, nil, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "valid (1 rungs)")
	assert.Contains(t, out, "execution order")
}

func TestValidateCommand_RejectsMultipleDrivers(t *testing.T) {
	path := writeProgramFile(t, `rungs:
  - elements:
      - id: c1
        kind: coil
        target: dup
  - elements:
      - id: c2
        kind: coil
        target: dup
`)

	_, err := execute(t, nil, "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, ladder.IsMultipleDrivers(err), "the typed error survives the exit wrapper")
}

func TestValidateCommand_MissingFile(t *testing.T) {
	_, err := execute(t, nil, "validate", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestRunCommand_MissingProgram(t *testing.T) {
	_, err := execute(t, nil, "run", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRunCommand_ModbusRequiresMapping(t *testing.T) {
	path := writeProgramFile(t, testProgram)

	_, err := execute(t, nil, "run", path, "--modbus", "tcp://127.0.0.1:15502")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRunCommand_RunsUntilCancelled(t *testing.T) {
	path := writeProgramFile(t, testProgram)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	out, err := execute(t, ctx, "run", path, "--period", "10")
	require.NoError(t, err, "context cancellation is a clean shutdown")
	assert.Contains(t, out, "Scanning")
}

func TestRunCommand_RecordsTrace(t *testing.T) {
	path := writeProgramFile(t, testProgram)
	dbPath := filepath.Join(t.TempDir(), "scans.db")

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	_, err := execute(t, ctx, "run", path, "--period", "10", "--trace-db", dbPath)
	require.NoError(t, err)

	store, err := trace.Open(dbPath)
	require.NoError(t, err)
	defer store.Close()

	latest, err := store.LatestRun(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "blinker", latest.Program)

	scans, err := store.ReadScans(context.Background(), latest.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, scans, "a running engine must have recorded scans")
}

func TestTraceCommand_ListAndDump(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "scans.db")
	store, err := trace.Open(dbPath)
	require.NoError(t, err)

	ctx := context.Background()
	runID, err := store.BeginRun(ctx, "demo", 100*time.Millisecond)
	require.NoError(t, err)

	img := image.New()
	img.Set("out1", ladder.Bit(true))
	require.NoError(t, store.RecordScan(ctx, runID, 1, false, img))
	require.NoError(t, store.RecordScan(ctx, runID, 2, true, img))
	require.NoError(t, store.Close())

	out, err := execute(t, nil, "trace", "--db", dbPath, "--list")
	require.NoError(t, err)
	assert.Contains(t, out, runID)
	assert.Contains(t, out, "demo")

	out, err = execute(t, nil, "trace", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, `{"out1":true}`)
	assert.Contains(t, out, "!", "overrun scans are marked")
}

func TestTraceCommand_EmptyDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "empty.db")
	store, err := trace.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = execute(t, nil, "trace", "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(WrapExitError(ExitCommandError, "boom", nil)))
	assert.Equal(t, ExitFailure, GetExitCode(fmt.Errorf("plain")))

	wrapped := fmt.Errorf("outer: %w", WrapExitError(ExitCommandError, "inner", nil))
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
}
