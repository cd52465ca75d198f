// Package harness executes conformance scenarios against the real
// evaluation pipeline: programs load through the loader, inputs land in
// a real image table, and every scan runs snapshot -> evaluate ->
// commit exactly like the scheduler's loop. Only the wall clock is
// absent - scans are driven synchronously, one tick each, so results
// are deterministic and a thousand-scan scenario finishes instantly.
package harness

import (
	"fmt"
	"sort"

	"github.com/mfell/rungine/internal/engine"
	"github.com/mfell/rungine/internal/image"
	"github.com/mfell/rungine/internal/ladder"
	"github.com/mfell/rungine/internal/loader"
)

// ScanTrace is the committed output image of one scan.
type ScanTrace struct {
	Seq     int64
	Outputs image.Image
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expectation matched.
	Pass bool

	// Errors lists every failed expectation.
	Errors []string

	// Trace holds the output image after each scan, in order.
	// Used for golden comparison.
	Trace []ScanTrace
}

// AddError records a failed expectation and marks the result failed.
func (r *Result) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}

// Run executes a scenario and returns its result.
//
// Expectation failures do not abort the run - the full trace is always
// produced, so a golden diff shows the divergence in context.
func Run(scenario *Scenario) (*Result, error) {
	prog, err := loader.Load(scenario.Program)
	if err != nil {
		return nil, fmt.Errorf("load program: %w", err)
	}

	table := image.NewTable()
	table.MarkOutputs(engine.OutputIDs(prog))
	states := engine.NewStateTable()
	order := engine.Resolve(prog)
	var counters engine.Counters

	result := &Result{Pass: true}
	var seq int64

	for i, step := range scenario.Steps {
		for id, raw := range step.Writes {
			val, err := toValue(raw)
			if err != nil {
				return nil, fmt.Errorf("steps[%d] write %q: %w", i, id, err)
			}
			table.Set(id, val)
		}

		for n := 0; n < step.ScanCount(); n++ {
			snapshot := table.Snapshot()
			out := engine.EvalScan(prog, order, snapshot, states, 1, &counters)
			table.Commit(out)
			seq++
			result.Trace = append(result.Trace, ScanTrace{Seq: seq, Outputs: table.SnapshotOutputs()})
		}

		for _, id := range sortedKeys(step.Expect) {
			checkExpectation(result, table, i, id, step.Expect[id])
		}
	}

	return result, nil
}

// checkExpectation compares one image ID against its expected value.
func checkExpectation(result *Result, table *image.Table, stepIdx int, id string, raw any) {
	want, err := toValue(raw)
	if err != nil {
		result.AddError("steps[%d] expect %q: %v", stepIdx, id, err)
		return
	}

	switch w := want.(type) {
	case ladder.Bit:
		got := table.ReadBit(id)
		if got != bool(w) {
			result.AddError("steps[%d]: %s = %v, want %v", stepIdx, id, got, bool(w))
		}
	case ladder.Word:
		got := table.ReadWord(id)
		if got != int32(w) {
			result.AddError("steps[%d]: %s = %d, want %d", stepIdx, id, got, int32(w))
		}
	}
}

// toValue converts a YAML scalar to an image value.
func toValue(raw any) (ladder.Value, error) {
	switch v := raw.(type) {
	case bool:
		return ladder.Bit(v), nil
	case int:
		return ladder.Word(int32(v)), nil
	case int64:
		return ladder.Word(int32(v)), nil
	default:
		return nil, fmt.Errorf("unsupported value %v (%T): only booleans and integers", raw, raw)
	}
}

// sortedKeys returns map keys in lexical order so assertion failures
// list deterministically.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
