package harness

import (
	"bytes"
	"fmt"
	"strconv"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/mfell/rungine/internal/trace"
)

// RunWithGolden executes a scenario and compares its scan trace against
// a golden file at testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files:
//
//	go test ./internal/harness -update
//
// The trace serializes through the same canonical image encoding the
// scan recorder uses, so golden files and recorded traces diff against
// each other directly.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	payload, err := marshalTrace(scenario.Name, result.Trace)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, payload)

	return result, nil
}

// marshalTrace renders a scan trace as deterministic JSON: one line of
// canonical image per scan, scans in sequence order.
func marshalTrace(name string, scans []ScanTrace) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("{\"scenario\":")
	buf.WriteString(strconv.Quote(name))
	buf.WriteString(",\"scans\":[")

	for i, scan := range scans {
		if i > 0 {
			buf.WriteByte(',')
		}
		outputs, err := trace.MarshalImage(scan.Outputs)
		if err != nil {
			return nil, fmt.Errorf("serialize scan %d: %w", scan.Seq, err)
		}
		buf.WriteString("\n{\"seq\":")
		buf.WriteString(strconv.FormatInt(scan.Seq, 10))
		buf.WriteString(",\"outputs\":")
		buf.Write(outputs)
		buf.WriteByte('}')
	}

	buf.WriteString("\n]}\n")
	return buf.Bytes(), nil
}
