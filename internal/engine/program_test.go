package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfell/rungine/internal/image"
	"github.com/mfell/rungine/internal/ladder"
)

func TestEvalScan_LaterRungsSeeEarlierWrites(t *testing.T) {
	p := &ladder.Program{Rungs: []ladder.Rung{
		contactCoilRung("start", "a"),
		contactCoilRung("a", "b"),
	}}
	order := Resolve(p)
	require.Equal(t, []int{0, 1}, order)

	states := NewStateTable()
	var counters Counters

	snapshot := image.New()
	snapshot.Set("start", ladder.Bit(true))
	out := EvalScan(p, order, snapshot, states, 1, &counters)

	v, _ := out.Bit("a")
	assert.True(t, v)
	v, _ = out.Bit("b")
	assert.True(t, v, "rung 1 must observe rung 0's coil within the same scan")
}

func TestEvalScan_FeedbackResolvesAcrossScans(t *testing.T) {
	// NC-coupled pair: a two-rung oscillator that settles after one
	// scan because in-scan writes propagate in program order.
	p := &ladder.Program{Rungs: []ladder.Rung{
		{Elements: []ladder.Element{
			{ID: "y", Kind: ladder.KindContact, NormallyOpen: false},
			{ID: "x_coil", Kind: ladder.KindCoil, Target: "x"},
		}},
		{Elements: []ladder.Element{
			{ID: "x", Kind: ladder.KindContact, NormallyOpen: false},
			{ID: "y_coil", Kind: ladder.KindCoil, Target: "y"},
		}},
	}}
	order := Resolve(p)
	states := NewStateTable()
	var counters Counters

	working := image.New()
	for scan := 0; scan < 3; scan++ {
		working = EvalScan(p, order, working, states, 1, &counters)
	}

	x, _ := working.Bit("x")
	y, _ := working.Bit("y")
	assert.True(t, x)
	assert.False(t, y, "steady state: first rung wins, second sees its write")
}

func TestEvalScan_SnapshotIsNotMutated(t *testing.T) {
	p := &ladder.Program{Rungs: []ladder.Rung{
		contactCoilRung("in", "out"),
	}}
	states := NewStateTable()
	var counters Counters

	snapshot := image.New()
	snapshot.Set("in", ladder.Bit(true))
	_ = EvalScan(p, Resolve(p), snapshot, states, 1, &counters)

	assert.Nil(t, snapshot.Get("out"), "EvalScan works on a copy")
}

func TestEvalScan_NegativeDtClamps(t *testing.T) {
	p := &ladder.Program{Rungs: []ladder.Rung{
		{Elements: []ladder.Element{
			{ID: "sw", Kind: ladder.KindContact, NormallyOpen: true},
			{ID: "t1", Kind: ladder.KindTimer, TimerMode: ladder.TimerOnDelay, Preset: 2},
		}},
	}}
	states := NewStateTable()
	var counters Counters

	snapshot := image.New()
	snapshot.Set("sw", ladder.Bit(true))
	out := EvalScan(p, Resolve(p), snapshot, states, -5, &counters)

	et, _ := out.Word("t1.et")
	assert.Equal(t, int32(0), et, "negative dt must not move time")
}

func TestEvalScan_Deterministic(t *testing.T) {
	// Invariant: identical programs, initial images, and write timelines
	// produce identical output image sequences.
	build := func() (*ladder.Program, []int, *StateTable) {
		p := &ladder.Program{Rungs: []ladder.Rung{
			{Elements: []ladder.Element{
				{ID: "cu", Kind: ladder.KindContact, NormallyOpen: true},
				{ID: "ctr", Kind: ladder.KindCounter, CounterMode: ladder.CountUp, Preset: 2},
			}},
			contactCoilRung("ctr", "done"),
			contactCoilRung("start", "aux"),
		}}
		return p, Resolve(p), NewStateTable()
	}

	run := func() []image.Image {
		p, order, states := build()
		var counters Counters
		var traces []image.Image

		working := image.New()
		writes := []map[string]ladder.Value{
			{"cu": ladder.Bit(true), "start": ladder.Bit(true)},
			{"cu": ladder.Bit(false)},
			{"cu": ladder.Bit(true)},
			{"start": ladder.Bit(false)},
			{},
		}
		for _, w := range writes {
			for id, v := range w {
				working.Set(id, v)
			}
			working = EvalScan(p, order, working, states, 1, &counters)
			traces = append(traces, working.Clone())
		}
		return traces
	}

	first := run()
	second := run()
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i], second[i], "scan %d diverged", i+1)
	}
}
