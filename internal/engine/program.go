package engine

import (
	"github.com/mfell/rungine/internal/image"
	"github.com/mfell/rungine/internal/ladder"
)

// EvalScan runs one full scan of the program.
//
// snapshot is the input image captured at the start of the scan. The
// working copy starts equal to it; each rung, taken in resolved order,
// reads the working copy and merges its writes back in, so later rungs
// observe earlier rungs' coils within the same scan. Block state in
// states advances by dt ticks. The returned image is the complete
// image_out; the scheduler commits the entries that differ from snapshot.
//
// A negative dt is treated as zero; time never runs backwards through
// a timer.
func EvalScan(p *ladder.Program, order []int, snapshot image.Image, states *StateTable, dt int32, counters *Counters) image.Image {
	if dt < 0 {
		dt = 0
	}

	working := snapshot.Clone()

	for _, idx := range order {
		_, delta := evalRung(&p.Rungs[idx], working, states, dt, counters)
		working.Merge(delta)
	}

	return working
}

// OutputIDs collects every ID the program can drive: coil targets,
// output elements, and the published bits and readout words of stateful
// blocks. The scheduler hands this to the I/O table so the external
// SnapshotOutputs surface knows the output partition.
func OutputIDs(p *ladder.Program) []string {
	seen := make(map[string]bool)
	var ids []string
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	for i := range p.Rungs {
		for j := range p.Rungs[i].Elements {
			el := &p.Rungs[i].Elements[j]
			switch el.Kind {
			case ladder.KindCoil:
				add(el.CoilTarget())
			case ladder.KindOutput:
				add(el.ID)
			case ladder.KindTimer:
				add(el.ID)
				add(el.ID + elapsedSuffix)
			case ladder.KindCounter:
				add(el.ID)
				add(el.ID + countSuffix)
			case ladder.KindLatch:
				add(el.ID)
			}
		}
	}
	return ids
}
