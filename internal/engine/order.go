package engine

import (
	"log/slog"

	"github.com/mfell/rungine/internal/ladder"
)

// Resolve computes the execution order for a program's rungs.
//
// A rung that observes a coil through one of its contacts depends on
// the rung driving that coil, and should run after it so the write is
// visible within the same scan. Resolve builds that dependency graph
// and emits a Kahn topological order. Each pass walks the rungs in
// original index order and emits every rung that is ready when it is
// reached, so ties break deterministically.
//
// Feedback cycles (motor start-stop latches and friends) are expected,
// not an error: when no rung is ready, the remaining rungs are emitted
// in their original program order. Self-referential loops still resolve
// correctly across scans because a contact on the same rung as its coil
// observes the previous evaluation's value.
//
// The order is computed once per program load, not per scan.
func Resolve(p *ladder.Program) []int {
	n := len(p.Rungs)
	order := make([]int, 0, n)

	coils := make([]map[string]bool, n)
	contacts := make([]map[string]bool, n)
	for i := 0; i < n; i++ {
		coils[i] = drivenIDs(&p.Rungs[i])
		contacts[i] = p.ContactSources(i)
	}

	// deps[i] holds the rungs that must run before rung i.
	// A rung never depends on itself: a same-rung feedback contact reads
	// the prior scan by design, and making it a dependency would force
	// every latch into the cycle fallback.
	deps := make([]map[int]bool, n)
	for i := 0; i < n; i++ {
		deps[i] = make(map[int]bool)
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			for target := range coils[j] {
				if contacts[i][target] {
					deps[i][j] = true
					break
				}
			}
		}
	}

	emitted := make([]bool, n)
	remaining := n

	for remaining > 0 {
		progress := false
		for i := 0; i < n; i++ {
			if emitted[i] {
				continue
			}
			ready := true
			for j := range deps[i] {
				if !emitted[j] {
					ready = false
					break
				}
			}
			if ready {
				order = append(order, i)
				emitted[i] = true
				remaining--
				progress = true
			}
		}

		if !progress {
			// The residue is one or more cycles. Emit it in program order.
			residual := make([]int, 0, remaining)
			for i := 0; i < n; i++ {
				if !emitted[i] {
					residual = append(residual, i)
					emitted[i] = true
				}
			}
			order = append(order, residual...)
			slog.Debug("dependency cycle in rung graph, residue in program order",
				"rungs", residual,
			)
			remaining = 0
		}
	}

	return order
}

// drivenIDs returns every bit a rung writes into the image: coil
// targets, output elements, and the published done bits of stateful
// blocks. Contacts downstream of any of these want their rung ordered
// after this one.
func drivenIDs(rung *ladder.Rung) map[string]bool {
	ids := make(map[string]bool)
	for i := range rung.Elements {
		el := &rung.Elements[i]
		switch el.Kind {
		case ladder.KindCoil:
			ids[el.CoilTarget()] = true
		case ladder.KindOutput, ladder.KindTimer, ladder.KindCounter, ladder.KindLatch:
			ids[el.ID] = true
		}
	}
	return ids
}
