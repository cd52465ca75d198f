package ladder

// Rung is an ordered series of elements evaluated left to right as an
// AND chain. The first element is implicitly connected to the left
// power rail.
type Rung struct {
	Elements []Element `yaml:"elements" json:"elements"`
}

// Program is an ordered list of rungs.
//
// Rung order is the tiebreak order for the execution-order resolver:
// rungs that form a dependency cycle run in the order they appear here.
type Program struct {
	Name  string `yaml:"name,omitempty" json:"name,omitempty"`
	Rungs []Rung `yaml:"rungs" json:"rungs"`
}

// Validate re-checks the invariants the engine depends on, regardless
// of what the loader already verified.
//
// Currently the single invariant with teeth is single-driver: a given
// bit must be driven by at most one coil across the whole program.
// Violations are rejected with a MultipleDriversError naming every
// offending rung, so the error message points at the actual conflict.
func (p *Program) Validate() error {
	driverRungs := make(map[string][]int)

	for i, rung := range p.Rungs {
		for j := range rung.Elements {
			el := &rung.Elements[j]
			if el.Kind != KindCoil {
				continue
			}
			target := el.CoilTarget()
			driverRungs[target] = append(driverRungs[target], i)
		}
	}

	for id, rungs := range driverRungs {
		if len(rungs) > 1 {
			return &MultipleDriversError{ID: id, Rungs: rungs}
		}
	}

	return nil
}

// Clone returns a deep copy of the program.
// The scheduler clones on Load so a caller mutating its own copy
// afterwards cannot reach into a running scan.
func (p *Program) Clone() *Program {
	cp := &Program{Name: p.Name, Rungs: make([]Rung, len(p.Rungs))}
	for i, rung := range p.Rungs {
		cp.Rungs[i].Elements = make([]Element, len(rung.Elements))
		copy(cp.Rungs[i].Elements, rung.Elements)
	}
	return cp
}

// CoilTargets returns the set of bits driven by coils on rung i.
// Only coils count; the execution-order resolver uses its own wider set
// that also includes output elements and stateful block bits.
func (p *Program) CoilTargets(i int) map[string]bool {
	targets := make(map[string]bool)
	for j := range p.Rungs[i].Elements {
		el := &p.Rungs[i].Elements[j]
		if el.Kind == KindCoil {
			targets[el.CoilTarget()] = true
		}
	}
	return targets
}

// ContactSources returns the set of bits observed by contacts on rung i.
// Used by the execution-order resolver.
func (p *Program) ContactSources(i int) map[string]bool {
	sources := make(map[string]bool)
	for j := range p.Rungs[i].Elements {
		el := &p.Rungs[i].Elements[j]
		if el.Kind == KindContact {
			sources[el.ContactSource()] = true
		}
	}
	return sources
}
