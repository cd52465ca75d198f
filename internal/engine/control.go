package engine

import (
	"fmt"

	"github.com/mfell/rungine/internal/ladder"
)

// commandKind enumerates the control messages the scheduler accepts.
type commandKind int

const (
	cmdStart commandKind = iota + 1
	cmdStop
	cmdStep
	cmdReset
	cmdLoad
)

// command is one control message. Commands are applied only at scan
// boundaries; an in-flight scan always completes atomically first.
type command struct {
	kind    commandKind
	program *ladder.Program
	order   []int
}

// Start switches the scheduler to RUNNING. No-op if already running.
func (s *Scheduler) Start() {
	s.ctrl <- command{kind: cmdStart}
}

// Stop halts scanning at the next scan boundary. The in-flight scan,
// if any, commits in full before the scheduler goes STOPPED.
func (s *Scheduler) Stop() {
	s.ctrl <- command{kind: cmdStop}
}

// Step requests exactly one scan, after which the scheduler stops.
func (s *Scheduler) Step() {
	s.ctrl <- command{kind: cmdStep}
}

// Reset re-initializes the I/O image and all persistent element state
// to defaults at the next scan boundary. The loaded program and its
// execution order are retained.
func (s *Scheduler) Reset() {
	s.ctrl <- command{kind: cmdReset}
}

// Load validates a program and swaps it in at the next scan boundary.
//
// Validation happens here, synchronously, before anything is sent to
// the scan loop: a program that violates the single-driver invariant is
// rejected with the validation error and the scheduler keeps running
// its previous program. The program is cloned and its execution order
// resolved once, so the swap itself is cheap and the caller's copy
// stays disconnected from the running scan.
func (s *Scheduler) Load(p *ladder.Program) error {
	if p == nil {
		return fmt.Errorf("load: nil program")
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("load program %q: %w", p.Name, err)
	}

	clone := p.Clone()
	order := Resolve(clone)
	s.ctrl <- command{kind: cmdLoad, program: clone, order: order}
	return nil
}
