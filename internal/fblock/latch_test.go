package fblock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRS_LatchesAndResetDominates(t *testing.T) {
	var st LatchState
	var out LatchOut

	// Set pulse latches Q.
	out, st = RS(st, true, false)
	assert.True(t, out.Q)
	assert.False(t, out.NotQ)

	// Q holds with both inputs low.
	out, st = RS(st, false, false)
	assert.True(t, out.Q)

	// Reset clears.
	out, st = RS(st, false, true)
	assert.False(t, out.Q)
	assert.True(t, out.NotQ)

	// Reset dominates a simultaneous set.
	out, _ = RS(st, true, true)
	assert.False(t, out.Q)
}

func TestSR_SetDominates(t *testing.T) {
	var st LatchState
	var out LatchOut

	out, st = SR(st, true, true)
	assert.True(t, out.Q, "set wins over a simultaneous reset")

	out, st = SR(st, false, false)
	assert.True(t, out.Q, "Q holds")

	out, _ = SR(st, false, true)
	assert.False(t, out.Q, "reset alone clears")
}
