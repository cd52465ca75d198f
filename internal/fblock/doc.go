// Package fblock implements the IEC 61131-3 standard function blocks
// the rung evaluator draws on: RS/SR latches, TON/TOF/TP timers, and
// CTU/CTD/CTUD counters.
//
// Every block is a pure step function
//
//	(previous state, inputs, dt) -> (outputs, next state)
//
// with no hidden mutation, so a scan over the same state and inputs
// always produces the same result. The engine owns the per-instance
// state and passes it back in on the next scan. Edge detection is
// internal to each block: the previous trigger level is part of the
// block state, captured during the last scan the block was evaluated.
//
// Time is measured in scan ticks. A preset of 5 on a 100 ms scan
// period is 0.5 s; the scheduler advances every timer by one tick per
// scan.
package fblock
