package ladder

import "fmt"

// Value is a sealed interface over the two value types the I/O image can
// hold. Only Bit and Word implement it. Keeping the union closed means
// every consumer can type-switch exhaustively and a read miss has a
// well-defined typed zero.
//
// Floats are deliberately absent: the engine only needs discrete bits
// and integer words (timer ticks, counter counts), and integer-only
// values keep scan evaluation bit-for-bit deterministic.
type Value interface {
	ladderValue() // Sealed - only Bit and Word implement it
}

// Bit is a discrete boolean value (inputs, outputs, memory bits, coils).
type Bit bool

func (Bit) ladderValue() {}

// Word is a 16/32-bit integer value (memory words, analog registers,
// timer and counter readouts). Backed by int32 so a preset plus one
// scan's change can never overflow in a reasonable deployment.
type Word int32

func (Word) ladderValue() {}

// AsBit extracts a boolean from a Value.
// Returns (false, false) for nil, (v, true) for Bit, and
// (false, false) for any other type - the typed zero plus a mismatch
// signal the caller can count.
func AsBit(v Value) (val bool, ok bool) {
	b, isBit := v.(Bit)
	if !isBit {
		return false, false
	}
	return bool(b), true
}

// AsWord extracts an integer from a Value.
// Returns (0, false) for nil or non-Word values.
func AsWord(v Value) (val int32, ok bool) {
	w, isWord := v.(Word)
	if !isWord {
		return 0, false
	}
	return int32(w), true
}

// FormatValue renders a value for logs and trace output.
// Bits render as "0"/"1", words as decimal.
func FormatValue(v Value) string {
	switch val := v.(type) {
	case Bit:
		if val {
			return "1"
		}
		return "0"
	case Word:
		return fmt.Sprintf("%d", int32(val))
	default:
		return fmt.Sprintf("?(%T)", v)
	}
}
