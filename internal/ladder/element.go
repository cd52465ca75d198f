package ladder

// Kind identifies what an element does on a rung.
//
// The evaluator treats kinds it does not recognize as pass-through, so
// new kinds can be introduced without breaking older engines.
type Kind string

const (
	// KindInput is a pass-through marker for a physical input terminal.
	KindInput Kind = "input"
	// KindOutput writes the rung power to the element's own ID.
	KindOutput Kind = "output"
	// KindContact reads a bit and ANDs it (optionally inverted) into the rung.
	KindContact Kind = "contact"
	// KindCoil writes the rung power to a target bit.
	KindCoil Kind = "coil"
	// KindTimer is a TON/TOF/TP timer instance.
	KindTimer Kind = "timer"
	// KindCounter is a CTU/CTD/CTUD counter instance.
	KindCounter Kind = "counter"
	// KindLatch is an RS/SR latch instance.
	KindLatch Kind = "latch"
)

// TimerMode selects the timer block semantics.
type TimerMode string

const (
	TimerOnDelay  TimerMode = "TON"
	TimerOffDelay TimerMode = "TOF"
	TimerPulse    TimerMode = "TP"
)

// CounterMode selects the counter block semantics.
type CounterMode string

const (
	CountUp     CounterMode = "CTU"
	CountDown   CounterMode = "CTD"
	CountUpDown CounterMode = "CTUD"
)

// LatchMode selects which input dominates when set and reset are both high.
type LatchMode string

const (
	LatchResetDominant LatchMode = "RS"
	LatchSetDominant   LatchMode = "SR"
)

// Geometry is the element's position in the graphical editor.
// Opaque to the engine; preserved so programs round-trip losslessly.
type Geometry struct {
	X int `yaml:"x" json:"x"`
	Y int `yaml:"y" json:"y"`
	W int `yaml:"w,omitempty" json:"w,omitempty"`
	H int `yaml:"h,omitempty" json:"h,omitempty"`
}

// Element is one addressable node on a rung.
//
// ID doubles as the address of the element's runtime state: two elements
// sharing an ID share timer/counter/latch state, which is how a feedback
// contact elsewhere in the program observes a timer's done bit.
//
// Only the fields for the element's Kind are meaningful; the rest stay
// at their zero values and are omitted from serialized programs.
type Element struct {
	ID   string `yaml:"id" json:"id"`
	Kind Kind   `yaml:"kind" json:"kind"`

	// Contact attributes. Source defaults to ID when empty.
	Source       string `yaml:"source,omitempty" json:"source,omitempty"`
	NormallyOpen bool   `yaml:"normally_open,omitempty" json:"normally_open,omitempty"`

	// Coil attributes. Target defaults to ID when empty.
	Target string `yaml:"target,omitempty" json:"target,omitempty"`

	// Timer and counter attributes. Preset is in scan ticks.
	Preset      int32       `yaml:"preset,omitempty" json:"preset,omitempty"`
	TimerMode   TimerMode   `yaml:"timer_mode,omitempty" json:"timer_mode,omitempty"`
	CounterMode CounterMode `yaml:"counter_mode,omitempty" json:"counter_mode,omitempty"`

	// ResetSource names the bit that drives a counter's reset input or a
	// latch's reset input. LoadSource names the bit that drives a CTD or
	// CTUD load input. DownSource names the bit that drives a CTUD down
	// trigger (the rung's own power drives the up trigger). Empty means
	// the input is never asserted.
	ResetSource string `yaml:"reset_source,omitempty" json:"reset_source,omitempty"`
	LoadSource  string `yaml:"load_source,omitempty" json:"load_source,omitempty"`
	DownSource  string `yaml:"down_source,omitempty" json:"down_source,omitempty"`

	// Latch attributes.
	LatchMode LatchMode `yaml:"latch_mode,omitempty" json:"latch_mode,omitempty"`

	Geometry Geometry `yaml:"geometry,omitempty" json:"geometry,omitempty"`
}

// ContactSource returns the bit a contact observes.
// By convention this equals the element ID unless Source overrides it.
func (e *Element) ContactSource() string {
	if e.Source != "" {
		return e.Source
	}
	return e.ID
}

// CoilTarget returns the bit a coil drives.
// By convention this equals the element ID unless Target overrides it.
func (e *Element) CoilTarget() string {
	if e.Target != "" {
		return e.Target
	}
	return e.ID
}
