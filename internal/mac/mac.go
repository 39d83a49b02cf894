// Package mac models the multiply-accumulate lanes of the accelerator. Each
// Unit is a two-stage pipelined signed multiplier; an Array advances a fixed
// set of Units in lock-step with a shared enable and independent operands.
package mac

import "github.com/samcharles93/anvil/pkg/fixp"

// Unit computes the signed product of two width-bit operands through a
// two-stage pipeline. An enable observed on tick T produces the product on the
// unit output on tick T+2, together with a done pulse that lasts exactly one
// tick. Products wrap silently within 2*width bits; there is no overflow
// detection.
type Unit struct {
	width uint

	// acc is the shift-and-add accumulator latched on the enable tick,
	// stage1 the registered copy one tick later, out the unit output.
	acc      int64
	accValid bool
	stage1   int64
	s1Valid  bool
	out      int64
	done     bool
}

// NewUnit returns a reset Unit for width-bit operands.
func NewUnit(width uint) *Unit {
	return &Unit{width: width}
}

// Tick advances the pipeline by one clock. When enable is true the operands
// a and b are consumed on this tick; their values on other ticks are ignored.
func (u *Unit) Tick(enable bool, a, b int64) {
	// Stages update in reverse order so each consumes last tick's value.
	u.done = u.s1Valid
	if u.s1Valid {
		u.out = u.stage1
	}
	u.stage1 = u.acc
	u.s1Valid = u.accValid
	u.accValid = false
	if enable {
		u.acc = u.multiply(a, b)
		u.accValid = true
	}
}

// multiply is the shift-and-add datapath: accumulate a<<k for every set bit k
// of |b|, then restore the sign. Matches the product of signed operands
// modulo 2^(2*width).
func (u *Unit) multiply(a, b int64) int64 {
	mag := fixp.Abs(b)
	var acc int64
	for k := uint(0); k < u.width; k++ {
		if mag&(1<<k) != 0 {
			acc += a << k
		}
	}
	if b < 0 {
		acc = -acc
	}
	return fixp.Wrap(acc, 2*u.width)
}

// Out returns the registered product. It holds its value until the next
// product reaches the output stage.
func (u *Unit) Out() int64 { return u.out }

// Done reports whether a product reached the output on the current tick.
func (u *Unit) Done() bool { return u.done }

// Reset forces every register and the done flag to zero.
func (u *Unit) Reset() {
	u.acc = 0
	u.accValid = false
	u.stage1 = 0
	u.s1Valid = false
	u.out = 0
	u.done = false
}
