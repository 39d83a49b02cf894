// Package wallace models the accelerator's partial-product reduction network:
// a four-stage pipeline that sums a batch of signed lane products behind a
// ready/valid handshake.
//
// Stage 0 compresses the batch in groups of three using whole-word XOR /
// majority operations, not a per-bit carry-save adder. The source design
// applies the 3:2 compressor identity to entire words at once; that
// convention is reproduced here exactly so results stay numerically
// compatible.
package wallace

import "github.com/samcharles93/anvil/pkg/fixp"

const depth = 4

// Tree reduces fixed-size batches of lane products. A batch is accepted on a
// tick where Ready() held and inValid was asserted; four ticks later
// OutValid() reports true for one tick and Out() carries the batch's sum,
// wrapped to the configured width.
type Tree struct {
	lanes  int
	width  uint
	groups int

	// Per-stage registers, sized to the group count.
	sums     []int64
	carries  []int64
	combined []int64
	total    int64
	out      int64

	// valid[k] is set iff an accepted batch entered exactly k ticks ago.
	valid [depth]bool
}

// NewTree returns a reset Tree for batches of n lane products, wrapping all
// intermediate values to width bits.
func NewTree(n int, width uint) *Tree {
	groups := (n + 2) / 3
	return &Tree{
		lanes:    n,
		width:    width,
		groups:   groups,
		sums:     make([]int64, groups),
		carries:  make([]int64, groups),
		combined: make([]int64, groups),
	}
}

// Ready reports whether the network accepts a batch on the current tick.
func (t *Tree) Ready() bool { return !t.valid[0] }

// OutValid reports whether Out() carries a freshly reduced sum this tick.
func (t *Tree) OutValid() bool { return t.valid[depth-1] }

// Out returns the registered output. It holds its value between batches.
func (t *Tree) Out() int64 { return t.out }

// Tick advances the pipeline by one clock. batch is only consumed when
// inValid is asserted while the network is ready; it must then carry exactly
// one value per lane.
func (t *Tree) Tick(inValid bool, batch []int64) {
	accept := inValid && t.Ready()

	// Stages consume the registers their predecessor wrote on an earlier
	// tick, so they update from the deepest stage backwards. A stage whose
	// tracker bit is clear holds its registers.
	if t.valid[2] {
		t.out = t.total
	}
	if t.valid[1] {
		var sum int64
		for _, c := range t.combined {
			sum = fixp.Wrap(sum+c, t.width)
		}
		t.total = sum
	}
	if t.valid[0] {
		for g := 0; g < t.groups; g++ {
			t.combined[g] = fixp.Wrap(t.sums[g]+(t.carries[g]<<1), t.width)
		}
	}
	if accept {
		t.compress(batch)
	}

	copy(t.valid[1:], t.valid[:depth-1])
	t.valid[0] = accept
}

// compress implements stage 0: groups of three collapse to a (sum, carry)
// pair via whole-word XOR and majority; a trailing pair uses the half-adder
// form and a trailing singleton passes through with zero carry.
func (t *Tree) compress(batch []int64) {
	for g := 0; g < t.groups; g++ {
		i := g * 3
		switch t.lanes - i {
		case 1:
			t.sums[g] = fixp.Wrap(batch[i], t.width)
			t.carries[g] = 0
		case 2:
			p0, p1 := batch[i], batch[i+1]
			t.sums[g] = fixp.Wrap(p0^p1, t.width)
			t.carries[g] = fixp.Wrap(p0&p1, t.width)
		default:
			p0, p1, p2 := batch[i], batch[i+1], batch[i+2]
			t.sums[g] = fixp.Wrap(p0^p1^p2, t.width)
			t.carries[g] = fixp.Wrap((p0&p1)|(p0&p2)|(p1&p2), t.width)
		}
	}
}

// Reset forces every stage register, the output and the validity tracker to
// zero.
func (t *Tree) Reset() {
	for g := 0; g < t.groups; g++ {
		t.sums[g] = 0
		t.carries[g] = 0
		t.combined[g] = 0
	}
	t.total = 0
	t.out = 0
	t.valid = [depth]bool{}
}

// Reduce applies the network's compression rule combinationally: the value a
// batch produces once it drains through all four stages. It is the reference
// the pipeline is tested against.
func Reduce(batch []int64, width uint) int64 {
	var total int64
	for i := 0; i < len(batch); i += 3 {
		var sum, carry int64
		switch len(batch) - i {
		case 1:
			sum, carry = batch[i], 0
		case 2:
			sum, carry = batch[i]^batch[i+1], batch[i]&batch[i+1]
		default:
			p0, p1, p2 := batch[i], batch[i+1], batch[i+2]
			sum = p0 ^ p1 ^ p2
			carry = (p0 & p1) | (p0 & p2) | (p1 & p2)
		}
		combined := fixp.Wrap(fixp.Wrap(sum, width)+(fixp.Wrap(carry, width)<<1), width)
		total = fixp.Wrap(total+combined, width)
	}
	return total
}
