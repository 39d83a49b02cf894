package wallace

import (
	"math/rand"
	"testing"

	"github.com/samcharles93/anvil/pkg/fixp"
)

// pump accepts one batch and ticks until the output shows up, returning the
// sum and the latency in ticks.
func pump(t *testing.T, tr *Tree, batch []int64) (int64, int) {
	t.Helper()
	if !tr.Ready() {
		t.Fatalf("tree not ready before first batch")
	}
	tr.Tick(true, batch)
	for ticks := 1; ticks <= 8; ticks++ {
		tr.Tick(false, nil)
		if tr.OutValid() {
			return tr.Out(), ticks + 1
		}
	}
	t.Fatalf("no output within 8 ticks")
	return 0, 0
}

func TestTreeMatchesReduce(t *testing.T) {
	// Lane counts around the group-of-three boundary: remainder 0, 1 and 2.
	for _, lanes := range []int{1, 2, 3, 4, 5, 6, 8, 9, 16} {
		rng := rand.New(rand.NewSource(int64(lanes)))
		for trial := 0; trial < 50; trial++ {
			batch := make([]int64, lanes)
			for i := range batch {
				batch[i] = int64(rng.Intn(1<<16) - 1<<15)
			}
			tr := NewTree(lanes, 16)
			got, latency := pump(t, tr, batch)
			if want := Reduce(batch, 16); got != want {
				t.Fatalf("lanes=%d trial=%d: sum %d, want %d", lanes, trial, got, want)
			}
			if latency != 4 {
				t.Fatalf("lanes=%d: latency %d ticks, want 4", lanes, latency)
			}
		}
	}
}

func TestReduceEqualsWraparoundSum(t *testing.T) {
	// The whole-word 3:2 compressor identity a+b+c = (a^b^c) + 2*maj(a,b,c)
	// is exact, so the rule agrees with a plain sum modulo 2^16.
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 200; trial++ {
		lanes := 1 + rng.Intn(12)
		batch := make([]int64, lanes)
		var plain int64
		for i := range batch {
			batch[i] = int64(rng.Intn(1<<16) - 1<<15)
			plain += batch[i]
		}
		if got, want := Reduce(batch, 16), fixp.Wrap(plain, 16); got != want {
			t.Fatalf("trial %d: Reduce=%d, wrapped sum=%d", trial, got, want)
		}
	}
}

func TestTreeHandshake(t *testing.T) {
	tr := NewTree(3, 16)
	batch := []int64{1, 2, 3}
	tr.Tick(true, batch)
	if tr.Ready() {
		t.Fatalf("ready should drop the tick after an accept")
	}
	// valid asserted while not ready must not be accepted.
	tr.Tick(true, []int64{100, 100, 100})
	for i := 0; i < 2; i++ {
		tr.Tick(false, nil)
	}
	if !tr.OutValid() {
		t.Fatalf("output valid missing four ticks after accept")
	}
	if tr.Out() != 6 {
		t.Fatalf("sum = %d, want 6 (rejected batch leaked in)", tr.Out())
	}
	tr.Tick(false, nil)
	if tr.OutValid() {
		t.Fatalf("output valid held beyond one tick")
	}
	if tr.Out() != 6 {
		t.Fatalf("output register should hold, got %d", tr.Out())
	}
}

func TestTreeOutputHoldsBetweenBatches(t *testing.T) {
	tr := NewTree(2, 16)
	if got, _ := pump(t, tr, []int64{40, 2}); got != 42 {
		t.Fatalf("first batch = %d", got)
	}
	for i := 0; i < 3; i++ {
		tr.Tick(false, nil)
		if tr.OutValid() {
			t.Fatalf("spurious output valid on idle tick %d", i)
		}
		if tr.Out() != 42 {
			t.Fatalf("idle tick %d clobbered output: %d", i, tr.Out())
		}
	}
	if got, _ := pump(t, tr, []int64{-1, -2}); got != -3 {
		t.Fatalf("second batch = %d", got)
	}
}

func TestTreeReset(t *testing.T) {
	tr := NewTree(3, 16)
	tr.Tick(true, []int64{9, 9, 9})
	tr.Tick(false, nil)
	tr.Reset()
	if !tr.Ready() || tr.OutValid() || tr.Out() != 0 {
		t.Fatalf("reset left state: ready=%v outValid=%v out=%d", tr.Ready(), tr.OutValid(), tr.Out())
	}
	for i := 0; i < 4; i++ {
		tr.Tick(false, nil)
		if tr.OutValid() {
			t.Fatalf("in-flight batch survived reset")
		}
	}
}
