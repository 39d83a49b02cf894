// Package core assembles the accelerator: a controller FSM driving the MAC
// lane array and the reduction network through one full matrix multiplication
// with per-element bias addition.
//
// Everything advances on a shared tick. The controller samples the registered
// outputs its sub-components produced on the previous tick, decides its
// control pulses and next state from them, then clocks the sub-components.
// No component's state is mutated mid-tick.
package core

import (
	"context"
	"fmt"

	"github.com/samcharles93/anvil/internal/mac"
	"github.com/samcharles93/anvil/internal/wallace"
	"github.com/samcharles93/anvil/pkg/fixp"
)

// Core is one accelerator instance. It is not safe for concurrent use; a
// computation is driven by ticking from a single goroutine.
type Core struct {
	cfg   Config
	array *mac.Array
	tree  *wallace.Tree

	state    State
	row, col int
	done     bool

	// elems counts completed output elements; ticks counts clock edges.
	elems uint64
	ticks uint64

	input   []int32 // hidden*lanes, element (row, lane) at row*lanes+lane
	weights []int32 // lanes*patches, element (lane, col) at lane*patches+col
	bias    []int32 // hidden*patches, element (row, col) at row*patches+col
	output  []int32 // hidden*patches, same layout as bias

	trace TraceFunc

	// Operand and batch scratch, reused every tick.
	as, bs, batch []int64
}

// New builds a reset Core for the given geometry. Buffers start zeroed; use
// the Load methods before pulsing start.
func New(cfg Config) (*Core, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("core config: %w", err)
	}
	return &Core{
		cfg:     cfg,
		array:   mac.NewArray(cfg.Lanes, uint(cfg.Width)),
		tree:    wallace.NewTree(cfg.Lanes, cfg.wide()),
		input:   make([]int32, cfg.Hidden*cfg.Lanes),
		weights: make([]int32, cfg.Lanes*cfg.Patches),
		bias:    make([]int32, cfg.Hidden*cfg.Patches),
		output:  make([]int32, cfg.Hidden*cfg.Patches),
		as:      make([]int64, cfg.Lanes),
		bs:      make([]int64, cfg.Lanes),
		batch:   make([]int64, cfg.Lanes),
	}, nil
}

// SetTrace installs the diagnostic trace callback. Pass nil to disable.
func (c *Core) SetTrace(fn TraceFunc) { c.trace = fn }

// LoadInput copies the input-vector buffer: hidden*lanes operands, element
// (row, lane) at row*lanes+lane.
func (c *Core) LoadInput(vals []int32) error {
	return c.loadOperands(c.input, vals, "input", uint(c.cfg.Width))
}

// LoadWeights copies the weight-matrix buffer: lanes*patches operands,
// element (lane, col) at lane*patches+col.
func (c *Core) LoadWeights(vals []int32) error {
	return c.loadOperands(c.weights, vals, "weights", uint(c.cfg.Width))
}

// LoadBias copies the bias buffer: hidden*patches wide values, element
// (row, col) at row*patches+col.
func (c *Core) LoadBias(vals []int32) error {
	return c.loadOperands(c.bias, vals, "bias", c.cfg.wide())
}

func (c *Core) loadOperands(dst []int32, vals []int32, name string, bits uint) error {
	if len(vals) != len(dst) {
		return fmt.Errorf("%s buffer has %d elements, want %d", name, len(vals), len(dst))
	}
	for i, v := range vals {
		if !fixp.Fits(int64(v), bits) {
			return fmt.Errorf("%s[%d] = %d does not fit in %d bits", name, i, v, bits)
		}
	}
	copy(dst, vals)
	return nil
}

// Tick advances the whole accelerator by one clock. start is the external
// level beginning a computation; holding it high runs one full pass, and the
// completion flag stays up until it drops.
func (c *Core) Tick(start bool) {
	c.ticks++

	enable := false
	treeValid := false
	next := c.state

	switch c.state {
	case StateIdle:
		c.row, c.col = 0, 0
		c.done = false
		if start {
			next = StateLoad
		}
	case StateLoad:
		enable = true
		c.feedOperands()
		next = StateWait
	case StateWait:
		if c.array.AllDone() {
			next = StateLatch
		}
	case StateLatch:
		if c.tree.Ready() {
			c.array.Outputs(c.batch)
			treeValid = true
			next = StateRun
		}
	case StateRun:
		if c.tree.OutValid() {
			c.place(c.tree.Out())
			if c.row == c.cfg.Hidden {
				next = StateDone
				c.done = true
			} else {
				next = StateLoad
			}
		}
	case StateDone:
		if !start {
			next = StateIdle
		}
	}

	c.array.Tick(enable, c.as, c.bs)
	c.tree.Tick(treeValid, c.batch)
	c.state = next
}

// feedOperands stages the current row's input slice and the current column's
// weight slice, one pair per lane.
func (c *Core) feedOperands() {
	for lane := 0; lane < c.cfg.Lanes; lane++ {
		c.as[lane] = int64(c.input[c.row*c.cfg.Lanes+lane])
		c.bs[lane] = int64(c.weights[lane*c.cfg.Patches+c.col])
	}
}

// place applies the bias to the reduced sum, writes the output element and
// advances the (row, col) pair in row-major order, column fastest.
func (c *Core) place(sum int64) {
	bias := c.biasAt(c.row, c.col)
	result := fixp.Wrap(sum+bias, c.cfg.wide())
	c.output[c.row*c.cfg.Patches+c.col] = int32(result)
	c.elems++
	if c.trace != nil {
		c.trace(TraceEvent{
			Tick:   c.ticks,
			State:  c.state,
			Row:    c.row,
			Col:    c.col,
			Sum:    sum,
			Bias:   bias,
			Result: result,
		})
	}
	c.col++
	if c.col == c.cfg.Patches {
		c.col = 0
		c.row++
	}
}

// biasAt reads the bias slot for (row, col). The default narrow mode
// sign-extends the low Width bits of the slot, reproducing the source
// design's extraction; WideBias uses the full storage width.
func (c *Core) biasAt(row, col int) int64 {
	slot := int64(c.bias[row*c.cfg.Patches+col])
	if c.cfg.WideBias {
		return fixp.Wrap(slot, c.cfg.wide())
	}
	return fixp.Wrap(slot, uint(c.cfg.Width))
}

// Reset synchronously forces every register in every component back to zero:
// FSM state, indices, counters, pipeline stages and the output buffer.
func (c *Core) Reset() {
	c.state = StateIdle
	c.row, c.col = 0, 0
	c.done = false
	c.elems = 0
	c.ticks = 0
	c.array.Reset()
	c.tree.Reset()
	for i := range c.output {
		c.output[i] = 0
	}
	for i := range c.as {
		c.as[i] = 0
		c.bs[i] = 0
		c.batch[i] = 0
	}
}

// Done reports the completion flag: the full pass has finished and start has
// stayed asserted.
func (c *Core) Done() bool { return c.done }

// State returns the controller's current FSM state.
func (c *Core) State() State { return c.state }

// Elements returns the completed-output-element counter, incremented once per
// placed result.
func (c *Core) Elements() uint64 { return c.elems }

// Ticks returns the number of clock edges since construction or reset.
func (c *Core) Ticks() uint64 { return c.ticks }

// LaneDone copies the per-lane MAC completion flags into dst, which must have
// one slot per lane.
func (c *Core) LaneDone(dst []bool) { c.array.DoneMask(dst) }

// Output returns a copy of the output matrix buffer in its current state.
func (c *Core) Output() []int32 {
	out := make([]int32, len(c.output))
	copy(out, c.output)
	return out
}

// Run holds start high and ticks until the completion flag rises, then drops
// start and returns the output. The handshake design has no internal timeout;
// cancellation comes from the caller's context, checked between ticks.
func (c *Core) Run(ctx context.Context) ([]int32, error) {
	for !c.done {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c.Tick(true)
	}
	for c.state != StateIdle || c.done {
		c.Tick(false)
	}
	return c.Output(), nil
}
