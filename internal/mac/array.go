package mac

// Array is a fixed set of Units operated in lock-step: one shared enable,
// independent operands per lane. Lanes never share mutable state, matching
// the spatial parallelism of the hardware array.
type Array struct {
	lanes []*Unit
}

// NewArray builds an array of n Units for width-bit operands.
func NewArray(n int, width uint) *Array {
	lanes := make([]*Unit, n)
	for i := range lanes {
		lanes[i] = NewUnit(width)
	}
	return &Array{lanes: lanes}
}

// Lanes returns the number of lanes.
func (a *Array) Lanes() int { return len(a.lanes) }

// Tick advances every lane by one clock. as and bs carry one operand pair per
// lane and are only consumed when enable is true.
func (a *Array) Tick(enable bool, as, bs []int64) {
	for i, u := range a.lanes {
		var x, y int64
		if enable {
			x, y = as[i], bs[i]
		}
		u.Tick(enable, x, y)
	}
}

// AllDone reports the full-width AND of the per-lane done flags.
func (a *Array) AllDone() bool {
	for _, u := range a.lanes {
		if !u.Done() {
			return false
		}
	}
	return true
}

// DoneMask copies the per-lane done flags into dst.
func (a *Array) DoneMask(dst []bool) {
	for i, u := range a.lanes {
		dst[i] = u.Done()
	}
}

// Outputs copies the registered lane products into dst.
func (a *Array) Outputs(dst []int64) {
	for i, u := range a.lanes {
		dst[i] = u.Out()
	}
}

// Reset resets every lane.
func (a *Array) Reset() {
	for _, u := range a.lanes {
		u.Reset()
	}
}
