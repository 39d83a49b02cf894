package core

// State enumerates the controller's FSM states.
type State int

const (
	// StateIdle waits for start; indices and the completion flag are clear.
	StateIdle State = iota
	// StateLoad pulses the MAC array enable with the current row/column
	// operand slices for one tick.
	StateLoad
	// StateWait holds until every lane reports done on the same tick.
	StateWait
	// StateLatch captures the lane products and offers them to the
	// reduction network as soon as it is ready.
	StateLatch
	// StateRun waits for the reduced sum, applies the bias and places the
	// result.
	StateRun
	// StateDone asserts completion until start deasserts.
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoad:
		return "load"
	case StateWait:
		return "wait"
	case StateLatch:
		return "latch"
	case StateRun:
		return "run"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}
