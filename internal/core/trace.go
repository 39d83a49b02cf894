package core

// TraceEvent describes one completed output element. Tracing is a diagnostic
// side channel: it observes the computation and never influences it.
type TraceEvent struct {
	Tick   uint64
	State  State
	Row    int
	Col    int
	Sum    int64
	Bias   int64
	Result int64
}

// TraceFunc receives trace events. A nil TraceFunc disables tracing.
type TraceFunc func(TraceEvent)
