package deplock

// SearchPosition describes one step of the resolution search as seen
// by a Tracer.
type SearchPosition interface {
	// Step names the kind of step: "derive", "decide", "conflict",
	// or "backjump".
	Step() string
	// Subject returns the package the step concerns.
	Subject() Identifier
	// Detail returns a human-readable description of the step.
	Detail() string
}

// Tracer is notified of each step the solver takes. Implementations
// must not retain the SearchPosition beyond the call.
type Tracer interface {
	Trace(p SearchPosition)
}
