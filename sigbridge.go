package sigbridge

import "context"

// Model is one instance of a compiled hardware-simulation model.
//
// Implementations own the model's storage. Signal views handed out remain
// valid until Close; after Close their behavior is undefined.
type Model interface {
	// Ports returns the model's fixed top-level port table.
	Ports() []PortSpec

	// Signal returns the view for a named port, or false if the model has
	// no such port.
	Signal(name string) (Signal, bool)

	// Eval propagates current input values through the model's
	// combinational and sequential logic, updating outputs and any internal
	// clocked state.
	Eval(ctx context.Context) error

	// Final settles any pending internal state the model wants flushed
	// before teardown.
	Final(ctx context.Context) error

	// Close releases the model instance.
	Close(ctx context.Context) error
}

// TimeSink is implemented by models that accept an injected simulation
// time. Models without a time hook simply don't implement it.
type TimeSink interface {
	SetTime(t uint64)
}

// Signal is a typed read/write view of one port's storage inside a model.
// Reads and writes go directly to model memory; values are masked to the
// declared bit width. No further validation is performed.
type Signal interface {
	Spec() PortSpec

	Load() uint64
	Store(v uint64)
}
