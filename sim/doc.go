// Package sim owns the lifecycle of one simulation handle: create, step,
// destroy.
//
// A Sim pairs exactly one model instance with the wrapper-owned state the
// step/trace engine needs: the tracing mode fixed at creation, a per-handle
// trace-time counter and the last-observed clock value. The caller owns the
// handle exclusively from New until Close.
//
//	s, err := sim.New(model, sim.Options{TracePath: "dump.vcd"})
//	if err != nil {
//	    return err
//	}
//	defer s.Close(ctx)
//
//	s.Poke("in_", 1)
//	if err := s.Step(ctx); err != nil {
//	    return err
//	}
//	out, _ := s.Peek("out")
//
// # Tracing
//
// Tracing is decided once, at creation: a non-empty Options.TracePath
// enables it, an empty path disables it regardless of anything else and
// never touches the filesystem. With tracing enabled every Step compares
// the designated clock signal against its last-observed value; any change,
// rising or falling, advances the trace time by a fixed 50 units. The trace
// time axis only needs to separate successive edges for waveform viewers;
// it is decoupled from whatever time representation the model keeps
// internally. A sample of all ports is emitted after every Step and flushed
// immediately.
//
// Trace support can also be compiled out entirely with the "notrace" build
// tag, in which case every handle runs untraced.
//
// # Time Injection
//
// Models that implement sigbridge.TimeSink receive the handle's trace time
// whenever it advances. Time is owned per handle, never process-wide, so
// independent handles cannot interfere with each other.
//
// # Teardown
//
// Close finalizes the model, flushes and closes the trace output, then
// releases the model instance. Close is idempotent; Step on a closed
// handle reports a closed error instead of corrupting freed state.
package sim
