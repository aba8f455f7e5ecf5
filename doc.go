// Package sigbridge drives separately compiled hardware-simulation models
// from Go, with optional VCD waveform tracing.
//
// A model is a compiled artifact with a fixed top-level port list. The
// harness wraps one model instance in an opaque handle, exposes its ports as
// typed signal views, and advances it one evaluation at a time. When tracing
// is enabled, a value-change dump is written as the designated clock signal
// toggles.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	sigbridge/       Root package with the Model, Signal and PortSpec contracts
//	├── sim/         Handle lifecycle and the step/trace engine
//	├── vcd/         Value-change-dump waveform writer
//	├── engine/      wazero-backed loader for models compiled to WebAssembly
//	├── errors/      Structured error types
//	└── cmd/sigrun/  CLI driver with an interactive TUI
//
// # Quick Start
//
// Load a compiled model and run it with tracing:
//
//	eng, err := engine.New(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Close(ctx)
//
//	mod, err := eng.Load(ctx, wasmBytes, ports)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	inst, err := mod.Instantiate(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	s, err := sim.New(inst, sim.Options{TracePath: "dump.vcd"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close(ctx)
//
//	s.Poke("in_", 1)
//	s.Step(ctx)
//	out, _ := s.Peek("out")
//
// # Model Contract
//
// Anything implementing Model can be simulated; the engine package adapts
// compiled wasm artifacts, and tests use plain Go implementations. A model
// has a fixed port table, an evaluation routine that propagates current
// input values to outputs and internal state, and a finalization routine
// that settles pending state before teardown.
//
// # Thread Safety
//
// engine.Engine and engine.Model are safe for concurrent use. A sim.Sim
// handle is NOT thread-safe: it holds direct views into mutable model
// storage with no internal locking, so all access to one handle must come
// from a single goroutine or be serialized externally. Independent handles
// over independent model instances do not share state, including simulation
// time, which is owned per handle.
package sigbridge
