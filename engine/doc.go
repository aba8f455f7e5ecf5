// Package engine loads hardware-simulation models compiled to WebAssembly
// and adapts them to the sigbridge.Model contract.
//
// This package wraps wazero. A model artifact is an ordinary wasm core
// module; no host toolchain or cgo is involved, so one compiled artifact
// runs anywhere Go does.
//
// # Architecture
//
// The package provides three main types:
//
//	Engine   - Creates and manages the wazero runtime
//	Model    - A compiled model artifact, can create instances
//	Instance - One running model instance, implements sigbridge.Model
//
// # Model Artifact Contract
//
// A model module exports:
//
//	eval               func, one evaluation step (required)
//	final              func, settle state before teardown (optional)
//	memory             linear memory holding the signal storage
//	<port name>        immutable i32 global per port: the byte offset of
//	                   that signal in linear memory
//	sim_time           mutable i64 global (optional); when present the
//	                   harness writes the current trace time into it
//	                   before sampling
//
// Signal storage is little-endian and sized by declared width: 1, 2, 4 or
// 8 bytes for widths up to 8, 16, 32 and 64 bits. Wider signals are not
// supported.
//
// A model may import env.finish, the $finish analog: calling it marks the
// instance finished, observable via Instance.Finished.
//
// # Instantiation Flow
//
//  1. Engine.Load compiles the artifact and pairs it with its port table
//  2. Model.Instantiate creates a fresh instance and binds every port's
//     offset global to a typed signal view over linear memory
//  3. The instance is handed to sim.New, which owns it until Close
//
// Port binding is validated once, at instantiation: a missing offset
// global or an offset past the end of memory fails Instantiate. After
// that, signal access performs no checking beyond width masking.
//
// # Thread Safety
//
// Engine and Model are safe for concurrent use. Instance is NOT
// thread-safe and should be driven by a single goroutine.
package engine
