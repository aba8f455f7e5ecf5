package wasmgen

import "github.com/sigbridge/sigbridge"

// Canned models for tests. Each returns the encoded module alongside the
// port table that describes it.

// ToggleModel flips clk on every eval and drives out as its complement.
// clk lives at byte 0, out at byte 1.
func ToggleModel() ([]byte, []sigbridge.PortSpec) {
	wasm := NewModule().
		Port("clk", 0).
		Port("out", 1).
		Eval(
			I32Const(0),
			I32Const(0), I32Load8U(0),
			I32Const(1), I32Xor(),
			I32Store8(0),
			I32Const(0),
			I32Const(0), I32Load8U(0),
			I32Const(1), I32Xor(),
			I32Store8(1),
		).
		Build()
	ports := []sigbridge.PortSpec{
		{Name: "clk", Width: 1, Dir: sigbridge.In},
		{Name: "out", Width: 1, Dir: sigbridge.Out},
	}
	return wasm, ports
}

// AdderModel computes sum = a + b over 32-bit words at offsets 0, 4 and 8.
func AdderModel() ([]byte, []sigbridge.PortSpec) {
	wasm := NewModule().
		Port("a", 0).
		Port("b", 4).
		Port("sum", 8).
		Eval(
			I32Const(0),
			I32Const(0), I32Load(0),
			I32Const(0), I32Load(4),
			I32Add(),
			I32Store(8),
		).
		Build()
	ports := []sigbridge.PortSpec{
		{Name: "a", Width: 32, Dir: sigbridge.In},
		{Name: "b", Width: 32, Dir: sigbridge.In},
		{Name: "sum", Width: 32, Dir: sigbridge.Out},
	}
	return wasm, ports
}

// TimeProbeModel copies the sim_time global into the 64-bit tstamp port
// on every eval, exposing injected time to the memory image.
func TimeProbeModel() ([]byte, []sigbridge.PortSpec) {
	b := NewModule().
		Port("tstamp", 0).
		TimeGlobal()
	wasm := b.Eval(
		I32Const(0),
		GlobalGet(b.TimeGlobalIdx()),
		I64Store(0),
	).Build()
	ports := []sigbridge.PortSpec{
		{Name: "tstamp", Width: 64, Dir: sigbridge.Out},
	}
	return wasm, ports
}

// FinishModel calls the env.finish host hook on every eval.
func FinishModel() ([]byte, []sigbridge.PortSpec) {
	b := NewModule().
		Port("state", 0).
		ImportFinish()
	wasm := b.Eval(
		Call(b.FinishFuncIdx()),
	).Build()
	ports := []sigbridge.PortSpec{
		{Name: "state", Width: 8, Dir: sigbridge.Out},
	}
	return wasm, ports
}

// FinalMarkModel leaves eval empty and writes 1 into done from final,
// so teardown effects are observable.
func FinalMarkModel() ([]byte, []sigbridge.PortSpec) {
	wasm := NewModule().
		Port("done", 0).
		Final(
			I32Const(0),
			I32Const(1),
			I32Store8(0),
		).
		Build()
	ports := []sigbridge.PortSpec{
		{Name: "done", Width: 1, Dir: sigbridge.Out},
	}
	return wasm, ports
}

// NoFinalModel omits the final export; close paths must tolerate it.
func NoFinalModel() ([]byte, []sigbridge.PortSpec) {
	wasm := NewModule().
		Port("v", 0).
		NoFinal().
		Eval(
			I32Const(0),
			I32Const(1),
			I32Store8(0),
		).
		Build()
	ports := []sigbridge.PortSpec{
		{Name: "v", Width: 1, Dir: sigbridge.Out},
	}
	return wasm, ports
}
