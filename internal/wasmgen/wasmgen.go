// Package wasmgen emits minimal wasm core modules following the model
// artifact contract, so tests can synthesize compiled models without an
// external toolchain.
package wasmgen

import "bytes"

// Writer provides buffered writing utilities for wasm binary encoding.
type Writer struct {
	buf bytes.Buffer
}

// Bytes returns the written bytes.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Byte writes a single byte.
func (w *Writer) Byte(b byte) {
	w.buf.WriteByte(b)
}

// Write writes a byte slice.
func (w *Writer) Write(data []byte) {
	w.buf.Write(data)
}

// U32 writes an unsigned LEB128 encoded uint32.
func (w *Writer) U32(v uint32) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		w.buf.WriteByte(b)
		if v == 0 {
			break
		}
	}
}

// S64 writes a signed LEB128 encoded int64.
func (w *Writer) S64(v int64) {
	more := true
	for more {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && (b&0x40) == 0) || (v == -1 && (b&0x40) != 0) {
			more = false
		} else {
			b |= 0x80
		}
		w.buf.WriteByte(b)
	}
}

// Name writes a UTF-8 encoded name (length-prefixed).
func (w *Writer) Name(s string) {
	w.U32(uint32(len(s)))
	w.buf.WriteString(s)
}

// section wraps contents into a size-prefixed section.
func (w *Writer) section(id byte, contents *Writer) {
	w.Byte(id)
	w.U32(uint32(contents.buf.Len()))
	w.Write(contents.Bytes())
}

// Instruction helpers for building function bodies. Each returns encoded
// instruction bytes to be concatenated into an eval or final body.

func cat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// I32Const pushes a constant.
func I32Const(v int32) []byte {
	var w Writer
	w.Byte(0x41)
	w.S64(int64(v))
	return w.Bytes()
}

// GlobalGet pushes the value of a global.
func GlobalGet(idx uint32) []byte {
	var w Writer
	w.Byte(0x23)
	w.U32(idx)
	return w.Bytes()
}

// Call invokes a function by index.
func Call(idx uint32) []byte {
	var w Writer
	w.Byte(0x10)
	w.U32(idx)
	return w.Bytes()
}

func memInstr(op byte, align, offset uint32) []byte {
	var w Writer
	w.Byte(op)
	w.U32(align)
	w.U32(offset)
	return w.Bytes()
}

// I32Load8U loads a byte from memory at the static offset.
func I32Load8U(offset uint32) []byte { return memInstr(0x2d, 0, offset) }

// I32Store8 stores the low byte of the top of stack.
func I32Store8(offset uint32) []byte { return memInstr(0x3a, 0, offset) }

// I32Load loads a 32-bit word.
func I32Load(offset uint32) []byte { return memInstr(0x28, 2, offset) }

// I32Store stores a 32-bit word.
func I32Store(offset uint32) []byte { return memInstr(0x36, 2, offset) }

// I64Store stores a 64-bit word.
func I64Store(offset uint32) []byte { return memInstr(0x37, 3, offset) }

// I32Xor and I32Add combine the top two stack values.
func I32Xor() []byte { return []byte{0x73} }
func I32Add() []byte { return []byte{0x6a} }

type portDef struct {
	name   string
	offset uint32
}

// ModuleBuilder assembles a model module: one page of memory, an eval
// function, an optional final function, per-port offset globals and the
// optional sim_time global.
type ModuleBuilder struct {
	ports        []portDef
	timeGlobal   bool
	importFinish bool
	noFinal      bool
	evalName     string
	evalBody     []byte
	finalBody    []byte
}

// NewModule returns an empty builder. Without further calls Build yields
// a model with no ports, an empty eval and an empty final.
func NewModule() *ModuleBuilder {
	return &ModuleBuilder{}
}

// Port declares a port offset global.
func (b *ModuleBuilder) Port(name string, offset uint32) *ModuleBuilder {
	b.ports = append(b.ports, portDef{name: name, offset: offset})
	return b
}

// TimeGlobal adds the exported mutable sim_time global.
func (b *ModuleBuilder) TimeGlobal() *ModuleBuilder {
	b.timeGlobal = true
	return b
}

// ImportFinish makes the module import env.finish as function index 0.
func (b *ModuleBuilder) ImportFinish() *ModuleBuilder {
	b.importFinish = true
	return b
}

// EvalExportName overrides the export name of the eval function.
func (b *ModuleBuilder) EvalExportName(name string) *ModuleBuilder {
	b.evalName = name
	return b
}

// NoFinal omits the final export entirely.
func (b *ModuleBuilder) NoFinal() *ModuleBuilder {
	b.noFinal = true
	return b
}

// Eval sets the eval body from concatenated instruction fragments.
func (b *ModuleBuilder) Eval(instrs ...[]byte) *ModuleBuilder {
	b.evalBody = cat(instrs...)
	return b
}

// Final sets the final body from concatenated instruction fragments.
func (b *ModuleBuilder) Final(instrs ...[]byte) *ModuleBuilder {
	b.finalBody = cat(instrs...)
	return b
}

// FinishFuncIdx returns the function index of the imported env.finish.
func (b *ModuleBuilder) FinishFuncIdx() uint32 { return 0 }

// TimeGlobalIdx returns the global index of sim_time.
func (b *ModuleBuilder) TimeGlobalIdx() uint32 { return uint32(len(b.ports)) }

// Build encodes the module.
func (b *ModuleBuilder) Build() []byte {
	var out Writer
	out.Write([]byte{0x00, 0x61, 0x73, 0x6d}) // magic
	out.Write([]byte{0x01, 0x00, 0x00, 0x00}) // version

	numImports := uint32(0)
	if b.importFinish {
		numImports = 1
	}
	numDefined := uint32(1) // eval
	if !b.noFinal {
		numDefined++
	}
	evalIdx := numImports
	finalIdx := evalIdx + 1

	// type section: a single () -> () signature
	var types Writer
	types.U32(1)
	types.Write([]byte{0x60, 0x00, 0x00})
	out.section(1, &types)

	if b.importFinish {
		var imports Writer
		imports.U32(1)
		imports.Name("env")
		imports.Name("finish")
		imports.Byte(0x00) // func
		imports.U32(0)     // type idx
		out.section(2, &imports)
	}

	var funcs Writer
	funcs.U32(numDefined)
	for i := uint32(0); i < numDefined; i++ {
		funcs.U32(0)
	}
	out.section(3, &funcs)

	var mems Writer
	mems.U32(1)
	mems.Byte(0x00) // min only
	mems.U32(1)     // one page
	out.section(5, &mems)

	var globals Writer
	globals.U32(uint32(len(b.ports)) + boolU32(b.timeGlobal))
	for _, p := range b.ports {
		globals.Byte(0x7f) // i32
		globals.Byte(0x00) // immutable
		globals.Byte(0x41) // i32.const
		globals.S64(int64(p.offset))
		globals.Byte(0x0b)
	}
	if b.timeGlobal {
		globals.Byte(0x7e) // i64
		globals.Byte(0x01) // mutable
		globals.Byte(0x42) // i64.const
		globals.S64(0)
		globals.Byte(0x0b)
	}
	out.section(6, &globals)

	var exports Writer
	numExports := 2 + uint32(len(b.ports)) + boolU32(b.timeGlobal) // memory + eval + ports [+ sim_time]
	if !b.noFinal {
		numExports++
	}
	exports.U32(numExports)
	exports.Name("memory")
	exports.Byte(0x02)
	exports.U32(0)
	evalName := b.evalName
	if evalName == "" {
		evalName = "eval"
	}
	exports.Name(evalName)
	exports.Byte(0x00)
	exports.U32(evalIdx)
	if !b.noFinal {
		exports.Name("final")
		exports.Byte(0x00)
		exports.U32(finalIdx)
	}
	for i, p := range b.ports {
		exports.Name(p.name)
		exports.Byte(0x03)
		exports.U32(uint32(i))
	}
	if b.timeGlobal {
		exports.Name("sim_time")
		exports.Byte(0x03)
		exports.U32(b.TimeGlobalIdx())
	}
	out.section(7, &exports)

	var code Writer
	code.U32(numDefined)
	writeBody(&code, b.evalBody)
	if !b.noFinal {
		writeBody(&code, b.finalBody)
	}
	out.section(10, &code)

	return out.Bytes()
}

func writeBody(code *Writer, instrs []byte) {
	var body Writer
	body.U32(0) // no locals
	body.Write(instrs)
	body.Byte(0x0b) // end
	code.U32(uint32(body.buf.Len()))
	code.Write(body.Bytes())
}

func boolU32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
