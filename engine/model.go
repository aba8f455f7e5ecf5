package engine

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/sigbridge/sigbridge"
	"github.com/sigbridge/sigbridge/errors"
)

// timeGlobal is the optional export the harness injects trace time into.
const timeGlobal = "sim_time"

// Model is a compiled model artifact. It holds no mutable simulation
// state; Instantiate creates as many independent instances as needed.
type Model struct {
	engine   *Engine
	compiled wazero.CompiledModule
	ports    []sigbridge.PortSpec
}

// Ports returns the model's port table.
func (m *Model) Ports() []sigbridge.PortSpec {
	return append([]sigbridge.PortSpec(nil), m.ports...)
}

// Instantiate creates a fresh model instance and binds every port to its
// storage. Binding resolves each port's offset global and bounds-checks it
// against linear memory once, here; signal access afterwards is unchecked
// beyond width masking.
func (m *Model) Instantiate(ctx context.Context) (*Instance, error) {
	mod, err := m.engine.runtime.InstantiateModule(ctx, m.compiled, wazero.NewModuleConfig().WithName(""))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseBind, errors.KindInvalidData, err, "instantiate model")
	}

	inst := &Instance{
		mod:   mod,
		ports: append([]sigbridge.PortSpec(nil), m.ports...),
		sigs:  make(map[string]*signal, len(m.ports)),
	}

	inst.eval = mod.ExportedFunction("eval")
	if inst.eval == nil {
		mod.Close(ctx)
		return nil, errors.NotFound(errors.PhaseBind, "export", "eval")
	}
	inst.final = mod.ExportedFunction("final")

	mem := mod.Memory()
	if mem == nil {
		mem = mod.ExportedMemory("memory")
	}
	if mem == nil {
		mod.Close(ctx)
		return nil, errors.NotFound(errors.PhaseBind, "export", "memory")
	}
	inst.mem = mem

	for _, p := range m.ports {
		g := mod.ExportedGlobal(p.Name)
		if g == nil {
			mod.Close(ctx)
			return nil, errors.NotFound(errors.PhaseBind, "port global", p.Name)
		}
		off := uint32(g.Get())
		if off+p.StorageSize() > mem.Size() || off+p.StorageSize() < off {
			mod.Close(ctx)
			return nil, errors.OutOfBounds(errors.PhaseBind, p.Name, off, p.StorageSize(), mem.Size())
		}
		inst.sigs[p.Name] = &signal{spec: p, mem: mem, off: off}
	}

	if g := mod.ExportedGlobal(timeGlobal); g != nil {
		if mg, ok := g.(api.MutableGlobal); ok {
			inst.simTime = mg
		}
	}

	return inst, nil
}

// Instance is one running model. It implements sigbridge.Model and
// sigbridge.TimeSink.
type Instance struct {
	mod     api.Module
	eval    api.Function
	final   api.Function
	mem     api.Memory
	ports   []sigbridge.PortSpec
	sigs    map[string]*signal
	simTime api.MutableGlobal

	finished bool
	closed   bool
}

// Ports returns the instance's port table.
func (i *Instance) Ports() []sigbridge.PortSpec {
	return append([]sigbridge.PortSpec(nil), i.ports...)
}

// Signal returns the view over the port's storage in linear memory.
func (i *Instance) Signal(name string) (sigbridge.Signal, bool) {
	s, ok := i.sigs[name]
	return s, ok
}

// Eval runs the model's evaluation routine once.
func (i *Instance) Eval(ctx context.Context) error {
	if i.closed {
		return errors.Closed("model instance")
	}
	_, err := i.eval.Call(withFinishFlag(ctx, &i.finished))
	return err
}

// Final runs the model's finalization routine, settling any internal
// state it wants flushed before teardown. Models without a final export
// have nothing to settle.
func (i *Instance) Final(ctx context.Context) error {
	if i.closed {
		return errors.Closed("model instance")
	}
	if i.final == nil {
		return nil
	}
	_, err := i.final.Call(withFinishFlag(ctx, &i.finished))
	return err
}

// SetTime writes t into the model's sim_time global, if it exports one.
// Time is supplied per instance; nothing is shared across instances.
func (i *Instance) SetTime(t uint64) {
	if i.simTime != nil {
		i.simTime.Set(t)
	}
}

// Finished reports whether the model called the env.finish host hook.
func (i *Instance) Finished() bool {
	return i.finished
}

// Close releases the instance and its memory. Close is idempotent.
func (i *Instance) Close(ctx context.Context) error {
	if i.closed {
		return nil
	}
	i.closed = true
	return i.mod.Close(ctx)
}

// signal is a typed view of one port's storage in linear memory. Offsets
// are validated at bind time and memory never shrinks, so accesses cannot
// go out of bounds afterwards.
type signal struct {
	spec sigbridge.PortSpec
	mem  api.Memory
	off  uint32
}

func (s *signal) Spec() sigbridge.PortSpec { return s.spec }

func (s *signal) Load() uint64 {
	var v uint64
	switch s.spec.StorageSize() {
	case 1:
		b, _ := s.mem.ReadByte(s.off)
		v = uint64(b)
	case 2:
		h, _ := s.mem.ReadUint16Le(s.off)
		v = uint64(h)
	case 4:
		w, _ := s.mem.ReadUint32Le(s.off)
		v = uint64(w)
	default:
		v, _ = s.mem.ReadUint64Le(s.off)
	}
	return v & s.spec.Mask()
}

func (s *signal) Store(v uint64) {
	v &= s.spec.Mask()
	switch s.spec.StorageSize() {
	case 1:
		s.mem.WriteByte(s.off, byte(v))
	case 2:
		s.mem.WriteUint16Le(s.off, uint16(v))
	case 4:
		s.mem.WriteUint32Le(s.off, uint32(v))
	default:
		s.mem.WriteUint64Le(s.off, v)
	}
}

// finishKey carries the per-instance finished flag to host hooks.
type finishKey struct{}

func withFinishFlag(ctx context.Context, flag *bool) context.Context {
	return context.WithValue(ctx, finishKey{}, flag)
}

// hostFinish implements env.finish, the $finish analog. It marks the
// calling instance finished; the driver decides when to stop stepping.
func hostFinish(ctx context.Context) {
	if flag, ok := ctx.Value(finishKey{}).(*bool); ok {
		*flag = true
	}
}
