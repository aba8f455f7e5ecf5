package sim

import (
	"context"

	"go.uber.org/zap"

	"github.com/sigbridge/sigbridge"
	"github.com/sigbridge/sigbridge/errors"
)

// Sim is one simulation handle: a model instance plus the wrapper-owned
// step/trace state. It is exclusively owned by its creator and must not be
// shared across goroutines without external serialization.
type Sim struct {
	model sigbridge.Model
	ports []sigbridge.PortSpec
	sigs  map[string]sigbridge.Signal
	sink  sigbridge.TimeSink

	tr        tracer
	clock     sigbridge.Signal
	lastClock uint64
	traceTime uint64

	closed bool
}

// New wraps a model instance in a handle. All port signals are resolved
// here, once; they stay valid until Close. A non-empty opts.TracePath
// enables tracing: the trace file is created immediately and an open
// failure is reported from New rather than surfacing mid-run.
//
// The handle takes ownership of the model; Close releases it.
func New(model sigbridge.Model, opts Options) (*Sim, error) {
	if model == nil {
		return nil, errors.NotInitialized(errors.PhaseBind, "model")
	}

	ports := model.Ports()
	sigs := make(map[string]sigbridge.Signal, len(ports))
	for _, p := range ports {
		sig, ok := model.Signal(p.Name)
		if !ok {
			return nil, errors.NotFound(errors.PhaseBind, "signal", p.Name)
		}
		sigs[p.Name] = sig
	}

	s := &Sim{
		model: model,
		ports: ports,
		sigs:  sigs,
	}
	if sink, ok := model.(sigbridge.TimeSink); ok {
		s.sink = sink
	}

	tr, err := newTracer(s, opts)
	if err != nil {
		return nil, err
	}
	s.tr = tr

	if tr.enabled() {
		clock, ok := sigs[opts.clock()]
		if !ok {
			tr.close()
			return nil, errors.NotFound(errors.PhaseBind, "clock signal", opts.clock())
		}
		s.clock = clock
	}

	Logger().Debug("handle created",
		zap.Int("ports", len(ports)),
		zap.Bool("tracing", tr.enabled()),
		zap.String("trace_path", opts.TracePath))
	return s, nil
}

// Step advances the simulation by one evaluation: the model propagates
// current input values to outputs and internal clocked state. With tracing
// enabled, a clock transition since the previous Step advances the trace
// time, the advanced time is injected into the model if it accepts one,
// and a sample of all ports is emitted and flushed.
func (s *Sim) Step(ctx context.Context) error {
	if s.closed {
		return errors.Closed("handle")
	}

	if err := s.model.Eval(ctx); err != nil {
		return errors.Eval(err)
	}

	if !s.tr.enabled() {
		return nil
	}

	clock := s.clock.Load()
	if clock != s.lastClock {
		s.traceTime += timeStep
		if s.sink != nil {
			s.sink.SetTime(s.traceTime)
		}
	}
	s.lastClock = clock

	return s.tr.sample(s.traceTime)
}

// Close finalizes the model, closes the trace output with all buffered
// samples flushed, and releases the model instance. Close is idempotent;
// after the first call the handle is dead and Step reports a closed error.
func (s *Sim) Close(ctx context.Context) error {
	if s.closed {
		return nil
	}
	s.closed = true

	var firstErr error
	if err := s.model.Final(ctx); err != nil {
		firstErr = errors.Wrap(errors.PhaseClose, errors.KindEvalFault, err, "model final")
	}
	if err := s.tr.close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := s.model.Close(ctx); err != nil && firstErr == nil {
		firstErr = errors.Wrap(errors.PhaseClose, errors.KindEvalFault, err, "release model")
	}

	Logger().Debug("handle closed", zap.Uint64("trace_time", s.traceTime))
	return firstErr
}

// Signal returns the direct view for a named port. The view writes
// straight into model storage with no range checking beyond width masking;
// it is valid only until Close.
func (s *Sim) Signal(name string) (sigbridge.Signal, bool) {
	sig, ok := s.sigs[name]
	return sig, ok
}

// Peek reads the current value of a named port.
func (s *Sim) Peek(name string) (uint64, error) {
	sig, ok := s.sigs[name]
	if !ok {
		return 0, errors.NotFound(errors.PhaseSim, "signal", name)
	}
	return sig.Load(), nil
}

// Poke writes a value to a named port. Values are masked to the port's
// declared width; out-of-range semantics beyond that are the model's
// problem, not the wrapper's.
func (s *Sim) Poke(name string, v uint64) error {
	sig, ok := s.sigs[name]
	if !ok {
		return errors.NotFound(errors.PhaseSim, "signal", name)
	}
	sig.Store(v)
	return nil
}

// Ports returns the model's port table.
func (s *Sim) Ports() []sigbridge.PortSpec {
	return s.ports
}

// Time returns the current trace time. It is zero and stays zero when
// tracing is disabled.
func (s *Sim) Time() uint64 {
	return s.traceTime
}

// Tracing reports whether this handle writes a waveform dump.
func (s *Sim) Tracing() bool {
	return s.tr.enabled()
}
