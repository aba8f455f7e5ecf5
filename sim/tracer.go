package sim

import (
	"github.com/sigbridge/sigbridge"
	"github.com/sigbridge/sigbridge/vcd"
)

// tracer is the step engine's view of waveform output. Exactly two
// implementations exist: the VCD-backed tracer and the no-op tracer used
// when tracing is disabled for a handle or compiled out entirely.
type tracer interface {
	enabled() bool
	sample(t uint64) error
	close() error
}

type nopTracer struct{}

func (nopTracer) enabled() bool         { return false }
func (nopTracer) sample(t uint64) error { return nil }
func (nopTracer) close() error          { return nil }

// vcdTracer samples every port into a vcd.Writer and flushes after each
// sample so partial output survives an abrupt termination.
type vcdTracer struct {
	w     *vcd.Writer
	pairs []tracePair
}

type tracePair struct {
	sig sigbridge.Signal
	v   *vcd.Var
}

func newVCDTracer(s *Sim, opts Options) (*vcdTracer, error) {
	w, err := vcd.Create(opts.TracePath, opts.timescale())
	if err != nil {
		return nil, err
	}

	scope := opts.scope()
	pairs := make([]tracePair, 0, len(s.ports))
	for _, p := range s.ports {
		v := w.Declare(scope+"."+p.Name, p.Width)
		pairs = append(pairs, tracePair{sig: s.sigs[p.Name], v: v})
	}
	return &vcdTracer{w: w, pairs: pairs}, nil
}

func (t *vcdTracer) enabled() bool { return true }

func (t *vcdTracer) sample(at uint64) error {
	for _, p := range t.pairs {
		p.v.Set(p.sig.Load())
	}
	if err := t.w.Sample(at); err != nil {
		return err
	}
	return t.w.Flush()
}

func (t *vcdTracer) close() error {
	return t.w.Close()
}
