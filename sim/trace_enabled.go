//go:build !notrace

package sim

// newTracer selects the trace implementation for a handle. An empty trace
// path forces tracing off even though support is compiled in; that is an
// explicit override, not an error.
func newTracer(s *Sim, opts Options) (tracer, error) {
	if opts.TracePath == "" {
		return nopTracer{}, nil
	}
	return newVCDTracer(s, opts)
}
