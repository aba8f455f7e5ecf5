//go:build notrace

package sim

// newTracer with trace support compiled out: every handle runs untraced,
// whatever the requested destination.
func newTracer(s *Sim, opts Options) (tracer, error) {
	return nopTracer{}, nil
}
