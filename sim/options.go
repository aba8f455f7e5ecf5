package sim

const (
	// DefaultTimescale is the trace time-resolution unit written into the
	// dump header when Options.Timescale is empty.
	DefaultTimescale = "1ps"

	// DefaultClock is the port watched for edges when Options.Clock is
	// empty.
	DefaultClock = "clk"

	// DefaultScope is the hierarchy root trace variables are declared
	// under.
	DefaultScope = "TOP"

	// timeStep is the trace-time advance per detected clock edge. Its only
	// job is to keep successive edges apart on the waveform time axis.
	timeStep = 50
)

// Options configures a handle at creation. The zero value is a valid
// untraced configuration.
type Options struct {
	// TracePath is the waveform dump destination. Empty disables tracing
	// entirely; no file is created or opened.
	TracePath string

	// Timescale is the dump's time-resolution unit, e.g. "1ps" or "10ns".
	// Empty means DefaultTimescale.
	Timescale string

	// Clock names the port whose transitions advance the trace time.
	// Empty means DefaultClock. Only consulted when tracing is enabled.
	Clock string

	// Scope is the hierarchy root for trace variable names. Empty means
	// DefaultScope.
	Scope string
}

func (o Options) timescale() string {
	if o.Timescale == "" {
		return DefaultTimescale
	}
	return o.Timescale
}

func (o Options) clock() string {
	if o.Clock == "" {
		return DefaultClock
	}
	return o.Clock
}

func (o Options) scope() string {
	if o.Scope == "" {
		return DefaultScope
	}
	return o.Scope
}
