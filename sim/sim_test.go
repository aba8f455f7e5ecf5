package sim

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sigbridge/sigbridge"
	sberrors "github.com/sigbridge/sigbridge/errors"
)

// fakeSignal is a port backed by plain Go storage.
type fakeSignal struct {
	spec  sigbridge.PortSpec
	val   uint64
	loads int
}

func (s *fakeSignal) Spec() sigbridge.PortSpec { return s.spec }

func (s *fakeSignal) Load() uint64 {
	s.loads++
	return s.val
}

func (s *fakeSignal) Store(v uint64) {
	s.val = v & s.spec.Mask()
}

// fakeModel implements sigbridge.Model without any compiled artifact
// behind it. eval runs the model "logic" directly against the signal
// storage.
type fakeModel struct {
	ports  []sigbridge.PortSpec
	sigs   map[string]*fakeSignal
	eval   func(m *fakeModel)
	evals  int
	finals int
	closes int
}

func newFakeModel(ports []sigbridge.PortSpec, eval func(m *fakeModel)) *fakeModel {
	m := &fakeModel{
		ports: ports,
		sigs:  make(map[string]*fakeSignal, len(ports)),
		eval:  eval,
	}
	for _, p := range ports {
		m.sigs[p.Name] = &fakeSignal{spec: p}
	}
	return m
}

func (m *fakeModel) Ports() []sigbridge.PortSpec { return m.ports }

func (m *fakeModel) Signal(name string) (sigbridge.Signal, bool) {
	s, ok := m.sigs[name]
	return s, ok
}

func (m *fakeModel) Eval(ctx context.Context) error {
	m.evals++
	if m.eval != nil {
		m.eval(m)
	}
	return nil
}

func (m *fakeModel) Final(ctx context.Context) error {
	m.finals++
	return nil
}

func (m *fakeModel) Close(ctx context.Context) error {
	m.closes++
	return nil
}

func (m *fakeModel) set(name string, v uint64) { m.sigs[name].val = v }
func (m *fakeModel) get(name string) uint64    { return m.sigs[name].val }

// timedModel additionally accepts injected simulation time.
type timedModel struct {
	*fakeModel
	times []uint64
}

func (m *timedModel) SetTime(t uint64) { m.times = append(m.times, t) }

func bit(name string, dir sigbridge.Dir) sigbridge.PortSpec {
	return sigbridge.PortSpec{Name: name, Width: 1, Dir: dir}
}

// clockedPorts is the 1-bit-clock, 1-bit-output port table used across
// these tests.
func clockedPorts() []sigbridge.PortSpec {
	return []sigbridge.PortSpec{bit("clk", sigbridge.In), bit("out", sigbridge.Out)}
}

// toggleEvery returns eval logic that inverts clk on every nth call and
// drives out as the inverse of clk.
func toggleEvery(n int) func(m *fakeModel) {
	return func(m *fakeModel) {
		if m.evals%n == 0 {
			m.set("clk", m.get("clk")^1)
		}
		m.set("out", m.get("clk")^1)
	}
}

func TestNew_NilModel(t *testing.T) {
	if _, err := New(nil, Options{}); err == nil {
		t.Fatal("expected error for nil model")
	}
}

func TestNew_MissingClockSignal(t *testing.T) {
	m := newFakeModel([]sigbridge.PortSpec{bit("out", sigbridge.Out)}, nil)
	_, err := New(m, Options{TracePath: filepath.Join(t.TempDir(), "dump.vcd")})
	if err == nil {
		t.Fatal("expected error for missing clock port")
	}
	if !errors.Is(err, &sberrors.Error{Phase: sberrors.PhaseBind, Kind: sberrors.KindNotFound}) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestStep_UntracedHandle(t *testing.T) {
	dir := t.TempDir()
	m := newFakeModel(clockedPorts(), toggleEvery(1))

	s, err := New(m, Options{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer s.Close(context.Background())

	if s.Tracing() {
		t.Fatal("handle should be untraced")
	}
	for i := 0; i < 10; i++ {
		if err := s.Step(context.Background()); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if m.evals != 10 {
		t.Errorf("evals = %d, want 10", m.evals)
	}
	if s.Time() != 0 {
		t.Errorf("trace time advanced on untraced handle: %d", s.Time())
	}
	// edge bookkeeping is never consulted without tracing
	if m.sigs["clk"].loads != 0 {
		t.Errorf("clock consulted %d times on untraced handle", m.sigs["clk"].loads)
	}
	// and nothing was written anywhere
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("untraced run created files: %v", entries)
	}
}

func TestStep_TraceTimeFollowsEdges(t *testing.T) {
	tests := []struct {
		name     string
		everyN   int
		steps    int
		wantTime uint64
	}{
		{"toggle every step", 1, 4, 200},
		{"half period of two", 2, 4, 100},
		{"toggle every third", 3, 10, 150},
		{"no edges at all", 100, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newFakeModel(clockedPorts(), toggleEvery(tt.everyN))
			s, err := New(m, Options{TracePath: filepath.Join(t.TempDir(), "dump.vcd")})
			if err != nil {
				t.Fatalf("new: %v", err)
			}
			defer s.Close(context.Background())

			for i := 0; i < tt.steps; i++ {
				if err := s.Step(context.Background()); err != nil {
					t.Fatalf("step %d: %v", i, err)
				}
			}
			if s.Time() != tt.wantTime {
				t.Errorf("trace time = %d, want %d", s.Time(), tt.wantTime)
			}
		})
	}
}

func TestStep_FallingEdgeCountsToo(t *testing.T) {
	m := newFakeModel(clockedPorts(), nil)
	m.set("clk", 1) // high before the first step
	s, err := New(m, Options{TracePath: filepath.Join(t.TempDir(), "dump.vcd")})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer s.Close(context.Background())

	// last-observed starts low, so the already-high clock is one edge
	if err := s.Step(context.Background()); err != nil {
		t.Fatalf("step: %v", err)
	}
	if s.Time() != 50 {
		t.Fatalf("trace time = %d, want 50", s.Time())
	}

	// drive it low: a falling transition advances time just the same
	m.set("clk", 0)
	if err := s.Step(context.Background()); err != nil {
		t.Fatalf("step: %v", err)
	}
	if s.Time() != 100 {
		t.Errorf("trace time = %d, want 100", s.Time())
	}
}

func TestStep_InjectsTimeIntoModel(t *testing.T) {
	m := &timedModel{fakeModel: newFakeModel(clockedPorts(), toggleEvery(2))}
	s, err := New(m, Options{TracePath: filepath.Join(t.TempDir(), "dump.vcd")})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer s.Close(context.Background())

	for i := 0; i < 4; i++ {
		if err := s.Step(context.Background()); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	// toggles on evals 2 and 4: time advances twice
	want := []uint64{50, 100}
	if len(m.times) != len(want) {
		t.Fatalf("SetTime calls = %v, want %v", m.times, want)
	}
	for i := range want {
		if m.times[i] != want[i] {
			t.Errorf("SetTime[%d] = %d, want %d", i, m.times[i], want[i])
		}
	}
}

func TestPeekPoke(t *testing.T) {
	ports := []sigbridge.PortSpec{
		{Name: "in_", Width: 4, Dir: sigbridge.In},
		{Name: "out", Width: 4, Dir: sigbridge.Out},
	}
	m := newFakeModel(ports, func(m *fakeModel) {
		m.set("out", ^m.get("in_")&0xf)
	})

	s, err := New(m, Options{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer s.Close(context.Background())

	if err := s.Poke("in_", 0xff); err != nil {
		t.Fatalf("poke: %v", err)
	}
	got, err := s.Peek("in_")
	if err != nil {
		t.Fatalf("peek: %v", err)
	}
	if got != 0xf {
		t.Errorf("poke did not mask to width: got %#x", got)
	}

	if err := s.Step(context.Background()); err != nil {
		t.Fatalf("step: %v", err)
	}
	out, err := s.Peek("out")
	if err != nil {
		t.Fatalf("peek out: %v", err)
	}
	if out != 0 {
		t.Errorf("out = %#x, want 0", out)
	}

	if _, err := s.Peek("nope"); err == nil {
		t.Error("peek of unknown signal should fail")
	}
	if err := s.Poke("nope", 1); err == nil {
		t.Error("poke of unknown signal should fail")
	}
}

func TestClose_Lifecycle(t *testing.T) {
	m := newFakeModel(clockedPorts(), toggleEvery(1))
	s, err := New(m, Options{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if m.finals != 1 {
		t.Errorf("finals = %d, want 1", m.finals)
	}
	if m.closes != 1 {
		t.Errorf("model closes = %d, want 1", m.closes)
	}

	// second close is a no-op, not a double free
	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if m.finals != 1 || m.closes != 1 {
		t.Errorf("teardown ran twice: finals=%d closes=%d", m.finals, m.closes)
	}

	// stepping a dead handle is a reported error, not undefined behavior
	err = s.Step(context.Background())
	if !errors.Is(err, &sberrors.Error{Phase: sberrors.PhaseSim, Kind: sberrors.KindClosed}) {
		t.Errorf("step after close: %v", err)
	}
	if m.evals != 0 {
		t.Errorf("model evaluated after close: %d", m.evals)
	}
}

func TestNew_TraceOpenFailureSurfaces(t *testing.T) {
	m := newFakeModel(clockedPorts(), nil)
	_, err := New(m, Options{TracePath: filepath.Join(t.TempDir(), "no", "such", "dir", "d.vcd")})
	if err == nil {
		t.Fatal("expected trace open failure at creation time")
	}
	if !errors.Is(err, &sberrors.Error{Phase: sberrors.PhaseTrace, Kind: sberrors.KindIO}) {
		t.Errorf("unexpected error: %v", err)
	}
}
