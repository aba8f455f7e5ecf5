package sigbridge

import (
	"errors"
	"testing"

	sberrors "github.com/sigbridge/sigbridge/errors"
)

func TestParsePorts(t *testing.T) {
	ports, err := ParsePorts("clk:1:in, reset, count:8:out, bus:16:inout")
	if err != nil {
		t.Fatalf("ParsePorts: %v", err)
	}
	want := []PortSpec{
		{Name: "clk", Width: 1, Dir: In},
		{Name: "reset", Width: 1, Dir: In},
		{Name: "count", Width: 8, Dir: Out},
		{Name: "bus", Width: 16, Dir: InOut},
	}
	if len(ports) != len(want) {
		t.Fatalf("got %d ports, want %d", len(ports), len(want))
	}
	for i, p := range ports {
		if p != want[i] {
			t.Errorf("port %d = %v, want %v", i, p, want[i])
		}
	}
}

func TestParsePortsErrors(t *testing.T) {
	cases := []struct {
		name string
		desc string
	}{
		{"empty", ""},
		{"only commas", ", ,"},
		{"too many fields", "clk:1:in:x"},
		{"empty name", ":1:in"},
		{"duplicate", "clk, clk"},
		{"bad width", "clk:abc"},
		{"zero width", "clk:0"},
		{"too wide", "clk:65"},
		{"bad direction", "clk:1:sideways"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParsePorts(tc.desc)
			if err == nil {
				t.Fatalf("ParsePorts(%q) accepted invalid input", tc.desc)
			}
			if !errors.Is(err, &sberrors.Error{Phase: sberrors.PhaseParse, Kind: sberrors.KindInvalidInput}) &&
				!errors.Is(err, &sberrors.Error{Phase: sberrors.PhaseParse, Kind: sberrors.KindInvalidData}) &&
				!errors.Is(err, &sberrors.Error{Phase: sberrors.PhaseParse, Kind: sberrors.KindUnsupported}) {
				t.Fatalf("ParsePorts(%q) = %v, want a parse-phase error", tc.desc, err)
			}
		})
	}
}

func TestPortSpecMask(t *testing.T) {
	cases := []struct {
		width int
		want  uint64
	}{
		{1, 0x1},
		{4, 0xf},
		{8, 0xff},
		{16, 0xffff},
		{33, 0x1ffffffff},
		{64, ^uint64(0)},
	}
	for _, tc := range cases {
		p := PortSpec{Name: "p", Width: tc.width}
		if got := p.Mask(); got != tc.want {
			t.Errorf("width %d mask = %#x, want %#x", tc.width, got, tc.want)
		}
	}
}

func TestPortSpecStorageSize(t *testing.T) {
	cases := []struct {
		width int
		want  uint32
	}{
		{1, 1}, {8, 1}, {9, 2}, {16, 2}, {17, 4}, {32, 4}, {33, 8}, {64, 8},
	}
	for _, tc := range cases {
		p := PortSpec{Name: "p", Width: tc.width}
		if got := p.StorageSize(); got != tc.want {
			t.Errorf("width %d storage = %d, want %d", tc.width, got, tc.want)
		}
	}
}

func TestPortSpecString(t *testing.T) {
	p := PortSpec{Name: "count", Width: 8, Dir: Out}
	if got := p.String(); got != "count:8:out" {
		t.Fatalf("String = %q", got)
	}
}
