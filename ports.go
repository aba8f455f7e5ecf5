package sigbridge

import (
	"strconv"
	"strings"

	"github.com/sigbridge/sigbridge/errors"
)

// Dir is the direction of a port as seen from outside the model.
type Dir uint8

const (
	In Dir = iota
	Out
	InOut
)

func (d Dir) String() string {
	switch d {
	case In:
		return "in"
	case Out:
		return "out"
	case InOut:
		return "inout"
	}
	return "dir(" + strconv.Itoa(int(d)) + ")"
}

// MaxWidth is the widest signal a Signal view can carry. Wider signals
// (Verilator's WData arrays) are not supported.
const MaxWidth = 64

// PortSpec describes one top-level signal of a model: its name, bit width
// and direction. Port tables are fixed per model at generation time.
type PortSpec struct {
	Name  string
	Width int
	Dir   Dir
}

// Mask returns the value mask for the port's width.
func (p PortSpec) Mask() uint64 {
	if p.Width >= MaxWidth {
		return ^uint64(0)
	}
	return 1<<uint(p.Width) - 1
}

// StorageSize returns the number of bytes the port occupies in model
// storage: 1, 2, 4 or 8 for widths up to 8, 16, 32 and 64 bits.
func (p PortSpec) StorageSize() uint32 {
	switch {
	case p.Width <= 8:
		return 1
	case p.Width <= 16:
		return 2
	case p.Width <= 32:
		return 4
	default:
		return 8
	}
}

func (p PortSpec) String() string {
	return p.Name + ":" + strconv.Itoa(p.Width) + ":" + p.Dir.String()
}

// ParsePorts parses a comma-separated port table description of the form
//
//	"clk:1:in, reset:1:in, count:8:out"
//
// Each entry is name:width:dir with dir one of "in", "out" or "inout".
// An entry may omit :dir ("clk:1"), which defaults to "in", and may omit
// :width:dir entirely ("clk"), which defaults to a 1-bit input.
func ParsePorts(desc string) ([]PortSpec, error) {
	var ports []PortSpec
	seen := make(map[string]bool)

	for _, entry := range strings.Split(desc, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		parts := strings.Split(entry, ":")
		if len(parts) > 3 {
			return nil, errors.InvalidInput(errors.PhaseParse, "port entry "+strconv.Quote(entry)+": want name:width:dir")
		}

		p := PortSpec{Name: parts[0], Width: 1, Dir: In}
		if p.Name == "" {
			return nil, errors.InvalidInput(errors.PhaseParse, "port entry "+strconv.Quote(entry)+": empty name")
		}
		if seen[p.Name] {
			return nil, errors.InvalidInput(errors.PhaseParse, "duplicate port "+strconv.Quote(p.Name))
		}
		seen[p.Name] = true

		if len(parts) >= 2 {
			w, err := strconv.Atoi(strings.TrimSpace(parts[1]))
			if err != nil {
				return nil, errors.Wrap(errors.PhaseParse, errors.KindInvalidData, err, "port "+strconv.Quote(p.Name)+": bad width")
			}
			if w < 1 || w > MaxWidth {
				return nil, errors.Unsupported(errors.PhaseParse, "port "+strconv.Quote(p.Name)+": width "+strconv.Itoa(w)+" out of range 1.."+strconv.Itoa(MaxWidth))
			}
			p.Width = w
		}

		if len(parts) == 3 {
			switch strings.TrimSpace(parts[2]) {
			case "in":
				p.Dir = In
			case "out":
				p.Dir = Out
			case "inout":
				p.Dir = InOut
			default:
				return nil, errors.InvalidInput(errors.PhaseParse, "port "+strconv.Quote(p.Name)+": bad direction "+strconv.Quote(parts[2]))
			}
		}

		ports = append(ports, p)
	}

	if len(ports) == 0 {
		return nil, errors.InvalidInput(errors.PhaseParse, "empty port table")
	}
	return ports, nil
}
