package vcd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sigbridge/sigbridge/errors"
)

// DepthLimit is the maximum scope nesting a declared variable may have.
// Variables nested deeper are accepted but not traced.
const DepthLimit = 99

// maxWidth is the widest variable value a Var carries.
const maxWidth = 64

// A Var is one declared trace variable. Set records its current value;
// the value reaches the output on the next Writer.Sample call.
type Var struct {
	segs    []string
	id      string
	width   int
	val     uint64
	emitted uint64
	traced  bool
}

// Set records the variable's current value, masked to its width.
func (v *Var) Set(val uint64) {
	if v.width < maxWidth {
		val &= 1<<uint(v.width) - 1
	}
	v.val = val
}

// Value returns the most recently Set value.
func (v *Var) Value() uint64 { return v.val }

// Writer emits a value-change dump incrementally.
type Writer struct {
	bw         *bufio.Writer
	f          *os.File
	timescale  string
	vars       []*Var
	nextID     int
	headerDone bool
	lastTime   uint64
	closed     bool
}

// NewWriter returns a Writer emitting to out. An empty timescale defaults
// to "1ps". The caller keeps ownership of out; Close does not close it.
func NewWriter(out io.Writer, timescale string) *Writer {
	if timescale == "" {
		timescale = "1ps"
	}
	return &Writer{
		bw:        bufio.NewWriter(out),
		timescale: timescale,
	}
}

// Create opens path for writing and returns a Writer that owns the file.
// The file is created immediately; an open failure is reported here, before
// any simulation runs against the trace.
func Create(path, timescale string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.IO(errors.PhaseTrace, "open trace "+strconv.Quote(path), err)
	}
	w := NewWriter(f, timescale)
	w.f = f
	return w, nil
}

// Declare adds a variable before the first Sample. Dotted names nest into
// $scope sections. Declarations after the header has been written, or
// deeper than DepthLimit scopes, return a Var that is kept current but
// never emitted.
func (w *Writer) Declare(name string, width int) *Var {
	if width < 1 {
		width = 1
	}
	if width > maxWidth {
		width = maxWidth
	}
	v := &Var{
		segs:  strings.Split(name, "."),
		width: width,
	}
	if w.headerDone || len(v.segs)-1 > DepthLimit {
		return v
	}
	v.traced = true
	v.id = idCode(w.nextID)
	w.nextID++
	w.vars = append(w.vars, v)
	return v
}

// Sample writes the state of all variables at time t. The first call
// writes the declaration header and a full $dumpvars block; later calls
// write a time stamp when t advanced and only the variables whose value
// changed since the previous sample.
func (w *Writer) Sample(t uint64) error {
	if w.closed {
		return errors.Closed("vcd writer")
	}

	if !w.headerDone {
		w.writeHeader()
		fmt.Fprintf(w.bw, "#%d\n$dumpvars\n", t)
		for _, v := range w.vars {
			w.writeValue(v)
			v.emitted = v.val
		}
		w.bw.WriteString("$end\n")
		w.headerDone = true
		w.lastTime = t
		return nil
	}

	if t != w.lastTime {
		fmt.Fprintf(w.bw, "#%d\n", t)
		w.lastTime = t
	}
	for _, v := range w.vars {
		if v.val == v.emitted {
			continue
		}
		w.writeValue(v)
		v.emitted = v.val
	}
	return nil
}

// Flush forces buffered output to the underlying file or writer, so a
// partial dump survives an abrupt termination.
func (w *Writer) Flush() error {
	if w.closed {
		return nil
	}
	if err := w.bw.Flush(); err != nil {
		return errors.IO(errors.PhaseTrace, "flush trace", err)
	}
	return nil
}

// Close flushes all buffered samples and closes the owned file, if any.
// Close is idempotent.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	err := w.bw.Flush()
	w.closed = true
	if w.f != nil {
		if cerr := w.f.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return errors.IO(errors.PhaseClose, "close trace", err)
	}
	return nil
}

func (w *Writer) writeValue(v *Var) {
	if v.width == 1 {
		w.bw.WriteString(strconv.FormatUint(v.val, 2))
		w.bw.WriteString(v.id)
	} else {
		w.bw.WriteByte('b')
		w.bw.WriteString(strconv.FormatUint(v.val, 2))
		w.bw.WriteByte(' ')
		w.bw.WriteString(v.id)
	}
	w.bw.WriteByte('\n')
}

func (w *Writer) writeHeader() {
	fmt.Fprintf(w.bw, "$timescale %s $end\n", w.timescale)
	w.writeScope(newScopeTree(w.vars), 0)
	w.bw.WriteString("$enddefinitions $end\n")
}

func (w *Writer) writeScope(n *scopeNode, depth int) {
	for _, v := range n.vars {
		fmt.Fprintf(w.bw, "$var wire %d %s %s $end\n", v.width, v.id, v.segs[len(v.segs)-1])
	}
	for _, child := range n.children {
		fmt.Fprintf(w.bw, "$scope module %s $end\n", child.name)
		w.writeScope(child, depth+1)
		w.bw.WriteString("$upscope $end\n")
	}
}

// scopeNode groups declared variables by their dotted name prefix,
// preserving declaration order.
type scopeNode struct {
	name     string
	children []*scopeNode
	index    map[string]*scopeNode
	vars     []*Var
}

func newScopeTree(vars []*Var) *scopeNode {
	root := &scopeNode{index: make(map[string]*scopeNode)}
	for _, v := range vars {
		n := root
		for _, seg := range v.segs[:len(v.segs)-1] {
			child, ok := n.index[seg]
			if !ok {
				child = &scopeNode{name: seg, index: make(map[string]*scopeNode)}
				n.index[seg] = child
				n.children = append(n.children, child)
			}
			n = child
		}
		n.vars = append(n.vars, v)
	}
	return root
}

// idCode maps a variable index to a compact identifier built from the
// printable ASCII range the format reserves for ids.
func idCode(n int) string {
	var buf []byte
	for {
		buf = append(buf, byte('!'+n%94))
		n = n/94 - 1
		if n < 0 {
			break
		}
	}
	return string(buf)
}
