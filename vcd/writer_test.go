package vcd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriter_HeaderAndInitialDump(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, "1ps")

	clk := w.Declare("clk", 1)
	cnt := w.Declare("count", 8)

	clk.Set(1)
	cnt.Set(0x2a)
	if err := w.Sample(0); err != nil {
		t.Fatalf("sample: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"$timescale 1ps $end",
		"$var wire 1 ! clk $end",
		"$var wire 8 \" count $end",
		"$enddefinitions $end",
		"#0",
		"$dumpvars",
		"1!",
		"b101010 \"",
		"$end",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriter_EmitsOnlyChanges(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, "")

	clk := w.Declare("clk", 1)
	cnt := w.Declare("count", 8)
	clk.Set(0)
	cnt.Set(7)
	if err := w.Sample(0); err != nil {
		t.Fatalf("sample 0: %v", err)
	}
	buf.Reset()

	// clk toggles, count stays put
	clk.Set(1)
	if err := w.Sample(50); err != nil {
		t.Fatalf("sample 50: %v", err)
	}
	w.Flush()

	out := buf.String()
	if !strings.Contains(out, "#50") {
		t.Errorf("missing time stamp:\n%s", out)
	}
	if !strings.Contains(out, "1!") {
		t.Errorf("missing clk change:\n%s", out)
	}
	if strings.Contains(out, "b111") {
		t.Errorf("count emitted without a change:\n%s", out)
	}

	// nothing changed, same time: no output at all
	buf.Reset()
	if err := w.Sample(50); err != nil {
		t.Fatalf("repeat sample: %v", err)
	}
	w.Flush()
	if buf.Len() != 0 {
		t.Errorf("idle sample produced output: %q", buf.String())
	}
}

func TestWriter_DottedNamesNestScopes(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, "")

	w.Declare("top.clk", 1).Set(0)
	w.Declare("top.dut.count", 4).Set(0)
	if err := w.Sample(0); err != nil {
		t.Fatalf("sample: %v", err)
	}
	w.Flush()

	out := buf.String()
	wantOrder := []string{
		"$scope module top $end",
		"$var wire 1 ! clk $end",
		"$scope module dut $end",
		"$var wire 4 \" count $end",
		"$upscope $end",
		"$upscope $end",
	}
	pos := 0
	for _, want := range wantOrder {
		i := strings.Index(out[pos:], want)
		if i < 0 {
			t.Fatalf("missing or out of order %q:\n%s", want, out)
		}
		pos += i + len(want)
	}
}

func TestWriter_ValueMasking(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, "")

	cnt := w.Declare("count", 4)
	cnt.Set(0x1ff) // out-of-range write, masked to width
	if cnt.Value() != 0xf {
		t.Fatalf("Value = %#x, want 0xf", cnt.Value())
	}
	if err := w.Sample(0); err != nil {
		t.Fatalf("sample: %v", err)
	}
	w.Flush()

	if !strings.Contains(buf.String(), "b1111 !") {
		t.Errorf("masked value not emitted:\n%s", buf.String())
	}
}

func TestWriter_LateDeclareIsUntraced(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, "")

	w.Declare("clk", 1).Set(0)
	if err := w.Sample(0); err != nil {
		t.Fatalf("sample: %v", err)
	}

	late := w.Declare("late", 1)
	late.Set(1)
	if err := w.Sample(50); err != nil {
		t.Fatalf("sample after late declare: %v", err)
	}
	w.Flush()

	if strings.Contains(buf.String(), "late") {
		t.Errorf("late variable leaked into declarations:\n%s", buf.String())
	}
}

func TestCreate_WritesAndClosesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.vcd")

	w, err := Create(path, "1ps")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	clk := w.Declare("clk", 1)
	for i, tick := range []uint64{0, 50, 100} {
		clk.Set(uint64(i) & 1)
		if err := w.Sample(tick); err != nil {
			t.Fatalf("sample %d: %v", tick, err)
		}
		if err := w.Flush(); err != nil {
			t.Fatalf("flush %d: %v", tick, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	out := string(data)
	for _, want := range []string{"$enddefinitions $end", "#0", "#50", "#100"} {
		if !strings.Contains(out, want) {
			t.Errorf("reopened dump missing %q", want)
		}
	}
}

func TestCreate_BadPath(t *testing.T) {
	_, err := Create(filepath.Join(t.TempDir(), "missing", "dump.vcd"), "")
	if err == nil {
		t.Fatal("expected error for unwritable path")
	}
}

func TestIDCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		id := idCode(i)
		if id == "" {
			t.Fatalf("empty id for %d", i)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q at %d", id, i)
		}
		seen[id] = true
		for j := 0; j < len(id); j++ {
			if id[j] < '!' || id[j] > '~' {
				t.Fatalf("id %q for %d outside printable range", id, i)
			}
		}
	}
	if idCode(0) != "!" {
		t.Errorf("idCode(0) = %q, want %q", idCode(0), "!")
	}
	if idCode(93) != "~" {
		t.Errorf("idCode(93) = %q, want %q", idCode(93), "~")
	}
}
