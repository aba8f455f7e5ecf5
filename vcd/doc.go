// Package vcd writes waveform traces in the value-change-dump format
// understood by common waveform viewers (GTKWave, Surfer).
//
// A Writer is built up from variable declarations, then driven by repeated
// Set/Sample calls:
//
//	w, err := vcd.Create("dump.vcd", "1ps")
//	if err != nil {
//	    return err
//	}
//	clk := w.Declare("top.clk", 1)
//	cnt := w.Declare("top.count", 8)
//
//	clk.Set(1)
//	cnt.Set(0x2a)
//	w.Sample(0)   // writes header, $dumpvars and initial values
//	clk.Set(0)
//	w.Sample(50)  // writes #50 and the changed clk value only
//	w.Close()     // flushes and closes the file
//
// Dotted variable names become nested $scope sections. Hierarchy deeper
// than DepthLimit levels is not traced, matching the fixed signal depth the
// harness requests from models.
//
// Sample emits only variables whose value changed since the previous
// sample; emitting the same time stamp repeatedly is valid and produces no
// output when nothing changed. Output is written incrementally so a dump
// truncated by an abrupt termination still loads up to the last flush.
package vcd
