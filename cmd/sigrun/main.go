package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/profile"
	"golang.org/x/term"

	"github.com/sigbridge/sigbridge"
	"github.com/sigbridge/sigbridge/engine"
	"github.com/sigbridge/sigbridge/sim"
)

func main() {
	var (
		modelFile   = flag.String("model", "", "Path to compiled model wasm file")
		portsDesc   = flag.String("ports", "", "Port table (name:width:dir, comma-separated)")
		clock       = flag.String("clock", sim.DefaultClock, "Clock signal name for trace timing")
		scope       = flag.String("scope", sim.DefaultScope, "VCD scope name")
		timescale   = flag.String("timescale", sim.DefaultTimescale, "VCD timescale")
		vcdPath     = flag.String("vcd", "", "Write a VCD trace to this path")
		steps       = flag.Int("steps", 1, "Number of simulation steps")
		pokes       = flag.String("poke", "", "Initial input values (name=value,name2=value2)")
		list        = flag.Bool("list", false, "List model ports and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		cpuprofile  = flag.Bool("cpuprofile", false, "Write a CPU profile to the current directory")
	)
	flag.Parse()

	if *modelFile == "" || *portsDesc == "" {
		fmt.Fprintln(os.Stderr, "Usage: sigrun -model <file.wasm> -ports <table> [-steps n] [-vcd out.vcd]")
		fmt.Fprintln(os.Stderr, "       sigrun -model <file.wasm> -ports <table> -list")
		fmt.Fprintln(os.Stderr, "       sigrun -model <file.wasm> -ports <table> -i  (interactive mode)")
		os.Exit(1)
	}

	if *cpuprofile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(*modelFile, *portsDesc, *clock, *scope, *timescale, *vcdPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*modelFile, *portsDesc, *clock, *scope, *timescale, *vcdPath, *pokes, *steps, *list); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(modelFile, portsDesc, clock, scope, timescale, vcdPath, pokesStr string, steps int, listOnly bool) error {
	ctx := context.Background()

	ports, err := sigbridge.ParsePorts(portsDesc)
	if err != nil {
		return fmt.Errorf("parse ports: %w", err)
	}

	fmt.Printf("Model: %s\n", modelFile)
	fmt.Printf("Ports:\n")
	for _, p := range ports {
		fmt.Printf("  %-16s %2d bits  %s\n", p.Name, p.Width, p.Dir)
	}

	if listOnly {
		return nil
	}

	data, err := os.ReadFile(modelFile)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	eng, err := engine.New(ctx)
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}
	defer eng.Close(ctx)

	model, err := eng.Load(ctx, data, ports)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}

	inst, err := model.Instantiate(ctx)
	if err != nil {
		return fmt.Errorf("instantiate: %w", err)
	}

	s, err := sim.New(inst, sim.Options{
		TracePath: vcdPath,
		Timescale: timescale,
		Clock:     clock,
		Scope:     scope,
	})
	if err != nil {
		inst.Close(ctx)
		return fmt.Errorf("create handle: %w", err)
	}
	defer s.Close(ctx)

	if pokesStr != "" {
		for _, kv := range strings.Split(pokesStr, ",") {
			parts := strings.SplitN(kv, "=", 2)
			if len(parts) != 2 {
				return fmt.Errorf("bad poke %q: want name=value", kv)
			}
			v, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 0, 64)
			if err != nil {
				return fmt.Errorf("bad poke %q: %w", kv, err)
			}
			if err := s.Poke(strings.TrimSpace(parts[0]), v); err != nil {
				return fmt.Errorf("poke: %w", err)
			}
		}
	}

	fmt.Printf("\nRunning %d steps...\n", steps)
	for i := 0; i < steps; i++ {
		if err := s.Step(ctx); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		if inst.Finished() {
			fmt.Printf("Model signalled finish at step %d\n", i+1)
			break
		}
	}

	fmt.Printf("\nFinal values (trace time %d):\n", s.Time())
	for _, p := range ports {
		v, err := s.Peek(p.Name)
		if err != nil {
			return fmt.Errorf("peek %s: %w", p.Name, err)
		}
		fmt.Printf("  %-16s %#x\n", p.Name, v)
	}
	if vcdPath != "" {
		fmt.Printf("\nTrace written to %s\n", vcdPath)
	}

	return nil
}
