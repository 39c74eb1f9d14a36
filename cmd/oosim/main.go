// Package main provides the entry point for oosim, a cycle-accurate
// out-of-order superscalar CPU pipeline simulator.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/sarchlab/oosim/coherence"
	"github.com/sarchlab/oosim/config"
	"github.com/sarchlab/oosim/frontend"
	"github.com/sarchlab/oosim/report"
	"github.com/sarchlab/oosim/timing/core"
	"github.com/sarchlab/oosim/timing/sched"
	"github.com/sarchlab/oosim/uop"
)

var (
	configPath   = flag.String("config", "", "Path to a Simulator configuration file (JSON or YAML); defaults built in if empty")
	maxCycles    = flag.Uint64("max-cycles", 0, "Stop after this many cycles (0 = unbounded)")
	maxCPUInst   = flag.Uint64("max-inst", 0, "Stop after this many committed instructions globally (0 = unbounded)")
	maxWallTime  = flag.Duration("max-time", 0, "Stop after this much wall-clock time (0 = unbounded)")
	tracePath    = flag.String("trace", "", "Write a per-cycle CSV event trace to this path")
	reportPath   = flag.String("report", "", "Write the INI-style report to this path (default: stdout)")
	verbose      = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: oosim [options] <workload.json>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	workloadPath := flag.Arg(0)

	workload, err := frontend.LoadWorkloadFile(workloadPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading workload: %v\n", err)
		os.Exit(1)
	}

	cfg := config.Default()
	if *configPath != "" {
		cfg, err = config.LoadFile(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		fmt.Printf("Loaded workload: %s (%d threads)\n", workloadPath, len(workload.Threads))
		fmt.Printf("Cores: %d  Threads/core: %d  FastForward: %d\n",
			cfg.General.Cores, cfg.General.Threads, cfg.General.FastForward)
	}

	rep, term, err := run(cfg, workload)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Simulation error: %v\n", err)
		os.Exit(1)
	}

	out := os.Stdout
	if *reportPath != "" {
		f, ferr := os.Create(*reportPath)
		if ferr != nil {
			fmt.Fprintf(os.Stderr, "Error creating report file: %v\n", ferr)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	fmt.Fprintf(out, "Termination: %s\n\n", term)
	if err := report.WriteINI(out, rep); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
		os.Exit(1)
	}

	if term == termStall {
		os.Exit(1)
	}
}

// termination names the global end-of-simulation condition exposed to
// the driver (spec.md §6 "Termination codes: ContextsFinished,
// MaxCPUInst, MaxCPUCycles, MaxTime, Signal, Stall").
type termination int

const (
	termContextsFinished termination = iota
	termMaxCPUInst
	termMaxCPUCycles
	termMaxTime
	termSignal
	termStall
)

func (t termination) String() string {
	switch t {
	case termContextsFinished:
		return "ContextsFinished"
	case termMaxCPUInst:
		return "MaxCPUInst"
	case termMaxCPUCycles:
		return "MaxCPUCycles"
	case termMaxTime:
		return "MaxTime"
	case termSignal:
		return "Signal"
	case termStall:
		return "Stall"
	default:
		return "Unknown"
	}
}

// run builds the core/scheduler topology from cfg, submits one
// ReferenceContext per workload thread, and drives the simulation to one
// of the termination conditions spec.md §5/§6 name.
func run(cfg *config.Simulator, workload *frontend.Workload) (report.Report, termination, error) {
	pool := uop.NewPool()
	// Directory sizing has no dedicated configuration section (spec.md §6
	// lists none for it); 1024 sets x 4-way x 64-byte blocks is a
	// conventional L1-adjacent directory size independent of pipeline
	// tuning knobs.
	dir := coherence.New(coherence.Config{Sets: 1024, Associativity: 4, BlockSize: 64})

	cores := make([]*core.Core, cfg.General.Cores)
	for i := range cores {
		cores[i] = core.NewCore(i, cfg, pool, dir)
	}

	var trc *report.TraceWriter
	if *tracePath != "" {
		f, err := os.Create(*tracePath)
		if err != nil {
			return report.Report{}, termStall, fmt.Errorf("opening trace file: %w", err)
		}
		defer f.Close()
		trc = report.NewTraceWriter(f)
		for _, c := range cores {
			c.SetTraceWriter(trc)
		}
	}

	scheduler := sched.New(cores, cfg.General)
	for i, tp := range workload.Threads {
		ctx := frontend.NewReferenceContext(i, tp.Program(), pool, tp.StartEIP)
		fastForward(ctx, pool, cfg.General.FastForward)
		scheduler.Submit(ctx)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)

	start := time.Now()
	var cycle uint64
	term := termContextsFinished

loop:
	for {
		select {
		case <-sigCh:
			term = termSignal
			break loop
		default:
		}
		if *maxCycles > 0 && cycle >= *maxCycles {
			term = termMaxCPUCycles
			break
		}
		if *maxWallTime > 0 && time.Since(start) >= *maxWallTime {
			term = termMaxTime
			break
		}
		if *maxCPUInst > 0 && globalCommitted(cores) >= *maxCPUInst {
			term = termMaxCPUInst
			break
		}
		if allContextsDone(cores, scheduler) {
			term = termContextsFinished
			break
		}

		for _, c := range cores {
			c.Tick()
		}
		cycle++
		drainFinished(cores)

		if err := scheduler.Tick(); err != nil {
			term = termStall
			break
		}
	}

	if trc != nil {
		trc.Flush()
	}

	return buildReport(cores), term, nil
}

// fastForward runs ctx functionally, with timing disabled, for the first
// n committed instructions (spec.md §6 General.FastForward, Multi2Sim's
// p->fastfwd skip). The produced uops never enter a structural queue, so
// they are immediately destroyable.
func fastForward(ctx frontend.Context, pool *uop.Pool, n int) {
	for i := 0; i < n; i++ {
		uops := ctx.ExecuteInst(false)
		if len(uops) == 0 {
			return
		}
		for _, u := range uops {
			ctx.Commit(u.EIP)
			pool.Free(u.Seq, true)
		}
	}
}

// drainFinished unmaps any hardware thread whose context has run out of
// instructions and whose in-flight uops have fully retired, regardless of
// the scheduler's context_switch policy: this is simulation-end
// housekeeping, not a dynamic-mode eviction (spec.md §5 "all contexts
// finished" must be externally observable even in static mode).
func drainFinished(cores []*core.Core) {
	for _, c := range cores {
		for t := 0; t < c.NumThreads(); t++ {
			if c.Mapped(t) && c.Finished(t) && c.Idle(t) {
				c.UnmapContext(t)
			}
		}
	}
}

func allContextsDone(cores []*core.Core, s *sched.Scheduler) bool {
	if s.Pending() > 0 || s.Allocated() > 0 {
		return false
	}
	for _, c := range cores {
		for t := 0; t < c.NumThreads(); t++ {
			if c.Mapped(t) {
				return false
			}
		}
	}
	return true
}

func globalCommitted(cores []*core.Core) uint64 {
	var total uint64
	for _, c := range cores {
		total += c.Snapshot().Committed
	}
	return total
}

func buildReport(cores []*core.Core) report.Report {
	rep := report.Report{}
	for _, c := range cores {
		cs := c.Snapshot()
		rep.Cores = append(rep.Cores, cs)
		rep.GlobalCommitted += cs.Committed
		if cs.Cycles > rep.GlobalCycles {
			rep.GlobalCycles = cs.Cycles
		}
	}
	return rep
}
