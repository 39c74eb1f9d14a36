package report

import (
	"fmt"
	"io"
)

// WriteINI renders r as the textual INI-style report spec.md §6
// describes, following the teacher's own manual fmt.Fprintf reporting in
// cmd/m2sim/main.go rather than a templating or INI-writer library (no
// pack example imports one).
func WriteINI(w io.Writer, r Report) error {
	fmt.Fprintf(w, "[Global]\n")
	fmt.Fprintf(w, "Cycles = %d\n", r.GlobalCycles)
	fmt.Fprintf(w, "Committed = %d\n", r.GlobalCommitted)
	fmt.Fprintf(w, "IPC = %.4f\n\n", r.GlobalIPC())

	for _, core := range r.Cores {
		fmt.Fprintf(w, "[Core %d]\n", core.Core)
		fmt.Fprintf(w, "Cycles = %d\n", core.Cycles)
		fmt.Fprintf(w, "Committed = %d\n", core.Committed)
		fmt.Fprintf(w, "IPC = %.4f\n\n", core.IPC())

		fmt.Fprintf(w, "[Core %d.ROB]\n", core.Core)
		writeStructure(w, core.ROB, core.Cycles)
		fmt.Fprintf(w, "[Core %d.IQ]\n", core.Core)
		writeStructure(w, core.IQ, core.Cycles)
		fmt.Fprintf(w, "[Core %d.LSQ]\n", core.Core)
		writeStructure(w, core.LSQ, core.Cycles)

		for class, stats := range core.FunctionalUnits {
			fmt.Fprintf(w, "[Core %d.FU.%d]\n", core.Core, class)
			fmt.Fprintf(w, "Accesses = %d\n", stats.Accesses)
			fmt.Fprintf(w, "Denied = %d\n", stats.Denied)
			fmt.Fprintf(w, "WaitingTime = %d\n\n", stats.WaitingTime)
		}

		for _, t := range core.Threads {
			fmt.Fprintf(w, "[Core %d.Thread %d]\n", core.Core, t.Thread)
			fmt.Fprintf(w, "Dispatched.Int = %d\n", t.Dispatched.Int)
			fmt.Fprintf(w, "Dispatched.Logic = %d\n", t.Dispatched.Logic)
			fmt.Fprintf(w, "Dispatched.FP = %d\n", t.Dispatched.FP)
			fmt.Fprintf(w, "Dispatched.Mem = %d\n", t.Dispatched.Mem)
			fmt.Fprintf(w, "Dispatched.Ctrl = %d\n", t.Dispatched.Ctrl)
			fmt.Fprintf(w, "Issued.Total = %d\n", t.Issued.Total())
			fmt.Fprintf(w, "Committed.Total = %d\n", t.Committed.Total())
			fmt.Fprintf(w, "Branches = %d\n", t.Branch.Branches)
			fmt.Fprintf(w, "Squashed = %d\n", t.Branch.Squashed)
			fmt.Fprintf(w, "Mispred = %d\n", t.Branch.Mispred)
			fmt.Fprintf(w, "PredAcc = %.2f\n", t.Branch.PredAcc())
			fmt.Fprintf(w, "DispatchStall.used = %d\n", t.DispatchStalls.Used)
			fmt.Fprintf(w, "DispatchStall.spec = %d\n", t.DispatchStalls.Spec)
			fmt.Fprintf(w, "DispatchStall.uopq = %d\n", t.DispatchStalls.UopQ)
			fmt.Fprintf(w, "DispatchStall.rob = %d\n", t.DispatchStalls.Rob)
			fmt.Fprintf(w, "DispatchStall.iq = %d\n", t.DispatchStalls.IQ)
			fmt.Fprintf(w, "DispatchStall.lsq = %d\n", t.DispatchStalls.LSQ)
			fmt.Fprintf(w, "DispatchStall.rename = %d\n", t.DispatchStalls.Rename)
			fmt.Fprintf(w, "DispatchStall.ctx = %d\n\n", t.DispatchStalls.Ctx)
		}
	}
	return nil
}

func writeStructure(w io.Writer, s StructureStats, cycles uint64) {
	fmt.Fprintf(w, "Size = %d\n", s.Size)
	fmt.Fprintf(w, "AverageOccupancy = %.2f\n", s.AverageOccupancy(cycles))
	fmt.Fprintf(w, "Full = %d\n", s.Full)
	fmt.Fprintf(w, "Reads = %d\n", s.Reads)
	fmt.Fprintf(w, "Writes = %d\n\n", s.Writes)
}
