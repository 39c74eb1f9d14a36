// Package report assembles the end-of-run statistics report (spec.md §6
// "Report output") and the optional per-cycle trace stream (spec.md §6
// "Persisted state").
package report

import (
	"github.com/sarchlab/oosim/fu"
	"github.com/sarchlab/oosim/uop"
)

// DispatchStallBuckets counts why a dispatch slot failed to admit a uop
// (spec.md §4.4 step 1, bucket names taken from original_source/
// cpukernel.h's di_stall_* counters verbatim).
type DispatchStallBuckets struct {
	Used   uint64
	Spec   uint64
	UopQ   uint64
	Rob    uint64
	IQ     uint64
	LSQ    uint64
	Rename uint64
	Ctx    uint64
}

// Total sums every bucket, useful for computing percentages.
func (d DispatchStallBuckets) Total() uint64 {
	return d.Used + d.Spec + d.UopQ + d.Rob + d.IQ + d.LSQ + d.Rename + d.Ctx
}

// BranchStats tracks branch outcomes (spec.md §6 "{Branches, Squashed,
// Mispred, PredAcc}").
type BranchStats struct {
	Branches uint64
	Squashed uint64
	Mispred  uint64
}

// PredAcc returns the prediction accuracy percentage.
func (b BranchStats) PredAcc() float64 {
	if b.Branches == 0 {
		return 0
	}
	return 100 * float64(b.Branches-b.Mispred) / float64(b.Branches)
}

// StructureStats tracks one structural resource's occupancy over the run
// (spec.md §6 "per-structure {Size, Occupancy, Full, Reads, Writes}").
type StructureStats struct {
	Size      int
	Occupancy uint64 // cumulative occupancy-cycles, for averaging
	Full      uint64 // cycles observed completely full
	Reads     uint64
	Writes    uint64
}

// AverageOccupancy divides cumulative occupancy by the number of cycles
// sampled.
func (s StructureStats) AverageOccupancy(cycles uint64) float64 {
	if cycles == 0 {
		return 0
	}
	return float64(s.Occupancy) / float64(cycles)
}

// UopHistogram counts committed/dispatched/issued uops by class.
type UopHistogram struct {
	Int, Logic, FP, Mem, Ctrl uint64
}

func (h *UopHistogram) Total() uint64 {
	return h.Int + h.Logic + h.FP + h.Mem + h.Ctrl
}

// Add tallies one uop of the given class into the histogram. Mem and Ctrl
// are checked first since a uop's Class bitset may also carry INT/FP for
// an address computation or flag-setting compare.
func (h *UopHistogram) Add(c uop.Class) {
	switch {
	case c.Has(uop.ClassMem):
		h.Mem++
	case c.Has(uop.ClassCtrl):
		h.Ctrl++
	case c.Has(uop.ClassFP):
		h.FP++
	case c.Has(uop.ClassLogic):
		h.Logic++
	default:
		h.Int++
	}
}

// ThreadStats is the per-thread section of the report.
type ThreadStats struct {
	Thread         int
	Dispatched     UopHistogram
	Issued         UopHistogram
	Committed      UopHistogram
	DispatchStalls DispatchStallBuckets
	Branch         BranchStats
}

// CoreStats is the per-core section of the report: its own histograms
// plus the threads mapped to it, the functional-unit pool, and structural
// occupancy.
type CoreStats struct {
	Core            int
	Cycles          uint64
	Committed       uint64
	Threads         []ThreadStats
	FunctionalUnits map[fu.Class]fu.Stats
	ROB             StructureStats
	IQ              StructureStats
	LSQ             StructureStats
}

// IPC returns instructions committed per cycle for this core.
func (c CoreStats) IPC() float64 {
	if c.Cycles == 0 {
		return 0
	}
	return float64(c.Committed) / float64(c.Cycles)
}

// DutyCycle returns the fraction of (cycle, commit-slot-width) pairs that
// actually committed a uop (spec.md §6 "IPC and duty cycle").
func (c CoreStats) DutyCycle(commitWidth int) float64 {
	if c.Cycles == 0 || commitWidth <= 0 {
		return 0
	}
	return float64(c.Committed) / (float64(c.Cycles) * float64(commitWidth))
}

// Report is the top-level statistics document (spec.md §6 "Report output:
// global counts, per-core and per-thread ...").
type Report struct {
	GlobalCycles    uint64
	GlobalCommitted uint64
	Cores           []CoreStats
}

// GlobalIPC returns instructions committed per cycle across the whole run.
func (r Report) GlobalIPC() float64 {
	if r.GlobalCycles == 0 {
		return 0
	}
	return float64(r.GlobalCommitted) / float64(r.GlobalCycles)
}
