// Package fu implements the functional-unit pool: the issue-latency and
// occupancy model backing ALU/FP/memory-address execution (spec.md §3
// "Functional-unit pool", component C5).
package fu

// Class names one functional-unit type.
type Class int

const (
	IntAdd Class = iota
	IntMult
	IntDiv
	EffAddr
	Logic
	FpSimple
	FpAdd
	FpMult
	FpDiv
	FpComplex

	numClasses
)

// NumClasses is the number of functional-unit classes, for callers that
// need to iterate every class (e.g. report snapshotting).
const NumClasses = int(numClasses)

// Spec configures one functional-unit class (spec.md §6
// FunctionalUnits.<Class>).
type Spec struct {
	Count        int
	OpLatency    uint64
	IssueLatency uint64
}

// Stats accumulates per-class functional-unit statistics for the report
// (spec.md §6 "per-functional-unit").
type Stats struct {
	Accesses    uint64
	Denied      uint64
	WaitingTime uint64
}

// Pool is the per-core set of functional-unit instances.
type Pool struct {
	specs     [numClasses]Spec
	freeCycle [numClasses][]uint64
	stats     [numClasses]Stats
}

// NewPool builds a functional-unit pool from a spec per class. Classes
// omitted from specs default to a single instance with 1-cycle latency.
func NewPool(specs map[Class]Spec) *Pool {
	p := &Pool{}
	for c := Class(0); c < numClasses; c++ {
		s, ok := specs[c]
		if !ok {
			s = Spec{Count: 1, OpLatency: 1, IssueLatency: 1}
		}
		p.specs[c] = s
		p.freeCycle[c] = make([]uint64, s.Count)
	}
	return p
}

// Reserve attempts to reserve one instance of class c at currentCycle: it
// picks the instance whose free_cycle is the smallest value that is still
// <= currentCycle (spec.md §4.5 "pick the one whose free_cycle ≤
// current_cycle with the smallest free_cycle"). On success it advances
// that instance's free_cycle by IssueLatency and returns the class's
// OpLatency (the caller schedules completion at currentCycle+opLatency).
// ok is false if every instance is busy, in which case Denied is counted.
func (p *Pool) Reserve(c Class, currentCycle uint64) (opLatency uint64, ok bool) {
	p.stats[c].Accesses++

	best := -1
	for i, fc := range p.freeCycle[c] {
		if fc <= currentCycle {
			if best == -1 || fc < p.freeCycle[c][best] {
				best = i
			}
		}
	}
	if best == -1 {
		p.stats[c].Denied++
		return 0, false
	}

	p.freeCycle[c][best] = currentCycle + p.specs[c].IssueLatency
	return p.specs[c].OpLatency, true
}

// RecordWait adds to a class's cumulative waiting-time statistic: the
// number of cycles a uop spent trying to issue before Reserve succeeded
// (spec.md §6 "WaitingTime").
func (p *Pool) RecordWait(c Class, cycles uint64) {
	p.stats[c].WaitingTime += cycles
}

// Stats returns the accumulated statistics for class c.
func (p *Pool) Stats(c Class) Stats { return p.stats[c] }
