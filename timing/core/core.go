// Package core wires the structural components (ROB, IQ, LSQ, register
// file, functional-unit pool, event queue, branch predictor, trace cache)
// into the six-stage out-of-order pipeline and drives it one cycle at a
// time, following the teacher's Pipeline.Tick reverse-stage-order shape
// (timing/pipeline/pipeline.go) generalized from a single in-order thread
// to multiple out-of-order hardware threads (spec.md §2, §4.1-§4.7).
package core

import (
	"github.com/sarchlab/oosim/bpred"
	"github.com/sarchlab/oosim/config"
	"github.com/sarchlab/oosim/coherence"
	"github.com/sarchlab/oosim/eventq"
	"github.com/sarchlab/oosim/frontend"
	"github.com/sarchlab/oosim/fu"
	"github.com/sarchlab/oosim/iqueue"
	"github.com/sarchlab/oosim/rat"
	"github.com/sarchlab/oosim/report"
	"github.com/sarchlab/oosim/rob"
	"github.com/sarchlab/oosim/tracecache"
	"github.com/sarchlab/oosim/uop"
)

func robMode(m config.Mode) rob.Mode {
	if m == config.ModeShared {
		return rob.Shared
	}
	return rob.Private
}

func iqMode(m config.Mode) iqueue.Mode {
	if m == config.ModeShared {
		return iqueue.Shared
	}
	return iqueue.Private
}

// Thread is one hardware thread's fetch-through-dispatch bookkeeping. The
// structural queues themselves (ROB/IQ/LSQ) are core-wide and indexed by
// thread id, per spec.md §3 private/shared mode.
type Thread struct {
	ctx    frontend.Context
	mapped bool

	// evictPending is set by the scheduler's dynamic mode while it waits
	// for this thread to drain before freeing its slot; dispatch is
	// suppressed in the meantime (spec.md §4.11 "Dispatch is suppressed
	// on a thread whose eviction signal is pending").
	evictPending bool

	fetchEIP        uint64
	fetchStallUntil uint64
	fetchQueue      []*uop.Uop // produced by the frontend, awaiting decode
	uopQueue        []*uop.Uop // decoded, awaiting dispatch

	specDepth int // count of fetched branches whose predicted successor differs from NEIP; reset by recovery

	traceBuilder *tracecache.Builder

	stats report.ThreadStats

	// switchStallUntil is set by pickSwitchOnEvent (fetch.go) when
	// SwitchOnEvent fetch switches to this thread; before that cycle the
	// thread is not kept as the sticky choice.
	switchStallUntil uint64
}

// Core is one processor core: its private/shared structural resources,
// and the hardware threads mapped onto it (spec.md §2 component list).
type Core struct {
	id  int
	cfg *config.Simulator

	cycle uint64
	diSeq uint64

	pool *uop.Pool

	renamers  []*rat.Renamer // indexed by thread; identical pointer for Shared RfKind
	robq      *rob.ROB
	iq        *iqueue.IQ
	lq        *iqueue.LSQ
	sq        *iqueue.LSQ
	fus       *fu.Pool
	events    *eventq.Queue
	predictor bpred.Predictor
	trace     *tracecache.Cache
	dir       *coherence.Directory

	threads []*Thread

	rrFetch, rrDecode, rrDispatch, rrIssue, rrCommit int

	recoverPending []int // thread indices with a queued recovery this cycle

	trc *report.TraceWriter
}

// NewCore builds a core from cfg, with numThreads hardware threads and no
// contexts mapped yet (the scheduler maps them, spec.md §4.11).
func NewCore(id int, cfg *config.Simulator, pool *uop.Pool, dir *coherence.Directory) *Core {
	q := cfg.Queues
	numThreads := cfg.General.Threads

	c := &Core{
		id:     id,
		cfg:    cfg,
		pool:   pool,
		robq:   rob.New(robMode(q.RobKind), q.RobSize, numThreads),
		iq:     iqueue.NewIQ(iqMode(q.IqKind), q.IqSize, numThreads),
		lq:     iqueue.NewLoadQueue(iqMode(q.LsqKind), q.LsqSize, numThreads),
		sq:     iqueue.NewStoreQueue(iqMode(q.LsqKind), q.LsqSize, numThreads),
		fus:    newFUPool(cfg.FunctionalUnits),
		events: eventq.New(),
		dir:    dir,
	}

	c.predictor = bpred.New(bpredConfig(cfg.BranchPredictor))
	if cfg.TraceCache.Present {
		c.trace = tracecache.New(tracecache.Config{
			Sets:          cfg.TraceCache.Sets,
			Associativity: cfg.TraceCache.Assoc,
			TraceSize:     cfg.TraceCache.TraceSize,
			BranchMax:     cfg.TraceCache.BranchMax,
		})
	}

	c.threads = make([]*Thread, numThreads)
	for t := range c.threads {
		c.threads[t] = &Thread{}
		if c.trace != nil {
			c.threads[t].traceBuilder = tracecache.NewBuilder(tracecache.Config{
				Sets:          cfg.TraceCache.Sets,
				Associativity: cfg.TraceCache.Assoc,
				TraceSize:     cfg.TraceCache.TraceSize,
				BranchMax:     cfg.TraceCache.BranchMax,
			})
		}
	}

	switch q.RfKind {
	case config.ModeShared:
		shared := rat.NewRenamer(q.RfIntSize, q.RfFpSize, numLogicalInt(), numLogicalFP())
		c.renamers = make([]*rat.Renamer, numThreads)
		for t := range c.renamers {
			c.renamers[t] = shared
		}
	default:
		c.renamers = make([]*rat.Renamer, numThreads)
		for t := range c.renamers {
			c.renamers[t] = rat.NewRenamer(q.RfIntSize, q.RfFpSize, numLogicalInt(), numLogicalFP())
		}
	}

	return c
}

// SetTraceWriter attaches an optional per-cycle event tracer (spec.md §6
// "Persisted state": trace file, off by default).
func (c *Core) SetTraceWriter(w *report.TraceWriter) { c.trc = w }

// Both RATs are indexed by the logical register number itself (rename
// passes int(LogicalReg) straight through), so each spans the whole
// logical space.
func numLogicalInt() int { return uop.NumLogicalRegs }
func numLogicalFP() int  { return uop.NumLogicalRegs }

func newFUPool(cfgFU config.FunctionalUnits) *fu.Pool {
	specs := map[fu.Class]fu.Spec{}
	order := []config.FUClass{
		config.FUIntAdd, config.FUIntMult, config.FUIntDiv, config.FUEffAddr, config.FULogic,
		config.FUFpSimple, config.FUFpAdd, config.FUFpMult, config.FUFpDiv, config.FUFpComplex,
	}
	classes := []fu.Class{
		fu.IntAdd, fu.IntMult, fu.IntDiv, fu.EffAddr, fu.Logic,
		fu.FpSimple, fu.FpAdd, fu.FpMult, fu.FpDiv, fu.FpComplex,
	}
	for i, name := range order {
		if s, ok := cfgFU[name]; ok {
			specs[classes[i]] = fu.Spec{Count: s.Count, OpLatency: s.OpLat, IssueLatency: s.IssueLat}
		}
	}
	return fu.NewPool(specs)
}

func bpredConfig(b config.BranchPredictor) bpred.Config {
	kind := bpred.Combined
	switch b.Kind {
	case config.PredictorPerfect:
		kind = bpred.Perfect
	case config.PredictorTaken:
		kind = bpred.Taken
	case config.PredictorNotTaken:
		kind = bpred.NotTaken
	case config.PredictorBimodal:
		kind = bpred.Bimodal
	case config.PredictorTwoLevel:
		kind = bpred.TwoLevel
	case config.PredictorCombined:
		kind = bpred.Combined
	}
	return bpred.Config{
		Kind:                kind,
		BTBSets:             b.BTB.Sets,
		BTBAssoc:            b.BTB.Assoc,
		BimodSize:           b.Bimod.Size,
		ChoiceSize:          b.Choice.Size,
		RASSize:             b.RAS.Size,
		TwoLevelL1Size:      b.TwoLevel.L1Size,
		TwoLevelL2Size:      b.TwoLevel.L2Size,
		TwoLevelHistorySize: b.TwoLevel.HistorySize,
	}
}

// MapContext binds ctx to hardware thread t (spec.md §4.11, invoked by the
// context scheduler).
func (c *Core) MapContext(t int, ctx frontend.Context) {
	th := c.threads[t]
	th.ctx = ctx
	th.mapped = true
	th.fetchEIP = ctx.EIP()
}

// UnmapContext clears hardware thread t, for the scheduler to reassign
// once its pipeline has drained (spec.md §4.11 dynamic mode).
func (c *Core) UnmapContext(t int) {
	th := c.threads[t]
	th.ctx = nil
	th.mapped = false
	th.evictPending = false
}

// RequestEvict marks thread t for eviction: dispatch is suppressed until
// the scheduler observes Idle(t) and calls UnmapContext (spec.md §4.11
// dynamic mode).
func (c *Core) RequestEvict(t int) { c.threads[t].evictPending = true }

// CancelEvict clears a pending eviction request, e.g. if the scheduler
// decides not to proceed with it.
func (c *Core) CancelEvict(t int) { c.threads[t].evictPending = false }

// EvictPending reports whether thread t has a pending eviction request.
func (c *Core) EvictPending(t int) bool { return c.threads[t].evictPending }

// Idle reports whether thread t's fetch/decode/dispatch queues and ROB
// region are empty, the drain condition the scheduler waits for before
// freeing a slot (spec.md §4.11).
func (c *Core) Idle(t int) bool {
	th := c.threads[t]
	return len(th.fetchQueue) == 0 && len(th.uopQueue) == 0 && c.robq.Count(t) == 0
}

// Cycle returns the core's current cycle count.
func (c *Core) Cycle() uint64 { return c.cycle }

// NumThreads returns the number of hardware thread slots this core
// provides, for the scheduler to enumerate candidate slots.
func (c *Core) NumThreads() int { return len(c.threads) }

// Mapped reports whether hardware thread t currently has a context bound.
func (c *Core) Mapped(t int) bool { return c.threads[t].mapped }

// Finished reports whether hardware thread t is mapped to a context that
// has run out of instructions to fetch (spec.md §5 "all contexts
// finished" is one of the global end-of-simulation conditions; callers
// combine this with Idle to know when a finished context's in-flight
// uops have also fully drained and its slot can be freed).
func (c *Core) Finished(t int) bool {
	th := c.threads[t]
	return th.mapped && th.ctx.Status() == frontend.Finished
}

// Tick advances the core by one cycle, invoking stages in reverse pipeline
// order so writes from this cycle never feed a read in the same cycle
// (spec.md §4.1 last bullet).
func (c *Core) Tick() {
	c.cycle++
	c.recoverPending = c.recoverPending[:0]

	c.doCommit()
	c.doWriteback()
	c.doIssue()
	c.doDispatch()
	c.doDecode()
	c.doFetch()

	for _, t := range c.recoverPending {
		c.recover(t)
	}
}

// Snapshot renders the core's accumulated statistics into a report.CoreStats
// (spec.md §6 "Report").
func (c *Core) Snapshot() report.CoreStats {
	cs := report.CoreStats{
		Core:            c.id,
		Cycles:          c.cycle,
		FunctionalUnits: map[fu.Class]fu.Stats{},
	}
	for class := fu.Class(0); class < fu.Class(fu.NumClasses); class++ {
		cs.FunctionalUnits[class] = c.fus.Stats(class)
	}
	for t, th := range c.threads {
		th.stats.Thread = t
		cs.Threads = append(cs.Threads, th.stats)
		cs.Committed += th.stats.Committed.Total()
	}
	return cs
}
