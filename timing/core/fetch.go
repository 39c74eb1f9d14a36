package core

import (
	"github.com/sarchlab/oosim/bpred"
	"github.com/sarchlab/oosim/config"
	"github.com/sarchlab/oosim/frontend"
	"github.com/sarchlab/oosim/report"
	"github.com/sarchlab/oosim/tracecache"
	"github.com/sarchlab/oosim/uop"
)

// fetchCandidates returns the thread indices allowed to fetch this cycle
// under the configured policy (spec.md §4.2 step 1).
func (c *Core) fetchCandidates() []int {
	switch c.cfg.Pipeline.FetchKind {
	case config.PolicyTimeSlice:
		t := c.pickRoundRobin(&c.rrFetch)
		if t < 0 {
			return nil
		}
		return []int{t}
	case config.PolicySwitchOnEvent:
		t := c.pickSwitchOnEvent()
		if t < 0 {
			return nil
		}
		return []int{t}
	default: // Shared
		out := make([]int, 0, len(c.threads))
		for i, th := range c.threads {
			if th.mapped && th.ctx.Status() != frontend.Finished {
				out = append(out, i)
			}
		}
		return out
	}
}

func (c *Core) pickRoundRobin(cursor *int) int {
	n := len(c.threads)
	for i := 0; i < n; i++ {
		t := (*cursor + i) % n
		if c.threads[t].mapped {
			*cursor = (t + 1) % n
			return t
		}
	}
	return -1
}

func (c *Core) pickSwitchOnEvent() int {
	// Stays on thread rrFetch%n while it is mapped and the cycle has reached
	// its switchStallUntil; neither a fetch stall nor ThreadQuantum causes a
	// switch. Otherwise the next mapped thread in round-robin order is
	// returned and its switchStallUntil is set ThreadSwitchPenalty cycles
	// ahead (spec.md §4.2 step 1 SwitchOnEvent).
	n := len(c.threads)
	cur := c.rrFetch % n
	th := c.threads[cur]
	if th.mapped && c.cycle >= th.switchStallUntil {
		return cur
	}
	next := c.pickRoundRobin(&c.rrFetch)
	if next >= 0 && next != cur {
		c.threads[next].switchStallUntil = c.cycle + uint64(c.cfg.General.ThreadSwitchPenalty)
	}
	return next
}

func (c *Core) doFetch() {
	for _, t := range c.fetchCandidates() {
		c.fetchThread(t)
	}
}

func (c *Core) fetchThread(t int) {
	th := c.threads[t]
	if !th.mapped || th.ctx.Status() == frontend.Finished {
		return
	}
	if c.cycle <= th.fetchStallUntil {
		return
	}
	if len(th.fetchQueue) >= c.cfg.Queues.FetchQueueSize {
		return
	}

	if c.trace != nil {
		if tr, hit := c.trace.Lookup(th.fetchEIP, 0); hit {
			c.fetchFromTrace(t, tr)
			return
		}
	}

	specMode := th.specDepth > 0
	uops := th.ctx.ExecuteInst(specMode)
	if len(uops) == 0 {
		return
	}

	for _, u := range uops {
		u.SpecMode = specMode
		u.Thread = t
		u.Core = c.id
		if u.Class.Has(uop.ClassCtrl) {
			c.predictBranch(th, u)
			th.fetchEIP = u.PredNEIP
		} else {
			th.fetchEIP = u.NEIP
		}
		u.Membership.InFetchQ = true
		th.fetchQueue = append(th.fetchQueue, u)
		c.trc.Emit(c.cycle, u.Seq, report.ActionFetch)
	}
}

// fetchFromTrace enqueues every uop of a trace-cache hit directly onto the
// uop queue, bypassing decode bandwidth (spec.md §4.2 step 2).
func (c *Core) fetchFromTrace(t int, tr tracecache.Trace) {
	th := c.threads[t]
	specMode := th.specDepth > 0
	for i := 0; i < tr.UopCount; i++ {
		uops := th.ctx.ExecuteInst(specMode)
		for _, u := range uops {
			u.SpecMode = specMode
			u.Thread = t
			u.Core = c.id
			u.Membership.InUopQ = true
			th.uopQueue = append(th.uopQueue, u)
			c.trc.Emit(c.cycle, u.Seq, report.ActionFetch)
		}
	}
	if tr.TargetEIP != 0 {
		th.fetchEIP = tr.TargetEIP
	} else {
		th.fetchEIP = tr.FallThroughEIP
	}
}

// predictBranch consults the predictor for a control uop fetched this
// cycle and records its metadata for in-order update at commit (spec.md
// §4.2 step 4, §4.9).
func (c *Core) predictBranch(th *Thread, u *uop.Uop) {
	class := sourceClass(u.BranchSrc)
	pred := c.predictor.Lookup(u.EIP, class)

	u.Pred = uop.PredictorMeta{
		BTBWay:      pred.Meta.BTBWay,
		BimodalIdx:  pred.Meta.BimodalIdx,
		GlobalHist:  pred.Meta.GlobalHist,
		ChoiceIdx:   pred.Meta.ChoiceIdx,
		UsedTwoLvl:  pred.Meta.UsedTwoLvl,
		PredTaken:   pred.Taken,
		RASSnapshot: pred.Meta.RASSnapshot,
	}
	switch {
	case c.cfg.BranchPredictor.Kind == config.PredictorPerfect:
		// Perfect consults the frontend's own ground truth for this
		// dynamic instance directly, rather than the table-driven Lookup
		// above: a single eip-keyed oracle can't distinguish two dynamic
		// visits to the same branch with different outcomes (e.g. a loop),
		// but the uop the frontend just produced already carries the true
		// successor (spec.md §4.9 "Perfect: returns actual direction/target").
		u.Pred.PredTaken = u.NEIP != u.EIP+4
		u.PredNEIP = u.NEIP
	case pred.Taken && pred.TargetKnown:
		u.PredNEIP = pred.Target
	case pred.Taken:
		u.PredNEIP = u.TargetNEIP // speculative: assume the ground-truth target until BTB learns it
	default:
		u.PredNEIP = u.EIP + 4
	}

	if u.PredNEIP != u.NEIP {
		th.specDepth++
	}
}

func sourceClass(s uop.BranchSource) bpred.SourceClass {
	switch s {
	case uop.SourceCall:
		return bpred.SourceCall
	case uop.SourceReturn:
		return bpred.SourceReturn
	case uop.SourceCond:
		return bpred.SourceCond
	default:
		return bpred.SourceOther
	}
}
