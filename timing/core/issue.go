package core

import (
	"github.com/sarchlab/oosim/config"
	"github.com/sarchlab/oosim/eventq"
	"github.com/sarchlab/oosim/fu"
	"github.com/sarchlab/oosim/report"
	"github.com/sarchlab/oosim/uop"
)

// issueCandidates mirrors dispatchCandidates (spec.md §4.5 "Policies
// Shared | TimeSlice are analogous to dispatch").
func (c *Core) issueCandidates() []int {
	if c.cfg.Pipeline.IssueKind == config.PolicyTimeSlice {
		t := c.pickRoundRobin(&c.rrIssue)
		if t < 0 {
			return nil
		}
		return []int{t}
	}
	out := make([]int, 0, len(c.threads))
	for i, th := range c.threads {
		if th.mapped {
			out = append(out, i)
		}
	}
	return out
}

func (c *Core) doIssue() {
	budget := c.cfg.Pipeline.IssueWidth
	for _, t := range c.issueCandidates() {
		if budget <= 0 {
			break
		}
		budget -= c.issueNonMemory(t, budget)
	}

	budget = c.cfg.Pipeline.IssueWidth
	for _, t := range c.issueCandidates() {
		if budget <= 0 {
			break
		}
		budget -= c.issueMemory(t, budget)
	}
}

// uopReady reports whether every physical input of u has completed.
func (c *Core) uopReady(t int, u *uop.Uop) bool {
	renamer := c.renamers[t]
	return u.ReadyToIssue(func(phys int, file uop.RegFile) bool {
		if file == uop.FileFP {
			return renamer.FP.Pending(phys)
		}
		return renamer.Int.Pending(phys)
	})
}

// issueNonMemory scans the IQ in dispatch order and issues ready uops
// (spec.md §4.5 "Non-memory issue").
func (c *Core) issueNonMemory(t, budget int) int {
	th := c.threads[t]
	issued := 0
	for _, seq := range c.iq.InDispatchOrder(t) {
		if issued >= budget {
			break
		}
		u := c.pool.Get(seq)
		if u == nil || !c.uopReady(t, u) {
			continue
		}

		class := fuClassFor(u)
		opLat, ok := c.fus.Reserve(class, c.cycle)
		if !ok {
			continue
		}

		c.events.Insert(eventq.Event{When: c.cycle + opLat, DiSeq: u.DiSeq, Seq: u.Seq})
		u.Status.Issued = true
		u.Membership.InIQ = false
		c.iq.Remove(t, seq)
		th.stats.Issued.Add(u.Class)
		c.trc.Emit(c.cycle, u.Seq, report.ActionIssue)
		issued++
	}
	return issued
}

// issueMemory scans the load and store queues, respecting store-to-load
// ordering (spec.md §4.5 "Memory issue"). Address computation below the
// L1 boundary is out of scope (spec.md §1), so resolution is modeled as
// immediate once an EffAddr unit is free, with loads completing through
// the same event queue as other uops and stores completing immediately
// (their directory update happens at commit).
func (c *Core) issueMemory(t, budget int) int {
	th := c.threads[t]
	issued := 0

	// DiSeq of the oldest store whose address has not resolved yet.
	var blockingStore uint64
	haveBlockingStore := false
	for _, seq := range c.sq.InProgramOrder(t) {
		u := c.pool.Get(seq)
		if u != nil && !u.Status.Issued {
			blockingStore, haveBlockingStore = u.DiSeq, true
			break
		}
	}

	for _, seq := range c.lq.InProgramOrder(t) {
		if issued >= budget {
			break
		}
		u := c.pool.Get(seq)
		if u == nil || u.Status.Issued {
			continue
		}
		if haveBlockingStore && u.DiSeq > blockingStore {
			break // an older, unresolved store might alias this load
		}
		opLat, ok := c.fus.Reserve(fu.EffAddr, c.cycle)
		if !ok {
			continue
		}
		c.events.Insert(eventq.Event{When: c.cycle + opLat, DiSeq: u.DiSeq, Seq: u.Seq})
		u.Status.Issued = true
		th.stats.Issued.Add(u.Class)
		c.trc.Emit(c.cycle, u.Seq, report.ActionMemory)
		issued++
	}

	for _, seq := range c.sq.InProgramOrder(t) {
		if issued >= budget {
			break
		}
		u := c.pool.Get(seq)
		if u == nil || u.Status.Issued {
			continue
		}
		opLat, ok := c.fus.Reserve(fu.EffAddr, c.cycle)
		if !ok {
			continue
		}
		u.Status.Issued = true
		u.Status.Completed = true // stores complete immediately; committed data lands at commit
		c.events.Insert(eventq.Event{When: c.cycle + opLat, DiSeq: u.DiSeq, Seq: u.Seq})
		th.stats.Issued.Add(u.Class)
		c.trc.Emit(c.cycle, u.Seq, report.ActionMemory)
		issued++
	}
	return issued
}

// fuClassFor picks the functional-unit class a non-memory uop occupies.
// Classification beyond the coarse uop.Class bitset (e.g. int add vs
// multiply) is opcode-specific and out of scope for this simulator's
// uop model (spec.md §1 "Functional ISA emulation... out of scope"), so
// every class maps to its simplest representative unit.
func fuClassFor(u *uop.Uop) fu.Class {
	switch {
	case u.Class.Has(uop.ClassFP):
		return fu.FpSimple
	case u.Class.Has(uop.ClassLogic):
		return fu.Logic
	default:
		return fu.IntAdd
	}
}
