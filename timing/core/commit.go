package core

import (
	"github.com/sarchlab/oosim/bpred"
	"github.com/sarchlab/oosim/config"
	"github.com/sarchlab/oosim/report"
	"github.com/sarchlab/oosim/tracecache"
	"github.com/sarchlab/oosim/uop"
)

// updateDirectory synchronizes a retiring memory uop's address against the
// coherence directory: a store claims exclusive ownership, a load joins
// the sharer set (spec.md §4.5 "issue a non-blocking access ... stores ...
// update the directory at commit", §4.12).
func (c *Core) updateDirectory(u *uop.Uop) {
	if c.dir == nil {
		return
	}
	idx, _ := c.dir.Acquire(u.Mem.Addr)
	if memIsLoad(u) {
		c.dir.SetSharer(idx, c.id)
		return
	}
	c.dir.ClearAllSharers(idx)
	c.dir.SetOwner(idx, c.id)
	c.dir.SetSharer(idx, c.id)
}

// branchKind maps a uop's BTB source class to the trace-cache's
// termination classification (spec.md §4.10). No uop in this model is
// classified as an indirect jump distinct from a conditional/unconditional
// one (the reference frontend carries no such distinction, spec.md §1
// "Functional ISA emulation... out of scope"), so only Call/Return get a
// dedicated kind.
func branchKind(s uop.BranchSource) tracecache.BranchKind {
	switch s {
	case uop.SourceCall:
		return tracecache.Call
	case uop.SourceReturn:
		return tracecache.Return
	default:
		return tracecache.DirectBranch
	}
}

// commitCandidates mirrors dispatchCandidates (spec.md §4.7 "Commit
// policies Shared | TimeSlice select threads").
func (c *Core) commitCandidates() []int {
	if c.cfg.Pipeline.CommitKind == config.PolicyTimeSlice {
		t := c.pickRoundRobin(&c.rrCommit)
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

func (c *Core) doCommit() {
	budget := c.cfg.Pipeline.CommitWidth
	for _, t := range c.commitCandidates() {
		if budget <= 0 {
			break
		}
		budget -= c.commitThread(t, budget)
	}
}

func (c *Core) commitThread(t, budget int) int {
	th := c.threads[t]
	committed := 0
	for committed < budget {
		seq, ok := c.robq.PeekHead(t)
		if !ok {
			break
		}
		u := c.pool.Get(seq)
		if u == nil || !u.Status.Completed {
			break
		}

		renamer := c.renamers[t]
		for i := 0; i < u.NumOutputs; i++ {
			file := fileFor(renamer, u.OutputsLog[i])
			file.Retire(u.OutputsPrev[i])
		}
		if u.Class.Has(uop.ClassFP) {
			if u.NumOutputs > 0 {
				renamer.FP.FPPush()
			}
		}

		mispredicted := isMispredictedBranch(u)
		if u.Class.Has(uop.ClassCtrl) && !u.SpecMode {
			c.predictor.Update(bpred.Outcome{
				EIP:    u.EIP,
				Taken:  u.NEIP != u.EIP+4,
				Target: u.NEIP,
				Class:  sourceClass(u.BranchSrc),
			}, bpred.Meta{
				BTBWay:      u.Pred.BTBWay,
				BimodalIdx:  u.Pred.BimodalIdx,
				GlobalHist:  u.Pred.GlobalHist,
				ChoiceIdx:   u.Pred.ChoiceIdx,
				UsedTwoLvl:  u.Pred.UsedTwoLvl,
				PredTaken:   u.Pred.PredTaken,
				RASSnapshot: u.Pred.RASSnapshot,
			})
			th.stats.Branch.Branches++
			if mispredicted {
				th.stats.Branch.Mispred++
			}
		}

		if u.Class.Has(uop.ClassMem) {
			c.updateDirectory(u)
		}

		th.ctx.Commit(u.EIP)
		th.stats.Committed.Add(u.Class)
		c.trc.Emit(c.cycle, u.Seq, report.ActionCommit)

		if c.trace != nil && th.traceBuilder != nil {
			kind := tracecache.NotBranch
			isBranch := u.Class.Has(uop.ClassCtrl)
			if isBranch {
				kind = branchKind(u.BranchSrc)
			}
			th.traceBuilder.Append(c.trace, u.EIP, isBranch, kind, u.NEIP != u.EIP+4, u.EIP+4, u.NEIP)
		}

		c.robq.PopHead(t)
		u.Membership.InROB = false
		if u.Class.Has(uop.ClassMem) {
			if memIsLoad(u) {
				c.lq.Remove(t, u.Seq)
				u.Membership.InLQ = false
			} else {
				c.sq.Remove(t, u.Seq)
				u.Membership.InSQ = false
			}
		}
		c.pool.Free(u.Seq, true)

		if mispredicted && c.cfg.General.RecoverKind == config.RecoverCommit {
			c.recoverPending = append(c.recoverPending, t)
		}

		committed++
	}
	return committed
}
