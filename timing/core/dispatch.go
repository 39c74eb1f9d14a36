package core

import (
	"github.com/sarchlab/oosim/config"
	"github.com/sarchlab/oosim/rat"
	"github.com/sarchlab/oosim/report"
	"github.com/sarchlab/oosim/uop"
)

// dispatchCandidates returns the thread indices allowed to dispatch this
// cycle (spec.md §4.4 "Dispatch policies Shared | TimeSlice").
func (c *Core) dispatchCandidates() []int {
	if c.cfg.Pipeline.DispatchKind == config.PolicyTimeSlice {
		t := c.pickRoundRobin(&c.rrDispatch)
		if t < 0 {
			return nil
		}
		return []int{t}
	}
	out := make([]int, 0, len(c.threads))
	for i := range c.threads {
		out = append(out, i)
	}
	return out
}

func (c *Core) doDispatch() {
	budget := c.cfg.Pipeline.DispatchWidth
	for _, t := range c.dispatchCandidates() {
		if budget <= 0 {
			break
		}
		budget -= c.dispatchThread(t, budget)
	}
}

func (c *Core) dispatchThread(t, budget int) int {
	th := c.threads[t]
	dispatched := 0
	for dispatched < budget {
		if len(th.uopQueue) == 0 {
			th.stats.DispatchStalls.UopQ++
			break
		}
		u := th.uopQueue[0]

		if !c.robq.HasFree(t) {
			th.stats.DispatchStalls.Rob++
			break
		}
		isMem := u.Class.Has(uop.ClassMem)
		if isMem {
			if memIsLoad(u) && !c.lq.HasFree(t) {
				th.stats.DispatchStalls.LSQ++
				break
			}
			if !memIsLoad(u) && !c.sq.HasFree(t) {
				th.stats.DispatchStalls.LSQ++
				break
			}
		} else if !c.iq.HasFree(t) {
			th.stats.DispatchStalls.IQ++
			break
		}
		if !th.mapped || th.evictPending {
			th.stats.DispatchStalls.Ctx++
			break
		}
		if !c.rename(t, u) {
			th.stats.DispatchStalls.Rename++
			break
		}

		th.uopQueue = th.uopQueue[1:]
		u.Membership.InUopQ = false
		c.diSeq++
		u.DiSeq = c.diSeq
		c.robq.Push(t, u.Seq)
		u.Membership.InROB = true
		if isMem {
			if memIsLoad(u) {
				c.lq.Push(t, u.Seq)
				u.Membership.InLQ = true
			} else {
				c.sq.Push(t, u.Seq)
				u.Membership.InSQ = true
			}
		} else {
			c.iq.Push(t, u.Seq)
			u.Membership.InIQ = true
		}

		if u.SpecMode {
			th.stats.DispatchStalls.Spec++
		} else {
			th.stats.DispatchStalls.Used++
		}
		th.stats.Dispatched.Add(u.Class)
		c.trc.Emit(c.cycle, u.Seq, report.ActionDispatch)
		u.CheckInvariants()
		dispatched++
	}
	return dispatched
}

// memIsLoad classifies a memory uop as a load (reads Mem, never writes a
// logical output other than its data temporary) vs a store. The reference
// frontend marks stores by giving them no logical output at all.
func memIsLoad(u *uop.Uop) bool { return u.NumOutputs > 0 }

// rename allocates physical registers for u's outputs and translates its
// inputs through the RAT (spec.md §4.4 step 2).
func (c *Core) rename(t int, u *uop.Uop) bool {
	renamer := c.renamers[t]

	// Admission check first: verify enough free registers exist before
	// mutating any state, so a mid-uop failure never leaves a partial
	// rename (spec.md §4.4 step 1 "rename" stall bucket).
	intNeeded, fpNeeded := 0, 0
	for i := 0; i < u.NumOutputs; i++ {
		if uop.FileOf(u.OutputsLog[i]) == uop.FileFP {
			fpNeeded++
		} else {
			intNeeded++
		}
	}
	if renamer.Int.FreeCount() < intNeeded || renamer.FP.FreeCount() < fpNeeded {
		return false
	}

	for i := 0; i < u.NumInputs; i++ {
		logical := int(u.InputsLog[i])
		if u.InputsLog[i] == uop.RegNone {
			u.InputsPhys[i] = -1
			continue
		}
		file := fileFor(renamer, u.InputsLog[i])
		u.InputsPhys[i] = file.RenameInput(logical)
	}
	for i := 0; i < u.NumOutputs; i++ {
		logical := int(u.OutputsLog[i])
		file := fileFor(renamer, u.OutputsLog[i])
		newPhys, prevPhys, ok := file.RenameOutput(logical)
		if !ok {
			return false // shouldn't happen given the admission check above
		}
		u.OutputsPhys[i] = newPhys
		u.OutputsPrev[i] = prevPhys
	}
	return true
}

func fileFor(r *rat.Renamer, logical uop.LogicalReg) *rat.File {
	if uop.FileOf(logical) == uop.FileFP {
		return r.FP
	}
	return r.Int
}
