package core

import (
	"github.com/sarchlab/oosim/eventq"
	"github.com/sarchlab/oosim/uop"
)

// recover runs the mis-speculation recovery protocol for thread t
// (spec.md §4.8), triggered by a control uop resolved on the wrong path.
func (c *Core) recover(t int) {
	th := c.threads[t]

	c.purgeQueue(&th.fetchQueue)
	c.purgeQueue(&th.uopQueue)

	// Walk the ROB tail to head (youngest to oldest), exactly the reverse
	// order entries were dispatched in, so two squashed uops that renamed
	// the same logical register roll back the RAT in the order that
	// restores it to its prior state (spec.md §4.8 step 2-3). Each
	// speculative entry is removed from whichever structural queue (if
	// any) still holds it before its rename is undone; an issued
	// non-memory uop has already left the IQ, while loads and stores stay
	// in the LQ/SQ until commit. Stop at the first non-speculative
	// entry: that is the resolved branch itself (or older), which must
	// remain for ordinary commit.
	for {
		tailSeq, ok := c.robq.PopTail(t)
		if !ok {
			break
		}
		u := c.pool.Get(tailSeq)
		if u == nil {
			continue
		}
		if !u.SpecMode {
			c.robq.Push(t, tailSeq)
			break
		}
		c.removeFromIssueQueues(t, u)
		c.squashROBEntry(t, u)
		th.stats.Branch.Squashed++
	}

	c.events.RemoveIf(func(e eventq.Event) bool {
		u := c.pool.Get(e.Seq)
		return u == nil || (u.Thread == t && u.SpecMode)
	})

	if c.trace != nil && th.traceBuilder != nil {
		th.traceBuilder.Flush(c.trace)
	}

	th.specDepth = 0
	th.ctx.Recover()
	th.fetchStallUntil = c.cycle + uint64(c.cfg.General.RecoverPenalty)
	th.fetchEIP = th.ctx.EIP()
}

func (c *Core) purgeQueue(q *[]*uop.Uop) {
	for _, u := range *q {
		u.Membership.InFetchQ = false
		u.Membership.InUopQ = false
		c.pool.Free(u.Seq, true)
	}
	*q = nil
}

// removeFromIssueQueues removes u from whichever of the IQ/LQ/SQ it is
// still resident in, per its membership flags (an issued non-memory uop
// has already left the IQ; loads and stores stay in the LQ/SQ until
// commit).
func (c *Core) removeFromIssueQueues(t int, u *uop.Uop) {
	if u.Membership.InIQ {
		c.iq.Remove(t, u.Seq)
	}
	if u.Membership.InLQ {
		c.lq.Remove(t, u.Seq)
	}
	if u.Membership.InSQ {
		c.sq.Remove(t, u.Seq)
	}
}

// squashROBEntry undoes a single speculative uop's rename and releases its
// storage (spec.md §4.8 step 2). The caller is responsible for removing it
// from whichever structural queue it was found in; membership flags for
// the ROB and event queue are cleared here since every squashed path
// passes through this function exactly once.
func (c *Core) squashROBEntry(t int, u *uop.Uop) {
	if !u.Status.Completed {
		renamer := c.renamers[t]
		for i := 0; i < u.NumOutputs; i++ {
			phys := u.OutputsPhys[i]
			if phys < 0 {
				continue
			}
			if fileFor(renamer, u.OutputsLog[i]) == renamer.FP {
				renamer.FP.SetPending(phys, false)
			} else {
				renamer.Int.SetPending(phys, false)
			}
		}
	}

	renamer := c.renamers[t]
	for i := 0; i < u.NumOutputs; i++ {
		file := fileFor(renamer, u.OutputsLog[i])
		file.Rollback(int(u.OutputsLog[i]), u.OutputsPhys[i], u.OutputsPrev[i])
	}

	u.Membership = uop.Membership{}
	c.pool.Free(u.Seq, true)
}
