package core

import (
	"github.com/sarchlab/oosim/config"
	"github.com/sarchlab/oosim/report"
	"github.com/sarchlab/oosim/uop"
)

// doWriteback drains the event queue of everything due this cycle,
// broadcasts register-ready wakeups, and defers any mispredict recovery
// until after the drain completes (spec.md §4.6).
func (c *Core) doWriteback() {
	for {
		ev, ok := c.events.PopIfDue(c.cycle)
		if !ok {
			break
		}
		u := c.pool.Get(ev.Seq)
		if u == nil {
			continue
		}
		u.Status.Completed = true

		renamer := c.renamers[u.Thread]
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

		c.trc.Emit(c.cycle, u.Seq, report.ActionWriteback)

		if isMispredictedBranch(u) && c.cfg.General.RecoverKind == config.RecoverWriteback {
			c.recoverPending = append(c.recoverPending, u.Thread)
		}
	}
}

// isMispredictedBranch reports whether a non-speculative control uop
// resolved to a different successor PC than it was predicted (spec.md
// §4.6 step 3).
func isMispredictedBranch(u *uop.Uop) bool {
	return u.Class.Has(uop.ClassCtrl) && !u.SpecMode && u.NEIP != u.PredNEIP
}
