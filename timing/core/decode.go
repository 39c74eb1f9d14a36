package core

import "github.com/sarchlab/oosim/report"

// doDecode transfers uops from each thread's fetch queue to its uop queue,
// budget decode_width per cycle, round-robin among threads (spec.md §4.3).
func (c *Core) doDecode() {
	budget := c.cfg.Pipeline.DecodeWidth
	n := len(c.threads)
	for i := 0; i < n && budget > 0; i++ {
		t := (c.rrDecode + i) % n
		budget -= c.decodeThread(t, budget)
	}
	c.rrDecode = (c.rrDecode + 1) % n
}

func (c *Core) decodeThread(t, budget int) int {
	th := c.threads[t]
	moved := 0
	for moved < budget && len(th.fetchQueue) > 0 {
		if len(th.uopQueue) >= c.cfg.Queues.UopQueueSize {
			break
		}
		u := th.fetchQueue[0]
		th.fetchQueue = th.fetchQueue[1:]
		u.Membership.InFetchQ = false
		u.Membership.InUopQ = true
		th.uopQueue = append(th.uopQueue, u)
		c.trc.Emit(c.cycle, u.Seq, report.ActionDecode)
		moved++
	}
	return moved
}
