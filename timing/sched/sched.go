// Package sched implements the context scheduler (C15): static and
// dynamic binding of guest contexts to (core, thread) hardware slots
// (spec.md §4.11). It runs between cycles, after every core has ticked,
// generalizing the teacher's single always-mapped pipeline
// (timing/core/core.go's NewCore(regFile, memory) binds its one thread
// for the program's whole lifetime) to a pool of cores each exposing
// several hardware thread slots that guest contexts move in and out of.
package sched

import (
	"fmt"

	"github.com/sarchlab/oosim/config"
	"github.com/sarchlab/oosim/frontend"
	"github.com/sarchlab/oosim/timing/core"
)

// slot identifies one hardware thread on one core.
type slot struct {
	core, thread int
}

// allocation tracks one guest context currently bound to a slot.
type allocation struct {
	ctx          frontend.Context
	slot         slot
	allocCycle   uint64
	evictPending bool
}

// Scheduler binds guest contexts to hardware thread slots across a fixed
// set of cores, per spec.md §4.11's static/dynamic policies.
type Scheduler struct {
	cores []*core.Core
	cfg   config.General

	cycle uint64

	pending []frontend.Context // running, not yet allocated a slot
	allocs  []*allocation       // currently allocated, in allocation order (oldest first)
}

// New builds a scheduler over cores, configured by cfg (spec.md §6
// "General: {context_switch, context_quantum, thread_quantum,
// thread_switch_penalty}").
func New(cores []*core.Core, cfg config.General) *Scheduler {
	return &Scheduler{cores: cores, cfg: cfg}
}

// Submit registers a guest context as runnable; it is bound to the first
// free slot the scheduler finds, in Tick order (spec.md §4.11 "pick the
// first free (core, thread) slot").
func (s *Scheduler) Submit(ctx frontend.Context) {
	s.pending = append(s.pending, ctx)
}

// Pending returns the number of guest contexts waiting for a free slot.
func (s *Scheduler) Pending() int { return len(s.pending) }

// Allocated returns the number of guest contexts currently bound to a
// hardware thread.
func (s *Scheduler) Allocated() int { return len(s.allocs) }

// Tick runs one scheduling pass: evicting (dynamic mode), draining
// evictions whose pipeline has gone idle, and allocating pending contexts
// onto free slots (spec.md §4.11, called once per cycle between the
// cores' own Tick()).
func (s *Scheduler) Tick() error {
	s.cycle++

	s.dropFinished()

	if s.cfg.ContextSwitch {
		s.considerEviction()
	}
	s.drainEvictions()
	s.allocateFreeSlots()

	if len(s.pending) > 0 && !s.cfg.ContextSwitch {
		return fmt.Errorf("sched: %d runnable context(s) but no free hardware thread and context_switch=false", len(s.pending))
	}
	return nil
}

// dropFinished removes pending contexts that finished before ever being
// allocated a slot (e.g. an empty program).
func (s *Scheduler) dropFinished() {
	kept := s.pending[:0]
	for _, ctx := range s.pending {
		if ctx.Status() != frontend.Finished {
			kept = append(kept, ctx)
		}
	}
	s.pending = kept
}

// considerEviction signals eviction for the oldest allocation that has
// occupied its slot for a full context_quantum and has no eviction
// already pending (spec.md §4.11 "every context_quantum cycles since the
// oldest allocation, pick a context to evict (oldest-allocation-first)").
func (s *Scheduler) considerEviction() {
	var oldest *allocation
	for _, a := range s.allocs {
		if a.evictPending {
			continue
		}
		if s.cycle-a.allocCycle < uint64(s.cfg.ContextQuantum) {
			continue
		}
		if oldest == nil || a.allocCycle < oldest.allocCycle {
			oldest = a
		}
	}
	if oldest == nil {
		return
	}
	oldest.evictPending = true
	s.cores[oldest.slot.core].RequestEvict(oldest.slot.thread)
}

// drainEvictions frees any slot whose pipeline has emptied out since its
// eviction was signaled, returning the context to the pending list if it
// still has work to do (spec.md §4.11 "wait until its pipeline drains ...
// before freeing the slot").
func (s *Scheduler) drainEvictions() {
	kept := s.allocs[:0]
	for _, a := range s.allocs {
		if !a.evictPending {
			kept = append(kept, a)
			continue
		}
		c := s.cores[a.slot.core]
		if !c.Idle(a.slot.thread) {
			kept = append(kept, a)
			continue
		}
		c.UnmapContext(a.slot.thread)
		if a.ctx.Status() != frontend.Finished {
			s.pending = append(s.pending, a.ctx)
		}
	}
	s.allocs = kept
}

// allocateFreeSlots maps as many pending contexts as there are free slots,
// scanning cores and threads in index order (spec.md §4.11 "pick the
// first free (core, thread) slot and map it").
func (s *Scheduler) allocateFreeSlots() {
	var remaining []frontend.Context
	for _, ctx := range s.pending {
		cs, ts, ok := s.firstFreeSlot()
		if !ok {
			remaining = append(remaining, ctx)
			continue
		}
		s.cores[cs].MapContext(ts, ctx)
		s.allocs = append(s.allocs, &allocation{ctx: ctx, slot: slot{cs, ts}, allocCycle: s.cycle})
	}
	s.pending = remaining
}

func (s *Scheduler) firstFreeSlot() (coreIdx, threadIdx int, ok bool) {
	for ci, c := range s.cores {
		for ti := 0; ti < c.NumThreads(); ti++ {
			if !c.Mapped(ti) {
				return ci, ti, true
			}
		}
	}
	return 0, 0, false
}
