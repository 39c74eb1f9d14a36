// Package iqueue implements the wake/select structures uops wait in
// between dispatch and issue: the instruction queue for non-memory uops,
// and the load/store queues for memory uops (spec.md §3 "Instruction
// queue", component C4).
package iqueue

// orderedSet is a program-order list of uop Seq ids backed by a slice.
// Dispatch always appends (dispatch order == program order for a single
// thread's queue), and issue removes from anywhere while preserving the
// relative order of what remains — this is what spec.md calls a "linked
// set": membership plus stable order, not FIFO-only access.
type orderedSet struct {
	seqs []uint64
}

func (s *orderedSet) push(seq uint64) {
	s.seqs = append(s.seqs, seq)
}

func (s *orderedSet) remove(seq uint64) bool {
	for i, v := range s.seqs {
		if v == seq {
			s.seqs = append(s.seqs[:i], s.seqs[i+1:]...)
			return true
		}
	}
	return false
}

func (s *orderedSet) all() []uint64 {
	out := make([]uint64, len(s.seqs))
	copy(out, s.seqs)
	return out
}

func (s *orderedSet) len() int { return len(s.seqs) }

// IQ holds non-memory uops dispatched but not yet issued, one per thread
// (Private) or pooled per core (Shared — spec.md §6 Queues.IqKind).
type IQ struct {
	mode     Mode
	capacity int
	threads  []orderedSet
}

// Mode selects private-per-thread or shared-per-core capacity, mirroring
// rob.Mode (spec.md §5).
type Mode int

const (
	Private Mode = iota
	Shared
)

// NewIQ builds an IQ for numThreads hardware threads with the given
// capacity (per-thread if Private, core-wide if Shared).
func NewIQ(mode Mode, capacity, numThreads int) *IQ {
	return &IQ{mode: mode, capacity: capacity, threads: make([]orderedSet, numThreads)}
}

// Len returns the number of uops queued for thread t.
func (q *IQ) Len(t int) int { return q.threads[t].len() }

// TotalLen returns the number of uops queued across all threads.
func (q *IQ) TotalLen() int {
	n := 0
	for i := range q.threads {
		n += q.threads[i].len()
	}
	return n
}

// HasFree reports whether thread t may dispatch another uop into the IQ
// (spec.md §4.4 step 1, the "iq" stall bucket).
func (q *IQ) HasFree(t int) bool {
	if q.mode == Private {
		return q.threads[t].len() < q.capacity
	}
	return q.TotalLen() < q.capacity
}

// Push enqueues a dispatched uop.
func (q *IQ) Push(t int, seq uint64) { q.threads[t].push(seq) }

// Remove takes a uop out of the queue once it has issued.
func (q *IQ) Remove(t int, seq uint64) bool { return q.threads[t].remove(seq) }

// InDispatchOrder returns thread t's queued uop ids in the order they were
// dispatched, the order issue must scan in (spec.md §4.5 "pick ready
// uops ... in dispatch order").
func (q *IQ) InDispatchOrder(t int) []uint64 { return q.threads[t].all() }

// Purge removes every uop of thread t, returning the removed ids, for
// recovery (spec.md §4.8 step 1).
func (q *IQ) Purge(t int) []uint64 {
	all := q.threads[t].all()
	q.threads[t] = orderedSet{}
	return all
}
