package iqueue

// LSQ holds the load queue or the store queue: outstanding memory uops
// ordered by program order (dispatch di_seq — spec.md §3 "Load queue /
// store queue"). Both queues use the same shape; LoadQueue and
// StoreQueue below are thin constructors so call sites read clearly.
type LSQ struct {
	mode     Mode
	capacity int
	threads  []orderedSet
}

func newLSQ(mode Mode, capacity, numThreads int) *LSQ {
	return &LSQ{mode: mode, capacity: capacity, threads: make([]orderedSet, numThreads)}
}

// NewLoadQueue builds a load queue (spec.md §6 Queues.LsqKind/LsqSize).
func NewLoadQueue(mode Mode, capacity, numThreads int) *LSQ {
	return newLSQ(mode, capacity, numThreads)
}

// NewStoreQueue builds a store queue.
func NewStoreQueue(mode Mode, capacity, numThreads int) *LSQ {
	return newLSQ(mode, capacity, numThreads)
}

// Len returns the number of outstanding memory uops for thread t.
func (q *LSQ) Len(t int) int { return q.threads[t].len() }

// TotalLen returns the number of outstanding memory uops across threads.
func (q *LSQ) TotalLen() int {
	n := 0
	for i := range q.threads {
		n += q.threads[i].len()
	}
	return n
}

// HasFree reports whether thread t may dispatch another memory uop
// (spec.md §4.4 step 1, the "lsq" stall bucket).
func (q *LSQ) HasFree(t int) bool {
	if q.mode == Private {
		return q.threads[t].len() < q.capacity
	}
	return q.TotalLen() < q.capacity
}

// Push enqueues a dispatched memory uop at the tail (program order).
func (q *LSQ) Push(t int, seq uint64) { q.threads[t].push(seq) }

// Remove takes a uop out once its memory access resolves.
func (q *LSQ) Remove(t int, seq uint64) bool { return q.threads[t].remove(seq) }

// InProgramOrder returns thread t's outstanding uop ids oldest first,
// which store-to-load ordering checks walk (spec.md §4.5 "Memory
// issue").
func (q *LSQ) InProgramOrder(t int) []uint64 { return q.threads[t].all() }

// Purge removes every uop of thread t, returning the removed ids
// (spec.md §4.8 step 1).
func (q *LSQ) Purge(t int) []uint64 {
	all := q.threads[t].all()
	q.threads[t] = orderedSet{}
	return all
}
