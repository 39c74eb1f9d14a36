// Package rob implements the reorder buffer: the in-order retirement
// queue uops enter and leave in dispatch order (spec.md §3 "Reorder
// buffer", component C3).
package rob

// Mode selects whether the ROB capacity is private per thread or pooled
// across every thread on a core (spec.md §5 "Shared-resource policy").
type Mode int

const (
	Private Mode = iota
	Shared
)

// ring is a circular buffer of uop Seq ids for one thread.
type ring struct {
	buf   []uint64
	head  int // index of oldest
	tail  int // index one past the youngest
	count int
}

func newRing(capacity int) *ring {
	return &ring{buf: make([]uint64, capacity)}
}

func (r *ring) cap() int { return len(r.buf) }

func (r *ring) pushTail(seq uint64) {
	r.buf[r.tail] = seq
	r.tail = (r.tail + 1) % len(r.buf)
	r.count++
}

func (r *ring) peekHead() (uint64, bool) {
	if r.count == 0 {
		return 0, false
	}
	return r.buf[r.head], true
}

func (r *ring) popHead() (uint64, bool) {
	seq, ok := r.peekHead()
	if !ok {
		return 0, false
	}
	r.head = (r.head + 1) % len(r.buf)
	r.count--
	return seq, true
}

// popTail removes and returns the youngest (most recently pushed) entry,
// used by recovery to walk speculative uops off the tail.
func (r *ring) popTail() (uint64, bool) {
	if r.count == 0 {
		return 0, false
	}
	r.tail = (r.tail - 1 + len(r.buf)) % len(r.buf)
	r.count--
	return r.buf[r.tail], true
}

// ROB is the reorder buffer for one core. In Private mode each thread has
// its own disjoint ring sized by capacity; in Shared mode every thread's
// ring is backed by the same capacity budget and admission checks look at
// the sum across threads (spec.md §3 "Shared-mode invariant").
type ROB struct {
	mode     Mode
	capacity int
	threads  []*ring
}

// New builds a ROB for numThreads hardware threads. capacity is
// per-thread when mode is Private, and the total core-wide budget when
// mode is Shared.
func New(mode Mode, capacity int, numThreads int) *ROB {
	rb := &ROB{mode: mode, capacity: capacity}
	ringCap := capacity
	if mode == Shared {
		// Each per-thread ring must be able to hold up to the full shared
		// budget since any single thread may (momentarily) claim all of it.
		ringCap = capacity
	}
	rb.threads = make([]*ring, numThreads)
	for i := range rb.threads {
		rb.threads[i] = newRing(ringCap)
	}
	return rb
}

// Count returns the number of in-flight uops belonging to thread t.
func (rb *ROB) Count(t int) int { return rb.threads[t].count }

// TotalCount returns the number of in-flight uops across all threads.
func (rb *ROB) TotalCount() int {
	n := 0
	for _, r := range rb.threads {
		n += r.count
	}
	return n
}

// HasFree reports whether thread t may dispatch another uop into the ROB
// (spec.md §4.4 step 1, the "rob" stall bucket).
func (rb *ROB) HasFree(t int) bool {
	if rb.mode == Private {
		return rb.threads[t].count < rb.capacity
	}
	return rb.TotalCount() < rb.capacity
}

// Push enqueues a uop at the tail of thread t's region (spec.md §4.4 step
// 3: "push onto ROB tail").
func (rb *ROB) Push(t int, seq uint64) {
	rb.threads[t].pushTail(seq)
}

// PeekHead returns the oldest uop of thread t without removing it
// (spec.md §4.7 step 1).
func (rb *ROB) PeekHead(t int) (uint64, bool) {
	return rb.threads[t].peekHead()
}

// PopHead removes and returns the oldest uop of thread t (spec.md §4.7
// step 6, "Remove from ROB").
func (rb *ROB) PopHead(t int) (uint64, bool) {
	return rb.threads[t].popHead()
}

// PopTail removes and returns the youngest uop of thread t, for recovery
// walking the ROB from tail toward head (spec.md §4.8 step 2).
func (rb *ROB) PopTail(t int) (uint64, bool) {
	return rb.threads[t].popTail()
}
