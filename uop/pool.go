package uop

// Pool is a slab allocator for uops, keyed by the monotonic Seq id. Queues
// (IQ, ROB, LQ, SQ, event queue, …) store Seq values rather than *Uop
// pointers; Pool.Get resolves a Seq back to its Uop. This lets the pipeline
// destroy a uop's storage once Destroyable reports true without chasing
// down every queue that might still hold a stale pointer (spec.md §9).
type Pool struct {
	slab    map[uint64]*Uop
	nextSeq uint64
}

// NewPool creates an empty uop pool.
func NewPool() *Pool {
	return &Pool{slab: make(map[uint64]*Uop)}
}

// Alloc reserves the next Seq and returns a freshly zeroed uop for it.
func (p *Pool) Alloc() *Uop {
	p.nextSeq++
	u := New(p.nextSeq)
	p.slab[u.Seq] = u
	return u
}

// Get resolves a Seq to its live Uop, or nil if it was already freed.
func (p *Pool) Get(seq uint64) *Uop {
	return p.slab[seq]
}

// Free releases a uop's storage. Panics (implementation bug, spec.md §7)
// if the uop is not actually destroyable yet.
func (p *Pool) Free(seq uint64, retiredOrSquashed bool) {
	u, ok := p.slab[seq]
	if !ok {
		return
	}
	if !u.Destroyable(retiredOrSquashed) {
		panic(InvariantViolation{
			What: "freed a uop still referenced by a structural queue",
			Seq:  seq,
			Dump: u.Membership,
		})
	}
	delete(p.slab, seq)
}

// Live returns the number of uops currently tracked by the pool.
func (p *Pool) Live() int { return len(p.slab) }
