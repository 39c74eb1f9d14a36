package tracecache

// BranchKind classifies a committed control uop for trace-termination
// purposes (spec.md §4.10 "reaching an indirect branch or return (not
// call)" terminates a trace; ordinary conditional/unconditional branches
// and calls do not).
type BranchKind int

const (
	NotBranch BranchKind = iota
	DirectBranch
	IndirectBranch
	Return
	Call
)

// Builder accumulates committed uops of a single thread into a temp trace,
// installing it into a Cache once a termination condition is met (spec.md
// §4.10).
type Builder struct {
	cfg Config
	cur Trace
	// active is false before the first uop of a new trace has been seen.
	active bool
}

// NewBuilder creates a trace builder for the given trace-cache sizing.
func NewBuilder(cfg Config) *Builder {
	return &Builder{cfg: cfg}
}

// Append folds one committed uop into the in-progress trace. If this uop
// terminates the trace, the finished Trace is returned and installed into
// cache (if non-nil); the builder then resets to start a fresh trace at the
// next Append.
func (b *Builder) Append(cache *Cache, eip uint64, isBranch bool, kind BranchKind, taken bool, fallThrough, target uint64) (Trace, bool) {
	if !b.active {
		b.cur = Trace{StartEIP: eip}
		b.active = true
	}

	b.cur.MopEIP = append(b.cur.MopEIP, eip)
	b.cur.MopCount++
	b.cur.UopCount++
	b.cur.FallThroughEIP = fallThrough
	b.cur.TargetEIP = target

	terminate := false
	if isBranch {
		bit := uint32(1) << uint(b.cur.BranchCount)
		if taken {
			b.cur.BranchMask |= bit
			b.cur.BranchFlags |= bit
		}
		b.cur.BranchCount++

		if kind == IndirectBranch || kind == Return {
			terminate = true
		}
		if b.cur.BranchCount >= b.cfg.BranchMax {
			terminate = true
		}
	}
	if b.cur.UopCount >= b.cfg.TraceSize {
		terminate = true
	}

	if !terminate {
		return Trace{}, false
	}

	finished := b.cur
	b.active = false
	b.cur = Trace{}
	if cache != nil {
		cache.Install(finished)
	}
	return finished, true
}

// Flush force-terminates an in-progress trace (spec.md §4.10 "explicit
// flush"), e.g. on a pipeline squash that discards the thread's
// architectural continuity.
func (b *Builder) Flush(cache *Cache) (Trace, bool) {
	if !b.active || b.cur.UopCount == 0 {
		b.active = false
		b.cur = Trace{}
		return Trace{}, false
	}
	finished := b.cur
	b.active = false
	b.cur = Trace{}
	if cache != nil {
		cache.Install(finished)
	}
	return finished, true
}
