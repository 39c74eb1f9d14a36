package bpred

// satCounterTable is a table of 2-bit saturating counters, shared by the
// Bimodal predictor, the Combined predictor's choice table, and the
// TwoLevel predictor's pattern history table (spec.md §4.9 "Bimodal: 2-bit
// counter per index ... Combined: choice table (2-bit counters)").
type satCounterTable struct {
	counters []uint8
	size     uint32
}

func newSatCounterTable(size uint32) *satCounterTable {
	if size == 0 {
		size = 1
	}
	c := make([]uint8, size)
	for i := range c {
		c[i] = 2 // weakly taken, matching the teacher's bias
	}
	return &satCounterTable{counters: c, size: size}
}

func (t *satCounterTable) index(key uint64) uint32 {
	return uint32(key % uint64(t.size))
}

func (t *satCounterTable) taken(key uint64) bool {
	return t.counters[t.index(key)] >= 2
}

// update applies a saturating +1/-1 step toward the observed direction.
func (t *satCounterTable) update(key uint64, taken bool) {
	idx := t.index(key)
	if taken {
		if t.counters[idx] < 3 {
			t.counters[idx]++
		}
	} else {
		if t.counters[idx] > 0 {
			t.counters[idx]--
		}
	}
}

// step moves the counter one notch toward `toward` without regard to its
// current direction semantics — used by the Combined predictor's choice
// table, which tracks "favor bimodal" (low) vs "favor two-level" (high)
// rather than taken/not-taken.
func (t *satCounterTable) step(key uint64, toward bool) {
	t.update(key, toward)
}

func (t *satCounterTable) reset() {
	for i := range t.counters {
		t.counters[i] = 2
	}
}
