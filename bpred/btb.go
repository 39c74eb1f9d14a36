package bpred

// btbEntry is one way of a BTB set.
type btbEntry struct {
	valid  bool
	tag    uint64
	target uint64
	class  SourceClass
	lru    uint64
}

// btb is a set-associative, LRU-replaced branch target buffer (spec.md §4
// "BTB: set-associative, LRU replacement; value = predicted target + 2-bit
// source class flag").
type btb struct {
	sets  uint32
	assoc int
	ways  [][]btbEntry
	clock uint64
}

func newBTB(sets uint32, assoc int) *btb {
	if sets == 0 {
		sets = 1
	}
	if assoc <= 0 {
		assoc = 1
	}
	ways := make([][]btbEntry, sets)
	for i := range ways {
		ways[i] = make([]btbEntry, assoc)
	}
	return &btb{sets: sets, assoc: assoc, ways: ways}
}

func (b *btb) index(eip uint64) uint32 {
	return uint32((eip >> 2) % uint64(b.sets))
}

// lookup returns the target, its way index, and whether it hit.
func (b *btb) lookup(eip uint64) (target uint64, way int, hit bool) {
	set := b.ways[b.index(eip)]
	b.clock++
	for i := range set {
		if set[i].valid && set[i].tag == eip {
			set[i].lru = b.clock
			return set[i].target, i, true
		}
	}
	return 0, -1, false
}

// update installs or refreshes the entry for eip, evicting the LRU way on a
// miss.
func (b *btb) update(eip, target uint64, class SourceClass) int {
	set := b.ways[b.index(eip)]
	b.clock++

	for i := range set {
		if set[i].valid && set[i].tag == eip {
			set[i].target = target
			set[i].class = class
			set[i].lru = b.clock
			return i
		}
	}

	victim := 0
	for i := range set {
		if !set[i].valid {
			victim = i
			break
		}
		if set[i].lru < set[victim].lru {
			victim = i
		}
	}
	set[victim] = btbEntry{valid: true, tag: eip, target: target, class: class, lru: b.clock}
	return victim
}

func (b *btb) reset() {
	for i := range b.ways {
		for j := range b.ways[i] {
			b.ways[i][j] = btbEntry{}
		}
	}
	b.clock = 0
}
