package bpred

// twoLevel implements the GAg variant: a single global history shift
// register of length h, together with eip bits ((eip>>2) mod l1Size),
// indexes a PHT of l2Size 2-bit counters (key layout in phtKey) (spec.md §4.9 "TwoLevel (GAg):
// global history of length h; PHT indexed by (history_low, eip_bits)").
type twoLevel struct {
	history     uint32
	historyMask uint32
	historySize uint32
	pht         *satCounterTable
	l1Size      uint32
}

func newTwoLevel(l1Size, l2Size, historySize uint32) *twoLevel {
	if historySize == 0 {
		historySize = 1
	}
	if l1Size == 0 {
		l1Size = 1
	}
	mask := uint32((uint64(1) << historySize) - 1)
	return &twoLevel{
		historyMask: mask,
		historySize: historySize,
		pht:         newSatCounterTable(l2Size),
		l1Size:      l1Size,
	}
}

// phtKey carries the history in the upper 32 bits (read back as
// Meta.GlobalHist) and eip bits << h | history in the lower 32 bits; the
// PHT reduces the whole key modulo its size.
func (t *twoLevel) phtKey(eip uint64) uint64 {
	eipBits := uint32(eip>>2) % t.l1Size
	row := (uint64(eipBits)<<t.historySize | uint64(t.history)) & 0xffffffff
	return uint64(t.history)<<32 | row
}

func (t *twoLevel) predict(eip uint64) (taken bool, key uint64) {
	key = t.phtKey(eip)
	return t.pht.taken(key), key
}

func (t *twoLevel) update(key uint64, taken bool) {
	t.pht.update(key, taken)
	t.history = ((t.history << 1) | b2u32(taken)) & t.historyMask
}

func (t *twoLevel) reset() {
	t.history = 0
	t.pht.reset()
}

func b2u32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
