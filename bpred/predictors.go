package bpred

// common folds BTB lookup and RAS push/pop into the shared behavior every
// variant needs on top of its own direction prediction; a not-taken,
// non-return lookup reports its target as unknown (spec.md §4.9 "BTB update at commit for any taken
// control uop; RAS push on call uops, pop on return uops").
type common struct {
	btb *btb
	ras *ras
}

func (c *common) resolveTarget(eip uint64, taken bool, class SourceClass) (target uint64, way int, known bool, rasSnap int) {
	rasSnap = c.ras.sp
	if class == SourceReturn {
		if addr, snap, ok := c.ras.pop(); ok {
			return addr, -1, true, snap
		}
		return 0, -1, false, rasSnap
	}
	if !taken {
		return 0, -1, false, rasSnap
	}
	target, way, known = c.btb.lookup(eip)
	return target, way, known, rasSnap
}

func (c *common) commit(outcome Outcome, meta Meta) {
	if outcome.Class == SourceCall {
		c.ras.push(outcome.EIP)
	}
	if outcome.Taken {
		c.btb.update(outcome.EIP, outcome.Target, outcome.Class)
	}
}

func recordLookupStats(s *Stats, known bool) {
	s.Predictions++
	if known {
		s.BTBHits++
	} else {
		s.BTBMisses++
	}
}

func recordUpdateStats(s *Stats, predictedTaken, actualTaken bool) {
	if predictedTaken == actualTaken {
		s.Correct++
	} else {
		s.Mispredictions++
	}
}

// --- Perfect -----------------------------------------------------------

// perfectPredictor returns the outcome reported by the oracle installed
// with SetOracle; direction history tables are unused (spec.md §4.9
// "Perfect: returns actual direction/target. BTB/history unused.").
type perfectPredictor struct {
	common
	oracle func(eip uint64) (taken bool, target uint64)
	stats  Stats
}

// SetOracle installs the function consulted for ground truth. Until set,
// Lookup predicts not-taken with an unknown target.
func (p *perfectPredictor) SetOracle(fn func(eip uint64) (taken bool, target uint64)) {
	p.oracle = fn
}

func (p *perfectPredictor) Lookup(eip uint64, class SourceClass) Prediction {
	var taken bool
	var target uint64
	if p.oracle != nil {
		taken, target = p.oracle(eip)
	}
	rasSnap := p.ras.sp
	if class == SourceReturn {
		if addr, _, ok := p.ras.pop(); ok {
			target = addr
		}
	}
	p.stats.Predictions++
	if taken {
		p.stats.BTBHits++
	} else {
		p.stats.BTBMisses++
	}
	return Prediction{
		Taken:       taken,
		Target:      target,
		TargetKnown: taken,
		Meta:        Meta{PredTaken: taken, RASSnapshot: rasSnap},
	}
}

func (p *perfectPredictor) Update(outcome Outcome, meta Meta) {
	p.stats.Correct++
	p.commit(outcome, meta)
}

func (p *perfectPredictor) Stats() Stats { return p.stats }
func (p *perfectPredictor) Reset()       { p.stats = Stats{}; p.btb.reset(); p.ras.reset() }

// --- Taken / NotTaken ---------------------------------------------------

// constPredictor implements the Taken and NotTaken variants: a fixed
// direction, with the BTB still supplying the target for the taken path
// (spec.md §4.9 "Taken/NotTaken: constant direction; BTB supplies target
// for taken path.").
type constPredictor struct {
	common
	direction bool
	stats     Stats
}

func (p *constPredictor) Lookup(eip uint64, class SourceClass) Prediction {
	target, way, known, rasSnap := p.resolveTarget(eip, p.direction, class)
	recordLookupStats(&p.stats, known)
	return Prediction{
		Taken:       p.direction,
		Target:      target,
		TargetKnown: known,
		Meta:        Meta{BTBWay: way, PredTaken: p.direction, RASSnapshot: rasSnap},
	}
}

func (p *constPredictor) Update(outcome Outcome, meta Meta) {
	recordUpdateStats(&p.stats, p.direction, outcome.Taken)
	p.commit(outcome, meta)
}

func (p *constPredictor) Stats() Stats { return p.stats }
func (p *constPredictor) Reset()       { p.stats = Stats{}; p.btb.reset(); p.ras.reset() }

// --- Bimodal -------------------------------------------------------------

type bimodalPredictor struct {
	common
	counters *satCounterTable
	stats    Stats
}

func (p *bimodalPredictor) Lookup(eip uint64, class SourceClass) Prediction {
	idx := p.counters.index(eip)
	taken := p.counters.taken(eip)
	target, way, known, rasSnap := p.resolveTarget(eip, taken, class)
	recordLookupStats(&p.stats, known)
	return Prediction{
		Taken:       taken,
		Target:      target,
		TargetKnown: known,
		Meta:        Meta{BTBWay: way, BimodalIdx: idx, PredTaken: taken, RASSnapshot: rasSnap},
	}
}

func (p *bimodalPredictor) Update(outcome Outcome, meta Meta) {
	recordUpdateStats(&p.stats, meta.PredTaken, outcome.Taken)
	p.counters.update(outcome.EIP, outcome.Taken)
	p.commit(outcome, meta)
}

func (p *bimodalPredictor) Stats() Stats { return p.stats }
func (p *bimodalPredictor) Reset() {
	p.stats = Stats{}
	p.counters.reset()
	p.btb.reset()
	p.ras.reset()
}

// --- TwoLevel (GAg) -------------------------------------------------------

type twoLevelPredictor struct {
	common
	tl    *twoLevel
	stats Stats
}

func (p *twoLevelPredictor) Lookup(eip uint64, class SourceClass) Prediction {
	taken, key := p.tl.predict(eip)
	target, way, known, rasSnap := p.resolveTarget(eip, taken, class)
	recordLookupStats(&p.stats, known)
	return Prediction{
		Taken:       taken,
		Target:      target,
		TargetKnown: known,
		Meta: Meta{
			BTBWay:      way,
			GlobalHist:  uint32(key >> 32),
			UsedTwoLvl:  true,
			PredTaken:   taken,
			RASSnapshot: rasSnap,
		},
	}
}

func (p *twoLevelPredictor) Update(outcome Outcome, meta Meta) {
	recordUpdateStats(&p.stats, meta.PredTaken, outcome.Taken)
	_, key := p.tl.predict(outcome.EIP)
	p.tl.update(key, outcome.Taken)
	p.commit(outcome, meta)
}

func (p *twoLevelPredictor) Stats() Stats { return p.stats }
func (p *twoLevelPredictor) Reset() {
	p.stats = Stats{}
	p.tl.reset()
	p.btb.reset()
	p.ras.reset()
}

// --- Combined --------------------------------------------------------------

// combinedPredictor runs Bimodal and TwoLevel in parallel and uses a choice
// table to select between them (spec.md §4.9 "Combined: run bimodal and
// two-level; choice table (2-bit counters) selects; on commit, if only one
// sub-predictor was correct, move choice one step toward it; both-correct /
// both-wrong leaves choice unchanged." — the tie-resolution itself is
// resolved in SPEC_FULL.md/DESIGN.md as "no-op on tie").
type combinedPredictor struct {
	common
	bimodal *satCounterTable
	tl      *twoLevel
	choice  *satCounterTable
	stats   Stats
}

func (p *combinedPredictor) Lookup(eip uint64, class SourceClass) Prediction {
	bimodalTaken := p.bimodal.taken(eip)
	tlTaken, tlKey := p.tl.predict(eip)

	choiceIdx := p.choice.index(eip)
	useTwoLevel := p.choice.taken(eip) // counter >= 2 favors two-level

	taken := bimodalTaken
	if useTwoLevel {
		taken = tlTaken
	}

	target, way, known, rasSnap := p.resolveTarget(eip, taken, class)
	recordLookupStats(&p.stats, known)
	return Prediction{
		Taken:       taken,
		Target:      target,
		TargetKnown: known,
		Meta: Meta{
			BTBWay:      way,
			BimodalIdx:  p.bimodal.index(eip),
			GlobalHist:  uint32(tlKey >> 32),
			ChoiceIdx:   choiceIdx,
			UsedTwoLvl:  useTwoLevel,
			PredTaken:   taken,
			RASSnapshot: rasSnap,
		},
	}
}

func (p *combinedPredictor) Update(outcome Outcome, meta Meta) {
	recordUpdateStats(&p.stats, meta.PredTaken, outcome.Taken)

	bimodalTaken := p.bimodal.taken(outcome.EIP)
	_, tlKey := p.tl.predict(outcome.EIP)
	tlTaken := p.tl.pht.taken(tlKey)

	bimodalCorrect := bimodalTaken == outcome.Taken
	tlCorrect := tlTaken == outcome.Taken

	if bimodalCorrect != tlCorrect {
		// exactly one sub-predictor was right: nudge choice toward it.
		p.choice.step(outcome.EIP, tlCorrect)
	}
	// both-correct / both-wrong: leave choice unchanged (documented
	// Open Question resolution).

	p.bimodal.update(outcome.EIP, outcome.Taken)
	p.tl.update(tlKey, outcome.Taken)
	p.commit(outcome, meta)
}

func (p *combinedPredictor) Stats() Stats { return p.stats }
func (p *combinedPredictor) Reset() {
	p.stats = Stats{}
	p.bimodal.reset()
	p.tl.reset()
	p.choice.reset()
	p.btb.reset()
	p.ras.reset()
}
