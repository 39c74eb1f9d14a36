// Package bpred implements the branch predictor (component C7): direction
// prediction under six interchangeable variants (Perfect, Taken, NotTaken,
// Bimodal, TwoLevel, Combined), plus the shared BTB and RAS structures every
// variant relies on for target prediction and call/return handling.
package bpred

// Kind selects which direction-prediction variant a Predictor runs.
type Kind int

const (
	Perfect Kind = iota
	Taken
	NotTaken
	Bimodal
	TwoLevel
	Combined
)

// Config holds the sizing knobs for one predictor instance (spec.md §6
// "BranchPredictor: {Kind, BTB.Sets, BTB.Assoc, Bimod.Size, Choice.Size,
// RAS.Size, TwoLevel.{L1Size,L2Size,HistorySize}}").
type Config struct {
	Kind Kind

	BTBSets  uint32
	BTBAssoc int

	BimodSize uint32

	ChoiceSize uint32

	RASSize int

	TwoLevelL1Size      uint32
	TwoLevelL2Size      uint32
	TwoLevelHistorySize uint32
}

// DefaultConfig mirrors the teacher's DefaultBranchPredictorConfig sizing
// convention, extended with the additional variants' knobs.
func DefaultConfig() Config {
	return Config{
		Kind:                Combined,
		BTBSets:             256,
		BTBAssoc:            4,
		BimodSize:           1024,
		ChoiceSize:          1024,
		RASSize:             32,
		TwoLevelL1Size:      1,
		TwoLevelL2Size:      1024,
		TwoLevelHistorySize: 10,
	}
}

// Stats holds predictor statistics, following the teacher's
// BranchPredictorStats shape (value type, Accuracy()-style accessors).
type Stats struct {
	Predictions    uint64
	Correct        uint64
	Mispredictions uint64
	BTBHits        uint64
	BTBMisses      uint64
	RASHits        uint64
	RASMisses      uint64
}

// Accuracy returns the prediction accuracy as a percentage.
func (s Stats) Accuracy() float64 {
	if s.Predictions == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Predictions) * 100
}

// MispredictionRate returns the misprediction rate as a percentage.
func (s Stats) MispredictionRate() float64 {
	if s.Predictions == 0 {
		return 0
	}
	return float64(s.Mispredictions) / float64(s.Predictions) * 100
}

// BTBHitRate returns the BTB hit rate as a percentage.
func (s Stats) BTBHitRate() float64 {
	total := s.BTBHits + s.BTBMisses
	if total == 0 {
		return 0
	}
	return float64(s.BTBHits) / float64(total) * 100
}

// SourceClass is the 2-bit BTB source-class flag (spec.md §4 "BTB: ...
// value = predicted target + 2-bit source class flag (call/return/other)").
type SourceClass uint8

const (
	SourceOther SourceClass = iota
	SourceCall
	SourceReturn
	SourceCond
)

// Meta is the predictor metadata captured at fetch time and carried in the
// uop for in-order update at commit (spec.md §4.2 step 4, §4.9).
type Meta struct {
	BTBWay      int
	BimodalIdx  uint32
	GlobalHist  uint32
	ChoiceIdx   uint32
	UsedTwoLvl  bool
	PredTaken   bool
	RASSnapshot int
}

// Prediction is the result of a Lookup.
type Prediction struct {
	Taken       bool
	Target      uint64
	TargetKnown bool
	Meta        Meta
}

// Outcome is the actual resolved branch behavior passed to Update.
type Outcome struct {
	EIP    uint64
	Taken  bool
	Target uint64
	Class  SourceClass
}

// Predictor is the capability set every variant implements (spec.md §9
// "Polymorphism over predictor variants": lookup, update, btb_lookup/update,
// ras_push/pop). BTB and RAS are folded into Lookup/Update since every
// variant in this simulator shares one BTB/RAS implementation.
type Predictor interface {
	Lookup(eip uint64, class SourceClass) Prediction
	Update(outcome Outcome, meta Meta)
	Stats() Stats
	Reset()
}

// New builds the Predictor for the given configuration's Kind.
func New(cfg Config) Predictor {
	btb := newBTB(cfg.BTBSets, cfg.BTBAssoc)
	ras := newRAS(cfg.RASSize)

	switch cfg.Kind {
	case Perfect:
		return &perfectPredictor{btb: btb, ras: ras}
	case Taken:
		return &constPredictor{direction: true, btb: btb, ras: ras}
	case NotTaken:
		return &constPredictor{direction: false, btb: btb, ras: ras}
	case Bimodal:
		return &bimodalPredictor{
			counters: newSatCounterTable(cfg.BimodSize),
			btb:      btb,
			ras:      ras,
		}
	case TwoLevel:
		return &twoLevelPredictor{
			tl:  newTwoLevel(cfg.TwoLevelL1Size, cfg.TwoLevelL2Size, cfg.TwoLevelHistorySize),
			btb: btb,
			ras: ras,
		}
	case Combined:
		return &combinedPredictor{
			bimodal: newSatCounterTable(cfg.BimodSize),
			tl:      newTwoLevel(cfg.TwoLevelL1Size, cfg.TwoLevelL2Size, cfg.TwoLevelHistorySize),
			choice:  newSatCounterTable(cfg.ChoiceSize),
			btb:     btb,
			ras:     ras,
		}
	default:
		return &bimodalPredictor{
			counters: newSatCounterTable(cfg.BimodSize),
			btb:      btb,
			ras:      ras,
		}
	}
}
