package config

import "fmt"

// PredictorKind names a bpred.Kind value without this package importing
// bpred, keeping config a leaf dependency the way the teacher's
// timing/latency config has no dependency on the pipeline package it
// configures.
type PredictorKind string

const (
	PredictorPerfect  PredictorKind = "Perfect"
	PredictorTaken    PredictorKind = "Taken"
	PredictorNotTaken PredictorKind = "NotTaken"
	PredictorBimodal  PredictorKind = "Bimodal"
	PredictorTwoLevel PredictorKind = "TwoLevel"
	PredictorCombined PredictorKind = "Combined"
)

// BTBConfig sizes the branch target buffer.
type BTBConfig struct {
	Sets  uint32 `json:"sets" yaml:"sets"`
	Assoc int    `json:"assoc" yaml:"assoc"`
}

// BimodConfig sizes the bimodal table.
type BimodConfig struct {
	Size uint32 `json:"size" yaml:"size"`
}

// ChoiceConfig sizes the combined predictor's choice table.
type ChoiceConfig struct {
	Size uint32 `json:"size" yaml:"size"`
}

// RASConfig sizes the return address stack.
type RASConfig struct {
	Size int `json:"size" yaml:"size"`
}

// TwoLevelConfig sizes the GAg predictor.
type TwoLevelConfig struct {
	L1Size      uint32 `json:"l1_size" yaml:"l1_size"`
	L2Size      uint32 `json:"l2_size" yaml:"l2_size"`
	HistorySize uint32 `json:"history_size" yaml:"history_size"`
}

// BranchPredictor configures the predictor (spec.md §6 "BranchPredictor").
type BranchPredictor struct {
	Kind     PredictorKind  `json:"kind" yaml:"kind"`
	BTB      BTBConfig      `json:"btb" yaml:"btb"`
	Bimod    BimodConfig    `json:"bimod" yaml:"bimod"`
	Choice   ChoiceConfig   `json:"choice" yaml:"choice"`
	RAS      RASConfig      `json:"ras" yaml:"ras"`
	TwoLevel TwoLevelConfig `json:"two_level" yaml:"two_level"`
}

// DefaultBranchPredictor returns the default BranchPredictor section.
func DefaultBranchPredictor() BranchPredictor {
	return BranchPredictor{
		Kind:     PredictorCombined,
		BTB:      BTBConfig{Sets: 256, Assoc: 4},
		Bimod:    BimodConfig{Size: 1024},
		Choice:   ChoiceConfig{Size: 1024},
		RAS:      RASConfig{Size: 32},
		TwoLevel: TwoLevelConfig{L1Size: 1, L2Size: 1024, HistorySize: 10},
	}
}

// Validate checks BranchPredictor for a recognized Kind and positive sizes.
func (b BranchPredictor) Validate() error {
	switch b.Kind {
	case PredictorPerfect, PredictorTaken, PredictorNotTaken,
		PredictorBimodal, PredictorTwoLevel, PredictorCombined:
	default:
		return fmt.Errorf("branch_predictor.kind: unrecognized kind %q", b.Kind)
	}
	if b.BTB.Sets < 1 || b.BTB.Assoc < 1 {
		return fmt.Errorf("branch_predictor.btb: sets and assoc must be >= 1")
	}
	if b.RAS.Size < 1 {
		return fmt.Errorf("branch_predictor.ras.size must be >= 1")
	}
	return nil
}
