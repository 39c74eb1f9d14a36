package config

import "fmt"

// Policy selects how a stage's bandwidth is divided among threads
// (spec.md §4.2/§4.4/§4.5/§4.7: Shared | TimeSlice | SwitchOnEvent).
type Policy string

const (
	PolicyShared        Policy = "Shared"
	PolicyTimeSlice     Policy = "TimeSlice"
	PolicySwitchOnEvent Policy = "SwitchOnEvent"
)

// Pipeline holds stage bandwidth/policy knobs (spec.md §6 "Pipeline").
type Pipeline struct {
	FetchKind   Policy `json:"fetch_kind" yaml:"fetch_kind"`
	DecodeWidth int    `json:"decode_width" yaml:"decode_width"`

	DispatchKind  Policy `json:"dispatch_kind" yaml:"dispatch_kind"`
	DispatchWidth int    `json:"dispatch_width" yaml:"dispatch_width"`

	IssueKind  Policy `json:"issue_kind" yaml:"issue_kind"`
	IssueWidth int    `json:"issue_width" yaml:"issue_width"`

	CommitKind  Policy `json:"commit_kind" yaml:"commit_kind"`
	CommitWidth int    `json:"commit_width" yaml:"commit_width"`

	OccupancyStats bool `json:"occupancy_stats" yaml:"occupancy_stats"`
}

// DefaultPipeline returns the default Pipeline section.
func DefaultPipeline() Pipeline {
	return Pipeline{
		FetchKind:      PolicyShared,
		DecodeWidth:    4,
		DispatchKind:   PolicyShared,
		DispatchWidth:  4,
		IssueKind:      PolicyShared,
		IssueWidth:     4,
		CommitKind:     PolicyShared,
		CommitWidth:    4,
		OccupancyStats: true,
	}
}

func validPolicy(p Policy, allowSwitchOnEvent bool) bool {
	switch p {
	case PolicyShared, PolicyTimeSlice:
		return true
	case PolicySwitchOnEvent:
		return allowSwitchOnEvent
	default:
		return false
	}
}

// Validate checks Pipeline widths are positive and policies recognized.
func (p Pipeline) Validate() error {
	if !validPolicy(p.FetchKind, true) {
		return fmt.Errorf("pipeline.fetch_kind: unrecognized policy %q", p.FetchKind)
	}
	if !validPolicy(p.DispatchKind, false) {
		return fmt.Errorf("pipeline.dispatch_kind: unrecognized policy %q", p.DispatchKind)
	}
	if !validPolicy(p.IssueKind, false) {
		return fmt.Errorf("pipeline.issue_kind: unrecognized policy %q", p.IssueKind)
	}
	if !validPolicy(p.CommitKind, false) {
		return fmt.Errorf("pipeline.commit_kind: unrecognized policy %q", p.CommitKind)
	}
	if p.DecodeWidth < 1 || p.DispatchWidth < 1 || p.IssueWidth < 1 || p.CommitWidth < 1 {
		return fmt.Errorf("pipeline: all stage widths must be >= 1")
	}
	return nil
}
