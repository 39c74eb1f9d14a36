package config

import "fmt"

// TraceCache configures the trace cache (spec.md §6 "TraceCache").
type TraceCache struct {
	Present   bool `json:"present" yaml:"present"`
	Sets      int  `json:"sets" yaml:"sets"`
	Assoc     int  `json:"assoc" yaml:"assoc"`
	TraceSize int  `json:"trace_size" yaml:"trace_size"`
	BranchMax int  `json:"branch_max" yaml:"branch_max"`
	QueueSize int  `json:"queue_size" yaml:"queue_size"`
}

// DefaultTraceCache returns the default TraceCache section (present but
// modest, matching the teacher's cache-sizing convention of shipping
// sane defaults rather than requiring every knob).
func DefaultTraceCache() TraceCache {
	return TraceCache{
		Present:   true,
		Sets:      64,
		Assoc:     4,
		TraceSize: 16,
		BranchMax: 3,
		QueueSize: 4,
	}
}

// Validate checks TraceCache sizes when the trace cache is present.
func (t TraceCache) Validate() error {
	if !t.Present {
		return nil
	}
	if t.Sets < 1 || t.Assoc < 1 || t.TraceSize < 1 || t.BranchMax < 1 || t.QueueSize < 1 {
		return fmt.Errorf("tracecache: all sizes must be >= 1 when present")
	}
	return nil
}
