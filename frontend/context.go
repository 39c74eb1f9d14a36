// Package frontend defines the pipeline's view of a guest execution context
// (spec.md §3 "Context") and a reference implementation used to drive
// end-to-end pipeline tests. Functional ISA emulation itself is explicitly
// out of scope (spec.md §1 Non-goals); this package only plays the role of
// the external "Functional Frontend" collaborator the pipeline depends on.
package frontend

import "github.com/sarchlab/oosim/uop"

// Status is the guest context's run state.
type Status int

const (
	Running Status = iota
	SpecMode
	Finished
	Suspended
)

// Context is the opaque handle the pipeline drives during fetch (spec.md
// §3 "an opaque handle produced by the frontend, exposing {pid, eip,
// status, execute_inst()->produces uops, recover()->restore non-speculative
// architectural state}").
type Context interface {
	PID() int
	EIP() uint64
	Status() Status

	// ExecuteInst advances the guest one macro-instruction, producing the
	// uops decode should enqueue. It must not mutate committed
	// architectural state when specMode is true.
	ExecuteInst(specMode bool) []*uop.Uop

	// Recover rewinds to the last known-good (non-speculative)
	// architectural state, called by the recovery protocol (spec.md
	// §4.8 step 4).
	Recover()

	// Commit notifies the frontend that the uop fetched at eip has retired
	// non-speculatively, advancing its checkpoint past it.
	Commit(eip uint64)
}
