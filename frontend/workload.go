package frontend

import (
	"encoding/json"
	"fmt"
	"os"
)

// Workload is a JSON-encoded list of per-thread programs, the on-disk
// form `cmd/oosim` loads in place of the real ISA decoder spec.md §1
// excludes ("Functional ISA emulation ... is out of scope. The pipeline
// consumes already-produced uops; a Functional Frontend is the only
// dependency."). Each thread is a flat array of MacroInst rather than a
// Program map so EIP order in the file matches fetch order, and
// StartEIP need not equal the array's first entry.
type Workload struct {
	Threads []ThreadProgram `json:"threads"`
}

// ThreadProgram is one guest thread's scripted instruction stream.
type ThreadProgram struct {
	StartEIP uint64      `json:"start_eip"`
	Insts    []MacroInst `json:"insts"`
}

// LoadWorkloadFile reads and validates a Workload from a JSON file.
func LoadWorkloadFile(path string) (*Workload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("frontend: reading workload %q: %w", path, err)
	}
	var w Workload
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("frontend: parsing workload %q: %w", path, err)
	}
	if len(w.Threads) == 0 {
		return nil, fmt.Errorf("frontend: workload %q declares no threads", path)
	}
	for i, tp := range w.Threads {
		if len(tp.Insts) == 0 {
			return nil, fmt.Errorf("frontend: workload %q thread %d has no instructions", path, i)
		}
	}
	return &w, nil
}

// Program builds the EIP-indexed lookup ExecuteInst walks.
func (tp ThreadProgram) Program() Program {
	p := make(Program, len(tp.Insts))
	for i := range tp.Insts {
		inst := tp.Insts[i]
		p[inst.EIP] = &inst
	}
	return p
}
