package frontend

import "github.com/sarchlab/oosim/uop"

// MacroInst is one scripted guest instruction: a real control-flow fact
// (the actual next EIP, not a prediction) plus the uop shapes it decodes
// into. Reference programs are hand-authored for tests; a real system
// would source these from an ISA decoder, which is explicitly out of
// scope (spec.md §1).
type MacroInst struct {
	EIP       uint64           `json:"eip"`
	NextEIP   uint64           `json:"next_eip"` // architectural fall-through/target, ground truth
	IsBranch  bool             `json:"is_branch"`
	BranchSrc uop.BranchSource `json:"branch_src"` // meaningless unless IsBranch
	Class     uop.Class        `json:"class"`
	Inputs    []uop.LogicalReg `json:"inputs"`
	Outputs   []uop.LogicalReg `json:"outputs"`
}

// Program is a fixed mapping from EIP to the instruction fetched there.
type Program map[uint64]*MacroInst

// ReferenceContext is a minimal Context implementation that walks a
// pre-scripted Program, used to drive pipeline integration tests end to
// end (spec.md §8 boundary scenarios).
type ReferenceContext struct {
	pid     int
	program Program
	pool    *uop.Pool

	curEIP       uint64
	committedEIP uint64
	status       Status

	// checkpoints records the EIP of every instruction executed since the
	// last Recover; Recover itself rewinds curEIP to committedEIP and
	// clears this list.
	checkpoints []uint64
}

// NewReferenceContext builds a context starting execution at startEIP.
func NewReferenceContext(pid int, program Program, pool *uop.Pool, startEIP uint64) *ReferenceContext {
	return &ReferenceContext{
		pid:          pid,
		program:      program,
		pool:         pool,
		curEIP:       startEIP,
		committedEIP: startEIP,
		status:       Running,
	}
}

func (c *ReferenceContext) PID() int        { return c.pid }
func (c *ReferenceContext) EIP() uint64     { return c.curEIP }
func (c *ReferenceContext) Status() Status  { return c.status }

// SetSpecMode lets the pipeline flag this context as executing under a
// not-yet-resolved branch, purely informational for the reference
// implementation.
func (c *ReferenceContext) SetSpecMode(spec bool) {
	if spec {
		c.status = SpecMode
	} else if c.status == SpecMode {
		c.status = Running
	}
}

// ExecuteInst produces the uops for the instruction at the current EIP and
// advances to its architecturally-correct successor.
func (c *ReferenceContext) ExecuteInst(specMode bool) []*uop.Uop {
	inst, ok := c.program[c.curEIP]
	if !ok {
		c.status = Finished
		return nil
	}

	u := c.pool.Alloc()
	u.Opcode = uint32(inst.EIP)
	u.Class = inst.Class
	u.EIP = inst.EIP
	u.NEIP = inst.NextEIP
	u.TargetNEIP = inst.NextEIP
	u.BranchSrc = inst.BranchSrc
	u.SpecMode = specMode
	u.Thread = c.pid
	for _, r := range inst.Inputs {
		u.AddInput(r)
	}
	for _, r := range inst.Outputs {
		u.AddOutput(r)
	}

	c.checkpoints = append(c.checkpoints, c.curEIP)
	c.curEIP = inst.NextEIP
	return []*uop.Uop{u}
}

// Commit advances the committed checkpoint once a uop with this EIP
// retires non-speculatively, called by the commit stage.
func (c *ReferenceContext) Commit(eip uint64) {
	if inst, ok := c.program[eip]; ok {
		c.committedEIP = inst.NextEIP
	}
}

// Recover rewinds curEIP to the last committed checkpoint (spec.md §4.8
// step 4 "Call ctx.recover() so the frontend rewinds its speculative
// architectural state").
func (c *ReferenceContext) Recover() {
	c.curEIP = c.committedEIP
	c.checkpoints = nil
	if c.status == SpecMode {
		c.status = Running
	}
	// A Finished status reached while executing past the committed point
	// is undone when the rewound EIP has an instruction again.
	if _, ok := c.program[c.curEIP]; ok && c.status == Finished {
		c.status = Running
	}
}
