package uop

// Class is a bitset classifying what kind of work a uop performs. A single
// uop may carry more than one bit (e.g. a conditional branch is
// CTRL|COND).
type Class uint16

const (
	ClassInt Class = 1 << iota
	ClassLogic
	ClassFP
	ClassMem
	ClassXMM
	ClassCtrl
	ClassCond
	ClassUncond
)

// Has reports whether c contains every bit in mask.
func (c Class) Has(mask Class) bool { return c&mask == mask }

// Any reports whether c contains any bit in mask.
func (c Class) Any(mask Class) bool { return c&mask != 0 }

// BranchSource is the BTB's "2-bit source class flag" (spec.md §3 "value =
// predicted target + 2-bit source class flag (call/return/other)"),
// distinct from Class: it tells fetch whether to consult the RAS instead of
// the BTB, and is meaningless for a non-control uop.
type BranchSource uint8

const (
	SourceOther BranchSource = iota
	SourceCall
	SourceReturn
	SourceCond
)

const (
	maxInputs  = 3
	maxOutputs = 4
)

// Membership records which structural queue a uop currently belongs to.
// Exactly one writer owns each flag (the stage that pushed the uop onto
// that queue), per spec.md's pipeline invariants.
type Membership struct {
	InFetchQ bool
	InUopQ   bool
	InIQ     bool
	InLQ     bool
	InSQ     bool
	InROB    bool
	InEventQ bool
}

// AnyQueued reports whether the uop is tracked by any structural queue.
func (m Membership) AnyQueued() bool {
	return m.InFetchQ || m.InUopQ || m.InIQ || m.InLQ || m.InSQ || m.InROB || m.InEventQ
}

// exclusiveViolation reports whether the uop is in more than one of the IQ,
// LQ and SQ: a non-memory uop lives in the IQ xor a memory uop lives in the
// LQ xor SQ. The event-queue flag is not part of this check.
func (m Membership) exclusiveViolation() bool {
	n := 0
	if m.InIQ {
		n++
	}
	if m.InLQ {
		n++
	}
	if m.InSQ {
		n++
	}
	return n > 1
}

// Status tracks a uop's progress through issue/execute/writeback.
type Status struct {
	Ready     bool
	Issued    bool
	Completed bool
}

// Timestamps records the cycle numbers invariants are defined over.
type Timestamps struct {
	WhenReady   uint64
	IssueTryCyc uint64
	IssueCycle  uint64
}

// PredictorMeta holds the branch-predictor bookkeeping a control uop
// carries from fetch to commit so the predictor can be updated in order
// (spec.md §4.2 step 4, §4.7 step 4, §4.9).
type PredictorMeta struct {
	BTBWay      int
	BimodalIdx  uint32
	GlobalHist  uint32
	ChoiceIdx   uint32
	UsedTwoLvl  bool
	PredTaken   bool
	RASSnapshot int
}

// MemInfo is populated for uops with ClassMem set.
type MemInfo struct {
	Addr   uint64
	Size   int
	Handle uint64 // opaque module-access handle, spec.md §1/§4.5
}

// Uop is the pipeline's unit of work: produced by decode from the
// frontend's already-decoded micro-operation stream, threaded through the
// structural queues by reference (its Seq, not a pointer, is what queues
// store — see spec.md §9 on the slab allocator), and retired or squashed
// exactly once.
type Uop struct {
	Seq   uint64 // monotonic, per simulator
	DiSeq uint64 // dispatch order, per core

	Opcode uint32
	Class  Class

	// Logical dependencies, before renaming.
	InputsLog  [maxInputs]LogicalReg
	NumInputs  int
	OutputsLog [maxOutputs]LogicalReg
	NumOutputs int

	// Physical dependencies, assigned at dispatch (rename).
	InputsPhys   [maxInputs]int
	OutputsPhys  [maxOutputs]int
	OutputsPrev  [maxOutputs]int // previous mapping, for rollback

	EIP        uint64
	PredNEIP   uint64
	TargetNEIP uint64
	NEIP       uint64
	BranchSrc  BranchSource

	SpecMode bool

	Thread int
	Core   int

	Membership Membership
	Status     Status
	Timestamps Timestamps

	Mem MemInfo

	Pred PredictorMeta
}

// New constructs a zero-valued uop with its identity fields set. Callers
// obtain uops from a Pool rather than calling New directly so the slab
// allocator can recycle storage once a uop's membership flags clear.
func New(seq uint64) *Uop {
	u := &Uop{Seq: seq}
	for i := range u.InputsLog {
		u.InputsLog[i] = RegNone
	}
	for i := range u.OutputsLog {
		u.OutputsLog[i] = RegNone
		u.OutputsPrev[i] = -1
		u.OutputsPhys[i] = -1
	}
	for i := range u.InputsPhys {
		u.InputsPhys[i] = -1
	}
	return u
}

// AddInput appends a logical input dependency. Panics if the uop already
// has the maximum of 3 (an implementation bug per spec.md §7 — decode
// produced a malformed uop, never reachable on a valid frontend).
func (u *Uop) AddInput(r LogicalReg) {
	if u.NumInputs >= maxInputs {
		panic("uop: too many input dependencies")
	}
	u.InputsLog[u.NumInputs] = r
	u.NumInputs++
}

// AddOutput appends a logical output dependency. Panics if the uop already
// has the maximum of 4.
func (u *Uop) AddOutput(r LogicalReg) {
	if u.NumOutputs >= maxOutputs {
		panic("uop: too many output dependencies")
	}
	u.OutputsLog[u.NumOutputs] = r
	u.NumOutputs++
}

// ReadyToIssue reports whether every physical input has been produced
// (pending cleared by writeback). pendingFn abstracts over the physical
// register file so this package has no import cycle with rat.
func (u *Uop) ReadyToIssue(pendingFn func(phys int, file RegFile) bool) bool {
	for i := 0; i < u.NumInputs; i++ {
		phys := u.InputsPhys[i]
		if phys < 0 {
			continue
		}
		if pendingFn(phys, FileOf(u.InputsLog[i])) {
			return false
		}
	}
	return true
}

// Destroyable reports whether the uop may be freed: no membership flag is
// set and it has either committed or been squashed (spec.md §3
// "Ownership").
func (u *Uop) Destroyable(retiredOrSquashed bool) bool {
	return !u.Membership.AnyQueued() && retiredOrSquashed
}

// CheckInvariants panics with a diagnostic dump if the uop's membership
// flags violate the mutual-exclusion rule (spec.md §8 invariant 4). This
// is the "fail fast on implementation bug" policy of spec.md §7.
func (u *Uop) CheckInvariants() {
	if u.Membership.exclusiveViolation() {
		panic(InvariantViolation{
			What: "uop present in more than one of {IQ,LQ,SQ}",
			Seq:  u.Seq,
			Dump: u.Membership,
		})
	}
}

// InvariantViolation is the diagnostic payload panicked with when a
// structural invariant is broken on a supposedly-valid configuration.
type InvariantViolation struct {
	What string
	Seq  uint64
	Dump any
}

func (e InvariantViolation) Error() string {
	return "pipeline invariant violated: " + e.What
}
