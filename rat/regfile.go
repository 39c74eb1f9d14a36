// Package rat implements the physical register file and register alias
// table (RAT) used for renaming (spec.md §3 "Physical register file",
// component C2).
package rat

// File is one physical register file (integer or floating-point) shared
// by every hardware thread of a core, or private per-thread — the caller
// decides by how many Files it constructs (spec.md §6 Queues.RfKind).
type File struct {
	busy    []int
	pending []bool
	rat     []int // indexed by logical register number, -1 = unmapped
	free    []int // LIFO of available physical indices

	// fpTop is the 3-bit FP top-of-stack pointer (spec.md §3). Unused for
	// the integer file.
	fpTop uint8
}

// NewFile builds a physical register file of size phregCount backing
// numLogical logical registers, all initially unmapped and all physical
// registers free.
func NewFile(phregCount, numLogical int) *File {
	f := &File{
		busy:    make([]int, phregCount),
		pending: make([]bool, phregCount),
		rat:     make([]int, numLogical),
		free:    make([]int, phregCount),
	}
	for i := range f.rat {
		f.rat[i] = -1
	}
	for i := range f.free {
		f.free[i] = i
	}
	return f
}

// Size returns the total number of physical registers in the file.
func (f *File) Size() int { return len(f.busy) }

// FreeCount returns how many physical registers are currently available
// for a new rename (spec.md §8 invariant 3).
func (f *File) FreeCount() int { return len(f.free) }

// Lookup returns the current physical mapping of a logical register, or
// -1 if it has never been renamed (architectural reset state).
func (f *File) Lookup(logical int) int { return f.rat[logical] }

// Busy returns the reference count of a physical register (spec.md §8
// invariant 2).
func (f *File) Busy(phys int) int { return f.busy[phys] }

// Pending reports whether a physical register's producer has not yet
// completed (writeback clears this).
func (f *File) Pending(phys int) bool { return f.pending[phys] }

// SetPending clears or sets the pending bit of a physical register. The
// issue/writeback stage calls this; clearing it is the wakeup broadcast
// (spec.md §4.6 step 2).
func (f *File) SetPending(phys int, pending bool) { f.pending[phys] = pending }

// RenameOutput allocates a fresh physical register for a logical output,
// points the RAT at it, and returns both the new mapping and the mapping
// it replaces (needed by the caller to stash into the uop's
// OutputsPrev for rollback, spec.md §4.4 step 2). ok is false if no
// physical register is free — the caller must stall dispatch under the
// "rename" bucket (spec.md §4.4 step 1).
func (f *File) RenameOutput(logical int) (newPhys, prevPhys int, ok bool) {
	if len(f.free) == 0 {
		return 0, 0, false
	}
	last := len(f.free) - 1
	newPhys = f.free[last]
	f.free = f.free[:last]

	prevPhys = f.rat[logical]
	f.busy[newPhys]++
	f.pending[newPhys] = true
	if prevPhys >= 0 {
		f.busy[prevPhys]--
	}
	f.rat[logical] = newPhys
	return newPhys, prevPhys, true
}

// RenameInput translates a logical input dependency through the current
// RAT (spec.md §4.4 step 2). Returns -1 if the logical register has never
// been written (reads architectural zero / reset value upstream).
func (f *File) RenameInput(logical int) int {
	return f.rat[logical]
}

// Retire permanently releases the physical register a commit's rename
// superseded: it was already detached from the RAT at dispatch time
// (busy decremented), and is now returned to the free list (spec.md §4.7
// step 3). A prevPhys of -1 (the output had never been mapped before) is
// a no-op.
func (f *File) Retire(prevPhys int) {
	if prevPhys < 0 {
		return
	}
	f.free = append(f.free, prevPhys)
}

// Rollback undoes a single rename performed by a squashed uop: restores
// the RAT entry to the mapping it had before, re-attaches that mapping's
// busy reference, and returns the uop's allocated physical register to
// the free list (spec.md §4.8 step 2 "undo rename").
func (f *File) Rollback(logical, newPhys, prevPhys int) {
	f.busy[newPhys]--
	f.rat[logical] = prevPhys
	if prevPhys >= 0 {
		f.busy[prevPhys]++
	}
	f.free = append(f.free, newPhys)
}

// FPTop returns the current 3-bit FP top-of-stack pointer.
func (f *File) FPTop() uint8 { return f.fpTop & 0x7 }

// FPPush rotates the FP top-of-stack pointer down on an fpu push.
func (f *File) FPPush() { f.fpTop = (f.fpTop - 1) & 0x7 }

// FPPop rotates the FP top-of-stack pointer up on an fpu pop.
func (f *File) FPPop() { f.fpTop = (f.fpTop + 1) & 0x7 }
