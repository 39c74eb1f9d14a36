package rat

import "fmt"

// Renamer owns the integer and floating-point physical register files for
// one renaming domain (one hardware thread in "private" RfKind, or one
// core in "shared" RfKind — spec.md §6 Queues.RfKind).
type Renamer struct {
	Int *File
	FP  *File
}

// NewRenamer builds a Renamer with the given physical file sizes.
// numLogicalInt/numLogicalFP size each file's RAT, which is indexed by
// logical register number.
func NewRenamer(intSize, fpSize, numLogicalInt, numLogicalFP int) *Renamer {
	return &Renamer{
		Int: NewFile(intSize, numLogicalInt),
		FP:  NewFile(fpSize, numLogicalFP),
	}
}

// MinSize is the smallest a physical file may be sized at, per spec.md §3
// "Minimum sizing": it must admit the widest single uop's dependencies
// (int_dep_count + max_output_deps) plus one so dispatch can always make
// forward progress on a uop with no in-flight competitors.
func MinSize(maxInputs, maxOutputs int) int {
	return maxInputs + maxOutputs + 1
}

// Validate reports an error if either file is undersized relative to
// MinSize — a configuration error per spec.md §7, fatal at startup.
func (r *Renamer) Validate(maxInputs, maxOutputs int) error {
	min := MinSize(maxInputs, maxOutputs)
	if r.Int.Size() < min {
		return fmt.Errorf("rat: integer register file size %d below minimum %d", r.Int.Size(), min)
	}
	if r.FP.Size() < min {
		return fmt.Errorf("rat: floating-point register file size %d below minimum %d", r.FP.Size(), min)
	}
	return nil
}
