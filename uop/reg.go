// Package uop defines the pipeline's unit of work, the micro-operation
// ("uop"), and the slab allocator that owns its lifetime.
package uop

// LogicalReg names one of the architectural (pre-rename) register slots a
// uop can read or write. The set covers integer GPRs, segment registers, a
// flags pseudo-register, the FP stack, the XMM file, and three internal
// temporaries used to thread effective addresses and memory data through
// the pipeline without a named architectural home.
type LogicalReg uint8

// Logical register space. GPRs and FP/XMM files are contiguous ranges so
// callers can index them directly; Flags sits between the segment and FP
// files, and the internal temporaries sit past the XMM file.
const (
	RegGPRBase LogicalReg = 0
	NumGPR                = 16

	RegSegBase LogicalReg = RegGPRBase + NumGPR
	NumSeg                = 6

	RegFlags LogicalReg = RegSegBase + NumSeg

	RegFPBase LogicalReg = RegFlags + 1
	NumFP                = 8

	RegXMMBase LogicalReg = RegFPBase + NumFP
	NumXMM                = 8

	// Internal temporaries: effective address, memory data, auxiliary.
	RegEA   LogicalReg = RegXMMBase + NumXMM
	RegData LogicalReg = RegEA + 1
	RegAux  LogicalReg = RegData + 1

	NumLogicalRegs = int(RegAux) + 1

	// RegNone marks an unused input/output slot.
	RegNone LogicalReg = 0xFF
)

// RegFile identifies which physical register file (integer or
// floating-point) a logical register is renamed through.
type RegFile uint8

const (
	FileInt RegFile = iota
	FileFP
)

// FileOf returns which physical register file backs a logical register.
func FileOf(r LogicalReg) RegFile {
	if r >= RegFPBase && r < RegXMMBase+NumXMM {
		return FileFP
	}
	return FileInt
}
