package rat_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/oosim/rat"
)

var _ = Describe("File", func() {
	var f *rat.File

	BeforeEach(func() {
		f = rat.NewFile(8, 4)
	})

	It("starts with every physical register free and unmapped", func() {
		Expect(f.FreeCount()).To(Equal(8))
		Expect(f.Lookup(0)).To(Equal(-1))
	})

	It("renames an output to a fresh physical register and updates the RAT", func() {
		newPhys, prevPhys, ok := f.RenameOutput(2)
		Expect(ok).To(BeTrue())
		Expect(prevPhys).To(Equal(-1))
		Expect(f.Lookup(2)).To(Equal(newPhys))
		Expect(f.Busy(newPhys)).To(Equal(1))
		Expect(f.FreeCount()).To(Equal(7))
	})

	It("decrements but does not free the previous mapping's busy count on rename", func() {
		p1, _, _ := f.RenameOutput(2)
		Expect(f.Busy(p1)).To(Equal(1))

		p2, prev, ok := f.RenameOutput(2)
		Expect(ok).To(BeTrue())
		Expect(prev).To(Equal(p1))
		Expect(f.Busy(p1)).To(Equal(0))
		// Still not on the free list - only Retire/Rollback releases it.
		Expect(f.FreeCount()).To(Equal(6))
		Expect(p2).NotTo(Equal(p1))
	})

	It("stalls (ok=false) when no physical registers remain", func() {
		small := rat.NewFile(1, 2)
		_, _, ok := small.RenameOutput(0)
		Expect(ok).To(BeTrue())
		_, _, ok = small.RenameOutput(1)
		Expect(ok).To(BeFalse())
	})

	It("round-trips rename+retire: the old mapping returns to the free list", func() {
		before := f.FreeCount()
		_, prev, _ := f.RenameOutput(0)
		f.Retire(prev) // prev == -1 here, no-op
		Expect(f.FreeCount()).To(Equal(before - 1))

		_, prev2, _ := f.RenameOutput(0)
		f.Retire(prev2)
		Expect(f.FreeCount()).To(Equal(before - 1))
	})

	It("round-trips rename+rollback: RAT and free list return to their prior state", func() {
		beforeFree := f.FreeCount()
		beforeRAT := f.Lookup(3)

		newPhys, prevPhys, _ := f.RenameOutput(3)
		f.Rollback(3, newPhys, prevPhys)

		Expect(f.FreeCount()).To(Equal(beforeFree))
		Expect(f.Lookup(3)).To(Equal(beforeRAT))
	})

	It("clears the pending bit on writeback and reports it via Pending", func() {
		newPhys, _, _ := f.RenameOutput(1)
		Expect(f.Pending(newPhys)).To(BeTrue())
		f.SetPending(newPhys, false)
		Expect(f.Pending(newPhys)).To(BeFalse())
	})

	It("rotates the FP top-of-stack pointer within 3 bits", func() {
		fp := rat.NewFile(8, 8)
		Expect(fp.FPTop()).To(Equal(uint8(0)))
		fp.FPPush()
		Expect(fp.FPTop()).To(Equal(uint8(7)))
		fp.FPPop()
		Expect(fp.FPTop()).To(Equal(uint8(0)))
	})
})

var _ = Describe("Renamer", func() {
	It("validates both files meet the minimum dependency-driven size", func() {
		r := rat.NewRenamer(rat.MinSize(3, 4), rat.MinSize(3, 4), 8, 8)
		Expect(r.Validate(3, 4)).To(Succeed())
	})

	It("rejects an undersized file as a configuration error", func() {
		r := rat.NewRenamer(2, 20, 8, 8)
		Expect(r.Validate(3, 4)).To(HaveOccurred())
	})
})
