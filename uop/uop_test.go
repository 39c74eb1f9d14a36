package uop_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/oosim/uop"
)

var _ = Describe("Uop", func() {
	It("starts with no queued membership and empty deps", func() {
		u := uop.New(1)
		Expect(u.Membership.AnyQueued()).To(BeFalse())
		Expect(u.NumInputs).To(Equal(0))
		Expect(u.NumOutputs).To(Equal(0))
	})

	It("tracks class bits with Has/Any", func() {
		c := uop.ClassCtrl | uop.ClassCond
		Expect(c.Has(uop.ClassCtrl)).To(BeTrue())
		Expect(c.Has(uop.ClassCtrl | uop.ClassUncond)).To(BeFalse())
		Expect(c.Any(uop.ClassUncond | uop.ClassCond)).To(BeTrue())
	})

	It("appends up to 3 inputs and 4 outputs", func() {
		u := uop.New(1)
		u.AddInput(uop.RegGPRBase)
		u.AddInput(uop.RegGPRBase + 1)
		u.AddInput(uop.RegGPRBase + 2)
		Expect(u.NumInputs).To(Equal(3))
		Expect(func() { u.AddInput(uop.RegGPRBase + 3) }).To(Panic())

		u.AddOutput(uop.RegGPRBase)
		u.AddOutput(uop.RegGPRBase + 1)
		u.AddOutput(uop.RegGPRBase + 2)
		u.AddOutput(uop.RegGPRBase + 3)
		Expect(u.NumOutputs).To(Equal(4))
		Expect(func() { u.AddOutput(uop.RegGPRBase + 4) }).To(Panic())
	})

	It("is destroyable only once every membership flag clears and it retired or was squashed", func() {
		u := uop.New(1)
		u.Membership.InROB = true
		Expect(u.Destroyable(true)).To(BeFalse())
		u.Membership.InROB = false
		Expect(u.Destroyable(false)).To(BeFalse())
		Expect(u.Destroyable(true)).To(BeTrue())
	})

	It("panics on membership exclusivity violations", func() {
		u := uop.New(1)
		u.Membership.InIQ = true
		u.Membership.InLQ = true
		Expect(u.CheckInvariants).To(Panic())
	})

	DescribeTable("FileOf routes logical regs to the right physical file",
		func(r uop.LogicalReg, want uop.RegFile) {
			Expect(uop.FileOf(r)).To(Equal(want))
		},
		Entry("GPR", uop.RegGPRBase, uop.FileInt),
		Entry("flags", uop.RegFlags, uop.FileInt),
		Entry("FP stack", uop.RegFPBase, uop.FileFP),
		Entry("XMM", uop.RegXMMBase, uop.FileFP),
		Entry("ea temp", uop.RegEA, uop.FileInt),
	)
})

var _ = Describe("Pool", func() {
	It("allocates monotonically increasing seq ids", func() {
		p := uop.NewPool()
		a := p.Alloc()
		b := p.Alloc()
		Expect(b.Seq).To(BeNumerically(">", a.Seq))
	})

	It("resolves Get by seq and clears on Free", func() {
		p := uop.NewPool()
		u := p.Alloc()
		Expect(p.Get(u.Seq)).To(Equal(u))
		p.Free(u.Seq, true)
		Expect(p.Get(u.Seq)).To(BeNil())
	})

	It("panics if freed while still queued", func() {
		p := uop.NewPool()
		u := p.Alloc()
		u.Membership.InIQ = true
		Expect(func() { p.Free(u.Seq, true) }).To(Panic())
	})
})
