package frontend_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/oosim/frontend"
	"github.com/sarchlab/oosim/uop"
)

var _ = Describe("ReferenceContext", func() {
	var program frontend.Program

	BeforeEach(func() {
		program = frontend.Program{
			0x100: {EIP: 0x100, NextEIP: 0x104, Class: uop.ClassInt, Outputs: []uop.LogicalReg{0}},
			0x104: {EIP: 0x104, NextEIP: 0x108, Class: uop.ClassInt, Inputs: []uop.LogicalReg{0}},
			0x108: {EIP: 0x108, NextEIP: 0x200, IsBranch: true, Class: uop.ClassCtrl},
		}
	})

	It("walks the program in order, advancing EIP each ExecuteInst", func() {
		pool := uop.NewPool()
		ctx := frontend.NewReferenceContext(0, program, pool, 0x100)

		uops := ctx.ExecuteInst(false)
		Expect(uops).To(HaveLen(1))
		Expect(ctx.EIP()).To(Equal(uint64(0x104)))

		ctx.ExecuteInst(false)
		Expect(ctx.EIP()).To(Equal(uint64(0x108)))
	})

	It("finishes when it falls off the end of the program", func() {
		pool := uop.NewPool()
		ctx := frontend.NewReferenceContext(0, program, pool, 0x200)
		uops := ctx.ExecuteInst(false)
		Expect(uops).To(BeNil())
		Expect(ctx.Status()).To(Equal(frontend.Finished))
	})

	It("rewinds to the last committed checkpoint on Recover", func() {
		pool := uop.NewPool()
		ctx := frontend.NewReferenceContext(0, program, pool, 0x100)

		ctx.ExecuteInst(false)
		ctx.Commit(0x100)

		ctx.ExecuteInst(true) // speculative instruction at 0x104
		Expect(ctx.EIP()).To(Equal(uint64(0x108)))

		ctx.Recover()
		Expect(ctx.EIP()).To(Equal(uint64(0x104)))
	})
})
