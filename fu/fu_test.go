package fu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/oosim/fu"
)

var _ = Describe("Pool", func() {
	It("reserves a free instance and advances its free_cycle by the issue latency", func() {
		p := fu.NewPool(map[fu.Class]fu.Spec{
			fu.IntAdd: {Count: 1, OpLatency: 3, IssueLatency: 1},
		})

		opLat, ok := p.Reserve(fu.IntAdd, 10)
		Expect(ok).To(BeTrue())
		Expect(opLat).To(Equal(uint64(3)))

		// Same cycle, same (only) instance is now busy until cycle 11.
		_, ok = p.Reserve(fu.IntAdd, 10)
		Expect(ok).To(BeFalse())
		Expect(p.Stats(fu.IntAdd).Denied).To(Equal(uint64(1)))

		_, ok = p.Reserve(fu.IntAdd, 11)
		Expect(ok).To(BeTrue())
	})

	It("picks the instance with the smallest eligible free_cycle among several", func() {
		p := fu.NewPool(map[fu.Class]fu.Spec{
			fu.IntAdd: {Count: 2, OpLatency: 1, IssueLatency: 5},
		})

		_, ok := p.Reserve(fu.IntAdd, 0) // instance A busy until cycle 5
		Expect(ok).To(BeTrue())
		_, ok = p.Reserve(fu.IntAdd, 0) // instance B busy until cycle 5
		Expect(ok).To(BeTrue())
		_, ok = p.Reserve(fu.IntAdd, 0)
		Expect(ok).To(BeFalse())

		_, ok = p.Reserve(fu.IntAdd, 5)
		Expect(ok).To(BeTrue())
	})

	It("defaults unspecified classes to one instance at 1-cycle latency", func() {
		p := fu.NewPool(nil)
		opLat, ok := p.Reserve(fu.FpDiv, 0)
		Expect(ok).To(BeTrue())
		Expect(opLat).To(Equal(uint64(1)))
	})

	It("accumulates waiting time recorded by the caller", func() {
		p := fu.NewPool(nil)
		p.RecordWait(fu.IntMult, 4)
		p.RecordWait(fu.IntMult, 2)
		Expect(p.Stats(fu.IntMult).WaitingTime).To(Equal(uint64(6)))
	})
})
