package iqueue_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/oosim/iqueue"
)

var _ = Describe("IQ", func() {
	It("preserves dispatch order while allowing out-of-order removal", func() {
		q := iqueue.NewIQ(iqueue.Private, 8, 1)
		q.Push(0, 1)
		q.Push(0, 2)
		q.Push(0, 3)

		Expect(q.Remove(0, 2)).To(BeTrue())
		Expect(q.InDispatchOrder(0)).To(Equal([]uint64{1, 3}))
	})

	It("enforces private-per-thread capacity independently", func() {
		q := iqueue.NewIQ(iqueue.Private, 2, 2)
		q.Push(0, 1)
		q.Push(0, 2)
		Expect(q.HasFree(0)).To(BeFalse())
		Expect(q.HasFree(1)).To(BeTrue())
	})

	It("enforces a pooled capacity in shared mode", func() {
		q := iqueue.NewIQ(iqueue.Shared, 2, 2)
		q.Push(0, 1)
		q.Push(1, 2)
		Expect(q.HasFree(0)).To(BeFalse())
		Expect(q.HasFree(1)).To(BeFalse())
	})

	It("purges a thread's entries for recovery", func() {
		q := iqueue.NewIQ(iqueue.Private, 8, 1)
		q.Push(0, 1)
		q.Push(0, 2)
		removed := q.Purge(0)
		Expect(removed).To(ConsistOf(uint64(1), uint64(2)))
		Expect(q.Len(0)).To(Equal(0))
	})
})

var _ = Describe("LSQ", func() {
	It("tracks outstanding memory uops in program order", func() {
		lq := iqueue.NewLoadQueue(iqueue.Private, 8, 1)
		lq.Push(0, 5)
		lq.Push(0, 7)
		Expect(lq.InProgramOrder(0)).To(Equal([]uint64{5, 7}))
		Expect(lq.Remove(0, 5)).To(BeTrue())
		Expect(lq.InProgramOrder(0)).To(Equal([]uint64{7}))
	})
})
