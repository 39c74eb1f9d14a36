package eventq_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/oosim/eventq"
)

var _ = Describe("Queue", func() {
	It("only pops events whose When has arrived", func() {
		q := eventq.New()
		q.Insert(eventq.Event{When: 10, DiSeq: 1, Seq: 100})

		_, ok := q.PopIfDue(9)
		Expect(ok).To(BeFalse())

		e, ok := q.PopIfDue(10)
		Expect(ok).To(BeTrue())
		Expect(e.Seq).To(Equal(uint64(100)))
	})

	It("orders by When, breaking ties by DiSeq (older first)", func() {
		q := eventq.New()
		q.Insert(eventq.Event{When: 5, DiSeq: 3, Seq: 1})
		q.Insert(eventq.Event{When: 5, DiSeq: 1, Seq: 2})
		q.Insert(eventq.Event{When: 3, DiSeq: 9, Seq: 3})

		e, _ := q.PopIfDue(5)
		Expect(e.Seq).To(Equal(uint64(3))) // When=3 first regardless of DiSeq
		e, _ = q.PopIfDue(5)
		Expect(e.Seq).To(Equal(uint64(2))) // DiSeq=1 before DiSeq=3 at When=5
		e, _ = q.PopIfDue(5)
		Expect(e.Seq).To(Equal(uint64(1)))
	})

	It("removes all pending events for a squashed uop", func() {
		q := eventq.New()
		q.Insert(eventq.Event{When: 5, DiSeq: 1, Seq: 42})
		q.Insert(eventq.Event{When: 6, DiSeq: 2, Seq: 43})
		q.Remove(42)
		Expect(q.Len()).To(Equal(1))
		e, ok := q.PopIfDue(100)
		Expect(ok).To(BeTrue())
		Expect(e.Seq).To(Equal(uint64(43)))
	})
})
