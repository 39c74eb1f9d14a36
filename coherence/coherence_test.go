package coherence_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/oosim/coherence"
)

var _ = Describe("Directory", func() {
	It("tracks sharers independently of ownership", func() {
		d := coherence.New(coherence.Config{Sets: 2, Associativity: 2, BlockSize: 64})
		idx, evicted := d.Acquire(0x1000)
		Expect(evicted).To(BeFalse())

		d.SetSharer(idx, 0)
		d.SetSharer(idx, 2)
		Expect(d.NumSharers(idx)).To(Equal(2))
		Expect(d.IsSharer(idx, 0)).To(BeTrue())
		Expect(d.IsSharer(idx, 1)).To(BeFalse())

		d.SetSharer(idx, 0) // already set, no-op
		Expect(d.NumSharers(idx)).To(Equal(2))

		d.ClearSharer(idx, 0)
		Expect(d.NumSharers(idx)).To(Equal(1))
		Expect(d.Owner(idx)).To(Equal(coherence.NoOwner))

		d.SetOwner(idx, 2)
		Expect(d.Owner(idx)).To(Equal(2))
	})

	It("resets sharer state for the victim entry on eviction", func() {
		d := coherence.New(coherence.Config{Sets: 1, Associativity: 1, BlockSize: 64})
		idx, _ := d.Acquire(0x1000)
		d.SetSharer(idx, 0)

		idx2, evicted := d.Acquire(0x2000) // same set, only 1 way -> evicts 0x1000
		Expect(evicted).To(BeTrue())
		Expect(idx2).To(Equal(idx))
		Expect(d.NumSharers(idx2)).To(Equal(0))
	})
})

var _ = Describe("Lock", func() {
	It("grants the lock immediately when free", func() {
		d := coherence.New(coherence.Config{Sets: 1, Associativity: 1, BlockSize: 64})
		idx, _ := d.Acquire(0x1000)
		Expect(d.Lock(idx, nil)).To(BeTrue())
		Expect(d.Locked(idx)).To(BeTrue())
	})

	It("queues a waiter and resumes it in FIFO order on Unlock", func() {
		d := coherence.New(coherence.Config{Sets: 1, Associativity: 1, BlockSize: 64})
		idx, _ := d.Acquire(0x1000)
		d.Lock(idx, nil)

		var resumed []int
		Expect(d.Lock(idx, func() { resumed = append(resumed, 1) })).To(BeFalse())
		Expect(d.Lock(idx, func() { resumed = append(resumed, 2) })).To(BeFalse())

		d.Unlock(idx)
		Expect(resumed).To(Equal([]int{1, 2}))
		Expect(d.Locked(idx)).To(BeFalse())
	})
})
