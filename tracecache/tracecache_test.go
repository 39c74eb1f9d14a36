package tracecache_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/oosim/tracecache"
)

var _ = Describe("Builder", func() {
	It("terminates a trace once it reaches the branch_max limit", func() {
		cfg := tracecache.Config{Sets: 4, Associativity: 2, TraceSize: 100, BranchMax: 2}
		cache := tracecache.New(cfg)
		b := tracecache.NewBuilder(cfg)

		_, done := b.Append(cache, 0x100, false, tracecache.NotBranch, false, 0x104, 0)
		Expect(done).To(BeFalse())

		_, done = b.Append(cache, 0x104, true, tracecache.DirectBranch, true, 0x108, 0x200)
		Expect(done).To(BeFalse())

		tr, done := b.Append(cache, 0x200, true, tracecache.DirectBranch, false, 0x204, 0)
		Expect(done).To(BeTrue())
		Expect(tr.StartEIP).To(Equal(uint64(0x100)))
		Expect(tr.BranchCount).To(Equal(2))
		Expect(tr.UopCount).To(Equal(3))
	})

	It("terminates immediately on an indirect branch or return", func() {
		cfg := tracecache.Config{Sets: 4, Associativity: 2, TraceSize: 100, BranchMax: 10}
		cache := tracecache.New(cfg)
		b := tracecache.NewBuilder(cfg)

		tr, done := b.Append(cache, 0x300, true, tracecache.Return, true, 0x304, 0x999)
		Expect(done).To(BeTrue())
		Expect(tr.BranchCount).To(Equal(1))
	})

	It("installs the finished trace so it can be found by Lookup", func() {
		cfg := tracecache.Config{Sets: 4, Associativity: 2, TraceSize: 100, BranchMax: 1}
		cache := tracecache.New(cfg)
		b := tracecache.NewBuilder(cfg)

		b.Append(cache, 0x400, true, tracecache.DirectBranch, true, 0x404, 0x500)

		tr, hit := cache.Lookup(0x400, 1) // branch taken => flags bit0 set
		Expect(hit).To(BeTrue())
		Expect(tr.TargetEIP).To(Equal(uint64(0x500)))
	})

	It("misses when the predicted branch flags disagree with the installed trace", func() {
		cfg := tracecache.Config{Sets: 4, Associativity: 2, TraceSize: 100, BranchMax: 1}
		cache := tracecache.New(cfg)
		b := tracecache.NewBuilder(cfg)

		b.Append(cache, 0x400, true, tracecache.DirectBranch, true, 0x404, 0x500)

		_, hit := cache.Lookup(0x400, 0) // predicted not-taken, recorded trace was taken
		Expect(hit).To(BeFalse())
	})

	It("flush force-terminates a short in-progress trace", func() {
		cfg := tracecache.Config{Sets: 4, Associativity: 2, TraceSize: 100, BranchMax: 10}
		cache := tracecache.New(cfg)
		b := tracecache.NewBuilder(cfg)

		b.Append(cache, 0x500, false, tracecache.NotBranch, false, 0x504, 0)
		tr, done := b.Flush(cache)
		Expect(done).To(BeTrue())
		Expect(tr.UopCount).To(Equal(1))
	})
})
