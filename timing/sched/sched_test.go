package sched_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/oosim/config"
	"github.com/sarchlab/oosim/frontend"
	"github.com/sarchlab/oosim/timing/core"
	"github.com/sarchlab/oosim/timing/sched"
	"github.com/sarchlab/oosim/uop"
)

// linearProgram builds n straight-line instructions starting at base, each
// 4 bytes apart, so the context reports Finished once fetch runs past the
// last one.
func linearProgram(base uint64, n int) frontend.Program {
	p := frontend.Program{}
	for i := 0; i < n; i++ {
		eip := base + uint64(i*4)
		p[eip] = &frontend.MacroInst{
			EIP:     eip,
			NextEIP: eip + 4,
			Class:   uop.ClassInt,
			Outputs: []uop.LogicalReg{uop.RegGPRBase + uop.LogicalReg(i%8)},
		}
	}
	return p
}

func tickAll(cores []*core.Core, s *sched.Scheduler, cycles int) []error {
	var errs []error
	for i := 0; i < cycles; i++ {
		for _, c := range cores {
			c.Tick()
		}
		if err := s.Tick(); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

var _ = Describe("Scheduler", func() {
	var pool *uop.Pool
	var cfg *config.Simulator

	BeforeEach(func() {
		pool = uop.NewPool()
		cfg = config.Default()
	})

	Context("static mode, enough slots", func() {
		It("maps every submitted context to its own hardware thread", func() {
			cfg.General.Threads = 2
			c := core.NewCore(0, cfg, pool, nil)
			s := sched.New([]*core.Core{c}, cfg.General)

			ctx1 := frontend.NewReferenceContext(1, linearProgram(0x1000, 4), pool, 0x1000)
			ctx2 := frontend.NewReferenceContext(2, linearProgram(0x5000, 4), pool, 0x5000)
			s.Submit(ctx1)
			s.Submit(ctx2)

			Expect(s.Tick()).To(Succeed())
			Expect(s.Allocated()).To(Equal(2))
			Expect(s.Pending()).To(Equal(0))
			Expect(c.Mapped(0)).To(BeTrue())
			Expect(c.Mapped(1)).To(BeTrue())
		})
	})

	Context("static mode, no free slot", func() {
		It("reports an error instead of silently dropping the context", func() {
			cfg.General.Threads = 1
			c := core.NewCore(0, cfg, pool, nil)
			s := sched.New([]*core.Core{c}, cfg.General)

			ctx1 := frontend.NewReferenceContext(1, linearProgram(0x1000, 4), pool, 0x1000)
			ctx2 := frontend.NewReferenceContext(2, linearProgram(0x5000, 4), pool, 0x5000)
			s.Submit(ctx1)
			s.Submit(ctx2)

			Expect(s.Tick()).To(HaveOccurred()) // ctx1 takes the one slot; ctx2 finds none
			Expect(s.Tick()).To(HaveOccurred())
			Expect(s.Allocated()).To(Equal(1))
			Expect(s.Pending()).To(Equal(1))
		})
	})

	Context("dynamic mode", func() {
		It("evicts the oldest allocation once its quantum elapses and its pipeline drains, and hands the slot to the next pending context", func() {
			cfg.General.Threads = 1
			cfg.General.ContextSwitch = true
			cfg.General.ContextQuantum = 1

			c := core.NewCore(0, cfg, pool, nil)
			s := sched.New([]*core.Core{c}, cfg.General)

			ctx1 := frontend.NewReferenceContext(1, linearProgram(0x1000, 20), pool, 0x1000)
			ctx2 := frontend.NewReferenceContext(2, linearProgram(0x5000, 20), pool, 0x5000)
			s.Submit(ctx1)
			s.Submit(ctx2)

			Expect(s.Tick()).To(Succeed())
			Expect(s.Allocated()).To(Equal(1))
			Expect(s.Pending()).To(Equal(1))

			errs := tickAll([]*core.Core{c}, s, 40)
			Expect(errs).To(BeEmpty())

			// One context occupies the single slot at a time, but the
			// quantum-driven eviction must have let the slot change hands
			// at least once across 40 cycles.
			Expect(s.Allocated()).To(Equal(1))
			Expect(c.Mapped(0)).To(BeTrue())
		})
	})
})
