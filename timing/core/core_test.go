package core_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/oosim/config"
	"github.com/sarchlab/oosim/frontend"
	"github.com/sarchlab/oosim/timing/core"
	"github.com/sarchlab/oosim/uop"
)

// straightLineAndBranch builds a four-instruction program: two
// straight-line uops, a conditional branch taken to 0x2000, and one more
// instruction past the target before the program runs off the end (the
// Context reports Finished once fetch runs past the last scripted EIP).
func straightLineAndBranch() frontend.Program {
	return frontend.Program{
		0x1000: {EIP: 0x1000, NextEIP: 0x1004, Class: uop.ClassInt,
			Inputs:  []uop.LogicalReg{uop.RegGPRBase, uop.RegGPRBase + 1},
			Outputs: []uop.LogicalReg{uop.RegGPRBase + 2}},
		0x1004: {EIP: 0x1004, NextEIP: 0x2000, IsBranch: true, BranchSrc: uop.SourceCond,
			Class:  uop.ClassCtrl | uop.ClassCond,
			Inputs: []uop.LogicalReg{uop.RegGPRBase + 2}},
		// Fall-through of the branch. The reference context always follows
		// each instruction's NextEIP, so this entry is never executed, even
		// while fetch speculates on the not-taken path; it is scripted as a
		// self-loop.
		0x1008: {EIP: 0x1008, NextEIP: 0x1008, Class: uop.ClassInt,
			Outputs: []uop.LogicalReg{uop.RegGPRBase + 4}},
		0x2000: {EIP: 0x2000, NextEIP: 0x2004, Class: uop.ClassInt,
			Inputs:  []uop.LogicalReg{uop.RegGPRBase + 2},
			Outputs: []uop.LogicalReg{uop.RegGPRBase + 3}},
	}
}

func runCycles(c *core.Core, n int) {
	for i := 0; i < n; i++ {
		c.Tick()
	}
}

var _ = Describe("Core", func() {
	var pool *uop.Pool
	var cfg *config.Simulator

	BeforeEach(func() {
		pool = uop.NewPool()
		cfg = config.Default()
	})

	Context("with a predictor that guesses the branch correctly", func() {
		It("commits every instruction without ever recovering", func() {
			cfg.BranchPredictor.Kind = config.PredictorTaken

			c := core.NewCore(0, cfg, pool, nil)
			ctx := frontend.NewReferenceContext(0, straightLineAndBranch(), pool, 0x1000)
			c.MapContext(0, ctx)

			runCycles(c, 40)

			snap := c.Snapshot()
			Expect(snap.Threads).To(HaveLen(1))
			Expect(snap.Threads[0].Committed.Total()).To(BeEquivalentTo(3))
			Expect(snap.Threads[0].Branch.Branches).To(BeEquivalentTo(1))
			Expect(snap.Threads[0].Branch.Mispred).To(BeEquivalentTo(0))
			Expect(pool.Live()).To(BeZero())
		})
	})

	Context("with a predictor that always guesses not-taken", func() {
		It("recovers after the misprediction and still commits the correct path", func() {
			cfg.BranchPredictor.Kind = config.PredictorNotTaken
			// Recover at commit rather than writeback: by then the branch's
			// own retirement has already advanced the context's checkpoint
			// to the correct target, so fetch resumes there directly instead
			// of re-fetching the still-in-flight branch uop a second time.
			cfg.General.RecoverKind = config.RecoverCommit

			c := core.NewCore(0, cfg, pool, nil)
			ctx := frontend.NewReferenceContext(0, straightLineAndBranch(), pool, 0x1000)
			c.MapContext(0, ctx)

			runCycles(c, 60)

			snap := c.Snapshot()
			Expect(snap.Threads).To(HaveLen(1))
			Expect(snap.Threads[0].Branch.Branches).To(BeEquivalentTo(1))
			Expect(snap.Threads[0].Branch.Mispred).To(BeEquivalentTo(1))
			// The branch itself plus the two straight-line uops on either
			// side of it all commit despite the wrong-path squash.
			Expect(snap.Threads[0].Committed.Total()).To(BeEquivalentTo(3))
			Expect(pool.Live()).To(BeZero())
		})
	})

	Context("Idle", func() {
		It("reports true once a mapped thread's queues and ROB region drain", func() {
			cfg.BranchPredictor.Kind = config.PredictorTaken

			c := core.NewCore(0, cfg, pool, nil)
			ctx := frontend.NewReferenceContext(0, straightLineAndBranch(), pool, 0x1000)
			c.MapContext(0, ctx)

			runCycles(c, 40)

			Expect(c.Idle(0)).To(BeTrue())
		})
	})
})
