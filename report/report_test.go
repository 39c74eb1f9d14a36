package report_test

import (
	"bytes"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/oosim/report"
)

var _ = Describe("BranchStats", func() {
	It("computes prediction accuracy", func() {
		s := report.BranchStats{Branches: 100, Mispred: 5}
		Expect(s.PredAcc()).To(Equal(95.0))
	})

	It("reports zero accuracy with no branches observed", func() {
		Expect(report.BranchStats{}.PredAcc()).To(Equal(0.0))
	})
})

var _ = Describe("StructureStats", func() {
	It("averages occupancy over sampled cycles", func() {
		s := report.StructureStats{Size: 64, Occupancy: 320}
		Expect(s.AverageOccupancy(100)).To(Equal(3.2))
	})
})

var _ = Describe("WriteINI", func() {
	It("renders global and per-core sections", func() {
		r := report.Report{
			GlobalCycles:    1000,
			GlobalCommitted: 800,
			Cores: []report.CoreStats{
				{
					Core:      0,
					Cycles:    1000,
					Committed: 800,
					Threads: []report.ThreadStats{
						{Thread: 0, Branch: report.BranchStats{Branches: 10, Mispred: 1}},
					},
				},
			},
		}

		var buf bytes.Buffer
		Expect(report.WriteINI(&buf, r)).To(Succeed())
		out := buf.String()
		Expect(out).To(ContainSubstring("[Global]"))
		Expect(out).To(ContainSubstring("[Core 0]"))
		Expect(out).To(ContainSubstring("[Core 0.Thread 0]"))
		Expect(strings.Contains(out, "PredAcc = 90.00")).To(BeTrue())
	})
})

var _ = Describe("TraceWriter", func() {
	It("is a safe no-op when nil", func() {
		var w *report.TraceWriter
		Expect(func() { w.Emit(1, 2, report.ActionFetch) }).NotTo(Panic())
		Expect(w.Flush()).To(Succeed())
	})

	It("writes a CSV header and rows", func() {
		var buf bytes.Buffer
		w := report.NewTraceWriter(&buf)
		w.Emit(1, 42, report.ActionCommit)
		Expect(w.Flush()).To(Succeed())

		out := buf.String()
		Expect(out).To(ContainSubstring("row_id,cycle,uop_id,action"))
		Expect(out).To(ContainSubstring("1,42,commit"))
	})
})
