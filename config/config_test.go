package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/oosim/config"
)

var _ = Describe("Simulator config", func() {
	It("passes validation out of the box", func() {
		Expect(config.Default().Validate()).To(Succeed())
	})

	It("rejects an unrecognized recover kind", func() {
		cfg := config.Default()
		cfg.General.RecoverKind = "Bogus"
		Expect(cfg.Validate()).To(HaveOccurred())
	})

	It("rejects a zero core count", func() {
		cfg := config.Default()
		cfg.General.Cores = 0
		Expect(cfg.Validate()).To(HaveOccurred())
	})

	It("round-trips through JSON via SaveConfig/LoadFile", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "sim.json")

		cfg := config.Default()
		cfg.General.Cores = 2
		Expect(cfg.SaveConfig(path)).To(Succeed())

		loaded, err := config.LoadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.General.Cores).To(Equal(2))
	})

	It("loads a YAML file by extension", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "sim.yaml")
		yamlBody := "general:\n  cores: 3\n  threads: 1\n  recover_kind: Writeback\n"
		Expect(os.WriteFile(path, []byte(yamlBody), 0o644)).To(Succeed())

		loaded, err := config.LoadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.General.Cores).To(Equal(3))
		// sections absent from the YAML overlay keep their defaults
		Expect(loaded.Pipeline.DecodeWidth).To(Equal(config.DefaultPipeline().DecodeWidth))
	})

	It("clones functional-unit map entries independently", func() {
		cfg := config.Default()
		clone := cfg.Clone()
		clone.FunctionalUnits[config.FUIntAdd] = config.FUSpec{Count: 9, OpLat: 1, IssueLat: 1}
		Expect(cfg.FunctionalUnits[config.FUIntAdd].Count).NotTo(Equal(9))
	})
})
