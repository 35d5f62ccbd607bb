package simulation

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/JongHoB/Operating-System-Programming-3/vm/mmu"
)

var _ = Describe("Simulation", func() {
	var simulation *Simulation

	BeforeEach(func() {
		outputPath := filepath.Join(GinkgoT().TempDir(), "sim_output")
		simulation = MakeBuilder().
			WithoutMonitoring().
			WithOutputFileName(outputPath).
			Build()
	})

	AfterEach(func() {
		simulation.Terminate()
	})

	It("should provide an engine and a data recorder", func() {
		Expect(simulation.ID()).NotTo(BeEmpty())
		Expect(simulation.GetEngine()).NotTo(BeNil())
		Expect(simulation.GetDataRecorder()).NotTo(BeNil())
		Expect(simulation.GetVisTracer()).NotTo(BeNil())
		Expect(simulation.GetMonitor()).To(BeNil())
	})

	It("should register a component", func() {
		memory := mmu.MakeBuilder().Build("MMU")

		simulation.RegisterComponent(memory)

		Expect(simulation.GetComponentByName("MMU")).To(Equal(memory))
		Expect(simulation.Components()).To(HaveLen(1))
	})

	It("should reject duplicated component names", func() {
		simulation.RegisterComponent(mmu.MakeBuilder().Build("MMU"))

		Expect(func() {
			simulation.RegisterComponent(mmu.MakeBuilder().Build("MMU"))
		}).To(Panic())
	})

	It("should reject a monitor port without monitoring", func() {
		Expect(func() {
			MakeBuilder().
				WithoutMonitoring().
				WithMonitorPort(8080).
				Build()
		}).To(Panic())
	})
})
