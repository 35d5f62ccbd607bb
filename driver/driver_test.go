package driver

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/JongHoB/Operating-System-Programming-3/sim"
	"github.com/JongHoB/Operating-System-Programming-3/trace"
	"github.com/JongHoB/Operating-System-Programming-3/vm"
)

type resultCollector struct {
	results []InstResult
}

func (c *resultCollector) Func(ctx sim.HookCtx) {
	if ctx.Pos != HookPosInstCompleted {
		return
	}

	c.results = append(c.results, ctx.Detail.(InstResult))
}

var _ = Describe("Driver", func() {
	var (
		mockCtrl  *gomock.Controller
		engine    *sim.SerialEngine
		memory    *MockMemoryManager
		collector *resultCollector
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = sim.NewSerialEngine()
		memory = NewMockMemoryManager(mockCtrl)
		collector = &resultCollector{}
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	run := func(insts []trace.Instruction) []InstResult {
		GinkgoHelper()

		d := MakeBuilder().
			WithEngine(engine).
			WithMemoryManager(memory).
			WithInstructions(insts).
			Build("Driver")
		d.AcceptHook(collector)

		d.StartReplay()
		Expect(engine.Run()).To(Succeed())

		return collector.results
	}

	It("should replay an empty stream without scheduling", func() {
		results := run(nil)

		Expect(results).To(BeEmpty())
	})

	It("should allocate pages", func() {
		memory.EXPECT().
			AllocPage(vm.VPN(5), vm.AccessReadWrite).
			Return(vm.PFN(0), true)

		results := run([]trace.Instruction{
			{Op: trace.OpAlloc, VPN: 5, Access: vm.AccessReadWrite},
		})

		Expect(results).To(HaveLen(1))
		Expect(results[0].Outcome).To(Equal(OutcomeAllocated))
		Expect(results[0].PFN).To(Equal(vm.PFN(0)))
	})

	It("should report allocator exhaustion", func() {
		memory.EXPECT().
			AllocPage(vm.VPN(5), vm.AccessReadWrite).
			Return(vm.PFN(0), false)

		results := run([]trace.Instruction{
			{Op: trace.OpAlloc, VPN: 5, Access: vm.AccessReadWrite},
		})

		Expect(results[0].Outcome).To(Equal(OutcomeOOM))
	})

	It("should translate accesses", func() {
		memory.EXPECT().
			Translate(vm.VPN(5), vm.AccessRead).
			Return(vm.PFN(3), true)

		results := run([]trace.Instruction{
			{Op: trace.OpRead, VPN: 5, Access: vm.AccessRead},
		})

		Expect(results[0].Outcome).To(Equal(OutcomeTranslated))
		Expect(results[0].PFN).To(Equal(vm.PFN(3)))
	})

	It("should repair a fault and retry", func() {
		first := memory.EXPECT().
			Translate(vm.VPN(5), vm.AccessWrite).
			Return(vm.PFN(0), false)
		fault := memory.EXPECT().
			HandlePageFault(vm.VPN(5), vm.AccessWrite).
			Return(true).
			After(first)
		memory.EXPECT().
			Translate(vm.VPN(5), vm.AccessWrite).
			Return(vm.PFN(7), true).
			After(fault)

		results := run([]trace.Instruction{
			{Op: trace.OpWrite, VPN: 5, Access: vm.AccessWrite},
		})

		Expect(results[0].Outcome).To(Equal(OutcomeRepaired))
		Expect(results[0].PFN).To(Equal(vm.PFN(7)))
	})

	It("should record a segfault and keep replaying", func() {
		memory.EXPECT().
			Translate(vm.VPN(5), vm.AccessWrite).
			Return(vm.PFN(0), false)
		memory.EXPECT().
			HandlePageFault(vm.VPN(5), vm.AccessWrite).
			Return(false)
		memory.EXPECT().
			Translate(vm.VPN(6), vm.AccessRead).
			Return(vm.PFN(1), true)

		results := run([]trace.Instruction{
			{Op: trace.OpWrite, VPN: 5, Access: vm.AccessWrite},
			{Op: trace.OpRead, VPN: 6, Access: vm.AccessRead},
		})

		Expect(results).To(HaveLen(2))
		Expect(results[0].Outcome).To(Equal(OutcomeSegfault))
		Expect(results[1].Outcome).To(Equal(OutcomeTranslated))
	})

	It("should free pages and switch processes", func() {
		free := memory.EXPECT().FreePage(vm.VPN(5))
		memory.EXPECT().SwitchProcess(vm.PID(1)).After(free)

		results := run([]trace.Instruction{
			{Op: trace.OpFree, VPN: 5},
			{Op: trace.OpSwitch, PID: 1},
		})

		Expect(results[0].Outcome).To(Equal(OutcomeFreed))
		Expect(results[1].Outcome).To(Equal(OutcomeSwitched))
	})

	It("should advance one cycle per instruction", func() {
		memory.EXPECT().FreePage(gomock.Any()).Times(3)

		run([]trace.Instruction{
			{Op: trace.OpFree, VPN: 1},
			{Op: trace.OpFree, VPN: 2},
			{Op: trace.OpFree, VPN: 3},
		})

		Expect(engine.CurrentTime()).
			To(BeNumerically("~", 3e-9, 1e-15))
	})
})
