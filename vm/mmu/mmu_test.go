package mmu

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/JongHoB/Operating-System-Programming-3/vm"
)

var _ = Describe("MMU", func() {
	var mmu *Comp

	BeforeEach(func() {
		mmu = MakeBuilder().
			WithNumFrames(3).
			WithEntriesPerBlock(4).
			Build("MMU")
	})

	// The sum of map counts over all frames must equal the number of
	// valid PTEs across all processes.
	expectFrameConservation := func() {
		GinkgoHelper()

		validPTEs := 0
		for _, proc := range mmu.Processes() {
			validPTEs += proc.PageTable.NumValidEntries()
		}

		total := uint64(0)
		for pfn := 0; pfn < mmu.NumFrames(); pfn++ {
			total += uint64(mmu.MapCount(vm.PFN(pfn)))
		}

		Expect(total).To(Equal(uint64(validPTEs)))
	}

	Context("page allocation", func() {
		It("should allocate the lowest free frame", func() {
			for i := 0; i < 3; i++ {
				pfn, ok := mmu.AllocPage(vm.VPN(i), vm.AccessReadWrite)

				Expect(ok).To(BeTrue())
				Expect(pfn).To(Equal(vm.PFN(i)))
			}

			expectFrameConservation()
		})

		It("should fail when out of frames", func() {
			for i := 0; i < 3; i++ {
				mmu.AllocPage(vm.VPN(i), vm.AccessReadWrite)
			}

			_, ok := mmu.AllocPage(3, vm.AccessReadWrite)

			Expect(ok).To(BeFalse())
			expectFrameConservation()
		})

		It("should remap an already-mapped page as free-then-map", func() {
			mmu.AllocPage(0, vm.AccessReadWrite)
			mmu.Translate(0, vm.AccessRead)

			pfn, ok := mmu.AllocPage(0, vm.AccessRead)

			Expect(ok).To(BeTrue())
			Expect(pfn).To(Equal(vm.PFN(0)))
			Expect(mmu.MapCount(0)).To(Equal(uint32(1)))
			_, hit := mmu.LookupTLB(0, vm.AccessWrite)
			Expect(hit).To(BeFalse())
			expectFrameConservation()
		})

		It("should reuse a freed frame", func() {
			mmu.AllocPage(0, vm.AccessReadWrite)
			mmu.AllocPage(1, vm.AccessReadWrite)

			mmu.FreePage(0)

			pfn, ok := mmu.AllocPage(2, vm.AccessRead)
			Expect(ok).To(BeTrue())
			Expect(pfn).To(Equal(vm.PFN(0)))
			expectFrameConservation()
		})
	})

	// The table is 16 pages, so vpn 300 is beyond what any process can map.
	// Traces are user input and may name any page number.
	Context("vpn beyond the page table", func() {
		It("should fail the access instead of crashing", func() {
			_, ok := mmu.Translate(300, vm.AccessRead)
			Expect(ok).To(BeFalse())

			Expect(mmu.HandlePageFault(300, vm.AccessRead)).To(BeFalse())
		})

		It("should refuse the allocation", func() {
			_, ok := mmu.AllocPage(300, vm.AccessReadWrite)

			Expect(ok).To(BeFalse())
			Expect(mmu.NumFree()).To(Equal(3))
		})

		It("should treat the free as a no-op", func() {
			Expect(func() { mmu.FreePage(300) }).NotTo(Panic())
		})
	})

	Context("translation", func() {
		It("should walk the table and then hit the TLB", func() {
			mmu.AllocPage(5, vm.AccessReadWrite)

			pfn, ok := mmu.Translate(5, vm.AccessWrite)
			Expect(ok).To(BeTrue())
			Expect(pfn).To(Equal(vm.PFN(0)))

			cached, hit := mmu.LookupTLB(5, vm.AccessWrite)
			Expect(hit).To(BeTrue())
			Expect(cached).To(Equal(pfn))
		})

		It("should refuse a write to a read-only page", func() {
			mmu.AllocPage(5, vm.AccessRead)

			_, ok := mmu.Translate(5, vm.AccessWrite)

			Expect(ok).To(BeFalse())
		})

		It("should refuse an unmapped page", func() {
			_, ok := mmu.Translate(5, vm.AccessRead)

			Expect(ok).To(BeFalse())
		})
	})

	Context("page free", func() {
		It("should leave no PTE and no TLB entry behind", func() {
			mmu.AllocPage(5, vm.AccessReadWrite)
			mmu.Translate(5, vm.AccessWrite)

			mmu.FreePage(5)

			_, hit := mmu.LookupTLB(5, vm.AccessRead)
			Expect(hit).To(BeFalse())

			_, ok := mmu.Translate(5, vm.AccessRead)
			Expect(ok).To(BeFalse())

			expectFrameConservation()
		})

		It("should treat freeing an unmapped page as a no-op", func() {
			mmu.FreePage(5)
			mmu.AllocPage(5, vm.AccessRead)
			mmu.FreePage(5)
			mmu.FreePage(5)

			expectFrameConservation()
		})
	})

	Context("fault handling", func() {
		It("should not recover a fault on an unmapped page", func() {
			Expect(mmu.HandlePageFault(5, vm.AccessWrite)).To(BeFalse())
		})

		It("should not recover a write to a genuinely read-only page",
			func() {
				mmu.AllocPage(5, vm.AccessRead)

				ok := mmu.HandlePageFault(5, vm.AccessWrite)

				Expect(ok).To(BeFalse())
			})
	})

	Context("fork", func() {
		It("should share frames copy-on-write", func() {
			frame, _ := mmu.AllocPage(5, vm.AccessReadWrite)

			mmu.SwitchProcess(1)

			Expect(mmu.CurrentPID()).To(Equal(vm.PID(1)))
			Expect(mmu.MapCount(frame)).To(Equal(uint32(2)))

			procs := mmu.Processes()
			Expect(procs).To(HaveLen(2))

			childPTE, found := procs[0].PageTable.Find(5)
			Expect(found).To(BeTrue())
			Expect(childPTE.Valid).To(BeTrue())
			Expect(childPTE.Effective).To(Equal(vm.AccessRead))
			Expect(childPTE.Entitled).To(Equal(vm.AccessReadWrite))
			Expect(childPTE.Frame).To(Equal(frame))

			parentPTE, found := procs[1].PageTable.Find(5)
			Expect(found).To(BeTrue())
			Expect(parentPTE.Effective).To(Equal(vm.AccessRead))
			Expect(parentPTE.Entitled).To(Equal(vm.AccessReadWrite))

			expectFrameConservation()
		})

		It("should leave genuinely read-only pages read-only", func() {
			mmu.AllocPage(5, vm.AccessRead)

			mmu.SwitchProcess(1)

			childPTE, _ := mmu.Processes()[0].PageTable.Find(5)
			Expect(childPTE.Effective).To(Equal(vm.AccessRead))
			Expect(childPTE.Entitled).To(Equal(vm.AccessRead))
		})

		It("should flush the TLB", func() {
			mmu.AllocPage(5, vm.AccessReadWrite)
			mmu.Translate(5, vm.AccessWrite)

			mmu.SwitchProcess(1)

			Expect(mmu.TLB().NumValid()).To(Equal(0))
		})
	})

	Context("copy-on-write repair", func() {
		It("should copy when the frame is shared", func() {
			frame, _ := mmu.AllocPage(5, vm.AccessReadWrite)
			mmu.SwitchProcess(1)

			// The child writes the shared page.
			_, ok := mmu.Translate(5, vm.AccessWrite)
			Expect(ok).To(BeFalse())

			Expect(mmu.HandlePageFault(5, vm.AccessWrite)).To(BeTrue())

			pfn, ok := mmu.Translate(5, vm.AccessWrite)
			Expect(ok).To(BeTrue())
			Expect(pfn).NotTo(Equal(frame))
			Expect(mmu.MapCount(frame)).To(Equal(uint32(1)))
			Expect(mmu.MapCount(pfn)).To(Equal(uint32(1)))

			// The parent still maps the old frame, untouched.
			parentPTE, _ := mmu.Processes()[1].PageTable.Find(5)
			Expect(parentPTE.Frame).To(Equal(frame))

			expectFrameConservation()
		})

		It("should upgrade in place when the sharing already ended", func() {
			frame, _ := mmu.AllocPage(5, vm.AccessReadWrite)
			mmu.SwitchProcess(1)
			mmu.SwitchProcess(0)
			mmu.FreePage(5)
			mmu.SwitchProcess(1)

			Expect(mmu.MapCount(frame)).To(Equal(uint32(1)))

			Expect(mmu.HandlePageFault(5, vm.AccessWrite)).To(BeTrue())

			pfn, ok := mmu.Translate(5, vm.AccessWrite)
			Expect(ok).To(BeTrue())
			Expect(pfn).To(Equal(frame))
			Expect(mmu.MapCount(frame)).To(Equal(uint32(1)))

			expectFrameConservation()
		})

		It("should leave no stale TLB entry behind a repair", func() {
			mmu.AllocPage(5, vm.AccessReadWrite)
			mmu.SwitchProcess(1)
			mmu.SwitchProcess(0)
			mmu.FreePage(5)
			mmu.SwitchProcess(1)

			// Cache the read-only translation, then repair the write.
			mmu.Translate(5, vm.AccessRead)
			Expect(mmu.HandlePageFault(5, vm.AccessWrite)).To(BeTrue())

			_, hit := mmu.LookupTLB(5, vm.AccessRead)
			Expect(hit).To(BeFalse())
		})

		It("should fail when the copy needs a frame and none is free",
			func() {
				mmu.AllocPage(5, vm.AccessReadWrite)
				mmu.AllocPage(6, vm.AccessReadWrite)
				mmu.AllocPage(7, vm.AccessReadWrite)
				mmu.SwitchProcess(1)

				ok := mmu.HandlePageFault(5, vm.AccessWrite)

				Expect(ok).To(BeFalse())
				expectFrameConservation()
			})
	})

	Context("process switch", func() {
		It("should switch to a ready process", func() {
			mmu.AllocPage(5, vm.AccessReadWrite)
			mmu.SwitchProcess(1)
			mmu.Translate(5, vm.AccessRead)

			mmu.SwitchProcess(0)

			Expect(mmu.CurrentPID()).To(Equal(vm.PID(0)))
			Expect(mmu.TLB().NumValid()).To(Equal(0))

			procs := mmu.Processes()
			Expect(procs[0].PID).To(Equal(vm.PID(0)))
			Expect(procs[1].PID).To(Equal(vm.PID(1)))
		})

		It("should treat a switch to the running pid as a no-op", func() {
			mmu.SwitchProcess(1)

			mmu.SwitchProcess(1)

			Expect(mmu.CurrentPID()).To(Equal(vm.PID(1)))
			Expect(mmu.Processes()).To(HaveLen(2))
		})

		It("should rotate through the ready queue in FIFO order", func() {
			mmu.SwitchProcess(1)
			mmu.SwitchProcess(2)

			// Queue is now [0, 1], current is 2.
			mmu.SwitchProcess(0)
			procs := mmu.Processes()
			Expect(procs[0].PID).To(Equal(vm.PID(0)))
			Expect(procs[1].PID).To(Equal(vm.PID(1)))
			Expect(procs[2].PID).To(Equal(vm.PID(2)))
		})

		It("should isolate the child's writes after repair", func() {
			frame, _ := mmu.AllocPage(5, vm.AccessReadWrite)
			mmu.SwitchProcess(1)
			mmu.HandlePageFault(5, vm.AccessWrite)

			mmu.SwitchProcess(0)

			pfn, ok := mmu.Translate(5, vm.AccessRead)
			Expect(ok).To(BeTrue())
			Expect(pfn).To(Equal(frame))

			// The parent's page is still copy-on-write protected.
			_, ok = mmu.Translate(5, vm.AccessWrite)
			Expect(ok).To(BeFalse())
			Expect(mmu.HandlePageFault(5, vm.AccessWrite)).To(BeTrue())

			expectFrameConservation()
		})
	})
})
