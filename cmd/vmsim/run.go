package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/JongHoB/Operating-System-Programming-3/driver"
	"github.com/JongHoB/Operating-System-Programming-3/monitoring"
	"github.com/JongHoB/Operating-System-Programming-3/sim"
	"github.com/JongHoB/Operating-System-Programming-3/simulation"
	"github.com/JongHoB/Operating-System-Programming-3/trace"
	"github.com/JongHoB/Operating-System-Programming-3/tracing"
	"github.com/JongHoB/Operating-System-Programming-3/vm/mmu"
	"github.com/JongHoB/Operating-System-Programming-3/vm/tlb"
)

var runCmd = &cobra.Command{
	Use:   "run <trace-file>",
	Short: "Replay an instruction trace.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		insts, err := trace.ParseFile(args[0])
		if err != nil {
			log.Fatalf("Error: %v", err)
		}

		replay(cmd, insts)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// hookTally counts hook invocations by position.
type hookTally struct {
	counts map[*sim.HookPos]uint64
}

func newHookTally() *hookTally {
	return &hookTally{counts: make(map[*sim.HookPos]uint64)}
}

func (t *hookTally) Func(ctx sim.HookCtx) {
	t.counts[ctx.Pos]++
}

type statsTableEntry struct {
	NumInstructions int
	NumFrames       int
	NumMapped       int
	TLBCapacity     int
	TLBHits         uint64
	TLBMisses       uint64
	PageFaults      uint64
	Switches        uint64
	NumProcesses    int
}

func replay(cmd *cobra.Command, insts []trace.Instruction) {
	flags := cmd.Flags()

	frames, _ := flags.GetInt("frames")
	entriesPerBlock, _ := flags.GetInt("entries-per-block")
	tlbCapacity, _ := flags.GetInt("tlb-capacity")
	output, _ := flags.GetString("output")
	csvTrace, _ := flags.GetString("csv-trace")
	monitorOn, _ := flags.GetBool("monitor")
	monitorPort, _ := flags.GetInt("monitor-port")
	verbose, _ := flags.GetBool("verbose")

	builder := simulation.MakeBuilder().WithOutputFileName(output)
	if monitorOn {
		if monitorPort > 0 {
			builder = builder.WithMonitorPort(monitorPort)
		}
	} else {
		builder = builder.WithoutMonitoring()
	}
	s := builder.Build()

	mmuBuilder := mmu.MakeBuilder().
		WithNumFrames(frames).
		WithEntriesPerBlock(entriesPerBlock)
	if tlbCapacity > 0 {
		mmuBuilder = mmuBuilder.WithTLB(tlb.MakeBuilder().
			WithCapacity(tlbCapacity).
			Build("MMU.TLB"))
	}
	memory := mmuBuilder.Build("MMU")
	s.RegisterComponent(memory)
	s.RegisterComponent(memory.TLB())

	replayer := driver.MakeBuilder().
		WithEngine(s.GetEngine()).
		WithMemoryManager(memory).
		WithInstructions(insts).
		WithDataRecorder(s.GetDataRecorder()).
		Build("Driver")
	s.RegisterComponent(replayer)

	counter := tracing.NewCountTracer(nil)
	tracing.CollectTrace(replayer, counter)
	tracing.CollectTrace(replayer, s.GetVisTracer())

	if csvTrace != "" {
		tracing.CollectTrace(replayer,
			tracing.NewCSVTracer(s.GetEngine(), csvTrace))
	}

	if verbose {
		logger := log.New(os.Stderr, "", 0)
		replayer.AcceptHook(driver.NewAccessLogger(logger))
		s.GetEngine().AcceptHook(sim.NewEventLogger(logger))
	}

	tally := newHookTally()
	memory.AcceptHook(tally)
	memory.TLB().AcceptHook(tally)

	var bar *monitoring.ProgressBar
	if monitor := s.GetMonitor(); monitor != nil {
		bar = monitor.CreateProgressBar("replay", uint64(len(insts)))
		replayer.AcceptHook(progressHook{bar})
	}

	replayer.StartReplay()
	err := s.GetEngine().Run()
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	if bar != nil {
		s.GetMonitor().CompleteProgressBar(bar)
	}

	printSummary(memory, counter, tally, len(insts))
	recordStats(s, memory, tally, len(insts))

	s.Terminate()
}

// progressHook advances a progress bar as instructions complete.
type progressHook struct {
	bar *monitoring.ProgressBar
}

func (h progressHook) Func(ctx sim.HookCtx) {
	if ctx.Pos == driver.HookPosInstCompleted {
		h.bar.IncrementFinished(1)
	}
}

func printSummary(
	memory *mmu.Comp,
	counter *tracing.CountTracer,
	tally *hookTally,
	numInsts int,
) {
	fmt.Printf("Replayed %d instructions.\n\n", numInsts)

	fmt.Println("Outcomes:")
	for _, what := range counter.StepNames() {
		fmt.Printf("  %-12s %d\n", what, counter.StepCount(what))
	}

	fmt.Println("\nTLB:")
	hits := tally.counts[tlb.HookPosHit]
	misses := tally.counts[tlb.HookPosMiss]
	fmt.Printf("  %-12s %d\n", "hits", hits)
	fmt.Printf("  %-12s %d\n", "misses", misses)
	if hits+misses > 0 {
		fmt.Printf("  %-12s %.2f%%\n", "hit rate",
			100*float64(hits)/float64(hits+misses))
	}

	fmt.Println("\nMemory:")
	fmt.Printf("  %-12s %d\n", "faults", tally.counts[mmu.HookPosPageFault])
	fmt.Printf("  %-12s %d\n", "switches", tally.counts[mmu.HookPosSwitch])
	fmt.Printf("  %-12s %d / %d\n", "frames",
		memory.NumFrames()-memory.NumFree(), memory.NumFrames())
	fmt.Printf("  %-12s %d\n", "processes", len(memory.Processes()))
}

func recordStats(
	s *simulation.Simulation,
	memory *mmu.Comp,
	tally *hookTally,
	numInsts int,
) {
	recorder := s.GetDataRecorder()
	recorder.CreateTable("mmu_stats", statsTableEntry{})
	recorder.InsertData("mmu_stats", statsTableEntry{
		NumInstructions: numInsts,
		NumFrames:       memory.NumFrames(),
		NumMapped:       memory.NumFrames() - memory.NumFree(),
		TLBCapacity:     memory.TLB().Capacity(),
		TLBHits:         tally.counts[tlb.HookPosHit],
		TLBMisses:       tally.counts[tlb.HookPosMiss],
		PageFaults:      tally.counts[mmu.HookPosPageFault],
		Switches:        tally.counts[mmu.HookPosSwitch],
		NumProcesses:    len(memory.Processes()),
	})
}
