package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/JongHoB/Operating-System-Programming-3/trace"
	"github.com/JongHoB/Operating-System-Programming-3/vm"
)

var randomCmd = &cobra.Command{
	Use:   "random",
	Short: "Replay a randomly generated workload.",
	Long: `Random generates a well-formed instruction stream and replays it. ` +
		`With --emit, the stream is written to a file instead, so it can be ` +
		`inspected or replayed later with the run command.`,
	Run: func(cmd *cobra.Command, args []string) {
		seed, _ := cmd.Flags().GetInt64("seed")
		numInsts, _ := cmd.Flags().GetInt("instructions")
		maxVPN, _ := cmd.Flags().GetUint64("max-vpn")
		processes, _ := cmd.Flags().GetInt("processes")
		emit, _ := cmd.Flags().GetString("emit")

		g := trace.NewGenerator(seed)
		g.NumInstructions = numInsts
		g.MaxVPN = vm.VPN(maxVPN)
		g.NumProcesses = processes

		insts := g.Generate()

		if emit != "" {
			writeTrace(emit, insts)
			return
		}

		replay(cmd, insts)
	},
}

func init() {
	rootCmd.AddCommand(randomCmd)

	randomCmd.Flags().Int64("seed", 1, "seed of the workload generator")
	randomCmd.Flags().Int("instructions", 1000,
		"number of instructions to generate")
	randomCmd.Flags().Uint64("max-vpn", 255,
		"largest virtual page number to touch")
	randomCmd.Flags().Int("processes", 4, "number of processes")
	randomCmd.Flags().String("emit", "",
		"write the trace to this file instead of replaying it")
}

func writeTrace(path string, insts []trace.Instruction) {
	f, err := os.Create(path)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	defer f.Close()

	for _, inst := range insts {
		fmt.Fprintln(f, inst.String())
	}
}
