package main

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vmsim",
	Short: "Vmsim simulates an MMU replaying memory access traces.",
	Long: `Vmsim simulates a software MMU with a TLB, two-level page tables, ` +
		`and copy-on-write forking. It replays an instruction trace, one ` +
		`instruction per cycle, and reports what every access did.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()

	pf.Int("frames", envInt("VMSIM_FRAMES", 128),
		"number of physical page frames")
	pf.Int("entries-per-block", envInt("VMSIM_ENTRIES_PER_BLOCK", 16),
		"fan-out of both page table levels")
	pf.Int("tlb-capacity", envInt("VMSIM_TLB_CAPACITY", 0),
		"number of TLB entries, 0 sizes it to hold a full page table")
	pf.String("output", os.Getenv("VMSIM_OUTPUT"),
		"name of the SQLite database to record into, without the suffix")
	pf.String("csv-trace", os.Getenv("VMSIM_CSV_TRACE"),
		"also write a CSV task trace to this file")
	pf.Bool("monitor", envBool("VMSIM_MONITOR"),
		"start the monitoring web server")
	pf.Int("monitor-port", envInt("VMSIM_MONITOR_PORT", 0),
		"port for the monitoring server, 0 picks a random one")
	pf.BoolP("verbose", "v", false,
		"log every executed instruction")
}

func envInt(name string, fallback int) int {
	v, exists := os.LookupEnv(name)
	if !exists {
		return fallback
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}

	return n
}

func envBool(name string) bool {
	v, exists := os.LookupEnv(name)
	if !exists {
		return false
	}

	return v == "1" || v == "true"
}
