package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of vmsim.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("vmsim " + version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
