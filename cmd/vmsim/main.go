// Vmsim replays memory access traces against a simulated MMU, with a TLB,
// two-level page tables, and copy-on-write forking.
package main

import (
	"github.com/joho/godotenv"
	"github.com/tebeka/atexit"
)

func main() {
	// A missing .env file is fine, flags and defaults still apply.
	_ = godotenv.Load()

	Execute()

	atexit.Exit(0)
}
