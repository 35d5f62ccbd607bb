// Package vm provides the data structures for simulating virtual memory,
// including page tables, page frame accounting, and processes.
package vm

// PID stands for Process ID.
type PID uint32

// A VPN is a virtual page number.
type VPN uint64

// A PFN is a physical page frame number.
type PFN uint64

// Access describes the rights of a memory access or the rights granted by a
// page table entry.
type Access uint8

// The possible access rights. A writable page is always also readable, so
// pages populated for write carry AccessReadWrite.
const (
	AccessNone  Access = 0
	AccessRead  Access = 1 << 0
	AccessWrite Access = 1 << 1

	AccessReadWrite = AccessRead | AccessWrite
)

// Allows returns true if every right that req asks for is granted by a.
func (a Access) Allows(req Access) bool {
	return a&req == req
}

func (a Access) String() string {
	switch a {
	case AccessNone:
		return "none"
	case AccessRead:
		return "r"
	case AccessWrite:
		return "w"
	case AccessReadWrite:
		return "rw"
	}
	return "invalid"
}
