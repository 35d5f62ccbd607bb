package driver

import (
	"github.com/JongHoB/Operating-System-Programming-3/vm"
)

// A MemoryManager is the surface of the MMU that the driver replays
// instructions against.
type MemoryManager interface {
	// Translate resolves a virtual page for the running process, through
	// the TLB and then the page table. It performs no fault handling.
	Translate(vpn vm.VPN, access vm.Access) (vm.PFN, bool)

	// AllocPage maps a page for the running process.
	AllocPage(vpn vm.VPN, access vm.Access) (vm.PFN, bool)

	// FreePage unmaps a page of the running process.
	FreePage(vpn vm.VPN)

	// HandlePageFault tries to repair a failed translation.
	HandlePageFault(vpn vm.VPN, access vm.Access) bool

	// SwitchProcess switches to a process, forking it if it is unknown.
	SwitchProcess(pid vm.PID)
}
