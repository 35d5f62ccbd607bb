// Package mmu provides a software model of a memory-management unit for a
// single-CPU, multi-process system. It owns the physical frame accounting,
// the per-process two-level page tables, the TLB, and the process switch
// engine with copy-on-write fork semantics.
package mmu

import (
	"container/list"

	"github.com/JongHoB/Operating-System-Programming-3/sim"
	"github.com/JongHoB/Operating-System-Programming-3/vm"
	"github.com/JongHoB/Operating-System-Programming-3/vm/tlb"
)

// Hook positions for observing MMU behavior.
var (
	HookPosPageAlloc = &sim.HookPos{Name: "PageAlloc"}
	HookPosPageFree  = &sim.HookPos{Name: "PageFree"}
	HookPosPageFault = &sim.HookPos{Name: "PageFault"}
	HookPosSwitch    = &sim.HookPos{Name: "ProcessSwitch"}
)

// A FaultResolution describes how a page fault was handled.
type FaultResolution string

// The possible fault resolutions.
const (
	// FaultUpgraded marks a copy-on-write fault on a frame with a single
	// owner. The permission is raised in place, no copy is needed.
	FaultUpgraded FaultResolution = "upgraded"

	// FaultCopied marks a copy-on-write fault on a shared frame. The
	// faulting entry is rebound to a fresh frame.
	FaultCopied FaultResolution = "copied"

	// FaultUnrecoverable marks every fault that is not a copy-on-write
	// write fault, and the copy-on-write case when no frame is free.
	FaultUnrecoverable FaultResolution = "unrecoverable"
)

// A SwitchKind describes what a process switch did.
type SwitchKind string

// The possible switch kinds.
const (
	SwitchReady SwitchKind = "ready"
	SwitchSelf  SwitchKind = "self"
	SwitchFork  SwitchKind = "fork"
)

// AllocInfo is the hook detail for a page allocation.
type AllocInfo struct {
	VPN    vm.VPN
	Access vm.Access
	PFN    vm.PFN
	OK     bool
}

// FaultInfo is the hook detail for a page fault.
type FaultInfo struct {
	VPN        vm.VPN
	Access     vm.Access
	Resolution FaultResolution
}

// SwitchInfo is the hook detail for a process switch.
type SwitchInfo struct {
	PID  vm.PID
	Kind SwitchKind
}

// A Comp is the memory-management unit. It translates virtual page numbers
// of the currently running process to page frame numbers, repairs
// copy-on-write faults, and switches or forks processes.
//
// All operations run to completion on the single logical thread of the
// simulation. Frame map counts are only ever updated together with the page
// table entry mutation they belong to, so the accounting can never dangle.
type Comp struct {
	*sim.ComponentBase

	entriesPerBlock int

	frames *vm.FrameTable
	tlb    *tlb.Comp

	// current is the running process. active is the page table the MMU
	// walks, always current's table.
	current *vm.Process
	active  *vm.PageTable

	// readyQueue holds *vm.Process values in FIFO order.
	readyQueue *list.List
}

// TLB returns the translation cache the MMU consults.
func (c *Comp) TLB() *tlb.Comp {
	return c.tlb
}

// CurrentPID returns the PID of the running process.
func (c *Comp) CurrentPID() vm.PID {
	return c.current.PID
}

// Processes returns the running process followed by the ready processes in
// queue order.
func (c *Comp) Processes() []*vm.Process {
	procs := []*vm.Process{c.current}
	for e := c.readyQueue.Front(); e != nil; e = e.Next() {
		procs = append(procs, e.Value.(*vm.Process))
	}

	return procs
}

// NumFrames returns the number of physical frames.
func (c *Comp) NumFrames() int {
	return c.frames.NumFrames()
}

// NumFree returns the number of free physical frames.
func (c *Comp) NumFree() int {
	return c.frames.NumFree()
}

// MapCount returns the number of page table entries bound to a frame.
func (c *Comp) MapCount(pfn vm.PFN) uint32 {
	return c.frames.MapCount(pfn)
}

// LookupTLB translates vpn through the TLB only. It returns false on a TLB
// miss, without walking the page table.
func (c *Comp) LookupTLB(vpn vm.VPN, access vm.Access) (vm.PFN, bool) {
	return c.tlb.Lookup(vpn, access)
}

// InsertTLB caches a translation for the running process.
func (c *Comp) InsertTLB(vpn vm.VPN, access vm.Access, pfn vm.PFN) {
	c.tlb.Insert(vpn, access, pfn)
}

// Translate resolves vpn for the running process: first through the TLB,
// then by walking the active page table. A successful walk is re-inserted
// into the TLB with the entry's effective permission. Translate performs no
// fault handling; on failure the caller decides whether to invoke
// HandlePageFault and retry.
func (c *Comp) Translate(vpn vm.VPN, access vm.Access) (vm.PFN, bool) {
	pfn, found := c.tlb.Lookup(vpn, access)
	if found {
		return pfn, true
	}

	pte, found := c.active.Find(vpn)
	if !found || !pte.Valid || !pte.Effective.Allows(access) {
		return 0, false
	}

	c.tlb.Insert(vpn, pte.Effective, pte.Frame)

	return pte.Frame, true
}

// AllocPage maps vpn to the lowest-numbered free frame with the given
// permission. Allocating a vpn that is already mapped frees the old mapping
// first. It returns false when vpn is beyond the page table's range or when
// no frame is free; the only state left behind in the latter case is the
// lazily-created inner page table block, which holds no valid entry.
func (c *Comp) AllocPage(vpn vm.VPN, access vm.Access) (vm.PFN, bool) {
	if !c.active.Contains(vpn) {
		c.invokeAllocHook(AllocInfo{VPN: vpn, Access: access, OK: false})
		return 0, false
	}

	c.FreePage(vpn)

	pte := c.active.Entry(vpn)

	pfn, ok := c.frames.Alloc()
	if !ok {
		c.invokeAllocHook(AllocInfo{VPN: vpn, Access: access, OK: false})
		return 0, false
	}

	pte.Valid = true
	pte.Effective = access
	pte.Entitled = access
	pte.Frame = pfn
	c.frames.Retain(pfn)

	c.invokeAllocHook(AllocInfo{VPN: vpn, Access: access, PFN: pfn, OK: true})

	return pfn, true
}

func (c *Comp) invokeAllocHook(info AllocInfo) {
	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosPageAlloc,
		Item:   info.VPN,
		Detail: info,
	})
}

// FreePage unmaps vpn from the running process. Freeing a page that was
// never mapped is a benign no-op. The frame's map count is dropped together
// with the entry, and any cached translation is invalidated, so the frame is
// reclaimed exactly when its last owner frees it.
func (c *Comp) FreePage(vpn vm.VPN) {
	pte, found := c.active.Find(vpn)
	if !found || !pte.Valid {
		return
	}

	c.frames.Release(pte.Frame)
	pte.Reset()
	c.tlb.Invalidate(vpn)

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosPageFree,
		Item:   vpn,
	})
}

// HandlePageFault repairs a failed translation of vpn for the given access.
// The only recoverable case is a copy-on-write write fault: the entry is
// valid and entitled to write, but its effective permission was lowered to
// read-only when the frame became shared. Every other fault, and the
// copy-on-write case when no frame is free, is unrecoverable and reported
// as false. First-touch mapping is never performed here; that is AllocPage's
// job.
func (c *Comp) HandlePageFault(vpn vm.VPN, access vm.Access) bool {
	pte, found := c.active.Find(vpn)
	if !found {
		return c.faultResolved(vpn, access, FaultUnrecoverable)
	}

	isCOWWriteFault := pte.Valid &&
		access.Allows(vm.AccessWrite) &&
		pte.Entitled.Allows(vm.AccessWrite) &&
		!pte.Effective.Allows(vm.AccessWrite)
	if !isCOWWriteFault {
		return c.faultResolved(vpn, access, FaultUnrecoverable)
	}

	if c.frames.MapCount(pte.Frame) == 1 {
		// The sharing already ended; the last owner gets its
		// entitlement back in place.
		pte.Effective = pte.Entitled
		c.tlb.Invalidate(vpn)
		return c.faultResolved(vpn, access, FaultUpgraded)
	}

	newFrame, ok := c.frames.Alloc()
	if !ok {
		return c.faultResolved(vpn, access, FaultUnrecoverable)
	}

	c.frames.Release(pte.Frame)
	pte.Frame = newFrame
	pte.Effective = pte.Entitled
	c.frames.Retain(newFrame)

	// A cached translation may still name the old frame.
	c.tlb.Invalidate(vpn)

	return c.faultResolved(vpn, access, FaultCopied)
}

func (c *Comp) faultResolved(
	vpn vm.VPN,
	access vm.Access,
	resolution FaultResolution,
) bool {
	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosPageFault,
		Item:   vpn,
		Detail: FaultInfo{VPN: vpn, Access: access, Resolution: resolution},
	})

	return resolution != FaultUnrecoverable
}

// SwitchProcess makes the process with the given pid the running process.
//
// The TLB is flushed unconditionally before anything else; translations are
// only meaningful for the active page table, and that table is about to
// change.
//
// If pid names the running process, the switch is already satisfied and
// nothing else happens. If pid is waiting in the ready queue, it is removed
// from the queue, the previously running process is appended to the tail,
// and the page table register is repointed. Otherwise pid names a process
// that does not exist yet, and the running process forks a child with that
// pid.
func (c *Comp) SwitchProcess(pid vm.PID) {
	c.tlb.InvalidateAll()

	if c.current.PID == pid {
		c.invokeSwitchHook(SwitchInfo{PID: pid, Kind: SwitchSelf})
		return
	}

	for e := c.readyQueue.Front(); e != nil; e = e.Next() {
		proc := e.Value.(*vm.Process)
		if proc.PID != pid {
			continue
		}

		c.readyQueue.Remove(e)
		c.readyQueue.PushBack(c.current)
		c.current = proc
		c.active = proc.PageTable

		c.invokeSwitchHook(SwitchInfo{PID: pid, Kind: SwitchReady})

		return
	}

	child := c.fork(pid)

	c.readyQueue.PushBack(c.current)
	c.current = child
	c.active = child.PageTable

	c.invokeSwitchHook(SwitchInfo{PID: pid, Kind: SwitchFork})
}

// fork duplicates the running process's page table into a new child using
// copy-on-write. Writable entries of the parent are demoted to read-only
// before they are copied, so neither side can write the now-shared frame
// without faulting. The entitled permission is inherited unchanged; it is
// what lets the fault handler tell copy-on-write pages from genuinely
// read-only ones.
func (c *Comp) fork(pid vm.PID) *vm.Process {
	child := vm.NewProcess(pid, c.entriesPerBlock)

	c.active.ForEachEntry(func(vpn vm.VPN, pte *vm.PTE) {
		if pte.Effective.Allows(vm.AccessWrite) {
			pte.Effective = vm.AccessRead
		}

		childPTE := child.PageTable.Entry(vpn)
		*childPTE = *pte

		if pte.Valid {
			c.frames.Retain(pte.Frame)
		}
	})

	return child
}

func (c *Comp) invokeSwitchHook(info SwitchInfo) {
	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosSwitch,
		Item:   info.PID,
		Detail: info,
	})
}
