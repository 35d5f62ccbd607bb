// Package tlb provides a software model of a translation lookaside buffer.
package tlb

import (
	"github.com/JongHoB/Operating-System-Programming-3/sim"
	"github.com/JongHoB/Operating-System-Programming-3/vm"
)

// Hook positions for observing TLB behavior.
var (
	HookPosHit        = &sim.HookPos{Name: "TLBHit"}
	HookPosMiss       = &sim.HookPos{Name: "TLBMiss"}
	HookPosInsert     = &sim.HookPos{Name: "TLBInsert"}
	HookPosInvalidate = &sim.HookPos{Name: "TLBInvalidate"}
	HookPosFlush      = &sim.HookPos{Name: "TLBFlush"}
)

type entry struct {
	valid  bool
	vpn    vm.VPN
	access vm.Access
	pfn    vm.PFN
}

// A Comp is a fully-associative, fixed-capacity translation cache. It holds
// translations for the currently running process only and is flushed on
// every process switch. There is no replacement policy; the capacity is
// sized to hold every entry of a page table, so insertion never needs to
// evict.
type Comp struct {
	*sim.ComponentBase

	entries []entry
}

// Lookup returns the frame cached for vpn, if an entry exists whose
// permission allows the requested access. A lookup has no side effect on
// miss.
func (c *Comp) Lookup(vpn vm.VPN, access vm.Access) (vm.PFN, bool) {
	for i := range c.entries {
		e := &c.entries[i]
		if e.valid && e.vpn == vpn && e.access.Allows(access) {
			c.InvokeHook(sim.HookCtx{
				Domain: c,
				Pos:    HookPosHit,
				Item:   vpn,
			})

			return e.pfn, true
		}
	}

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosMiss,
		Item:   vpn,
	})

	return 0, false
}

// Insert caches the translation from vpn to pfn with the given permission.
// If an entry for vpn already exists it is updated in place, never evicted
// and reinserted. With no entry for vpn and no free slot, the insert is
// silently dropped; an undersized TLB degrades to misses, not to a failure.
func (c *Comp) Insert(vpn vm.VPN, access vm.Access, pfn vm.PFN) {
	for i := range c.entries {
		e := &c.entries[i]
		if e.valid && e.vpn == vpn {
			e.access = access
			e.pfn = pfn

			c.invokeInsertHook(vpn)

			return
		}
	}

	for i := range c.entries {
		e := &c.entries[i]
		if !e.valid {
			e.valid = true
			e.vpn = vpn
			e.access = access
			e.pfn = pfn

			c.invokeInsertHook(vpn)

			return
		}
	}
}

func (c *Comp) invokeInsertHook(vpn vm.VPN) {
	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosInsert,
		Item:   vpn,
	})
}

// Invalidate drops any cached translation for vpn, so a removed or changed
// mapping can never be served stale.
func (c *Comp) Invalidate(vpn vm.VPN) {
	for i := range c.entries {
		e := &c.entries[i]
		if e.valid && e.vpn == vpn {
			*e = entry{}
		}
	}

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosInvalidate,
		Item:   vpn,
	})
}

// InvalidateAll drops every cached translation. Called on every process
// switch, because translations are only meaningful for the active page
// table.
func (c *Comp) InvalidateAll() {
	for i := range c.entries {
		c.entries[i] = entry{}
	}

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosFlush,
	})
}

// Capacity returns the number of slots in the TLB.
func (c *Comp) Capacity() int {
	return len(c.entries)
}

// NumValid returns the number of valid entries currently cached.
func (c *Comp) NumValid() int {
	count := 0
	for i := range c.entries {
		if c.entries[i].valid {
			count++
		}
	}

	return count
}
