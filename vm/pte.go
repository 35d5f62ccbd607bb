package vm

// A PTE is a page table entry, mapping one virtual page to one page frame.
//
// Effective is the permission currently enforced during translation.
// Entitled is the permission the owning process ultimately holds on the
// page. The two diverge when a writable page is shared after a fork: the
// entry stays Entitled to write while its Effective permission is lowered
// to read-only until a write fault privatizes the frame.
type PTE struct {
	Valid     bool
	Effective Access
	Entitled  Access
	Frame     PFN
}

// Reset returns the entry to the never-mapped state.
func (p *PTE) Reset() {
	p.Valid = false
	p.Effective = AccessNone
	p.Entitled = AccessNone
	p.Frame = 0
}
