package vm

// A PageTable is a sparse two-level table of PTEs. The outer level is a
// fixed-size array of lazily-allocated inner blocks. A nil outer slot means
// no page in that VPN range has ever been mapped.
//
// A table with n entries per block covers n*n virtual pages. VPN bits are
// split as outer = vpn / n, inner = vpn % n.
type PageTable struct {
	entriesPerBlock int
	blocks          []*pteBlock
}

type pteBlock struct {
	entries []PTE
}

// NewPageTable creates an empty page table with the given fan-out per level.
func NewPageTable(entriesPerBlock int) *PageTable {
	if entriesPerBlock <= 0 {
		panic("page table fan-out must be positive")
	}

	return &PageTable{
		entriesPerBlock: entriesPerBlock,
		blocks:          make([]*pteBlock, entriesPerBlock),
	}
}

// EntriesPerBlock returns the fan-out of each level of the table.
func (t *PageTable) EntriesPerBlock() int {
	return t.entriesPerBlock
}

// NumPages returns the number of virtual pages the table can map.
func (t *PageTable) NumPages() int {
	return t.entriesPerBlock * t.entriesPerBlock
}

// Contains reports whether vpn is within the address range the table can
// map. Traces may name arbitrary page numbers, so callers check this before
// allocating table structure.
func (t *PageTable) Contains(vpn VPN) bool {
	return int(vpn) < t.NumPages()
}

func (t *PageTable) indices(vpn VPN) (outer, inner int) {
	return int(vpn) / t.entriesPerBlock, int(vpn) % t.entriesPerBlock
}

// Find returns the entry for vpn without allocating table structure. The
// bool return value indicates if the inner block holding the entry exists.
// A vpn beyond the table's range is simply never found.
func (t *PageTable) Find(vpn VPN) (*PTE, bool) {
	if !t.Contains(vpn) {
		return nil, false
	}

	outer, inner := t.indices(vpn)

	block := t.blocks[outer]
	if block == nil {
		return nil, false
	}

	return &block.entries[inner], true
}

// Entry returns the entry for vpn, lazily allocating the inner block that
// holds it. The vpn must be within the table's range.
func (t *PageTable) Entry(vpn VPN) *PTE {
	if !t.Contains(vpn) {
		panic("vpn out of the range of the page table")
	}

	outer, inner := t.indices(vpn)

	block := t.blocks[outer]
	if block == nil {
		block = &pteBlock{entries: make([]PTE, t.entriesPerBlock)}
		t.blocks[outer] = block
	}

	return &block.entries[inner]
}

// ForEachEntry calls f for every entry in every allocated block, valid or
// not, together with the VPN the entry maps.
func (t *PageTable) ForEachEntry(f func(vpn VPN, pte *PTE)) {
	for outer, block := range t.blocks {
		if block == nil {
			continue
		}

		for inner := range block.entries {
			vpn := VPN(outer*t.entriesPerBlock + inner)
			f(vpn, &block.entries[inner])
		}
	}
}

// NumValidEntries counts the valid entries in the table.
func (t *PageTable) NumValidEntries() int {
	count := 0
	t.ForEachEntry(func(_ VPN, pte *PTE) {
		if pte.Valid {
			count++
		}
	})

	return count
}
