package vm

// A FrameTable tracks how many page table entries, across all processes,
// point at each physical page frame. A frame with a zero map count is free.
// A frame with a map count above one is shared and must not be written in
// place.
type FrameTable struct {
	mapCounts []uint32
}

// NewFrameTable creates a FrameTable with numFrames frames, all free.
func NewFrameTable(numFrames int) *FrameTable {
	if numFrames <= 0 {
		panic("frame table must have at least one frame")
	}

	return &FrameTable{
		mapCounts: make([]uint32, numFrames),
	}
}

// Alloc finds the lowest-numbered free frame. It does not mark the frame
// used; the caller pairs a successful Alloc with a Retain when it writes the
// entry that points at the frame. The bool return value is false when no
// frame is free.
func (t *FrameTable) Alloc() (PFN, bool) {
	for i, count := range t.mapCounts {
		if count == 0 {
			return PFN(i), true
		}
	}

	return 0, false
}

// Retain records one more entry pointing at the frame.
func (t *FrameTable) Retain(pfn PFN) {
	t.mapCounts[pfn]++
}

// Release records that one entry no longer points at the frame. The frame
// becomes free again only when the last entry drops it.
func (t *FrameTable) Release(pfn PFN) {
	if t.mapCounts[pfn] == 0 {
		panic("releasing a free frame")
	}

	t.mapCounts[pfn]--
}

// MapCount returns the number of entries pointing at the frame.
func (t *FrameTable) MapCount(pfn PFN) uint32 {
	return t.mapCounts[pfn]
}

// NumFrames returns the total number of frames.
func (t *FrameTable) NumFrames() int {
	return len(t.mapCounts)
}

// NumFree returns the number of frames with no entry pointing at them.
func (t *FrameTable) NumFree() int {
	free := 0
	for _, count := range t.mapCounts {
		if count == 0 {
			free++
		}
	}

	return free
}

// TotalMapCount returns the sum of the map counts over all frames. It always
// equals the number of valid PTEs across all page tables.
func (t *FrameTable) TotalMapCount() uint64 {
	var total uint64
	for _, count := range t.mapCounts {
		total += uint64(count)
	}

	return total
}
