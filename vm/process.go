package vm

// A Process owns a page table. A process is either the currently running
// process or a member of the ready queue.
type Process struct {
	PID       PID
	PageTable *PageTable
}

// NewProcess creates a process with an empty page table.
func NewProcess(pid PID, entriesPerBlock int) *Process {
	return &Process{
		PID:       pid,
		PageTable: NewPageTable(entriesPerBlock),
	}
}
