package monitoring

import (
	"sync"
	"time"
)

// A ProgressBar tracks how far a replay has advanced, for the dashboard.
// The driver's completion hook increments it; the web handler reads it from
// the server goroutine, hence the lock.
type ProgressBar struct {
	sync.Mutex
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
	Total     uint64    `json:"total"`
	Finished  uint64    `json:"finished"`
}

// IncrementFinished adds a certain amount to the finished count.
func (b *ProgressBar) IncrementFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.Finished += amount
}
