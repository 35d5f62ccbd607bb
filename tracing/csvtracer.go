package tracing

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/tebeka/atexit"

	"github.com/JongHoB/Operating-System-Programming-3/sim"
)

// CSVTracer stores finished tasks into a CSV file.
type CSVTracer struct {
	mu         sync.Mutex
	timeTeller sim.TimeTeller
	path       string
	file       *os.File

	inflightTasks map[string]Task
	finishedTasks []Task
	bufferSize    int
}

// NewCSVTracer creates a CSVTracer that writes to the file at path. If the
// file already exists, it will be overwritten.
func NewCSVTracer(timeTeller sim.TimeTeller, path string) *CSVTracer {
	file, err := os.Create(path)
	if err != nil {
		panic(err)
	}

	t := &CSVTracer{
		timeTeller:    timeTeller,
		path:          path,
		file:          file,
		inflightTasks: make(map[string]Task),
		bufferSize:    1000,
	}

	fmt.Fprintf(file, "ID, ParentID, Kind, What, Where, Start, End, Steps\n")

	atexit.Register(func() { t.Terminate() })

	return t
}

// StartTask records the task start time
func (t *CSVTracer) StartTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	task.StartTime = t.timeTeller.CurrentTime()
	t.inflightTasks[task.ID] = task
}

// StepTask adds a milestone to an in-flight task.
func (t *CSVTracer) StepTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	originalTask, ok := t.inflightTasks[task.ID]
	if !ok {
		return
	}

	step := task.Steps[0]
	step.Time = t.timeTeller.CurrentTime()
	originalTask.Steps = append(originalTask.Steps, step)
	t.inflightTasks[task.ID] = originalTask
}

// EndTask writes the task into the buffer, flushing when it is full.
func (t *CSVTracer) EndTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	originalTask, ok := t.inflightTasks[task.ID]
	if !ok {
		return
	}

	delete(t.inflightTasks, task.ID)

	originalTask.EndTime = t.timeTeller.CurrentTime()
	t.finishedTasks = append(t.finishedTasks, originalTask)

	if len(t.finishedTasks) >= t.bufferSize {
		t.flush()
	}
}

// Terminate flushes the remaining tasks and closes the file.
func (t *CSVTracer) Terminate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.file == nil {
		return
	}

	t.flush()

	err := t.file.Close()
	if err != nil {
		panic(err)
	}

	t.file = nil
}

func (t *CSVTracer) flush() {
	for _, task := range t.finishedTasks {
		fmt.Fprintf(t.file, "%s, %s, %s, %s, %s, %.10f, %.10f, %s\n",
			task.ID,
			task.ParentID,
			task.Kind,
			task.What,
			task.Where,
			task.StartTime,
			task.EndTime,
			stepsString(task.Steps),
		)
	}

	t.finishedTasks = nil
}

func stepsString(steps []TaskStep) string {
	whats := make([]string, 0, len(steps))
	for _, s := range steps {
		whats = append(whats, s.What)
	}

	return strings.Join(whats, ";")
}
