package tracing

import (
	"sync"
)

// CountTracer tallies finished tasks by kind and their milestones by name.
// It is how the CLI summarizes a run without keeping every task in memory.
type CountTracer struct {
	filter TaskFilter
	lock   sync.Mutex

	inflightTasks map[string]Task

	kindNames []string
	kindCount map[string]uint64
	stepNames []string
	stepCount map[string]uint64
}

// NewCountTracer creates a new CountTracer. The filter may be nil, in which
// case every task is counted.
func NewCountTracer(filter TaskFilter) *CountTracer {
	return &CountTracer{
		filter:        filter,
		inflightTasks: make(map[string]Task),
		kindCount:     make(map[string]uint64),
		stepCount:     make(map[string]uint64),
	}
}

// KindNames returns the task kinds seen, in order of first appearance.
func (t *CountTracer) KindNames() []string {
	return t.kindNames
}

// KindCount returns the number of finished tasks of a kind.
func (t *CountTracer) KindCount(kind string) uint64 {
	return t.kindCount[kind]
}

// StepNames returns the milestone names seen, in order of first appearance.
func (t *CountTracer) StepNames() []string {
	return t.stepNames
}

// StepCount returns the number of milestones recorded with a name.
func (t *CountTracer) StepCount(what string) uint64 {
	return t.stepCount[what]
}

// StartTask remembers the task so its kind can be counted when it ends.
func (t *CountTracer) StartTask(task Task) {
	if t.filter != nil && !t.filter(task) {
		return
	}

	t.lock.Lock()
	t.inflightTasks[task.ID] = task
	t.lock.Unlock()
}

// StepTask counts the milestone.
func (t *CountTracer) StepTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	if _, ok := t.inflightTasks[task.ID]; !ok {
		return
	}

	what := task.Steps[0].What
	if _, ok := t.stepCount[what]; !ok {
		t.stepNames = append(t.stepNames, what)
	}
	t.stepCount[what]++
}

// EndTask counts the task under its kind.
func (t *CountTracer) EndTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	originalTask, ok := t.inflightTasks[task.ID]
	if !ok {
		return
	}

	delete(t.inflightTasks, task.ID)

	if _, ok := t.kindCount[originalTask.Kind]; !ok {
		t.kindNames = append(t.kindNames, originalTask.Kind)
	}
	t.kindCount[originalTask.Kind]++
}
