package tracing

// A Tracer consumes the tasks that instrumented components emit. Backends
// decide what to keep: the CSV and DB tracers store every finished task,
// the count tracer only tallies them.
type Tracer interface {
	// StartTask is called when a task begins.
	StartTask(task Task)

	// StepTask is called when a task reaches a milestone.
	StepTask(task Task)

	// EndTask is called when a task completes.
	EndTask(task Task)
}
