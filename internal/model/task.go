package model

import "time"

// TaskStatus is the lifecycle status of a Task. Terminal states
// (Completed, Failed) never transition back in the core.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
)

// IsTerminal reports whether no further transition is expected.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskCompleted || s == TaskFailed
}

// Task is a leaf unit of work owned by exactly one Event, executed as
// a shell script by a task-process worker.
type Task struct {
	UID         int32
	EventUID    int32
	Name        *string
	Description *string
	OnFailure   *string
	Path        string
	Status      TaskStatus
	Stdout      string
	Stderr      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
	DeletedAt   *time.Time
}

// LightTask is the serialized envelope pushed onto the queue. It
// carries no authoritative status: the Task row is always
// authoritative, the envelope is advisory only.
type LightTask struct {
	UID       int32
	Path      string
	OnFailure *string
}
