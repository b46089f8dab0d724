// Package track keeps the progress state of research tasks and serves
// consistent snapshots to concurrent pollers. The registry is an explicit
// injected object, never ambient global state.
package track

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is a task's lifecycle phase. Transitions only move forward through
// the declared order; Completed and Error are terminal.
type Status int

const (
	StatusInitializing Status = iota
	StatusPlanning
	StatusResearching
	StatusCompleted
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusInitializing:
		return "initializing"
	case StatusPlanning:
		return "planning"
	case StatusResearching:
		return "researching"
	case StatusCompleted:
		return "completed"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further mutation is permitted.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Snapshot is a torn-free copy of one task's state at read time.
type Snapshot struct {
	TaskID          string
	Topic           string
	Status          Status
	Progress        int
	StartTime       time.Time
	DurationSeconds float64
	Error           string
}

// ErrNotFound is returned for status reads of unknown task ids.
var ErrNotFound = errors.New("task not found")

// ErrTerminal is returned for mutation attempts on completed or errored
// tasks. Callers driving a pipeline may treat it as a no-op signal.
var ErrTerminal = errors.New("task already in a terminal state")

type taskRecord struct {
	topic     string
	status    Status
	progress  int
	startTime time.Time
	endTime   time.Time
	errMsg    string
}

// Tracker is a process-wide registry of task state keyed by task id. One
// writer (the pipeline driving the task) mutates each record; any number of
// pollers read it concurrently.
type Tracker struct {
	mu    sync.RWMutex
	tasks map[string]*taskRecord
	now   func() time.Time
}

// NewTracker returns an empty registry.
func NewTracker() *Tracker {
	return &Tracker{tasks: make(map[string]*taskRecord), now: time.Now}
}

// Create registers a new task at Initializing with zero progress and
// returns its id.
func (t *Tracker) Create(topic string) string {
	id := uuid.NewString()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tasks[id] = &taskRecord{
		topic:     topic,
		status:    StatusInitializing,
		startTime: t.now(),
	}
	return id
}

// Advance moves a task forward to status with the given progress estimate.
// Progress is monotonic: a lower value than the current one is raised to it.
// Backward status transitions are rejected, as is any mutation of a
// terminal task. Completed and Error cannot be reached through Advance; use
// Complete and Fail.
func (t *Tracker) Advance(id string, status Status, progress int) error {
	if status.Terminal() {
		return errors.New("terminal states are set via Complete or Fail")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.tasks[id]
	if !ok {
		return ErrNotFound
	}
	if rec.status.Terminal() {
		return ErrTerminal
	}
	if status < rec.status {
		return errors.New("status cannot move backward")
	}
	rec.status = status
	if progress > rec.progress {
		rec.progress = clampPercent(progress)
	}
	return nil
}

// Complete marks a task Completed and forces progress to exactly 100.
func (t *Tracker) Complete(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.tasks[id]
	if !ok {
		return ErrNotFound
	}
	if rec.status.Terminal() {
		return ErrTerminal
	}
	rec.status = StatusCompleted
	rec.progress = 100
	rec.endTime = t.now()
	return nil
}

// Fail marks a task Error with a human-readable message. Progress is frozen
// at its last value.
func (t *Tracker) Fail(id string, msg string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.tasks[id]
	if !ok {
		return ErrNotFound
	}
	if rec.status.Terminal() {
		return ErrTerminal
	}
	rec.status = StatusError
	if msg == "" {
		msg = "research failed"
	}
	rec.errMsg = msg
	rec.endTime = t.now()
	return nil
}

// Get returns a snapshot of the task's current state, or ErrNotFound for an
// unknown id. Duration runs until now for live tasks and stops at the
// terminal transition otherwise.
func (t *Tracker) Get(id string) (Snapshot, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec, ok := t.tasks[id]
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	end := rec.endTime
	if end.IsZero() {
		end = t.now()
	}
	return Snapshot{
		TaskID:          id,
		Topic:           rec.topic,
		Status:          rec.status,
		Progress:        rec.progress,
		StartTime:       rec.startTime,
		DurationSeconds: end.Sub(rec.startTime).Seconds(),
		Error:           rec.errMsg,
	}, nil
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
