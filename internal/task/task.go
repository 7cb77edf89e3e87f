package task

import "time"

// Status is a task's lifecycle state.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusFailed     Status = "failed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusDone, StatusFailed:
		return true
	}
	return false
}

// CanTransitionTo reports whether the move from s to next is legal.
// Tasks move open → in_progress → done or failed; nothing moves
// backwards.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusOpen:
		return next == StatusInProgress
	case StatusInProgress:
		return next == StatusDone || next == StatusFailed
	}
	return false
}

// ContextRef points a remote worker at the exact code it needs. Both
// line bounds are required: an unbounded ref forces the worker to pull
// whole files, which defeats the point of scoping.
type ContextRef struct {
	Path       string `json:"path"`
	LinesStart *int   `json:"lines_start,omitempty"`
	LinesEnd   *int   `json:"lines_end,omitempty"`
}

// Complete reports whether the ref names a path and carries both
// bounds.
func (r *ContextRef) Complete() bool {
	return r.Path != "" && r.LinesStart != nil && r.LinesEnd != nil
}

// Task is one unit of delegable work.
type Task struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	FilesTouched       []string     `json:"files_touched"`
	EstLinesChanged    int          `json:"est_lines_changed"`
	EstLocalEffortMins *int         `json:"est_local_effort_mins,omitempty"`
	TestCommand        string       `json:"test_command"`
	AssignedTo         string       `json:"assigned_to"`
	NeedsContext       []ContextRef `json:"needs_context,omitempty"`

	Project  string `json:"project,omitempty"`
	Priority int    `json:"priority,omitempty"`
	Status   Status `json:"status"`

	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}
