package task

import (
	"fmt"
	"strings"
)

// Violation is one broken atomicity constraint.
type Violation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Result is the full verdict for one task. Valid iff no constraint is
// violated.
type Result struct {
	Valid      bool        `json:"valid"`
	Violations []Violation `json:"violations,omitempty"`
}

// Limits are the atomicity constraints a task must satisfy. They exist
// to keep delegated work small enough to review in one sitting and
// cheap enough to throw away.
type Limits struct {
	MaxFilesTouched int
	MaxLinesChanged int
	MaxEffortMins   int
	RemoteAssignees []string
}

// DefaultLimits returns the stock constraints.
func DefaultLimits() Limits {
	return Limits{
		MaxFilesTouched: 3,
		MaxLinesChanged: 300,
		MaxEffortMins:   60,
		RemoteAssignees: []string{"deepseek", "qwen"},
	}
}

// Validator checks tasks against a fixed set of limits.
type Validator struct {
	limits  Limits
	remotes map[string]struct{}
}

// NewValidator builds a validator over the given limits.
func NewValidator(limits Limits) *Validator {
	remotes := make(map[string]struct{}, len(limits.RemoteAssignees))
	for _, name := range limits.RemoteAssignees {
		remotes[name] = struct{}{}
	}
	return &Validator{limits: limits, remotes: remotes}
}

// Validate checks every constraint and accumulates all violations; it
// never stops at the first. A task is admissible iff the result is
// valid.
func (v *Validator) Validate(t *Task) Result {
	var violations []Violation

	if len(t.FilesTouched) > v.limits.MaxFilesTouched {
		violations = append(violations, Violation{
			Field: "files_touched",
			Reason: fmt.Sprintf("touches %d files, limit is %d",
				len(t.FilesTouched), v.limits.MaxFilesTouched),
		})
	}

	if t.EstLinesChanged > v.limits.MaxLinesChanged {
		violations = append(violations, Violation{
			Field: "est_lines_changed",
			Reason: fmt.Sprintf("estimates %d changed lines, limit is %d",
				t.EstLinesChanged, v.limits.MaxLinesChanged),
		})
	}

	if t.EstLocalEffortMins != nil && *t.EstLocalEffortMins > v.limits.MaxEffortMins {
		violations = append(violations, Violation{
			Field: "est_local_effort_mins",
			Reason: fmt.Sprintf("estimates %d minutes, limit is %d",
				*t.EstLocalEffortMins, v.limits.MaxEffortMins),
		})
	}

	if strings.TrimSpace(t.TestCommand) == "" {
		violations = append(violations, Violation{
			Field:  "test_command",
			Reason: "test command is required",
		})
	}

	if !v.validAssignee(t.AssignedTo) {
		violations = append(violations, Violation{
			Field: "assigned_to",
			Reason: fmt.Sprintf("%q is not local:<model> or a known remote (%s)",
				t.AssignedTo, strings.Join(v.limits.RemoteAssignees, ", ")),
		})
	}

	for i := range t.NeedsContext {
		if ref := &t.NeedsContext[i]; !ref.Complete() {
			violations = append(violations, Violation{
				Field: "needs_context",
				Reason: fmt.Sprintf("entry %d (%s) must carry a path and both line bounds",
					i, ref.Path),
			})
		}
	}

	return Result{Valid: len(violations) == 0, Violations: violations}
}

func (v *Validator) validAssignee(assignee string) bool {
	if model, ok := strings.CutPrefix(assignee, "local:"); ok {
		return model != ""
	}
	_, ok := v.remotes[assignee]
	return ok
}
