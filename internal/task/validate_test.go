package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

// atomicTask returns a task satisfying every constraint.
func atomicTask() *Task {
	return &Task{
		ID:              "t-1",
		Title:           "extract config loader",
		FilesTouched:    []string{"internal/config/loader.go", "internal/config/loader_test.go"},
		EstLinesChanged: 120,
		TestCommand:     "go test ./internal/config/...",
		AssignedTo:      "local:claude",
		NeedsContext: []ContextRef{
			{Path: "internal/config/config.go", LinesStart: intPtr(10), LinesEnd: intPtr(80)},
		},
		Status: StatusOpen,
	}
}

func TestValidator_AcceptsAtomicTask(t *testing.T) {
	v := NewValidator(DefaultLimits())

	res := v.Validate(atomicTask())

	assert.True(t, res.Valid)
	assert.Empty(t, res.Violations)
}

func TestValidator_SingleConstraintViolations(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Task)
		wantField string
	}{
		{
			name:      "too many files",
			mutate:    func(tk *Task) { tk.FilesTouched = []string{"a.go", "b.go", "c.go", "d.go"} },
			wantField: "files_touched",
		},
		{
			name:      "too many lines",
			mutate:    func(tk *Task) { tk.EstLinesChanged = 301 },
			wantField: "est_lines_changed",
		},
		{
			name:      "effort too high",
			mutate:    func(tk *Task) { tk.EstLocalEffortMins = intPtr(61) },
			wantField: "est_local_effort_mins",
		},
		{
			name:      "missing test command",
			mutate:    func(tk *Task) { tk.TestCommand = "  " },
			wantField: "test_command",
		},
		{
			name:      "unknown assignee",
			mutate:    func(tk *Task) { tk.AssignedTo = "gpt4" },
			wantField: "assigned_to",
		},
		{
			name:      "bare local prefix",
			mutate:    func(tk *Task) { tk.AssignedTo = "local:" },
			wantField: "assigned_to",
		},
		{
			name:      "empty assignee",
			mutate:    func(tk *Task) { tk.AssignedTo = "" },
			wantField: "assigned_to",
		},
		{
			name: "context ref missing end bound",
			mutate: func(tk *Task) {
				tk.NeedsContext = []ContextRef{{Path: "a.go", LinesStart: intPtr(1)}}
			},
			wantField: "needs_context",
		},
		{
			name: "context ref missing start bound",
			mutate: func(tk *Task) {
				tk.NeedsContext = []ContextRef{{Path: "a.go", LinesEnd: intPtr(9)}}
			},
			wantField: "needs_context",
		},
		{
			name: "context ref missing path",
			mutate: func(tk *Task) {
				tk.NeedsContext = []ContextRef{{LinesStart: intPtr(1), LinesEnd: intPtr(9)}}
			},
			wantField: "needs_context",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewValidator(DefaultLimits())
			tk := atomicTask()
			tt.mutate(tk)

			res := v.Validate(tk)

			assert.False(t, res.Valid)
			require.Len(t, res.Violations, 1)
			assert.Equal(t, tt.wantField, res.Violations[0].Field)
			assert.NotEmpty(t, res.Violations[0].Reason)
		})
	}
}

func TestValidator_BoundaryValuesAreValid(t *testing.T) {
	v := NewValidator(DefaultLimits())
	tk := atomicTask()
	tk.FilesTouched = []string{"a.go", "b.go", "c.go"}
	tk.EstLinesChanged = 300
	tk.EstLocalEffortMins = intPtr(60)

	res := v.Validate(tk)

	assert.True(t, res.Valid)
}

func TestValidator_AbsentEffortIsValid(t *testing.T) {
	v := NewValidator(DefaultLimits())
	tk := atomicTask()
	tk.EstLocalEffortMins = nil

	res := v.Validate(tk)

	assert.True(t, res.Valid)
}

func TestValidator_RemoteAssignees(t *testing.T) {
	v := NewValidator(DefaultLimits())

	for _, assignee := range []string{"deepseek", "qwen", "local:claude", "local:gemma-2b"} {
		tk := atomicTask()
		tk.AssignedTo = assignee
		assert.True(t, v.Validate(tk).Valid, "expected %q to be admissible", assignee)
	}
}

func TestValidator_AccumulatesAllViolations(t *testing.T) {
	v := NewValidator(DefaultLimits())
	tk := &Task{
		Title:           "monster refactor",
		FilesTouched:    []string{"a.go", "b.go", "c.go", "d.go", "e.go"},
		EstLinesChanged: 900,
		AssignedTo:      "somebody",
		NeedsContext: []ContextRef{
			{Path: "a.go"},
			{Path: "b.go", LinesStart: intPtr(1), LinesEnd: intPtr(40)},
			{Path: ""},
		},
	}

	res := v.Validate(tk)

	require.False(t, res.Valid)
	// files, lines, test command, assignee, and two incomplete refs.
	assert.Len(t, res.Violations, 6)

	fields := make(map[string]int)
	for _, violation := range res.Violations {
		fields[violation.Field]++
	}
	assert.Equal(t, 1, fields["files_touched"])
	assert.Equal(t, 1, fields["est_lines_changed"])
	assert.Equal(t, 1, fields["test_command"])
	assert.Equal(t, 1, fields["assigned_to"])
	assert.Equal(t, 2, fields["needs_context"])
}

func TestValidator_OversizedTaskScenario(t *testing.T) {
	// A task clean in every respect except touching four files yields
	// exactly one violation.
	v := NewValidator(DefaultLimits())
	tk := atomicTask()
	tk.FilesTouched = []string{"w.go", "x.go", "y.go", "z.go"}

	res := v.Validate(tk)

	require.False(t, res.Valid)
	require.Len(t, res.Violations, 1)
	assert.Equal(t, "files_touched", res.Violations[0].Field)
	assert.Contains(t, res.Violations[0].Reason, "4 files")
}
