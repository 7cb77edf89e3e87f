package backlog

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/warden/internal/task"
)

func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	store := NewStore(t.TempDir(), nil)
	return NewDispatcher(store, task.NewValidator(task.DefaultLimits()), nil)
}

func atomicTask(id, title string) task.Task {
	return task.Task{
		ID:              id,
		Title:           title,
		FilesTouched:    []string{"internal/app/app.go"},
		EstLinesChanged: 80,
		TestCommand:     "go test ./internal/app/...",
		AssignedTo:      "deepseek",
	}
}

func TestDispatcher_AddTasks_AdmitsValidBatch(t *testing.T) {
	d := newTestDispatcher(t)

	doc, err := d.AddTasks([]task.Task{
		atomicTask("t-1", "first"),
		atomicTask("t-2", "second"),
	})

	require.NoError(t, err)
	assert.Equal(t, 2, doc.Stats.Total)
	assert.Equal(t, 2, doc.Stats.Open)
	for _, tk := range doc.Tasks {
		assert.Equal(t, task.StatusOpen, tk.Status)
		assert.False(t, tk.CreatedAt.IsZero())
	}

	// Admission persisted.
	reloaded, err := d.Status()
	require.NoError(t, err)
	assert.Len(t, reloaded.Tasks, 2)
}

func TestDispatcher_AddTasks_GeneratesMissingIDs(t *testing.T) {
	d := newTestDispatcher(t)

	doc, err := d.AddTasks([]task.Task{atomicTask("", "untitled id")})

	require.NoError(t, err)
	require.Len(t, doc.Tasks, 1)
	id := doc.Tasks[0].ID
	require.NotEmpty(t, id)
	_, parseErr := uuid.Parse(id)
	assert.NoError(t, parseErr, "generated ID should be a uuid")
}

func TestDispatcher_AddTasks_RejectsWholeBatchOnOneViolation(t *testing.T) {
	d := newTestDispatcher(t)

	bad := atomicTask("t-bad", "oversized")
	bad.FilesTouched = []string{"a.go", "b.go", "c.go", "d.go"}

	_, err := d.AddTasks([]task.Task{atomicTask("t-good", "fine"), bad})

	var batchErr *BatchError
	require.ErrorAs(t, err, &batchErr)
	require.Len(t, batchErr.Failures, 1)
	assert.Equal(t, "t-bad", batchErr.Failures[0].TaskID)
	require.Len(t, batchErr.Failures[0].Violations, 1)
	assert.Equal(t, "files_touched", batchErr.Failures[0].Violations[0].Field)

	// All-or-nothing: the valid task stayed out too.
	doc, err := d.Status()
	require.NoError(t, err)
	assert.Empty(t, doc.Tasks)
	assert.Zero(t, doc.Stats.Total)
}

func TestDispatcher_AddTasks_RejectsDuplicateAgainstBacklog(t *testing.T) {
	d := newTestDispatcher(t)
	_, err := d.AddTasks([]task.Task{atomicTask("t-1", "first")})
	require.NoError(t, err)

	_, err = d.AddTasks([]task.Task{atomicTask("t-1", "same id again")})

	var batchErr *BatchError
	require.ErrorAs(t, err, &batchErr)
	require.Len(t, batchErr.Failures, 1)
	assert.Equal(t, "id", batchErr.Failures[0].Violations[0].Field)

	doc, err := d.Status()
	require.NoError(t, err)
	assert.Len(t, doc.Tasks, 1)
}

func TestDispatcher_AddTasks_RejectsDuplicateWithinBatch(t *testing.T) {
	d := newTestDispatcher(t)

	_, err := d.AddTasks([]task.Task{
		atomicTask("t-1", "first"),
		atomicTask("t-1", "second with same id"),
	})

	var batchErr *BatchError
	require.ErrorAs(t, err, &batchErr)
	require.Len(t, batchErr.Failures, 1)
	assert.Contains(t, batchErr.Failures[0].Violations[0].Reason, "appears twice")
}

func TestDispatcher_AddTasks_EmptyBatch(t *testing.T) {
	d := newTestDispatcher(t)

	_, err := d.AddTasks(nil)

	assert.ErrorIs(t, err, ErrEmptyBatch)
}

func TestDispatcher_AddTasks_TracksProjects(t *testing.T) {
	d := newTestDispatcher(t)
	first := atomicTask("t-1", "first")
	first.Project = "payments"
	second := atomicTask("t-2", "second")
	second.Project = "payments"

	doc, err := d.AddTasks([]task.Task{first, second})

	require.NoError(t, err)
	require.Contains(t, doc.Projects, "payments")
	assert.Equal(t, 2, doc.Projects["payments"].TaskCount)
	assert.False(t, doc.Projects["payments"].FirstSeen.IsZero())
}

func TestDispatcher_UpdateStatus_Lifecycle(t *testing.T) {
	d := newTestDispatcher(t)
	_, err := d.AddTasks([]task.Task{atomicTask("t-1", "work")})
	require.NoError(t, err)

	updated, err := d.UpdateStatus("t-1", task.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, task.StatusInProgress, updated.Status)

	updated, err = d.UpdateStatus("t-1", task.StatusDone)
	require.NoError(t, err)
	assert.Equal(t, task.StatusDone, updated.Status)

	doc, err := d.Status()
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Stats.Done)
	assert.Zero(t, doc.Stats.Open)
}

func TestDispatcher_UpdateStatus_RejectsIllegalMoves(t *testing.T) {
	d := newTestDispatcher(t)
	_, err := d.AddTasks([]task.Task{atomicTask("t-1", "work")})
	require.NoError(t, err)

	_, err = d.UpdateStatus("t-1", task.StatusDone)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = d.UpdateStatus("t-1", task.Status("bogus"))
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = d.UpdateStatus("missing", task.StatusInProgress)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestDispatcher_Audit_EmptyBacklogPasses(t *testing.T) {
	d := newTestDispatcher(t)

	report, err := d.Audit()

	require.NoError(t, err)
	assert.Equal(t, ReportStatusEmpty, report.Summary.Status)
	assert.Equal(t, 100, report.Summary.CompliancePercent)
	assert.True(t, report.Passed())
	assert.Empty(t, report.Violations)
}

func TestDispatcher_Audit_AllValidPasses(t *testing.T) {
	d := newTestDispatcher(t)
	_, err := d.AddTasks([]task.Task{atomicTask("t-1", "a"), atomicTask("t-2", "b")})
	require.NoError(t, err)

	report, err := d.Audit()

	require.NoError(t, err)
	assert.Equal(t, ReportStatusPass, report.Summary.Status)
	assert.Equal(t, 100, report.Summary.CompliancePercent)
	assert.Equal(t, 2, report.Summary.Valid)
}

func TestDispatcher_Audit_ReportsViolationsWithTaskIDs(t *testing.T) {
	d := newTestDispatcher(t)
	// Plant tasks directly so invalid ones can exist on disk.
	store := d.store
	doc := NewDocument()
	doc.Tasks = []task.Task{
		atomicTask("t-ok-1", "fine"),
		atomicTask("t-ok-2", "fine too"),
		{ID: "t-broken", Title: "no tests", AssignedTo: "deepseek", FilesTouched: []string{"a.go"}},
	}
	doc.Stats = computeStats(doc.Tasks)
	require.NoError(t, store.Save(doc))

	report, err := d.Audit()

	require.NoError(t, err)
	assert.Equal(t, ReportStatusFail, report.Summary.Status)
	assert.Equal(t, 3, report.Summary.Total)
	assert.Equal(t, 2, report.Summary.Valid)
	assert.Equal(t, 1, report.Summary.Invalid)
	// round(100 * 2/3) = 67
	assert.Equal(t, 67, report.Summary.CompliancePercent)
	require.Len(t, report.Violations, 1)
	assert.Equal(t, "t-broken", report.Violations[0].TaskID)
	assert.Equal(t, "test_command", report.Violations[0].Field)
	assert.False(t, report.Passed())

	// The report is persisted for later reads.
	loaded, err := store.LoadReport()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, 67, loaded.Summary.CompliancePercent)
}

func TestDispatcher_Audit_RegeneratesWholesale(t *testing.T) {
	d := newTestDispatcher(t)
	store := d.store

	doc := NewDocument()
	doc.Tasks = []task.Task{{ID: "t-broken", Title: "no tests", AssignedTo: "qwen"}}
	require.NoError(t, store.Save(doc))

	report, err := d.Audit()
	require.NoError(t, err)
	require.Equal(t, ReportStatusFail, report.Summary.Status)

	// Fix the backlog; the next audit must not carry stale violations.
	doc.Tasks = []task.Task{atomicTask("t-fixed", "all good")}
	require.NoError(t, store.Save(doc))

	report, err = d.Audit()
	require.NoError(t, err)
	assert.Equal(t, ReportStatusPass, report.Summary.Status)
	assert.Empty(t, report.Violations)

	loaded, err := store.LoadReport()
	require.NoError(t, err)
	assert.Empty(t, loaded.Violations)
}

func TestDispatcher_Audit_LoadFailurePropagates(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, nil)
	d := NewDispatcher(store, task.NewValidator(task.DefaultLimits()), nil)
	require.NoError(t, writeJSONFile(store.Path(), "not a document"))

	_, err := d.Audit()

	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrEmptyBatch))
}
