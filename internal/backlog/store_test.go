package backlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/warden/internal/task"
)

func TestStore_LoadAbsentIsEmptyBacklog(t *testing.T) {
	store := NewStore(t.TempDir(), nil)

	doc, err := store.Load()

	require.NoError(t, err)
	assert.Equal(t, documentVersion, doc.Version)
	assert.Empty(t, doc.Tasks)
	assert.NotNil(t, doc.Tasks)
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir(), nil)
	doc := NewDocument()
	doc.Tasks = append(doc.Tasks, task.Task{
		ID:          "t-1",
		Title:       "wire config",
		TestCommand: "go test ./...",
		AssignedTo:  "local:claude",
		Status:      task.StatusOpen,
	})
	doc.Stats = computeStats(doc.Tasks)

	require.NoError(t, store.Save(doc))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, loaded.Tasks, 1)
	assert.Equal(t, "t-1", loaded.Tasks[0].ID)
	assert.Equal(t, 1, loaded.Stats.Total)
	assert.False(t, loaded.UpdatedAt.IsZero())

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestStore_LoadCorruptIsAnError(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, nil)
	require.NoError(t, os.WriteFile(filepath.Join(dir, backlogFile), []byte("{nope"), 0600))

	_, err := store.Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse backlog")
}

func TestStore_ReportRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir(), nil)
	report := &AtomicityReport{
		Timestamp: time.Now().UTC(),
		Summary: ReportSummary{
			Total: 2, Valid: 1, Invalid: 1, CompliancePercent: 50, Status: ReportStatusFail,
		},
		Violations: []ReportViolation{
			{TaskID: "t-2", Field: "test_command", Reason: "test command is required"},
		},
	}

	require.NoError(t, store.SaveReport(report))

	loaded, err := store.LoadReport()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, 50, loaded.Summary.CompliancePercent)
	require.Len(t, loaded.Violations, 1)
	assert.Equal(t, "t-2", loaded.Violations[0].TaskID)
}

func TestStore_LoadReportAbsentIsNil(t *testing.T) {
	store := NewStore(t.TempDir(), nil)

	report, err := store.LoadReport()

	require.NoError(t, err)
	assert.Nil(t, report)
}
