package backlog

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/warden/internal/task"
)

func waitForChange(t *testing.T, w *Watcher) bool {
	t.Helper()
	select {
	case <-w.Changes():
		return true
	case <-time.After(3 * time.Second):
		return false
	}
}

func TestWatcher_SignalsOnBacklogSave(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, nil)

	w, err := NewWatcher(store.Path())
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	doc := NewDocument()
	doc.Tasks = append(doc.Tasks, atomicTask("t-1", "first"))
	require.NoError(t, store.Save(doc))

	assert.True(t, waitForChange(t, w), "expected a change notification after save")
}

func TestWatcher_IgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, nil)

	w, err := NewWatcher(store.Path())
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	// A different document in the same directory must not signal.
	other := NewStore(dir, nil)
	report := &AtomicityReport{Timestamp: time.Now(), Summary: ReportSummary{Status: ReportStatusEmpty, CompliancePercent: 100}}
	require.NoError(t, writeJSONFile(other.Path()+".other", report))

	select {
	case <-w.Changes():
		t.Fatal("unexpected notification for unrelated file")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	store := NewStore(t.TempDir(), nil)
	w, err := NewWatcher(store.Path())
	require.NoError(t, err)

	w.Stop()
	w.Stop()
}

func TestWatcher_CoalescesBursts(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, nil)

	w, err := NewWatcher(store.Path())
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	doc := NewDocument()
	for i := 0; i < 5; i++ {
		doc.Tasks = append(doc.Tasks, task.Task{ID: fmt.Sprintf("t-%d", i)})
		require.NoError(t, store.Save(doc))
	}

	require.True(t, waitForChange(t, w))
	// Whatever coalesced backlog remains drains without blocking.
	for {
		select {
		case <-w.Changes():
		case <-time.After(500 * time.Millisecond):
			return
		}
	}
}
