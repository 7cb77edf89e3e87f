package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/warden/internal/logging"
)

func newTestActivity(t *testing.T) (*Activity, string) {
	t.Helper()
	dir := t.TempDir()
	return NewActivity(dir, logging.NewNop()), dir
}

func TestActivity_RecordAndFlush(t *testing.T) {
	a, dir := newTestActivity(t)

	a.Record("multi-file", "allow", false)
	a.Record("multi-file", "block", false)
	a.Record("scan-first", "allow", true)
	a.Record("plan-mode", "ask", false)
	a.Flush()

	reloaded := NewActivity(dir, logging.NewNop()).Load()

	mf := reloaded.Gates["multi-file"]
	assert.Equal(t, 2, mf.Invocations)
	assert.Equal(t, 1, mf.Allows)
	assert.Equal(t, 1, mf.Blocks)
	assert.Equal(t, 0, mf.Advisories)

	sf := reloaded.Gates["scan-first"]
	assert.Equal(t, 1, sf.Invocations)
	assert.Equal(t, 1, sf.Allows)
	assert.Equal(t, 1, sf.Advisories)

	pm := reloaded.Gates["plan-mode"]
	assert.Equal(t, 1, pm.Asks)

	assert.False(t, reloaded.UpdatedAt.IsZero())
}

func TestActivity_FlushWithoutRecordsWritesNothing(t *testing.T) {
	a, _ := newTestActivity(t)

	a.Flush()

	_, err := os.Stat(a.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestActivity_AccumulatesAcrossRuns(t *testing.T) {
	a, dir := newTestActivity(t)
	a.Record("quality", "block", false)
	a.Flush()

	b := NewActivity(dir, logging.NewNop())
	b.Record("quality", "block", false)
	b.Record("quality", "allow", false)
	b.Flush()

	doc := NewActivity(dir, logging.NewNop()).Load()
	q := doc.Gates["quality"]
	assert.Equal(t, 3, q.Invocations)
	assert.Equal(t, 2, q.Blocks)
	assert.Equal(t, 1, q.Allows)
}

func TestActivity_CorruptFileStartsFresh(t *testing.T) {
	a, dir := newTestActivity(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(a.Path()), 0700))
	require.NoError(t, os.WriteFile(a.Path(), []byte("{broken"), 0600))

	a.Record("quality", "allow", false)
	a.Flush()

	doc := NewActivity(dir, logging.NewNop()).Load()
	assert.Equal(t, 1, doc.Gates["quality"].Invocations)
}

func TestActivityDocument_Totals(t *testing.T) {
	doc := &ActivityDocument{Gates: map[string]GateCounters{
		"multi-file": {Invocations: 5, Allows: 3, Blocks: 2},
		"scan-first": {Invocations: 5, Allows: 5, Advisories: 1},
	}}

	totals := doc.Totals()
	assert.Equal(t, 10, totals.Invocations)
	assert.Equal(t, 8, totals.Allows)
	assert.Equal(t, 2, totals.Blocks)
	assert.Equal(t, 1, totals.Advisories)
}

func TestActivityDocument_TotalsNilSafe(t *testing.T) {
	var doc *ActivityDocument
	assert.Equal(t, GateCounters{}, doc.Totals())
}
