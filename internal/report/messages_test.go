package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPlanModeAsk(t *testing.T) {
	assert.Equal(t,
		"Plan mode is active. Confirm before modifying src/app.go.",
		PlanModeAsk("src/app.go"))
	assert.Equal(t,
		"Plan mode is active. Confirm before modifying files.",
		PlanModeAsk(""))
}

func TestMultiFileBlock(t *testing.T) {
	msg := MultiFileBlock([]string{"src/a.go", "src/b.go", "src/c.go"}, "src/d.go", 4)

	assert.Contains(t, msg, "Blocked: editing src/d.go would touch 4 distinct files this session (limit 4).")
	assert.Contains(t, msg, "Already modified (3):")
	assert.Contains(t, msg, "  - src/a.go")
	assert.Contains(t, msg, "  - src/c.go")
	assert.Contains(t, msg, "enter plan mode to lift the limit")
}

func TestMultiFileBlock_NoPriorFiles(t *testing.T) {
	msg := MultiFileBlock(nil, "src/d.go", 1)

	assert.Contains(t, msg, "would touch 1 distinct files this session (limit 1)")
	assert.NotContains(t, msg, "Already modified")
}

func TestQualityBlock(t *testing.T) {
	now := time.Now()
	validity := 30 * time.Minute

	t.Run("no tests", func(t *testing.T) {
		msg := QualityBlock("NO_TESTS", time.Time{}, time.Time{}, validity)
		assert.Contains(t, msg, "no test run recorded this session")
		assert.Contains(t, msg, "Run your test suite before committing.")
	})

	t.Run("stale tests", func(t *testing.T) {
		msg := QualityBlock("STALE_TESTS", now.Add(-2*time.Minute), now.Add(-10*time.Minute), validity)
		assert.Contains(t, msg, "after the last test run")
		assert.Contains(t, msg, "re-run tests to cover the new edits")
	})

	t.Run("expired tests", func(t *testing.T) {
		msg := QualityBlock("EXPIRED_TESTS", now.Add(-time.Hour), now.Add(-time.Hour), validity)
		assert.Contains(t, msg, "older than the 30m validity window")
	})

	t.Run("unknown reason falls back", func(t *testing.T) {
		msg := QualityBlock("SOMETHING_ELSE", now, now, validity)
		assert.Contains(t, msg, "test evidence is missing or out of date")
	})
}

func TestAdvisoryMessages(t *testing.T) {
	assert.Equal(t,
		"Advisory: 5 files read directly without a single search. Grep or Glob first to find the right spot faster.",
		ScanFirstAdvisory(5))

	assert.Equal(t,
		"Advisory: 10 source files modified this session. Consider pausing for an architecture review before going wider.",
		ArchAuditAdvisory(10))

	assert.Equal(t,
		"Advisory: commit stages 12 files / 900 changed lines (guideline: 10 files, 500 lines). Consider splitting into smaller commits.",
		PreCommitSizeNote(12, 900, 10, 500))

	assert.Equal(t,
		"Advisory: internal/api/server.go has no test file yet. Consider writing one alongside it.",
		TestReminderAdvisory("internal/api/server.go"))

	assert.Equal(t,
		"Advisory: 3 edits like foo_test.go this session. The test-writer agent handles these; consider delegating via the Task tool.",
		AgentSuggestAdvisory("test-writer", "foo_test.go", 3))
}

func TestPreCommitDebugNote(t *testing.T) {
	msg := PreCommitDebugNote([]string{"src/a.js", "src/b.js"})

	assert.Contains(t, msg, "staged files contain debug logging:")
	assert.Contains(t, msg, "  - src/a.js")
	assert.Contains(t, msg, "  - src/b.js")
	assert.Contains(t, msg, "Remove or downgrade before committing.")
}

func TestHumanAge(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "30s"},
		{5 * time.Minute, "5m"},
		{90 * time.Minute, "1h30m"},
		{25 * time.Hour, "25h00m"},
		{-time.Minute, "0s"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, humanAge(tc.d), tc.d.String())
	}
}

func TestHumanDuration(t *testing.T) {
	assert.Equal(t, "30m", humanDuration(30*time.Minute))
	assert.Equal(t, "2h", humanDuration(2*time.Hour))
	assert.Equal(t, "1m30s", humanDuration(90*time.Second))
}
