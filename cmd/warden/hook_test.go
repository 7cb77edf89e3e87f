package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fyrsmithlabs/warden/internal/gate"
	"github.com/fyrsmithlabs/warden/internal/logging"
	"github.com/fyrsmithlabs/warden/internal/metrics"
	"github.com/fyrsmithlabs/warden/pkg/hookio"
)

func TestEmitDecision(t *testing.T) {
	t.Run("command block writes continue object", func(t *testing.T) {
		var buf bytes.Buffer
		ev := &hookio.Event{Kind: hookio.KindBash, Tool: "Bash", Target: "git commit -m x"}
		res := gate.Result{Decision: gate.Decision{
			Outcome: gate.OutcomeBlock,
			Rule:    "quality",
			Message: "COMMIT BLOCKED: No tests run this session.",
		}}

		emitDecision(&buf, ev, res)

		assert.JSONEq(t, `{"continue":false,"message":"COMMIT BLOCKED: No tests run this session."}`, buf.String())
	})

	t.Run("file block writes permission deny", func(t *testing.T) {
		var buf bytes.Buffer
		ev := &hookio.Event{Kind: hookio.KindEdit, Tool: "Edit", Target: "a.go"}
		res := gate.Result{Decision: gate.Decision{
			Outcome: gate.OutcomeBlock,
			Rule:    "multi-file",
			Message: "too many files",
		}}

		emitDecision(&buf, ev, res)

		assert.JSONEq(t, `{"outcome":"deny","reason":"too many files"}`, buf.String())
	})

	t.Run("ask writes permission ask", func(t *testing.T) {
		var buf bytes.Buffer
		ev := &hookio.Event{Kind: hookio.KindWrite, Tool: "Write", Target: "a.go", Mode: hookio.ModePlan}
		res := gate.Result{Decision: gate.Decision{
			Outcome: gate.OutcomeAsk,
			Rule:    "plan-mode",
			Message: "confirm the edit",
		}}

		emitDecision(&buf, ev, res)

		assert.JSONEq(t, `{"outcome":"ask","reason":"confirm the edit"}`, buf.String())
	})

	t.Run("advisories print as bare lines", func(t *testing.T) {
		var buf bytes.Buffer
		ev := &hookio.Event{Kind: hookio.KindRead, Tool: "Read", Target: "a.go"}
		res := gate.Result{
			Decision: gate.Allow(),
			Advisories: []gate.Decision{
				{Outcome: gate.OutcomeAllow, Rule: "scan-first", Message: "try a search first"},
				{Outcome: gate.OutcomeAllow, Rule: "arch-audit", Message: "consider an audit"},
			},
		}

		emitDecision(&buf, ev, res)

		assert.Equal(t, "try a search first\nconsider an audit\n", buf.String())
	})

	t.Run("plain allow writes nothing", func(t *testing.T) {
		var buf bytes.Buffer
		ev := &hookio.Event{Kind: hookio.KindGrep, Tool: "Grep", Target: "TODO"}

		emitDecision(&buf, ev, gate.Result{Decision: gate.Allow()})

		assert.Empty(t, buf.String())
	})
}

func TestActivityRecorder(t *testing.T) {
	dir := t.TempDir()
	activity := metrics.NewActivity(dir, logging.NewNop())
	recorder := activityRecorder{activity}

	recorder.Record("multi-file", gate.Decision{Outcome: gate.OutcomeBlock, Rule: "multi-file"})
	recorder.Record("scan-first", gate.Decision{Outcome: gate.OutcomeAllow, Rule: "scan-first", Message: "note"})
	recorder.Record("plan-mode", gate.Decision{Outcome: gate.OutcomeAllow})
	activity.Flush()

	doc := metrics.NewActivity(dir, logging.NewNop()).Load()
	assert.Equal(t, 1, doc.Gates["multi-file"].Blocks)
	assert.Equal(t, 1, doc.Gates["scan-first"].Advisories)
	assert.Equal(t, 1, doc.Gates["plan-mode"].Allows)
	assert.Equal(t, 0, doc.Gates["plan-mode"].Advisories)
}
