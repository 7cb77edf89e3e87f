package gate

import (
	"context"
	"time"

	"github.com/fyrsmithlabs/warden/internal/report"
	"github.com/fyrsmithlabs/warden/internal/rules"
	"github.com/fyrsmithlabs/warden/internal/session"
	"github.com/fyrsmithlabs/warden/pkg/hookio"
)

// Stable reason codes carried on decisions.
const (
	ReasonPlanMode     = "PLAN_MODE"
	ReasonFileLimit    = "MULTI_FILE_LIMIT"
	ReasonNoTests      = "NO_TESTS"
	ReasonStaleTests   = "STALE_TESTS"
	ReasonExpiredTests = "EXPIRED_TESTS"
)

// PlanModeGate defers file mutations to an interactive confirmation
// while the host is in plan mode, and records plan-entry actions so the
// multi-file gate can honor the grant for the rest of the session.
type PlanModeGate struct{}

func NewPlanModeGate() *PlanModeGate { return &PlanModeGate{} }

func (g *PlanModeGate) Name() string { return "plan-mode" }

func (g *PlanModeGate) Evaluate(ctx context.Context, ev *hookio.Event, state session.Repository) (Decision, error) {
	if ev.Kind == hookio.KindPlanEntry {
		rec := state.Edits()
		if !rec.EnterPlanModeUsed {
			rec.EnterPlanModeUsed = true
			_ = state.SaveEdits(rec)
		}
		return Allow(), nil
	}

	if ev.Mode == hookio.ModePlan && ev.IsFileEvent() {
		return Decision{
			Outcome: OutcomeAsk,
			Rule:    g.Name(),
			Reason:  ReasonPlanMode,
			Message: report.PlanModeAsk(ev.Target),
		}, nil
	}
	return Allow(), nil
}

// MultiFileGate tracks the distinct non-excluded files modified this
// session and blocks the edit that would reach the threshold. A plan
// grant (recorded plan entry) disables the block for the whole session.
type MultiFileGate struct {
	rules     *rules.Set
	threshold int
}

func NewMultiFileGate(set *rules.Set, threshold int) *MultiFileGate {
	return &MultiFileGate{rules: set, threshold: threshold}
}

func (g *MultiFileGate) Name() string { return "multi-file" }

func (g *MultiFileGate) Evaluate(ctx context.Context, ev *hookio.Event, state session.Repository) (Decision, error) {
	if !ev.IsFileEvent() || ev.Target == "" {
		return Allow(), nil
	}

	rec := state.Edits()
	now := time.Now()
	rec.LastEdit = now

	// Excluded paths never count, but the edit timestamp still moves:
	// a commit includes those changes too.
	if g.rules.Exclude.MatchPath(ev.Target) {
		_ = state.SaveEdits(rec)
		return Allow(), nil
	}

	path := rules.Normalize(ev.Target)
	if rec.EnterPlanModeUsed || rec.HasFile(path) {
		rec.AddFile(path)
		_ = state.SaveEdits(rec)
		return Allow(), nil
	}

	if g.threshold > 0 && len(rec.FilesModified)+1 >= g.threshold {
		rec.Blocks = append(rec.Blocks, session.BlockRecord{
			Timestamp:     now,
			Rule:          g.Name(),
			Threshold:     g.threshold,
			CurrentCount:  len(rec.FilesModified),
			AttemptedFile: path,
		})
		_ = state.SaveEdits(rec)
		return Decision{
			Outcome: OutcomeBlock,
			Rule:    g.Name(),
			Reason:  ReasonFileLimit,
			Message: report.MultiFileBlock(rec.FilesModified, path, g.threshold),
		}, nil
	}

	rec.AddFile(path)
	_ = state.SaveEdits(rec)
	return Allow(), nil
}

// QualityGate blocks commit attempts that are not vouched for by a
// sufficiently recent test run. Exactly one reason applies, checked in
// priority order: no tests this session, tests older than the last
// edit, tests older than the validity window.
type QualityGate struct {
	rules    *rules.Set
	validity time.Duration
}

func NewQualityGate(set *rules.Set, validity time.Duration) *QualityGate {
	return &QualityGate{rules: set, validity: validity}
}

func (g *QualityGate) Name() string { return "quality" }

func (g *QualityGate) Evaluate(ctx context.Context, ev *hookio.Event, state session.Repository) (Decision, error) {
	if ev.Kind != hookio.KindBash || ev.Target == "" {
		return Allow(), nil
	}
	if !g.rules.Commit.MatchString(ev.Target) {
		return Allow(), nil
	}

	tests := state.Tests()
	edits := state.Edits()

	reason := FreshnessReason(tests, edits, g.validity, time.Now())
	if reason == "" {
		return Allow(), nil
	}

	return Decision{
		Outcome: OutcomeBlock,
		Rule:    g.Name(),
		Reason:  reason,
		Message: report.QualityBlock(reason, edits.LastEdit, tests.LastTestRun, g.validity),
	}, nil
}

// FreshnessReason reports why a commit would be refused right now, or
// empty when the test evidence is current. Exactly one reason applies,
// checked in priority order.
func FreshnessReason(tests *session.TestRecord, edits *session.EditRecord, validity time.Duration, now time.Time) string {
	switch {
	case tests.LastTestRun.IsZero():
		return ReasonNoTests
	case !edits.LastEdit.IsZero() && tests.LastTestRun.Before(edits.LastEdit):
		return ReasonStaleTests
	case now.Sub(tests.LastTestRun) > validity:
		return ReasonExpiredTests
	}
	return ""
}
