package gate

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/fyrsmithlabs/warden/internal/config"
	"github.com/fyrsmithlabs/warden/internal/gitinfo"
	"github.com/fyrsmithlabs/warden/internal/report"
	"github.com/fyrsmithlabs/warden/internal/rules"
	"github.com/fyrsmithlabs/warden/internal/session"
	"github.com/fyrsmithlabs/warden/pkg/hookio"
)

// Advisory reason codes.
const (
	ReasonScanFirst    = "SCAN_FIRST"
	ReasonArchAudit    = "ARCH_AUDIT"
	ReasonPreCommit    = "PRE_COMMIT"
	ReasonTestReminder = "TEST_REMINDER"
	ReasonAgentSuggest = "AGENT_SUGGEST"
)

// One-shot suppression keys. Advisories fire once per key per session.
const (
	warnScanFirst      = "scan-first-warning"
	warnArchAudit      = "arch-audit"
	warnPreCommitSize  = "pre-commit-size"
	warnPreCommitDebug = "pre-commit-debug"

	warnTestReminderPrefix = "test-reminder:"
	warnAgentPrefix        = "agent:"
)

// ScanFirstGate nudges toward Grep/Glob when a session piles up direct
// Read calls without a single search. Fires once per session.
type ScanFirstGate struct {
	threshold int
}

func NewScanFirstGate(readThreshold int) *ScanFirstGate {
	return &ScanFirstGate{threshold: readThreshold}
}

func (g *ScanFirstGate) Name() string { return "scan-first" }

func (g *ScanFirstGate) Evaluate(ctx context.Context, ev *hookio.Event, state session.Repository) (Decision, error) {
	switch ev.Kind {
	case hookio.KindGrep:
		if ev.Target != "" {
			rec := state.Scan()
			rec.AddPattern(ev.Target)
			_ = state.SaveScan(rec)
		}
		return Allow(), nil

	case hookio.KindGlob:
		if ev.Target != "" {
			rec := state.Scan()
			rec.AddGlob(ev.Target)
			_ = state.SaveScan(rec)
		}
		return Allow(), nil

	case hookio.KindRead:
		rec := state.Scan()
		rec.DirectReadCount++
		d := Allow()
		if g.threshold > 0 && rec.DirectReadCount >= g.threshold &&
			!rec.HasScanned() && rec.MarkWarning(warnScanFirst) {
			d = Decision{
				Outcome: OutcomeAllow,
				Rule:    g.Name(),
				Reason:  ReasonScanFirst,
				Message: report.ScanFirstAdvisory(rec.DirectReadCount),
			}
		}
		_ = state.SaveScan(rec)
		return d, nil
	}
	return Allow(), nil
}

// ArchAuditGate suggests an architecture review once a session has
// touched enough distinct source files. Fires once per session.
type ArchAuditGate struct {
	threshold int
}

func NewArchAuditGate(fileThreshold int) *ArchAuditGate {
	return &ArchAuditGate{threshold: fileThreshold}
}

func (g *ArchAuditGate) Name() string { return "arch-audit" }

func (g *ArchAuditGate) Evaluate(ctx context.Context, ev *hookio.Event, state session.Repository) (Decision, error) {
	if !ev.IsFileEvent() {
		return Allow(), nil
	}
	edits := state.Edits()
	if g.threshold <= 0 || len(edits.FilesModified) < g.threshold {
		return Allow(), nil
	}

	review := state.Review()
	if !review.MarkWarning(warnArchAudit) {
		return Allow(), nil
	}
	_ = state.SaveReview(review)
	return Decision{
		Outcome: OutcomeAllow,
		Rule:    g.Name(),
		Reason:  ReasonArchAudit,
		Message: report.ArchAuditAdvisory(len(edits.FilesModified)),
	}, nil
}

// StagedInspector reports what a commit would include. Implemented by
// gitinfo.Repo; nil when the workspace is not a repository.
type StagedInspector interface {
	StagedChanges(ctx context.Context) (*gitinfo.StagedStats, error)
	StagedContent(ctx context.Context, path string) (string, error)
}

// PreCommitGate inspects commit attempts for oversized staged sets and
// leftover debug logging. Purely advisory: the commit proceeds either
// way. Each finding fires once per session.
type PreCommitGate struct {
	rules     *rules.Set
	maxFiles  int
	maxLines  int
	inspector StagedInspector
	workdir   string
}

func NewPreCommitGate(set *rules.Set, cfg config.PreCommitConfig, inspector StagedInspector, workdir string) *PreCommitGate {
	return &PreCommitGate{
		rules:     set,
		maxFiles:  cfg.MaxStagedFiles,
		maxLines:  cfg.MaxStagedLines,
		inspector: inspector,
		workdir:   workdir,
	}
}

func (g *PreCommitGate) Name() string { return "pre-commit" }

func (g *PreCommitGate) Evaluate(ctx context.Context, ev *hookio.Event, state session.Repository) (Decision, error) {
	if ev.Kind != hookio.KindBash || ev.Target == "" || g.inspector == nil {
		return Allow(), nil
	}
	if !g.rules.Commit.MatchString(ev.Target) {
		return Allow(), nil
	}

	stats, err := g.inspector.StagedChanges(ctx)
	if err != nil {
		return Allow(), err
	}
	if stats.Files == 0 {
		return Allow(), nil
	}

	review := state.Review()
	var notes []string

	oversized := (g.maxFiles > 0 && stats.Files > g.maxFiles) ||
		(g.maxLines > 0 && stats.Lines > g.maxLines)
	if oversized && review.MarkWarning(warnPreCommitSize) {
		notes = append(notes, report.PreCommitSizeNote(stats.Files, stats.Lines, g.maxFiles, g.maxLines))
	}

	if hits := g.debugHits(ctx, stats.Paths); len(hits) > 0 && review.MarkWarning(warnPreCommitDebug) {
		notes = append(notes, report.PreCommitDebugNote(hits))
	}

	if len(notes) == 0 {
		return Allow(), nil
	}
	_ = state.SaveReview(review)
	return Decision{
		Outcome: OutcomeAllow,
		Rule:    g.Name(),
		Reason:  ReasonPreCommit,
		Message: strings.Join(notes, "\n"),
	}, nil
}

// debugHits returns the staged paths whose content matches a debug
// pattern outside the log allowlist.
func (g *PreCommitGate) debugHits(ctx context.Context, paths []string) []string {
	if g.rules.Debug.Len() == 0 {
		return nil
	}
	var hits []string
	for _, path := range paths {
		content, err := g.inspector.StagedContent(ctx, path)
		if err != nil || content == "" {
			continue
		}
		if g.contentHasDebug(content) {
			hits = append(hits, path)
		}
	}
	return hits
}

func (g *PreCommitGate) contentHasDebug(content string) bool {
	for _, line := range strings.Split(content, "\n") {
		if g.rules.Debug.MatchString(line) && !g.rules.LogAllow.MatchString(line) {
			return true
		}
	}
	return false
}

// TestReminderGate fires when a brand-new source file is created with
// no sibling test. Once per path per session.
type TestReminderGate struct {
	suffixes []string
	workdir  string
}

func NewTestReminderGate(suffixes []string, workdir string) *TestReminderGate {
	return &TestReminderGate{suffixes: suffixes, workdir: workdir}
}

func (g *TestReminderGate) Name() string { return "test-reminder" }

func (g *TestReminderGate) Evaluate(ctx context.Context, ev *hookio.Event, state session.Repository) (Decision, error) {
	if ev.Kind != hookio.KindWrite || ev.Target == "" {
		return Allow(), nil
	}
	path := rules.Normalize(ev.Target)
	if !g.isSource(path) || isTestFile(path) {
		return Allow(), nil
	}

	abs := ev.Target
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(g.workdir, abs)
	}
	// Write observes creations and overwrites alike; only creations of
	// files with no test coverage warrant the nudge.
	if _, err := os.Stat(abs); err == nil {
		return Allow(), nil
	}
	if hasSiblingTest(abs) {
		return Allow(), nil
	}

	review := state.Review()
	if !review.MarkWarning(warnTestReminderPrefix + path) {
		return Allow(), nil
	}
	_ = state.SaveReview(review)
	return Decision{
		Outcome: OutcomeAllow,
		Rule:    g.Name(),
		Reason:  ReasonTestReminder,
		Message: report.TestReminderAdvisory(path),
	}, nil
}

func (g *TestReminderGate) isSource(path string) bool {
	for _, suffix := range g.suffixes {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

func isTestFile(path string) bool {
	base := filepath.Base(path)
	if strings.HasSuffix(base, "_test.go") || strings.HasPrefix(base, "test_") {
		return true
	}
	return strings.Contains(base, ".test.") || strings.Contains(base, ".spec.")
}

// hasSiblingTest checks the conventional test locations for the file's
// language: foo_test.go, foo.test.ts / foo.spec.ts (optionally under
// __tests__/), test_foo.py.
func hasSiblingTest(abs string) bool {
	dir := filepath.Dir(abs)
	base := filepath.Base(abs)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	var candidates []string
	switch ext {
	case ".go":
		candidates = []string{filepath.Join(dir, stem+"_test.go")}
	case ".py":
		candidates = []string{filepath.Join(dir, "test_"+base)}
	case ".ts", ".tsx", ".js", ".jsx":
		candidates = []string{
			filepath.Join(dir, stem+".test"+ext),
			filepath.Join(dir, stem+".spec"+ext),
			filepath.Join(dir, "__tests__", stem+".test"+ext),
			filepath.Join(dir, "__tests__", stem+".spec"+ext),
		}
	default:
		return false
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return true
		}
	}
	return false
}

// AgentSuggestGate counts edits matching each agent rule's pattern and,
// past the rule's threshold, suggests delegating to that agent. Once
// per path per session.
type AgentSuggestGate struct {
	rules []rules.AgentRule
}

func NewAgentSuggestGate(agentRules []rules.AgentRule) *AgentSuggestGate {
	return &AgentSuggestGate{rules: agentRules}
}

func (g *AgentSuggestGate) Name() string { return "agent-suggest" }

func (g *AgentSuggestGate) Evaluate(ctx context.Context, ev *hookio.Event, state session.Repository) (Decision, error) {
	if !ev.IsFileEvent() || ev.Target == "" || len(g.rules) == 0 {
		return Allow(), nil
	}
	path := rules.Normalize(ev.Target)

	review := state.Review()
	dirty := false
	d := Allow()
	for i := range g.rules {
		rule := &g.rules[i]
		if !rule.MatchPath(path) {
			continue
		}
		count := review.BumpAgentCount(rule.Agent)
		dirty = true
		if d.Advisory() || count < rule.Threshold {
			continue
		}
		if review.MarkWarning(warnAgentPrefix + path) {
			d = Decision{
				Outcome: OutcomeAllow,
				Rule:    g.Name(),
				Reason:  ReasonAgentSuggest,
				Message: report.AgentSuggestAdvisory(rule.Agent, path, count),
			}
		}
	}
	if dirty {
		_ = state.SaveReview(review)
	}
	return d, nil
}
