package report

import (
	"fmt"
	"strings"
	"time"
)

// PlanModeAsk is the confirmation prompt for file mutations attempted
// while the host is in plan mode.
func PlanModeAsk(target string) string {
	if target == "" {
		return "Plan mode is active. Confirm before modifying files."
	}
	return fmt.Sprintf("Plan mode is active. Confirm before modifying %s.", target)
}

// MultiFileBlock explains a multi-file refusal: which files are already
// in flight, which edit tripped the limit, and how to proceed anyway.
func MultiFileBlock(modified []string, attempted string, threshold int) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Blocked: editing %s would touch %d distinct files this session (limit %d).\n",
		attempted, len(modified)+1, threshold))
	if len(modified) > 0 {
		b.WriteString(fmt.Sprintf("Already modified (%d):\n", len(modified)))
		for _, f := range modified {
			b.WriteString(fmt.Sprintf("  - %s\n", f))
		}
	}
	b.WriteString("Wide changes belong in a plan: enter plan mode to lift the limit for this session,\n")
	b.WriteString("or split the remaining work into separate tasks.")
	return b.String()
}

// QualityBlock explains a commit refusal for the given reason code.
func QualityBlock(reason string, lastEdit, lastTest time.Time, validity time.Duration) string {
	var b strings.Builder
	switch reason {
	case "NO_TESTS":
		b.WriteString("Blocked: no test run recorded this session.\n")
		b.WriteString("Run your test suite before committing.")
	case "STALE_TESTS":
		b.WriteString(fmt.Sprintf("Blocked: files were edited %s after the last test run.\n",
			humanAge(time.Since(lastEdit))))
		b.WriteString(fmt.Sprintf("Last test run was %s ago; re-run tests to cover the new edits.",
			humanAge(time.Since(lastTest))))
	case "EXPIRED_TESTS":
		b.WriteString(fmt.Sprintf("Blocked: last test run was %s ago, older than the %s validity window.\n",
			humanAge(time.Since(lastTest)), humanDuration(validity)))
		b.WriteString("Re-run tests to refresh the record.")
	default:
		b.WriteString("Blocked: test evidence is missing or out of date. Run your test suite and retry.")
	}
	return b.String()
}

// ScanFirstAdvisory nudges toward searching instead of reading files
// one by one.
func ScanFirstAdvisory(reads int) string {
	return fmt.Sprintf("Advisory: %d files read directly without a single search. Grep or Glob first to find the right spot faster.", reads)
}

// ArchAuditAdvisory suggests stepping back once a session has spread
// across many source files.
func ArchAuditAdvisory(files int) string {
	return fmt.Sprintf("Advisory: %d source files modified this session. Consider pausing for an architecture review before going wider.", files)
}

// PreCommitSizeNote flags an oversized staged set.
func PreCommitSizeNote(files, lines, maxFiles, maxLines int) string {
	return fmt.Sprintf("Advisory: commit stages %d files / %d changed lines (guideline: %d files, %d lines). Consider splitting into smaller commits.",
		files, lines, maxFiles, maxLines)
}

// PreCommitDebugNote lists staged files that still carry debug logging.
func PreCommitDebugNote(paths []string) string {
	var b strings.Builder
	b.WriteString("Advisory: staged files contain debug logging:\n")
	for _, p := range paths {
		b.WriteString(fmt.Sprintf("  - %s\n", p))
	}
	b.WriteString("Remove or downgrade before committing.")
	return b.String()
}

// TestReminderAdvisory fires on creation of a source file with no
// sibling test.
func TestReminderAdvisory(path string) string {
	return fmt.Sprintf("Advisory: %s has no test file yet. Consider writing one alongside it.", path)
}

// AgentSuggestAdvisory proposes delegating a recurring kind of edit to
// a specialized agent.
func AgentSuggestAdvisory(agent, path string, count int) string {
	return fmt.Sprintf("Advisory: %d edits like %s this session. The %s agent handles these; consider delegating via the Task tool.",
		count, path, agent)
}

// humanAge renders a duration the way a person would say it, coarsest
// sensible unit only.
func humanAge(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	}
}

func humanDuration(d time.Duration) string {
	if d%time.Hour == 0 {
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	if d%time.Minute == 0 {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	return d.String()
}
