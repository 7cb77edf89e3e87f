package report

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fyrsmithlabs/warden/internal/backlog"
	"github.com/fyrsmithlabs/warden/internal/metrics"
	"github.com/fyrsmithlabs/warden/internal/session"
)

// Formatters in this file render CLI output. All of them return text
// without a trailing newline; callers decide how to print.

// AuditSummary renders an atomicity report: verdict line, then a
// violation table when the audit found any.
func AuditSummary(r *backlog.AtomicityReport) string {
	var b strings.Builder
	s := r.Summary
	switch s.Status {
	case backlog.ReportStatusEmpty:
		b.WriteString("Atomicity audit: PASS (backlog empty)")
	case backlog.ReportStatusFail:
		b.WriteString(fmt.Sprintf("Atomicity audit: FAIL (%d/%d tasks atomic, %d%%)",
			s.Valid, s.Total, s.CompliancePercent))
	default:
		b.WriteString(fmt.Sprintf("Atomicity audit: PASS (%d/%d tasks atomic, %d%%)",
			s.Valid, s.Total, s.CompliancePercent))
	}

	if len(r.Violations) > 0 {
		b.WriteString("\n\n")
		w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TASK\tFIELD\tREASON")
		for _, v := range r.Violations {
			fmt.Fprintf(w, "%s\t%s\t%s\n", truncate(v.TaskID, 12), v.Field, v.Reason)
		}
		w.Flush()
	}
	return strings.TrimRight(b.String(), "\n")
}

// BacklogStatus renders the backlog document as a stats line plus a
// task table.
func BacklogStatus(doc *backlog.Document) string {
	if doc.Stats.Total == 0 {
		return "Backlog: empty"
	}

	var b strings.Builder
	st := doc.Stats
	b.WriteString(fmt.Sprintf("Backlog: %d tasks (%d open, %d in progress, %d done, %d failed)\n",
		st.Total, st.Open, st.InProgress, st.Done, st.Failed))

	if len(doc.Projects) > 0 {
		names := make([]string, 0, len(doc.Projects))
		for name := range doc.Projects {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s (%d)", name, doc.Projects[name].TaskCount))
		}
		b.WriteString("Projects: " + strings.Join(parts, ", ") + "\n")
	}

	b.WriteString("\n")
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tASSIGNEE\tFILES\tEST\tTITLE")
	for _, t := range doc.Tasks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
			truncate(t.ID, 12),
			t.Status,
			truncate(t.AssignedTo, 20),
			len(t.FilesTouched),
			t.EstLinesChanged,
			truncate(t.Title, 40),
		)
	}
	w.Flush()
	return strings.TrimRight(b.String(), "\n")
}

// BatchRejection explains why an add was refused, task by task.
func BatchRejection(e *backlog.BatchError) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Rejected: %d task(s) violate atomicity constraints.\n", len(e.Failures)))
	for _, f := range e.Failures {
		id := f.TaskID
		if id == "" {
			id = "(no id)"
		}
		b.WriteString(fmt.Sprintf("  %s:\n", id))
		for _, v := range f.Violations {
			b.WriteString(fmt.Sprintf("    - %s: %s\n", v.Field, v.Reason))
		}
	}
	b.WriteString("Admission is all-or-nothing: fix the listed fields and resubmit the batch.")
	return b.String()
}

// EditsSummary renders the edit concern.
func EditsSummary(rec *session.EditRecord, now time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("files modified: %d\n", len(rec.FilesModified)))
	for _, f := range rec.FilesModified {
		b.WriteString(fmt.Sprintf("  - %s\n", f))
	}
	if rec.LastEdit.IsZero() {
		b.WriteString("last edit: never\n")
	} else {
		b.WriteString(fmt.Sprintf("last edit: %s ago\n", humanAge(now.Sub(rec.LastEdit))))
	}
	b.WriteString(fmt.Sprintf("plan-mode grant: %s\n", yesNo(rec.EnterPlanModeUsed)))
	b.WriteString(fmt.Sprintf("blocks issued: %d", len(rec.Blocks)))
	return b.String()
}

// TestsSummary renders the test concern.
func TestsSummary(rec *session.TestRecord, now time.Time) string {
	if rec.LastTestRun.IsZero() {
		return "last test run: none recorded"
	}
	verdict := "passed"
	if !rec.TestsPassed {
		verdict = "failed"
	}
	return fmt.Sprintf("last test run: %s ago (%s)", humanAge(now.Sub(rec.LastTestRun)), verdict)
}

// ScanSummary renders the scan concern.
func ScanSummary(rec *session.ScanRecord) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("search patterns: %d\n", len(rec.ScannedPatterns)))
	b.WriteString(fmt.Sprintf("glob patterns: %d\n", len(rec.ScannedGlobs)))
	b.WriteString(fmt.Sprintf("direct reads: %d\n", rec.DirectReadCount))
	b.WriteString("warnings shown: " + joinOrNone(rec.WarningsShown))
	return b.String()
}

// ReviewSummary renders the review concern.
func ReviewSummary(rec *session.ReviewRecord) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("lines changed: %d across %d files\n",
		rec.LinesChanged, len(rec.FilesTouched)))
	if len(rec.AgentEditCounts) > 0 {
		agents := make([]string, 0, len(rec.AgentEditCounts))
		for name := range rec.AgentEditCounts {
			agents = append(agents, name)
		}
		sort.Strings(agents)
		parts := make([]string, 0, len(agents))
		for _, name := range agents {
			parts = append(parts, fmt.Sprintf("%s=%d", name, rec.AgentEditCounts[name]))
		}
		b.WriteString("agent edits: " + strings.Join(parts, ", ") + "\n")
	}
	b.WriteString("warnings shown: " + joinOrNone(rec.WarningsShown))
	return b.String()
}

// MaturityTable renders the process-maturity report with its dimension
// breakdown.
func MaturityTable(r *metrics.MaturityReport) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Process maturity: %.1f/10 (%s)\n", r.OverallScore, r.Level))
	b.WriteString(r.Description + "\n\n")

	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DIMENSION\tSCORE\tWEIGHT\tDETAIL")
	for _, d := range r.Dimensions {
		fmt.Fprintf(w, "%s\t%d/10\t%.0f%%\t%s\n", d.Name, d.Score, d.Weight*100, d.Detail)
	}
	w.Flush()

	b.WriteString(fmt.Sprintf("\nCalculated at: %s", r.CalculatedAt.Format(time.RFC3339)))
	return b.String()
}

// ActivityTable renders per-gate decision counters.
func ActivityTable(doc *metrics.ActivityDocument) string {
	if doc == nil || len(doc.Gates) == 0 {
		return "No hook activity recorded"
	}

	names := make([]string, 0, len(doc.Gates))
	for name := range doc.Gates {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GATE\tINVOCATIONS\tALLOWS\tASKS\tBLOCKS\tADVISORIES")
	for _, name := range names {
		c := doc.Gates[name]
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\n",
			name, c.Invocations, c.Allows, c.Asks, c.Blocks, c.Advisories)
	}
	t := doc.Totals()
	fmt.Fprintf(w, "total\t%d\t%d\t%d\t%d\t%d\n",
		t.Invocations, t.Allows, t.Asks, t.Blocks, t.Advisories)
	w.Flush()
	return strings.TrimRight(b.String(), "\n")
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func joinOrNone(list []string) string {
	if len(list) == 0 {
		return "none"
	}
	return strings.Join(list, ", ")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
