package metrics

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/fyrsmithlabs/warden/internal/backlog"
	"github.com/fyrsmithlabs/warden/internal/gitinfo"
	"github.com/fyrsmithlabs/warden/internal/session"
)

// Dimension weights.
const (
	weightDelegation = 0.25
	weightRecurrence = 0.20
	weightDocs       = 0.15
	weightTests      = 0.15
	weightBacklog    = 0.15
	weightAdoption   = 0.10
)

// DefaultAdoptionTarget is the lifetime gate-invocation count treated
// as full hook adoption.
const DefaultAdoptionTarget = 200

// defaultTestValidity mirrors the quality gate's window when the
// caller does not supply one.
const defaultTestValidity = 30 * time.Minute

type threshold struct {
	max   float64
	score int
}

// Score ladders map a dimension value in [0,1] to a 0-10 score: the
// first rung the value fits under wins.
var (
	standardLadder = []threshold{{0.20, 2}, {0.40, 4}, {0.60, 6}, {0.80, 8}, {1.00, 10}}
	docsLadder     = []threshold{{0.40, 2}, {0.60, 4}, {0.75, 6}, {0.90, 8}, {1.00, 10}}
)

// Dimension is one scored axis of the maturity report.
type Dimension struct {
	Name   string  `json:"dimension"`
	Value  float64 `json:"value"`
	Score  int     `json:"score"`
	Weight float64 `json:"weight"`
	Detail string  `json:"detail"`
}

// MaturityReport is the weighted roll-up across all six dimensions.
type MaturityReport struct {
	OverallScore float64     `json:"overall_score"`
	Level        string      `json:"level"`
	Description  string      `json:"description"`
	Dimensions   []Dimension `json:"dimensions"`
	CalculatedAt time.Time   `json:"calculated_at"`
}

// DelegationDoc mirrors the delegation tracker's JSON document. The
// file is written by external tooling; key casing follows its format.
type DelegationDoc struct {
	TotalDelegableTasks int `json:"totalDelegableTasks"`
	TasksDelegated      int `json:"tasksDelegated"`
}

// DocsCoverageDoc mirrors the documentation coverage export.
type DocsCoverageDoc struct {
	TotalExports      int `json:"totalExports"`
	DocumentedExports int `json:"documentedExports"`
}

// LoadDelegation reads the optional delegation document. A missing
// file is not an error, it just means no data.
func LoadDelegation(stateDir string) (*DelegationDoc, error) {
	var doc DelegationDoc
	ok, err := loadOptional(filepath.Join(stateDir, "metrics", "delegation.json"), &doc)
	if err != nil || !ok {
		return nil, err
	}
	return &doc, nil
}

// LoadDocsCoverage reads the optional docs coverage document.
func LoadDocsCoverage(stateDir string) (*DocsCoverageDoc, error) {
	var doc DocsCoverageDoc
	ok, err := loadOptional(filepath.Join(stateDir, "metrics", "docs-coverage.json"), &doc)
	if err != nil || !ok {
		return nil, err
	}
	return &doc, nil
}

func loadOptional(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return true, nil
}

// Inputs carries whatever evidence the caller could assemble. A nil
// field means the data does not exist; its dimension scores from zero
// instead of failing the report.
type Inputs struct {
	Delegation   *DelegationDoc
	Recurrence   *gitinfo.RecurrenceStats
	Docs         *DocsCoverageDoc
	Tests        *session.TestRecord
	TestValidity time.Duration
	Audit        *backlog.AtomicityReport
	Activity     *ActivityDocument
	// AdoptionTarget is the invocation count treated as full adoption.
	// Zero selects DefaultAdoptionTarget.
	AdoptionTarget int
}

// Calculate scores the six maturity dimensions and rolls them into a
// single weighted 0-10 score.
func Calculate(now time.Time, in Inputs) *MaturityReport {
	var dims []Dimension
	add := func(name string, weight float64, ladder []threshold, value float64, detail string) {
		dims = append(dims, Dimension{
			Name:   name,
			Value:  math.Round(value*100) / 100,
			Score:  scoreLadder(value, ladder),
			Weight: weight,
			Detail: detail,
		})
	}

	value, detail := delegationValue(in.Delegation)
	add("Delegation Compliance", weightDelegation, standardLadder, value, detail)

	value, detail = recurrenceValue(now, in.Recurrence)
	add("Error Recurrence", weightRecurrence, standardLadder, value, detail)

	value, detail = docsValue(in.Docs)
	add("Documentation Coverage", weightDocs, docsLadder, value, detail)

	value, detail = testsValue(now, in.Tests, in.TestValidity)
	add("Test Freshness", weightTests, standardLadder, value, detail)

	value, detail = backlogValue(in.Audit)
	add("Backlog Atomicity", weightBacklog, standardLadder, value, detail)

	value, detail = adoptionValue(in.Activity, in.AdoptionTarget)
	add("Hook Adoption", weightAdoption, standardLadder, value, detail)

	var total float64
	for _, d := range dims {
		total += float64(d.Score) * d.Weight
	}
	score := math.Round(total*10) / 10
	level, desc := MaturityLevel(score)

	return &MaturityReport{
		OverallScore: score,
		Level:        level,
		Description:  desc,
		Dimensions:   dims,
		CalculatedAt: now.UTC(),
	}
}

// MaturityLevel maps an overall score to its level name and summary.
func MaturityLevel(score float64) (string, string) {
	switch {
	case score < 2:
		return "Critical", "Immediate intervention needed"
	case score < 4:
		return "Poor", "Significant gaps, high risk"
	case score < 6:
		return "Fair", "Basic processes in place"
	case score < 8:
		return "Good", "Solid foundation, room to grow"
	default:
		return "Excellent", "Mature, optimized system"
	}
}

func scoreLadder(value float64, ladder []threshold) int {
	for _, t := range ladder {
		if value <= t.max {
			return t.score
		}
	}
	return ladder[len(ladder)-1].score
}

func delegationValue(doc *DelegationDoc) (float64, string) {
	if doc == nil {
		return 0, "no delegation data recorded"
	}
	if doc.TotalDelegableTasks == 0 {
		return 0, "no delegable tasks recorded"
	}
	rate := float64(doc.TasksDelegated) / float64(doc.TotalDelegableTasks)
	return rate, fmt.Sprintf("%d/%d tasks delegated (%.0f%%)",
		doc.TasksDelegated, doc.TotalDelegableTasks, rate*100)
}

func recurrenceValue(now time.Time, stats *gitinfo.RecurrenceStats) (float64, string) {
	if stats == nil {
		return 0, "no fix history available"
	}
	days := int(now.Sub(stats.Since).Hours() / 24)
	if stats.FilesFixed == 0 {
		return 0, fmt.Sprintf("no fix commits in last %d days", days)
	}
	rate := float64(stats.Recurring) / float64(stats.FilesFixed)
	return 1 - rate, fmt.Sprintf("%d/%d fixed files needed repeat fixes (%.0f%%)",
		stats.Recurring, stats.FilesFixed, rate*100)
}

func docsValue(doc *DocsCoverageDoc) (float64, string) {
	if doc == nil {
		return 0, "no docs coverage data recorded"
	}
	if doc.TotalExports == 0 {
		return 0, "no exported symbols recorded"
	}
	cov := float64(doc.DocumentedExports) / float64(doc.TotalExports)
	return cov, fmt.Sprintf("%d/%d exports documented (%.0f%%)",
		doc.DocumentedExports, doc.TotalExports, cov*100)
}

// testsValue buckets the age of the last passing test run against the
// quality gate's validity window.
func testsValue(now time.Time, rec *session.TestRecord, validity time.Duration) (float64, string) {
	if rec == nil || rec.LastTestRun.IsZero() {
		return 0, "no test run recorded this session"
	}
	if !rec.TestsPassed {
		return 0.2, "last recorded test run failed"
	}
	if validity <= 0 {
		validity = defaultTestValidity
	}
	age := now.Sub(rec.LastTestRun)
	var value float64
	switch {
	case age <= validity:
		value = 1.0
	case age <= 2*validity:
		value = 0.8
	case age <= 4*validity:
		value = 0.6
	case age <= 8*validity:
		value = 0.4
	default:
		value = 0.2
	}
	return value, fmt.Sprintf("tests passed %s ago", formatAge(age))
}

func backlogValue(audit *backlog.AtomicityReport) (float64, string) {
	if audit == nil {
		return 0, "no atomicity audit recorded"
	}
	s := audit.Summary
	if s.Status == backlog.ReportStatusEmpty {
		return 1, "backlog empty, vacuously compliant"
	}
	return float64(s.CompliancePercent) / 100, fmt.Sprintf(
		"%d%% atomicity compliance (%d of %d tasks)",
		s.CompliancePercent, s.Valid, s.Total)
}

func adoptionValue(doc *ActivityDocument, target int) (float64, string) {
	if target <= 0 {
		target = DefaultAdoptionTarget
	}
	totals := doc.Totals()
	if totals.Invocations == 0 {
		return 0, "no hook activity recorded yet"
	}
	value := math.Min(1, float64(totals.Invocations)/float64(target))
	return value, fmt.Sprintf("%d gate invocations (%d blocks, %d advisories)",
		totals.Invocations, totals.Blocks, totals.Advisories)
}

func formatAge(age time.Duration) string {
	switch {
	case age < time.Minute:
		return "moments"
	case age < time.Hour:
		return fmt.Sprintf("%dm", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("%dh", int(age.Hours()))
	default:
		return fmt.Sprintf("%dd", int(age.Hours()/24))
	}
}
