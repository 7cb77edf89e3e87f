package session

import (
	"time"
)

// Concern names one per-workspace session document.
type Concern string

const (
	ConcernEdits  Concern = "edits"
	ConcernTests  Concern = "tests"
	ConcernScan   Concern = "scan"
	ConcernReview Concern = "review"
)

// Concerns returns every concern in a fixed order.
func Concerns() []Concern {
	return []Concern{ConcernEdits, ConcernTests, ConcernScan, ConcernReview}
}

// maxScanEntries bounds the scan-memory FIFO lists.
const maxScanEntries = 20

// Meta is carried by every session record and drives whole-record
// expiry.
type Meta struct {
	StartTime    time.Time `json:"start_time"`
	LastActivity time.Time `json:"last_activity"`
}

// NewMeta returns metadata for a fresh record.
func NewMeta(now time.Time) Meta {
	return Meta{StartTime: now, LastActivity: now}
}

// IsExpired reports whether the record has been idle longer than
// window. A record with no recorded activity is expired by definition.
func (m *Meta) IsExpired(now time.Time, window time.Duration) bool {
	last := m.LastActivity
	if last.IsZero() {
		last = m.StartTime
	}
	if last.IsZero() {
		return true
	}
	return now.Sub(last) > window
}

// touch records activity. Called on every save.
func (m *Meta) touch(now time.Time) {
	if m.StartTime.IsZero() {
		m.StartTime = now
	}
	m.LastActivity = now
}

// BlockRecord is one audit entry describing a block the multi-file gate
// issued. Audit trail only, never consulted for behavior.
type BlockRecord struct {
	Timestamp     time.Time `json:"timestamp"`
	Rule          string    `json:"rule"`
	Threshold     int       `json:"threshold"`
	CurrentCount  int       `json:"current_count"`
	AttemptedFile string    `json:"attempted_file"`
}

// EditRecord tracks file modifications for one session.
type EditRecord struct {
	Meta
	// FilesModified holds distinct normalized paths in first-touch
	// order.
	FilesModified     []string      `json:"files_modified"`
	EnterPlanModeUsed bool          `json:"enter_plan_mode_used"`
	LastEdit          time.Time     `json:"last_edit"`
	Blocks            []BlockRecord `json:"blocks,omitempty"`
}

// HasFile reports whether path was already recorded.
func (r *EditRecord) HasFile(path string) bool {
	for _, f := range r.FilesModified {
		if f == path {
			return true
		}
	}
	return false
}

// AddFile records a distinct modified path. Returns true if the path
// was new.
func (r *EditRecord) AddFile(path string) bool {
	if r.HasFile(path) {
		return false
	}
	r.FilesModified = append(r.FilesModified, path)
	return true
}

// TestRecord tracks test freshness for one session.
type TestRecord struct {
	Meta
	LastTestRun time.Time `json:"last_test_run"`
	TestsPassed bool      `json:"tests_passed"`
}

// ScanRecord is the session's search memory.
type ScanRecord struct {
	Meta
	ScannedPatterns []string `json:"scanned_patterns"`
	ScannedGlobs    []string `json:"scanned_globs"`
	DirectReadCount int      `json:"direct_read_count"`
	WarningsShown   []string `json:"warnings_shown"`
}

// AddPattern records a search pattern, FIFO-bounded.
func (r *ScanRecord) AddPattern(pattern string) {
	r.ScannedPatterns = appendBounded(r.ScannedPatterns, pattern)
}

// AddGlob records a glob pattern, FIFO-bounded.
func (r *ScanRecord) AddGlob(glob string) {
	r.ScannedGlobs = appendBounded(r.ScannedGlobs, glob)
}

// HasScanned reports whether any search memory exists.
func (r *ScanRecord) HasScanned() bool {
	return len(r.ScannedPatterns) > 0 || len(r.ScannedGlobs) > 0
}

// appendBounded appends value unless present, evicting from the front
// past maxScanEntries.
func appendBounded(list []string, value string) []string {
	if value == "" {
		return list
	}
	for _, v := range list {
		if v == value {
			return list
		}
	}
	list = append(list, value)
	if len(list) > maxScanEntries {
		list = list[len(list)-maxScanEntries:]
	}
	return list
}

// ReviewRecord accumulates review-scope counters: change size since the
// last commit plus the one-shot advisory keys.
type ReviewRecord struct {
	Meta
	LinesChanged int      `json:"lines_changed"`
	FilesTouched []string `json:"files_touched"`
	// AgentEditCounts counts edits per agent-suggestion rule, keyed by
	// agent name.
	AgentEditCounts map[string]int `json:"agent_edit_counts,omitempty"`
	WarningsShown   []string       `json:"warnings_shown"`
}

// TouchFile records a distinct touched path for review accumulation.
func (r *ReviewRecord) TouchFile(path string) {
	for _, f := range r.FilesTouched {
		if f == path {
			return
		}
	}
	r.FilesTouched = append(r.FilesTouched, path)
}

// BumpAgentCount increments the edit counter for an agent rule and
// returns the new count.
func (r *ReviewRecord) BumpAgentCount(agent string) int {
	if r.AgentEditCounts == nil {
		r.AgentEditCounts = make(map[string]int)
	}
	r.AgentEditCounts[agent]++
	return r.AgentEditCounts[agent]
}

// MarkWarning records a one-shot advisory key. Returns false when the
// key already fired this session.
func (r *ReviewRecord) MarkWarning(key string) bool {
	var added bool
	r.WarningsShown, added = markWarning(r.WarningsShown, key)
	return added
}

// HasWarning reports whether the advisory key already fired.
func (r *ReviewRecord) HasWarning(key string) bool {
	return hasWarning(r.WarningsShown, key)
}

// MarkWarning records a one-shot advisory key. Returns false when the
// key already fired this session.
func (r *ScanRecord) MarkWarning(key string) bool {
	var added bool
	r.WarningsShown, added = markWarning(r.WarningsShown, key)
	return added
}

// HasWarning reports whether the advisory key already fired.
func (r *ScanRecord) HasWarning(key string) bool {
	return hasWarning(r.WarningsShown, key)
}

func hasWarning(shown []string, key string) bool {
	for _, k := range shown {
		if k == key {
			return true
		}
	}
	return false
}

func markWarning(shown []string, key string) ([]string, bool) {
	if hasWarning(shown, key) {
		return shown, false
	}
	return append(shown, key), true
}
