package backlog

import (
	"time"
)

// Report status values.
const (
	ReportStatusPass  = "pass"
	ReportStatusFail  = "fail"
	ReportStatusEmpty = "empty"
)

// ReportViolation ties one atomicity violation to the task carrying it.
type ReportViolation struct {
	TaskID string `json:"task_id"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ReportSummary is the audit roll-up. An empty backlog is vacuously
// compliant: 100 percent, status "empty".
type ReportSummary struct {
	Total             int    `json:"total"`
	Valid             int    `json:"valid"`
	Invalid           int    `json:"invalid"`
	CompliancePercent int    `json:"compliance_percent"`
	Status            string `json:"status"`
}

// AtomicityReport is the persisted audit result, regenerated whole on
// every audit, never merged with a previous report.
type AtomicityReport struct {
	Timestamp  time.Time         `json:"timestamp"`
	Summary    ReportSummary     `json:"summary"`
	Violations []ReportViolation `json:"violations"`
}

// Passed reports whether the audit found no violations.
func (r *AtomicityReport) Passed() bool {
	return r.Summary.Status != ReportStatusFail
}
