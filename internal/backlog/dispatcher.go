package backlog

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/warden/internal/logging"
	"github.com/fyrsmithlabs/warden/internal/task"
)

var (
	// ErrEmptyBatch rejects an admission request with no tasks.
	ErrEmptyBatch = errors.New("batch contains no tasks")

	// ErrTaskNotFound indicates the task ID is not in the backlog.
	ErrTaskNotFound = errors.New("task not found")

	// ErrInvalidTransition rejects an illegal status move.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// TaskFailure names a task the dispatcher refused and why.
type TaskFailure struct {
	TaskID     string           `json:"task_id"`
	Violations []task.Violation `json:"violations"`
}

// BatchError rejects a whole batch. Admission is all-or-nothing: one
// failing task keeps every task out.
type BatchError struct {
	Failures []TaskFailure
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch rejected: %d task(s) violate atomicity constraints", len(e.Failures))
}

// Dispatcher is the backlog's only writer.
type Dispatcher struct {
	store     *Store
	validator *task.Validator
	logger    *logging.Logger
	now       func() time.Time
}

// NewDispatcher wires the store to the admission rules.
func NewDispatcher(store *Store, validator *task.Validator, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Dispatcher{
		store:     store,
		validator: validator,
		logger:    logger.Named("dispatcher"),
		now:       time.Now,
	}
}

// Status returns the current backlog document.
func (d *Dispatcher) Status() (*Document, error) {
	return d.store.Load()
}

// AddTasks admits a batch. Every task is validated and checked for ID
// collisions first; any failure rejects the whole batch and the
// document on disk is untouched. On admission, tasks without IDs get
// generated ones, status is forced to open, and stats are recomputed.
func (d *Dispatcher) AddTasks(batch []task.Task) (*Document, error) {
	if len(batch) == 0 {
		return nil, ErrEmptyBatch
	}

	doc, err := d.store.Load()
	if err != nil {
		return nil, err
	}

	existing := make(map[string]struct{}, len(doc.Tasks))
	for i := range doc.Tasks {
		existing[doc.Tasks[i].ID] = struct{}{}
	}

	var failures []TaskFailure
	seen := make(map[string]struct{}, len(batch))
	for i := range batch {
		t := &batch[i]
		violations := d.validator.Validate(t).Violations

		if t.ID != "" {
			if _, dup := existing[t.ID]; dup {
				violations = append(violations, task.Violation{
					Field:  "id",
					Reason: fmt.Sprintf("task %q already exists in the backlog", t.ID),
				})
			} else if _, dup := seen[t.ID]; dup {
				violations = append(violations, task.Violation{
					Field:  "id",
					Reason: fmt.Sprintf("task %q appears twice in the batch", t.ID),
				})
			}
			seen[t.ID] = struct{}{}
		}

		if len(violations) > 0 {
			failures = append(failures, TaskFailure{TaskID: taskRef(t, i), Violations: violations})
		}
	}
	if len(failures) > 0 {
		return nil, &BatchError{Failures: failures}
	}

	now := d.now()
	for i := range batch {
		t := &batch[i]
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		t.Status = task.StatusOpen
		t.CreatedAt = now
		t.UpdatedAt = now
		doc.Tasks = append(doc.Tasks, *t)
	}

	doc.Stats = computeStats(doc.Tasks)
	doc.Projects = computeProjects(doc.Tasks, doc.Projects, now)
	if err := d.store.Save(doc); err != nil {
		return nil, err
	}

	d.logger.Info(context.Background(), "batch admitted",
		zap.Int("tasks", len(batch)),
		zap.Int("backlog_total", doc.Stats.Total))
	return doc, nil
}

// UpdateStatus moves one task along its lifecycle. Only the moves
// open → in_progress → done|failed are legal.
func (d *Dispatcher) UpdateStatus(id string, next task.Status) (*task.Task, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, next)
	}

	doc, err := d.store.Load()
	if err != nil {
		return nil, err
	}

	for i := range doc.Tasks {
		t := &doc.Tasks[i]
		if t.ID != id {
			continue
		}
		if !t.Status.CanTransitionTo(next) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.Status, next)
		}
		t.Status = next
		t.UpdatedAt = d.now()

		doc.Stats = computeStats(doc.Tasks)
		if err := d.store.Save(doc); err != nil {
			return nil, err
		}
		updated := *t
		return &updated, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
}

// Audit validates every persisted task and regenerates the atomicity
// report wholesale. The report is written best-effort: a failed write
// is logged and the report is still returned.
func (d *Dispatcher) Audit() (*AtomicityReport, error) {
	doc, err := d.store.Load()
	if err != nil {
		return nil, err
	}

	report := &AtomicityReport{
		Timestamp:  d.now(),
		Violations: []ReportViolation{},
	}

	valid := 0
	for i := range doc.Tasks {
		t := &doc.Tasks[i]
		res := d.validator.Validate(t)
		if res.Valid {
			valid++
			continue
		}
		for _, v := range res.Violations {
			report.Violations = append(report.Violations, ReportViolation{
				TaskID: t.ID,
				Field:  v.Field,
				Reason: v.Reason,
			})
		}
	}

	total := len(doc.Tasks)
	report.Summary = summarize(total, valid)

	if err := d.store.SaveReport(report); err != nil {
		d.logger.Warn(context.Background(), "failed to persist atomicity report", zap.Error(err))
	}
	return report, nil
}

func summarize(total, valid int) ReportSummary {
	s := ReportSummary{Total: total, Valid: valid, Invalid: total - valid}
	switch {
	case total == 0:
		s.CompliancePercent = 100
		s.Status = ReportStatusEmpty
	case valid == total:
		s.CompliancePercent = 100
		s.Status = ReportStatusPass
	default:
		s.CompliancePercent = int(math.Round(100 * float64(valid) / float64(total)))
		s.Status = ReportStatusFail
	}
	return s
}

func computeStats(tasks []task.Task) Stats {
	stats := Stats{Total: len(tasks)}
	for i := range tasks {
		switch tasks[i].Status {
		case task.StatusOpen:
			stats.Open++
		case task.StatusInProgress:
			stats.InProgress++
		case task.StatusDone:
			stats.Done++
		case task.StatusFailed:
			stats.Failed++
		}
	}
	return stats
}

// computeProjects rebuilds the project index from the task list,
// preserving first-seen timestamps for labels that are still in use.
func computeProjects(tasks []task.Task, previous map[string]ProjectMeta, now time.Time) map[string]ProjectMeta {
	projects := make(map[string]ProjectMeta)
	for i := range tasks {
		name := tasks[i].Project
		if name == "" {
			continue
		}
		meta, ok := projects[name]
		if !ok {
			meta = ProjectMeta{FirstSeen: now}
			if prev, existed := previous[name]; existed {
				meta.FirstSeen = prev.FirstSeen
			}
		}
		meta.TaskCount++
		projects[name] = meta
	}
	if len(projects) == 0 {
		return nil
	}
	return projects
}

func taskRef(t *task.Task, index int) string {
	switch {
	case t.ID != "":
		return t.ID
	case t.Title != "":
		return t.Title
	default:
		return fmt.Sprintf("task[%d]", index)
	}
}
