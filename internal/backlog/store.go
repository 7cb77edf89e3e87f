package backlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fyrsmithlabs/warden/internal/logging"
	"github.com/fyrsmithlabs/warden/internal/task"
)

// documentVersion marks the backlog schema. Bump on breaking layout
// changes.
const documentVersion = 1

const (
	backlogFile = "backlog.json"
	reportsDir  = "reports"
	reportFile  = "atomicity.json"
)

// Stats are the per-status task counts, recomputed on every mutation.
type Stats struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	InProgress int `json:"in_progress"`
	Done       int `json:"done"`
	Failed     int `json:"failed"`
}

// ProjectMeta tracks a project label seen on admitted tasks.
type ProjectMeta struct {
	FirstSeen time.Time `json:"first_seen"`
	TaskCount int       `json:"task_count"`
}

// Document is the persisted backlog.
type Document struct {
	Version   int                    `json:"version"`
	UpdatedAt time.Time              `json:"updated_at"`
	Tasks     []task.Task            `json:"tasks"`
	Projects  map[string]ProjectMeta `json:"projects,omitempty"`
	Stats     Stats                  `json:"stats"`
}

// NewDocument returns an empty backlog.
func NewDocument() *Document {
	return &Document{
		Version: documentVersion,
		Tasks:   []task.Task{},
	}
}

// Store reads and writes the backlog document and the audit report.
// Unlike session records, the backlog is user data: a document that
// cannot be parsed is an error, never silently replaced.
type Store struct {
	path       string
	reportPath string
	logger     *logging.Logger
	now        func() time.Time
}

// NewStore creates a store rooted at stateDir. Nothing is created
// until the first save.
func NewStore(stateDir string, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Store{
		path:       filepath.Join(stateDir, backlogFile),
		reportPath: filepath.Join(stateDir, reportsDir, reportFile),
		logger:     logger.Named("backlog"),
		now:        time.Now,
	}
}

// Path returns the backlog document location.
func (s *Store) Path() string { return s.path }

// ReportPath returns the atomicity report location.
func (s *Store) ReportPath() string { return s.reportPath }

// Load reads the backlog. A missing document is an empty backlog; a
// document that exists but cannot be parsed is an error.
func (s *Store) Load() (*Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewDocument(), nil
		}
		return nil, fmt.Errorf("failed to read backlog: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse backlog %s: %w", s.path, err)
	}
	if doc.Tasks == nil {
		doc.Tasks = []task.Task{}
	}
	return &doc, nil
}

// Save writes the backlog atomically and stamps UpdatedAt.
func (s *Store) Save(doc *Document) error {
	doc.Version = documentVersion
	doc.UpdatedAt = s.now()
	return writeJSONFile(s.path, doc)
}

// SaveReport writes the atomicity report, replacing any previous one.
func (s *Store) SaveReport(r *AtomicityReport) error {
	return writeJSONFile(s.reportPath, r)
}

// LoadReport reads the last atomicity report. Absent means no audit
// has run yet and returns (nil, nil).
func (s *Store) LoadReport() (*AtomicityReport, error) {
	data, err := os.ReadFile(s.reportPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read atomicity report: %w", err)
	}

	var r AtomicityReport
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse atomicity report %s: %w", s.reportPath, err)
	}
	return &r, nil
}

func writeJSONFile(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename %s: %w", path, err)
	}
	return nil
}
