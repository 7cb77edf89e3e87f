package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/warden/internal/config"
	"github.com/fyrsmithlabs/warden/internal/logging"
)

// Repository is the state contract injected into every gate. Loads
// always succeed: absent, corrupt, or expired documents come back as
// fresh zero-valued records. Save errors are returned for logging but
// callers must treat them as non-fatal; persistence failure never
// changes a decision.
type Repository interface {
	Edits() *EditRecord
	SaveEdits(*EditRecord) error
	Tests() *TestRecord
	SaveTests(*TestRecord) error
	Scan() *ScanRecord
	SaveScan(*ScanRecord) error
	Review() *ReviewRecord
	SaveReview(*ReviewRecord) error
	Reset(Concern) error
}

// Store is the filesystem Repository. One directory per workspace, one
// JSON document per concern.
type Store struct {
	dir     string
	windows config.SessionConfig
	logger  *logging.Logger
	now     func() time.Time
}

// NewStore creates a store rooted at
// <stateDir>/sessions/<workspace-key>. Nothing is created until the
// first save.
func NewStore(stateDir, workspaceRoot string, windows config.SessionConfig, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Store{
		dir:     filepath.Join(stateDir, "sessions", WorkspaceKey(workspaceRoot)),
		windows: windows,
		logger:  logger.Named("session"),
		now:     time.Now,
	}
}

// Dir returns the workspace session directory.
func (s *Store) Dir() string { return s.dir }

// Edits loads the edit-tracking record.
func (s *Store) Edits() *EditRecord {
	rec := &EditRecord{}
	if s.read(ConcernEdits, rec) && !rec.IsExpired(s.now(), s.windows.EditExpiry.Duration()) {
		return rec
	}
	return &EditRecord{Meta: NewMeta(s.now())}
}

// SaveEdits persists the edit-tracking record.
func (s *Store) SaveEdits(rec *EditRecord) error {
	rec.touch(s.now())
	return s.write(ConcernEdits, rec)
}

// Tests loads the test-freshness record.
func (s *Store) Tests() *TestRecord {
	rec := &TestRecord{}
	if s.read(ConcernTests, rec) && !rec.IsExpired(s.now(), s.windows.TestExpiry.Duration()) {
		return rec
	}
	return &TestRecord{Meta: NewMeta(s.now())}
}

// SaveTests persists the test-freshness record.
func (s *Store) SaveTests(rec *TestRecord) error {
	rec.touch(s.now())
	return s.write(ConcernTests, rec)
}

// Scan loads the scan-memory record.
func (s *Store) Scan() *ScanRecord {
	rec := &ScanRecord{}
	if s.read(ConcernScan, rec) && !rec.IsExpired(s.now(), s.windows.ScanExpiry.Duration()) {
		return rec
	}
	return &ScanRecord{Meta: NewMeta(s.now())}
}

// SaveScan persists the scan-memory record.
func (s *Store) SaveScan(rec *ScanRecord) error {
	rec.touch(s.now())
	return s.write(ConcernScan, rec)
}

// Review loads the review-accumulation record.
func (s *Store) Review() *ReviewRecord {
	rec := &ReviewRecord{}
	if s.read(ConcernReview, rec) && !rec.IsExpired(s.now(), s.windows.ReviewExpiry.Duration()) {
		return rec
	}
	return &ReviewRecord{Meta: NewMeta(s.now())}
}

// SaveReview persists the review-accumulation record.
func (s *Store) SaveReview(rec *ReviewRecord) error {
	rec.touch(s.now())
	return s.write(ConcernReview, rec)
}

// Reset removes one concern's document. Missing files are fine.
func (s *Store) Reset(concern Concern) error {
	err := os.Remove(s.path(concern))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to reset %s: %w", concern, err)
	}
	return nil
}

// ResetAll removes every concern document for the workspace.
func (s *Store) ResetAll() error {
	for _, concern := range Concerns() {
		if err := s.Reset(concern); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) path(concern Concern) string {
	return filepath.Join(s.dir, string(concern)+".json")
}

// read loads a concern document into out. Returns false, never an
// error, when the document is absent or unreadable.
func (s *Store) read(concern Concern, out any) bool {
	data, err := os.ReadFile(s.path(concern))
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Debug(context.Background(), "session record unreadable, starting fresh",
				zap.String("concern", string(concern)), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.logger.Debug(context.Background(), "session record corrupt, starting fresh",
			zap.String("concern", string(concern)), zap.Error(err))
		return false
	}
	return true
}

// write persists a concern document atomically (tmp file + rename).
// Failures are logged here so callers may discard the returned error.
func (s *Store) write(concern Concern, rec any) error {
	if err := s.writeFile(concern, rec); err != nil {
		s.logger.Warn(context.Background(), "failed to persist session record",
			zap.String("concern", string(concern)), zap.Error(err))
		return err
	}
	return nil
}

func (s *Store) writeFile(concern Concern, rec any) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s record: %w", concern, err)
	}

	path := s.path(concern)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s record: %w", concern, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename %s record: %w", concern, err)
	}
	return nil
}

// unsafeKeyChars matches everything not filesystem-safe in a workspace
// basename.
var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// WorkspaceKey derives the session directory name for a workspace root:
// the sanitized basename plus a short hash of the full path, so two
// checkouts with the same basename get distinct sessions.
func WorkspaceKey(root string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	abs = filepath.Clean(abs)

	base := unsafeKeyChars.ReplaceAllString(filepath.Base(abs), "-")
	if base == "" || base == "." || base == string(filepath.Separator) || base == "-" {
		base = "workspace"
	}
	if len(base) > 40 {
		base = base[:40]
	}

	sum := sha256.Sum256([]byte(abs))
	return base + "-" + hex.EncodeToString(sum[:])[:8]
}
