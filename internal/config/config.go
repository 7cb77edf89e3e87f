package config

import (
	"fmt"
	"regexp"
	"time"

	"github.com/fyrsmithlabs/warden/internal/logging"
)

// Config is the root warden configuration, loaded from YAML with
// environment-variable overrides. Pattern lists are configuration data,
// not code: every gate matches against what is declared here.
type Config struct {
	State        StateConfig        `koanf:"state"`
	Logging      logging.Config     `koanf:"logging"`
	Hook         HookConfig         `koanf:"hook"`
	Session      SessionConfig      `koanf:"session"`
	MultiFile    MultiFileConfig    `koanf:"multifile"`
	Quality      QualityConfig      `koanf:"quality"`
	ScanFirst    ScanFirstConfig    `koanf:"scanfirst"`
	ArchAudit    ArchAuditConfig    `koanf:"archaudit"`
	PreCommit    PreCommitConfig    `koanf:"precommit"`
	TestReminder TestReminderConfig `koanf:"testreminder"`
	Agents       AgentsConfig       `koanf:"agents"`
	Backlog      BacklogConfig      `koanf:"backlog"`
}

// StateConfig locates the durable state directory (session records,
// backlog, reports, metrics).
type StateConfig struct {
	Dir string `koanf:"dir"`
}

// HookConfig controls the stdin event reader.
type HookConfig struct {
	// StdinTimeout bounds the read of the host event payload. On
	// timeout the event is treated as absent, never as an error.
	StdinTimeout Duration `koanf:"stdin_timeout"`
}

// SessionConfig sets the per-concern expiry windows. Expiry is binary
// and whole-record: an idle record past its window is replaced by a
// zero-valued one on next load.
type SessionConfig struct {
	EditExpiry   Duration `koanf:"edit_expiry"`
	TestExpiry   Duration `koanf:"test_expiry"`
	ScanExpiry   Duration `koanf:"scan_expiry"`
	ReviewExpiry Duration `koanf:"review_expiry"`
}

// MultiFileConfig controls the multi-file gate.
type MultiFileConfig struct {
	// Threshold is the distinct-file count at which the gate blocks.
	Threshold int `koanf:"threshold"`
	// Exclude holds path regexps (matched case-insensitively against
	// slash-normalized paths) that never count toward the threshold.
	Exclude []string `koanf:"exclude"`
}

// QualityConfig controls the commit quality gate.
type QualityConfig struct {
	// TestValidity is how long a passing test run vouches for a commit.
	TestValidity   Duration `koanf:"test_validity"`
	CommitPatterns []string `koanf:"commit_patterns"`
}

// ScanFirstConfig controls the scan-first advisory.
type ScanFirstConfig struct {
	ReadThreshold int `koanf:"read_threshold"`
}

// ArchAuditConfig controls the architecture-audit advisory.
type ArchAuditConfig struct {
	FileThreshold int `koanf:"file_threshold"`
}

// PreCommitConfig controls the pre-commit size/hygiene advisory.
type PreCommitConfig struct {
	MaxStagedFiles int `koanf:"max_staged_files"`
	MaxStagedLines int `koanf:"max_staged_lines"`
	// DebugPatterns flag leftover debug logging in staged files;
	// LogAllowlist exempts sanctioned log calls from that check.
	DebugPatterns []string `koanf:"debug_patterns"`
	LogAllowlist  []string `koanf:"log_allowlist"`
}

// TestReminderConfig controls the new-file test reminder.
type TestReminderConfig struct {
	SourceSuffixes []string `koanf:"source_suffixes"`
}

// AgentsConfig holds the agent-suggestion rules.
type AgentsConfig struct {
	Rules []AgentRule `koanf:"rules"`
}

// AgentRule suggests a specialized agent after EditThreshold distinct
// edits matching Pattern in one session.
type AgentRule struct {
	Pattern       string `koanf:"pattern"`
	Agent         string `koanf:"agent"`
	EditThreshold int    `koanf:"edit_threshold"`
}

// BacklogConfig sets the task atomicity limits enforced on admission.
type BacklogConfig struct {
	MaxFilesTouched int      `koanf:"max_files_touched"`
	MaxLinesChanged int      `koanf:"max_lines_changed"`
	MaxEffortMins   int      `koanf:"max_effort_mins"`
	RemoteAssignees []string `koanf:"remote_assignees"`
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = logging.FormatConsole
	}

	if cfg.Hook.StdinTimeout == 0 {
		cfg.Hook.StdinTimeout = Duration(750 * time.Millisecond)
	}

	if cfg.Session.EditExpiry == 0 {
		cfg.Session.EditExpiry = Duration(2 * time.Hour)
	}
	if cfg.Session.TestExpiry == 0 {
		cfg.Session.TestExpiry = Duration(2 * time.Hour)
	}
	if cfg.Session.ScanExpiry == 0 {
		cfg.Session.ScanExpiry = Duration(30 * time.Minute)
	}
	if cfg.Session.ReviewExpiry == 0 {
		cfg.Session.ReviewExpiry = Duration(2 * time.Hour)
	}

	if cfg.MultiFile.Threshold == 0 {
		cfg.MultiFile.Threshold = 4
	}
	if cfg.MultiFile.Exclude == nil {
		cfg.MultiFile.Exclude = DefaultExcludePatterns()
	}

	if cfg.Quality.TestValidity == 0 {
		cfg.Quality.TestValidity = Duration(30 * time.Minute)
	}
	if cfg.Quality.CommitPatterns == nil {
		cfg.Quality.CommitPatterns = DefaultCommitPatterns()
	}

	if cfg.ScanFirst.ReadThreshold == 0 {
		cfg.ScanFirst.ReadThreshold = 3
	}
	if cfg.ArchAudit.FileThreshold == 0 {
		cfg.ArchAudit.FileThreshold = 5
	}

	if cfg.PreCommit.MaxStagedFiles == 0 {
		cfg.PreCommit.MaxStagedFiles = 5
	}
	if cfg.PreCommit.MaxStagedLines == 0 {
		cfg.PreCommit.MaxStagedLines = 400
	}
	if cfg.PreCommit.DebugPatterns == nil {
		cfg.PreCommit.DebugPatterns = []string{
			`console\.log\s*\(`,
			`\bdebugger\b`,
			`\bprint\(`,
		}
	}
	if cfg.PreCommit.LogAllowlist == nil {
		cfg.PreCommit.LogAllowlist = []string{
			`console\.(warn|error)\s*\(`,
		}
	}

	if cfg.TestReminder.SourceSuffixes == nil {
		cfg.TestReminder.SourceSuffixes = []string{
			".go", ".ts", ".tsx", ".js", ".jsx", ".py",
		}
	}

	if cfg.Agents.Rules == nil {
		cfg.Agents.Rules = []AgentRule{
			{Pattern: `_test\.go$|\.(test|spec)\.[jt]sx?$`, Agent: "test-writer", EditThreshold: 3},
			{Pattern: `\.mdx?$`, Agent: "docs-writer", EditThreshold: 3},
		}
	}

	if cfg.Backlog.MaxFilesTouched == 0 {
		cfg.Backlog.MaxFilesTouched = 3
	}
	if cfg.Backlog.MaxLinesChanged == 0 {
		cfg.Backlog.MaxLinesChanged = 300
	}
	if cfg.Backlog.MaxEffortMins == 0 {
		cfg.Backlog.MaxEffortMins = 60
	}
	if cfg.Backlog.RemoteAssignees == nil {
		cfg.Backlog.RemoteAssignees = []string{"deepseek", "qwen"}
	}
}

// DefaultExcludePatterns returns the paths that never count toward the
// multi-file threshold: dotted config directories, documentation trees,
// markdown, JSON, and package manifests.
func DefaultExcludePatterns() []string {
	return []string{
		`(^|/)\.[^/]+(/|$)`,
		`(^|/)docs?(/|$)`,
		`\.mdx?$`,
		`\.json$`,
		`(^|/)(go\.(mod|sum)|yarn\.lock|pnpm-lock\.yaml|cargo\.(toml|lock)|gemfile(\.lock)?|requirements\.txt)$`,
	}
}

// DefaultCommitPatterns returns the shell-command patterns that mark an
// event as a commit attempt.
func DefaultCommitPatterns() []string {
	return []string{
		`\bgit\b[^|&;]*\bcommit\b`,
	}
}

// Validate checks configuration for errors. Pattern lists are compiled
// here so a broken regex fails at load, not mid-decision.
func (c *Config) Validate() error {
	if c.State.Dir == "" {
		return fmt.Errorf("state dir cannot be empty")
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}

	if c.Hook.StdinTimeout.Duration() <= 0 {
		return fmt.Errorf("hook stdin_timeout must be > 0, got %v", c.Hook.StdinTimeout.Duration())
	}

	windows := []struct {
		name string
		d    Duration
	}{
		{"edit_expiry", c.Session.EditExpiry},
		{"test_expiry", c.Session.TestExpiry},
		{"scan_expiry", c.Session.ScanExpiry},
		{"review_expiry", c.Session.ReviewExpiry},
	}
	for _, w := range windows {
		if w.d.Duration() <= 0 {
			return fmt.Errorf("session %s must be > 0", w.name)
		}
	}

	if c.MultiFile.Threshold < 1 {
		return fmt.Errorf("multifile threshold must be >= 1, got %d", c.MultiFile.Threshold)
	}
	if c.Quality.TestValidity.Duration() <= 0 {
		return fmt.Errorf("quality test_validity must be > 0")
	}
	if c.ScanFirst.ReadThreshold < 1 {
		return fmt.Errorf("scanfirst read_threshold must be >= 1, got %d", c.ScanFirst.ReadThreshold)
	}
	if c.ArchAudit.FileThreshold < 1 {
		return fmt.Errorf("archaudit file_threshold must be >= 1, got %d", c.ArchAudit.FileThreshold)
	}
	if c.PreCommit.MaxStagedFiles < 1 {
		return fmt.Errorf("precommit max_staged_files must be >= 1, got %d", c.PreCommit.MaxStagedFiles)
	}
	if c.PreCommit.MaxStagedLines < 1 {
		return fmt.Errorf("precommit max_staged_lines must be >= 1, got %d", c.PreCommit.MaxStagedLines)
	}
	if c.Backlog.MaxFilesTouched < 1 {
		return fmt.Errorf("backlog max_files_touched must be >= 1, got %d", c.Backlog.MaxFilesTouched)
	}
	if c.Backlog.MaxLinesChanged < 1 {
		return fmt.Errorf("backlog max_lines_changed must be >= 1, got %d", c.Backlog.MaxLinesChanged)
	}
	if c.Backlog.MaxEffortMins < 1 {
		return fmt.Errorf("backlog max_effort_mins must be >= 1, got %d", c.Backlog.MaxEffortMins)
	}

	groups := []struct {
		name     string
		patterns []string
	}{
		{"multifile exclude", c.MultiFile.Exclude},
		{"quality commit", c.Quality.CommitPatterns},
		{"precommit debug", c.PreCommit.DebugPatterns},
		{"precommit log allow", c.PreCommit.LogAllowlist},
	}
	for _, g := range groups {
		for _, pattern := range g.patterns {
			if _, err := regexp.Compile(pattern); err != nil {
				return fmt.Errorf("invalid %s pattern %q: %w", g.name, pattern, err)
			}
		}
	}
	for _, rule := range c.Agents.Rules {
		if rule.Agent == "" {
			return fmt.Errorf("agent rule %q has empty agent name", rule.Pattern)
		}
		if rule.EditThreshold < 1 {
			return fmt.Errorf("agent rule %q edit_threshold must be >= 1, got %d", rule.Pattern, rule.EditThreshold)
		}
		if _, err := regexp.Compile(rule.Pattern); err != nil {
			return fmt.Errorf("invalid agent rule pattern %q: %w", rule.Pattern, err)
		}
	}

	return nil
}
