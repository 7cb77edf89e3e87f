package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fyrsmithlabs/warden/internal/config"
)

// Normalize canonicalizes a path for matching: backslashes become
// forward slashes and a leading "./" is stripped. Matching is the only
// consumer; stored and displayed paths keep their original spelling.
func Normalize(path string) string {
	p := strings.ReplaceAll(path, `\`, "/")
	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}
	return p
}

// PatternSet holds compiled regexps matched as a union: any single
// pattern matching means the set matches.
type PatternSet struct {
	patterns []*regexp.Regexp
}

// CompilePatterns compiles patterns case-insensitively.
func CompilePatterns(patterns []string) (*PatternSet, error) {
	set := &PatternSet{patterns: make([]*regexp.Regexp, 0, len(patterns))}
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidRegex, p, err)
		}
		set.patterns = append(set.patterns, re)
	}
	return set, nil
}

// MatchPath reports whether any pattern matches the normalized path.
func (s *PatternSet) MatchPath(path string) bool {
	return s.MatchString(Normalize(path))
}

// MatchString reports whether any pattern matches str as-is. Used for
// command lines and file content, which must not be path-normalized.
func (s *PatternSet) MatchString(str string) bool {
	for _, re := range s.patterns {
		if re.MatchString(str) {
			return true
		}
	}
	return false
}

// Len returns the number of compiled patterns.
func (s *PatternSet) Len() int {
	return len(s.patterns)
}

// AgentRule is a compiled agent-suggestion rule: after Threshold
// distinct edits matching Pattern in one session, suggest Agent.
type AgentRule struct {
	Pattern   *regexp.Regexp
	Agent     string
	Threshold int
}

// MatchPath reports whether the rule applies to the normalized path.
func (r *AgentRule) MatchPath(path string) bool {
	return r.Pattern.MatchString(Normalize(path))
}

// Set is the full compiled rule set consulted by the gates.
type Set struct {
	// Exclude holds paths that never count toward the multi-file
	// threshold.
	Exclude *PatternSet
	// Commit marks Bash commands that are commit attempts.
	Commit *PatternSet
	// Debug flags leftover debug-logging calls in staged content;
	// LogAllow exempts sanctioned calls from that flagging.
	Debug    *PatternSet
	LogAllow *PatternSet
	// Agents holds the agent-suggestion rules.
	Agents []AgentRule
}

// Compile builds the rule set from config, extended by the project
// override found in projectDir (empty string skips the override).
// A missing override file is fine; a malformed one is an error so a
// typo cannot silently disable a rule list.
func Compile(cfg *config.Config, projectDir string) (*Set, error) {
	exclude := cfg.MultiFile.Exclude
	commit := cfg.Quality.CommitPatterns
	debug := cfg.PreCommit.DebugPatterns
	logAllow := cfg.PreCommit.LogAllowlist
	agents := cfg.Agents.Rules

	if projectDir != "" {
		override, err := LoadProjectRules(projectDir)
		if err != nil {
			return nil, err
		}
		if override != nil {
			exclude = append(append([]string{}, exclude...), override.Exclude...)
			commit = append(append([]string{}, commit...), override.CommitPatterns...)
			debug = append(append([]string{}, debug...), override.DebugPatterns...)
			logAllow = append(append([]string{}, logAllow...), override.LogAllowlist...)
			for _, r := range override.Agents {
				agents = append(agents, config.AgentRule{
					Pattern:       r.Pattern,
					Agent:         r.Agent,
					EditThreshold: r.EditThreshold,
				})
			}
		}
	}

	set := &Set{}
	var err error
	if set.Exclude, err = CompilePatterns(exclude); err != nil {
		return nil, fmt.Errorf("exclude patterns: %w", err)
	}
	if set.Commit, err = CompilePatterns(commit); err != nil {
		return nil, fmt.Errorf("commit patterns: %w", err)
	}
	if set.Debug, err = CompilePatterns(debug); err != nil {
		return nil, fmt.Errorf("debug patterns: %w", err)
	}
	if set.LogAllow, err = CompilePatterns(logAllow); err != nil {
		return nil, fmt.Errorf("log allowlist: %w", err)
	}

	set.Agents = make([]AgentRule, 0, len(agents))
	for _, rule := range agents {
		re, err := regexp.Compile("(?i)" + rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("agent rule %q: %w: %v", rule.Pattern, ErrInvalidRegex, err)
		}
		threshold := rule.EditThreshold
		if threshold < 1 {
			threshold = 1
		}
		set.Agents = append(set.Agents, AgentRule{
			Pattern:   re,
			Agent:     rule.Agent,
			Threshold: threshold,
		})
	}

	return set, nil
}
