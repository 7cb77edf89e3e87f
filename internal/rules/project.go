package rules

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/BurntSushi/toml"
)

// Project override file name, looked up at the workspace root.
const projectRulesFile = ".warden.toml"

var (
	ErrInvalidTOML  = errors.New("invalid TOML")
	ErrInvalidRegex = errors.New("invalid regex")
)

// ProjectRules are per-project pattern additions. They extend the
// configured lists with union semantics: a project can add rules but
// never remove the configured ones.
type ProjectRules struct {
	Exclude        []string           `toml:"exclude"`
	CommitPatterns []string           `toml:"commit_patterns"`
	DebugPatterns  []string           `toml:"debug_patterns"`
	LogAllowlist   []string           `toml:"log_allowlist"`
	Agents         []ProjectAgentRule `toml:"agents"`
}

// ProjectAgentRule mirrors config.AgentRule in TOML form.
type ProjectAgentRule struct {
	Pattern       string `toml:"pattern"`
	Agent         string `toml:"agent"`
	EditThreshold int    `toml:"edit_threshold"`
}

// LoadProjectRules reads .warden.toml from dir. A missing file returns
// (nil, nil). Invalid TOML or a broken pattern returns an error, so a
// typo surfaces instead of silently weakening a gate.
//
// Expected shape:
//
//	[rules]
//	exclude = ['(^|/)generated/']
//	commit_patterns = ['\bjj\b.*\bcommit\b']
//
//	[[rules.agents]]
//	pattern = '\.proto$'
//	agent = "proto-reviewer"
//	edit_threshold = 2
func LoadProjectRules(dir string) (*ProjectRules, error) {
	path := filepath.Join(dir, projectRulesFile)

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var file struct {
		Rules ProjectRules `toml:"rules"`
	}
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidTOML, path, err)
	}

	rules := file.Rules
	groups := [][]string{rules.Exclude, rules.CommitPatterns, rules.DebugPatterns, rules.LogAllowlist}
	for _, group := range groups {
		for _, pattern := range group {
			if _, err := regexp.Compile(pattern); err != nil {
				return nil, fmt.Errorf("%w: invalid pattern %q in %s: %v", ErrInvalidRegex, pattern, path, err)
			}
		}
	}
	for _, rule := range rules.Agents {
		if rule.Agent == "" {
			return nil, fmt.Errorf("%w: agent rule %q missing agent name in %s", ErrInvalidTOML, rule.Pattern, path)
		}
		if _, err := regexp.Compile(rule.Pattern); err != nil {
			return nil, fmt.Errorf("%w: invalid agent pattern %q in %s: %v", ErrInvalidRegex, rule.Pattern, path, err)
		}
	}

	return &rules, nil
}
