package rules

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProjectFile(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".warden.toml"), []byte(content), 0600))
}

func TestLoadProjectRules_Missing(t *testing.T) {
	rules, err := LoadProjectRules(t.TempDir())
	assert.Nil(t, rules)
	assert.NoError(t, err)
}

func TestLoadProjectRules_Valid(t *testing.T) {
	dir := t.TempDir()
	writeProjectFile(t, dir, `[rules]
exclude = ['\.snap$', '(^|/)fixtures/']
log_allowlist = ['logger\.debug\(']
`)

	rules, err := LoadProjectRules(dir)
	require.NoError(t, err)
	require.NotNil(t, rules)

	assert.Equal(t, []string{`\.snap$`, `(^|/)fixtures/`}, rules.Exclude)
	assert.Equal(t, []string{`logger\.debug\(`}, rules.LogAllowlist)
	assert.Empty(t, rules.CommitPatterns)
}

func TestLoadProjectRules_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	writeProjectFile(t, dir, `[rules
exclude = [`)

	_, err := LoadProjectRules(dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTOML))
}

func TestLoadProjectRules_InvalidPattern(t *testing.T) {
	dir := t.TempDir()
	writeProjectFile(t, dir, `[rules]
exclude = ['(']
`)

	_, err := LoadProjectRules(dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRegex))
}

func TestLoadProjectRules_AgentMissingName(t *testing.T) {
	dir := t.TempDir()
	writeProjectFile(t, dir, `[[rules.agents]]
pattern = '\.proto$'
`)

	_, err := LoadProjectRules(dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTOML))
}
