package hookio

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name       string
		payload    string
		wantKind   Kind
		wantTarget string
		wantMode   Mode
	}{
		{
			name:       "write event",
			payload:    `{"tool_name":"Write","tool_input":{"file_path":"internal/engine/table.go"}}`,
			wantKind:   KindWrite,
			wantTarget: "internal/engine/table.go",
			wantMode:   ModeNormal,
		},
		{
			name:       "multiedit maps to edit",
			payload:    `{"tool_name":"MultiEdit","tool_input":{"file_path":"cmd/main.go"}}`,
			wantKind:   KindEdit,
			wantTarget: "cmd/main.go",
			wantMode:   ModeNormal,
		},
		{
			name:       "bash command",
			payload:    `{"tool_name":"Bash","tool_input":{"command":"git commit -m 'x'"}}`,
			wantKind:   KindBash,
			wantTarget: "git commit -m 'x'",
			wantMode:   ModeNormal,
		},
		{
			name:       "plan mode write",
			payload:    `{"tool_name":"Write","tool_input":{"file_path":"a.go"},"permission_mode":"plan"}`,
			wantKind:   KindWrite,
			wantTarget: "a.go",
			wantMode:   ModePlan,
		},
		{
			name:       "grep records pattern",
			payload:    `{"tool_name":"Grep","tool_input":{"pattern":"func Validate"}}`,
			wantKind:   KindGrep,
			wantTarget: "func Validate",
			wantMode:   ModeNormal,
		},
		{
			name:       "task carries subagent type",
			payload:    `{"tool_name":"Task","tool_input":{"subagent_type":"test-writer","prompt":"write tests"}}`,
			wantKind:   KindTask,
			wantTarget: "test-writer",
			wantMode:   ModeNormal,
		},
		{
			name:       "legacy tool field",
			payload:    `{"tool":"Read","tool_input":{"file_path":"README.md"}}`,
			wantKind:   KindRead,
			wantTarget: "README.md",
			wantMode:   ModeNormal,
		},
		{
			name:       "unknown tool is other",
			payload:    `{"tool_name":"WebFetch","tool_input":{}}`,
			wantKind:   KindOther,
			wantTarget: "",
			wantMode:   ModeNormal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := Parse([]byte(tt.payload))
			require.NoError(t, err)
			require.NotNil(t, ev)

			assert.Equal(t, tt.wantKind, ev.Kind)
			assert.Equal(t, tt.wantTarget, ev.Target)
			assert.Equal(t, tt.wantMode, ev.Mode)
		})
	}
}

func TestParse_EmptyPayloadIsNoEvent(t *testing.T) {
	for _, payload := range []string{"", "   ", "\n\t"} {
		ev, err := Parse([]byte(payload))
		assert.Nil(t, ev)
		assert.NoError(t, err)
	}
}

func TestParse_MalformedPayload(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "broken json", payload: `{"tool_name":`},
		{name: "missing tool name", payload: `{"tool_input":{"file_path":"a.go"}}`},
		{name: "wrong top-level type", payload: `[1,2,3]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := Parse([]byte(tt.payload))
			assert.Nil(t, ev)

			var parseErr *ParseError
			require.Error(t, err)
			assert.True(t, errors.As(err, &parseErr), "want *ParseError, got %T", err)
		})
	}
}

func TestEvent_IsFileEvent(t *testing.T) {
	assert.True(t, (&Event{Kind: KindWrite}).IsFileEvent())
	assert.True(t, (&Event{Kind: KindEdit}).IsFileEvent())
	assert.False(t, (&Event{Kind: KindBash}).IsFileEvent())
	assert.False(t, (&Event{Kind: KindRead}).IsFileEvent())
}
