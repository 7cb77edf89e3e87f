package hookio

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind classifies one observed host action.
type Kind string

const (
	KindWrite      Kind = "Write"
	KindEdit       Kind = "Edit"
	KindRead       Kind = "Read"
	KindBash       Kind = "Bash"
	KindGrep       Kind = "Grep"
	KindGlob       Kind = "Glob"
	KindTask       Kind = "Task"
	KindTaskSubmit Kind = "TaskSubmit"
	KindPlanEntry  Kind = "PlanEntry"
	KindOther      Kind = "Other"
)

// Mode is the host permission mode the event arrived under.
type Mode string

const (
	ModeNormal Mode = "normal"
	ModePlan   Mode = "plan"
)

// Event is one observed host action. Transient, never persisted.
type Event struct {
	Kind Kind `json:"kind"`
	// Tool is the tool name exactly as the host sent it.
	Tool string `json:"tool"`
	// Target is the object of the action: a file path for Write/Edit/
	// Read, the command line for Bash, the search pattern for Grep and
	// Glob, the subagent type for Task.
	Target string `json:"target"`
	Mode   Mode   `json:"mode"`
}

// IsFileEvent reports whether the event touches a file path.
func (e *Event) IsFileEvent() bool {
	return e.Kind == KindWrite || e.Kind == KindEdit
}

// ParseError describes a payload warden could not understand. Fail-open:
// parse errors are logged, never escalated to a block.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("hook payload %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("hook payload %s", e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// hostPayload is the host's PreToolUse wire shape.
type hostPayload struct {
	Tool           string        `json:"tool"`
	ToolName       string        `json:"tool_name"`
	ToolInput      hostToolInput `json:"tool_input"`
	PermissionMode string        `json:"permission_mode"`
}

type hostToolInput struct {
	FilePath     string `json:"file_path"`
	Command      string `json:"command"`
	Prompt       string `json:"prompt"`
	Pattern      string `json:"pattern"`
	SubagentType string `json:"subagent_type"`
}

// Parse decodes one host event payload. An empty payload returns
// (nil, nil): the host sent nothing, which is not an error. A payload
// that cannot be decoded returns (nil, *ParseError).
func Parse(data []byte) (*Event, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var payload hostPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, &ParseError{Reason: "not valid JSON", Err: err}
	}

	tool := payload.ToolName
	if tool == "" {
		tool = payload.Tool
	}
	if tool == "" {
		return nil, &ParseError{Reason: "missing tool name"}
	}

	ev := &Event{
		Kind: kindForTool(tool),
		Tool: tool,
		Mode: ModeNormal,
	}
	if payload.PermissionMode == "plan" {
		ev.Mode = ModePlan
	}

	switch ev.Kind {
	case KindWrite, KindEdit, KindRead:
		ev.Target = payload.ToolInput.FilePath
	case KindBash:
		ev.Target = payload.ToolInput.Command
	case KindGrep, KindGlob:
		ev.Target = payload.ToolInput.Pattern
	case KindTask:
		ev.Target = payload.ToolInput.SubagentType
	}

	return ev, nil
}

// kindForTool maps host tool names onto event kinds. Unknown tools are
// KindOther: real but of no interest to any gate.
func kindForTool(tool string) Kind {
	switch tool {
	case "Write":
		return KindWrite
	case "Edit", "MultiEdit", "NotebookEdit":
		return KindEdit
	case "Read":
		return KindRead
	case "Bash":
		return KindBash
	case "Grep":
		return KindGrep
	case "Glob":
		return KindGlob
	case "Task":
		return KindTask
	case "TaskSubmit":
		return KindTaskSubmit
	case "EnterPlanMode", "ExitPlanMode", "exit_plan_mode":
		return KindPlanEntry
	default:
		return KindOther
	}
}
