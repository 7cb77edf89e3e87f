package hookio

import (
	"encoding/json"
	"io"
)

// PermissionOutcome is the wire value for file-family gate decisions.
type PermissionOutcome string

const (
	PermissionAllow PermissionOutcome = "allow"
	PermissionAsk   PermissionOutcome = "ask"
	PermissionDeny  PermissionOutcome = "deny"
)

// PermissionDecision is the structured permission object emitted for
// Write/Edit gating.
type PermissionDecision struct {
	Outcome PermissionOutcome `json:"outcome"`
	Reason  string            `json:"reason,omitempty"`
}

// ContinueDecision is the decision object emitted for command gating:
// Continue false halts the requested action.
type ContinueDecision struct {
	Continue bool   `json:"continue"`
	Message  string `json:"message,omitempty"`
}

// WritePermission encodes a permission decision to w.
func WritePermission(w io.Writer, outcome PermissionOutcome, reason string) error {
	return writeJSON(w, PermissionDecision{Outcome: outcome, Reason: reason})
}

// WriteContinue encodes a continue decision to w.
func WriteContinue(w io.Writer, cont bool, message string) error {
	return writeJSON(w, ContinueDecision{Continue: cont, Message: message})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	return enc.Encode(v)
}
