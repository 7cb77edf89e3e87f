package gate

import (
	"context"

	"github.com/fyrsmithlabs/warden/internal/session"
	"github.com/fyrsmithlabs/warden/pkg/hookio"
)

// Outcome is a gate's verdict for one event.
type Outcome string

const (
	// OutcomeAllow lets the action proceed. An allow carrying a Message
	// is an advisory: the action proceeds and the message is surfaced.
	OutcomeAllow Outcome = "allow"

	// OutcomeAsk defers the action to an interactive confirmation.
	OutcomeAsk Outcome = "ask"

	// OutcomeBlock denies the action outright.
	OutcomeBlock Outcome = "block"
)

// Decision is the result of evaluating one gate against one event.
type Decision struct {
	// Outcome is the verdict. The zero value is not valid; use Allow().
	Outcome Outcome

	// Rule names the gate that produced the decision. Empty for a
	// plain allow.
	Rule string

	// Reason is a short stable code for the decision (for example
	// "NO_TESTS"), used in logs and tests. Empty for a plain allow.
	Reason string

	// Message is the human-readable text shown to the operator. Set on
	// blocks, asks, and advisories.
	Message string
}

// Allow returns the neutral decision: proceed, nothing to say.
func Allow() Decision {
	return Decision{Outcome: OutcomeAllow}
}

// Advisory reports whether the decision is an allow that carries text
// worth surfacing.
func (d Decision) Advisory() bool {
	return d.Outcome == OutcomeAllow && d.Message != ""
}

// Gate is one policy unit. Evaluate inspects the event and the session
// state and returns a verdict. Gates that do not apply to the event
// return Allow(). A non-nil error means the gate could not form an
// opinion; the caller treats that as an allow.
type Gate interface {
	Name() string
	Evaluate(ctx context.Context, ev *hookio.Event, state session.Repository) (Decision, error)
}

// ActivityRecorder receives every gate decision for usage accounting.
// Implementations must tolerate being called on the hot path; recording
// failures must not surface.
type ActivityRecorder interface {
	Record(gate string, d Decision)
}
