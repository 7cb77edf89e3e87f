package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_Valid(t *testing.T) {
	for _, s := range []Status{StatusOpen, StatusInProgress, StatusDone, StatusFailed} {
		assert.True(t, s.Valid(), "expected %q to be valid", s)
	}
	assert.False(t, Status("queued").Valid())
	assert.False(t, Status("").Valid())
}

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
		want bool
	}{
		{StatusOpen, StatusInProgress, true},
		{StatusInProgress, StatusDone, true},
		{StatusInProgress, StatusFailed, true},
		{StatusOpen, StatusDone, false},
		{StatusOpen, StatusFailed, false},
		{StatusDone, StatusInProgress, false},
		{StatusFailed, StatusOpen, false},
		{StatusInProgress, StatusOpen, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestContextRef_Complete(t *testing.T) {
	start, end := 10, 20
	assert.True(t, (&ContextRef{Path: "a.go", LinesStart: &start, LinesEnd: &end}).Complete())
	assert.False(t, (&ContextRef{Path: "a.go", LinesStart: &start}).Complete())
	assert.False(t, (&ContextRef{LinesStart: &start, LinesEnd: &end}).Complete())
}
