package logging

import (
	"context"

	"go.uber.org/zap"
)

// ContextFields extracts correlation data from context. Warden
// correlates log lines by workspace key and the event being gated.
func ContextFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 4)

	if ws := WorkspaceFromContext(ctx); ws != "" {
		fields = append(fields, zap.String("workspace", ws))
	}

	if ev, ok := ctx.Value(eventCtxKey{}).(eventInfo); ok {
		fields = append(fields,
			zap.String("event.kind", ev.kind),
			zap.String("event.target", ev.target),
		)
	}

	return fields
}

// Context key types
type workspaceCtxKey struct{}
type eventCtxKey struct{}

type eventInfo struct {
	kind   string
	target string
}

// WithWorkspace adds the workspace key to context.
func WithWorkspace(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, workspaceCtxKey{}, key)
}

// WorkspaceFromContext extracts the workspace key from context.
func WorkspaceFromContext(ctx context.Context) string {
	if ws, ok := ctx.Value(workspaceCtxKey{}).(string); ok {
		return ws
	}
	return ""
}

// WithEvent annotates context with the event under evaluation so every
// log line in the decision path carries it.
func WithEvent(ctx context.Context, kind, target string) context.Context {
	return context.WithValue(ctx, eventCtxKey{}, eventInfo{kind: kind, target: target})
}
