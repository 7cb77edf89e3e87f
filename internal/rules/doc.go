// Package rules compiles the declarative matchers every gate consults:
// path exclusion patterns, commit-command patterns, debug-logging
// patterns, and agent-suggestion rules.
//
// Patterns are configuration data, not code. They come from the main
// config and may be extended (union, never replaced) by a project-local
// .warden.toml at the workspace root. Paths are normalized to forward
// slashes before matching and patterns match case-insensitively, so one
// pattern list serves both path separator conventions.
package rules
