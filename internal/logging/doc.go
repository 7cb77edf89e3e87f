// Package logging provides the zap-based logger used across warden.
//
// Warden's stdout is reserved for protocol output (hook decisions,
// advisory lines, JSON reports), so loggers write to stderr or to a log
// file, never to stdout. Logging is best-effort everywhere: a logger
// that cannot be constructed degrades to a no-op, and no decision path
// depends on a log write succeeding.
package logging
