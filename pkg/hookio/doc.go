// Package hookio implements the wire protocol between the host editor
// and warden's hook: decoding the single JSON event delivered on stdin
// and encoding decision objects on stdout.
//
// The package enforces the fail-open rule centrally: a malformed or
// absent payload yields no event plus a *ParseError carrying the reason.
// The error exists for logging only; no caller may turn it into a
// block. Gates therefore never see malformed input.
package hookio
