// Package session implements the durable per-workspace session store.
//
// Each policy concern (edit tracking, test freshness, scan memory,
// review accumulation) is one pretty-printed JSON document under
//
//	<state-dir>/sessions/<workspace-key>/<concern>.json
//
// keyed by the workspace root. Records expire as a whole: a record idle
// longer than its concern's window is replaced by a zero-valued fresh
// one on load. There is no partial decay and no repair. Corrupt or
// absent files load as fresh records too; corruption is swallowed,
// never surfaced, because a gate must not block on the engine's own
// bookkeeping.
//
// Warden invocations are single-threaded and short-lived, so the store
// takes no locks. Two near-simultaneous invocations can lose an update
// to each other; decisions stay correct because every gate re-derives
// its verdict from the current file content, never from memory.
package session
