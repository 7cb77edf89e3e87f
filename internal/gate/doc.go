// Package gate implements the policy gates that classify host events.
//
// Each gate is an independent policy unit: it consumes one event plus
// the session store and emits a Decision (allow, ask, or block, with a
// human-readable message where one matters). Gates run in a fixed
// registration order; the first block short-circuits the rest, an ask
// propagates when nothing blocks, and everything else allows.
//
// Failure semantics are one-sided. A gate error means "no opinion":
// the registry logs it and moves on. Session persistence
// failures are logged and swallowed. The only thing allowed to stop a
// requested action is an explicit policy decision.
package gate
