// Package metrics accumulates hook usage counters and computes the
// process-maturity score from whatever evidence exists locally.
// Everything here is best-effort: missing documents mean "no data",
// and recording failures never surface to callers.
package metrics
