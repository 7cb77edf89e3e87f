// Package backlog persists the delegable-task queue and enforces
// admission control over it. The store is a single JSON document; the
// dispatcher is the only writer and applies the atomicity rules from
// package task: batches land whole or not at all, and audits always
// regenerate the compliance report from scratch.
package backlog
