// Package task defines the unit of delegable work and the atomicity
// rules it must satisfy before admission into the backlog. The
// validator is pure: it reports every violated constraint and never
// touches storage.
package task
