// Package report renders warden's human-facing text: block banners
// with remediation steps, one-line advisories, and the summaries the
// CLI prints for audits and session state. Gates and commands decide;
// this package only phrases.
package report
