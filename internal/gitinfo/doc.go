// Package gitinfo answers the small set of repository questions the
// gates ask: where is the repo root, what branch is checked out, and
// what would a commit right now include. Everything degrades
// gracefully; a workspace without a repository is normal, not an
// error.
package gitinfo
