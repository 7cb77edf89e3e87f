package gitinfo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/go-git/go-git/v5/utils/diff"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// maxBlobSize caps how much staged content is read for line counting
// and hygiene scans. Larger blobs are treated as opaque.
const maxBlobSize = 1 << 20

// maxLogCommits bounds history scans on repositories with very busy
// windows.
const maxLogCommits = 500

// StagedStats summarizes what a commit would include right now.
type StagedStats struct {
	// Files is the number of paths with staged changes.
	Files int
	// Lines counts changed lines across all staged paths (additions
	// plus deletions, the way diff stats count them).
	Lines int
	// Paths lists the staged paths, sorted.
	Paths []string
}

// Repo wraps an opened repository.
type Repo struct {
	repo *git.Repository
	root string
}

// Open locates the repository containing dir, searching parent
// directories the way git itself does. Returns an error when dir is
// not inside a repository.
func Open(dir string) (*Repo, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository at %s: %w", dir, err)
	}

	root := dir
	if wt, err := repo.Worktree(); err == nil {
		root = wt.Filesystem.Root()
	}
	return &Repo{repo: repo, root: root}, nil
}

// Root returns the worktree root path.
func (r *Repo) Root() string { return r.root }

// Branch returns the checked-out branch name, or empty when HEAD is
// detached or unreadable.
func (r *Repo) Branch() string {
	head, err := r.repo.Head()
	if err != nil {
		return ""
	}
	if !head.Name().IsBranch() {
		return ""
	}
	return head.Name().Short()
}

// StagedChanges reports the staged file set and a changed-line count
// computed against HEAD. An unborn branch (no commits yet) diffs
// against nothing, so every staged line counts as added.
func (r *Repo) StagedChanges(ctx context.Context) (*StagedStats, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to open worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to read worktree status: %w", err)
	}

	var paths []string
	for path, st := range status {
		switch st.Staging {
		case git.Added, git.Modified, git.Deleted, git.Renamed, git.Copied:
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)

	head := r.headTree()
	lines := 0
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		before := treeContent(head, path)
		after, _ := r.StagedContent(ctx, path)
		lines += countChangedLines(before, after)
	}

	return &StagedStats{Files: len(paths), Lines: lines, Paths: paths}, nil
}

// StagedContent returns the staged copy of path, meaning the index
// blob, not the worktree file. Deleted, missing, binary, and oversized
// entries come back empty.
func (r *Repo) StagedContent(ctx context.Context, path string) (string, error) {
	idx, err := r.repo.Storer.Index()
	if err != nil {
		return "", fmt.Errorf("failed to read index: %w", err)
	}
	entry, err := idx.Entry(path)
	if err != nil {
		return "", nil
	}

	blob, err := r.repo.BlobObject(entry.Hash)
	if err != nil {
		return "", nil
	}
	if blob.Size > maxBlobSize {
		return "", nil
	}

	reader, err := blob.Reader()
	if err != nil {
		return "", nil
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return "", nil
	}
	if isBinary(data) {
		return "", nil
	}
	return string(data), nil
}

// RecurrenceStats summarizes how often recently fixed files needed
// fixing again.
type RecurrenceStats struct {
	// Since is the start of the scan window.
	Since time.Time
	// FixCommits is the number of fix commits found in the window.
	FixCommits int
	// FilesFixed is the number of distinct files those commits touched.
	FilesFixed int
	// Recurring is the number of files fixed more than once.
	Recurring int
}

// FixRecurrence scans commits from since onward for fix commits
// (messages containing "fix:") and counts how many of the files they
// touched were fixed repeatedly. An unborn branch yields empty stats.
func (r *Repo) FixRecurrence(ctx context.Context, since time.Time) (*RecurrenceStats, error) {
	stats := &RecurrenceStats{Since: since}

	iter, err := r.repo.Log(&git.LogOptions{Since: &since})
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return stats, nil
		}
		return nil, fmt.Errorf("failed to read commit log: %w", err)
	}
	defer iter.Close()

	fixes := map[string]int{}
	scanned := 0
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		scanned++
		if scanned > maxLogCommits {
			return storer.ErrStop
		}
		if !strings.Contains(c.Message, "fix:") {
			return nil
		}
		stats.FixCommits++
		fileStats, err := c.StatsContext(ctx)
		if err != nil {
			// Stats can fail on exotic objects; the commit still
			// counted, its files just stay unknown.
			return nil
		}
		for _, fs := range fileStats {
			fixes[fs.Name]++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan commit log: %w", err)
	}

	stats.FilesFixed = len(fixes)
	for _, n := range fixes {
		if n > 1 {
			stats.Recurring++
		}
	}
	return stats, nil
}

func (r *Repo) headTree() *object.Tree {
	head, err := r.repo.Head()
	if err != nil {
		return nil
	}
	commit, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return nil
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil
	}
	return tree
}

func treeContent(tree *object.Tree, path string) string {
	if tree == nil {
		return ""
	}
	file, err := tree.File(path)
	if err != nil {
		return ""
	}
	if file.Size > maxBlobSize {
		return ""
	}
	if bin, err := file.IsBinary(); err != nil || bin {
		return ""
	}
	content, err := file.Contents()
	if err != nil {
		return ""
	}
	return content
}

// countChangedLines counts added plus deleted lines between two
// versions of a file. A modified line counts twice, matching how diff
// stats report insertions and deletions.
func countChangedLines(before, after string) int {
	if before == after {
		return 0
	}
	total := 0
	for _, d := range diff.Do(before, after) {
		if d.Type == diffmatchpatch.DiffEqual {
			continue
		}
		n := strings.Count(d.Text, "\n")
		if n == 0 && len(d.Text) > 0 {
			n = 1
		}
		total += n
	}
	return total
}

func isBinary(data []byte) bool {
	probe := data
	if len(probe) > 8000 {
		probe = probe[:8000]
	}
	for _, b := range probe {
		if b == 0 {
			return true
		}
	}
	return false
}
