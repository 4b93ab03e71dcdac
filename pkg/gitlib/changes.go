package gitlib

import (
	"fmt"

	git2go "github.com/libgit2/git2go/v34"
)

// ChangeAction represents the type of change in a diff.
type ChangeAction int

const (
	// Insert indicates a new file was added.
	Insert ChangeAction = iota
	// Delete indicates a file was removed.
	Delete
	// Modify indicates a file was modified.
	Modify
	// Rename indicates a file was moved, possibly with edits.
	Rename
	// Copy indicates a file was copied from another path.
	Copy
)

// Change is a single file change between two trees.
type Change struct {
	Action ChangeAction
	From   string
	To     string
}

// Path returns the path the change is attributed to: the new path, or the old
// one for deletions.
func (c Change) Path() string {
	if c.Action == Delete {
		return c.From
	}

	return c.To
}

// DiffOptions controls tree diffing.
type DiffOptions struct {
	// DetectRenames pairs deletions and additions with similar content.
	DetectRenames bool
	// DetectCopies additionally reports copies of modified files.
	DetectCopies bool
}

// Diff wraps a libgit2 diff.
type Diff struct {
	diff *git2go.Diff
}

// Free releases the diff resources.
func (d *Diff) Free() {
	if d.diff == nil {
		return
	}

	_ = d.diff.Free()
	d.diff = nil
}

// TreeDiff computes the changes between two trees. A nil old tree diffs
// against the empty tree. Equal trees yield no changes.
func TreeDiff(repo *Repository, oldTree, newTree *Tree, opts DiffOptions) ([]Change, error) {
	if oldTree != nil && newTree != nil && oldTree.Hash() == newTree.Hash() {
		return []Change{}, nil
	}

	diff, err := repo.DiffTreeToTree(oldTree, newTree)
	if err != nil {
		return nil, err
	}
	defer diff.Free()

	if opts.DetectRenames || opts.DetectCopies {
		findErr := findSimilar(diff.diff, opts)
		if findErr != nil {
			return nil, findErr
		}
	}

	numDeltas, err := diff.diff.NumDeltas()
	if err != nil {
		return nil, fmt.Errorf("get num deltas: %w", err)
	}

	changes := make([]Change, 0, numDeltas)

	for i := range numDeltas {
		delta, deltaErr := diff.diff.Delta(i)
		if deltaErr != nil {
			return nil, fmt.Errorf("get delta %d: %w", i, deltaErr)
		}

		changes = append(changes, Change{
			Action: actionOf(delta.Status),
			From:   delta.OldFile.Path,
			To:     delta.NewFile.Path,
		})
	}

	return changes, nil
}

func findSimilar(diff *git2go.Diff, opts DiffOptions) error {
	findOpts, err := git2go.DefaultDiffFindOptions()
	if err != nil {
		return fmt.Errorf("get diff find options: %w", err)
	}

	findOpts.Flags = 0

	if opts.DetectRenames {
		findOpts.Flags |= git2go.DiffFindRenames
	}

	if opts.DetectCopies {
		findOpts.Flags |= git2go.DiffFindCopies
	}

	err = diff.FindSimilar(&findOpts)
	if err != nil {
		return fmt.Errorf("find similar: %w", err)
	}

	return nil
}

func actionOf(status git2go.Delta) ChangeAction {
	switch status {
	case git2go.DeltaAdded:
		return Insert
	case git2go.DeltaDeleted:
		return Delete
	case git2go.DeltaRenamed:
		return Rename
	case git2go.DeltaCopied:
		return Copy
	default:
		return Modify
	}
}
