package probe

import (
	"context"
	"fmt"

	"github.com/Sumatoshi-tech/repo-analyzer/pkg/churn"
	"github.com/Sumatoshi-tech/repo-analyzer/pkg/gitlib"
)

// LibGit2 reads history in process through libgit2.
type LibGit2 struct {
	// Path is the repository working tree.
	Path string
}

// ListChurn walks every commit reachable from any ref and counts the paths
// each non-merge commit changed relative to its first parent.
func (l *LibGit2) ListChurn(ctx context.Context) ([]churn.Record, error) {
	repo, err := gitlib.OpenRepository(l.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", churn.ErrToolUnavailable, err)
	}
	defer repo.Free()

	walk, err := repo.WalkAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", churn.ErrToolFailed, err)
	}
	defer walk.Free()

	counts := make(map[string]int)

	var walkErr error

	iterErr := walk.Iterate(func(commit *gitlib.Commit) bool {
		if walkErr = ctx.Err(); walkErr != nil {
			return false
		}

		if commit.NumParents() > 1 {
			return true
		}

		walkErr = countCommit(repo, commit, counts)

		return walkErr == nil
	})

	if walkErr != nil {
		return nil, walkErr
	}

	if iterErr != nil {
		return nil, fmt.Errorf("%w: %w", churn.ErrToolFailed, iterErr)
	}

	return churn.RecordsFromCounts(counts), nil
}

// Toplevel returns the working tree root of the repository containing Path.
func (l *LibGit2) Toplevel(_ context.Context) (string, error) {
	repo, err := gitlib.OpenRepository(l.Path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", churn.ErrToolUnavailable, err)
	}
	defer repo.Free()

	top, err := repo.Workdir()
	if err != nil {
		return "", fmt.Errorf("%w: %w", churn.ErrToolFailed, err)
	}

	return top, nil
}

// CountLines reads the file from the working tree.
func (l *LibGit2) CountLines(_ context.Context, path string) (int, error) {
	return CountFileLines(l.Path, path)
}

func countCommit(repo *gitlib.Repository, commit *gitlib.Commit, counts map[string]int) error {
	tree, err := commit.Tree()
	if err != nil {
		return fmt.Errorf("%w: %w", churn.ErrToolFailed, err)
	}
	defer tree.Free()

	var parentTree *gitlib.Tree

	if commit.NumParents() == 1 {
		parent, parentErr := commit.Parent(0)
		if parentErr != nil {
			return fmt.Errorf("%w: %w", churn.ErrToolFailed, parentErr)
		}
		defer parent.Free()

		parentTree, err = parent.Tree()
		if err != nil {
			return fmt.Errorf("%w: %w", churn.ErrToolFailed, err)
		}
		defer parentTree.Free()
	}

	changes, err := gitlib.TreeDiff(repo, parentTree, tree, gitlib.DiffOptions{DetectRenames: true, DetectCopies: true})
	if err != nil {
		return fmt.Errorf("%w: %w", churn.ErrToolFailed, err)
	}

	for _, c := range changes {
		counts[c.Path()]++
	}

	return nil
}
