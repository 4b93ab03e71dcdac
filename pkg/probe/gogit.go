package probe

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/Sumatoshi-tech/repo-analyzer/pkg/churn"
)

// GoGit reads history in process with the pure Go git implementation.
type GoGit struct {
	// Path is the repository working tree.
	Path string
}

// ListChurn mirrors LibGit2.ListChurn.
func (g *GoGit) ListChurn(ctx context.Context) ([]churn.Record, error) {
	repo, err := git.PlainOpenWithOptions(g.Path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", churn.ErrToolUnavailable, err)
	}

	commits, err := repo.Log(&git.LogOptions{All: true})
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return []churn.Record{}, nil
		}

		return nil, fmt.Errorf("%w: %w", churn.ErrToolFailed, err)
	}
	defer commits.Close()

	counts := make(map[string]int)

	err = commits.ForEach(func(c *object.Commit) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if c.NumParents() > 1 {
			return nil
		}

		return diffCommit(ctx, c, counts)
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		return nil, fmt.Errorf("%w: %w", churn.ErrToolFailed, err)
	}

	return churn.RecordsFromCounts(counts), nil
}

// Toplevel returns the working tree root of the repository containing Path.
func (g *GoGit) Toplevel(_ context.Context) (string, error) {
	repo, err := git.PlainOpenWithOptions(g.Path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("%w: %w", churn.ErrToolUnavailable, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("%w: %w", churn.ErrToolFailed, err)
	}

	return wt.Filesystem.Root(), nil
}

// CountLines reads the file from the working tree.
func (g *GoGit) CountLines(_ context.Context, path string) (int, error) {
	return CountFileLines(g.Path, path)
}

func diffCommit(ctx context.Context, c *object.Commit, counts map[string]int) error {
	tree, err := c.Tree()
	if err != nil {
		return fmt.Errorf("commit %s tree: %w", c.Hash, err)
	}

	var parentTree *object.Tree

	if c.NumParents() == 1 {
		parent, parentErr := c.Parent(0)
		if parentErr != nil {
			return fmt.Errorf("commit %s parent: %w", c.Hash, parentErr)
		}

		parentTree, err = parent.Tree()
		if err != nil {
			return fmt.Errorf("commit %s parent tree: %w", c.Hash, err)
		}
	}

	changes, err := object.DiffTreeWithOptions(ctx, parentTree, tree, object.DefaultDiffTreeOptions)
	if err != nil {
		return fmt.Errorf("commit %s diff: %w", c.Hash, err)
	}

	for _, change := range changes {
		name := change.To.Name
		if name == "" {
			name = change.From.Name
		}

		counts[name]++
	}

	return nil
}
