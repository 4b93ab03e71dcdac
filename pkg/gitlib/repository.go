package gitlib

import (
	"errors"
	"fmt"
	"path/filepath"

	git2go "github.com/libgit2/git2go/v34"
)

// ErrBareRepository is returned when a working tree is required but the repository has none.
var ErrBareRepository = errors.New("repository has no working tree")

// Repository wraps a libgit2 repository.
type Repository struct {
	repo *git2go.Repository
}

// OpenRepository opens the repository containing path, searching parent directories.
func OpenRepository(path string) (*Repository, error) {
	repo, err := git2go.OpenRepositoryExtended(path, 0, "")
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	return &Repository{repo: repo}, nil
}

// Workdir returns the root of the working tree without a trailing separator.
func (r *Repository) Workdir() (string, error) {
	if r.repo.IsBare() {
		return "", ErrBareRepository
	}

	return filepath.Clean(r.repo.Workdir()), nil
}

// Free releases the repository resources.
func (r *Repository) Free() {
	if r.repo != nil {
		r.repo.Free()
		r.repo = nil
	}
}

// WalkAll returns a walker over every commit reachable from any reference or HEAD,
// newest first.
func (r *Repository) WalkAll() (*RevWalk, error) {
	walk, err := r.repo.Walk()
	if err != nil {
		return nil, fmt.Errorf("create revwalk: %w", err)
	}

	rw := &RevWalk{walk: walk, repo: r}

	err = walk.PushGlob("*")
	if err != nil {
		rw.Free()

		return nil, fmt.Errorf("push refs to revwalk: %w", err)
	}

	// An unborn or detached HEAD is fine; refs cover the rest.
	_ = walk.PushHead()

	walk.Sorting(git2go.SortTime)

	return rw, nil
}

// DiffTreeToTree computes the diff between two trees. A nil tree is the empty tree.
func (r *Repository) DiffTreeToTree(oldTree, newTree *Tree) (*Diff, error) {
	opts, err := git2go.DefaultDiffOptions()
	if err != nil {
		return nil, fmt.Errorf("get diff options: %w", err)
	}

	var oldT, newT *git2go.Tree
	if oldTree != nil {
		oldT = oldTree.tree
	}

	if newTree != nil {
		newT = newTree.tree
	}

	diff, err := r.repo.DiffTreeToTree(oldT, newT, &opts)
	if err != nil {
		return nil, fmt.Errorf("diff trees: %w", err)
	}

	return &Diff{diff: diff}, nil
}
