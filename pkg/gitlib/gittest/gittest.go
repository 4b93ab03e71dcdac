// Package gittest builds throwaway git repositories for tests.
package gittest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	git2go "github.com/libgit2/git2go/v34"
	"github.com/stretchr/testify/require"
)

// Repo is a repository in a temporary directory. It is freed when the test ends.
type Repo struct {
	t      testing.TB
	Path   string
	native *git2go.Repository
	clock  time.Time
}

// New initializes an empty non-bare repository.
func New(t testing.TB) *Repo {
	t.Helper()

	dir := t.TempDir()

	native, err := git2go.InitRepository(dir, false)
	require.NoError(t, err)

	t.Cleanup(native.Free)

	return &Repo{
		t:      t,
		Path:   dir,
		native: native,
		clock:  time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// Write creates or replaces a file in the working tree.
func (r *Repo) Write(name, content string) {
	r.t.Helper()

	full := filepath.Join(r.Path, filepath.FromSlash(name))

	err := os.MkdirAll(filepath.Dir(full), 0o755)
	require.NoError(r.t, err)

	err = os.WriteFile(full, []byte(content), 0o644)
	require.NoError(r.t, err)
}

// Remove deletes a file from the working tree.
func (r *Repo) Remove(name string) {
	r.t.Helper()

	err := os.Remove(filepath.Join(r.Path, filepath.FromSlash(name)))
	require.NoError(r.t, err)
}

// Move renames a file in the working tree.
func (r *Repo) Move(from, to string) {
	r.t.Helper()

	dst := filepath.Join(r.Path, filepath.FromSlash(to))

	err := os.MkdirAll(filepath.Dir(dst), 0o755)
	require.NoError(r.t, err)

	err = os.Rename(filepath.Join(r.Path, filepath.FromSlash(from)), dst)
	require.NoError(r.t, err)
}

// Commit stages every change in the working tree, including deletions, and
// commits it on HEAD. Commit times advance by one minute per call.
func (r *Repo) Commit(message string) {
	r.t.Helper()

	index, err := r.native.Index()
	require.NoError(r.t, err)

	defer index.Free()

	err = index.AddAll([]string{"*"}, git2go.IndexAddDefault, nil)
	require.NoError(r.t, err)

	err = index.UpdateAll([]string{"*"}, nil)
	require.NoError(r.t, err)

	err = index.Write()
	require.NoError(r.t, err)

	treeID, err := index.WriteTree()
	require.NoError(r.t, err)

	tree, err := r.native.LookupTree(treeID)
	require.NoError(r.t, err)

	defer tree.Free()

	r.clock = r.clock.Add(time.Minute)

	sig := &git2go.Signature{Name: "Test User", Email: "test@example.com", When: r.clock}

	var parents []*git2go.Commit

	head, headErr := r.native.Head()
	if headErr == nil {
		parent, lookupErr := r.native.LookupCommit(head.Target())
		require.NoError(r.t, lookupErr)

		parents = append(parents, parent)

		head.Free()
	}

	_, err = r.native.CreateCommit("HEAD", sig, sig, message, tree, parents...)
	require.NoError(r.t, err)

	for _, p := range parents {
		p.Free()
	}
}
