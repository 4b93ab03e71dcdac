// Package probe provides churn.Probe implementations backed by the git CLI,
// libgit2, or go-git.
package probe

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/repo-analyzer/pkg/churn"
)

// Backend names accepted by New.
const (
	BackendExec    = "exec"
	BackendLibGit2 = "libgit2"
	BackendGoGit   = "gogit"
)

// ErrUnknownBackend is returned by New for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown probe backend")

// Backends lists the accepted backend names.
func Backends() []string {
	return []string{BackendExec, BackendLibGit2, BackendGoGit}
}

// New returns the probe for backend rooted at dir. An empty backend selects exec.
func New(backend, dir string) (churn.Probe, error) {
	switch backend {
	case "", BackendExec:
		return &Exec{Dir: dir}, nil
	case BackendLibGit2:
		return &LibGit2{Path: dir}, nil
	case BackendGoGit:
		return &GoGit{Path: dir}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// Locator finds the root of the working tree a probe was opened in.
type Locator interface {
	Toplevel(ctx context.Context) (string, error)
}

// Toplevel returns the root of the working tree that contains dir. Git lists
// paths relative to that root, so it is also the directory lengths are read from.
func Toplevel(ctx context.Context, backend, dir string) (string, error) {
	p, err := New(backend, dir)
	if err != nil {
		return "", err
	}

	loc, ok := p.(Locator)
	if !ok {
		return dir, nil
	}

	return loc.Toplevel(ctx)
}
