package probe_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/repo-analyzer/pkg/churn"
	"github.com/Sumatoshi-tech/repo-analyzer/pkg/gitlib/gittest"
	"github.com/Sumatoshi-tech/repo-analyzer/pkg/probe"
)

// fakeTool writes an executable shell script and returns its path.
func fakeTool(t *testing.T, name, body string) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("shell script fakes need a POSIX shell")
	}

	path := filepath.Join(t.TempDir(), name)

	err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755)
	require.NoError(t, err)

	return path
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		backend string
		want    any
	}{
		{"", &probe.Exec{}},
		{probe.BackendExec, &probe.Exec{}},
		{probe.BackendLibGit2, &probe.LibGit2{}},
		{probe.BackendGoGit, &probe.GoGit{}},
	}

	for _, tt := range tests {
		p, err := probe.New(tt.backend, "/repo")
		require.NoError(t, err, tt.backend)
		assert.IsType(t, tt.want, p, tt.backend)
	}

	_, err := probe.New("svn", "/repo")
	require.ErrorIs(t, err, probe.ErrUnknownBackend)
}

func TestExecListChurn(t *testing.T) {
	t.Parallel()

	git := fakeTool(t, "git", `printf 'a.swift\nb.swift\n\na.swift\n\nb.swift\na.swift\n'`)

	p := &probe.Exec{Dir: t.TempDir(), GitBin: git}

	records, err := p.ListChurn(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []churn.Record{
		{Path: "b.swift", Churn: 2},
		{Path: "a.swift", Churn: 3},
	}, records)
}

func TestExecListChurnToolFailed(t *testing.T) {
	t.Parallel()

	git := fakeTool(t, "git", `echo "fatal: not a git repository" >&2; exit 128`)

	p := &probe.Exec{Dir: t.TempDir(), GitBin: git}

	_, err := p.ListChurn(context.Background())
	require.ErrorIs(t, err, churn.ErrToolFailed)
	assert.Contains(t, err.Error(), "not a git repository")
}

func TestExecToolUnavailable(t *testing.T) {
	t.Parallel()

	p := &probe.Exec{Dir: t.TempDir(), GitBin: "definitely-not-a-real-git-binary"}

	_, err := p.ListChurn(context.Background())
	require.ErrorIs(t, err, churn.ErrToolUnavailable)
}

func TestExecCountLines(t *testing.T) {
	t.Parallel()

	wc := fakeTool(t, "wc", `[ "$2" = "--" ] || exit 9; echo "      42 $3"`)

	p := &probe.Exec{Dir: t.TempDir(), WcBin: wc}

	n, err := p.CountLines(context.Background(), "a.swift")
	require.NoError(t, err)
	assert.Equal(t, 42, n)
}

func TestExecCountLinesLeadingDash(t *testing.T) {
	t.Parallel()

	requireTools(t, "wc")

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "-dash.swift"), []byte("a\nb\n"), 0o644))

	p := &probe.Exec{Dir: dir}

	n, err := p.CountLines(context.Background(), "-dash.swift")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestExecCountLinesUnexpectedOutput(t *testing.T) {
	t.Parallel()

	wc := fakeTool(t, "wc", `echo "lots of lines"`)

	p := &probe.Exec{Dir: t.TempDir(), WcBin: wc}

	_, err := p.CountLines(context.Background(), "a.swift")
	require.ErrorIs(t, err, churn.ErrUnexpectedOutput)
}

func TestCountFileLines(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "full.swift"), []byte("a\nb\nc\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "partial.swift"), []byte("a\nb"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.swift"), nil, 0o644))

	for name, want := range map[string]int{"full.swift": 3, "partial.swift": 1, "empty.swift": 0} {
		n, err := probe.CountFileLines(dir, name)
		require.NoError(t, err, name)
		assert.Equal(t, want, n, name)
	}

	_, err := probe.CountFileLines(dir, "missing.swift")
	require.Error(t, err)
}

// historyFixture builds a repository where a.swift is touched three times,
// b.swift is renamed to lib/b.swift, and gone.swift is deleted.
func historyFixture(t *testing.T) *gittest.Repo {
	t.Helper()

	fixture := gittest.New(t)

	fixture.Write("a.swift", "1\n")
	fixture.Write("b.swift", "b1\nb2\nb3\nb4\nb5\nb6\nb7\nb8\nb9\nb10\n")
	fixture.Write("gone.swift", "x\n")
	fixture.Commit("initial")

	fixture.Write("a.swift", "1\n2\n")
	fixture.Move("b.swift", "lib/b.swift")
	fixture.Commit("move b")

	fixture.Write("a.swift", "1\n2\n3\n")
	fixture.Remove("gone.swift")
	fixture.Commit("drop gone")

	return fixture
}

func TestInProcessProbes(t *testing.T) {
	t.Parallel()

	fixture := historyFixture(t)

	want := []churn.Record{
		{Path: "b.swift", Churn: 1},
		{Path: "lib/b.swift", Churn: 1},
		{Path: "gone.swift", Churn: 2},
		{Path: "a.swift", Churn: 3},
	}

	probes := map[string]churn.Probe{
		probe.BackendLibGit2: &probe.LibGit2{Path: fixture.Path},
		probe.BackendGoGit:   &probe.GoGit{Path: fixture.Path},
	}

	for name, p := range probes {
		records, err := p.ListChurn(context.Background())
		require.NoError(t, err, name)
		assert.Equal(t, want, records, name)

		n, err := p.CountLines(context.Background(), "a.swift")
		require.NoError(t, err, name)
		assert.Equal(t, 3, n, name)
	}
}

func TestInProcessProbesNotARepository(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	for _, p := range []churn.Probe{&probe.LibGit2{Path: dir}, &probe.GoGit{Path: dir}} {
		_, err := p.ListChurn(context.Background())
		require.ErrorIs(t, err, churn.ErrToolUnavailable)
	}
}

func TestInProcessProbesCanceled(t *testing.T) {
	t.Parallel()

	fixture := historyFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, p := range []churn.Probe{&probe.LibGit2{Path: fixture.Path}, &probe.GoGit{Path: fixture.Path}} {
		_, err := p.ListChurn(ctx)
		require.ErrorIs(t, err, context.Canceled)
	}
}

// requireTools skips the test unless every named executable is on PATH.
func requireTools(t *testing.T, names ...string) {
	t.Helper()

	for _, name := range names {
		if _, err := exec.LookPath(name); err != nil {
			t.Skipf("%s not on PATH", name)
		}
	}
}

func realPath(t *testing.T, path string) string {
	t.Helper()

	resolved, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)

	return resolved
}

// cliRepo drives the git executable against a temporary repository with a
// fixed identity and a clock that advances one minute per command.
type cliRepo struct {
	t     *testing.T
	dir   string
	clock time.Time
}

func newCLIRepo(t *testing.T) *cliRepo {
	t.Helper()

	requireTools(t, "git")

	r := &cliRepo{t: t, dir: t.TempDir(), clock: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	r.git("init", "-q")
	r.git("symbolic-ref", "HEAD", "refs/heads/main")

	return r
}

func (r *cliRepo) git(args ...string) {
	r.t.Helper()

	r.clock = r.clock.Add(time.Minute)
	stamp := strconv.FormatInt(r.clock.Unix(), 10) + " +0000"

	cmd := exec.Command("git", args...)
	cmd.Dir = r.dir
	cmd.Env = append(os.Environ(),
		"GIT_CONFIG_NOSYSTEM=1",
		"GIT_CONFIG_GLOBAL="+os.DevNull,
		"GIT_AUTHOR_NAME=Test User",
		"GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=Test User",
		"GIT_COMMITTER_EMAIL=test@example.com",
		"GIT_AUTHOR_DATE="+stamp,
		"GIT_COMMITTER_DATE="+stamp,
	)

	out, err := cmd.CombinedOutput()
	require.NoError(r.t, err, "git %v: %s", args, out)
}

func (r *cliRepo) write(name, content string) {
	r.t.Helper()

	full := filepath.Join(r.dir, filepath.FromSlash(name))
	require.NoError(r.t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(r.t, os.WriteFile(full, []byte(content), 0o644))
}

// branchingHistory builds a repository with a rename on main, two commits on
// a side branch, a merge of that branch, and an annotated tag on the merge.
func branchingHistory(t *testing.T) string {
	t.Helper()

	r := newCLIRepo(t)

	r.write("a.swift", "let a = 1\n")
	r.write("b.swift", "let b = 1\n")
	r.git("add", "-A")
	r.git("commit", "-q", "-m", "initial")

	r.git("checkout", "-q", "-b", "side")
	r.write("c.swift", "let c = 1\n")
	r.git("add", "-A")
	r.git("commit", "-q", "-m", "add c")
	r.write("b.swift", "let b = 2\n")
	r.git("commit", "-q", "-a", "-m", "change b")

	r.git("checkout", "-q", "main")
	require.NoError(t, os.MkdirAll(filepath.Join(r.dir, "Src"), 0o755))
	r.git("mv", "a.swift", "Src/a2.swift")
	r.git("commit", "-q", "-m", "move a")

	r.git("merge", "-q", "--no-ff", "--no-edit", "side")
	r.git("tag", "-a", "v1.0", "-m", "release")

	return r.dir
}

func TestExecMatchesInProcessBackends(t *testing.T) {
	t.Parallel()

	dir := branchingHistory(t)

	want := []churn.Record{
		{Path: "Src/a2.swift", Churn: 1},
		{Path: "a.swift", Churn: 1},
		{Path: "c.swift", Churn: 1},
		{Path: "b.swift", Churn: 2},
	}

	got, err := (&probe.Exec{Dir: dir}).ListChurn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)

	for name, p := range map[string]churn.Probe{
		probe.BackendLibGit2: &probe.LibGit2{Path: dir},
		probe.BackendGoGit:   &probe.GoGit{Path: dir},
	} {
		records, listErr := p.ListChurn(context.Background())
		require.NoError(t, listErr, name)
		assert.Equal(t, got, records, name)
	}
}

// nestedFixture commits App/a.swift twice, so git reports it relative to the
// repository root rather than to App/.
func nestedFixture(t *testing.T) *gittest.Repo {
	t.Helper()

	fixture := gittest.New(t)

	fixture.Write("App/a.swift", "1\n")
	fixture.Write("README.md", "readme\n")
	fixture.Commit("initial")

	fixture.Write("App/a.swift", "1\n2\n")
	fixture.Commit("grow a")

	return fixture
}

// subdirectoryBackends lists the backends usable on this machine.
func subdirectoryBackends(t *testing.T) []string {
	t.Helper()

	backends := []string{probe.BackendLibGit2, probe.BackendGoGit}

	if _, gitErr := exec.LookPath("git"); gitErr == nil {
		if _, wcErr := exec.LookPath("wc"); wcErr == nil {
			backends = append(backends, probe.BackendExec)
		}
	}

	return backends
}

func TestToplevelFromSubdirectory(t *testing.T) {
	t.Parallel()

	fixture := nestedFixture(t)
	sub := filepath.Join(fixture.Path, "App")

	for _, backend := range subdirectoryBackends(t) {
		top, err := probe.Toplevel(context.Background(), backend, sub)
		require.NoError(t, err, backend)
		assert.Equal(t, realPath(t, fixture.Path), realPath(t, top), backend)
	}
}

func TestToplevelNotARepository(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	for _, backend := range []string{probe.BackendLibGit2, probe.BackendGoGit} {
		_, err := probe.Toplevel(context.Background(), backend, dir)
		require.ErrorIs(t, err, churn.ErrToolUnavailable, backend)
	}

	_, err := probe.Toplevel(context.Background(), "svn", dir)
	require.ErrorIs(t, err, probe.ErrUnknownBackend)
}

func TestAnalysisFromSubdirectory(t *testing.T) {
	t.Parallel()

	fixture := nestedFixture(t)
	sub := filepath.Join(fixture.Path, "App")

	for _, backend := range subdirectoryBackends(t) {
		top, err := probe.Toplevel(context.Background(), backend, sub)
		require.NoError(t, err, backend)

		p, err := probe.New(backend, top)
		require.NoError(t, err, backend)

		analysis := churn.Analysis{
			Probe:     p,
			Filter:    churn.NewFilter(churn.FilterConfig{Extensions: []string{".swift"}}),
			Root:      top,
			Threshold: 10,
		}

		result, err := analysis.Run(context.Background())
		require.NoError(t, err, backend)
		assert.Equal(t, []churn.FileMetric{{Path: "App/a.swift", Churn: 2, LineCount: 2}}, result.Selected, backend)
	}
}
