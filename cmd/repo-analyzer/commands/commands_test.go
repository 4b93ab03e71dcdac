package commands_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/repo-analyzer/cmd/repo-analyzer/commands"
	"github.com/Sumatoshi-tech/repo-analyzer/pkg/churn"
	"github.com/Sumatoshi-tech/repo-analyzer/pkg/config"
	"github.com/Sumatoshi-tech/repo-analyzer/pkg/gitlib/gittest"
	"github.com/Sumatoshi-tech/repo-analyzer/pkg/publish"
)

var errOpen = errors.New("no browser")

type fakeProbe struct {
	records []churn.Record
	lines   map[string]int
}

func (p *fakeProbe) ListChurn(_ context.Context) ([]churn.Record, error) {
	return p.records, nil
}

func (p *fakeProbe) CountLines(_ context.Context, path string) (int, error) {
	return p.lines[path], nil
}

type fakeUploader struct {
	bucket, key string
	body        []byte
}

func (f *fakeUploader) PutObject(
	_ context.Context,
	params *s3.PutObjectInput,
	_ ...func(*s3.Options),
) (*s3.PutObjectOutput, error) {
	f.bucket = *params.Bucket
	f.key = *params.Key

	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}

	f.body = body

	return &s3.PutObjectOutput{}, nil
}

// harness runs the root command against a scratch repository directory.
type harness struct {
	t      *testing.T
	root   string
	config string
	probe  *fakeProbe

	asked    []string
	answer   bool
	opened   []string
	openErr  error
	tty      bool

	located   []string
	locateErr error
	uploader *fakeUploader

	stdin          string
	stdout, stderr bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	root := t.TempDir()
	lines := map[string]int{"a.swift": 100, "b.swift": 10, "c.txt": 50}

	for name, n := range lines {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(strings.Repeat("x\n", n)), 0o644))
	}

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, nil, 0o600))

	return &harness{
		t:      t,
		root:   root,
		config: cfgPath,
		probe: &fakeProbe{
			records: []churn.Record{
				{Path: "b.swift", Churn: 2},
				{Path: "a.swift", Churn: 5},
				{Path: "c.txt", Churn: 9},
				{Path: "deleted.swift", Churn: 4},
			},
			lines: lines,
		},
		answer:   true,
		tty:      true,
		uploader: &fakeUploader{},
	}
}

func (h *harness) deps() commands.Deps {
	return commands.Deps{
		NewProbe: func(_, dir string) (churn.Probe, error) {
			assert.Equal(h.t, h.root, dir)

			return h.probe, nil
		},
		Locate: func(_ context.Context, _, dir string) (string, error) {
			h.located = append(h.located, dir)

			return dir, h.locateErr
		},
		NewUploader: func(_ context.Context, _ publish.ClientOptions) (publish.PutObjectAPI, error) {
			return h.uploader, nil
		},
		Confirm: func(question string) bool {
			h.asked = append(h.asked, question)

			return h.answer
		},
		Open: func(_ context.Context, path string) error {
			h.opened = append(h.opened, path)

			return h.openErr
		},
		Interactive: func(_ io.Reader) bool { return h.tty },
	}
}

// run executes the default analyze action with an isolated config file.
func (h *harness) run(args ...string) error {
	h.t.Helper()

	return h.exec(append([]string{"--config", h.config, "--quiet"}, args...)...)
}

func (h *harness) exec(args ...string) error {
	h.t.Helper()

	cmd := commands.NewRootCommandWithDeps(h.deps())
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(h.stdin))
	cmd.SetOut(&h.stdout)
	cmd.SetErr(&h.stderr)

	return cmd.ExecuteContext(context.Background())
}

func (h *harness) decodeStdout() []churn.FileMetric {
	h.t.Helper()

	var metrics []churn.FileMetric
	require.NoError(h.t, json.Unmarshal(h.stdout.Bytes(), &metrics))

	return metrics
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, commands.ExitOK, commands.ExitCode(nil))
	assert.Equal(t, commands.ExitNoMatches, commands.ExitCode(churn.ErrNoMatchingFiles))
	assert.Equal(t, commands.ExitNoMatches, commands.ExitCode(errors.Join(errOpen, churn.ErrNoMatchingFiles)))
	assert.Equal(t, commands.ExitFailure, commands.ExitCode(churn.ErrToolFailed))
	assert.Equal(t, commands.ExitFailure, commands.ExitCode(errOpen))
}

func TestAnalyze_JSONToStdout(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	require.NoError(t, h.run(h.root, "--format", "json", "-n", "1"))

	assert.Equal(t, []churn.FileMetric{{Path: "a.swift", Churn: 5, LineCount: 100}}, h.decodeStdout())
	assert.Empty(t, h.asked)
	assert.Empty(t, h.opened)
}

func TestAnalyze_SubcommandMatchesDefaultAction(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	require.NoError(t, h.exec("analyze", "--config", h.config, h.root, "-f", "json", "-n", "2"))

	assert.Equal(t, []churn.FileMetric{
		{Path: "a.swift", Churn: 5, LineCount: 100},
		{Path: "b.swift", Churn: 2, LineCount: 10},
	}, h.decodeStdout())
}

func TestAnalyze_NoMatchingFiles(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	err := h.run(h.root, "--format", "json", "--ext", ".kt")
	require.ErrorIs(t, err, churn.ErrNoMatchingFiles)
	assert.Equal(t, commands.ExitNoMatches, commands.ExitCode(err))
	assert.Contains(t, h.stderr.String(), "no files matching .kt found")
	assert.Empty(t, h.stdout.String())
}

func TestAnalyze_InvalidThreshold(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	err := h.run(h.root, "--threshold", "0")
	require.ErrorIs(t, err, config.ErrInvalidThreshold)
	assert.Equal(t, commands.ExitFailure, commands.ExitCode(err))
}

func TestAnalyze_ConflictingOpenFlags(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	require.ErrorIs(t, h.run(h.root, "--open", "--no-open"), commands.ErrConflictingOpenFlags)
}

func TestAnalyze_HTMLPrompt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		flags      []string
		answer     bool
		tty        bool
		wantAsked  bool
		wantOpened bool
	}{
		{name: "yes opens", answer: true, tty: true, wantAsked: true, wantOpened: true},
		{name: "no skips", answer: false, tty: true, wantAsked: true},
		{name: "open flag skips prompt", flags: []string{"--open"}, tty: true, wantOpened: true},
		{name: "no-open flag skips both", flags: []string{"--no-open"}, answer: true, tty: true},
		{name: "not a terminal", answer: true, tty: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t)
			h.answer = tt.answer
			h.tty = tt.tty

			output := filepath.Join(t.TempDir(), "report.html")

			require.NoError(t, h.run(append([]string{h.root, "-o", output}, tt.flags...)...))

			html, err := os.ReadFile(output)
			require.NoError(t, err)
			assert.Contains(t, string(html), "a.swift")

			if tt.wantAsked {
				assert.Equal(t, []string{"Would you like to open it? Y/N [Y]"}, h.asked)
			} else {
				assert.Empty(t, h.asked)
			}

			if tt.wantOpened {
				assert.Equal(t, []string{output}, h.opened)
			} else {
				assert.Empty(t, h.opened)
			}
		})
	}
}

func TestAnalyze_OpenFailureIsWarning(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.openErr = errOpen

	output := filepath.Join(t.TempDir(), "report.html")

	require.NoError(t, h.run(h.root, "-o", output))
	assert.Contains(t, h.stderr.String(), "no browser")
}

func TestAnalyze_ChurnFileFromStdin(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.probe.records = nil
	h.stdin = "count\tfile\n7\tb.swift\n1\ta.swift\n"

	require.NoError(t, h.run(h.root, "-f", "json", "--churn-file", "-", "-n", "1"))

	assert.Equal(t, []churn.FileMetric{
		{Path: "a.swift", Churn: 1, LineCount: 100},
		{Path: "b.swift", Churn: 7, LineCount: 10},
	}, h.decodeStdout())
}

func TestAnalyze_ChurnFileOutsideRepository(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.locateErr = churn.ErrToolFailed
	h.stdin = "count\tfile\n7\tb.swift\n"

	require.NoError(t, h.run(h.root, "-f", "json", "--churn-file", "-"))

	assert.Equal(t, []churn.FileMetric{{Path: "b.swift", Churn: 7, LineCount: 10}}, h.decodeStdout())
}

func TestAnalyze_LocateFailure(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.locateErr = churn.ErrToolFailed

	err := h.run(h.root, "-f", "json")
	require.ErrorIs(t, err, churn.ErrToolFailed)
	assert.Equal(t, []string{h.root}, h.located)
	assert.Empty(t, h.stdout.String())
}

// TestAnalyze_FromSubdirectory runs the real backends against a repository
// whose only source file lives below the directory given on the command line.
func TestAnalyze_FromSubdirectory(t *testing.T) {
	t.Parallel()

	fixture := gittest.New(t)
	fixture.Write("App/a.swift", "1\n")
	fixture.Write("README.md", "readme\n")
	fixture.Commit("initial")
	fixture.Write("App/a.swift", "1\n2\n")
	fixture.Commit("grow a")

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, nil, 0o600))

	for _, backend := range []string{"libgit2", "gogit"} {
		var stdout, stderr bytes.Buffer

		cmd := commands.NewRootCommandWithDeps(commands.Deps{Interactive: func(io.Reader) bool { return false }})
		cmd.SetArgs([]string{
			"--config", cfgPath, "--quiet", "--backend", backend, "-f", "json",
			filepath.Join(fixture.Path, "App"),
		})
		cmd.SetIn(strings.NewReader(""))
		cmd.SetOut(&stdout)
		cmd.SetErr(&stderr)

		require.NoError(t, cmd.ExecuteContext(context.Background()), "%s: %s", backend, stderr.String())

		var metrics []churn.FileMetric
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &metrics), backend)
		assert.Equal(t, []churn.FileMetric{{Path: "App/a.swift", Churn: 2, LineCount: 2}}, metrics, backend)
	}
}

func TestAnalyze_DumpChurn(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	dump := filepath.Join(t.TempDir(), "churn.tsv")

	require.NoError(t, h.run(h.root, "-f", "json", "--dump-churn", dump))

	data, err := os.ReadFile(dump)
	require.NoError(t, err)
	assert.Equal(t, h.probe.records, churn.ParseChurnTable(string(data)))
}

func TestAnalyze_MetricsFile(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	metricsFile := filepath.Join(t.TempDir(), "run.prom")

	require.NoError(t, h.run(h.root, "-f", "json", "--metrics-file", metricsFile))

	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "repo_analyzer_files_selected")
	assert.Contains(t, string(data), `status="ok"`)
}

func TestAnalyze_Publish(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	output := filepath.Join(t.TempDir(), "report.yaml")

	require.NoError(t, h.run(h.root, "-f", "yaml", "-o", output, "--publish", "s3://reports/app/latest.yaml"))

	written, err := os.ReadFile(output)
	require.NoError(t, err)

	assert.Equal(t, "reports", h.uploader.bucket)
	assert.Equal(t, "app/latest.yaml", h.uploader.key)
	assert.Equal(t, written, h.uploader.body)
}

func TestAnalyze_PublishNeedsFile(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	require.ErrorIs(t, h.run(h.root, "-f", "json", "--publish", "s3://reports/x.json"), commands.ErrPublishNeedsFile)
}

func TestRender_JSONToText(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	saved := filepath.Join(t.TempDir(), "report.json")

	require.NoError(t, h.run(h.root, "-f", "json", "-o", saved))

	h.stdout.Reset()
	require.NoError(t, h.exec("render", saved, "-f", "text"))

	assert.Contains(t, h.stdout.String(), "a.swift")
	assert.Contains(t, h.stdout.String(), "b.swift")
}

func TestRender_RejectsJSON(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	require.ErrorIs(t, h.exec("render", "whatever.json", "-f", "json"), commands.ErrRenderToJSON)
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	cmd := commands.NewVersionCommand()
	cmd.SetOut(&out)
	cmd.SetArgs(nil)

	require.NoError(t, cmd.Execute())
	assert.True(t, strings.HasPrefix(out.String(), "repo-analyzer "))
}

func TestMCPCommand_Exists(t *testing.T) {
	t.Parallel()

	cmd := commands.NewMCPCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "mcp", cmd.Use)
	assert.NotEmpty(t, cmd.Short)

	flag := cmd.Flags().Lookup("debug")
	require.NotNil(t, flag)
	assert.Equal(t, "false", flag.DefValue)
}
