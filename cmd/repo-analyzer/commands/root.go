// Package commands implements CLI command handlers for repo-analyzer.
package commands

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/repo-analyzer/pkg/churn"
	"github.com/Sumatoshi-tech/repo-analyzer/pkg/interact"
	"github.com/Sumatoshi-tech/repo-analyzer/pkg/probe"
	"github.com/Sumatoshi-tech/repo-analyzer/pkg/publish"
	"github.com/Sumatoshi-tech/repo-analyzer/pkg/terminal"
)

// Process exit codes.
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitNoMatches = 2
)

// ExitCode maps a command error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, churn.ErrNoMatchingFiles):
		return ExitNoMatches
	default:
		return ExitFailure
	}
}

// GlobalOptions holds the persistent flags shared by all commands.
type GlobalOptions struct {
	Verbose bool
	Quiet   bool
}

// ProbeFactory builds the probe for a backend rooted at dir.
type ProbeFactory func(backend, dir string) (churn.Probe, error)

// RootLocator returns the working tree root that contains dir.
type RootLocator func(ctx context.Context, backend, dir string) (string, error)

// UploaderFactory builds the object storage client used by --publish.
type UploaderFactory func(ctx context.Context, opts publish.ClientOptions) (publish.PutObjectAPI, error)

// Deps holds the injectable collaborators of the analyze command.
// Zero-value fields use production defaults.
type Deps struct {
	NewProbe    ProbeFactory
	Locate      RootLocator
	NewUploader UploaderFactory

	// Confirm asks the open question. Nil reads the answer from the command's stdin.
	Confirm interact.Confirmer
	// Open opens the written HTML report.
	Open interact.Opener
	// Interactive reports whether the prompt may be shown for the given stdin.
	Interactive func(in io.Reader) bool
}

func (d Deps) withDefaults() Deps {
	if d.NewProbe == nil {
		d.NewProbe = probe.New
	}

	if d.Locate == nil {
		d.Locate = probe.Toplevel
	}

	if d.NewUploader == nil {
		d.NewUploader = func(ctx context.Context, opts publish.ClientOptions) (publish.PutObjectAPI, error) {
			return publish.NewClient(ctx, opts)
		}
	}

	if d.Open == nil {
		d.Open = interact.OpenFile
	}

	if d.Interactive == nil {
		d.Interactive = func(in io.Reader) bool { return terminal.IsTerminal(in) }
	}

	return d
}

// NewRootCommand creates the repo-analyzer root command with production dependencies.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWithDeps(Deps{})
}

// NewRootCommandWithDeps creates the root command. Running it without a
// subcommand runs analyze.
func NewRootCommandWithDeps(deps Deps) *cobra.Command {
	globals := &GlobalOptions{}
	deps = deps.withDefaults()

	ac := newAnalyzeCommand(globals, deps)

	rootCmd := &cobra.Command{
		Use:   "repo-analyzer [path]",
		Short: "Find the files that change most and are longest",
		Long: `repo-analyzer reads the git history of a repository, counts how often each
file changed and how long it is today, and reports the files that lead
either ranking as a scatter chart or a machine-readable list.

Running it without a subcommand is the same as "repo-analyzer analyze".`,
		Args:          cobra.MaximumNArgs(1),
		RunE:          ac.run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	ac.bindFlags(rootCmd)

	rootCmd.PersistentFlags().BoolVarP(&globals.Verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&globals.Quiet, "quiet", "q", false, "suppress progress output")

	rootCmd.AddCommand(newAnalyzeCommandWithDeps(globals, deps))
	rootCmd.AddCommand(NewRenderCommand())
	rootCmd.AddCommand(NewMCPCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}
