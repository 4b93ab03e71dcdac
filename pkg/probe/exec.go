package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Sumatoshi-tech/repo-analyzer/pkg/churn"
)

const (
	defaultGitBin = "git"
	defaultWcBin  = "wc"
)

// logArgs lists every path touched on any ref, one per line, with rename and
// copy detection. Paths are emitted unquoted.
var logArgs = []string{
	"-c", "core.quotePath=false",
	"log", "--all", "-M", "-C", "--name-only", "--format=format:",
}

var toplevelArgs = []string{"rev-parse", "--show-toplevel"}

// Exec runs git and wc as child processes. Arguments are passed directly,
// never through a shell.
type Exec struct {
	// Dir is the working directory for both tools.
	Dir string
	// GitBin overrides the git executable.
	GitBin string
	// WcBin overrides the wc executable.
	WcBin string
}

// ListChurn counts how many commits touched each path.
func (e *Exec) ListChurn(ctx context.Context) ([]churn.Record, error) {
	out, err := e.run(ctx, e.gitBin(), logArgs...)
	if err != nil {
		return nil, err
	}

	return churn.ParseNameOnly(string(out)), nil
}

// CountLines returns the newline count reported by wc -l.
func (e *Exec) CountLines(ctx context.Context, path string) (int, error) {
	out, err := e.run(ctx, e.wcBin(), "-l", "--", path)
	if err != nil {
		return 0, err
	}

	return parseWcOutput(string(out))
}

// Toplevel returns the root of the working tree that contains Dir.
func (e *Exec) Toplevel(ctx context.Context) (string, error) {
	out, err := e.run(ctx, e.gitBin(), toplevelArgs...)
	if err != nil {
		return "", err
	}

	top := strings.TrimSpace(string(out))
	if top == "" {
		return "", fmt.Errorf("%w: empty git rev-parse output", churn.ErrUnexpectedOutput)
	}

	return filepath.FromSlash(top), nil
}

func (e *Exec) run(ctx context.Context, bin string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = e.Dir

	var stderr bytes.Buffer

	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err == nil {
		return out, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("%s: %w", bin, ctxErr)
	}

	if errors.Is(err, exec.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", churn.ErrToolUnavailable, bin)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil, fmt.Errorf("%w: %s exited with %d: %s",
			churn.ErrToolFailed, bin, exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
	}

	return nil, fmt.Errorf("%w: %s: %w", churn.ErrToolUnavailable, bin, err)
}

func (e *Exec) gitBin() string {
	if e.GitBin != "" {
		return e.GitBin
	}

	return defaultGitBin
}

func (e *Exec) wcBin() string {
	if e.WcBin != "" {
		return e.WcBin
	}

	return defaultWcBin
}

// parseWcOutput reads the leading integer of "   42 path".
func parseWcOutput(out string) (int, error) {
	fields := strings.Fields(out)
	if len(fields) == 0 {
		return 0, fmt.Errorf("%w: empty wc output", churn.ErrUnexpectedOutput)
	}

	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: wc output %q", churn.ErrUnexpectedOutput, out)
	}

	return n, nil
}
