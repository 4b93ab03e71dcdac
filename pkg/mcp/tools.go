package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/repo-analyzer/pkg/churn"
	"github.com/Sumatoshi-tech/repo-analyzer/pkg/observability"
	"github.com/Sumatoshi-tech/repo-analyzer/pkg/probe"
)

// ToolNameHotspots is the name of the churn hotspot tool.
const ToolNameHotspots = "repo_hotspots"

// mcpFormat labels runs started through MCP in run metrics.
const mcpFormat = "mcp"

const hotspotsToolDescription = "Rank the files of a git repository by how often they changed " +
	"and how long they are. Returns the union of the top files by churn and the top files by length, " +
	"highest combined score first."

// Sentinel errors for tool input validation.
var (
	ErrEmptyRepoPath       = errors.New("repo_path is required")
	ErrRepoPathNotAbsolute = errors.New("repo_path must be an absolute path")
	ErrRepoNotFound        = errors.New("repository not found")
	ErrNotGitRepo          = errors.New("not a git repository")
	ErrInvalidThreshold    = errors.New("threshold must be positive")
)

// HotspotsInput is the input schema for the repo_hotspots tool.
type HotspotsInput struct {
	RepoPath        string   `json:"repo_path"                  jsonschema:"Absolute path to a git repository"`
	Threshold       int      `json:"threshold,omitempty"        jsonschema:"Files taken from each ranking (default 15)"`
	Extensions      []string `json:"extensions,omitempty"       jsonschema:"File extensions to include (default .swift)"`
	IgnoredPaths    []string `json:"ignored_paths,omitempty"    jsonschema:"Top-level directories to skip"`
	Backend         string   `json:"backend,omitempty"          jsonschema:"History backend: exec, libgit2 or gogit (default exec)"`
	ExcludeVendored bool     `json:"exclude_vendored,omitempty" jsonschema:"Also skip paths that look like vendored code"`
}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

func (s *Server) handleHotspots(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input HotspotsInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	err := validateHotspotsInput(input)
	if err != nil {
		return errorResult(err)
	}

	root, err := probe.Toplevel(ctx, input.Backend, input.RepoPath)
	if err != nil {
		return errorResult(err)
	}

	p, err := probe.New(input.Backend, root)
	if err != nil {
		return errorResult(err)
	}

	analysis := churn.Analysis{
		Probe:     p,
		Filter:    churn.NewFilter(filterConfig(input)),
		Root:      root,
		Threshold: thresholdOrDefault(input.Threshold),
		Logger:    s.logger,
		Tracer:    s.tracer,
	}

	start := time.Now()
	result, err := analysis.Run(ctx)
	s.recordRun(ctx, input.Backend, result, err, time.Since(start))

	switch {
	case errors.Is(err, churn.ErrNoMatchingFiles):
		return jsonResult([]churn.FileMetric{})
	case err != nil:
		return errorResult(err)
	}

	return jsonResult(result.Selected)
}

func (s *Server) recordRun(ctx context.Context, backend string, result churn.Result, err error, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}

	if backend == "" {
		backend = probe.BackendExec
	}

	status := observability.StatusOK

	switch {
	case errors.Is(err, churn.ErrNoMatchingFiles):
		status = observability.StatusEmpty
	case err != nil:
		status = observability.StatusError
	}

	s.metrics.Record(ctx, observability.RunSummary{
		Backend:     backend,
		Format:      mcpFormat,
		Status:      status,
		Records:     result.Records,
		Matched:     result.Matched,
		Selected:    len(result.Selected),
		Missing:     result.Stats.Missing,
		CountErrors: result.Stats.CountErrors,
		Duration:    elapsed,
	})
}

func filterConfig(input HotspotsInput) churn.FilterConfig {
	cfg := churn.FilterConfig{
		IgnoredPaths:    churn.DefaultIgnoredPaths(),
		Extensions:      churn.DefaultExtensions(),
		ExcludeVendored: input.ExcludeVendored,
	}

	if input.IgnoredPaths != nil {
		cfg.IgnoredPaths = input.IgnoredPaths
	}

	if len(input.Extensions) > 0 {
		cfg.Extensions = make([]string, len(input.Extensions))

		for i, ext := range input.Extensions {
			if ext != "" && ext[0] != '.' {
				ext = "." + ext
			}

			cfg.Extensions[i] = ext
		}
	}

	return cfg
}

func thresholdOrDefault(n int) int {
	if n == 0 {
		return churn.DefaultThreshold
	}

	return n
}

// validateHotspotsInput validates the hotspot tool input parameters.
func validateHotspotsInput(input HotspotsInput) error {
	if input.RepoPath == "" {
		return ErrEmptyRepoPath
	}

	if !filepath.IsAbs(input.RepoPath) {
		return ErrRepoPathNotAbsolute
	}

	if input.Threshold < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidThreshold, input.Threshold)
	}

	info, err := os.Stat(input.RepoPath)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrRepoNotFound, input.RepoPath)
	}

	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrRepoNotFound, input.RepoPath)
	}

	_, err = os.Stat(filepath.Join(input.RepoPath, ".git"))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNotGitRepo, input.RepoPath)
	}

	return nil
}

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}
