// Package churn computes per-file change frequency and length metrics for a
// repository and selects the files most likely to benefit from refactoring.
package churn

import (
	"context"
	"errors"
)

// DefaultThreshold is how many files are taken from each ranking.
const DefaultThreshold = 15

// Sentinel errors reported by probes and the analysis pipeline.
var (
	// ErrToolUnavailable indicates the history or line-count tool could not be started
	// (binary missing, repository cannot be opened).
	ErrToolUnavailable = errors.New("tool unavailable")
	// ErrToolFailed indicates the tool ran but exited unsuccessfully.
	ErrToolFailed = errors.New("tool failed")
	// ErrUnexpectedOutput indicates the tool output could not be parsed.
	ErrUnexpectedOutput = errors.New("tool produced unexpected output")
	// ErrNoMatchingFiles indicates no file survived filtering and length collection.
	ErrNoMatchingFiles = errors.New("no matching files found")
)

// Record is one path with the number of commits that touched it.
type Record struct {
	Path  string
	Churn int
}

// FileMetric merges the churn of a path with the current length of the file.
type FileMetric struct {
	Path      string `json:"file"       yaml:"file"`
	Churn     int    `json:"churn"      yaml:"churn"`
	LineCount int    `json:"line_count" yaml:"line_count"`
}

// CombinedScore returns churn + line count, the key used to order reports.
func CombinedScore(m FileMetric) int {
	return m.Churn + m.LineCount
}

// Probe queries the version-control history and the working tree.
type Probe interface {
	// ListChurn returns every path touched by any commit on any ref, with its
	// commit count, sorted ascending by count.
	ListChurn(ctx context.Context) ([]Record, error)
	// CountLines returns the number of newline-terminated lines in the file at
	// path, relative to the repository root.
	CountLines(ctx context.Context, path string) (int, error)
}
