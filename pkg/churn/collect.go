package churn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// CollectStats counts what happened to each record during collection.
type CollectStats struct {
	Collected   int
	Missing     int
	Directories int
	CountErrors int
}

// Collector attaches line counts to churn records.
type Collector struct {
	// Probe counts lines.
	Probe Probe
	// Root is the repository working tree; record paths are relative to it.
	Root string
	// Logger receives per-file diagnostics. Nil uses slog.Default().
	Logger *slog.Logger
}

// Collect returns one FileMetric per record whose path exists on disk and is
// not a directory. Paths that only exist in history are skipped. A failed line
// count is logged and reported as zero lines.
func (c *Collector) Collect(ctx context.Context, records []Record) ([]FileMetric, CollectStats, error) {
	logger := c.logger()
	metrics := make([]FileMetric, 0, len(records))

	var stats CollectStats

	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return nil, stats, fmt.Errorf("collect lengths: %w", err)
		}

		info, statErr := os.Stat(filepath.Join(c.Root, filepath.FromSlash(r.Path)))
		if statErr != nil {
			stats.Missing++

			logger.DebugContext(ctx, "skipping path not on disk", "path", r.Path)

			continue
		}

		if info.IsDir() {
			stats.Directories++

			continue
		}

		lines, countErr := c.Probe.CountLines(ctx, r.Path)
		if countErr != nil {
			if errors.Is(countErr, context.Canceled) || errors.Is(countErr, context.DeadlineExceeded) {
				return nil, stats, fmt.Errorf("count lines %s: %w", r.Path, countErr)
			}

			stats.CountErrors++

			logger.WarnContext(ctx, "line count failed, treating file as empty", "path", r.Path, "error", countErr)

			lines = 0
		}

		stats.Collected++

		metrics = append(metrics, FileMetric{Path: r.Path, Churn: r.Churn, LineCount: lines})
	}

	return metrics, stats, nil
}

func (c *Collector) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}

	return slog.Default()
}
