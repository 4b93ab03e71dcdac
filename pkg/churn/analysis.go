package churn

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
)

// Source lists churn records.
type Source interface {
	ListChurn(ctx context.Context) ([]Record, error)
}

// TableSource reads a precomputed churn table (see ParseChurnTable).
type TableSource struct {
	Reader io.Reader
}

// ListChurn parses the whole table.
func (s TableSource) ListChurn(_ context.Context) ([]Record, error) {
	data, err := io.ReadAll(s.Reader)
	if err != nil {
		return nil, fmt.Errorf("read churn table: %w", err)
	}

	return ParseChurnTable(string(data)), nil
}

// Stage identifies a step of Analysis.Run reported to Analysis.Progress.
type Stage int

// Analysis stages, in execution order.
const (
	StageHistory Stage = iota
	StageLengths
	StageRanking
)

// Result is the outcome of one analysis run.
type Result struct {
	// Selected is the ranked selection, highest combined score first.
	Selected []FileMetric
	// Records is the number of paths found in history.
	Records int
	// Matched is the number of paths that passed the filter.
	Matched int
	// Stats describes length collection.
	Stats CollectStats
}

// Analysis runs the shared pipeline: list churn, filter, collect lengths, select.
// Rendering is left to the caller.
type Analysis struct {
	// Probe counts lines and, unless Source is set, lists churn.
	Probe Probe
	// Source overrides where churn records come from.
	Source Source
	// Filter selects paths.
	Filter Filter
	// Root is the repository working tree.
	Root string
	// Threshold is N, the number of files taken from each ranking.
	Threshold int
	// Logger is optional.
	Logger *slog.Logger
	// Tracer is optional; nil disables spans.
	Tracer trace.Tracer
	// Progress, when set, is called as each stage starts.
	Progress func(Stage)
}

// Run executes the pipeline. It returns ErrNoMatchingFiles, together with the
// partial result, when nothing is left to report.
func (a *Analysis) Run(ctx context.Context) (Result, error) {
	logger := a.logger()
	tracer := a.tracer()

	ctx, span := tracer.Start(ctx, "churn.analysis")
	defer span.End()

	var result Result

	source := a.Source
	if source == nil {
		source = a.Probe
	}

	a.report(StageHistory)

	listCtx, listSpan := tracer.Start(ctx, "churn.list")
	records, err := source.ListChurn(listCtx)
	listSpan.End()

	if err != nil {
		return result, fmt.Errorf("list churn: %w", err)
	}

	result.Records = len(records)

	if len(records) == 0 {
		logger.WarnContext(ctx, "history query returned no churn data")

		return result, ErrNoMatchingFiles
	}

	matched := a.Filter.Apply(records)
	result.Matched = len(matched)

	logger.DebugContext(ctx, "filtered churn records", "records", len(records), "matched", len(matched))

	a.report(StageLengths)

	collectCtx, collectSpan := tracer.Start(ctx, "churn.collect")
	collector := Collector{Probe: a.Probe, Root: a.Root, Logger: logger}
	metrics, stats, err := collector.Collect(collectCtx, matched)
	collectSpan.SetAttributes(
		attribute.Int("collected", stats.Collected),
		attribute.Int("missing", stats.Missing),
	)
	collectSpan.End()

	result.Stats = stats

	if err != nil {
		return result, err
	}

	if len(metrics) == 0 {
		return result, ErrNoMatchingFiles
	}

	a.report(StageRanking)

	result.Selected = Select(metrics, a.Threshold)

	span.SetAttributes(
		attribute.Int("records", result.Records),
		attribute.Int("selected", len(result.Selected)),
	)

	return result, nil
}

func (a *Analysis) report(stage Stage) {
	if a.Progress != nil {
		a.Progress(stage)
	}
}

func (a *Analysis) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}

	return slog.Default()
}

func (a *Analysis) tracer() trace.Tracer {
	if a.Tracer != nil {
		return a.Tracer
	}

	return nooptrace.NewTracerProvider().Tracer("churn")
}
