package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricRunsTotal     = "repo_analyzer.runs.total"
	metricRunDuration   = "repo_analyzer.run.duration.seconds"
	metricRecordsTotal  = "repo_analyzer.records.total"
	metricMatchedTotal  = "repo_analyzer.files.matched.total"
	metricSelectedTotal = "repo_analyzer.files.selected.total"
	metricMissingTotal  = "repo_analyzer.files.missing.total"
	metricCountErrors   = "repo_analyzer.count.errors.total"

	attrBackend = "backend"
	attrFormat  = "format"
	attrStatus  = "status"
)

// Run statuses recorded on repo_analyzer.runs.total.
const (
	StatusOK    = "ok"
	StatusEmpty = "empty"
	StatusError = "error"
)

// durationBucketBoundaries covers 10ms to 10 minutes; history walks of large
// repositories take minutes.
var durationBucketBoundaries = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600}

// RunSummary describes one analysis run.
type RunSummary struct {
	Backend     string
	Format      string
	Status      string
	Records     int
	Matched     int
	Selected    int
	Missing     int
	CountErrors int
	Duration    time.Duration
}

// RunMetrics holds the OTel instruments recorded once per analysis run.
type RunMetrics struct {
	runsTotal   metric.Int64Counter
	runDuration metric.Float64Histogram
	records     metric.Int64Counter
	matched     metric.Int64Counter
	selected    metric.Int64Counter
	missing     metric.Int64Counter
	countErrors metric.Int64Counter
}

// NewRunMetrics creates run metric instruments from the given meter.
func NewRunMetrics(mt metric.Meter) (*RunMetrics, error) {
	runs, err := mt.Int64Counter(metricRunsTotal,
		metric.WithDescription("Total analysis runs"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRunsTotal, err)
	}

	duration, err := mt.Float64Histogram(metricRunDuration,
		metric.WithDescription("Analysis run duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRunDuration, err)
	}

	rm := &RunMetrics{runsTotal: runs, runDuration: duration}

	counters := []struct {
		name string
		desc string
		dst  *metric.Int64Counter
	}{
		{metricRecordsTotal, "Paths found in history", &rm.records},
		{metricMatchedTotal, "Paths that passed the filter", &rm.matched},
		{metricSelectedTotal, "Files included in the report", &rm.selected},
		{metricMissingTotal, "Paths in history that are no longer on disk", &rm.missing},
		{metricCountErrors, "Line counts that failed and were treated as zero", &rm.countErrors},
	}

	for _, c := range counters {
		counter, counterErr := mt.Int64Counter(c.name,
			metric.WithDescription(c.desc),
			metric.WithUnit("{file}"),
		)
		if counterErr != nil {
			return nil, fmt.Errorf("create %s: %w", c.name, counterErr)
		}

		*c.dst = counter
	}

	return rm, nil
}

// Record adds one run to the instruments.
func (rm *RunMetrics) Record(ctx context.Context, s RunSummary) {
	attrs := metric.WithAttributes(
		attribute.String(attrBackend, s.Backend),
		attribute.String(attrFormat, s.Format),
	)

	rm.runsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrBackend, s.Backend),
		attribute.String(attrFormat, s.Format),
		attribute.String(attrStatus, s.Status),
	))
	rm.runDuration.Record(ctx, s.Duration.Seconds(), attrs)
	rm.records.Add(ctx, int64(s.Records), attrs)
	rm.matched.Add(ctx, int64(s.Matched), attrs)
	rm.selected.Add(ctx, int64(s.Selected), attrs)
	rm.missing.Add(ctx, int64(s.Missing), attrs)
	rm.countErrors.Add(ctx, int64(s.CountErrors), attrs)
}
