package observability

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// WriteTextfile records s through an OTel meter backed by a private Prometheus
// registry and writes the registry to path in the text exposition format, for
// node_exporter's textfile collector.
func WriteTextfile(ctx context.Context, path string, s RunSummary) error {
	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return fmt.Errorf("create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))

	rm, err := NewRunMetrics(mp.Meter(meterName))
	if err != nil {
		return errors.Join(err, mp.Shutdown(ctx))
	}

	rm.Record(ctx, s)

	writeErr := prometheus.WriteToTextfile(path, registry)
	if writeErr != nil {
		writeErr = fmt.Errorf("write metrics textfile: %w", writeErr)
	}

	return errors.Join(writeErr, mp.Shutdown(ctx))
}
