package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/Sumatoshi-tech/repo-analyzer/pkg/observability"
	"github.com/Sumatoshi-tech/repo-analyzer/pkg/version"
)

// telemetryConfig reads the standard OTLP environment variables into an
// observability config for mode.
func telemetryConfig(mode observability.AppMode, logWriter io.Writer) observability.Config {
	cfg := observability.DefaultConfig()
	cfg.ServiceVersion = version.Version
	cfg.Mode = mode
	cfg.OTLPEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	cfg.OTLPHeaders = observability.ParseOTLPHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"))
	cfg.OTLPInsecure = os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true"
	cfg.SampleRatio = observability.ParseSampleRatio(os.Getenv("OTEL_TRACES_SAMPLER_ARG"))
	cfg.LogWriter = logWriter

	return cfg
}

func initCLIObservability(level string, logJSON, verbose bool, logWriter io.Writer) (observability.Providers, error) {
	cfg := telemetryConfig(observability.ModeCLI, logWriter)
	cfg.LogJSON = logJSON

	parsed, err := observability.ParseLogLevel(level)
	if err != nil {
		return observability.Providers{}, err
	}

	cfg.LogLevel = parsed

	if verbose {
		cfg.LogLevel = slog.LevelDebug
	}

	return observability.Init(cfg)
}
