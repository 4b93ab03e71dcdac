package commands

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/repo-analyzer/pkg/mcp"
	"github.com/Sumatoshi-tech/repo-analyzer/pkg/observability"
)

// NewMCPCommand creates the MCP server command.
func NewMCPCommand() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The server exposes one tool:
  - repo_hotspots: rank the files of a repository by churn and length`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			providers, err := initMCPObservability(debug, cobraCmd)
			if err != nil {
				return err
			}

			defer func() {
				shutdownErr := providers.Shutdown(context.Background())
				if shutdownErr != nil {
					providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
				}
			}()

			runMetrics, metricsErr := observability.NewRunMetrics(providers.Meter)
			if metricsErr != nil {
				return metricsErr
			}

			srv := mcp.NewServer(mcp.ServerDeps{Logger: providers.Logger, Metrics: runMetrics, Tracer: providers.Tracer})

			return srv.Run(cobraCmd.Context())
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging to stderr")

	return cmd
}

func initMCPObservability(debug bool, cmd *cobra.Command) (observability.Providers, error) {
	cfg := telemetryConfig(observability.ModeMCP, cmd.ErrOrStderr())
	cfg.LogJSON = true

	if debug {
		cfg.LogLevel = slog.LevelDebug
	}

	return observability.Init(cfg)
}
