package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/repo-analyzer/pkg/churn"
	"github.com/Sumatoshi-tech/repo-analyzer/pkg/config"
	"github.com/Sumatoshi-tech/repo-analyzer/pkg/interact"
	"github.com/Sumatoshi-tech/repo-analyzer/pkg/observability"
	"github.com/Sumatoshi-tech/repo-analyzer/pkg/plotpage"
	"github.com/Sumatoshi-tech/repo-analyzer/pkg/probe"
	"github.com/Sumatoshi-tech/repo-analyzer/pkg/publish"
	"github.com/Sumatoshi-tech/repo-analyzer/pkg/report"
	"github.com/Sumatoshi-tech/repo-analyzer/pkg/safeconv"
	"github.com/Sumatoshi-tech/repo-analyzer/pkg/terminal"
)

// stdioPath names standard input or output in path flags.
const stdioPath = "-"

var (
	// ErrPublishNeedsFile is returned when --publish is used while the report goes to stdout.
	ErrPublishNeedsFile = errors.New("--publish needs a report file (use --output)")
	// ErrConflictingOpenFlags is returned when both --open and --no-open are set.
	ErrConflictingOpenFlags = errors.New("--open and --no-open are mutually exclusive")
)

// AnalyzeCommand holds flags and dependencies for the analyze command.
type AnalyzeCommand struct {
	globals *GlobalOptions
	deps    Deps

	configPath      string
	format          string
	output          string
	threshold       int
	extensions      []string
	ignoredPaths    []string
	excludeVendored bool
	backend         string
	theme           string
	churnFile       string
	dumpChurn       string
	open            bool
	noOpen          bool
	metricsFile     string
	publishURL      string
	noColor         bool
}

func newAnalyzeCommand(globals *GlobalOptions, deps Deps) *AnalyzeCommand {
	return &AnalyzeCommand{globals: globals, deps: deps.withDefaults()}
}

func newAnalyzeCommandWithDeps(globals *GlobalOptions, deps Deps) *cobra.Command {
	ac := newAnalyzeCommand(globals, deps)

	cmd := &cobra.Command{
		Use:   "analyze [path]",
		Short: "Rank files by churn and length",
		Long: `Analyze the repository at path (default: the working directory).

Churn is the number of commits, across all refs and following renames and
copies, that touched a file. Length is the current line count. The report
holds the union of the top N files of each ranking, ordered by churn plus
length.`,
		Args: cobra.MaximumNArgs(1),
		RunE: ac.run,
	}

	ac.bindFlags(cmd)

	return cmd
}

func (ac *AnalyzeCommand) bindFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.StringVar(&ac.configPath, "config", "", "config file (default .repo-analyzer.yaml in the working directory or $HOME)")
	flags.StringVarP(&ac.format, "format", "f", config.DefaultFormat, "output format: json, html, yaml, text")
	flags.StringVarP(&ac.output, "output", "o", "",
		"output file (default "+report.DefaultHTMLFile+" for html, stdout otherwise; .lz4 compresses)")
	flags.IntVarP(&ac.threshold, "threshold", "n", config.DefaultThreshold, "files taken from each ranking")
	flags.StringSliceVar(&ac.extensions, "ext", nil, "file extension to analyze (repeatable)")
	flags.StringSliceVar(&ac.ignoredPaths, "ignore", nil, "top-level directory to skip (repeatable)")
	flags.BoolVar(&ac.excludeVendored, "exclude-vendored", false, "also skip paths that look like vendored code")
	flags.StringVar(&ac.backend, "backend", config.DefaultBackend, "history backend: exec, libgit2, gogit")
	flags.StringVar(&ac.theme, "theme", config.DefaultTheme, "HTML theme: light, dark")
	flags.StringVar(&ac.churnFile, "churn-file", "", "read a count<TAB>file churn table instead of git history (- for stdin)")
	flags.StringVar(&ac.dumpChurn, "dump-churn", "", "write the raw churn table to this file (- for stdout)")
	flags.BoolVar(&ac.open, "open", false, "open the HTML report without asking")
	flags.BoolVar(&ac.noOpen, "no-open", false, "never offer to open the HTML report")
	flags.StringVar(&ac.metricsFile, "metrics-file", "", "write run metrics in Prometheus text format to this file")
	flags.StringVar(&ac.publishURL, "publish", "", "upload the report to s3://bucket/key")
	flags.BoolVar(&ac.noColor, "no-color", false, "disable colored output")
}

func (ac *AnalyzeCommand) run(cmd *cobra.Command, args []string) error {
	if ac.open && ac.noOpen {
		return ErrConflictingOpenFlags
	}

	cfg, err := ac.loadConfig(cmd)
	if err != nil {
		return err
	}

	providers, err := initCLIObservability(cfg.Logging.Level, cfg.Logging.JSON, ac.globals.Verbose, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	defer func() {
		shutdownErr := providers.Shutdown(context.Background())
		if shutdownErr != nil {
			providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	printer := terminal.NewPrinter(cmd.ErrOrStderr(), terminal.Options{Quiet: ac.globals.Quiet, NoColor: ac.noColor})

	root, err := ac.workTreeRoot(ctx, cfg.Backend, args)
	if err != nil {
		return err
	}

	p, err := ac.deps.NewProbe(cfg.Backend, root)
	if err != nil {
		return err
	}

	source, err := ac.churnSource(cmd, p)
	if err != nil {
		return err
	}

	recorder := &recordingSource{inner: source}

	analysis := churn.Analysis{
		Probe:     p,
		Source:    recorder,
		Filter:    churn.NewFilter(cfg.FilterConfig()),
		Root:      root,
		Threshold: cfg.Threshold,
		Logger:    providers.Logger,
		Tracer:    providers.Tracer,
		Progress:  progressReporter(printer, ac.churnFile != ""),
	}

	start := time.Now()
	result, runErr := analysis.Run(ctx)
	summary := runSummary(cfg, result, runErr, time.Since(start))

	ac.recordRun(ctx, providers, summary, printer)

	if ac.dumpChurn != "" && recorder.listed {
		dumpErr := writeChurnTable(cmd.OutOrStdout(), ac.dumpChurn, recorder.records)
		if dumpErr != nil {
			return errors.Join(runErr, dumpErr)
		}
	}

	if errors.Is(runErr, churn.ErrNoMatchingFiles) {
		printer.Warn("no files matching %s found", strings.Join(cfg.FilterConfig().Extensions, ", "))

		return runErr
	}

	if runErr != nil {
		return runErr
	}

	providers.Logger.DebugContext(ctx, "analysis finished",
		"records", result.Records, "matched", result.Matched, "selected", len(result.Selected))

	return ac.emit(ctx, cmd, cfg, result.Selected, printer)
}

// loadConfig reads the config file and applies the flags the user set.
func (ac *AnalyzeCommand) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(ac.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()

	if flags.Changed("format") {
		cfg.Format = ac.format
	}

	if flags.Changed("output") {
		cfg.Output = ac.output
	}

	if flags.Changed("threshold") {
		cfg.Threshold = ac.threshold
	}

	if flags.Changed("ext") {
		cfg.SelectedExtensions = ac.extensions
	}

	if flags.Changed("ignore") {
		cfg.IgnoredPaths = ac.ignoredPaths
	}

	if flags.Changed("exclude-vendored") {
		cfg.ExcludeVendored = ac.excludeVendored
	}

	if flags.Changed("backend") {
		cfg.Backend = ac.backend
	}

	if flags.Changed("theme") {
		cfg.Theme = ac.theme
	}

	err = cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate flags: %w", err)
	}

	return cfg, nil
}

func (ac *AnalyzeCommand) churnSource(cmd *cobra.Command, p churn.Probe) (churn.Source, error) {
	switch ac.churnFile {
	case "":
		return p, nil
	case stdioPath:
		return churn.TableSource{Reader: cmd.InOrStdin()}, nil
	default:
		data, err := os.ReadFile(ac.churnFile)
		if err != nil {
			return nil, fmt.Errorf("read churn file: %w", err)
		}

		return churn.TableSource{Reader: bytes.NewReader(data)}, nil
	}
}

// emit renders the selection, writes it, and runs the publish and open steps.
func (ac *AnalyzeCommand) emit(
	ctx context.Context,
	cmd *cobra.Command,
	cfg *config.Config,
	selected []churn.FileMetric,
	printer *terminal.Printer,
) error {
	format, err := report.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	opts := report.Options{
		Extensions: cfg.FilterConfig().Extensions,
		Threshold:  cfg.Threshold,
		Theme:      plotpage.ParseTheme(cfg.Theme),
	}

	output := cfg.Output
	if output == "" {
		output = report.DefaultOutput(format)
	}

	if output == "" || output == stdioPath {
		if ac.publishURL != "" {
			return ErrPublishNeedsFile
		}

		return report.Render(cmd.OutOrStdout(), format, selected, opts)
	}

	err = report.WriteFile(output, func(w io.Writer) error {
		return report.Render(w, format, selected, opts)
	})
	if err != nil {
		return err
	}

	printer.Success("Report written to %s (%s)", output, fileSize(output))

	if ac.publishURL != "" {
		err = ac.publish(ctx, cfg, output, printer)
		if err != nil {
			return err
		}
	}

	if format == report.FormatHTML && !report.IsCompressed(output) {
		ac.offerOpen(ctx, cmd, output, printer)
	}

	return nil
}

func (ac *AnalyzeCommand) publish(ctx context.Context, cfg *config.Config, output string, printer *terminal.Printer) error {
	dst, err := publish.ParseDestination(ac.publishURL)
	if err != nil {
		return err
	}

	api, err := ac.deps.NewUploader(ctx, publish.ClientOptions{
		Region:   cfg.Publish.Region,
		Endpoint: cfg.Publish.Endpoint,
	})
	if err != nil {
		return err
	}

	err = publish.Upload(ctx, api, dst, output)
	if err != nil {
		return err
	}

	printer.Success("Report uploaded to %s", dst)

	return nil
}

// offerOpen asks whether to open the report, unless a flag already decided or
// stdin is not a terminal. Failing to open is only a warning.
func (ac *AnalyzeCommand) offerOpen(ctx context.Context, cmd *cobra.Command, output string, printer *terminal.Printer) {
	if ac.noOpen {
		return
	}

	if !ac.open {
		if !ac.deps.Interactive(cmd.InOrStdin()) {
			return
		}

		confirm := ac.deps.Confirm
		if confirm == nil {
			confirm = interact.NewConfirmer(cmd.InOrStdin(), cmd.ErrOrStderr())
		}

		if !confirm(interact.OpenQuestion) {
			return
		}
	}

	path, err := filepath.Abs(output)
	if err != nil {
		path = output
	}

	err = ac.deps.Open(ctx, path)
	if err != nil {
		printer.Warn("could not open %s: %v", path, err)
	}
}

func (ac *AnalyzeCommand) recordRun(
	ctx context.Context,
	providers observability.Providers,
	summary observability.RunSummary,
	printer *terminal.Printer,
) {
	rm, err := observability.NewRunMetrics(providers.Meter)
	if err != nil {
		providers.Logger.WarnContext(ctx, "run metrics unavailable", "error", err)
	} else {
		rm.Record(ctx, summary)
	}

	if ac.metricsFile == "" {
		return
	}

	err = observability.WriteTextfile(ctx, ac.metricsFile, summary)
	if err != nil {
		printer.Warn("could not write metrics file: %v", err)
	}
}

func runSummary(cfg *config.Config, result churn.Result, err error, elapsed time.Duration) observability.RunSummary {
	status := observability.StatusOK

	switch {
	case errors.Is(err, churn.ErrNoMatchingFiles):
		status = observability.StatusEmpty
	case err != nil:
		status = observability.StatusError
	}

	return observability.RunSummary{
		Backend:     cfg.Backend,
		Format:      cfg.Format,
		Status:      status,
		Records:     result.Records,
		Matched:     result.Matched,
		Selected:    len(result.Selected),
		Missing:     result.Stats.Missing,
		CountErrors: result.Stats.CountErrors,
		Duration:    elapsed,
	}
}

func progressReporter(printer *terminal.Printer, fromTable bool) func(churn.Stage) {
	return func(stage churn.Stage) {
		switch stage {
		case churn.StageHistory:
			if fromTable {
				printer.Step("Reading churn table...")
			} else {
				printer.Step("Extracting data from Git...")
			}
		case churn.StageLengths:
			printer.Step("Extracting file length data...")
		case churn.StageRanking:
			printer.Step("Crunching numbers...")
		}
	}
}

// workTreeRoot returns the top of the working tree containing the target
// directory, since git reports paths relative to it. A churn table read from
// a file may describe a directory outside any repository; that directory is
// then used as given.
func (ac *AnalyzeCommand) workTreeRoot(ctx context.Context, backend string, args []string) (string, error) {
	dir, err := resolveRoot(args)
	if err != nil {
		return "", err
	}

	top, err := ac.deps.Locate(ctx, backend, dir)
	if err != nil {
		if ac.churnFile != "" && !errors.Is(err, probe.ErrUnknownBackend) {
			return dir, nil
		}

		return "", err
	}

	return top, nil
}

func resolveRoot(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	root, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}

	return root, nil
}

func writeChurnTable(stdout io.Writer, dest string, records []churn.Record) error {
	table := churn.FormatChurnTable(records)

	if dest == stdioPath {
		_, err := io.WriteString(stdout, table)
		if err != nil {
			return fmt.Errorf("write churn table: %w", err)
		}

		return nil
	}

	return report.WriteFile(dest, func(w io.Writer) error {
		_, err := io.WriteString(w, table)

		return err
	})
}

func fileSize(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return "size unknown"
	}

	return humanize.Bytes(safeconv.MustInt64ToUint64(info.Size()))
}

// recordingSource keeps the records it passes through for --dump-churn.
type recordingSource struct {
	inner   churn.Source
	records []churn.Record
	listed  bool
}

func (s *recordingSource) ListChurn(ctx context.Context) ([]churn.Record, error) {
	records, err := s.inner.ListChurn(ctx)
	if err != nil {
		return nil, err
	}

	s.records = records
	s.listed = true

	return records, nil
}
