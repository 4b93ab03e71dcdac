package commands

import (
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/repo-analyzer/pkg/config"
	"github.com/Sumatoshi-tech/repo-analyzer/pkg/plotpage"
	"github.com/Sumatoshi-tech/repo-analyzer/pkg/report"
)

const (
	renderCmdUse   = "render <report.json>"
	renderCmdShort = "Convert a saved JSON report to html, yaml, or text"
	renderArgCount = 1
)

// ErrRenderToJSON is returned when render is asked to produce JSON again.
var ErrRenderToJSON = errors.New("render converts from json; pick html, yaml, or text")

// NewRenderCommand creates the render subcommand.
func NewRenderCommand() *cobra.Command {
	var (
		format    string
		output    string
		theme     string
		threshold int
	)

	cmd := &cobra.Command{
		Use:   renderCmdUse,
		Short: renderCmdShort,
		Long: `Render a report written with --format json (optionally .lz4 compressed) in
another format. The report is validated against the report schema first.`,
		Args: cobra.ExactArgs(renderArgCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}

			if f == report.FormatJSON {
				return ErrRenderToJSON
			}

			metrics, err := report.LoadJSON(args[0])
			if err != nil {
				return err
			}

			opts := report.Options{
				Threshold: threshold,
				Theme:     plotpage.ParseTheme(theme),
			}

			if output == "" {
				output = report.DefaultOutput(f)
			}

			if output == "" || output == stdioPath {
				return report.Render(cmd.OutOrStdout(), f, metrics, opts)
			}

			return report.WriteFile(output, func(w io.Writer) error {
				return report.Render(w, f, metrics, opts)
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(report.FormatHTML), "output format: html, yaml, text")
	cmd.Flags().StringVarP(&output, "output", "o", "",
		"output file (default "+report.DefaultHTMLFile+" for html, stdout otherwise)")
	cmd.Flags().StringVar(&theme, "theme", config.DefaultTheme, "HTML theme: light, dark")
	cmd.Flags().IntVarP(&threshold, "threshold", "n", config.DefaultThreshold, "threshold mentioned in the HTML intro")

	return cmd
}
