package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Sumatoshi-tech/repo-analyzer/pkg/churn"
	"github.com/Sumatoshi-tech/repo-analyzer/pkg/plotpage"
)

const (
	pageTitle   = "Repo analysis"
	lengthLabel = "Length"
	churnLabel  = "Git Churn"
)

// RenderHTML writes a standalone page with a churn-vs-length scatter chart and
// a table of every selected file.
func RenderHTML(w io.Writer, metrics []churn.FileMetric, o Options) error {
	page := plotpage.NewPage(pageTitle, "").WithTheme(themeOf(o))
	page.Intro = introParagraphs(o)

	points := make([]plotpage.Point, len(metrics))
	rows := make([][]string, len(metrics))

	for i, m := range metrics {
		points[i] = plotpage.Point{Name: m.Path, X: m.LineCount, Y: m.Churn}
		rows[i] = []string{m.Path, strconv.Itoa(m.Churn), strconv.Itoa(m.LineCount)}
	}

	chart := plotpage.BuildScatterChart(plotpage.NewChartOpts(page.Theme), plotpage.DefaultStyle(), plotpage.ScatterSeries{
		XLabel: lengthLabel,
		YLabel: churnLabel,
		Points: points,
	})

	page.Add(
		plotpage.Section{
			Title:    "Churn vs. Length",
			Subtitle: "Hover on a dot to see the file it represents.",
			Chart:    chart,
			Hint: plotpage.Hint{
				Title: "Where to go from here",
				Items: []string{
					"Activity over time: a complex, often-changed file that has not been touched in a long time is likely stable and well tested.",
					"Refine the definition of complexity by combining metrics such as number of methods or cyclomatic complexity.",
					"Drill into the files to see how complexity is distributed across their methods.",
					"Add a third dimension such as test coverage or number of authors.",
				},
			},
		},
		plotpage.Section{
			Title: "All the files",
			Table: &plotpage.Table{
				Headers: []string{"File", churnLabel, lengthLabel},
				Rows:    rows,
				Striped: true,
			},
		},
	)

	err := page.Render(w)
	if err != nil {
		return fmt.Errorf("render html report: %w", err)
	}

	return nil
}

func themeOf(o Options) plotpage.Theme {
	if o.Theme == "" {
		return plotpage.ThemeLight
	}

	return o.Theme
}

func introParagraphs(o Options) []string {
	exts := strings.Join(o.Extensions, ", ")
	if exts == "" {
		exts = "selected"
	}

	subset := "Only the files with the highest churn and/or length are shown."
	if o.Threshold > 0 {
		subset = fmt.Sprintf("Only the %d files with the highest churn and the %d longest files are shown.",
			o.Threshold, o.Threshold)
	}

	return []string{
		fmt.Sprintf("The graph below shows a subset of the %s files in your repository plotted against two metrics, "+
			"Git churn and file length. %s", exts, subset),
		"Git churn is the number of commits on the file, how often it changes. " +
			"File length is a rough but effective proxy for the complexity of the code in the file.",
		"Complex files that change often are likely to be sources of bugs. " +
			"The files in the top-right are great candidates to refactor.",
	}
}
