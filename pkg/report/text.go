package report

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Sumatoshi-tech/repo-analyzer/pkg/churn"
)

// RenderText writes metrics as an aligned terminal table with a totals footer.
func RenderText(w io.Writer, metrics []churn.FileMetric) error {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.DrawBorder = false

	tbl.AppendHeader(table.Row{"#", "File", "Churn", "Length", "Score"})
	tbl.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 4, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 5, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})

	var totalChurn, totalLines int

	for i, m := range metrics {
		totalChurn += m.Churn
		totalLines += m.LineCount

		tbl.AppendRow(table.Row{
			i + 1,
			m.Path,
			humanize.Comma(int64(m.Churn)),
			humanize.Comma(int64(m.LineCount)),
			humanize.Comma(int64(churn.CombinedScore(m))),
		})
	}

	tbl.AppendFooter(table.Row{
		"",
		fmt.Sprintf("%s files", humanize.Comma(int64(len(metrics)))),
		humanize.Comma(int64(totalChurn)),
		humanize.Comma(int64(totalLines)),
		humanize.Comma(int64(totalChurn + totalLines)),
	})

	tbl.Render()

	return nil
}
