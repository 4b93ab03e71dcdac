package plotpage_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/repo-analyzer/pkg/plotpage"
)

func TestBuildScatterChart(t *testing.T) {
	t.Parallel()

	chart := plotpage.BuildScatterChart(nil, plotpage.DefaultStyle(), plotpage.ScatterSeries{
		XLabel: "Length",
		YLabel: "Churn",
		Points: []plotpage.Point{
			{Name: "a.swift", X: 100, Y: 5},
			{Name: "b.swift", X: 10, Y: 2},
		},
	})

	require.NotNil(t, chart)
	require.Len(t, chart.MultiSeries, 1)
	assert.Equal(t, "Length|Churn", chart.MultiSeries[0].Name)
}

func TestPageRender(t *testing.T) {
	t.Parallel()

	chart := plotpage.BuildScatterChart(nil, plotpage.DefaultStyle(), plotpage.ScatterSeries{
		XLabel: "Length",
		YLabel: "Churn",
		Points: []plotpage.Point{{Name: "Sources/App.swift", X: 420, Y: 37}},
	})

	page := plotpage.NewPage("Repo analysis", "Churn against length.")
	page.Intro = []string{"Files in the top-right are refactoring candidates."}
	page.Add(plotpage.Section{
		Title: "Churn vs. Length",
		Chart: chart,
		Hint:  plotpage.Hint{Title: "Reading the chart", Items: []string{"Hover a dot."}},
		Table: &plotpage.Table{
			Headers: []string{"File", "Git Churn", "Length"},
			Rows:    [][]string{{"Sources/App.swift", "37", "420"}},
			Striped: true,
		},
	})

	var buf bytes.Buffer

	err := page.Render(&buf)
	require.NoError(t, err)

	html := buf.String()

	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, "<title>Repo analysis</title>")
	assert.Contains(t, html, "Files in the top-right are refactoring candidates.")
	assert.Contains(t, html, `class="echart-box"`)
	assert.Contains(t, html, "Sources/App.swift")
	assert.Contains(t, html, "<td>420</td>")
	assert.Contains(t, html, "Reading the chart")
	assert.Equal(t, 1, strings.Count(html, "<!DOCTYPE"))
}

func TestTooltipEscapesPointName(t *testing.T) {
	t.Parallel()

	chart := plotpage.BuildScatterChart(nil, plotpage.DefaultStyle(), plotpage.ScatterSeries{
		XLabel: "Length",
		YLabel: "Churn",
		Points: []plotpage.Point{{Name: "Sources/<b>App</b>.swift", X: 1, Y: 1}},
	})

	page := plotpage.NewPage("Repo analysis", "")
	page.Add(plotpage.Section{Title: "Churn vs. Length", Chart: chart})

	var buf bytes.Buffer

	require.NoError(t, page.Render(&buf))

	html := buf.String()

	assert.Contains(t, html, "echarts.format.encodeHTML(p.name)")
	assert.NotContains(t, html, "return p.name +")
}

func TestTableCellsAreEscaped(t *testing.T) {
	t.Parallel()

	page := plotpage.NewPage("Escaping", "")
	page.Add(plotpage.Section{Table: &plotpage.Table{
		Headers: []string{"File"},
		Rows:    [][]string{{"<script>alert(1)</script>.swift"}},
	}})

	var buf bytes.Buffer

	require.NoError(t, page.Render(&buf))

	assert.NotContains(t, buf.String(), "<script>alert(1)</script>")
	assert.Contains(t, buf.String(), "&lt;script&gt;")
}

func TestDarkTheme(t *testing.T) {
	t.Parallel()

	assert.Equal(t, plotpage.ThemeDark, plotpage.ParseTheme("dark"))
	assert.Equal(t, plotpage.ThemeLight, plotpage.ParseTheme("anything"))

	page := plotpage.NewPage("Dark", "").WithTheme(plotpage.ThemeDark)

	var buf bytes.Buffer

	require.NoError(t, page.Render(&buf))
	assert.Contains(t, buf.String(), `<html lang="en" class="dark">`)
}
