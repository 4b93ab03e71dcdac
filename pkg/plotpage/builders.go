package plotpage

import (
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	axisNameGap      = 30
	scatterPointSize = 12
)

// pointTooltip shows the escaped point name followed by both coordinates. The
// axis labels are passed in through the series name so the function stays static.
const pointTooltip = `function (p) {
  var labels = p.seriesName.split('|');
  return echarts.format.encodeHTML(p.name) + '<br/>' + labels[0] + ': ' + p.value[0] + '<br/>' + labels[1] + ': ' + p.value[1];
}`

// Point is a named (x, y) value in a scatter chart.
type Point struct {
	Name string
	X    int
	Y    int
}

// ScatterSeries defines the properties and data for a scatter chart.
type ScatterSeries struct {
	XLabel string
	YLabel string
	Points []Point
	Color  string // Optional, uses theme if empty.
}

// BuildScatterChart constructs a go-echarts Scatter chart with one series whose
// tooltip shows each point's name and coordinates. If cOpts is nil,
// DefaultChartOpts() is used.
func BuildScatterChart(cOpts *ChartOpts, style Style, series ScatterSeries) *charts.Scatter {
	if cOpts == nil {
		cOpts = DefaultChartOpts()
	}

	tooltip := cOpts.Tooltip("item")
	tooltip.Formatter = opts.FuncOpts(pointTooltip)

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(cOpts.Init(style)),
		charts.WithTooltipOpts(tooltip),
		charts.WithGridOpts(cOpts.Grid(style)),
		charts.WithXAxisOpts(cOpts.XAxis(series.XLabel)),
		charts.WithYAxisOpts(cOpts.YAxis(series.YLabel)),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
	)

	data := make([]opts.ScatterData, len(series.Points))
	for i, p := range series.Points {
		data[i] = opts.ScatterData{
			Name:       p.Name,
			Value:      []int{p.X, p.Y},
			SymbolSize: scatterPointSize,
		}
	}

	color := series.Color
	if color == "" {
		color = cOpts.PointColor()
	}

	scatter.AddSeries(series.XLabel+"|"+series.YLabel, data,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: color}),
	)

	return scatter
}
