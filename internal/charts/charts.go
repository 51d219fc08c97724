// Package charts renders mood and assessment data as ECharts option objects
// that a frontend can pass straight to echarts.setOption.
package charts

import (
	"fmt"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/rida027/stressfree/internal/services"
)

// missing is how ECharts spells an empty data point; the line breaks there.
const missing = "-"

// MoodTrend plots stress, energy and sleep for every day of view's month.
func MoodTrend(view services.MonthView) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Mood Trend",
			Subtitle: fmt.Sprintf("%04d-%02d", view.Year, view.Month),
		}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Name: "Day"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Scale: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	days := make([]string, 0, len(view.Cells))
	stress := make([]opts.LineData, 0, len(view.Cells))
	energy := make([]opts.LineData, 0, len(view.Cells))
	sleep := make([]opts.LineData, 0, len(view.Cells))
	for _, cell := range view.Cells {
		if cell == nil {
			continue
		}
		days = append(days, strconv.Itoa(cell.Day))
		if cell.Entry == nil {
			stress = append(stress, opts.LineData{Value: missing})
			energy = append(energy, opts.LineData{Value: missing})
			sleep = append(sleep, opts.LineData{Value: missing})
			continue
		}
		stress = append(stress, opts.LineData{Value: cell.Entry.StressPercent})
		energy = append(energy, opts.LineData{Value: cell.Entry.EnergyPercent})
		sleep = append(sleep, opts.LineData{Value: cell.Entry.SleepHours})
	}

	width := charts.WithLineStyleOpts(opts.LineStyle{Width: 2})
	line.SetXAxis(days).
		AddSeries("Stress %", stress).
		AddSeries("Energy %", energy).
		AddSeries("Sleep (h)", sleep).
		SetSeriesOptions(width)
	return line
}

// BandDistribution is a bar per severity band, in questionnaire order.
func BandDistribution(summary *services.AnalyticsSummary) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Severity Bands",
			Subtitle: fmt.Sprintf("%s, %d submissions", summary.QuestionnaireID, summary.Submissions),
		}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "Submissions"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	labels := make([]string, 0, len(summary.Bands))
	counts := make([]opts.BarData, 0, len(summary.Bands))
	for _, b := range summary.Bands {
		labels = append(labels, string(b.Band))
		counts = append(counts, opts.BarData{Value: b.Count})
	}
	bar.SetXAxis(labels).AddSeries("Submissions", counts)
	return bar
}

// Options returns the ECharts option object for any go-echarts chart.
func Options(c interface{ JSON() map[string]interface{} }) map[string]interface{} {
	return c.JSON()
}
