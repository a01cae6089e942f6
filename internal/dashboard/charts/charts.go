// Package charts renders analytics results as standalone go-echarts HTML
// pages, the way visualize.GraphVisualizer renders the knowledge-tree graph:
// build a chart, drop it on a components.Page, render that page to a
// buffer instead of visualize's temp file since the dashboard serves it
// directly over HTTP.
package charts

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/chatlab/corpus/internal/analytics"
)

func renderPage(c components.Charter) (string, error) {
	page := components.NewPage()
	page.AddCharts(c)
	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return "", fmt.Errorf("failed to render chart: %w", err)
	}
	return buf.String(), nil
}

// Activity renders the activity-ranking entries as a horizontal bar chart.
func Activity(corpusName string, entries []analytics.ActivityEntry) (string, error) {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Activity Ranking",
			Subtitle: corpusName,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithInitializationOpts(opts.Initialization{Width: "1000px", Height: "600px"}),
	)

	names := make([]string, 0, len(entries))
	data := make([]opts.BarData, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
		data = append(data, opts.BarData{Value: e.MessageCount})
	}
	bar.SetXAxis(names).AddSeries("Messages", data)
	return renderPage(bar)
}

// DragonKing renders days-won per member as a bar chart.
func DragonKing(corpusName string, result analytics.DragonKingResult) (string, error) {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Dragon King — days won",
			Subtitle: fmt.Sprintf("%s · %d days", corpusName, result.TotalDays),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithInitializationOpts(opts.Initialization{Width: "1000px", Height: "600px"}),
	)

	names := make([]string, 0, len(result.Entries))
	data := make([]opts.BarData, 0, len(result.Entries))
	for _, e := range result.Entries {
		names = append(names, e.Name)
		data = append(data, opts.BarData{Value: e.DaysWon})
	}
	bar.SetXAxis(names).AddSeries("Days won", data)
	return renderPage(bar)
}

// Streaks renders each member's low/mid/high monologue-streak counts as a
// stacked bar chart.
func Streaks(corpusName string, entries []analytics.StreakEntry) (string, error) {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Monologue streaks",
			Subtitle: corpusName,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithInitializationOpts(opts.Initialization{Width: "1000px", Height: "600px"}),
	)

	names := make([]string, 0, len(entries))
	low := make([]opts.BarData, 0, len(entries))
	mid := make([]opts.BarData, 0, len(entries))
	high := make([]opts.BarData, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
		low = append(low, opts.BarData{Value: e.LowStreak})
		mid = append(mid, opts.BarData{Value: e.MidStreak})
		high = append(high, opts.BarData{Value: e.HighStreak})
	}
	bar.SetXAxis(names).
		AddSeries("Low (3-4)", low, charts.WithBarChartOpts(opts.BarChart{Stack: "streaks"})).
		AddSeries("Mid (5-9)", mid, charts.WithBarChartOpts(opts.BarChart{Stack: "streaks"})).
		AddSeries("High (10+)", high, charts.WithBarChartOpts(opts.BarChart{Stack: "streaks"}))
	return renderPage(bar)
}

var weekdayLabels = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Heatmap renders the hourly/weekday message-count heatmap.
func Heatmap(corpusName string, cells []analytics.HeatmapCell) (string, error) {
	hm := charts.NewHeatMap()

	hours := make([]string, 24)
	for i := range hours {
		hours[i] = fmt.Sprintf("%02d", i)
	}

	maxCount := 0
	data := make([]opts.HeatMapData, 0, len(cells))
	for _, c := range cells {
		if c.Count > maxCount {
			maxCount = c.Count
		}
		data = append(data, opts.HeatMapData{Value: [3]interface{}{c.Hour, int(c.Weekday), c.Count}})
	}

	hm.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Hourly / weekday activity",
			Subtitle: corpusName,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: weekdayLabels}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxCount),
		}),
		charts.WithInitializationOpts(opts.Initialization{Width: "1000px", Height: "500px"}),
	)
	hm.SetXAxis(hours).AddSeries("messages", data)
	return renderPage(hm)
}

// RepeatChainLengths renders the chain-length distribution as a bar chart.
func RepeatChainLengths(corpusName string, dist map[int]int) (string, error) {
	lengths := make([]int, 0, len(dist))
	for l := range dist {
		lengths = append(lengths, l)
	}
	sort.Ints(lengths)

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Repeat-chain length distribution",
			Subtitle: corpusName,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "500px"}),
	)

	labels := make([]string, 0, len(lengths))
	data := make([]opts.BarData, 0, len(lengths))
	for _, l := range lengths {
		labels = append(labels, fmt.Sprintf("%d", l))
		data = append(data, opts.BarData{Value: dist[l]})
	}
	bar.SetXAxis(labels).AddSeries("Chains", data)
	return renderPage(bar)
}
