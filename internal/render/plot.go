package render

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/worklog-tools/worklog/internal/importer"
)

const (
	chartWidth  = "900px"
	chartHeight = "500px"
	xAxisRotate = 45
)

// dailyTotals sums hours per date across all entries, returning dates in
// ascending order.
func dailyTotals(entries []importer.ClassifiedEntry) (dates []string, hours []float64) {
	totals := make(map[string]float64)

	for _, entry := range entries {
		totals[entry.Date] += entry.TotalHours
	}

	dates = make([]string, 0, len(totals))
	for date := range totals {
		dates = append(dates, date)
	}

	sort.Strings(dates)

	hours = make([]float64, len(dates))
	for i, date := range dates {
		hours[i] = totals[date]
	}

	return dates, hours
}

func createDailyHoursChart(dates []string, hours []float64) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  chartWidth,
			Height: chartHeight,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Daily Hours",
			Subtitle: "Total hours per date in the reviewed batch",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{
			AxisLabel: &opts.AxisLabel{Rotate: xAxisRotate, Interval: "0"},
		}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Hours"}),
	)
	bar.SetXAxis(dates)

	barData := make([]opts.BarData, len(hours))
	for i, v := range hours {
		barData[i] = opts.BarData{Value: v}
	}

	bar.AddSeries("Hours", barData)

	return bar
}

// DailyHoursChart writes an HTML bar chart of total hours per date.
func DailyHoursChart(w io.Writer, entries []importer.ClassifiedEntry) error {
	dates, hours := dailyTotals(entries)

	chart := createDailyHoursChart(dates, hours)

	if err := chart.Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}

	return nil
}
