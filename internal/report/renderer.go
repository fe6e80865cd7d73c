package report

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/arorarohan/strava-data-analysis/internal/weekly"

	log "github.com/sirupsen/logrus"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// stravaOrange is used for the chart line, matching the strava brand color
const stravaOrange = "fc4c02"

type Renderer struct {
	chartPath string
	out       io.Writer
}

func NewRenderer(chartPath string, out io.Writer) *Renderer {
	return &Renderer{
		chartPath: chartPath,
		out:       out,
	}
}

// Render prints the weekly summary table to the console and writes
// the line chart PNG. The console summary is always produced, so the
// tool stays useful on headless machines.
func (r *Renderer) Render(buckets []weekly.Bucket) error {
	r.printSummary(buckets)

	if len(buckets) < 2 {
		// a line chart needs at least two points
		log.Warnf("only %d week in range, skipping the chart", len(buckets))
		return nil
	}

	return r.renderChart(buckets)
}

func (r *Renderer) printSummary(buckets []weekly.Bucket) {
	var totalHours float64

	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, "Week starting    Hours")
	for _, bucket := range buckets {
		fmt.Fprintf(r.out, "%s   %8.1f\n", bucket.WeekStart.Format("2006-01-02"), bucket.Hours())
		totalHours += bucket.Hours()
	}
	fmt.Fprintf(r.out, "Total: %.1f hours\n", totalHours)
}

func (r *Renderer) renderChart(buckets []weekly.Bucket) error {
	xValues := make([]time.Time, 0, len(buckets))
	yValues := make([]float64, 0, len(buckets))
	for _, bucket := range buckets {
		xValues = append(xValues, bucket.WeekStart)
		yValues = append(yValues, bucket.Hours())
	}

	// go-chart refuses a zero value range, e.g. when every week is empty
	if minFloats(yValues) == maxFloats(yValues) {
		log.Warnln("weekly totals are all equal, skipping the chart")
		return nil
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("Weekly Moving Time - Last %d Weeks", len(buckets)),
		Width:  1200,
		Height: 600,
		XAxis: chart.XAxis{
			Name:           "Week Starting (Monday)",
			ValueFormatter: chart.TimeValueFormatterWithFormat("01/02"),
		},
		YAxis: chart.YAxis{
			Name: "Moving Time (Hours)",
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "moving time",
				XValues: xValues,
				YValues: yValues,
				Style: chart.Style{
					StrokeColor: drawing.ColorFromHex(stravaOrange),
					StrokeWidth: 2.5,
					DotColor:    drawing.ColorFromHex(stravaOrange),
					DotWidth:    4,
				},
			},
		},
	}

	chartFile, err := os.Create(r.chartPath)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	defer chartFile.Close()

	if err := graph.Render(chart.PNG, chartFile); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}

	fmt.Fprintf(r.out, "Chart saved to: %s\n", r.chartPath)

	return nil
}

func minFloats(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxFloats(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
