package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/weiihann/webbench/harness"
	"github.com/weiihann/webbench/pages"
)

// ChartFile is the file name the comparison chart is saved under.
const ChartFile = "comparison_results.png"

const (
	chartWidth  = 1400
	chartHeight = 700
	chartMargin = 140
)

var driverColors = []drawing.Color{
	drawing.ColorFromHex("FF6B6B"),
	drawing.ColorFromHex("4ECDC4"),
	drawing.ColorFromHex("FFD93D"),
	drawing.ColorFromHex("6C5CE7"),
}

func driverColor(i int) drawing.Color {
	return driverColors[i%len(driverColors)]
}

// series holds the chart data: one category per page and one value per
// driver per page, in seconds. Failed loads are zero.
type series struct {
	Categories []string
	Values     [][]float64
}

func chartSeries(results *harness.Results) series {
	s := series{
		Categories: make([]string, len(results.Pages)),
		Values:     make([][]float64, len(results.Pages)),
	}

	for i, page := range results.Pages {
		s.Categories[i] = pages.Label(page)
		s.Values[i] = make([]float64, len(results.Drivers))

		for j, d := range results.Drivers {
			if elapsed, ok := results.Elapsed(d.Name, page); ok {
				s.Values[i][j] = elapsed.Seconds()
			}
		}
	}

	return s
}

func (s series) max() float64 {
	var m float64
	for _, row := range s.Values {
		for _, v := range row {
			m = max(m, v)
		}
	}

	return m
}

// RenderChart draws a grouped bar chart, one group per page and one bar
// per driver, as PNG.
func RenderChart(w io.Writer, results *harness.Results) error {
	s := chartSeries(results)
	groupSize := len(results.Drivers)

	// Each group is followed by an invisible spacer bar.
	var bars []chart.Value
	for i, cat := range s.Categories {
		if i > 0 {
			bars = append(bars, spacerBar())
		}

		for j, v := range s.Values[i] {
			label := ""
			if j == 0 {
				label = cat
			}

			bars = append(bars, chart.Value{
				Label: label,
				Value: v,
				Style: chart.Style{
					FillColor:   driverColor(j),
					StrokeColor: driverColor(j),
					StrokeWidth: 1,
				},
			})
		}
	}

	if len(bars) == 0 {
		bars = append(bars, chart.Value{Label: "no pages", Value: 0, Style: spacerBar().Style})
	}

	yMax := s.max() * 1.15
	if yMax <= 0 {
		yMax = 1
	}

	slot := (chartWidth - chartMargin) / len(bars)
	spacing := max(2, slot/5)
	width := max(4, slot-spacing)

	titles := make([]string, groupSize)
	for i, d := range results.Drivers {
		titles[i] = d.DisplayName
	}

	bc := chart.BarChart{
		Title: strings.Join(titles, " vs ") + " Performance Comparison",
		TitleStyle: chart.Style{
			FontSize: 14,
		},
		Width:      chartWidth,
		Height:     chartHeight,
		BarWidth:   width,
		BarSpacing: spacing,
		Background: chart.Style{
			Padding: chart.Box{Top: 60, Left: 20, Right: 20, Bottom: 40},
		},
		YAxis: chart.YAxis{
			Name:           "Time (seconds)",
			Range:          &chart.ContinuousRange{Min: 0, Max: yMax},
			ValueFormatter: secondsFormatter,
		},
		Bars: bars,
		Elements: []chart.Renderable{
			valueLabels(bars, yMax),
			legend(results.Drivers),
		},
	}

	if err := bc.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}

	return nil
}

// SaveChart renders the chart into path.
func SaveChart(path string, results *harness.Results) error {
	var buf bytes.Buffer
	if err := RenderChart(&buf, results); err != nil {
		return err
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write chart %s: %w", path, err)
	}

	return nil
}

func spacerBar() chart.Value {
	return chart.Value{
		Value: 0,
		Style: chart.Style{
			FillColor:   drawing.ColorTransparent,
			StrokeColor: drawing.ColorTransparent,
		},
	}
}

func secondsFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.1fs", f)
	}

	return ""
}

// valueLabels prints each non-zero bar's value above it. The bar chart
// sizes its canvas to exactly fit the bars, so each bar owns an equal
// slot of the canvas width.
func valueLabels(bars []chart.Value, yMax float64) chart.Renderable {
	return func(r chart.Renderer, canvasBox chart.Box, defaults chart.Style) {
		slot := float64(canvasBox.Width()) / float64(len(bars))

		style := chart.Style{
			FontSize:  8,
			FontColor: drawing.ColorBlack,
		}.InheritFrom(defaults)
		style.WriteTextOptionsToRenderer(r)

		for i, bar := range bars {
			if bar.Value <= 0 {
				continue
			}

			text := fmt.Sprintf("%.1fs", bar.Value)
			tb := r.MeasureText(text)

			cx := canvasBox.Left + int(slot*float64(i)+slot/2)
			top := canvasBox.Bottom - int(bar.Value/yMax*float64(canvasBox.Height()))

			r.Text(text, cx-tb.Width()/2, top-4)
		}
	}
}

func legend(drivers []harness.DriverInfo) chart.Renderable {
	return func(r chart.Renderer, canvasBox chart.Box, defaults chart.Style) {
		const (
			swatch = 12
			lineH  = 18
		)

		textStyle := chart.Style{
			FontSize:  10,
			FontColor: drawing.ColorBlack,
		}.InheritFrom(defaults)

		left := canvasBox.Right - 140
		top := canvasBox.Top + 8

		for i, d := range drivers {
			y := top + i*lineH

			chart.Draw.Box(r, chart.Box{
				Top:    y,
				Left:   left,
				Right:  left + swatch,
				Bottom: y + swatch,
			}, chart.Style{
				FillColor:   driverColor(i),
				StrokeColor: driverColor(i),
				StrokeWidth: 1,
			})

			chart.Draw.Text(r, d.DisplayName, left+swatch+6, y+swatch-1, textStyle)
		}
	}
}
