// Package chart renders the dashboard figures as PNG images.
package chart

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/JonMunkholm/nsqipdash/internal/core"
)

// ErrNoValues is returned when there is nothing to draw.
var ErrNoValues = errors.New("no values to plot")

// MaxPieSlices is the number of labelled pie slices; the rest are drawn
// as one "Other" slice.
const MaxPieSlices = 15

// Options sizes a rendered figure.
type Options struct {
	Width  int
	Height int
}

// DefaultOptions matches the dashboard's figure panels.
func DefaultOptions() Options {
	return Options{Width: 800, Height: 500}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	return o
}

var barColor = drawing.Color{R: 99, G: 110, B: 250, A: 255}

// Pie draws a frequency table as a pie chart.
func Pie(w io.Writer, title string, counts []core.ValueCount, opts Options) error {
	if len(counts) == 0 {
		return ErrNoValues
	}
	opts = opts.withDefaults()

	values := make([]chart.Value, 0, min(len(counts), MaxPieSlices+1))
	other := 0
	for i, c := range counts {
		if i >= MaxPieSlices {
			other += c.Count
			continue
		}
		values = append(values, chart.Value{Label: c.Label, Value: float64(c.Count)})
	}
	if other > 0 {
		values = append(values, chart.Value{Label: "Other", Value: float64(other)})
	}

	pie := chart.PieChart{
		Title:  title,
		Width:  opts.Width,
		Height: opts.Height,
		Values: values,
	}
	if err := pie.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render pie: %w", err)
	}
	return nil
}

// Histogram draws one bar per histogram bin.
func Histogram(w io.Writer, title string, h core.Histogram, opts Options) error {
	if len(h.Bins) == 0 {
		return ErrNoValues
	}
	opts = opts.withDefaults()

	bars := make([]chart.Value, len(h.Bins))
	peak := 0
	for i, b := range h.Bins {
		bars[i] = chart.Value{
			Label: b.Label,
			Value: float64(b.Count),
			Style: chart.Style{FillColor: barColor, StrokeColor: barColor},
		}
		peak = max(peak, b.Count)
	}

	barWidth := max(4, (opts.Width-120)/len(bars)-4)
	bc := chart.BarChart{
		Title:      title,
		Width:      opts.Width,
		Height:     opts.Height,
		BarWidth:   barWidth,
		BarSpacing: 2,
		Bars:       bars,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10},
		},
		XAxis: chart.Style{
			TextRotationDegrees: 45,
			FontSize:            8,
		},
		YAxis: chart.YAxis{
			Name:  "count",
			Range: &chart.ContinuousRange{Min: 0, Max: float64(peak) * 1.1},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return strconv.Itoa(int(f))
				}
				return ""
			},
		},
	}
	if err := bc.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render histogram: %w", err)
	}
	return nil
}
