package chart

import (
	"fmt"
	"io"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/JonMunkholm/nsqipdash/internal/core"
)

// Heatmap layout, in pixels.
const (
	heatmapTop    = 40
	heatmapLeft   = 110
	heatmapRight  = 60
	heatmapBottom = 90

	maxAxisLabels = 20
)

var (
	heatLow   = drawing.Color{R: 13, G: 8, B: 135, A: 255}
	heatHigh  = drawing.Color{R: 240, G: 249, B: 33, A: 255}
	emptyCell = drawing.Color{R: 245, G: 245, B: 245, A: 255}
	textColor = drawing.Color{R: 40, G: 40, B: 40, A: 255}
)

// Heatmap draws a count grid with X across and Y upward. go-chart has no
// heatmap series, so cells are painted directly on its PNG renderer.
func Heatmap(w io.Writer, title string, hm core.Heatmap, opts Options) error {
	if len(hm.XLabels) == 0 || len(hm.YLabels) == 0 {
		return ErrNoValues
	}
	opts = opts.withDefaults()

	r, err := chart.PNG(opts.Width, opts.Height)
	if err != nil {
		return fmt.Errorf("render heatmap: %w", err)
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return fmt.Errorf("render heatmap: %w", err)
	}
	r.SetFont(font)

	fillRect(r, 0, 0, opts.Width, opts.Height, drawing.ColorWhite)

	plotW := opts.Width - heatmapLeft - heatmapRight
	plotH := opts.Height - heatmapTop - heatmapBottom
	cellW := float64(plotW) / float64(len(hm.XLabels))
	cellH := float64(plotH) / float64(len(hm.YLabels))

	for yi, row := range hm.Counts {
		// Row 0 sits at the bottom.
		y0 := heatmapTop + plotH - int(float64(yi+1)*cellH)
		y1 := heatmapTop + plotH - int(float64(yi)*cellH)
		for xi, n := range row {
			x0 := heatmapLeft + int(float64(xi)*cellW)
			x1 := heatmapLeft + int(float64(xi+1)*cellW)
			fillRect(r, x0, y0, x1, y1, cellColor(n, hm.Max))
		}
	}

	r.SetFontColor(textColor)
	r.SetFontSize(14)
	r.Text(title, heatmapLeft, heatmapTop-14)

	r.SetFontSize(9)
	stride := labelStride(len(hm.XLabels))
	for xi := 0; xi < len(hm.XLabels); xi += stride {
		x := heatmapLeft + int((float64(xi)+0.5)*cellW)
		r.SetTextRotation(chart.DegreesToRadians(45))
		r.Text(hm.XLabels[xi], x, heatmapTop+plotH+12)
		r.ClearTextRotation()
	}
	stride = labelStride(len(hm.YLabels))
	for yi := 0; yi < len(hm.YLabels); yi += stride {
		y := heatmapTop + plotH - int((float64(yi)+0.5)*cellH)
		label := hm.YLabels[yi]
		box := r.MeasureText(label)
		r.Text(label, heatmapLeft-8-box.Width(), y+box.Height()/2)
	}

	r.SetFontSize(11)
	r.Text(hm.X, heatmapLeft+plotW/2, opts.Height-10)
	r.Text(hm.Y, 8, heatmapTop-14+18)
	r.SetFontSize(9)
	r.Text(strconv.Itoa(hm.Max), opts.Width-heatmapRight+8, heatmapTop+10)
	r.Text("0", opts.Width-heatmapRight+8, heatmapTop+plotH)

	return r.Save(w)
}

func labelStride(n int) int {
	return max(1, (n+maxAxisLabels-1)/maxAxisLabels)
}

func fillRect(r chart.Renderer, x0, y0, x1, y1 int, c drawing.Color) {
	r.SetFillColor(c)
	r.SetStrokeColor(c)
	r.MoveTo(x0, y0)
	r.LineTo(x1, y0)
	r.LineTo(x1, y1)
	r.LineTo(x0, y1)
	r.Close()
	r.Fill()
}

// cellColor interpolates between the low and high colors. Empty cells are
// drawn in a neutral shade.
func cellColor(n, peak int) drawing.Color {
	if n == 0 || peak == 0 {
		return emptyCell
	}
	t := float64(n) / float64(peak)
	lerp := func(a, b uint8) uint8 {
		return uint8(float64(a) + t*(float64(b)-float64(a)))
	}
	return drawing.Color{
		R: lerp(heatLow.R, heatHigh.R),
		G: lerp(heatLow.G, heatHigh.G),
		B: lerp(heatLow.B, heatHigh.B),
		A: 255,
	}
}
