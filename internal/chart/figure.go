package chart

import (
	"fmt"
	"io"

	"github.com/JonMunkholm/nsqipdash/internal/core"
)

// Figure renders dashboard figure n of a session view.
func Figure(w io.Writer, v core.View, n, bins int, opts Options) error {
	if !v.HasData() {
		return core.ErrNoData
	}

	var err error
	title := v.Title(n)
	switch n {
	case core.FigureHeatmap:
		var hm core.Heatmap
		if hm, err = v.Heatmap(bins); err == nil {
			err = Heatmap(w, title, hm, opts)
		}
	case core.FigurePie:
		var counts []core.ValueCount
		if counts, err = v.Pie(); err == nil {
			err = Pie(w, title, counts, opts)
		}
	case core.FigureHistY, core.FigureHistX:
		var h core.Histogram
		if h, err = v.Histogram(n, bins); err == nil {
			err = Histogram(w, title, h, opts)
		}
	default:
		return fmt.Errorf("%w: %d", core.ErrUnknownFigure, n)
	}
	if err != nil {
		return fmt.Errorf("figure %d: %w", n, err)
	}
	return nil
}
