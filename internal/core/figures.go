package core

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultBins is the number of bins used for numeric histogram axes and
// the number of distinct values kept on a categorical heatmap axis.
const DefaultBins = 20

// OtherLabel names the heatmap bucket holding the values of a categorical
// axis beyond its most frequent ones.
const OtherLabel = "Other"

// Figure numbers, in dashboard order.
const (
	FigureHeatmap = 1
	FigurePie     = 2
	FigureHistY   = 3
	FigureHistX   = 4
)

// FigureColumns holds the five column pickers that drive the figures.
type FigureColumns struct {
	Pie      string `json:"pie"`
	HistX    string `json:"hist_x"`
	HistY    string `json:"hist_y"`
	HeatmapX string `json:"heatmap_x"`
	HeatmapY string `json:"heatmap_y"`
}

// Resolve replaces every picker that names a column t does not have with
// t's first column. On a table with no columns every picker is blank.
func (fc FigureColumns) Resolve(t *Table) FigureColumns {
	first := ""
	if cols := t.Columns(); len(cols) > 0 {
		first = cols[0]
	}
	pick := func(c string) string {
		if t.HasColumn(c) {
			return c
		}
		return first
	}
	return FigureColumns{
		Pie:      pick(fc.Pie),
		HistX:    pick(fc.HistX),
		HistY:    pick(fc.HistY),
		HeatmapX: pick(fc.HeatmapX),
		HeatmapY: pick(fc.HeatmapY),
	}
}

// ValueCount is one label of a frequency table.
type ValueCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// ValueCounts counts the non-blank values of a column, most frequent first.
// Equal counts keep the order in which the values first appear.
func ValueCounts(t *Table, column string) ([]ValueCount, error) {
	values, ok := t.Column(column)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, column)
	}
	return countValues(values), nil
}

func countValues(values []string) []ValueCount {
	index := make(map[string]int)
	counts := []ValueCount{}
	for _, v := range values {
		if v == "" {
			continue
		}
		i, seen := index[v]
		if !seen {
			i = len(counts)
			index[v] = i
			counts = append(counts, ValueCount{Label: v})
		}
		counts[i].Count++
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return counts
}

// Bin is one bar of a histogram. Numeric bins cover [Start, End); the last
// bin also includes its upper edge.
type Bin struct {
	Label string  `json:"label"`
	Start float64 `json:"start,omitempty"`
	End   float64 `json:"end,omitempty"`
	Count int     `json:"count"`
}

// Histogram is the binned distribution of one column.
type Histogram struct {
	Column  string `json:"column"`
	Numeric bool   `json:"numeric"`
	Bins    []Bin  `json:"bins"`
}

// HistogramOf bins a column. Numeric columns are split into equal-width
// bins across their range; any other column gets one bar per distinct
// value in order of first appearance. Blank cells are not counted.
func HistogramOf(t *Table, column string, bins int) (Histogram, error) {
	values, ok := t.Column(column)
	if !ok {
		return Histogram{}, fmt.Errorf("%w: %q", ErrColumnNotFound, column)
	}
	if bins <= 0 {
		bins = DefaultBins
	}

	h := Histogram{Column: column, Bins: []Bin{}}
	present := nonBlank(values)
	if nums, ok := parseNumbers(present); ok {
		h.Numeric = true
		h.Bins = numericBins(nums, bins)
		return h, nil
	}
	index := make(map[string]int)
	for _, v := range present {
		i, seen := index[v]
		if !seen {
			i = len(h.Bins)
			index[v] = i
			h.Bins = append(h.Bins, Bin{Label: v})
		}
		h.Bins[i].Count++
	}
	return h, nil
}

func nonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// numericDividers returns bin edges spanning nums. The last edge is nudged
// up so the maximum falls inside the final bin.
func numericDividers(nums []float64, bins int) []float64 {
	lo, hi := floats.Min(nums), floats.Max(nums)
	if lo == hi {
		bins = 1
	}
	dividers := floats.Span(make([]float64, bins+1), lo, hi)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	return dividers
}

func numericBins(nums []float64, bins int) []Bin {
	sorted := append([]float64(nil), nums...)
	sort.Float64s(sorted)
	dividers := numericDividers(sorted, bins)
	counts := stat.Histogram(nil, dividers, sorted, nil)

	out := make([]Bin, len(counts))
	for i, c := range counts {
		end := dividers[i+1]
		if i == len(counts)-1 {
			end = sorted[len(sorted)-1]
		}
		out[i] = Bin{
			Label: formatFloat(dividers[i]) + "-" + formatFloat(end),
			Start: dividers[i],
			End:   end,
			Count: int(c),
		}
	}
	return out
}

// axis maps the values of one heatmap axis to bucket positions.
type axis struct {
	labels []string
	bucket func(v string) int
}

func newAxis(values []string, bins int) axis {
	present := nonBlank(values)
	if nums, ok := parseNumbers(present); ok {
		sorted := append([]float64(nil), nums...)
		sort.Float64s(sorted)
		dividers := numericDividers(sorted, bins)
		labels := make([]string, len(dividers)-1)
		for i := range labels {
			labels[i] = formatFloat(dividers[i])
		}
		return axis{
			labels: labels,
			bucket: func(v string) int {
				f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
				if v == "" || err != nil {
					return -1
				}
				i := sort.SearchFloat64s(dividers, f)
				if i < len(dividers) && dividers[i] == f {
					i++
				}
				return min(i-1, len(labels)-1)
			},
		}
	}

	index := make(map[string]int)
	var labels []string
	for _, v := range present {
		if _, ok := index[v]; !ok {
			index[v] = len(labels)
			labels = append(labels, v)
		}
	}
	if len(labels) <= bins {
		return axis{
			labels: labels,
			bucket: func(v string) int {
				if i, ok := index[v]; ok {
					return i
				}
				return -1
			},
		}
	}

	// Keep the bins most frequent values and fold the rest into one bucket.
	clear(index)
	labels = labels[:0]
	for _, c := range countValues(present)[:bins] {
		index[c.Label] = len(labels)
		labels = append(labels, c.Label)
	}
	other := len(labels)
	labels = append(labels, OtherLabel)
	return axis{
		labels: labels,
		bucket: func(v string) int {
			if v == "" {
				return -1
			}
			if i, ok := index[v]; ok {
				return i
			}
			return other
		},
	}
}

// Heatmap is a two-dimensional count of rows by X and Y bucket.
// Counts is indexed [y][x].
type Heatmap struct {
	X       string   `json:"x"`
	Y       string   `json:"y"`
	XLabels []string `json:"x_labels"`
	YLabels []string `json:"y_labels"`
	Counts  [][]int  `json:"counts"`
	Max     int      `json:"max"`
}

// HeatmapOf counts rows by the buckets of two columns. Numeric axes are
// split into bins equal-width bins; other axes use their distinct values,
// capped at the bins most frequent plus an [OtherLabel] bucket.
// Rows blank on either axis are skipped.
func HeatmapOf(t *Table, x, y string, bins int) (Heatmap, error) {
	xs, ok := t.Column(x)
	if !ok {
		return Heatmap{}, fmt.Errorf("%w: %q", ErrColumnNotFound, x)
	}
	ys, ok := t.Column(y)
	if !ok {
		return Heatmap{}, fmt.Errorf("%w: %q", ErrColumnNotFound, y)
	}
	if bins <= 0 {
		bins = DefaultBins
	}

	xa, ya := newAxis(xs, bins), newAxis(ys, bins)
	hm := Heatmap{
		X:       x,
		Y:       y,
		XLabels: append([]string{}, xa.labels...),
		YLabels: append([]string{}, ya.labels...),
		Counts:  make([][]int, len(ya.labels)),
	}
	for i := range hm.Counts {
		hm.Counts[i] = make([]int, len(xa.labels))
	}
	for i := range xs {
		xi, yi := xa.bucket(xs[i]), ya.bucket(ys[i])
		if xi < 0 || yi < 0 {
			continue
		}
		hm.Counts[yi][xi]++
		hm.Max = max(hm.Max, hm.Counts[yi][xi])
	}
	return hm, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', 6, 64)
}

// FigureFilename names the raw-data download of a figure.
func FigureFilename(n int, fc FigureColumns) string {
	switch n {
	case FigureHeatmap:
		return fmt.Sprintf("Figure_1_%s_%s.csv", fc.HeatmapX, fc.HeatmapY)
	case FigurePie:
		return fmt.Sprintf("Figure_2_procedure_counts_by_%s.csv", fc.Pie)
	case FigureHistY:
		return fmt.Sprintf("Figure_3_%s_histogram_data.csv", fc.HistY)
	case FigureHistX:
		return fmt.Sprintf("Figure_4_%s_histogram_data.csv", fc.HistX)
	default:
		return ""
	}
}

// FigureTitle is the caption shown above a figure.
func FigureTitle(n int, fc FigureColumns, rows int) string {
	switch n {
	case FigureHeatmap:
		return fmt.Sprintf("Figure 1: %s vs %s", fc.HeatmapY, fc.HeatmapX)
	case FigurePie:
		return fmt.Sprintf("Figure 2: Procedure Counts by %s, n=%d", fc.Pie, rows)
	case FigureHistY:
		return fmt.Sprintf("Figure 3: Histogram of %s", fc.HistY)
	case FigureHistX:
		return fmt.Sprintf("Figure 4: Histogram of %s", fc.HistX)
	default:
		return ""
	}
}

// ErrUnknownFigure is returned for a figure number outside 1..4.
var ErrUnknownFigure = errors.New("unknown figure")

// FigureData builds the raw-data download of figure n from the working subset.
// The heatmap and histograms export their source columns; the pie chart
// exports its frequency table as Labels,Counts.
func FigureData(subset *Table, n int, fc FigureColumns) (Payload, error) {
	var (
		data []byte
		err  error
	)
	switch n {
	case FigureHeatmap:
		data, err = EncodeCSV(subset, []string{fc.HeatmapX, fc.HeatmapY})
	case FigurePie:
		var counts []ValueCount
		counts, err = ValueCounts(subset, fc.Pie)
		if err == nil {
			rows := make([][]string, len(counts))
			for i, c := range counts {
				rows[i] = []string{c.Label, strconv.Itoa(c.Count)}
			}
			data, err = EncodeCSV(NewTable([]string{"Labels", "Counts"}, rows), nil)
		}
	case FigureHistY:
		data, err = EncodeCSV(subset, []string{fc.HistY})
	case FigureHistX:
		data, err = EncodeCSV(subset, []string{fc.HistX})
	default:
		return Payload{}, fmt.Errorf("%w: %d", ErrUnknownFigure, n)
	}
	if err != nil {
		return Payload{}, err
	}
	return Payload{Filename: FigureFilename(n, fc), Data: data}, nil
}
