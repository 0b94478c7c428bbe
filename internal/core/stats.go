package core

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// NumericSummary describes a column whose non-blank values all parse as numbers.
type NumericSummary struct {
	Mean   float64  `json:"mean"`
	Std    *float64 `json:"std"` // nil when fewer than two values
	Min    float64  `json:"min"`
	Q1     float64  `json:"q1"`
	Median float64  `json:"median"`
	Q3     float64  `json:"q3"`
	Max    float64  `json:"max"`
}

// TextSummary describes any other column.
type TextSummary struct {
	Unique int    `json:"unique"`
	Top    string `json:"top"`
	Freq   int    `json:"freq"`
}

// ColumnSummary is one column of the descriptive statistics table.
// Exactly one of Numeric and Text is set.
type ColumnSummary struct {
	Column  string          `json:"column"`
	Count   int             `json:"count"` // Non-blank cells
	Numeric *NumericSummary `json:"numeric,omitempty"`
	Text    *TextSummary    `json:"text,omitempty"`
}

// Summary is the descriptive statistics of a table.
type Summary struct {
	Rows    int             `json:"rows"`
	Columns []ColumnSummary `json:"columns"`
}

// NumericColumns returns the columns of s that were summarized as numbers.
func (s Summary) NumericColumns() []ColumnSummary {
	var out []ColumnSummary
	for _, c := range s.Columns {
		if c.Numeric != nil {
			out = append(out, c)
		}
	}
	return out
}

// Describe summarizes every column of t. Cells stay text in the table; a
// column is summarized numerically only when it has at least one value and
// every non-blank value parses as a finite number.
func Describe(t *Table) Summary {
	columns := t.Columns()
	summary := Summary{Rows: t.Len(), Columns: make([]ColumnSummary, 0, len(columns))}
	for _, name := range columns {
		values, _ := t.Column(name)
		summary.Columns = append(summary.Columns, describeColumn(name, values))
	}
	return summary
}

func describeColumn(name string, values []string) ColumnSummary {
	present := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			present = append(present, v)
		}
	}

	cs := ColumnSummary{Column: name, Count: len(present)}
	if nums, ok := parseNumbers(present); ok {
		cs.Numeric = describeNumbers(nums)
		return cs
	}
	cs.Text = describeText(present)
	return cs
}

// parseNumbers converts every value to a float, failing on the first value
// that is not a finite number. An empty input is not numeric.
func parseNumbers(values []string) ([]float64, bool) {
	if len(values) == 0 {
		return nil, false
	}
	nums := make([]float64, len(values))
	for i, v := range values {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, false
		}
		nums[i] = f
	}
	return nums, true
}

func describeNumbers(nums []float64) *NumericSummary {
	data := stats.Float64Data(nums)
	mean, _ := stats.Mean(data)
	minimum, _ := stats.Min(data)
	maximum, _ := stats.Max(data)
	median, _ := stats.Median(data)

	ns := &NumericSummary{Mean: mean, Min: minimum, Median: median, Max: maximum}
	if len(nums) > 1 {
		if sd, err := stats.StandardDeviationSample(data); err == nil {
			ns.Std = &sd
		}
	}

	sorted := append([]float64(nil), nums...)
	sort.Float64s(sorted)
	ns.Q1 = stat.Quantile(0.25, stat.LinInterp, sorted, nil)
	ns.Q3 = stat.Quantile(0.75, stat.LinInterp, sorted, nil)
	return ns
}

func describeText(values []string) *TextSummary {
	ts := &TextSummary{}
	counts := make(map[string]int)
	for _, v := range values {
		counts[v]++
		if counts[v] > ts.Freq {
			ts.Top, ts.Freq = v, counts[v]
		}
	}
	ts.Unique = len(counts)
	return ts
}
