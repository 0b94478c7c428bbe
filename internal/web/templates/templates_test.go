package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/nsqipdash/internal/core"
)

func render(t *testing.T, d Dashboard) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, DashboardPage(d).Render(context.Background(), &buf))
	return buf.String()
}

func TestDashboardPage_Empty(t *testing.T) {
	html := render(t, Dashboard{Accept: ".csv,.txt,.xlsx"})
	assert.Contains(t, html, `accept=".csv,.txt,.xlsx"`)
	assert.NotContains(t, html, `id="stats"`)
}

func TestDashboardPage_Loaded(t *testing.T) {
	std := 1.5
	html := render(t, Dashboard{
		Files:            []string{"a&b.csv"},
		Rows:             10,
		HasData:          true,
		Columns:          []string{"SURGSPEC", "CPT", "AGE"},
		SpecialtyColumn:  "SURGSPEC",
		CodeColumn:       "CPT",
		SpecialtyOptions: []string{"General Surgery", "Orthopedics"},
		Specialty:        []string{"Orthopedics"},
		SubsetRows:       3,
		Figures:          core.FigureColumns{Pie: "CPT"},
		Stats: core.Summary{Rows: 3, Columns: []core.ColumnSummary{
			{Column: "AGE", Count: 3, Numeric: &core.NumericSummary{Mean: 60, Std: &std}},
			{Column: "CPT", Count: 3, Text: &core.TextSummary{Unique: 2, Top: "27447", Freq: 2}},
		}},
		Panels: []FigurePanel{{Number: 2, Title: "Figure 2: Procedure Counts by CPT, n=3", ImageURL: "/api/figures/2.png"}},
	})

	assert.Contains(t, html, "a&amp;b.csv")
	assert.Contains(t, html, `<option value="Orthopedics" selected>`)
	assert.Contains(t, html, `<option value="General Surgery">`)
	assert.Contains(t, html, `<option value="CPT" selected>`)
	assert.Contains(t, html, "60.0000")
	assert.Contains(t, html, "1.5000")
	assert.Contains(t, html, "27447")
	assert.Contains(t, html, "3 of 10 rows selected")
	assert.Contains(t, html, "Download Figure 2 Data")
}

func TestErrorAlert(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ErrorPage("File <bad>", "Try again", "FILE002").Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), "File &lt;bad&gt;")
	assert.Contains(t, buf.String(), "FILE002")
	assert.Contains(t, buf.String(), `href="/"`)
}

func TestErrorAlert_NoAction(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ErrorAlert("Session expired", "", "SES001").Render(context.Background(), &buf))
	assert.Equal(t, `<div class="alert alert-error" role="alert"><strong>Session expired</strong><small class="code">SES001</small></div>`, buf.String())
}

func TestDashboardPage_DataURIDownloads(t *testing.T) {
	href := "data:file/csv;base64,Q1BULEFHRQo0NDE0MCw1NAo="
	html := render(t, Dashboard{
		HasData: true,
		Export:  Link{Filename: "44140_NSQIP_Filtered_CPT_Codes.csv", Href: href},
		Panels: []FigurePanel{{
			Number:   4,
			Title:    "Figure 4: Histogram of AGE",
			ImageURL: "/api/figures/4.png",
			Download: Link{Filename: "Figure_4_AGE_histogram_data.csv", Href: href},
		}},
	})

	assert.Equal(t, 2, strings.Count(html, `href="`+href+`"`))
	assert.Contains(t, html, `download="Figure_4_AGE_histogram_data.csv"`)
	assert.Contains(t, html, `<img src="/api/figures/4.png" alt="Figure 4: Histogram of AGE">`)
	assert.NotContains(t, html, "TemplFailedSanitizationURL")
}

func TestStatsRow_BlankCells(t *testing.T) {
	std := 2.0
	tests := []struct {
		name string
		col  core.ColumnSummary
		want string
	}{
		{
			name: "numeric",
			col:  core.ColumnSummary{Column: "AGE", Count: 2, Numeric: &core.NumericSummary{Mean: 60, Std: &std, Min: 58, Q1: 59, Median: 60, Q3: 61, Max: 62}},
			want: "<tr><td>AGE</td><td>2</td><td>60.0000</td><td>2.0000</td><td>58.0000</td><td>59.0000</td><td>60.0000</td><td>61.0000</td><td>62.0000</td><td></td><td></td><td></td></tr>",
		},
		{
			name: "numeric without std",
			col:  core.ColumnSummary{Column: "AGE", Count: 1, Numeric: &core.NumericSummary{Mean: 60, Min: 60, Q1: 60, Median: 60, Q3: 60, Max: 60}},
			want: "<tr><td>AGE</td><td>1</td><td>60.0000</td><td>NaN</td><td>60.0000</td><td>60.0000</td><td>60.0000</td><td>60.0000</td><td>60.0000</td><td></td><td></td><td></td></tr>",
		},
		{
			name: "text",
			col:  core.ColumnSummary{Column: "CPT", Count: 3, Text: &core.TextSummary{Unique: 2, Top: "27447", Freq: 2}},
			want: "<tr><td>CPT</td><td>3</td><td></td><td></td><td></td><td></td><td></td><td></td><td></td><td>2</td><td>27447</td><td>2</td></tr>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, statsRow(tt.col).Render(context.Background(), &buf))
			assert.Equal(t, tt.want, buf.String())
			assert.Equal(t, len(statsHeaders), strings.Count(buf.String(), "<td>"))
		})
	}
}
