// Package templates holds the dashboard's HTML components. The .templ
// sources are compiled with `templ generate`; the _templ.go files are
// checked in so the module builds without the templ CLI.
package templates

//go:generate templ generate

import (
	"strconv"

	"github.com/JonMunkholm/nsqipdash/internal/core"
)

// Link is a download offered as a data URI.
type Link struct {
	Filename string
	Href     string
}

// FigurePanel is one rendered figure with its raw-data download.
type FigurePanel struct {
	Number   int
	Title    string
	ImageURL string
	Download Link
}

// Dashboard is everything the dashboard page shows for one session.
type Dashboard struct {
	Accept string // File input accept list
	Files  []string
	Rows   int

	HasData          bool
	Columns          []string
	SpecialtyColumn  string
	CodeColumn       string
	SexColumn        string
	SpecialtyOptions []string
	CodeOptions      []string
	Specialty        []string
	Codes            []string
	SubsetRows       int

	Figures   core.FigureColumns
	Stats     core.Summary
	SexCounts []core.ValueCount
	Panels    []FigurePanel

	Export    Link
	ExportDir string
	Saved     string

	PreviewColumns []string
	Preview        [][]string
}

var (
	numericHeaders = []string{"mean", "std", "min", "25%", "50%", "75%", "max"}
	textHeaders    = []string{"unique", "top", "freq"}
	statsHeaders   = append(append([]string{"column", "count"}, numericHeaders...), textHeaders...)
)

// numericCells formats n in numericHeaders order.
func numericCells(n *core.NumericSummary) []string {
	return []string{float(n.Mean), floatPtr(n.Std), float(n.Min), float(n.Q1), float(n.Median), float(n.Q3), float(n.Max)}
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func float(f float64) string {
	return strconv.FormatFloat(f, 'f', 4, 64)
}

func floatPtr(f *float64) string {
	if f == nil {
		return "NaN"
	}
	return float(*f)
}
