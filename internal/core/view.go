package core

import "fmt"

// Export encodes the working subset under the filename derived from the
// code selection.
func (v View) Export() (Payload, error) {
	if !v.HasData() {
		return Payload{}, ErrNoData
	}
	return ExportFiltered(v.Subset, v.Codes)
}

// ExportColumns encodes a projection of the working subset. The filename
// follows the code selection like a full export.
func (v View) ExportColumns(columns []string) (Payload, error) {
	if !v.HasData() {
		return Payload{}, ErrNoData
	}
	data, err := EncodeCSV(v.Subset, columns)
	if err != nil {
		return Payload{}, err
	}
	return Payload{Filename: FilteredFilename(v.Codes), Data: data}, nil
}

// FigureData returns the raw-data download of figure n.
func (v View) FigureData(n int) (Payload, error) {
	if !v.HasData() {
		return Payload{}, ErrNoData
	}
	return FigureData(v.Subset, n, v.Figures)
}

// Stats describes the working subset.
func (v View) Stats() Summary {
	return Describe(v.Subset)
}

// Counts returns the value counts of a column of the working subset.
func (v View) Counts(column string) ([]ValueCount, error) {
	if !v.HasData() {
		return nil, ErrNoData
	}
	return ValueCounts(v.Subset, column)
}

// SexCounts returns the value counts of the sex column, or nothing when
// the table has no such column.
func (v View) SexCounts() []ValueCount {
	counts, err := v.Counts(v.SexColumn)
	if err != nil {
		return []ValueCount{}
	}
	return counts
}

// Histogram bins the column behind figure 3 or 4.
func (v View) Histogram(n, bins int) (Histogram, error) {
	if !v.HasData() {
		return Histogram{}, ErrNoData
	}
	switch n {
	case FigureHistY:
		return HistogramOf(v.Subset, v.Figures.HistY, bins)
	case FigureHistX:
		return HistogramOf(v.Subset, v.Figures.HistX, bins)
	default:
		return Histogram{}, fmt.Errorf("%w: %d is not a histogram", ErrUnknownFigure, n)
	}
}

// Heatmap counts the working subset by the figure 1 columns.
func (v View) Heatmap(bins int) (Heatmap, error) {
	if !v.HasData() {
		return Heatmap{}, ErrNoData
	}
	return HeatmapOf(v.Subset, v.Figures.HeatmapX, v.Figures.HeatmapY, bins)
}

// Pie returns the frequency table behind figure 2.
func (v View) Pie() ([]ValueCount, error) {
	return v.Counts(v.Figures.Pie)
}

// Title returns the caption of figure n.
func (v View) Title(n int) string {
	return FigureTitle(n, v.Figures, v.Subset.Len())
}
