package formats

import "github.com/JonMunkholm/nsqipdash/internal/core"

func init() {
	core.RegisterFormat(core.Format{
		Name:       "spreadsheet",
		Extensions: []string{".xlsx"},
		Read:       ReadSpreadsheet,
	})
	core.RegisterFormat(core.Format{
		Name:       "csv",
		Extensions: []string{".csv"},
		Read:       ReadCSV,
	})
	core.RegisterFormat(core.Format{
		Name:       "tab-latin1",
		Extensions: []string{".txt", ".tsv"},
		Fallback:   true,
		Read:       ReadTabLatin1,
	})
}
