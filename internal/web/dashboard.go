package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/nsqipdash/internal/core"
	"github.com/JonMunkholm/nsqipdash/internal/logging"
	"github.com/JonMunkholm/nsqipdash/internal/web/templates"
)

// compressedExtensions are offered in the file picker on top of the
// registered formats.
var compressedExtensions = []string{".gz", ".bz2", ".xz"}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	v := sessionFrom(r.Context()).View()
	model := s.dashboard(v)
	model.Saved = r.URL.Query().Get("saved")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.DashboardPage(model).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render dashboard", "error", err)
	}
}

// dashboard builds the page model for a session view.
func (s *Server) dashboard(v core.View) templates.Dashboard {
	d := templates.Dashboard{
		Accept:           strings.Join(append(core.AcceptedExtensions(), compressedExtensions...), ","),
		Files:            v.Files,
		Rows:             v.Rows,
		HasData:          v.HasData(),
		Columns:          v.Columns,
		SpecialtyColumn:  v.SpecialtyColumn,
		CodeColumn:       v.CodeColumn,
		SpecialtyOptions: v.SpecialtyOptions,
		CodeOptions:      v.CodeOptions,
		Specialty:        v.Specialty,
		Codes:            v.Codes,
		SubsetRows:       v.Subset.Len(),
		Figures:          v.Figures,
		ExportDir:        s.cfg.Dataset.ExportDir,
	}
	if !d.HasData {
		return d
	}

	d.Stats = v.Stats()
	if v.Subset.HasColumn(v.SexColumn) {
		d.SexColumn = v.SexColumn
		d.SexCounts = v.SexCounts()
	}

	if p, err := v.Export(); err == nil {
		d.Export = templates.Link{Filename: p.Filename, Href: p.DataURI()}
	}

	for _, n := range []int{core.FigureHeatmap, core.FigurePie, core.FigureHistY, core.FigureHistX} {
		panel := templates.FigurePanel{
			Number:   n,
			Title:    v.Title(n),
			ImageURL: "/api/figures/" + strconv.Itoa(n) + ".png",
		}
		if p, err := v.FigureData(n); err == nil {
			panel.Download = templates.Link{Filename: p.Filename, Href: p.DataURI()}
		}
		d.Panels = append(d.Panels, panel)
	}

	d.PreviewColumns = v.SubsetColumns
	d.Preview = v.Subset.Head(s.cfg.Dataset.PreviewRows).Records()
	return d
}
