package web

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/JonMunkholm/nsqipdash/internal/chart"
	"github.com/JonMunkholm/nsqipdash/internal/core"
	"github.com/JonMunkholm/nsqipdash/internal/logging"
	"github.com/JonMunkholm/nsqipdash/internal/metrics"
)

// uploadFormMemory is the part of a multipart upload kept in memory;
// the rest spills to temporary files.
const uploadFormMemory = 32 << 20

// filtersResponse is the state of the two cascading selectors.
type filtersResponse struct {
	SpecialtyColumn  string   `json:"specialty_column"`
	CodeColumn       string   `json:"code_column"`
	SpecialtyOptions []string `json:"specialty_options"`
	CodeOptions      []string `json:"code_options"`
	Specialty        []string `json:"specialty"`
	Codes            []string `json:"codes"`
}

// stateResponse summarizes a session after a change.
type stateResponse struct {
	SessionID      string             `json:"session_id"`
	Files          []string           `json:"files"`
	Rows           int                `json:"rows"`
	Columns        []string           `json:"columns"`
	Filters        filtersResponse    `json:"filters"`
	SubsetRows     int                `json:"subset_rows"`
	Figures        core.FigureColumns `json:"figures"`
	ExportFilename string             `json:"export_filename,omitempty"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func filtersOf(v core.View) filtersResponse {
	return filtersResponse{
		SpecialtyColumn:  v.SpecialtyColumn,
		CodeColumn:       v.CodeColumn,
		SpecialtyOptions: nonNil(v.SpecialtyOptions),
		CodeOptions:      nonNil(v.CodeOptions),
		Specialty:        nonNil(v.Specialty),
		Codes:            nonNil(v.Codes),
	}
}

func stateOf(v core.View) stateResponse {
	st := stateResponse{
		SessionID:  v.SessionID,
		Files:      nonNil(v.Files),
		Rows:       v.Rows,
		Columns:    nonNil(v.Columns),
		Filters:    filtersOf(v),
		SubsetRows: v.Subset.Len(),
		Figures:    v.Figures,
	}
	if v.HasData() {
		st.ExportFilename = core.FilteredFilename(v.Codes)
	}
	return st
}

// respondState answers a state change: browsers go back to the dashboard,
// API callers get the new state.
func (s *Server) respondState(w http.ResponseWriter, r *http.Request, v core.View) {
	if wantsHTML(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	render.JSON(w, r, stateOf(v))
}

// writeDownload sends a payload as an attachment.
func writeDownload(w http.ResponseWriter, p core.Payload) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": p.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(p.Data)))
	w.Write(p.Data)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{
		"status":   "ok",
		"sessions": s.service.Sessions().Len(),
		"uploads":  s.service.Limiter().Status(),
	})
}

// handleUpload reads every file of a multipart upload and replaces the
// session's table with their merge. Any failure leaves the session as it was.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	sess := sessionFrom(r.Context())

	maxBody := int64(s.cfg.Upload.MaxFileSize)*int64(s.cfg.Upload.MaxFiles) + uploadFormMemory
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	if err := r.ParseMultipartForm(uploadFormMemory); err != nil {
		s.metrics.ObserveUpload(metrics.OutcomeRejected, 0, 0)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, r, fmt.Errorf("%w: request exceeds %d bytes", core.ErrFileTooLarge, tooLarge.Limit), http.StatusRequestEntityTooLarge)
			return
		}
		s.respondError(w, r, fmt.Errorf("invalid request: %w", err), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := append([]*multipart.FileHeader{}, r.MultipartForm.File["files"]...)
	headers = append(headers, r.MultipartForm.File["file"]...)
	if len(headers) > s.cfg.Upload.MaxFiles {
		s.metrics.ObserveUpload(metrics.OutcomeRejected, 0, 0)
		s.respondError(w, r, fmt.Errorf("invalid request: %d files, at most %d allowed", len(headers), s.cfg.Upload.MaxFiles), http.StatusBadRequest)
		return
	}

	files, err := readUploads(headers)
	if err == nil {
		var v core.View
		v, err = s.service.Upload(r.Context(), sess, files)
		if err == nil {
			s.metrics.ObserveUpload(metrics.OutcomeOK, v.Rows, time.Since(start))
			s.respondState(w, r, v)
			return
		}
	}

	outcome := metrics.OutcomeFailed
	if errors.Is(err, core.ErrTooManyUploads) {
		outcome = metrics.OutcomeRejected
	}
	s.metrics.ObserveUpload(outcome, 0, time.Since(start))
	s.respondError(w, r, err, statusFor(err, http.StatusBadRequest))
}

func readUploads(headers []*multipart.FileHeader) ([]core.RawFile, error) {
	files := make([]core.RawFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fh.Filename, err)
		}
		files = append(files, core.RawFile{Name: filepath.Base(fh.Filename), Data: data})
	}
	return files, nil
}

func (s *Server) handleColumns(w http.ResponseWriter, r *http.Request) {
	v := sessionFrom(r.Context()).View()
	render.JSON(w, r, map[string][]string{"columns": nonNil(v.Columns)})
}

func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, filtersOf(sessionFrom(r.Context()).View()))
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if err := s.decode(r, &req); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	v := sessionFrom(r.Context()).Select(req.Specialty, req.Code)
	logging.FromContext(r.Context()).Debug("selection changed",
		"specialty", len(v.Specialty),
		"codes", len(v.Codes),
		"rows", v.Subset.Len(),
	)
	s.respondState(w, r, v)
}

func (s *Server) handleSetFigures(w http.ResponseWriter, r *http.Request) {
	var req figuresRequest
	if err := s.decode(r, &req); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	sess := sessionFrom(r.Context())
	v := sess.SetFigures(req.merge(sess.View().Figures))
	s.respondState(w, r, v)
}

func (s *Server) handleRows(w http.ResponseWriter, r *http.Request) {
	q := rowsQuery{Limit: s.cfg.Dataset.PreviewRows}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.respondError(w, r, fmt.Errorf("invalid request: limit: %w", err), http.StatusBadRequest)
			return
		}
		q.Limit = n
	}
	if err := s.check(q); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	v := sessionFrom(r.Context()).View()
	render.JSON(w, r, map[string]any{
		"columns": nonNil(v.SubsetColumns),
		"rows":    v.Subset.Head(q.Limit).Records(),
		"total":   v.Subset.Len(),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, sessionFrom(r.Context()).View().Stats())
}

func (s *Server) handleCounts(w http.ResponseWriter, r *http.Request) {
	column := chi.URLParam(r, "column")
	if unescaped, err := url.PathUnescape(column); err == nil {
		column = unescaped
	}
	counts, err := sessionFrom(r.Context()).View().Counts(column)
	if err != nil {
		s.respondError(w, r, err, statusFor(err, http.StatusBadRequest))
		return
	}
	render.JSON(w, r, map[string]any{"column": column, "counts": counts})
}

// handleExport downloads the filtered rows, optionally restricted to the
// repeated column parameter.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	v := sessionFrom(r.Context()).View()

	var (
		p   core.Payload
		err error
	)
	if columns := r.URL.Query()["column"]; len(columns) > 0 {
		p, err = v.ExportColumns(columns)
	} else {
		p, err = v.Export()
	}
	if err != nil {
		s.respondError(w, r, err, statusFor(err, http.StatusBadRequest))
		return
	}
	s.metrics.ObserveExport("download")
	writeDownload(w, p)
}

func (s *Server) handleSaveExport(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := s.decode(r, &req); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	path, err := s.service.SaveExport(sessionFrom(r.Context()), req.Path)
	if err != nil {
		s.respondError(w, r, err, statusFor(err, http.StatusUnprocessableEntity))
		return
	}
	s.metrics.ObserveExport("folder")

	if wantsHTML(r) {
		http.Redirect(w, r, "/?saved="+url.QueryEscape(path), http.StatusSeeOther)
		return
	}
	render.JSON(w, r, map[string]string{"path": path})
}

func figureNumber(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "n")
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", core.ErrUnknownFigure, raw)
	}
	return n, nil
}

func (s *Server) handleFigureData(w http.ResponseWriter, r *http.Request) {
	n, err := figureNumber(r)
	if err == nil {
		var p core.Payload
		if p, err = sessionFrom(r.Context()).View().FigureData(n); err == nil {
			s.metrics.ObserveFigure(n)
			writeDownload(w, p)
			return
		}
	}
	s.respondError(w, r, err, statusFor(err, http.StatusBadRequest))
}

func (s *Server) handleFigureImage(w http.ResponseWriter, r *http.Request) {
	n, err := figureNumber(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	v := sessionFrom(r.Context()).View()
	if err := chart.Figure(&buf, v, n, s.cfg.Dataset.HistogramBins, chart.DefaultOptions()); err != nil {
		s.respondError(w, r, err, statusFor(err, http.StatusInternalServerError))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

// handleEndSession discards the session and its table.
func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	s.service.Sessions().Delete(sess.ID)
	http.SetCookie(w, s.expiredCookie())
	logging.FromContext(r.Context()).Info("session ended")

	if wantsHTML(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
