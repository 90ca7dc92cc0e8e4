package web

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/csvaudit/internal/core"
	"github.com/JonMunkholm/csvaudit/internal/export"
	"github.com/JonMunkholm/csvaudit/internal/logging"
	"github.com/JonMunkholm/csvaudit/internal/store"
	"github.com/JonMunkholm/csvaudit/internal/web/templates"
	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
)

// sourceRequestBody names inputs posted as a raw body without ?source=.
const sourceRequestBody = "request body"

// handleIndex renders the upload form.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, "CSV audit", templates.UploadForm(s.service.Keys()))
}

// handleReportPage analyzes an uploaded file and renders the report.
func (s *Server) handleReportPage(w http.ResponseWriter, r *http.Request) {
	report, err := s.analyze(w, r)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	s.renderPage(w, r, "Report: "+report.Source, templates.ReportPage(report))
}

// handleHealth reports liveness and analysis slot usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{
		"status":   "ok",
		"analyses": s.service.LimiterStatus(),
		"history":  s.history != nil,
	})
}

// handleAnalyze runs all analyses and returns the report as JSON.
// The CSV is either the "file" field of a multipart form or the raw body.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	report, err := s.analyze(w, r)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	render.JSON(w, r, report)
}

// handleAnalyzeFailed returns the rows with a missing or invalid amount
// as a CSV download.
func (s *Server) handleAnalyzeFailed(w http.ResponseWriter, r *http.Request) {
	report, err := s.analyze(w, r)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FailedRowsName(report.Source)))
	if err := export.WriteFailedRows(w, report.InvalidAmounts, report.Keys.Amount); err != nil {
		// Headers are already sent.
		s.logWriteError(r, err)
	}
}

// handleListRuns lists recent runs, newest first.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.respondError(w, r, core.ErrHistoryDisabled, 0)
		return
	}

	runs, err := s.history.ListRuns(r.Context(), parseIntParam(r, "limit", store.DefaultListLimit))
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	if runs == nil {
		runs = []store.RunSummary{}
	}
	render.JSON(w, r, runs)
}

// handleRunTotals returns one run's categories with counts and totals.
func (s *Server) handleRunTotals(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.respondError(w, r, core.ErrHistoryDisabled, 0)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "runID"))
	if err != nil {
		s.respondError(w, r, errBadRunID, 0)
		return
	}

	totals, err := s.history.RunTotals(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	if totals == nil {
		totals = []store.CategoryTotal{}
	}
	render.JSON(w, r, totals)
}

// analyze reads the upload and runs it through the service.
func (s *Server) analyze(w http.ResponseWriter, r *http.Request) (*core.Report, error) {
	source, body, err := s.openUpload(w, r)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	ctx := WithRequestMetadata(r.Context(), r)
	return s.service.Analyze(ctx, source, body, requestKeys(r))
}

// openUpload returns the CSV carried by r and a name for it. Multipart
// requests use the "file" field; anything else is read as the raw body.
// Both are capped at the configured upload size.
func (s *Server) openUpload(w http.ResponseWriter, r *http.Request) (string, io.ReadCloser, error) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		source := strings.TrimSpace(r.URL.Query().Get("source"))
		if source == "" {
			source = sourceRequestBody
		}
		return source, r.Body, nil
	}

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", nil, fmt.Errorf("file too large: %w", err)
		}
		return "", nil, fmt.Errorf("%w: %v", errNoFile, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, errNoFile
	}
	return header.Filename, file, nil
}

// requestKeys reads optional column overrides from the query string or
// the multipart form. Blank values fall back to the configured keys.
func requestKeys(r *http.Request) core.Keys {
	return core.Keys{
		Category: formOrQuery(r, "category"),
		Amount:   formOrQuery(r, "amount"),
	}
}

func formOrQuery(r *http.Request, name string) string {
	if v := r.URL.Query().Get(name); v != "" {
		return v
	}
	if r.MultipartForm != nil {
		if vs := r.MultipartForm.Value[name]; len(vs) > 0 {
			return vs[0]
		}
	}
	return ""
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// renderPage writes body inside the page layout.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, title string, body templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Layout(title, body).Render(r.Context(), w); err != nil {
		s.logWriteError(r, err)
	}
}

func (s *Server) logWriteError(r *http.Request, err error) {
	logging.FromContext(r.Context()).Warn("write response", "path", r.URL.Path, "error", err)
}
