package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/PriceView/internal/core"
	"github.com/JonMunkholm/PriceView/internal/logging"
)

var (
	errInvalidBody  = errors.New("invalid request body")
	errBodyTooLarge = errors.New("request body too large")
)

// controlsFromQuery reads q, sort and dir. Missing or unknown values fall
// back to the defaults.
func controlsFromQuery(r *http.Request) core.Controls {
	q := r.URL.Query()
	return core.Controls{
		Query:     q.Get("q"),
		Key:       core.SortKey(q.Get("sort")),
		Direction: core.Direction(q.Get("dir")),
	}.Normalize()
}

// handlePage renders the full results page.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	page := Page(s.store, controlsFromQuery(r), s.reporter != nil)
	if err := page.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render page failed", "error", err)
	}
}

// handleResults renders just the results grid for the given controls.
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := core.View(s.store, controlsFromQuery(r)).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render results failed", "error", err)
	}
}

// handleExport downloads the full dataset, ignoring any filter or sort.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	file, err := core.Export(s.store)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Body)))
	if _, err := file.WriteTo(w); err != nil {
		logging.FromContext(r.Context()).Warn("export write failed", "error", err)
	}
}

// reportRequest is the body accepted by POST /report.
type reportRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
}

// reportReply is returned by POST /report.
type reportReply struct {
	OK       bool   `json:"ok"`
	Message  string `json:"message"`
	ReportID string `json:"report_id,omitempty"`
}

// handleReport sends the email report. It accepts JSON or form input and
// waits for the email service before answering.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if s.reporter == nil {
		respondError(w, r, errors.New("report service not configured"), http.StatusServiceUnavailable)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodySize)
	req, err := decodeReportRequest(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, r, errBodyTooLarge, http.StatusRequestEntityTooLarge)
			return
		}
		respondError(w, r, errInvalidBody, http.StatusBadRequest)
		return
	}

	// The send is not tied to the request: a client that disconnects or a
	// middleware timeout does not abort a report already on its way.
	ctx := context.WithoutCancel(WithRequestMetadata(r.Context(), r))
	out := s.reporter.Send(ctx, req.To, req.Subject)

	status := http.StatusOK
	switch {
	case out.Invalid():
		status = http.StatusUnprocessableEntity
	case !out.OK:
		status = http.StatusBadGateway
	}
	writeJSON(w, status, reportReply{OK: out.OK, Message: out.Message, ReportID: out.ReportID})
}

func decodeReportRequest(r *http.Request) (reportRequest, error) {
	var req reportRequest
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		err := json.NewDecoder(r.Body).Decode(&req)
		return req, err
	}
	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.To = r.PostForm.Get("to")
	req.Subject = r.PostForm.Get("subject")
	return req, nil
}

// handleHealth reports liveness plus a few counters.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	var reports core.InflightStatus
	if s.inflight != nil {
		reports = s.inflight.Status()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":            "ok",
		"records":           s.store.Len(),
		"reports_in_flight": reports.Active,
		"reports_total":     reports.Total,
	})
}
