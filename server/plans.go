package server

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cyp0633/termplan/export"
	"github.com/cyp0633/termplan/plan"
	"github.com/cyp0633/termplan/planner/date"
	"github.com/cyp0633/termplan/planner/session"
	"github.com/cyp0633/termplan/server/storage"
)

// PlanInfo is one entry of the plan list.
type PlanInfo struct {
	ID         string `json:"id"`
	CourseName string `json:"course_name"`
	CourseCode string `json:"course_code,omitempty"`
	ETag       string `json:"etag"`
}

// PlanResponse is the body of GET /plans/{id}.
type PlanResponse struct {
	ID      string          `json:"id"`
	Summary session.Summary `json:"summary"`
	Catalog []string        `json:"catalog"`
}

// WeekResponse is one week of GET /plans/{id}/weeks.
type WeekResponse struct {
	Week  int           `json:"week"`
	Dates []DayResponse `json:"dates"`
}

// DayResponse is a teaching day and its topics.
type DayResponse struct {
	Date   date.Date `json:"date"`
	Topics []string  `json:"topics"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	plans, err := h.store.ListPlans(r.Context())
	if err != nil {
		h.sendError(w, r, err)
		return
	}

	items := make([]PlanInfo, 0, len(plans))
	for _, p := range plans {
		items = append(items, PlanInfo{
			ID:         p.ID,
			CourseName: p.Definition.Course.Name,
			CourseCode: p.Definition.Course.Code,
			ETag:       p.ETag,
		})
	}
	h.writeJSON(w, r, http.StatusOK, "", items)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	p, s, err := h.loadSession(r)
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, p.ETag, PlanResponse{
		ID:      p.ID,
		Summary: s.Summary(),
		Catalog: s.Catalog().Labels(),
	})
}

func (h *Handler) handlePut(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	// read fully first; the YAML decoder flattens reader errors
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.config.MaxBodyBytes))
	if err != nil {
		if errors.As(err, new(*http.MaxBytesError)) {
			h.sendError(w, r, &HTTPError{Status: ErrPlanTooLarge.Status, Message: ErrPlanTooLarge.Message, Err: err})
			return
		}
		h.sendError(w, r, &HTTPError{Status: ErrInvalidPlan.Status, Message: ErrInvalidPlan.Message, Err: err})
		return
	}
	def, err := plan.Parse(bytes.NewReader(body))
	if err != nil {
		h.sendError(w, r, &HTTPError{Status: ErrInvalidPlan.Status, Message: ErrInvalidPlan.Message, Err: err})
		return
	}

	p, created, err := h.store.PutPlan(r.Context(), id, def)
	if err != nil {
		h.sendError(w, r, storageError(err))
		return
	}
	h.logger.Info("plan stored", "id", id, "etag", p.ETag, "created", created)

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	h.writeJSON(w, r, status, p.ETag, PlanInfo{
		ID:         p.ID,
		CourseName: def.Course.Name,
		CourseCode: def.Course.Code,
		ETag:       p.ETag,
	})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeletePlan(r.Context(), r.PathValue("id")); err != nil {
		h.sendError(w, r, storageError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleWeeks(w http.ResponseWriter, r *http.Request) {
	p, s, err := h.loadSession(r)
	if err != nil {
		h.sendError(w, r, err)
		return
	}

	weeks := make([]WeekResponse, 0)
	for idx, dates := range s.Weeks().All() {
		wk := WeekResponse{Week: idx, Dates: make([]DayResponse, 0, len(dates))}
		for _, d := range dates {
			topics := s.Notes().Of(d)
			if topics == nil {
				topics = []string{}
			}
			wk.Dates = append(wk.Dates, DayResponse{Date: d, Topics: topics})
		}
		weeks = append(weeks, wk)
	}
	h.writeJSON(w, r, http.StatusOK, p.ETag, weeks)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.PathValue("format"))
	if err != nil {
		h.sendError(w, r, &HTTPError{Status: ErrUnknownFormat.Status, Message: ErrUnknownFormat.Message, Err: err})
		return
	}

	p, err := h.store.GetPlan(r.Context(), r.PathValue("id"))
	if err != nil {
		h.sendError(w, r, storageError(err))
		return
	}

	etag := exportETag(p.ETag, format)
	if match := r.Header.Get(headerIfNoneMatch); etagMatches(match, etag) {
		// ETag matches, return 304 Not Modified
		w.Header().Set(headerETag, etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	s, err := p.Definition.Build(h.holidays, h.engine, session.WithLogger(h.logger))
	if err != nil {
		h.sendError(w, r, &HTTPError{Status: ErrInvalidPlan.Status, Message: ErrInvalidPlan.Message, Err: err})
		return
	}

	doc := export.FromSession(s)
	var buf bytes.Buffer
	if format == export.FormatICS {
		err = export.WriteICS(&buf, doc, h.config.ICS)
	} else {
		err = export.Write(format, &buf, doc)
	}
	if err != nil {
		h.sendError(w, r, fmt.Errorf("export %s as %s: %w", p.ID, format, err))
		return
	}

	w.Header().Set(headerContentType, format.ContentType())
	w.Header().Set("Content-Length", fmt.Sprint(buf.Len()))
	w.Header().Set(headerETag, etag)
	w.Header().Set(headerDisposition, fmt.Sprintf("attachment; filename=%q", format.Filename(doc.CourseName)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("failed to write response", "error", err, "path", r.URL.Path)
	}
}

// loadSession fetches the plan named in the path and builds its session.
func (h *Handler) loadSession(r *http.Request) (*storage.Plan, *session.Session, error) {
	p, err := h.store.GetPlan(r.Context(), r.PathValue("id"))
	if err != nil {
		return nil, nil, storageError(err)
	}
	s, err := p.Definition.Build(h.holidays, h.engine, session.WithLogger(h.logger))
	if err != nil {
		err = fmt.Errorf("build plan %s: %w", p.ID, err)
		return nil, nil, &HTTPError{Status: ErrInvalidPlan.Status, Message: ErrInvalidPlan.Message, Err: err}
	}
	return p, s, nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, etag string, v any) {
	w.Header().Set(headerContentType, mimeTypeJSON)
	if etag != "" {
		w.Header().Set(headerETag, etag)
	}
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", "error", err, "path", r.URL.Path)
	}
}

// storageError maps storage errors onto HTTP statuses.
func storageError(err error) error {
	switch {
	case storage.IsNotFound(err):
		return &HTTPError{Status: ErrNotFound.Status, Message: ErrNotFound.Message, Err: err}
	case storage.IsAlreadyExists(err):
		return &HTTPError{Status: http.StatusConflict, Message: "Plan already exists", Err: err}
	}
	var serr *storage.Error
	if errors.As(err, &serr) && serr.Type == storage.ErrInvalidInput {
		return &HTTPError{Status: ErrInvalidPlan.Status, Message: ErrInvalidPlan.Message, Err: err}
	}
	return err
}

// exportETag derives a per-format tag from the plan ETag.
func exportETag(planETag string, format export.Format) string {
	sum := sha1.Sum([]byte(planETag + "|" + string(format)))
	return `"` + hex.EncodeToString(sum[:]) + `"`
}

// etagMatches implements the If-None-Match comparison, including lists and
// the "*" wildcard.
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}
