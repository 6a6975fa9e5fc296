package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/archlayout/pkg/buildinfo"
	"github.com/matzehuels/archlayout/pkg/diagram"
	"github.com/matzehuels/archlayout/pkg/errors"
	"github.com/matzehuels/archlayout/pkg/observability"
	"github.com/matzehuels/archlayout/pkg/pipeline"
)

// CacheHeader reports whether a layout came from the cache ("hit" or "miss").
const CacheHeader = "X-Cache"

var contentTypes = map[string]string{
	pipeline.FormatJSON: "application/json",
	pipeline.FormatYAML: "application/yaml",
	pipeline.FormatDOT:  "text/vnd.graphviz",
	pipeline.FormatSVG:  "image/svg+xml",
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// handleLayout lays out the document posted in the request body.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	format := diagram.FormatJSON
	if ct, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err == nil && strings.Contains(ct, "yaml") {
		format = diagram.FormatYAML
	}

	doc, err := pipeline.Decode(http.MaxBytesReader(w, r.Body, maxBodyBytes), format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondLayout(w, r, doc)
}

// handleDocument lays out a document stored below the documents directory.
func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	rel := chi.URLParam(r, "*")
	if err := errors.ValidatePath(rel); err != nil {
		s.writeError(w, r, err)
		return
	}

	doc, err := pipeline.Load(filepath.Join(s.docsDir, filepath.FromSlash(rel)))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondLayout(w, r, doc)
}

func (s *Server) respondLayout(w http.ResponseWriter, r *http.Request, doc *diagram.Document) {
	q := r.URL.Query()
	format := strings.ToLower(q.Get("format"))
	if format == "" {
		format = pipeline.FormatJSON
	}
	refresh, _ := strconv.ParseBool(q.Get("refresh"))

	direction := q.Get("direction")
	if direction == "" && doc.Direction == "" {
		direction = s.direction
	}

	opts := pipeline.Options{
		Direction: direction,
		Formats:   []string{format},
		Refresh:   refresh,
		Logger:    s.logger,
	}
	result, err := s.runner.Execute(r.Context(), doc, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	cacheStatus := "miss"
	if result.CacheInfo.LayoutHit {
		cacheStatus = "hit"
	}
	w.Header().Set(CacheHeader, cacheStatus)
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError maps err to a status code and writes it as JSON.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	status := statusFor(err)
	observability.HTTP().OnError(ctx, r.Method, routePattern(r), err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "id", RequestIDFrom(ctx), "err", err)
	}

	writeJSON(w, status, errorResponse{
		Error:     errors.UserMessage(err),
		Code:      string(errors.GetCode(err)),
		RequestID: RequestIDFrom(ctx),
	})
}

// statusFor maps error codes to HTTP status codes.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case stderrors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case stderrors.Is(err, context.Canceled):
		return 499
	}

	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidDocument, errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidDirection, errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
