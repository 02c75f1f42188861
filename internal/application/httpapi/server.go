// Package httpapi serves the read API over company histories and snapshots.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dchaplinsky/edrdr/internal/domain/entities"
	"github.com/dchaplinsky/edrdr/internal/domain/services"
)

// Server wires the HTTP endpoints to the domain services.
type Server struct {
	registry   *services.RegistryService
	history    *services.HistoryService
	batch      *services.BatchRunner
	computer   *services.SnapshotComputer
	metrics    http.Handler
	massCutoff int
	logger     *slog.Logger
}

// Config collects the dependencies of a Server. Metrics may be nil.
type Config struct {
	Registry   *services.RegistryService
	History    *services.HistoryService
	Batch      *services.BatchRunner
	Computer   *services.SnapshotComputer
	Metrics    http.Handler
	MassCutoff int
	Logger     *slog.Logger
}

// New constructs a Server.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{
		registry:   cfg.Registry,
		history:    cfg.History,
		batch:      cfg.Batch,
		computer:   cfg.Computer,
		metrics:    cfg.Metrics,
		massCutoff: cfg.MassCutoff,
		logger:     logger,
	}
}

// Routes returns the router with every endpoint mounted.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/revisions", s.handleRevisions)
	r.Route("/companies/{id}", func(r chi.Router) {
		r.Get("/periods", s.handleCompanyPeriods)
		r.Get("/persons/periods", s.handlePersonPeriods)
		r.Get("/snapshots", s.handleSnapshots)
		r.Post("/snapshots/{revision}", s.handleComputeSnapshot)
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	return r
}

func (s *Server) handleRevisions(w http.ResponseWriter, r *http.Request) {
	revisions, err := s.registry.Revisions(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, revisions)
}

func (s *Server) handleCompanyPeriods(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyParam(w, r)
	if !ok {
		return
	}
	periods, err := s.history.CompanyPeriods(r.Context(), companyID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, periods)
}

func (s *Server) handlePersonPeriods(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyParam(w, r)
	if !ok {
		return
	}
	roles, err := parseRoles(r.URL.Query().Get("role"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	periods, err := s.history.PersonPeriods(r.Context(), companyID, roles...)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, periods)
}

func (s *Server) handleSnapshots(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyParam(w, r)
	if !ok {
		return
	}
	flags, err := s.history.Snapshots(r.Context(), companyID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if flags == nil {
		flags = []entities.SnapshotFlags{}
	}
	writeJSON(w, http.StatusOK, flags)
}

func (s *Server) handleComputeSnapshot(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyParam(w, r)
	if !ok {
		return
	}
	revision, err := strconv.ParseInt(chi.URLParam(r, "revision"), 10, 64)
	if err != nil || revision <= 0 {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid revision id"})
		return
	}
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))

	ctx := r.Context()
	in, revisionID, err := s.batch.Prepare(ctx, entities.RevisionID(revision), s.massCutoff)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	flags, err := s.computer.ComputeSnapshot(ctx, companyID, revisionID, force, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, flags)
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed",
			"request_id", middleware.GetReqID(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, entities.ErrCompanyNotFound), errors.Is(err, entities.ErrRevisionNotFound):
		return http.StatusNotFound
	case errors.Is(err, entities.ErrUnknownStatus),
		errors.Is(err, entities.ErrUnknownRevision),
		errors.Is(err, entities.ErrUnknownRole):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func companyParam(w http.ResponseWriter, r *http.Request) (entities.CompanyID, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid company id"})
		return 0, false
	}
	return entities.CompanyID(id), true
}

// parseRoles reads a comma separated role list such as "owner,founder".
func parseRoles(s string) ([]entities.Role, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var roles []entities.Role
	for _, part := range strings.Split(s, ",") {
		role, err := entities.ParseRole(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.InfoContext(r.Context(), "request",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
