package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/mode"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/request"
	healthuc "github.com/datakaveri/tgdex-catalogue-server-sub000/internal/usecase/health"
	searchuc "github.com/datakaveri/tgdex-catalogue-server-sub000/internal/usecase/search"
)

// Error codes not derived from a domain error kind.
const (
	codeBadRequest   = "bad_request"
	codeUnauthorized = "unauthorized"
)

// maxBodyBytes caps search request bodies.
const maxBodyBytes = 1 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the catalogue search API.
type Server struct {
	search        *searchuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search *searchuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		search: search,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		kindHandler(domain.ErrInvalidSyntax, http.StatusBadRequest),
		kindHandler(domain.ErrInvalidPropertyValue, http.StatusBadRequest),
		kindHandler(domain.ErrInvalidGeoParam, http.StatusBadRequest),
		kindHandler(domain.ErrInvalidGeoValue, http.StatusBadRequest),
		kindHandler(domain.ErrBadTextQuery, http.StatusBadRequest),
		kindHandler(domain.ErrBadFilter, http.StatusBadRequest),
		kindHandler(domain.ErrOperationNotAllowed, http.StatusBadRequest),
		kindHandler(domain.ErrNotFound, http.StatusNotFound),
	}
	return s
}

// Search handles POST /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var body searchRequest
	if !s.decode(w, r, &body) {
		return
	}
	req, err := body.toDomain(true, false)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	m := mode.SourceWithID
	if v := r.URL.Query().Get("mode"); v != "" {
		m = mode.Result(v)
	}

	resp, err := s.search.Search(r.Context(), &req, m)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, searchResponseFrom(&resp))
}

// Count handles POST /count.
func (s *Server) Count(w http.ResponseWriter, r *http.Request) {
	var body searchRequest
	if !s.decode(w, r, &body) {
		return
	}
	req, err := body.toDomain(false, true)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	total, err := s.search.Count(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{TotalHits: total})
}

// List handles POST /list.
func (s *Server) List(w http.ResponseWriter, r *http.Request) {
	var body listRequest
	if !s.decode(w, r, &body) {
		return
	}
	l, err := request.NewList(body.toParams())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	s.list(w, r, &l)
}

// ListType handles GET /list/{itemType}.
func (s *Server) ListType(w http.ResponseWriter, r *http.Request) {
	p, err := listParamsFromQuery(chi.URLParam(r, "itemType"), r.URL.Query())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	l, err := request.NewList(p)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	s.list(w, r, &l)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request, l *request.List) {
	m := mode.Keys
	if v := r.URL.Query().Get("mode"); v != "" {
		m = mode.Facets(v)
	}
	facets, err := s.search.List(r.Context(), l, m)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Results: facetsJSON(&facets)})
}

// ParentInfo handles GET /items/{id}/parent.
func (s *Server) ParentInfo(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	item, err := s.search.ParentInfo(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, itemJSON(&item))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// kindHandler returns an errorHandler that matches a single error kind.
// The client sees the kind name and the validation detail only.
func kindHandler(kind error, status int) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, kind) {
			return false
		}
		writeError(w, status, domain.KindName(err), clientMessage(err))
		return true
	}
}

// clientMessage returns the validation detail, or the bare kind for wrapped backend errors.
func clientMessage(err error) string {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return ve.Detail
	}
	return domain.KindOf(err).Error()
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Debug("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, domain.KindName(domain.ErrInternal), "internal error")
}
