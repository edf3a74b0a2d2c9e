package chi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/metrics"
)

// RouterConfig holds router settings.
type RouterConfig struct {
	// Tokens maps bearer tokens to subjects.
	Tokens map[string]string
	// RequestTimeout bounds each request context. Zero disables it.
	RequestTimeout time.Duration
}

// NewRouter mounts the server's routes with the standard middleware chain.
func NewRouter(s *Server, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(BearerAuthMiddleware(cfg.Tokens))
	r.Use(wideEventMiddleware(s.logger))
	r.Use(metrics.Middleware())
	if cfg.RequestTimeout > 0 {
		r.Use(chiMiddleware.Timeout(cfg.RequestTimeout))
	}

	r.Post("/search", s.Search)
	r.Post("/count", s.Count)
	r.Post("/list", s.List)
	r.Get("/list/{itemType}", s.ListType)
	r.Get("/items/{id}/parent", s.ParentInfo)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeBadRequest, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeBadRequest, "method not allowed")
	})
	return r
}
