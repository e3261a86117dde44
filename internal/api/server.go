package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	discoveryapi "github.com/futig/coach-backend/internal/api/discovery"
	"github.com/futig/coach-backend/internal/api/docs"
	"github.com/futig/coach-backend/internal/api/middleware"
	projectapi "github.com/futig/coach-backend/internal/api/project"
	"github.com/futig/coach-backend/internal/pkg/response"
)

// SetupRouter creates and configures the HTTP router. metricsHandler may be nil.
func SetupRouter(
	discoveryHandler *discoveryapi.Handler,
	projectHandler *projectapi.Handler,
	metricsHandler http.Handler,
	requestTimeout time.Duration,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS)
	r.Use(chimiddleware.Timeout(requestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, map[string]string{"status": "healthy"})
	})
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	docs.RegisterRoutes(r)

	discoveryapi.RegisterRoutes(r, discoveryHandler)
	projectapi.RegisterRoutes(r, projectHandler)

	return r
}
