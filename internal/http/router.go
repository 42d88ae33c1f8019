package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"wikindex/internal/handlers"
	"wikindex/internal/metrics"
	"wikindex/internal/service"
	"wikindex/internal/storage"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	IndexService    service.IndexService
	ResourceService service.ResourceService
	StoryLoader     service.StoryLoader
	DB              handlers.Pinger
	Runs            storage.RunStore
	Wiki            handlers.BreakerStater
	Metrics         *metrics.Collector
	// CORSOrigins lists the allowed origins; empty allows all.
	CORSOrigins []string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	// Add chi middleware
	r.Use(middleware.RequestID)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}

	// Add CORS middleware
	r.Use(CORS(deps.CORSOrigins))

	indexHandler := handlers.NewIndexHandler(deps.IndexService)
	resourceHandler := handlers.NewResourceHandler(deps.ResourceService)
	storyHandler := handlers.NewStoryHandler(deps.StoryLoader)
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Runs, deps.Wiki)

	// Register API routes
	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/index", indexHandler)
		r.Get("/resources", resourceHandler.List)
		r.Get("/resources/{name}", resourceHandler.Get)
		r.Method(http.MethodGet, "/health", healthHandler)
	})

	r.Method(http.MethodGet, "/stories/{name}", storyHandler)

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	return r
}
