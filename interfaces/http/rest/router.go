package rest

import (
	"net/http"

	"snipgraph-backend/infrastructure/config"
	"snipgraph-backend/interfaces/http/rest/handlers"
	"snipgraph-backend/interfaces/http/rest/middleware"
	"snipgraph-backend/pkg/auth"
	"snipgraph-backend/pkg/observability"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Router wires the handlers into the HTTP surface
type Router struct {
	cfg         *config.Config
	validator   *auth.JWTValidator
	tracer      *observability.Tracer
	projects    *handlers.ProjectHandler
	snippets    *handlers.SnippetHandler
	connections *handlers.ConnectionHandler
	graph       *handlers.GraphHandler
	logger      *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	cfg *config.Config,
	validator *auth.JWTValidator,
	tracer *observability.Tracer,
	projects *handlers.ProjectHandler,
	snippets *handlers.SnippetHandler,
	connections *handlers.ConnectionHandler,
	graph *handlers.GraphHandler,
	logger *zap.Logger,
) *Router {
	return &Router{
		cfg:         cfg,
		validator:   validator,
		tracer:      tracer,
		projects:    projects,
		snippets:    snippets,
		connections: connections,
		graph:       graph,
		logger:      logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(rt.tracer.Handler)
	router.Use(middleware.Recoverer(rt.logger))
	router.Use(middleware.RequestLogger(rt.logger))

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "https://*.snipgraph.app"},
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	router.Route("/api/v1", func(r chi.Router) {
		if rt.cfg.IsLambda {
			r.Use(middleware.AuthenticateForLambda(rt.logger))
		} else {
			r.Use(middleware.Authenticate(rt.validator, rt.logger))
		}

		r.Route("/projects", func(r chi.Router) {
			r.Post("/", rt.projects.Create)
			r.Get("/", rt.projects.List)

			r.Route("/{projectID}", func(r chi.Router) {
				r.Get("/", rt.projects.Get)
				r.Delete("/", rt.projects.Delete)

				r.Route("/snippets", func(r chi.Router) {
					r.Post("/", rt.snippets.Create)
					r.Get("/", rt.snippets.List)
					r.Get("/{snippetID}", rt.snippets.Get)
					r.Patch("/{snippetID}", rt.snippets.Update)
					r.Delete("/{snippetID}", rt.snippets.Delete)
					r.Get("/{snippetID}/versions", rt.snippets.History)
					r.Get("/{snippetID}/propagation", rt.graph.SnippetPropagation)
					r.Post("/{snippetID}/combine", rt.graph.Combine)
				})

				r.Route("/connections", func(r chi.Router) {
					r.Post("/", rt.connections.Create)
					r.Get("/", rt.connections.List)
					r.Delete("/{connectionID}", rt.connections.Delete)
				})

				r.Get("/propagation", rt.graph.Propagation)
			})
		})
	})

	return router
}

func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
