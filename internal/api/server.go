// Package api provides the HTTP API server and handlers for the OpenShelf catalog.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/openshelf/openshelf-server/internal/service"
)

// Version is the API version reported in the OpenAPI document.
const Version = "1.0.0"

// Services groups the business logic services used by the API server.
type Services struct {
	Genre *service.GenreService
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store            service.GenreStore
	services         *Services
	router           *chi.Mux
	api              huma.API
	logger           *slog.Logger
	writeRateLimiter *RateLimiter
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(store service.GenreStore, services *Services, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	// Mutating routes share one per-IP budget; reads are unthrottled.
	// Must be installed before humachi.New mounts the OpenAPI routes.
	writeRateLimiter := NewRateLimiter(60, time.Minute, 20)
	router.Use(WriteRateLimitMiddleware(writeRateLimiter, logger))

	humaConfig := huma.DefaultConfig("OpenShelf API", Version)
	api := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		store:            store,
		services:         services,
		router:           router,
		api:              api,
		logger:           logger,
		writeRateLimiter: writeRateLimiter,
	}

	s.registerHealthRoutes()
	s.registerGenreRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases server-held resources.
func (s *Server) Close() {
	s.writeRateLimiter.Stop()
}
