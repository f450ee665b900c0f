// Package web exposes the face recognition core over HTTP. The API trusts
// the owner id in the URL; authenticating the caller is a gateway concern,
// not handled here.
package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/kozaktomas/faceid/internal/face"
	"github.com/kozaktomas/faceid/internal/web/handlers"
)

// Server represents the web server.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
}

// NewServer creates a new web server wired to the recognition core.
func NewServer(
	port int, host string,
	service *face.RecognitionService,
	manager *face.EnrollmentManager,
	cache *face.EncodingCache,
	store face.EncodingStore,
	index *face.Index,
) *Server {
	r := chi.NewRouter()

	s := &Server{router: r}

	// Set up middleware stack.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         86400,
	}))

	s.setupRoutes(service, manager, cache, store, index)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupRoutes(
	service *face.RecognitionService,
	manager *face.EnrollmentManager,
	cache *face.EncodingCache,
	store face.EncodingStore,
	index *face.Index,
) {
	facesHandler := handlers.NewFacesHandler(manager, store)
	authHandler := handlers.NewAuthHandler(service)
	statsHandler := handlers.NewStatsHandler(cache, index)

	// Health check (no auth required).
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Enrollment
		r.Post("/users/{ownerID}/faces", facesHandler.Enroll)
		r.Get("/users/{ownerID}/faces", facesHandler.List)
		r.Delete("/users/{ownerID}/faces/{recordID}", facesHandler.Remove)

		// Recognition
		r.Post("/users/{ownerID}/authenticate", authHandler.Authenticate)
		r.Post("/identify", authHandler.Identify)

		// Observability
		r.Get("/stats", statsHandler.Stats)
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	log.Printf("Starting web server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down web server...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// Router returns the chi router, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}
