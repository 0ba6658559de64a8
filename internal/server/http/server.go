// Package httpserver provides the HTTP REST API server for the catalog service.
package httpserver

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/libraria/catalog-service/internal/database"
	"github.com/libraria/catalog-service/internal/domain"
	"github.com/libraria/catalog-service/internal/observability"
	"github.com/libraria/catalog-service/internal/repository"
	"github.com/libraria/catalog-service/internal/service"
)

// AuthorService defines the author operations used by the HTTP server.
type AuthorService interface {
	Create(ctx context.Context, input *service.AuthorInput) (*domain.Author, error)
	GetByID(ctx context.Context, id int64) (*domain.Author, error)
	List(ctx context.Context, filter *repository.AuthorFilter) (*service.Page[*domain.Author], error)
	UpdateByID(ctx context.Context, id int64, input *service.AuthorInput) (*domain.Author, error)
	DeleteByID(ctx context.Context, id int64) error
}

// GenreService defines the genre operations used by the HTTP server.
type GenreService interface {
	Create(ctx context.Context, input *service.GenreInput) (*domain.Genre, error)
	GetByID(ctx context.Context, id int64) (*domain.Genre, error)
	List(ctx context.Context, filter *repository.GenreFilter) (*service.Page[*domain.Genre], error)
	UpdateByID(ctx context.Context, id int64, input *service.GenreInput) (*domain.Genre, error)
	DeleteByID(ctx context.Context, id int64) error
}

// BookService defines the book operations used by the HTTP server.
type BookService interface {
	Create(ctx context.Context, input *service.BookInput) (*domain.Book, error)
	GetByID(ctx context.Context, id int64) (*domain.Book, error)
	List(ctx context.Context, filter *repository.BookFilter) (*service.Page[*domain.Book], error)
	UpdateByID(ctx context.Context, id int64, input *service.BookInput) (*domain.Book, error)
	DeleteByID(ctx context.Context, id int64) error
	UploadBooks(ctx context.Context, r io.Reader) (*domain.UploadResult, error)
	ExportReport(ctx context.Context, filter *repository.BookFilter, w io.Writer) (int, error)
}

// Server is the HTTP REST API server.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	authors    AuthorService
	genres     GenreService
	books      BookService
	db         *database.DB
	metrics    *observability.Metrics
	logger     zerolog.Logger

	maxUploadBytes int64
	metricsPath    string
	metricsOn      bool
}

// Config holds HTTP server configuration.
type Config struct {
	Address        string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxUploadBytes int64
	MetricsEnabled bool
	MetricsPath    string
}

// NewServer creates a new HTTP server with all dependencies.
func NewServer(
	cfg Config,
	authors AuthorService,
	genres GenreService,
	books BookService,
	db *database.DB,
	metrics *observability.Metrics,
	logger zerolog.Logger,
) *Server {
	s := &Server{
		authors:        authors,
		genres:         genres,
		books:          books,
		db:             db,
		metrics:        metrics,
		logger:         logger.With().Str("component", "http-server").Logger(),
		maxUploadBytes: cfg.MaxUploadBytes,
		metricsPath:    cfg.MetricsPath,
		metricsOn:      cfg.MetricsEnabled,
	}

	s.router = s.buildRouter()

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

// buildRouter creates the chi router with all middleware and routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestIDMiddleware)
	r.Use(s.observeMiddleware)

	// Operational endpoints
	r.Get("/healthz", s.healthHandler)
	r.Get("/readyz", s.readinessHandler)
	if s.metricsOn {
		path := s.metricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/authors", func(r chi.Router) {
			r.Post("/", s.createAuthor)
			r.Post("/_list", s.listAuthors)
			r.Get("/{id}", s.getAuthor)
			r.Put("/{id}", s.updateAuthor)
			r.Delete("/{id}", s.deleteAuthor)
		})
		r.Route("/genres", func(r chi.Router) {
			r.Post("/", s.createGenre)
			r.Post("/_list", s.listGenres)
			r.Get("/{id}", s.getGenre)
			r.Put("/{id}", s.updateGenre)
			r.Delete("/{id}", s.deleteGenre)
		})
		r.Route("/books", func(r chi.Router) {
			r.Post("/", s.createBook)
			r.Post("/_list", s.listBooks)
			r.Post("/_report", s.exportBookReport)
			r.Post("/upload", s.uploadBooks)
			r.Get("/{id}", s.getBook)
			r.Put("/{id}", s.updateBook)
			r.Delete("/{id}", s.deleteBook)
		})
	})

	return r
}

// Router exposes the configured router, primarily for tests.
func (s *Server) Router() chi.Router {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.httpServer.Addr).Msg("HTTP server starting")
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on HTTP address: %w", err)
	}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// healthHandler returns basic liveness status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	health := s.db.Health(r.Context())
	if health.Status == "healthy" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "database": health.Status})
		return
	}
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{
		"status":   "unhealthy",
		"database": health.Status,
		"error":    health.Error,
	})
}

// readinessHandler reports whether the server can take traffic.
func (s *Server) readinessHandler(w http.ResponseWriter, r *http.Request) {
	health := s.db.Health(r.Context())
	if health.Status != "healthy" {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "not_ready",
			"database": health.Status,
			"error":    health.Error,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ready",
		"database": "healthy",
	})
}
