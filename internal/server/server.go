// Package server provides the HTTP API the reader shell talks to.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/bunko/internal/config"
	"github.com/hyperjump/bunko/internal/library"
	"go.uber.org/zap"
)

// Server is the HTTP server for the Bunko API.
type Server struct {
	lib    *library.Library
	config *config.ServerConfig
	logger *zap.Logger
	server *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(lib *library.Library, cfg *config.ServerConfig, logger *zap.Logger) *Server {
	return &Server{
		lib:    lib,
		config: cfg,
		logger: logger,
	}
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/documents", s.handleAddDocument)
	r.Post("/api/v1/documents/html", s.handleIngestHTML)
	r.Get("/api/v1/files", s.handleListFiles)
	r.Get("/api/v1/files/*", s.handleReadText)
	r.Put("/api/v1/files/*", s.handleWrite)
	r.Delete("/api/v1/files/*", s.handleDelete)
	r.Get("/api/v1/blobs/*", s.handleReadBinary)
	r.Get("/api/v1/exists/*", s.handleExists)
	r.Get("/api/v1/root", s.handleRoot)
	r.Get("/api/v1/catalog", s.handleCatalog)
	r.Get("/api/v1/search", s.handleSearch)
	r.Get("/health", s.handleHealth)

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
