// Package server provides the HTTP API for Shiken.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/shiken/internal/agent"
	"github.com/hyperjump/shiken/internal/config"
	"github.com/hyperjump/shiken/internal/pipeline"
	"github.com/hyperjump/shiken/internal/storage"
)

// Server is the HTTP server for the Shiken API. The generation agents may be
// nil, in which case the generation endpoints respond 503.
type Server struct {
	pipeline    *pipeline.Pipeline
	uploads     *storage.UploadManager
	testAgent   *agent.TestCaseAgent
	scriptAgent *agent.ScriptAgent
	config      *config.Config
	logger      *zap.Logger
	server      *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	pl *pipeline.Pipeline,
	uploads *storage.UploadManager,
	testAgent *agent.TestCaseAgent,
	scriptAgent *agent.ScriptAgent,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		pipeline:    pl,
		uploads:     uploads,
		testAgent:   testAgent,
		scriptAgent: scriptAgent,
		config:      cfg,
		logger:      logger,
	}
}

// Router builds the chi router with all API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/health", s.handleHealth)

	r.Post("/api/v1/documents", s.handleUploadDocuments)
	r.Post("/api/v1/markup", s.handleUploadMarkup)
	r.Get("/api/v1/documents", s.handleListDocuments)
	r.Delete("/api/v1/documents/{id}", s.handleDeleteDocument)
	r.Delete("/api/v1/documents", s.handleClearDocuments)

	r.Post("/api/v1/knowledge/build", s.handleBuild)
	r.Get("/api/v1/knowledge/stats", s.handleStats)
	r.Post("/api/v1/query", s.handleQuery)
	r.Get("/api/v1/selectors", s.handleSelectors)

	r.Post("/api/v1/testcases", s.handleGenerateTestCases)
	r.Post("/api/v1/scripts", s.handleGenerateScript)

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
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
