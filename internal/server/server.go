// Package server provides the HTTP API for the platform.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/medbridge/medbridge/internal/assistant"
	"github.com/medbridge/medbridge/internal/search"
	"github.com/medbridge/medbridge/internal/store"
	"github.com/medbridge/medbridge/internal/summary"
)

// Config holds the HTTP listener settings
type Config struct {
	Host string
	Port int
}

// Server is the HTTP server for the platform API
type Server struct {
	pipeline   *search.Pipeline
	assistant  *assistant.Assistant
	summarizer *summary.Summarizer
	store      *store.Store
	config     Config
	logger     *log.Logger
	server     *http.Server
}

// New creates a server with the given dependencies
func New(
	pipeline *search.Pipeline,
	assistantSvc *assistant.Assistant,
	summarizer *summary.Summarizer,
	st *store.Store,
	config Config,
	logger *log.Logger,
) *Server {
	return &Server{
		pipeline:   pipeline,
		assistant:  assistantSvc,
		summarizer: summarizer,
		store:      st,
		config:     config,
		logger:     logger,
	}
}

// Router builds the chi router with all routes and middleware attached
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "X-Client-Info", "Apikey", "Content-Type"},
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", s.handleSearch)
		r.Post("/assistant/patient", s.handlePatientChat)
		r.Post("/assistant/researcher", s.handleResearcherChat)
		r.Post("/favorites/summary", s.handleFavoritesSummary)

		r.Get("/trials", s.handleListTrials)
		r.Post("/trials", s.handleCreateTrial)
		r.Get("/trials/{id}", s.handleGetTrial)

		r.Get("/researchers", s.handleListResearchers)
		r.Post("/researchers", s.handleCreateResearcher)
		r.Get("/researchers/{id}", s.handleGetResearcher)

		r.Get("/questions", s.handleListQuestions)
		r.Post("/questions", s.handleCreateQuestion)
		r.Get("/questions/{id}", s.handleGetQuestion)
		r.Get("/questions/{id}/answers", s.handleListAnswers)
		r.Post("/questions/{id}/answers", s.handleCreateAnswer)

		r.Get("/publications", s.handleListPublications)
		r.Post("/publications", s.handleCreatePublication)
		r.Get("/publications/{id}", s.handleGetPublication)

		r.Post("/patients", s.handleUpsertPatient)
		r.Get("/patients/{userID}", s.handleGetPatient)

		r.Get("/users/{userID}/favorites", s.handleListFavorites)
		r.Post("/users/{userID}/favorites", s.handleAddFavorite)
		r.Delete("/users/{userID}/favorites/{itemType}/{itemID}", s.handleRemoveFavorite)

		r.Post("/conversations", s.handleFindOrCreateConversation)
		r.Get("/conversations/{id}/messages", s.handleListMessages)
		r.Post("/conversations/{id}/messages", s.handleSendMessage)
		r.Post("/conversations/{id}/read", s.handleMarkRead)

		r.Get("/collaboration-requests", s.handleListCollaborations)
		r.Post("/collaboration-requests", s.handleCreateCollaboration)
		r.Patch("/collaboration-requests/{id}", s.handleUpdateCollaboration)
	})
	r.Get("/health", s.handleHealth)

	return r
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", "addr", addr)
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
