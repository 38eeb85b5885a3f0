package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dgallion1/lessonplan/internal/auth"
	"github.com/dgallion1/lessonplan/internal/config"
	"github.com/dgallion1/lessonplan/internal/docexport"
	"github.com/dgallion1/lessonplan/internal/generate"
	"github.com/dgallion1/lessonplan/internal/pipeline"
	"github.com/dgallion1/lessonplan/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API for lesson plan generation and export.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	gen          *generate.Service
	plans        store.Store
	verifier     auth.Verifier
	converter    *docexport.Converter
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
// A nil converter uses the default speaker vocabulary.
func NewServer(orch *pipeline.Orchestrator, gen *generate.Service, plans store.Store, verifier auth.Verifier, conv *docexport.Converter, log *slog.Logger, cfg config.Config) *Server {
	if conv == nil {
		conv = docexport.NewConverter(docexport.DefaultVocabulary())
	}
	s := &Server{
		orchestrator: orch,
		gen:          gen,
		plans:        plans,
		verifier:     verifier,
		converter:    conv,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(s.verifier, s.log))

		r.Post("/api/lessons", s.handleLesson)
		r.Post("/api/initiatives", s.handleInitiative)
		r.Get("/api/jobs/{jobID}", s.handleJobStatus)
		r.Post("/api/samples", s.handleSample)

		r.Get("/api/plans", s.handleListPlans)
		r.Post("/api/plans", s.handleCreatePlan)
		r.Get("/api/plans/{planID}", s.handleGetPlan)
		r.Delete("/api/plans/{planID}", s.handleDeletePlan)
		r.Get("/api/plans/{planID}/export", s.handleExportPlan)
		r.Get("/api/plans/{planID}/preview", s.handlePreviewPlan)

		r.Post("/api/export", s.handleExport)
		r.Post("/api/settings/check", s.handleSettingsCheck)
		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}

// userContext returns the authenticated user and a context carrying the
// user's token for the plan store.
func userContext(r *http.Request) (context.Context, auth.User) {
	u, _ := auth.UserFrom(r.Context())
	return store.WithToken(r.Context(), u.Token), u
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
