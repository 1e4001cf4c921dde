package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/reportcsv/internal/config"
	"github.com/dgallion1/reportcsv/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for reportcsv.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	page         []byte
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, log *slog.Logger, cfg config.Config) (*Server, error) {
	page, err := renderPage(cfg)
	if err != nil {
		return nil, err
	}
	s := &Server{
		orchestrator: orch,
		page:         page,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s, nil
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
	r.Get("/", s.handlePage)

	// Authenticated endpoints. An empty key leaves the API open.
	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Post("/api/convert", s.handleConvert)
		r.Post("/api/convert/csv", s.handleConvertCSV)
		r.Get("/api/convert/{batchID}", s.handleConvertStatus)
		r.Get("/api/convert/{batchID}/preview", s.handlePreview)
		r.Get("/api/convert/{batchID}/csv", s.handleDownload)
		r.Delete("/api/convert/{batchID}", s.handleDiscard)

		r.Get("/api/fields", s.handleFields)
		r.Get("/api/stats", s.handleStats)
		r.Get("/api/history", s.handleHistory)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
