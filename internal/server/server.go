package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"graphion/internal/api"
	"graphion/internal/config"
	"graphion/internal/logging"
	"graphion/internal/pipeline"
	"graphion/internal/services"
)

// Runner runs one generation session.
type Runner interface {
	Run(ctx context.Context, prompt string) (pipeline.Result, error)
}

// StatusFunc reports runtime status for GET /api/status.
type StatusFunc func(ctx context.Context) api.ServerStatus

// Server is the HTTP surface.
type Server struct {
	runner       Runner
	status       StatusFunc
	publicDir    string
	maxBodyBytes int64
	logger       *slog.Logger
	router       chi.Router
}

// New builds the router. status may be nil, in which case only the
// configuration summary is reported.
func New(cfg *config.Config, runner Runner, status StatusFunc, logger *slog.Logger) *Server {
	s := &Server{
		runner:       runner,
		status:       status,
		publicDir:    cfg.Paths.PublicDir,
		maxBodyBytes: cfg.Server.MaxBodyBytes,
		logger:       logging.NewComponentLogger(logger, "http"),
	}
	if s.status == nil {
		s.status = func(context.Context) api.ServerStatus { return api.FromConfig(cfg) }
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestContext)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)

	r.With(maxBody(s.maxBodyBytes)).Post("/generate", s.handleGenerate)
	r.Get("/api/status", s.handleStatus)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/*", s.staticHandler())

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req api.GenerateRequest
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "Request body too large.")
			return
		}
		if errors.Is(err, io.EOF) {
			req = api.GenerateRequest{}
		} else {
			s.writeError(w, http.StatusBadRequest, services.MessageInvalidRequest)
			return
		}
	}

	res, err := s.runner.Run(r.Context(), req.Prompt)
	if err != nil {
		details := services.Details(err)
		logger := logging.WithContext(r.Context(), s.logger)
		if details.HTTPStatus >= http.StatusInternalServerError {
			logging.ErrorWithContext(logger, "generation failed", "generate_failed",
				logging.String("error_kind", details.Kind),
				logging.Error(err),
			)
		} else {
			logger.Info("generation rejected",
				logging.String(logging.FieldEventType, "generate_rejected"),
				logging.String("error_kind", details.Kind),
				logging.Error(err),
			)
		}
		s.writeError(w, details.HTTPStatus, details.Message)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromResult(res))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.status(r.Context()))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, api.HealthResponse{Status: "ok"})
}

// staticHandler serves the public directory without directory listings.
func (s *Server) staticHandler() http.Handler {
	files := http.FileServer(http.Dir(s.publicDir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			clean := path.Clean("/" + r.URL.Path)
			index := filepath.Join(s.publicDir, filepath.FromSlash(clean), "index.html")
			if _, err := os.Stat(index); err != nil {
				http.NotFound(w, r)
				return
			}
		}
		files.ServeHTTP(w, r)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}
