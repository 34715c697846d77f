package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/terra-clan/intern-engine/internal/auth"
	"github.com/terra-clan/intern-engine/internal/chat"
	"github.com/terra-clan/intern-engine/internal/config"
	"github.com/terra-clan/intern-engine/internal/engine"
	"github.com/terra-clan/intern-engine/internal/storage"
)

// Server represents the HTTP API server
type Server struct {
	config         config.ServerConfig
	router         *chi.Mux
	engine         *engine.Engine
	mentor         *chat.Mentor
	history        *chat.History
	repo           storage.Repository
	authManager    *auth.Manager
	authMiddleware *AuthMiddleware
}

// NewServer creates a new API server
func NewServer(
	cfg config.ServerConfig,
	eng *engine.Engine,
	mentor *chat.Mentor,
	history *chat.History,
	repo storage.Repository,
	authManager *auth.Manager,
) *Server {
	s := &Server{
		config:         cfg,
		engine:         eng,
		mentor:         mentor,
		history:        history,
		repo:           repo,
		authManager:    authManager,
		authMiddleware: NewAuthMiddleware(authManager, repo),
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check (outside versioned API - public)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/api/v1", func(r chi.Router) {
		// Public auth routes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
		})

		// Everything below requires a valid bearer token
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware.Authenticate)

			r.Route("/users/me", func(r chi.Router) {
				r.Get("/", s.handleGetProfile)
				r.Put("/", s.handleUpdateProfile)
				r.Get("/stats", s.handleGetStats)
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", s.handleListTasks)
				r.Post("/generate", s.handleGenerateTask)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetTask)
					r.Patch("/status", s.handleUpdateTaskStatus)
				})
			})

			r.Route("/evaluations", func(r chi.Router) {
				r.Get("/", s.handleListEvaluations)
				r.Post("/", s.handleCreateEvaluation)
				r.Get("/{id}", s.handleGetEvaluation)
			})

			r.Route("/mentor", func(r chi.Router) {
				r.Post("/chat", s.handleMentorChat)
				r.Get("/stream", s.handleMentorStream)
				r.Get("/sessions", s.handleListChatSessions)

				r.Route("/sessions/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetChatSession)
					r.Delete("/", s.handleDeleteChatSession)
				})
			})
		})
	})

	s.router = r
}

// loggingMiddleware logs HTTP requests using slog
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
