// Package api exposes exam authoring and delivery over HTTP.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/abhisek/examiz/internal/authoring"
	"github.com/abhisek/examiz/internal/evaluator"
	"github.com/abhisek/examiz/internal/session"
)

// UserHeader carries the caller's identity. Authentication happens
// upstream; the API only enforces ownership.
const UserHeader = "X-User-ID"

// Options tunes the HTTP server.
type Options struct {
	CORSOrigins     []string
	CORSCredentials bool
	RequestTimeout  time.Duration
	Logger          *slog.Logger
}

// Server routes HTTP requests to the authoring and session services.
type Server struct {
	authoring *authoring.Service
	sessions  *session.Service
	reviewer  *evaluator.Reviewer // nil when no LLM is configured
	logger    *slog.Logger
	router    chi.Router

	countdownTick time.Duration
}

// New builds the router. reviewer may be nil.
func New(auth *authoring.Service, sessions *session.Service, reviewer *evaluator.Reviewer, opts Options) *Server {
	s := &Server{
		authoring:     auth,
		sessions:      sessions,
		reviewer:      reviewer,
		logger:        opts.Logger,
		countdownTick: time.Second,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, s.requestLogger, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", UserHeader},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: opts.CORSCredentials,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	timeout := middleware.Timeout(opts.RequestTimeout)

	r.Group(func(r chi.Router) {
		r.Use(requireUser)

		r.Route("/sessions/{id}", func(r chi.Router) {
			// Long-lived socket; exempt from the request timeout.
			r.Get("/countdown", s.countdown)

			r.Group(func(r chi.Router) {
				r.Use(timeout)
				r.Get("/", s.getSession)
				r.Put("/answers/{questionID}", s.recordAnswer)
				r.Get("/time-remaining", s.timeRemaining)
				r.Post("/submit", s.submitSession)
				r.Get("/results", s.sessionResults)
				r.Get("/review", s.sessionReview)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(timeout)

			r.Get("/subjects", s.listSubjects)

			r.Route("/exams", func(r chi.Router) {
				r.Post("/", s.createExam)
				r.Get("/", s.listExams)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.getExam)
					r.Post("/publish", s.publishExam)
					r.Post("/unpublish", s.unpublishExam)
					r.Post("/regenerate", s.regenerateExam)
					r.Get("/results", s.examResults)
					r.Get("/stats", s.examStats)
					r.Post("/sessions", s.startSession)
				})
			})

			r.Post("/questions/{id}/variations", s.questionVariations)
			r.Get("/students/me/history", s.history)
		})
	})

	s.router = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// requestLogger logs one line per request through slog.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// requireUser rejects requests without an identity header.
func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(UserHeader) == "" {
			writeErr(w, http.StatusUnauthorized, UserHeader+" header required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func userID(r *http.Request) string {
	return r.Header.Get(UserHeader)
}
