package web

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"forma-web/internal/infra/auth"
	"forma-web/internal/usecase"
)

// RateLimiter is the slice of the redis limiter the server needs; nil
// disables limiting (tests, dev).
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// Server is the promotional site plus the demo status API.
type Server struct {
	waitlistUC usecase.WaitlistUseCase
	registry   *usecase.TrackerRegistry
	sessions   *auth.SessionManager
	limiter    RateLimiter
	accessCode string
	rateLimit  int
	rateWindow time.Duration
	log        *zerolog.Logger

	// trackCtx outlives individual requests; trackers started for a
	// record must not die with the request that first saw it.
	trackCtx context.Context
}

type ServerOptions struct {
	AccessCode string
	RateLimit  int
	RateWindow time.Duration
}

func NewServer(
	trackCtx context.Context,
	waitlistUC usecase.WaitlistUseCase,
	registry *usecase.TrackerRegistry,
	sessions *auth.SessionManager,
	limiter RateLimiter,
	opts ServerOptions,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		waitlistUC: waitlistUC,
		registry:   registry,
		sessions:   sessions,
		limiter:    limiter,
		accessCode: opts.AccessCode,
		rateLimit:  opts.RateLimit,
		rateWindow: opts.RateWindow,
		log:        logger,
		trackCtx:   trackCtx,
	}
}

// Router builds the chi router for the whole site.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(traceID)
	r.Use(requestLog(s.log))
	r.Use(recoverer(s.log))

	r.Get("/", s.handleLanding)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/api/waitlist", s.handleWaitlist)
	r.Post("/api/demo/session", s.handleDemoSession)

	r.Group(func(r chi.Router) {
		r.Use(s.demoAuth)
		r.Get("/api/demo/generation-status/{recordID}", s.handleGenerationStatus)
	})

	return r
}

// demoAuth gates the demo API behind the short-lived session JWT.
func (s *Server) demoAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "missing session token")
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
			writeError(w, http.StatusUnauthorized, "malformed session token")
			return
		}

		if _, err := s.sessions.Verify(tokenParts[1]); err != nil {
			writeError(w, http.StatusForbidden, "session expired or invalid")
			return
		}

		next.ServeHTTP(w, r)
	})
}
