package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/guestgate/guestgate/application/port/inbound"
	"github.com/guestgate/guestgate/infrastructure/http/handler"
	"github.com/guestgate/guestgate/infrastructure/http/middleware"
	"github.com/guestgate/guestgate/infrastructure/http/response"
	"github.com/guestgate/guestgate/infrastructure/service/logger"
)

// Server represents the HTTP server
type Server struct {
	server *http.Server
	logger logger.Logger
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// RouterConfig holds what the routes need besides handlers.
type RouterConfig struct {
	PublicDir          string
	CORSAllowedOrigins []string
	TrustProxy         bool
}

// Handlers groups the route handlers.
type Handlers struct {
	GuestToken    *handler.GuestTokenHandler
	AccessRequest *handler.AccessRequestHandler
}

// NewRouter wires routes and the middleware chain. Middleware wraps the whole
// router so preflights and 404s get CORS headers and access logs too.
func NewRouter(config RouterConfig, handlers Handlers, rateLimitService inbound.RateLimitService, log logger.Logger) http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/get-access-token", handlers.GuestToken.GetAccessToken).Methods(http.MethodGet)

	rateLimit := middleware.NewRateLimitMiddleware(rateLimitService, "request-access", config.TrustProxy, log)
	router.HandleFunc("/request-access", handlers.AccessRequest.Form).Methods(http.MethodGet, http.MethodHead)
	router.Handle("/request-access", rateLimit.RateLimit(http.HandlerFunc(handlers.AccessRequest.Submit))).Methods(http.MethodPost)

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	router.PathPrefix("/").Handler(http.FileServer(http.Dir(config.PublicDir))).Methods(http.MethodGet, http.MethodHead)

	var h http.Handler = router
	h = middleware.CORSMiddleware(h, config.CORSAllowedOrigins, false)
	h = middleware.LoggingMiddleware(log)(h)
	h = middleware.RecoveryMiddleware(log)(h)
	h = middleware.CorrelationIDMiddleware(h)
	return h
}

// NewServer creates a new HTTP server
func NewServer(config ServerConfig, h http.Handler, log logger.Logger) *Server {
	return &Server{
		logger: log,
		server: &http.Server{
			Addr:         config.Addr,
			Handler:      h,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
	}
}

// Start blocks serving HTTP until Shutdown. http.ErrServerClosed is not an error.
func (s *Server) Start() error {
	s.logger.Info(context.Background(), "Starting HTTP server", map[string]interface{}{"addr": s.server.Addr})
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "Shutting down HTTP server", nil)
	return s.server.Shutdown(ctx)
}
