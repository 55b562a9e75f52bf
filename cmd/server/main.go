package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/guestgate/guestgate/application/usecase"
	domainerr "github.com/guestgate/guestgate/domain/error"
	"github.com/guestgate/guestgate/domain/valueobject"
	"github.com/guestgate/guestgate/infrastructure/adapter/csvfile"
	"github.com/guestgate/guestgate/infrastructure/adapter/webex"
	"github.com/guestgate/guestgate/infrastructure/config"
	"github.com/guestgate/guestgate/infrastructure/http/handler"
	"github.com/guestgate/guestgate/infrastructure/http/server"
	"github.com/guestgate/guestgate/infrastructure/service/logger"
	"github.com/guestgate/guestgate/infrastructure/service/ratelimit"
	"github.com/guestgate/guestgate/infrastructure/service/scheduler"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logger
	structuredLogger := logger.NewStructuredLogger(logger.LoggerConfig{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: "guestgate",
		Output:      os.Stdout,
	})
	structuredLogger.Info(ctx, "Application starting", map[string]interface{}{
		"env":           cfg.Environment,
		"webex_api_url": cfg.WebexAPIURL,
	})
	if missing := cfg.MissingCredentials(); len(missing) > 0 {
		structuredLogger.Error(ctx, "OAuth client is not fully configured", domainerr.ErrMissingCredentials(strings.Join(missing, ",")), nil)
	}

	clock := clockwork.NewRealClock()

	webexClient := webex.NewClient(webex.Config{
		BaseURL:      cfg.WebexAPIURL,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Timeout:      cfg.WebexHTTPTimeout,
	})

	// Refresh once before serving; a failure leaves the credential empty
	refresher := usecase.NewCredentialRefresher(webexClient, cfg.RefreshToken, clock, structuredLogger)
	if err := refresher.Refresh(ctx); err != nil {
		structuredLogger.Warn(ctx, "Starting without a valid access token", map[string]interface{}{
			"error": err.Error(),
		})
	}

	daily := scheduler.NewDaily(scheduler.DailyConfig{
		Name:     "token_refresh",
		Hour:     cfg.RefreshHour,
		Minute:   cfg.RefreshMinute,
		Location: cfg.RefreshLocation,
	}, refresher.Refresh, clock, structuredLogger)
	go daily.Run(ctx)

	rateLimitService, err := ratelimit.NewRateLimitService(ratelimit.RateLimitConfig{
		Enabled:  cfg.RateLimitEnabled,
		RedisURL: cfg.RedisURL,
		Requests: cfg.RateLimitRequests,
		Window:   cfg.RateLimitWindow,
	}, structuredLogger)
	if err != nil {
		structuredLogger.Error(ctx, "Failed to initialize rate limit service", domainerr.ErrConfigurationError("RATE_LIMIT_REQUESTS/RATE_LIMIT_WINDOW"), map[string]interface{}{
			"cause": err.Error(),
		})
		log.Fatalf("Failed to initialize rate limit service: %v", err)
	}

	// Initialize use cases
	guestIdentity := valueobject.NewGuestIdentity(cfg.GuestSubject, cfg.GuestDisplayName)
	guestTokenUseCase := usecase.NewGuestTokenUseCase(refresher, webexClient, guestIdentity, clock, structuredLogger)
	accessRequestUseCase := usecase.NewAccessRequestUseCase(
		csvfile.NewAccessRequestRepository(cfg.RequestsCSVPath),
		clock,
		structuredLogger,
	)

	// Initialize handlers
	handlers := server.Handlers{
		GuestToken: handler.NewGuestTokenHandler(guestTokenUseCase),
		AccessRequest: handler.NewAccessRequestHandler(accessRequestUseCase, handler.AccessRequestHandlerConfig{
			PublicDir: cfg.PublicDir,
			Delay:     cfg.RequestAccessDelay,
		}, clock, structuredLogger),
	}

	router := server.NewRouter(server.RouterConfig{
		PublicDir:          cfg.PublicDir,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		TrustProxy:         cfg.TrustProxy,
	}, handlers, rateLimitService, structuredLogger)

	srv := server.NewServer(server.ServerConfig{
		Addr:         cfg.Addr(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.ServerWriteTimeout(),
		IdleTimeout:  60 * time.Second,
	}, router, structuredLogger)

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil {
			structuredLogger.Error(ctx, "Server failed to start", err, map[string]interface{}{
				"addr": cfg.Addr(),
			})
			stop()
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		structuredLogger.Error(shutdownCtx, "Server forced to shutdown", err, nil)
	}
	if err := rateLimitService.Close(shutdownCtx); err != nil {
		structuredLogger.Error(shutdownCtx, "Failed to close rate limit service", err, nil)
	}
	structuredLogger.Info(shutdownCtx, "Server exited", nil)
}
