package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/guestgate/guestgate/application/port/inbound"
	"github.com/guestgate/guestgate/infrastructure/service/logger"
)

// Service is a RateLimitService that owns resources released on shutdown.
type Service interface {
	inbound.RateLimitService
	Close(ctx context.Context) error
}

// RateLimitConfig configuration for rate limiting
type RateLimitConfig struct {
	Enabled  bool
	RedisURL string
	Requests int
	Window   time.Duration
}

// NewRateLimitService picks the backend: no-op when disabled, Redis when a URL is
// configured and reachable, in-memory otherwise.
func NewRateLimitService(config RateLimitConfig, log logger.Logger) (Service, error) {
	ctx := context.Background()
	if !config.Enabled {
		log.Info(ctx, "Rate limiting disabled", nil)
		return &noopRateLimitService{}, nil
	}

	fields := map[string]interface{}{
		"requests": config.Requests,
		"window":   config.Window.String(),
	}

	if config.RedisURL != "" {
		svc, err := newRedisRateLimitService(config, log)
		if err == nil {
			fields["backend"] = "redis"
			log.Info(ctx, "Rate limiting service initialized", fields)
			return svc, nil
		}
		log.Error(ctx, "Redis unavailable, falling back to in-memory rate limiting", err, nil)
	}

	svc, err := NewMemoryRateLimitService(config)
	if err != nil {
		return nil, err
	}
	fields["backend"] = "memory"
	log.Info(ctx, "Rate limiting service initialized", fields)
	return svc, nil
}

// redisRateLimitService is a fixed window counter shared by every instance
// pointing at the same Redis.
type redisRateLimitService struct {
	redisClient *redis.Client
	logger      logger.Logger
	limit       int64
	window      time.Duration
}

func newRedisRateLimitService(config RateLimitConfig, log logger.Logger) (*redisRateLimitService, error) {
	opt, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	redisClient := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisRateLimitService{
		redisClient: redisClient,
		logger:      log,
		limit:       int64(config.Requests),
		window:      config.Window,
	}, nil
}

func (s *redisRateLimitService) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	redisKey := fmt.Sprintf("ratelimit:%s", key)

	pipeline := s.redisClient.TxPipeline()
	incrCmd := pipeline.Incr(ctx, redisKey)
	ttlCmd := pipeline.PTTL(ctx, redisKey)
	if _, err := pipeline.Exec(ctx); err != nil {
		return true, 0, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	ttl := ttlCmd.Val()
	// a fresh counter has no expiry yet
	if ttl < 0 {
		if err := s.redisClient.PExpire(ctx, redisKey, s.window).Err(); err != nil {
			return true, 0, fmt.Errorf("failed to set rate limit window: %w", err)
		}
		ttl = s.window
	}

	count := incrCmd.Val()
	s.logger.Debug(ctx, "Rate limit check", map[string]interface{}{
		"key":   key,
		"count": count,
		"limit": s.limit,
	})

	if count > s.limit {
		return false, ttl, nil
	}
	return true, 0, nil
}

func (s *redisRateLimitService) Close(_ context.Context) error {
	return s.redisClient.Close()
}

// noopRateLimitService is used when rate limiting is disabled
type noopRateLimitService struct{}

func (n *noopRateLimitService) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	return true, 0, nil
}

func (n *noopRateLimitService) Close(ctx context.Context) error {
	return nil
}
