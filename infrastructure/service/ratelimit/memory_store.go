package ratelimit

import (
	"context"
	"time"

	"github.com/gravitational/trace"
	limiter "github.com/sethvargo/go-limiter"
	"github.com/sethvargo/go-limiter/memorystore"
)

// memoryRateLimitService keeps token buckets in process memory.
type memoryRateLimitService struct {
	store limiter.Store
}

func NewMemoryRateLimitService(config RateLimitConfig) (Service, error) {
	if config.Requests <= 0 || config.Window <= 0 {
		return nil, trace.BadParameter("rate limit needs positive requests and window, got %d per %s", config.Requests, config.Window)
	}

	store, err := memorystore.New(&memorystore.Config{
		Tokens:   uint64(config.Requests),
		Interval: config.Window,
	})
	if err != nil {
		return nil, trace.Wrap(err)
	}
	return &memoryRateLimitService{store: store}, nil
}

func (s *memoryRateLimitService) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	_, _, reset, ok, err := s.store.Take(ctx, key)
	if err != nil {
		return true, 0, trace.Wrap(err)
	}
	if ok {
		return true, 0, nil
	}

	retryAfter := time.Until(time.Unix(0, int64(reset)))
	if retryAfter < 0 {
		retryAfter = 0
	}
	return false, retryAfter, nil
}

func (s *memoryRateLimitService) Close(ctx context.Context) error {
	return trace.Wrap(s.store.Close(ctx))
}
