package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/spotlane/pricing/internal/config"
)

const (
	keyCalculateClient = "pricing:calculate:client:%s"
	keySchedulerLock   = "pricing:scheduler:lock"
)

// CalculateLimiter throttles the public price-calculation endpoint per
// client and hands out the scheduler's run lock. A nil limiter (rate
// limiting disabled) allows everything.
type CalculateLimiter struct {
	enabled bool

	bucket *TokenBucket
	locker *Locker

	rate  float64
	burst int
}

func NewCalculateLimiter(cfg config.Config) (*CalculateLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}
	if limitCfg.CalculateRate <= 0 || limitCfg.CalculateBurst <= 0 {
		return nil, errors.New("calculate rate limit must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})

	return &CalculateLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		locker:  NewLocker(client),
		rate:    limitCfg.CalculateRate,
		burst:   limitCfg.CalculateBurst,
	}, nil
}

// NewCalculateLimiterWithClient wires an existing client; tests use this.
func NewCalculateLimiterWithClient(client *redis.Client, rate float64, burst int) *CalculateLimiter {
	return &CalculateLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		locker:  NewLocker(client),
		rate:    rate,
		burst:   burst,
	}
}

func (l *CalculateLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *CalculateLimiter) AllowClient(ctx context.Context, clientID string) (*Result, error) {
	if !l.Enabled() {
		return &Result{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyCalculateClient, strings.TrimSpace(clientID)), l.rate, l.burst)
}

// TryLockScheduler guards one scheduler tick across replicas.
func (l *CalculateLimiter) TryLockScheduler(ctx context.Context, ttl time.Duration) (string, bool, error) {
	if !l.Enabled() {
		return "", true, nil
	}
	return l.locker.TryLock(ctx, keySchedulerLock, ttl)
}

// ExtendScheduler keeps the run lock alive while long jobs are in flight.
func (l *CalculateLimiter) ExtendScheduler(ctx context.Context, token string, ttl time.Duration) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	return l.locker.Extend(ctx, keySchedulerLock, token, ttl)
}

func (l *CalculateLimiter) ReleaseScheduler(ctx context.Context, token string) error {
	if !l.Enabled() {
		return nil
	}
	return l.locker.Release(ctx, keySchedulerLock, token)
}
