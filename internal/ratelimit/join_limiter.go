package ratelimit

import (
	"context"
	"time"

	"github.com/waitlyhq/waitly/internal/config"
	"go.uber.org/zap"
)

// JoinLimiter throttles public signup traffic per client address. When the
// limiter is disabled or redis is unreachable, requests pass through.
type JoinLimiter struct {
	bucket *TokenBucket
	log    *zap.Logger
	rate   float64
	burst  int
}

func NewJoinLimiter(cfg config.Config, bucket *TokenBucket, log *zap.Logger) *JoinLimiter {
	if !cfg.RateLimit.Enabled || bucket == nil {
		return nil
	}
	return &JoinLimiter{
		bucket: bucket,
		log:    log.Named("ratelimit.join"),
		rate:   cfg.RateLimit.JoinRate,
		burst:  cfg.RateLimit.JoinBurst,
	}
}

func (l *JoinLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

// Allow returns whether the client may proceed and, when denied, how long
// to wait. Limiter errors fail open.
func (l *JoinLimiter) Allow(ctx context.Context, clientKey string) (bool, time.Duration) {
	if !l.Enabled() {
		return true, 0
	}

	result, err := l.bucket.Allow(ctx, "ratelimit:join:"+clientKey, l.rate, l.burst)
	if err != nil {
		l.log.Warn("rate limit check failed", zap.Error(err))
		return true, 0
	}
	return result.Allowed, result.RetryAfter
}
