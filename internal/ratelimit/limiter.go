package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Limiter counts form posts per key in fixed windows stored in Redis
type Limiter struct {
	rdb    redis.Cmdable
	log    *zap.Logger
	limit  int64
	window time.Duration
	now    func() time.Time
}

// New creates a limiter allowing limit hits per key per window
func New(rdb redis.Cmdable, limit int, window time.Duration, log *zap.Logger) *Limiter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Limiter{
		rdb:    rdb,
		log:    log,
		limit:  int64(limit),
		window: window,
		now:    time.Now,
	}
}

// Allow records a hit for scope/client and reports whether it is within the limit.
// A Redis failure is returned with allowed=true.
func (l *Limiter) Allow(ctx context.Context, scope, client string) (bool, error) {
	if l.limit <= 0 {
		return true, nil
	}

	bucket := l.now().UnixNano() / int64(l.window)
	key := fmt.Sprintf("ratelimit:%s:%s:%d", scope, client, bucket)

	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		l.log.Warn("Rate limiter unavailable, allowing request", zap.String("scope", scope), zap.Error(err))
		return true, fmt.Errorf("failed to count hit: %w", err)
	}

	count := incr.Val()
	if count > l.limit {
		l.log.Info("Rate limit exceeded",
			zap.String("scope", scope),
			zap.String("client", client),
			zap.Int64("count", count),
		)
		return false, nil
	}
	return true, nil
}
