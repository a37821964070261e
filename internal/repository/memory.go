package repository

import (
	"context"
	"sync"
	"time"

	"shareit/internal/domain"

	"golang.org/x/time/rate"
)

// MemoryRateLimiter keeps a token bucket per key in process memory. It
// refills limit tokens per window, so bursts up to limit are admitted.
type MemoryRateLimiter struct {
	limiters sync.Map
	every    rate.Limit
	burst    int
	now      func() time.Time
}

var _ domain.RateLimiter = (*MemoryRateLimiter)(nil)

func NewMemoryRateLimiter(limit int, window time.Duration) *MemoryRateLimiter {
	return &MemoryRateLimiter{
		every: rate.Every(window / time.Duration(limit)),
		burst: limit,
		now:   time.Now,
	}
}

func (r *MemoryRateLimiter) Allow(_ context.Context, key string) (bool, error) {
	val, ok := r.limiters.Load(key)
	if !ok {
		val, _ = r.limiters.LoadOrStore(key, rate.NewLimiter(r.every, r.burst))
	}
	return val.(*rate.Limiter).AllowN(r.now(), 1), nil
}
