package scanner

import (
	"context"
	"sync/atomic"

	"golang.org/x/time/rate"
)

// RateLimiter 基于 Token Bucket 的文件处理限速
type RateLimiter struct {
	limiter    *rate.Limiter
	ratePerSec int
	burst      int
	granted    atomic.Int64
	cancelled  atomic.Int64
}

// NewRateLimiter 创建限速器；ratePerSec<=0 表示不限速
func NewRateLimiter(ratePerSec, burst int) *RateLimiter {
	limit := rate.Inf
	if ratePerSec > 0 {
		limit = rate.Limit(ratePerSec)
	}
	if burst <= 0 {
		burst = max(ratePerSec, 1)
	}
	return &RateLimiter{
		limiter:    rate.NewLimiter(limit, burst),
		ratePerSec: ratePerSec,
		burst:      burst,
	}
}

// Wait 阻塞直到获得令牌或 ctx 结束
func (l *RateLimiter) Wait(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		l.cancelled.Add(1)
		return err
	}
	l.granted.Add(1)
	return nil
}

// Stats 获取统计信息
func (l *RateLimiter) Stats() RateLimiterStats {
	return RateLimiterStats{
		RatePerSecond:  l.ratePerSec,
		Burst:          l.burst,
		GrantedTotal:   l.granted.Load(),
		CancelledTotal: l.cancelled.Load(),
	}
}

// RateLimiterStats 限速器统计信息
type RateLimiterStats struct {
	RatePerSecond  int   `json:"rate_per_second"`
	Burst          int   `json:"burst"`
	GrantedTotal   int64 `json:"granted_total"`
	CancelledTotal int64 `json:"cancelled_total"`
}
