package gateway

import (
	"sync"
	"time"
)

// RateLimiter 控制报单速率，避免触发场所限流。
type RateLimiter interface {
	Wait()
}

// TokenBucketLimiter 令牌桶限流：rate 为每秒补充速率，
// burst 为桶深。Wait 在桶空时阻塞到下一枚令牌可用。
type TokenBucketLimiter struct {
	mu     sync.Mutex
	rate   float64
	burst  int
	tokens float64
	last   time.Time
}

func NewTokenBucketLimiter(rate float64, burst int) *TokenBucketLimiter {
	if rate <= 0 {
		rate = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &TokenBucketLimiter{
		rate:   rate,
		burst:  burst,
		tokens: float64(burst),
		last:   time.Now(),
	}
}

func (l *TokenBucketLimiter) Wait() {
	l.mu.Lock()
	l.refill()
	if l.tokens >= 1 {
		l.tokens--
		l.mu.Unlock()
		return
	}
	wait := time.Duration((1 - l.tokens) / l.rate * float64(time.Second))
	l.mu.Unlock()

	time.Sleep(wait)

	l.mu.Lock()
	l.refill()
	if l.tokens >= 1 {
		l.tokens--
	} else {
		l.tokens = 0
	}
	l.mu.Unlock()
}

// refill 按经过的时间补充令牌；调用方持锁。
func (l *TokenBucketLimiter) refill() {
	now := time.Now()
	l.tokens += now.Sub(l.last).Seconds() * l.rate
	l.last = now
	if l.tokens > float64(l.burst) {
		l.tokens = float64(l.burst)
	}
}

// NopLimiter 不限流（离线/测试用）。
type NopLimiter struct{}

func (NopLimiter) Wait() {}
