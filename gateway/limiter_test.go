package gateway

import (
	"testing"
	"time"
)

func TestTokenBucketBurstPassesImmediately(t *testing.T) {
	l := NewTokenBucketLimiter(10, 5)
	start := time.Now()
	for i := 0; i < 5; i++ {
		l.Wait()
	}
	if time.Since(start) > 50*time.Millisecond {
		t.Fatalf("burst should not block")
	}
}

func TestTokenBucketThrottles(t *testing.T) {
	// 桶深 1、每秒 20 个：第二次调用要等 ~50ms
	l := NewTokenBucketLimiter(20, 1)
	l.Wait()
	start := time.Now()
	l.Wait()
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Fatalf("expected throttling, waited only %v", elapsed)
	}
}

func TestNewTokenBucketLimiterDefaults(t *testing.T) {
	l := NewTokenBucketLimiter(0, 0)
	if l.rate != 1 || l.burst != 1 {
		t.Fatalf("invalid params should fall back to 1/1, got %f/%d", l.rate, l.burst)
	}
}
