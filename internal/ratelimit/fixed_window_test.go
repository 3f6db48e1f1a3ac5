package ratelimit

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestFixedWindowLimiterRedis(t *testing.T) {
	redis := miniredis.RunT(t)
	limiter, err := NewFixedWindowLimiter(redis.Addr(), "", "test:ratelimit", 2, time.Second)
	if err != nil {
		t.Fatalf("new redis limiter: %v", err)
	}
	if !limiter.Allow("phone-1") {
		t.Fatalf("first request should pass")
	}
	if !limiter.Allow("phone-1") {
		t.Fatalf("second request should pass")
	}
	if limiter.Allow("phone-1") {
		t.Fatalf("third request should be blocked")
	}
	if !limiter.Allow("phone-2") {
		t.Fatalf("separate key should have its own window")
	}
}

func TestFixedWindowLimiterRedisFailClosed(t *testing.T) {
	redis := miniredis.RunT(t)
	limiter, err := NewFixedWindowLimiter(redis.Addr(), "", "test:ratelimit", 1, time.Second)
	if err != nil {
		t.Fatalf("new redis limiter: %v", err)
	}
	redis.Close()
	if limiter.Allow("phone-1") {
		t.Fatalf("limiter should fail closed on redis errors")
	}
}

func TestFixedWindowLimiterLocalMode(t *testing.T) {
	limiter, err := NewFixedWindowLimiter("", "", "test:ratelimit", 1, time.Minute)
	if err != nil {
		t.Fatalf("new local limiter: %v", err)
	}
	if !limiter.Allow("phone-1") {
		t.Fatalf("first request should pass")
	}
	if limiter.Allow("phone-1") {
		t.Fatalf("second request should be blocked")
	}
}

func TestFixedWindowLimiterRejectsBadConfig(t *testing.T) {
	if _, err := NewFixedWindowLimiter("", "", "", 0, time.Second); err == nil {
		t.Fatalf("expected error for zero limit")
	}
	if _, err := NewFixedWindowLimiter("", "", "", 1, 0); err == nil {
		t.Fatalf("expected error for zero window")
	}
}
