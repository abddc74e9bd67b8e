package rpc

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterBurstThenReject(t *testing.T) {
	limiter := newRateLimiter(rateLimitConfig{Enabled: true, RPS: 1, Burst: 3})
	now := time.Now()
	for i := 0; i < 3; i++ {
		if !limiter.allow("token:abc", now) {
			t.Fatalf("request %d inside burst rejected", i)
		}
	}
	if limiter.allow("token:abc", now) {
		t.Fatalf("request beyond burst allowed")
	}
	// Other keys have their own budget.
	if !limiter.allow("token:other", now) {
		t.Fatalf("independent key throttled")
	}
	// The budget refills over time.
	if !limiter.allow("token:abc", now.Add(2*time.Second)) {
		t.Fatalf("budget did not refill")
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	limiter := newRateLimiter(rateLimitConfig{Enabled: false})
	if limiter != nil {
		t.Fatalf("disabled config built a limiter")
	}
	for i := 0; i < 100; i++ {
		if !limiter.allow("token:abc", time.Now()) {
			t.Fatalf("nil limiter rejected a request")
		}
	}
}

func TestLoadRateLimitConfigEnvOverrides(t *testing.T) {
	t.Setenv("MARKET_RPC_RATE_LIMIT_ENABLED", "true")
	t.Setenv("MARKET_RPC_RATE_LIMIT_RPS", "5")
	t.Setenv("MARKET_RPC_RATE_LIMIT_BURST", "7")
	cfg := loadRateLimitConfig()
	if !cfg.Enabled || cfg.RPS != 5 || cfg.Burst != 7 {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestLoadRateLimitConfigTestEnvDisables(t *testing.T) {
	t.Setenv("MARKET_RPC_RATE_LIMIT_ENABLED", "")
	t.Setenv("MARKET_ENV", "test")
	if cfg := loadRateLimitConfig(); cfg.Enabled {
		t.Fatalf("test env did not disable rate limiting")
	}
}

func TestRateLimitKeyPrefersToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/rpc", nil)
	req.RemoteAddr = "192.0.2.10:4444"
	if key := rateLimitKey(req, "abc"); key != "token:abc" {
		t.Fatalf("token key wrong: %q", key)
	}
	if key := rateLimitKey(req, ""); key != "ip:192.0.2.10" {
		t.Fatalf("ip key wrong: %q", key)
	}
}
