package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.burst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.burst)
	}

	l2 := NewLimiter(10, -1)
	if l2.burst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l2.burst)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "openai"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
	if err := limiter.Wait(ctx, "https://api.anthropic.com/v1/messages"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func TestLimiter_RateLimit(t *testing.T) {
	limiter := NewLimiter(1, 1)

	if !limiter.Allow("openai") {
		t.Error("first request should pass")
	}
	if limiter.Allow("OpenAI") {
		t.Error("expected allow to fail (keys are case-insensitive, tokens exhausted)")
	}
	if !limiter.Allow("anthropic") {
		t.Error("expected allow for other key")
	}
}

func TestLimiter_URLsShareHost(t *testing.T) {
	limiter := NewLimiter(1, 1)

	if !limiter.Allow("https://example.com/terms") {
		t.Error("first request should pass")
	}
	if limiter.Allow("https://example.com/privacy") {
		t.Error("same host should share the budget")
	}
}

func TestLimiter_Unlimited(t *testing.T) {
	limiter := NewLimiter(0, 1)
	for i := 0; i < 20; i++ {
		if !limiter.Allow("ollama") {
			t.Fatalf("request %d rejected with limiting disabled", i)
		}
	}
}

func TestLimiter_SetRate(t *testing.T) {
	limiter := NewLimiter(10, 10)
	limiter.SetRate("gemini", 0.1, 1)

	if !limiter.Allow("gemini") {
		t.Error("first request should pass")
	}
	if limiter.Allow("gemini") {
		t.Error("second request should fail")
	}
	if !limiter.Allow("openai") {
		t.Error("other key should pass")
	}
}

func TestLimiter_WaitCancelled(t *testing.T) {
	limiter := NewLimiter(0.01, 1)
	limiter.Allow("slow")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := limiter.Wait(ctx, "slow"); err == nil {
		t.Error("expected error when context expires before a token is available")
	}
}

func TestNormalizeKey(t *testing.T) {
	tests := map[string]string{
		"https://API.openai.com/v1": "api.openai.com",
		" Anthropic ":               "anthropic",
		"http://localhost:11434":    "localhost:11434",
	}
	for in, want := range tests {
		if got := normalizeKey(in); got != want {
			t.Errorf("normalizeKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLimiter_SetInterval(t *testing.T) {
	limiter := NewLimiter(0, 5)

	limiter.SetInterval("https://example.com/robots.txt", time.Hour)
	if !limiter.Allow("https://example.com/terms") {
		t.Error("first request should be allowed")
	}
	if limiter.Allow("https://EXAMPLE.com/privacy") {
		t.Error("second request within the interval should be denied")
	}
	if !limiter.Allow("https://other.example/terms") {
		t.Error("other hosts should be unaffected")
	}

	// a faster interval does not loosen an existing slower one
	limiter.SetInterval("https://example.com", time.Millisecond)
	if limiter.Allow("https://example.com/terms") {
		t.Error("slower interval should be kept")
	}

	limiter.SetInterval("ignored", 0)
}
