package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestHostLimiter_AllowWithinBurst(t *testing.T) {
	hl := NewHostLimiter(1.0, 3)
	url := "https://oldschool.runescape.wiki/api.php"

	for i := 0; i < 3; i++ {
		if !hl.Allow(url) {
			t.Fatalf("request %d within burst was denied", i+1)
		}
	}
	if hl.Allow(url) {
		t.Error("request beyond burst was allowed immediately")
	}
}

func TestHostLimiter_SeparateHosts(t *testing.T) {
	hl := NewHostLimiter(1.0, 1)

	if !hl.Allow("https://a.example/x") {
		t.Fatal("first host denied")
	}
	if !hl.Allow("https://b.example/x") {
		t.Error("second host should have its own bucket")
	}
}

func TestHostLimiter_WaitHonorsContext(t *testing.T) {
	hl := NewHostLimiter(0.1, 1)
	url := "https://slow.example/x"

	// Drain the bucket.
	if err := hl.Wait(context.Background(), url); err != nil {
		t.Fatalf("initial wait failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := hl.Wait(ctx, url); err == nil {
		t.Error("expected context deadline error while rate limited")
	}
}

func TestHostLimiter_InvalidURLPassesThrough(t *testing.T) {
	hl := NewHostLimiter(1.0, 1)
	if err := hl.Wait(context.Background(), "::not a url::"); err != nil {
		t.Errorf("invalid URL should pass through, got %v", err)
	}
}
