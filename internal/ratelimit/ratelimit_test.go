package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestNewEvery_SpacesEvents(t *testing.T) {
	l := NewEvery(50 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for range 3 {
		if err := l.Wait(ctx); err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
	}

	// First token is immediate, the next two wait one interval each.
	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Errorf("three waits took %v, want at least ~100ms", elapsed)
	}
}

func TestNewEvery_ZeroIntervalNeverThrottles(t *testing.T) {
	l := NewEvery(0)
	for i := range 100 {
		if !l.Allow() {
			t.Fatalf("Allow() = false at event %d", i)
		}
	}
}

func TestNewEvery_WaitHonorsContext(t *testing.T) {
	l := NewEvery(time.Hour)
	if !l.Allow() {
		t.Fatal("first event should be admitted")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := l.Wait(ctx); err == nil {
		t.Error("Wait() should fail when the context ends before the next token")
	}
}

func TestGroup_KeysAreIndependent(t *testing.T) {
	g := NewGroup(time.Hour)

	if !g.Get("binance").Allow() {
		t.Fatal("binance first event should be admitted")
	}
	if g.Get("binance").Allow() {
		t.Error("binance second event should be throttled")
	}
	if !g.Get("okx").Allow() {
		t.Error("okx must not share binance's limiter")
	}
	if g.Get("binance") != g.Get("binance") {
		t.Error("Get should return the same limiter per key")
	}
}
