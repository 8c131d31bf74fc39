package quota

import (
	"context"
	"testing"
	"time"
)

func TestRedisStoreAdmissionKeyTTL(t *testing.T) {
	limits := testLimits()
	h := newRedisHarness(t, limits)
	ctx := context.Background()

	if err := h.store.Consume(ctx, "u1"); err != nil {
		t.Fatalf("Consume err: %v", err)
	}

	// The admission counter lives exactly one window; afterwards the key is
	// gone and a fresh window starts.
	h.advance(limits.Window - time.Minute)
	if err := h.store.Consume(ctx, "u1"); err != nil {
		t.Fatalf("Consume within window err: %v", err)
	}

	h.advance(2 * time.Minute)
	for i := 0; i < limits.RequestsPerWindow; i++ {
		if err := h.store.Consume(ctx, "u1"); err != nil {
			t.Fatalf("fresh window request %d rejected: %v", i+1, err)
		}
	}
}

func TestRedisStoreLifetimeSurvivesDays(t *testing.T) {
	h := newRedisHarness(t, testLimits())
	ctx := context.Background()

	for day := 0; day < 3; day++ {
		if err := h.store.RecordTokens(ctx, "u1", 100); err != nil {
			t.Fatalf("day %d RecordTokens err: %v", day, err)
		}
		h.advance(24 * time.Hour)
	}

	usage, err := h.store.TokenUsage(ctx, "u1")
	if err != nil {
		t.Fatalf("TokenUsage err: %v", err)
	}
	if usage.Total != 300 {
		t.Fatalf("lifetime total = %d, want 300", usage.Total)
	}
	if usage.Daily != 0 {
		t.Fatalf("daily total = %d, want 0 after final rollover", usage.Daily)
	}
}
