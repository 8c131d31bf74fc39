package quota

import (
	"testing"
	"time"
)

func TestNextMidnight(t *testing.T) {
	loc := time.FixedZone("CET", 3600)

	now := time.Date(2025, 3, 10, 15, 42, 7, 0, loc)
	got := NextMidnight(now)
	want := time.Date(2025, 3, 11, 0, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("NextMidnight = %v, want %v", got, want)
	}
}

func TestNextMidnightAtBoundary(t *testing.T) {
	loc := time.FixedZone("CET", 3600)

	// Exactly midnight must advance a full day, never return the same instant.
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, loc)
	got := NextMidnight(now)
	want := time.Date(2025, 3, 11, 0, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("NextMidnight at boundary = %v, want %v", got, want)
	}
}

func TestNextMidnightCrossesMonth(t *testing.T) {
	now := time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC)
	got := NextMidnight(now)
	want := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("NextMidnight = %v, want %v", got, want)
	}
}

func TestWindowExpired(t *testing.T) {
	resetAt := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	if windowExpired(resetAt, resetAt.Add(-time.Second)) {
		t.Fatal("window should still be live one second before the boundary")
	}
	if !windowExpired(resetAt, resetAt) {
		t.Fatal("window should expire exactly at the boundary")
	}
	if !windowExpired(resetAt, resetAt.Add(time.Second)) {
		t.Fatal("window should be expired past the boundary")
	}
}

func TestUntilMidnight(t *testing.T) {
	now := time.Date(2025, 3, 10, 23, 0, 0, 0, time.UTC)
	if got := UntilMidnight(now); got != time.Hour {
		t.Fatalf("UntilMidnight = %v, want 1h", got)
	}
}
