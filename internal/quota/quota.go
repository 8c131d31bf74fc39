// Package quota governs how much of the paid upstream surface each caller may
// consume: hourly admission of chat requests, daily and lifetime token
// metering, and the free-tier cap on document exports. All state is
// partitioned by caller id and rolls over on fixed time windows.
package quota

import (
	"context"
	"errors"
	"time"
)

var (
	ErrCallerRequired      = errors.New("caller id is required")
	ErrRateLimited         = errors.New("rate limit exceeded")
	ErrExportQuotaExceeded = errors.New("export quota exceeded")
)

// Usage is a caller's accumulated token consumption. Daily resets at local
// midnight; Total only ever grows.
type Usage struct {
	Total int64 `json:"total"`
	Daily int64 `json:"daily"`
}

// Limits holds the product's fixed consumption caps.
type Limits struct {
	RequestsPerWindow int
	Window            time.Duration
	FreeExportsPerDay int
}

// DefaultLimits returns the caps the product ships with.
func DefaultLimits() Limits {
	return Limits{
		RequestsPerWindow: 50,
		Window:            time.Hour,
		FreeExportsPerDay: 3,
	}
}

// Store tracks per-caller consumption counters. Implementations must keep
// callers isolated: activity or failure for one caller never affects another.
type Store interface {
	// Consume claims one admission slot for the caller, returning
	// ErrRateLimited once the window's capacity is spent. A rejected
	// attempt does not consume a slot.
	Consume(ctx context.Context, callerID string) error

	// RecordTokens adds to the caller's daily and lifetime token totals.
	// A zero amount is a no-op. Crossing a midnight boundary replaces the
	// daily figure rather than adding to it.
	RecordTokens(ctx context.Context, callerID string, tokens int64) error

	// TokenUsage reads the caller's totals, reconciling an elapsed daily
	// window to zero first.
	TokenUsage(ctx context.Context, callerID string) (Usage, error)

	// CanExport reports whether the caller may download another document
	// today. Premium callers are never blocked.
	CanExport(ctx context.Context, callerID string, premium bool) (bool, error)

	// RecordExport counts a completed download. Call it only after the
	// export succeeded so a failed attempt costs nothing.
	RecordExport(ctx context.Context, callerID string) error
}
