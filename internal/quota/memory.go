package quota

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps all counters in process memory. Nothing survives a
// restart; for a rate limiter the worst case is a fresh admission window,
// which the product accepts.
type MemoryStore struct {
	limits Limits
	now    func() time.Time

	mu      sync.RWMutex
	callers map[string]*callerState
}

// callerState holds every counter for one caller. Each caller carries its own
// lock so a busy caller never blocks the others; the outer map lock covers
// lookup and creation only.
type callerState struct {
	mu sync.Mutex

	admitted      int
	windowResetAt time.Time

	totalTokens  int64
	dailyTokens  int64
	tokenResetAt time.Time

	exports       int
	exportResetAt time.Time
}

// NewMemoryStore returns an in-process Store enforcing the given limits.
func NewMemoryStore(limits Limits) *MemoryStore {
	return &MemoryStore{
		limits:  limits,
		now:     time.Now,
		callers: make(map[string]*callerState),
	}
}

func (s *MemoryStore) caller(id string) *callerState {
	s.mu.RLock()
	st, ok := s.callers[id]
	s.mu.RUnlock()
	if ok {
		return st
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.callers[id]; ok {
		return st
	}
	st = &callerState{}
	s.callers[id] = st
	return st
}

// Consume implements fixed-window admission: an expired window is replaced
// with a fresh record counting this request, a live one admits until capacity.
func (s *MemoryStore) Consume(_ context.Context, callerID string) error {
	if callerID == "" {
		return ErrCallerRequired
	}

	now := s.now()
	st := s.caller(callerID)
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.windowResetAt.IsZero() || windowExpired(st.windowResetAt, now) {
		st.admitted = 1
		st.windowResetAt = now.Add(s.limits.Window)
		return nil
	}

	if st.admitted >= s.limits.RequestsPerWindow {
		return ErrRateLimited
	}

	st.admitted++
	return nil
}

// RecordTokens accumulates usage. The first write after a midnight boundary
// replaces the daily figure; the lifetime total always adds.
func (s *MemoryStore) RecordTokens(_ context.Context, callerID string, tokens int64) error {
	if callerID == "" {
		return ErrCallerRequired
	}
	if tokens <= 0 {
		return nil
	}

	now := s.now()
	st := s.caller(callerID)
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.tokenResetAt.IsZero() || windowExpired(st.tokenResetAt, now) {
		st.dailyTokens = tokens
		st.tokenResetAt = NextMidnight(now)
	} else {
		st.dailyTokens += tokens
	}

	st.totalTokens += tokens
	return nil
}

// TokenUsage reads the caller's totals, applying the same midnight rollover
// a write would so a read-only day still reports a zeroed daily figure.
func (s *MemoryStore) TokenUsage(_ context.Context, callerID string) (Usage, error) {
	if callerID == "" {
		return Usage{}, ErrCallerRequired
	}

	now := s.now()
	st := s.caller(callerID)
	st.mu.Lock()
	defer st.mu.Unlock()

	if !st.tokenResetAt.IsZero() && windowExpired(st.tokenResetAt, now) {
		st.dailyTokens = 0
		st.tokenResetAt = NextMidnight(now)
	}

	return Usage{Total: st.totalTokens, Daily: st.dailyTokens}, nil
}

// CanExport checks the free-tier daily cap. Premium callers always pass.
func (s *MemoryStore) CanExport(_ context.Context, callerID string, premium bool) (bool, error) {
	if callerID == "" {
		return false, ErrCallerRequired
	}
	if premium {
		return true, nil
	}

	now := s.now()
	st := s.caller(callerID)
	st.mu.Lock()
	defer st.mu.Unlock()

	if !st.exportResetAt.IsZero() && windowExpired(st.exportResetAt, now) {
		st.exports = 0
		st.exportResetAt = NextMidnight(now)
	}

	return st.exports < s.limits.FreeExportsPerDay, nil
}

// RecordExport counts a completed download; past a midnight boundary this
// export becomes the first of the new day.
func (s *MemoryStore) RecordExport(_ context.Context, callerID string) error {
	if callerID == "" {
		return ErrCallerRequired
	}

	now := s.now()
	st := s.caller(callerID)
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.exportResetAt.IsZero() || windowExpired(st.exportResetAt, now) {
		st.exports = 1
		st.exportResetAt = NextMidnight(now)
		return nil
	}

	st.exports++
	return nil
}
