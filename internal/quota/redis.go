package quota

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// Key layout per caller. Daily counters carry an expiry that lands on the
// next local midnight, so rollover is the store deleting the key rather than
// a stored reset timestamp.
const (
	admissionKeyPrefix = "rate:"
	tokenKeyPrefix     = "tokens:"
	exportKeyPrefix    = "exports:"
	dailySuffix        = ":daily"
)

// RedisStore implements Store on a Redis keyspace, for deployments where
// counters should survive a process restart. It must stay observably
// equivalent to MemoryStore for the same sequence of calls.
type RedisStore struct {
	client *redis.Client
	limits Limits
	now    func() time.Time
}

// NewRedisStore returns a Redis-backed Store enforcing the given limits.
func NewRedisStore(client *redis.Client, limits Limits) *RedisStore {
	return &RedisStore{
		client: client,
		limits: limits,
		now:    time.Now,
	}
}

// Consume counts the request with INCR and pins the window expiry when the
// key is fresh. Increments past capacity are rejected; they expire with the
// window either way.
func (s *RedisStore) Consume(ctx context.Context, callerID string) error {
	if callerID == "" {
		return ErrCallerRequired
	}

	key := admissionKeyPrefix + callerID
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("increment admission counter: %w", err)
	}

	if count == 1 {
		if err := s.client.Expire(ctx, key, s.limits.Window).Err(); err != nil {
			return fmt.Errorf("set admission window: %w", err)
		}
	}

	if count > int64(s.limits.RequestsPerWindow) {
		return ErrRateLimited
	}
	return nil
}

// RecordTokens adds to the lifetime counter and a midnight-expiring daily
// counter in one transaction.
func (s *RedisStore) RecordTokens(ctx context.Context, callerID string, tokens int64) error {
	if callerID == "" {
		return ErrCallerRequired
	}
	if tokens <= 0 {
		return nil
	}

	lifetimeKey := tokenKeyPrefix + callerID
	dailyKey := lifetimeKey + dailySuffix

	pipe := s.client.TxPipeline()
	pipe.IncrBy(ctx, lifetimeKey, tokens)
	daily := pipe.IncrBy(ctx, dailyKey, tokens)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("increment token counters: %w", err)
	}

	// First write of the day recreated the key; give it a fresh expiry.
	if daily.Val() == tokens {
		if err := s.client.Expire(ctx, dailyKey, UntilMidnight(s.now())).Err(); err != nil {
			return fmt.Errorf("set daily token expiry: %w", err)
		}
	}
	return nil
}

// TokenUsage reads both counters; an expired daily key simply reads as zero.
func (s *RedisStore) TokenUsage(ctx context.Context, callerID string) (Usage, error) {
	if callerID == "" {
		return Usage{}, ErrCallerRequired
	}

	lifetimeKey := tokenKeyPrefix + callerID
	vals, err := s.client.MGet(ctx, lifetimeKey, lifetimeKey+dailySuffix).Result()
	if err != nil {
		return Usage{}, fmt.Errorf("read token counters: %w", err)
	}

	total, err := parseCounter(vals[0])
	if err != nil {
		return Usage{}, fmt.Errorf("parse lifetime token counter: %w", err)
	}
	dailyCount, err := parseCounter(vals[1])
	if err != nil {
		return Usage{}, fmt.Errorf("parse daily token counter: %w", err)
	}

	return Usage{Total: total, Daily: dailyCount}, nil
}

// CanExport checks today's download count against the free-tier cap.
func (s *RedisStore) CanExport(ctx context.Context, callerID string, premium bool) (bool, error) {
	if callerID == "" {
		return false, ErrCallerRequired
	}
	if premium {
		return true, nil
	}

	count, err := s.client.Get(ctx, exportKeyPrefix+callerID).Int64()
	if err == redis.Nil {
		count = 0
	} else if err != nil {
		return false, fmt.Errorf("read export counter: %w", err)
	}

	return count < int64(s.limits.FreeExportsPerDay), nil
}

// RecordExport counts a completed download, expiring the counter at midnight.
func (s *RedisStore) RecordExport(ctx context.Context, callerID string) error {
	if callerID == "" {
		return ErrCallerRequired
	}

	key := exportKeyPrefix + callerID
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("increment export counter: %w", err)
	}

	if count == 1 {
		if err := s.client.Expire(ctx, key, UntilMidnight(s.now())).Err(); err != nil {
			return fmt.Errorf("set export expiry: %w", err)
		}
	}
	return nil
}

func parseCounter(val interface{}) (int64, error) {
	if val == nil {
		return 0, nil
	}
	raw, ok := val.(string)
	if !ok {
		return 0, fmt.Errorf("unexpected counter type %T", val)
	}
	return strconv.ParseInt(raw, 10, 64)
}
