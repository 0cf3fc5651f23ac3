// Package cursor persists the indexing progress marker: the highest
// change-sequence id fully committed to the index. The state machine
// never mutates it directly, only through Read and CompareAndSet.
package cursor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/rueidis"
)

// ErrConflict signals that the stored cursor no longer matches the
// expected value. The batch that observed the stale value must not
// be committed.
var ErrConflict = errors.New("cursor conflict")

// casScript advances the cursor only when the stored value still equals
// the expected one. A missing key counts as 0.
const casScript = `local cur = redis.call('GET', KEYS[1])
if not cur then cur = '0' end
if cur ~= ARGV[1] then return 0 end
redis.call('SET', KEYS[1], ARGV[2])
return 1`

// Config holds connection parameters for the cursor store.
type Config struct {
	Addrs    []string
	Password string
	Key      string
}

// Store is a Redis-backed cursor store.
type Store struct {
	client rueidis.Client
	key    string
}

// New creates a cursor store and connects to Redis.
func New(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}
	if cfg.Key == "" {
		return nil, fmt.Errorf("key is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Password:     cfg.Password,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Store{client: client, key: cfg.Key}, nil
}

// NewStoreForTest wraps an existing client (used with rueidis mock).
func NewStoreForTest(client rueidis.Client, key string) *Store {
	return &Store{client: client, key: key}
}

// Read returns the persisted cursor. A missing key reads as 0, meaning
// no change has ever been committed.
func (s *Store) Read(ctx context.Context) (int64, error) {
	cmd := s.client.B().Get().Key(s.key).Build()
	v, err := s.client.Do(ctx, cmd).AsInt64()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read cursor: %w", err)
	}
	return v, nil
}

// CompareAndSet advances the cursor from expected to next atomically.
// Returns ErrConflict when the stored value has moved since expected
// was read.
func (s *Store) CompareAndSet(ctx context.Context, expected, next int64) error {
	cmd := s.client.B().Eval().
		Script(casScript).
		Numkeys(1).
		Key(s.key).
		Arg(strconv.FormatInt(expected, 10), strconv.FormatInt(next, 10)).
		Build()

	ok, err := s.client.Do(ctx, cmd).AsInt64()
	if err != nil {
		return fmt.Errorf("cas cursor: %w", err)
	}
	if ok == 0 {
		return fmt.Errorf("%w: expected %d", ErrConflict, expected)
	}
	return nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	cmd := s.client.B().Ping().Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for cursor store: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}
