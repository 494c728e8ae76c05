package redis

import (
	"context"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"
)

// DefaultTTL bounds how long a request stays marked when no TTL is configured.
// It only needs to cover the gap between a partial and the final response.
const DefaultTTL = 5 * time.Minute

// Tracker implements ports.ValidationTracker using Redis, so replicas share
// which requests were already handled from a partial response.
type Tracker struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithTTL sets the expiration of marked requests.
func WithTTL(ttl time.Duration) Option {
	return func(t *Tracker) {
		if ttl > 0 {
			t.ttl = ttl
		}
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(t *Tracker) {
		t.prefix = prefix
	}
}

// New creates a new Redis tracker with options.
func New(address, password string, db int, opts ...Option) *Tracker {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis tracker from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Tracker {
	t := &Tracker{
		client: client,
		prefix: "conduit:validated:",
		ttl:    DefaultTTL,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tracker) key(requestID string) string {
	return t.prefix + requestID
}

func (t *Tracker) indexKey() string {
	return t.prefix + "index"
}

// MarkValidated records requestID with the tracker TTL.
func (t *Tracker) MarkValidated(ctx context.Context, requestID string) error {
	now := time.Now()
	pipe := t.client.Pipeline()
	pipe.Set(ctx, t.key(requestID), now.UnixMilli(), t.ttl)
	pipe.ZAdd(ctx, t.indexKey(), backend.Z{
		Score:  float64(now.Add(t.ttl).Unix()),
		Member: requestID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to mark request in redis: %w", err)
	}
	return nil
}

// IsValidated reports whether requestID is marked.
func (t *Tracker) IsValidated(ctx context.Context, requestID string) (bool, error) {
	n, err := t.client.Exists(ctx, t.key(requestID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check request in redis: %w", err)
	}
	return n > 0, nil
}

// Clear forgets requestID.
func (t *Tracker) Clear(ctx context.Context, requestID string) error {
	pipe := t.client.Pipeline()
	pipe.Del(ctx, t.key(requestID))
	pipe.ZRem(ctx, t.indexKey(), requestID)
	_, err := pipe.Exec(ctx)
	return err
}

// Pending lists the marked requests whose final response has not arrived yet.
// Expired entries are pruned from the index lazily.
func (t *Tracker) Pending(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	if err := t.client.ZRemRangeByScore(ctx, t.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired requests: %w", err)
	}
	ids, err := t.client.ZRange(ctx, t.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	return ids, nil
}

// Close closes the redis client.
func (t *Tracker) Close() error {
	return t.client.Close()
}
