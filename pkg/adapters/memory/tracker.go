package memory

import (
	"context"
	"sync"
	"time"
)

// Tracker implements ports.ValidationTracker in memory.
// Entries expire after the TTL, if one is set. Safe for concurrent use.
type Tracker struct {
	mu   sync.Mutex
	data map[string]time.Time // request ID -> expiry (zero = never)
	ttl  time.Duration
	now  func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithTTL sets how long a request stays marked.
func WithTTL(ttl time.Duration) Option {
	return func(t *Tracker) {
		t.ttl = ttl
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// NewTracker creates a new in-memory tracker.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		data: make(map[string]time.Time),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// MarkValidated records requestID, refreshing its expiry.
func (t *Tracker) MarkValidated(ctx context.Context, requestID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var expiry time.Time
	if t.ttl > 0 {
		expiry = t.now().Add(t.ttl)
	}
	t.data[requestID] = expiry
	t.prune()
	return nil
}

// IsValidated reports whether requestID is marked and not expired.
func (t *Tracker) IsValidated(ctx context.Context, requestID string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	expiry, ok := t.data[requestID]
	if !ok {
		return false, nil
	}
	if !expiry.IsZero() && !t.now().Before(expiry) {
		delete(t.data, requestID)
		return false, nil
	}
	return true, nil
}

// Clear forgets requestID.
func (t *Tracker) Clear(ctx context.Context, requestID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.data, requestID)
	return nil
}

// Len returns the number of live entries.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.prune()
	return len(t.data)
}

// prune drops expired entries. The caller must hold mu.
func (t *Tracker) prune() {
	now := t.now()
	for id, expiry := range t.data {
		if !expiry.IsZero() && !now.Before(expiry) {
			delete(t.data, id)
		}
	}
}
