package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/conduit/internal/logging"
	"github.com/aretw0/conduit/pkg/domain"
	"github.com/aretw0/conduit/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock is held for one request.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager serializes partial and final handling of a request and remembers which
// requests were already handled from a partial response.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	dispatcher ports.Dispatcher
	tracker    ports.ValidationTracker

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the TTL of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a Manager that dispatches through d and records early
// validation in tracker.
func NewManager(d ports.Dispatcher, tracker ports.ValidationTracker, opts ...Option) *Manager {
	m := &Manager{
		dispatcher: d,
		tracker:    tracker,
		locks:      make(map[string]*lockEntry),
		lockTTL:    DefaultLockTTL,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST lock entry.mu, and then call release(requestID) after unlocking.
func (m *Manager) acquire(requestID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[requestID]
	if !exists {
		entry = &lockEntry{}
		m.locks[requestID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(requestID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[requestID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, requestID)
	}
}

// HandlePartial dispatches a partial response. A request already handled from an
// earlier partial is not dispatched again. A successful dispatch marks the request.
func (m *Manager) HandlePartial(ctx context.Context, requestID, intent string, score float64, resp ports.ResponseNode) (domain.Outcome, error) {
	var out domain.Outcome
	err := m.WithLock(ctx, requestID, func(ctx context.Context) error {
		done, err := m.tracker.IsValidated(ctx, requestID)
		if err != nil {
			return fmt.Errorf("failed to check request %s: %w", requestID, err)
		}
		if done {
			out = earlyOutcome(requestID, intent, score, true)
			return nil
		}

		out = m.dispatcher.Dispatch(domain.WithRequestID(ctx, requestID), intent, score, resp, true)
		if out.Status != domain.StatusSuccess {
			return nil
		}
		if err := m.tracker.MarkValidated(ctx, requestID); err != nil {
			return fmt.Errorf("failed to mark request %s: %w", requestID, err)
		}
		m.logger.Debug("request validated early", "request_id", requestID, "intent", intent, "handler", out.Handler)
		return nil
	})
	return out, err
}

// HandleFinal dispatches the final response of a request, unless a partial response
// already completed it. The request is forgotten either way.
func (m *Manager) HandleFinal(ctx context.Context, requestID, intent string, score float64, resp ports.ResponseNode) (domain.Outcome, error) {
	var out domain.Outcome
	err := m.WithLock(ctx, requestID, func(ctx context.Context) error {
		done, err := m.tracker.IsValidated(ctx, requestID)
		if err != nil {
			return fmt.Errorf("failed to check request %s: %w", requestID, err)
		}
		if done {
			out = earlyOutcome(requestID, intent, score, false)
			return m.clear(ctx, requestID)
		}

		out = m.dispatcher.Dispatch(domain.WithRequestID(ctx, requestID), intent, score, resp, false)
		return nil
	})
	return out, err
}

// Forget drops any record of requestID, e.g. when a stream is abandoned.
func (m *Manager) Forget(ctx context.Context, requestID string) error {
	return m.WithLock(ctx, requestID, func(ctx context.Context) error {
		return m.clear(ctx, requestID)
	})
}

func (m *Manager) clear(ctx context.Context, requestID string) error {
	if err := m.tracker.Clear(ctx, requestID); err != nil {
		return fmt.Errorf("failed to clear request %s: %w", requestID, err)
	}
	return nil
}

// Tracker returns the underlying validation tracker.
func (m *Manager) Tracker() ports.ValidationTracker {
	return m.tracker
}

// WithLock executes fn while holding the lock for the request.
func (m *Manager) WithLock(ctx context.Context, requestID string, fn func(context.Context) error) error {
	entry := m.acquire(requestID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(requestID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, requestID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"request_id", requestID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

func earlyOutcome(requestID, intent string, score float64, partial bool) domain.Outcome {
	return domain.Outcome{
		RequestID:      requestID,
		Intent:         intent,
		Score:          score,
		Partial:        partial,
		Status:         domain.StatusSuccess,
		ValidatedEarly: true,
	}
}
