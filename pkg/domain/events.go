package domain

import (
	"context"
	"time"
)

// DispatchEvent describes a dispatch request as it enters the engine.
type DispatchEvent struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
	Intent    string    `json:"intent"`
	Score     float64   `json:"score"`
	Partial   bool      `json:"partial"`
}

// InvokeEvent describes one handler invocation.
type InvokeEvent struct {
	RequestID    string        `json:"request_id"`
	Intent       string        `json:"intent"`
	Handler      string        `json:"handler"`
	ErrorHandler bool          `json:"error_handler,omitempty"`
	Duration     time.Duration `json:"duration"`
	Err          error         `json:"-"`
}

// LifecycleHooks defines callbacks for dispatch observability.
// Hooks run synchronously on the dispatching goroutine.
type LifecycleHooks struct {
	OnDispatch func(context.Context, *DispatchEvent)
	OnReject   func(context.Context, *DispatchEvent, Failure)
	OnInvoke   func(context.Context, *InvokeEvent)
	OnOutcome  func(context.Context, *Outcome)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnDispatch: chain2(h.OnDispatch, other.OnDispatch),
		OnReject: func(ctx context.Context, e *DispatchEvent, f Failure) {
			if h.OnReject != nil {
				h.OnReject(ctx, e, f)
			}
			if other.OnReject != nil {
				other.OnReject(ctx, e, f)
			}
		},
		OnInvoke:  chain2(h.OnInvoke, other.OnInvoke),
		OnOutcome: chain2(h.OnOutcome, other.OnOutcome),
	}
}

func chain2[T any](a, b func(context.Context, T)) func(context.Context, T) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, v T) {
		a(ctx, v)
		b(ctx, v)
	}
}
