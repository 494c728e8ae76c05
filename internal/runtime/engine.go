package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"runtime/debug"
	"time"

	"github.com/aretw0/conduit/pkg/domain"
	"github.com/aretw0/conduit/pkg/ports"
	"github.com/aretw0/conduit/pkg/registry"
	"github.com/google/uuid"
)

// Engine selects and invokes handlers from a resolved dispatch table.
// It holds no per-request state and is safe for concurrent use once the table is
// no longer being written.
type Engine struct {
	table  *registry.Table
	logger *slog.Logger
	hooks  domain.LifecycleHooks
	newID  func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithRequestIDs replaces the request ID generator used when the context carries none.
func WithRequestIDs(gen func() string) Option {
	return func(e *Engine) {
		if gen != nil {
			e.newID = gen
		}
	}
}

// NewEngine creates an engine over table.
func NewEngine(table *registry.Table, opts ...Option) *Engine {
	e := &Engine{
		table:  table,
		logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Dispatch runs the dispatch state machine for one recognized intent.
//
// Candidates are tried in ranked order. A candidate is skipped when the score is outside
// its inclusive confidence band, when the response is partial and the candidate does not
// validate partials, or when a parameter cannot be bound. A candidate whose invocation
// fails or panics is recorded and the next one is tried. When none completes, the first
// error handler of the key is invoked, except for partial responses: those end Unhandled
// so that the final response of the request decides. Nothing is returned as an error;
// the Outcome describes what happened.
func (e *Engine) Dispatch(ctx context.Context, intent string, score float64, resp ports.ResponseNode, partial bool) domain.Outcome {
	if ctx == nil {
		ctx = context.Background()
	}
	id := domain.RequestID(ctx)
	if id == "" {
		id = e.newID()
		ctx = domain.WithRequestID(ctx, id)
	}

	out := domain.Outcome{RequestID: id, Intent: intent, Score: score, Partial: partial}
	event := &domain.DispatchEvent{
		Timestamp: time.Now(),
		RequestID: id,
		Intent:    intent,
		Score:     score,
		Partial:   partial,
	}
	if e.hooks.OnDispatch != nil {
		e.hooks.OnDispatch(ctx, event)
	}
	log := e.logger.With("request_id", id, "intent", intent)

	candidates, err := e.table.Contexts(intent)
	if err != nil {
		log.Debug("no handler for intent")
		return e.finish(ctx, out)
	}

	for _, c := range candidates {
		if c.IsErrorHandler() {
			continue
		}
		if !c.Accepts(score) {
			e.reject(ctx, event, &out, log, domain.Failure{
				Kind:    domain.FailureConfidence,
				Handler: c.String(),
				Err:     fmt.Errorf("%w: %g not in [%g, %g]", domain.ErrConfidence, score, c.MinConfidence, c.MaxConfidence),
			})
			continue
		}
		if partial && !c.ValidatePartial {
			e.reject(ctx, event, &out, log, domain.Failure{
				Kind:    domain.FailurePartial,
				Handler: c.String(),
				Err:     domain.ErrPartialIneligible,
			})
			continue
		}
		args, err := bindArgs(c, resp)
		if err != nil {
			e.reject(ctx, event, &out, log, domain.Failure{Kind: domain.FailureBinding, Handler: c.String(), Err: err})
			continue
		}

		result, err := e.invoke(ctx, &out, c, args)
		if err != nil {
			log.Warn("handler failed", "handler", c.String(), "error", err)
			e.reject(ctx, event, &out, log, domain.Failure{Kind: domain.FailureInvocation, Handler: c.String(), Err: err})
			continue
		}

		out.Status = domain.StatusSuccess
		out.Handler = c.String()
		out.Result = result
		return e.finish(ctx, out)
	}

	if partial {
		log.Debug("partial response not handled; waiting for the final response", "failures", len(out.Failures))
		return e.finish(ctx, out)
	}
	return e.routeError(ctx, candidates, out, resp, log)
}

// routeError invokes the first error handler of the key.
func (e *Engine) routeError(ctx context.Context, candidates []*registry.InvocationContext, out domain.Outcome, resp ports.ResponseNode, log *slog.Logger) domain.Outcome {
	var handler *registry.InvocationContext
	for _, c := range candidates {
		if c.IsErrorHandler() {
			handler = c
			break
		}
	}
	if handler == nil {
		log.Debug("no suitable handler", "failures", len(out.Failures))
		return e.finish(ctx, out)
	}

	args, err := bindErrorArgs(handler, &out, resp)
	if err == nil {
		var result any
		result, err = e.invoke(ctx, &out, handler, args)
		if err == nil {
			out.Status = domain.StatusErrorHandled
			out.Handler = handler.String()
			out.Result = result
			return e.finish(ctx, out)
		}
	}

	log.Error("error handler failed", "handler", handler.String(), "error", err)
	out.Failures = append(out.Failures, domain.Failure{Kind: domain.FailureHandler, Handler: handler.String(), Err: err})
	return e.finish(ctx, out)
}

// invoke calls the handler, converting a panic into an error.
func (e *Engine) invoke(ctx context.Context, out *domain.Outcome, c *registry.InvocationContext, args []reflect.Value) (result any, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic in %s: %v\n%s", domain.ErrInvocation, c.ID, r, debug.Stack())
		}
		if e.hooks.OnInvoke != nil {
			e.hooks.OnInvoke(ctx, &domain.InvokeEvent{
				RequestID:    out.RequestID,
				Intent:       out.Intent,
				Handler:      c.ID,
				ErrorHandler: c.IsErrorHandler(),
				Duration:     time.Since(start),
				Err:          err,
			})
		}
	}()

	result, err = c.Invoke(ctx, args)
	if err != nil {
		err = fmt.Errorf("%w: %w", domain.ErrInvocation, err)
	}
	return result, err
}

func (e *Engine) reject(ctx context.Context, event *domain.DispatchEvent, out *domain.Outcome, log *slog.Logger, f domain.Failure) {
	out.Failures = append(out.Failures, f)
	if f.Kind != domain.FailureInvocation {
		log.Debug("candidate skipped", "handler", f.Handler, "kind", f.Kind, "reason", f.Err)
	}
	if e.hooks.OnReject != nil {
		e.hooks.OnReject(ctx, event, f)
	}
}

func (e *Engine) finish(ctx context.Context, out domain.Outcome) domain.Outcome {
	if e.hooks.OnOutcome != nil {
		e.hooks.OnOutcome(ctx, &out)
	}
	return out
}
