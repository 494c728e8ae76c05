package conduit

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/conduit/internal/runtime"
	"github.com/aretw0/conduit/pkg/adapters/memory"
	"github.com/aretw0/conduit/pkg/domain"
	"github.com/aretw0/conduit/pkg/manifest"
	"github.com/aretw0/conduit/pkg/ports"
	"github.com/aretw0/conduit/pkg/response"
	"github.com/aretw0/conduit/pkg/session"
	"github.com/aretw0/conduit/pkg/symbols"
)

// DefaultTrackerTTL is how long the default in-memory tracker remembers a request
// handled from a partial response.
const DefaultTrackerTTL = 5 * time.Minute

// Conduit is the high-level entry point of the library.
// It resolves a manifest against a symbol table once and then dispatches responses.
type Conduit struct {
	resolver *manifest.Resolver
	engine   *runtime.Engine
	sessions *session.Manager

	hooks   domain.LifecycleHooks
	logger  *slog.Logger
	tracker ports.ValidationTracker
	locker  ports.DistributedLocker
	strict  bool
	newID   func() string
}

// Option defines a functional option for configuring Conduit.
type Option func(*Conduit)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Conduit) {
		c.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks. Repeated calls chain the hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Conduit) {
		c.hooks = c.hooks.Merge(hooks)
	}
}

// WithTracker sets where early-validated requests are recorded.
// The default is an in-memory tracker with DefaultTrackerTTL.
func WithTracker(tracker ports.ValidationTracker) Option {
	return func(c *Conduit) {
		c.tracker = tracker
	}
}

// WithLocker serializes partial and final handling across replicas.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(c *Conduit) {
		c.locker = locker
	}
}

// WithStrict makes New fail when any manifest entry does not resolve.
func WithStrict(strict bool) Option {
	return func(c *Conduit) {
		c.strict = strict
	}
}

// WithRequestIDs replaces the generator of request IDs.
func WithRequestIDs(gen func() string) Option {
	return func(c *Conduit) {
		c.newID = gen
	}
}

// New resolves m against table and returns a ready dispatcher.
// Entries that fail to resolve are skipped and reported by Err, unless WithStrict is set.
func New(m *domain.Manifest, table *symbols.Table, opts ...Option) (*Conduit, error) {
	if m == nil {
		return nil, fmt.Errorf("manifest is required")
	}
	if table == nil {
		table = symbols.NewTable()
	}

	c := &Conduit{}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if m.ID != "" {
		c.logger = c.logger.With("manifest", m.ID)
	}
	if c.tracker == nil {
		c.tracker = memory.NewTracker(memory.WithTTL(DefaultTrackerTTL))
	}

	c.resolver = manifest.NewResolver(m, table, manifest.WithLogger(c.logger))
	c.resolver.ResolveEntities()
	c.resolver.ResolveActions()
	if err := c.resolver.Err(); err != nil {
		if c.strict {
			return nil, err
		}
		c.logger.Warn("manifest resolved with errors",
			"failures", len(manifest.ResolutionErrors(err)),
			"err", err,
		)
	}

	runtimeOpts := []runtime.Option{
		runtime.WithLogger(c.logger),
		runtime.WithLifecycleHooks(c.hooks),
	}
	if c.newID != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithRequestIDs(c.newID))
	}
	c.engine = runtime.NewEngine(c.resolver.Table(), runtimeOpts...)

	sessionOpts := []session.Option{session.WithLogger(c.logger)}
	if c.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(c.locker))
	}
	c.sessions = session.NewManager(c.engine, c.tracker, sessionOpts...)

	return c, nil
}

// Load reads, validates and resolves the manifest at path.
func Load(path string, table *symbols.Table, opts ...Option) (*Conduit, error) {
	m, err := manifest.Load(path)
	if err != nil {
		return nil, err
	}
	return New(m, table, opts...)
}

// Dispatch routes intent to its handlers. The Outcome describes what happened.
func (c *Conduit) Dispatch(ctx context.Context, intent string, score float64, resp ports.ResponseNode, partial bool) domain.Outcome {
	return c.engine.Dispatch(ctx, intent, score, resp, partial)
}

// DispatchResponse dispatches the top intent of resp with its confidence.
// A response without an intent is unhandled.
func (c *Conduit) DispatchResponse(ctx context.Context, resp ports.ResponseNode, partial bool) domain.Outcome {
	intent, score, ok := topIntent(resp)
	if !ok {
		return c.noIntent(ctx, resp, partial)
	}
	return c.engine.Dispatch(ctx, intent, score, resp, partial)
}

// HandlePartial dispatches a partial response of a streamed request. Once a partial
// response completes, later responses of requestID are not dispatched again.
func (c *Conduit) HandlePartial(ctx context.Context, requestID string, resp ports.ResponseNode) (domain.Outcome, error) {
	intent, score, ok := topIntent(resp)
	if !ok {
		return c.noIntent(domain.WithRequestID(ctx, requestID), resp, true), nil
	}
	return c.sessions.HandlePartial(ctx, requestID, intent, score, resp)
}

// HandleFinal dispatches the final response of requestID, unless a partial response
// already completed it, in which case the Outcome has ValidatedEarly set.
func (c *Conduit) HandleFinal(ctx context.Context, requestID string, resp ports.ResponseNode) (domain.Outcome, error) {
	intent, score, ok := topIntent(resp)
	if !ok {
		if err := c.sessions.Forget(ctx, requestID); err != nil {
			return domain.Outcome{}, err
		}
		return c.noIntent(domain.WithRequestID(ctx, requestID), resp, false), nil
	}
	return c.sessions.HandleFinal(ctx, requestID, intent, score, resp)
}

func (c *Conduit) noIntent(ctx context.Context, resp ports.ResponseNode, partial bool) domain.Outcome {
	out := c.engine.Dispatch(ctx, "", 0, resp, partial)
	out.Failures = append(out.Failures, domain.Failure{Kind: domain.FailureNoIntent, Err: domain.ErrNoIntent})
	return out
}

// topIntent reads the first intent of resp. A missing confidence counts as zero.
func topIntent(resp ports.ResponseNode) (string, float64, bool) {
	intent, ok := response.IntentName(resp)
	if !ok || intent == "" {
		return "", 0, false
	}
	score, _ := response.IntentConfidence(resp)
	return intent, score, true
}

// Manifest returns the resolved manifest.
func (c *Conduit) Manifest() *domain.Manifest {
	return c.resolver.Manifest()
}

// Resolver exposes the manifest resolver for introspection.
func (c *Conduit) Resolver() *manifest.Resolver {
	return c.resolver
}

// Sessions returns the early-validation session manager.
func (c *Conduit) Sessions() *session.Manager {
	return c.sessions
}

// Actions summarizes the dispatch table.
func (c *Conduit) Actions() []domain.ActionInfo {
	return c.resolver.Table().Infos()
}

// Err returns the resolution failures, or nil when every entry resolved.
func (c *Conduit) Err() error {
	return c.resolver.Err()
}

// Version is the manifest format version.
func (c *Conduit) Version() string {
	return c.resolver.Manifest().Version
}
