package manifest

import (
	"fmt"
	"io"
	"log/slog"
	"reflect"

	"github.com/aretw0/conduit/pkg/domain"
	"github.com/aretw0/conduit/pkg/registry"
	"github.com/aretw0/conduit/pkg/symbols"
)

// Resolver binds a manifest to registered symbols and owns the resulting dispatch table.
// Resolution is a single-threaded preparation pass; once it is done the table may be
// read concurrently.
type Resolver struct {
	manifest *domain.Manifest
	symbols  *symbols.Resolver
	table    *registry.Table
	logger   *slog.Logger

	entities    map[string]reflect.Type
	entityErrs  []error
	actionErrs  []error
	resolvedAny bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used to report resolution failures.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver creates a resolver for m against table.
func NewResolver(m *domain.Manifest, table *symbols.Table, opts ...Option) *Resolver {
	r := &Resolver{
		manifest: m,
		table:    registry.New(),
		logger:   slog.New(slog.NewJSONHandler(io.Discard, nil)),
		entities: make(map[string]reflect.Type),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.symbols = symbols.NewResolver(table, symbols.WithLogger(r.logger))
	return r
}

// Manifest returns the manifest being resolved.
func (r *Resolver) Manifest() *domain.Manifest {
	return r.manifest
}

// Table returns the dispatch table built by ResolveActions.
func (r *Resolver) Table() *registry.Table {
	return r.table
}

// ResolveEntities resolves the runtime type of every entity.
// Every entity is attempted; unresolved ones are recorded with a nil type.
// It returns false if any entity failed.
func (r *Resolver) ResolveEntities() bool {
	r.entities = make(map[string]reflect.Type, len(r.manifest.Entities))
	r.entityErrs = nil

	for _, e := range r.manifest.Entities {
		sym, err := r.symbols.ResolveType(e.QualifiedName(), e.Assembly)
		if err == nil && sym.Go == nil {
			err = fmt.Errorf("%w: %s has no runtime type", domain.ErrTypeNotFound, sym.QualifiedName())
		}
		if err != nil {
			r.fail(&r.entityErrs, &ResolutionError{Section: "entity", Name: e.Name, ID: e.QualifiedName(), Err: err})
			r.entities[e.Name] = nil
			continue
		}
		r.entities[e.Name] = sym.Go
	}
	return len(r.entityErrs) == 0
}

// EntityType returns the resolved type of an entity.
// ok is false for unknown or unresolved entities.
func (r *Resolver) EntityType(name string) (reflect.Type, bool) {
	typ := r.entities[name]
	return typ, typ != nil
}

// ResolveActions rebuilds the dispatch table from every action and then every error
// handler. Both phases always run. It returns true only if both fully succeed;
// entries that did resolve are kept either way.
func (r *Resolver) ResolveActions() bool {
	r.table.Reset()
	r.actionErrs = nil

	actionsOK := r.resolveActions()
	handlersOK := r.resolveErrorHandlers()
	r.resolvedAny = true

	r.logger.Debug("manifest resolved",
		"manifest", r.manifest.ID,
		"contexts", r.table.Len(),
		"keys", len(r.table.Keys()),
		"failures", len(r.actionErrs),
	)
	return actionsOK && handlersOK
}

func (r *Resolver) resolveActions() bool {
	ok := true
	for _, a := range r.manifest.Actions {
		if err := r.resolveAction(a); err != nil {
			r.fail(&r.actionErrs, &ResolutionError{Section: "action", Name: a.Name, ID: a.ID, Err: err})
			ok = false
		}
	}
	return ok
}

func (r *Resolver) resolveAction(a domain.ManifestAction) error {
	target, err := r.symbols.ResolveMethodTarget(a)
	if err != nil {
		return err
	}
	marker, ok := target.Method.ActionMarker()
	if !ok {
		return fmt.Errorf("%w: %s is not an action", domain.ErrMissingMarker, target.Method.QualifiedName())
	}
	r.checkBounds(a, marker)
	return r.table.Add(registry.NewActionContext(a, target, marker))
}

func (r *Resolver) resolveErrorHandlers() bool {
	ok := true
	for _, h := range r.manifest.ErrorHandlers {
		if err := r.resolveErrorHandler(h); err != nil {
			r.fail(&r.actionErrs, &ResolutionError{Section: "error handler", Name: h.Name, ID: h.ID, Err: err})
			ok = false
		}
	}
	return ok
}

func (r *Resolver) resolveErrorHandler(h domain.ManifestErrorHandler) error {
	target, err := r.symbols.ResolveMethodTarget(h)
	if err != nil {
		return err
	}
	if !target.Method.IsErrorHandler() {
		return fmt.Errorf("%w: %s is not an error handler", domain.ErrMissingMarker, target.Method.QualifiedName())
	}
	return r.table.Add(registry.NewErrorHandlerContext(h, target))
}

// checkBounds warns when the manifest disagrees with the marker, which wins.
func (r *Resolver) checkBounds(a domain.ManifestAction, marker symbols.ActionMarker) {
	mismatch := (a.MinConfidence != nil && *a.MinConfidence != marker.MinConfidence) ||
		(a.MaxConfidence != nil && *a.MaxConfidence != marker.MaxConfidence)
	if mismatch {
		r.logger.Warn("manifest confidence differs from handler marker; using marker",
			"action", a.ID,
			"marker_min", marker.MinConfidence,
			"marker_max", marker.MaxConfidence,
		)
	}
	if a.ValidatePartial != marker.ValidatePartial {
		r.logger.Warn("manifest validatePartial differs from handler marker; using marker",
			"action", a.ID,
			"marker", marker.ValidatePartial,
		)
	}
}

func (r *Resolver) fail(errs *[]error, err *ResolutionError) {
	r.logger.Error("manifest entry not resolved",
		"section", err.Section,
		"name", err.Name,
		"id", err.ID,
		"error", err.Err,
	)
	*errs = append(*errs, err)
}

// ContainsAction reports whether name has any context.
func (r *Resolver) ContainsAction(name string) bool {
	return r.table.Contains(name)
}

// InvocationContexts returns the contexts of name, most parameters first.
// It returns domain.ErrActionNotFound when name is absent.
func (r *Resolver) InvocationContexts(name string) ([]*registry.InvocationContext, error) {
	return r.table.Contexts(name)
}

// ErrorHandlerContexts returns every error-handler context in the table.
func (r *Resolver) ErrorHandlerContexts() []*registry.InvocationContext {
	return r.table.ErrorHandlers()
}

// Resolved reports whether ResolveActions has run.
func (r *Resolver) Resolved() bool {
	return r.resolvedAny
}

// Err returns the failures of the last entity and action passes, or nil.
func (r *Resolver) Err() error {
	errs := append(append([]error(nil), r.entityErrs...), r.actionErrs...)
	if len(errs) == 0 {
		return nil
	}
	return &AggregateError{Errors: errs}
}
