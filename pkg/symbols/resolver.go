package symbols

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"

	"github.com/aretw0/conduit/pkg/domain"
)

// Target is a manifest method bound to a registered handler.
type Target struct {
	Owner  *Type
	Method *Method
}

// Resolver resolves manifest references against a Table.
type Resolver struct {
	table  *Table
	logger *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used to report soft failures.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver creates a resolver over table.
func NewResolver(table *Table, opts ...Option) *Resolver {
	r := &Resolver{
		table:  table,
		logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveType resolves a qualified type name within assembly.
func (r *Resolver) ResolveType(name, assembly string) (*Type, error) {
	sym, ok := r.table.LookupType(name, assembly)
	if !ok {
		if assembly == "" {
			return nil, fmt.Errorf("%w: %s", domain.ErrTypeNotFound, name)
		}
		return nil, fmt.Errorf("%w: %s, %s", domain.ErrTypeNotFound, name, assembly)
	}
	return sym, nil
}

// ResolveMethodTarget binds a manifest method reference to a registered handler.
//
// Parameter types that fail to resolve are logged and left unresolved; they make the
// exact-signature lookup fail instead of aborting it.
func (r *Resolver) ResolveMethodTarget(ref domain.ManifestMethod) (*Target, error) {
	typeName, member, ok := domain.SplitMethodID(ref.MethodID())
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidID, ref.MethodID())
	}

	owner, err := r.ResolveType(typeName, ref.MethodAssembly())
	if err != nil {
		return nil, err
	}

	params := ref.MethodParameters()
	sig := make([]reflect.Type, len(params))
	var paramErrs []error
	for i, p := range params {
		sym, err := r.ResolveType(p.QualifiedTypeName, p.TypeAssembly)
		if err == nil && sym.Go == nil {
			err = fmt.Errorf("%s has no runtime type", sym.QualifiedName())
		}
		if err != nil {
			err = fmt.Errorf("%w: parameter %d (%s) of %s: %w", domain.ErrParameterType, i, p.BindingName(), ref.MethodID(), err)
			r.logger.Warn("parameter type not resolved", "method", ref.MethodID(), "index", i, "type", p.QualifiedTypeName, "error", err)
			paramErrs = append(paramErrs, err)
			continue
		}
		sig[i] = sym.Go
	}

	method, ok := owner.Lookup(member, sig)
	if !ok {
		err := fmt.Errorf("%w: %s%s", domain.ErrMethodNotFound, ref.MethodID(), FormatSignature(sig))
		return nil, errors.Join(append([]error{err}, paramErrs...)...)
	}
	return &Target{Owner: owner, Method: method}, nil
}
