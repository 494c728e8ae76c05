package registry

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/aretw0/conduit/pkg/domain"
	"github.com/aretw0/conduit/pkg/symbols"
)

// Kind distinguishes action contexts from error-handler contexts sharing one table.
type Kind int

const (
	KindAction Kind = iota
	KindErrorHandler
)

func (k Kind) String() string {
	if k == KindErrorHandler {
		return "error_handler"
	}
	return "action"
}

// Param is a bound handler parameter.
type Param struct {
	// Name is the key used to look the value up in a response.
	Name    string
	Aliases []string
	Type    reflect.Type
}

// InvocationFunc invokes a handler with converted arguments.
type InvocationFunc func(ctx context.Context, args []reflect.Value) (any, error)

// InvocationContext is a manifest action or error handler bound to a callable.
// It is created once during resolution and only read afterwards.
type InvocationContext struct {
	Key             string
	ID              string
	Owner           string
	Kind            Kind
	Params          []Param
	MinConfidence   float64
	MaxConfidence   float64
	ValidatePartial bool
	Invoke          InvocationFunc
}

// NewActionContext builds an action context from a resolved target.
func NewActionContext(a domain.ManifestAction, target *symbols.Target, marker symbols.ActionMarker) *InvocationContext {
	return &InvocationContext{
		Key:             a.Name,
		ID:              a.ID,
		Owner:           target.Owner.Name,
		Kind:            KindAction,
		Params:          bindParams(a.Parameters, target.Method),
		MinConfidence:   marker.MinConfidence,
		MaxConfidence:   marker.MaxConfidence,
		ValidatePartial: marker.ValidatePartial,
		Invoke:          target.Method.Call,
	}
}

// NewErrorHandlerContext builds an error-handler context from a resolved target.
func NewErrorHandlerContext(h domain.ManifestErrorHandler, target *symbols.Target) *InvocationContext {
	return &InvocationContext{
		Key:    h.Name,
		ID:     h.ID,
		Owner:  target.Owner.Name,
		Kind:   KindErrorHandler,
		Params: bindParams(h.Parameters, target.Method),
		Invoke: target.Method.Call,
	}
}

func bindParams(declared []domain.ManifestParameter, m *symbols.Method) []Param {
	sig := m.Signature()
	params := make([]Param, len(sig))
	for i, typ := range sig {
		p := Param{Type: typ, Name: m.ParamName(i)}
		if i < len(declared) {
			if name := declared[i].BindingName(); name != "" {
				p.Name = name
			}
			p.Aliases = declared[i].Aliases
		}
		params[i] = p
	}
	return params
}

// Arity is the number of bound parameters.
func (c *InvocationContext) Arity() int {
	return len(c.Params)
}

// IsErrorHandler reports whether the context was admitted as an error handler.
func (c *InvocationContext) IsErrorHandler() bool {
	return c.Kind == KindErrorHandler
}

// Accepts reports whether score lies in the inclusive confidence band.
func (c *InvocationContext) Accepts(score float64) bool {
	return c.MinConfidence <= score && score <= c.MaxConfidence
}

// Signature renders the parameter types.
func (c *InvocationContext) Signature() string {
	types := make([]reflect.Type, len(c.Params))
	for i, p := range c.Params {
		types[i] = p.Type
	}
	return symbols.FormatSignature(types)
}

func (c *InvocationContext) String() string {
	return c.ID + c.Signature()
}

// Info summarizes the context.
func (c *InvocationContext) Info() domain.ActionInfo {
	info := domain.ActionInfo{
		Intent:    c.Key,
		ID:        c.ID,
		Kind:      c.Kind.String(),
		Signature: c.Signature(),
	}
	for _, p := range c.Params {
		info.Params = append(info.Params, p.Name)
	}
	if c.Kind == KindAction {
		info.MinConfidence = c.MinConfidence
		info.MaxConfidence = c.MaxConfidence
		info.ValidatePartial = c.ValidatePartial
	}
	return info
}

// Table is the dispatch table: a case-insensitive key to an ordered list of contexts.
// Contexts are kept sorted as they are added: actions before error handlers, then by
// descending parameter count; ties keep insertion order. The table is written during
// resolution and read-only afterwards.
type Table struct {
	mu      sync.RWMutex
	entries map[string][]*InvocationContext
	keys    []string
}

// New creates an empty table.
func New() *Table {
	return &Table{
		entries: make(map[string][]*InvocationContext),
	}
}

func normalize(key string) string {
	return strings.ToLower(key)
}

// Add inserts c under its key at its ranked position.
// A context whose kind and signature already exist under the key is rejected.
func (t *Table) Add(c *InvocationContext) error {
	key := normalize(c.Key)
	sig := c.Signature()

	t.mu.Lock()
	defer t.mu.Unlock()

	list, exists := t.entries[key]
	for _, existing := range list {
		if existing.Kind == c.Kind && existing.Signature() == sig {
			return fmt.Errorf("%w: %s %s already bound to %s", domain.ErrDuplicateSignature, c.Key, sig, existing.ID)
		}
	}
	if !exists {
		t.keys = append(t.keys, key)
	}

	pos := len(list)
	for i, existing := range list {
		if existing.Kind > c.Kind || (existing.Kind == c.Kind && existing.Arity() < c.Arity()) {
			pos = i
			break
		}
	}
	list = append(list, nil)
	copy(list[pos+1:], list[pos:])
	list[pos] = c
	t.entries[key] = list
	return nil
}

// Contains reports whether key has any context.
func (t *Table) Contains(key string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.entries[normalize(key)]
	return ok
}

// Contexts returns every context stored under key, in ranked order.
// It returns domain.ErrActionNotFound when key is absent.
func (t *Table) Contexts(key string) ([]*InvocationContext, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	list, ok := t.entries[normalize(key)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrActionNotFound, key)
	}
	return append([]*InvocationContext(nil), list...), nil
}

// ErrorHandlers returns the error-handler contexts of every key, in key order.
func (t *Table) ErrorHandlers() []*InvocationContext {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []*InvocationContext
	for _, key := range t.keys {
		for _, c := range t.entries[key] {
			if c.IsErrorHandler() {
				out = append(out, c)
			}
		}
	}
	return out
}

// Keys returns the normalized keys in the order they were first added.
func (t *Table) Keys() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]string(nil), t.keys...)
}

// Len is the total number of contexts.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n := 0
	for _, list := range t.entries {
		n += len(list)
	}
	return n
}

// Reset removes every context.
func (t *Table) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = make(map[string][]*InvocationContext)
	t.keys = nil
}

// Infos summarizes every context, in key order and ranked order within a key.
func (t *Table) Infos() []domain.ActionInfo {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]domain.ActionInfo, 0, len(t.keys))
	for _, key := range t.keys {
		for _, c := range t.entries[key] {
			out = append(out, c.Info())
		}
	}
	return out
}
