package symbols

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/aretw0/conduit/pkg/domain"
	"github.com/aretw0/conduit/pkg/ports"
)

// Type is a registered type symbol.
// Go is nil for owner-only types, which hold methods but cannot be parameter types.
type Type struct {
	Name     string
	Assembly string
	Go       reflect.Type

	methods map[string][]*Method
}

// QualifiedName returns the name with its assembly, as "Name, Assembly".
func (t *Type) QualifiedName() string {
	if t.Assembly == "" {
		return t.Name
	}
	return t.Name + ", " + t.Assembly
}

// Lookup returns the member overload whose signature matches sig exactly.
func (t *Type) Lookup(member string, sig []reflect.Type) (*Method, bool) {
	for _, m := range t.methods[member] {
		if m.Matches(sig) {
			return m, true
		}
	}
	return nil, false
}

// Methods returns the registered overloads of member.
func (t *Type) Methods(member string) []*Method {
	return append([]*Method(nil), t.methods[member]...)
}

type typeKey struct {
	name     string
	assembly string
}

// Table holds the registered types and methods.
// Registration is safe for concurrent use; it normally happens once, during init.
type Table struct {
	mu     sync.RWMutex
	types  map[typeKey]*Type
	byName map[string][]*Type
}

// NewTable creates a table pre-populated with the built-in parameter types.
func NewTable() *Table {
	t := &Table{
		types:  make(map[typeKey]*Type),
		byName: make(map[string][]*Type),
	}
	for name, typ := range builtins {
		t.declare(name, "", typ)
	}
	return t
}

var builtins = map[string]reflect.Type{
	"System.String":        reflect.TypeOf(""),
	"System.Int32":         reflect.TypeOf(int(0)),
	"System.Int64":         reflect.TypeOf(int64(0)),
	"System.Single":        reflect.TypeOf(float32(0)),
	"System.Double":        reflect.TypeOf(float64(0)),
	"System.Boolean":       reflect.TypeOf(false),
	"System.Exception":     errorType,
	"string":               reflect.TypeOf(""),
	"int":                  reflect.TypeOf(int(0)),
	"int64":                reflect.TypeOf(int64(0)),
	"float32":              reflect.TypeOf(float32(0)),
	"float64":              reflect.TypeOf(float64(0)),
	"bool":                 reflect.TypeOf(false),
	"error":                errorType,
	"Conduit.ResponseNode": reflect.TypeOf((*ports.ResponseNode)(nil)).Elem(),
}

func (t *Table) declare(name, assembly string, typ reflect.Type) *Type {
	key := typeKey{name, assembly}
	if existing, ok := t.types[key]; ok {
		return existing
	}
	sym := &Type{
		Name:     name,
		Assembly: assembly,
		Go:       typ,
		methods:  make(map[string][]*Method),
	}
	t.types[key] = sym
	t.byName[name] = append(t.byName[name], sym)
	return sym
}

// RegisterType declares a type that manifests may reference as an entity or parameter type.
// Registering the same Go type twice is a no-op.
func (t *Table) RegisterType(name, assembly string, typ reflect.Type) error {
	if name == "" || typ == nil {
		return fmt.Errorf("%w: type %q needs a name and a Go type", ErrInvalidHandler, name)
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if existing, ok := t.types[typeKey{name, assembly}]; ok {
		switch existing.Go {
		case nil:
			existing.Go = typ
			return nil
		case typ:
			return nil
		}
		return fmt.Errorf("%w: type %s is %s", domain.ErrDuplicateSymbol, existing.QualifiedName(), existing.Go)
	}
	t.declare(name, assembly, typ)
	return nil
}

// MustRegisterType is like RegisterType but panics on error.
func (t *Table) MustRegisterType(name, assembly string, typ reflect.Type) {
	if err := t.RegisterType(name, assembly, typ); err != nil {
		panic(err)
	}
}

// Register adds a handler. Its owner type is declared implicitly when missing.
// Registering a second overload with an identical signature returns ErrDuplicateSymbol.
func (t *Table) Register(m Method) error {
	method := m
	if err := method.compile(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	owner := t.declare(method.Owner, method.Assembly, nil)
	if _, dup := owner.Lookup(method.Name, method.in); dup {
		return fmt.Errorf("%w: %s%s", domain.ErrDuplicateSymbol, method.QualifiedName(), FormatSignature(method.in))
	}
	owner.methods[method.Name] = append(owner.methods[method.Name], &method)
	return nil
}

// MustRegister is like Register but panics on error.
// It is intended for init-time registration.
func (t *Table) MustRegister(m Method) {
	if err := t.Register(m); err != nil {
		panic(err)
	}
}

// LookupType finds a type by exact name and assembly, then among the built-ins, then by
// name alone when assembly is empty and the name is unambiguous.
func (t *Table) LookupType(name, assembly string) (*Type, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if sym, ok := t.types[typeKey{name, assembly}]; ok {
		return sym, true
	}
	if sym, ok := t.types[typeKey{name, ""}]; ok {
		if _, builtin := builtins[name]; builtin {
			return sym, true
		}
	}
	if assembly == "" {
		if candidates := t.byName[name]; len(candidates) == 1 {
			return candidates[0], true
		}
	}
	return nil, false
}
