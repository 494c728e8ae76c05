package symbols

import (
	"context"
	"fmt"
	"reflect"
	"strings"
)

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// Method is a handler registration.
// A leading context.Context parameter of Func is supplied by the dispatcher and is not
// part of the signature.
type Method struct {
	Owner    string
	Assembly string
	Name     string
	Func     any
	Marker   Marker
	// Params optionally names the parameters of Func, in order, excluding a leading
	// context.Context. Manifest parameter names take precedence when present.
	Params []string

	fn        reflect.Value
	in        []reflect.Type
	withCtx   bool
	resultIdx int
	errIdx    int
}

func (m *Method) compile() error {
	if m.Name == "" || m.Owner == "" {
		return fmt.Errorf("%w: owner and name are required", ErrInvalidHandler)
	}
	fn := reflect.ValueOf(m.Func)
	if !fn.IsValid() || fn.Kind() != reflect.Func || fn.IsNil() {
		return fmt.Errorf("%w: %s is %T", ErrInvalidHandler, m.QualifiedName(), m.Func)
	}
	ft := fn.Type()
	if ft.IsVariadic() {
		return fmt.Errorf("%w: %s is variadic", ErrInvalidHandler, m.QualifiedName())
	}

	start := 0
	if ft.NumIn() > 0 && ft.In(0) == contextType {
		m.withCtx = true
		start = 1
	}
	m.in = make([]reflect.Type, 0, ft.NumIn()-start)
	for i := start; i < ft.NumIn(); i++ {
		m.in = append(m.in, ft.In(i))
	}
	if len(m.Params) > 0 && len(m.Params) != len(m.in) {
		return fmt.Errorf("%w: %s names %d parameters, function takes %d",
			ErrInvalidHandler, m.QualifiedName(), len(m.Params), len(m.in))
	}

	m.resultIdx, m.errIdx = -1, -1
	switch ft.NumOut() {
	case 0:
	case 1:
		if ft.Out(0) == errorType {
			m.errIdx = 0
		} else {
			m.resultIdx = 0
		}
	case 2:
		if ft.Out(1) != errorType {
			return fmt.Errorf("%w: %s second result must be error", ErrInvalidHandler, m.QualifiedName())
		}
		m.resultIdx, m.errIdx = 0, 1
	default:
		return fmt.Errorf("%w: %s returns %d values", ErrInvalidHandler, m.QualifiedName(), ft.NumOut())
	}

	m.fn = fn
	return nil
}

// QualifiedName returns Owner.Name.
func (m *Method) QualifiedName() string {
	return m.Owner + "." + m.Name
}

// Signature returns the parameter types, excluding a leading context.Context.
func (m *Method) Signature() []reflect.Type {
	return append([]reflect.Type(nil), m.in...)
}

// ParamName returns the registered name of the i-th parameter, or "".
func (m *Method) ParamName(i int) string {
	if i < len(m.Params) {
		return m.Params[i]
	}
	return ""
}

// Matches reports whether the method takes exactly the given parameter types.
// A nil entry never matches.
func (m *Method) Matches(sig []reflect.Type) bool {
	if len(sig) != len(m.in) {
		return false
	}
	for i, t := range sig {
		if t == nil || t != m.in[i] {
			return false
		}
	}
	return true
}

// ActionMarker returns the action marker, if the method carries one.
func (m *Method) ActionMarker() (ActionMarker, bool) {
	switch mk := m.Marker.(type) {
	case ActionMarker:
		return mk, true
	case *ActionMarker:
		if mk != nil {
			return *mk, true
		}
	}
	return ActionMarker{}, false
}

// IsErrorHandler reports whether the method carries an ErrorHandlerMarker.
func (m *Method) IsErrorHandler() bool {
	switch mk := m.Marker.(type) {
	case ErrorHandlerMarker:
		return true
	case *ErrorHandlerMarker:
		return mk != nil
	}
	return false
}

// Call invokes the handler with already-converted arguments.
// It returns the handler's value result (if any) and its error (if any).
func (m *Method) Call(ctx context.Context, args []reflect.Value) (any, error) {
	in := args
	if m.withCtx {
		if ctx == nil {
			ctx = context.Background()
		}
		in = make([]reflect.Value, 0, len(args)+1)
		in = append(in, reflect.ValueOf(ctx))
		in = append(in, args...)
	}
	out := m.fn.Call(in)

	var (
		result any
		err    error
	)
	if m.resultIdx >= 0 {
		result = out[m.resultIdx].Interface()
	}
	if m.errIdx >= 0 {
		if e, ok := out[m.errIdx].Interface().(error); ok {
			err = e
		}
	}
	return result, err
}

// FormatSignature renders types as "(string, int)"; unresolved entries print as "?".
func FormatSignature(sig []reflect.Type) string {
	parts := make([]string, len(sig))
	for i, t := range sig {
		if t == nil {
			parts[i] = "?"
			continue
		}
		parts[i] = t.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
