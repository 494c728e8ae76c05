package runtime

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/aretw0/conduit/pkg/domain"
	"github.com/aretw0/conduit/pkg/ports"
	"github.com/aretw0/conduit/pkg/registry"
	"github.com/mitchellh/mapstructure"
)

var (
	responseNodeType = reflect.TypeOf((*ports.ResponseNode)(nil)).Elem()
	errorType        = reflect.TypeOf((*error)(nil)).Elem()

	errMissing   = errors.New("value not found in response")
	errNull      = errors.New("value is null")
	errUnnamed   = errors.New("parameter has no name")
	errNoPayload = errors.New("no response")
	errMismatch  = errors.New("incompatible value")
)

// bindingPaths lists the response paths tried for a parameter name, in order:
// the Wit-style role entity, the plain entity and the top-level key.
func bindingPaths(name string) []string {
	return []string{
		"entities." + name + ":" + name + "[0].value",
		"entities." + name + "[0].value",
		name,
	}
}

// bindArgs extracts and converts every parameter of c from resp.
func bindArgs(c *registry.InvocationContext, resp ports.ResponseNode) ([]reflect.Value, error) {
	args := make([]reflect.Value, len(c.Params))
	for i, p := range c.Params {
		v, err := bindParam(p, resp)
		if err != nil {
			return nil, fmt.Errorf("%w: parameter %d %q: %w", domain.ErrBinding, i, p.Name, err)
		}
		args[i] = v
	}
	return args, nil
}

func bindParam(p registry.Param, resp ports.ResponseNode) (reflect.Value, error) {
	if resp == nil {
		return reflect.Value{}, errNoPayload
	}
	if p.Type == responseNodeType {
		return reflect.ValueOf(resp), nil
	}
	if p.Name == "" {
		return reflect.Value{}, errUnnamed
	}

	for _, name := range append([]string{p.Name}, p.Aliases...) {
		for _, path := range bindingPaths(name) {
			node, ok := resp.Get(path)
			if !ok {
				continue
			}
			return convert(node, p.Type)
		}
	}
	return reflect.Value{}, errMissing
}

// convert decodes node into typ. Scalars convert only without loss: JSON numbers
// fill numeric types when the value fits (5.0 is an int, 5.7 is not), numeric
// strings such as "5" fill numeric types, numbers and strings fill strings, and
// booleans or "true"/"false" fill bools. Integers are parsed from the raw text so
// values above 2^53 keep their precision. Arrays and objects decode with mapstructure.
func convert(node ports.ResponseNode, typ reflect.Type) (reflect.Value, error) {
	kind := node.Kind()
	if kind == ports.KindNull {
		return reflect.Value{}, errNull
	}

	target := reflect.New(typ).Elem()
	switch typ.Kind() {
	case reflect.String:
		if kind != ports.KindString && kind != ports.KindNumber {
			return reflect.Value{}, mismatch(kind, typ)
		}
		target.SetString(node.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		text, err := numericText(node, typ)
		if err != nil {
			return reflect.Value{}, err
		}
		v, err := strconv.ParseInt(text, 10, typ.Bits())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%w: %q does not fit %s", errMismatch, text, typ)
		}
		target.SetInt(v)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		text, err := numericText(node, typ)
		if err != nil {
			return reflect.Value{}, err
		}
		v, err := strconv.ParseUint(text, 10, typ.Bits())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%w: %q does not fit %s", errMismatch, text, typ)
		}
		target.SetUint(v)
	case reflect.Float32, reflect.Float64:
		text, err := numericText(node, typ)
		if err != nil {
			return reflect.Value{}, err
		}
		v, err := strconv.ParseFloat(text, typ.Bits())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%w: %q does not fit %s", errMismatch, text, typ)
		}
		target.SetFloat(v)
	case reflect.Bool:
		switch kind {
		case ports.KindBool:
			target.SetBool(node.Value() == true)
		case ports.KindString:
			v, err := strconv.ParseBool(node.String())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("%w: %q is not a bool", errMismatch, node.String())
			}
			target.SetBool(v)
		default:
			return reflect.Value{}, mismatch(kind, typ)
		}
	default:
		return decode(node.Value(), typ)
	}
	return target, nil
}

// numericText returns the text of a number or of a string holding one.
func numericText(node ports.ResponseNode, typ reflect.Type) (string, error) {
	switch node.Kind() {
	case ports.KindNumber:
		return node.String(), nil
	case ports.KindString:
		return strings.TrimSpace(node.String()), nil
	}
	return "", mismatch(node.Kind(), typ)
}

func mismatch(kind ports.NodeKind, typ reflect.Type) error {
	return fmt.Errorf("%w: cannot convert %s to %s", errMismatch, kind, typ)
}

// decode converts arrays, objects and interface targets with mapstructure.
func decode(raw any, typ reflect.Type) (reflect.Value, error) {
	target := reflect.New(typ)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result: target.Interface(),
	})
	if err != nil {
		return reflect.Value{}, err
	}
	if err := decoder.Decode(raw); err != nil {
		return reflect.Value{}, fmt.Errorf("%w: cannot convert %T to %s: %w", errMismatch, raw, typ, err)
	}
	return target.Elem(), nil
}

// bindErrorArgs binds an error handler. Parameters named intent, reason, error or err
// receive the dispatch key and the failure; a ResponseNode parameter receives the
// response; anything else binds from the response like an action parameter.
// Unnamed string parameters receive the intent and then the reason, in order.
func bindErrorArgs(c *registry.InvocationContext, out *domain.Outcome, resp ports.ResponseNode) ([]reflect.Value, error) {
	args := make([]reflect.Value, len(c.Params))
	positional := []string{out.Intent, out.Reason()}

	for i, p := range c.Params {
		var (
			v   reflect.Value
			err error
		)
		switch name := strings.ToLower(p.Name); {
		case p.Type == responseNodeType:
			v, err = responseValue(resp)
		case p.Type == errorType:
			v = errorValue(out.Err())
		case name == "intent" && p.Type.Kind() == reflect.String:
			v = reflect.ValueOf(out.Intent).Convert(p.Type)
		case (name == "reason" || name == "error" || name == "err") && p.Type.Kind() == reflect.String:
			v = reflect.ValueOf(out.Reason()).Convert(p.Type)
		case name == "" && p.Type.Kind() == reflect.String && len(positional) > 0:
			v = reflect.ValueOf(positional[0]).Convert(p.Type)
			positional = positional[1:]
		default:
			v, err = bindParam(p, resp)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: parameter %d %q: %w", domain.ErrBinding, i, p.Name, err)
		}
		args[i] = v
	}
	return args, nil
}

func responseValue(resp ports.ResponseNode) (reflect.Value, error) {
	if resp == nil {
		return reflect.Zero(responseNodeType), nil
	}
	return reflect.ValueOf(resp), nil
}

func errorValue(err error) reflect.Value {
	if err == nil {
		return reflect.Zero(errorType)
	}
	return reflect.ValueOf(err)
}
