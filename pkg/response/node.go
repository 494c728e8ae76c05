package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/conduit/pkg/ports"
	"github.com/tidwall/gjson"
)

// ErrInvalidJSON is returned when a payload is not valid JSON.
var ErrInvalidJSON = errors.New("response: invalid JSON")

// Node is a gjson-backed ports.ResponseNode.
type Node struct {
	res gjson.Result
}

var _ ports.ResponseNode = (*Node)(nil)

// Parse wraps a JSON document.
func Parse(payload string) (*Node, error) {
	if !gjson.Valid(payload) {
		return nil, ErrInvalidJSON
	}
	return &Node{res: gjson.Parse(payload)}, nil
}

// ParseBytes wraps a JSON document.
func ParseBytes(payload []byte) (*Node, error) {
	if !gjson.ValidBytes(payload) {
		return nil, ErrInvalidJSON
	}
	return &Node{res: gjson.ParseBytes(payload)}, nil
}

// FromValue encodes v as JSON and wraps the result.
func FromValue(v any) (*Node, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("response: %w", err)
	}
	return ParseBytes(data)
}

// Empty returns an empty object node.
func Empty() *Node {
	return &Node{res: gjson.Parse("{}")}
}

func (n *Node) wrap(res gjson.Result) (ports.ResponseNode, bool) {
	if !res.Exists() {
		return nil, false
	}
	return &Node{res: res}, true
}

// Get looks up a descendant by path. The empty path returns n itself.
func (n *Node) Get(path string) (ports.ResponseNode, bool) {
	gp, ok := translate(path)
	if !ok {
		return nil, false
	}
	if gp == "" {
		return n, true
	}
	return n.wrap(n.res.Get(gp))
}

// Index returns the i-th element of an array node.
func (n *Node) Index(i int) (ports.ResponseNode, bool) {
	if !n.res.IsArray() || i < 0 {
		return nil, false
	}
	return n.wrap(n.res.Get(strconv.Itoa(i)))
}

// Keys lists object keys in document order.
func (n *Node) Keys() []string {
	if !n.res.IsObject() {
		return nil
	}
	var keys []string
	n.res.ForEach(func(key, _ gjson.Result) bool {
		keys = append(keys, key.String())
		return true
	})
	return keys
}

// Len counts array elements or object keys; scalars have length 0.
func (n *Node) Len() int {
	switch {
	case n.res.IsArray():
		return len(n.res.Array())
	case n.res.IsObject():
		return len(n.Keys())
	}
	return 0
}

// Kind reports the node's JSON type.
func (n *Node) Kind() ports.NodeKind {
	switch n.res.Type {
	case gjson.String:
		return ports.KindString
	case gjson.Number:
		return ports.KindNumber
	case gjson.True, gjson.False:
		return ports.KindBool
	case gjson.JSON:
		if n.res.IsArray() {
			return ports.KindArray
		}
		return ports.KindObject
	}
	return ports.KindNull
}

// Value returns the node as plain Go data.
func (n *Node) Value() any {
	return n.res.Value()
}

// String returns scalars as text and containers as raw JSON.
func (n *Node) String() string {
	return n.res.String()
}

// MarshalJSON returns the node's raw JSON.
func (n *Node) MarshalJSON() ([]byte, error) {
	if n.res.Raw == "" {
		return []byte("null"), nil
	}
	return []byte(n.res.Raw), nil
}

// translate converts "a.b[0].c" into the gjson path "a.b.0.c", escaping keys.
// ok is false for malformed brackets.
func translate(path string) (string, bool) {
	path = strings.Trim(path, ".")
	if path == "" {
		return "", true
	}

	var out []string
	for _, segment := range strings.Split(path, ".") {
		key, rest, bracketed := strings.Cut(segment, "[")
		if key != "" {
			out = append(out, gjson.Escape(key))
		}
		if !bracketed {
			if key == "" {
				return "", false
			}
			continue
		}
		for _, part := range strings.Split("["+rest, "[")[1:] {
			inner, tail, found := strings.Cut(part, "]")
			if !found || tail != "" || inner == "" {
				return "", false
			}
			if _, err := strconv.Atoi(inner); err == nil {
				out = append(out, inner)
				continue
			}
			out = append(out, gjson.Escape(strings.Trim(inner, `"'`)))
		}
	}
	return strings.Join(out, "."), true
}
