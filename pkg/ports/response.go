package ports

// NodeKind identifies the shape of a ResponseNode.
type NodeKind int

const (
	KindNull NodeKind = iota
	KindObject
	KindArray
	KindString
	KindNumber
	KindBool
)

func (k NodeKind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "null"
	}
}

// ResponseNode is an immutable, lazily navigated recognition result.
// The dispatcher only reads it; it never builds one.
type ResponseNode interface {
	// Get looks up a descendant by path, e.g. "entities.color[0].value".
	// ok is false when any segment is missing.
	Get(path string) (node ResponseNode, ok bool)
	// Index returns the i-th element of an array node.
	Index(i int) (node ResponseNode, ok bool)
	// Keys lists the children of an object node in document order.
	Keys() []string
	// Len is the number of elements of an array node or keys of an object node.
	Len() int
	Kind() NodeKind
	// Value returns the node as plain Go data (map[string]any, []any, string, float64, bool or nil).
	Value() any
	// String returns scalars as text and containers as raw JSON.
	String() string
}
