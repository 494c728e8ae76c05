// Package response implements ports.ResponseNode over JSON recognition results.
//
// Paths use dots for object keys and brackets for array indexes, as in
// "entities.color:color[0].value". Nodes are immutable and navigate lazily: nothing is
// decoded until a path is looked up.
package response
