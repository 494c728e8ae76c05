package domain

// ActionInfo summarizes one entry of the dispatch table for introspection surfaces
// such as the HTTP API, the MCP server and the CLI inspector.
type ActionInfo struct {
	Intent          string   `json:"intent"`
	ID              string   `json:"id"`
	Kind            string   `json:"kind"`
	Signature       string   `json:"signature"`
	Params          []string `json:"params,omitempty"`
	MinConfidence   float64  `json:"min_confidence,omitempty"`
	MaxConfidence   float64  `json:"max_confidence,omitempty"`
	ValidatePartial bool     `json:"validate_partial,omitempty"`
}
