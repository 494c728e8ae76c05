package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/conduit/pkg/domain"
)

// Overlay contains the result of one dispatch to visualize on the graph.
// Handlers are identified the way outcomes name them: ID followed by the signature.
type Overlay struct {
	Handled  string
	Rejected []string
}

// GenerateMermaid produces a Mermaid flowchart of the dispatch table.
// It applies semantic styling:
// - Intent: ((Circle))
// - Action: [Rectangle]
// - Error handler: [[Subroutine]]
// Actions are linked in ranked order; error handlers with a dotted edge.
// It also applies overlay styles (Handled/Rejected) if provided.
func GenerateMermaid(actions []domain.ActionInfo, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	ids := make(map[string]string)
	rank := make(map[string]int)
	seen := make(map[string]bool)

	for i, a := range actions {
		intentID := "intent_" + sanitizeMermaidID(a.Intent)
		if !seen[intentID] {
			seen[intentID] = true
			sb.WriteString(fmt.Sprintf("    %s((\"%s\"))\n", intentID, a.Intent))
		}

		handler := a.ID + a.Signature
		nodeID := fmt.Sprintf("%s_%d", sanitizeMermaidID(a.ID), i)
		ids[handler] = nodeID

		if a.Kind == "error_handler" {
			sb.WriteString(fmt.Sprintf("    %s[[\"%s\"]]\n", nodeID, escape(handler)))
			sb.WriteString(fmt.Sprintf("    %s -. \"on failure\" .-> %s\n", intentID, nodeID))
			continue
		}

		rank[intentID]++
		label := fmt.Sprintf("#%d %.2f-%.2f", rank[intentID], a.MinConfidence, a.MaxConfidence)
		if a.ValidatePartial {
			label += " partial"
		}
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", nodeID, escape(handler)))
		sb.WriteString(fmt.Sprintf("    %s -- \"%s\" --> %s\n", intentID, label, nodeID))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef rejected fill:#ffebee,stroke:#b71c1c,stroke-width:1px,color:#000;\n")
		sb.WriteString("    classDef handled fill:#e8f5e9,stroke:#1b5e20,stroke-width:4px,color:#000;\n")

		styled := make(map[string]bool)
		for _, h := range overlay.Rejected {
			if id, ok := ids[h]; ok && !styled[id] {
				styled[id] = true
				sb.WriteString(fmt.Sprintf("    class %s rejected;\n", id))
			}
		}
		if id, ok := ids[overlay.Handled]; ok {
			sb.WriteString(fmt.Sprintf("    class %s handled;\n", id))
		}
	}

	return sb.String()
}

// NewOverlay builds an overlay from an outcome.
func NewOverlay(out domain.Outcome) *Overlay {
	o := &Overlay{Handled: out.Handler}
	for _, f := range out.Failures {
		if f.Handler != "" {
			o.Rejected = append(o.Rejected, f.Handler)
		}
	}
	return o
}

func escape(label string) string {
	return strings.ReplaceAll(label, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
