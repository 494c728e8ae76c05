package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/conduit/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
// Rendering falls back to the raw markdown when no renderer can be created.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(120),
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// ActionsMarkdown describes a manifest and its dispatch table as markdown.
func ActionsMarkdown(m *domain.Manifest, actions []domain.ActionInfo) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", m.ID)
	if m.Domain != "" || m.Version != "" {
		fmt.Fprintf(&sb, "Domain `%s`, format version `%s`.\n\n", m.Domain, m.Version)
	}

	if len(m.Entities) > 0 {
		sb.WriteString("## Entities\n\n| Name | Type | Values |\n|---|---|---|\n")
		for _, e := range m.Entities {
			fmt.Fprintf(&sb, "| %s | `%s` | %s |\n", e.Name, e.QualifiedName(), strings.Join(e.Values, ", "))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Dispatch table\n\n| Intent | Handler | Kind | Confidence | Partial |\n|---|---|---|---|---|\n")
	for _, a := range actions {
		band, partial := "", ""
		if a.Kind != "error_handler" {
			band = fmt.Sprintf("%.2f – %.2f", a.MinConfidence, a.MaxConfidence)
			if a.ValidatePartial {
				partial = "yes"
			}
		}
		fmt.Fprintf(&sb, "| %s | `%s%s` | %s | %s | %s |\n", a.Intent, a.ID, a.Signature, a.Kind, band, partial)
	}
	return sb.String()
}

// OutcomeMarkdown describes a dispatch outcome as markdown.
func OutcomeMarkdown(r domain.Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s** `%s` (score %.2f", r.Intent, r.Status, r.Score)
	if r.Partial {
		sb.WriteString(", partial")
	}
	sb.WriteString(")\n\n")
	if r.Handler != "" {
		fmt.Fprintf(&sb, "- handler: `%s`\n", r.Handler)
	}
	if r.Result != nil {
		fmt.Fprintf(&sb, "- result: %v\n", r.Result)
	}
	if r.ValidatedEarly {
		sb.WriteString("- validated early from a partial response\n")
	}
	for _, f := range r.Failures {
		fmt.Fprintf(&sb, "- %s `%s`: %s\n", f.Kind, f.Handler, f.Error)
	}
	return sb.String()
}
