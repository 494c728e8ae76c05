package graph_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/aretw0/conduit/internal/presentation/graph"
	"github.com/aretw0/conduit/pkg/domain"
)

var table = []domain.ActionInfo{
	{Intent: "turn_on", ID: "Home.Lights.TurnOn", Kind: "action", Signature: "(demo.Room, demo.Color)", MinConfidence: 0.9, MaxConfidence: 1},
	{Intent: "turn_on", ID: "Home.Lights.TurnOn", Kind: "action", Signature: "(demo.Room)", MinConfidence: 0.9, MaxConfidence: 1},
	{Intent: "turn_on", ID: "Home.Assistant.Apologize", Kind: "error_handler", Signature: "(string, string)"},
	{Intent: "set-timer", ID: "Home.Timer.Set", Kind: "action", Signature: "(int)", MinConfidence: 0.9, MaxConfidence: 1, ValidatePartial: true},
}

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		overlay  *graph.Overlay
		contains []string
		excludes []string
	}{
		{
			name: "Shapes and Ranking",
			contains: []string{
				"graph LR",
				`intent_turn_on(("turn_on"))`,
				`Home_Lights_TurnOn_0["Home.Lights.TurnOn(demo.Room, demo.Color)"]`,
				`intent_turn_on -- "#1 0.90-1.00" --> Home_Lights_TurnOn_0`,
				`intent_turn_on -- "#2 0.90-1.00" --> Home_Lights_TurnOn_1`,
				`Home_Assistant_Apologize_2[["Home.Assistant.Apologize(string, string)"]]`,
				`intent_turn_on -. "on failure" .-> Home_Assistant_Apologize_2`,
			},
			excludes: []string{"classDef"},
		},
		{
			name: "ID Sanitization and Partial Label",
			contains: []string{
				`intent_set_timer(("set-timer"))`,
				`intent_set_timer -- "#1 0.90-1.00 partial" --> Home_Timer_Set_3`,
			},
		},
		{
			name: "Overlay",
			overlay: graph.NewOverlay(domain.Outcome{
				Handler: "Home.Lights.TurnOn(demo.Room)",
				Failures: []domain.Failure{
					{Kind: domain.FailureBinding, Handler: "Home.Lights.TurnOn(demo.Room, demo.Color)", Err: errors.New("missing")},
					{Kind: domain.FailureNoIntent, Err: domain.ErrNoIntent},
				},
			}),
			contains: []string{
				"classDef handled",
				"class Home_Lights_TurnOn_0 rejected;",
				"class Home_Lights_TurnOn_1 handled;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(table, tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() missing %q\nGot:\n%s", want, got)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("GenerateMermaid() should not contain %q\nGot:\n%s", unwanted, got)
				}
			}
		})
	}
}
