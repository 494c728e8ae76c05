package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aretw0/conduit"
	"github.com/aretw0/conduit/internal/demo"
	"github.com/aretw0/conduit/pkg/domain"
	"github.com/aretw0/conduit/pkg/manifest"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	m, err := manifest.Decode(demo.Manifest())
	require.NoError(t, err)
	c, err := conduit.New(m, demo.NewTable(demo.NewHome()), conduit.WithStrict(true))
	require.NoError(t, err)
	return NewServer(c, "test")
}

func TestDispatchTool(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	report, err := s.handleDispatch(ctx, mcp.CallToolRequest{}, DispatchArgs{
		Response: `{"intents": [{"name": "turn_off", "confidence": 0.99}], "entities": {"room": [{"value": "office"}]}}`,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, report.Status)
	assert.Equal(t, "lights off in the office", report.Result)

	low := 0.2
	report, err = s.handleDispatch(ctx, mcp.CallToolRequest{}, DispatchArgs{
		Intent:     "turn_on",
		Confidence: &low,
		Response:   `{"room": "office"}`,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusErrorHandled, report.Status)
	assert.NotEmpty(t, report.Reason)
	require.Len(t, report.Failures, 2)
	assert.Equal(t, domain.FailureConfidence, report.Failures[0].Kind)

	_, err = s.handleDispatch(ctx, mcp.CallToolRequest{}, DispatchArgs{Response: "{broken"})
	assert.Error(t, err)
}

func TestDispatchTool_Stream(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	body := `{"intents": [{"name": "set_timer", "confidence": 0.9}], "entities": {"minutes": [{"value": 5}]}}`

	report, err := s.handleDispatch(ctx, mcp.CallToolRequest{}, DispatchArgs{Stream: "s-1", Partial: true, Response: body})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, report.Status)

	report, err = s.handleDispatch(ctx, mcp.CallToolRequest{}, DispatchArgs{Stream: "s-1", Response: body})
	require.NoError(t, err)
	assert.True(t, report.ValidatedEarly)

	_, err = s.handleDispatch(ctx, mcp.CallToolRequest{}, DispatchArgs{Stream: "s-2", Intent: "dim", Response: body})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStreamOverride))
}

func TestListActionsTool(t *testing.T) {
	s := newTestServer(t)

	list, err := s.handleListActions(context.Background(), mcp.CallToolRequest{}, struct{}{})
	require.NoError(t, err)
	require.NotEmpty(t, list.Actions)
	assert.Equal(t, "turn_on", list.Actions[0].Intent)
}

func TestManifestResource(t *testing.T) {
	s := newTestServer(t)

	contents, err := s.readManifest(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, ManifestURI, text.URI)

	var m domain.Manifest
	require.NoError(t, json.Unmarshal([]byte(text.Text), &m))
	assert.Equal(t, "home", m.ID)
	assert.NotEmpty(t, m.Actions)
}
