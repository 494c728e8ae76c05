package observability_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/conduit/pkg/domain"
	"github.com/aretw0/conduit/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	hooks := m.Hooks()
	ctx := context.Background()
	event := &domain.DispatchEvent{RequestID: "r1", Intent: "turn_on", Score: 0.4}

	hooks.OnReject(ctx, event, domain.Failure{Kind: domain.FailureConfidence, Handler: "A"})
	hooks.OnReject(ctx, event, domain.Failure{Kind: domain.FailureConfidence, Handler: "B"})
	hooks.OnInvoke(ctx, &domain.InvokeEvent{Handler: "Home.Assistant.Apologize", Duration: 20 * time.Millisecond})
	hooks.OnOutcome(ctx, &domain.Outcome{Intent: "turn_on", Status: domain.StatusErrorHandled})

	expected := `
# HELP conduit_dispatch_total Total number of dispatches by intent and terminal status
# TYPE conduit_dispatch_total counter
conduit_dispatch_total{intent="turn_on",status="error_handled"} 1
# HELP conduit_candidate_rejections_total Total number of skipped or faulted handler candidates
# TYPE conduit_candidate_rejections_total counter
conduit_candidate_rejections_total{intent="turn_on",reason="confidence"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"conduit_dispatch_total", "conduit_candidate_rejections_total"))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Collectors()[2], "conduit_handler_duration_seconds"))
}

func TestMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	_, err = observability.NewMetrics(reg)
	assert.Error(t, err)

	m, err := observability.NewMetrics(nil)
	require.NoError(t, err)
	assert.Len(t, m.Collectors(), 3)
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	hooks := observability.LogHooks(logger)
	ctx := context.Background()

	hooks.OnDispatch(ctx, &domain.DispatchEvent{RequestID: "r1", Intent: "dim"})
	hooks.OnInvoke(ctx, &domain.InvokeEvent{RequestID: "r1", Handler: "Home.Lights.Dim", Err: errors.New("out of range")})
	hooks.OnOutcome(ctx, &domain.Outcome{RequestID: "r1", Intent: "dim", Status: domain.StatusSuccess})

	out := buf.String()
	assert.Contains(t, out, "msg=dispatch")
	assert.Contains(t, out, `level=WARN msg=handler_return`)
	assert.Contains(t, out, `err="out of range"`)
	assert.Contains(t, out, "status=success")
}
