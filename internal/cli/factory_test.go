package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/conduit/internal/config"
	"github.com/aretw0/conduit/pkg/domain"
	"github.com/aretw0/conduit/pkg/response"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		LogLevel:    "debug",
		RedisPrefix: "conduit:",
		TrackerTTL:  time.Minute,
	}
}

func TestBuild_DefaultManifest(t *testing.T) {
	var logs bytes.Buffer
	rt, err := Build(testConfig(), &logs)
	require.NoError(t, err)
	defer rt.Close()

	assert.Equal(t, "home", rt.Conduit.Manifest().ID)
	assert.NotEmpty(t, rt.Conduit.Actions())

	resp, err := response.Parse(`{"intents":[{"name":"turn_off","confidence":0.9}],"entities":{"room":[{"value":"office"}]}}`)
	require.NoError(t, err)
	out := rt.Conduit.DispatchResponse(context.Background(), resp, false)
	assert.Equal(t, domain.StatusSuccess, out.Status)

	assert.Contains(t, logs.String(), "dispatch")
	count, err := testutil.GatherAndCount(rt.Registry, "conduit_dispatch_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestBuild_Errors(t *testing.T) {
	t.Run("Invalid log level", func(t *testing.T) {
		cfg := testConfig()
		cfg.LogLevel = "loud"
		_, err := Build(cfg, &bytes.Buffer{})
		assert.Error(t, err)
	})

	t.Run("Missing manifest", func(t *testing.T) {
		cfg := testConfig()
		cfg.Manifest = filepath.Join(t.TempDir(), "nope.yaml")
		_, err := Build(cfg, &bytes.Buffer{})
		assert.ErrorContains(t, err, "error loading manifest")
	})

	t.Run("Strict with unknown handler", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "manifest.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
id: broken
version: 1.0.0
actions:
  - id: Home.Lights.Explode
    name: explode
    assembly: Home
`), 0o644))

		cfg := testConfig()
		cfg.Manifest = path
		cfg.Strict = true
		_, err := Build(cfg, &bytes.Buffer{})
		assert.ErrorContains(t, err, "Home.Lights.Explode")

		cfg.Strict = false
		rt, err := Build(cfg, &bytes.Buffer{})
		require.NoError(t, err)
		defer rt.Close()
		assert.Error(t, rt.Conduit.Err())
	})
}

func TestBuild_RedisTracker(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.RedisAddr = mr.Addr()

	partial, err := response.Parse(`{"intents":[{"name":"set_timer","confidence":0.8}],"entities":{"minutes":[{"value":5}]}}`)
	require.NoError(t, err)

	first, err := Build(cfg, &bytes.Buffer{})
	require.NoError(t, err)
	out, err := first.Conduit.HandlePartial(context.Background(), "req-1", partial)
	require.NoError(t, err)
	require.Equal(t, domain.StatusSuccess, out.Status)
	require.NoError(t, first.Close())

	assert.True(t, mr.Exists("conduit:validated:req-1"))

	// A second process sees the request as handled.
	second, err := Build(cfg, &bytes.Buffer{})
	require.NoError(t, err)
	defer second.Close()

	final, err := second.Conduit.HandleFinal(context.Background(), "req-1", partial)
	require.NoError(t, err)
	assert.True(t, final.ValidatedEarly)
	assert.Equal(t, time.Duration(0), second.Home.Timer())
	assert.False(t, mr.Exists("conduit:validated:req-1"))
}
