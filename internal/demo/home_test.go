package demo_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/conduit/internal/demo"
	"github.com/aretw0/conduit/pkg/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManifestResolves(t *testing.T) {
	m, err := manifest.Decode(demo.Manifest())
	require.NoError(t, err)

	r := manifest.NewResolver(m, demo.NewTable(demo.NewHome()))
	assert.True(t, r.ResolveEntities())
	assert.True(t, r.ResolveActions(), "%v", r.Err())
	assert.NoError(t, r.Err())

	for _, key := range []string{"turn_on", "turn_off", "dim", "set_timer", "cancel_timer"} {
		assert.True(t, r.ContainsAction(key), key)
	}
	list, err := r.InvocationContexts("turn_on")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, 2, list[0].Arity())
	assert.True(t, list[2].IsErrorHandler())
}

func TestHome(t *testing.T) {
	h := demo.NewHome()

	assert.Equal(t, "red lights on in the kitchen", h.TurnOnColor("kitchen", "red"))
	assert.Equal(t, "lights on in the office", h.TurnOn("office"))
	assert.Equal(t, []demo.Room{"kitchen", "office"}, h.Rooms())

	msg, err := h.Dim("kitchen", 40)
	require.NoError(t, err)
	assert.Equal(t, "kitchen dimmed to 40%", msg)
	assert.Equal(t, demo.Light{On: true, Color: "red", Level: 40}, h.Light("kitchen"))

	_, err = h.Dim("kitchen", 140)
	assert.Error(t, err)

	assert.Equal(t, "lights off in the office", h.TurnOff("office"))
	assert.Equal(t, []demo.Room{"kitchen"}, h.Rooms())

	_, err = h.SetTimer(context.Background(), 0)
	assert.Error(t, err)
	_, err = h.SetTimer(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, h.Timer())
	assert.Equal(t, "timer cancelled", h.CancelTimer())
	assert.Zero(t, h.Timer())
}

func TestApologize(t *testing.T) {
	assert.Equal(t, "sorry, I could not turn on (first)",
		demo.Apologize("turn_on", "first; second"))
}
