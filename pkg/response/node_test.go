package response_test

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/conduit/pkg/ports"
	"github.com/aretw0/conduit/pkg/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const witPayload = `{
  "text": "turn the kitchen lights red",
  "intents": [{"id": "1", "name": "turn_on", "confidence": 0.97}],
  "entities": {
    "room:room": [{"value": "kitchen", "confidence": 0.9}],
    "color:color": [{"value": "red"}, {"value": "blue"}],
    "wit$number:number": [{"value": 3}]
  },
  "traits": {},
  "is_final": true
}`

func parse(t *testing.T) *response.Node {
	t.Helper()
	n, err := response.Parse(witPayload)
	require.NoError(t, err)
	return n
}

func TestNode_Get(t *testing.T) {
	n := parse(t)

	v, ok := n.Get("intents[0].name")
	require.True(t, ok)
	assert.Equal(t, "turn_on", v.String())
	assert.Equal(t, ports.KindString, v.Kind())

	v, ok = n.Get("entities.color:color[1].value")
	require.True(t, ok)
	assert.Equal(t, "blue", v.String())

	v, ok = n.Get("entities[color:color][0].value")
	require.True(t, ok, "bracketed keys")
	assert.Equal(t, "red", v.String())

	v, ok = n.Get(".entities.wit$number:number[0].value.")
	require.True(t, ok, "special characters are escaped and outer dots trimmed")
	assert.Equal(t, ports.KindNumber, v.Kind())
	assert.Equal(t, 3.0, v.Value())

	self, ok := n.Get("")
	require.True(t, ok)
	assert.Equal(t, ports.KindObject, self.Kind())

	for _, path := range []string{"intents[1].name", "entities.size", "a..b", "intents[0", "intents[]"} {
		_, ok := n.Get(path)
		assert.False(t, ok, path)
	}
}

func TestNode_Navigation(t *testing.T) {
	n := parse(t)

	assert.Equal(t, []string{"text", "intents", "entities", "traits", "is_final"}, n.Keys())
	assert.Equal(t, 5, n.Len())

	colors, ok := n.Get("entities.color:color")
	require.True(t, ok)
	assert.Equal(t, ports.KindArray, colors.Kind())
	assert.Equal(t, 2, colors.Len())
	assert.Nil(t, colors.Keys())

	first, ok := colors.Index(0)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"value": "red"}, first.Value())

	_, ok = colors.Index(2)
	assert.False(t, ok)
	_, ok = colors.Index(-1)
	assert.False(t, ok)
	_, ok = n.Index(0)
	assert.False(t, ok, "objects are not indexable")

	final, ok := n.Get("is_final")
	require.True(t, ok)
	assert.Equal(t, ports.KindBool, final.Kind())
	assert.Equal(t, 0, final.Len())
}

func TestNode_Constructors(t *testing.T) {
	_, err := response.Parse("{not json")
	assert.ErrorIs(t, err, response.ErrInvalidJSON)

	_, err = response.ParseBytes([]byte(""))
	assert.ErrorIs(t, err, response.ErrInvalidJSON)

	n, err := response.FromValue(map[string]any{"intents": []any{map[string]any{"name": "stop"}}})
	require.NoError(t, err)
	name, ok := response.IntentName(n)
	require.True(t, ok)
	assert.Equal(t, "stop", name)

	raw, err := json.Marshal(response.Empty())
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(raw))
}

func TestHelpers(t *testing.T) {
	n := parse(t)

	name, ok := response.IntentName(n)
	require.True(t, ok)
	assert.Equal(t, "turn_on", name)

	confidence, ok := response.IntentConfidence(n)
	require.True(t, ok)
	assert.InDelta(t, 0.97, confidence, 1e-9)

	room, ok := response.FirstEntityValue(n, "room:room")
	require.True(t, ok)
	assert.Equal(t, "kitchen", room)

	assert.Equal(t, []string{"red", "blue"}, response.EntityValues(n, "color:color"))
	assert.Nil(t, response.EntityValues(n, "size:size"))

	_, ok = response.FirstEntityValue(n, "size:size")
	assert.False(t, ok)
	_, ok = response.IntentName(nil)
	assert.False(t, ok)
	_, ok = response.IntentConfidence(response.Empty())
	assert.False(t, ok)
}
