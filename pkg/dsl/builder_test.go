package dsl_test

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/aretw0/conduit/pkg/dsl"
	"github.com/aretw0/conduit/pkg/manifest"
	"github.com/aretw0/conduit/pkg/symbols"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type color string

func TestBuilder_Manifest(t *testing.T) {
	m := dsl.New("home").
		Version("1.0.0").
		Domain("home-automation").
		Entity("color", "Home", "Color").Assembly("Home").Values("red", "blue").
		Action("turn_on", "Home.Lights.TurnOn").
		Param("room", "System.String").
		Param("color", "Home.Color").TypeAssembly("Home").Aliases("colour").
		Confidence(0.5, 1).
		Partial().
		ErrorHandler("turn_on", "Home.Lights.Failed").
		Param("intent", "System.String").
		Action("turn_off", "Home.Lights.TurnOff").
		Build()

	assert.Equal(t, "home", m.ID)
	assert.Equal(t, "1.0.0", m.Version)
	assert.Equal(t, "home-automation", m.Domain)

	require.Len(t, m.Entities, 1)
	assert.Equal(t, "Home.Color", m.Entities[0].QualifiedName())
	assert.Equal(t, []string{"red", "blue"}, m.Entities[0].Values)

	require.Len(t, m.Actions, 2)
	on := m.Actions[0]
	assert.Equal(t, "turn_on", on.Name)
	require.Len(t, on.Parameters, 2)
	assert.Equal(t, "Home", on.Parameters[1].TypeAssembly)
	assert.Equal(t, []string{"colour"}, on.Parameters[1].Aliases)
	require.NotNil(t, on.MinConfidence)
	assert.Equal(t, 0.5, *on.MinConfidence)
	assert.True(t, on.ValidatePartial)
	assert.Empty(t, m.Actions[1].Parameters)

	require.Len(t, m.ErrorHandlers, 1)
	assert.Equal(t, "Home.Lights.Failed", m.ErrorHandlers[0].ID)
	require.Len(t, m.ErrorHandlers[0].Parameters, 1)
}

func TestBuilder_ValidAgainstSchema(t *testing.T) {
	m := dsl.New("home").
		Action("turn_on", "Home.Lights.TurnOn").Param("room", "System.String").
		Build()

	data, err := json.Marshal(m)
	require.NoError(t, err)

	result, err := manifest.Validate(data)
	require.NoError(t, err)
	assert.True(t, result.Valid, "%v", result.Issues)
}

func TestBuilder_Resolves(t *testing.T) {
	table := symbols.NewTable()
	table.MustRegisterType("Home.Color", "Home", reflect.TypeOf(color("")))
	table.MustRegister(symbols.Method{
		Owner:    "Home.Lights",
		Assembly: "Home",
		Name:     "TurnOn",
		Func:     func(room string, c color) string { return room + ":" + string(c) },
		Marker:   symbols.Action(),
	})

	m := dsl.New("home").
		Entity("color", "Home", "Color").Assembly("Home").
		Action("turn_on", "Home.Lights.TurnOn").Assembly("Home").
		Param("room", "System.String").
		Param("color", "Home.Color").TypeAssembly("Home").
		Build()

	r := manifest.NewResolver(m, table)
	assert.True(t, r.ResolveEntities())
	assert.True(t, r.ResolveActions(), "%v", r.Err())
	assert.True(t, r.ContainsAction("turn_on"))
}

func TestBuilder_BuildIsRepeatable(t *testing.T) {
	b := dsl.New("x")
	b.Action("a", "T.A")

	first := b.Build()
	b.Action("b", "T.B")
	second := b.Build()

	assert.Len(t, first.Actions, 1)
	assert.Len(t, second.Actions, 2)
}
