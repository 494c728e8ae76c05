package runtime_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aretw0/conduit/internal/runtime"
	"github.com/aretw0/conduit/pkg/domain"
	"github.com/aretw0/conduit/pkg/manifest"
	"github.com/aretw0/conduit/pkg/ports"
	"github.com/aretw0/conduit/pkg/registry"
	"github.com/aretw0/conduit/pkg/response"
	"github.com/aretw0/conduit/pkg/symbols"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder captures handler calls.
type recorder struct {
	mu    sync.Mutex
	calls []string
	args  [][]any
}

func (r *recorder) record(name string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, name)
	r.args = append(r.args, args)
}

func (r *recorder) last() (string, []any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return "", nil
	}
	return r.calls[len(r.calls)-1], r.args[len(r.args)-1]
}

func str(name string) domain.ManifestParameter {
	return domain.ManifestParameter{Name: name, QualifiedTypeName: "System.String"}
}

func integer(name string) domain.ManifestParameter {
	return domain.ManifestParameter{Name: name, QualifiedTypeName: "System.Int32"}
}

type fixture struct {
	table *symbols.Table
	m     *domain.Manifest
	rec   *recorder
}

func newFixture() *fixture {
	rec := &recorder{}
	table := symbols.NewTable()
	reg := func(owner, name string, fn any, marker symbols.Marker) {
		table.MustRegister(symbols.Method{Owner: owner, Name: name, Func: fn, Marker: marker})
	}
	band := symbols.WithConfidence(0.5, 0.9)

	reg("Home.Lights", "TurnOn", func(room, color string, level int) {
		rec.record("TurnOn/3", room, color, level)
	}, symbols.Action(band))
	reg("Home.Lights", "TurnOn", func(room string) {
		rec.record("TurnOn/1", room)
	}, symbols.Action(band))
	reg("Home.Lights", "TurnOn", func(room, color string) {
		rec.record("TurnOn/2", room, color)
	}, symbols.Action(band))
	reg("Home.Lights", "Failed", func(intent, reason string, resp ports.ResponseNode) {
		rec.record("Failed", intent, reason)
	}, symbols.ErrorHandler())

	reg("Home.Timer", "Set", func(ctx context.Context, minutes int) (int, error) {
		if minutes <= 0 {
			return 0, errors.New("minutes must be positive")
		}
		rec.record("Set", minutes)
		return minutes * 60, nil
	}, symbols.Action(symbols.WithConfidence(0, 1), symbols.WithPartial()))
	reg("Home.Timer", "Boom", func(minutes int) { panic("kaboom") }, symbols.Action(symbols.WithConfidence(0, 1)))
	reg("Home.Timer", "Start", func(ctx context.Context, minutes float64) (int, error) {
		rec.record("Start", minutes)
		return int(minutes * 60), nil
	}, symbols.Action(symbols.WithConfidence(0, 1)))
	reg("Home.Timer", "Broken", func(err error) error { return errors.New("handler also failed") }, symbols.ErrorHandler())

	m := &domain.Manifest{
		ID: "home",
		Actions: []domain.ManifestAction{
			{ID: "Home.Lights.TurnOn", Name: "turn_on", Parameters: []domain.ManifestParameter{str("room"), str("color"), integer("level")}},
			{ID: "Home.Lights.TurnOn", Name: "turn_on", Parameters: []domain.ManifestParameter{str("room")}},
			{ID: "Home.Lights.TurnOn", Name: "turn_on", Parameters: []domain.ManifestParameter{str("room"), str("color")}},
			{ID: "Home.Timer.Set", Name: "set_timer", Parameters: []domain.ManifestParameter{integer("minutes")}},
			{ID: "Home.Timer.Boom", Name: "explode", Parameters: []domain.ManifestParameter{integer("minutes")}},
			{ID: "Home.Timer.Start", Name: "explode", Parameters: []domain.ManifestParameter{{Name: "minutes", QualifiedTypeName: "System.Double"}}},
		},
		ErrorHandlers: []domain.ManifestErrorHandler{
			{ID: "Home.Lights.Failed", Name: "turn_on", Parameters: []domain.ManifestParameter{
				str("intent"), str("reason"), {Name: "response", QualifiedTypeName: "Conduit.ResponseNode"},
			}},
			{ID: "Home.Timer.Broken", Name: "set_timer", Parameters: []domain.ManifestParameter{
				{Name: "error", QualifiedTypeName: "System.Exception"},
			}},
		},
	}
	return &fixture{table: table, m: m, rec: rec}
}

func (f *fixture) engine(t *testing.T, opts ...runtime.Option) *runtime.Engine {
	t.Helper()
	r := manifest.NewResolver(f.m, f.table)
	require.True(t, r.ResolveActions(), "%v", r.Err())
	return runtime.NewEngine(r.Table(), opts...)
}

func payload(t *testing.T, doc string) ports.ResponseNode {
	t.Helper()
	n, err := response.Parse(doc)
	require.NoError(t, err)
	return n
}

const fullLights = `{"entities": {
  "room:room": [{"value": "kitchen"}],
  "color:color": [{"value": "red"}],
  "level:level": [{"value": "7"}]
}}`

func TestDispatch_RichestOverloadWins(t *testing.T) {
	f := newFixture()
	out := f.engine(t).Dispatch(context.Background(), "turn_on", 0.7, payload(t, fullLights), false)

	require.Equal(t, domain.StatusSuccess, out.Status, out.Reason())
	name, args := f.rec.last()
	assert.Equal(t, "TurnOn/3", name)
	assert.Equal(t, []any{"kitchen", "red", 7}, args, "weakly typed values convert")
	assert.NotEmpty(t, out.RequestID)
}

func TestDispatch_FallsBackToLowerArity(t *testing.T) {
	f := newFixture()
	out := f.engine(t).Dispatch(context.Background(), "TURN_ON", 0.7, payload(t, `{"entities": {"room": [{"value": "hall"}]}}`), false)

	require.Equal(t, domain.StatusSuccess, out.Status, out.Reason())
	name, args := f.rec.last()
	assert.Equal(t, "TurnOn/1", name)
	assert.Equal(t, []any{"hall"}, args)
	assert.Len(t, out.Failures, 2, "both richer overloads failed to bind")
	for _, failure := range out.Failures {
		assert.Equal(t, domain.FailureBinding, failure.Kind)
		assert.ErrorIs(t, failure, domain.ErrBinding)
	}
}

func TestDispatch_TopLevelKeysBind(t *testing.T) {
	f := newFixture()
	out := f.engine(t).Dispatch(context.Background(), "turn_on", 0.5, payload(t, `{"room": "den", "color": "blue"}`), false)

	require.Equal(t, domain.StatusSuccess, out.Status)
	name, args := f.rec.last()
	assert.Equal(t, "TurnOn/2", name)
	assert.Equal(t, []any{"den", "blue"}, args)
}

func TestDispatch_ConfidenceBoundsAreInclusive(t *testing.T) {
	f := newFixture()
	e := f.engine(t)
	resp := payload(t, fullLights)

	for _, score := range []float64{0.5, 0.9} {
		out := e.Dispatch(context.Background(), "turn_on", score, resp, false)
		assert.Equal(t, domain.StatusSuccess, out.Status, "score %v", score)
	}
	for _, score := range []float64{0.49, 0.901} {
		out := e.Dispatch(context.Background(), "turn_on", score, resp, false)
		assert.Equal(t, domain.StatusErrorHandled, out.Status, "score %v", score)
		require.Len(t, out.Failures, 3)
		assert.Equal(t, domain.FailureConfidence, out.Failures[0].Kind)
		assert.ErrorIs(t, out.Failures[0], domain.ErrConfidence)
	}
}

func TestDispatch_ErrorRouting(t *testing.T) {
	f := newFixture()
	out := f.engine(t).Dispatch(context.Background(), "turn_on", 0.7, payload(t, `{"entities": {}}`), false)

	require.Equal(t, domain.StatusErrorHandled, out.Status)
	assert.Equal(t, "Home.Lights.Failed(string, string, ports.ResponseNode)", out.Handler)
	name, args := f.rec.last()
	assert.Equal(t, "Failed", name)
	require.Len(t, args, 2)
	assert.Equal(t, "turn_on", args[0])
	assert.Contains(t, args[1], "value not found in response")
}

func TestDispatch_UnhandledWithoutErrorHandler(t *testing.T) {
	f := newFixture()
	out := f.engine(t).Dispatch(context.Background(), "explode", 0.5, payload(t, `{}`), false)

	assert.Equal(t, domain.StatusUnhandled, out.Status)
	assert.False(t, out.Handled())
	assert.Len(t, out.Failures, 2)
}

func TestDispatch_UnknownIntent(t *testing.T) {
	f := newFixture()
	out := f.engine(t).Dispatch(context.Background(), "no_such_intent", 1.0, payload(t, fullLights), false)

	assert.Equal(t, domain.StatusUnhandled, out.Status)
	assert.Empty(t, out.Failures, "no candidate list is consulted")
	assert.Equal(t, "no suitable handler", out.Reason())
	name, _ := f.rec.last()
	assert.Empty(t, name)
}

func TestDispatch_InvocationFaultFallsThrough(t *testing.T) {
	f := newFixture()
	out := f.engine(t).Dispatch(context.Background(), "explode", 0.5, payload(t, `{"minutes": 2}`), false)

	require.Equal(t, domain.StatusSuccess, out.Status, out.Reason())
	assert.Equal(t, 120, out.Result)
	require.Len(t, out.Failures, 1)
	assert.Equal(t, domain.FailureInvocation, out.Failures[0].Kind)
	assert.ErrorIs(t, out.Failures[0], domain.ErrInvocation)
	assert.Contains(t, out.Failures[0].Error(), "kaboom")
}

func TestDispatch_ErrorHandlerFault(t *testing.T) {
	f := newFixture()
	out := f.engine(t).Dispatch(context.Background(), "set_timer", 1, payload(t, `{"minutes": 0}`), false)

	assert.Equal(t, domain.StatusUnhandled, out.Status)
	require.Len(t, out.Failures, 2)
	assert.Equal(t, domain.FailureInvocation, out.Failures[0].Kind)
	assert.Equal(t, domain.FailureHandler, out.Failures[1].Kind)
	assert.ErrorContains(t, out.Err(), "minutes must be positive")
	assert.ErrorContains(t, out.Err(), "handler also failed")
}

func TestDispatch_Partial(t *testing.T) {
	f := newFixture()
	e := f.engine(t)

	out := e.Dispatch(context.Background(), "set_timer", 0.4, payload(t, `{"minutes": 5}`), true)
	require.Equal(t, domain.StatusSuccess, out.Status, out.Reason())
	assert.True(t, out.Partial)

	out = e.Dispatch(context.Background(), "turn_on", 0.7, payload(t, fullLights), true)
	assert.Equal(t, domain.StatusUnhandled, out.Status, "ineligible partials wait for the final response")
	require.Len(t, out.Failures, 3)
	for _, failure := range out.Failures {
		assert.ErrorIs(t, failure, domain.ErrPartialIneligible)
	}
}

func TestDispatch_RequestIDFromContext(t *testing.T) {
	f := newFixture()
	e := f.engine(t, runtime.WithRequestIDs(func() string { return "generated" }))

	out := e.Dispatch(domain.WithRequestID(context.Background(), "req-1"), "turn_on", 0.7, payload(t, fullLights), false)
	assert.Equal(t, "req-1", out.RequestID)

	out = e.Dispatch(context.Background(), "turn_on", 0.7, payload(t, fullLights), false)
	assert.Equal(t, "generated", out.RequestID)
}

func TestDispatch_Hooks(t *testing.T) {
	f := newFixture()
	var (
		dispatched int
		rejected   []domain.FailureKind
		invoked    []string
		outcome    *domain.Outcome
	)
	hooks := domain.LifecycleHooks{
		OnDispatch: func(_ context.Context, e *domain.DispatchEvent) { dispatched++ },
		OnReject:   func(_ context.Context, _ *domain.DispatchEvent, f domain.Failure) { rejected = append(rejected, f.Kind) },
		OnInvoke:   func(_ context.Context, e *domain.InvokeEvent) { invoked = append(invoked, e.Handler) },
		OnOutcome:  func(_ context.Context, o *domain.Outcome) { outcome = o },
	}
	e := f.engine(t, runtime.WithLifecycleHooks(hooks))

	e.Dispatch(context.Background(), "explode", 0.5, payload(t, `{"minutes": 1}`), false)

	assert.Equal(t, 1, dispatched)
	assert.Equal(t, []domain.FailureKind{domain.FailureInvocation}, rejected)
	assert.Equal(t, []string{"Home.Timer.Boom", "Home.Timer.Start"}, invoked)
	require.NotNil(t, outcome)
	assert.Equal(t, domain.StatusSuccess, outcome.Status)
}

func TestDispatch_EmptyTable(t *testing.T) {
	e := runtime.NewEngine(registry.New())
	out := e.Dispatch(context.Background(), "anything", 1, nil, false)
	assert.Equal(t, domain.StatusUnhandled, out.Status)
}

func TestDispatch_LossyValuesDoNotBind(t *testing.T) {
	f := newFixture()
	e := f.engine(t)

	out := e.Dispatch(context.Background(), "set_timer", 0.5, payload(t, `{"minutes": 5.7}`), false)
	assert.NotEqual(t, domain.StatusSuccess, out.Status)
	require.NotEmpty(t, out.Failures)
	assert.Equal(t, domain.FailureBinding, out.Failures[0].Kind)
	assert.ErrorIs(t, out.Failures[0], domain.ErrBinding)
	name, _ := f.rec.last()
	assert.Empty(t, name, "Set must not run with a truncated value")

	out = e.Dispatch(context.Background(), "turn_on", 0.7, payload(t, `{"room": true}`), false)
	assert.Equal(t, domain.StatusErrorHandled, out.Status)
	for _, failure := range out.Failures {
		assert.Equal(t, domain.FailureBinding, failure.Kind)
	}
}

func TestDispatch_BindingFailureFallsBackToNextOverload(t *testing.T) {
	f := newFixture()
	out := f.engine(t).Dispatch(context.Background(), "explode", 0.5, payload(t, `{"minutes": 2.5}`), false)

	require.Equal(t, domain.StatusSuccess, out.Status, out.Reason())
	assert.Equal(t, "Home.Timer.Start(float64)", out.Handler)
	require.Len(t, out.Failures, 1)
	assert.Equal(t, domain.FailureBinding, out.Failures[0].Kind)
	name, args := f.rec.last()
	assert.Equal(t, "Start", name)
	assert.Equal(t, []any{2.5}, args)
}

func TestDispatch_IntegralNumbers(t *testing.T) {
	f := newFixture()
	e := f.engine(t)

	for _, doc := range []string{`{"minutes": 5.0}`, `{"minutes": "5"}`, `{"minutes": 5e0}`} {
		out := e.Dispatch(context.Background(), "set_timer", 0.5, payload(t, doc), false)
		require.Equal(t, domain.StatusSuccess, out.Status, doc)
		assert.Equal(t, 300, out.Result, doc)
	}
}

func TestDispatch_LargeIntegersKeepPrecision(t *testing.T) {
	var got int64
	table := symbols.NewTable()
	table.MustRegister(symbols.Method{
		Owner:  "Ledger",
		Name:   "Credit",
		Func:   func(amount int64) { got = amount },
		Marker: symbols.Action(symbols.WithConfidence(0, 1)),
	})
	m := &domain.Manifest{ID: "ledger", Actions: []domain.ManifestAction{{
		ID: "Ledger.Credit", Name: "credit",
		Parameters: []domain.ManifestParameter{{Name: "amount", QualifiedTypeName: "System.Int64"}},
	}}}
	r := manifest.NewResolver(m, table)
	require.True(t, r.ResolveActions(), "%v", r.Err())

	out := runtime.NewEngine(r.Table()).Dispatch(context.Background(), "credit", 1, payload(t, `{"amount": 9007199254740993}`), false)
	require.Equal(t, domain.StatusSuccess, out.Status, out.Reason())
	assert.Equal(t, int64(9007199254740993), got)

	out = runtime.NewEngine(r.Table()).Dispatch(context.Background(), "credit", 1, payload(t, `{"amount": 99999999999999999999}`), false)
	assert.Equal(t, domain.StatusUnhandled, out.Status, "overflow is a binding failure")
}

func TestDispatch_PartialNeverRoutesToErrorHandler(t *testing.T) {
	f := newFixture()
	out := f.engine(t).Dispatch(context.Background(), "turn_on", 0.95, payload(t, fullLights), true)

	assert.Equal(t, domain.StatusUnhandled, out.Status)
	require.Len(t, out.Failures, 3)
	for _, failure := range out.Failures {
		assert.Equal(t, domain.FailureConfidence, failure.Kind)
	}
	name, _ := f.rec.last()
	assert.Empty(t, name, "error handler is left to the final response")
}
