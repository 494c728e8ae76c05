package conduit_test

import (
	"context"
	"fmt"

	"github.com/aretw0/conduit"
	"github.com/aretw0/conduit/pkg/dsl"
	"github.com/aretw0/conduit/pkg/response"
	"github.com/aretw0/conduit/pkg/symbols"
)

func Example() {
	table := symbols.NewTable()
	table.MustRegister(symbols.Method{
		Owner:  "Greeter",
		Name:   "Hello",
		Func:   func(name string) string { return "hello, " + name },
		Marker: symbols.Action(symbols.WithConfidence(0.5, 1)),
		Params: []string{"name"},
	})

	m := dsl.New("greeter").
		Action("greet", "Greeter.Hello").Param("name", "System.String").
		Build()

	c, err := conduit.New(m, table, conduit.WithStrict(true))
	if err != nil {
		panic(err)
	}

	resp, _ := response.Parse(`{
		"intents": [{"name": "greet", "confidence": 0.8}],
		"entities": {"name:name": [{"value": "Ada"}]}
	}`)
	out := c.DispatchResponse(context.Background(), resp, false)
	fmt.Println(out.Status, out.Result)
	// Output: success hello, Ada
}
