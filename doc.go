/*
Package conduit routes recognized intents to Go handlers declared in a manifest.

A speech or text recognizer turns an utterance into a response tree carrying the top
intent, its confidence and the extracted entities. Conduit maps that intent to the
handlers the manifest names, picks the richest handler whose confidence band and
parameters fit the response, converts the entity values to the handler's parameter
types and invokes it. When every candidate fails, the intent's error handler runs.

# Concept

Handlers are ordinary Go functions registered in a symbols.Table under the names the
manifest uses. Nothing is looked up by reflection on names: the table is the only
source of callables, and a manifest entry resolves only when a registered function has
exactly the declared parameter types and the matching capability marker.

# Usage

	table := symbols.NewTable()
	table.MustRegister(symbols.Method{
		Owner:  "Home.Lights",
		Name:   "TurnOn",
		Func:   func(room string) string { return "lights on in " + room },
		Marker: symbols.Action(symbols.WithConfidence(0.5, 1)),
		Params: []string{"room"},
	})

	c, err := conduit.Load("manifest.yaml", table)
	if err != nil {
		log.Fatal(err)
	}

	resp, _ := response.Parse(payload)
	out := c.DispatchResponse(ctx, resp, false)
	fmt.Println(out.Status, out.Result)

Dispatch never returns an error: the Outcome records which handler ran and why the
others were skipped. Resolution problems are collected and reported by Err, or fail
New outright when WithStrict is set.
*/
package conduit
