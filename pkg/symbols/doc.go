/*
Package symbols is the explicit symbol table the dispatcher resolves manifests against.

Handlers self-register at startup: each registration names the owning type, the member
name and a Go function, and carries a capability marker (ActionMarker or
ErrorHandlerMarker). The parameter-type signature is read from the function once, at
registration time; nothing is looked up by name through reflection afterwards.

	table := symbols.NewTable()
	table.MustRegister(symbols.Method{
		Owner:    "Home.Lights",
		Assembly: "Home",
		Name:     "TurnOn",
		Func:     lights.TurnOn,
		Marker:   symbols.Action(symbols.WithConfidence(0.6, 1)),
	})

A Resolver then turns manifest references such as "Home.Lights.TurnOn" with parameter
types ["System.String"] into a Target: the owning type, the exact-signature method and
its invocation thunk.
*/
package symbols
