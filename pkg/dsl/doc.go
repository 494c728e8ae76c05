/*
Package dsl provides a fluent builder for Conduit manifests.

It lets tests and embedding programs declare actions, error handlers and entities in Go
instead of a YAML or JSON file.

Example usage:

	m := dsl.New("home").
		Version("1.0.0").
		Entity("color", "Home", "Color").Values("red", "blue").
		Action("turn_on", "Home.Lights.TurnOn").
		Param("room", "System.String").
		Param("color", "Home.Color").Aliases("colour").
		Confidence(0.5, 1).
		ErrorHandler("turn_on", "Home.Lights.Failed").
		Param("intent", "System.String").
		Build()

	c, err := conduit.New(m, table)
*/
package dsl
