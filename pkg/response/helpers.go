package response

import (
	"github.com/aretw0/conduit/pkg/ports"
)

// PathValue returns the scalar text at path.
func PathValue(n ports.ResponseNode, path string) (string, bool) {
	if n == nil {
		return "", false
	}
	v, ok := n.Get(path)
	if !ok || v.Kind() == ports.KindNull {
		return "", false
	}
	return v.String(), true
}

// IntentName returns the name of the top intent, intents[0].name.
func IntentName(n ports.ResponseNode) (string, bool) {
	return PathValue(n, "intents[0].name")
}

// IntentConfidence returns the confidence of the top intent, intents[0].confidence.
func IntentConfidence(n ports.ResponseNode) (float64, bool) {
	if n == nil {
		return 0, false
	}
	v, ok := n.Get("intents[0].confidence")
	if !ok || v.Kind() != ports.KindNumber {
		return 0, false
	}
	f, ok := v.Value().(float64)
	return f, ok
}

// FirstEntityValue returns entities[name][0].value.
// Entity names usually carry their role, as in "color:color".
func FirstEntityValue(n ports.ResponseNode, name string) (string, bool) {
	return PathValue(n, "entities["+name+"][0].value")
}

// EntityValues returns the value of every match of an entity.
func EntityValues(n ports.ResponseNode, name string) []string {
	if n == nil {
		return nil
	}
	list, ok := n.Get("entities[" + name + "]")
	if !ok || list.Kind() != ports.KindArray {
		return nil
	}
	values := make([]string, 0, list.Len())
	for i := 0; i < list.Len(); i++ {
		item, ok := list.Index(i)
		if !ok {
			continue
		}
		if v, ok := item.Get("value"); ok {
			values = append(values, v.String())
		}
	}
	return values
}
