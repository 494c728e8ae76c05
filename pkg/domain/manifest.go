package domain

import (
	"encoding/json"
	"strings"
)

// Manifest describes an application's domain: the entities it recognizes, the actions
// that handle intents and the error handlers used when no action succeeds.
// It is immutable once loaded.
type Manifest struct {
	ID            string                 `json:"id" yaml:"id" mapstructure:"id"`
	Version       string                 `json:"version" yaml:"version" mapstructure:"version"`
	Domain        string                 `json:"domain" yaml:"domain" mapstructure:"domain"`
	Entities      []ManifestEntity       `json:"entities,omitempty" yaml:"entities,omitempty" mapstructure:"entities"`
	Actions       []ManifestAction       `json:"actions,omitempty" yaml:"actions,omitempty" mapstructure:"actions"`
	ErrorHandlers []ManifestErrorHandler `json:"errorHandlers,omitempty" yaml:"errorHandlers,omitempty" mapstructure:"errorHandlers"`
}

// ManifestEntity binds a domain-facing entity name to a runtime type.
type ManifestEntity struct {
	Name      string   `json:"name" yaml:"name" mapstructure:"name"`
	ID        string   `json:"id" yaml:"id" mapstructure:"id"`
	Namespace string   `json:"namespace,omitempty" yaml:"namespace,omitempty" mapstructure:"namespace"`
	Assembly  string   `json:"assembly,omitempty" yaml:"assembly,omitempty" mapstructure:"assembly"`
	Values    []string `json:"values,omitempty" yaml:"values,omitempty" mapstructure:"values"`
}

// QualifiedName returns namespace.id, or id alone when the entity has no namespace.
func (e ManifestEntity) QualifiedName() string {
	if e.Namespace == "" {
		return e.ID
	}
	return e.Namespace + "." + e.ID
}

// ManifestParameter declares one parameter of a manifest method.
// QualifiedTypeName and TypeAssembly build the exact signature used for lookup;
// Name, InternalName and Aliases drive value binding at dispatch time.
type ManifestParameter struct {
	Name              string   `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	InternalName      string   `json:"internalName,omitempty" yaml:"internalName,omitempty" mapstructure:"internalName"`
	QualifiedTypeName string   `json:"qualifiedTypeName" yaml:"qualifiedTypeName" mapstructure:"qualifiedTypeName"`
	TypeAssembly      string   `json:"typeAssembly,omitempty" yaml:"typeAssembly,omitempty" mapstructure:"typeAssembly"`
	Aliases           []string `json:"aliases,omitempty" yaml:"aliases,omitempty" mapstructure:"aliases"`
}

// BindingName returns the name used to look the parameter up in a response.
func (p ManifestParameter) BindingName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.InternalName
}

// ManifestMethod is the capability shared by actions and error handlers.
type ManifestMethod interface {
	// MethodID is the fully qualified target, <type>.<member>.
	MethodID() string
	// DispatchKey is the intent (or error key) that selects the method.
	DispatchKey() string
	MethodAssembly() string
	MethodParameters() []ManifestParameter
}

// ManifestAction binds an intent to a handler.
type ManifestAction struct {
	ID              string              `json:"id" yaml:"id" mapstructure:"id"`
	Name            string              `json:"name" yaml:"name" mapstructure:"name"`
	Assembly        string              `json:"assembly,omitempty" yaml:"assembly,omitempty" mapstructure:"assembly"`
	Parameters      []ManifestParameter `json:"parameters,omitempty" yaml:"parameters,omitempty" mapstructure:"parameters"`
	MinConfidence   *float64            `json:"minConfidence,omitempty" yaml:"minConfidence,omitempty" mapstructure:"minConfidence"`
	MaxConfidence   *float64            `json:"maxConfidence,omitempty" yaml:"maxConfidence,omitempty" mapstructure:"maxConfidence"`
	ValidatePartial bool                `json:"validatePartial,omitempty" yaml:"validatePartial,omitempty" mapstructure:"validatePartial"`
}

func (a ManifestAction) MethodID() string                      { return a.ID }
func (a ManifestAction) DispatchKey() string                   { return a.Name }
func (a ManifestAction) MethodAssembly() string                { return a.Assembly }
func (a ManifestAction) MethodParameters() []ManifestParameter { return a.Parameters }

// ManifestErrorHandler binds a dispatch key to a handler invoked when every action
// candidate for that key failed.
type ManifestErrorHandler struct {
	ID         string              `json:"id" yaml:"id" mapstructure:"id"`
	Name       string              `json:"name" yaml:"name" mapstructure:"name"`
	Assembly   string              `json:"assembly,omitempty" yaml:"assembly,omitempty" mapstructure:"assembly"`
	Parameters []ManifestParameter `json:"parameters,omitempty" yaml:"parameters,omitempty" mapstructure:"parameters"`
}

func (h ManifestErrorHandler) MethodID() string                      { return h.ID }
func (h ManifestErrorHandler) DispatchKey() string                   { return h.Name }
func (h ManifestErrorHandler) MethodAssembly() string                { return h.Assembly }
func (h ManifestErrorHandler) MethodParameters() []ManifestParameter { return h.Parameters }

// SplitMethodID splits a <type>.<member> identifier on its last separator.
// ok is false when there is no separator or the type part would be empty.
func SplitMethodID(id string) (typeName, member string, ok bool) {
	i := strings.LastIndex(id, ".")
	if i <= 0 || i == len(id)-1 {
		return "", "", false
	}
	return id[:i], id[i+1:], true
}

// String renders the manifest as indented JSON.
func (m *Manifest) String() string {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}
