package dsl

import "github.com/aretw0/conduit/pkg/domain"

// EntityBuilder provides a fluent API for configuring an entity.
type EntityBuilder struct {
	entity  domain.ManifestEntity
	builder *Builder
}

// Assembly sets the assembly the entity type is registered under.
func (e *EntityBuilder) Assembly(assembly string) *EntityBuilder {
	e.entity.Assembly = assembly
	return e
}

// Values lists the known entity values.
func (e *EntityBuilder) Values(values ...string) *EntityBuilder {
	e.entity.Values = append(e.entity.Values, values...)
	return e
}

// Entity declares another entity.
func (e *EntityBuilder) Entity(name, namespace, id string) *EntityBuilder {
	return e.builder.Entity(name, namespace, id)
}

// Action declares an action.
func (e *EntityBuilder) Action(intent, id string) *ActionBuilder {
	return e.builder.Action(intent, id)
}

// Build returns the manifest.
func (e *EntityBuilder) Build() *domain.Manifest {
	return e.builder.Build()
}

// params holds the parameter list shared by actions and error handlers.
type params struct {
	list []domain.ManifestParameter
}

func (p *params) add(name, typeName string) {
	p.list = append(p.list, domain.ManifestParameter{Name: name, QualifiedTypeName: typeName})
}

func (p *params) last() *domain.ManifestParameter {
	if len(p.list) == 0 {
		return nil
	}
	return &p.list[len(p.list)-1]
}

func (p *params) clone() []domain.ManifestParameter {
	if len(p.list) == 0 {
		return nil
	}
	return append([]domain.ManifestParameter(nil), p.list...)
}

// ActionBuilder provides a fluent API for configuring an action.
type ActionBuilder struct {
	action  domain.ManifestAction
	params  params
	builder *Builder
}

func (a *ActionBuilder) apply(m *domain.Manifest) {
	action := a.action
	action.Parameters = a.params.clone()
	m.Actions = append(m.Actions, action)
}

// Assembly sets the assembly of the implementing method.
func (a *ActionBuilder) Assembly(assembly string) *ActionBuilder {
	a.action.Assembly = assembly
	return a
}

// Param appends a parameter of the given qualified type.
func (a *ActionBuilder) Param(name, typeName string) *ActionBuilder {
	a.params.add(name, typeName)
	return a
}

// TypeAssembly sets the assembly of the last parameter's type.
func (a *ActionBuilder) TypeAssembly(assembly string) *ActionBuilder {
	if p := a.params.last(); p != nil {
		p.TypeAssembly = assembly
	}
	return a
}

// Aliases adds alternative response keys for the last parameter.
func (a *ActionBuilder) Aliases(aliases ...string) *ActionBuilder {
	if p := a.params.last(); p != nil {
		p.Aliases = append(p.Aliases, aliases...)
	}
	return a
}

// Confidence declares the confidence band. The handler's marker remains authoritative.
func (a *ActionBuilder) Confidence(min, max float64) *ActionBuilder {
	a.action.MinConfidence = &min
	a.action.MaxConfidence = &max
	return a
}

// Partial declares that the action validates partial responses.
func (a *ActionBuilder) Partial() *ActionBuilder {
	a.action.ValidatePartial = true
	return a
}

// Action declares another action.
func (a *ActionBuilder) Action(intent, id string) *ActionBuilder {
	return a.builder.Action(intent, id)
}

// ErrorHandler declares an error handler.
func (a *ActionBuilder) ErrorHandler(intent, id string) *HandlerBuilder {
	return a.builder.ErrorHandler(intent, id)
}

// Build returns the manifest.
func (a *ActionBuilder) Build() *domain.Manifest {
	return a.builder.Build()
}

// HandlerBuilder provides a fluent API for configuring an error handler.
type HandlerBuilder struct {
	handler domain.ManifestErrorHandler
	params  params
	builder *Builder
}

func (h *HandlerBuilder) apply(m *domain.Manifest) {
	handler := h.handler
	handler.Parameters = h.params.clone()
	m.ErrorHandlers = append(m.ErrorHandlers, handler)
}

// Assembly sets the assembly of the implementing method.
func (h *HandlerBuilder) Assembly(assembly string) *HandlerBuilder {
	h.handler.Assembly = assembly
	return h
}

// Param appends a parameter of the given qualified type.
func (h *HandlerBuilder) Param(name, typeName string) *HandlerBuilder {
	h.params.add(name, typeName)
	return h
}

// Action declares an action.
func (h *HandlerBuilder) Action(intent, id string) *ActionBuilder {
	return h.builder.Action(intent, id)
}

// ErrorHandler declares another error handler.
func (h *HandlerBuilder) ErrorHandler(intent, id string) *HandlerBuilder {
	return h.builder.ErrorHandler(intent, id)
}

// Build returns the manifest.
func (h *HandlerBuilder) Build() *domain.Manifest {
	return h.builder.Build()
}
