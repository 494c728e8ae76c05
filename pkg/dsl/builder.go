package dsl

import (
	"github.com/aretw0/conduit/pkg/domain"
)

// Builder manages the manifest construction.
type Builder struct {
	manifest domain.Manifest
	entities []*EntityBuilder
	methods  []methodBuilder
}

type methodBuilder interface {
	apply(m *domain.Manifest)
}

// New creates a new manifest builder.
func New(id string) *Builder {
	return &Builder{manifest: domain.Manifest{ID: id}}
}

// Version sets the manifest format version.
func (b *Builder) Version(v string) *Builder {
	b.manifest.Version = v
	return b
}

// Domain sets the descriptive domain name.
func (b *Builder) Domain(d string) *Builder {
	b.manifest.Domain = d
	return b
}

// Entity declares an entity whose type is namespace.id.
func (b *Builder) Entity(name, namespace, id string) *EntityBuilder {
	eb := &EntityBuilder{
		entity:  domain.ManifestEntity{Name: name, Namespace: namespace, ID: id},
		builder: b,
	}
	b.entities = append(b.entities, eb)
	return eb
}

// Action declares an action handling intent, implemented by the method with the given ID.
func (b *Builder) Action(intent, id string) *ActionBuilder {
	ab := &ActionBuilder{
		action:  domain.ManifestAction{Name: intent, ID: id},
		builder: b,
	}
	b.methods = append(b.methods, ab)
	return ab
}

// ErrorHandler declares the error handler of intent.
func (b *Builder) ErrorHandler(intent, id string) *HandlerBuilder {
	hb := &HandlerBuilder{
		handler: domain.ManifestErrorHandler{Name: intent, ID: id},
		builder: b,
	}
	b.methods = append(b.methods, hb)
	return hb
}

// Build returns the manifest. Entries keep the order they were declared in.
func (b *Builder) Build() *domain.Manifest {
	m := b.manifest
	m.Entities = nil
	m.Actions = nil
	m.ErrorHandlers = nil
	for _, eb := range b.entities {
		m.Entities = append(m.Entities, eb.entity)
	}
	for _, mb := range b.methods {
		mb.apply(&m)
	}
	return &m
}
