// Package registry holds the static catalog of notification events. The
// catalog is built once at process start; after Build the registry is
// immutable and safe for concurrent reads without locking.
package registry

import (
	"fmt"
	"sort"

	"usernotify/internal/common"
)

// EventDef declares one event for registration. RendererName must match a
// renderer added to the builder; the binding is resolved at build time, not
// per call.
//
// ID is the durable event ID. Catalogs loaded from the database must carry
// the row's own ID here: subscriptions, channel preferences and persisted
// notifications are all keyed by it, so it survives catalog gaps and
// restarts. A zero ID asks Build to assign the next free one, which is
// only safe for hand-built catalogs.
type EventDef struct {
	ID             int64
	ObjectType     string
	Name           string
	SupportedKinds []common.Kind
	RendererName   string
}

// ObjectTypeDef declares one object type and the package it belongs to.
type ObjectTypeDef struct {
	Name      string
	PackageID int64
	Provider  common.ObjectProvider
}

type eventKey struct {
	objectType string
	name       string
}

// Builder collects definitions before the registry is built. Not safe for
// concurrent use; registration happens at load time only.
type Builder struct {
	renderers   map[string]common.Renderer
	objectTypes map[string]ObjectTypeDef
	defs        []EventDef
	err         error
}

func NewBuilder() *Builder {
	return &Builder{
		renderers:   make(map[string]common.Renderer),
		objectTypes: make(map[string]ObjectTypeDef),
	}
}

func (b *Builder) AddRenderer(name string, r common.Renderer) *Builder {
	if b.err != nil {
		return b
	}
	if name == "" || r == nil {
		b.err = fmt.Errorf("renderer %q: name and implementation are required", name)
		return b
	}
	if _, ok := b.renderers[name]; ok {
		b.err = fmt.Errorf("renderer %q registered twice", name)
		return b
	}
	b.renderers[name] = r
	return b
}

func (b *Builder) AddObjectType(def ObjectTypeDef) *Builder {
	if b.err != nil {
		return b
	}
	if def.Name == "" || def.Provider == nil {
		b.err = fmt.Errorf("object type %q: name and provider are required", def.Name)
		return b
	}
	if _, ok := b.objectTypes[def.Name]; ok {
		b.err = fmt.Errorf("object type %q registered twice", def.Name)
		return b
	}
	b.objectTypes[def.Name] = def
	return b
}

func (b *Builder) AddEvent(def EventDef) *Builder {
	if b.err != nil {
		return b
	}
	b.defs = append(b.defs, def)
	return b
}

// Build wires every event to its renderer and object type. Events keep
// their declared ID; events without one get the next free ID, starting at
// 1. Any inconsistency fails the whole build: an inconsistent registry
// makes all dispatch undefined, so the caller is expected to treat a build
// error as fatal.
func (b *Builder) Build() (*Registry, error) {
	if b.err != nil {
		return nil, b.err
	}

	reg := &Registry{
		events:    make(map[eventKey]common.Event, len(b.defs)),
		byID:      make(map[int64]common.Event, len(b.defs)),
		renderers: make(map[int64]common.Renderer, len(b.defs)),
		providers: make(map[string]common.ObjectProvider, len(b.objectTypes)),
	}

	for name, ot := range b.objectTypes {
		reg.providers[name] = ot.Provider
	}

	var nextID int64 = 1
	for _, def := range b.defs {
		if def.Name == "" {
			return nil, fmt.Errorf("event for object type %q has no name", def.ObjectType)
		}
		ot, ok := b.objectTypes[def.ObjectType]
		if !ok {
			return nil, fmt.Errorf("event %s.%s references unknown object type", def.ObjectType, def.Name)
		}
		renderer, ok := b.renderers[def.RendererName]
		if !ok {
			return nil, fmt.Errorf("event %s.%s references unknown renderer %q", def.ObjectType, def.Name, def.RendererName)
		}

		key := eventKey{objectType: def.ObjectType, name: def.Name}
		if _, ok := reg.events[key]; ok {
			return nil, fmt.Errorf("event %s.%s registered twice", def.ObjectType, def.Name)
		}

		id := def.ID
		if id < 0 {
			return nil, fmt.Errorf("event %s.%s has invalid id %d", def.ObjectType, def.Name, id)
		}
		if id == 0 {
			for {
				if _, taken := reg.byID[nextID]; !taken {
					break
				}
				nextID++
			}
			id = nextID
			nextID++
		} else if _, taken := reg.byID[id]; taken {
			return nil, fmt.Errorf("event %s.%s reuses event id %d", def.ObjectType, def.Name, id)
		}

		ev := common.Event{
			ID:             id,
			ObjectType:     def.ObjectType,
			Name:           def.Name,
			PackageID:      ot.PackageID,
			SupportedKinds: append([]common.Kind(nil), def.SupportedKinds...),
		}
		reg.events[key] = ev
		reg.byID[ev.ID] = ev
		reg.renderers[ev.ID] = renderer
	}

	return reg, nil
}

// MustBuild is Build for the composition root: a broken catalog stops the
// process.
func (b *Builder) MustBuild() *Registry {
	reg, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("notification event registry: %v", err))
	}
	return reg
}

// Registry is the immutable event catalog.
type Registry struct {
	events    map[eventKey]common.Event
	byID      map[int64]common.Event
	renderers map[int64]common.Renderer
	providers map[string]common.ObjectProvider
}

// Lookup resolves an (objectType, eventName) pair to its event.
func (r *Registry) Lookup(objectType, eventName string) (common.Event, error) {
	ev, ok := r.events[eventKey{objectType: objectType, name: eventName}]
	if !ok {
		return common.Event{}, fmt.Errorf("%w: %s.%s", common.ErrUnknownEvent, objectType, eventName)
	}
	return ev, nil
}

// EventByID returns the event with the given registry-assigned ID.
func (r *Registry) EventByID(id int64) (common.Event, error) {
	ev, ok := r.byID[id]
	if !ok {
		return common.Event{}, fmt.Errorf("%w: event id %d", common.ErrUnknownEvent, id)
	}
	return ev, nil
}

// Renderer returns the renderer bound to the event at build time.
func (r *Registry) Renderer(eventID int64) (common.Renderer, error) {
	rend, ok := r.renderers[eventID]
	if !ok {
		return nil, fmt.Errorf("%w: no renderer for event id %d", common.ErrUnknownEvent, eventID)
	}
	return rend, nil
}

// ObjectProvider returns the loader for one object type.
func (r *Registry) ObjectProvider(objectType string) (common.ObjectProvider, error) {
	p, ok := r.providers[objectType]
	if !ok {
		return nil, fmt.Errorf("%w: no provider for object type %q", common.ErrUnknownEvent, objectType)
	}
	return p, nil
}

// Events returns all registered events in ID order.
func (r *Registry) Events() []common.Event {
	out := make([]common.Event, 0, len(r.byID))
	for _, ev := range r.byID {
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
