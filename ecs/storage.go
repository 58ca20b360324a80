package ecs

import (
	"fmt"
	"reflect"
	"slices"
	"unsafe"

	"github.com/kamstrup/intmap"
)

// Storage owns every entity and singleton of one world.
type Storage struct {
	registry *ComponentRegistry

	// archetypes is kept in creation order so iteration is deterministic;
	// byId maps an archetype id to its position in the slice.
	archetypes []*Archetype
	byId       *intmap.Map[uint32, int]

	singletons     map[reflect.Type]*singletonEntry
	singletonOrder []reflect.Type
}

type singletonEntry struct {
	value   reflect.Value
	dataPtr unsafe.Pointer
}

// NewStorage creates an empty world for the given registry.
func NewStorage(registry *ComponentRegistry) *Storage {
	return &Storage{
		registry:   registry,
		byId:       intmap.New[uint32, int](16),
		singletons: make(map[reflect.Type]*singletonEntry),
	}
}

// Registry returns the registry the storage was created with.
func (s *Storage) Registry() *ComponentRegistry { return s.registry }

func (s *Storage) archetype(id uint32) *Archetype {
	if i, ok := s.byId.Get(id); ok {
		return s.archetypes[i]
	}
	return nil
}

func (s *Storage) archetypeFor(types []reflect.Type) *Archetype {
	id := hashTypes(types)
	if a := s.archetype(id); a != nil {
		if !slices.Equal(a.types, types) {
			panic(fmt.Sprintf("ecs: archetype id collision between %v and %v", a.types, types))
		}
		return a
	}

	a := newArchetype(id, types, s.registry)
	s.byId.Put(id, len(s.archetypes))
	s.archetypes = append(s.archetypes, a)
	return a
}

// Archetypes returns every archetype in creation order. The slice must not be modified.
func (s *Storage) Archetypes() []*Archetype {
	return s.archetypes
}

// Spawn creates an entity from the given components. Components may be passed
// by value or by pointer; the storage always keeps its own copy.
func (s *Storage) Spawn(components ...any) EntityId {
	if len(components) == 0 {
		panic("ecs: cannot spawn entity without components")
	}

	a := s.archetypeFor(sortedTypes(components))
	return NewEntityId(a.id, a.spawn(components))
}

// Delete removes an entity. Deleting a dead entity is a no-op.
func (s *Storage) Delete(id EntityId) {
	if a := s.archetype(id.ArchetypeId()); a != nil {
		a.delete(id.Index())
	}
}

// Alive reports whether id refers to a live entity.
func (s *Storage) Alive(id EntityId) bool {
	a := s.archetype(id.ArchetypeId())
	return a != nil && a.alive(id.Index())
}

// GetComponent returns a pointer to the entity's component of type t, or nil.
func (s *Storage) GetComponent(id EntityId, t reflect.Type) any {
	a := s.archetype(id.ArchetypeId())
	if a == nil {
		return nil
	}
	return a.get(id.Index(), t)
}

// Len is the number of live entities.
func (s *Storage) Len() int {
	n := 0
	for _, a := range s.archetypes {
		n += a.Len()
	}
	return n
}

// Clear deletes every entity. Archetypes and singletons are kept.
func (s *Storage) Clear() {
	for _, a := range s.archetypes {
		a.clear()
	}
}

// AddSingleton stores a value that belongs to no entity. Adding a type that is
// already present overwrites it in place, so existing Singleton handles stay valid.
func (s *Storage) AddSingleton(value any) {
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	t := v.Type()

	if entry, ok := s.singletons[t]; ok {
		entry.value.Elem().Set(v)
		return
	}

	ptr := reflect.New(t)
	ptr.Elem().Set(v)
	s.singletons[t] = &singletonEntry{value: ptr, dataPtr: ptr.UnsafePointer()}
	s.singletonOrder = append(s.singletonOrder, t)
}

func (s *Storage) getSingletonEntry(t reflect.Type) *singletonEntry {
	return s.singletons[t]
}

// ReadSingleton returns the singleton of type T, or nil if none was added.
func ReadSingleton[T any](s *Storage) *T {
	entry := s.getSingletonEntry(reflect.TypeFor[T]())
	if entry == nil {
		return nil
	}
	return (*T)(entry.dataPtr)
}

// ComponentReader is anything that can look up a component by entity.
type ComponentReader interface {
	GetComponent(EntityId, reflect.Type) any
}

// ReadComponent returns the entity's T component, or nil.
func ReadComponent[T any](reader ComponentReader, id EntityId) *T {
	comp := reader.GetComponent(id, reflect.TypeFor[T]())
	if comp == nil {
		return nil
	}
	return comp.(*T)
}
