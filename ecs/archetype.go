package ecs

import (
	"iter"
	"reflect"
	"slices"
	"strings"
	"unsafe"
)

// Archetype holds every entity that carries exactly the same set of component
// types, one column per type.
type Archetype struct {
	id       uint32
	types    []reflect.Type
	storages []componentStore
}

func newArchetype(id uint32, types []reflect.Type, registry *ComponentRegistry) *Archetype {
	a := &Archetype{
		id:       id,
		types:    types,
		storages: make([]componentStore, len(types)),
	}
	for i, typ := range types {
		a.storages[i] = registry.newStore(typ)
	}
	return a
}

// spawn appends one entity. Columns are always appended and deleted together,
// so they agree on the slot index.
func (a *Archetype) spawn(components []any) uint32 {
	index := -1
	for i, typ := range a.types {
		for _, comp := range components {
			if componentType(comp) == typ {
				index = a.storages[i].Append(comp)
				break
			}
		}
	}
	return uint32(index)
}

func (a *Archetype) column(t reflect.Type) int {
	for i, typ := range a.types {
		if typ == t {
			return i
		}
	}
	return -1
}

func (a *Archetype) get(index uint32, t reflect.Type) any {
	col := a.column(t)
	if col == -1 {
		return nil
	}
	return a.storages[col].Get(int(index))
}

func (a *Archetype) alive(index uint32) bool {
	return len(a.storages) > 0 && a.storages[0].Has(int(index))
}

func (a *Archetype) delete(index uint32) {
	for _, storage := range a.storages {
		storage.Delete(int(index))
	}
}

func (a *Archetype) clear() {
	for _, storage := range a.storages {
		storage.Clear()
	}
}

// HasComponent reports whether the archetype has a column for t.
func (a *Archetype) HasComponent(t reflect.Type) bool {
	return slices.Contains(a.types, t)
}

func (a *Archetype) ID() uint32 { return a.id }

// Types returns the component types, sorted by name.
func (a *Archetype) Types() []reflect.Type { return a.types }

// Len is the number of live entities.
func (a *Archetype) Len() int {
	if len(a.storages) == 0 {
		return 0
	}
	return a.storages[0].Len()
}

// Iter yields the ids of live entities in slot order.
func (a *Archetype) Iter() iter.Seq[EntityId] {
	return func(yield func(EntityId) bool) {
		if len(a.storages) == 0 {
			return
		}
		for index := range a.storages[0].Iter() {
			if !yield(NewEntityId(a.id, uint32(index))) {
				return
			}
		}
	}
}

// componentType returns the stored type of a component value, looking through
// one level of pointer.
func componentType(comp any) reflect.Type {
	t := reflect.TypeOf(comp)
	if t == nil {
		panic("ecs: nil component")
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func:
		panic("ecs: components cannot be pointers, maps, channels, or functions")
	}
	return t
}

// sortedTypes extracts and orders the component types of a spawn request.
func sortedTypes(components []any) []reflect.Type {
	types := make([]reflect.Type, 0, len(components))
	for _, comp := range components {
		t := componentType(comp)
		if slices.Contains(types, t) {
			panic("ecs: duplicate component type " + t.String())
		}
		types = append(types, t)
	}
	slices.SortFunc(types, func(a, b reflect.Type) int {
		return strings.Compare(a.String(), b.String())
	})
	return types
}

// eface mirrors the runtime layout of an interface value.
type eface struct {
	typ  unsafe.Pointer
	data unsafe.Pointer
}

// dataPointer returns the pointer held by an interface that wraps a pointer.
func dataPointer(v any) unsafe.Pointer {
	return (*eface)(unsafe.Pointer(&v)).data
}

// hashTypes derives an archetype id from a sorted type list (FNV-1a over the
// runtime type pointers).
func hashTypes(types []reflect.Type) uint32 {
	h := uint32(2166136261)
	const prime uint32 = 16777619

	for _, t := range types {
		ptr := uintptr(dataPointer(t))
		h ^= uint32(ptr) ^ uint32(uint64(ptr)>>32)
		h *= prime
	}
	return h
}
