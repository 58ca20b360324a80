package ecs

import (
	"iter"
	"reflect"
	"unsafe"
)

// View reads entities through a struct of component pointers. Embedded fields
// are required; named fields tagged `ecs:"optional"` are nil when absent.
//
//	type mover struct {
//		*Position
//		*Velocity
//		Name *Name `ecs:"optional"`
//	}
type View[T any] struct {
	storage  *Storage
	types    []reflect.Type
	optional []bool
	offsets  []uintptr
}

// NewView inspects T once and returns a view over storage.
func NewView[T any](storage *Storage) *View[T] {
	structType := reflect.TypeFor[T]()
	if structType.Kind() != reflect.Struct {
		panic("ecs: View type parameter must be a struct")
	}

	v := &View[T]{storage: storage}
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		if field.Type.Kind() != reflect.Pointer {
			panic("ecs: View struct fields must be pointer types")
		}

		optional := false
		if tag := field.Tag.Get("ecs"); tag != "" && !field.Anonymous {
			if tag != "optional" {
				panic("ecs: invalid ecs tag value: \"" + tag + "\" (only \"optional\" is supported)")
			}
			optional = true
		}

		v.types = append(v.types, field.Type.Elem())
		v.optional = append(v.optional, optional)
		v.offsets = append(v.offsets, field.Offset)
	}
	return v
}

func (v *View[T]) matches(a *Archetype) bool {
	for i, t := range v.types {
		if !v.optional[i] && !a.HasComponent(t) {
			return false
		}
	}
	return true
}

func (v *View[T]) columns(a *Archetype) []int {
	cols := make([]int, len(v.types))
	for i, t := range v.types {
		cols[i] = a.column(t)
	}
	return cols
}

// fill points the fields of out at the components in slot index.
func (v *View[T]) fill(out *T, a *Archetype, cols []int, index int) bool {
	base := unsafe.Pointer(out)
	for i, col := range cols {
		field := (*unsafe.Pointer)(unsafe.Add(base, v.offsets[i]))

		var comp any
		if col != -1 {
			comp = a.storages[col].Get(index)
		}
		if comp == nil {
			if !v.optional[i] {
				return false
			}
			*field = nil
			continue
		}
		*field = dataPointer(comp)
	}
	return true
}

// Fill populates out for one entity and reports whether it has every required component.
func (v *View[T]) Fill(id EntityId, out *T) bool {
	a := v.storage.archetype(id.ArchetypeId())
	if a == nil || !v.matches(a) {
		return false
	}
	return v.fill(out, a, v.columns(a), int(id.Index()))
}

// Get returns the populated struct for id, or nil.
func (v *View[T]) Get(id EntityId) *T {
	var out T
	if !v.Fill(id, &out) {
		return nil
	}
	return &out
}

// Iter yields every matching entity, archetypes in creation order.
func (v *View[T]) Iter() iter.Seq2[EntityId, T] {
	return func(yield func(EntityId, T) bool) {
		for _, a := range v.storage.archetypes {
			if !v.matches(a) {
				continue
			}
			for id, item := range v.iterArchetype(a) {
				if !yield(id, item) {
					return
				}
			}
		}
	}
}

func (v *View[T]) iterArchetype(a *Archetype) iter.Seq2[EntityId, T] {
	return func(yield func(EntityId, T) bool) {
		if len(a.storages) == 0 {
			return
		}
		cols := v.columns(a)

		var out T
		for index := range a.storages[0].Iter() {
			if !v.fill(&out, a, cols, index) {
				continue
			}
			if !yield(NewEntityId(a.id, uint32(index)), out) {
				return
			}
		}
	}
}

// Values yields only the populated structs.
func (v *View[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, item := range v.Iter() {
			if !yield(item) {
				return
			}
		}
	}
}

// Spawn creates an entity from the non-nil fields of data.
func (v *View[T]) Spawn(data T) EntityId {
	base := unsafe.Pointer(&data)

	components := make([]any, 0, len(v.types))
	for i, t := range v.types {
		ptr := *(*unsafe.Pointer)(unsafe.Add(base, v.offsets[i]))
		if ptr == nil {
			if !v.optional[i] {
				panic("ecs: required component is nil in View.Spawn")
			}
			continue
		}
		components = append(components, reflect.NewAt(t, ptr).Interface())
	}
	return v.storage.Spawn(components...)
}
