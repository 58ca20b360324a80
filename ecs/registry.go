package ecs

import (
	"fmt"
	"iter"
	"reflect"
)

// ComponentRegistry records which component types a Storage may hold. Each
// Storage is bound to one registry, so several independent worlds can coexist.
type ComponentRegistry struct {
	factories map[reflect.Type]func() componentStore
}

// NewComponentRegistry creates an empty registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		factories: make(map[reflect.Type]func() componentStore),
	}
}

// RegisterComponent makes T usable as a component. It must be called before
// any entity carrying a T is spawned.
func RegisterComponent[T any](r *ComponentRegistry) {
	r.factories[reflect.TypeFor[T]()] = func() componentStore {
		return &blockStore[T]{}
	}
}

// Registered reports whether t has been registered.
func (r *ComponentRegistry) Registered(t reflect.Type) bool {
	_, ok := r.factories[t]
	return ok
}

func (r *ComponentRegistry) newStore(t reflect.Type) componentStore {
	factory, ok := r.factories[t]
	if !ok {
		panic(fmt.Sprintf("ecs: component type %s not registered", t))
	}
	return factory()
}

// componentStore is a type-erased column of one component type.
type componentStore interface {
	Append(item any) int
	Delete(index int)
	Get(index int) any
	Has(index int) bool
	Len() int
	Clear()
	Iter() iter.Seq[int]
}

const blockSize = 64

// blockStore keeps components of type T in fixed-size blocks so pointers handed
// out by Get stay valid while the column grows. Freed slots are reused.
type blockStore[T any] struct {
	blocks [][blockSize]T
	filled [][blockSize]bool
	free   []int
	next   int
	live   int
}

func (cs *blockStore[T]) Append(item any) int {
	var value T
	switch v := item.(type) {
	case T:
		value = v
	case *T:
		value = *v
	default:
		panic(fmt.Sprintf("ecs: cannot store %T as %s", item, reflect.TypeFor[T]()))
	}

	var index int
	if n := len(cs.free); n > 0 {
		index = cs.free[n-1]
		cs.free = cs.free[:n-1]
	} else {
		index = cs.next
		cs.next++
		if index/blockSize >= len(cs.blocks) {
			cs.blocks = append(cs.blocks, [blockSize]T{})
			cs.filled = append(cs.filled, [blockSize]bool{})
		}
	}

	cs.blocks[index/blockSize][index%blockSize] = value
	cs.filled[index/blockSize][index%blockSize] = true
	cs.live++
	return index
}

func (cs *blockStore[T]) Get(index int) any {
	if !cs.Has(index) {
		return nil
	}
	return &cs.blocks[index/blockSize][index%blockSize]
}

func (cs *blockStore[T]) Delete(index int) {
	if !cs.Has(index) {
		return
	}
	var zero T
	cs.blocks[index/blockSize][index%blockSize] = zero
	cs.filled[index/blockSize][index%blockSize] = false
	cs.free = append(cs.free, index)
	cs.live--
}

func (cs *blockStore[T]) Has(index int) bool {
	if index < 0 || index >= cs.next {
		return false
	}
	return cs.filled[index/blockSize][index%blockSize]
}

func (cs *blockStore[T]) Len() int {
	return cs.live
}

// Clear drops every component but keeps the allocated blocks.
func (cs *blockStore[T]) Clear() {
	var zero [blockSize]T
	for i := range cs.blocks {
		cs.blocks[i] = zero
		cs.filled[i] = [blockSize]bool{}
	}
	cs.free = cs.free[:0]
	cs.next = 0
	cs.live = 0
}

func (cs *blockStore[T]) Iter() iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := 0; i < cs.next; i++ {
			if cs.filled[i/blockSize][i%blockSize] && !yield(i) {
				return
			}
		}
	}
}
