package ecs

import "iter"

// Query is a View whose results are collected once per frame. Systems declare
// Query fields; the scheduler binds them on Register and calls Execute before
// each system runs, so Iter always reflects the state at the start of the system.
type Query[T any] struct {
	view    *View[T]
	storage *Storage

	archetypes     []*Archetype
	seenArchetypes int

	entities   []EntityId
	components []T
	ready      bool
}

// NewQuery returns a query over storage.
func NewQuery[T any](storage *Storage) *Query[T] {
	q := &Query[T]{}
	q.Init(storage)
	return q
}

// Init binds the query to storage.
func (q *Query[T]) Init(storage *Storage) {
	q.view = NewView[T](storage)
	q.storage = storage
	q.archetypes = nil
	q.seenArchetypes = 0
	q.ready = false
}

// Execute collects the matching entities. Archetypes only ever get added, so
// the match list is extended rather than rebuilt.
func (q *Query[T]) Execute() {
	for _, a := range q.storage.archetypes[q.seenArchetypes:] {
		if q.view.matches(a) {
			q.archetypes = append(q.archetypes, a)
		}
	}
	q.seenArchetypes = len(q.storage.archetypes)

	q.entities = q.entities[:0]
	q.components = q.components[:0]
	for _, a := range q.archetypes {
		for id, item := range q.view.iterArchetype(a) {
			q.entities = append(q.entities, id)
			q.components = append(q.components, item)
		}
	}
	q.ready = true
}

// Len is the number of entities collected by the last Execute.
func (q *Query[T]) Len() int {
	return len(q.entities)
}

// Iter yields the entities collected by the last Execute.
func (q *Query[T]) Iter() iter.Seq2[EntityId, T] {
	if !q.ready {
		panic("ecs: Query.Iter() called before Query.Execute()")
	}
	return func(yield func(EntityId, T) bool) {
		for i := range q.entities {
			if !yield(q.entities[i], q.components[i]) {
				return
			}
		}
	}
}

// Values yields only the component structs.
func (q *Query[T]) Values() iter.Seq[T] {
	if !q.ready {
		panic("ecs: Query.Values() called before Query.Execute()")
	}
	return func(yield func(T) bool) {
		for i := range q.components {
			if !yield(q.components[i]) {
				return
			}
		}
	}
}
