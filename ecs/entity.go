package ecs

// EntityId packs the archetype id (upper 32 bits) and the slot index inside the
// archetype (lower 32 bits). Slots are reused after Delete, so an id is only
// meaningful while its entity is alive.
type EntityId uint64

// NewEntityId builds an id from its parts.
func NewEntityId(archetypeId uint32, index uint32) EntityId {
	return EntityId(uint64(archetypeId)<<32 | uint64(index))
}

func (e EntityId) ArchetypeId() uint32 {
	return uint32(e >> 32)
}

func (e EntityId) Index() uint32 {
	return uint32(e & 0xFFFFFFFF)
}
