package ecs

// Commands buffers structural changes requested while systems run. The
// scheduler flushes it after the last system of a frame.
type Commands struct {
	deletes []EntityId
	spawns  [][]any
	defers  []func()
}

func newCommands() *Commands {
	return &Commands{}
}

// Spawn queues an entity creation.
func (c *Commands) Spawn(components ...any) {
	c.spawns = append(c.spawns, components)
}

// Delete queues an entity removal.
func (c *Commands) Delete(entity EntityId) {
	c.deletes = append(c.deletes, entity)
}

// Defer queues an arbitrary function to run at flush time.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, fn)
}

// Len is the number of queued operations.
func (c *Commands) Len() int {
	return len(c.deletes) + len(c.spawns) + len(c.defers)
}

// Flush applies deletes, then spawns, then deferred functions, and empties the buffer.
func (c *Commands) Flush(storage *Storage) {
	for _, id := range c.deletes {
		storage.Delete(id)
	}
	for _, components := range c.spawns {
		storage.Spawn(components...)
	}
	for _, fn := range c.defers {
		fn()
	}

	clear(c.spawns)
	c.deletes = c.deletes[:0]
	c.spawns = c.spawns[:0]
	clear(c.defers)
	c.defers = c.defers[:0]
}
