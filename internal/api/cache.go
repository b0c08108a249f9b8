package api

import (
	"sync"
)

// TaskCache is a thread-safe LRU cache of recent task records. Artifacts
// live in the store; the cache only answers task status lookups.
type TaskCache struct {
	mu      sync.Mutex
	maxSize int
	entries map[string]*Task
	order   []string // oldest first
}

// NewTaskCache creates a cache with the given maximum number of entries.
// If maxSize <= 0, it defaults to 256.
func NewTaskCache(maxSize int) *TaskCache {
	if maxSize <= 0 {
		maxSize = 256
	}
	return &TaskCache{
		maxSize: maxSize,
		entries: make(map[string]*Task),
	}
}

// Get retrieves a task from the cache, or nil if not found.
func (c *TaskCache) Get(id string) *Task {
	c.mu.Lock()
	defer c.mu.Unlock()

	task, ok := c.entries[id]
	if !ok {
		return nil
	}

	// Move to end (most recently used)
	c.moveToEnd(id)
	return task
}

// Put adds a task to the cache, evicting the oldest if full.
func (c *TaskCache) Put(task *Task) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[task.ID]; ok {
		c.entries[task.ID] = task
		c.moveToEnd(task.ID)
		return
	}

	// Evict oldest if at capacity
	for len(c.entries) >= c.maxSize && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[task.ID] = task
	c.order = append(c.order, task.ID)
}

// Len returns the number of cached tasks.
func (c *TaskCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *TaskCache) moveToEnd(id string) {
	for i, k := range c.order {
		if k == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			c.order = append(c.order, id)
			return
		}
	}
}
