package dataset

import (
	"sync"
	"time"

	"customer-dashboard/internal/models"
)

// Table is the immutable result of loading one source.
type Table struct {
	Source   string
	Records  []models.OrderRecord
	LoadedAt time.Time
}

// Len returns the number of order records.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// Cache memoizes loaded tables by source identifier. Entries live until they
// are invalidated explicitly.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*Table
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]*Table)}
}

func (c *Cache) Get(source string) (*Table, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.entries[source]
	return t, ok
}

func (c *Cache) Set(source string, t *Table) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[source] = t
}

// Invalidate drops the entry for source and reports whether one existed.
func (c *Cache) Invalidate(source string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[source]
	delete(c.entries, source)
	return ok
}

// Purge drops every entry.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*Table)
}

func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
