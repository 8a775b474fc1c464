package cache

import (
	"strings"
	"sync"

	"github.com/zivilschutz/zsadmin/utils"
)

// Searchable records expose the text a free-text filter matches against.
type Searchable interface {
	SearchText() string
}

// Loader fetches the full collection from the backing store.
type Loader[T any] func() ([]T, error)

// Collection keeps an in-memory copy of a record set, keyed by id.
// It is loaded on first use and refreshed after Invalidate.
type Collection[T any] struct {
	mu     sync.RWMutex
	load   Loader[T]
	idOf   func(T) uint
	items  []T
	loaded bool
}

func NewCollection[T any](load Loader[T], idOf func(T) uint) *Collection[T] {
	return &Collection[T]{load: load, idOf: idOf}
}

// All returns a copy of every cached record.
func (c *Collection[T]) All() ([]T, error) {
	err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	items := make([]T, len(c.items))
	copy(items, c.items)
	return items, nil
}

// Find returns the records for which match is true, in cache order.
func (c *Collection[T]) Find(match func(T) bool) ([]T, error) {
	err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	items := []T{}
	for _, item := range c.items {
		if match(item) {
			items = append(items, item)
		}
	}
	return items, nil
}

func (c *Collection[T]) Get(id uint) (T, bool, error) {
	var zero T

	err := c.ensureLoaded()
	if err != nil {
		return zero, false, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, item := range c.items {
		if c.idOf(item) == id {
			return item, true, nil
		}
	}
	return zero, false, nil
}

// Put inserts or replaces a record. It is a no-op until the collection has been loaded,
// since the next load picks the record up from the store anyway.
func (c *Collection[T]) Put(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded {
		return
	}

	id := c.idOf(item)
	for i := range c.items {
		if c.idOf(c.items[i]) == id {
			c.items[i] = item
			return
		}
	}
	c.items = append(c.items, item)
}

func (c *Collection[T]) Remove(id uint) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.idOf(c.items[i]) == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// Invalidate drops the cached records; the next read reloads them.
func (c *Collection[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = nil
	c.loaded = false
}

func (c *Collection[T]) ensureLoaded() error {
	c.mu.RLock()
	loaded := c.loaded
	c.mu.RUnlock()

	if loaded {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return nil
	}

	items, err := c.load()
	if err != nil {
		return err
	}

	c.items = items
	c.loaded = true
	return nil
}

// Filter keeps the items whose search text contains query, ignoring case.
// An empty query keeps everything.
func Filter[T Searchable](items []T, query string) []T {
	query = strings.TrimSpace(query)
	if query == "" {
		return items
	}

	filtered := []T{}
	for _, item := range items {
		if utils.ContainsFold(item.SearchText(), query) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}
