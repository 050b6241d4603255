package vss

import "container/list"

// fifoCache is a bounded map from packed index to an associated int,
// evicting the oldest-inserted entry once capacity is exceeded. Unlike a
// classic LRU, a Get never reorders entries: eviction order is strictly
// insertion order, mirroring the OrderedDict.popitem(last=False) policy
// this is grounded on.
type fifoCache struct {
	capacity int
	order    *list.List // of int keys, oldest at Front
	entries  map[int]*list.Element
	values   map[int]int
}

func newFIFOCache(capacity int) *fifoCache {
	return &fifoCache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[int]*list.Element, capacity),
		values:   make(map[int]int, capacity),
	}
}

func (c *fifoCache) Get(key int) (int, bool) {
	v, ok := c.values[key]
	return v, ok
}

func (c *fifoCache) Has(key int) bool {
	_, ok := c.values[key]
	return ok
}

// Set inserts or overwrites key->value without moving an existing key's
// position in eviction order, then evicts the oldest entries until the
// cache is back at or under capacity.
func (c *fifoCache) Set(key, value int) {
	if _, exists := c.values[key]; exists {
		c.values[key] = value
		return
	}
	c.values[key] = value
	c.entries[key] = c.order.PushBack(key)
	for c.order.Len() > c.capacity {
		oldest := c.order.Front()
		c.order.Remove(oldest)
		k := oldest.Value.(int)
		delete(c.entries, k)
		delete(c.values, k)
	}
}

func (c *fifoCache) Len() int {
	return c.order.Len()
}
