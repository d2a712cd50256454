package domain

// lruCache is a doubly linked least-recently-used list over interned labels.
// It is not safe for concurrent use; internCache serializes access.
type lruCache struct {
	maxEntries int
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value *Labels
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (*Labels, bool) {
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

// put registers value under key and returns how many entries were evicted
// to stay within capacity.
func (c *lruCache) put(key string, value *Labels) int {
	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return 0
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)
	return c.trim()
}

// resize changes the capacity, evicting from the tail as needed.
func (c *lruCache) resize(maxEntries int) int {
	c.maxEntries = maxEntries
	return c.trim()
}

func (c *lruCache) trim() int {
	evicted := 0
	for len(c.entries) > c.maxEntries {
		c.evictTail()
		evicted++
	}
	return evicted
}

func (c *lruCache) len() int { return len(c.entries) }

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
