package domain

import (
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// DefaultLabelCacheSize is the number of distinct non-empty label sets kept
// by the intern cache before the least recently used one is evicted.
const DefaultLabelCacheSize = 100

// Labels is an immutable ordered set of ensemble member names. Obtain
// instances through LabelsOf; a nil *Labels behaves like NoLabels.
type Labels struct {
	names []string
	key   string
}

// NoLabels is the canonical empty label set.
var NoLabels = &Labels{}

// LabelsOf returns the canonical instance for names. Calls with equal
// content return the same pointer for as long as the cache holds it.
func LabelsOf(names ...string) *Labels {
	if len(names) == 0 {
		return NoLabels
	}
	return labelCache.intern(names)
}

// Len returns the number of names.
func (l *Labels) Len() int {
	if l == nil {
		return 0
	}
	return len(l.names)
}

// At returns name i.
func (l *Labels) At(i int) string { return l.names[i] }

// Names returns a copy of the names.
func (l *Labels) Names() []string {
	if l.Len() == 0 {
		return nil
	}
	return append([]string(nil), l.names...)
}

// Index returns the position of name.
func (l *Labels) Index(name string) (int, bool) {
	for i := 0; i < l.Len(); i++ {
		if l.names[i] == name {
			return i, true
		}
	}
	return -1, false
}

// Compare orders label sets lexicographically by name.
func (l *Labels) Compare(o *Labels) int {
	a, b := l.Len(), o.Len()
	for i := 0; i < a && i < b; i++ {
		if c := strings.Compare(l.names[i], o.names[i]); c != 0 {
			return c
		}
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (l *Labels) Equal(other Value) bool {
	o, ok := other.(*Labels)
	if !ok {
		return false
	}
	if l.Len() == 0 || o.Len() == 0 {
		return l.Len() == o.Len()
	}
	return l.key == o.key
}

func (l *Labels) Hash() uint64 {
	if l == nil {
		return NoLabels.Hash()
	}
	return newHasher(tagLabels).string(l.key).sum()
}

func (l *Labels) String() string {
	return "[" + strings.Join(l.Names(), ",") + "]"
}

func (*Labels) isValue() {}

// labelKey encodes names with length prefixes so that distinct sequences
// never collide.
func labelKey(names []string) string {
	var b strings.Builder
	for _, n := range names {
		b.WriteString(strconv.Itoa(len(n)))
		b.WriteByte(':')
		b.WriteString(n)
	}
	return b.String()
}

// CacheStats is a point-in-time view of the label intern cache.
type CacheStats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Entries   int
	Capacity  int
}

// internCache canonicalizes Labels. Creation for a given key is
// single-flight, so concurrent callers never observe two instances created
// for the same content at the same time.
type internCache struct {
	mu    sync.Mutex
	lru   *lruCache
	group singleflight.Group

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

var labelCache = newInternCache(DefaultLabelCacheSize)

func newInternCache(capacity int) *internCache {
	return &internCache{lru: newLRUCache(capacity)}
}

func (c *internCache) lookup(key string) (*Labels, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.get(key)
}

func (c *internCache) intern(names []string) *Labels {
	key := labelKey(names)
	if l, ok := c.lookup(key); ok {
		c.hits.Add(1)
		return l
	}

	v, _, _ := c.group.Do(key, func() (any, error) {
		// Another flight may have registered the key after our lookup.
		if l, ok := c.lookup(key); ok {
			c.hits.Add(1)
			return l, nil
		}
		l := &Labels{names: append([]string(nil), names...), key: key}

		c.mu.Lock()
		evicted := c.lru.put(key, l)
		c.mu.Unlock()

		c.misses.Add(1)
		c.evictions.Add(uint64(evicted))
		return l, nil
	})
	return v.(*Labels)
}

func (c *internCache) resize(capacity int) {
	c.mu.Lock()
	evicted := c.lru.resize(capacity)
	c.mu.Unlock()
	c.evictions.Add(uint64(evicted))
}

func (c *internCache) stats() CacheStats {
	c.mu.Lock()
	entries, capacity := c.lru.len(), c.lru.maxEntries
	c.mu.Unlock()
	return CacheStats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Entries:   entries,
		Capacity:  capacity,
	}
}

// SetLabelCacheSize changes the capacity of the intern cache. Values below
// one are treated as one. Shrinking evicts least recently used entries.
func SetLabelCacheSize(capacity int) {
	labelCache.resize(max(capacity, 1))
}

// LabelCacheStats reports the intern cache counters.
func LabelCacheStats() CacheStats {
	return labelCache.stats()
}
