package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLRUCache_BasicGetPut(t *testing.T) {
	c := newLRUCache(3)
	a := &Labels{names: []string{"A"}, key: "a"}

	c.put("a", a)
	got, ok := c.get("a")
	assert.True(t, ok)
	assert.Same(t, a, got)

	_, ok = c.get("missing")
	assert.False(t, ok)
}

func TestLRUCache_Eviction(t *testing.T) {
	c := newLRUCache(2)

	assert.Equal(t, 0, c.put("a", &Labels{}))
	assert.Equal(t, 0, c.put("b", &Labels{}))
	assert.Equal(t, 1, c.put("c", &Labels{})) // evicts "a"

	_, ok := c.get("a")
	assert.False(t, ok, "a should have been evicted")
	_, ok = c.get("b")
	assert.True(t, ok)
	_, ok = c.get("c")
	assert.True(t, ok)
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	c := newLRUCache(2)
	first, second := &Labels{key: "1"}, &Labels{key: "2"}

	c.put("a", first)
	c.put("a", second)

	got, ok := c.get("a")
	assert.True(t, ok)
	assert.Same(t, second, got)
	assert.Equal(t, 1, c.len())
}
