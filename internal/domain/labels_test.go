package domain

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelsOf_InternsEqualContent(t *testing.T) {
	a := LabelsOf("member-1", "member-2")
	b := LabelsOf("member-1", "member-2")

	assert.Same(t, a, b)
	assert.Equal(t, []string{"member-1", "member-2"}, a.Names())
}

func TestLabelsOf_EmptyIsSingleton(t *testing.T) {
	assert.Same(t, NoLabels, LabelsOf())
	assert.Same(t, NoLabels, LabelsOf([]string{}...))
	assert.Equal(t, 0, NoLabels.Len())

	var nilLabels *Labels
	assert.True(t, nilLabels.Equal(NoLabels))
	assert.True(t, NoLabels.Equal(nilLabels))
	assert.Equal(t, NoLabels.Hash(), nilLabels.Hash())
}

func TestLabelsOf_KeyDoesNotCollide(t *testing.T) {
	a := LabelsOf("ab", "c")
	b := LabelsOf("a", "bc")
	assert.False(t, a.Equal(b))
	assert.NotSame(t, a, b)
}

func TestLabelsOf_CallerSliceIsCopied(t *testing.T) {
	names := []string{"copy-x", "copy-y"}
	l := LabelsOf(names...)
	names[0] = "mutated"
	assert.Equal(t, "copy-x", l.At(0))
}

func TestInternCache_EvictionKeepsEquality(t *testing.T) {
	c := newInternCache(3)

	first := c.intern([]string{"A"})
	for i := 0; i < 3; i++ {
		c.intern([]string{fmt.Sprintf("filler-%d", i)})
	}

	again := c.intern([]string{"A"})
	assert.NotSame(t, first, again, "evicted entry is rebuilt")
	assert.True(t, first.Equal(again))
	assert.Equal(t, first.Hash(), again.Hash())

	stats := c.stats()
	assert.Equal(t, 3, stats.Entries)
	assert.Equal(t, uint64(5), stats.Misses)
	assert.Equal(t, uint64(2), stats.Evictions)
}

func TestInternCache_RecentUseProtectsEntry(t *testing.T) {
	c := newInternCache(2)

	a := c.intern([]string{"A"})
	c.intern([]string{"B"})
	assert.Same(t, a, c.intern([]string{"A"}))

	c.intern([]string{"C"}) // evicts B, not A
	assert.Same(t, a, c.intern([]string{"A"}))
	assert.Equal(t, uint64(2), c.stats().Hits)
}

func TestInternCache_Resize(t *testing.T) {
	c := newInternCache(4)
	for _, n := range []string{"a", "b", "c", "d"} {
		c.intern([]string{n})
	}
	c.resize(1)

	stats := c.stats()
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, 1, stats.Capacity)
	assert.Equal(t, uint64(3), stats.Evictions)
}

func TestInternCache_ConcurrentCallersShareInstance(t *testing.T) {
	c := newInternCache(DefaultLabelCacheSize)

	const workers = 64
	results := make([]*Labels, workers)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			results[i] = c.intern([]string{"E1", "E2", "E3"})
		}(i)
	}
	close(start)
	wg.Wait()

	for _, l := range results {
		require.NotNil(t, l)
		assert.Same(t, results[0], l)
	}
	assert.Equal(t, uint64(1), c.stats().Misses)
}

func TestLabelCacheStats(t *testing.T) {
	before := LabelCacheStats()
	LabelsOf("stats-probe")
	LabelsOf("stats-probe")
	after := LabelCacheStats()

	assert.GreaterOrEqual(t, after.Hits, before.Hits+1)
	assert.Equal(t, DefaultLabelCacheSize, after.Capacity)
}
