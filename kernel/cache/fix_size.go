package cache

import (
	"github.com/YuminosukeSato/kernelsvm/core/dataset"
	"github.com/YuminosukeSato/kernelsvm/pkg/errors"
	lru "github.com/hashicorp/golang-lru/v2/simplelru"
)

type pairKey struct {
	lo, hi int
}

func newPairKey(a, b dataset.Example) pairKey {
	i, j := a.ID(), b.ID()
	if i > j {
		i, j = j, i
	}
	return pairKey{lo: i, hi: j}
}

// FixSizeKernelCache holds at most capacity pairs of arbitrary identities.
// When full, the pair stored earliest is evicted. Reads do not refresh an
// entry's position.
type FixSizeKernelCache struct {
	capacity int
	entries  *lru.LRU[pairKey, float64]
	stats    Stats
}

// NewFixSizeKernelCache creates a cache bounded to capacity pairs.
func NewFixSizeKernelCache(capacity int) (*FixSizeKernelCache, error) {
	if err := validateCapacity("capacity", capacity); err != nil {
		return nil, err
	}
	entries, err := lru.NewLRU[pairKey, float64](capacity, nil)
	if err != nil {
		return nil, errors.Wrap(err, "kernelsvm: NewFixSizeKernelCache")
	}
	return &FixSizeKernelCache{capacity: capacity, entries: entries}, nil
}

// Get implements KernelCache.
func (c *FixSizeKernelCache) Get(a, b dataset.Example) (float64, bool) {
	v, ok := c.entries.Peek(newPairKey(a, b))
	c.stats.record(ok)
	return v, ok
}

// Set implements KernelCache.
func (c *FixSizeKernelCache) Set(a, b dataset.Example, v float64) {
	c.entries.Add(newPairKey(a, b), v)
}

// Flush implements KernelCache.
func (c *FixSizeKernelCache) Flush() {
	c.entries.Purge()
	c.stats = Stats{}
}

// Len returns the number of stored pairs.
func (c *FixSizeKernelCache) Len() int { return c.entries.Len() }

// Stats implements StatsReporter.
func (c *FixSizeKernelCache) Stats() Stats {
	s := c.stats
	s.Stored = c.entries.Len()
	return s
}
