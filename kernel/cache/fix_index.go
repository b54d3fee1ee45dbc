package cache

import "github.com/YuminosukeSato/kernelsvm/core/dataset"

// FixIndexKernelCache stores values in a dense capacity×capacity matrix
// addressed directly by example identity. Identities outside [0, capacity)
// are never stored.
type FixIndexKernelCache struct {
	capacity int
	values   []float64
	valid    []bool
	stats    Stats
}

// NewFixIndexKernelCache allocates capacity² slots up front.
func NewFixIndexKernelCache(capacity int) (*FixIndexKernelCache, error) {
	if err := validatePairCapacity("capacity", capacity); err != nil {
		return nil, err
	}
	return &FixIndexKernelCache{
		capacity: capacity,
		values:   make([]float64, capacity*capacity),
		valid:    make([]bool, capacity*capacity),
	}, nil
}

func (c *FixIndexKernelCache) inRange(id int) bool {
	return id >= 0 && id < c.capacity
}

// Get implements KernelCache.
func (c *FixIndexKernelCache) Get(a, b dataset.Example) (float64, bool) {
	i, j := a.ID(), b.ID()
	if !c.inRange(i) || !c.inRange(j) || !c.valid[i*c.capacity+j] {
		c.stats.record(false)
		return 0, false
	}
	c.stats.record(true)
	return c.values[i*c.capacity+j], true
}

// Set implements KernelCache. Both (a,b) and (b,a) are written.
func (c *FixIndexKernelCache) Set(a, b dataset.Example, v float64) {
	i, j := a.ID(), b.ID()
	if !c.inRange(i) || !c.inRange(j) {
		return
	}
	if !c.valid[i*c.capacity+j] {
		c.stats.Stored++
	}
	c.values[i*c.capacity+j] = v
	c.values[j*c.capacity+i] = v
	c.valid[i*c.capacity+j] = true
	c.valid[j*c.capacity+i] = true
}

// Flush implements KernelCache.
func (c *FixIndexKernelCache) Flush() {
	for k := range c.valid {
		c.valid[k] = false
	}
	c.stats = Stats{}
}

// Capacity returns the number of identities the cache can address.
func (c *FixIndexKernelCache) Capacity() int { return c.capacity }

// Stats implements StatsReporter.
func (c *FixIndexKernelCache) Stats() Stats { return c.stats }

// FixIndexSquaredNormCache は ID を直接添字として K(a, a) を保持する
type FixIndexSquaredNormCache struct {
	values []float64
	valid  []bool
	stats  Stats
}

// NewFixIndexSquaredNormCache allocates capacity slots.
func NewFixIndexSquaredNormCache(capacity int) (*FixIndexSquaredNormCache, error) {
	if err := validateCapacity("capacity", capacity); err != nil {
		return nil, err
	}
	return &FixIndexSquaredNormCache{
		values: make([]float64, capacity),
		valid:  make([]bool, capacity),
	}, nil
}

// Get implements SquaredNormCache.
func (c *FixIndexSquaredNormCache) Get(a dataset.Example) (float64, bool) {
	id := a.ID()
	if id < 0 || id >= len(c.values) || !c.valid[id] {
		c.stats.record(false)
		return 0, false
	}
	c.stats.record(true)
	return c.values[id], true
}

// Set implements SquaredNormCache.
func (c *FixIndexSquaredNormCache) Set(a dataset.Example, v float64) {
	id := a.ID()
	if id < 0 || id >= len(c.values) {
		return
	}
	if !c.valid[id] {
		c.stats.Stored++
	}
	c.values[id] = v
	c.valid[id] = true
}

// Flush implements SquaredNormCache.
func (c *FixIndexSquaredNormCache) Flush() {
	for k := range c.valid {
		c.valid[k] = false
	}
	c.stats = Stats{}
}

// Stats implements StatsReporter.
func (c *FixIndexSquaredNormCache) Stats() Stats { return c.stats }
