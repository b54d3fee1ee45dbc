package cache

import "github.com/YuminosukeSato/kernelsvm/core/dataset"

// slotTable hands out dense slot numbers to identities, first come first
// served, until capacity slots are taken.
type slotTable struct {
	capacity int
	slots    map[int]int
}

func newSlotTable(capacity int) slotTable {
	return slotTable{capacity: capacity, slots: make(map[int]int, capacity)}
}

func (t *slotTable) lookup(id int) (int, bool) {
	s, ok := t.slots[id]
	return s, ok
}

// acquire returns the slot of id, assigning the next free one if needed.
func (t *slotTable) acquire(id int) (int, bool) {
	if s, ok := t.slots[id]; ok {
		return s, true
	}
	if len(t.slots) >= t.capacity {
		return 0, false
	}
	s := len(t.slots)
	t.slots[id] = s
	return s, true
}

// DynamicIndexKernelCache maps arbitrary identities onto a dense
// capacity×capacity matrix. The first capacity distinct identities seen by
// Set get a slot; later identities are never cached.
type DynamicIndexKernelCache struct {
	table  slotTable
	values []float64
	valid  []bool
	stats  Stats
}

// NewDynamicIndexKernelCache allocates a cache for capacity identities.
func NewDynamicIndexKernelCache(capacity int) (*DynamicIndexKernelCache, error) {
	c := &DynamicIndexKernelCache{}
	if err := c.SetExamplesToStore(capacity); err != nil {
		return nil, err
	}
	return c, nil
}

// SetExamplesToStore re-binds the cache to n identities. Every slot
// assignment and every stored value is dropped.
func (c *DynamicIndexKernelCache) SetExamplesToStore(n int) error {
	if err := validatePairCapacity("examplesToStore", n); err != nil {
		return err
	}
	c.table = newSlotTable(n)
	c.values = make([]float64, n*n)
	c.valid = make([]bool, n*n)
	c.stats = Stats{}
	return nil
}

// Get implements KernelCache.
func (c *DynamicIndexKernelCache) Get(a, b dataset.Example) (float64, bool) {
	i, okA := c.table.lookup(a.ID())
	j, okB := c.table.lookup(b.ID())
	if !okA || !okB || !c.valid[i*c.table.capacity+j] {
		c.stats.record(false)
		return 0, false
	}
	c.stats.record(true)
	return c.values[i*c.table.capacity+j], true
}

// Set implements KernelCache.
func (c *DynamicIndexKernelCache) Set(a, b dataset.Example, v float64) {
	i, okA := c.table.acquire(a.ID())
	if !okA {
		return
	}
	j, okB := c.table.acquire(b.ID())
	if !okB {
		return
	}
	n := c.table.capacity
	if !c.valid[i*n+j] {
		c.stats.Stored++
	}
	c.values[i*n+j] = v
	c.values[j*n+i] = v
	c.valid[i*n+j] = true
	c.valid[j*n+i] = true
}

// Flush implements KernelCache. Slot assignments are kept.
func (c *DynamicIndexKernelCache) Flush() {
	for k := range c.valid {
		c.valid[k] = false
	}
	c.stats = Stats{}
}

// Stats implements StatsReporter.
func (c *DynamicIndexKernelCache) Stats() Stats { return c.stats }

// DynamicIndexSquaredNormCache assigns slots to identities first come first served.
type DynamicIndexSquaredNormCache struct {
	table  slotTable
	values []float64
	valid  []bool
	stats  Stats
}

// NewDynamicIndexSquaredNormCache allocates a cache for capacity identities.
func NewDynamicIndexSquaredNormCache(capacity int) (*DynamicIndexSquaredNormCache, error) {
	c := &DynamicIndexSquaredNormCache{}
	if err := c.SetExamplesToStore(capacity); err != nil {
		return nil, err
	}
	return c, nil
}

// SetExamplesToStore re-binds the cache to n identities and drops all values.
func (c *DynamicIndexSquaredNormCache) SetExamplesToStore(n int) error {
	if err := validateCapacity("examplesToStore", n); err != nil {
		return err
	}
	c.table = newSlotTable(n)
	c.values = make([]float64, n)
	c.valid = make([]bool, n)
	c.stats = Stats{}
	return nil
}

// Get implements SquaredNormCache.
func (c *DynamicIndexSquaredNormCache) Get(a dataset.Example) (float64, bool) {
	s, ok := c.table.lookup(a.ID())
	if !ok || !c.valid[s] {
		c.stats.record(false)
		return 0, false
	}
	c.stats.record(true)
	return c.values[s], true
}

// Set implements SquaredNormCache.
func (c *DynamicIndexSquaredNormCache) Set(a dataset.Example, v float64) {
	s, ok := c.table.acquire(a.ID())
	if !ok {
		return
	}
	if !c.valid[s] {
		c.stats.Stored++
	}
	c.values[s] = v
	c.valid[s] = true
}

// Flush implements SquaredNormCache.
func (c *DynamicIndexSquaredNormCache) Flush() {
	for k := range c.valid {
		c.valid[k] = false
	}
	c.stats = Stats{}
}

// Stats implements StatsReporter.
func (c *DynamicIndexSquaredNormCache) Stats() Stats { return c.stats }
