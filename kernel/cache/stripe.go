package cache

import "github.com/YuminosukeSato/kernelsvm/core/dataset"

// StripeKernelCache keeps whole rows of the kernel matrix of one dataset.
// The column of an example is its position in the dataset; rows are handed
// out to examples in the order they are first written, up to maxRows.
// Memory is maxRows × n values.
type StripeKernelCache struct {
	columns map[int]int
	rows    map[int]int
	maxRows int
	n       int
	values  [][]float64
	valid   [][]bool
	stats   Stats
}

// NewStripeKernelCache builds a cache over ds holding at most maxRows rows.
// maxRows <= 0 means one row per example.
func NewStripeKernelCache(ds dataset.Dataset, maxRows int) (*StripeKernelCache, error) {
	n := ds.NumberOfExamples()
	if err := validateCapacity("numberOfExamples", n); err != nil {
		return nil, err
	}
	if maxRows <= 0 || maxRows > n {
		maxRows = n
	}
	columns := make(map[int]int, n)
	for pos, e := range ds.Examples() {
		columns[e.ID()] = pos
	}
	return &StripeKernelCache{
		columns: columns,
		rows:    make(map[int]int, maxRows),
		maxRows: maxRows,
		n:       n,
		values:  make([][]float64, 0, maxRows),
		valid:   make([][]bool, 0, maxRows),
	}, nil
}

// NewStripeKernelCacheAll builds a cache with one row per example of ds.
func NewStripeKernelCacheAll(ds dataset.Dataset) (*StripeKernelCache, error) {
	return NewStripeKernelCache(ds, 0)
}

// MaxRows returns the row budget.
func (c *StripeKernelCache) MaxRows() int { return c.maxRows }

func (c *StripeKernelCache) lookup(row, col dataset.Example) (float64, bool) {
	r, ok := c.rows[row.ID()]
	if !ok {
		return 0, false
	}
	j, ok := c.columns[col.ID()]
	if !ok || !c.valid[r][j] {
		return 0, false
	}
	return c.values[r][j], true
}

// Get implements KernelCache.
func (c *StripeKernelCache) Get(a, b dataset.Example) (float64, bool) {
	v, ok := c.lookup(a, b)
	if !ok {
		v, ok = c.lookup(b, a)
	}
	c.stats.record(ok)
	return v, ok
}

func (c *StripeKernelCache) rowOf(e dataset.Example) (int, bool) {
	if r, ok := c.rows[e.ID()]; ok {
		return r, true
	}
	if _, known := c.columns[e.ID()]; !known || len(c.rows) >= c.maxRows {
		return 0, false
	}
	r := len(c.values)
	c.rows[e.ID()] = r
	c.values = append(c.values, make([]float64, c.n))
	c.valid = append(c.valid, make([]bool, c.n))
	return r, true
}

func (c *StripeKernelCache) store(row, col dataset.Example, v float64) bool {
	j, ok := c.columns[col.ID()]
	if !ok {
		return false
	}
	r, ok := c.rowOf(row)
	if !ok {
		return false
	}
	if !c.valid[r][j] {
		c.stats.Stored++
	}
	c.values[r][j] = v
	c.valid[r][j] = true
	return true
}

// Set implements KernelCache. The value goes into the row of a, or into the
// row of b when a cannot get one.
func (c *StripeKernelCache) Set(a, b dataset.Example, v float64) {
	if !c.store(a, b, v) {
		c.store(b, a, v)
	}
}

// Flush implements KernelCache. Row assignments are released.
func (c *StripeKernelCache) Flush() {
	c.rows = make(map[int]int, c.maxRows)
	c.values = c.values[:0]
	c.valid = c.valid[:0]
	c.stats = Stats{}
}

// Stats implements StatsReporter.
func (c *StripeKernelCache) Stats() Stats { return c.stats }
