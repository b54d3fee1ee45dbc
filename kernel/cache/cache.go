// Package cache stores kernel values and squared norms computed during SVM
// training so repeated evaluations are answered without touching the kernel.
//
// Every variant is keyed by Example.ID(). Pair lookups are order independent:
// Get(a, b) and Get(b, a) address the same entry. Caches are not safe for
// concurrent writers; the solver drives them from a single goroutine.
package cache

import (
	"math"

	"github.com/YuminosukeSato/kernelsvm/core/dataset"
	"github.com/YuminosukeSato/kernelsvm/pkg/errors"
)

// KernelCache はカーネル値 K(a, b) を保持するキャッシュ
type KernelCache interface {
	// Get returns the stored value for the unordered pair {a, b}.
	Get(a, b dataset.Example) (float64, bool)
	// Set stores v for the unordered pair {a, b}. Pairs the cache cannot hold are ignored.
	Set(a, b dataset.Example, v float64)
	// Flush drops every stored value and keeps the capacity.
	Flush()
}

// SquaredNormCache は K(a, a) を保持するキャッシュ
type SquaredNormCache interface {
	Get(a dataset.Example) (float64, bool)
	Set(a dataset.Example, v float64)
	Flush()
}

// Stats reports cache effectiveness since the last Flush.
type Stats struct {
	Hits   int
	Misses int
	// Stored is the number of distinct entries currently held.
	Stored int
}

// StatsReporter is implemented by every cache in this package.
type StatsReporter interface {
	Stats() Stats
}

func (s *Stats) record(hit bool) {
	if hit {
		s.Hits++
	} else {
		s.Misses++
	}
}

func validateCapacity(param string, capacity int) error {
	if capacity <= 0 {
		return errors.NewValidationError(param, "must be positive", capacity)
	}
	return nil
}

// maxPairCapacity is the largest capacity whose capacity²·BytesPerEntry
// bytes still fit in an int.
var maxPairCapacity = int(math.Sqrt(float64(math.MaxInt/BytesPerEntry))) - 1

// validatePairCapacity checks a capacity that is squared into a dense matrix.
func validatePairCapacity(param string, capacity int) error {
	if err := validateCapacity(param, capacity); err != nil {
		return err
	}
	if capacity > maxPairCapacity {
		return errors.NewValidationError(param, "capacity² slots do not fit in memory", capacity)
	}
	return nil
}

// BytesPerEntry is the memory used by one slot of the index-addressed caches:
// an 8-byte value and a 1-byte validity flag.
const BytesPerEntry = 9
