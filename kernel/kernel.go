package kernel

import (
	"github.com/YuminosukeSato/kernelsvm/core/dataset"
	"github.com/YuminosukeSato/kernelsvm/kernel/cache"
)

// Kernel evaluates a Function, answering from attached caches when it can.
// A cache miss is computed, stored and returned. Kernel is not safe for
// concurrent use while a cache is attached.
type Kernel struct {
	fn    Function
	cache cache.KernelCache
	norms cache.SquaredNormCache
}

// New wraps fn without any cache.
func New(fn Function) *Kernel {
	return &Kernel{fn: fn}
}

// Function returns the wrapped kernel function.
func (k *Kernel) Function() Function { return k.fn }

// InnerProduct returns K(a, b).
func (k *Kernel) InnerProduct(a, b dataset.Example) float64 {
	if k.cache != nil {
		if v, ok := k.cache.Get(a, b); ok {
			return v
		}
	}
	v := k.fn.Evaluate(a, b)
	if k.cache != nil {
		k.cache.Set(a, b, v)
	}
	return v
}

// SquaredNorm returns K(a, a).
func (k *Kernel) SquaredNorm(a dataset.Example) float64 {
	if k.norms != nil {
		if v, ok := k.norms.Get(a); ok {
			return v
		}
	}
	v := k.fn.Evaluate(a, a)
	if k.norms != nil {
		k.norms.Set(a, v)
	}
	return v
}

// SetKernelCache attaches c for InnerProduct. nil detaches.
func (k *Kernel) SetKernelCache(c cache.KernelCache) { k.cache = c }

// SetSquaredNormCache attaches c for SquaredNorm. nil detaches.
func (k *Kernel) SetSquaredNormCache(c cache.SquaredNormCache) { k.norms = c }

// KernelCache returns the attached pair cache, or nil.
func (k *Kernel) KernelCache() cache.KernelCache { return k.cache }

// SquaredNormCache returns the attached norm cache, or nil.
func (k *Kernel) SquaredNormCache() cache.SquaredNormCache { return k.norms }

// DisableCache detaches both caches without clearing them; other holders of
// the same caches keep their contents.
func (k *Kernel) DisableCache() {
	k.cache = nil
	k.norms = nil
}

// FlushCache clears the attached caches.
func (k *Kernel) FlushCache() {
	if k.cache != nil {
		k.cache.Flush()
	}
	if k.norms != nil {
		k.norms.Flush()
	}
}
