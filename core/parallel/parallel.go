// Package parallel splits index ranges across goroutines.
//
// 予測のような行ごとに独立した処理に使う。fn は互いに重ならない
// [start, end) を受け取るので、出力スライスへの書き込みにロックは要らない。
package parallel

import (
	"runtime"
	"sync"
)

// chunks returns the [start, end) ranges covering items for workers goroutines.
func chunks(items, workers int) [][2]int {
	if workers > items {
		workers = items
	}
	if workers < 1 {
		workers = 1
	}
	size := (items + workers - 1) / workers

	ranges := make([][2]int, 0, workers)
	for start := 0; start < items; start += size {
		end := start + size
		if end > items {
			end = items
		}
		ranges = append(ranges, [2]int{start, end})
	}
	return ranges
}

// Parallelize runs fn over [0, items) split into one chunk per usable CPU
// and waits for every chunk to finish.
func Parallelize(items int, fn func(start, end int)) {
	if items <= 0 {
		return
	}
	var wg sync.WaitGroup
	for _, r := range chunks(items, runtime.GOMAXPROCS(0)) {
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			fn(start, end)
		}(r[0], r[1])
	}
	wg.Wait()
}

// ParallelizeWithThreshold calls fn(0, items) on the calling goroutine when
// items <= threshold, and Parallelize otherwise.
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= 0 {
		return
	}
	if items <= threshold {
		fn(0, items)
		return
	}
	Parallelize(items, fn)
}
