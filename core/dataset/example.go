// Package dataset defines the examples and datasets consumed by kernels,
// kernel caches and the SVM solver.
//
// An Example is identified by ID(). Caches key their entries by that identity,
// so two examples with the same ID are treated as the same point.
package dataset

import "encoding/gob"

// Example は学習・予測の対象となる1つのデータ点
type Example interface {
	// ID はキャッシュのキーとして使われる識別子を返す
	ID() int
}

// Vector は密な特徴ベクトルを持つExample
type Vector struct {
	Index int
	X     []float64
}

// ID implements Example.
func (v Vector) ID() int { return v.Index }

// Dim returns the number of features.
func (v Vector) Dim() int { return len(v.X) }

// Pair は2つのExampleから成るExample。ペアワイズカーネルで使う。
type Pair struct {
	Index  int
	First  Example
	Second Example
}

// ID implements Example.
func (p Pair) ID() int { return p.Index }

func init() {
	// Pair holds its members behind the Example interface, so the concrete
	// types must be known to gob before support vectors can be persisted.
	gob.Register(Vector{})
	gob.Register(Pair{})
}
