package kernel

import (
	"github.com/YuminosukeSato/kernelsvm/core/dataset"
	"github.com/YuminosukeSato/kernelsvm/pkg/errors"
)

// Preference is the preference kernel over example pairs (x1, x2), (y1, y2):
//
//	BK(x1,y1) + BK(x2,y2) - BK(x1,y2) - BK(x2,y1)
//
// It equals <φ(x1)-φ(x2), φ(y1)-φ(y2)> in the feature space of Base.
type Preference struct {
	Base Function
}

// PairwiseSum sums the four cross terms of two pairs. With IntraPair set it
// also adds BK(x1,x2)·BK(y1,y2).
type PairwiseSum struct {
	Base      Function
	IntraPair bool
}

func pairs(op string, a, b dataset.Example) (dataset.Pair, dataset.Pair) {
	pa, ok := a.(dataset.Pair)
	if !ok {
		panic(errors.NewContractError(op, "dataset.Pair", a))
	}
	pb, ok := b.(dataset.Pair)
	if !ok {
		panic(errors.NewContractError(op, "dataset.Pair", b))
	}
	return pa, pb
}

// Evaluate implements Function. Non-pair arguments panic with a ContractError.
func (k Preference) Evaluate(a, b dataset.Example) float64 {
	x, y := pairs("Preference.Evaluate", a, b)
	return k.Base.Evaluate(x.First, y.First) +
		k.Base.Evaluate(x.Second, y.Second) -
		k.Base.Evaluate(x.First, y.Second) -
		k.Base.Evaluate(x.Second, y.First)
}

// Evaluate implements Function. Non-pair arguments panic with a ContractError.
func (k PairwiseSum) Evaluate(a, b dataset.Example) float64 {
	x, y := pairs("PairwiseSum.Evaluate", a, b)
	v := k.Base.Evaluate(x.First, y.First) +
		k.Base.Evaluate(x.Second, y.Second) +
		k.Base.Evaluate(x.First, y.Second) +
		k.Base.Evaluate(x.Second, y.First)
	if k.IntraPair {
		v += k.Base.Evaluate(x.First, x.Second) * k.Base.Evaluate(y.First, y.Second)
	}
	return v
}
