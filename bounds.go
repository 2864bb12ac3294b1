package foreignfield

import (
	"math/big"

	"github.com/consensys/gnark/frontend"
)

// weakBound returns hi + 2^w - 1 - (f >> 2w). Range-checking the returned
// value to w bits proves hi <= f >> 2w: the represented value is then small
// enough that its product with another bounded value stays within the native
// field capacity, without proving the value is fully below f.
func (g *Gadget) weakBound(hi frontend.Variable, f *big.Int) frontend.Variable {
	shift := new(big.Int).Sub(g.p.mask, new(big.Int).Rsh(f, g.p.twoLimbs))
	return g.api.Add(hi, shift)
}

// AssertAlmostFieldElements range-checks every value and proves the weak
// bound on its high limb, making the values usable as multiplication
// operands. The bound witnesses are flushed three per range-check row to
// amortize the fixed per-row overhead; a trailing group of one or two is
// padded with zero bounds.
func (g *Gadget) AssertAlmostFieldElements(values []Element, f *big.Int) ([]Element, error) {
	if err := g.p.checkModulus(f); err != nil {
		return nil, err
	}
	out := make([]Element, len(values))
	var pending []frontend.Variable
	flush := func() {
		for len(pending) < 3 {
			pending = append(pending, 0)
		}
		g.multiRangeCheck(pending[0], pending[1], pending[2])
		pending = pending[:0]
	}
	for i, v := range values {
		v = g.enforceBoundedConditional(v)
		out[i] = v
		pending = append(pending, g.weakBound(v.Limbs[2], f))
		if len(pending) == 3 {
			flush()
		}
	}
	if len(pending) > 0 {
		flush()
	}
	return out, nil
}
