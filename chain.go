package foreignfield

import (
	"math/big"

	"github.com/consensys/gnark/frontend"
)

// Chain accumulates a pending chain of additions and subtractions to be
// finalized into a single element. A chain is finalized at most once: it is
// either building, accepting further terms, or finished, holding its result.
type Chain struct {
	g *Gadget

	terms []Element
	signs []int

	// set on finalization; a non-nil result rejects further mutation
	result *Element
}

func (*Chain) isOperand() {}

// NewChain starts a deferred addition chain from the initial term x.
func (g *Gadget) NewChain(x Element) *Chain {
	return &Chain{
		g:     g,
		terms: []Element{x},
	}
}

// Add appends +y to the pending chain.
func (c *Chain) Add(y Element) error {
	return c.append(y, 1)
}

// Sub appends -y to the pending chain.
func (c *Chain) Sub(y Element) error {
	return c.append(y, -1)
}

func (c *Chain) append(y Element, sign int) error {
	if c.result != nil {
		return ErrChainFinished
	}
	c.terms = append(c.terms, y)
	c.signs = append(c.signs, sign)
	return nil
}

// Result returns the finalized value. It errors while the chain is still
// building.
func (c *Chain) Result() (Element, error) {
	if c.result == nil {
		return Element{}, ErrChainUnfinished
	}
	return *c.result, nil
}

// Finish finalizes the chain through the generic addition engine. With
// chained set, the closing row is omitted: the result's cells are pinned by
// the following gate instead, saving one row.
func (c *Chain) Finish(f *big.Int, chained bool) (Element, error) {
	if c.result != nil {
		return Element{}, ErrChainFinished
	}
	res, err := c.g.sum(c.terms, c.signs, f, chained, false, nil)
	if err != nil {
		return Element{}, err
	}
	c.finish(res)
	return res, nil
}

// FinishForMulInput finalizes a chain which feeds a multiplication operand.
// The generic chain constrains only the combined low+mid limb per step, which
// is too coarse for a multiplication input. This mode additionally constrains
// the lowest limb alone at every step,
//
//	x0 + sign*y0 = r0 + o*f0 + c0*2^w, c0 in {-1,0,1},
//
// with the step carry c0 witnessed by a hint from the step operands; the
// witness is otherwise free, the equation pins it against the chain's own
// step outputs. The finalized result is limb-granular and its limb checks
// share the consuming multiplication row, so no standalone range-check row is
// emitted; together with chaining this makes the mul-input finalize cheaper
// per use than [Chain.Finish] at the cost of the per-step bookkeeping.
func (c *Chain) FinishForMulInput(f *big.Int, chained bool) (Element, error) {
	if c.result != nil {
		return Element{}, ErrChainFinished
	}
	g := c.g
	f0 := new(big.Int).And(f, g.p.mask)
	pow2L := g.p.pow2L

	res, err := g.sum(c.terms, c.signs, f, chained, true, func(x, y Element, sign int, r Element, overflow frontend.Variable) error {
		c0, err := g.callLowLimbCarryHint(x.Limbs[0], y.Limbs[0], overflow, sign, f0, r.Limbs[0])
		if err != nil {
			return err
		}
		g.api.AssertIsEqual(g.api.Mul(c0, g.api.Sub(c0, 1), g.api.Add(c0, 1)), 0)
		signC := big.NewInt(int64(sign))
		lhs := g.api.Add(x.Limbs[0], g.api.Mul(signC, y.Limbs[0]))
		rhs := g.api.Add(r.Limbs[0], g.api.Mul(overflow, f0), g.api.Mul(c0, pow2L))
		g.api.AssertIsEqual(lhs, rhs)
		return nil
	})
	if err != nil {
		return Element{}, err
	}
	c.finish(res)
	return res, nil
}

func (c *Chain) finish(res Element) {
	c.result = &res
	// ownership of the pending terms ends at finalization
	c.terms = nil
	c.signs = nil
}

// nbTerms reports the chain length for the magnitude bound in
// [Gadget.AssertMul].
func (c *Chain) nbTerms() int {
	if c.result != nil {
		return 1
	}
	return len(c.terms)
}

// constantValue folds the pending chain when every term is constant.
func (c *Chain) constantValue(f *big.Int) (*big.Int, bool) {
	if c.result != nil {
		v, ok := c.g.ConstantValue(*c.result)
		return v, ok
	}
	acc, ok := c.g.ConstantValue(c.terms[0])
	if !ok {
		return nil, false
	}
	for i, t := range c.terms[1:] {
		v, ok := c.g.ConstantValue(t)
		if !ok {
			return nil, false
		}
		if c.signs[i] > 0 {
			acc.Add(acc, v)
		} else {
			acc.Sub(acc, v)
		}
	}
	acc.Mod(acc, f)
	return acc, true
}
