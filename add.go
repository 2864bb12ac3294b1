package foreignfield

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark/frontend"
)

// singleAdd emits one chained addition row computing r = x + sign*y - o*f for
// an overflow o in {0, sign}. The row constrains the combined low+mid limbs
// with an explicit carry into the high limb:
//
//	x01 + sign*y01 = r01 + o*f01 + carry*2^2w
//	x2  + sign*y2 + carry = r2 + o*f2
//
// The result is not range-checked; the chain driver checks the final result
// once. The step overflow is returned for the low-limb tracking in
// [Chain.FinishForMulInput].
func (g *Gadget) singleAdd(x, y Element, sign int, f *big.Int) (Element, frontend.Variable, error) {
	r, overflow, carry, err := g.callAddHint(x, y, sign, f)
	if err != nil {
		return Element{}, nil, err
	}
	signC := big.NewInt(int64(sign))

	// o*(o-sign) = 0 and carry*(carry-1)*(carry+1) = 0
	g.api.AssertIsEqual(g.api.Mul(overflow, g.api.Sub(overflow, signC)), 0)
	g.api.AssertIsEqual(g.api.Mul(carry, g.api.Sub(carry, 1), g.api.Add(carry, 1)), 0)

	fLow := new(big.Int).And(f, g.p.mask2)
	fHigh := new(big.Int).Rsh(f, g.p.twoLimbs)

	lhsLow := g.api.Add(g.low(x), g.api.Mul(signC, g.low(y)))
	rhsLow := g.api.Add(g.low(r), g.api.Mul(overflow, fLow), g.api.Mul(carry, g.p.pow2L2))
	g.api.AssertIsEqual(lhsLow, rhsLow)

	lhsHigh := g.api.Add(x.Limbs[2], g.api.Mul(signC, y.Limbs[2]), carry)
	rhsHigh := g.api.Add(r.Limbs[2], g.api.Mul(overflow, fHigh))
	g.api.AssertIsEqual(lhsHigh, rhsHigh)

	g.countRow()
	return r, overflow, nil
}

// sum reduces terms into a single element, emitting one row per chained step.
// stepFn, when non-nil, is invoked after every step with the step operands
// and outputs; FinishForMulInput uses it to track the low limb. With mulInput
// set, the final limb checks share the consuming multiplication row instead of
// occupying a standalone range-check row.
func (g *Gadget) sum(terms []Element, signs []int, f *big.Int, chained, mulInput bool, stepFn func(x, y Element, sign int, r Element, overflow frontend.Variable) error) (Element, error) {
	if len(terms) != len(signs)+1 {
		return Element{}, fmt.Errorf("%w: %d terms, %d signs", ErrTermSignMismatch, len(terms), len(signs))
	}
	if err := g.p.checkModulus(f); err != nil {
		return Element{}, err
	}
	for _, s := range signs {
		if s != 1 && s != -1 {
			return Element{}, fmt.Errorf("%w: sign must be +1 or -1", ErrTermSignMismatch)
		}
	}

	// constant folding
	if res, ok := g.constantFold(terms, signs, f); ok {
		return res, nil
	}

	cur := terms[0]
	for i, y := range terms[1:] {
		r, overflow, err := g.singleAdd(cur, y, signs[i], f)
		if err != nil {
			return Element{}, err
		}
		if stepFn != nil {
			if err := stepFn(cur, y, signs[i], r, overflow); err != nil {
				return Element{}, err
			}
		}
		cur = r
	}
	if !chained {
		g.closeRow()
	}
	if mulInput {
		g.checker.Check(cur.Limbs[0], int(g.p.limbBits))
		g.checker.Check(cur.Limbs[1], int(g.p.limbBits))
		g.checker.Check(cur.Limbs[2], int(g.p.limbBits))
	} else {
		g.multiRangeCheck(cur.Limbs[0], cur.Limbs[1], cur.Limbs[2])
	}
	cur.checked = true
	return cur, nil
}

// constantFold computes the chain result directly when every term is a
// compile-time constant. No constraints are emitted.
func (g *Gadget) constantFold(terms []Element, signs []int, f *big.Int) (Element, bool) {
	acc, ok := g.ConstantValue(terms[0])
	if !ok {
		return Element{}, false
	}
	for i, t := range terms[1:] {
		v, ok := g.ConstantValue(t)
		if !ok {
			return Element{}, false
		}
		if signs[i] > 0 {
			acc.Add(acc, v)
		} else {
			acc.Sub(acc, v)
		}
	}
	acc.Mod(acc, f)
	return g.NewElement(acc), true
}

// Sum computes terms[0] + sum_i signs[i]*terms[i+1] modulo f. It emits one
// row per step, a closing row and a final range check, or folds to a constant
// when every term is constant.
func (g *Gadget) Sum(terms []Element, signs []int, f *big.Int) (Element, error) {
	return g.sum(terms, signs, f, false, false, nil)
}

// Add computes x + y mod f.
func (g *Gadget) Add(x, y Element, f *big.Int) (Element, error) {
	return g.sum([]Element{x, y}, []int{1}, f, false, false, nil)
}

// Sub computes x - y mod f. The inputs may wrap around the modulus at most
// once, which holds whenever both are below f.
func (g *Gadget) Sub(x, y Element, f *big.Int) (Element, error) {
	return g.sum([]Element{x, y}, []int{-1}, f, false, false, nil)
}

// Negate computes -x mod f.
func (g *Gadget) Negate(x Element, f *big.Int) (Element, error) {
	return g.sum([]Element{g.NewElement(0), x}, []int{-1}, f, false, false, nil)
}

// AssertLessThan asserts x < f. The symbolic case negates x against the
// modulus f-1: the addition row's overflow can represent at most one unit of
// wraparound, which makes the negation satisfiable exactly when x <= f-1.
// The uniqueness argument needs x's limbs below 2^w, so x is range-checked
// here unless already known to be.
func (g *Gadget) AssertLessThan(x Element, f *big.Int) error {
	if err := g.p.checkModulus(f); err != nil {
		return err
	}
	if c, ok := g.ConstantValue(x); ok {
		if c.Cmp(f) >= 0 {
			return fmt.Errorf("%w: %s is not below %s", ErrUnsatisfiable, c.String(), f.String())
		}
		return nil
	}
	x = g.enforceBoundedConditional(x)
	fm1 := new(big.Int).Sub(f, big.NewInt(1))
	if fm1.Sign() == 0 {
		// x < 1 means x == 0
		for i := range x.Limbs {
			g.api.AssertIsEqual(x.Limbs[i], 0)
		}
		return nil
	}
	_, err := g.sum([]Element{g.NewElement(0), x}, []int{-1}, fm1, false, false, nil)
	return err
}
