package foreignfield

import (
	"fmt"
	"math/big"
)

// Div computes x / y mod f and proves y is not a multiple of f. The divisor
// guard is required: the product check z*y = x alone is satisfiable with
// y = 0, x = 0 for any z.
func (g *Gadget) Div(x, y Element, f *big.Int) (Element, error) {
	return g.div(x, y, f, false)
}

// DivUnchecked computes x / y mod f without the non-zero divisor guard. When
// y has no inverse the witnessed value is an arbitrary filler and the result
// is only meaningful for 0/0, which it leaves unconstrained.
func (g *Gadget) DivUnchecked(x, y Element, f *big.Int) (Element, error) {
	return g.div(x, y, f, true)
}

func (g *Gadget) div(x, y Element, f *big.Int, allowZeroOverZero bool) (Element, error) {
	if err := g.p.checkModulus(f); err != nil {
		return Element{}, err
	}
	xc, xok := g.ConstantValue(x)
	yc, yok := g.ConstantValue(y)
	if xok && yok {
		inv := new(big.Int).ModInverse(yc, f)
		if inv == nil {
			if allowZeroOverZero {
				return g.NewElement(0), nil
			}
			return Element{}, fmt.Errorf("%w: dividing by %s mod %s", ErrNoInverse, yc, f)
		}
		z := new(big.Int).Mul(inv, xc)
		z.Mod(z, f)
		return g.NewElement(z), nil
	}

	// a constant divisor is decided here: the in-circuit guard only exists to
	// constrain prover-chosen witnesses
	if yok && !allowZeroOverZero && new(big.Int).ModInverse(yc, f) == nil {
		return Element{}, fmt.Errorf("%w: dividing by %s mod %s", ErrNoInverse, yc, f)
	}

	x = g.enforceBoundedConditional(x)
	y = g.enforceBoundedConditional(y)
	z, err := g.callDivHint(x, y, f)
	if err != nil {
		return Element{}, err
	}
	g.multiRangeCheck(z.Limbs[0], z.Limbs[1], z.Limbs[2])
	z.checked = true
	g.checker.Check(g.weakBound(z.Limbs[2], f), int(g.p.limbBits))

	if err := g.assertMulInternal(z, y, x, f); err != nil {
		return Element{}, err
	}
	if !allowZeroOverZero && !yok {
		if err := g.assertNonZeroDivisor(y, f); err != nil {
			return Element{}, err
		}
	}
	return z, nil
}

// assertNonZeroDivisor proves y is not a multiple of f. y must be
// range-checked.
//
// When the modulus spans the high limb, the weak bound on y's high limb
// caps y below 2f, so comparing the combined low+mid limb and the high limb
// against the limb patterns of 0 and f excludes every reachable multiple.
// A modulus without a high limb leaves all its multiples on the same
// zero-high-limb pattern, so that case enforces y < f instead.
func (g *Gadget) assertNonZeroDivisor(y Element, f *big.Int) error {
	y01 := g.low(y)
	f2 := new(big.Int).Rsh(f, g.p.twoLimbs)

	// not (y01 == 0 && y2 == 0)
	z0 := g.api.IsZero(y01)
	z2 := g.api.IsZero(y.Limbs[2])
	g.api.AssertIsEqual(g.api.Mul(z0, z2), 0)

	if f2.Sign() == 0 {
		return g.AssertLessThan(y, f)
	}

	g.checker.Check(g.weakBound(y.Limbs[2], f), int(g.p.limbBits))

	// not (y01 == f01 && y2 == f2)
	f01 := new(big.Int).And(f, g.p.mask2)
	e0 := g.api.IsZero(g.api.Sub(y01, f01))
	e2 := g.api.IsZero(g.api.Sub(y.Limbs[2], f2))
	g.api.AssertIsEqual(g.api.Mul(e0, e2), 0)
	return nil
}

// Inverse computes x^-1 mod f. The witnessed inverse is range-checked and
// weakly bounded before it enters the product check x^-1 * x = 1.
func (g *Gadget) Inverse(x Element, f *big.Int) (Element, error) {
	if err := g.p.checkModulus(f); err != nil {
		return Element{}, err
	}
	if xc, ok := g.ConstantValue(x); ok {
		inv := new(big.Int).ModInverse(xc, f)
		if inv == nil {
			return Element{}, fmt.Errorf("%w: inverting %s mod %s", ErrNoInverse, xc, f)
		}
		return g.NewElement(inv), nil
	}
	x = g.enforceBoundedConditional(x)
	z, err := g.callInverseHint(x, f)
	if err != nil {
		return Element{}, err
	}
	g.multiRangeCheck(z.Limbs[0], z.Limbs[1], z.Limbs[2])
	z.checked = true
	g.checker.Check(g.weakBound(z.Limbs[2], f), int(g.p.limbBits))

	if err := g.assertMulInternal(z, x, g.NewElement(1), f); err != nil {
		return Element{}, err
	}
	return z, nil
}
