package foreignfield

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark/frontend"
)

// Operand is an input to [Gadget.AssertMul]: either an [Element] or a
// [*Chain]. A chain which is still building is finalized directly into the
// multiplication; a finished chain contributes its result.
type Operand interface {
	isOperand()
}

// mulRow is the output of the multiplication core: the witnessed quotient
// limbs and the remainder in combined low+mid / high form. None of it is
// range-checked.
type mulRow struct {
	q       Element
	r01, r2 frontend.Variable
}

// mulNoRangeCheck emits the single multiplication row for x*y = q*f + r. It
// trusts that x and y are range-checked and weakly bounded, and deliberately
// does not range-check q or r: callers wire them to already-checked values or
// check them as needed.
//
// The row decomposes the product through three aggregate partial-product
// terms against the negated modulus f' = 2^3w - f:
//
//	p0 = x0*y0 + q0*f'0
//	p1 = x0*y1 + x1*y0 + q0*f'1 + q1*f'0
//	p2 = x0*y2 + x1*y1 + x2*y0 + q0*f'2 + q1*f'1 + q2*f'0
//
// No aggregate term exceeds 2^(2w+3), which is what the modulus bound buys.
// The middle term is split into limb coordinates p1 = p10 + 2^w*p11 so that
// every constrained combination also stays below the native modulus; the row
// then constrains
//
//	p0 + 2^w*p10 = r01 + c0*2^2w
//	p2 + p11 + c0 = r2 + c1*2^w
//
// together with the native-modulus check on the recombined values. The low
// carry c0 spans at most two bits. The high carry c1 is sliced into
// at-most-12-bit pieces so every piece fits a range-check cell; the mid-split
// limbs and a weak bound on q2 are range-checked alongside.
//
// When expected is non-nil its limbs are wired in as the remainder.
func (g *Gadget) mulNoRangeCheck(x, y Element, expected *Element, f *big.Int) (mulRow, error) {
	if err := g.p.checkModulus(f); err != nil {
		return mulRow{}, err
	}
	ret, err := g.callMulHint(x, y, expected, f)
	if err != nil {
		return mulRow{}, err
	}
	var q Element
	q.Limbs[0], q.Limbs[1], q.Limbs[2] = ret[0], ret[1], ret[2]
	r01, r2 := ret[3], ret[4]
	p10, p11 := ret[5], ret[6]
	c0, c1 := ret[7], ret[8]
	if expected != nil {
		r01 = g.low(*expected)
		r2 = expected.Limbs[2]
	}

	fNeg := new(big.Int).Sub(g.p.pow2L3, f)
	fn := split(fNeg, g.p.limbBits)

	p0 := g.api.Add(
		g.api.Mul(x.Limbs[0], y.Limbs[0]),
		g.api.Mul(q.Limbs[0], fn[0]),
	)
	p1 := g.api.Add(
		g.api.Mul(x.Limbs[0], y.Limbs[1]),
		g.api.Mul(x.Limbs[1], y.Limbs[0]),
		g.api.Mul(q.Limbs[0], fn[1]),
		g.api.Mul(q.Limbs[1], fn[0]),
	)
	p2 := g.api.Add(
		g.api.Mul(x.Limbs[0], y.Limbs[2]),
		g.api.Mul(x.Limbs[1], y.Limbs[1]),
		g.api.Mul(x.Limbs[2], y.Limbs[0]),
		g.api.Mul(q.Limbs[0], fn[2]),
		g.api.Mul(q.Limbs[1], fn[1]),
		g.api.Mul(q.Limbs[2], fn[0]),
	)

	g.api.AssertIsEqual(p1, g.api.Add(p10, g.api.Mul(p11, g.p.pow2L)))
	g.api.AssertIsEqual(
		g.api.Add(p0, g.api.Mul(p10, g.p.pow2L)),
		g.api.Add(r01, g.api.Mul(c0, g.p.pow2L2)),
	)
	g.api.AssertIsEqual(
		g.api.Add(p2, p11, c0),
		g.api.Add(r2, g.api.Mul(c1, g.p.pow2L)),
	)

	// native-modulus check on the recombined values
	rNat := g.api.Add(r01, g.api.Mul(g.p.pow2L2, r2))
	g.api.AssertIsEqual(
		g.api.Mul(g.native(x), g.native(y)),
		g.api.Add(g.api.Mul(g.native(q), new(big.Int).Set(f)), rNat),
	)
	g.countRow()

	// targeted range checks on the row's auxiliary cells; p11 spans at most
	// w+2 bits and is sliced like the carry
	g.checker.Check(p10, int(g.p.limbBits))
	if err := g.sliceAndCheck(p11, []uint{g.p.limbBits, 2}); err != nil {
		return mulRow{}, err
	}
	g.checker.Check(c0, 2)
	if err := g.sliceAndCheck(c1, g.p.carryPieceWidths()); err != nil {
		return mulRow{}, err
	}
	qBound := g.weakBound(q.Limbs[2], f)
	g.checker.Check(qBound, int(g.p.limbBits))
	g.countRow()

	return mulRow{q: q, r01: r01, r2: r2}, nil
}

// sliceAndCheck splits v into pieces of the given widths, range-checks every
// piece and constrains the recomposition.
func (g *Gadget) sliceAndCheck(v frontend.Variable, widths []uint) error {
	pieces, err := g.callSliceHint(v, widths)
	if err != nil {
		return err
	}
	acc := frontend.Variable(0)
	shift := new(big.Int).SetInt64(1)
	for i, p := range pieces {
		if widths[i] == 1 {
			g.api.AssertIsBoolean(p)
		} else {
			g.checker.Check(p, int(widths[i]))
		}
		acc = g.api.Add(acc, g.api.Mul(new(big.Int).Set(shift), p))
		shift.Lsh(shift, widths[i])
	}
	g.api.AssertIsEqual(acc, v)
	return nil
}

// Mul computes x*y mod f. The operands must be range-checked and weakly
// bounded (see [Gadget.AssertAlmostFieldElements]); unchecked operands are
// range-checked here. The quotient is fully range-checked and the remainder
// goes through a compact range check on its combined low+mid limb.
func (g *Gadget) Mul(x, y Element, f *big.Int) (Element, error) {
	if err := g.p.checkModulus(f); err != nil {
		return Element{}, err
	}
	xc, xok := g.ConstantValue(x)
	yc, yok := g.ConstantValue(y)
	if xok && yok {
		r := new(big.Int).Mul(xc, yc)
		r.Mod(r, f)
		return g.NewElement(r), nil
	}
	x = g.enforceBoundedConditional(x)
	y = g.enforceBoundedConditional(y)
	row, err := g.mulNoRangeCheck(x, y, nil, f)
	if err != nil {
		return Element{}, err
	}
	g.multiRangeCheck(row.q.Limbs[0], row.q.Limbs[1], row.q.Limbs[2])
	return g.compactRangeCheck(row.r01, row.r2)
}

// compactRangeCheck splits the combined low+mid limb into individual limbs
// and range-checks the resulting triple.
func (g *Gadget) compactRangeCheck(r01, r2 frontend.Variable) (Element, error) {
	pieces, err := g.callSliceHint(r01, []uint{g.p.limbBits, g.p.limbBits})
	if err != nil {
		return Element{}, err
	}
	g.api.AssertIsEqual(g.api.Add(pieces[0], g.api.Mul(g.p.pow2L, pieces[1])), r01)
	var r Element
	r.Limbs[0], r.Limbs[1], r.Limbs[2] = pieces[0], pieces[1], r2
	g.multiRangeCheck(r.Limbs[0], r.Limbs[1], r.Limbs[2])
	r.checked = true
	return r, nil
}

// assertMulInternal proves x*y = expected mod f without allocating a fresh
// result. All three operands must be range-checked. The witnessed quotient is
// always range-checked here: with free quotient limbs the two carry
// constraints absorb two degrees of freedom and the row becomes satisfiable
// for a wrong product.
func (g *Gadget) assertMulInternal(x, y, expected Element, f *big.Int) error {
	row, err := g.mulNoRangeCheck(x, y, &expected, f)
	if err != nil {
		return err
	}
	g.multiRangeCheck(row.q.Limbs[0], row.q.Limbs[1], row.q.Limbs[2])
	return nil
}

// AssertMul proves x*y = expected mod f where any operand may be an
// in-progress [Chain]. Summing n terms before multiplying grows the operand's
// effective magnitude up to 2n(f + 2^2w), so the conservative bound
//
//	(2*ceil(sqrt(nx*ny))*(f + 2^2w))^2 <= 2^3w * native
//
// is checked first; it guarantees the unreduced product of two chained
// operands cannot exceed the combined capacity, for any split of the terms
// between the two sides. The y and expected chains are finalized generically;
// the x chain is finalized directly into the multiplication row.
func (g *Gadget) AssertMul(x, y, expected Operand, f *big.Int) error {
	if err := g.p.checkModulus(f); err != nil {
		return err
	}
	nx, ny := g.operandTerms(x), g.operandTerms(y)
	k := ceilSqrt(int64(nx * ny))
	kf := new(big.Int).Add(f, g.p.pow2L2)
	kf.Mul(kf, k)
	kf.Lsh(kf, 1)
	kf.Mul(kf, kf)
	if kf.Cmp(new(big.Int).Mul(g.p.pow2L3, g.p.native)) > 0 {
		return fmt.Errorf("%w: %d-term product against %d-bit modulus", ErrModulusTooLarge, nx*ny, f.BitLen())
	}

	// constant folding
	xc, xok := g.operandConstant(x, f)
	yc, yok := g.operandConstant(y, f)
	ec, eok := g.operandConstant(expected, f)
	if xok && yok && eok {
		r := new(big.Int).Mul(xc, yc)
		r.Mod(r, f)
		ec.Mod(ec, f)
		if r.Cmp(ec) != 0 {
			return fmt.Errorf("%w: %s * %s != %s mod %s", ErrUnsatisfiable, xc, yc, ec, f)
		}
		return nil
	}

	ye, err := g.finalizeOperand(y, f, false)
	if err != nil {
		return err
	}
	ee, err := g.finalizeOperand(expected, f, false)
	if err != nil {
		return err
	}
	xe, err := g.finalizeOperand(x, f, true)
	if err != nil {
		return err
	}
	return g.assertMulInternal(xe, ye, ee, f)
}

// finalizeOperand turns an operand into a range-checked element. Chains
// feeding the multiplication's left input are finalized in mul-input mode,
// chained into the multiplication row.
func (g *Gadget) finalizeOperand(op Operand, f *big.Int, mulInput bool) (Element, error) {
	switch t := op.(type) {
	case Element:
		return g.enforceBoundedConditional(t), nil
	case *Chain:
		if t.result != nil {
			return *t.result, nil
		}
		if mulInput {
			return t.FinishForMulInput(f, true)
		}
		return t.Finish(f, false)
	default:
		return Element{}, fmt.Errorf("unsupported operand type %T", op)
	}
}

func (g *Gadget) operandTerms(op Operand) int {
	if c, ok := op.(*Chain); ok {
		return c.nbTerms()
	}
	return 1
}

func (g *Gadget) operandConstant(op Operand, f *big.Int) (*big.Int, bool) {
	switch t := op.(type) {
	case Element:
		return g.ConstantValue(t)
	case *Chain:
		return t.constantValue(f)
	default:
		return nil, false
	}
}

func ceilSqrt(n int64) *big.Int {
	s := new(big.Int).Sqrt(big.NewInt(n))
	if new(big.Int).Mul(s, s).Cmp(big.NewInt(n)) < 0 {
		s.Add(s, big.NewInt(1))
	}
	return s
}
