package foreignfield

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark/constraint/solver"
	"github.com/consensys/gnark/frontend"
)

func init() {
	solver.RegisterHint(GetHints()...)
}

// GetHints returns all hint functions used in the package.
func GetHints() []solver.Hint {
	return []solver.Hint{
		AddHint,
		LowLimbCarryHint,
		MulHint,
		DivHint,
		InverseHint,
		SliceHint,
	}
}

// normalize interprets a native field element as a small signed integer. Hint
// inputs arrive reduced modulo the native field, so -1 is seen as mod-1.
func normalize(v, mod *big.Int) *big.Int {
	r := new(big.Int).Set(v)
	half := new(big.Int).Rsh(mod, 1)
	if r.Cmp(half) > 0 {
		r.Sub(r, mod)
	}
	return r
}

func (g *Gadget) callAddHint(x, y Element, sign int, f *big.Int) (r Element, overflow, carry frontend.Variable, err error) {
	signBit := 0
	if sign < 0 {
		signBit = 1
	}
	fLimbs := split(f, g.p.limbBits)
	hintInputs := []frontend.Variable{
		g.p.limbBits, signBit,
		fLimbs[0], fLimbs[1], fLimbs[2],
		x.Limbs[0], x.Limbs[1], x.Limbs[2],
		y.Limbs[0], y.Limbs[1], y.Limbs[2],
	}
	ret, err := g.api.Compiler().NewHint(AddHint, 5, hintInputs...)
	if err != nil {
		return Element{}, nil, nil, fmt.Errorf("call add hint: %w", err)
	}
	r.Limbs[0], r.Limbs[1], r.Limbs[2] = ret[0], ret[1], ret[2]
	return r, ret[3], ret[4], nil
}

// AddHint witnesses one chained addition step. Inputs: limb width, sign bit
// (0 for addition, 1 for subtraction), modulus limbs, then the two operand
// limb triples. Outputs: result limbs, overflow in {-1,0,1} and the carry
// from the combined low and mid limbs into the high limb.
func AddHint(mod *big.Int, inputs, outputs []*big.Int) error {
	if len(inputs) != 11 {
		return errors.New("expecting 11 inputs")
	}
	if len(outputs) != 5 {
		return errors.New("expecting 5 outputs")
	}
	nbBits := uint(inputs[0].Uint64())
	sign := int64(1)
	if inputs[1].Sign() != 0 {
		sign = -1
	}
	f, err := combineSlice(inputs[2:5], nbBits)
	if err != nil {
		return fmt.Errorf("recompose modulus: %w", err)
	}
	x, err := combineSlice(inputs[5:8], nbBits)
	if err != nil {
		return fmt.Errorf("recompose left operand: %w", err)
	}
	y, err := combineSlice(inputs[8:11], nbBits)
	if err != nil {
		return fmt.Errorf("recompose right operand: %w", err)
	}

	r := new(big.Int).Set(x)
	if sign > 0 {
		r.Add(r, y)
	} else {
		r.Sub(r, y)
	}
	overflow := int64(0)
	if sign > 0 && r.Cmp(f) >= 0 {
		overflow = 1
		r.Sub(r, f)
	}
	if sign < 0 && r.Sign() < 0 {
		overflow = -1
		r.Add(r, f)
	}
	rLimbs := split(r, nbBits)

	// carry from the combined low+mid limbs, exact by construction
	mask2 := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 2*nbBits), big.NewInt(1))
	fLow := new(big.Int).And(f, mask2)
	xLow := new(big.Int).And(x, mask2)
	yLow := new(big.Int).And(y, mask2)
	rLow := new(big.Int).And(r, mask2)
	carry := new(big.Int).Set(xLow)
	if sign > 0 {
		carry.Add(carry, yLow)
	} else {
		carry.Sub(carry, yLow)
	}
	carry.Sub(carry, new(big.Int).Mul(big.NewInt(overflow), fLow))
	carry.Sub(carry, rLow)
	carry.Rsh(carry, 2*nbBits)

	outputs[0].Set(rLimbs[0])
	outputs[1].Set(rLimbs[1])
	outputs[2].Set(rLimbs[2])
	outputs[3].Mod(big.NewInt(overflow), mod)
	outputs[4].Mod(carry, mod)
	return nil
}

func (g *Gadget) callLowLimbCarryHint(x0, y0, overflow frontend.Variable, sign int, f0 *big.Int, r0 frontend.Variable) (frontend.Variable, error) {
	signBit := 0
	if sign < 0 {
		signBit = 1
	}
	ret, err := g.api.Compiler().NewHint(LowLimbCarryHint, 1, g.p.limbBits, signBit, f0, x0, y0, r0, overflow)
	if err != nil {
		return nil, fmt.Errorf("call low-limb carry hint: %w", err)
	}
	return ret[0], nil
}

// LowLimbCarryHint witnesses the carry of a single low-limb addition step in
// [Chain.FinishForMulInput]. Inputs: limb width, sign bit, the modulus low
// limb, the operand low limbs, the step result low limb and the step
// overflow. Output: the low-limb carry in {-1,0,1}.
func LowLimbCarryHint(mod *big.Int, inputs, outputs []*big.Int) error {
	if len(inputs) != 7 {
		return errors.New("expecting 7 inputs")
	}
	if len(outputs) != 1 {
		return errors.New("expecting 1 output")
	}
	nbBits := uint(inputs[0].Uint64())
	sign := int64(1)
	if inputs[1].Sign() != 0 {
		sign = -1
	}
	f0, x0, y0, r0 := inputs[2], inputs[3], inputs[4], inputs[5]
	overflow := normalize(inputs[6], mod)

	carry := new(big.Int).Set(x0)
	if sign > 0 {
		carry.Add(carry, y0)
	} else {
		carry.Sub(carry, y0)
	}
	carry.Sub(carry, new(big.Int).Mul(overflow, f0))
	carry.Sub(carry, r0)
	carry.Rsh(carry, nbBits)
	outputs[0].Mod(carry, mod)
	return nil
}

func (g *Gadget) callMulHint(x, y Element, expected *Element, f *big.Int) ([]frontend.Variable, error) {
	fLimbs := split(f, g.p.limbBits)
	hasExpected := 0
	eLimbs := [3]frontend.Variable{0, 0, 0}
	if expected != nil {
		hasExpected = 1
		eLimbs = expected.Limbs
	}
	hintInputs := []frontend.Variable{
		g.p.limbBits, hasExpected,
		fLimbs[0], fLimbs[1], fLimbs[2],
		x.Limbs[0], x.Limbs[1], x.Limbs[2],
		y.Limbs[0], y.Limbs[1], y.Limbs[2],
		eLimbs[0], eLimbs[1], eLimbs[2],
	}
	ret, err := g.api.Compiler().NewHint(MulHint, 9, hintInputs...)
	if err != nil {
		return nil, fmt.Errorf("call mul hint: %w", err)
	}
	return ret, nil
}

// MulHint witnesses the multiplication decomposition x*y = q*f + r. Inputs:
// limb width, expected-remainder flag, modulus limbs, x limbs, y limbs and
// the expected remainder limbs (zeroes when the flag is unset). Outputs: the
// quotient limbs, the combined low+mid remainder, the high remainder limb,
// the limb split of the middle aggregate product and the two carries of the
// aggregate partial products.
func MulHint(mod *big.Int, inputs, outputs []*big.Int) error {
	if len(inputs) != 14 {
		return errors.New("expecting 14 inputs")
	}
	if len(outputs) != 9 {
		return errors.New("expecting 9 outputs")
	}
	nbBits := uint(inputs[0].Uint64())
	hasExpected := inputs[1].Sign() != 0
	f, err := combineSlice(inputs[2:5], nbBits)
	if err != nil {
		return fmt.Errorf("recompose modulus: %w", err)
	}
	if f.Sign() == 0 {
		return errors.New("zero modulus")
	}
	x, err := combineSlice(inputs[5:8], nbBits)
	if err != nil {
		return fmt.Errorf("recompose left operand: %w", err)
	}
	y, err := combineSlice(inputs[8:11], nbBits)
	if err != nil {
		return fmt.Errorf("recompose right operand: %w", err)
	}

	xy := new(big.Int).Mul(x, y)
	q := new(big.Int)
	r := new(big.Int)
	if hasExpected {
		// carries are computed against the caller-supplied remainder; an
		// inconsistent remainder witnesses values which cannot satisfy the
		// multiplication row.
		r, err = combineSlice(inputs[11:14], nbBits)
		if err != nil {
			return fmt.Errorf("recompose expected remainder: %w", err)
		}
		q.Sub(xy, r)
		q.Div(q, f)
	} else {
		q.QuoRem(xy, f, r)
	}

	qLimbs := split(q, nbBits)
	mask2 := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 2*nbBits), big.NewInt(1))
	r01 := new(big.Int).And(r, mask2)
	r2 := new(big.Int).Rsh(r, 2*nbBits)

	// aggregate partial products against the negated modulus 2^3w - f
	fNeg := new(big.Int).Lsh(big.NewInt(1), 3*nbBits)
	fNeg.Sub(fNeg, f)
	fnLimbs := split(fNeg, nbBits)
	p0 := new(big.Int).Mul(inputs[5], inputs[8])
	p0.Add(p0, new(big.Int).Mul(qLimbs[0], fnLimbs[0]))
	p1 := new(big.Int).Mul(inputs[5], inputs[9])
	p1.Add(p1, new(big.Int).Mul(inputs[6], inputs[8]))
	p1.Add(p1, new(big.Int).Mul(qLimbs[0], fnLimbs[1]))
	p1.Add(p1, new(big.Int).Mul(qLimbs[1], fnLimbs[0]))
	p2 := new(big.Int).Mul(inputs[5], inputs[10])
	p2.Add(p2, new(big.Int).Mul(inputs[6], inputs[9]))
	p2.Add(p2, new(big.Int).Mul(inputs[7], inputs[8]))
	p2.Add(p2, new(big.Int).Mul(qLimbs[0], fnLimbs[2]))
	p2.Add(p2, new(big.Int).Mul(qLimbs[1], fnLimbs[1]))
	p2.Add(p2, new(big.Int).Mul(qLimbs[2], fnLimbs[0]))

	// the middle product in limb coordinates, then the carries of the
	// low+mid and high combinations
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), nbBits), big.NewInt(1))
	p10 := new(big.Int).And(p1, mask)
	p11 := new(big.Int).Rsh(p1, nbBits)
	c0 := new(big.Int).Lsh(p10, nbBits)
	c0.Add(c0, p0)
	c0.Sub(c0, r01)
	c0.Rsh(c0, 2*nbBits)
	c1 := new(big.Int).Add(p2, p11)
	c1.Add(c1, c0)
	c1.Sub(c1, r2)
	c1.Rsh(c1, nbBits)

	outputs[0].Set(qLimbs[0])
	outputs[1].Set(qLimbs[1])
	outputs[2].Set(qLimbs[2])
	outputs[3].Set(r01)
	outputs[4].Set(r2)
	outputs[5].Set(p10)
	outputs[6].Set(p11)
	outputs[7].Mod(c0, mod)
	outputs[8].Mod(c1, mod)
	return nil
}

func (g *Gadget) callDivHint(x, y Element, f *big.Int) (Element, error) {
	fLimbs := split(f, g.p.limbBits)
	hintInputs := []frontend.Variable{
		g.p.limbBits,
		fLimbs[0], fLimbs[1], fLimbs[2],
		x.Limbs[0], x.Limbs[1], x.Limbs[2],
		y.Limbs[0], y.Limbs[1], y.Limbs[2],
	}
	ret, err := g.api.Compiler().NewHint(DivHint, 3, hintInputs...)
	if err != nil {
		return Element{}, fmt.Errorf("call div hint: %w", err)
	}
	var z Element
	z.Limbs[0], z.Limbs[1], z.Limbs[2] = ret[0], ret[1], ret[2]
	return z, nil
}

// DivHint witnesses z = x * y^-1 mod f. When y is not invertible it outputs
// zero limbs as a filler: the in-circuit multiplication check and the
// non-zero divisor guard then decide the outcome at proving time.
func DivHint(mod *big.Int, inputs, outputs []*big.Int) error {
	if len(inputs) != 10 {
		return errors.New("expecting 10 inputs")
	}
	if len(outputs) != 3 {
		return errors.New("expecting 3 outputs")
	}
	nbBits := uint(inputs[0].Uint64())
	f, err := combineSlice(inputs[1:4], nbBits)
	if err != nil {
		return fmt.Errorf("recompose modulus: %w", err)
	}
	x, err := combineSlice(inputs[4:7], nbBits)
	if err != nil {
		return fmt.Errorf("recompose nominator: %w", err)
	}
	y, err := combineSlice(inputs[7:10], nbBits)
	if err != nil {
		return fmt.Errorf("recompose denominator: %w", err)
	}
	z := new(big.Int)
	if f.Sign() != 0 {
		if inv := new(big.Int).ModInverse(y, f); inv != nil {
			z.Mul(inv, x)
			z.Mod(z, f)
		}
	}
	zLimbs := split(z, nbBits)
	outputs[0].Set(zLimbs[0])
	outputs[1].Set(zLimbs[1])
	outputs[2].Set(zLimbs[2])
	return nil
}

func (g *Gadget) callInverseHint(x Element, f *big.Int) (Element, error) {
	fLimbs := split(f, g.p.limbBits)
	hintInputs := []frontend.Variable{
		g.p.limbBits,
		fLimbs[0], fLimbs[1], fLimbs[2],
		x.Limbs[0], x.Limbs[1], x.Limbs[2],
	}
	ret, err := g.api.Compiler().NewHint(InverseHint, 3, hintInputs...)
	if err != nil {
		return Element{}, fmt.Errorf("call inverse hint: %w", err)
	}
	var z Element
	z.Limbs[0], z.Limbs[1], z.Limbs[2] = ret[0], ret[1], ret[2]
	return z, nil
}

// InverseHint witnesses x^-1 mod f, with the same filler convention as
// [DivHint].
func InverseHint(mod *big.Int, inputs, outputs []*big.Int) error {
	if len(inputs) != 7 {
		return errors.New("expecting 7 inputs")
	}
	if len(outputs) != 3 {
		return errors.New("expecting 3 outputs")
	}
	nbBits := uint(inputs[0].Uint64())
	f, err := combineSlice(inputs[1:4], nbBits)
	if err != nil {
		return fmt.Errorf("recompose modulus: %w", err)
	}
	x, err := combineSlice(inputs[4:7], nbBits)
	if err != nil {
		return fmt.Errorf("recompose value: %w", err)
	}
	z := new(big.Int)
	if f.Sign() != 0 {
		if inv := new(big.Int).ModInverse(x, f); inv != nil {
			z.Set(inv)
		}
	}
	zLimbs := split(z, nbBits)
	outputs[0].Set(zLimbs[0])
	outputs[1].Set(zLimbs[1])
	outputs[2].Set(zLimbs[2])
	return nil
}

// callSliceHint decomposes v into pieces of the given widths, least
// significant piece first. The caller constrains the recomposition and
// range-checks the pieces.
func (g *Gadget) callSliceHint(v frontend.Variable, widths []uint) ([]frontend.Variable, error) {
	hintInputs := make([]frontend.Variable, 0, len(widths)+2)
	hintInputs = append(hintInputs, len(widths))
	for _, w := range widths {
		hintInputs = append(hintInputs, w)
	}
	hintInputs = append(hintInputs, v)
	ret, err := g.api.Compiler().NewHint(SliceHint, len(widths), hintInputs...)
	if err != nil {
		return nil, fmt.Errorf("call slice hint: %w", err)
	}
	return ret, nil
}

// SliceHint decomposes the last input into pieces of the given bit widths.
// Inputs: the number of pieces n, the n widths, the value. Outputs: the n
// pieces, least significant first.
func SliceHint(mod *big.Int, inputs, outputs []*big.Int) error {
	if len(inputs) < 2 {
		return errors.New("expecting at least 2 inputs")
	}
	n := int(inputs[0].Int64())
	if len(inputs) != n+2 {
		return errors.New("input length mismatch")
	}
	if len(outputs) != n {
		return errors.New("output length mismatch")
	}
	v := new(big.Int).Set(inputs[n+1])
	for i := 0; i < n; i++ {
		w := uint(inputs[1+i].Uint64())
		mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), w), big.NewInt(1))
		outputs[i].And(v, mask)
		v.Rsh(v, w)
	}
	return nil
}
