package foreignfield

import (
	"errors"
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/consensys/gnark/test"
)

type mulCircuit struct {
	X, Y, Res Element

	f *big.Int
}

func (c *mulCircuit) Define(api frontend.API) error {
	g, err := New(api, Config{})
	if err != nil {
		return err
	}
	res, err := g.Mul(c.X, c.Y, c.f)
	if err != nil {
		return err
	}
	assertLimbsEqual(api, res, c.Res)
	return nil
}

func TestMul(t *testing.T) {
	assert := test.NewAssert(t)
	f := testModulus

	x, _ := new(big.Int).SetString("7fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff", 16)
	y := big.NewInt(7)
	r := new(big.Int).Mul(x, y)
	r.Mod(r, f)

	circuit := mulCircuit{f: f}
	witness := mulCircuit{
		X:   ValueOf(x),
		Y:   ValueOf(y),
		Res: ValueOf(r),
		f:   f,
	}
	wrong := mulCircuit{
		X:   ValueOf(x),
		Y:   ValueOf(y),
		Res: ValueOf(new(big.Int).Add(r, big.NewInt(1))),
		f:   f,
	}
	assert.CheckCircuit(&circuit,
		test.WithValidAssignment(&witness),
		test.WithInvalidAssignment(&wrong),
		test.WithCurves(ecc.BN254),
		test.WithBackends(backend.GROTH16, backend.PLONK),
	)
}

func TestMulWrongResult(t *testing.T) {
	assert := test.NewAssert(t)
	f := testModulus

	circuit := mulCircuit{f: f}
	witness := mulCircuit{
		X:   ValueOf(3),
		Y:   ValueOf(5),
		Res: ValueOf(16),
		f:   f,
	}
	assert.Error(test.IsSolved(&circuit, &witness, ecc.BN254.ScalarField()))
}

func TestMulNearMaxModulus(t *testing.T) {
	assert := test.NewAssert(t)
	// largest supported modulus with 88-bit limbs over BN254
	f := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 258), big.NewInt(1))

	x := new(big.Int).Sub(f, big.NewInt(2))
	y := new(big.Int).Sub(f, big.NewInt(3))
	r := new(big.Int).Mul(x, y)
	r.Mod(r, f)

	circuit := mulCircuit{f: f}
	witness := mulCircuit{
		X:   ValueOf(x),
		Y:   ValueOf(y),
		Res: ValueOf(r),
		f:   f,
	}
	assert.NoError(test.IsSolved(&circuit, &witness, ecc.BN254.ScalarField()))
}

func TestMulWideNativeField(t *testing.T) {
	assert := test.NewAssert(t)
	// a 259-bit modulus needs one native bit more than BN254 offers; the
	// wider BW6-761 scalar field accepts it
	f := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 259), big.NewInt(1))

	x := new(big.Int).Sub(f, big.NewInt(2))
	y := new(big.Int).Sub(f, big.NewInt(3))
	r := new(big.Int).Mul(x, y)
	r.Mod(r, f)

	circuit := mulCircuit{f: f}
	witness := mulCircuit{
		X:   ValueOf(x),
		Y:   ValueOf(y),
		Res: ValueOf(r),
		f:   f,
	}
	assert.NoError(test.IsSolved(&circuit, &witness, ecc.BW6_761.ScalarField()))

	circuit = mulCircuit{f: f}
	witness.f = f
	assert.Error(test.IsSolved(&circuit, &witness, ecc.BN254.ScalarField()))
}

type assertMulChainCircuit struct {
	A, B, C, Res Element

	f *big.Int
}

func (c *assertMulChainCircuit) Define(api frontend.API) error {
	g, err := New(api, Config{})
	if err != nil {
		return err
	}
	chain := g.NewChain(c.A)
	if err := chain.Add(c.B); err != nil {
		return err
	}
	return g.AssertMul(chain, c.C, c.Res, c.f)
}

func TestAssertMulWithChain(t *testing.T) {
	assert := test.NewAssert(t)
	f := testModulus

	a := new(big.Int).Sub(f, big.NewInt(5))
	b := big.NewInt(12)
	cv := new(big.Int).Sub(f, big.NewInt(1))
	x := new(big.Int).Add(a, b)
	x.Mod(x, f)
	r := new(big.Int).Mul(x, cv)
	r.Mod(r, f)

	circuit := assertMulChainCircuit{f: f}
	witness := assertMulChainCircuit{
		A:   ValueOf(a),
		B:   ValueOf(b),
		C:   ValueOf(cv),
		Res: ValueOf(r),
		f:   f,
	}
	assert.NoError(test.IsSolved(&circuit, &witness, ecc.BN254.ScalarField()))

	wrong := witness
	wrong.Res = ValueOf(new(big.Int).Add(r, big.NewInt(1)))
	assert.Error(test.IsSolved(&circuit, &wrong, ecc.BN254.ScalarField()))
}

type assertMulBoundCircuit struct {
	X Element
}

func (c *assertMulBoundCircuit) Define(api frontend.API) error {
	g, err := New(api, Config{})
	if err != nil {
		return err
	}
	// the modulus itself is accepted, but a product of single terms against it
	// already exceeds the native capacity margin
	f := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 258), big.NewInt(1))
	if err := g.AssertMul(c.X, c.X, c.X, f); !errors.Is(err, ErrModulusTooLarge) {
		return errors.New("expected magnitude bound rejection")
	}
	return nil
}

func TestAssertMulMagnitudeBound(t *testing.T) {
	assert := test.NewAssert(t)
	circuit := assertMulBoundCircuit{}
	witness := assertMulBoundCircuit{X: ValueOf(1)}
	assert.NoError(test.IsSolved(&circuit, &witness, ecc.BN254.ScalarField()))
}

type constantMulCircuit struct{}

func (c *constantMulCircuit) Define(api frontend.API) error {
	g, err := New(api, Config{})
	if err != nil {
		return err
	}
	f := big.NewInt(97)
	res, err := g.Mul(g.NewElement(13), g.NewElement(17), f)
	if err != nil {
		return err
	}
	v, ok := g.ConstantValue(res)
	if !ok || v.Cmp(big.NewInt(27)) != 0 {
		return errors.New("expected constant fold to 27")
	}
	if g.Rows() != 0 {
		return errors.New("expected no rows for constant operands")
	}
	if err := g.AssertMul(g.NewElement(13), g.NewElement(17), g.NewElement(27), f); err != nil {
		return err
	}
	if err := g.AssertMul(g.NewElement(13), g.NewElement(17), g.NewElement(28), f); !errors.Is(err, ErrUnsatisfiable) {
		return errors.New("expected constant mismatch rejection")
	}
	tooBig := new(big.Int).Lsh(big.NewInt(1), 260)
	if _, err := g.Mul(g.NewElement(13), g.NewElement(17), tooBig); !errors.Is(err, ErrModulusTooLarge) {
		return errors.New("expected modulus rejection")
	}
	return nil
}

func TestMulConstantFold(t *testing.T) {
	assert := test.NewAssert(t)
	var circuit, witness constantMulCircuit
	err := test.IsSolved(&circuit, &witness, ecc.BN254.ScalarField(), test.SetAllVariablesAsConstants())
	assert.NoError(err)
	_, err = frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &circuit, frontend.IgnoreUnconstrainedInputs())
	assert.NoError(err)
}

type assertMulQuotientCircuit struct {
	X, Y, Res Element

	f *big.Int
}

func (c *assertMulQuotientCircuit) Define(api frontend.API) error {
	g, err := New(api, Config{})
	if err != nil {
		return err
	}
	x := g.enforceBoundedConditional(c.X)
	y := g.enforceBoundedConditional(c.Y)
	e := g.enforceBoundedConditional(c.Res)
	before := g.Rows()
	if err := g.assertMulInternal(x, y, e, c.f); err != nil {
		return err
	}
	// multiplication row, auxiliary-check row and the quotient range-check
	// row; without the quotient check the carry constraints leave two
	// quotient limbs free
	if g.Rows()-before != 3 {
		return errors.New("expected the quotient range check on the assert path")
	}
	return nil
}

func TestAssertMulChecksQuotient(t *testing.T) {
	assert := test.NewAssert(t)
	f := testModulus

	x := new(big.Int).Sub(f, big.NewInt(11))
	y := new(big.Int).Sub(f, big.NewInt(13))
	r := new(big.Int).Mul(x, y)
	r.Mod(r, f)

	circuit := assertMulQuotientCircuit{f: f}
	witness := assertMulQuotientCircuit{
		X:   ValueOf(x),
		Y:   ValueOf(y),
		Res: ValueOf(r),
		f:   f,
	}
	assert.NoError(test.IsSolved(&circuit, &witness, ecc.BN254.ScalarField()))
}
