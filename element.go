package foreignfield

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark/frontend"
)

// Element is an integer below 2^(3w) represented on three limbs of width w,
// least significant limb first. An Element is either constant (every limb is a
// compile-time constant) or symbolic; the gadget operations inspect this and
// constant-fold when possible.
type Element struct {
	Limbs [3]frontend.Variable

	// checked records that every limb has been proven to be below 2^w.
	// Operations returning range-checked results set it; operations requiring
	// pre-checked inputs range-check conditionally when it is not set. The
	// flag never replaces a constraint, it only avoids re-emitting one.
	checked bool
}

func (Element) isOperand() {}

// ValueOf returns an Element for witness assignment using the default limb
// width. For non-default configurations use [Config.ValueOf].
func ValueOf(v interface{}) Element {
	return Config{}.ValueOf(v)
}

// ValueOf returns an Element for witness assignment, decomposed according to
// the configured limb width.
func (c Config) ValueOf(v interface{}) Element {
	limbBits := c.LimbBits
	if limbBits == 0 {
		limbBits = DefaultLimbBits
	}
	b := fromInterface(v)
	if b.Sign() < 0 {
		panic("negative value")
	}
	if uint(b.BitLen()) > 3*limbBits {
		panic(fmt.Sprintf("value of %d bits does not fit into three %d-bit limbs", b.BitLen(), limbBits))
	}
	limbs := split(b, limbBits)
	var e Element
	for i := range limbs {
		e.Limbs[i] = limbs[i]
	}
	return e
}

// NewElement returns an in-circuit constant Element. The literal must fit
// into three limbs.
func (g *Gadget) NewElement(v interface{}) Element {
	b := fromInterface(v)
	if b.Sign() < 0 || uint(b.BitLen()) > g.p.threeLimbs {
		panic(fmt.Sprintf("constant does not fit into three %d-bit limbs", g.p.limbBits))
	}
	limbs := split(b, g.p.limbBits)
	var e Element
	for i := range limbs {
		e.Limbs[i] = limbs[i]
	}
	e.checked = true
	return e
}

// ConstantValue returns the integer value of e when every limb is a
// compile-time constant.
func (g *Gadget) ConstantValue(e Element) (*big.Int, bool) {
	limbs, ok := g.constantLimbs(e)
	if !ok {
		return nil, false
	}
	return combine(limbs, g.p.limbBits), true
}

func (g *Gadget) constantLimbs(e Element) ([3]*big.Int, bool) {
	var limbs [3]*big.Int
	for i, l := range e.Limbs {
		c, ok := g.api.Compiler().ConstantValue(l)
		if !ok {
			return limbs, false
		}
		limbs[i] = c
	}
	return limbs, true
}

// low returns the combined low and mid limb e0 + e1*2^w as a native variable.
func (g *Gadget) low(e Element) frontend.Variable {
	return g.api.Add(e.Limbs[0], g.api.Mul(g.p.pow2L, e.Limbs[1]))
}

// native returns the full recombination e0 + e1*2^w + e2*2^2w modulo the
// native field.
func (g *Gadget) native(e Element) frontend.Variable {
	return g.api.Add(e.Limbs[0], g.api.Mul(g.p.pow2L, e.Limbs[1]), g.api.Mul(g.p.pow2L2, e.Limbs[2]))
}
