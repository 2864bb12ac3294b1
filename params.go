package foreignfield

import (
	"fmt"
	"math/big"
)

// DefaultLimbBits is the limb width used when [Config.LimbBits] is zero. With
// 88-bit limbs a native field of capacity c supports moduli of up to
// (c+264)/2 bits, e.g. 258 bits over BN254 and 259 bits over a 255-bit field.
const DefaultLimbBits = 88

// Config parameterizes the gadget. The zero value selects the default limb
// width and reads the native field modulus from the compiler.
type Config struct {
	// LimbBits is the limb width w. Values are represented on three limbs,
	// i.e. below 2^(3w).
	LimbBits uint

	// NativeBits overrides the capacity of the native scalar field: the
	// native modulus is assumed to be at least 2^NativeBits. When zero, the
	// modulus reported by the compiler is used.
	NativeBits uint
}

// params carries the resolved configuration together with the derived
// constants so that the per-operation code does not reallocate them.
type params struct {
	limbBits   uint // w
	twoLimbs   uint // 2w
	threeLimbs uint // 3w

	// native is the native scalar-field modulus (or its guaranteed lower
	// bound 2^NativeBits); capacityBits is the largest k with 2^k <= native.
	native       *big.Int
	capacityBits uint

	// maxModulusBits is the largest supported bit length of the foreign
	// modulus, (capacityBits + 3w) / 2, capped at 3w so the modulus fits the
	// limb representation.
	maxModulusBits uint

	mask   *big.Int // 2^w - 1
	mask2  *big.Int // 2^2w - 1
	pow2L  *big.Int // 2^w
	pow2L2 *big.Int // 2^2w
	pow2L3 *big.Int // 2^3w
}

func (c Config) resolve(native *big.Int) (params, error) {
	limbBits := c.LimbBits
	if limbBits == 0 {
		limbBits = DefaultLimbBits
	}
	if c.NativeBits != 0 {
		native = new(big.Int).Lsh(big.NewInt(1), c.NativeBits)
	}
	if limbBits < 16 {
		return params{}, fmt.Errorf("limb width must be at least 16 bits, got %d", limbBits)
	}
	if native == nil || native.Sign() <= 0 {
		return params{}, fmt.Errorf("missing native modulus")
	}
	capacity := uint(native.BitLen() - 1)
	// the addition and multiplication rows evaluate combinations of up to
	// 2w+4 bits which must not wrap around the native modulus
	if 2*limbBits+4 > capacity {
		return params{}, fmt.Errorf("two limbs of %d bits do not fit into %d-bit native capacity", limbBits, capacity)
	}
	one := big.NewInt(1)
	p := params{
		limbBits:       limbBits,
		twoLimbs:       2 * limbBits,
		threeLimbs:     3 * limbBits,
		native:         new(big.Int).Set(native),
		capacityBits:   capacity,
		maxModulusBits: min((capacity+3*limbBits)/2, 3*limbBits),
		pow2L:          new(big.Int).Lsh(one, limbBits),
		pow2L2:         new(big.Int).Lsh(one, 2*limbBits),
		pow2L3:         new(big.Int).Lsh(one, 3*limbBits),
	}
	p.mask = new(big.Int).Sub(p.pow2L, one)
	p.mask2 = new(big.Int).Sub(p.pow2L2, one)
	return p, nil
}

// checkModulus verifies that the foreign modulus is within the supported
// range for the resolved limb parameters. Beyond the bit-length screen it
// checks the exact capacity condition
//
//	(f + 2^2w)^2 <= 2^3w * native:
//
// a multiplication of weakly bounded operands then cannot reach the combined
// modulus 2^3w * native, so checking the product identity modulo 2^3w and
// modulo the native field pins it over the integers.
func (p *params) checkModulus(f *big.Int) error {
	if f == nil || f.Sign() <= 0 {
		return fmt.Errorf("%w: modulus must be positive", ErrModulusTooLarge)
	}
	if uint(f.BitLen()) > p.maxModulusBits {
		return fmt.Errorf("%w: %d bits, maximum %d", ErrModulusTooLarge, f.BitLen(), p.maxModulusBits)
	}
	lhs := new(big.Int).Add(f, p.pow2L2)
	lhs.Mul(lhs, lhs)
	if lhs.Cmp(new(big.Int).Mul(p.pow2L3, p.native)) > 0 {
		return fmt.Errorf("%w: %d bits exceeds the native capacity", ErrModulusTooLarge, f.BitLen())
	}
	return nil
}

// carryBits is the bit bound of the high multiplication carry, 2^(w+3).
func (p *params) carryBits() uint {
	return p.limbBits + 3
}

// carryPieceWidths splits the high-carry width into range-checkable pieces of
// at most 12 bits each. The remainder after the 12-bit pieces is covered by
// 2-bit pieces and a final 1-bit piece when the width is odd.
func (p *params) carryPieceWidths() []uint {
	total := p.carryBits()
	var widths []uint
	for total >= 12 {
		widths = append(widths, 12)
		total -= 12
	}
	for total >= 2 {
		widths = append(widths, 2)
		total -= 2
	}
	if total == 1 {
		widths = append(widths, 1)
	}
	return widths
}
