package foreignfield

import (
	"fmt"
	"math/big"
)

// split decomposes x into three limbs of width nbBits. The following holds
//
//	x = res[0] + res[1]*2^nbBits + res[2]*2^(2*nbBits)
//
// for any x in [0, 2^(3*nbBits)). Limbs beyond the representable range are
// silently truncated, so combine(split(x)) == x exactly on that interval.
func split(x *big.Int, nbBits uint) [3]*big.Int {
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), nbBits), big.NewInt(1))
	var res [3]*big.Int
	tmp := new(big.Int).Set(x)
	for i := range res {
		res[i] = new(big.Int).And(tmp, mask)
		tmp.Rsh(tmp, nbBits)
	}
	return res
}

// combine recombines three limbs of width nbBits into res.
//
//	res = limbs[0] + limbs[1]*2^nbBits + limbs[2]*2^(2*nbBits)
func combine(limbs [3]*big.Int, nbBits uint) *big.Int {
	res := new(big.Int)
	for i := len(limbs) - 1; i >= 0; i-- {
		res.Lsh(res, nbBits)
		res.Add(res, limbs[i])
	}
	return res
}

// combineSlice is combine over a limb slice as exchanged with hints.
func combineSlice(limbs []*big.Int, nbBits uint) (*big.Int, error) {
	if len(limbs) != 3 {
		return nil, fmt.Errorf("expected 3 limbs, got %d", len(limbs))
	}
	return combine([3]*big.Int{limbs[0], limbs[1], limbs[2]}, nbBits), nil
}

// fromInterface converts a constant of a supported type to big.Int. It mirrors
// the conversion gnark applies to untyped circuit constants and panics on
// unsupported types.
func fromInterface(v interface{}) *big.Int {
	switch t := v.(type) {
	case *big.Int:
		return new(big.Int).Set(t)
	case big.Int:
		return new(big.Int).Set(&t)
	case int:
		return big.NewInt(int64(t))
	case int64:
		return big.NewInt(t)
	case uint:
		return new(big.Int).SetUint64(uint64(t))
	case uint64:
		return new(big.Int).SetUint64(t)
	case string:
		r, ok := new(big.Int).SetString(t, 0)
		if !ok {
			panic(fmt.Sprintf("unparsable constant %q", t))
		}
		return r
	default:
		panic(fmt.Sprintf("unsupported constant type %T", v))
	}
}
