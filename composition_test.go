package foreignfield

import (
	"math/big"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

func TestSplitCombineRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 1000

	bound := new(big.Int).Lsh(big.NewInt(1), 3*DefaultLimbBits)

	properties := gopter.NewProperties(parameters)
	properties.Property("combine(split(x)) == x", prop.ForAll(
		func(a, b, c, d uint64) bool {
			x := new(big.Int).SetUint64(a)
			for _, u := range []uint64{b, c, d} {
				x.Lsh(x, 64)
				x.Add(x, new(big.Int).SetUint64(u))
			}
			x.Mod(x, bound)
			return combine(split(x, DefaultLimbBits), DefaultLimbBits).Cmp(x) == 0
		},
		gen.UInt64(), gen.UInt64(), gen.UInt64(), gen.UInt64(),
	))
	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestSplitCombineEdges(t *testing.T) {
	one := big.NewInt(1)
	edges := []*big.Int{
		big.NewInt(0),
		big.NewInt(1),
		new(big.Int).Sub(new(big.Int).Lsh(one, DefaultLimbBits), one),
		new(big.Int).Lsh(one, DefaultLimbBits),
		new(big.Int).Lsh(one, 2*DefaultLimbBits),
		new(big.Int).Sub(new(big.Int).Lsh(one, 3*DefaultLimbBits), one),
	}
	for _, x := range edges {
		limbs := split(x, DefaultLimbBits)
		for i := range limbs {
			require.Less(t, limbs[i].BitLen(), int(DefaultLimbBits)+1)
		}
		require.Equal(t, 0, combine(limbs, DefaultLimbBits).Cmp(x), "round trip of %s", x)
	}
}

func TestSplitLimbValues(t *testing.T) {
	// x = 1 + 2*2^w + 3*2^2w
	one := big.NewInt(1)
	x := new(big.Int).Lsh(big.NewInt(3), 2*DefaultLimbBits)
	x.Add(x, new(big.Int).Lsh(big.NewInt(2), DefaultLimbBits))
	x.Add(x, one)
	limbs := split(x, DefaultLimbBits)
	require.Equal(t, int64(1), limbs[0].Int64())
	require.Equal(t, int64(2), limbs[1].Int64())
	require.Equal(t, int64(3), limbs[2].Int64())
}

func TestFromInterface(t *testing.T) {
	require.Equal(t, int64(42), fromInterface(42).Int64())
	require.Equal(t, int64(42), fromInterface(uint64(42)).Int64())
	require.Equal(t, int64(42), fromInterface("42").Int64())
	require.Equal(t, int64(42), fromInterface(big.NewInt(42)).Int64())
	require.Panics(t, func() { fromInterface(3.14) })
}

func TestValueOfDecomposition(t *testing.T) {
	x := new(big.Int).Lsh(big.NewInt(7), 2*DefaultLimbBits)
	x.Add(x, big.NewInt(5))
	e := ValueOf(x)
	require.Equal(t, int64(5), e.Limbs[0].(*big.Int).Int64())
	require.Equal(t, int64(0), e.Limbs[1].(*big.Int).Int64())
	require.Equal(t, int64(7), e.Limbs[2].(*big.Int).Int64())

	require.Panics(t, func() { ValueOf(-1) })
	tooBig := new(big.Int).Lsh(big.NewInt(1), 3*DefaultLimbBits)
	require.Panics(t, func() { ValueOf(tooBig) })
}
