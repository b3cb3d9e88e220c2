package stacks

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClarity_StringASCIIEncoding(t *testing.T) {
	got, err := StringASCII("evt1").HexString()
	require.NoError(t, err)
	assert.Equal(t, "0x0d0000000465767431", got)
}

func TestClarity_UIntEncoding(t *testing.T) {
	got, err := UInt(25).HexString()
	require.NoError(t, err)
	assert.Equal(t, "0x0100000000000000000000000000000019", got)
}

func TestClarity_TupleKeysSorted(t *testing.T) {
	a, err := Tuple(map[string]ClarityValue{"total": UInt(100), "remaining": UInt(25)}).HexString()
	require.NoError(t, err)
	// remaining (9 bytes) precedes total (5 bytes) lexicographically.
	assert.Equal(t,
		"0x0c00000002"+"0972656d61696e696e67"+"0100000000000000000000000000000019"+"05746f74616c"+"0100000000000000000000000000000064",
		a)
}

func TestClarity_RoundTripOptionalTuple(t *testing.T) {
	inner := Tuple(map[string]ClarityValue{"remaining": UInt(5), "total": UInt(50)})
	some := ClarityValue{Kind: claritySome, Some: &inner}
	encoded, err := some.HexString()
	require.NoError(t, err)

	decoded, err := DecodeHex(encoded)
	require.NoError(t, err)
	require.Equal(t, claritySome, decoded.Kind)

	remaining, err := decoded.Some.uintField("remaining")
	require.NoError(t, err)
	assert.Equal(t, 5, remaining)
	total, err := decoded.Some.uintField("total")
	require.NoError(t, err)
	assert.Equal(t, 50, total)
}

func TestClarity_DecodeErrors(t *testing.T) {
	tests := map[string]string{
		"not hex":        "0xzz",
		"truncated uint": "0x0100",
		"unknown type":   "0x0f",
		"trailing bytes": "0x0909",
		"empty":          "0x",
		// Tuples claiming more fields than the input can hold.
		"oversized tuple count":  "0x0cffffffff",
		"tuple count past input": "0x0c00ffffff",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeHex(in)
			assert.Error(t, err)
		})
	}
}

func TestClarity_DecodeNone(t *testing.T) {
	v, err := DecodeHex("0x09")
	require.NoError(t, err)
	assert.True(t, v.IsNone())
}

func TestClarity_SignedInts(t *testing.T) {
	minInt := new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	maxInt := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))

	tests := []struct {
		name string
		in   *big.Int
		hex  string
	}{
		{"minus one", big.NewInt(-1), "0x00ffffffffffffffffffffffffffffffff"},
		{"minus two", big.NewInt(-2), "0x00fffffffffffffffffffffffffffffffe"},
		{"zero", big.NewInt(0), "0x0000000000000000000000000000000000"},
		{"min", minInt, "0x0080000000000000000000000000000000"},
		{"max", maxInt, "0x007fffffffffffffffffffffffffffffff"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ClarityValue{Kind: clarityInt, Int: tt.in}.HexString()
			require.NoError(t, err)
			assert.Equal(t, tt.hex, got)

			decoded, err := DecodeHex(tt.hex)
			require.NoError(t, err)
			assert.Zero(t, tt.in.Cmp(decoded.Int), "decoded %s", decoded.Int)
		})
	}

	t.Run("below min", func(t *testing.T) {
		_, err := ClarityValue{Kind: clarityInt, Int: new(big.Int).Sub(minInt, big.NewInt(1))}.Serialize()
		assert.Error(t, err)
	})
	t.Run("above max", func(t *testing.T) {
		_, err := ClarityValue{Kind: clarityInt, Int: new(big.Int).Add(maxInt, big.NewInt(1))}.Serialize()
		assert.Error(t, err)
	})
	t.Run("far below min", func(t *testing.T) {
		_, err := ClarityValue{Kind: clarityInt, Int: new(big.Int).Lsh(big.NewInt(-1), 129)}.Serialize()
		assert.Error(t, err)
	})
}

func TestClarity_UIntFullWidth(t *testing.T) {
	maxUInt := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	got, err := ClarityValue{Kind: clarityUInt, Int: maxUInt}.HexString()
	require.NoError(t, err)
	assert.Equal(t, "0x01ffffffffffffffffffffffffffffffff", got)

	decoded, err := DecodeHex(got)
	require.NoError(t, err)
	assert.Zero(t, maxUInt.Cmp(decoded.Int))

	_, err = ClarityValue{Kind: clarityUInt, Int: new(big.Int).Add(maxUInt, big.NewInt(1))}.Serialize()
	assert.Error(t, err)
	_, err = ClarityValue{Kind: clarityUInt, Int: big.NewInt(-1)}.Serialize()
	assert.Error(t, err)
}
