package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopFromICX_DisplayExact(t *testing.T) {
	for _, x := range []uint64{0, 1, 2, 7, 1000, 123456789, 1 << 40, (1 << 53) - 1} {
		a := LoopFromICX(x)
		assert.Equal(t, float64(x), a.ICX(), "x=%d", x)
	}
}

func TestParseICX(t *testing.T) {
	tests := []struct {
		in   string
		loop string
	}{
		{"1", "1000000000000000000"},
		{"0.5", "500000000000000000"},
		{"12.000000000000000001", "12000000000000000001"},
		{"0", "0"},
		{".25", "250000000000000000"},
		{"007", "7000000000000000000"},
	}
	for _, tt := range tests {
		a, err := ParseICX(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.loop, a.String(), tt.in)
	}

	for _, bad := range []string{"", ".", "-1", "1.2.3", "abc", "1.0000000000000000001"} {
		_, err := ParseICX(bad)
		require.ErrorIs(t, err, ErrInvalidAmount, bad)
	}
}

func TestAmount_ICXString(t *testing.T) {
	assert.Equal(t, "0", Amount{}.ICXString())
	assert.Equal(t, "12", LoopFromICX(12).ICXString())
	assert.Equal(t, "0.5", MustParseICX("0.5").ICXString())
	assert.Equal(t, "0.000000000000000001", NewAmount(1).ICXString())
}

func TestUnits(t *testing.T) {
	a, err := ParseUnits("12.345678", 6)
	require.NoError(t, err)
	assert.Equal(t, NewAmount(12_345_678), a)
	assert.Equal(t, "12.345678", a.FormatUnits(6))
	assert.Equal(t, "1234.5678", a.FormatUnits(4))
	assert.Equal(t, "12345678", a.FormatUnits(0))

	_, err = ParseUnits("1.1234567", 6)
	require.ErrorIs(t, err, ErrInvalidAmount)

	zero, err := ParseUnits("0.000", 6)
	require.NoError(t, err)
	assert.True(t, zero.IsZero())
}

func TestParseHexAmount(t *testing.T) {
	a, err := ParseHexAmount("0xde0b6b3a7640000")
	require.NoError(t, err)
	assert.Equal(t, LoopFromICX(1), a)
	assert.Equal(t, "0xde0b6b3a7640000", a.Hex())

	padded, err := ParseHexAmount("0x00ff")
	require.NoError(t, err)
	assert.Equal(t, NewAmount(255), padded)

	for _, bad := range []string{"ff", "0x", "0xzz", "0x-1"} {
		_, err := ParseHexAmount(bad)
		require.Error(t, err, bad)
	}
}

func TestParseLoop(t *testing.T) {
	a, err := ParseLoop("1000")
	require.NoError(t, err)
	assert.Equal(t, NewAmount(1000), a)

	b, err := ParseLoop("0x3e8")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestAmount_Arithmetic(t *testing.T) {
	one := LoopFromICX(1)
	two := LoopFromICX(2)

	sum, err := one.Add(one)
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Cmp(two))

	diff, err := two.Sub(one)
	require.NoError(t, err)
	assert.Equal(t, one, diff)

	_, err = one.Sub(two)
	require.ErrorIs(t, err, ErrAmountUnderflow)

	fee, err := NewAmount(12_500_000_000).MulUint64(100_000)
	require.NoError(t, err)
	assert.Equal(t, "1250000000000000", fee.String())
}

func TestAmount_JSON(t *testing.T) {
	var a Amount
	require.NoError(t, json.Unmarshal([]byte(`"0x1"`), &a))
	assert.Equal(t, NewAmount(1), a)

	data, err := json.Marshal(LoopFromICX(1))
	require.NoError(t, err)
	assert.Equal(t, `"0xde0b6b3a7640000"`, string(data))
}

func TestHexUint64(t *testing.T) {
	var h HexUint64
	require.NoError(t, json.Unmarshal([]byte(`"0x53"`), &h))
	assert.Equal(t, HexUint64(0x53), h)
	assert.Equal(t, "0x53", h.String())

	_, err := ParseHexUint64("53")
	require.Error(t, err)
}
