package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
)

// Decimals is the number of fraction digits of one ICX in loop.
const Decimals = 18

// Amount errors.
var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrAmountOverflow  = errors.New("amount overflow")
	ErrAmountUnderflow = errors.New("amount underflow")
)

var loopPerICX = uint256.NewInt(1_000_000_000_000_000_000)

// Amount is a non-negative quantity of the native coin in loop.
// The zero value is zero loop.
type Amount struct {
	v uint256.Int
}

// NewAmount returns an amount of loop.
func NewAmount(loop uint64) Amount {
	var a Amount
	a.v.SetUint64(loop)
	return a
}

// LoopFromICX converts a whole number of ICX to loop.
func LoopFromICX(icx uint64) Amount {
	var a Amount
	a.v.Mul(uint256.NewInt(icx), loopPerICX)
	return a
}

// ParseICX parses a decimal ICX amount such as "12" or "0.25" into loop.
// At most 18 fraction digits are accepted.
func ParseICX(s string) (Amount, error) {
	return ParseUnits(s, Decimals)
}

// ParseUnits parses a decimal amount of a unit with the given number of
// fraction digits into its base unit.
func ParseUnits(s string, decimals int) (Amount, error) {
	s = strings.TrimSpace(s)
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return Amount{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if !isDigits(whole) || !isDigits(frac) {
		return Amount{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if len(frac) > decimals {
		return Amount{}, fmt.Errorf("%w: %q: more than %d decimal places", ErrInvalidAmount, s, decimals)
	}
	digits := strings.TrimLeft(whole+frac+strings.Repeat("0", decimals-len(frac)), "0")
	if digits == "" {
		return Amount{}, nil
	}
	var a Amount
	if err := a.v.SetFromDecimal(digits); err != nil {
		return Amount{}, fmt.Errorf("%w: %q: %v", ErrAmountOverflow, s, err)
	}
	return a, nil
}

// ParseLoop parses a loop amount given in decimal or 0x-prefixed hex.
func ParseLoop(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") {
		return ParseHexAmount(s)
	}
	if s == "" || !isDigits(s) {
		return Amount{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	digits := strings.TrimLeft(s, "0")
	if digits == "" {
		return Amount{}, nil
	}
	var a Amount
	if err := a.v.SetFromDecimal(digits); err != nil {
		return Amount{}, fmt.Errorf("%w: %q: %v", ErrAmountOverflow, s, err)
	}
	return a, nil
}

// ParseHexAmount parses a 0x-prefixed hex loop amount. Leading zeros are
// accepted.
func ParseHexAmount(s string) (Amount, error) {
	body, ok := strings.CutPrefix(s, "0x")
	if !ok || body == "" {
		return Amount{}, fmt.Errorf("%w: %q: missing 0x prefix", ErrInvalidAmount, s)
	}
	b, ok := new(big.Int).SetString(body, 16)
	if !ok || b.Sign() < 0 {
		return Amount{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	v, overflow := uint256.FromBig(b)
	if overflow {
		return Amount{}, fmt.Errorf("%w: %q", ErrAmountOverflow, s)
	}
	return Amount{v: *v}, nil
}

// MustParseICX is like ParseICX but panics on error.
func MustParseICX(s string) Amount {
	a, err := ParseICX(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Add returns a + b.
func (a Amount) Add(b Amount) (Amount, error) {
	var out Amount
	if _, overflow := out.v.AddOverflow(&a.v, &b.v); overflow {
		return Amount{}, ErrAmountOverflow
	}
	return out, nil
}

// Sub returns a - b, or ErrAmountUnderflow when b > a.
func (a Amount) Sub(b Amount) (Amount, error) {
	var out Amount
	if _, underflow := out.v.SubOverflow(&a.v, &b.v); underflow {
		return Amount{}, fmt.Errorf("%w: %s - %s", ErrAmountUnderflow, a.ICXString(), b.ICXString())
	}
	return out, nil
}

// MulUint64 returns a * n.
func (a Amount) MulUint64(n uint64) (Amount, error) {
	var out Amount
	if _, overflow := out.v.MulOverflow(&a.v, uint256.NewInt(n)); overflow {
		return Amount{}, ErrAmountOverflow
	}
	return out, nil
}

// Cmp compares a and b and returns -1, 0 or +1.
func (a Amount) Cmp(b Amount) int {
	return a.v.Cmp(&b.v)
}

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool {
	return a.v.IsZero()
}

// Uint64 returns the amount as uint64 and whether it fit.
func (a Amount) Uint64() (uint64, bool) {
	return a.v.Uint64(), a.v.IsUint64()
}

// Big returns the amount as a new big.Int.
func (a Amount) Big() *big.Int {
	return a.v.ToBig()
}

// Hex returns the 0x-prefixed hex form used on the wire.
func (a Amount) Hex() string {
	return a.v.Hex()
}

// String returns the decimal loop value.
func (a Amount) String() string {
	return a.v.Dec()
}

// ICX returns the display value. The conversion is lossy and must not be
// used to build transactions.
func (a Amount) ICX() float64 {
	f, _ := new(big.Float).Quo(
		new(big.Float).SetInt(a.v.ToBig()),
		new(big.Float).SetInt(loopPerICX.ToBig()),
	).Float64()
	return f
}

// ICXString returns the exact decimal ICX value without trailing zeros.
func (a Amount) ICXString() string {
	return a.FormatUnits(Decimals)
}

// FormatUnits returns the exact decimal value in a unit with the given
// number of fraction digits, without trailing zeros.
func (a Amount) FormatUnits(decimals int) string {
	if decimals <= 0 {
		return a.v.Dec()
	}
	var whole, frac uint256.Int
	whole.DivMod(&a.v, new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(decimals))), &frac)
	if frac.IsZero() {
		return whole.Dec()
	}
	fs := frac.Dec()
	fs = strings.Repeat("0", decimals-len(fs)) + fs
	return whole.Dec() + "." + strings.TrimRight(fs, "0")
}

// MarshalJSON encodes the amount as a hex string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Hex())
}

// UnmarshalJSON decodes a hex string amount.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseHexAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// HexUint64 is a uint64 carried on the wire as a 0x-prefixed hex string.
type HexUint64 uint64

// String returns the 0x-prefixed hex form.
func (h HexUint64) String() string {
	return "0x" + strconv.FormatUint(uint64(h), 16)
}

// MarshalJSON encodes the value as a hex string.
func (h HexUint64) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

// UnmarshalJSON decodes a hex string.
func (h *HexUint64) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParseHexUint64(s)
	if err != nil {
		return err
	}
	*h = HexUint64(v)
	return nil
}

// ParseHexUint64 parses a 0x-prefixed hex integer.
func ParseHexUint64(s string) (uint64, error) {
	body, ok := strings.CutPrefix(s, "0x")
	if !ok || body == "" {
		return 0, fmt.Errorf("invalid hex integer %q", s)
	}
	v, err := strconv.ParseUint(body, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid hex integer %q: %w", s, err)
	}
	return v, nil
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
