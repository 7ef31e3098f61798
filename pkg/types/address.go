package types

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

// AddressSize is the length of an address body in bytes.
const AddressSize = 20

// AddressLength is the length of the string form ("hx" + 40 hex chars).
const AddressLength = 2 + 2*AddressSize

// Address prefixes.
const (
	EOAPrefix      = "hx"
	ContractPrefix = "cx"
)

// ErrInvalidAddress is returned for malformed account references.
var ErrInvalidAddress = errors.New("invalid address")

// Address is an account reference: an externally owned account (hx) or a
// contract (cx). The zero value is hx0000000000000000000000000000000000000000.
type Address struct {
	contract bool
	body     [AddressSize]byte
}

// NewEOA returns the hx address with the given body.
func NewEOA(body [AddressSize]byte) Address {
	return Address{body: body}
}

// NewContract returns the cx address with the given body.
func NewContract(body [AddressSize]byte) Address {
	return Address{contract: true, body: body}
}

// IsZero returns true for the all-zero hx address.
func (a Address) IsZero() bool {
	return a == Address{}
}

// IsContract reports whether the address is a cx address.
func (a Address) IsContract() bool {
	return a.contract
}

// Prefix returns "hx" or "cx".
func (a Address) Prefix() string {
	if a.contract {
		return ContractPrefix
	}
	return EOAPrefix
}

// Body returns the 20-byte address body.
func (a Address) Body() [AddressSize]byte {
	return a.body
}

// String returns the prefixed lowercase hex form.
func (a Address) String() string {
	return a.Prefix() + hex.EncodeToString(a.body[:])
}

// MarshalJSON encodes the address as a string.
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON decodes an address string.
func (a *Address) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*a = Address{}
		return nil
	}
	parsed, err := ParseAddress(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAddress parses an hx/cx address. The body must be lowercase hex so
// that String() reproduces the input exactly.
func ParseAddress(s string) (Address, error) {
	if len(s) != AddressLength {
		return Address{}, fmt.Errorf("%w: %q: length must be %d, got %d", ErrInvalidAddress, s, AddressLength, len(s))
	}
	var a Address
	switch s[:2] {
	case EOAPrefix:
	case ContractPrefix:
		a.contract = true
	default:
		return Address{}, fmt.Errorf("%w: %q: prefix must be hx or cx", ErrInvalidAddress, s)
	}
	decoded, err := hex.DecodeString(s[2:])
	if err != nil {
		return Address{}, fmt.Errorf("%w: %q: %v", ErrInvalidAddress, s, err)
	}
	copy(a.body[:], decoded)
	if a.String() != s {
		return Address{}, fmt.Errorf("%w: %q: body must be lowercase hex", ErrInvalidAddress, s)
	}
	return a, nil
}

// MustParseAddress is like ParseAddress but panics on error.
// Intended for package-level constants.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}
