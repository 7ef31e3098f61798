// Package wallet loads signing keys from ICON keystore files.
package wallet

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/Klingon-tech/icon-cli/pkg/crypto"
	"github.com/Klingon-tech/icon-cli/pkg/types"
)

// ErrAddressMismatch is returned when the decrypted key does not belong
// to the address recorded in the keystore.
var ErrAddressMismatch = errors.New("keystore address does not match key")

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// Keystore is a parsed V3 keystore file.
type Keystore struct {
	Address  types.Address `json:"address"`
	ID       string        `json:"id"`
	Version  int           `json:"version"`
	CoinType string        `json:"coinType,omitempty"`
	Crypto   cryptoJSON    `json:"crypto"`
}

// ReadKeystore parses a keystore file without decrypting it.
func ReadKeystore(path string) (*Keystore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keystore: %w", err)
	}
	return ParseKeystore(data)
}

// ParseKeystore parses keystore JSON. A UTF-8 byte order mark is ignored.
func ParseKeystore(data []byte) (*Keystore, error) {
	var ks Keystore
	if err := json.Unmarshal(bytes.TrimPrefix(data, utf8BOM), &ks); err != nil {
		return nil, fmt.Errorf("parse keystore: %w", err)
	}
	if ks.Version != 3 {
		return nil, fmt.Errorf("parse keystore: unsupported version %d", ks.Version)
	}
	if ks.Address.IsContract() {
		return nil, fmt.Errorf("parse keystore: %s is not an hx address", ks.Address)
	}
	return &ks, nil
}

// Decrypt returns the private key, verifying it derives the keystore
// address.
func (ks *Keystore) Decrypt(password []byte) (*crypto.PrivateKey, error) {
	raw, err := ks.Crypto.decrypt(password)
	if err != nil {
		return nil, err
	}
	defer clear(raw)

	key, err := crypto.PrivateKeyFromBytes(raw)
	if err != nil {
		return nil, err
	}
	if key.Address() != ks.Address {
		key.Zero()
		return nil, fmt.Errorf("%w: file %s, key %s", ErrAddressMismatch, ks.Address, key.Address())
	}
	return key, nil
}
