// Package crypto provides the signing and hashing primitives of the ICON
// transaction format.
package crypto

import (
	"github.com/Klingon-tech/icon-cli/pkg/types"
	"golang.org/x/crypto/sha3"
)

// Hash computes the SHA3-256 hash of data.
func Hash(data []byte) types.Hash {
	return sha3.Sum256(data)
}

// AddressFromPubKey derives the hx address of a public key in either
// compressed or uncompressed form.
// Address = "hx" + SHA3-256(uncompressed_pubkey[1:])[12:].
func AddressFromPubKey(pubKey []byte) (types.Address, error) {
	pk, err := parsePubKey(pubKey)
	if err != nil {
		return types.Address{}, err
	}
	return addressOf(pk.SerializeUncompressed()), nil
}

func addressOf(uncompressed []byte) types.Address {
	h := Hash(uncompressed[1:])
	var body [types.AddressSize]byte
	copy(body[:], h[types.HashSize-types.AddressSize:])
	return types.NewEOA(body)
}
