package crypto

import (
	"fmt"

	"github.com/Klingon-tech/icon-cli/pkg/types"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// SignatureSize is the length of a recoverable signature: r || s || recovery id.
const SignatureSize = 65

// compact signatures from the ecdsa package carry 27 + recovery id in the
// first byte.
const compactMagic = 27

// Signer signs transaction hashes on behalf of one account.
type Signer interface {
	// Sign produces a recoverable signature over a 32-byte hash.
	Sign(hash []byte) ([]byte, error)
	// Address returns the hx address of the signing key.
	Address() types.Address
}

// PrivateKey wraps a secp256k1 private key.
type PrivateKey struct {
	key  *secp256k1.PrivateKey
	addr types.Address
}

// GenerateKey creates a new random secp256k1 private key.
func GenerateKey() (*PrivateKey, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return newPrivateKey(key), nil
}

// PrivateKeyFromBytes creates a PrivateKey from a 32-byte secret.
func PrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	if len(b) != 32 {
		return nil, fmt.Errorf("private key must be 32 bytes, got %d", len(b))
	}
	return newPrivateKey(secp256k1.PrivKeyFromBytes(b)), nil
}

func newPrivateKey(key *secp256k1.PrivateKey) *PrivateKey {
	return &PrivateKey{
		key:  key,
		addr: addressOf(key.PubKey().SerializeUncompressed()),
	}
}

// Sign produces an r || s || v signature over a 32-byte hash, where v is
// the public key recovery id (0..3).
func (pk *PrivateKey) Sign(hash []byte) ([]byte, error) {
	if len(hash) != 32 {
		return nil, fmt.Errorf("hash must be 32 bytes, got %d", len(hash))
	}
	compact := ecdsa.SignCompact(pk.key, hash, false)
	sig := make([]byte, SignatureSize)
	copy(sig, compact[1:])
	sig[64] = compact[0] - compactMagic
	return sig, nil
}

// Address returns the hx address of the key.
func (pk *PrivateKey) Address() types.Address {
	return pk.addr
}

// PublicKey returns the uncompressed 65-byte public key.
func (pk *PrivateKey) PublicKey() []byte {
	return pk.key.PubKey().SerializeUncompressed()
}

// Serialize returns the 32-byte private key scalar.
func (pk *PrivateKey) Serialize() []byte {
	return pk.key.Serialize()
}

// Zero securely zeroes the private key memory.
func (pk *PrivateKey) Zero() {
	pk.key.Zero()
}

// RecoverAddress returns the hx address that produced an r || s || v
// signature over hash.
func RecoverAddress(hash, signature []byte) (types.Address, error) {
	if len(signature) != SignatureSize {
		return types.Address{}, fmt.Errorf("signature must be %d bytes, got %d", SignatureSize, len(signature))
	}
	if signature[64] > 3 {
		return types.Address{}, fmt.Errorf("invalid recovery id %d", signature[64])
	}
	compact := make([]byte, SignatureSize)
	compact[0] = signature[64] + compactMagic
	copy(compact[1:], signature[:64])
	pub, _, err := ecdsa.RecoverCompact(compact, hash)
	if err != nil {
		return types.Address{}, fmt.Errorf("recover public key: %w", err)
	}
	return addressOf(pub.SerializeUncompressed()), nil
}

func parsePubKey(b []byte) (*secp256k1.PublicKey, error) {
	pk, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	return pk, nil
}
