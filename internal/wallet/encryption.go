package wallet

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"
	"golang.org/x/crypto/sha3"
)

// Decryption errors.
var (
	ErrWrongPassword  = errors.New("wrong password or corrupted keystore")
	ErrUnsupportedKDF = errors.New("unsupported key derivation function")
)

// cryptoJSON is the "crypto" section of a V3 keystore.
type cryptoJSON struct {
	Cipher       string           `json:"cipher"`
	CipherText   string           `json:"ciphertext"`
	CipherParams cipherParamsJSON `json:"cipherparams"`
	KDF          string           `json:"kdf"`
	KDFParams    json.RawMessage  `json:"kdfparams"`
	MAC          string           `json:"mac"`
}

type cipherParamsJSON struct {
	IV string `json:"iv"`
}

type scryptParams struct {
	DKLen int    `json:"dklen"`
	N     int    `json:"n"`
	R     int    `json:"r"`
	P     int    `json:"p"`
	Salt  string `json:"salt"`
}

type pbkdf2Params struct {
	DKLen int    `json:"dklen"`
	C     int    `json:"c"`
	PRF   string `json:"prf"`
	Salt  string `json:"salt"`
}

// deriveKey runs the keystore's KDF over password.
func (c *cryptoJSON) deriveKey(password []byte) ([]byte, error) {
	switch c.KDF {
	case "scrypt":
		var p scryptParams
		if err := json.Unmarshal(c.KDFParams, &p); err != nil {
			return nil, fmt.Errorf("scrypt params: %w", err)
		}
		salt, err := hex.DecodeString(p.Salt)
		if err != nil {
			return nil, fmt.Errorf("scrypt salt: %w", err)
		}
		return scrypt.Key(password, salt, p.N, p.R, p.P, p.DKLen)
	case "pbkdf2":
		var p pbkdf2Params
		if err := json.Unmarshal(c.KDFParams, &p); err != nil {
			return nil, fmt.Errorf("pbkdf2 params: %w", err)
		}
		if p.PRF != "hmac-sha256" {
			return nil, fmt.Errorf("%w: pbkdf2 prf %q", ErrUnsupportedKDF, p.PRF)
		}
		salt, err := hex.DecodeString(p.Salt)
		if err != nil {
			return nil, fmt.Errorf("pbkdf2 salt: %w", err)
		}
		return pbkdf2.Key(password, salt, p.C, p.DKLen, sha256.New), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKDF, c.KDF)
	}
}

// decrypt returns the private key bytes. The MAC is
// keccak256(derivedKey[16:32] || ciphertext).
func (c *cryptoJSON) decrypt(password []byte) ([]byte, error) {
	if c.Cipher != "aes-128-ctr" {
		return nil, fmt.Errorf("unsupported cipher %q", c.Cipher)
	}
	mac, err := hex.DecodeString(c.MAC)
	if err != nil {
		return nil, fmt.Errorf("mac: %w", err)
	}
	iv, err := hex.DecodeString(c.CipherParams.IV)
	if err != nil {
		return nil, fmt.Errorf("iv: %w", err)
	}
	if len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("iv: want %d bytes, got %d", aes.BlockSize, len(iv))
	}
	cipherText, err := hex.DecodeString(c.CipherText)
	if err != nil {
		return nil, fmt.Errorf("ciphertext: %w", err)
	}

	derived, err := c.deriveKey(password)
	if err != nil {
		return nil, err
	}
	if len(derived) < 32 {
		return nil, fmt.Errorf("derived key too short: %d bytes", len(derived))
	}

	if subtle.ConstantTimeCompare(keccakMAC(derived[16:32], cipherText), mac) != 1 {
		return nil, ErrWrongPassword
	}

	block, err := aes.NewCipher(derived[:16])
	if err != nil {
		return nil, err
	}
	plain := make([]byte, len(cipherText))
	cipher.NewCTR(block, iv).XORKeyStream(plain, cipherText)
	return plain, nil
}

func keccakMAC(key, cipherText []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(bytes.Join([][]byte{key, cipherText}, nil))
	return h.Sum(nil)
}
