package testutil

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"
	"golang.org/x/crypto/sha3"

	"github.com/Klingon-tech/icon-cli/pkg/crypto"
)

var (
	keystoreSalt = []byte("0123456789abcdef0123456789abcdef")
	keystoreIV   = []byte("fedcba9876543210")
)

// Keystore builds a V3 keystore for key with cheap "scrypt" or "pbkdf2"
// parameters.
func Keystore(t *testing.T, key *crypto.PrivateKey, password, kdf string) []byte {
	t.Helper()
	var derived []byte
	var params map[string]any
	switch kdf {
	case "scrypt":
		var err error
		derived, err = scrypt.Key([]byte(password), keystoreSalt, 16, 8, 1, 32)
		require.NoError(t, err)
		params = map[string]any{"dklen": 32, "n": 16, "r": 8, "p": 1, "salt": hex.EncodeToString(keystoreSalt)}
	case "pbkdf2":
		derived = pbkdf2.Key([]byte(password), keystoreSalt, 2, 32, sha256.New)
		params = map[string]any{"dklen": 32, "c": 2, "prf": "hmac-sha256", "salt": hex.EncodeToString(keystoreSalt)}
	default:
		t.Fatalf("unknown kdf %q", kdf)
	}

	block, err := aes.NewCipher(derived[:16])
	require.NoError(t, err)
	ct := make([]byte, 32)
	cipher.NewCTR(block, keystoreIV).XORKeyStream(ct, key.Serialize())

	mac := sha3.NewLegacyKeccak256()
	mac.Write(derived[16:32])
	mac.Write(ct)

	data, err := json.Marshal(map[string]any{
		"address":  key.Address().String(),
		"id":       "b1f6a3c0-0000-4000-8000-000000000000",
		"version":  3,
		"coinType": "icx",
		"crypto": map[string]any{
			"cipher":       "aes-128-ctr",
			"ciphertext":   hex.EncodeToString(ct),
			"cipherparams": map[string]string{"iv": hex.EncodeToString(keystoreIV)},
			"kdf":          kdf,
			"kdfparams":    params,
			"mac":          hex.EncodeToString(mac.Sum(nil)),
		},
	})
	require.NoError(t, err)
	return data
}

// WriteKeystore writes a keystore for key under a temporary directory and
// returns its path.
func WriteKeystore(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "keystore.json")
	require.NoError(t, os.WriteFile(path, data, 0600))
	return path
}
