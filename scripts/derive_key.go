// derive_key.go prints the public key and hx address for a hex-encoded
// private key file, or for a V3 keystore when --keystore is given.
//
// Usage:
//
//	go run ./scripts <keyfile>
//	go run ./scripts --keystore <keystore.json>
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/Klingon-tech/icon-cli/internal/prompt"
	"github.com/Klingon-tech/icon-cli/internal/wallet"
	"github.com/Klingon-tech/icon-cli/pkg/crypto"
)

func main() {
	args := os.Args[1:]
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: derive_key [--keystore] <file>")
		os.Exit(1)
	}

	var (
		key *crypto.PrivateKey
		err error
	)
	if args[0] == "--keystore" && len(args) > 1 {
		key, err = fromKeystore(args[1])
	} else {
		key, err = fromHexFile(args[0])
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	defer key.Zero()

	pub := key.PublicKey()
	addr, err := crypto.AddressFromPubKey(pub)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	fmt.Printf("pubkey=%s\n", hex.EncodeToString(pub))
	fmt.Printf("address=%s\n", addr)
}

func fromHexFile(path string) (*crypto.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	keyHex := strings.TrimPrefix(strings.TrimSpace(string(data)), "0x")
	keyBytes, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, err
	}
	return crypto.PrivateKeyFromBytes(keyBytes)
}

func fromKeystore(path string) (*crypto.PrivateKey, error) {
	ks, err := wallet.ReadKeystore(path)
	if err != nil {
		return nil, err
	}
	pw, err := prompt.ReadPassword("Keystore password: ")
	if err != nil {
		return nil, err
	}
	defer clear(pw)
	return ks.Decrypt(pw)
}
