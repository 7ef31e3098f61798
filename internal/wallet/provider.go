package wallet

import (
	"errors"
	"fmt"
	"sync"

	klog "github.com/Klingon-tech/icon-cli/internal/log"
	"github.com/Klingon-tech/icon-cli/pkg/crypto"
	"github.com/Klingon-tech/icon-cli/pkg/types"
)

// ErrNoKeystore is returned when an operation needs a key but no keystore
// was configured.
var ErrNoKeystore = errors.New("keystore should be specified")

// PasswordFunc supplies the keystore password on demand.
type PasswordFunc func() ([]byte, error)

// StaticPassword returns a PasswordFunc for a known password.
func StaticPassword(pw string) PasswordFunc {
	return func() ([]byte, error) { return []byte(pw), nil }
}

// Provider resolves the account of a keystore and produces its signer.
// The decrypted key is kept for the process lifetime and never written
// anywhere.
type Provider struct {
	path     string
	password PasswordFunc

	mu     sync.Mutex
	ks     *Keystore
	signer *crypto.PrivateKey
}

// NewProvider creates a provider for the keystore at path. An empty path
// yields ErrNoKeystore on use.
func NewProvider(path string, password PasswordFunc) *Provider {
	return &Provider{path: path, password: password}
}

// Configured reports whether a keystore path was given.
func (p *Provider) Configured() bool {
	return p.path != ""
}

func (p *Provider) keystore() (*Keystore, error) {
	if p.path == "" {
		return nil, ErrNoKeystore
	}
	if p.ks == nil {
		ks, err := ReadKeystore(p.path)
		if err != nil {
			return nil, err
		}
		p.ks = ks
	}
	return p.ks, nil
}

// Address returns the keystore address without decrypting the key.
func (p *Provider) Address() (types.Address, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ks, err := p.keystore()
	if err != nil {
		return types.Address{}, err
	}
	return ks.Address, nil
}

// Signer decrypts the key on first use and returns it.
func (p *Provider) Signer() (crypto.Signer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.signer != nil {
		return p.signer, nil
	}
	ks, err := p.keystore()
	if err != nil {
		return nil, err
	}
	if p.password == nil {
		return nil, fmt.Errorf("no password source for %s", p.path)
	}
	pw, err := p.password()
	if err != nil {
		return nil, err
	}
	defer clear(pw)

	key, err := ks.Decrypt(pw)
	if err != nil {
		return nil, fmt.Errorf("load keystore %s: %w", p.path, err)
	}
	klog.Wallet.Debug().Str("address", key.Address().String()).Msg("Keystore unlocked")
	p.signer = key
	return key, nil
}

// Close zeroes the cached key.
func (p *Provider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.signer != nil {
		p.signer.Zero()
		p.signer = nil
	}
}
