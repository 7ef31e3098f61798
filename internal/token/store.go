package token

import (
	"encoding/json"
	"fmt"

	"github.com/Klingon-tech/icon-cli/internal/storage"
	"github.com/Klingon-tech/icon-cli/pkg/types"
)

var prefixToken = []byte("t/") // t/<address> -> Metadata JSON

// Store caches token metadata by contract address.
type Store struct {
	db storage.DB
}

// NewStore creates a token metadata store.
func NewStore(db storage.DB) *Store {
	return &Store{db: db}
}

// Put stores metadata for a token.
func (s *Store) Put(addr types.Address, meta *Metadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("token marshal: %w", err)
	}
	return s.db.Put(tokenKey(addr), data)
}

// Get retrieves metadata for a token. A missing entry returns
// storage.ErrNotFound.
func (s *Store) Get(addr types.Address) (*Metadata, error) {
	data, err := s.db.Get(tokenKey(addr))
	if err != nil {
		return nil, fmt.Errorf("token get: %w", err)
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("token unmarshal: %w", err)
	}
	return &meta, nil
}

// Entry pairs a token contract with its metadata.
type Entry struct {
	Address types.Address
	Metadata
}

// List returns all cached entries.
func (s *Store) List() ([]Entry, error) {
	entries := []Entry{}
	err := s.db.ForEach(prefixToken, func(key, value []byte) error {
		addr, err := types.ParseAddress(string(key[len(prefixToken):]))
		if err != nil {
			return nil // Malformed key, skip.
		}
		var meta Metadata
		if err := json.Unmarshal(value, &meta); err != nil {
			return nil // Skip corrupt entries.
		}
		entries = append(entries, Entry{Address: addr, Metadata: meta})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func tokenKey(addr types.Address) []byte {
	return append(append([]byte(nil), prefixToken...), addr.String()...)
}
