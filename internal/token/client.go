package token

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/Klingon-tech/icon-cli/internal/chain"
	klog "github.com/Klingon-tech/icon-cli/internal/log"
	"github.com/Klingon-tech/icon-cli/internal/score"
	"github.com/Klingon-tech/icon-cli/internal/storage"
	"github.com/Klingon-tech/icon-cli/pkg/crypto"
	"github.com/Klingon-tech/icon-cli/pkg/types"
)

// Client calls IRC2 methods of one token contract.
type Client struct {
	*score.Contract
	store *Store
}

// New creates a client for the token at addr. sub may be nil for
// query-only use.
func New(addr types.Address, q score.Querier, sub score.Submitter) *Client {
	return &Client{Contract: score.New(addr, q, sub)}
}

// WithStore caches metadata lookups in s.
func (c *Client) WithStore(s *Store) *Client {
	c.store = s
	return c
}

// BalanceOf returns the token balance of owner in base units.
func (c *Client) BalanceOf(ctx context.Context, owner types.Address) (types.Amount, error) {
	var bal types.Amount
	if err := c.Call(ctx, "balanceOf", map[string]any{"_owner": owner}, chain.Latest, &bal); err != nil {
		return types.Amount{}, err
	}
	return bal, nil
}

// TotalSupply returns the token supply in base units.
func (c *Client) TotalSupply(ctx context.Context) (types.Amount, error) {
	var supply types.Amount
	if err := c.Call(ctx, "totalSupply", nil, chain.Latest, &supply); err != nil {
		return types.Amount{}, err
	}
	return supply, nil
}

// Metadata returns the token name, symbol and decimals, consulting the
// store first when one is set.
func (c *Client) Metadata(ctx context.Context) (*Metadata, error) {
	if c.store != nil {
		meta, err := c.store.Get(c.Address())
		if err == nil {
			return meta, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			klog.Storage.Warn().Err(err).Str("token", c.Address().String()).Msg("Token cache read failed")
		}
	}

	var meta Metadata
	var decimals types.HexUint64
	if err := c.Call(ctx, "name", nil, chain.Latest, &meta.Name); err != nil {
		return nil, err
	}
	if err := c.Call(ctx, "symbol", nil, chain.Latest, &meta.Symbol); err != nil {
		return nil, err
	}
	if err := c.Call(ctx, "decimals", nil, chain.Latest, &decimals); err != nil {
		return nil, err
	}
	meta.Decimals = int(decimals)

	if c.store != nil {
		if err := c.store.Put(c.Address(), &meta); err != nil {
			klog.Storage.Warn().Err(err).Str("token", c.Address().String()).Msg("Token cache write failed")
		}
	}
	return &meta, nil
}

// Transfer sends value base units to to. data, when not nil, is passed to
// the recipient's tokenFallback.
func (c *Client) Transfer(ctx context.Context, s crypto.Signer, to types.Address, value types.Amount, data []byte) (*chain.TxResult, error) {
	if value.IsZero() {
		return nil, fmt.Errorf("transfer: zero amount")
	}
	params := map[string]any{"_to": to, "_value": value}
	if data != nil {
		params["_data"] = "0x" + hex.EncodeToString(data)
	}
	return c.Invoke(ctx, s, "transfer", params)
}
