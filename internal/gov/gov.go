// Package gov is the typed client of the Governance system contract.
package gov

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Klingon-tech/icon-cli/internal/chain"
	klog "github.com/Klingon-tech/icon-cli/internal/log"
	"github.com/Klingon-tech/icon-cli/internal/score"
	"github.com/Klingon-tech/icon-cli/pkg/crypto"
	"github.com/Klingon-tech/icon-cli/pkg/tx"
	"github.com/Klingon-tech/icon-cli/pkg/types"
)

// Governance is the address of the Governance system contract.
var Governance = types.MustParseAddress("cx0000000000000000000000000000000000000001")

// auditBit is the audit flag in a bitmask service config.
const auditBit = 0x2

// ErrUnknownEncoding is returned for an unrecognized audit flag encoding.
var ErrUnknownEncoding = errors.New("unknown audit flag encoding")

// AuditEncoding says how a network reports the audit flag in its service
// config.
type AuditEncoding int

const (
	// AuditExact reads an "AUDIT" entry that must equal "0x1".
	AuditExact AuditEncoding = iota
	// AuditBitmask reads an integer config whose bit 0x2 enables audit.
	AuditBitmask
)

// String returns the configuration name of the encoding.
func (e AuditEncoding) String() string {
	switch e {
	case AuditExact:
		return "exact"
	case AuditBitmask:
		return "bitmask"
	default:
		return fmt.Sprintf("AuditEncoding(%d)", int(e))
	}
}

// ParseAuditEncoding parses "exact" or "bitmask".
func ParseAuditEncoding(s string) (AuditEncoding, error) {
	switch strings.ToLower(s) {
	case "exact", "":
		return AuditExact, nil
	case "bitmask":
		return AuditBitmask, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownEncoding, s)
	}
}

// Client calls Governance methods.
type Client struct {
	*score.Contract
}

// New creates a Governance client. sub may be nil for query-only use.
func New(q score.Querier, sub score.Submitter) *Client {
	return &Client{Contract: score.New(Governance, q, sub)}
}

func (c *Client) raw(ctx context.Context, method string, params any) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.Call(ctx, method, params, chain.Latest, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetVersion returns the Governance version.
func (c *Client) GetVersion(ctx context.Context) (json.RawMessage, error) {
	return c.raw(ctx, "getVersion", nil)
}

// GetRevision returns the network revision.
func (c *Client) GetRevision(ctx context.Context) (uint64, error) {
	var rev types.HexUint64
	if err := c.Call(ctx, "getRevision", nil, chain.Latest, &rev); err != nil {
		return 0, err
	}
	return uint64(rev), nil
}

// GetStepPrice returns the price of one step in loop.
func (c *Client) GetStepPrice(ctx context.Context) (types.Amount, error) {
	var price types.Amount
	if err := c.Call(ctx, "getStepPrice", nil, chain.Latest, &price); err != nil {
		return types.Amount{}, err
	}
	return price, nil
}

// StepPriceOrFallback returns the step price, or tx.FallbackStepPrice when
// it cannot be queried.
func (c *Client) StepPriceOrFallback(ctx context.Context) types.Amount {
	price, err := c.GetStepPrice(ctx)
	if err != nil {
		klog.RPC.Warn().Err(err).Msg("Step price unavailable, using fallback")
		return types.NewAmount(tx.FallbackStepPrice)
	}
	return price
}

// DefaultFee returns the fee of a default-sized transaction.
func (c *Client) DefaultFee(ctx context.Context) (types.Amount, error) {
	return tx.DefaultFee(c.StepPriceOrFallback(ctx))
}

// GetMaxStepLimit returns the step limit for a context type ("invoke" or
// "query").
func (c *Client) GetMaxStepLimit(ctx context.Context, contextType string) (uint64, error) {
	var limit types.HexUint64
	if err := c.Call(ctx, "getMaxStepLimit", map[string]any{"contextType": contextType}, chain.Latest, &limit); err != nil {
		return 0, err
	}
	return uint64(limit), nil
}

// GetStepCosts returns the step cost table.
func (c *Client) GetStepCosts(ctx context.Context) (json.RawMessage, error) {
	return c.raw(ctx, "getStepCosts", nil)
}

// GetServiceConfig returns the service config as reported. Depending on
// the network it is an object or a hex integer.
func (c *Client) GetServiceConfig(ctx context.Context) (json.RawMessage, error) {
	return c.raw(ctx, "getServiceConfig", nil)
}

// AuditEnabled reports whether contract deploys need audit, decoding the
// service config with enc.
func (c *Client) AuditEnabled(ctx context.Context, enc AuditEncoding) (bool, error) {
	cfg, err := c.GetServiceConfig(ctx)
	if err != nil {
		return false, err
	}
	return DecodeAuditFlag(cfg, enc)
}

// DecodeAuditFlag reads the audit flag from a service config document.
func DecodeAuditFlag(cfg json.RawMessage, enc AuditEncoding) (bool, error) {
	switch enc {
	case AuditExact:
		var m map[string]any
		if err := json.Unmarshal(cfg, &m); err != nil {
			return false, fmt.Errorf("service config: %w", err)
		}
		v, _ := m["AUDIT"].(string)
		return v == "0x1", nil
	case AuditBitmask:
		var flags types.HexUint64
		if err := json.Unmarshal(cfg, &flags); err != nil {
			var m map[string]json.RawMessage
			if json.Unmarshal(cfg, &m) != nil || m["AUDIT"] == nil {
				return false, fmt.Errorf("service config: %w", err)
			}
			if err := json.Unmarshal(m["AUDIT"], &flags); err != nil {
				return false, fmt.Errorf("service config: %w", err)
			}
		}
		return flags&auditBit != 0, nil
	default:
		return false, fmt.Errorf("%w: %d", ErrUnknownEncoding, int(enc))
	}
}

// AcceptScore approves the deploy submitted in txHash.
func (c *Client) AcceptScore(ctx context.Context, s crypto.Signer, txHash types.Hash) (*chain.TxResult, error) {
	return c.Invoke(ctx, s, "acceptScore", map[string]any{"txHash": txHash})
}

// RejectScore rejects the deploy submitted in txHash.
func (c *Client) RejectScore(ctx context.Context, s crypto.Signer, txHash types.Hash, reason string) (*chain.TxResult, error) {
	return c.Invoke(ctx, s, "rejectScore", map[string]any{"txHash": txHash, "reason": reason})
}
