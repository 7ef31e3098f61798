// Package iiss is the typed client of the ChainScore system contract:
// staking, delegation, IScore, P-Rep and network queries.
package iiss

import (
	"context"
	"fmt"
	"time"

	"github.com/Klingon-tech/icon-cli/internal/chain"
	"github.com/Klingon-tech/icon-cli/internal/delegation"
	"github.com/Klingon-tech/icon-cli/internal/score"
	"github.com/Klingon-tech/icon-cli/pkg/crypto"
	"github.com/Klingon-tech/icon-cli/pkg/types"
)

// ChainScore is the address of the ChainScore system contract.
var ChainScore = types.MustParseAddress("cx0000000000000000000000000000000000000000")

// BlockInterval is the nominal block time used for countdowns.
const BlockInterval = 2 * time.Second

// Client calls ChainScore methods.
type Client struct {
	*score.Contract
}

// New creates a ChainScore client. sub may be nil for query-only use.
func New(q score.Querier, sub score.Submitter) *Client {
	return &Client{Contract: score.New(ChainScore, q, sub)}
}

func addressParam(addr types.Address) map[string]any {
	return map[string]any{"address": addr}
}

// GetStake returns the stake of addr.
func (c *Client) GetStake(ctx context.Context, addr types.Address) (*Stake, error) {
	var s Stake
	if err := c.Call(ctx, "getStake", addressParam(addr), chain.Latest, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// SetStake sets the total stake of the signer to amount.
func (c *Client) SetStake(ctx context.Context, s crypto.Signer, amount types.Amount) (*chain.TxResult, error) {
	return c.Invoke(ctx, s, "setStake", map[string]any{"value": amount})
}

// GetDelegation returns the delegations of addr.
func (c *Client) GetDelegation(ctx context.Context, addr types.Address) (*Delegation, error) {
	var d Delegation
	if err := c.Call(ctx, "getDelegation", addressParam(addr), chain.Latest, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// SetDelegation replaces the delegations of the signer with set.
func (c *Client) SetDelegation(ctx context.Context, s crypto.Signer, set *delegation.Set) (*chain.TxResult, error) {
	entries := set.Entries()
	if entries == nil {
		entries = []delegation.Entry{}
	}
	return c.Invoke(ctx, s, "setDelegation", map[string]any{"delegations": entries})
}

// QueryIScore returns the unclaimed IScore of addr.
func (c *Client) QueryIScore(ctx context.Context, addr types.Address) (*IScore, error) {
	var is IScore
	if err := c.Call(ctx, "queryIScore", addressParam(addr), chain.Latest, &is); err != nil {
		return nil, err
	}
	return &is, nil
}

// ClaimIScore claims the signer's IScore.
func (c *Client) ClaimIScore(ctx context.Context, s crypto.Signer) (*chain.TxResult, error) {
	return c.Invoke(ctx, s, "claimIScore", nil)
}

// GetPRep returns the P-Rep registered at addr as of height (chain.Latest
// for the current state).
func (c *Client) GetPRep(ctx context.Context, addr types.Address, height uint64) (*PRep, error) {
	var p PRep
	if err := c.Call(ctx, "getPRep", addressParam(addr), height, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPReps returns the ranked P-Rep list.
func (c *Client) GetPReps(ctx context.Context) (*PReps, error) {
	var p PReps
	if err := c.Call(ctx, "getPReps", nil, chain.Latest, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// PRepNames maps P-Rep addresses to their registered names.
func (c *Client) PRepNames(ctx context.Context) (map[types.Address]string, error) {
	preps, err := c.GetPReps(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[types.Address]string, len(preps.PReps))
	for _, p := range preps.PReps {
		names[p.Address] = p.Name
	}
	return names, nil
}

// GetBond returns the bonds of addr.
func (c *Client) GetBond(ctx context.Context, addr types.Address) (*Bond, error) {
	var b Bond
	if err := c.Call(ctx, "getBond", addressParam(addr), chain.Latest, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// Authorized returns the stake that may back delegations: stake minus the
// bonded amount.
func (c *Client) Authorized(ctx context.Context, addr types.Address) (types.Amount, error) {
	stake, err := c.GetStake(ctx, addr)
	if err != nil {
		return types.Amount{}, err
	}
	bond, err := c.GetBond(ctx, addr)
	if err != nil {
		return types.Amount{}, err
	}
	authorized, err := stake.Stake.Sub(bond.TotalBonded)
	if err != nil {
		return types.Amount{}, fmt.Errorf("bonded exceeds stake: %w", err)
	}
	return authorized, nil
}

// GetIISSInfo returns the IISS state.
func (c *Client) GetIISSInfo(ctx context.Context) (*Info, error) {
	var i Info
	if err := c.Call(ctx, "getIISSInfo", nil, chain.Latest, &i); err != nil {
		return nil, err
	}
	return &i, nil
}

// GetNetworkInfo returns the network parameters as reported.
func (c *Client) GetNetworkInfo(ctx context.Context) (map[string]any, error) {
	var m map[string]any
	if err := c.Call(ctx, "getNetworkInfo", nil, chain.Latest, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// Countdown is the time left until a block height.
type Countdown struct {
	Blocks   int64
	Duration time.Duration
}

// NextTerm returns the countdown to the next P-Rep term.
func NextTerm(info *Info) Countdown {
	blocks := int64(info.NextPRepTerm) - int64(info.BlockHeight)
	return Countdown{Blocks: blocks, Duration: time.Duration(blocks) * BlockInterval}
}

// String formats the duration as H:MM:SS.
func (c Countdown) String() string {
	secs := int64(c.Duration / time.Second)
	sign := ""
	if secs < 0 {
		sign, secs = "-", -secs
	}
	return fmt.Sprintf("%s%d:%02d:%02d", sign, secs/3600, secs%3600/60, secs%60)
}
