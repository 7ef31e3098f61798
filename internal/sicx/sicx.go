// Package sicx is a client for the Staked ICX liquid staking manager and
// its sICX token.
package sicx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/Klingon-tech/icon-cli/internal/chain"
	"github.com/Klingon-tech/icon-cli/internal/score"
	"github.com/Klingon-tech/icon-cli/internal/token"
	"github.com/Klingon-tech/icon-cli/pkg/crypto"
	"github.com/Klingon-tech/icon-cli/pkg/types"
)

// ManagerAddress is the staking manager on mainnet.
var ManagerAddress = types.MustParseAddress("cx43e2eec79eb76293c298f2b17aec06097be606e0")

// unstakeData is the tokenFallback payload that turns an sICX transfer to
// the manager into an unstake request.
var unstakeData = []byte(`{"method":"unstake"}`)

// ErrUnknownKind is returned for an unsupported listing kind.
var ErrUnknownKind = errors.New("unknown kind")

// Delegation listings kept by the manager.
const (
	DelegationsActual = "actual"
	DelegationsBOMM   = "bomm"
	DelegationsFinal  = "final"
)

// P-Rep listings kept by the manager.
const (
	PRepsTop   = "top"
	PRepsValid = "valid"
)

var delegationMethods = map[string]string{
	DelegationsActual: "getActualPrepDelegations",
	DelegationsBOMM:   "getbOMMDelegations",
	DelegationsFinal:  "getPrepDelegations",
}

var prepMethods = map[string]string{
	PRepsTop:   "getTopPreps",
	PRepsValid: "getValidPreps",
}

// Manager calls the staking manager contract.
type Manager struct {
	*score.Contract
}

// NewManager binds the manager at addr. sub may be nil for query-only use.
func NewManager(addr types.Address, q score.Querier, sub score.Submitter) *Manager {
	return &Manager{Contract: score.New(addr, q, sub)}
}

// StakeICX sends value ICX to the manager and mints sICX to to.
func (m *Manager) StakeICX(ctx context.Context, s crypto.Signer, to types.Address, value types.Amount) (*chain.TxResult, error) {
	if value.IsZero() {
		return nil, fmt.Errorf("stakeICX: zero amount")
	}
	return m.InvokeWithValue(ctx, s, "stakeICX", map[string]any{"_to": to}, value)
}

// Unstake transfers value sICX back to the manager, which queues the
// ICX for release.
func (m *Manager) Unstake(ctx context.Context, s crypto.Signer, sicx *token.Client, value types.Amount) (*chain.TxResult, error) {
	return sicx.Transfer(ctx, s, m.Address(), value, unstakeData)
}

// ClaimUnstakedICX withdraws released ICX to the signer.
func (m *Manager) ClaimUnstakedICX(ctx context.Context, s crypto.Signer) (*chain.TxResult, error) {
	return m.Invoke(ctx, s, "claimUnstakedICX", nil)
}

// ClaimableICX returns the released ICX addr can claim.
func (m *Manager) ClaimableICX(ctx context.Context, addr types.Address) (types.Amount, error) {
	var v types.Amount
	if err := m.Call(ctx, "claimableICX", map[string]any{"_address": addr}, chain.Latest, &v); err != nil {
		return types.Amount{}, err
	}
	return v, nil
}

// UnstakeInfo returns the pending unstake requests of addr as reported.
func (m *Manager) UnstakeInfo(ctx context.Context, addr types.Address) ([]json.RawMessage, error) {
	var info []json.RawMessage
	if err := m.Call(ctx, "getUserUnstakeInfo", map[string]any{"_address": addr}, chain.Latest, &info); err != nil {
		return nil, err
	}
	return info, nil
}

// PReps returns the top or valid P-Rep list.
func (m *Manager) PReps(ctx context.Context, kind string) ([]types.Address, error) {
	method, ok := prepMethods[kind]
	if !ok {
		return nil, fmt.Errorf("%w %q (want %s or %s)", ErrUnknownKind, kind, PRepsTop, PRepsValid)
	}
	var preps []types.Address
	if err := m.Call(ctx, method, nil, chain.Latest, &preps); err != nil {
		return nil, err
	}
	return preps, nil
}

// Delegation is one P-Rep weight in a manager listing.
type Delegation struct {
	Address types.Address
	Value   types.Amount
}

// Delegations returns a delegation listing, largest first.
func (m *Manager) Delegations(ctx context.Context, kind string) ([]Delegation, error) {
	method, ok := delegationMethods[kind]
	if !ok {
		return nil, fmt.Errorf("%w %q (want %s, %s or %s)", ErrUnknownKind, kind, DelegationsActual, DelegationsBOMM, DelegationsFinal)
	}
	var raw map[string]types.Amount
	if err := m.Call(ctx, method, nil, chain.Latest, &raw); err != nil {
		return nil, err
	}
	out := make([]Delegation, 0, len(raw))
	for k, v := range raw {
		addr, err := types.ParseAddress(k)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", method, err)
		}
		out = append(out, Delegation{Address: addr, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Value.Cmp(out[j].Value); c != 0 {
			return c > 0
		}
		return out[i].Address.String() < out[j].Address.String()
	})
	return out, nil
}
