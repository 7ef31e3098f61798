// Package score binds a contract address to the chain client for queries
// and to the transaction handler for invocations. Typed contract clients
// are built on top of it.
package score

import (
	"context"
	"errors"
	"fmt"

	"github.com/Klingon-tech/icon-cli/internal/chain"
	"github.com/Klingon-tech/icon-cli/internal/txhandler"
	"github.com/Klingon-tech/icon-cli/pkg/crypto"
	"github.com/Klingon-tech/icon-cli/pkg/types"
)

// ErrReadOnly is returned when invoking through a contract without a
// transaction submitter.
var ErrReadOnly = errors.New("no transaction submitter")

// Querier runs read-only contract calls. *chain.Client implements it.
type Querier interface {
	Call(ctx context.Context, to types.Address, method string, params any, height uint64, result any) error
}

// Submitter sends transactions and waits for them. *txhandler.Handler
// implements it.
type Submitter interface {
	SubmitCall(ctx context.Context, s crypto.Signer, req txhandler.CallRequest) (types.Hash, error)
	AwaitResult(ctx context.Context, hash types.Hash, verbose bool) (*chain.TxResult, error)
}

// Contract is one deployed contract.
type Contract struct {
	address types.Address
	q       Querier
	sub     Submitter
}

// New binds addr. sub may be nil for query-only use.
func New(addr types.Address, q Querier, sub Submitter) *Contract {
	return &Contract{address: addr, q: q, sub: sub}
}

// Address returns the contract address.
func (c *Contract) Address() types.Address {
	return c.address
}

// Call runs a read-only method at height (chain.Latest for now).
func (c *Contract) Call(ctx context.Context, method string, params any, height uint64, result any) error {
	return c.q.Call(ctx, c.address, method, params, height, result)
}

// Invoke sends a method call transaction and waits for its result,
// printing it.
func (c *Contract) Invoke(ctx context.Context, s crypto.Signer, method string, params any) (*chain.TxResult, error) {
	return c.invoke(ctx, s, txhandler.CallRequest{To: c.address, Method: method, Params: params})
}

// InvokeWithValue is Invoke with ICX attached.
func (c *Contract) InvokeWithValue(ctx context.Context, s crypto.Signer, method string, params any, value types.Amount) (*chain.TxResult, error) {
	return c.invoke(ctx, s, txhandler.CallRequest{To: c.address, Method: method, Params: params, Value: &value})
}

func (c *Contract) invoke(ctx context.Context, s crypto.Signer, req txhandler.CallRequest) (*chain.TxResult, error) {
	if c.sub == nil {
		return nil, fmt.Errorf("%s: %w", req.Method, ErrReadOnly)
	}
	hash, err := c.sub.SubmitCall(ctx, s, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", req.Method, err)
	}
	return c.sub.AwaitResult(ctx, hash, true)
}
