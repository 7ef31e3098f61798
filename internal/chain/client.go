// Package chain is the typed client for the ICON JSON-RPC v3 API.
package chain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Klingon-tech/icon-cli/internal/rpcclient"
	"github.com/Klingon-tech/icon-cli/pkg/tx"
	"github.com/Klingon-tech/icon-cli/pkg/types"
)

// Latest selects the latest block in height-aware queries.
const Latest uint64 = 0

// Client talks to one node. Queries and transactions use <endpoint>/api/v3,
// step estimation uses <endpoint>/api/v3d.
type Client struct {
	endpoint string
	rpc      *rpcclient.Client
	debug    *rpcclient.Client
}

// New creates a client for a node base URL such as https://ctz.solidwallet.io.
func New(endpoint string) *Client {
	return NewWithTimeout(endpoint, 0)
}

// NewWithTimeout creates a client with a custom HTTP timeout.
func NewWithTimeout(endpoint string, timeout time.Duration) *Client {
	base := strings.TrimSuffix(strings.TrimSuffix(endpoint, "/"), "/api/v3")
	return &Client{
		endpoint: base,
		rpc:      rpcclient.NewWithTimeout(base+"/api/v3", timeout),
		debug:    rpcclient.NewWithTimeout(base+"/api/v3d", timeout),
	}
}

// Endpoint returns the node base URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

func withHeight(p map[string]any, height uint64) map[string]any {
	if height != Latest {
		p["height"] = types.HexUint64(height).String()
	}
	return p
}

// Call runs a read-only contract method at height (Latest for the current
// state) and decodes its return value into result.
func (c *Client) Call(ctx context.Context, to types.Address, method string, params any, height uint64, result any) error {
	data := map[string]any{"method": method}
	if params != nil {
		data["params"] = params
	}
	p := withHeight(map[string]any{
		"to":       to,
		"dataType": "call",
		"data":     data,
	}, height)
	if err := c.rpc.Call(ctx, "icx_call", p, result); err != nil {
		return fmt.Errorf("call %s.%s: %w", to, method, err)
	}
	return nil
}

// GetBalance returns the balance of addr at height.
func (c *Client) GetBalance(ctx context.Context, addr types.Address, height uint64) (types.Amount, error) {
	var out types.Amount
	if err := c.rpc.Call(ctx, "icx_getBalance", withHeight(map[string]any{"address": addr}, height), &out); err != nil {
		return types.Amount{}, fmt.Errorf("get balance of %s: %w", addr, err)
	}
	return out, nil
}

// GetTotalSupply returns the total supply at height.
func (c *Client) GetTotalSupply(ctx context.Context, height uint64) (types.Amount, error) {
	var params any
	if height != Latest {
		params = withHeight(map[string]any{}, height)
	}
	var out types.Amount
	if err := c.rpc.Call(ctx, "icx_getTotalSupply", params, &out); err != nil {
		return types.Amount{}, fmt.Errorf("get total supply: %w", err)
	}
	return out, nil
}

// GetScoreStatus returns deployment status and owner of a contract.
func (c *Client) GetScoreStatus(ctx context.Context, addr types.Address, height uint64) (*ScoreStatus, error) {
	var out ScoreStatus
	if err := c.rpc.Call(ctx, "icx_getScoreStatus", withHeight(map[string]any{"address": addr}, height), &out); err != nil {
		return nil, fmt.Errorf("get score status of %s: %w", addr, err)
	}
	return &out, nil
}

// GetLastBlockHeight returns the height of the latest block.
func (c *Client) GetLastBlockHeight(ctx context.Context) (uint64, error) {
	var blk struct {
		Height uint64 `json:"height"`
	}
	if err := c.rpc.Call(ctx, "icx_getLastBlock", nil, &blk); err != nil {
		return 0, fmt.Errorf("get last block: %w", err)
	}
	return blk.Height, nil
}

// SendTransaction submits a signed transaction and returns its hash.
func (c *Client) SendTransaction(ctx context.Context, t *tx.Transaction) (types.Hash, error) {
	p, err := t.Params()
	if err != nil {
		return types.Hash{}, err
	}
	var h types.Hash
	if err := c.rpc.Call(ctx, "icx_sendTransaction", p, &h); err != nil {
		return types.Hash{}, fmt.Errorf("send transaction: %w", err)
	}
	return h, nil
}

// EstimateStep asks the node how many steps t would consume.
func (c *Client) EstimateStep(ctx context.Context, t *tx.Transaction) (uint64, error) {
	p, err := t.EstimateParams()
	if err != nil {
		return 0, err
	}
	var steps types.HexUint64
	if err := c.debug.Call(ctx, "debug_estimateStep", p, &steps); err != nil {
		return 0, fmt.Errorf("estimate step: %w", err)
	}
	return uint64(steps), nil
}

// GetTransactionResult returns the receipt of a transaction. A pending
// transaction yields an *rpcclient.RPCError for which rpcclient.IsPending
// is true.
func (c *Client) GetTransactionResult(ctx context.Context, hash types.Hash) (*TxResult, error) {
	var out TxResult
	if err := c.rpc.Call(ctx, "icx_getTransactionResult", map[string]any{"txHash": hash}, &out); err != nil {
		return nil, fmt.Errorf("get result of %s: %w", hash, err)
	}
	return &out, nil
}

// GetTransactionByHash returns a transaction.
func (c *Client) GetTransactionByHash(ctx context.Context, hash types.Hash) (*TxInfo, error) {
	var out TxInfo
	if err := c.rpc.Call(ctx, "icx_getTransactionByHash", map[string]any{"txHash": hash}, &out); err != nil {
		return nil, fmt.Errorf("get transaction %s: %w", hash, err)
	}
	return &out, nil
}
