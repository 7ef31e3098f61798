package iiss

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Klingon-tech/icon-cli/internal/chain"
	"github.com/Klingon-tech/icon-cli/internal/delegation"
	"github.com/Klingon-tech/icon-cli/internal/score"
	"github.com/Klingon-tech/icon-cli/internal/testutil"
	"github.com/Klingon-tech/icon-cli/internal/txhandler"
	"github.com/Klingon-tech/icon-cli/pkg/crypto"
	"github.com/Klingon-tech/icon-cli/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	chainScore = ChainScore.String()
	prepA      = types.MustParseAddress("hx0b047c751658f7ce1b2595da34d57a0e7dad357d")
	prepB      = types.MustParseAddress("hx1c8ccd4f1e4c9e1e3ea0aa2d4b7c3b5d9bbd6ba6")
)

// stubSubmitter records submitted calls and reports success for each.
type stubSubmitter struct {
	calls []txhandler.CallRequest
}

func (s *stubSubmitter) SubmitCall(_ context.Context, _ crypto.Signer, req txhandler.CallRequest) (types.Hash, error) {
	s.calls = append(s.calls, req)
	return types.Hash{byte(len(s.calls))}, nil
}

func (s *stubSubmitter) AwaitResult(_ context.Context, hash types.Hash, _ bool) (*chain.TxResult, error) {
	return &chain.TxResult{Status: 1, TxHash: hash}, nil
}

func (s *stubSubmitter) methods() []string {
	var out []string
	for _, c := range s.calls {
		out = append(out, c.Method)
	}
	return out
}

// params decodes the params of the i-th submitted call into v.
func (s *stubSubmitter) params(t *testing.T, i int, v any) {
	t.Helper()
	data, err := json.Marshal(s.calls[i].Params)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
}

func newClient(t *testing.T) (*Client, *testutil.Node, *stubSubmitter) {
	t.Helper()
	node := testutil.NewNode(t)
	sub := &stubSubmitter{}
	return New(chain.New(node.URL()), sub), node, sub
}

func icx(n uint64) types.Amount {
	return types.LoopFromICX(n)
}

func TestGetStake(t *testing.T) {
	c, node, _ := newClient(t)
	node.HandleCallResult(chainScore, "getStake", map[string]any{
		"stake": icx(100),
		"unstakes": []map[string]any{
			{"unstake": icx(3), "unstakeBlockHeight": "0x10", "remainingBlocks": "0x5"},
			{"unstake": icx(4), "unstakeBlockHeight": "0x20", "remainingBlocks": "0x15"},
		},
	})

	s, err := c.GetStake(context.Background(), prepA)
	require.NoError(t, err)
	assert.Equal(t, icx(100), s.Stake)
	require.Len(t, s.Unstakes, 2)
	assert.Equal(t, types.HexUint64(0x15), s.Unstakes[1].RemainingBlocks)

	total, err := s.TotalUnstaking()
	require.NoError(t, err)
	assert.Equal(t, icx(7), total)

	reqs := node.CallRequests(chainScore, "getStake")
	require.Len(t, reqs, 1)
	assert.Contains(t, string(reqs[0]), prepA.String())
}

func TestGetDelegation_KeepsOrder(t *testing.T) {
	c, node, _ := newClient(t)
	node.HandleCallResult(chainScore, "getDelegation", map[string]any{
		"delegations": []delegation.Entry{
			{Address: prepB, Value: icx(5)},
			{Address: prepA, Value: icx(9)},
		},
		"totalDelegated": icx(14),
		"votingPower":    icx(6),
	})

	d, err := c.GetDelegation(context.Background(), prepA)
	require.NoError(t, err)
	assert.Equal(t, icx(6), d.VotingPower)

	set, err := d.Set()
	require.NoError(t, err)
	entries := set.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, prepB, entries[0].Address)
	assert.Equal(t, prepA, entries[1].Address)
}

func TestGetPRep_AtHeight(t *testing.T) {
	c, node, _ := newClient(t)
	node.HandleCallResult(chainScore, "getPRep", map[string]any{
		"address":      prepA,
		"name":         "node-a",
		"grade":        "0x1",
		"delegated":    icx(1000),
		"bonded":       icx(10),
		"hasPublicKey": "0x1",
	})

	p, err := c.GetPRep(context.Background(), prepA, 1234)
	require.NoError(t, err)
	assert.Equal(t, "node-a", p.Name)
	assert.Equal(t, types.HexUint64(GradeSub), p.Grade)
	assert.Equal(t, icx(1000), p.Delegated)
	require.NotNil(t, p.HasPublicKey)
	assert.Equal(t, types.HexUint64(1), *p.HasPublicKey)
	assert.Contains(t, string(p.Raw), `"name":"node-a"`)

	reqs := node.CallRequests(chainScore, "getPRep")
	require.Len(t, reqs, 1)
	var sent struct {
		Height string `json:"height"`
	}
	require.NoError(t, json.Unmarshal(reqs[0], &sent))
	assert.Equal(t, "0x4d2", sent.Height)
}

func TestPRepNames(t *testing.T) {
	c, node, _ := newClient(t)
	node.HandleCallResult(chainScore, "getPReps", map[string]any{
		"blockHeight": "0x100",
		"preps": []map[string]any{
			{"address": prepA, "name": "alpha"},
			{"address": prepB, "name": "beta"},
		},
	})

	names, err := c.PRepNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[types.Address]string{prepA: "alpha", prepB: "beta"}, names)
}

func TestSetDelegation_Params(t *testing.T) {
	c, _, sub := newClient(t)
	set, err := delegation.NewSet(
		delegation.Entry{Address: prepA, Value: icx(2)},
		delegation.Entry{Address: prepB, Value: icx(3)},
	)
	require.NoError(t, err)

	res, err := c.SetDelegation(context.Background(), nil, set)
	require.NoError(t, err)
	assert.True(t, res.Succeeded())

	require.Equal(t, []string{"setDelegation"}, sub.methods())
	assert.Equal(t, ChainScore, sub.calls[0].To)
	var p struct {
		Delegations []map[string]string `json:"delegations"`
	}
	sub.params(t, 0, &p)
	assert.Equal(t, []map[string]string{
		{"address": prepA.String(), "value": icx(2).Hex()},
		{"address": prepB.String(), "value": icx(3).Hex()},
	}, p.Delegations)
}

func TestSetDelegation_EmptyClears(t *testing.T) {
	c, _, sub := newClient(t)
	set, err := delegation.NewSet()
	require.NoError(t, err)

	_, err = c.SetDelegation(context.Background(), nil, set)
	require.NoError(t, err)
	data, err := json.Marshal(sub.calls[0].Params)
	require.NoError(t, err)
	assert.JSONEq(t, `{"delegations":[]}`, string(data))
}

func TestInvoke_QueryOnlyClient(t *testing.T) {
	node := testutil.NewNode(t)
	c := New(chain.New(node.URL()), nil)
	_, err := c.ClaimIScore(context.Background(), nil)
	require.ErrorIs(t, err, score.ErrReadOnly)
}

func TestNextTerm(t *testing.T) {
	tests := []struct {
		height, next uint64
		blocks       int64
		want         string
	}{
		{100, 1900, 1800, "1:00:00"},
		{100, 145, 45, "0:01:30"},
		{0, 43200, 43200, "24:00:00"},
		{10, 10, 0, "0:00:00"},
	}
	for _, tc := range tests {
		c := NextTerm(&Info{BlockHeight: types.HexUint64(tc.height), NextPRepTerm: types.HexUint64(tc.next)})
		assert.Equal(t, tc.blocks, c.Blocks)
		assert.Equal(t, time.Duration(tc.blocks)*BlockInterval, c.Duration)
		assert.Equal(t, tc.want, c.String())
	}
}

func TestGetIISSInfo_KeepsRaw(t *testing.T) {
	c, node, _ := newClient(t)
	node.HandleCallResult(chainScore, "getIISSInfo", map[string]any{
		"blockHeight":  "0x64",
		"nextPRepTerm": "0x76c",
		"variable":     map[string]any{"irep": "0x0"},
	})

	info, err := c.GetIISSInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1:00:00", NextTerm(info).String())
	assert.Contains(t, string(info.Raw), "variable")
}

func chainClient(node *testutil.Node) *chain.Client {
	return chain.New(node.URL())
}

func TestAuthorized(t *testing.T) {
	c, node, _ := newClient(t)
	node.HandleCallResult(chainScore, "getStake", map[string]any{"stake": icx(100)})
	node.HandleCallResult(chainScore, "getBond", map[string]any{"bonds": []any{}, "totalBonded": icx(30), "votingPower": "0x0"})

	got, err := c.Authorized(context.Background(), prepA)
	require.NoError(t, err)
	assert.Equal(t, icx(70), got)

	node.HandleCallResult(chainScore, "getBond", map[string]any{"bonds": []any{}, "totalBonded": icx(101), "votingPower": "0x0"})
	_, err = c.Authorized(context.Background(), prepA)
	assert.ErrorContains(t, err, "bonded exceeds stake")
}
