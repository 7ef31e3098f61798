package sicx

import (
	"context"
	"testing"

	"github.com/Klingon-tech/icon-cli/internal/chain"
	"github.com/Klingon-tech/icon-cli/internal/testutil"
	"github.com/Klingon-tech/icon-cli/internal/token"
	"github.com/Klingon-tech/icon-cli/internal/txhandler"
	"github.com/Klingon-tech/icon-cli/pkg/crypto"
	"github.com/Klingon-tech/icon-cli/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	owner = types.MustParseAddress("hx5bfdb090f43a808005ffc27c25b213145e80b7cd")
	prepA = types.MustParseAddress("hx0b047c751658f7ce1b2595da34d57a0e7dad357d")
	prepB = types.MustParseAddress("hx9eec61296a7010c867ce24c20e69588e2832bc52")
)

type recorder struct {
	reqs []txhandler.CallRequest
}

func (r *recorder) SubmitCall(_ context.Context, _ crypto.Signer, req txhandler.CallRequest) (types.Hash, error) {
	r.reqs = append(r.reqs, req)
	return types.Hash{byte(len(r.reqs))}, nil
}

func (r *recorder) AwaitResult(_ context.Context, h types.Hash, _ bool) (*chain.TxResult, error) {
	return &chain.TxResult{Status: 1, TxHash: h}, nil
}

func newManager(t *testing.T) (*Manager, *testutil.Node, *recorder) {
	t.Helper()
	node := testutil.NewNode(t)
	rec := &recorder{}
	return NewManager(ManagerAddress, chain.New(node.URL()), rec), node, rec
}

func TestStakeICX_AttachesValue(t *testing.T) {
	m, _, rec := newManager(t)

	res, err := m.StakeICX(context.Background(), nil, owner, types.LoopFromICX(3))
	require.NoError(t, err)
	assert.Equal(t, types.Hash{1}, res.TxHash)

	require.Len(t, rec.reqs, 1)
	req := rec.reqs[0]
	assert.Equal(t, ManagerAddress, req.To)
	assert.Equal(t, "stakeICX", req.Method)
	assert.Equal(t, map[string]any{"_to": owner}, req.Params)
	require.NotNil(t, req.Value)
	assert.Equal(t, types.LoopFromICX(3), *req.Value)

	_, err = m.StakeICX(context.Background(), nil, owner, types.Amount{})
	assert.ErrorContains(t, err, "zero amount")
}

func TestUnstake_TransfersToManager(t *testing.T) {
	m, node, rec := newManager(t)
	sicx := token.New(token.Known["sicx"], chain.New(node.URL()), rec)

	_, err := m.Unstake(context.Background(), nil, sicx, types.LoopFromICX(2))
	require.NoError(t, err)

	require.Len(t, rec.reqs, 1)
	req := rec.reqs[0]
	assert.Equal(t, token.Known["sicx"], req.To)
	assert.Equal(t, "transfer", req.Method)
	assert.Equal(t, map[string]any{
		"_to":    ManagerAddress,
		"_value": types.LoopFromICX(2),
		"_data":  "0x7b226d6574686f64223a22756e7374616b65227d",
	}, req.Params)
	assert.Nil(t, req.Value)
}

func TestClaim(t *testing.T) {
	m, node, rec := newManager(t)
	node.HandleCallResult(ManagerAddress.String(), "claimableICX", types.LoopFromICX(4))

	v, err := m.ClaimableICX(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, types.LoopFromICX(4), v)
	reqs := node.CallRequests(ManagerAddress.String(), "claimableICX")
	require.Len(t, reqs, 1)
	assert.Contains(t, string(reqs[0]), owner.String())

	_, err = m.ClaimUnstakedICX(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "claimUnstakedICX", rec.reqs[0].Method)
}

func TestUnstakeInfo(t *testing.T) {
	m, node, _ := newManager(t)
	node.HandleCallResult(ManagerAddress.String(), "getUserUnstakeInfo", []map[string]any{
		{"amount": "0x1", "from": owner, "blockHeight": "0x10"},
	})

	info, err := m.UnstakeInfo(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, info, 1)
	assert.Contains(t, string(info[0]), `"blockHeight":"0x10"`)
}

func TestDelegations_SortedByValue(t *testing.T) {
	m, node, _ := newManager(t)
	node.HandleCallResult(ManagerAddress.String(), "getPrepDelegations", map[string]any{
		prepA.String(): types.LoopFromICX(1),
		prepB.String(): types.LoopFromICX(9),
	})

	got, err := m.Delegations(context.Background(), DelegationsFinal)
	require.NoError(t, err)
	assert.Equal(t, []Delegation{
		{Address: prepB, Value: types.LoopFromICX(9)},
		{Address: prepA, Value: types.LoopFromICX(1)},
	}, got)

	_, err = m.Delegations(context.Background(), "latest")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestPReps(t *testing.T) {
	m, node, _ := newManager(t)
	node.HandleCallResult(ManagerAddress.String(), "getTopPreps", []types.Address{prepA, prepB})

	got, err := m.PReps(context.Background(), PRepsTop)
	require.NoError(t, err)
	assert.Equal(t, []types.Address{prepA, prepB}, got)
	assert.Empty(t, node.CallRequests(ManagerAddress.String(), "getValidPreps"))

	_, err = m.PReps(context.Background(), "all")
	assert.ErrorIs(t, err, ErrUnknownKind)
}
