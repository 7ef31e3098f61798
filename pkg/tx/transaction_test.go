package tx

import (
	"encoding/json"
	"testing"

	"github.com/Klingon-tech/icon-cli/pkg/crypto"
	"github.com/Klingon-tech/icon-cli/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testFrom = types.MustParseAddress("hxbe258ceb872e08851f1f59694dac2558708ece11")
	testTo   = types.MustParseAddress("hx5bfdb090f43a808005ffc27c25b213145e80b7cd")
	testCx   = types.MustParseAddress("cx0000000000000000000000000000000000000000")
)

func TestSerialize_Transfer(t *testing.T) {
	tx, err := NewBuilder(3).
		From(testFrom).
		To(testTo).
		Value(types.LoopFromICX(1)).
		StepLimit(0x12345).
		Timestamp(0x563a6cf330136).
		Nonce(1).
		Build()
	require.NoError(t, err)

	got, err := tx.SigningBytes()
	require.NoError(t, err)
	want := "icx_sendTransaction." +
		"from.hxbe258ceb872e08851f1f59694dac2558708ece11." +
		"nid.0x3." +
		"nonce.0x1." +
		"stepLimit.0x12345." +
		"timestamp.0x563a6cf330136." +
		"to.hx5bfdb090f43a808005ffc27c25b213145e80b7cd." +
		"value.0xde0b6b3a7640000." +
		"version.0x3"
	assert.Equal(t, want, string(got))
}

func TestSerialize_NestedAndEscaped(t *testing.T) {
	params := map[string]any{
		"data": map[string]any{
			"method": "transfer",
			"params": map[string]any{
				"list":  []any{"a.b", map[string]any{"k": "{v}"}},
				"empty": nil,
				"path":  `c:\x[0]`,
			},
		},
		"dataType": "call",
	}
	got := string(Serialize(params))
	want := `icx_sendTransaction.data.{method.transfer.params.{empty.\0.list.[a\.b.{k.\{v\}}].path.c:\\x\[0\]}}.dataType.call`
	assert.Equal(t, want, got)
}

func TestTransaction_CallParams(t *testing.T) {
	tx, err := NewBuilder(1).
		From(testFrom).
		To(testCx).
		Call("setStake", map[string]any{"value": types.LoopFromICX(2)}).
		Timestamp(1).
		Build()
	require.NoError(t, err)

	p, err := tx.EstimateParams()
	require.NoError(t, err)
	assert.NotContains(t, p, "stepLimit")
	assert.NotContains(t, p, "signature")
	assert.Equal(t, "call", p["dataType"])
	data := p["data"].(map[string]any)
	assert.Equal(t, "setStake", data["method"])
	assert.Equal(t, map[string]any{"value": "0x1bc16d674ec80000"}, data["params"])
}

func TestTransaction_SignAndRecover(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	tx, err := NewBuilder(0x53).
		From(key.Address()).
		To(testTo).
		Value(types.NewAmount(10)).
		StepLimit(DefaultTransferStepLimit).
		Timestamp(1700000000000000).
		Build()
	require.NoError(t, err)
	require.NoError(t, tx.Sign(key))
	require.Len(t, tx.Signature, crypto.SignatureSize)

	h, err := tx.Hash()
	require.NoError(t, err)
	signer, err := crypto.RecoverAddress(h[:], tx.Signature)
	require.NoError(t, err)
	assert.Equal(t, key.Address(), signer)

	raw, err := json.Marshal(tx)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "0x53", decoded["nid"])
	assert.Equal(t, "0x186a0", decoded["stepLimit"])
	assert.NotEmpty(t, decoded["signature"])
}

func TestTransaction_SignWrongKey(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	tx, err := NewBuilder(1).From(testFrom).To(testTo).Build()
	require.NoError(t, err)
	require.ErrorIs(t, tx.Sign(key), ErrSignerMismatch)
}

func TestTransaction_HashIgnoresSignature(t *testing.T) {
	tx, err := NewBuilder(1).From(testFrom).To(testTo).StepLimit(1).Build()
	require.NoError(t, err)
	h1, err := tx.Hash()
	require.NoError(t, err)
	tx.Signature = []byte{1, 2, 3}
	h2, err := tx.Hash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestValidate(t *testing.T) {
	_, err := NewBuilder(0).From(testFrom).To(testTo).Build()
	require.ErrorIs(t, err, ErrMissingNID)

	_, err = NewBuilder(1).From(testCx).To(testTo).Build()
	require.ErrorIs(t, err, ErrContractSender)

	_, err = NewBuilder(1).From(testFrom).To(testCx).Call("", nil).Build()
	require.ErrorIs(t, err, ErrMissingMethod)

	_, err = NewBuilder(1).From(testFrom).To(testTo).
		Deploy(DeployData{ContentType: "application/java", Content: "0x00"}).Build()
	require.ErrorIs(t, err, ErrDeployTarget)
}

func TestDefaultFee(t *testing.T) {
	fee, err := DefaultFee(types.NewAmount(FallbackStepPrice))
	require.NoError(t, err)
	assert.Equal(t, "0.00125", fee.ICXString())
}

func TestCheckValue(t *testing.T) {
	fee := types.LoopFromICX(1)
	balance := types.LoopFromICX(10)

	require.NoError(t, CheckValue(balance, types.LoopFromICX(9), fee))
	assert.ErrorIs(t, CheckValue(balance, types.MustParseICX("9.5"), fee), ErrInsufficientBalance)
	assert.ErrorIs(t, CheckValue(balance, types.Amount{}, fee), ErrInsufficientBalance)

	_, err := Spendable(types.MustParseICX("0.5"), fee)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}
