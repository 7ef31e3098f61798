package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/Klingon-tech/icon-cli/internal/chain"
	"github.com/Klingon-tech/icon-cli/internal/prompt"
	"github.com/Klingon-tech/icon-cli/pkg/crypto"
	"github.com/Klingon-tech/icon-cli/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	deployHash = types.Hash{0xab, 0xcd}
	contract   = Contract{
		Address:    types.MustParseAddress("cx88fd7df7ddff82f7cc735c871dc519838cb235bb"),
		Name:       "Sample",
		Version:    "0x2",
		CreateTx:   deployHash.String(),
		CreateDate: "2024-03-01T10:00:00.123",
	}
)

type script []string

func (s *script) Line(string) (string, error) {
	if len(*s) == 0 {
		return "", prompt.ErrNoInput
	}
	l := (*s)[0]
	*s = (*s)[1:]
	return l, nil
}

type govCall struct {
	method string
	hash   types.Hash
	reason string
}

type stubGov struct {
	calls []govCall
}

func (g *stubGov) AcceptScore(_ context.Context, _ crypto.Signer, h types.Hash) (*chain.TxResult, error) {
	g.calls = append(g.calls, govCall{method: "accept", hash: h})
	return &chain.TxResult{Status: 1}, nil
}

func (g *stubGov) RejectScore(_ context.Context, _ crypto.Signer, h types.Hash, reason string) (*chain.TxResult, error) {
	g.calls = append(g.calls, govCall{method: "reject", hash: h, reason: reason})
	return &chain.TxResult{Status: 1}, nil
}

type stubChain struct {
	status *chain.ScoreStatus
	tx     *chain.TxInfo
}

func (c *stubChain) GetScoreStatus(context.Context, types.Address, uint64) (*chain.ScoreStatus, error) {
	return c.status, nil
}

func (c *stubChain) GetTransactionByHash(context.Context, types.Hash) (*chain.TxInfo, error) {
	return c.tx, nil
}

func pendingStatus() *chain.ScoreStatus {
	return &chain.ScoreStatus{
		Owner: types.MustParseAddress("hx5bfdb090f43a808005ffc27c25b213145e80b7cd"),
		Next:  &chain.ScoreState{Status: "pending", DeployTxHash: deployHash.String()},
	}
}

type fixture struct {
	gov     *stubGov
	chain   *stubChain
	out     *bytes.Buffer
	signers int
}

func newAuditor(t *testing.T, f *fixture, input LineReader, verifier *Verifier) *Auditor {
	t.Helper()
	return NewAuditor(Config{
		Gov:   f.gov,
		Chain: f.chain,
		Signer: func() (crypto.Signer, error) {
			f.signers++
			return nil, nil
		},
		Input:    input,
		Verifier: verifier,
		Network:  "mainnet",
		OutDir:   t.TempDir(),
		Out:      f.out,
	})
}

func newFixture() *fixture {
	return &fixture{gov: &stubGov{}, chain: &stubChain{status: pendingStatus()}, out: &bytes.Buffer{}}
}

func TestParseAction(t *testing.T) {
	for _, a := range Actions {
		got, err := ParseAction(a.Key())
		require.NoError(t, err)
		assert.Equal(t, a, got)
		got, err = ParseAction(a.String())
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}
	_, err := ParseAction("x")
	require.ErrorIs(t, err, ErrInvalidAction)
	assert.Equal(t, "Action(9)", Action(9).String())
}

func TestDo_Accept(t *testing.T) {
	f := newFixture()
	more, err := newAuditor(t, f, &script{}, nil).Do(context.Background(), Accept, contract)
	require.NoError(t, err)
	assert.False(t, more)
	assert.Equal(t, []govCall{{method: "accept", hash: deployHash}}, f.gov.calls)
	assert.Equal(t, 1, f.signers)
}

func TestDo_AcceptNotPending(t *testing.T) {
	f := newFixture()
	f.chain.status.Next = nil
	_, err := newAuditor(t, f, &script{}, nil).Do(context.Background(), Accept, contract)
	require.NoError(t, err)
	assert.Empty(t, f.gov.calls)
	assert.Zero(t, f.signers, "the key is not unlocked for a deploy that is not pending")
	assert.Contains(t, f.out.String(), "is not pending")
}

func TestDo_Reject(t *testing.T) {
	f := newFixture()
	_, err := newAuditor(t, f, &script{"uses banned API"}, nil).Do(context.Background(), Reject, contract)
	require.NoError(t, err)
	assert.Equal(t, []govCall{{method: "reject", hash: deployHash, reason: "uses banned API"}}, f.gov.calls)

	f = newFixture()
	_, err = newAuditor(t, f, &script{""}, nil).Do(context.Background(), Reject, contract)
	require.NoError(t, err)
	assert.Empty(t, f.gov.calls, "an empty reason cancels the rejection")
}

func TestDo_Download(t *testing.T) {
	f := newFixture()
	f.chain.tx = &chain.TxInfo{DataType: "deploy", Data: json.RawMessage(`{"contentType":"application/java","content":"0x504b0304"}`)}
	a := newAuditor(t, f, &script{}, nil)

	more, err := a.Do(context.Background(), Download, contract)
	require.NoError(t, err)
	assert.True(t, more)

	data, err := os.ReadFile(filepath.Join(a.outDir, contract.Address.String()+"_0x2.zip"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x50, 0x4b, 0x03, 0x04}, data)
	assert.Contains(t, f.out.String(), "Downloaded")
}

func TestDo_DownloadNotDeploy(t *testing.T) {
	f := newFixture()
	f.chain.tx = &chain.TxInfo{DataType: "call"}
	_, err := newAuditor(t, f, &script{}, nil).Do(context.Background(), Download, contract)
	require.ErrorContains(t, err, "not a deploy")
}

func TestDo_Verify(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"ok":true}`)
	}))
	defer srv.Close()

	f := newFixture()
	more, err := newAuditor(t, f, &script{}, NewVerifier(srv.URL)).Do(context.Background(), Verify, contract)
	require.NoError(t, err)
	assert.True(t, more)
	assert.Equal(t, map[string]string{"deployTxHash": contract.CreateTx, "network": "mainnet"}, got)
	assert.Contains(t, f.out.String(), `status=200, content={"ok":true}`)
}

func TestDo_Status(t *testing.T) {
	f := newFixture()
	more, err := newAuditor(t, f, &script{}, nil).Do(context.Background(), Status, contract)
	require.NoError(t, err)
	assert.True(t, more)
	assert.Contains(t, f.out.String(), "status: {")
	assert.Contains(t, f.out.String(), `"status": "pending"`)
}

func TestMenu(t *testing.T) {
	f := newFixture()
	input := &script{"9", "0", "x", "0", "s", "0", "a", "0"}
	err := newAuditor(t, f, input, nil).Menu(context.Background(), []Contract{contract})
	require.NoError(t, err)

	assert.Equal(t, []govCall{{method: "accept", hash: deployHash}}, f.gov.calls)
	assert.Equal(t, script{"0"}, *input, "accept ends the session")
	out := f.out.String()
	assert.Contains(t, out, "Error: invalid input: 9")
	assert.Contains(t, out, "Error: invalid action")
	assert.Contains(t, out, "[0] 0x2 Sample, "+contract.CreateTx+" - "+contract.Address.String()+" - 2024-03-01T10:00:00\n")
}

func TestMenu_Quit(t *testing.T) {
	f := newFixture()
	require.NoError(t, newAuditor(t, f, &script{"q"}, nil).Menu(context.Background(), []Contract{contract}))
	require.NoError(t, newAuditor(t, f, &script{}, nil).Menu(context.Background(), []Contract{contract}))
	assert.Empty(t, f.gov.calls)
}

func TestExport(t *testing.T) {
	second := contract
	second.Name = "Other"
	second.Version = "0x1"
	second.Address = types.MustParseAddress("cx2609b924e33ef00b648a409245c7ea394c467824")

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, []Contract{contract, second}))
	assert.Equal(t, `{
    "1:0x1:Other": "cx2609b924e33ef00b648a409245c7ea394c467824",
    "0:0x2:Sample": "cx88fd7df7ddff82f7cc735c871dc519838cb235bb"
}
`, buf.String())

	var m map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	assert.Len(t, m, 2)
}

func TestExport_ControlCharacters(t *testing.T) {
	odd := contract
	odd.Name = "Bad\x01Name\t\"q\""

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, []Contract{odd}))
	assert.Contains(t, buf.String(), `"0:0x2:Bad\u0001Name\t\"q\""`)

	var m map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	assert.Equal(t, contract.Address.String(), m["0:0x2:Bad\x01Name\t\"q\""])
}
