package chain

import (
	"encoding/json"

	"github.com/Klingon-tech/icon-cli/pkg/types"
)

// TxResult is the receipt returned by icx_getTransactionResult.
type TxResult struct {
	Status       types.HexUint64 `json:"status"`
	TxHash       types.Hash      `json:"txHash"`
	BlockHeight  types.HexUint64 `json:"blockHeight"`
	StepUsed     types.HexUint64 `json:"stepUsed"`
	StepPrice    types.Amount    `json:"stepPrice"`
	ScoreAddress string          `json:"scoreAddress,omitempty"`
	Failure      *Failure        `json:"failure,omitempty"`
	EventLogs    []EventLog      `json:"eventLogs,omitempty"`

	// Raw is the result exactly as returned by the node.
	Raw json.RawMessage `json:"-"`
}

// Failure describes why a transaction failed.
type Failure struct {
	Code    types.HexUint64 `json:"code"`
	Message string          `json:"message"`
}

// EventLog is one event emitted by a transaction.
type EventLog struct {
	ScoreAddress string   `json:"scoreAddress"`
	Indexed      []string `json:"indexed"`
	Data         []string `json:"data"`
}

// Succeeded reports whether the transaction status is 0x1.
func (r *TxResult) Succeeded() bool {
	return r.Status == 1
}

// UnmarshalJSON decodes the result and keeps the raw form.
func (r *TxResult) UnmarshalJSON(data []byte) error {
	type plain TxResult
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = TxResult(p)
	r.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// TxInfo is the transaction returned by icx_getTransactionByHash.
type TxInfo struct {
	From        types.Address   `json:"from"`
	To          types.Address   `json:"to"`
	Value       *types.Amount   `json:"value,omitempty"`
	TxHash      types.Hash      `json:"txHash"`
	BlockHeight types.HexUint64 `json:"blockHeight"`
	DataType    string          `json:"dataType,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the transaction and keeps the raw form.
func (t *TxInfo) UnmarshalJSON(data []byte) error {
	type plain TxInfo
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*t = TxInfo(p)
	t.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// DeployContent returns the 0x-hex contract archive of a deploy transaction.
func (t *TxInfo) DeployContent() (string, bool) {
	if t.DataType != "deploy" {
		return "", false
	}
	var d struct {
		Content string `json:"content"`
	}
	if json.Unmarshal(t.Data, &d) != nil || d.Content == "" {
		return "", false
	}
	return d.Content, true
}

// ScoreStatus is the result of icx_getScoreStatus.
type ScoreStatus struct {
	Owner    types.Address `json:"owner"`
	Current  *ScoreState   `json:"current,omitempty"`
	Next     *ScoreState   `json:"next,omitempty"`
	Blocked  string        `json:"blocked,omitempty"`
	Disabled string        `json:"disabled,omitempty"`
}

// ScoreState describes a deployed or pending contract code.
type ScoreState struct {
	Status       string `json:"status,omitempty"`
	Type         string `json:"type,omitempty"`
	CodeHash     string `json:"codeHash,omitempty"`
	DeployTxHash string `json:"deployTxHash,omitempty"`
	AuditTxHash  string `json:"auditTxHash,omitempty"`
}
