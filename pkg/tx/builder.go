package tx

import (
	"github.com/Klingon-tech/icon-cli/pkg/types"
)

// Builder constructs transactions incrementally.
type Builder struct {
	tx *Transaction
}

// NewBuilder creates a builder for network nid.
func NewBuilder(nid uint64) *Builder {
	return &Builder{tx: &Transaction{NID: nid}}
}

// From sets the sender.
func (b *Builder) From(addr types.Address) *Builder {
	b.tx.From = addr
	return b
}

// To sets the recipient account or contract.
func (b *Builder) To(addr types.Address) *Builder {
	b.tx.To = addr
	return b
}

// Value sets the transferred amount.
func (b *Builder) Value(v types.Amount) *Builder {
	b.tx.Value = &v
	return b
}

// StepLimit sets the step limit.
func (b *Builder) StepLimit(limit uint64) *Builder {
	b.tx.StepLimit = limit
	return b
}

// Timestamp sets the timestamp in microseconds.
func (b *Builder) Timestamp(us int64) *Builder {
	b.tx.Timestamp = us
	return b
}

// Nonce sets the optional nonce.
func (b *Builder) Nonce(n uint64) *Builder {
	b.tx.Nonce = n
	return b
}

// Call makes the transaction a contract call.
func (b *Builder) Call(method string, params any) *Builder {
	b.tx.DataType = DataCall
	b.tx.Data = CallData{Method: method, Params: params}
	return b
}

// Deploy makes the transaction a contract install or update.
func (b *Builder) Deploy(d DeployData) *Builder {
	b.tx.DataType = DataDeploy
	b.tx.Data = d
	return b
}

// Message attaches a 0x-prefixed hex message.
func (b *Builder) Message(hexMsg string) *Builder {
	b.tx.DataType = DataMessage
	b.tx.Data = hexMsg
	return b
}

// Build validates and returns the transaction.
func (b *Builder) Build() (*Transaction, error) {
	if err := b.tx.Validate(); err != nil {
		return nil, err
	}
	return b.tx, nil
}
