// Package tx defines the ICON v3 transaction, its signing serialization and
// validation.
package tx

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/Klingon-tech/icon-cli/pkg/crypto"
	"github.com/Klingon-tech/icon-cli/pkg/types"
)

// Version is the only transaction version produced.
const Version = 3

// DataType selects the shape of the transaction data field.
type DataType string

// Data types.
const (
	DataNone    DataType = ""
	DataCall    DataType = "call"
	DataDeploy  DataType = "deploy"
	DataMessage DataType = "message"
)

// CallData is the data of a contract call.
type CallData struct {
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
}

// DeployData is the data of a contract install or update. Content is the
// 0x-prefixed hex encoding of the contract archive.
type DeployData struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
	Params      any    `json:"params,omitempty"`
}

// Transaction is an ICON v3 transaction. Zero StepLimit and Nonce are
// omitted from the wire form.
type Transaction struct {
	From      types.Address
	To        types.Address
	Value     *types.Amount
	StepLimit uint64
	Timestamp int64 // microseconds since epoch
	NID       uint64
	Nonce     uint64
	DataType  DataType
	Data      any
	Signature []byte
}

// params builds the generic wire form. Every leaf is a string or nil so the
// same map serves both JSON encoding and the signing serialization.
func (t *Transaction) params(withStepLimit, withSignature bool) (map[string]any, error) {
	p := map[string]any{
		"version":   types.HexUint64(Version).String(),
		"from":      t.From.String(),
		"to":        t.To.String(),
		"timestamp": types.HexUint64(uint64(t.Timestamp)).String(),
		"nid":       types.HexUint64(t.NID).String(),
	}
	if t.Value != nil {
		p["value"] = t.Value.Hex()
	}
	if withStepLimit && t.StepLimit != 0 {
		p["stepLimit"] = types.HexUint64(t.StepLimit).String()
	}
	if t.Nonce != 0 {
		p["nonce"] = types.HexUint64(t.Nonce).String()
	}
	if t.DataType != DataNone {
		p["dataType"] = string(t.DataType)
		data, err := normalize(t.Data)
		if err != nil {
			return nil, fmt.Errorf("encode %s data: %w", t.DataType, err)
		}
		if data != nil {
			p["data"] = data
		}
	}
	if withSignature && len(t.Signature) > 0 {
		p["signature"] = base64.StdEncoding.EncodeToString(t.Signature)
	}
	return p, nil
}

// Params returns the signed wire form for icx_sendTransaction.
func (t *Transaction) Params() (map[string]any, error) {
	return t.params(true, true)
}

// EstimateParams returns the wire form for debug_estimateStep, which takes
// the transaction without step limit and signature.
func (t *Transaction) EstimateParams() (map[string]any, error) {
	return t.params(false, false)
}

// SigningBytes returns the serialization the signature commits to.
func (t *Transaction) SigningBytes() ([]byte, error) {
	p, err := t.params(true, false)
	if err != nil {
		return nil, err
	}
	return Serialize(p), nil
}

// Hash returns the transaction hash (SHA3-256 of the signing bytes).
func (t *Transaction) Hash() (types.Hash, error) {
	b, err := t.SigningBytes()
	if err != nil {
		return types.Hash{}, err
	}
	return crypto.Hash(b), nil
}

// Sign signs the transaction with s, which must own the From address.
func (t *Transaction) Sign(s crypto.Signer) error {
	if s.Address() != t.From {
		return fmt.Errorf("%w: signer %s, from %s", ErrSignerMismatch, s.Address(), t.From)
	}
	h, err := t.Hash()
	if err != nil {
		return err
	}
	sig, err := s.Sign(h[:])
	if err != nil {
		return fmt.Errorf("sign tx: %w", err)
	}
	t.Signature = sig
	return nil
}

// MarshalJSON encodes the signed wire form.
func (t *Transaction) MarshalJSON() ([]byte, error) {
	p, err := t.Params()
	if err != nil {
		return nil, err
	}
	return json.Marshal(p)
}

// normalize converts arbitrary data into map[string]any / []any / string /
// nil by way of its JSON encoding. Numbers are kept as their literal text.
func normalize(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return stringify(out), nil
}

func stringify(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, e := range x {
			x[k] = stringify(e)
		}
		return x
	case []any:
		for i, e := range x {
			x[i] = stringify(e)
		}
		return x
	case json.Number:
		return x.String()
	case bool:
		if x {
			return "0x1"
		}
		return "0x0"
	default:
		return v
	}
}
