package tx

import (
	"errors"
	"fmt"
)

// Validation errors.
var (
	ErrMissingFrom     = errors.New("transaction has no sender")
	ErrContractSender  = errors.New("sender must be an hx address")
	ErrMissingNID      = errors.New("transaction has no network id")
	ErrMissingMethod   = errors.New("call has no method")
	ErrMissingContent  = errors.New("deploy has no content")
	ErrDeployTarget    = errors.New("deploy target must be a cx address")
	ErrSignerMismatch  = errors.New("signer does not own sender address")
	ErrUnknownDataType = errors.New("unknown data type")
)

// Validate checks transaction structure.
func (t *Transaction) Validate() error {
	if t.From.IsZero() {
		return ErrMissingFrom
	}
	if t.From.IsContract() {
		return fmt.Errorf("%w: %s", ErrContractSender, t.From)
	}
	if t.NID == 0 {
		return ErrMissingNID
	}
	switch t.DataType {
	case DataNone, DataMessage:
	case DataCall:
		d, ok := t.Data.(CallData)
		if !ok || d.Method == "" {
			return ErrMissingMethod
		}
	case DataDeploy:
		d, ok := t.Data.(DeployData)
		if !ok || d.Content == "" {
			return ErrMissingContent
		}
		if !t.To.IsContract() {
			return fmt.Errorf("%w: %s", ErrDeployTarget, t.To)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDataType, t.DataType)
	}
	return nil
}
