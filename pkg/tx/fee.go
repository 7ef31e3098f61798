package tx

import (
	"errors"
	"fmt"

	"github.com/Klingon-tech/icon-cli/pkg/types"
)

// ErrInsufficientBalance means a balance cannot cover an amount plus its fee.
var ErrInsufficientBalance = errors.New("insufficient balance")

// Step budget constants.
const (
	// StepMargin is added to an estimated step count before signing.
	StepMargin = 100_000
	// DefaultTransferStepLimit is the step limit of a plain value transfer.
	DefaultTransferStepLimit = 100_000
	// FallbackStepPrice is used for fee display when the step price cannot
	// be queried.
	FallbackStepPrice = 12_500_000_000
)

// DefaultFee returns the fee of a default-sized transaction at stepPrice.
func DefaultFee(stepPrice types.Amount) (types.Amount, error) {
	return stepPrice.MulUint64(DefaultTransferStepLimit)
}

// MaxFee returns the largest fee a transaction with the given step limit
// can be charged.
func MaxFee(stepPrice types.Amount, stepLimit uint64) (types.Amount, error) {
	return stepPrice.MulUint64(stepLimit)
}

// Spendable returns the largest value a transfer from balance can carry
// after paying fee.
func Spendable(balance, fee types.Amount) (types.Amount, error) {
	spendable, err := balance.Sub(fee)
	if err != nil {
		return types.Amount{}, fmt.Errorf("%w: balance %s ICX is below the fee %s ICX",
			ErrInsufficientBalance, balance.ICXString(), fee.ICXString())
	}
	return spendable, nil
}

// CheckValue reports whether value is positive and fits within balance
// after paying fee.
func CheckValue(balance, value, fee types.Amount) error {
	limit, err := Spendable(balance, fee)
	if err != nil {
		return err
	}
	if value.IsZero() || value.Cmp(limit) > 0 {
		return fmt.Errorf("%w: value should be 0 < (value) <= %s ICX", ErrInsufficientBalance, limit.ICXString())
	}
	return nil
}
