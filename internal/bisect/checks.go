package bisect

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Klingon-tech/icon-cli/internal/chain"
	"github.com/Klingon-tech/icon-cli/internal/iiss"
	"github.com/Klingon-tech/icon-cli/pkg/types"
)

// ErrUnknownCheck is returned for a check name not in the catalogue.
var ErrUnknownCheck = errors.New("unknown check type")

// Check names.
const (
	CheckPRepDelegated = "prep.delegated"
	CheckPRepBonded    = "prep.bonded"
	CheckPRepPublicKey = "prep.publickey"
	CheckPRepGrade     = "prep.grade"
	CheckBalance       = "balance"
	CheckScoreOwner    = "score_owner"
)

// Checks lists the catalogue in display order.
var Checks = []string{
	CheckPRepDelegated,
	CheckPRepBonded,
	CheckPRepPublicKey,
	CheckPRepGrade,
	CheckBalance,
	CheckScoreOwner,
}

// PRepSource reads P-Rep state at a height. *iiss.Client implements it.
type PRepSource interface {
	GetPRep(ctx context.Context, addr types.Address, height uint64) (*iiss.PRep, error)
}

// StateSource reads account state at a height. *chain.Client implements
// it.
type StateSource interface {
	GetBalance(ctx context.Context, addr types.Address, height uint64) (types.Amount, error)
	GetScoreStatus(ctx context.Context, addr types.Address, height uint64) (*chain.ScoreStatus, error)
}

// Sources are the readers checks observe.
type Sources struct {
	PReps PRepSource
	State StateSource
}

// NewCheck binds the named check to addr.
func NewCheck(name string, src Sources, addr types.Address) (CheckFunc, error) {
	if strings.HasPrefix(name, "prep.") {
		field, err := prepField(name)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context, height uint64) (string, error) {
			p, err := src.PReps.GetPRep(ctx, addr, height)
			if err != nil {
				return "", err
			}
			return field(p), nil
		}, nil
	}

	switch name {
	case CheckBalance:
		return func(ctx context.Context, height uint64) (string, error) {
			bal, err := src.State.GetBalance(ctx, addr, height)
			if err != nil {
				return "", err
			}
			return bal.String(), nil
		}, nil
	case CheckScoreOwner:
		return func(ctx context.Context, height uint64) (string, error) {
			st, err := src.State.GetScoreStatus(ctx, addr, height)
			if err != nil {
				return "", err
			}
			return st.Owner.String(), nil
		}, nil
	}
	return nil, unknownCheck(name)
}

func prepField(name string) (func(*iiss.PRep) string, error) {
	switch name {
	case CheckPRepDelegated:
		return func(p *iiss.PRep) string { return p.Delegated.ICXString() }, nil
	case CheckPRepBonded:
		return func(p *iiss.PRep) string { return p.Bonded.String() }, nil
	case CheckPRepPublicKey:
		return func(p *iiss.PRep) string {
			if p.HasPublicKey == nil {
				return "none"
			}
			return p.HasPublicKey.String()
		}, nil
	case CheckPRepGrade:
		return func(p *iiss.PRep) string { return p.Grade.String() }, nil
	}
	return nil, unknownCheck(name)
}

func unknownCheck(name string) error {
	return fmt.Errorf("%w: %q (available: %s)", ErrUnknownCheck, name, strings.Join(Checks, ", "))
}
