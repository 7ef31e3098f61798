package iiss

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Klingon-tech/icon-cli/internal/chain"
	"github.com/Klingon-tech/icon-cli/internal/clock"
	"github.com/Klingon-tech/icon-cli/internal/delegation"
	klog "github.com/Klingon-tech/icon-cli/internal/log"
	"github.com/Klingon-tech/icon-cli/internal/prompt"
	"github.com/Klingon-tech/icon-cli/internal/retry"
	"github.com/Klingon-tech/icon-cli/pkg/crypto"
	"github.com/Klingon-tech/icon-cli/pkg/types"
)

// Delegation status retry budget used after a stake change.
const (
	PreconditionAttempts = 3
	PreconditionDelay    = 3 * time.Second
)

// DefaultReserve is the balance left unstaked by the auto-stake cycle.
var DefaultReserve = types.LoopFromICX(1)

// BalanceReader returns account balances. *chain.Client implements it.
type BalanceReader interface {
	GetBalance(ctx context.Context, addr types.Address, height uint64) (types.Amount, error)
}

// AutoReport lists the transactions an auto-stake run executed. Zero
// hashes mark skipped steps.
type AutoReport struct {
	Claim      types.Hash
	Stake      types.Hash
	Delegation types.Hash
}

// AutoStaker claims rewards, stakes the free balance and delegates the
// new voting power to the first existing beneficiary.
type AutoStaker struct {
	client       *Client
	balances     BalanceReader
	confirm      prompt.Confirmer
	clock        clock.Clock
	reserve      types.Amount
	precondition retry.Policy
	log          zerolog.Logger
}

// AutoOption configures an AutoStaker.
type AutoOption func(*AutoStaker)

// WithReserve sets the balance kept liquid.
func WithReserve(a types.Amount) AutoOption {
	return func(s *AutoStaker) { s.reserve = a }
}

// WithAutoClock sets the clock used for precondition retries.
func WithAutoClock(c clock.Clock) AutoOption {
	return func(s *AutoStaker) { s.clock = c }
}

// WithPreconditionPolicy overrides the delegation status retry budget.
func WithPreconditionPolicy(p retry.Policy) AutoOption {
	return func(s *AutoStaker) { s.precondition = p }
}

// NewAutoStaker creates an auto-stake runner. Every transaction is gated
// by confirm.
func NewAutoStaker(c *Client, balances BalanceReader, confirm prompt.Confirmer, opts ...AutoOption) *AutoStaker {
	s := &AutoStaker{
		client:       c,
		balances:     balances,
		confirm:      confirm,
		clock:        clock.System{},
		reserve:      DefaultReserve,
		precondition: retry.Policy{Attempts: PreconditionAttempts, Delay: PreconditionDelay},
		log:          klog.Stake,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes one cycle for the signer's account. A declined
// confirmation skips that step.
func (s *AutoStaker) Run(ctx context.Context, signer crypto.Signer) (*AutoReport, error) {
	addr := signer.Address()
	report := &AutoReport{}

	if err := s.claim(ctx, signer, report); err != nil {
		return report, err
	}

	staked, err := s.stake(ctx, signer, report)
	if err != nil {
		return report, err
	}
	if !staked {
		d, err := s.client.GetDelegation(ctx, addr)
		if err != nil {
			return report, err
		}
		if d.VotingPower.IsZero() {
			s.log.Info().Str("address", addr.String()).Msg("Nothing to stake or delegate")
			return report, nil
		}
	}

	if err := s.delegate(ctx, signer, report); err != nil {
		return report, err
	}
	return report, nil
}

func (s *AutoStaker) claim(ctx context.Context, signer crypto.Signer, report *AutoReport) error {
	is, err := s.client.QueryIScore(ctx, signer.Address())
	if err != nil {
		return err
	}
	if is.EstimatedICX.IsZero() {
		s.log.Debug().Msg("No IScore to claim")
		return nil
	}
	ok, err := s.confirm.Confirm(fmt.Sprintf("Claim %s ICX of rewards?", is.EstimatedICX.ICXString()))
	if err != nil || !ok {
		return err
	}
	res, err := s.client.ClaimIScore(ctx, signer)
	if err != nil {
		return err
	}
	report.Claim = res.TxHash
	return nil
}

// stake moves the balance above the reserve into stake. It reports whether
// a stake transaction was executed.
func (s *AutoStaker) stake(ctx context.Context, signer crypto.Signer, report *AutoReport) (bool, error) {
	addr := signer.Address()
	balance, err := s.balances.GetBalance(ctx, addr, chain.Latest)
	if err != nil {
		return false, err
	}
	increase, err := balance.Sub(s.reserve)
	if err != nil || increase.IsZero() {
		s.log.Info().Str("balance", balance.ICXString()).Str("reserve", s.reserve.ICXString()).Msg("No free balance to stake")
		return false, nil
	}

	current, err := s.client.GetStake(ctx, addr)
	if err != nil {
		return false, err
	}
	target, err := current.Stake.Add(increase)
	if err != nil {
		return false, err
	}
	ok, err := s.confirm.Confirm(fmt.Sprintf("Increase stake by %s ICX to %s ICX?", increase.ICXString(), target.ICXString()))
	if err != nil || !ok {
		return false, err
	}
	res, err := s.client.SetStake(ctx, signer, target)
	if err != nil {
		return false, err
	}
	report.Stake = res.TxHash
	return true, nil
}

func (s *AutoStaker) delegate(ctx context.Context, signer crypto.Signer, report *AutoReport) error {
	addr := signer.Address()
	var next *delegation.Set
	var vp types.Amount
	err := retry.Do(ctx, s.clock, s.precondition, func(attempt int) error {
		d, err := s.client.GetDelegation(ctx, addr)
		if err != nil {
			return retry.Permanent(err)
		}
		set, err := d.Set()
		if err != nil {
			return retry.Permanent(err)
		}
		next, err = delegation.Rebalance(set, d.VotingPower)
		if err != nil {
			s.log.Debug().Int("attempt", attempt).Err(err).Msg("Delegation precondition not met")
			return err
		}
		vp = d.VotingPower
		return nil
	})
	if err != nil {
		if errors.Is(err, retry.ErrExhausted) {
			return fmt.Errorf("delegation status: %w", err)
		}
		return err
	}

	authorized, err := s.client.Authorized(ctx, addr)
	if err != nil {
		return err
	}
	if err := next.CheckWithin(authorized); err != nil {
		return err
	}

	first := next.Entries()[0]
	ok, err := s.confirm.Confirm(fmt.Sprintf("Delegate %s ICX more to %s?", vp.ICXString(), first.Address))
	if err != nil || !ok {
		return err
	}
	res, err := s.client.SetDelegation(ctx, signer, next)
	if err != nil {
		return err
	}
	report.Delegation = res.TxHash
	return nil
}
