// Package txhandler submits signed transactions and waits for their results.
package txhandler

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Klingon-tech/icon-cli/internal/chain"
	"github.com/Klingon-tech/icon-cli/internal/clock"
	"github.com/Klingon-tech/icon-cli/internal/console"
	klog "github.com/Klingon-tech/icon-cli/internal/log"
	"github.com/Klingon-tech/icon-cli/internal/retry"
	"github.com/Klingon-tech/icon-cli/pkg/crypto"
	"github.com/Klingon-tech/icon-cli/pkg/tx"
	"github.com/Klingon-tech/icon-cli/pkg/types"
)

// Result polling budget.
const (
	PollAttempts = 5
	PollDelay    = 2 * time.Second
)

// Errors.
var (
	// ErrEstimateFailed means the node could not estimate the step count.
	ErrEstimateFailed = errors.New("step estimation failed")
	// ErrTxFailed means the transaction was executed with a failure status.
	ErrTxFailed = errors.New("transaction failed")
	// ErrResultUnavailable means no final result was seen within the
	// polling budget.
	ErrResultUnavailable = errors.New("transaction result unavailable")
)

// deployAddress is the target of a new contract install.
var deployAddress = types.NewContract([types.AddressSize]byte{})

// ChainClient is the subset of the chain API the handler needs.
type ChainClient interface {
	SendTransaction(ctx context.Context, t *tx.Transaction) (types.Hash, error)
	EstimateStep(ctx context.Context, t *tx.Transaction) (uint64, error)
	GetTransactionResult(ctx context.Context, hash types.Hash) (*chain.TxResult, error)
}

// Handler submits transactions to one network. It is bound to a single
// client and network id for its lifetime.
type Handler struct {
	client  ChainClient
	nid     uint64
	clock   clock.Clock
	poll    retry.Policy
	out     io.Writer
	tracker string
	log     zerolog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithClock sets the clock used for timestamps and poll delays.
func WithClock(c clock.Clock) Option {
	return func(h *Handler) { h.clock = c }
}

// WithPollPolicy overrides the result polling budget.
func WithPollPolicy(p retry.Policy) Option {
	return func(h *Handler) { h.poll = p }
}

// WithOutput sets where verbose results are printed.
func WithOutput(w io.Writer) Option {
	return func(h *Handler) { h.out = w }
}

// WithTrackerURL sets the block explorer base URL for verbose output.
func WithTrackerURL(url string) Option {
	return func(h *Handler) { h.tracker = strings.TrimSuffix(url, "/") }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(h *Handler) { h.log = l }
}

// New creates a handler for network nid.
func New(client ChainClient, nid uint64, opts ...Option) *Handler {
	h := &Handler{
		client: client,
		nid:    nid,
		clock:  clock.System{},
		poll:   retry.Policy{Attempts: PollAttempts, Delay: PollDelay},
		out:    os.Stdout,
		log:    klog.Tx,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// NID returns the network id transactions are signed for.
func (h *Handler) NID() uint64 {
	return h.nid
}

// CallRequest describes a contract call. A zero StepLimit is replaced by
// the node's estimate plus tx.StepMargin.
type CallRequest struct {
	To        types.Address
	Method    string
	Params    any
	Value     *types.Amount
	StepLimit uint64
}

// DeployRequest describes a contract install (zero To) or update.
type DeployRequest struct {
	To          types.Address
	ContentType string
	Content     []byte
	Params      any
	StepLimit   uint64
}

// SubmitCall signs and sends a contract call.
func (h *Handler) SubmitCall(ctx context.Context, s crypto.Signer, req CallRequest) (types.Hash, error) {
	b := h.builder(s).To(req.To).Call(req.Method, req.Params)
	if req.Value != nil {
		b.Value(*req.Value)
	}
	return h.submit(ctx, s, b, req.StepLimit)
}

// SubmitTransfer signs and sends a value transfer. A zero stepLimit means
// tx.DefaultTransferStepLimit.
func (h *Handler) SubmitTransfer(ctx context.Context, s crypto.Signer, to types.Address, amount types.Amount, stepLimit uint64) (types.Hash, error) {
	if stepLimit == 0 {
		stepLimit = tx.DefaultTransferStepLimit
	}
	return h.submit(ctx, s, h.builder(s).To(to).Value(amount), stepLimit)
}

// SubmitDeploy signs and sends a contract install or update.
func (h *Handler) SubmitDeploy(ctx context.Context, s crypto.Signer, req DeployRequest) (types.Hash, error) {
	to := req.To
	if to.IsZero() {
		to = deployAddress
	}
	b := h.builder(s).To(to).Deploy(tx.DeployData{
		ContentType: req.ContentType,
		Content:     "0x" + hex.EncodeToString(req.Content),
		Params:      req.Params,
	})
	return h.submit(ctx, s, b, req.StepLimit)
}

func (h *Handler) builder(s crypto.Signer) *tx.Builder {
	return tx.NewBuilder(h.nid).From(s.Address()).Timestamp(h.clock.Now().UnixMicro())
}

func (h *Handler) submit(ctx context.Context, s crypto.Signer, b *tx.Builder, stepLimit uint64) (types.Hash, error) {
	t, err := b.Build()
	if err != nil {
		return types.Hash{}, err
	}
	if stepLimit == 0 {
		steps, err := h.client.EstimateStep(ctx, t)
		if err != nil {
			return types.Hash{}, fmt.Errorf("%w: %w", ErrEstimateFailed, err)
		}
		stepLimit = steps + tx.StepMargin
		h.log.Debug().Uint64("estimate", steps).Uint64("step_limit", stepLimit).Msg("Estimated steps")
	}
	t.StepLimit = stepLimit
	if err := t.Sign(s); err != nil {
		return types.Hash{}, err
	}
	hash, err := h.client.SendTransaction(ctx, t)
	if err != nil {
		return types.Hash{}, err
	}
	h.log.Info().Str("tx", hash.String()).Str("to", t.To.String()).Uint64("step_limit", stepLimit).Msg("Transaction sent")
	return hash, nil
}

// AwaitResult polls for the result of hash. Errors from the node, pending
// included, are retried within the poll budget; running out of attempts
// returns ErrResultUnavailable. A failed transaction returns ErrTxFailed
// together with its result. When verbose, the result is printed, and the
// tracker link too on success.
func (h *Handler) AwaitResult(ctx context.Context, hash types.Hash, verbose bool) (*chain.TxResult, error) {
	var res *chain.TxResult
	err := retry.Do(ctx, h.clock, h.poll, func(attempt int) error {
		r, err := h.client.GetTransactionResult(ctx, hash)
		if err != nil {
			h.log.Debug().Str("tx", hash.String()).Int("attempt", attempt).Err(err).Msg("Result not ready")
			return err
		}
		res = r
		if !r.Succeeded() {
			msg := "unknown failure"
			if r.Failure != nil {
				msg = r.Failure.Message
			}
			return retry.Permanent(fmt.Errorf("%w: %s: %s", ErrTxFailed, hash, msg))
		}
		return nil
	})
	switch {
	case errors.Is(err, retry.ErrExhausted):
		return nil, fmt.Errorf("%w: %s: %w", ErrResultUnavailable, hash, err)
	case err != nil:
		if verbose && res != nil {
			if perr := console.PrintResponse(h.out, "Result", res.Raw); perr != nil {
				h.log.Warn().Err(perr).Msg("Print failed result")
			}
		}
		return res, err
	}

	if verbose {
		if err := console.PrintResponse(h.out, "Result", res.Raw); err != nil {
			return res, err
		}
		if url := h.TrackerURL(hash); url != "" {
			fmt.Fprintf(h.out, "Tracker: %s\n", url)
		}
	}
	return res, nil
}

// TrackerURL returns the explorer link of a transaction, or "" when the
// network has no known tracker.
func (h *Handler) TrackerURL(hash types.Hash) string {
	if h.tracker == "" {
		return ""
	}
	return h.tracker + "/transaction/" + hash.String()
}
