// Package audit reviews contract deploys waiting for governance approval.
package audit

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Klingon-tech/icon-cli/internal/chain"
	"github.com/Klingon-tech/icon-cli/internal/console"
	klog "github.com/Klingon-tech/icon-cli/internal/log"
	"github.com/Klingon-tech/icon-cli/pkg/crypto"
	"github.com/Klingon-tech/icon-cli/pkg/types"
)

// Action is an operation on a pending deploy.
type Action int

// Actions.
const (
	Accept Action = iota
	Reject
	Download
	Verify
	Status
)

// Actions lists every action in menu order.
var Actions = []Action{Accept, Reject, Status, Download, Verify}

// ErrInvalidAction is returned for an unknown action key.
var ErrInvalidAction = errors.New("invalid action")

// String returns the action name.
func (a Action) String() string {
	switch a {
	case Accept:
		return "accept"
	case Reject:
		return "reject"
	case Download:
		return "download"
	case Verify:
		return "verify"
	case Status:
		return "status"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Key returns the one-letter menu key.
func (a Action) Key() string {
	return a.String()[:1]
}

// ParseAction parses a menu key or action name.
func ParseAction(s string) (Action, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, a := range Actions {
		if s == a.Key() || s == a.String() {
			return a, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidAction, s)
}

// Governance is the subset of the Governance client the auditor needs.
type Governance interface {
	AcceptScore(ctx context.Context, s crypto.Signer, txHash types.Hash) (*chain.TxResult, error)
	RejectScore(ctx context.Context, s crypto.Signer, txHash types.Hash, reason string) (*chain.TxResult, error)
}

// ChainReader reads contract state and transactions.
type ChainReader interface {
	GetScoreStatus(ctx context.Context, addr types.Address, height uint64) (*chain.ScoreStatus, error)
	GetTransactionByHash(ctx context.Context, hash types.Hash) (*chain.TxInfo, error)
}

// LineReader reads a line of user input.
type LineReader interface {
	Line(prompt string) (string, error)
}

// Auditor performs actions on pending deploys.
type Auditor struct {
	gov      Governance
	chain    ChainReader
	signer   func() (crypto.Signer, error)
	input    LineReader
	verifier *Verifier
	network  string
	outDir   string
	out      io.Writer
	log      zerolog.Logger
}

// Config holds the collaborators of an Auditor.
type Config struct {
	Gov      Governance
	Chain    ChainReader
	Signer   func() (crypto.Signer, error)
	Input    LineReader
	Verifier *Verifier
	Network  string
	OutDir   string
	Out      io.Writer
}

// NewAuditor creates an auditor. Signer is only called by Accept and
// Reject.
func NewAuditor(cfg Config) *Auditor {
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}
	outDir := cfg.OutDir
	if outDir == "" {
		outDir = "."
	}
	return &Auditor{
		gov:      cfg.Gov,
		chain:    cfg.Chain,
		signer:   cfg.Signer,
		input:    cfg.Input,
		verifier: cfg.Verifier,
		network:  cfg.Network,
		outDir:   outDir,
		out:      out,
		log:      klog.Audit,
	}
}

// Do runs action on c. It reports whether the menu should continue.
func (a *Auditor) Do(ctx context.Context, action Action, c Contract) (bool, error) {
	a.log.Debug().Str("action", action.String()).Str("contract", c.Address.String()).Msg("Audit action")
	switch action {
	case Accept:
		return false, a.accept(ctx, c)
	case Reject:
		return false, a.reject(ctx, c)
	case Download:
		return true, a.download(ctx, c)
	case Verify:
		return true, a.verify(ctx, c)
	case Status:
		return true, a.status(ctx, c)
	default:
		return false, fmt.Errorf("%w: %s", ErrInvalidAction, action)
	}
}

// pending reports whether deployTx is the deploy awaiting audit for c.
func (a *Auditor) pending(ctx context.Context, c Contract, deployTx types.Hash) (bool, error) {
	st, err := a.chain.GetScoreStatus(ctx, c.Address, chain.Latest)
	if err != nil {
		return false, err
	}
	if st.Next == nil || !strings.EqualFold(st.Next.DeployTxHash, deployTx.String()) {
		fmt.Fprintf(a.out, "Deploy %s of %s is not pending\n", deployTx, c.Address)
		return false, nil
	}
	return true, nil
}

func (a *Auditor) accept(ctx context.Context, c Contract) error {
	deployTx, err := c.DeployTx()
	if err != nil {
		return err
	}
	if ok, err := a.pending(ctx, c, deployTx); err != nil || !ok {
		return err
	}
	s, err := a.signer()
	if err != nil {
		return err
	}
	_, err = a.gov.AcceptScore(ctx, s, deployTx)
	return err
}

func (a *Auditor) reject(ctx context.Context, c Contract) error {
	deployTx, err := c.DeployTx()
	if err != nil {
		return err
	}
	reason, err := a.input.Line("Reason: ")
	if err != nil {
		return err
	}
	if reason == "" {
		return nil
	}
	if ok, err := a.pending(ctx, c, deployTx); err != nil || !ok {
		return err
	}
	fmt.Fprintf(a.out, "\"reason\": %q\n", reason)
	s, err := a.signer()
	if err != nil {
		return err
	}
	_, err = a.gov.RejectScore(ctx, s, deployTx, reason)
	return err
}

// download writes the deploy archive as <address>_<version>.zip.
func (a *Auditor) download(ctx context.Context, c Contract) error {
	deployTx, err := c.DeployTx()
	if err != nil {
		return err
	}
	info, err := a.chain.GetTransactionByHash(ctx, deployTx)
	if err != nil {
		return fmt.Errorf("failed to get transaction data: %w", err)
	}
	content, ok := info.DeployContent()
	if !ok {
		return fmt.Errorf("transaction %s is not a deploy", deployTx)
	}
	data, err := hex.DecodeString(strings.TrimPrefix(content, "0x"))
	if err != nil {
		return fmt.Errorf("decode content: %w", err)
	}
	name := filepath.Join(a.outDir, fmt.Sprintf("%s_%s.zip", c.Address, c.Version))
	if err := os.WriteFile(name, data, 0644); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Downloaded", name)
	return nil
}

func (a *Auditor) verify(ctx context.Context, c Contract) error {
	resp, err := a.verifier.Verify(ctx, c.CreateTx, a.network)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "status=%d, content=%s\n", resp.Status, resp.Body)
	return nil
}

func (a *Auditor) status(ctx context.Context, c Contract) error {
	st, err := a.chain.GetScoreStatus(ctx, c.Address, chain.Latest)
	if err != nil {
		return err
	}
	return console.PrintResponse(a.out, "status", st)
}
