package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Klingon-tech/icon-cli/config"
	"github.com/Klingon-tech/icon-cli/internal/audit"
	"github.com/Klingon-tech/icon-cli/internal/chain"
	"github.com/Klingon-tech/icon-cli/internal/clock"
	"github.com/Klingon-tech/icon-cli/internal/gov"
	"github.com/Klingon-tech/icon-cli/internal/iiss"
	klog "github.com/Klingon-tech/icon-cli/internal/log"
	"github.com/Klingon-tech/icon-cli/internal/prompt"
	"github.com/Klingon-tech/icon-cli/internal/storage"
	"github.com/Klingon-tech/icon-cli/internal/txhandler"
	"github.com/Klingon-tech/icon-cli/internal/wallet"
	"github.com/Klingon-tech/icon-cli/pkg/crypto"
	"github.com/Klingon-tech/icon-cli/pkg/types"
)

// env is the process environment a command runs in. Tests replace it.
type env struct {
	in       io.Reader
	out      io.Writer
	clock    clock.Clock
	password wallet.PasswordFunc
}

func defaultEnv() *env {
	return &env{
		in:    os.Stdin,
		out:   os.Stdout,
		clock: clock.System{},
		password: func() ([]byte, error) {
			return prompt.ReadPassword("Keystore password: ")
		},
	}
}

// app is the context shared by every command. It is built once per
// invocation after flags and config are resolved.
type app struct {
	cfg     *config.Config
	net     config.Network
	out     io.Writer
	term    *prompt.Terminal
	confirm prompt.Confirmer
	clock   clock.Clock

	chain   *chain.Client
	handler *txhandler.Handler
	wallet  *wallet.Provider
	gov     *gov.Client
	iiss    *iiss.Client

	db    *storage.PrefixDB
	rawDB storage.DB
}

func newApp(cfg *config.Config, e *env) (*app, error) {
	net, err := cfg.Resolved()
	if err != nil {
		return nil, err
	}
	term := prompt.NewTerminal(e.in, e.out)

	var confirm prompt.Confirmer = term
	if cfg.Yes {
		confirm = prompt.AlwaysYes{}
	}

	password := e.password
	if cfg.Password != "" {
		password = wallet.StaticPassword(cfg.Password)
	}

	client := chain.New(net.Endpoint)
	handler := txhandler.New(client, net.NID,
		txhandler.WithClock(e.clock),
		txhandler.WithOutput(e.out),
		txhandler.WithTrackerURL(net.Tracker),
		txhandler.WithLogger(klog.WithNetwork(klog.Tx, net.NID)),
	)

	klog.Logger.Debug().
		Str("network", net.Name).
		Str("endpoint", net.Endpoint).
		Str("nid", types.HexUint64(net.NID).String()).
		Msg("Connecting")

	return &app{
		cfg:     cfg,
		net:     net,
		out:     e.out,
		term:    term,
		confirm: confirm,
		clock:   e.clock,
		chain:   client,
		handler: handler,
		wallet:  wallet.NewProvider(cfg.Keystore, password),
		gov:     gov.New(client, handler),
		iiss:    iiss.New(client, handler),
	}, nil
}

// address returns the explicit address flag or, failing that, the keystore
// account.
func (a *app) address(flag string) (types.Address, error) {
	if flag != "" {
		return types.ParseAddress(flag)
	}
	if !a.wallet.Configured() {
		return types.Address{}, fmt.Errorf("keystore or address should be specified")
	}
	return a.wallet.Address()
}

func (a *app) signer() (crypto.Signer, error) {
	return a.wallet.Signer()
}

// storage opens the on-disk store on first use. Each network gets its own
// namespace.
func (a *app) storage() (*storage.PrefixDB, error) {
	if a.db != nil {
		return a.db, nil
	}
	var (
		db  storage.DB
		err error
	)
	if a.cfg.Cache {
		db, err = storage.NewBadger(a.cfg.CacheDir())
		if err != nil {
			return nil, fmt.Errorf("open cache: %w", err)
		}
		klog.Storage.Debug().Str("path", a.cfg.CacheDir()).Msg("Cache opened")
	} else {
		db = storage.NewMemory()
	}
	a.rawDB = db
	a.db = storage.NewPrefixDB(db, []byte(fmt.Sprintf("n/%x/", a.net.NID)))
	return a.db, nil
}

// auditEncoding returns how this network reports the audit flag.
func (a *app) auditEncoding() (gov.AuditEncoding, error) {
	return gov.ParseAuditEncoding(a.net.AuditEncoding)
}

// ignoreListPath returns the audit ignore list path, or "" when the network
// does not use one.
func (a *app) ignoreListPath() string {
	if !a.net.IgnoreList {
		return ""
	}
	return filepath.Join(a.cfg.DataDir, audit.IgnoreFile)
}

func (a *app) close() {
	a.wallet.Close()
	if a.rawDB != nil {
		if err := a.rawDB.Close(); err != nil {
			klog.Storage.Warn().Err(err).Msg("Close storage")
		}
	}
}
