package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Klingon-tech/icon-cli/config"
	klog "github.com/Klingon-tech/icon-cli/internal/log"
	"github.com/Klingon-tech/icon-cli/pkg/types"
)

// envPrefix is the prefix of configuration keys inside the environment.
const envPrefix = "ICON"

// rootConfiguration holds the global flags and, once resolved, the app.
type rootConfiguration struct {
	env *env

	DataDir  string
	Network  string
	NID      string
	Keystore string
	Password string
	Yes      bool
	Cache    bool
	LogLevel string
	LogFile  string
	LogJSON  bool

	app *app
}

func newRootCmd(e *env) (*cobra.Command, *rootConfiguration) {
	root := &rootConfiguration{env: e}
	cmd := &cobra.Command{
		Use:           "icon-cli",
		Short:         "Command-line client for ICON networks",
		Long:          `icon-cli queries accounts, staking and governance state and sends signed transactions to an ICON node.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return root.initialize(cmd)
		},
	}
	cmd.SetIn(e.in)
	cmd.SetOut(e.out)

	f := cmd.PersistentFlags()
	f.StringVar(&root.DataDir, "datadir", "", "data directory (default "+config.DefaultDataDir()+")")
	f.StringVarP(&root.Network, "network", "e", "", "network name ("+strings.Join(config.Networks(), ", ")+") or endpoint URL")
	f.StringVar(&root.NID, "nid", "", "network id override, e.g. 0x3")
	f.StringVarP(&root.Keystore, "keystore", "k", "", "keystore file for creating transactions")
	f.StringVarP(&root.Password, "password", "p", "", "password for the keystore file")
	f.BoolVarP(&root.Yes, "yes", "y", false, "answer yes to every confirmation")
	f.BoolVar(&root.Cache, "cache", false, "persist bisect probes under the data directory")
	f.StringVar(&root.LogLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	f.StringVar(&root.LogFile, "log-file", "", "also write JSON logs to this file")
	f.BoolVar(&root.LogJSON, "log-json", false, "JSON log output")

	cmd.AddCommand(
		newBalanceCmd(root),
		newTransferCmd(root),
		newIScoreCmd(root),
		newStakeCmd(root),
		newDelegationCmd(root),
		newPRepCmd(root),
		newInfoCmd(root),
		newGovCmd(root),
		newAuditCmd(root),
		newInspectCmd(root),
		newTokenCmd(root),
		newTxCmd(root),
		newSICXCmd(root),
		newCacheCmd(root),
	)
	return cmd, root
}

// initialize resolves flags, environment and config file into the app.
// Precedence: flag > environment > config file > defaults.
func (r *rootConfiguration) initialize(cmd *cobra.Command) error {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := bindFlags(cmd, v); err != nil {
		return fmt.Errorf("bind flags failed: %w", err)
	}

	cfg, err := config.LoadFromFile(r.DataDir)
	if err != nil {
		return err
	}
	if err := r.apply(cmd.Flags(), cfg); err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := klog.Init(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}

	r.app, err = newApp(cfg, r.env)
	return err
}

// apply copies the flags that were set over cfg.
func (r *rootConfiguration) apply(fs *pflag.FlagSet, cfg *config.Config) error {
	if fs.Changed("network") {
		cfg.Network = r.Network
	}
	if fs.Changed("nid") {
		nid, err := types.ParseHexUint64(r.NID)
		if err != nil {
			return fmt.Errorf("--nid: %w", err)
		}
		cfg.NID = nid
	}
	if fs.Changed("keystore") {
		cfg.Keystore = r.Keystore
	}
	if fs.Changed("password") {
		cfg.Password = r.Password
	}
	if fs.Changed("yes") {
		cfg.Yes = r.Yes
	}
	if fs.Changed("cache") {
		cfg.Cache = r.Cache
	}
	if fs.Changed("log-level") {
		cfg.Log.Level = r.LogLevel
	}
	if fs.Changed("log-file") {
		cfg.Log.File = r.LogFile
	}
	if fs.Changed("log-json") {
		cfg.Log.JSON = r.LogJSON
	}
	return nil
}

func (r *rootConfiguration) close() {
	if r.app != nil {
		r.app.close()
		r.app = nil
	}
}

// bindFlags applies environment values to every flag the command line did
// not set. ICON_LOG_LEVEL sets --log-level.
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var bindFlagErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if bindFlagErr != nil || f.Changed || !v.IsSet(f.Name) {
			return
		}
		if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name))); err != nil {
			bindFlagErr = fmt.Errorf("could not set value to flag %q: %w", f.Name, err)
		}
	})
	return bindFlagErr
}

// execute runs the command line and releases the app even when the command
// fails.
func execute(e *env, args ...string) error {
	cmd, root := newRootCmd(e)
	defer root.close()
	if args != nil {
		cmd.SetArgs(args)
	}
	return cmd.Execute()
}
