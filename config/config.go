// Package config handles application configuration.
//
// Configuration is split into two categories:
//   - Network table: built-in endpoints, network ids and tracker URLs
//   - Client settings: per-user runtime configuration (datadir, keystore, logging)
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/Klingon-tech/icon-cli/pkg/types"
)

// RawNID is the network id assumed for an endpoint that is not in the table.
const RawNID = 0x3

// Network describes a known ICON network.
type Network struct {
	Name     string
	Endpoint string
	NID      uint64
	// Tracker is the block explorer base URL, empty when the network has none.
	Tracker string
	// AuditEncoding is how governance reports the audit flag: "exact" or "bitmask".
	AuditEncoding string
	// IgnoreList enables the audit ignore list file.
	IgnoreList bool
}

var networks = map[string]Network{
	"mainnet": {
		Name:          "mainnet",
		Endpoint:      "https://ctz.solidwallet.io",
		NID:           0x1,
		Tracker:       "https://tracker.icon.foundation",
		AuditEncoding: "exact",
		IgnoreList:    true,
	},
	"sejong": {
		Name:          "sejong",
		Endpoint:      "https://sejong.net.solidwallet.io",
		NID:           0x53,
		Tracker:       "https://sejong.tracker.solidwallet.io",
		AuditEncoding: "exact",
	},
	"lisbon": {
		Name:          "lisbon",
		Endpoint:      "https://lisbon.net.solidwallet.io",
		NID:           0x2,
		Tracker:       "https://tracker.lisbon.icon.community",
		AuditEncoding: "bitmask",
	},
	"berlin": {
		Name:          "berlin",
		Endpoint:      "https://berlin.net.solidwallet.io",
		NID:           0x7,
		Tracker:       "https://tracker.berlin.icon.community",
		AuditEncoding: "bitmask",
	},
	"btpnet": {
		Name:          "btpnet",
		Endpoint:      "https://btp.net.solidwallet.io",
		NID:           0x42,
		AuditEncoding: "exact",
	},
	"gochain": {
		Name:          "gochain",
		Endpoint:      "http://localhost:9082",
		NID:           RawNID,
		AuditEncoding: "exact",
	},
}

// Networks returns the names of the known networks, sorted.
func Networks() []string {
	names := make([]string, 0, len(networks))
	for name := range networks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupNetwork returns the table entry for a network name.
func LookupNetwork(name string) (Network, bool) {
	n, ok := networks[strings.ToLower(strings.TrimSpace(name))]
	return n, ok
}

// ResolveNetwork maps a network name or a raw endpoint URL to a Network.
// Unknown values are treated as a raw URL on network id RawNID.
func ResolveNetwork(nameOrURL string) (Network, error) {
	if n, ok := LookupNetwork(nameOrURL); ok {
		return n, nil
	}
	u, err := url.Parse(nameOrURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Network{}, fmt.Errorf("unknown network %q (known: %s)", nameOrURL, strings.Join(Networks(), ", "))
	}
	return Network{
		Name:          "custom",
		Endpoint:      strings.TrimRight(nameOrURL, "/"),
		NID:           RawNID,
		AuditEncoding: "exact",
	}, nil
}

// =============================================================================
// Client Configuration (runtime, per-user settings)
// =============================================================================

// Config holds client runtime configuration.
type Config struct {
	// Core
	Network string `conf:"network"` // network name or raw endpoint URL
	NID     uint64 `conf:"nid"`     // overrides the network id when non-zero
	DataDir string `conf:"datadir"`

	// Wallet
	Keystore string `conf:"keystore"`
	Password string `conf:"password"`

	// Behaviour
	Yes   bool `conf:"yes"`   // skip confirmation prompts
	Cache bool `conf:"cache"` // persist bisect probes under DataDir

	// Auto-stake balance kept liquid, in ICX.
	Reserve string `conf:"stake.reserve"`

	// Contract verifier service.
	VerifierURL string `conf:"verifier.url"`

	// Logging
	Log LogConfig
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// Resolved returns the effective network, applying the NID override.
func (c *Config) Resolved() (Network, error) {
	n, err := ResolveNetwork(c.Network)
	if err != nil {
		return Network{}, err
	}
	if c.NID != 0 {
		n.NID = c.NID
	}
	return n, nil
}

// ReserveAmount parses the auto-stake reserve.
func (c *Config) ReserveAmount() (types.Amount, error) {
	if c.Reserve == "" {
		return types.Amount{}, nil
	}
	return types.ParseICX(c.Reserve)
}

// =============================================================================
// Directory helpers
// =============================================================================

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.icon-cli
//	macOS:   ~/Library/Application Support/IconCLI
//	Windows: %APPDATA%\IconCLI
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".icon-cli"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "IconCLI")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "IconCLI")
		}
		return filepath.Join(home, "AppData", "Roaming", "IconCLI")
	default:
		return filepath.Join(home, ".icon-cli")
	}
}

// CacheDir returns the probe cache database directory.
func (c *Config) CacheDir() string {
	return filepath.Join(c.DataDir, "cache")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "icon-cli.conf")
}
