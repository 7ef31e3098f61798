package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LoadFile loads client configuration from a .conf file.
// Format: key = value (one per line, # for comments)
func LoadFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse key = value
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("line %d: invalid format (expected key = value)", lineNum)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present
		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}

		values[key] = value
	}

	return values, scanner.Err()
}

// ApplyFileConfig applies file configuration to a Config struct.
func ApplyFileConfig(cfg *Config, values map[string]string) error {
	for key, value := range values {
		if err := setConfigValue(cfg, key, value); err != nil {
			return fmt.Errorf("config key %q: %w", key, err)
		}
	}
	return nil
}

// setConfigValue sets a client config value by key.
func setConfigValue(cfg *Config, key, value string) error {
	switch key {
	// Core
	case "network":
		cfg.Network = value
	case "nid":
		n, err := strconv.ParseUint(value, 0, 64)
		if err != nil {
			return err
		}
		cfg.NID = n
	case "datadir":
		cfg.DataDir = value

	// Wallet
	case "keystore":
		cfg.Keystore = value
	case "password":
		cfg.Password = value

	// Behaviour
	case "yes":
		cfg.Yes = parseBool(value)
	case "cache":
		cfg.Cache = parseBool(value)
	case "stake.reserve":
		cfg.Reserve = value
	case "verifier.url":
		cfg.VerifierURL = value

	// Logging
	case "log.level":
		cfg.Log.Level = value
	case "log.file":
		cfg.Log.File = value
	case "log.json":
		cfg.Log.JSON = parseBool(value)

	default:
		// Unknown keys are ignored
	}
	return nil
}

// parseBool parses a boolean value.
func parseBool(s string) bool {
	s = strings.ToLower(s)
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// WriteDefaultConfig writes a default client configuration file.
func WriteDefaultConfig(path string) error {
	content := `# icon-cli configuration
#
# Command-line flags and ICON_* environment variables override these values.

# Network: ` + strings.Join(Networks(), ", ") + `, or a raw endpoint URL
network = ` + DefaultNetwork + `

# Network id override (required for raw endpoints that are not on nid 0x3)
# nid = 0x3

# Data directory (default: ~/.icon-cli)
# datadir = ~/.icon-cli

# ============================================================================
# Wallet
# ============================================================================

# V3 keystore file used to sign transactions
# keystore = ~/.icon-cli/keystore.json

# Keystore password; prompted on the terminal when empty
# password =

# ============================================================================
# Behaviour
# ============================================================================

# Answer yes to every confirmation prompt
yes = false

# Cache bisect probes on disk
cache = false

# ICX kept liquid by the auto-stake cycle
stake.reserve = 1

# Contract verifier service used by the audit menu
verifier.url = ` + DefaultVerifierURL + `

# ============================================================================
# Logging
# ============================================================================

log.level = warn
# log.file =
log.json = false
`
	return os.WriteFile(path, []byte(content), 0600)
}

// LoadFromFile loads config from defaults + conf file only. Command-line
// flags are applied on top by the caller.
func LoadFromFile(dataDir string) (*Config, error) {
	cfg := Default()
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if err := EnsureDataDir(cfg); err != nil {
		return nil, fmt.Errorf("ensuring data dir: %w", err)
	}
	fileValues, err := LoadFile(cfg.ConfigFile())
	if err != nil {
		return nil, fmt.Errorf("loading config file: %w", err)
	}
	if err := ApplyFileConfig(cfg, fileValues); err != nil {
		return nil, fmt.Errorf("applying config: %w", err)
	}
	// A datadir key in the file cannot move the file itself.
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	return cfg, nil
}

// EnsureDataDir creates the data directory and a default config file if they
// don't already exist. Safe to call on every start.
func EnsureDataDir(cfg *Config) error {
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return fmt.Errorf("create %s: %w", cfg.DataDir, err)
	}
	path := cfg.ConfigFile()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return WriteDefaultConfig(path)
	} else if err != nil {
		return err
	}
	return nil
}
