package config

import (
	"fmt"
	"strings"
)

var logLevels = map[string]struct{}{
	"trace": {}, "debug": {}, "info": {}, "warn": {}, "error": {}, "fatal": {}, "disabled": {}, "off": {}, "": {},
}

// Validate checks runtime config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if strings.TrimSpace(cfg.Network) == "" {
		return fmt.Errorf("network must be set")
	}
	if _, err := ResolveNetwork(cfg.Network); err != nil {
		return err
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("datadir must be set")
	}
	if _, err := cfg.ReserveAmount(); err != nil {
		return fmt.Errorf("stake.reserve: %w", err)
	}
	if _, ok := logLevels[strings.ToLower(cfg.Log.Level)]; !ok {
		return fmt.Errorf("log.level %q is not a valid level", cfg.Log.Level)
	}
	return nil
}
