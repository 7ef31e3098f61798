package config

// DefaultNetwork is used when no network is configured.
const DefaultNetwork = "mainnet"

// DefaultVerifierURL is the local contract verifier endpoint.
const DefaultVerifierURL = "http://localhost:8888/v2/score/verify"

// Default returns the default client configuration.
func Default() *Config {
	return &Config{
		Network:     DefaultNetwork,
		DataDir:     DefaultDataDir(),
		Reserve:     "1",
		VerifierURL: DefaultVerifierURL,
		Log: LogConfig{
			Level: "warn",
			JSON:  false,
		},
	}
}
