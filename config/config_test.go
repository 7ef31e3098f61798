package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveNetwork_Table(t *testing.T) {
	n, err := ResolveNetwork("Sejong")
	require.NoError(t, err)
	assert.Equal(t, "https://sejong.net.solidwallet.io", n.Endpoint)
	assert.Equal(t, uint64(0x53), n.NID)

	main, ok := LookupNetwork("mainnet")
	require.True(t, ok)
	assert.Equal(t, uint64(0x1), main.NID)
	assert.True(t, main.IgnoreList)

	lisbon, _ := LookupNetwork("lisbon")
	assert.Equal(t, "bitmask", lisbon.AuditEncoding)
	assert.False(t, lisbon.IgnoreList)
}

func TestResolveNetwork_RawURL(t *testing.T) {
	n, err := ResolveNetwork("http://10.0.0.5:9000/")
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:9000", n.Endpoint)
	assert.Equal(t, uint64(RawNID), n.NID)
	assert.Empty(t, n.Tracker)

	_, err = ResolveNetwork("atlantis")
	assert.ErrorContains(t, err, "unknown network")
}

func TestConfig_ResolvedNIDOverride(t *testing.T) {
	cfg := Default()
	cfg.Network = "https://node.example.org"
	cfg.NID = 0x99
	n, err := cfg.Resolved()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x99), n.NID)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "icon-cli.conf")
	content := "# comment\n\nnetwork = berlin\nnid = 0x7\nkeystore = \"/tmp/ks.json\"\nyes = on\nlog.level = debug\nbogus = 1\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	values, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/ks.json", values["keystore"])

	cfg := Default()
	require.NoError(t, ApplyFileConfig(cfg, values))
	assert.Equal(t, "berlin", cfg.Network)
	assert.Equal(t, uint64(7), cfg.NID)
	assert.True(t, cfg.Yes)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadFile_Errors(t *testing.T) {
	values, err := LoadFile(filepath.Join(t.TempDir(), "missing.conf"))
	require.NoError(t, err)
	assert.Empty(t, values)

	path := filepath.Join(t.TempDir(), "bad.conf")
	require.NoError(t, os.WriteFile(path, []byte("network\n"), 0600))
	_, err = LoadFile(path)
	assert.ErrorContains(t, err, "line 1")

	cfg := Default()
	err = ApplyFileConfig(cfg, map[string]string{"nid": "xyz"})
	assert.ErrorContains(t, err, `config key "nid"`)
}

func TestLoadFromFile_WritesDefault(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	cfg, err := LoadFromFile(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, DefaultNetwork, cfg.Network)
	assert.Equal(t, DefaultVerifierURL, cfg.VerifierURL)
	assert.FileExists(t, cfg.ConfigFile())
	require.NoError(t, Validate(cfg))

	reserve, err := cfg.ReserveAmount()
	require.NoError(t, err)
	assert.Equal(t, "1", reserve.ICXString())
}

func TestValidate(t *testing.T) {
	assert.Error(t, Validate(nil))

	cfg := Default()
	cfg.Network = ""
	assert.ErrorContains(t, Validate(cfg), "network must be set")

	cfg = Default()
	cfg.Reserve = "-1"
	assert.ErrorContains(t, Validate(cfg), "stake.reserve")

	cfg = Default()
	cfg.Log.Level = "loud"
	assert.ErrorContains(t, Validate(cfg), "log.level")
}
