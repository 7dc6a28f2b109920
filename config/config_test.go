package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, DefaultRPCAddress, cfg.RPCAddress)
	require.Equal(t, DefaultJWTSecretEnv, cfg.RPC.JWTSecretEnv)

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected default config to be persisted: %v", err)
	}
	again, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, again)
}

func TestLoadParsesSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	contents := `RPCAddress = "0.0.0.0:9000"
DataDir = "/var/lib/w2g"
Environment = "staging"
LogFile = "/var/log/w2g/node.log"
LogMaxSizeMB = 50

[rpc]
JWTSecretEnv = "TEST_SECRET"
JWTIssuer = "issuer.test"
RequestsPerMinute = 120
Burst = 10
TrustedProxies = ["10.0.0.1"]

[telemetry]
Endpoint = "otel-collector:4318"
Insecure = true
Traces = true
Headers = { authorization = "Bearer x" }

[ledger]
CacheMB = 128
Handles = 512

[[ledger.RewardTiers]]
Threshold = 5
Name = "sticker"
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:9000", cfg.RPCAddress)
	require.Equal(t, "staging", cfg.Environment)
	require.Equal(t, 50, cfg.LogMaxSizeMB)
	require.Equal(t, DefaultLogMaxBackups, cfg.LogMaxBackups)
	require.Equal(t, "issuer.test", cfg.RPC.JWTIssuer)
	require.Equal(t, 120, cfg.RPC.RequestsPerMinute)
	require.Equal(t, int64(DefaultMaxRequestBytes), cfg.RPC.MaxRequestBytes)
	require.True(t, cfg.Telemetry.Traces)
	require.Equal(t, "Bearer x", cfg.Telemetry.Headers["authorization"])
	require.Equal(t, 512, cfg.Ledger.Handles)
	require.Equal(t, []string{"10.0.0.1"}, cfg.RPC.TrustedProxies)
	require.Equal(t, []RewardTier{{Threshold: 5, Name: "sticker"}}, cfg.Ledger.RewardTiers)
}

func TestLoadFillsDefaultRewardTiers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("RPCAddress = \"127.0.0.1:1\"\n"), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, DefaultRewardTiers(), cfg.Ledger.RewardTiers)
	require.Empty(t, cfg.RPC.TrustedProxies)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("RPCAddress = \"127.0.0.1:1\"\nGenesisFile = \"x\"\n"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "GenesisFile"), err.Error())
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"empty address":        func(c *Config) { c.RPCAddress = "" },
		"address without port": func(c *Config) { c.RPCAddress = "localhost" },
		"empty data dir":       func(c *Config) { c.DataDir = " " },
		"unknown env":          func(c *Config) { c.Environment = "qa" },
		"negative rate":        func(c *Config) { c.RPC.RequestsPerMinute = -1 },
		"rate without burst":   func(c *Config) { c.RPC.Burst = 0 },
		"exporter no endpoint": func(c *Config) { c.Telemetry.Metrics = true },
		"negative cache":       func(c *Config) { c.Ledger.CacheMB = -5 },
		"proxy not an ip":      func(c *Config) { c.RPC.TrustedProxies = []string{"proxy.local"} },
		"zero reward":          func(c *Config) { c.Ledger.RewardTiers = []RewardTier{{Threshold: 0, Name: "x"}} },
		"duplicate reward": func(c *Config) {
			c.Ledger.RewardTiers = []RewardTier{{Threshold: 3, Name: "a"}, {Threshold: 3, Name: "b"}}
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
	require.NoError(t, Default().Validate())
}

func TestJWTSecretFromEnv(t *testing.T) {
	t.Setenv("W2G_TEST_SECRET", "  s3cret ")
	rpc := RPC{JWTSecretEnv: "W2G_TEST_SECRET"}
	require.Equal(t, []byte("s3cret"), rpc.JWTSecret())
}
