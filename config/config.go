package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DefaultRPCAddress        = "127.0.0.1:8545"
	DefaultDataDir           = "./w2g-data"
	DefaultEnvironment       = "dev"
	DefaultJWTSecretEnv      = "W2G_RPC_JWT_SECRET"
	DefaultJWTIssuer         = "watch2give"
	DefaultRequestsPerMinute = 600
	DefaultBurst             = 60
	DefaultMaxRequestBytes   = 1 << 20
	DefaultLogMaxSizeMB      = 100
	DefaultLogMaxBackups     = 5
	DefaultLedgerCacheMB     = 64
	DefaultLedgerHandles     = 256
)

type Config struct {
	RPCAddress    string    `toml:"RPCAddress"`
	DataDir       string    `toml:"DataDir"`
	Environment   string    `toml:"Environment"`
	LogFile       string    `toml:"LogFile"`
	LogLevel      string    `toml:"LogLevel"`
	LogMaxSizeMB  int       `toml:"LogMaxSizeMB"`
	LogMaxBackups int       `toml:"LogMaxBackups"`
	RPC           RPC       `toml:"rpc"`
	Telemetry     Telemetry `toml:"telemetry"`
	Ledger        Ledger    `toml:"ledger"`
}

// Load loads the configuration from the given path. A missing file is
// created with defaults.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	} else if err != nil {
		return nil, err
	}

	cfg := Default()
	cfg.Ledger.RewardTiers = nil
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the configuration written for a fresh node.
func Default() *Config {
	return &Config{
		RPCAddress:    DefaultRPCAddress,
		DataDir:       DefaultDataDir,
		Environment:   DefaultEnvironment,
		LogMaxSizeMB:  DefaultLogMaxSizeMB,
		LogMaxBackups: DefaultLogMaxBackups,
		RPC: RPC{
			JWTSecretEnv:      DefaultJWTSecretEnv,
			JWTIssuer:         DefaultJWTIssuer,
			RequestsPerMinute: DefaultRequestsPerMinute,
			Burst:             DefaultBurst,
			MaxRequestBytes:   DefaultMaxRequestBytes,
		},
		Telemetry: Telemetry{Headers: map[string]string{}},
		Ledger: Ledger{
			CacheMB:     DefaultLedgerCacheMB,
			Handles:     DefaultLedgerHandles,
			RewardTiers: DefaultRewardTiers(),
		},
	}
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Environment) == "" {
		c.Environment = DefaultEnvironment
	}
	if strings.TrimSpace(c.RPC.JWTSecretEnv) == "" {
		c.RPC.JWTSecretEnv = DefaultJWTSecretEnv
	}
	if c.RPC.MaxRequestBytes == 0 {
		c.RPC.MaxRequestBytes = DefaultMaxRequestBytes
	}
	if c.Telemetry.Headers == nil {
		c.Telemetry.Headers = map[string]string{}
	}
	if len(c.Ledger.RewardTiers) == 0 {
		c.Ledger.RewardTiers = DefaultRewardTiers()
	}
}

// JWTSecret reads the RPC signing secret from the configured environment
// variable. An empty result disables authenticated calls.
func (r RPC) JWTSecret() []byte {
	return []byte(strings.TrimSpace(os.Getenv(r.JWTSecretEnv)))
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := Default()
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
