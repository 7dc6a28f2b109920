package config

// RPC controls the JSON-RPC endpoint.
type RPC struct {
	// JWTSecretEnv names the environment variable holding the HS256 secret
	// used to verify caller tokens. The secret itself never lives in the file.
	JWTSecretEnv      string `toml:"JWTSecretEnv"`
	JWTIssuer         string `toml:"JWTIssuer"`
	RequestsPerMinute int    `toml:"RequestsPerMinute"`
	Burst             int    `toml:"Burst"`
	MaxRequestBytes   int64  `toml:"MaxRequestBytes"`
	// TrustedProxies lists the peer addresses whose X-Forwarded-For header
	// is used to key rate limiting. Other peers are keyed by their own
	// address.
	TrustedProxies []string `toml:"TrustedProxies,omitempty"`
}

// Telemetry configures the OTLP exporters.
type Telemetry struct {
	Endpoint string            `toml:"Endpoint"`
	Insecure bool              `toml:"Insecure"`
	Traces   bool              `toml:"Traces"`
	Metrics  bool              `toml:"Metrics"`
	Headers  map[string]string `toml:"Headers"`
}

// Ledger tunes the on-disk store and the reward schedule.
type Ledger struct {
	CacheMB     int          `toml:"CacheMB"`
	Handles     int          `toml:"Handles"`
	RewardTiers []RewardTier `toml:"RewardTiers"`
}

// RewardTier unlocks once a viewer has donated Threshold times to a vendor.
type RewardTier struct {
	Threshold uint32 `toml:"Threshold"`
	Name      string `toml:"Name"`
}

// DefaultRewardTiers mirrors the built-in ledger schedule.
func DefaultRewardTiers() []RewardTier {
	return []RewardTier{
		{Threshold: 10, Name: "v-bucks"},
		{Threshold: 20, Name: "robux"},
		{Threshold: 50, Name: "mystery-nft"},
	}
}
