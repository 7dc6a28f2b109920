package config

import (
	"fmt"
	"net"
	"strings"
)

var validEnvironments = map[string]struct{}{
	"dev":     {},
	"test":    {},
	"staging": {},
	"prod":    {},
}

// Validate rejects configurations the node cannot start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.RPCAddress) == "" {
		return fmt.Errorf("RPCAddress must be set")
	}
	if _, _, err := net.SplitHostPort(c.RPCAddress); err != nil {
		return fmt.Errorf("RPCAddress: %w", err)
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("DataDir must be set")
	}
	if _, ok := validEnvironments[strings.ToLower(c.Environment)]; !ok {
		return fmt.Errorf("Environment %q not one of dev, test, staging, prod", c.Environment)
	}
	if c.LogMaxSizeMB < 0 || c.LogMaxBackups < 0 {
		return fmt.Errorf("log rotation limits must not be negative")
	}
	if c.RPC.RequestsPerMinute < 0 || c.RPC.Burst < 0 {
		return fmt.Errorf("rpc: rate limits must not be negative")
	}
	if c.RPC.RequestsPerMinute > 0 && c.RPC.Burst == 0 {
		return fmt.Errorf("rpc: Burst must be positive when RequestsPerMinute is set")
	}
	if c.RPC.MaxRequestBytes < 0 {
		return fmt.Errorf("rpc: MaxRequestBytes must not be negative")
	}
	for _, proxy := range c.RPC.TrustedProxies {
		if net.ParseIP(strings.TrimSpace(proxy)) == nil {
			return fmt.Errorf("rpc: TrustedProxies entry %q is not an IP address", proxy)
		}
	}
	if (c.Telemetry.Traces || c.Telemetry.Metrics) && strings.TrimSpace(c.Telemetry.Endpoint) == "" {
		return fmt.Errorf("telemetry: Endpoint required when exporters are enabled")
	}
	if c.Ledger.CacheMB < 0 || c.Ledger.Handles < 0 {
		return fmt.Errorf("ledger: CacheMB and Handles must not be negative")
	}
	seen := make(map[uint32]struct{}, len(c.Ledger.RewardTiers))
	for _, tier := range c.Ledger.RewardTiers {
		if tier.Threshold == 0 || strings.TrimSpace(tier.Name) == "" {
			return fmt.Errorf("ledger: reward tiers need a positive Threshold and a Name")
		}
		if _, dup := seen[tier.Threshold]; dup {
			return fmt.Errorf("ledger: duplicate reward threshold %d", tier.Threshold)
		}
		seen[tier.Threshold] = struct{}{}
	}
	return nil
}
