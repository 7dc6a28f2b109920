package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"watch2give/config"
	"watch2give/observability/logging"
)

func TestRewardScheduleFromConfig(t *testing.T) {
	schedule, err := rewardSchedule(config.DefaultRewardTiers())
	require.NoError(t, err)
	require.Equal(t, "robux", schedule.Standing(25).Tier.Name)

	_, err = rewardSchedule(nil)
	require.Error(t, err)
}

func TestLogAuthMode(t *testing.T) {
	rpcCfg := config.RPC{JWTSecretEnv: "W2G_RPC_JWT_SECRET", JWTIssuer: "watch2give"}

	var buf bytes.Buffer
	logAuthMode(logging.New(&buf, logging.Options{Service: serviceName}), rpcCfg, nil)
	require.Contains(t, buf.String(), "donate, stake and w2g_call will be rejected")
	require.NotContains(t, buf.String(), "mutating methods")

	buf.Reset()
	logAuthMode(logging.New(&buf, logging.Options{Service: serviceName}), rpcCfg, []byte("hunter2-secret"))
	require.Contains(t, buf.String(), "RPC caller authentication enabled")
	require.Contains(t, buf.String(), logging.RedactedValue)
	require.NotContains(t, buf.String(), "hunter2-secret")
}
