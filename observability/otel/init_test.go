package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"watch2give/config"
)

func TestParseHeaders(t *testing.T) {
	headers := ParseHeaders(" authorization = Bearer x ,bad, =skip,tenant=w2g")
	require.Equal(t, map[string]string{"authorization": "Bearer x", "tenant": "w2g"}, headers)
}

func TestFromNodeConfigMergesEnvHeaders(t *testing.T) {
	t.Setenv(HeadersEnv, "tenant=env,region=eu")
	cfg := config.Default()
	cfg.Telemetry.Endpoint = " collector:4318 "
	cfg.Telemetry.Traces = true
	cfg.Telemetry.Headers = map[string]string{"tenant": "file"}

	out := FromNodeConfig("watch2given", cfg)
	require.Equal(t, "collector:4318", out.Endpoint)
	require.Equal(t, "file", out.Headers["tenant"])
	require.Equal(t, "eu", out.Headers["region"])
	require.True(t, out.Enabled())
}

func TestInitDisabledIsNoop(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{ServiceName: "watch2given"})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))

	_, err = Init(context.Background(), Config{})
	require.Error(t, err)
}
