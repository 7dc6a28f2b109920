package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunSelector(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, run([]string{"selector", "0xa1a1a1a4"}, &stdout, &stderr))
	require.Contains(t, stdout.String(), "donate_tokens")
	require.Contains(t, stdout.String(), "payable=false mutates=true")

	stdout.Reset()
	require.Equal(t, 0, run([]string{"selector"}, &stdout, &stderr))
	require.Len(t, strings.Split(strings.TrimSpace(stdout.String()), "\n"), 9)

	stdout.Reset()
	require.Equal(t, 0, run([]string{"selector", "stake"}, &stdout, &stderr))
	require.Contains(t, stdout.String(), "0xc3c3c3c1")
	require.Contains(t, stdout.String(), "payable=true")

	stderr.Reset()
	require.Equal(t, 1, run([]string{"selector", "transfer"}, &stdout, &stderr))
	require.Contains(t, stderr.String(), "unknown selector")
}
