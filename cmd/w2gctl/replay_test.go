package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"watch2give/core/events"
	"watch2give/proof"
)

const donationScenario = `name: viewer donates
start_ms: 1700000000000
steps:
  - op: mint
    caller: viewer
    account: viewer
    amount: 100
  - op: donate
    caller: viewer
    vendor: charity
    amount: 30
  - op: donate
    caller: viewer
    vendor: charity
    amount: 100
    expect_revert: true
  - op: submit_proof
    caller: viewer
    account: viewer
    content: "ad-7 watched"
  - op: stake
    caller: charity
    value: "2500"
`

func TestReplayDonationScenario(t *testing.T) {
	scenario, err := parseScenario([]byte(donationScenario))
	require.NoError(t, err)

	report, err := replay(context.Background(), scenario)
	require.NoError(t, err)
	require.Equal(t, uint32(70), report.Balances["viewer"])
	require.Equal(t, uint32(30), report.Balances["charity"])
	require.Equal(t, []DonationTotal{{User: "viewer", Vendor: "charity", Count: 1}}, report.Donations)
	require.Equal(t, "2500", report.Stakes["charity"])
	require.Equal(t, proof.HashContent([]byte("ad-7 watched")).Hex(), report.Proofs["viewer"])
	require.Equal(t, uint64(4), report.Height)

	require.Len(t, report.Steps, 5)
	require.Equal(t, "reverted", report.Steps[2].Status)
	require.True(t, strings.Contains(report.Steps[2].Reason, "not enough tokens"), report.Steps[2].Reason)

	require.Len(t, report.Events, 2)
	require.Equal(t, events.TypeDonationMade, report.Events[0].Type)
	require.Equal(t, "1700000002000", report.Events[0].Attributes["timestamp"])
}

func TestReplayRoutesAtThresholdAndReportsTier(t *testing.T) {
	scenario, err := parseScenario([]byte(`reward_tiers:
  - threshold: 1
    name: sticker
  - threshold: 2
    name: badge
steps:
  - op: mint
    caller: viewer
    account: viewer
    amount: 4
  - op: route
    caller: viewer
    vendor: charity
    threshold: 5
  - op: mint
    caller: viewer
    account: viewer
    amount: 1
  - op: route
    caller: viewer
    vendor: charity
    threshold: 5
`))
	require.NoError(t, err)

	report, err := replay(context.Background(), scenario)
	require.NoError(t, err)
	require.Equal(t, "skipped", report.Steps[1].Status)
	require.Equal(t, "success", report.Steps[3].Status)
	require.Equal(t, uint32(0), report.Balances["viewer"])
	require.Equal(t, uint32(5), report.Balances["charity"])
	require.Equal(t, []DonationTotal{{User: "viewer", Vendor: "charity", Count: 1, Tier: "sticker"}}, report.Donations)
	require.Equal(t, uint64(3), report.Height)
}

func TestReplayFailsOnUnexpectedOutcome(t *testing.T) {
	scenario, err := parseScenario([]byte(`steps:
  - op: burn
    caller: a
    account: a
    amount: 1
`))
	require.NoError(t, err)
	_, err = replay(context.Background(), scenario)
	require.Error(t, err)

	scenario, err = parseScenario([]byte(`steps:
  - op: mint
    caller: a
    account: a
    amount: 1
    expect_revert: true
`))
	require.NoError(t, err)
	_, err = replay(context.Background(), scenario)
	require.Error(t, err)
}

func TestParseScenarioValidation(t *testing.T) {
	cases := map[string]string{
		"no steps":      "name: empty\n",
		"unknown op":    "steps:\n  - op: transfer\n    caller: a\n",
		"no caller":     "steps:\n  - op: stake\n",
		"unknown field": "steps:\n  - op: stake\n    caller: a\n    gas: 1\n",
		"proof both":    "steps:\n  - op: submit_proof\n    caller: a\n    account: a\n    hash: \"0x00\"\n    content: x\n",
		"donate vendor": "steps:\n  - op: donate\n    caller: a\n",
		"route vendor":  "steps:\n  - op: route\n    caller: a\n",
		"bad tiers":     "reward_tiers:\n  - threshold: 0\n    name: x\nsteps:\n  - op: stake\n    caller: a\n",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseScenario([]byte(raw))
			require.Error(t, err)
		})
	}
}

func TestRunReplayPrintsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(donationScenario), 0o644))

	var stdout, stderr bytes.Buffer
	code := run([]string{"replay", path}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	var report Report
	require.NoError(t, yaml.Unmarshal(stdout.Bytes(), &report))
	require.Equal(t, uint32(70), report.Balances["viewer"])
}

func TestRunUnknownCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.Equal(t, 1, run([]string{"bogus"}, &stdout, &stderr))
	require.Contains(t, stderr.String(), "unknown command")
}
