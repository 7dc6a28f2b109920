package main

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"gopkg.in/yaml.v3"

	"watch2give/core"
	"watch2give/core/events"
	"watch2give/core/types"
	"watch2give/crypto"
	"watch2give/native/watch2give"
	"watch2give/proof"
	"watch2give/storage"
)

// Scenario is a scripted sequence of ledger calls.
type Scenario struct {
	Name string `yaml:"name"`
	// StartMillis seeds the block clock; each step advances it by StepMillis.
	StartMillis uint64 `yaml:"start_ms"`
	StepMillis  uint64 `yaml:"step_ms"`
	// RewardTiers replaces the default reward schedule when set.
	RewardTiers []ScenarioTier `yaml:"reward_tiers,omitempty"`
	Steps       []Step         `yaml:"steps"`
}

type ScenarioTier struct {
	Threshold uint32 `yaml:"threshold"`
	Name      string `yaml:"name"`
}

// Step is one call. Accounts are bech32/hex addresses or dev labels.
//
// The route op donates the caller's whole balance to Vendor once it reaches
// Threshold and is skipped otherwise.
type Step struct {
	Op           string `yaml:"op"`
	Caller       string `yaml:"caller"`
	Account      string `yaml:"account,omitempty"`
	Vendor       string `yaml:"vendor,omitempty"`
	Amount       uint32 `yaml:"amount,omitempty"`
	Value        string `yaml:"value,omitempty"`
	Hash         string `yaml:"hash,omitempty"`
	Content      string `yaml:"content,omitempty"`
	Threshold    uint32 `yaml:"threshold,omitempty"`
	ExpectRevert bool   `yaml:"expect_revert,omitempty"`
}

// Report summarises a replay.
type Report struct {
	Name      string            `yaml:"name,omitempty"`
	Height    uint64            `yaml:"height"`
	StateRoot string            `yaml:"state_root"`
	Steps     []StepResult      `yaml:"steps"`
	Balances  map[string]uint32 `yaml:"balances"`
	Stakes    map[string]string `yaml:"stakes,omitempty"`
	Proofs    map[string]string `yaml:"proofs,omitempty"`
	Donations []DonationTotal   `yaml:"donations,omitempty"`
	Events    []types.Event     `yaml:"events,omitempty"`
}

type StepResult struct {
	Index  int    `yaml:"index"`
	Op     string `yaml:"op"`
	Status string `yaml:"status"`
	Reason string `yaml:"reason,omitempty"`
}

type DonationTotal struct {
	User   string `yaml:"user"`
	Vendor string `yaml:"vendor"`
	Count  uint32 `yaml:"count"`
	Tier   string `yaml:"tier,omitempty"`
}

func runReplay(args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("replay requires a scenario file")
	}
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	scenario, err := parseScenario(raw)
	if err != nil {
		return err
	}
	report, err := replay(context.Background(), scenario)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(report)
}

func parseScenario(raw []byte) (*Scenario, error) {
	var scenario Scenario
	dec := yaml.NewDecoder(strings.NewReader(string(raw)))
	dec.KnownFields(true)
	if err := dec.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario has no steps")
	}
	for i, step := range scenario.Steps {
		if strings.TrimSpace(step.Caller) == "" {
			return nil, fmt.Errorf("step %d: caller required", i)
		}
		switch step.Op {
		case "mint", "burn", "submit_proof":
			if strings.TrimSpace(step.Account) == "" {
				return nil, fmt.Errorf("step %d: %s requires account", i, step.Op)
			}
		case "donate", "route":
			if strings.TrimSpace(step.Vendor) == "" {
				return nil, fmt.Errorf("step %d: %s requires vendor", i, step.Op)
			}
		case "stake":
		default:
			return nil, fmt.Errorf("step %d: unknown op %q", i, step.Op)
		}
		if step.Op == "submit_proof" && (step.Hash == "") == (step.Content == "") {
			return nil, fmt.Errorf("step %d: submit_proof needs exactly one of hash or content", i)
		}
	}
	if len(scenario.RewardTiers) > 0 {
		if _, err := scenario.rewardSchedule(); err != nil {
			return nil, err
		}
	}
	if scenario.StepMillis == 0 {
		scenario.StepMillis = 1000
	}
	return &scenario, nil
}

func (s *Scenario) rewardSchedule() (watch2give.RewardSchedule, error) {
	if len(s.RewardTiers) == 0 {
		return watch2give.DefaultRewardSchedule(), nil
	}
	tiers := make([]watch2give.RewardTier, 0, len(s.RewardTiers))
	for _, tier := range s.RewardTiers {
		tiers = append(tiers, watch2give.RewardTier{Threshold: tier.Threshold, Name: tier.Name})
	}
	return watch2give.NewRewardSchedule(tiers)
}

const stepSkipped = "skipped"

type pair struct{ user, vendor string }

func replay(ctx context.Context, scenario *Scenario) (*Report, error) {
	ledger, err := core.OpenLedger(storage.NewMemDB())
	if err != nil {
		return nil, err
	}
	schedule, err := scenario.rewardSchedule()
	if err != nil {
		return nil, err
	}
	ledger.SetRewardSchedule(schedule)
	recorder := events.NewRecorder()
	ledger.SetEmitter(recorder)
	clock := scenario.StartMillis
	ledger.SetNowFunc(func() time.Time {
		clock += scenario.StepMillis
		return time.UnixMilli(int64(clock))
	})

	report := &Report{Name: scenario.Name, Balances: map[string]uint32{}}
	labels := map[string]crypto.AccountID{}
	var pairs []pair
	seenPair := map[pair]bool{}
	track := func(label string) crypto.AccountID {
		id := resolveAccount(label)
		labels[label] = id
		return id
	}

	notePair := func(user, vendor string) {
		key := pair{user, vendor}
		if !seenPair[key] {
			seenPair[key] = true
			pairs = append(pairs, key)
		}
	}

	for i, step := range scenario.Steps {
		caller := track(step.Caller)
		skipped := false
		switch step.Op {
		case "mint":
			_, err = ledger.MintAdToken(ctx, caller, track(step.Account), step.Amount)
		case "burn":
			_, err = ledger.BurnAdToken(ctx, caller, track(step.Account), step.Amount)
		case "donate":
			_, err = ledger.DonateTokens(ctx, caller, track(step.Vendor), step.Amount)
			notePair(step.Caller, step.Vendor)
		case "route":
			var balance uint32
			balance, err = ledger.AdTokenBalance(ctx, caller)
			if err != nil {
				return nil, fmt.Errorf("step %d: %w", i, err)
			}
			if balance == 0 || balance < step.Threshold {
				skipped = true
				break
			}
			_, err = ledger.DonateTokens(ctx, caller, track(step.Vendor), balance)
			notePair(step.Caller, step.Vendor)
		case "submit_proof":
			var hash common.Hash
			if step.Content != "" {
				hash = proof.HashContent([]byte(step.Content))
			} else if hash, err = proof.ParseHash(step.Hash); err != nil {
				return nil, fmt.Errorf("step %d: %w", i, err)
			}
			_, err = ledger.SubmitProof(ctx, caller, track(step.Account), hash)
		case "stake":
			value, ok := new(big.Int).SetString(strings.TrimSpace(orZero(step.Value)), 10)
			if !ok || value.Sign() < 0 {
				return nil, fmt.Errorf("step %d: invalid value %q", i, step.Value)
			}
			amount, overflow := uint256.FromBig(value)
			if overflow {
				return nil, fmt.Errorf("step %d: value exceeds 256 bits", i)
			}
			_, err = ledger.Stake(ctx, caller, amount)
		}
		result := StepResult{Index: i, Op: step.Op, Status: string(types.ReceiptSuccess)}
		if skipped {
			result.Status = stepSkipped
		}
		if err != nil {
			if !core.IsRevert(err) {
				return nil, fmt.Errorf("step %d: %w", i, err)
			}
			result.Status = string(types.ReceiptReverted)
			result.Reason = err.Error()
			if !step.ExpectRevert {
				return nil, fmt.Errorf("step %d (%s) reverted unexpectedly: %w", i, step.Op, err)
			}
		} else if step.ExpectRevert {
			return nil, fmt.Errorf("step %d (%s) succeeded but a revert was expected", i, step.Op)
		}
		report.Steps = append(report.Steps, result)
	}

	names := make([]string, 0, len(labels))
	for label := range labels {
		names = append(names, label)
	}
	sort.Strings(names)
	for _, label := range names {
		id := labels[label]
		balance, err := ledger.AdTokenBalance(ctx, id)
		if err != nil {
			return nil, err
		}
		report.Balances[label] = balance
		staked, err := ledger.StakeOf(ctx, id)
		if err != nil {
			return nil, err
		}
		if !staked.IsZero() {
			if report.Stakes == nil {
				report.Stakes = map[string]string{}
			}
			report.Stakes[label] = staked.Dec()
		}
		hash, found, err := ledger.Proof(ctx, id)
		if err != nil {
			return nil, err
		}
		if found {
			if report.Proofs == nil {
				report.Proofs = map[string]string{}
			}
			report.Proofs[label] = hash.Hex()
		}
	}
	for _, p := range pairs {
		standing, err := ledger.RewardStanding(ctx, labels[p.user], labels[p.vendor])
		if err != nil {
			return nil, err
		}
		report.Donations = append(report.Donations, DonationTotal{
			User:   p.user,
			Vendor: p.vendor,
			Count:  standing.Count,
			Tier:   standing.Tier.Name,
		})
	}
	for _, evt := range recorder.Events() {
		if payload := evt.Event(); payload != nil {
			report.Events = append(report.Events, payload.Clone())
		}
	}
	height, root := ledger.Head()
	report.Height = height
	report.StateRoot = root.Hex()
	return report, nil
}

func orZero(v string) string {
	if strings.TrimSpace(v) == "" {
		return "0"
	}
	return v
}
