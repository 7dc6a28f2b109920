package watch2give

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// RewardTier unlocks once a viewer's donation count to a vendor reaches
// Threshold.
type RewardTier struct {
	Threshold uint32
	Name      string
}

// DefaultRewardTiers is the schedule used when none is configured.
var DefaultRewardTiers = []RewardTier{
	{Threshold: 10, Name: "v-bucks"},
	{Threshold: 20, Name: "robux"},
	{Threshold: 50, Name: "mystery-nft"},
}

var errEmptySchedule = errors.New("watch2give rewards: schedule has no tiers")

// RewardSchedule is an ordered set of tiers, lowest threshold first.
type RewardSchedule struct {
	tiers []RewardTier
}

// RewardStanding is where a donation count sits in a schedule. Tier is empty
// until the first threshold is reached; Next is empty once the top tier is.
type RewardStanding struct {
	Count uint32
	Tier  RewardTier
	Next  RewardTier
}

// Eligible reports whether any tier has been reached.
func (s RewardStanding) Eligible() bool {
	return s.Tier.Name != ""
}

// Remaining is the number of further donations needed for the next tier.
func (s RewardStanding) Remaining() uint32 {
	if s.Next.Name == "" {
		return 0
	}
	return s.Next.Threshold - s.Count
}

// NewRewardSchedule validates tiers and orders them by threshold.
func NewRewardSchedule(tiers []RewardTier) (RewardSchedule, error) {
	if len(tiers) == 0 {
		return RewardSchedule{}, errEmptySchedule
	}
	sorted := make([]RewardTier, 0, len(tiers))
	seen := make(map[uint32]struct{}, len(tiers))
	for _, tier := range tiers {
		name := strings.TrimSpace(tier.Name)
		if name == "" {
			return RewardSchedule{}, fmt.Errorf("watch2give rewards: tier at %d has no name", tier.Threshold)
		}
		if tier.Threshold == 0 {
			return RewardSchedule{}, fmt.Errorf("watch2give rewards: tier %q needs a positive threshold", name)
		}
		if _, dup := seen[tier.Threshold]; dup {
			return RewardSchedule{}, fmt.Errorf("watch2give rewards: duplicate threshold %d", tier.Threshold)
		}
		seen[tier.Threshold] = struct{}{}
		sorted = append(sorted, RewardTier{Threshold: tier.Threshold, Name: name})
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Threshold < sorted[j].Threshold })
	return RewardSchedule{tiers: sorted}, nil
}

// DefaultRewardSchedule returns the schedule built from DefaultRewardTiers.
func DefaultRewardSchedule() RewardSchedule {
	schedule, err := NewRewardSchedule(DefaultRewardTiers)
	if err != nil {
		panic(err)
	}
	return schedule
}

// Tiers returns a copy of the tiers, lowest threshold first.
func (s RewardSchedule) Tiers() []RewardTier {
	out := make([]RewardTier, len(s.tiers))
	copy(out, s.tiers)
	return out
}

// Standing places count in the schedule: the highest tier reached and the
// next one above it.
func (s RewardSchedule) Standing(count uint32) RewardStanding {
	standing := RewardStanding{Count: count}
	for _, tier := range s.tiers {
		if count >= tier.Threshold {
			standing.Tier = tier
			continue
		}
		standing.Next = tier
		break
	}
	return standing
}
