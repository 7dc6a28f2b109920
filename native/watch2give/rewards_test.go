package watch2give

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultRewardScheduleStandings(t *testing.T) {
	schedule := DefaultRewardSchedule()
	cases := []struct {
		count     uint32
		tier      string
		next      string
		remaining uint32
	}{
		{0, "", "v-bucks", 10},
		{9, "", "v-bucks", 1},
		{10, "v-bucks", "robux", 10},
		{20, "robux", "mystery-nft", 30},
		{49, "robux", "mystery-nft", 1},
		{50, "mystery-nft", "", 0},
		{60, "mystery-nft", "", 0},
	}
	for _, tc := range cases {
		standing := schedule.Standing(tc.count)
		require.Equal(t, tc.tier, standing.Tier.Name, "count %d", tc.count)
		require.Equal(t, tc.next, standing.Next.Name, "count %d", tc.count)
		require.Equal(t, tc.tier != "", standing.Eligible(), "count %d", tc.count)
		require.Equal(t, tc.remaining, standing.Remaining(), "count %d", tc.count)
	}
}

func TestNewRewardScheduleSortsTiers(t *testing.T) {
	schedule, err := NewRewardSchedule([]RewardTier{
		{Threshold: 5, Name: " gold "},
		{Threshold: 1, Name: "bronze"},
	})
	require.NoError(t, err)
	require.Equal(t, []RewardTier{{1, "bronze"}, {5, "gold"}}, schedule.Tiers())
	require.Equal(t, "bronze", schedule.Standing(4).Tier.Name)
}

func TestNewRewardScheduleRejectsBadTiers(t *testing.T) {
	_, err := NewRewardSchedule(nil)
	require.Error(t, err)

	_, err = NewRewardSchedule([]RewardTier{{Threshold: 0, Name: "free"}})
	require.Error(t, err)

	_, err = NewRewardSchedule([]RewardTier{{Threshold: 3, Name: ""}})
	require.Error(t, err)

	_, err = NewRewardSchedule([]RewardTier{{Threshold: 3, Name: "a"}, {Threshold: 3, Name: "b"}})
	require.ErrorContains(t, err, "duplicate threshold")
}
