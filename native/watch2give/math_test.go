package watch2give

import (
	"math"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestSaturatingAddU32(t *testing.T) {
	cases := []struct {
		a, b    uint32
		want    uint32
		clamped bool
	}{
		{0, 0, 0, false},
		{1, 2, 3, false},
		{math.MaxUint32 - 1, 1, math.MaxUint32, false},
		{math.MaxUint32, 1, math.MaxUint32, true},
		{math.MaxUint32 - 5, 100, math.MaxUint32, true},
	}
	for _, tc := range cases {
		got, clamped := saturatingAddU32(tc.a, tc.b)
		require.Equal(t, tc.want, got, "%d+%d", tc.a, tc.b)
		require.Equal(t, tc.clamped, clamped, "%d+%d", tc.a, tc.b)
	}
}

func TestSaturatingSubU32(t *testing.T) {
	require.EqualValues(t, 70, saturatingSubU32(100, 30))
	require.EqualValues(t, 0, saturatingSubU32(30, 100))
	require.EqualValues(t, 0, saturatingSubU32(0, 0))
}

func TestSaturatingAddBalanceClampsAtU128(t *testing.T) {
	nearMax := new(uint256.Int).Sub(MaxBalance, uint256.NewInt(10))

	got, clamped := saturatingAddBalance(nearMax, uint256.NewInt(10))
	require.False(t, clamped)
	require.Equal(t, MaxBalance, got)

	got, clamped = saturatingAddBalance(nearMax, uint256.NewInt(11))
	require.True(t, clamped)
	require.Equal(t, MaxBalance, got)

	huge := new(uint256.Int).SetAllOne()
	got, clamped = saturatingAddBalance(huge, huge)
	require.True(t, clamped)
	require.Equal(t, MaxBalance, got)

	require.Equal(t, nearMax, new(uint256.Int).Sub(MaxBalance, uint256.NewInt(10)), "inputs must not be mutated")
}
