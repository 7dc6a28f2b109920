package watch2give

import (
	"math"

	"github.com/holiman/uint256"
)

// MaxBalance is the ceiling for staked value: the width of the native
// currency balance type (u128).
var MaxBalance = new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 128), uint256.NewInt(1))

// saturatingAddU32 returns a+b clamped at MaxUint32 and whether it clamped.
func saturatingAddU32(a, b uint32) (uint32, bool) {
	sum := a + b
	if sum < a {
		return math.MaxUint32, true
	}
	return sum, false
}

// saturatingSubU32 returns a-b clamped at zero.
func saturatingSubU32(a, b uint32) uint32 {
	if b > a {
		return 0
	}
	return a - b
}

// saturatingAddBalance returns a+b clamped at MaxBalance and whether it
// clamped. Neither input is modified.
func saturatingAddBalance(a, b *uint256.Int) (*uint256.Int, bool) {
	sum, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow || sum.Gt(MaxBalance) {
		return new(uint256.Int).Set(MaxBalance), true
	}
	return sum, false
}
