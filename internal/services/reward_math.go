package services

import (
	"fmt"
	"math"

	"github.com/solscore-labs/solscore-ledger/internal/utils"
)

const secondsPerYear = 31_536_000

// compoundMultiplier is (1 + apy/100)^(elapsed/year) - 1, evaluated in
// float64.
func compoundMultiplier(baseAPY uint8, elapsed int64) float64 {
	if elapsed <= 0 {
		return 0
	}
	return math.Pow(1+float64(baseAPY)/100, float64(elapsed)/secondsPerYear) - 1
}

// baseReward is floor(principal * compoundMultiplier), truncated toward zero
// when converted back to an integer.
func baseReward(principal uint64, baseAPY uint8, elapsed int64) (uint64, error) {
	r := float64(principal) * compoundMultiplier(baseAPY, elapsed)
	if math.IsNaN(r) || math.IsInf(r, 0) || r >= math.Exp2(64) {
		return 0, utils.ErrOverflow
	}
	if r <= 0 {
		return 0, nil
	}
	return uint64(r), nil
}

// performanceFactor is 100 + floor(weeklyScore * scoreMultiplier / 100), in
// percentage points. It has no upper bound.
func performanceFactor(weeklyScore uint32, scoreMultiplier uint8) uint64 {
	return 100 + uint64(weeklyScore)*uint64(scoreMultiplier)/100
}

// computeReward is floor(baseReward * performanceFactor / 100).
func computeReward(principal uint64, baseAPY, scoreMultiplier uint8, weeklyScore uint32, elapsed int64) (uint64, error) {
	base, err := baseReward(principal, baseAPY, elapsed)
	if err != nil {
		return 0, fmt.Errorf("base reward: %w", err)
	}
	total, err := utils.MulDiv(base, performanceFactor(weeklyScore, scoreMultiplier), 100)
	if err != nil {
		return 0, fmt.Errorf("weighted reward: %w", err)
	}
	return total, nil
}
