package scoring

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/gridstake/gridstake/internal/domain"
)

// Scoring math runs on fixed-point decimals end to end. Binary floating
// point would accumulate rounding drift across thousands of entries.

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// ConfidenceMultiplier converts confidence credits to the payout
// multiplier: 1.00 + credits/100, rounded to 2 decimal places half-even.
// Negative credits are a validation error, never clamped.
func ConfidenceMultiplier(credits int) (decimal.Decimal, error) {
	if credits < 0 {
		return decimal.Zero, fmt.Errorf("%w: %d", domain.ErrNegativeCredits, credits)
	}
	return one.Add(decimal.NewFromInt(int64(credits)).Div(hundred)).RoundBank(2), nil
}

// AwardedPoints computes base_points x multiplier(credits), rounded to
// 2 decimal places half-even. Negative base points are a validation error.
func AwardedPoints(basePoints, credits int) (decimal.Decimal, error) {
	if basePoints < 0 {
		return decimal.Zero, fmt.Errorf("%w: %d", domain.ErrNegativeBasePoints, basePoints)
	}
	multiplier, err := ConfidenceMultiplier(credits)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromInt(int64(basePoints)).Mul(multiplier).RoundBank(2), nil
}

func intToDecimal(v int) decimal.Decimal {
	return decimal.NewFromInt(int64(v))
}
