package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// OverroundRating classifies how much margin a market carries
type OverroundRating string

const (
	RatingArbitrage OverroundRating = "arbitrage" // overround <= 0
	RatingExcellent OverroundRating = "excellent" // 0 < overround <= 2%
	RatingGood      OverroundRating = "good"      // 2% < overround <= 4%
	RatingMarginal  OverroundRating = "marginal"  // overround > 4%
)

// Overrounds are classified at 6dp (a hundredth of a basis point) so that a
// market summing to 1.02 in float64 noise still rates as exactly 2%
const overroundPlaces = 6

var (
	excellentCeiling = decimal.RequireFromString("0.02")
	goodCeiling      = decimal.RequireFromString("0.04")
)

// ClassifyOverround maps an overround fraction (0.0347 for 3.47%) to a rating.
// Band ceilings are inclusive.
func ClassifyOverround(overround float64) OverroundRating {
	if !finite(overround) {
		if overround < 0 {
			return RatingArbitrage
		}
		return RatingMarginal
	}
	snapped := decimal.NewFromFloat(overround).Round(overroundPlaces)

	switch {
	case !snapped.IsPositive():
		return RatingArbitrage
	case snapped.LessThanOrEqual(excellentCeiling):
		return RatingExcellent
	case snapped.LessThanOrEqual(goodCeiling):
		return RatingGood
	default:
		return RatingMarginal
	}
}

// ImpliedProbabilitySum returns the sum of 1/odds across all outcomes.
// Odds that are zero, negative or non-finite are rejected rather than
// producing Inf or NaN.
func ImpliedProbabilitySum(odds ...float64) (float64, error) {
	if len(odds) < 2 {
		return 0, invalid("odds", "need at least 2 outcomes (got %d)", len(odds))
	}

	sum := 0.0
	for i, o := range odds {
		if err := checkOdds(fmt.Sprintf("odds[%d]", i), o, 0); err != nil {
			return 0, err
		}
		sum += 1.0 / o
	}
	if !finite(sum) {
		return 0, invalid("odds", "implied probability sum overflows")
	}
	return sum, nil
}

// Overround returns impliedProbabilitySum - 1 for the given outcome odds
func Overround(odds ...float64) (float64, error) {
	sum, err := ImpliedProbabilitySum(odds...)
	if err != nil {
		return 0, err
	}
	return sum - 1.0, nil
}
