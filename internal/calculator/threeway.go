package calculator

import (
	"fmt"
	"strings"
)

// CalculateThreeWayHedge backs quote.BackSelection and covers the other two
// outcomes so that every result pays the same profit.
//
// A covering leg i at price O_i returns L_i * (1 + (O_i-1)(1-lay commission))
// when outcome i occurs. Setting every outcome's return equal to the back
// return R = stake * (1 + (backOdds-1)(1-back commission)) gives
// L_i = R / (1 + (O_i-1)(1-lay commission)).
func CalculateThreeWayHedge(quote ThreeWayQuote, commission ThreeWayCommission) (ThreeWayResult, error) {
	if err := validateThreeWay(quote, commission); err != nil {
		return ThreeWayResult{}, err
	}

	probSum := 1.0/quote.BackOdds + 1.0/quote.LayOdds1 + 1.0/quote.LayOdds2
	overround := probSum - 1.0

	backReturn := quote.Stake * netOdds(quote.BackOdds, commission.Back)
	layStake1 := backReturn / netOdds(quote.LayOdds1, commission.Lay)
	layStake2 := backReturn / netOdds(quote.LayOdds2, commission.Lay)

	totalStake := quote.Stake + layStake1 + layStake2

	// Profit per outcome: that leg's return less everything staked
	profitBack := backReturn - totalStake
	profit1 := layStake1*netOdds(quote.LayOdds1, commission.Lay) - totalStake
	profit2 := layStake2*netOdds(quote.LayOdds2, commission.Lay) - totalStake

	profit := minOf(profitBack, profit1, profit2)

	return ThreeWayResult{
		BackSelection:         quote.BackSelection,
		BackOdds:              quote.BackOdds,
		BackStake:             quote.Stake,
		LaySelection1:         quote.LaySelection1,
		LayOdds1:              quote.LayOdds1,
		LayStake1:             layStake1,
		LaySelection2:         quote.LaySelection2,
		LayOdds2:              quote.LayOdds2,
		LayStake2:             layStake2,
		TotalStake:            totalStake,
		Profit:                profit,
		ROI:                   profit / totalStake * 100,
		ImpliedProbabilitySum: probSum,
		Overround:             overround,
		Rating:                ClassifyOverround(overround),
		Profitable:            profit > 0,
		ProfitByOutcome: map[string]float64{
			quote.BackSelection: profitBack,
			quote.LaySelection1: profit1,
			quote.LaySelection2: profit2,
		},
	}, nil
}

// BestThreeWayHedge tries backing each of the three selections and covering
// the other two, returning the combination with the highest guaranteed
// profit. Ties keep the earliest selection.
func BestThreeWayHedge(selections [3]string, backOdds, coverOdds [3]float64, stake float64, commission ThreeWayCommission) (ThreeWayResult, error) {
	result, _, err := BestThreeWayHedgeBy(selections, backOdds, coverOdds, stake,
		func(back, cover1, cover2 int) ThreeWayCommission { return commission })
	return result, err
}

// CommissionFunc returns the commission for backing outcome back and
// covering outcomes cover1 and cover2 (indexes into the selections)
type CommissionFunc func(back, cover1, cover2 int) ThreeWayCommission

// BestThreeWayHedgeBy is BestThreeWayHedge with commission chosen per
// combination. It also returns the index of the backed selection.
func BestThreeWayHedgeBy(selections [3]string, backOdds, coverOdds [3]float64, stake float64, commission CommissionFunc) (ThreeWayResult, int, error) {
	var best ThreeWayResult
	backed := -1

	for i := 0; i < 3; i++ {
		j, k := ThreeWayCovers(i)

		result, err := CalculateThreeWayHedge(ThreeWayQuote{
			BackSelection: selections[i],
			BackOdds:      backOdds[i],
			LaySelection1: selections[j],
			LayOdds1:      coverOdds[j],
			LaySelection2: selections[k],
			LayOdds2:      coverOdds[k],
			Stake:         stake,
		}, commission(i, j, k))
		if err != nil {
			return ThreeWayResult{}, -1, fmt.Errorf("backing %s: %w", selections[i], err)
		}

		if backed < 0 || result.Profit > best.Profit {
			best = result
			backed = i
		}
	}

	return best, backed, nil
}

// ThreeWayCovers returns, in ascending order, the two outcomes covered when
// outcome back is backed
func ThreeWayCovers(back int) (int, int) {
	j, k := (back+1)%3, (back+2)%3
	if j > k {
		j, k = k, j
	}
	return j, k
}

// ThreeWayMeetsThreshold reports whether a result is profitable and clears
// both the absolute profit and ROI thresholds
func ThreeWayMeetsThreshold(result ThreeWayResult, minProfit, minROI float64) bool {
	return result.Profitable && result.Profit >= minProfit && result.ROI >= minROI
}

func validateThreeWay(quote ThreeWayQuote, commission ThreeWayCommission) error {
	if err := checkOdds("back_odds", quote.BackOdds, 1); err != nil {
		return err
	}
	if err := checkOdds("lay_odds_1", quote.LayOdds1, 1); err != nil {
		return err
	}
	if err := checkOdds("lay_odds_2", quote.LayOdds2, 1); err != nil {
		return err
	}
	if err := checkStake("stake", quote.Stake); err != nil {
		return err
	}
	if err := checkCommission("back_commission", commission.Back); err != nil {
		return err
	}
	if err := checkCommission("lay_commission", commission.Lay); err != nil {
		return err
	}
	return checkSelections(quote.BackSelection, quote.LaySelection1, quote.LaySelection2)
}

// checkSelections requires three named, distinct outcomes so that profit by
// outcome has one entry per branch
func checkSelections(names ...string) error {
	fields := []string{"back_selection", "lay_selection_1", "lay_selection_2"}
	for i, name := range names {
		if strings.TrimSpace(name) == "" {
			return invalid(fields[i], "must not be empty")
		}
		for j := 0; j < i; j++ {
			if strings.EqualFold(strings.TrimSpace(names[j]), strings.TrimSpace(name)) {
				return invalid(fields[i], "duplicates %s (%q)", fields[j], name)
			}
		}
	}
	return nil
}

// netOdds is the decimal return per unit staked after commission on winnings
func netOdds(odds, commission float64) float64 {
	return 1 + (odds-1)*(1-commission)
}

func minOf(first float64, rest ...float64) float64 {
	m := first
	for _, v := range rest {
		if v < m {
			m = v
		}
	}
	return m
}
