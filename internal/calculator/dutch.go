package calculator

import "fmt"

// CalculateDutch distributes totalStake across back bets on every outcome in
// proportion to 1/odds, so each outcome returns the same amount. With two
// outcomes stake1 = total * odds2 / (odds1 + odds2).
func CalculateDutch(odds []float64, totalStake float64) (DutchResult, error) {
	inverseSum, err := ImpliedProbabilitySum(odds...)
	if err != nil {
		return DutchResult{}, err
	}
	for i, o := range odds {
		if o <= 1 {
			return DutchResult{}, invalid(fmt.Sprintf("odds[%d]", i), "must be > 1 (got %v)", o)
		}
	}
	if err := checkStake("total_stake", totalStake); err != nil {
		return DutchResult{}, err
	}

	stakes := make([]float64, len(odds))
	for i, o := range odds {
		stakes[i] = totalStake * (1.0 / o) / inverseSum
	}

	// Every leg returns totalStake / inverseSum
	ret := totalStake / inverseSum
	profit := ret - totalStake

	return DutchResult{
		Stakes:           stakes,
		TotalStake:       totalStake,
		Return:           ret,
		Profit:           profit,
		ProfitPercentage: profit / totalStake * 100,
		InverseSum:       inverseSum,
		IsArbitrage:      inverseSum < 1.0,
	}, nil
}
