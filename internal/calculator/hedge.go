package calculator

import "math"

// Engine evaluates hedges under one commission policy. The zero value uses
// DefaultPolicy. Engine holds no mutable state and is safe for concurrent use.
type Engine struct {
	policy CommissionPolicy
}

// NewEngine creates an engine bound to a commission policy. Use ParsePolicy
// for configured names; Hedge fails for a policy it does not know.
func NewEngine(policy CommissionPolicy) Engine {
	return Engine{policy: policy}
}

// Policy returns the commission policy the engine applies
func (e Engine) Policy() CommissionPolicy {
	if e.policy == "" {
		return DefaultPolicy
	}
	return e.policy
}

// CalculateHedge evaluates a two-way hedge under DefaultPolicy
func CalculateHedge(backOdds, layOdds, stake, backCommission, layCommission float64) (HedgeResult, error) {
	return Engine{}.Hedge(OddsQuote{
		BackOdds:       backOdds,
		LayOdds:        layOdds,
		CommissionBack: backCommission,
		CommissionLay:  layCommission,
	}, stake)
}

// CalculateBookmakerHedge evaluates a bookmaker back bet hedged with an
// exchange lay. Bookmakers take no commission on winnings.
func CalculateBookmakerHedge(bookmakerOdds, exchangeLayOdds, stake, exchangeCommission float64) (HedgeResult, error) {
	return CalculateHedge(bookmakerOdds, exchangeLayOdds, stake, 0, exchangeCommission)
}

// Hedge computes the lay stake that offsets a back bet of stake at
// quote.BackOdds, and the profit in both branches
func (e Engine) Hedge(quote OddsQuote, stake float64) (HedgeResult, error) {
	if err := validateQuote(quote, stake); err != nil {
		return HedgeResult{}, err
	}

	policy := e.Policy()
	effectiveLayOdds, err := policy.effectiveLayOdds(quote.LayOdds, quote.CommissionLay)
	if err != nil {
		return HedgeResult{}, err
	}

	// Net return on the back bet if it wins, after commission on winnings
	backWinnings := stake * (quote.BackOdds - 1) * (1 - quote.CommissionBack)

	layStake := (stake * quote.BackOdds) / effectiveLayOdds
	liability := layStake * (quote.LayOdds - 1)

	profitIfBackWins := backWinnings - liability
	profitIfLayWins := layStake*(1-quote.CommissionLay) - stake

	guaranteed := math.Min(profitIfBackWins, profitIfLayWins)

	return HedgeResult{
		LayStake:         layStake,
		Liability:        liability,
		BackWinnings:     backWinnings,
		ProfitIfBackWins: profitIfBackWins,
		ProfitIfLayWins:  profitIfLayWins,
		GuaranteedProfit: guaranteed,
		ProfitPercentage: guaranteed / stake * 100,
		IsArbitrage:      profitIfBackWins > 0 && profitIfLayWins > 0,
		Policy:           policy,
	}, nil
}

func validateQuote(quote OddsQuote, stake float64) error {
	if err := checkOdds("back_odds", quote.BackOdds, 0); err != nil {
		return err
	}
	if err := checkOdds("lay_odds", quote.LayOdds, 1); err != nil {
		return err
	}
	if err := checkStake("stake", stake); err != nil {
		return err
	}
	if err := checkCommission("back_commission", quote.CommissionBack); err != nil {
		return err
	}
	return checkCommission("lay_commission", quote.CommissionLay)
}
