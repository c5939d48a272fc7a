// Package calculator holds the hedge engine: two-way back/lay hedges,
// three-way cover hedges, dutching across bookmakers and overround
// classification.
//
// All values are IEEE-754 float64 and returned at full precision. Stakes are
// GBP to the penny, which float64 represents without meaningful drift at this
// scale; rounding happens once at the presentation boundary (see
// internal/presenter). The one exception is overround classification, which
// compares a decimal snapped to 6dp against the band ceilings.
package calculator

import "math"

// OddsQuote is a back price paired with a lay price and the commission
// charged on winnings on each side
type OddsQuote struct {
	BackOdds       float64
	LayOdds        float64
	CommissionBack float64
	CommissionLay  float64
}

// HedgeResult is the outcome of a two-way back/lay hedge
type HedgeResult struct {
	LayStake         float64
	Liability        float64
	BackWinnings     float64
	ProfitIfBackWins float64
	ProfitIfLayWins  float64
	GuaranteedProfit float64
	ProfitPercentage float64
	IsArbitrage      bool
	Policy           CommissionPolicy
}

// ThreeWayQuote backs one selection of a three-outcome market and covers the
// other two
type ThreeWayQuote struct {
	BackSelection string
	BackOdds      float64
	LaySelection1 string
	LayOdds1      float64
	LaySelection2 string
	LayOdds2      float64
	Stake         float64
}

// ThreeWayCommission holds the commission rates applied to three-way legs
type ThreeWayCommission struct {
	Back float64
	Lay  float64
}

// ThreeWayResult is the equal-profit stake distribution for a three-way hedge.
// The Lay* fields describe the two covering legs, which are back bets on the
// other outcomes: LayOdds1/2 are the cover prices and LayStake1/2 the cover
// stakes. The names follow the request fields.
// ProfitByOutcome is keyed by selection name.
type ThreeWayResult struct {
	BackSelection         string
	BackOdds              float64
	BackStake             float64
	LaySelection1         string
	LayOdds1              float64
	LayStake1             float64
	LaySelection2         string
	LayOdds2              float64
	LayStake2             float64
	TotalStake            float64
	Profit                float64
	ROI                   float64
	ImpliedProbabilitySum float64
	Overround             float64
	Rating                OverroundRating
	Profitable            bool
	ProfitByOutcome       map[string]float64
}

// DutchResult splits a total stake across back bets on every outcome so that
// each outcome returns the same amount
type DutchResult struct {
	Stakes           []float64
	TotalStake       float64
	Return           float64
	Profit           float64
	ProfitPercentage float64
	InverseSum       float64
	IsArbitrage      bool
}

// finite reports whether v is neither NaN nor infinite
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
