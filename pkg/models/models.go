package models

import "time"

// HedgeRequest is the request for a two-way back/lay hedge
type HedgeRequest struct {
	BackOdds       float64  `json:"back_odds"`
	LayOdds        float64  `json:"lay_odds"`
	Stake          *float64 `json:"stake"` // Optional, service default when omitted
	BackCommission float64  `json:"back_commission"`
	LayCommission  float64  `json:"lay_commission"`
	Policy         string   `json:"policy,omitempty"` // Optional: gross, net_lay_odds
}

// HedgeResponse is a two-way hedge rounded to pennies
type HedgeResponse struct {
	BackOdds         float64 `json:"back_odds"`
	LayOdds          float64 `json:"lay_odds"`
	Stake            float64 `json:"stake"`
	LayStake         float64 `json:"lay_stake"`
	Liability        float64 `json:"liability"`
	BackWinnings     float64 `json:"back_winnings"`
	ProfitIfBackWins float64 `json:"profit_if_back_wins"`
	ProfitIfLayWins  float64 `json:"profit_if_lay_wins"`
	GuaranteedProfit float64 `json:"guaranteed_profit"`
	ProfitPercentage float64 `json:"profit_pct"`
	IsArbitrage      bool    `json:"is_arbitrage"`
	Policy           string  `json:"policy"`
}

// ThreeWayRequest backs one selection and covers the other two
type ThreeWayRequest struct {
	BackSelection  string   `json:"back_selection"`
	BackOdds       float64  `json:"back_odds"`
	LaySelection1  string   `json:"lay_selection_1"`
	LayOdds1       float64  `json:"lay_odds_1"`
	LaySelection2  string   `json:"lay_selection_2"`
	LayOdds2       float64  `json:"lay_odds_2"`
	Stake          *float64 `json:"stake"`
	BackCommission float64  `json:"back_commission"`
	LayCommission  float64  `json:"lay_commission"`
}

// ThreeWaySelection is one outcome of a three-way market
type ThreeWaySelection struct {
	Name      string  `json:"name"`
	BackOdds  float64 `json:"back_odds"`
	CoverOdds float64 `json:"cover_odds"` // Price used when this outcome is a covering leg
}

// BestThreeWayRequest asks for the most profitable way to hedge a three-way market
type BestThreeWayRequest struct {
	Selections     []ThreeWaySelection `json:"selections"`
	Stake          *float64            `json:"stake"`
	BackCommission float64             `json:"back_commission"`
	LayCommission  float64             `json:"lay_commission"`
	MinProfit      *float64            `json:"min_profit"`  // Optional gate
	MinROI         *float64            `json:"min_roi_pct"` // Optional gate
}

// ThreeWayResponse is a three-way hedge rounded to pennies
type ThreeWayResponse struct {
	BackSelection         string             `json:"back_selection"`
	BackOdds              float64            `json:"back_odds"`
	BackStake             float64            `json:"back_stake"`
	LaySelection1         string             `json:"lay_selection_1"`
	LayOdds1              float64            `json:"lay_odds_1"`
	LayStake1             float64            `json:"lay_stake_1"`
	LaySelection2         string             `json:"lay_selection_2"`
	LayOdds2              float64            `json:"lay_odds_2"`
	LayStake2             float64            `json:"lay_stake_2"`
	TotalStake            float64            `json:"total_stake"`
	Profit                float64            `json:"profit"`
	ROI                   float64            `json:"roi_pct"`
	ImpliedProbabilitySum float64            `json:"implied_probability_sum"`
	Overround             float64            `json:"overround"`
	OverroundPercentage   float64            `json:"overround_pct"`
	Rating                string             `json:"rating"`
	Profitable            bool               `json:"profitable"`
	MeetsThreshold        *bool              `json:"meets_threshold,omitempty"` // Only when a gate was requested
	ProfitByOutcome       map[string]float64 `json:"profit_by_outcome"`
}

// DutchRequest splits a total stake across back bets on every outcome
type DutchRequest struct {
	Odds       []float64 `json:"odds"`
	TotalStake *float64  `json:"total_stake"`
}

// DutchResponse is a dutching distribution rounded to pennies
type DutchResponse struct {
	Odds             []float64 `json:"odds"`
	Stakes           []float64 `json:"stakes"`
	TotalStake       float64   `json:"total_stake"`
	Return           float64   `json:"return"`
	Profit           float64   `json:"profit"`
	ProfitPercentage float64   `json:"profit_pct"`
	InverseSum       float64   `json:"inverse_sum"`
	IsArbitrage      bool      `json:"is_arbitrage"`
}

// OverroundResponse classifies a market's margin
type OverroundResponse struct {
	Odds                  []float64 `json:"odds"`
	ImpliedProbabilitySum float64   `json:"implied_probability_sum"`
	Overround             float64   `json:"overround"`
	OverroundPercentage   float64   `json:"overround_pct"`
	Rating                string    `json:"rating"`
}

// Criteria narrows finder output
type Criteria struct {
	Stake               *float64 `json:"stake"`
	MinProfitPercentage *float64 `json:"min_profit_pct"`
	HedgeTypes          []string `json:"hedge_types"` // Empty includes every type
	MaxResults          *int     `json:"max_results"`
}

// OpportunitiesRequest is the request for finding hedges in market snapshots
type OpportunitiesRequest struct {
	Snapshots []MarketSnapshot `json:"snapshots"`
	Criteria  Criteria         `json:"criteria"`
}

// MarketSnapshot is every book's prices for one market
type MarketSnapshot struct {
	SportKey    string         `json:"sport_key"`
	EventID     string         `json:"event_id"`
	EventName   string         `json:"event_name"`
	Competition string         `json:"competition"`
	StartTime   *time.Time     `json:"start_time,omitempty"`
	Books       []BookSnapshot `json:"books"`
}

// BookSnapshot is a single platform's prices
type BookSnapshot struct {
	Platform string           `json:"platform"`
	MarketID string           `json:"market_id"`
	Runners  []RunnerSnapshot `json:"runners"`
}

// RunnerSnapshot is a selection's best prices. Zero means not offered.
type RunnerSnapshot struct {
	SelectionID string  `json:"selection_id"`
	Name        string  `json:"name"`
	BackOdds    float64 `json:"back_odds"`
	LayOdds     float64 `json:"lay_odds"`
}

// OpportunitiesResponse lists ranked opportunities
type OpportunitiesResponse struct {
	Count         int           `json:"count"`
	Opportunities []Opportunity `json:"opportunities"`
	Summary       Summary       `json:"summary"`
}

// Summary aggregates a result set
type Summary struct {
	TotalProfit   float64        `json:"total_profit"`
	BestProfitPct float64        `json:"best_profit_pct"`
	ByType        map[string]int `json:"by_type"`
}

// Opportunity is a priced hedge ready to display
type Opportunity struct {
	ID               string           `json:"id"`
	SportKey         string           `json:"sport_key,omitempty"`
	EventID          string           `json:"event_id"`
	EventName        string           `json:"event_name"`
	Competition      string           `json:"competition,omitempty"`
	RunnerName       string           `json:"runner_name"`
	HedgeType        string           `json:"hedge_type"`
	Legs             []OpportunityLeg `json:"legs"`
	Stake            float64          `json:"stake"`
	LayStake         float64          `json:"lay_stake"`
	Liability        float64          `json:"liability"`
	Profit           float64          `json:"profit"`
	ProfitPercentage float64          `json:"profit_pct"`
	IsArbitrage      bool             `json:"is_arbitrage"`
	Instructions     string           `json:"instructions"`
	DetectedAt       time.Time        `json:"detected_at"`
}

// OpportunityLeg is a single bet within an opportunity
type OpportunityLeg struct {
	Platform    string  `json:"platform"`
	Side        string  `json:"side"` // back, lay
	MarketID    string  `json:"market_id,omitempty"`
	SelectionID string  `json:"selection_id,omitempty"`
	Selection   string  `json:"selection"`
	Odds        float64 `json:"odds"`
	Commission  float64 `json:"commission"`
	Stake       float64 `json:"stake"`
}

// QuotedOpportunity is an externally priced opportunity awaiting classification
type QuotedOpportunity struct {
	ID               string   `json:"id"`
	EventName        string   `json:"event_name"`
	RunnerName       string   `json:"runner_name"`
	Platforms        []string `json:"platforms"` // Leg platforms, back leg first
	ProfitPercentage float64  `json:"profit_pct"`
}

// FilterRequest filters and classifies quoted opportunities
type FilterRequest struct {
	Opportunities       []QuotedOpportunity `json:"opportunities"`
	MinProfitPercentage float64             `json:"min_profit_pct"`
}

// ClassifiedOpportunity is a quoted opportunity with its hedge type
type ClassifiedOpportunity struct {
	QuotedOpportunity
	HedgeType string `json:"hedge_type"`
}

// FilterResponse lists the opportunities that met the threshold
type FilterResponse struct {
	Count         int                     `json:"count"`
	Excluded      int                     `json:"excluded"`
	Opportunities []ClassifiedOpportunity `json:"opportunities"`
}
