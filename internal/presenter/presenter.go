// Package presenter maps engine values to wire models. It is the only place
// where amounts are rounded.
package presenter

import (
	"fmt"
	"strings"

	"github.com/XavierBriggs/fortuna/services/hedge-calculator/internal/calculator"
	"github.com/XavierBriggs/fortuna/services/hedge-calculator/internal/opportunity"
	"github.com/XavierBriggs/fortuna/services/hedge-calculator/pkg/models"
	"github.com/shopspring/decimal"
)

// Round rounds v half away from zero to 2 decimal places
func Round(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Money formats an amount in pounds, e.g. £95.24
func Money(v float64) string {
	return "£" + decimal.NewFromFloat(v).StringFixed(2)
}

// Presenter renders engine output, resolving platform display names
type Presenter struct {
	platforms *opportunity.Registry
}

// New creates a presenter
func New(platforms *opportunity.Registry) *Presenter {
	return &Presenter{platforms: platforms}
}

// Hedge renders a two-way hedge
func (p *Presenter) Hedge(quote calculator.OddsQuote, stake float64, r calculator.HedgeResult) models.HedgeResponse {
	return models.HedgeResponse{
		BackOdds:         quote.BackOdds,
		LayOdds:          quote.LayOdds,
		Stake:            Round(stake),
		LayStake:         Round(r.LayStake),
		Liability:        Round(r.Liability),
		BackWinnings:     Round(r.BackWinnings),
		ProfitIfBackWins: Round(r.ProfitIfBackWins),
		ProfitIfLayWins:  Round(r.ProfitIfLayWins),
		GuaranteedProfit: Round(r.GuaranteedProfit),
		ProfitPercentage: Round(r.ProfitPercentage),
		IsArbitrage:      r.IsArbitrage,
		Policy:           string(r.Policy),
	}
}

// ThreeWay renders a three-way hedge
func (p *Presenter) ThreeWay(r calculator.ThreeWayResult) models.ThreeWayResponse {
	byOutcome := make(map[string]float64, len(r.ProfitByOutcome))
	for selection, profit := range r.ProfitByOutcome {
		byOutcome[selection] = Round(profit)
	}

	return models.ThreeWayResponse{
		BackSelection:         r.BackSelection,
		BackOdds:              r.BackOdds,
		BackStake:             Round(r.BackStake),
		LaySelection1:         r.LaySelection1,
		LayOdds1:              r.LayOdds1,
		LayStake1:             Round(r.LayStake1),
		LaySelection2:         r.LaySelection2,
		LayOdds2:              r.LayOdds2,
		LayStake2:             Round(r.LayStake2),
		TotalStake:            Round(r.TotalStake),
		Profit:                Round(r.Profit),
		ROI:                   Round(r.ROI),
		ImpliedProbabilitySum: decimal.NewFromFloat(r.ImpliedProbabilitySum).Round(4).InexactFloat64(),
		Overround:             decimal.NewFromFloat(r.Overround).Round(4).InexactFloat64(),
		OverroundPercentage:   Round(r.Overround * 100),
		Rating:                string(r.Rating),
		Profitable:            r.Profitable,
		ProfitByOutcome:       byOutcome,
	}
}

// Dutch renders a dutching distribution
func (p *Presenter) Dutch(odds []float64, r calculator.DutchResult) models.DutchResponse {
	stakes := make([]float64, len(r.Stakes))
	for i, s := range r.Stakes {
		stakes[i] = Round(s)
	}

	return models.DutchResponse{
		Odds:             odds,
		Stakes:           stakes,
		TotalStake:       Round(r.TotalStake),
		Return:           Round(r.Return),
		Profit:           Round(r.Profit),
		ProfitPercentage: Round(r.ProfitPercentage),
		InverseSum:       decimal.NewFromFloat(r.InverseSum).Round(4).InexactFloat64(),
		IsArbitrage:      r.IsArbitrage,
	}
}

// Overround renders a market margin classification
func (p *Presenter) Overround(odds []float64, sum float64) models.OverroundResponse {
	overround := sum - 1
	return models.OverroundResponse{
		Odds:                  odds,
		ImpliedProbabilitySum: decimal.NewFromFloat(sum).Round(4).InexactFloat64(),
		Overround:             decimal.NewFromFloat(overround).Round(4).InexactFloat64(),
		OverroundPercentage:   Round(overround * 100),
		Rating:                string(calculator.ClassifyOverround(overround)),
	}
}

// Opportunity renders a single opportunity with placement instructions
func (p *Presenter) Opportunity(o opportunity.Opportunity) models.Opportunity {
	legs := make([]models.OpportunityLeg, len(o.Legs))
	for i, leg := range o.Legs {
		legs[i] = models.OpportunityLeg{
			Platform:    leg.Platform,
			Side:        string(leg.Side),
			MarketID:    leg.MarketID,
			SelectionID: leg.SelectionID,
			Selection:   leg.Selection,
			Odds:        leg.Odds,
			Commission:  leg.Commission,
			Stake:       Round(leg.Stake),
		}
	}

	return models.Opportunity{
		ID:               o.ID,
		SportKey:         o.SportKey,
		EventID:          o.EventID,
		EventName:        o.EventName,
		Competition:      o.Competition,
		RunnerName:       o.RunnerName,
		HedgeType:        string(o.HedgeType),
		Legs:             legs,
		Stake:            Round(o.Stake),
		LayStake:         Round(o.LayStake),
		Liability:        Round(o.Liability),
		Profit:           Round(o.Profit),
		ProfitPercentage: Round(o.ProfitPercentage),
		IsArbitrage:      o.IsArbitrage,
		Instructions:     p.Instructions(o),
		DetectedAt:       o.DetectedAt,
	}
}

// Opportunities renders a ranked result set with its summary
func (p *Presenter) Opportunities(opps []opportunity.Opportunity) models.OpportunitiesResponse {
	resp := models.OpportunitiesResponse{
		Count:         len(opps),
		Opportunities: make([]models.Opportunity, 0, len(opps)),
		Summary:       models.Summary{ByType: make(map[string]int)},
	}

	total := decimal.Zero
	for i, o := range opps {
		resp.Opportunities = append(resp.Opportunities, p.Opportunity(o))
		total = total.Add(decimal.NewFromFloat(o.Profit))
		resp.Summary.ByType[string(o.HedgeType)]++
		if i == 0 || o.ProfitPercentage > resp.Summary.BestProfitPct {
			resp.Summary.BestProfitPct = o.ProfitPercentage
		}
	}
	resp.Summary.TotalProfit = total.Round(2).InexactFloat64()
	resp.Summary.BestProfitPct = Round(resp.Summary.BestProfitPct)

	return resp
}

// Instructions describes how to place every leg, e.g.
// "Place £100.00 back bet on Arsenal at Betfair with odds of 2.10, and £95.24
// lay bet at Smarkets with odds of 2.05"
func (p *Presenter) Instructions(o opportunity.Opportunity) string {
	if len(o.Legs) == 0 {
		return ""
	}

	parts := make([]string, len(o.Legs))
	for i, leg := range o.Legs {
		var b strings.Builder
		fmt.Fprintf(&b, "%s %s bet", Money(leg.Stake), leg.Side)
		if i == 0 || leg.Selection != o.Legs[0].Selection {
			fmt.Fprintf(&b, " on %s", leg.Selection)
		}
		fmt.Fprintf(&b, " at %s with odds of %s", p.platforms.Lookup(leg.Platform).Name, decimal.NewFromFloat(leg.Odds).StringFixed(2))
		parts[i] = b.String()
	}

	if len(parts) == 1 {
		return "Place " + parts[0]
	}
	return "Place " + strings.Join(parts[:len(parts)-1], ", ") + ", and " + parts[len(parts)-1]
}
