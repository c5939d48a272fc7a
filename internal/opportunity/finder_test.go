package opportunity_test

import (
	"errors"
	"math"
	"testing"

	"github.com/XavierBriggs/fortuna/services/hedge-calculator/internal/calculator"
	"github.com/XavierBriggs/fortuna/services/hedge-calculator/internal/opportunity"
	"github.com/google/uuid"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}

func newFinder() *opportunity.Finder {
	registry := opportunity.NewRegistry(opportunity.DefaultPlatforms(0.05, 0.02)...)
	return opportunity.NewFinder(calculator.NewEngine(calculator.PolicyGross), registry)
}

func matchOddsSnapshot() opportunity.MarketSnapshot {
	return opportunity.MarketSnapshot{
		SportKey:    "soccer_epl",
		EventID:     "evt-1",
		EventName:   "Arsenal v Chelsea",
		Competition: "Premier League",
		Books: []opportunity.BookSnapshot{
			{Platform: "betfair", MarketID: "1.234", Runners: []opportunity.RunnerSnapshot{
				{SelectionID: "47972", Name: "Arsenal", BackOdds: 2.5, LayOdds: 2.6},
			}},
			{Platform: "smarkets", MarketID: "sm-99", Runners: []opportunity.RunnerSnapshot{
				{SelectionID: "a1", Name: "Arsenal", BackOdds: 2.3, LayOdds: 2.2},
			}},
			{Platform: "williamhill", Runners: []opportunity.RunnerSnapshot{
				{Name: "Arsenal FC", BackOdds: 2.7},
			}},
		},
	}
}

func TestFinder_BackLayHedges(t *testing.T) {
	opps, err := newFinder().Find(matchOddsSnapshot(), opportunity.Criteria{Stake: 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []struct {
		hedgeType opportunity.HedgeType
		back      string
		lay       string
		profit    float64
	}{
		{opportunity.HedgeTypeBookmakerExchange, "williamhill", "smarkets", 20.27},
		{opportunity.HedgeTypeCrossExchange, "betfair", "smarkets", 6.14},
		{opportunity.HedgeTypeExchangeInternal, "smarkets", "smarkets", 1.95},
	}

	if len(opps) != len(want) {
		t.Fatalf("expected %d opportunities, got %d", len(want), len(opps))
	}

	for i, w := range want {
		o := opps[i]
		if o.HedgeType != w.hedgeType {
			t.Errorf("opportunity %d: type = %s, want %s", i, o.HedgeType, w.hedgeType)
		}
		if len(o.Legs) != 2 {
			t.Fatalf("opportunity %d: expected 2 legs, got %d", i, len(o.Legs))
		}
		if o.Legs[0].Platform != w.back || o.Legs[0].Side != opportunity.SideBack {
			t.Errorf("opportunity %d: back leg = %+v", i, o.Legs[0])
		}
		if o.Legs[1].Platform != w.lay || o.Legs[1].Side != opportunity.SideLay {
			t.Errorf("opportunity %d: lay leg = %+v", i, o.Legs[1])
		}
		if !approx(o.Profit, w.profit) {
			t.Errorf("opportunity %d: profit = %f, want %f", i, o.Profit, w.profit)
		}
		if !approx(o.ProfitPercentage, w.profit) {
			t.Errorf("opportunity %d: profit pct = %f, want %f", i, o.ProfitPercentage, w.profit)
		}
		if o.Legs[1].Stake != o.LayStake {
			t.Errorf("opportunity %d: lay leg stake %f != lay stake %f", i, o.Legs[1].Stake, o.LayStake)
		}
		if _, err := uuid.Parse(o.ID); err != nil {
			t.Errorf("opportunity %d: id %q is not a uuid", i, o.ID)
		}
		if o.EventID != "evt-1" || o.SportKey != "soccer_epl" {
			t.Errorf("opportunity %d: snapshot metadata not carried: %+v", i, o)
		}
		if o.DetectedAt.IsZero() {
			t.Errorf("opportunity %d: detected_at not set", i)
		}
	}
}

func TestFinder_Criteria(t *testing.T) {
	finder := newFinder()

	tests := []struct {
		name     string
		criteria opportunity.Criteria
		want     []opportunity.HedgeType
	}{
		{
			name:     "min profit",
			criteria: opportunity.Criteria{Stake: 100, MinProfitPercentage: 5},
			want:     []opportunity.HedgeType{opportunity.HedgeTypeBookmakerExchange, opportunity.HedgeTypeCrossExchange},
		},
		{
			name: "include cross exchange only",
			criteria: opportunity.Criteria{Stake: 100, Include: map[opportunity.HedgeType]bool{
				opportunity.HedgeTypeCrossExchange: true,
			}},
			want: []opportunity.HedgeType{opportunity.HedgeTypeCrossExchange},
		},
		{
			name:     "max results",
			criteria: opportunity.Criteria{Stake: 100, MaxResults: 1},
			want:     []opportunity.HedgeType{opportunity.HedgeTypeBookmakerExchange},
		},
		{
			name:     "threshold above everything",
			criteria: opportunity.Criteria{Stake: 100, MinProfitPercentage: 50},
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opps, err := finder.Find(matchOddsSnapshot(), tt.criteria)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(opps) != len(tt.want) {
				t.Fatalf("expected %d opportunities, got %d", len(tt.want), len(opps))
			}
			for i, ht := range tt.want {
				if opps[i].HedgeType != ht {
					t.Errorf("position %d: type = %s, want %s", i, opps[i].HedgeType, ht)
				}
			}
		})
	}
}

func TestFinder_BookmakerDutch(t *testing.T) {
	snapshot := opportunity.MarketSnapshot{
		EventID: "evt-2",
		Books: []opportunity.BookSnapshot{
			{Platform: "bet365", Runners: []opportunity.RunnerSnapshot{
				{Name: "Over 2.5", BackOdds: 2.1},
				{Name: "Under 2.5", BackOdds: 1.8},
			}},
			{Platform: "williamhill", Runners: []opportunity.RunnerSnapshot{
				{Name: "Over 2.5", BackOdds: 1.8},
				{Name: "Under 2.5", BackOdds: 2.1},
			}},
		},
	}

	opps, err := newFinder().Find(snapshot, opportunity.Criteria{Stake: 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(opps) != 1 {
		t.Fatalf("expected 1 opportunity, got %d", len(opps))
	}

	o := opps[0]
	if o.HedgeType != opportunity.HedgeTypeBookmakerBookmaker {
		t.Errorf("type = %s, want bookmaker_bookmaker", o.HedgeType)
	}
	if o.RunnerName != "Over 2.5 vs Under 2.5" {
		t.Errorf("runner name = %q", o.RunnerName)
	}
	if !approx(o.Legs[0].Stake, 50) || !approx(o.Legs[1].Stake, 50) {
		t.Errorf("stakes = %f/%f, want 50/50", o.Legs[0].Stake, o.Legs[1].Stake)
	}
	if o.Legs[0].Platform != "bet365" || o.Legs[1].Platform != "williamhill" {
		t.Errorf("platforms = %s/%s", o.Legs[0].Platform, o.Legs[1].Platform)
	}
	if !approx(o.Profit, 5) || !approx(o.ProfitPercentage, 5) {
		t.Errorf("profit = %f (%f%%), want 5 (5%%)", o.Profit, o.ProfitPercentage)
	}
}

func TestFinder_ThreeWay(t *testing.T) {
	snapshot := opportunity.MarketSnapshot{
		EventID: "evt-3",
		Books: []opportunity.BookSnapshot{
			{Platform: "bet365", Runners: []opportunity.RunnerSnapshot{
				{Name: "Home", BackOdds: 2.5},
				{Name: "Draw", BackOdds: 3.2},
				{Name: "Away", BackOdds: 3.0},
			}},
			{Platform: "williamhill", Runners: []opportunity.RunnerSnapshot{
				{Name: "Home", BackOdds: 2.3},
				{Name: "Draw", BackOdds: 4.0},
				{Name: "Away", BackOdds: 3.1},
			}},
			{Platform: "paddypower", Runners: []opportunity.RunnerSnapshot{
				{Name: "Home", BackOdds: 2.2},
				{Name: "Draw", BackOdds: 3.5},
				{Name: "Away", BackOdds: 5.0},
			}},
		},
	}

	opps, err := newFinder().Find(snapshot, opportunity.Criteria{Stake: 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(opps) != 1 {
		t.Fatalf("expected 1 opportunity, got %d", len(opps))
	}

	o := opps[0]
	if o.HedgeType != opportunity.HedgeTypeMultiLeg {
		t.Errorf("type = %s, want multi_leg", o.HedgeType)
	}
	if len(o.Legs) != 3 {
		t.Fatalf("expected 3 legs, got %d", len(o.Legs))
	}

	// Backing Away at 5.0 returns the largest absolute profit
	if o.RunnerName != "Away" {
		t.Errorf("runner = %s, want Away", o.RunnerName)
	}
	wantPlatforms := []string{"paddypower", "bet365", "williamhill"}
	wantStakes := []float64{100, 200, 125}
	for i, leg := range o.Legs {
		if leg.Platform != wantPlatforms[i] {
			t.Errorf("leg %d platform = %s, want %s", i, leg.Platform, wantPlatforms[i])
		}
		if !approx(leg.Stake, wantStakes[i]) {
			t.Errorf("leg %d stake = %f, want %f", i, leg.Stake, wantStakes[i])
		}
	}
	if !approx(o.Profit, 75) {
		t.Errorf("profit = %f, want 75", o.Profit)
	}
	if !approx(o.ProfitPercentage, 17.65) {
		t.Errorf("roi = %f, want 17.65", o.ProfitPercentage)
	}
}

func TestFinder_InvalidStake(t *testing.T) {
	finder := newFinder()

	for _, stake := range []float64{0, -10, math.NaN()} {
		_, err := finder.Find(matchOddsSnapshot(), opportunity.Criteria{Stake: stake})
		if !errors.Is(err, calculator.ErrInvalidInput) {
			t.Errorf("stake %v: expected ErrInvalidInput, got %v", stake, err)
		}
	}
}

func TestFinder_FindAllRanksAcrossSnapshots(t *testing.T) {
	dutch := opportunity.MarketSnapshot{
		EventID: "evt-2",
		Books: []opportunity.BookSnapshot{
			{Platform: "bet365", Runners: []opportunity.RunnerSnapshot{{Name: "Yes", BackOdds: 2.2}, {Name: "No", BackOdds: 1.5}}},
			{Platform: "williamhill", Runners: []opportunity.RunnerSnapshot{{Name: "Yes", BackOdds: 1.5}, {Name: "No", BackOdds: 2.2}}},
		},
	}

	opps, err := newFinder().FindAll([]opportunity.MarketSnapshot{matchOddsSnapshot(), dutch}, opportunity.Criteria{Stake: 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(opps) != 4 {
		t.Fatalf("expected 4 opportunities, got %d", len(opps))
	}
	for i := 1; i < len(opps); i++ {
		if opps[i].ProfitPercentage > opps[i-1].ProfitPercentage {
			t.Errorf("not ranked: %f before %f", opps[i-1].ProfitPercentage, opps[i].ProfitPercentage)
		}
	}
}
