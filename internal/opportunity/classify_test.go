package opportunity_test

import (
	"testing"

	"github.com/XavierBriggs/fortuna/services/hedge-calculator/internal/opportunity"
)

var (
	betfair  = opportunity.Platform{Key: "betfair", Kind: opportunity.KindExchange, Commission: 0.05}
	smarkets = opportunity.Platform{Key: "smarkets", Kind: opportunity.KindExchange, Commission: 0.02}
	bet365   = opportunity.Platform{Key: "bet365", Kind: opportunity.KindBookmaker}
	paddy    = opportunity.Platform{Key: "paddypower", Kind: opportunity.KindBookmaker}
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		back opportunity.Platform
		lay  opportunity.Platform
		want opportunity.HedgeType
	}{
		{"same exchange", betfair, betfair, opportunity.HedgeTypeExchangeInternal},
		{"two exchanges", betfair, smarkets, opportunity.HedgeTypeCrossExchange},
		{"two exchanges reversed", smarkets, betfair, opportunity.HedgeTypeCrossExchange},
		{"bookmaker then exchange", bet365, smarkets, opportunity.HedgeTypeBookmakerExchange},
		{"exchange then bookmaker", betfair, bet365, opportunity.HedgeTypeBookmakerExchange},
		{"two bookmakers", bet365, paddy, opportunity.HedgeTypeBookmakerBookmaker},
		{"same bookmaker", bet365, bet365, opportunity.HedgeTypeBookmakerBookmaker},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := opportunity.Classify(tt.back, tt.lay); got != tt.want {
				t.Errorf("Classify(%s, %s) = %s, want %s", tt.back.Key, tt.lay.Key, got, tt.want)
			}
		})
	}
}

func TestClassifyLegs(t *testing.T) {
	if got := opportunity.ClassifyLegs(bet365, smarkets, betfair); got != opportunity.HedgeTypeMultiLeg {
		t.Errorf("three legs = %s, want multi_leg", got)
	}
	if got := opportunity.ClassifyLegs(betfair, smarkets); got != opportunity.HedgeTypeCrossExchange {
		t.Errorf("two legs = %s, want cross_exchange", got)
	}
}

func TestRegistry_Lookup(t *testing.T) {
	registry := opportunity.NewRegistry(opportunity.DefaultPlatforms(0.05, 0.02)...)

	bf := registry.Lookup(" Betfair ")
	if bf.Kind != opportunity.KindExchange || bf.Commission != 0.05 || bf.Name != "Betfair" {
		t.Errorf("unexpected betfair platform: %+v", bf)
	}

	unknown := registry.Lookup("williamhill")
	if unknown.Kind != opportunity.KindBookmaker || unknown.Commission != 0 {
		t.Errorf("unknown keys should be commission-free bookmakers, got %+v", unknown)
	}
	if unknown.Name != "Williamhill" {
		t.Errorf("name = %s, want Williamhill", unknown.Name)
	}
	if got := registry.Lookup("écurie").Name; got != "Écurie" {
		t.Errorf("name = %q, want Écurie", got)
	}

	if got := registry.ClassifyKeys("oddsapi", "betfair"); got != opportunity.HedgeTypeBookmakerExchange {
		t.Errorf("ClassifyKeys(oddsapi, betfair) = %s, want bookmaker_exchange", got)
	}
}

func TestHedgeType_Valid(t *testing.T) {
	for _, ht := range opportunity.AllHedgeTypes {
		if !ht.Valid() {
			t.Errorf("%s should be valid", ht)
		}
	}
	if opportunity.HedgeType("triangular").Valid() {
		t.Error("unknown hedge type should be invalid")
	}
}

func TestNormalizeRunnerName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Arsenal FC", "arsenal"},
		{"Manchester City", "manchester"},
		{"  Leeds United ", "leeds"},
		{"St. Etienne", "st etienne"},
		{"Over 2.5 Goals", "over 25 goals"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := opportunity.NormalizeRunnerName(tt.in); got != tt.want {
			t.Errorf("NormalizeRunnerName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
