package opportunity

import (
	"fmt"
	"math"
	"time"

	"github.com/XavierBriggs/fortuna/services/hedge-calculator/internal/calculator"
	"github.com/google/uuid"
)

// Finder enumerates hedges inside market snapshots
type Finder struct {
	engine    calculator.Engine
	platforms *Registry
	now       func() time.Time
	newID     func() string
}

// NewFinder creates a finder pricing hedges with engine
func NewFinder(engine calculator.Engine, platforms *Registry) *Finder {
	return &Finder{
		engine:    engine,
		platforms: platforms,
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}
}

// quote is one book's prices for a runner
type quote struct {
	platform Platform
	marketID string
	runner   RunnerSnapshot
}

// Find prices every profitable hedge in snapshot and applies criteria
func (f *Finder) Find(snapshot MarketSnapshot, criteria Criteria) ([]Opportunity, error) {
	return f.FindAll([]MarketSnapshot{snapshot}, criteria)
}

// FindAll prices every profitable hedge across snapshots, then filters, ranks
// and limits them together
func (f *Finder) FindAll(snapshots []MarketSnapshot, criteria Criteria) ([]Opportunity, error) {
	if math.IsNaN(criteria.Stake) || criteria.Stake <= 0 {
		return nil, fmt.Errorf("%w: stake must be > 0 (got %v)", calculator.ErrInvalidInput, criteria.Stake)
	}

	var all []Opportunity
	for _, snapshot := range snapshots {
		names, byRunner := f.indexRunners(snapshot)

		all = append(all, f.backLayHedges(snapshot, names, byRunner, criteria.Stake)...)

		switch len(names) {
		case 2:
			all = append(all, f.bookmakerDutches(snapshot, names, byRunner, criteria.Stake)...)
		case 3:
			if opp, ok := f.threeWayHedge(snapshot, names, byRunner, criteria.Stake); ok {
				all = append(all, opp)
			}
		}
	}

	return Apply(all, criteria), nil
}

// indexRunners groups quotes by normalised runner name, keeping first-seen order
func (f *Finder) indexRunners(snapshot MarketSnapshot) ([]string, map[string][]quote) {
	var names []string
	byRunner := make(map[string][]quote)

	for _, book := range snapshot.Books {
		platform := f.platforms.Lookup(book.Platform)
		for _, runner := range book.Runners {
			name := NormalizeRunnerName(runner.Name)
			if name == "" {
				continue
			}
			if _, seen := byRunner[name]; !seen {
				names = append(names, name)
			}
			byRunner[name] = append(byRunner[name], quote{platform: platform, marketID: book.MarketID, runner: runner})
		}
	}

	return names, byRunner
}

// backLayHedges pairs every back price with every exchange lay price on the
// same runner
func (f *Finder) backLayHedges(snapshot MarketSnapshot, names []string, byRunner map[string][]quote, stake float64) []Opportunity {
	var opps []Opportunity

	for _, name := range names {
		quotes := byRunner[name]
		for _, back := range quotes {
			if back.runner.BackOdds <= 0 {
				continue
			}
			for _, lay := range quotes {
				if !lay.platform.CanLay() || lay.runner.LayOdds <= 1 {
					continue
				}

				result, err := f.engine.Hedge(calculator.OddsQuote{
					BackOdds:       back.runner.BackOdds,
					LayOdds:        lay.runner.LayOdds,
					CommissionBack: back.platform.Commission,
					CommissionLay:  lay.platform.Commission,
				}, stake)
				if err != nil || result.GuaranteedProfit <= 0 {
					continue
				}

				opps = append(opps, Opportunity{
					ID:          f.newID(),
					SportKey:    snapshot.SportKey,
					EventID:     snapshot.EventID,
					EventName:   snapshot.EventName,
					Competition: snapshot.Competition,
					RunnerName:  back.runner.Name,
					HedgeType:   Classify(back.platform, lay.platform),
					Legs: []Leg{
						newLeg(back, SideBack, back.runner.BackOdds, stake),
						newLeg(lay, SideLay, lay.runner.LayOdds, result.LayStake),
					},
					Stake:            stake,
					LayStake:         result.LayStake,
					Liability:        result.Liability,
					Profit:           result.GuaranteedProfit,
					ProfitPercentage: result.ProfitPercentage,
					IsArbitrage:      result.IsArbitrage,
					DetectedAt:       f.now(),
				})
			}
		}
	}

	return opps
}

// bookmakerDutches backs each side of a two-runner market at different
// bookmakers
func (f *Finder) bookmakerDutches(snapshot MarketSnapshot, names []string, byRunner map[string][]quote, stake float64) []Opportunity {
	var opps []Opportunity

	for _, first := range byRunner[names[0]] {
		if first.platform.Kind != KindBookmaker || first.runner.BackOdds <= 1 {
			continue
		}
		for _, second := range byRunner[names[1]] {
			if second.platform.Kind != KindBookmaker || second.runner.BackOdds <= 1 || second.platform.Key == first.platform.Key {
				continue
			}

			result, err := calculator.CalculateDutch([]float64{first.runner.BackOdds, second.runner.BackOdds}, stake)
			if err != nil || result.Profit <= 0 {
				continue
			}

			opps = append(opps, Opportunity{
				ID:          f.newID(),
				SportKey:    snapshot.SportKey,
				EventID:     snapshot.EventID,
				EventName:   snapshot.EventName,
				Competition: snapshot.Competition,
				RunnerName:  fmt.Sprintf("%s vs %s", first.runner.Name, second.runner.Name),
				HedgeType:   HedgeTypeBookmakerBookmaker,
				Legs: []Leg{
					newLeg(first, SideBack, first.runner.BackOdds, result.Stakes[0]),
					newLeg(second, SideBack, second.runner.BackOdds, result.Stakes[1]),
				},
				Stake:            stake,
				LayStake:         result.Stakes[1],
				Liability:        stake,
				Profit:           result.Profit,
				ProfitPercentage: result.ProfitPercentage,
				IsArbitrage:      result.IsArbitrage,
				DetectedAt:       f.now(),
			})
		}
	}

	return opps
}

// threeWayHedge backs one outcome at its best price and covers the other two
// at theirs, choosing the most profitable outcome to back
func (f *Finder) threeWayHedge(snapshot MarketSnapshot, names []string, byRunner map[string][]quote, stake float64) (Opportunity, bool) {
	var best [3]quote
	for i, name := range names {
		found := false
		for _, q := range byRunner[name] {
			if q.runner.BackOdds > 1 && (!found || q.runner.BackOdds > best[i].runner.BackOdds) {
				best[i] = q
				found = true
			}
		}
		if !found {
			return Opportunity{}, false
		}
	}

	var selections [3]string
	var odds [3]float64
	for i := range best {
		selections[i] = best[i].runner.Name
		odds[i] = best[i].runner.BackOdds
	}

	chosen, i, err := calculator.BestThreeWayHedgeBy(selections, odds, odds, stake,
		func(back, cover1, cover2 int) calculator.ThreeWayCommission {
			return calculator.ThreeWayCommission{
				Back: best[back].platform.Commission,
				Lay:  math.Max(best[cover1].platform.Commission, best[cover2].platform.Commission),
			}
		})
	if err != nil || !chosen.Profitable {
		return Opportunity{}, false
	}

	j, k := calculator.ThreeWayCovers(i)
	legs := []Leg{
		newLeg(best[i], SideBack, chosen.BackOdds, chosen.BackStake),
		newLeg(best[j], SideBack, chosen.LayOdds1, chosen.LayStake1),
		newLeg(best[k], SideBack, chosen.LayOdds2, chosen.LayStake2),
	}

	return Opportunity{
		ID:               f.newID(),
		SportKey:         snapshot.SportKey,
		EventID:          snapshot.EventID,
		EventName:        snapshot.EventName,
		Competition:      snapshot.Competition,
		RunnerName:       chosen.BackSelection,
		HedgeType:        HedgeTypeMultiLeg,
		Legs:             legs,
		Stake:            chosen.BackStake,
		LayStake:         chosen.LayStake1 + chosen.LayStake2,
		Liability:        chosen.TotalStake,
		Profit:           chosen.Profit,
		ProfitPercentage: chosen.ROI,
		IsArbitrage:      chosen.Profitable,
		DetectedAt:       f.now(),
	}, true
}

func newLeg(q quote, side Side, odds, stake float64) Leg {
	return Leg{
		Platform:    q.platform.Key,
		Side:        side,
		MarketID:    q.marketID,
		SelectionID: q.runner.SelectionID,
		Selection:   q.runner.Name,
		Odds:        odds,
		Commission:  q.platform.Commission,
		Stake:       stake,
	}
}
