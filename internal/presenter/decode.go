package presenter

import (
	"fmt"

	"github.com/XavierBriggs/fortuna/services/hedge-calculator/internal/opportunity"
	"github.com/XavierBriggs/fortuna/services/hedge-calculator/pkg/models"
)

// Snapshot converts a wire snapshot into the finder's form
func Snapshot(s models.MarketSnapshot) opportunity.MarketSnapshot {
	books := make([]opportunity.BookSnapshot, len(s.Books))
	for i, b := range s.Books {
		runners := make([]opportunity.RunnerSnapshot, len(b.Runners))
		for j, r := range b.Runners {
			runners[j] = opportunity.RunnerSnapshot{
				SelectionID: r.SelectionID,
				Name:        r.Name,
				BackOdds:    r.BackOdds,
				LayOdds:     r.LayOdds,
			}
		}
		books[i] = opportunity.BookSnapshot{Platform: b.Platform, MarketID: b.MarketID, Runners: runners}
	}

	return opportunity.MarketSnapshot{
		SportKey:    s.SportKey,
		EventID:     s.EventID,
		EventName:   s.EventName,
		Competition: s.Competition,
		StartTime:   s.StartTime,
		Books:       books,
	}
}

// Criteria overlays request criteria on the service defaults
func Criteria(c models.Criteria, defaults opportunity.Criteria) (opportunity.Criteria, error) {
	out := defaults
	if c.Stake != nil {
		out.Stake = *c.Stake
	}
	if c.MinProfitPercentage != nil {
		out.MinProfitPercentage = *c.MinProfitPercentage
	}
	if c.MaxResults != nil {
		out.MaxResults = *c.MaxResults
	}

	include, err := HedgeTypes(c.HedgeTypes)
	if err != nil {
		return opportunity.Criteria{}, err
	}
	if include != nil {
		out.Include = include
	}

	return out, nil
}

// HedgeTypes parses a list of hedge type names. An empty list returns nil,
// which includes every type.
func HedgeTypes(names []string) (map[opportunity.HedgeType]bool, error) {
	if len(names) == 0 {
		return nil, nil
	}

	include := make(map[opportunity.HedgeType]bool, len(names))
	for _, name := range names {
		ht := opportunity.HedgeType(name)
		if !ht.Valid() {
			return nil, fmt.Errorf("unknown hedge type: %s", name)
		}
		include[ht] = true
	}
	return include, nil
}
