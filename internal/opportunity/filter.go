package opportunity

import "sort"

// FilterByProfitPercentage keeps opportunities whose profit percentage is at
// least min, preserving order
func FilterByProfitPercentage(opps []Opportunity, min float64) []Opportunity {
	kept := make([]Opportunity, 0, len(opps))
	for _, o := range opps {
		if o.ProfitPercentage >= min {
			kept = append(kept, o)
		}
	}
	return kept
}

// FilterByTypes keeps opportunities whose type is included. A nil include
// set keeps everything.
func FilterByTypes(opps []Opportunity, include map[HedgeType]bool) []Opportunity {
	if include == nil {
		return opps
	}

	kept := make([]Opportunity, 0, len(opps))
	for _, o := range opps {
		if include[o.HedgeType] {
			kept = append(kept, o)
		}
	}
	return kept
}

// SortByProfitPercentage orders opportunities best first. Equal percentages
// keep their original order.
func SortByProfitPercentage(opps []Opportunity) {
	sort.SliceStable(opps, func(i, j int) bool {
		return opps[i].ProfitPercentage > opps[j].ProfitPercentage
	})
}

// Limit truncates to at most n opportunities. n <= 0 leaves the slice as is.
func Limit(opps []Opportunity, n int) []Opportunity {
	if n <= 0 || len(opps) <= n {
		return opps
	}
	return opps[:n]
}

// Apply runs the criteria filters, ranks and limits the result
func Apply(opps []Opportunity, criteria Criteria) []Opportunity {
	out := FilterByProfitPercentage(opps, criteria.MinProfitPercentage)
	out = FilterByTypes(out, criteria.Include)
	SortByProfitPercentage(out)
	return Limit(out, criteria.MaxResults)
}
