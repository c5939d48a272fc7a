package calculator

import (
	"fmt"
	"strings"
)

// CommissionPolicy selects how lay-side commission enters the lay stake
type CommissionPolicy string

const (
	// PolicyGross sizes the lay stake from the quoted lay odds and charges lay
	// commission only on the lay-side winnings
	PolicyGross CommissionPolicy = "gross"

	// PolicyNetLayOdds sizes the lay stake from lay odds reduced by the
	// commission taken on the lay winnings: layOdds - c*(layOdds-1)
	PolicyNetLayOdds CommissionPolicy = "net_lay_odds"
)

// DefaultPolicy reproduces the dashboard's reference figures
const DefaultPolicy = PolicyGross

// ParsePolicy resolves a configured policy name. Empty selects DefaultPolicy.
func ParsePolicy(name string) (CommissionPolicy, error) {
	switch CommissionPolicy(strings.ToLower(strings.TrimSpace(name))) {
	case "":
		return DefaultPolicy, nil
	case PolicyGross:
		return PolicyGross, nil
	case PolicyNetLayOdds:
		return PolicyNetLayOdds, nil
	default:
		return "", fmt.Errorf("unknown commission policy %q (want %q or %q)", name, PolicyGross, PolicyNetLayOdds)
	}
}

// effectiveLayOdds returns the odds the lay stake is divided by
func (p CommissionPolicy) effectiveLayOdds(layOdds, layCommission float64) (float64, error) {
	switch p {
	case PolicyGross:
		return layOdds, nil
	case PolicyNetLayOdds:
		return layOdds - layCommission*(layOdds-1), nil
	default:
		return 0, fmt.Errorf("unknown commission policy %q", p)
	}
}
