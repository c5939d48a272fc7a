package opportunity

import "time"

// HedgeType is the fixed taxonomy of hedge opportunities
type HedgeType string

const (
	HedgeTypeExchangeInternal   HedgeType = "exchange_internal"   // Back and lay on the same exchange
	HedgeTypeCrossExchange      HedgeType = "cross_exchange"      // Back on one exchange, lay on another
	HedgeTypeBookmakerExchange  HedgeType = "bookmaker_exchange"  // Bookmaker on one side, exchange on the other
	HedgeTypeBookmakerBookmaker HedgeType = "bookmaker_bookmaker" // Opposing back bets at two bookmakers
	HedgeTypeMultiLeg           HedgeType = "multi_leg"           // More than two legs covering all outcomes
)

// AllHedgeTypes lists the taxonomy in display order
var AllHedgeTypes = []HedgeType{
	HedgeTypeExchangeInternal,
	HedgeTypeCrossExchange,
	HedgeTypeBookmakerExchange,
	HedgeTypeBookmakerBookmaker,
	HedgeTypeMultiLeg,
}

// Valid reports whether t belongs to the taxonomy
func (t HedgeType) Valid() bool {
	for _, known := range AllHedgeTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Side is the direction of a leg
type Side string

const (
	SideBack Side = "back"
	SideLay  Side = "lay"
)

// Leg is a single bet within an opportunity
type Leg struct {
	Platform    string
	Side        Side
	MarketID    string
	SelectionID string
	Selection   string
	Odds        float64
	Commission  float64
	Stake       float64
}

// Opportunity is a priced hedge between two or more legs
type Opportunity struct {
	ID               string
	SportKey         string
	EventID          string
	EventName        string
	Competition      string
	RunnerName       string
	HedgeType        HedgeType
	Legs             []Leg
	Stake            float64
	LayStake         float64
	Liability        float64
	Profit           float64
	ProfitPercentage float64
	IsArbitrage      bool
	DetectedAt       time.Time
}

// MarketSnapshot is every book's prices for one market at a point in time
type MarketSnapshot struct {
	SportKey    string
	EventID     string
	EventName   string
	Competition string
	StartTime   *time.Time
	Books       []BookSnapshot
}

// BookSnapshot is a single platform's view of the market
type BookSnapshot struct {
	Platform string
	MarketID string
	Runners  []RunnerSnapshot
}

// RunnerSnapshot holds the best prices offered for one selection. A zero
// price means the side is not offered.
type RunnerSnapshot struct {
	SelectionID string
	Name        string
	BackOdds    float64
	LayOdds     float64
}

// Criteria narrows and ranks finder output
type Criteria struct {
	Stake               float64
	MinProfitPercentage float64
	Include             map[HedgeType]bool // nil includes every type
	MaxResults          int                // 0 means unlimited
}
