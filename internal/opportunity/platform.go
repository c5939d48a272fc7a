package opportunity

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// PlatformKind distinguishes exchanges, which accept lay bets, from bookmakers
type PlatformKind string

const (
	KindExchange  PlatformKind = "exchange"
	KindBookmaker PlatformKind = "bookmaker"
)

// Platform identifies where a leg is placed and what it charges
type Platform struct {
	Key        string
	Name       string
	Kind       PlatformKind
	Commission float64
}

// CanLay reports whether the platform takes lay bets
func (p Platform) CanLay() bool {
	return p.Kind == KindExchange
}

// Registry resolves platform keys. Unknown keys are treated as bookmakers
// without commission, which is how Odds API bookmakers arrive.
type Registry struct {
	platforms map[string]Platform
}

// NewRegistry creates a registry from known platforms
func NewRegistry(platforms ...Platform) *Registry {
	r := &Registry{platforms: make(map[string]Platform, len(platforms))}
	for _, p := range platforms {
		key := normalizeKey(p.Key)
		p.Key = key
		if p.Name == "" {
			p.Name = displayName(key)
		}
		r.platforms[key] = p
	}
	return r
}

// DefaultPlatforms returns the exchanges the dashboard trades on plus the
// Odds API aggregate bookmaker
func DefaultPlatforms(betfairCommission, smarketsCommission float64) []Platform {
	return []Platform{
		{Key: "betfair", Name: "Betfair", Kind: KindExchange, Commission: betfairCommission},
		{Key: "smarkets", Name: "Smarkets", Kind: KindExchange, Commission: smarketsCommission},
		{Key: "oddsapi", Name: "Bookmaker", Kind: KindBookmaker},
	}
}

// Lookup returns the platform registered under key
func (r *Registry) Lookup(key string) Platform {
	key = normalizeKey(key)
	if p, ok := r.platforms[key]; ok {
		return p
	}
	return Platform{Key: key, Name: displayName(key), Kind: KindBookmaker}
}

// ClassifyKeys classifies legs given by platform key
func (r *Registry) ClassifyKeys(keys ...string) HedgeType {
	platforms := make([]Platform, len(keys))
	for i, k := range keys {
		platforms[i] = r.Lookup(k)
	}
	return ClassifyLegs(platforms...)
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

func displayName(key string) string {
	if key == "" {
		return "Bookmaker"
	}
	first, size := utf8.DecodeRuneInString(key)
	return string(unicode.ToUpper(first)) + key[size:]
}
