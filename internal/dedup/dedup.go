package dedup

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/XavierBriggs/fortuna/services/hedge-calculator/pkg/models"
	"github.com/redis/go-redis/v9"
)

// Store is the part of the Redis client the deduplicator needs
type Store interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Deduplicator suppresses opportunities already published within the TTL
type Deduplicator struct {
	store Store
	ttl   time.Duration
}

// NewDeduplicator creates a new deduplicator
func NewDeduplicator(store Store, ttl time.Duration) *Deduplicator {
	return &Deduplicator{
		store: store,
		ttl:   ttl,
	}
}

// ShouldPublish returns true the first time an opportunity is seen within the
// TTL. The check and the mark are a single SET NX.
func (d *Deduplicator) ShouldPublish(ctx context.Context, opp models.Opportunity) (bool, error) {
	fresh, err := d.store.SetNX(ctx, Key(opp), "1", d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to set dedup key: %w", err)
	}
	return fresh, nil
}

// Clear removes an opportunity's dedup entry
func (d *Deduplicator) Clear(ctx context.Context, opp models.Opportunity) error {
	return d.store.Del(ctx, Key(opp)).Err()
}

// Key identifies an opportunity by event, type and priced legs. Stakes are
// excluded so the same prices map to the same key; a price move produces a
// new key.
// Format: hedge:dedup:{event_id}:{hedge_type}:{legs_hash}
func Key(opp models.Opportunity) string {
	legs := make([]string, 0, len(opp.Legs))
	for _, leg := range opp.Legs {
		legs = append(legs, fmt.Sprintf("%s|%s|%s|%.3f", leg.Platform, leg.Side, strings.ToLower(leg.Selection), leg.Odds))
	}
	sort.Strings(legs)

	hash := sha256.Sum256([]byte(strings.Join(legs, ",")))
	return fmt.Sprintf("hedge:dedup:%s:%s:%x", opp.EventID, opp.HedgeType, hash[:8])
}
