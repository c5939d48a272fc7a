package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/XavierBriggs/fortuna/services/hedge-calculator/pkg/models"
	"github.com/redis/go-redis/v9"
)

// Adder is the part of the Redis client the publisher needs
type Adder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// StreamPublisher publishes hedge opportunities to a Redis Stream
type StreamPublisher struct {
	client    Adder
	streamKey string
	maxLen    int64
}

// NewStreamPublisher creates a publisher writing to streamKey. The stream is
// approximately capped at maxLen entries; 0 leaves it uncapped.
func NewStreamPublisher(client Adder, streamKey string, maxLen int64) *StreamPublisher {
	return &StreamPublisher{
		client:    client,
		streamKey: streamKey,
		maxLen:    maxLen,
	}
}

// PublishOpportunity publishes a single opportunity in the "opportunity" field
func (p *StreamPublisher) PublishOpportunity(ctx context.Context, opportunity models.Opportunity) error {
	opportunityJSON, err := json.Marshal(opportunity)
	if err != nil {
		return fmt.Errorf("failed to marshal opportunity: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: p.streamKey,
		Values: map[string]interface{}{
			"opportunity": string(opportunityJSON),
			"hedge_type":  opportunity.HedgeType,
			"event_id":    opportunity.EventID,
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("failed to publish to stream %s: %w", p.streamKey, err)
	}

	return nil
}
