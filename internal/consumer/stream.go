package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/XavierBriggs/fortuna/services/hedge-calculator/pkg/models"
	"github.com/redis/go-redis/v9"
)

const (
	// Batch size for reading messages
	batchSize = 10

	// Block duration when waiting for new messages
	blockDuration = 1 * time.Second

	// Pause after a failed read before retrying
	retryDelay = 1 * time.Second
)

// StreamConsumer reads market snapshots from a Redis Stream consumer group
type StreamConsumer struct {
	client     *redis.Client
	consumerID string
	groupName  string
}

// Message is a decoded snapshot and the stream entry it came from
type Message struct {
	ID        string
	StreamKey string
	Snapshot  models.MarketSnapshot
}

// NewStreamConsumer creates a new stream consumer
func NewStreamConsumer(client *redis.Client, consumerID, groupName string) *StreamConsumer {
	return &StreamConsumer{
		client:     client,
		consumerID: consumerID,
		groupName:  groupName,
	}
}

// ConsumeStream starts consuming from a stream and returns channels for
// messages and errors. Both channels close when ctx is cancelled. Entries
// that cannot be decoded are acknowledged and reported on the error channel.
func (c *StreamConsumer) ConsumeStream(ctx context.Context, streamKey string) (<-chan Message, <-chan error) {
	messageCh := make(chan Message, 100)
	errorCh := make(chan error, 10)

	err := c.client.XGroupCreateMkStream(ctx, streamKey, c.groupName, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		errorCh <- fmt.Errorf("failed to create consumer group: %w", err)
		close(messageCh)
		close(errorCh)
		return messageCh, errorCh
	}

	go func() {
		defer close(messageCh)
		defer close(errorCh)

		for {
			if ctx.Err() != nil {
				return
			}

			streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
				Group:    c.groupName,
				Consumer: c.consumerID,
				Streams:  []string{streamKey, ">"},
				Count:    batchSize,
				Block:    blockDuration,
			}).Result()

			if err != nil {
				if errors.Is(err, redis.Nil) {
					continue
				}
				if ctx.Err() != nil {
					return
				}
				report(errorCh, fmt.Errorf("error reading from stream %s: %w", streamKey, err))
				select {
				case <-ctx.Done():
					return
				case <-time.After(retryDelay):
				}
				continue
			}

			for _, stream := range streams {
				for _, entry := range stream.Messages {
					msg, err := parseMessage(streamKey, entry)
					if err != nil {
						report(errorCh, fmt.Errorf("error parsing message %s: %w", entry.ID, err))
						if ackErr := c.AckMessage(ctx, streamKey, entry.ID); ackErr != nil {
							report(errorCh, fmt.Errorf("error acknowledging message %s: %w", entry.ID, ackErr))
						}
						continue
					}

					select {
					case messageCh <- msg:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()

	return messageCh, errorCh
}

// AckMessage acknowledges a message as processed
func (c *StreamConsumer) AckMessage(ctx context.Context, streamKey, messageID string) error {
	return c.client.XAck(ctx, streamKey, c.groupName, messageID).Err()
}

// parseMessage decodes the snapshot held in the entry's "data" field
func parseMessage(streamKey string, entry redis.XMessage) (Message, error) {
	data, ok := entry.Values["data"].(string)
	if !ok {
		return Message{}, fmt.Errorf("missing 'data' field in message")
	}

	var snapshot models.MarketSnapshot
	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		return Message{}, fmt.Errorf("failed to parse snapshot JSON: %w", err)
	}

	return Message{
		ID:        entry.ID,
		StreamKey: streamKey,
		Snapshot:  snapshot,
	}, nil
}

// report delivers err unless the error channel is full
func report(errorCh chan<- error, err error) {
	select {
	case errorCh <- err:
	default:
	}
}
