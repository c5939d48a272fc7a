// Package scanner turns market snapshots read from a stream into published
// and broadcast hedge opportunities.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/XavierBriggs/fortuna/services/hedge-calculator/internal/consumer"
	"github.com/XavierBriggs/fortuna/services/hedge-calculator/internal/opportunity"
	"github.com/XavierBriggs/fortuna/services/hedge-calculator/internal/presenter"
	"github.com/XavierBriggs/fortuna/services/hedge-calculator/pkg/models"
	"github.com/rs/zerolog"
)

// Consumer delivers snapshot messages from a stream
type Consumer interface {
	ConsumeStream(ctx context.Context, streamKey string) (<-chan consumer.Message, <-chan error)
	AckMessage(ctx context.Context, streamKey, messageID string) error
}

// Publisher writes an opportunity to the outbound stream
type Publisher interface {
	PublishOpportunity(ctx context.Context, opportunity models.Opportunity) error
}

// Broadcaster pushes opportunities to feed subscribers
type Broadcaster interface {
	Broadcast(opp models.Opportunity)
}

// Deduplicator suppresses opportunities already emitted recently
type Deduplicator interface {
	ShouldPublish(ctx context.Context, opp models.Opportunity) (bool, error)
	Clear(ctx context.Context, opp models.Opportunity) error
}

// Retrier re-runs a failing operation
type Retrier interface {
	Execute(ctx context.Context, fn func() error) error
}

// Scanner runs every inbound snapshot through the finder
type Scanner struct {
	consumer    Consumer
	publisher   Publisher
	broadcaster Broadcaster
	finder      *opportunity.Finder
	presenter   *presenter.Presenter
	dedup       Deduplicator
	retry       Retrier
	criteria    opportunity.Criteria
	streamKey   string
	log         zerolog.Logger

	snapshotsProcessed   int64
	snapshotsRejected    int64
	opportunitiesFound   int64
	duplicatesSuppressed int64
	publishErrors        int64
	lastSnapshotAt       time.Time
	metricsMu            sync.Mutex
}

// Config holds the scanner's collaborators. Dedup and Retry are optional.
type Config struct {
	Consumer    Consumer
	Publisher   Publisher
	Broadcaster Broadcaster
	Finder      *opportunity.Finder
	Presenter   *presenter.Presenter
	Dedup       Deduplicator
	Retry       Retrier
	Criteria    opportunity.Criteria
	StreamKey   string
	Logger      zerolog.Logger
}

// New creates a scanner
func New(cfg Config) *Scanner {
	return &Scanner{
		consumer:    cfg.Consumer,
		publisher:   cfg.Publisher,
		broadcaster: cfg.Broadcaster,
		finder:      cfg.Finder,
		presenter:   cfg.Presenter,
		dedup:       cfg.Dedup,
		retry:       cfg.Retry,
		criteria:    cfg.Criteria,
		streamKey:   cfg.StreamKey,
		log:         cfg.Logger.With().Str("component", "scanner").Str("stream", cfg.StreamKey).Logger(),
	}
}

// Run consumes snapshots until ctx is cancelled or the stream closes
func (s *Scanner) Run(ctx context.Context) error {
	s.log.Info().Msg("scanner started")

	messageCh, errorCh := s.consumer.ConsumeStream(ctx, s.streamKey)

	for {
		select {
		case <-ctx.Done():
			return nil

		case err, ok := <-errorCh:
			if !ok {
				errorCh = nil
				continue
			}
			s.log.Warn().Err(err).Msg("stream error")

		case msg, ok := <-messageCh:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("snapshot stream %s closed", s.streamKey)
			}

			if err := s.Process(ctx, msg.Snapshot); err != nil {
				s.log.Warn().Err(err).Str("message_id", msg.ID).Msg("error processing snapshot")
			}

			if err := s.consumer.AckMessage(ctx, msg.StreamKey, msg.ID); err != nil {
				s.log.Warn().Err(err).Str("message_id", msg.ID).Msg("error acknowledging message")
			}
		}
	}
}

// Process prices one snapshot, then publishes and broadcasts what it finds
func (s *Scanner) Process(ctx context.Context, snapshot models.MarketSnapshot) error {
	if len(snapshot.Books) == 0 {
		s.recordRejected()
		return fmt.Errorf("snapshot for event %q has no books", snapshot.EventID)
	}

	found, err := s.finder.Find(presenter.Snapshot(snapshot), s.criteria)
	if err != nil {
		s.recordRejected()
		return fmt.Errorf("failed to price snapshot for event %q: %w", snapshot.EventID, err)
	}

	opps := make([]models.Opportunity, len(found))
	for i, o := range found {
		opps[i] = s.presenter.Opportunity(o)
	}
	s.recordProcessed(len(opps))

	if len(opps) == 0 {
		return nil
	}

	s.log.Info().
		Str("event_id", snapshot.EventID).
		Int("opportunities", len(opps)).
		Float64("best_profit_pct", opps[0].ProfitPercentage).
		Msg("hedge opportunities found")

	opps = s.fresh(ctx, opps)
	if len(opps) == 0 {
		return nil
	}

	for _, opp := range opps {
		s.broadcaster.Broadcast(opp)
	}

	if failed, err := s.publish(ctx, opps); err != nil {
		s.recordPublishErrors(len(failed))
		s.forget(ctx, failed)
		return err
	}

	return nil
}

// fresh drops opportunities emitted within the dedup window. A dedup store
// failure lets the opportunity through.
func (s *Scanner) fresh(ctx context.Context, opps []models.Opportunity) []models.Opportunity {
	if s.dedup == nil {
		return opps
	}

	kept := opps[:0]
	for _, opp := range opps {
		ok, err := s.dedup.ShouldPublish(ctx, opp)
		if err != nil {
			s.log.Warn().Err(err).Str("event_id", opp.EventID).Msg("dedup check failed")
			ok = true
		}
		if !ok {
			s.recordDuplicate()
			continue
		}
		kept = append(kept, opp)
	}
	return kept
}

// forget clears the dedup entries of opportunities that failed to publish so
// the next snapshot retries them
func (s *Scanner) forget(ctx context.Context, opps []models.Opportunity) {
	if s.dedup == nil {
		return
	}
	for _, opp := range opps {
		if err := s.dedup.Clear(ctx, opp); err != nil {
			s.log.Warn().Err(err).Str("event_id", opp.EventID).Msg("failed to clear dedup entry")
		}
	}
}

// publish writes each opportunity on its own, retrying only that one, and
// returns those that could not be written
func (s *Scanner) publish(ctx context.Context, opps []models.Opportunity) ([]models.Opportunity, error) {
	var failed []models.Opportunity
	var errs []error

	for _, opp := range opps {
		if err := s.publishOne(ctx, opp); err != nil {
			failed = append(failed, opp)
			errs = append(errs, fmt.Errorf("opportunity %s: %w", opp.ID, err))
		}
	}

	return failed, errors.Join(errs...)
}

func (s *Scanner) publishOne(ctx context.Context, opp models.Opportunity) error {
	if s.retry == nil {
		return s.publisher.PublishOpportunity(ctx, opp)
	}
	return s.retry.Execute(ctx, func() error {
		return s.publisher.PublishOpportunity(ctx, opp)
	})
}

// Metrics returns scanner counters
func (s *Scanner) Metrics() models.ScannerMetrics {
	s.metricsMu.Lock()
	defer s.metricsMu.Unlock()

	m := models.ScannerMetrics{
		Enabled:              true,
		SnapshotsProcessed:   s.snapshotsProcessed,
		SnapshotsRejected:    s.snapshotsRejected,
		OpportunitiesFound:   s.opportunitiesFound,
		DuplicatesSuppressed: s.duplicatesSuppressed,
		PublishErrors:        s.publishErrors,
	}
	if !s.lastSnapshotAt.IsZero() {
		last := s.lastSnapshotAt
		m.LastSnapshotAt = &last
	}
	return m
}

func (s *Scanner) recordProcessed(found int) {
	s.metricsMu.Lock()
	defer s.metricsMu.Unlock()
	s.snapshotsProcessed++
	s.opportunitiesFound += int64(found)
	s.lastSnapshotAt = time.Now()
}

func (s *Scanner) recordRejected() {
	s.metricsMu.Lock()
	defer s.metricsMu.Unlock()
	s.snapshotsRejected++
}

func (s *Scanner) recordDuplicate() {
	s.metricsMu.Lock()
	defer s.metricsMu.Unlock()
	s.duplicatesSuppressed++
}

func (s *Scanner) recordPublishErrors(n int) {
	s.metricsMu.Lock()
	defer s.metricsMu.Unlock()
	s.publishErrors += int64(n)
}
