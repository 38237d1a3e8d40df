package reporting

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"SettleReporting/internal/event"
	"SettleReporting/internal/observability"
)

// Service folds decoded domain events into the reporting read model.
// It implements ingestion.BatchIngestor.
//
// Event handling is isolated per event: a failing handler is logged and
// counted but never aborts the rest of the batch. Redelivered events are
// absorbed by unique-key inserts and whole-document upserts downstream.
type Service struct {
	log     zerolog.Logger
	metrics *observability.Metrics

	transfers    TransferStore
	settlements  SettlementStore
	participants ParticipantStore

	settleClient SettlementsClient
	partClient   ParticipantsClient
}

func NewService(
	log zerolog.Logger,
	metrics *observability.Metrics,
	transfers TransferStore,
	settlements SettlementStore,
	participants ParticipantStore,
	settleClient SettlementsClient,
	partClient ParticipantsClient,
) *Service {
	return &Service{
		log:          log.With().Str("subcomponent", "reporting").Logger(),
		metrics:      metrics,
		transfers:    transfers,
		settlements:  settlements,
		participants: participants,
		settleClient: settleClient,
		partClient:   partClient,
	}
}

// Ingest processes one batch of events in arrival order. It never returns
// an error: per-event failures are recorded and the batch is always
// considered processed, broker redelivery covers process crashes.
func (s *Service) Ingest(ctx context.Context, events []event.Event) {
	start := time.Now()

	for _, evt := range events {
		if err := s.dispatch(ctx, evt); err != nil {
			s.metrics.EventsFailed.WithLabelValues(evt.EventType().String()).Inc()
			s.log.Error().
				Err(err).
				Str("event_type", evt.EventType().String()).
				Str("key", evt.Key()).
				Msg("event handler failed")
			continue
		}
		s.metrics.EventsIngested.WithLabelValues(evt.EventType().String()).Inc()
	}

	s.metrics.BatchesIngested.Inc()
	s.metrics.BatchSize.Observe(float64(len(events)))
	s.metrics.IngestLatency.Observe(time.Since(start).Seconds())
}

func (s *Service) dispatch(ctx context.Context, evt event.Event) error {
	switch e := evt.(type) {
	case *event.TransferPrepared:
		return s.handleTransferPrepared(ctx, e)
	case *event.TransferFulfiled:
		return s.handleTransferFulfiled(ctx, e)
	case *event.TransferRejectRequestProcessed:
		return s.handleTransferRejected(ctx, e)
	case *event.SettlementMatrixSettled:
		return s.handleMatrixSettled(ctx, e)
	case *event.ParticipantChanged:
		return s.handleParticipantChanged(ctx, e)
	default:
		// New event types on shared topics are expected. Skip quietly.
		s.log.Debug().
			Str("event_type", evt.EventType().String()).
			Msg("ignoring unhandled event type")
		return nil
	}
}
