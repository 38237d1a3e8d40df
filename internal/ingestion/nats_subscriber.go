package ingestion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"

	"SettleReporting/internal/event"
	"SettleReporting/internal/observability"
)

// RawEvent is the undecoded broker message, ready for ParseRawEvent.
type RawEvent struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
}

// BatchIngestor folds a batch of decoded domain events into the reporting
// store. Implemented by reporting.Service. The batch call never returns an
// error: per-event failures are isolated and logged inside.
type BatchIngestor interface {
	Ingest(ctx context.Context, events []event.Event)
}

// SubjectConfig maps a reporting sub-domain to its JetStream stream,
// subject filter and durable consumer. One consumer loop runs per entry so
// the sub-domains scale and fail independently.
type SubjectConfig struct {
	Subject      string
	ConsumerName string
	StreamName   string
}

// DefaultSubjects returns the standard sub-domain subject configuration.
func DefaultSubjects() []SubjectConfig {
	return []SubjectConfig{
		{Subject: "payments.transfers.events.>", ConsumerName: "reporting-transfers", StreamName: "TRANSFERS_EVENTS"},
		{Subject: "payments.settlements.events.>", ConsumerName: "reporting-settlements", StreamName: "SETTLEMENTS_EVENTS"},
		{Subject: "payments.participants.events.>", ConsumerName: "reporting-participants", StreamName: "PARTICIPANTS_EVENTS"},
	}
}

// NATSSubscriber pulls event batches from JetStream and feeds them to the
// ingestor. Delivery is at-least-once: a batch is acked after the ingestor
// returns, and the ingestor's mutations are idempotent, so redelivery after
// a crash converges to the same store state.
type NATSSubscriber struct {
	js        jetstream.JetStream
	ingestor  BatchIngestor
	logger    zerolog.Logger
	metrics   *observability.Metrics
	batchSize int
	maxWait   time.Duration
}

func NewNATSSubscriber(js jetstream.JetStream, ingestor BatchIngestor, logger zerolog.Logger, metrics *observability.Metrics, batchSize int) *NATSSubscriber {
	if batchSize <= 0 {
		batchSize = 64
	}
	return &NATSSubscriber{
		js:        js,
		ingestor:  ingestor,
		logger:    logger.With().Str("component", "nats_subscriber").Logger(),
		metrics:   metrics,
		batchSize: batchSize,
		maxWait:   5 * time.Second,
	}
}

// Run creates the durable consumer for cfg and loops fetching batches until
// ctx is cancelled. Events within a fetched batch are processed strictly
// sequentially by the ingestor; messages are acked whether or not their
// event's handler succeeded (the batch is always "processed", redelivery
// covers crashes, not handler failures).
func (ns *NATSSubscriber) Run(ctx context.Context, cfg SubjectConfig) error {
	consumer, err := ns.js.CreateOrUpdateConsumer(ctx, cfg.StreamName, jetstream.ConsumerConfig{
		Durable:       cfg.ConsumerName,
		FilterSubject: cfg.Subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       30 * time.Second,
		MaxDeliver:    5,
		DeliverPolicy: jetstream.DeliverAllPolicy,
	})
	if err != nil {
		return fmt.Errorf("create consumer %s: %w", cfg.ConsumerName, err)
	}

	ns.logger.Info().
		Str("subject", cfg.Subject).
		Str("consumer", cfg.ConsumerName).
		Msg("consumer loop started")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		msgs, err := consumer.Fetch(ns.batchSize, jetstream.FetchMaxWait(ns.maxWait))
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			ns.logger.Warn().Err(err).Str("consumer", cfg.ConsumerName).Msg("fetch failed")
			continue
		}

		var batch []event.Event
		var acks []jetstream.Msg

		for msg := range msgs.Messages() {
			acks = append(acks, msg)

			evt, err := ParseRawEvent(RawEvent{
				Subject:   msg.Subject(),
				Data:      msg.Data(),
				Timestamp: time.Now(),
			})
			if err != nil {
				if errors.Is(err, ErrUnknownEventType) {
					ns.metrics.EventsUnknown.Inc()
					ns.logger.Debug().Str("subject", msg.Subject()).Msg("skipping unknown event type")
				} else {
					ns.logger.Warn().Err(err).Str("subject", msg.Subject()).Msg("undecodable event dropped")
				}
				continue
			}
			batch = append(batch, evt)
		}
		if err := msgs.Error(); err != nil {
			ns.logger.Warn().Err(err).Str("consumer", cfg.ConsumerName).Msg("fetch stream error")
		}

		if len(batch) > 0 {
			ns.ingestor.Ingest(ctx, batch)
		}

		for _, msg := range acks {
			if err := msg.Ack(); err != nil {
				ns.logger.Warn().Err(err).Msg("ack failed")
			}
		}
	}
}

// EnsureStreams creates the required JetStream streams if they don't exist.
func EnsureStreams(ctx context.Context, js jetstream.JetStream) error {
	streams := []jetstream.StreamConfig{
		{
			Name:      "TRANSFERS_EVENTS",
			Subjects:  []string{"payments.transfers.events.>"},
			Storage:   jetstream.FileStorage,
			Retention: jetstream.LimitsPolicy,
			MaxAge:    72 * time.Hour,
			Replicas:  1,
		},
		{
			Name:      "SETTLEMENTS_EVENTS",
			Subjects:  []string{"payments.settlements.events.>"},
			Storage:   jetstream.FileStorage,
			Retention: jetstream.LimitsPolicy,
			MaxAge:    72 * time.Hour,
			Replicas:  1,
		},
		{
			Name:      "PARTICIPANTS_EVENTS",
			Subjects:  []string{"payments.participants.events.>"},
			Storage:   jetstream.FileStorage,
			Retention: jetstream.LimitsPolicy,
			MaxAge:    72 * time.Hour,
			Replicas:  1,
		},
	}

	for _, cfg := range streams {
		if _, err := js.CreateOrUpdateStream(ctx, cfg); err != nil {
			return fmt.Errorf("create stream %s: %w", cfg.Name, err)
		}
	}

	return nil
}

// ConnectNATS establishes a NATS connection and returns a JetStream context.
func ConnectNATS(url string, logger zerolog.Logger) (*nats.Conn, jetstream.JetStream, error) {
	nc, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info().Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("jetstream: %w", err)
	}

	return nc, js, nil
}
