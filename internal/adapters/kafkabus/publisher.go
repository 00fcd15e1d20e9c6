package kafkabus

import (
	"NestVault/internal/core/ports"
	"context"
	"encoding/json"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

const entryRecordedTopic = "savings.entry_recorded"

// Publisher emits ledger events onto Kafka for downstream consumers
// (analytics, notifications). Delivery is at-least-once; consumers key
// on the transaction signature for deduplication.
type Publisher struct {
	writer *kafka.Writer
	log    zerolog.Logger
}

var _ ports.EventPublisher = (*Publisher)(nil) // Ensure compliance

func NewPublisher(brokers []string, baseLogger *zerolog.Logger) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    entryRecordedTopic,
			Balancer: &kafka.LeastBytes{},
		},
		log: baseLogger.With().Str("component", "kafka_publisher").Logger(),
	}
}

func (p *Publisher) PublishEntryRecorded(ctx context.Context, event ports.EntryRecordedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		// Keyed by wallet so one account's events stay ordered within a
		// partition.
		Key:   []byte(event.Wallet),
		Value: data,
	})
	if err != nil {
		p.log.Error().Err(err).Str("signature", event.Signature).Msg("Failed to publish entry event")
	}
	return err
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
