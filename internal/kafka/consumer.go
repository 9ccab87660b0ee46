package kafka

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/twmb/franz-go/pkg/kgo"
	"vn.io.arda/reminder/internal/application"
	"vn.io.arda/reminder/internal/domain"
	"vn.io.arda/reminder/internal/kafka/registry"

	// Blank imports trigger init() in each handler file,
	// registering all event handlers into the registry.
	_ "vn.io.arda/reminder/internal/kafka/handlers"
)

// EventService applies decoded events. Implemented by *application.Service.
type EventService interface {
	HandleEvent(ctx context.Context, ev domain.Event) (application.EventOutcome, error)
}

// Consumer wraps the franz-go Kafka client.
type Consumer struct {
	client  *kgo.Client
	service EventService
}

// New creates a Consumer with the given brokers, group ID, and topics.
// An empty topic list subscribes to every topic with a registered handler.
func New(brokers []string, groupID string, topics []string, svc EventService) (*Consumer, error) {
	if len(topics) == 0 {
		topics = registry.Topics()
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumerGroup(groupID),
		kgo.ConsumeTopics(topics...),
		kgo.DisableAutoCommit(),
	)
	if err != nil {
		return nil, err
	}
	return &Consumer{client: client, service: svc}, nil
}

// Start begins polling Kafka and processing records. Blocks until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) {
	log.Info().Msg("kafka consumer started")

	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			break
		}

		fetches.EachError(func(topic string, partition int32, err error) {
			log.Error().Err(err).Str("topic", topic).Int32("partition", partition).Msg("kafka fetch error")
		})

		fetches.EachRecord(func(r *kgo.Record) {
			c.process(ctx, r)
		})

		if err := c.client.CommitUncommittedOffsets(ctx); err != nil {
			log.Error().Err(err).Msg("kafka commit error")
		}
	}

	c.client.Close()
	log.Info().Msg("kafka consumer stopped")
}

func (c *Consumer) process(ctx context.Context, r *kgo.Record) {
	log.Debug().
		Str("topic", r.Topic).
		Str("key", string(r.Key)).
		Msg("processing kafka record")

	ev := registry.Dispatch(r.Topic, r.Value)
	if ev == nil {
		log.Debug().Str("topic", r.Topic).Msg("no handler matched, skipping")
		return
	}

	out, err := c.service.HandleEvent(ctx, *ev)
	if err != nil {
		log.Error().Err(err).
			Str("topic", r.Topic).
			Str("event_type", string(ev.Type)).
			Str("event_id", ev.EventID).
			Str("owner", ev.Owner).
			Msg("failed to apply event from kafka")
		return
	}

	log.Debug().
		Str("event_type", string(ev.Type)).
		Str("owner", ev.Owner).
		Bool("scheduled", out.Scheduled).
		Int("cancelled", out.Cancelled).
		Str("reason", out.Reason).
		Msg("kafka event applied")
}
