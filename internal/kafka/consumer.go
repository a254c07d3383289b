package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/IBM/sarama"

	appErr "github.com/souldream/backend/internal/errors"
	"github.com/souldream/backend/internal/model"
	"github.com/souldream/backend/internal/service"
	"github.com/souldream/backend/pkg/tracing"
)

// Consumer reads notification events from kafka and feeds them into the
// fan-out pipeline on behalf of internal producers.
type Consumer struct {
	topic         string
	notifSvc      service.NotificationService
	consumerGroup sarama.ConsumerGroup
	log           *slog.Logger
	tracer        *tracing.Tracer
}

// NewConsumer constructs a new kafka Consumer.
// It receives its consumer group via dependency injection.
func NewConsumer(
	topic string,
	consumerGroup sarama.ConsumerGroup,
	notifSvc service.NotificationService,
	log *slog.Logger,
	tracer *tracing.Tracer,
) *Consumer {
	return &Consumer{
		topic:         topic,
		notifSvc:      notifSvc,
		consumerGroup: consumerGroup,
		log:           log,
		tracer:        tracer,
	}
}

// Start begins the consumer loop, listening for events on the configured
// topic. It blocks until the context is canceled or the group is closed.
func (c *Consumer) Start(ctx context.Context) error {
	defer func() {
		if err := c.consumerGroup.Close(); err != nil {
			c.log.Warn("Failed to close consumer group", slog.Any("error", err))
		}
	}()

	c.log.Info("Kafka consumer started", slog.String("topic", c.topic))

	backoff := 1 * time.Second
	for {
		err := c.consumerGroup.Consume(ctx, []string{c.topic}, c)
		if err != nil {
			c.log.Error("Error consuming events", slog.Any("error", err))
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return err
			}
			// Back off on transient errors
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		if ctx.Err() != nil {
			c.log.Info("Context cancelled, stopping consumer")
			return ctx.Err()
		}
	}
}

// Setup is called once when a new consumer session starts.
func (c *Consumer) Setup(session sarama.ConsumerGroupSession) error {
	for topic, partitions := range session.Claims() {
		c.log.Info("Partition assignment",
			slog.String("topic", topic),
			slog.Any("partitions", partitions),
		)
	}
	return nil
}

// Cleanup is called once when the consumer session ends.
func (c *Consumer) Cleanup(_ sarama.ConsumerGroupSession) error {
	c.log.Info("Kafka session cleanup complete")
	return nil
}

// ConsumeClaim handles the actual event consumption and processing.
func (c *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		c.log.Debug("Event received",
			slog.String("topic", message.Topic),
			slog.Int("partition", int(message.Partition)),
			slog.Int64("offset", message.Offset),
		)

		var event model.NotificationEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			c.log.Error("Failed to decode event", slog.Any("error", err))
			// skip the gibberish messages
			session.MarkMessage(message, "")
			continue
		}

		// Internal events are trusted; the fan-out runs with the target's
		// own identity.
		ctx := tracing.ExtractTraceContext(session.Context(), message.Headers)
		ctx, span := c.tracer.StartServerSpan(ctx, "KafkaConsume")
		c.tracer.AddKafkaAttributes(span, message.Topic, "consume", message.Partition, message.Offset)

		ctx = service.WithIdentity(ctx, event.UserEmail)
		n := &model.Notification{
			UserEmail: event.UserEmail,
			Title:     event.Title,
			Body:      event.Body,
			Data:      event.Data,
		}
		if _, err := c.notifSvc.Send(ctx, n); err != nil {
			// A user with no registered devices is not a delivery error.
			if appErr.IsNotFound(err) {
				c.log.Info("No devices registered, event skipped",
					slog.String("user", event.UserEmail))
				session.MarkMessage(message, "")
				span.End()
				continue
			}
			c.log.Error("Event fan-out failed", slog.Any("error", err))
			c.tracer.RecordError(span, err)
			span.End()
			continue
		}

		session.MarkMessage(message, "")
		span.End()
	}
	return nil
}
