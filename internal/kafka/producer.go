package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"go.opentelemetry.io/otel/attribute"

	"github.com/souldream/backend/internal/model"
	"github.com/souldream/backend/pkg/tracing"
)

// EventProducer publishes notification events for async delivery.
type EventProducer interface {
	Start(ctx context.Context)
	Publish(ctx context.Context, event model.NotificationEvent) error
	Close(ctx context.Context)
}

type producer struct {
	asyncProducer sarama.AsyncProducer
	topic         string
	log           *slog.Logger
	wg            *sync.WaitGroup
	closeOnce     sync.Once
	tracer        *tracing.Tracer
}

// NewProducer uses DI to inject AsyncProducer, logger, topic, WaitGroup, and tracer.
func NewProducer(asyncProducer sarama.AsyncProducer, topic string, log *slog.Logger, wg *sync.WaitGroup, tracer *tracing.Tracer) EventProducer {
	if asyncProducer == nil || log == nil || wg == nil || tracer == nil {
		panic("NewProducer: nil dependencies provided")
	}
	if topic == "" {
		panic("NewProducer: topic must not be empty")
	}
	return &producer{
		asyncProducer: asyncProducer,
		topic:         topic,
		log:           log,
		wg:            wg,
		tracer:        tracer,
	}
}

// Start launches background handlers for success and error channels
func (p *producer) Start(ctx context.Context) {
	p.log.Info("Starting kafka producer handlers")
	p.wg.Add(2)
	go p.handleSuccess(ctx)
	go p.handleErrors(ctx)
}

func (p *producer) handleSuccess(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case msg, ok := <-p.asyncProducer.Successes():
			if !ok {
				p.log.Info("Kafka successes channel closed")
				return
			}
			key, _ := msg.Key.Encode()
			p.log.Info("Event delivered",
				slog.String("topic", msg.Topic),
				slog.Int64("offset", msg.Offset),
				slog.String("key", string(key)))
		case <-ctx.Done():
			p.log.Info("Kafka success handler stopped by context")
			return
		}
	}
}

func (p *producer) handleErrors(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case err, ok := <-p.asyncProducer.Errors():
			if !ok {
				p.log.Info("Kafka errors channel closed")
				return
			}
			p.log.Error("Event delivery failed",
				slog.String("topic", err.Msg.Topic),
				slog.Any("error", err.Err))
		case <-ctx.Done():
			p.log.Info("Kafka error handler stopped by context")
			return
		}
	}
}

// Publish sends a notification event to the kafka topic, keyed by the
// target user so per-user ordering holds within a partition.
func (p *producer) Publish(ctx context.Context, event model.NotificationEvent) error {
	ctx, span := p.tracer.StartClientSpan(ctx, "KafkaPublish")
	defer span.End()

	data, err := json.Marshal(event)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to marshal notification event: %w", err)
	}

	// Propagate trace context to the consumer
	headers := tracing.InjectTraceContext(ctx, nil)

	msg := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(event.UserEmail),
		Value:     sarama.ByteEncoder(data),
		Timestamp: time.Now(),
		Headers:   headers,
	}

	select {
	case p.asyncProducer.Input() <- msg:
		p.log.Info("Event queued to kafka",
			slog.String("topic", p.topic),
			slog.String("user", event.UserEmail))
		span.SetAttributes(
			attribute.String(tracing.AttrMessagingSystem, "kafka"),
			attribute.String(tracing.AttrMessagingDestination, p.topic),
			attribute.String(tracing.AttrMessagingOperation, "publish"),
			attribute.String("event.user", event.UserEmail),
		)
		return nil
	case <-ctx.Done():
		p.log.Warn("Publish cancelled by context", slog.String("user", event.UserEmail))
		return ctx.Err()
	}
}

// Close shuts down the producer and waits for workers
func (p *producer) Close(_ context.Context) {
	p.closeOnce.Do(func() {
		p.log.Info("Closing kafka producer")
		p.asyncProducer.AsyncClose()
		p.wg.Wait()
		p.log.Info("Kafka producer closed")
	})
}
