package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/couchcryptid/weathernow/internal/config"
	"github.com/couchcryptid/weathernow/internal/coordinator"
	"github.com/couchcryptid/weathernow/internal/domain"
	"github.com/couchcryptid/weathernow/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
)

const queueSize = 16

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher feeds every newly applied weather reading to a Kafka topic.
// It implements coordinator.Listener; the write happens on Run's goroutine.
type Publisher struct {
	writer  messageWriter
	logger  *slog.Logger
	metrics *observability.Metrics
	queue   chan domain.WeatherReading

	mu   sync.Mutex
	last *domain.WeatherReading
}

// NewPublisher creates a producer for the configured readings topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaReadingsTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return newPublisher(w, logger, metrics)
}

func newPublisher(w messageWriter, logger *slog.Logger, metrics *observability.Metrics) *Publisher {
	return &Publisher{
		writer:  w,
		logger:  logger,
		metrics: metrics,
		queue:   make(chan domain.WeatherReading, queueSize),
	}
}

// StateChanged queues the reading in s if it has not been seen before.
// Snapshots share the reading pointer until the next fetch replaces it.
func (p *Publisher) StateChanged(s coordinator.State) {
	if s.Weather == nil {
		return
	}
	p.mu.Lock()
	if s.Weather == p.last {
		p.mu.Unlock()
		return
	}
	p.last = s.Weather
	p.mu.Unlock()

	p.Enqueue(*s.Weather)
}

// Enqueue queues r without blocking. A full queue drops the reading.
func (p *Publisher) Enqueue(r domain.WeatherReading) {
	select {
	case p.queue <- r:
	default:
		p.metrics.PublishErrors.Inc()
		p.logger.Warn("reading feed queue full, dropping reading", "location", r.LocationName)
	}
}

// Run publishes queued readings until the context is cancelled.
func (p *Publisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case r := <-p.queue:
			p.publish(ctx, r)
		}
	}
}

func (p *Publisher) publish(ctx context.Context, r domain.WeatherReading) {
	msg, err := serializeToMessage(r)
	if err != nil {
		p.metrics.PublishErrors.Inc()
		p.logger.Error("serialize reading", "location", r.LocationName, "error", err)
		return
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.metrics.PublishErrors.Inc()
		p.logger.Error("publish reading", "location", r.LocationName, "error", err)
		return
	}
	p.metrics.ReadingsPublished.Inc()
	p.logger.Debug("reading published", "location", r.LocationName, "condition_code", r.ConditionCode)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a WeatherReading into a Kafka message keyed by
// location so readings for one place stay on one partition.
func serializeToMessage(r domain.WeatherReading) (kafkago.Message, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize weather reading: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(r.LocationName),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "condition_code", Value: []byte(strconv.Itoa(r.ConditionCode))},
			{Key: "observed_at", Value: []byte(r.ObservedAt.Format(time.RFC3339))},
		},
	}, nil
}
