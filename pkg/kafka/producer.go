package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"

	"github.com/seatsurge/eventbooking/pkg/logger"
)

// ProducerConfig holds Kafka producer configuration
type ProducerConfig struct {
	Brokers       []string
	ClientID      string
	MaxRetries    int
	RetryInterval time.Duration
	// LingerMs batches records for up to this many milliseconds
	LingerMs int
	// MaxBufferedRecords bounds the async produce buffer
	MaxBufferedRecords int
}

// Producer wraps a franz-go client for async, best-effort publishing
type Producer struct {
	client *kgo.Client
	log    *logger.Logger
}

// NewProducer creates a Kafka producer and verifies broker connectivity
func NewProducer(ctx context.Context, cfg *ProducerConfig) (*Producer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("producer config is required")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	linger := cfg.LingerMs
	if linger <= 0 {
		linger = 10
	}
	maxBuffered := cfg.MaxBufferedRecords
	if maxBuffered <= 0 {
		maxBuffered = 10000
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID),
		kgo.ProducerLinger(time.Duration(linger) * time.Millisecond),
		kgo.MaxBufferedRecords(maxBuffered),
		kgo.RecordRetries(cfg.MaxRetries),
		kgo.AllowAutoTopicCreation(),
	}
	if cfg.RetryInterval > 0 {
		opts = append(opts, kgo.RetryBackoffFn(retryBackoff(cfg.RetryInterval)))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping kafka brokers: %w", err)
	}

	return &Producer{
		client: client,
		log:    logger.Get(),
	}, nil
}

// retryBackoff scales the base interval linearly with the attempt count,
// capped at ten times the base.
func retryBackoff(base time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		if attempt < 1 {
			attempt = 1
		}
		backoff := time.Duration(attempt) * base
		if max := 10 * base; backoff > max {
			return max
		}
		return backoff
	}
}

// Produce sends a record and waits for broker acknowledgement
func (p *Producer) Produce(ctx context.Context, topic string, key, value []byte) error {
	record := &kgo.Record{
		Topic: topic,
		Key:   key,
		Value: value,
	}

	results := p.client.ProduceSync(ctx, record)
	if err := results.FirstErr(); err != nil {
		return fmt.Errorf("failed to produce to %s: %w", topic, err)
	}
	return nil
}

// ProduceAsync enqueues a record without blocking. Delivery failures are
// logged, never returned; callers that need acknowledgement use Produce.
func (p *Producer) ProduceAsync(ctx context.Context, topic string, key, value []byte) {
	record := &kgo.Record{
		Topic: topic,
		Key:   key,
		Value: value,
	}

	p.client.Produce(ctx, record, func(r *kgo.Record, err error) {
		if err != nil {
			p.log.Error("kafka async produce failed",
				zap.String("topic", r.Topic),
				zap.String("key", string(r.Key)),
				zap.Error(err),
			)
		}
	})
}

// Flush blocks until all buffered records are delivered or ctx expires
func (p *Producer) Flush(ctx context.Context) error {
	return p.client.Flush(ctx)
}

// Close flushes pending records and closes the client
func (p *Producer) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := p.client.Flush(ctx); err != nil {
		p.log.Warn("kafka flush on close failed", zap.Error(err))
	}
	p.client.Close()
	return nil
}
