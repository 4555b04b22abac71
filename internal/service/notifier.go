package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seatsurge/eventbooking/internal/domain"
	"github.com/seatsurge/eventbooking/internal/metrics"
	"github.com/seatsurge/eventbooking/pkg/kafka"
	"github.com/seatsurge/eventbooking/pkg/logger"
)

// Notifier is the best-effort notification sink. Send reports whether the
// notification was accepted; callers never fail an operation on a false
// return.
type Notifier interface {
	// Send hands one notification to the sink.
	Send(ctx context.Context, recipient domain.Contact, subject, body string) bool

	// Close releases sink resources.
	Close() error
}

// notificationMessage is the wire shape consumed by the out-of-process
// mailer
type notificationMessage struct {
	ID        string    `json:"id"`
	Recipient string    `json:"recipient"`
	Name      string    `json:"name,omitempty"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// KafkaNotifier publishes notifications to a Kafka topic. Delivery is
// async: broker failures surface in the produce callback log, not here.
type KafkaNotifier struct {
	producer *kafka.Producer
	topic    string
}

// KafkaNotifierConfig contains configuration for the Kafka notifier
type KafkaNotifierConfig struct {
	Brokers  []string
	Topic    string
	ClientID string
}

// NewKafkaNotifier creates a Kafka-backed notification sink
func NewKafkaNotifier(ctx context.Context, cfg *KafkaNotifierConfig) (*KafkaNotifier, error) {
	if cfg == nil {
		return nil, fmt.Errorf("kafka notifier config is required")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	topic := cfg.Topic
	if topic == "" {
		topic = "booking.notifications"
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "eventbooking-notifier"
	}

	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:       cfg.Brokers,
		ClientID:      clientID,
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &KafkaNotifier{producer: producer, topic: topic}, nil
}

// Send enqueues the notification for async delivery
func (n *KafkaNotifier) Send(ctx context.Context, recipient domain.Contact, subject, body string) bool {
	msg := notificationMessage{
		ID:        uuid.New().String(),
		Recipient: recipient.Email,
		Name:      recipient.Name,
		Subject:   subject,
		Body:      body,
		CreatedAt: time.Now(),
	}

	value, err := json.Marshal(msg)
	if err != nil {
		logger.Get().Error("failed to marshal notification",
			zap.String("recipient", recipient.Email),
			zap.Error(err),
		)
		metrics.RecordNotification(ctx, "kafka", false)
		return false
	}

	n.producer.ProduceAsync(ctx, n.topic, []byte(recipient.UserID), value)
	metrics.RecordNotification(ctx, "kafka", true)
	return true
}

// Close flushes pending notifications and closes the producer
func (n *KafkaNotifier) Close() error {
	return n.producer.Close()
}

// LogNotifier simulates delivery by writing the notification to the
// structured log. Used when no broker is configured or reachable.
type LogNotifier struct {
	log *logger.Logger
}

// NewLogNotifier creates a log-backed notification sink
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{log: logger.Get()}
}

// Send logs the notification
func (n *LogNotifier) Send(ctx context.Context, recipient domain.Contact, subject, body string) bool {
	n.log.Info("email simulation",
		zap.String("to", recipient.Email),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	metrics.RecordNotification(ctx, "log", true)
	return true
}

// Close is a no-op
func (n *LogNotifier) Close() error {
	return nil
}

// NoopNotifier discards notifications. Used in tests.
type NoopNotifier struct{}

// NewNoopNotifier creates a notifier that drops everything
func NewNoopNotifier() *NoopNotifier {
	return &NoopNotifier{}
}

// Send discards the notification
func (n *NoopNotifier) Send(ctx context.Context, recipient domain.Contact, subject, body string) bool {
	return true
}

// Close is a no-op
func (n *NoopNotifier) Close() error {
	return nil
}

var (
	_ Notifier = (*KafkaNotifier)(nil)
	_ Notifier = (*LogNotifier)(nil)
	_ Notifier = (*NoopNotifier)(nil)
)
