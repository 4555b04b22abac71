package kafka

import (
	"context"
	"testing"
	"time"
)

func TestRetryBackoff(t *testing.T) {
	backoff := retryBackoff(100 * time.Millisecond)

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{attempt: 1, want: 100 * time.Millisecond},
		{attempt: 2, want: 200 * time.Millisecond},
		{attempt: 5, want: 500 * time.Millisecond},
		// Capped at ten times the base
		{attempt: 10, want: time.Second},
		{attempt: 50, want: time.Second},
		{attempt: 0, want: 100 * time.Millisecond},
	}

	for _, tt := range tests {
		if got := backoff(tt.attempt); got != tt.want {
			t.Errorf("backoff(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestNewProducer_Validation(t *testing.T) {
	ctx := context.Background()

	if _, err := NewProducer(ctx, nil); err == nil {
		t.Error("NewProducer(nil) expected error")
	}

	if _, err := NewProducer(ctx, &ProducerConfig{}); err == nil {
		t.Error("NewProducer with no brokers expected error")
	}
}
