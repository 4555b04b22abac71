package metrics

import (
	"context"
	"sync"

	"github.com/seatsurge/eventbooking/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

var (
	// Reservation counters
	ReservationsCreated   *telemetry.Counter
	ReservationsCancelled *telemetry.Counter
	ReservationsRejected  *telemetry.Counter

	// Event counters
	EventsCreated   *telemetry.Counter
	EventsCancelled *telemetry.Counter
	CascadeSize     *telemetry.Histogram

	// Notification counters
	NotificationsSent   *telemetry.Counter
	NotificationsFailed *telemetry.Counter

	// Histograms
	ReserveDuration *telemetry.Histogram

	// Gauges
	ConfirmedSeats *telemetry.UpDownCounter

	initOnce sync.Once
	initErr  error
)

// Init initializes all booking metrics
func Init() error {
	initOnce.Do(func() {
		initErr = initMetrics()
	})
	return initErr
}

func initMetrics() error {
	var err error

	ReservationsCreated, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "reservations_created_total",
		Description: "Total number of seats reserved",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	ReservationsCancelled, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "reservations_cancelled_total",
		Description: "Total number of reservations cancelled by users",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	ReservationsRejected, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "reservations_rejected_total",
		Description: "Total number of rejected reservation attempts by reason",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	EventsCreated, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "events_created_total",
		Description: "Total number of events created",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	EventsCancelled, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "events_cancelled_total",
		Description: "Total number of events cancelled",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	CascadeSize, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "event_cancellation_cascade_size",
		Description: "Number of reservations swept per event cancellation",
		Unit:        "1",
	}, []float64{0, 1, 5, 10, 50, 100, 500, 1000, 5000})
	if err != nil {
		return err
	}

	NotificationsSent, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "notifications_sent_total",
		Description: "Total number of notifications handed to the sink",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	NotificationsFailed, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "notifications_failed_total",
		Description: "Total number of notification sink failures",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	ReserveDuration, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "reservation_duration_seconds",
		Description: "Seat reservation transaction duration",
		Unit:        "s",
	}, []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5})
	if err != nil {
		return err
	}

	ConfirmedSeats, err = telemetry.NewUpDownCounter(telemetry.MetricOpts{
		Name:        "confirmed_seats",
		Description: "Current number of confirmed reservations",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	return nil
}

// RecordReservation records a successful seat reservation
func RecordReservation(ctx context.Context, eventID string, durationSeconds float64) {
	if ReservationsCreated != nil {
		ReservationsCreated.Inc(ctx,
			attribute.String("event_id", eventID),
		)
	}
	if ReserveDuration != nil {
		ReserveDuration.Record(ctx, durationSeconds,
			attribute.String("event_id", eventID),
		)
	}
	if ConfirmedSeats != nil {
		ConfirmedSeats.Inc(ctx)
	}
}

// RecordRejection records a rejected reservation attempt
func RecordRejection(ctx context.Context, eventID, reason string) {
	if ReservationsRejected != nil {
		ReservationsRejected.Inc(ctx,
			attribute.String("event_id", eventID),
			attribute.String("reason", reason),
		)
	}
}

// RecordCancellation records a user cancellation
func RecordCancellation(ctx context.Context, eventID string) {
	if ReservationsCancelled != nil {
		ReservationsCancelled.Inc(ctx,
			attribute.String("event_id", eventID),
		)
	}
	if ConfirmedSeats != nil {
		ConfirmedSeats.Dec(ctx)
	}
}

// RecordEventCreated records an event creation
func RecordEventCreated(ctx context.Context) {
	if EventsCreated != nil {
		EventsCreated.Inc(ctx)
	}
}

// RecordEventCancelled records an event cancellation and its cascade
func RecordEventCancelled(ctx context.Context, eventID string, cascadeSize int) {
	if EventsCancelled != nil {
		EventsCancelled.Inc(ctx,
			attribute.String("event_id", eventID),
		)
	}
	if CascadeSize != nil {
		CascadeSize.Record(ctx, float64(cascadeSize),
			attribute.String("event_id", eventID),
		)
	}
	if ConfirmedSeats != nil {
		ConfirmedSeats.Add(ctx, -int64(cascadeSize))
	}
}

// RecordNotification records a notification outcome
func RecordNotification(ctx context.Context, kind string, ok bool) {
	if ok {
		if NotificationsSent != nil {
			NotificationsSent.Inc(ctx, attribute.String("kind", kind))
		}
		return
	}
	if NotificationsFailed != nil {
		NotificationsFailed.Inc(ctx, attribute.String("kind", kind))
	}
}
