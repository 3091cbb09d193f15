package metrics

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/busreserve/bus-reservation/pkg/telemetry"
)

var (
	// Booking counters
	SeatsBooked     *telemetry.Counter
	BookingFailures *telemetry.Counter
	Cancellations   *telemetry.Counter

	// Histograms
	RequestDuration *telemetry.Histogram

	// Gauges
	ActiveReservations *telemetry.UpDownCounter

	initOnce sync.Once
	initErr  error
)

// Init initializes all reservation metrics
func Init() error {
	initOnce.Do(func() {
		initErr = initMetrics()
	})
	return initErr
}

func initMetrics() error {
	var err error

	SeatsBooked, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "reservation_bookings_total",
		Description: "Total number of seats booked",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	BookingFailures, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "reservation_booking_failures_total",
		Description: "Total number of failed booking attempts by reason",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	Cancellations, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "reservation_cancellations_total",
		Description: "Total number of cancelled reservations",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	RequestDuration, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "reservation_request_duration_seconds",
		Description: "HTTP request duration in seconds",
		Unit:        "s",
	}, []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10})
	if err != nil {
		return err
	}

	ActiveReservations, err = telemetry.NewUpDownCounter(telemetry.MetricOpts{
		Name:        "reservation_active",
		Description: "Current number of live reservations",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	return nil
}

// RecordBooking records a successful seat booking
func RecordBooking(ctx context.Context, busID int64, seatNumber int) {
	if SeatsBooked != nil {
		SeatsBooked.Inc(ctx,
			attribute.Int64("bus_id", busID),
			attribute.Int("seat_number", seatNumber),
		)
	}
	if ActiveReservations != nil {
		ActiveReservations.Inc(ctx)
	}
}

// RecordBookingFailure records a failed booking attempt by reason
func RecordBookingFailure(ctx context.Context, busID int64, reason string) {
	if BookingFailures != nil {
		BookingFailures.Inc(ctx,
			attribute.Int64("bus_id", busID),
			attribute.String("reason", reason),
		)
	}
}

// RecordCancellation records a reservation cancellation
func RecordCancellation(ctx context.Context, busID int64) {
	if Cancellations != nil {
		Cancellations.Inc(ctx,
			attribute.Int64("bus_id", busID),
		)
	}
	if ActiveReservations != nil {
		ActiveReservations.Dec(ctx)
	}
}

// RecordRequestDuration records HTTP request duration
func RecordRequestDuration(ctx context.Context, operation string, durationSeconds float64) {
	if RequestDuration != nil {
		RequestDuration.Record(ctx, durationSeconds,
			attribute.String("operation", operation),
		)
	}
}
