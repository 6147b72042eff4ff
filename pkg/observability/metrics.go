package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/Alijeyrad/sapan_backend/booking"

// BookingMetrics counts booking outcomes. It reads the global meter provider,
// so it records nothing until InitTelemetry has run.
type BookingMetrics struct {
	created   metric.Int64Counter
	conflicts metric.Int64Counter
	cancelled metric.Int64Counter
}

func NewBookingMetrics() (*BookingMetrics, error) {
	m := otel.Meter(meterName)

	created, err := m.Int64Counter("sapan.bookings.created",
		metric.WithDescription("Confirmed bookings created"),
		metric.WithUnit("{booking}"))
	if err != nil {
		return nil, err
	}
	conflicts, err := m.Int64Counter("sapan.bookings.conflicts",
		metric.WithDescription("Booking attempts rejected because the slot was taken"),
		metric.WithUnit("{booking}"))
	if err != nil {
		return nil, err
	}
	cancelled, err := m.Int64Counter("sapan.bookings.cancelled",
		metric.WithDescription("Bookings cancelled, by party"),
		metric.WithUnit("{booking}"))
	if err != nil {
		return nil, err
	}
	return &BookingMetrics{created: created, conflicts: conflicts, cancelled: cancelled}, nil
}

func (m *BookingMetrics) Created(ctx context.Context) {
	if m == nil {
		return
	}
	m.created.Add(ctx, 1)
}

func (m *BookingMetrics) Conflict(ctx context.Context) {
	if m == nil {
		return
	}
	m.conflicts.Add(ctx, 1)
}

// Cancelled records one cancellation; by is "founder" or "mentor".
func (m *BookingMetrics) Cancelled(ctx context.Context, by string) {
	if m == nil {
		return
	}
	m.cancelled.Add(ctx, 1, metric.WithAttributes(attribute.String("cancelled_by", by)))
}
