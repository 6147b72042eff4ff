package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestBookingMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	prev := otel.GetMeterProvider()
	otel.SetMeterProvider(mp)
	t.Cleanup(func() { otel.SetMeterProvider(prev) })

	m, err := NewBookingMetrics()
	require.NoError(t, err)

	ctx := context.Background()
	m.Created(ctx)
	m.Created(ctx)
	m.Conflict(ctx)
	m.Cancelled(ctx, "mentor")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	totals := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			sum, ok := md.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				totals[md.Name] += dp.Value
			}
		}
	}
	assert.Equal(t, int64(2), totals["sapan.bookings.created"])
	assert.Equal(t, int64(1), totals["sapan.bookings.conflicts"])
	assert.Equal(t, int64(1), totals["sapan.bookings.cancelled"])
}

func TestBookingMetrics_NilSafe(t *testing.T) {
	var m *BookingMetrics
	assert.NotPanics(t, func() {
		m.Created(context.Background())
		m.Conflict(context.Background())
		m.Cancelled(context.Background(), "founder")
	})
}
