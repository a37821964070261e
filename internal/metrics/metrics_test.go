package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestMetrics(t *testing.T) {
	// Register should be safe to call multiple times
	Register()
	Register()

	assert.NotPanics(t, func() {
		ObserveHTTP("server", "/bookings", "200", 0.01)
		IncRateLimited()
	})
}

func TestCounters(t *testing.T) {
	before := counterValue(t, bookingDecisions.WithLabelValues("APPROVED"))
	IncBookingDecision("APPROVED")
	assert.Equal(t, before+1, counterValue(t, bookingDecisions.WithLabelValues("APPROVED")))

	before = counterValue(t, domainEvents.WithLabelValues("booking_created"))
	IncEvent("booking_created")
	IncEvent("booking_created")
	assert.Equal(t, before+2, counterValue(t, domainEvents.WithLabelValues("booking_created")))
}
