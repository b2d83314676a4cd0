package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			matched := 0
			for _, pair := range metric.GetLabel() {
				if labels[pair.GetName()] == pair.GetValue() {
					matched++
				}
			}
			if matched == len(labels) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestAvailabilityConflict(t *testing.T) {
	labels := map[string]string{"kind": "operator_gap"}
	before := counterValue(t, "topup_availability_conflicts_total", labels)

	AvailabilityConflict("operator_gap")
	AvailabilityConflict("operator_gap")

	assert.Equal(t, before+2, counterValue(t, "topup_availability_conflicts_total", labels))
}

func TestNotificationDispatched(t *testing.T) {
	labels := map[string]string{"type": "shift_assigned", "result": "failure"}
	before := counterValue(t, "topup_notifications_dispatched_total", labels)

	NotificationDispatched("shift_assigned", false)

	assert.Equal(t, before+1, counterValue(t, "topup_notifications_dispatched_total", labels))
}

func TestHTTPRequest(t *testing.T) {
	labels := map[string]string{"method": "GET", "route": "/api/shifts", "status": "2xx"}
	before := counterValue(t, "topup_http_requests_total", labels)

	HTTPRequest("GET", "/api/shifts", 200, 15*time.Millisecond)

	assert.Equal(t, before+1, counterValue(t, "topup_http_requests_total", labels))
}

func TestStatusClass(t *testing.T) {
	testCases := []struct {
		status int
		want   string
	}{
		{200, "2xx"},
		{204, "2xx"},
		{301, "3xx"},
		{404, "4xx"},
		{503, "5xx"},
	}

	for _, tc := range testCases {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, statusClass(tc.status))
		})
	}
}
