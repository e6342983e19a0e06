package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewRequestMetrics(reg)

	m.ObserveRequest("book_appointment", 200, 0.12)
	m.ObserveRequest("book_appointment", 409, 0.05)
	m.ObserveRequest("login", 0, 0.5)

	expected := `
		# HELP clinicdesk_gateway_requests_total Total backend API requests
		# TYPE clinicdesk_gateway_requests_total counter
		clinicdesk_gateway_requests_total{operation="book_appointment",status="200"} 1
		clinicdesk_gateway_requests_total{operation="book_appointment",status="409"} 1
		clinicdesk_gateway_requests_total{operation="login",status="transport_error"} 1
	`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "clinicdesk_gateway_requests_total"); err != nil {
		t.Fatalf("unexpected counter state: %v", err)
	}
}

func TestObserveRequestNilReceiver(t *testing.T) {
	var m *RequestMetrics
	m.ObserveRequest("login", 200, 0.1) // must not panic
}
