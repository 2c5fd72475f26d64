package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHTTPRequest(t *testing.T) {
	HTTPRequestsTotal.Reset()
	HTTPRequestDuration.Reset()

	RecordHTTPRequest("POST", "/api/auth/login", "200", 0.1)
	RecordHTTPRequest("POST", "/api/auth/login", "200", 0.2)
	RecordHTTPRequest("POST", "/api/auth/login", "401", 0.05)

	assert.Equal(t, float64(2), testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/api/auth/login", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/api/auth/login", "401")))
}

func TestRecordPayment(t *testing.T) {
	PaymentsTotal.Reset()

	RecordPayment("STRIPE", "COMPLETED")
	RecordPayment("STRIPE", "COMPLETED")
	RecordPayment("MIDTRANS", "FAILED")

	assert.Equal(t, float64(2), testutil.ToFloat64(PaymentsTotal.WithLabelValues("STRIPE", "COMPLETED")))
	assert.Equal(t, float64(1), testutil.ToFloat64(PaymentsTotal.WithLabelValues("MIDTRANS", "FAILED")))
}

func TestRecordCredits(t *testing.T) {
	CreditsTotal.Reset()

	RecordCredits("SPEND", 40)
	RecordCredits("SPEND", 10)
	RecordCredits("EXPIRE", 0)

	assert.Equal(t, float64(50), testutil.ToFloat64(CreditsTotal.WithLabelValues("SPEND")))
	assert.Equal(t, 1, testutil.CollectAndCount(CreditsTotal))
}

func TestRecordSweep(t *testing.T) {
	SweepItemsTotal.Reset()
	SweepDuration.Reset()

	RecordSweep("bumps", 0.3, 12, 1)

	assert.Equal(t, float64(12), testutil.ToFloat64(SweepItemsTotal.WithLabelValues("bumps", "processed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(SweepItemsTotal.WithLabelValues("bumps", "failed")))
}

func TestRecordPayoutAndWebhook(t *testing.T) {
	PayoutsPaidTotal.Reset()
	WebhookEventsTotal.Reset()

	RecordPayout("agency")
	RecordWebhook("STRIPE", "duplicate")

	assert.Equal(t, float64(1), testutil.ToFloat64(PayoutsPaidTotal.WithLabelValues("agency")))
	assert.Equal(t, float64(1), testutil.ToFloat64(WebhookEventsTotal.WithLabelValues("STRIPE", "duplicate")))
}
