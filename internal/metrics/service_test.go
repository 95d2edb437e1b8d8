package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_CountsByLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	svc := NewService(reg)

	svc.IncWorkflowOperation("first-match", ResultSuccess)
	svc.IncWorkflowOperation("first-match", ResultSuccess)
	svc.IncWorkflowOperation("next-step", ResultRejected)
	svc.IncNotificationSent("NOT_SELECTED")
	svc.IncNotificationFailed("FINAL_PAYMENT_REQUEST")

	assert.Equal(t, 2.0, testutil.ToFloat64(svc.WorkflowOperations.WithLabelValues("first-match", ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.WorkflowOperations.WithLabelValues("next-step", ResultRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.NotificationsSent.WithLabelValues("NOT_SELECTED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.NotificationsFail.WithLabelValues("FINAL_PAYMENT_REQUEST")))
}

func TestMetricsHandler_ExposesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	svc := NewService(reg)
	svc.SetStartupTime(1.5)

	rr := httptest.NewRecorder()
	req, err := http.NewRequest("GET", "/metrics", nil)
	require.NoError(t, err)
	NewMetricsHandler(reg).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "slotmatch_startup_duration_seconds 1.5")
}
