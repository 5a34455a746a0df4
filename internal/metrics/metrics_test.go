package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", statusClass(http.StatusOK))
	assert.Equal(t, "4xx", statusClass(http.StatusUnauthorized))
	assert.Equal(t, "5xx", statusClass(http.StatusInternalServerError))
}

func TestRecordRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequests.WithLabelValues("/metrics-test", "4xx"))
	RecordRequest("/metrics-test", http.StatusBadRequest, 5*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(HTTPRequests.WithLabelValues("/metrics-test", "4xx")))
}

func TestRecordSave(t *testing.T) {
	RecordSave("colors-test", StatusSkipped)
	assert.Equal(t, float64(1), testutil.ToFloat64(Saves.WithLabelValues("colors-test", StatusSkipped)))
}
