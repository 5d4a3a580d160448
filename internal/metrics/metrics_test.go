package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerationCounter(t *testing.T) {
	before := testutil.ToFloat64(generations.WithLabelValues("image", ResultSuccess))
	Generation("image", ResultSuccess)
	assert.Equal(t, before+1, testutil.ToFloat64(generations.WithLabelValues("image", ResultSuccess)))
}

func TestWriterRequestResult(t *testing.T) {
	before := testutil.ToFloat64(writerRequests.WithLabelValues("grammar", ResultFailure))
	WriterRequest("grammar", assert.AnError)
	assert.Equal(t, before+1, testutil.ToFloat64(writerRequests.WithLabelValues("grammar", ResultFailure)))
}

func TestHandlerExposesCollectors(t *testing.T) {
	ObserveHTTP("GET", "", 200, 10*time.Millisecond)
	LedgerOp("toggle_like")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `storyloom_http_request_duration_seconds_count{method="GET",route="unknown",status="200"}`)
	assert.Contains(t, body, `storyloom_ledger_operations_total{operation="toggle_like"}`)
	assert.Contains(t, body, "go_goroutines")
}
