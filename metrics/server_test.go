package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetupServerRoutes(t *testing.T) {
	server := SetupServer(":0")
	DailyProblemsSent.Inc()
	DailyProblemFailures.WithLabelValues("publish").Inc()

	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "daily_problems_sent_total")
	assert.Contains(t, rec.Body.String(), `daily_problem_failures_total{stage="publish"}`)
}
