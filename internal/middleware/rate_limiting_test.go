package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redis_rate/v9"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/MichaelJHerbert/exercise-tracker/internal/telemetry/metrics"
)

type fakeRateLimiter struct {
	allowed int
}

func (f *fakeRateLimiter) Allow(_ context.Context, _ string, _ redis_rate.Limit) (*redis_rate.Result, error) {
	return &redis_rate.Result{
		Allowed:    f.allowed,
		RetryAfter: 30 * time.Second,
	}, nil
}

func TestRateLimit(t *testing.T) {
	m := metrics.NewTestManager()
	limiter := &fakeRateLimiter{allowed: 1}

	called := false
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	})
	handlerFunc := RateLimit(limiter, "new-user", 10, m)(next)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/exercise/new-user", nil)
	handlerFunc.ServeHTTP(rr, req)
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rr.Code)

	// limit reached
	limiter.allowed = 0
	called = false
	rr = httptest.NewRecorder()
	handlerFunc.ServeHTTP(rr, req)
	assert.False(t, called)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CounterRateLimitedRequests))
}
