package store

import (
	"context"
	"fmt"
	"testing"

	"gym-fulfillment/internal/common/config"
	"gym-fulfillment/internal/common/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeasured_CountsResults(t *testing.T) {
	ctx := context.Background()
	m := NewMeasured(NewMemory())

	okBefore := testutil.ToFloat64(metrics.StoreOperations.WithLabelValues("memory", "get", "ok"))
	missBefore := testutil.ToFloat64(metrics.StoreOperations.WithLabelValues("memory", "get", "not_found"))

	require.NoError(t, m.Put(ctx, "gyms", "g1", gymDocument()))
	_, err := m.Get(ctx, "gyms", "g1")
	require.NoError(t, err)
	_, err = m.Get(ctx, "gyms", "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(metrics.StoreOperations.WithLabelValues("memory", "get", "ok")))
	assert.Equal(t, missBefore+1, testutil.ToFloat64(metrics.StoreOperations.WithLabelValues("memory", "get", "not_found")))
	assert.Equal(t, "memory", m.Name())
}

func TestResultLabel(t *testing.T) {
	assert.Equal(t, "ok", resultLabel(nil))
	assert.Equal(t, "unavailable", resultLabel(fmt.Errorf("%w: refused", ErrUnavailable)))
	assert.Equal(t, "write_failed", resultLabel(ErrWriteFailed))
	assert.Equal(t, "error", resultLabel(fmt.Errorf("boom")))
}

func TestDecorate_BreakerWrapsMeasured(t *testing.T) {
	cfg := &config.Config{}
	cfg.Breaker.Enabled = true
	cfg.Breaker.MaxRequests = 1
	cfg.Breaker.Timeout = 1000
	cfg.Breaker.MinRequests = 3
	cfg.Breaker.FailureThreshold = 0.5

	out := Decorate(NewMemory(), cfg, nil, newTestLogger(t))
	_, isBreaker := out.(*Breaker)
	assert.True(t, isBreaker)

	plain := Decorate(NewMemory(), &config.Config{}, nil, newTestLogger(t))
	_, isMeasured := plain.(*Measured)
	assert.True(t, isMeasured)
}
