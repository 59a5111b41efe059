package redis

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/jpashop/internal/infrastructure/config"
	"github.com/xiebiao/jpashop/pkg/circuitbreaker"
	"github.com/xiebiao/jpashop/pkg/metrics"
)

func TestNewBreaker(t *testing.T) {
	l, hook := logtest.NewNullLogger()
	cb := NewBreaker("client-test", config.CacheConfig{BreakerFailures: 2, BreakerTimeout: time.Hour}, l)

	gauge := metrics.CircuitBreakerState.WithLabelValues("client-test")
	assert.Equal(t, float64(circuitbreaker.StateClosed), testutil.ToFloat64(gauge))

	down := errors.New("dial tcp: connection refused")
	_ = cb.Execute(func() error { return down })
	_ = cb.Execute(func() error { return down })
	require.Equal(t, circuitbreaker.StateOpen, cb.State())

	assert.Equal(t, float64(circuitbreaker.StateOpen), testutil.ToFloat64(gauge))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, log.WarnLevel, entry.Level)
	assert.Equal(t, "client-test", entry.Data["breaker"])
	assert.Equal(t, "OPEN", entry.Data["to"])
	assert.Equal(t, uint32(2), entry.Data["consecutive_failures"])
}
