package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitMetrics(t *testing.T) {
	InitMetrics()
	InitMetrics() // 重复调用不能panic(重复注册)

	assert.NotNil(t, HTTPRequestsTotal)
	assert.NotNil(t, HTTPRequestDuration)
	assert.NotNil(t, HTTPRequestsInProgress)
	assert.NotNil(t, OrderReadQueries)
	assert.NotNil(t, OrderReadDuration)
	assert.NotNil(t, OrderReadErrors)
	assert.NotNil(t, OrderViewCacheRequests)
	assert.NotNil(t, CircuitBreakerState)
	assert.NotNil(t, OrdersPlacedTotal)
	assert.NotNil(t, OrdersCancelledTotal)
}

func TestCounter(t *testing.T) {
	InitMetrics()

	before := getCounterValue(t, OrdersPlacedTotal)
	IncCounter(OrdersPlacedTotal)
	IncCounter(OrdersPlacedTotal)

	assert.Equal(t, before+2, getCounterValue(t, OrdersPlacedTotal))
}

func TestCounterVec(t *testing.T) {
	InitMetrics()

	hit := map[string]string{"result": "hit"}
	miss := map[string]string{"result": "miss"}
	before := getCounterVecValue(t, OrderViewCacheRequests, hit)

	IncCounterVec(OrderViewCacheRequests, hit)
	IncCounterVec(OrderViewCacheRequests, miss)
	IncCounterVec(OrderViewCacheRequests, hit)

	assert.Equal(t, before+2, getCounterVecValue(t, OrderViewCacheRequests, hit))
}

func TestGauge(t *testing.T) {
	InitMetrics()
	SetGauge(HTTPRequestsInProgress, 0)

	IncGauge(HTTPRequestsInProgress)
	IncGauge(HTTPRequestsInProgress)
	DecGauge(HTTPRequestsInProgress)

	assert.Equal(t, float64(1), getGaugeValue(t, HTTPRequestsInProgress))
}

func TestOrderReadQueries(t *testing.T) {
	InitMetrics()

	lazy := map[string]string{"strategy": "lazy_entity"}
	batch := map[string]string{"strategy": "batch_fetch"}

	ObserveHistogramVec(OrderReadQueries, lazy, 11)
	ObserveHistogramVec(OrderReadQueries, batch, 3)
	ObserveHistogramVec(OrderReadQueries, batch, 3)

	count, sum := getHistogramVecSample(t, OrderReadQueries, batch)
	assert.Equal(t, uint64(2), count)
	assert.Equal(t, float64(6), sum)
}

func TestHistogram(t *testing.T) {
	InitMetrics()

	ObserveHistogram(OrderPlacementDuration, 0.05)
	ObserveHistogram(OrderPlacementDuration, 0.5)

	var metric dto.Metric
	require.NoError(t, OrderPlacementDuration.Write(&metric))
	assert.Equal(t, uint64(2), metric.Histogram.GetSampleCount())
}

func getCounterValue(t *testing.T, counter prometheus.Counter) float64 {
	t.Helper()
	var metric dto.Metric
	require.NoError(t, counter.Write(&metric))
	return metric.Counter.GetValue()
}

func getCounterVecValue(t *testing.T, counterVec *prometheus.CounterVec, labels map[string]string) float64 {
	t.Helper()
	return getCounterValue(t, counterVec.With(labels))
}

func getGaugeValue(t *testing.T, gauge prometheus.Gauge) float64 {
	t.Helper()
	var metric dto.Metric
	require.NoError(t, gauge.Write(&metric))
	return metric.Gauge.GetValue()
}

func getHistogramVecSample(t *testing.T, histogramVec *prometheus.HistogramVec, labels map[string]string) (uint64, float64) {
	t.Helper()
	var metric dto.Metric
	histogram := histogramVec.With(labels).(prometheus.Histogram)
	require.NoError(t, histogram.Write(&metric))
	return metric.Histogram.GetSampleCount(), metric.Histogram.GetSampleSum()
}
