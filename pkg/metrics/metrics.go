// Package metrics 提供基于Prometheus的指标收集
//
// # 指标类型
//
//   - Counter（计数器）：只增不减，如请求总数、下单总数
//   - Gauge（仪表盘）：可增可减的瞬时值，如正在处理的请求数
//   - Histogram（直方图）：观测值分布，如请求耗时、一次读取发出的SQL条数
//
// # 订单读取指标
//
// 订单列表有多种加载策略，每种策略发出的SQL条数差别很大
// （懒加载是1+N+N×M条，批量加载是常数条）。
// OrderReadQueries按策略记录每次读取的SQL条数，可以直接在Grafana里对比：
//
//	histogram_quantile(0.99, sum by (le, strategy) (rate(order_read_queries_bucket[5m])))
//
// # 使用示例
//
//	metrics.InitMetrics()
//	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
//
//	metrics.ObserveHistogramVec(metrics.OrderReadQueries, map[string]string{"strategy": "batch_fetch"}, 3)
//
// # 命名规范
//
//  1. Counter以_total结尾
//  2. Histogram以单位结尾（_seconds），无单位的计数不加后缀
//  3. 标签只用有限取值的维度（strategy、result），不要用订单ID、会员名
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// initOnce 防止重复注册到默认Registry
	initOnce sync.Once

	// HTTP请求相关指标

	// HTTPRequestsTotal HTTP请求总数（Counter）
	// 标签：method、path（路由模板）、status
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时（Histogram）
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数（Gauge）
	HTTPRequestsInProgress prometheus.Gauge

	// 订单读取指标

	// OrderReadQueries 一次订单读取发出的SQL条数（Histogram）
	// 标签：strategy
	OrderReadQueries *prometheus.HistogramVec

	// OrderReadDuration 订单读取耗时（Histogram）
	// 标签：strategy
	OrderReadDuration *prometheus.HistogramVec

	// OrderReadErrors 订单读取失败次数（Counter）
	// 标签：strategy、reason（validation/integrity/internal）
	OrderReadErrors *prometheus.CounterVec

	// OrderViewCacheRequests 订单列表缓存访问次数（Counter）
	// 标签：result（hit/miss/error/bypass），bypass表示Redis熔断中
	OrderViewCacheRequests *prometheus.CounterVec

	// CircuitBreakerState 熔断器状态（Gauge）
	// 标签：name；取值0=CLOSED、1=OPEN、2=HALF_OPEN
	CircuitBreakerState *prometheus.GaugeVec

	// 下单指标

	// OrdersPlacedTotal 下单成功总数（Counter）
	OrdersPlacedTotal prometheus.Counter

	// OrdersFailedTotal 下单失败总数（Counter）
	OrdersFailedTotal prometheus.Counter

	// OrdersCancelledTotal 取消订单总数（Counter）
	OrdersCancelledTotal prometheus.Counter

	// OrderPlacementDuration 下单耗时（Histogram）
	OrderPlacementDuration prometheus.Histogram
)

// InitMetrics 初始化所有Prometheus指标
// 可以重复调用，只有第一次会注册
func InitMetrics() {
	initOnce.Do(register)
}

func register() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)

	OrderReadQueries = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "order_read_queries",
			Help: "一次订单读取发出的SQL条数",
			// 批量加载策略落在前几个桶，懒加载策略随订单数增长落在后面的桶
			Buckets: []float64{1, 2, 3, 5, 10, 25, 50, 100, 500},
		},
		[]string{"strategy"},
	)

	OrderReadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "order_read_duration_seconds",
			Help:    "订单读取耗时（秒）",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"strategy"},
	)

	OrderReadErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_read_errors_total",
			Help: "订单读取失败次数",
		},
		[]string{"strategy", "reason"},
	)

	OrderViewCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_view_cache_requests_total",
			Help: "订单列表缓存访问次数",
		},
		[]string{"result"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "熔断器状态（0=CLOSED，1=OPEN，2=HALF_OPEN）",
		},
		[]string{"name"},
	)

	OrdersPlacedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_placed_total",
			Help: "下单成功总数",
		},
	)

	OrdersFailedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_failed_total",
			Help: "下单失败总数",
		},
	)

	OrdersCancelledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_cancelled_total",
			Help: "取消订单总数",
		},
	)

	OrderPlacementDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "order_placement_duration_seconds",
			Help:    "下单耗时（秒）",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)
}

// IncCounter 递增Counter
func IncCounter(counter prometheus.Counter) {
	counter.Inc()
}

// IncCounterVec 递增CounterVec（带标签）
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	counter.With(labels).Inc()
}

// IncGauge 递增Gauge
func IncGauge(gauge prometheus.Gauge) {
	gauge.Inc()
}

// DecGauge 递减Gauge
func DecGauge(gauge prometheus.Gauge) {
	gauge.Dec()
}

// SetGauge 设置Gauge值
func SetGauge(gauge prometheus.Gauge, value float64) {
	gauge.Set(value)
}

// ObserveHistogram 记录Histogram观测值
func ObserveHistogram(histogram prometheus.Histogram, value float64) {
	histogram.Observe(value)
}

// ObserveHistogramVec 记录HistogramVec观测值（带标签）
func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	histogram.With(labels).Observe(value)
}
