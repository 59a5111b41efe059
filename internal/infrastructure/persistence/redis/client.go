package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/xiebiao/jpashop/internal/infrastructure/config"
	"github.com/xiebiao/jpashop/pkg/circuitbreaker"
	"github.com/xiebiao/jpashop/pkg/metrics"
)

// NewClient 创建Redis客户端
// 设计说明：
// 1. 配置连接池参数（PoolSize、MinIdleConns）
// 2. 配置超时参数（DialTimeout、ReadTimeout、WriteTimeout）
// 3. 启动时Ping一次，连不上直接失败
func NewClient(cfg *config.Config, logger *log.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("Redis连接失败: %w", err)
	}

	logger.WithField("addr", cfg.Redis.Addr()).Info("Redis连接成功")
	return client, nil
}

// NewBreaker 创建保护Redis命令的熔断器
// 状态变化写日志，并同步到circuit_breaker_state指标
func NewBreaker(name string, cfg config.CacheConfig, logger *log.Logger) *circuitbreaker.CircuitBreaker {
	metrics.InitMetrics()

	cb := circuitbreaker.New(name, circuitbreaker.Config{
		MaxFailures: cfg.BreakerFailures,
		Timeout:     cfg.BreakerTimeout,
	})
	cb.OnStateChange(func(name string, from, to circuitbreaker.State, counts circuitbreaker.Counts) {
		metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
		entry := logger.WithFields(log.Fields{
			"breaker":              name,
			"from":                 from.String(),
			"to":                   to.String(),
			"requests":             counts.Requests,
			"consecutive_failures": counts.ConsecutiveFailures,
		})
		if to == circuitbreaker.StateOpen {
			entry.Warn("Redis熔断")
			return
		}
		entry.Info("熔断器状态变化")
	})
	metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(circuitbreaker.StateClosed))
	return cb
}
