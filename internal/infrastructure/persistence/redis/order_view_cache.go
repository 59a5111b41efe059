package redis

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/jpashop/internal/domain/order"
	"github.com/xiebiao/jpashop/pkg/circuitbreaker"
)

// versionKey 订单列表缓存的版本号
// 下单、取消订单时INCR,旧版本的key不再被读到,等TTL自然过期
const versionKey = "order:view:version"

// commander OrderViewCache用到的Redis命令
// *redis.Client 和 *redis.ClusterClient 都满足
type commander interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
}

// OrderViewCache 分页订单列表缓存(Cache-Aside)
//
// 教学要点：
//  1. key包含查询条件和分页参数：order:view:v{version}:{hash}
//  2. 失效不逐个删除key（列表缓存无法按订单ID定位），而是递增版本号
//  3. 缓存只是加速手段：读写失败由调用方记录日志后回源数据库
//  4. Redis命令经过熔断器，Redis故障期间直接返回circuitbreaker.ErrOpenState，不再等待超时
type OrderViewCache struct {
	client  commander
	ttl     time.Duration
	breaker *circuitbreaker.CircuitBreaker
}

// NewOrderViewCache 创建订单列表缓存
// breaker为nil表示不熔断
func NewOrderViewCache(client *redis.Client, ttl time.Duration, breaker *circuitbreaker.CircuitBreaker) *OrderViewCache {
	return newOrderViewCache(client, ttl, breaker)
}

func newOrderViewCache(client commander, ttl time.Duration, breaker *circuitbreaker.CircuitBreaker) *OrderViewCache {
	return &OrderViewCache{client: client, ttl: ttl, breaker: breaker}
}

// Get 读取缓存到dst
// 未命中返回(false, nil)
func (c *OrderViewCache) Get(ctx context.Context, search order.Search, page order.Page, dst interface{}) (bool, error) {
	key, err := c.key(ctx, search, page)
	if err != nil {
		return false, err
	}

	var (
		val []byte
		hit bool
	)
	err = c.do(func() error {
		var err error
		val, err = c.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		hit = err == nil
		return err
	})
	if err != nil {
		return false, fmt.Errorf("读取订单列表缓存失败: %w", err)
	}
	if !hit {
		return false, nil
	}

	if err := json.Unmarshal(val, dst); err != nil {
		return false, fmt.Errorf("解析订单列表缓存失败: %w", err)
	}
	return true, nil
}

// Set 写入缓存
func (c *OrderViewCache) Set(ctx context.Context, search order.Search, page order.Page, value interface{}) error {
	key, err := c.key(ctx, search, page)
	if err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("序列化订单列表失败: %w", err)
	}

	err = c.do(func() error {
		return c.client.Set(ctx, key, data, c.ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("写入订单列表缓存失败: %w", err)
	}
	return nil
}

// Invalidate 让当前所有订单列表缓存失效
func (c *OrderViewCache) Invalidate(ctx context.Context) error {
	err := c.do(func() error {
		return c.client.Incr(ctx, versionKey).Err()
	})
	if err != nil {
		return fmt.Errorf("递增订单列表缓存版本失败: %w", err)
	}
	return nil
}

func (c *OrderViewCache) key(ctx context.Context, search order.Search, page order.Page) (string, error) {
	var version int64
	err := c.do(func() error {
		var err error
		version, err = c.client.Get(ctx, versionKey).Int64()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	})
	if err != nil {
		return "", fmt.Errorf("读取订单列表缓存版本失败: %w", err)
	}
	return orderViewKey(version, search, page), nil
}

// do 在熔断器保护下执行Redis命令
// 未命中(redis.Nil)不算失败，由调用方在fn内处理
func (c *OrderViewCache) do(fn func() error) error {
	if c.breaker == nil {
		return fn()
	}
	return c.breaker.Execute(fn)
}

// orderViewKey 生成缓存key
// 会员名是用户输入，做摘要后再放进key
func orderViewKey(version int64, search order.Search, page order.Page) string {
	sum := sha1.Sum([]byte(fmt.Sprintf("%q|%q|%d|%d", search.MemberName, search.Status, page.Offset, page.Limit)))
	return fmt.Sprintf("order:view:v%d:%s", version, hex.EncodeToString(sum[:]))
}
