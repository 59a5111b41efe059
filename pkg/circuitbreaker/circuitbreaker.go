// Package circuitbreaker 熔断器
//
// 用在可降级的外部依赖前面(目前是订单列表的Redis缓存):
// 依赖连续失败达到阈值后熔断,熔断期间直接返回ErrOpenState,
// 调用方跳过该依赖走兜底逻辑(回源数据库),不再每次等待超时。
//
// 状态转换:
//
//	CLOSED --连续失败>=阈值--> OPEN --Timeout到期--> HALF_OPEN
//	HALF_OPEN --探测成功--> CLOSED
//	HALF_OPEN --探测失败--> OPEN
package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// State 熔断器状态
type State int

const (
	StateClosed   State = iota // 正常放行
	StateOpen                  // 熔断,快速失败
	StateHalfOpen              // 放行少量请求探测依赖是否恢复
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// ErrOpenState 熔断中
var ErrOpenState = errors.New("circuit breaker is open")

// Config 熔断器配置
type Config struct {
	// MaxFailures 连续失败多少次后熔断,<=0时取5
	MaxFailures uint32
	// Timeout OPEN状态持续时间,到期后转为HALF_OPEN,<=0时取30秒
	Timeout time.Duration
	// MaxProbes HALF_OPEN状态下同时放行的请求数,<=0时取1
	MaxProbes uint32
}

// Counts 当前状态下的统计
// 每次状态切换清零
type Counts struct {
	Requests            uint32
	Failures            uint32
	ConsecutiveFailures uint32
}

// CircuitBreaker 熔断器
// 并发安全
type CircuitBreaker struct {
	name        string
	maxFailures uint32
	timeout     time.Duration
	maxProbes   uint32
	now         func() time.Time

	mu            sync.Mutex
	state         State
	generation    uint64 // 每次状态切换递增,丢弃上一代请求的结果
	counts        Counts
	openUntil     time.Time
	onStateChange func(name string, from, to State, counts Counts)
}

// New 创建熔断器
func New(name string, cfg Config) *CircuitBreaker {
	cb := &CircuitBreaker{
		name:        name,
		maxFailures: cfg.MaxFailures,
		timeout:     cfg.Timeout,
		maxProbes:   cfg.MaxProbes,
		now:         time.Now,
	}
	if cb.maxFailures == 0 {
		cb.maxFailures = 5
	}
	if cb.timeout <= 0 {
		cb.timeout = 30 * time.Second
	}
	if cb.maxProbes == 0 {
		cb.maxProbes = 1
	}
	return cb
}

// Name 熔断器名称
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// OnStateChange 设置状态变化回调(记录日志、更新指标)
// counts是from状态结束时的统计;回调在持有锁时执行,不能再调用熔断器的方法
func (cb *CircuitBreaker) OnStateChange(fn func(name string, from, to State, counts Counts)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.onStateChange = fn
}

// Execute 在熔断器保护下执行req
// 熔断中不调用req,直接返回ErrOpenState;req的错误原样返回
func (cb *CircuitBreaker) Execute(req func() error) error {
	generation, err := cb.before()
	if err != nil {
		return err
	}

	err = req()
	cb.after(generation, err == nil)
	return err
}

// State 当前状态
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	state, _ := cb.current(cb.now())
	return state
}

func (cb *CircuitBreaker) before() (uint64, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	state, generation := cb.current(cb.now())
	switch {
	case state == StateOpen:
		return generation, ErrOpenState
	case state == StateHalfOpen && cb.counts.Requests >= cb.maxProbes:
		return generation, ErrOpenState
	}

	cb.counts.Requests++
	return generation, nil
}

func (cb *CircuitBreaker) after(generation uint64, success bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := cb.now()
	state, current := cb.current(now)
	if current != generation {
		return
	}

	if success {
		cb.counts.ConsecutiveFailures = 0
		if state == StateHalfOpen {
			cb.setState(StateClosed, now)
		}
		return
	}

	cb.counts.Failures++
	cb.counts.ConsecutiveFailures++
	switch state {
	case StateClosed:
		if cb.counts.ConsecutiveFailures >= cb.maxFailures {
			cb.setState(StateOpen, now)
		}
	case StateHalfOpen:
		cb.setState(StateOpen, now)
	}
}

// current 返回当前状态,OPEN到期时顺带转为HALF_OPEN
func (cb *CircuitBreaker) current(now time.Time) (State, uint64) {
	if cb.state == StateOpen && !now.Before(cb.openUntil) {
		cb.setState(StateHalfOpen, now)
	}
	return cb.state, cb.generation
}

func (cb *CircuitBreaker) setState(state State, now time.Time) {
	if cb.state == state {
		return
	}

	prev, counts := cb.state, cb.counts
	cb.state = state
	cb.generation++
	cb.counts = Counts{}
	if state == StateOpen {
		cb.openUntil = now.Add(cb.timeout)
	}

	if cb.onStateChange != nil {
		cb.onStateChange(cb.name, prev, state, counts)
	}
}
