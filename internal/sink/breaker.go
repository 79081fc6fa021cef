package sink

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/taoyao-code/cdr-converter/internal/converter"
)

// State 熔断器状态
type State int

const (
	StateClosed   State = iota // 正常写入
	StateOpen                  // 熔断，直接失败
	StateHalfOpen              // 放行一次试探写入
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen 下游连续失败，熔断期内拒绝写入
var ErrCircuitOpen = errors.New("sink circuit breaker is open")

// Guarded 为下游输出加熔断保护：连续失败达到阈值后在冷却期内快速失败，
// 输入文件因此留在原处等待下一轮扫描
type Guarded struct {
	next      converter.Sink
	threshold int
	cooldown  time.Duration
	log       *zap.Logger
	now       func() time.Time

	mu        sync.Mutex
	state     State
	failures  int
	openedAt  time.Time
	probing   bool
	tripCount int64
}

// NewGuarded 包装下游输出
func NewGuarded(next converter.Sink, threshold int, cooldown time.Duration, log *zap.Logger) *Guarded {
	if threshold <= 0 {
		threshold = 3
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &Guarded{next: next, threshold: threshold, cooldown: cooldown, log: log, now: time.Now}
}

func (g *Guarded) Name() string { return g.next.Name() }

func (g *Guarded) Write(ctx context.Context, b converter.Batch) (string, error) {
	if err := g.before(); err != nil {
		return "", err
	}
	out, err := g.next.Write(ctx, b)
	g.after(err)
	return out, err
}

func (g *Guarded) before() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.state {
	case StateOpen:
		if g.now().Sub(g.openedAt) < g.cooldown {
			return ErrCircuitOpen
		}
		g.transition(StateHalfOpen)
		g.probing = true
		return nil
	case StateHalfOpen:
		if g.probing {
			return ErrCircuitOpen
		}
		g.probing = true
	}
	return nil
}

func (g *Guarded) after(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.probing = false

	if err == nil {
		g.failures = 0
		g.transition(StateClosed)
		return
	}

	g.failures++
	if g.state == StateHalfOpen || g.failures >= g.threshold {
		g.openedAt = g.now()
		g.tripCount++
		g.transition(StateOpen)
	}
}

func (g *Guarded) transition(to State) {
	if g.state == to {
		return
	}
	g.log.Warn("sink breaker state changed",
		zap.String("sink", g.next.Name()),
		zap.String("from", g.state.String()),
		zap.String("to", to.String()))
	g.state = to
}

// State 当前状态
func (g *Guarded) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Trips 累计熔断次数
func (g *Guarded) Trips() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.tripCount
}
