package health

import (
	"context"
	"time"

	"github.com/taoyao-code/cdr-converter/internal/sink"
)

// BreakerChecker 输出熔断时文件暂不归档，报 Degraded
type BreakerChecker struct {
	sink *sink.Guarded
}

// NewBreakerChecker 创建熔断检查器
func NewBreakerChecker(s *sink.Guarded) *BreakerChecker {
	return &BreakerChecker{sink: s}
}

func (c *BreakerChecker) Name() string {
	return "sink_" + c.sink.Name()
}

func (c *BreakerChecker) Check(_ context.Context) CheckResult {
	start := time.Now()
	state := c.sink.State()

	result := CheckResult{
		Status:  StatusHealthy,
		Message: "ok",
		Details: map[string]any{"state": state.String(), "trips": c.sink.Trips()},
	}
	if state != sink.StateClosed {
		result.Status = StatusDegraded
		result.Message = "sink circuit " + state.String()
	}
	result.Latency = time.Since(start)
	return result
}
