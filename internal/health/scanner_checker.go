package health

import (
	"context"
	"time"

	"github.com/taoyao-code/cdr-converter/internal/scanner"
)

// ScanStatus 目录扫描器运行状态
type ScanStatus interface {
	Running() bool
	LastScan() time.Time
	Interval() time.Duration
}

// limiterStatter 扫描器可选暴露的限速统计
type limiterStatter interface {
	LimiterStats() scanner.RateLimiterStats
}

// ScannerChecker 依据最近一次扫描时间判断扫描循环是否卡住
type ScannerChecker struct {
	scanner ScanStatus
	now     func() time.Time
}

// NewScannerChecker 创建扫描器检查器
func NewScannerChecker(s ScanStatus) *ScannerChecker {
	return &ScannerChecker{scanner: s, now: time.Now}
}

func (c *ScannerChecker) Name() string {
	return "scanner"
}

func (c *ScannerChecker) Check(_ context.Context) CheckResult {
	start := time.Now()
	last := c.scanner.LastScan()
	interval := c.scanner.Interval()

	details := map[string]any{
		"running":  c.scanner.Running(),
		"interval": interval.String(),
	}
	if !last.IsZero() {
		details["last_scan"] = last
	}
	if ls, ok := c.scanner.(limiterStatter); ok {
		details["limiter"] = ls.LimiterStats()
	}

	result := CheckResult{Status: StatusHealthy, Message: "ok", Details: details}
	switch {
	case !c.scanner.Running():
		result.Status, result.Message = StatusUnhealthy, "scanner not running"
	case last.IsZero():
		result.Status, result.Message = StatusDegraded, "waiting for first scan"
	default:
		age := c.now().Sub(last)
		details["age"] = age.String()
		switch {
		case age > 10*interval:
			result.Status, result.Message = StatusUnhealthy, "scanner stalled"
		case age > 3*interval:
			result.Status, result.Message = StatusDegraded, "scan overdue"
		}
	}
	result.Latency = time.Since(start)
	return result
}
