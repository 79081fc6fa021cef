package health

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DatabaseChecker 数据库健康检查器，额外确认输出表已迁移
type DatabaseChecker struct {
	pool *pgxpool.Pool
}

// NewDatabaseChecker 创建数据库健康检查器
func NewDatabaseChecker(pool *pgxpool.Pool) *DatabaseChecker {
	return &DatabaseChecker{pool: pool}
}

func (c *DatabaseChecker) Name() string {
	return "database"
}

func (c *DatabaseChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()

	if err := c.pool.Ping(ctx); err != nil {
		return CheckResult{
			Status:  StatusUnhealthy,
			Message: fmt.Sprintf("ping failed: %v", err),
			Latency: time.Since(start),
		}
	}

	var table *string
	if err := c.pool.QueryRow(ctx, `SELECT to_regclass('cdr_records')::text`).Scan(&table); err != nil {
		return CheckResult{
			Status:  StatusDegraded,
			Message: fmt.Sprintf("schema probe failed: %v", err),
			Latency: time.Since(start),
		}
	}

	stats := c.pool.Stat()
	utilization := 0.0
	if stats.MaxConns() > 0 {
		utilization = float64(stats.AcquiredConns()) / float64(stats.MaxConns())
	}

	status, message := poolStatus(utilization)
	if table == nil {
		status, message = StatusUnhealthy, "cdr_records table missing, run migrations"
	}

	return CheckResult{
		Status:  status,
		Message: message,
		Details: map[string]any{
			"total_conns":    stats.TotalConns(),
			"idle_conns":     stats.IdleConns(),
			"acquired_conns": stats.AcquiredConns(),
			"max_conns":      stats.MaxConns(),
			"utilization":    fmt.Sprintf("%.1f%%", utilization*100),
		},
		Latency: time.Since(start),
	}
}

func poolStatus(utilization float64) (Status, string) {
	switch {
	case utilization >= 1.0:
		return StatusUnhealthy, "connection pool exhausted"
	case utilization > 0.9:
		return StatusDegraded, "connection pool near limit"
	default:
		return StatusHealthy, "ok"
	}
}
