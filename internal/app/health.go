package app

import (
	"github.com/gin-gonic/gin"

	"github.com/taoyao-code/cdr-converter/internal/health"
)

// NewHealthAggregator 按流水线实际启用的组件组装健康检查
func NewHealthAggregator(p *Pipeline) *health.Aggregator {
	agg := health.NewAggregator(health.NewScannerChecker(p.Scanner))
	if p.DB != nil {
		agg.AddChecker(health.NewDatabaseChecker(p.DB))
	}
	AddRedisChecker(agg, p.Redis)
	if p.Guard != nil {
		agg.AddChecker(health.NewBreakerChecker(p.Guard))
	}
	return agg
}

// RegisterHealthRoutes 注册健康检查HTTP路由
func RegisterHealthRoutes(r *gin.Engine, aggregator *health.Aggregator) {
	health.RegisterHTTPRoutes(r, aggregator)
}

// NewReady 创建就绪状态
func NewReady() *health.Readiness {
	return health.New()
}
