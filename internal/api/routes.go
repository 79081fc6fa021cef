package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taoyao-code/cdr-converter/internal/api/middleware"
)

// RegisterRoutes 注册转换审计路由
func RegisterRoutes(r gin.IRouter, runs RunReader, trigger ScanTrigger, authCfg middleware.AuthConfig, logger *zap.Logger) {
	if r == nil || runs == nil {
		return
	}
	handler := NewRunsHandler(runs, trigger, logger)

	v1 := r.Group("/api/v1")
	if authCfg.Enabled {
		v1.Use(middleware.APIKeyAuth(authCfg, logger))
		logger.Info("api authentication enabled", zap.Int("api_keys_count", len(authCfg.APIKeys)))
	} else {
		logger.Warn("api authentication disabled")
	}

	v1.GET("/runs", handler.ListRuns)
	v1.GET("/runs/:id", handler.GetRun)
	v1.POST("/scan", handler.TriggerScan)
}
