package bootstrap

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taoyao-code/cdr-converter/internal/api"
	"github.com/taoyao-code/cdr-converter/internal/api/middleware"
	"github.com/taoyao-code/cdr-converter/internal/app"
	cfgpkg "github.com/taoyao-code/cdr-converter/internal/config"
	"github.com/taoyao-code/cdr-converter/internal/metrics"
)

// Version 构建时通过 -ldflags 注入
var Version = "dev"

// Run 守护进程启动流程：依赖 → HTTP → 扫描循环 → 等待信号
func Run(cfg *cfgpkg.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return run(ctx, cfg, log)
}

func run(ctx context.Context, cfg *cfgpkg.Config, log *zap.Logger) error {
	log.Info("starting cdr converter",
		zap.String("version", Version),
		zap.String("env", cfg.App.Env),
		zap.Int("pid", os.Getpid()))

	// ========== 阶段1: 基础组件 ==========
	reg, appm := app.NewMetrics()
	ready := app.NewReady()

	// ========== 阶段2: 外部依赖与转换流水线（失败直接返回）==========
	pipeline, err := app.BuildPipeline(ctx, cfg, log, appm)
	if err != nil {
		log.Error("pipeline initialization failed", zap.Error(err))
		return err
	}
	defer pipeline.Close()
	ready.SetSinksReady(true)

	// ========== 阶段3: HTTP 服务（非阻塞）==========
	var metricsHandler = metrics.Handler(reg)
	if !cfg.Metrics.Enable {
		metricsHandler = nil
	}
	httpSrv := app.NewHTTPServer(cfg.HTTP, cfg.Metrics.Path, metricsHandler, ready.Ready, log)
	healthAgg := app.NewHealthAggregator(pipeline)

	httpSrv.Register(func(r *gin.Engine) {
		app.RegisterHealthRoutes(r, healthAgg)
		if pipeline.Runs != nil {
			authCfg := middleware.AuthConfig{Enabled: cfg.API.Auth.Enabled, APIKeys: cfg.API.Auth.APIKeys}
			api.RegisterRoutes(r, pipeline.Runs, pipeline.Scanner, authCfg, log)
		}
	})

	httpErr := make(chan error, 1)
	go func() {
		httpErr <- httpSrv.Start()
	}()
	log.Info("http server started", zap.String("addr", cfg.HTTP.Addr))

	// ========== 阶段4: 扫描循环 ==========
	scanCtx, cancelScan := context.WithCancel(ctx)
	scanDone := make(chan struct{})
	go func() {
		defer close(scanDone)
		pipeline.Scanner.Start(scanCtx)
	}()
	ready.SetScannerReady(true)
	log.Info("all services ready, watching input directory", zap.String("dir", cfg.Scanner.InputDir))

	// ========== 阶段5: 等待关闭 ==========
	var runErr error
	select {
	case <-ctx.Done():
		log.Info("received shutdown signal, gracefully shutting down...")
	case err := <-httpErr:
		if err != nil {
			log.Error("http server error", zap.Error(err))
			runErr = err
		}
	}

	ready.SetScannerReady(false)
	cancelScan()
	<-scanDone
	log.Info("scanner stopped")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		log.Warn("http shutdown error", zap.Error(err))
	}
	log.Info("shutdown complete")
	return runErr
}
