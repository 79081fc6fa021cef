package app

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/cdr-converter/internal/config"
	"github.com/taoyao-code/cdr-converter/internal/converter"
	"github.com/taoyao-code/cdr-converter/internal/metrics"
	"github.com/taoyao-code/cdr-converter/internal/scanner"
	"github.com/taoyao-code/cdr-converter/internal/sink"
	"github.com/taoyao-code/cdr-converter/internal/storage/gormrepo"
	pgstorage "github.com/taoyao-code/cdr-converter/internal/storage/pg"
	redisstorage "github.com/taoyao-code/cdr-converter/internal/storage/redis"
)

// Pipeline 转换流水线及其外部依赖；未启用的依赖为 nil
type Pipeline struct {
	Converter *converter.Converter
	Scanner   *scanner.Scanner
	DB        *pgxpool.Pool
	Redis     *redisstorage.Client
	Runs      *gormrepo.Repository
	Guard     *sink.Guarded
	SinkNames []string

	closers []func()
}

// BuildPipeline 按配置连接外部依赖并组装转换器与扫描器
func BuildPipeline(ctx context.Context, cfg *cfgpkg.Config, log *zap.Logger, appm *metrics.AppMetrics) (_ *Pipeline, err error) {
	p := &Pipeline{}
	defer func() {
		if err != nil {
			p.Close()
		}
	}()

	if err := os.MkdirAll(cfg.Scanner.InputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create input dir: %w", err)
	}

	if cfg.Database.Enabled {
		p.DB, err = ConnectDBAndMigrate(ctx, cfg.Database, log)
		if err != nil {
			return nil, err
		}
		p.closers = append(p.closers, p.DB.Close)
		log.Info("database ready", zap.String("dsn", MaskDSN(cfg.Database.DSN)))
	}

	p.Redis, err = NewRedisClient(ctx, cfg.Redis, log)
	if err != nil {
		return nil, err
	}
	if p.Redis != nil {
		p.closers = append(p.closers, func() { _ = p.Redis.Close() })
	}

	var sinks []converter.Sink
	if cfg.Sinks.CSV {
		csv, err := sink.NewCSV(cfg.Scanner.CSVDir)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, csv)
	}
	if cfg.Sinks.Postgres {
		p.Guard = sink.NewGuarded(
			sink.NewPostgres(&pgstorage.Repository{Pool: p.DB}),
			cfg.Sinks.Breaker.Threshold, cfg.Sinks.Breaker.Cooldown, log)
		sinks = append(sinks, p.Guard)
	}
	for _, s := range sinks {
		p.SinkNames = append(p.SinkNames, s.Name())
	}

	opts := converter.Options{
		ProcessedDir: cfg.Scanner.ProcessedDir,
		Sinks:        sinks,
		Metrics:      appm,
	}
	if cfg.Ledger.Enabled {
		opts.Ledger = redisstorage.NewLedger(p.Redis.Client, log, cfg.Ledger.TTL, InstanceID())
	}
	if cfg.Audit.Enabled {
		db, err := gormrepo.Open(p.DB, log)
		if err != nil {
			return nil, fmt.Errorf("open gorm: %w", err)
		}
		p.Runs = gormrepo.New(db)
		opts.Runs = p.Runs
	}

	p.Converter = converter.New(opts, log)
	p.Scanner = scanner.New(p.Converter, scanner.Options{
		InputDir:   cfg.Scanner.InputDir,
		Suffix:     cfg.Scanner.Suffix,
		Interval:   cfg.Scanner.Interval,
		Workers:    cfg.Scanner.Workers,
		RatePerSec: cfg.Scanner.RatePerSec,
		Burst:      cfg.Scanner.Burst,
	}, log, appm)

	log.Info("conversion pipeline ready",
		zap.Strings("sinks", p.SinkNames),
		zap.Bool("ledger", cfg.Ledger.Enabled),
		zap.Bool("audit", cfg.Audit.Enabled))
	return p, nil
}

// Close 逆序释放外部连接
func (p *Pipeline) Close() {
	for i := len(p.closers) - 1; i >= 0; i-- {
		p.closers[i]()
	}
	p.closers = nil
}
