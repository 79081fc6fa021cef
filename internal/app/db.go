package app

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/taoyao-code/cdr-converter/db/migrations"
	cfgpkg "github.com/taoyao-code/cdr-converter/internal/config"
	"github.com/taoyao-code/cdr-converter/internal/migrate"
	pgstorage "github.com/taoyao-code/cdr-converter/internal/storage/pg"
)

// ConnectDBAndMigrate 建立数据库连接并按需执行迁移；磁盘目录缺失时使用内置迁移
func ConnectDBAndMigrate(ctx context.Context, cfg cfgpkg.DatabaseConfig, log *zap.Logger) (*pgxpool.Pool, error) {
	dbpool, err := pgstorage.NewPool(ctx, cfg, log)
	if err != nil {
		log.Error("db connect error", zap.Error(err))
		return nil, err
	}
	if cfg.AutoMigrate {
		runner := migrate.Runner{Dir: cfg.MigrationsDir, FS: migrations.FS, Log: log}
		applied, err := runner.Up(ctx, dbpool)
		if err != nil {
			log.Error("db migrate error", zap.Error(err))
			dbpool.Close()
			return nil, err
		}
		log.Info("db migrations applied", zap.Int64s("versions", applied))
	}
	return dbpool, nil
}
