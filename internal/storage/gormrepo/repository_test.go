package gormrepo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"

	"github.com/taoyao-code/cdr-converter/internal/converter"
)

func TestToModel(t *testing.T) {
	start := time.Date(2023, 1, 15, 8, 30, 0, 0, time.UTC)
	rec := toModel(converter.Run{
		ID:         "run-1",
		File:       "in/a.dat",
		SHA256:     "abc",
		Status:     converter.StatusPartial,
		Frames:     3,
		Kept:       2,
		Dropped:    1,
		Outputs:    []string{"csv/a.csv", "postgres:cdr_records"},
		StartedAt:  start,
		FinishedAt: start.Add(time.Second),
	})

	assert.Equal(t, "run-1", rec.ID)
	assert.Equal(t, "partial", rec.Status)
	require.NotNil(t, rec.SHA256)
	assert.Equal(t, "abc", *rec.SHA256)
	assert.Nil(t, rec.FramingError)
	assert.Equal(t, "csv/a.csv,postgres:cdr_records", rec.Outputs)
	assert.Equal(t, "conversion_runs", rec.TableName())
}

func TestZapGormLogger_LogMode(t *testing.T) {
	l := &zapGormLogger{log: zap.NewNop(), level: logger.Warn}
	silent := l.LogMode(logger.Silent).(*zapGormLogger)
	assert.Equal(t, logger.Silent, silent.level)
	assert.Equal(t, logger.Warn, l.level, "LogMode must not mutate the receiver")
}

// 集成测试：需要 TEST_DATABASE_URL 且已执行迁移
func TestRepository_SaveAndList(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("测试数据库不可用，跳过测试")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		t.Skipf("测试数据库不可用: %v", err)
	}

	db, err := Open(pool, zap.NewNop())
	require.NoError(t, err)
	repo := New(db)

	id := uuid.NewString()
	sha := uuid.NewString()
	run := converter.Run{ID: id, File: "a.dat", SHA256: sha, Status: converter.StatusOK, StartedAt: time.Now(), FinishedAt: time.Now()}
	require.NoError(t, repo.SaveRun(ctx, run))

	run.Status = converter.StatusFailed
	require.NoError(t, repo.SaveRun(ctx, run), "same id is upserted")

	got, err := repo.GetRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "failed", got.Status)

	runs, total, err := repo.ListRuns(ctx, "failed", 10, 0)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, total, int64(1))
	assert.NotEmpty(t, runs)

	_, err = repo.GetRun(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)

	// 跳过记录不算作上一次运行
	skipped := converter.Run{ID: uuid.NewString(), File: "a.dat", SHA256: sha, Status: converter.StatusSkipped,
		StartedAt: time.Now().Add(time.Minute), FinishedAt: time.Now().Add(time.Minute)}
	require.NoError(t, repo.SaveRun(ctx, skipped))

	last, err := repo.LastBySHA(ctx, sha)
	require.NoError(t, err)
	assert.Equal(t, id, last.ID)

	prior, err := repo.PriorRunID(ctx, sha)
	require.NoError(t, err)
	assert.Equal(t, id, prior)

	prior, err = repo.PriorRunID(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Empty(t, prior)
}

var _ converter.PriorRunFinder = (*Repository)(nil)
