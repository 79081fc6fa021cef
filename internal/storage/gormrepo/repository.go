package gormrepo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/taoyao-code/cdr-converter/internal/converter"
	"github.com/taoyao-code/cdr-converter/internal/storage/models"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("conversion run not found")

// Repository 基于 GORM 的转换审计存储
type Repository struct {
	db *gorm.DB
}

// New 返回使用给定 *gorm.DB 的审计存储
func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// SaveRun 写入或覆盖一次转换记录，实现 converter.RunStore
func (r *Repository) SaveRun(ctx context.Context, run converter.Run) error {
	rec := toModel(run)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&rec).Error
}

// ListRuns 按开始时间倒序分页，可按状态过滤
func (r *Repository) ListRuns(ctx context.Context, status string, limit, offset int) ([]models.ConversionRun, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.ConversionRun{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var runs []models.ConversionRun
	err := q.Order("started_at DESC").Limit(limit).Offset(offset).Find(&runs).Error
	return runs, total, err
}

// GetRun 按 ID 查询
func (r *Repository) GetRun(ctx context.Context, id string) (*models.ConversionRun, error) {
	var run models.ConversionRun
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// LastBySHA 返回同一内容最近一次转换，用于排查重复输入
func (r *Repository) LastBySHA(ctx context.Context, sha string) (*models.ConversionRun, error) {
	var run models.ConversionRun
	err := r.db.WithContext(ctx).
		Where("sha256 = ? AND status <> ?", sha, string(converter.StatusSkipped)).
		Order("started_at DESC").
		First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// PriorRunID 实现 converter.PriorRunFinder；没有记录时返回空串
func (r *Repository) PriorRunID(ctx context.Context, sha string) (string, error) {
	run, err := r.LastBySHA(ctx, sha)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return run.ID, nil
}

func toModel(run converter.Run) models.ConversionRun {
	rec := models.ConversionRun{
		ID:         run.ID,
		File:       run.File,
		Status:     string(run.Status),
		Frames:     run.Frames,
		Kept:       run.Kept,
		Dropped:    run.Dropped,
		Issues:     run.Issues,
		Outputs:    strings.Join(run.Outputs, ","),
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
	}
	if run.SHA256 != "" {
		sha := run.SHA256
		rec.SHA256 = &sha
	}
	if run.FramingError != "" {
		fe := run.FramingError
		rec.FramingError = &fe
	}
	return rec
}
