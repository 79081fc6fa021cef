package models

import (
	"time"
)

// 注意：
// - 与 db/migrations 中的表结构保持一致
// - 不使用 gorm.Model，显式声明每个字段

// ConversionRun 映射 conversion_runs 表，一个输入文件一次转换
type ConversionRun struct {
	ID     string  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	File   string  `gorm:"column:file_name;type:text;not null" json:"file"`
	SHA256 *string `gorm:"column:sha256;type:char(64)" json:"sha256,omitempty"`
	// ok / partial / failed / skipped
	Status  string `gorm:"column:status;type:varchar(16);not null" json:"status"`
	Frames  int    `gorm:"column:frames;not null;default:0" json:"frames"`
	Kept    int    `gorm:"column:kept;not null;default:0" json:"kept"`
	Dropped int    `gorm:"column:dropped;not null;default:0" json:"dropped"`
	Issues  int    `gorm:"column:issues;not null;default:0" json:"issues"`
	// 顶层帧错误描述，可空
	FramingError *string `gorm:"column:framing_error;type:text" json:"framing_error,omitempty"`
	// 输出位置，逗号分隔
	Outputs    string    `gorm:"column:outputs;type:text" json:"outputs"`
	StartedAt  time.Time `gorm:"column:started_at;not null" json:"started_at"`
	FinishedAt time.Time `gorm:"column:finished_at;not null" json:"finished_at"`
}

func (ConversionRun) TableName() string { return "conversion_runs" }
