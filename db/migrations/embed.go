// Package migrations 内置的 PostgreSQL 迁移脚本
package migrations

import "embed"

// FS 内置迁移文件（*_up.sql / *_down.sql）
//
//go:embed *.sql
var FS embed.FS
