package sink

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/taoyao-code/cdr-converter/internal/converter"
)

// CSV 将保留行写入 <dir>/<输入文件名去扩展名>.csv，每行一个单元
type CSV struct {
	dir string
}

// NewCSV 创建 CSV 输出，目录不存在时创建
func NewCSV(dir string) (*CSV, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create csv dir: %w", err)
	}
	return &CSV{dir: dir}, nil
}

func (s *CSV) Name() string { return "csv" }

// Path 返回输入文件对应的输出路径
func (s *CSV) Path(input string) string {
	base := filepath.Base(input)
	return filepath.Join(s.dir, strings.TrimSuffix(base, filepath.Ext(base))+".csv")
}

// Write 先写临时文件再 rename，避免留下半截输出
func (s *CSV) Write(ctx context.Context, b converter.Batch) (string, error) {
	out := s.Path(b.File)
	tmp, err := os.CreateTemp(s.dir, ".cdr-*.tmp")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	for i, rec := range b.Records {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				tmp.Close()
				return "", err
			}
		}
		if _, err := w.WriteString(rec.Line); err != nil {
			tmp.Close()
			return "", err
		}
		if err := w.WriteByte('\n'); err != nil {
			tmp.Close()
			return "", err
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), out); err != nil {
		return "", err
	}
	return out, nil
}
