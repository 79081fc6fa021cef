package sink

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/taoyao-code/cdr-converter/internal/converter"
	"github.com/taoyao-code/cdr-converter/internal/protocol/scdr"
	pgstorage "github.com/taoyao-code/cdr-converter/internal/storage/pg"
)

// RecordCopier cdr_records 批量写入
type RecordCopier interface {
	CopyRecords(ctx context.Context, runID string, rows []pgstorage.CDRRow) (int64, error)
}

// Postgres 将保留行写入 cdr_records
type Postgres struct {
	repo RecordCopier
}

// NewPostgres 创建数据库输出
func NewPostgres(repo RecordCopier) *Postgres {
	return &Postgres{repo: repo}
}

func (s *Postgres) Name() string { return "postgres" }

func (s *Postgres) Write(ctx context.Context, b converter.Batch) (string, error) {
	rows := make([]pgstorage.CDRRow, 0, len(b.Records))
	name := filepath.Base(b.File)
	for _, rec := range b.Records {
		rows = append(rows, toRow(b.RunID, name, rec))
	}
	n, err := s.repo.CopyRecords(ctx, b.RunID, rows)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("postgres:cdr_records(%d)", n), nil
}

var columnIndex = func() map[string]int {
	idx := make(map[string]int)
	for i, name := range scdr.OutputSchema() {
		idx[name] = i
	}
	return idx
}()

func column(row []string, name string) string {
	i, ok := columnIndex[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func toRow(runID, file string, rec converter.Record) pgstorage.CDRRow {
	return pgstorage.CDRRow{
		RunID:             runID,
		FileName:          file,
		Seq:               rec.Seq,
		ByteOffset:        rec.Offset,
		ServedIMSI:        column(rec.Row, "servedIMSI"),
		ServedMSISDN:      column(rec.Row, "servedMSISDN"),
		RecordOpeningDate: column(rec.Row, scdr.FieldRecordOpeningDate),
		RecordOpeningTime: column(rec.Row, scdr.FieldRecordOpeningTime1),
		Uplink:            column(rec.Row, scdr.FieldUplink),
		Downlink:          column(rec.Row, scdr.FieldDownlink),
		Fields:            rec.Row,
		Line:              rec.Line,
	}
}
