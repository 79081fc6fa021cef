package pg

import (
	"context"
	"fmt"
	"math/big"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CDRRow cdr_records 表的一行
type CDRRow struct {
	RunID             string
	FileName          string
	Seq               int
	ByteOffset        int64
	ServedIMSI        string
	ServedMSISDN      string
	RecordOpeningDate string
	RecordOpeningTime string
	Uplink            string // 十进制字符串，空表示缺失
	Downlink          string
	Fields            []string
	Line              string
}

var cdrColumns = []string{
	"run_id", "file_name", "seq", "byte_offset", "served_imsi", "served_msisdn",
	"record_opening_date", "record_opening_time", "uplink", "downlink", "fields", "line",
}

// Repository cdr_records 持久化
type Repository struct {
	Pool *pgxpool.Pool
}

// CopyRecords 在一个事务内先清除同一 run 的旧行，再以 COPY 批量写入
func (r *Repository) CopyRecords(ctx context.Context, runID string, rows []CDRRow) (int64, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM cdr_records WHERE run_id = $1`, runID); err != nil {
		return 0, err
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{"cdr_records"}, cdrColumns, pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
		row := rows[i]
		up, err := numeric(row.Uplink)
		if err != nil {
			return nil, fmt.Errorf("row %d uplink: %w", row.Seq, err)
		}
		down, err := numeric(row.Downlink)
		if err != nil {
			return nil, fmt.Errorf("row %d downlink: %w", row.Seq, err)
		}
		return []any{
			row.RunID, row.FileName, row.Seq, row.ByteOffset,
			text(row.ServedIMSI), text(row.ServedMSISDN),
			text(row.RecordOpeningDate), text(row.RecordOpeningTime),
			up, down, row.Fields, row.Line,
		}, nil
	}))
	if err != nil {
		return 0, err
	}
	return n, tx.Commit(ctx)
}

// CountByRun 返回某次运行写入的行数
func (r *Repository) CountByRun(ctx context.Context, runID string) (int64, error) {
	var n int64
	err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM cdr_records WHERE run_id = $1`, runID).Scan(&n)
	return n, err
}

// LinesByRun 按单元顺序返回某次运行的输出行
func (r *Repository) LinesByRun(ctx context.Context, runID string) ([]string, error) {
	rows, err := r.Pool.Query(ctx, `SELECT line FROM cdr_records WHERE run_id = $1 ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func text(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func numeric(s string) (pgtype.Numeric, error) {
	if s == "" {
		return pgtype.Numeric{}, nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return pgtype.Numeric{}, fmt.Errorf("not a decimal integer: %q", s)
	}
	return pgtype.Numeric{Int: v, Valid: true}, nil
}
