package converter

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taoyao-code/cdr-converter/internal/metrics"
	"github.com/taoyao-code/cdr-converter/internal/protocol/scdr"
)

// Status 单个文件的转换结果
type Status string

const (
	StatusOK      Status = "ok"      // 全部单元解码成功
	StatusPartial Status = "partial" // 已输出，但存在帧错误或字段问题
	StatusFailed  Status = "failed"  // 读取或输出失败，文件留在原处
	StatusSkipped Status = "skipped" // 内容已处理过（去重命中）
)

// Record 一条通过行过滤的输出记录
type Record struct {
	Seq    int   // 单元在文件中的序号
	Offset int64 // 单元起始字节偏移
	Row    []string
	Line   string
}

// Batch 一个输入文件的全部输出记录
type Batch struct {
	RunID   string
	File    string
	Records []Record
}

// Sink 输出目标；返回输出位置用于日志
type Sink interface {
	Name() string
	Write(ctx context.Context, b Batch) (string, error)
}

// Ledger 已处理文件登记（按内容摘要）
type Ledger interface {
	// Claim 首次出现返回 true
	Claim(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// RunStore 转换运行审计
type RunStore interface {
	SaveRun(ctx context.Context, run Run) error
}

// PriorRunFinder RunStore 的可选能力：按内容摘要查找上一次非跳过的运行
type PriorRunFinder interface {
	PriorRunID(ctx context.Context, sha256 string) (string, error)
}

// Run 一次文件转换的审计信息
type Run struct {
	ID           string
	File         string
	SHA256       string
	StartedAt    time.Time
	FinishedAt   time.Time
	Frames       int
	Kept         int
	Dropped      int
	Issues       int
	FramingError string
	Status       Status
	Outputs      []string
}

// Options 转换器依赖；Ledger、Runs、Metrics 可为空
type Options struct {
	ProcessedDir string
	Sinks        []Sink
	Reporter     Reporter
	Ledger       Ledger
	Runs         RunStore
	Metrics      *metrics.AppMetrics
}

// Converter 单文件转换流水线：读取 → 分帧 → 投影 → 输出 → 归档
type Converter struct {
	opts Options
	log  *zap.Logger
	now  func() time.Time
}

// New 创建转换器
func New(opts Options, log *zap.Logger) *Converter {
	if opts.Reporter == nil {
		opts.Reporter = NewZapReporter(log, opts.Metrics)
	}
	return &Converter{opts: opts, log: log, now: time.Now}
}

// ConvertFile 转换单个输入文件。
// 帧错误与字段问题只记录诊断，不视为失败；读取、输出、归档失败返回 error，文件保留待下次扫描。
func (c *Converter) ConvertFile(ctx context.Context, path string) (Run, error) {
	run := Run{ID: uuid.NewString(), File: path, StartedAt: c.now()}

	data, err := os.ReadFile(path)
	if err != nil {
		return c.finish(ctx, run, StatusFailed), fmt.Errorf("read %s: %w", path, err)
	}
	sum := sha256.Sum256(data)
	run.SHA256 = hex.EncodeToString(sum[:])

	claimed := false
	if c.opts.Ledger != nil {
		first, err := c.opts.Ledger.Claim(ctx, run.SHA256)
		switch {
		case err != nil:
			c.log.Warn("ledger claim failed, converting anyway", zap.String("file", path), zap.Error(err))
		case !first:
			c.log.Info("duplicate input skipped", c.duplicateFields(ctx, path, run.SHA256)...)
			if err := c.archive(path, run.ID); err != nil {
				return c.finish(ctx, run, StatusFailed), err
			}
			return c.finish(ctx, run, StatusSkipped), nil
		default:
			claimed = true
		}
	}

	batch := c.decode(path, data, &run)

	for _, s := range c.opts.Sinks {
		out, err := s.Write(ctx, batch)
		if err != nil {
			c.release(ctx, claimed, run.SHA256)
			return c.finish(ctx, run, StatusFailed), fmt.Errorf("sink %s: %w", s.Name(), err)
		}
		run.Outputs = append(run.Outputs, out)
	}

	if err := c.archive(path, run.ID); err != nil {
		return c.finish(ctx, run, StatusFailed), err
	}

	status := StatusOK
	if run.FramingError != "" || run.Issues > 0 {
		status = StatusPartial
	}
	run = c.finish(ctx, run, status)

	c.log.Info("conversion complete",
		zap.String("file", path),
		zap.Strings("saved", run.Outputs),
		zap.Int("frames", run.Frames),
		zap.Int("kept", run.Kept),
		zap.Int("dropped", run.Dropped),
		zap.String("status", string(run.Status)))
	return run, nil
}

// decode 分帧并逐单元投影，诊断事件同步上报
func (c *Converter) decode(path string, data []byte, run *Run) Batch {
	batch := Batch{RunID: run.ID, File: path}

	res := scdr.ReadFrames(bytes.NewReader(data))
	if res.Err != nil {
		run.FramingError = res.Err.Error()
		c.opts.Reporter.Report(frameEvent(path, len(res.Frames), res.Err))
	}
	run.Frames = len(res.Frames)

	for i, f := range res.Frames {
		p := scdr.Project(f)
		for _, issue := range p.Issues {
			c.opts.Reporter.Report(issueEvent(path, i, f, issue))
		}
		for _, n := range p.Notices {
			c.opts.Reporter.Report(Event{
				Kind:    KindTruncation,
				File:    path,
				Frame:   i,
				Offset:  f.ValueOffset + int64(n.Offset),
				Tag:     n.Tag,
				Message: n.Message,
			})
		}
		run.Issues += len(p.Issues)

		if !p.Kept {
			run.Dropped++
			continue
		}
		run.Kept++
		batch.Records = append(batch.Records, Record{Seq: i, Offset: f.Offset, Row: p.Row, Line: p.Line})
	}
	return batch
}

// archive 将输入文件移入已处理目录；目标重名时追加运行 ID
func (c *Converter) archive(path, runID string) error {
	if c.opts.ProcessedDir == "" {
		return nil
	}
	if err := os.MkdirAll(c.opts.ProcessedDir, 0o755); err != nil {
		return fmt.Errorf("create processed dir: %w", err)
	}
	dst := filepath.Join(c.opts.ProcessedDir, filepath.Base(path))
	if _, err := os.Stat(dst); err == nil {
		dst = dst + "." + strings.SplitN(runID, "-", 2)[0]
	}
	if err := moveFile(path, dst); err != nil {
		return fmt.Errorf("move %s: %w", path, err)
	}
	return nil
}

// duplicateFields 重复输入日志字段；能查到上一次运行时附带其 ID
func (c *Converter) duplicateFields(ctx context.Context, path, sha string) []zap.Field {
	fields := []zap.Field{zap.String("file", path), zap.String("sha256", sha)}
	finder, ok := c.opts.Runs.(PriorRunFinder)
	if !ok {
		return fields
	}
	id, err := finder.PriorRunID(ctx, sha)
	switch {
	case err != nil:
		c.log.Debug("prior run lookup failed", zap.String("sha256", sha), zap.Error(err))
	case id != "":
		fields = append(fields, zap.String("prior_run_id", id))
	}
	return fields
}

func (c *Converter) release(ctx context.Context, claimed bool, key string) {
	if !claimed {
		return
	}
	if err := c.opts.Ledger.Release(ctx, key); err != nil {
		c.log.Warn("ledger release failed", zap.String("sha256", key), zap.Error(err))
	}
}

// finish 补全结束信息、更新指标并写审计
func (c *Converter) finish(ctx context.Context, run Run, status Status) Run {
	run.Status = status
	run.FinishedAt = c.now()

	if m := c.opts.Metrics; m != nil {
		m.FilesTotal.WithLabelValues(string(status)).Inc()
		m.FramesTotal.Add(float64(run.Frames))
		m.RecordsTotal.WithLabelValues("kept").Add(float64(run.Kept))
		m.RecordsTotal.WithLabelValues("dropped").Add(float64(run.Dropped))
		m.FileDuration.Observe(run.FinishedAt.Sub(run.StartedAt).Seconds())
	}
	if c.opts.Runs != nil {
		if err := c.opts.Runs.SaveRun(ctx, run); err != nil {
			c.log.Error("save conversion run failed", zap.String("run_id", run.ID), zap.Error(err))
		}
	}
	return run
}
