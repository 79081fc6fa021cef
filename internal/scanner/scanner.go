package scanner

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/taoyao-code/cdr-converter/internal/converter"
	"github.com/taoyao-code/cdr-converter/internal/metrics"
)

// FileConverter 单文件转换
type FileConverter interface {
	ConvertFile(ctx context.Context, path string) (converter.Run, error)
}

// Options 扫描参数
type Options struct {
	InputDir   string
	Suffix     string
	Interval   time.Duration
	Workers    int
	RatePerSec int
	Burst      int
}

// Summary 一轮扫描结果
type Summary struct {
	Files   int
	OK      int
	Partial int
	Failed  int
	Skipped int
}

func (s *Summary) add(st converter.Status) {
	switch st {
	case converter.StatusOK:
		s.OK++
	case converter.StatusPartial:
		s.Partial++
	case converter.StatusSkipped:
		s.Skipped++
	default:
		s.Failed++
	}
}

// Scanner 周期扫描输入目录并以有限并发转换文件
type Scanner struct {
	conv    FileConverter
	opts    Options
	limiter *RateLimiter
	log     *zap.Logger
	metrics *metrics.AppMetrics

	mu       sync.Mutex // 同一时刻只允许一轮扫描
	kick     chan struct{}
	lastScan atomic.Int64
	running  atomic.Bool
	scans    atomic.Int64
}

// New 创建扫描器，metrics 可为 nil
func New(conv FileConverter, opts Options, log *zap.Logger, m *metrics.AppMetrics) *Scanner {
	if opts.Suffix == "" {
		opts.Suffix = ".dat"
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Interval <= 0 {
		opts.Interval = 30 * time.Second
	}
	return &Scanner{
		conv:    conv,
		opts:    opts,
		limiter: NewRateLimiter(opts.RatePerSec, opts.Burst),
		log:     log,
		metrics: m,
		kick:    make(chan struct{}, 1),
	}
}

// List 返回目录下以 suffix 结尾的普通文件，按文件名排序
func List(dir, suffix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.HasSuffix(e.Name(), suffix) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// RunOnce 扫描一轮并等待全部文件处理完成
func (s *Scanner) RunOnce(ctx context.Context) (Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := List(s.opts.InputDir, s.opts.Suffix)
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{Files: len(files)}
	if len(files) == 0 {
		s.markScanned()
		return sum, nil
	}

	jobs := make(chan string)
	var (
		wg    sync.WaitGroup
		resMu sync.Mutex
	)
	for i := 0; i < min(s.opts.Workers, len(files)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				st := s.convert(ctx, path)
				resMu.Lock()
				sum.add(st)
				resMu.Unlock()
			}
		}()
	}

dispatch:
	for _, path := range files {
		if err := s.limiter.Wait(ctx); err != nil {
			break
		}
		select {
		case jobs <- path:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	s.markScanned()
	s.log.Info("scan finished",
		zap.String("dir", s.opts.InputDir),
		zap.Int("files", sum.Files),
		zap.Int("ok", sum.OK),
		zap.Int("partial", sum.Partial),
		zap.Int("failed", sum.Failed),
		zap.Int("skipped", sum.Skipped))
	return sum, ctx.Err()
}

func (s *Scanner) convert(ctx context.Context, path string) converter.Status {
	if s.metrics != nil {
		s.metrics.ScanInflight.Inc()
		defer s.metrics.ScanInflight.Dec()
	}
	run, err := s.conv.ConvertFile(ctx, path)
	if err != nil {
		s.log.Error("convert file failed", zap.String("file", path), zap.Error(err))
		return converter.StatusFailed
	}
	return run.Status
}

func (s *Scanner) markScanned() {
	now := time.Now()
	s.lastScan.Store(now.UnixNano())
	s.scans.Add(1)
	if s.metrics != nil {
		s.metrics.ScanLastSuccess.Set(float64(now.Unix()))
	}
}

// Start 立即扫描一轮，之后按间隔循环，直到 ctx 结束
func (s *Scanner) Start(ctx context.Context) {
	s.running.Store(true)
	defer s.running.Store(false)

	s.log.Info("scanner started",
		zap.String("dir", s.opts.InputDir),
		zap.String("suffix", s.opts.Suffix),
		zap.Duration("interval", s.opts.Interval),
		zap.Int("workers", s.opts.Workers))

	s.tick(ctx)
	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scanner stopped", zap.Int64("scans", s.scans.Load()))
			return
		case <-ticker.C:
			s.tick(ctx)
		case <-s.kick:
			s.tick(ctx)
			ticker.Reset(s.opts.Interval)
		}
	}
}

func (s *Scanner) tick(ctx context.Context) {
	if _, err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
		s.log.Error("scan failed", zap.String("dir", s.opts.InputDir), zap.Error(err))
	}
}

// Trigger 请求尽快扫描一轮；已有待处理请求时返回 false
func (s *Scanner) Trigger() bool {
	select {
	case s.kick <- struct{}{}:
		return true
	default:
		return false
	}
}

// LastScan 最近一次完成扫描的时间，零值表示尚未扫描
func (s *Scanner) LastScan() time.Time {
	ns := s.lastScan.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// Running 循环是否在运行
func (s *Scanner) Running() bool { return s.running.Load() }

// Interval 扫描间隔
func (s *Scanner) Interval() time.Duration { return s.opts.Interval }

// LimiterStats 限速统计
func (s *Scanner) LimiterStats() RateLimiterStats { return s.limiter.Stats() }
