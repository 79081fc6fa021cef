package converter

import (
	"errors"

	"go.uber.org/zap"

	"github.com/taoyao-code/cdr-converter/internal/metrics"
	"github.com/taoyao-code/cdr-converter/internal/protocol/scdr"
)

// Kind 诊断事件类别
type Kind string

const (
	KindFraming    Kind = "framing"    // 顶层帧错误，文件后续内容放弃
	KindBounds     Kind = "bounds"     // 子记录越界，单元尾部丢弃
	KindDecode     Kind = "decode"     // 单字段解码失败
	KindTruncation Kind = "truncation" // 流量块截断（提示）
)

// Event 诊断事件，Offset 为文件内绝对偏移
type Event struct {
	Kind    Kind
	File    string
	Frame   int // 单元序号，-1 表示与具体单元无关
	Offset  int64
	Tag     uint16
	Err     error
	Message string
}

// Reporter 诊断事件接收方
type Reporter interface {
	Report(e Event)
}

// ZapReporter 将诊断事件写入日志并计数
type ZapReporter struct {
	log     *zap.Logger
	metrics *metrics.AppMetrics
}

// NewZapReporter 创建日志诊断接收方，metrics 可为 nil
func NewZapReporter(log *zap.Logger, m *metrics.AppMetrics) *ZapReporter {
	return &ZapReporter{log: log, metrics: m}
}

// Report 实现 Reporter
func (r *ZapReporter) Report(e Event) {
	fields := []zap.Field{
		zap.String("kind", string(e.Kind)),
		zap.String("file", e.File),
		zap.Int64("offset", e.Offset),
	}
	if e.Frame >= 0 {
		fields = append(fields, zap.Int("frame", e.Frame))
	}
	if e.Tag != 0 {
		fields = append(fields, zap.String("tag", scdr.TagName(e.Tag)))
	}
	if e.Err != nil {
		fields = append(fields, zap.Error(e.Err))
	}
	if e.Message != "" {
		fields = append(fields, zap.String("detail", e.Message))
	}

	if e.Kind == KindTruncation {
		r.log.Info("traffic volumes truncated", fields...)
	} else {
		r.log.Warn("cdr decode problem", fields...)
	}
	if r.metrics != nil {
		r.metrics.DiagnosticsTotal.WithLabelValues(string(e.Kind)).Inc()
	}
}

// issueEvent 将投影问题转换为带绝对偏移的事件
func issueEvent(file string, idx int, f scdr.Frame, err error) Event {
	e := Event{File: file, Frame: idx, Offset: f.ValueOffset, Err: err}

	var de *scdr.DecodeError
	var be *scdr.BoundsError
	switch {
	case errors.As(err, &de):
		e.Kind = KindDecode
		e.Tag = de.Tag
		e.Offset += int64(de.Offset)
	case errors.As(err, &be):
		e.Kind = KindBounds
		e.Tag = be.Tag
		e.Offset += int64(be.Offset)
	default:
		e.Kind = KindDecode
	}
	return e
}

// frameEvent 顶层帧错误事件
func frameEvent(file string, frames int, err error) Event {
	e := Event{Kind: KindFraming, File: file, Frame: frames, Err: err}
	var fe *scdr.FrameError
	if errors.As(err, &fe) {
		e.Offset = fe.Offset
	}
	return e
}
