package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry 创建自定义 Prometheus Registry，并注册常用采集器
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler 返回 Prometheus 指标 HTTP 处理器
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// AppMetrics 转换业务指标
type AppMetrics struct {
	FilesTotal       *prometheus.CounterVec // labels: result=ok|partial|failed|skipped
	FramesTotal      prometheus.Counter
	RecordsTotal     *prometheus.CounterVec // labels: result=kept|dropped
	DiagnosticsTotal *prometheus.CounterVec // labels: kind
	FileDuration     prometheus.Histogram
	ScanInflight     prometheus.Gauge
	ScanLastSuccess  prometheus.Gauge // 最近一次扫描完成的 unix 时间
}

// NewAppMetrics 注册并返回业务指标
func NewAppMetrics(reg prometheus.Registerer) *AppMetrics {
	m := &AppMetrics{
		FilesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cdr_files_total",
			Help: "Input files handled by result.",
		}, []string{"result"}),
		FramesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cdr_frames_total",
			Help: "Top-level CDR units decoded.",
		}),
		RecordsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cdr_records_total",
			Help: "Projected records by row filter result.",
		}, []string{"result"}),
		DiagnosticsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cdr_diagnostics_total",
			Help: "Decode diagnostics by kind.",
		}, []string{"kind"}),
		FileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cdr_file_duration_seconds",
			Help:    "Time spent converting one input file.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		ScanInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cdr_scan_inflight",
			Help: "Files currently being converted.",
		}),
		ScanLastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cdr_scan_last_success_timestamp_seconds",
			Help: "Unix time of the last completed directory scan.",
		}),
	}
	reg.MustRegister(m.FilesTotal, m.FramesTotal, m.RecordsTotal, m.DiagnosticsTotal,
		m.FileDuration, m.ScanInflight, m.ScanLastSuccess)
	return m
}
