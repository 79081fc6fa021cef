package health

import "sync/atomic"

// Readiness 就绪状态：输出目标就绪且扫描器已启动
type Readiness struct {
	sinksReady   atomic.Bool
	scannerReady atomic.Bool
}

func New() *Readiness { return &Readiness{} }

func (r *Readiness) SetSinksReady(v bool)   { r.sinksReady.Store(v) }
func (r *Readiness) SetScannerReady(v bool) { r.scannerReady.Store(v) }

// Ready 总体就绪：各子系统均为 true
func (r *Readiness) Ready() bool {
	return r.sinksReady.Load() && r.scannerReady.Load()
}
