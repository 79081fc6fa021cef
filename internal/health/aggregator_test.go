package health

import (
	"context"
	"testing"
	"time"
)

// mockChecker 模拟检查器
type mockChecker struct {
	name   string
	status Status
}

func (m *mockChecker) Name() string {
	return m.name
}

func (m *mockChecker) Check(ctx context.Context) CheckResult {
	return CheckResult{
		Status:  m.status,
		Message: "mock",
		Latency: time.Millisecond,
	}
}

func TestAggregator(t *testing.T) {
	t.Run("全部健康", func(t *testing.T) {
		agg := NewAggregator(
			&mockChecker{"database", StatusHealthy},
			&mockChecker{"scanner", StatusHealthy},
		)

		status := agg.OverallStatus(context.Background())
		if status != StatusHealthy {
			t.Errorf("期望StatusHealthy，实际: %v", status)
		}
		if !agg.Ready(context.Background()) {
			t.Error("全部健康时应该Ready")
		}
	})

	t.Run("部分降级", func(t *testing.T) {
		agg := NewAggregator(
			&mockChecker{"database", StatusHealthy},
			&mockChecker{"redis", StatusDegraded},
		)

		if status := agg.OverallStatus(context.Background()); status != StatusDegraded {
			t.Errorf("期望StatusDegraded，实际: %v", status)
		}
		// 降级状态仍然Ready
		if !agg.Ready(context.Background()) {
			t.Error("降级状态应该仍然Ready")
		}
	})

	t.Run("部分不健康", func(t *testing.T) {
		agg := NewAggregator(
			&mockChecker{"database", StatusDegraded},
			&mockChecker{"scanner", StatusUnhealthy},
		)

		if status := agg.OverallStatus(context.Background()); status != StatusUnhealthy {
			t.Errorf("期望StatusUnhealthy，实际: %v", status)
		}
		if agg.Ready(context.Background()) {
			t.Error("不健康状态不应该Ready")
		}
	})

	t.Run("动态添加检查器", func(t *testing.T) {
		agg := NewAggregator(&mockChecker{"initial", StatusHealthy})
		agg.AddChecker(&mockChecker{"added", StatusHealthy})
		agg.AddChecker(nil)

		if results := agg.CheckAll(context.Background()); len(results) != 2 {
			t.Errorf("期望2个结果，实际: %d", len(results))
		}
	})

	t.Run("报告", func(t *testing.T) {
		agg := NewAggregator(&mockChecker{"scanner", StatusDegraded})
		report := agg.Report(context.Background())
		if report.Status != StatusDegraded || len(report.Checks) != 1 {
			t.Errorf("报告不符合预期: %+v", report)
		}
	})

	t.Run("Alive始终返回true", func(t *testing.T) {
		if !NewAggregator().Alive() {
			t.Error("Alive应该始终返回true")
		}
	})
}

func TestPoolStatus(t *testing.T) {
	cases := []struct {
		util float64
		want Status
	}{
		{0.1, StatusHealthy},
		{0.95, StatusDegraded},
		{1.0, StatusUnhealthy},
	}
	for _, tc := range cases {
		if got, _ := poolStatus(tc.util); got != tc.want {
			t.Errorf("poolStatus(%v) = %v, want %v", tc.util, got, tc.want)
		}
	}
}

func TestReadiness(t *testing.T) {
	r := New()
	if r.Ready() {
		t.Fatal("初始不应就绪")
	}
	r.SetSinksReady(true)
	if r.Ready() {
		t.Fatal("扫描器未就绪时不应就绪")
	}
	r.SetScannerReady(true)
	if !r.Ready() {
		t.Fatal("全部就绪后应就绪")
	}
}
