package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taoyao-code/cdr-converter/internal/converter"
	"github.com/taoyao-code/cdr-converter/internal/scanner"
	"github.com/taoyao-code/cdr-converter/internal/sink"
)

type fakeScan struct {
	running  bool
	last     time.Time
	interval time.Duration
}

func (f fakeScan) Running() bool           { return f.running }
func (f fakeScan) LastScan() time.Time     { return f.last }
func (f fakeScan) Interval() time.Duration { return f.interval }

func TestScannerChecker(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		scan fakeScan
		want Status
	}{
		{"stopped", fakeScan{running: false, interval: time.Minute}, StatusUnhealthy},
		{"first scan pending", fakeScan{running: true, interval: time.Minute}, StatusDegraded},
		{"fresh", fakeScan{running: true, last: now.Add(-30 * time.Second), interval: time.Minute}, StatusHealthy},
		{"overdue", fakeScan{running: true, last: now.Add(-5 * time.Minute), interval: time.Minute}, StatusDegraded},
		{"stalled", fakeScan{running: true, last: now.Add(-time.Hour), interval: time.Minute}, StatusUnhealthy},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewScannerChecker(tc.scan)
			c.now = func() time.Time { return now }
			assert.Equal(t, tc.want, c.Check(context.Background()).Status)
		})
	}
}

type okConverter struct{}

func (okConverter) ConvertFile(context.Context, string) (converter.Run, error) {
	return converter.Run{Status: converter.StatusOK}, nil
}

func TestScannerChecker_LimiterDetails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.dat"), []byte{0xB4}, 0o644))
	s := scanner.New(okConverter{}, scanner.Options{InputDir: dir, RatePerSec: 5, Burst: 2}, zap.NewNop(), nil)
	_, err := s.RunOnce(context.Background())
	require.NoError(t, err)

	res := NewScannerChecker(s).Check(context.Background())
	stats, ok := res.Details["limiter"].(scanner.RateLimiterStats)
	require.True(t, ok, "limiter stats exposed in details")
	assert.Equal(t, 5, stats.RatePerSecond)
	assert.Equal(t, 2, stats.Burst)
	assert.Equal(t, int64(1), stats.GrantedTotal)

	_, ok = NewScannerChecker(fakeScan{interval: time.Minute}).Check(context.Background()).Details["limiter"]
	assert.False(t, ok)
}

type fakeRedis struct {
	err   error
	stats redis.PoolStats
}

func (f *fakeRedis) HealthCheck(context.Context) error { return f.err }
func (f *fakeRedis) Stats() *redis.PoolStats           { return &f.stats }

func TestRedisChecker(t *testing.T) {
	c := NewRedisChecker(&fakeRedis{stats: redis.PoolStats{TotalConns: 10, IdleConns: 8}})
	res := c.Check(context.Background())
	assert.Equal(t, StatusHealthy, res.Status)
	assert.Equal(t, "20.0%", res.Details["utilization"])

	down := NewRedisChecker(&fakeRedis{err: errors.New("refused")})
	res = down.Check(context.Background())
	assert.Equal(t, StatusDegraded, res.Status, "ledger outage degrades but does not stop conversion")
}

type failingSink struct{}

func (failingSink) Name() string { return "postgres" }
func (failingSink) Write(context.Context, converter.Batch) (string, error) {
	return "", errors.New("down")
}

func TestBreakerChecker(t *testing.T) {
	g := sink.NewGuarded(failingSink{}, 1, time.Hour, zap.NewNop())
	c := NewBreakerChecker(g)
	assert.Equal(t, "sink_postgres", c.Name())
	assert.Equal(t, StatusHealthy, c.Check(context.Background()).Status)

	_, _ = g.Write(context.Background(), converter.Batch{})
	res := c.Check(context.Background())
	assert.Equal(t, StatusDegraded, res.Status)
	assert.Equal(t, "open", res.Details["state"])
}

func TestHTTPRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterHTTPRoutes(r, NewAggregator(&mockChecker{"scanner", StatusUnhealthy}))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	var report HealthReport
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &report))
	assert.Equal(t, StatusUnhealthy, report.Status)
	assert.Contains(t, report.Checks, "scanner")

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}
