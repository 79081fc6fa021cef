package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taoyao-code/cdr-converter/internal/storage/gormrepo"
	"github.com/taoyao-code/cdr-converter/internal/storage/models"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// RunReader 转换审计查询
type RunReader interface {
	ListRuns(ctx context.Context, status string, limit, offset int) ([]models.ConversionRun, int64, error)
	GetRun(ctx context.Context, id string) (*models.ConversionRun, error)
}

// ScanTrigger 手动触发一轮扫描
type ScanTrigger interface {
	Trigger() bool
}

// RunsHandler 转换运行查询处理器
type RunsHandler struct {
	runs    RunReader
	trigger ScanTrigger
	logger  *zap.Logger
}

// NewRunsHandler 创建处理器；trigger 可为 nil
func NewRunsHandler(runs RunReader, trigger ScanTrigger, logger *zap.Logger) *RunsHandler {
	return &RunsHandler{runs: runs, trigger: trigger, logger: logger}
}

// ListRuns GET /api/v1/runs?status=&limit=&offset=
func (h *RunsHandler) ListRuns(c *gin.Context) {
	limit := queryInt(c, "limit", defaultPageSize)
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	offset := max(queryInt(c, "offset", 0), 0)
	status := c.Query("status")

	list, total, err := h.runs.ListRuns(c.Request.Context(), status, limit, offset)
	if err != nil {
		h.logger.Error("list runs failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": list, "total": total, "limit": limit, "offset": offset})
}

// GetRun GET /api/v1/runs/:id
func (h *RunsHandler) GetRun(c *gin.Context) {
	run, err := h.runs.GetRun(c.Request.Context(), c.Param("id"))
	if errors.Is(err, gormrepo.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	if err != nil {
		h.logger.Error("get run failed", zap.String("id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, run)
}

// TriggerScan POST /api/v1/scan
func (h *RunsHandler) TriggerScan(c *gin.Context) {
	if h.trigger == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "scanner not running"})
		return
	}
	if !h.trigger.Trigger() {
		c.JSON(http.StatusConflict, gin.H{"error": "scan already pending"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"accepted": true})
}

func queryInt(c *gin.Context, key string, def int) int {
	v := c.Query(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
