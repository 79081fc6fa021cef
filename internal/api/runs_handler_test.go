package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taoyao-code/cdr-converter/internal/api/middleware"
	"github.com/taoyao-code/cdr-converter/internal/storage/gormrepo"
	"github.com/taoyao-code/cdr-converter/internal/storage/models"
)

type fakeRuns struct {
	runs      []models.ConversionRun
	err       error
	gotStatus string
	gotLimit  int
	gotOffset int
}

func (f *fakeRuns) ListRuns(_ context.Context, status string, limit, offset int) ([]models.ConversionRun, int64, error) {
	f.gotStatus, f.gotLimit, f.gotOffset = status, limit, offset
	return f.runs, int64(len(f.runs)), f.err
}

func (f *fakeRuns) GetRun(_ context.Context, id string) (*models.ConversionRun, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.runs {
		if f.runs[i].ID == id {
			return &f.runs[i], nil
		}
	}
	return nil, gormrepo.ErrNotFound
}

type fakeTrigger struct{ ok bool }

func (f fakeTrigger) Trigger() bool { return f.ok }

func setup(runs RunReader, trigger ScanTrigger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, runs, trigger, middleware.AuthConfig{}, zap.NewNop())
	return r
}

func do(r http.Handler, method, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(method, path, nil))
	return rr
}

func TestListRuns(t *testing.T) {
	runs := &fakeRuns{runs: []models.ConversionRun{
		{ID: "r1", File: "a.dat", Status: "ok", StartedAt: time.Now(), FinishedAt: time.Now()},
	}}
	r := setup(runs, nil)

	rr := do(r, http.MethodGet, "/api/v1/runs?status=partial&limit=10&offset=5")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "partial", runs.gotStatus)
	assert.Equal(t, 10, runs.gotLimit)
	assert.Equal(t, 5, runs.gotOffset)

	var body struct {
		Runs  []models.ConversionRun `json:"runs"`
		Total int64                  `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, int64(1), body.Total)
	assert.Equal(t, "a.dat", body.Runs[0].File)
}

func TestListRuns_ClampsPaging(t *testing.T) {
	runs := &fakeRuns{}
	r := setup(runs, nil)

	do(r, http.MethodGet, "/api/v1/runs?limit=100000&offset=-3")
	assert.Equal(t, defaultPageSize, runs.gotLimit)
	assert.Equal(t, 0, runs.gotOffset)

	do(r, http.MethodGet, "/api/v1/runs?limit=abc")
	assert.Equal(t, defaultPageSize, runs.gotLimit)
}

func TestListRuns_Error(t *testing.T) {
	r := setup(&fakeRuns{err: errors.New("db down")}, nil)
	assert.Equal(t, http.StatusInternalServerError, do(r, http.MethodGet, "/api/v1/runs").Code)
}

func TestGetRun(t *testing.T) {
	r := setup(&fakeRuns{runs: []models.ConversionRun{{ID: "r1", File: "a.dat"}}}, nil)

	rr := do(r, http.MethodGet, "/api/v1/runs/r1")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"file":"a.dat"`)

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/v1/runs/missing").Code)
}

func TestTriggerScan(t *testing.T) {
	assert.Equal(t, http.StatusNotImplemented, do(setup(&fakeRuns{}, nil), http.MethodPost, "/api/v1/scan").Code)
	assert.Equal(t, http.StatusAccepted, do(setup(&fakeRuns{}, fakeTrigger{ok: true}), http.MethodPost, "/api/v1/scan").Code)
	assert.Equal(t, http.StatusConflict, do(setup(&fakeRuns{}, fakeTrigger{ok: false}), http.MethodPost, "/api/v1/scan").Code)
}
