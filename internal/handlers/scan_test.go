package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/video-catalog/internal/domain"
	"github.com/jonesrussell/video-catalog/internal/orchestrator"
	"github.com/jonesrussell/video-catalog/internal/testhelpers"
)

type fakeScanCreator struct {
	job *domain.ScanJob
	err error

	received *orchestrator.ScanRequest
}

func (f *fakeScanCreator) CreateScan(_ context.Context, req *orchestrator.ScanRequest) (*domain.ScanJob, error) {
	f.received = req
	return f.job, f.err
}

type fakeScanReader struct {
	jobs map[string]*domain.ScanJob
}

func (f *fakeScanReader) GetByID(_ context.Context, id string) (*domain.ScanJob, error) {
	j, ok := f.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return j, nil
}

func scanRouter(h *ScanHandler) *gin.Engine {
	router := gin.New()
	router.POST("/scans", h.Create)
	router.GET("/scans/:id", h.GetByID)
	return router
}

func TestScanCreate(t *testing.T) {
	job := &domain.ScanJob{ScanID: "scan-1", Channel: "Example", Status: domain.StatusQueued}
	creator := &fakeScanCreator{job: job}
	h := NewScanHandler(creator, &fakeScanReader{}, testhelpers.NewTestLogger())

	w := performRequest(scanRouter(h), http.MethodPost, "/scans",
		`{"channel":"@Example","include_shorts":true,"max_items":50}`)
	assert.Equal(t, http.StatusAccepted, w.Code)
	require.NotNil(t, creator.received)
	assert.Equal(t, "@Example", creator.received.Channel)
	assert.True(t, creator.received.IncludeShorts)
	assert.Equal(t, 50, creator.received.MaxItems)

	var got domain.ScanJob
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "scan-1", got.ScanID)
}

func TestScanCreate_InvalidRequest(t *testing.T) {
	creator := &fakeScanCreator{err: domain.ErrInvalidArgument}
	h := NewScanHandler(creator, &fakeScanReader{}, testhelpers.NewTestLogger())

	w := performRequest(scanRouter(h), http.MethodPost, "/scans",
		`{"channel":"@Example"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScanCreate_MissingChannel(t *testing.T) {
	h := NewScanHandler(&fakeScanCreator{}, &fakeScanReader{}, testhelpers.NewTestLogger())

	w := performRequest(scanRouter(h), http.MethodPost, "/scans", `{"include_shorts":true}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScanGetByID(t *testing.T) {
	jobs := map[string]*domain.ScanJob{
		"scan-1": {
			ScanID: "scan-1", Status: domain.StatusSuccess, Progress: 100,
			Counts: domain.CategoryCounts{"shorts": 2},
		},
	}
	h := NewScanHandler(&fakeScanCreator{}, &fakeScanReader{jobs: jobs}, testhelpers.NewTestLogger())
	router := scanRouter(h)

	w := performRequest(router, http.MethodGet, "/scans/scan-1", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var got domain.ScanJob
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, domain.CategoryCounts{"shorts": 2}, got.Counts)

	w = performRequest(router, http.MethodGet, "/scans/ghost", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
