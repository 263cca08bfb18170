package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/video-catalog/internal/domain"
	"github.com/jonesrussell/video-catalog/internal/repository"
	"github.com/jonesrussell/video-catalog/internal/testhelpers"
)

type fakeVideoLister struct {
	videos []domain.Video
	filter repository.ListFilter
}

func (f *fakeVideoLister) List(_ context.Context, filter repository.ListFilter) ([]domain.Video, error) {
	f.filter = filter
	return f.videos, nil
}

type fakeDetailExtractor struct {
	meta *domain.VideoMetadata
	err  error
}

func (f *fakeDetailExtractor) ExtractDetail(_ context.Context, _ string) (*domain.VideoMetadata, error) {
	return f.meta, f.err
}

type fakeCatalogUpserter struct {
	video *domain.Video
	err   error
}

func (f *fakeCatalogUpserter) UpsertFromURL(_ context.Context, _ *domain.VideoMetadata) (*domain.Video, error) {
	return f.video, f.err
}

func videoRouter(h *VideoHandler) *gin.Engine {
	router := gin.New()
	router.GET("/videos", h.List)
	router.POST("/videos/by_url", h.AddByURL)
	return router
}

func TestVideoList(t *testing.T) {
	lister := &fakeVideoLister{videos: []domain.Video{{VideoID: "vid1"}}}
	h := NewVideoHandler(lister, &fakeDetailExtractor{}, &fakeCatalogUpserter{}, testhelpers.NewTestLogger())

	w := performRequest(videoRouter(h), http.MethodGet,
		"/videos?q=cats&is_short=true&min_views=100&max_duration=60", "")
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "cats", lister.filter.Query)
	require.NotNil(t, lister.filter.IsShort)
	assert.True(t, *lister.filter.IsShort)
	require.NotNil(t, lister.filter.MinViews)
	assert.Equal(t, int64(100), *lister.filter.MinViews)
	require.NotNil(t, lister.filter.MaxDuration)
	assert.Equal(t, int64(60), *lister.filter.MaxDuration)

	var resp struct {
		Videos []domain.Video `json:"videos"`
		Count  int            `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
}

func TestVideoList_NoFilters(t *testing.T) {
	lister := &fakeVideoLister{}
	h := NewVideoHandler(lister, &fakeDetailExtractor{}, &fakeCatalogUpserter{}, testhelpers.NewTestLogger())

	w := performRequest(videoRouter(h), http.MethodGet, "/videos", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, lister.filter.IsShort)
	assert.Nil(t, lister.filter.MinViews)
	assert.Nil(t, lister.filter.MaxDuration)
}

func TestVideoList_BadParam(t *testing.T) {
	h := NewVideoHandler(&fakeVideoLister{}, &fakeDetailExtractor{}, &fakeCatalogUpserter{}, testhelpers.NewTestLogger())

	w := performRequest(videoRouter(h), http.MethodGet, "/videos?is_short=maybe", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(videoRouter(h), http.MethodGet, "/videos?min_views=-5", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddByURL(t *testing.T) {
	meta := &domain.VideoMetadata{ID: "vid1", WebpageURL: "https://www.youtube.com/watch?v=vid1"}
	video := &domain.Video{VideoID: "vid1", WebpageURL: meta.WebpageURL}
	h := NewVideoHandler(&fakeVideoLister{},
		&fakeDetailExtractor{meta: meta},
		&fakeCatalogUpserter{video: video},
		testhelpers.NewTestLogger())

	w := performRequest(videoRouter(h), http.MethodPost, "/videos/by_url",
		`{"url":"https://www.youtube.com/watch?v=vid1"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	var got domain.Video
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "vid1", got.VideoID)
}

func TestAddByURL_ExtractionFails(t *testing.T) {
	h := NewVideoHandler(&fakeVideoLister{},
		&fakeDetailExtractor{err: errors.New("unsupported url")},
		&fakeCatalogUpserter{},
		testhelpers.NewTestLogger())

	w := performRequest(videoRouter(h), http.MethodPost, "/videos/by_url",
		`{"url":"https://example.com/nope"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddByURL_MissingURL(t *testing.T) {
	h := NewVideoHandler(&fakeVideoLister{}, &fakeDetailExtractor{}, &fakeCatalogUpserter{}, testhelpers.NewTestLogger())

	w := performRequest(videoRouter(h), http.MethodPost, "/videos/by_url", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
