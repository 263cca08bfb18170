package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/video-catalog/internal/domain"
	"github.com/jonesrussell/video-catalog/internal/testhelpers"
)

type fakeScanJobStore struct {
	jobs    map[string]*domain.ScanJob
	updates []domain.ScanJob
}

func newFakeScanJobStore(jobs ...*domain.ScanJob) *fakeScanJobStore {
	m := make(map[string]*domain.ScanJob, len(jobs))
	for _, j := range jobs {
		m[j.ScanID] = j
	}
	return &fakeScanJobStore{jobs: m}
}

func (f *fakeScanJobStore) GetByID(_ context.Context, id string) (*domain.ScanJob, error) {
	j, ok := f.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return j, nil
}

func (f *fakeScanJobStore) Update(_ context.Context, job *domain.ScanJob) error {
	copied := *job
	copied.Counts = domain.CategoryCounts{}
	for k, v := range job.Counts {
		copied.Counts[k] = v
	}
	f.updates = append(f.updates, copied)
	return nil
}

type fakeExtractor struct {
	listings   map[string][]domain.FlatEntry
	listingErr map[string]error
	details    map[string]*domain.VideoMetadata
	detailErr  map[string]error
}

func (f *fakeExtractor) ExtractFlat(_ context.Context, listURL string, _ int) ([]domain.FlatEntry, error) {
	if err := f.listingErr[listURL]; err != nil {
		return nil, err
	}
	return f.listings[listURL], nil
}

func (f *fakeExtractor) ExtractDetail(_ context.Context, itemURL string) (*domain.VideoMetadata, error) {
	if err := f.detailErr[itemURL]; err != nil {
		return nil, err
	}
	meta, ok := f.details[itemURL]
	if !ok {
		return nil, fmt.Errorf("no detail for %s", itemURL)
	}
	return meta, nil
}

type fakeCatalog struct {
	known    map[string]bool
	upserted []string
	err      error
}

func (f *fakeCatalog) UpsertFromScan(_ context.Context, meta *domain.VideoMetadata) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.upserted = append(f.upserted, meta.ID)
	inserted := !f.known[meta.ID]
	if f.known == nil {
		f.known = make(map[string]bool)
	}
	f.known[meta.ID] = true
	return inserted, nil
}

func shortMeta(id string) *domain.VideoMetadata {
	d := int64(45)
	return &domain.VideoMetadata{ID: id, WebpageURL: domain.WatchURL(id), Duration: &d}
}

func TestScanExecute_ShortsOnly(t *testing.T) {
	job := &domain.ScanJob{
		ScanID: "scan-1", Channel: "Example",
		IncludeShorts: true, MaxItems: 2,
		Status: domain.StatusQueued,
	}
	jobs := newFakeScanJobStore(job)
	extractor := &fakeExtractor{
		listings: map[string][]domain.FlatEntry{
			"https://www.youtube.com/@Example/shorts": {
				{ID: "s1", URL: domain.WatchURL("s1")},
				{ID: "s2"},
				{ID: "s3"},
			},
		},
		details: map[string]*domain.VideoMetadata{
			domain.WatchURL("s1"): shortMeta("s1"),
			domain.WatchURL("s2"): shortMeta("s2"),
		},
	}
	catalog := &fakeCatalog{}

	err := NewScanExecutor(jobs, extractor, catalog, testhelpers.NewTestLogger()).
		Execute(context.Background(), "scan-1")
	require.NoError(t, err)

	final := jobs.updates[len(jobs.updates)-1]
	assert.Equal(t, domain.StatusSuccess, final.Status)
	assert.Equal(t, 100, final.Progress)
	assert.Equal(t, domain.CategoryCounts{"shorts": 2}, final.Counts,
		"counts carry only requested categories, truncated to max_items")
	assert.Equal(t, 2, final.UniqueVideos)
	assert.Equal(t, 2, final.Inserted)
	assert.Zero(t, final.Updated)
	assert.Equal(t, []string{"s1", "s2"}, catalog.upserted)
}

func TestScanExecute_DeduplicatesAcrossCategories(t *testing.T) {
	job := &domain.ScanJob{
		ScanID: "scan-1", Channel: "Example",
		IncludeShorts: true, IncludeVideos: true, MaxItems: 10,
		Status: domain.StatusQueued,
	}
	jobs := newFakeScanJobStore(job)
	extractor := &fakeExtractor{
		listings: map[string][]domain.FlatEntry{
			"https://www.youtube.com/@Example/shorts": {{ID: "both"}},
			"https://www.youtube.com/@Example/videos": {{ID: "both"}, {ID: "v1"}},
		},
		details: map[string]*domain.VideoMetadata{
			domain.WatchURL("both"): shortMeta("both"),
			domain.WatchURL("v1"):   shortMeta("v1"),
		},
	}
	catalog := &fakeCatalog{}

	err := NewScanExecutor(jobs, extractor, catalog, testhelpers.NewTestLogger()).
		Execute(context.Background(), "scan-1")
	require.NoError(t, err)

	final := jobs.updates[len(jobs.updates)-1]
	assert.Equal(t, domain.CategoryCounts{"shorts": 1, "videos": 2}, final.Counts)
	assert.Equal(t, 2, final.UniqueVideos, "duplicate across categories counts once")
	assert.Equal(t, []string{"both", "v1"}, catalog.upserted)
}

func TestScanExecute_CategoryFailureContributesZero(t *testing.T) {
	job := &domain.ScanJob{
		ScanID: "scan-1", Channel: "Example",
		IncludeShorts: true, IncludeVideos: true, MaxItems: 10,
		Status: domain.StatusQueued,
	}
	jobs := newFakeScanJobStore(job)
	extractor := &fakeExtractor{
		listings: map[string][]domain.FlatEntry{
			"https://www.youtube.com/@Example/videos": {{ID: "v1"}},
		},
		listingErr: map[string]error{
			"https://www.youtube.com/@Example/shorts": errors.New("listing unavailable"),
		},
		details: map[string]*domain.VideoMetadata{
			domain.WatchURL("v1"): shortMeta("v1"),
		},
	}
	catalog := &fakeCatalog{}

	err := NewScanExecutor(jobs, extractor, catalog, testhelpers.NewTestLogger()).
		Execute(context.Background(), "scan-1")
	require.NoError(t, err)

	final := jobs.updates[len(jobs.updates)-1]
	assert.Equal(t, domain.StatusSuccess, final.Status, "category failure does not fail the scan")
	assert.Equal(t, domain.CategoryCounts{"shorts": 0, "videos": 1}, final.Counts)
}

func TestScanExecute_ItemFailureSkipped(t *testing.T) {
	job := &domain.ScanJob{
		ScanID: "scan-1", Channel: "Example",
		IncludeVideos: true, MaxItems: 10,
		Status: domain.StatusQueued,
	}
	jobs := newFakeScanJobStore(job)
	extractor := &fakeExtractor{
		listings: map[string][]domain.FlatEntry{
			"https://www.youtube.com/@Example/videos": {{ID: "bad"}, {ID: "good"}},
		},
		detailErr: map[string]error{
			domain.WatchURL("bad"): errors.New("private video"),
		},
		details: map[string]*domain.VideoMetadata{
			domain.WatchURL("good"): shortMeta("good"),
		},
	}
	catalog := &fakeCatalog{}

	err := NewScanExecutor(jobs, extractor, catalog, testhelpers.NewTestLogger()).
		Execute(context.Background(), "scan-1")
	require.NoError(t, err)

	final := jobs.updates[len(jobs.updates)-1]
	assert.Equal(t, domain.StatusSuccess, final.Status)
	assert.Equal(t, 2, final.UniqueVideos, "skipped items still count as enumerated")
	assert.Equal(t, 1, final.Inserted)
	assert.Equal(t, []string{"good"}, catalog.upserted)
}

func TestScanExecute_StoreErrorFailsScan(t *testing.T) {
	job := &domain.ScanJob{
		ScanID: "scan-1", Channel: "Example",
		IncludeVideos: true, MaxItems: 10,
		Status: domain.StatusQueued,
	}
	jobs := newFakeScanJobStore(job)
	extractor := &fakeExtractor{
		listings: map[string][]domain.FlatEntry{
			"https://www.youtube.com/@Example/videos": {{ID: "v1"}},
		},
		details: map[string]*domain.VideoMetadata{
			domain.WatchURL("v1"): shortMeta("v1"),
		},
	}
	catalog := &fakeCatalog{err: errors.New("db down")}

	err := NewScanExecutor(jobs, extractor, catalog, testhelpers.NewTestLogger()).
		Execute(context.Background(), "scan-1")
	require.Error(t, err)

	final := jobs.updates[len(jobs.updates)-1]
	assert.Equal(t, domain.StatusFailed, final.Status)
	require.NotNil(t, final.ErrorMessage)
	assert.True(t, strings.Contains(*final.ErrorMessage, "db down"))
}

func TestScanExecute_RedeliveredRunningJob(t *testing.T) {
	// A worker crash mid-scan leaves a running job with partial counters;
	// the reclaimed delivery re-runs it from scratch.
	job := &domain.ScanJob{
		ScanID: "scan-1", Channel: "Example",
		IncludeShorts: true, MaxItems: 10,
		Status: domain.StatusRunning, Progress: 70,
		Counts:       domain.CategoryCounts{"shorts": 3},
		UniqueVideos: 3, Inserted: 2, Updated: 1,
	}
	jobs := newFakeScanJobStore(job)
	extractor := &fakeExtractor{
		listings: map[string][]domain.FlatEntry{
			"https://www.youtube.com/@Example/shorts": {{ID: "s1"}, {ID: "s2"}, {ID: "s3"}},
		},
		details: map[string]*domain.VideoMetadata{
			domain.WatchURL("s1"): shortMeta("s1"),
			domain.WatchURL("s2"): shortMeta("s2"),
			domain.WatchURL("s3"): shortMeta("s3"),
		},
	}
	catalog := &fakeCatalog{}

	err := NewScanExecutor(jobs, extractor, catalog, testhelpers.NewTestLogger()).
		Execute(context.Background(), "scan-1")
	require.NoError(t, err)

	prev := 70
	for _, u := range jobs.updates {
		assert.GreaterOrEqual(t, u.Progress, prev, "progress never regresses below what a poller saw")
		prev = u.Progress
		assert.LessOrEqual(t, u.Inserted+u.Updated, u.UniqueVideos)
	}

	// running + enumerated + one per item + terminal.
	require.Len(t, jobs.updates, 6)
	assert.Equal(t, 1, jobs.updates[2].UniqueVideos, "distinct-id counter advances per item")
	assert.Equal(t, 2, jobs.updates[3].UniqueVideos)

	final := jobs.updates[len(jobs.updates)-1]
	assert.Equal(t, domain.StatusSuccess, final.Status)
	assert.Equal(t, 100, final.Progress)
	assert.Equal(t, 3, final.UniqueVideos, "counters reflect this attempt only")
	assert.Equal(t, 3, final.Inserted)
	assert.Zero(t, final.Updated)
}

func TestScanExecute_EmptyChannel(t *testing.T) {
	job := &domain.ScanJob{
		ScanID: "scan-1", Channel: "Example",
		IncludeStreams: true, MaxItems: 10,
		Status: domain.StatusQueued,
	}
	jobs := newFakeScanJobStore(job)
	extractor := &fakeExtractor{listings: map[string][]domain.FlatEntry{}}

	err := NewScanExecutor(jobs, extractor, &fakeCatalog{}, testhelpers.NewTestLogger()).
		Execute(context.Background(), "scan-1")
	require.NoError(t, err)

	final := jobs.updates[len(jobs.updates)-1]
	assert.Equal(t, domain.StatusSuccess, final.Status)
	assert.Equal(t, 100, final.Progress)
	assert.Zero(t, final.UniqueVideos)
}

func TestScanProgress(t *testing.T) {
	assert.Equal(t, 10, scanProgress(10, 0, 100))
	assert.Equal(t, 99, scanProgress(10, 100, 100))
	assert.Equal(t, 54, scanProgress(10, 1, 2))
	assert.Equal(t, 60, scanProgress(60, 1, 2), "progress never moves backwards")
}
