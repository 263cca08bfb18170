package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/video-catalog/internal/domain"
	"github.com/jonesrussell/video-catalog/internal/testhelpers"
)

type fakeDownloadJobStore struct {
	jobs    map[string]*domain.DownloadJob
	updates []domain.DownloadJob
}

func newFakeDownloadJobStore(jobs ...*domain.DownloadJob) *fakeDownloadJobStore {
	m := make(map[string]*domain.DownloadJob, len(jobs))
	for _, j := range jobs {
		m[j.JobID] = j
	}
	return &fakeDownloadJobStore{jobs: m}
}

func (f *fakeDownloadJobStore) GetByID(_ context.Context, id string) (*domain.DownloadJob, error) {
	j, ok := f.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return j, nil
}

func (f *fakeDownloadJobStore) Update(_ context.Context, job *domain.DownloadJob) error {
	f.updates = append(f.updates, *job)
	return nil
}

type fakeVideoStore struct {
	videos     map[string]*domain.Video
	markedJob  string
	markedAt   time.Time
	markedVids []string
}

func (f *fakeVideoStore) GetByID(_ context.Context, id string) (*domain.Video, error) {
	v, ok := f.videos[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

func (f *fakeVideoStore) MarkDownloaded(_ context.Context, videoID, jobID string, at time.Time) error {
	f.markedVids = append(f.markedVids, videoID)
	f.markedJob = jobID
	f.markedAt = at
	return nil
}

type fakeDownloader struct {
	path string
	err  error

	calls int
}

func (f *fakeDownloader) DownloadMedia(
	_ context.Context, _, _, _ string, _ *string, _ int,
) (string, error) {
	f.calls++
	return f.path, f.err
}

func strPtr(s string) *string { return &s }

func newTestDownloadExecutor(
	jobs *fakeDownloadJobStore, videos *fakeVideoStore, dl *fakeDownloader, onDisk bool,
) *DownloadExecutor {
	e := NewDownloadExecutor(jobs, videos, dl,
		DownloadConfig{OutputDir: "/videos", MaxHeight: 1080},
		testhelpers.NewTestLogger())
	e.fileExists = func(string) bool { return onDisk }
	return e
}

func videosWith(id string) *fakeVideoStore {
	uploader := "Example Channel"
	return &fakeVideoStore{videos: map[string]*domain.Video{
		id: {VideoID: id, WebpageURL: "https://www.youtube.com/watch?v=" + id, Uploader: &uploader},
	}}
}

func TestDownloadExecute_Success(t *testing.T) {
	job := &domain.DownloadJob{JobID: "job-1", VideoID: "vid1", Status: domain.StatusQueued}
	jobs := newFakeDownloadJobStore(job)
	videos := videosWith("vid1")
	dl := &fakeDownloader{path: "/videos/Example Channel/vid1.mp4"}

	err := newTestDownloadExecutor(jobs, videos, dl, false).Execute(context.Background(), "job-1")
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(jobs.updates), 2)
	running := jobs.updates[0]
	assert.Equal(t, domain.StatusRunning, running.Status)
	assert.NotNil(t, running.StartedAt)

	final := jobs.updates[len(jobs.updates)-1]
	assert.Equal(t, domain.StatusSuccess, final.Status)
	assert.Equal(t, 100, final.Progress)
	require.NotNil(t, final.OutputPath)
	assert.Equal(t, dl.path, *final.OutputPath)
	assert.NotNil(t, final.FinishedAt)

	assert.Equal(t, []string{"vid1"}, videos.markedVids)
	assert.Equal(t, "job-1", videos.markedJob)
}

func TestDownloadExecute_Failure(t *testing.T) {
	job := &domain.DownloadJob{JobID: "job-1", VideoID: "vid1", Status: domain.StatusQueued}
	jobs := newFakeDownloadJobStore(job)
	videos := videosWith("vid1")
	dl := &fakeDownloader{err: errors.New("yt-dlp failed: exit status 1")}

	err := newTestDownloadExecutor(jobs, videos, dl, false).Execute(context.Background(), "job-1")
	require.Error(t, err)

	final := jobs.updates[len(jobs.updates)-1]
	assert.Equal(t, domain.StatusFailed, final.Status)
	assert.Zero(t, final.Progress)
	require.NotNil(t, final.ErrorMessage)
	assert.Equal(t, "yt-dlp failed: exit status 1", *final.ErrorMessage,
		"cause lands verbatim on the job")
	assert.NotNil(t, final.FinishedAt)
	assert.Empty(t, videos.markedVids)
}

func TestDownloadExecute_AlreadySucceeded(t *testing.T) {
	job := &domain.DownloadJob{JobID: "job-1", VideoID: "vid1", Status: domain.StatusSuccess, Progress: 100}
	jobs := newFakeDownloadJobStore(job)
	dl := &fakeDownloader{}

	err := newTestDownloadExecutor(jobs, videosWith("vid1"), dl, false).Execute(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Empty(t, jobs.updates, "redelivered successful job is a no-op")
	assert.Zero(t, dl.calls)
}

func TestDownloadExecute_OutputAlreadyOnDisk(t *testing.T) {
	job := &domain.DownloadJob{
		JobID: "job-1", VideoID: "vid1", Status: domain.StatusQueued,
		OutputPath: strPtr("/videos/Example Channel/vid1.mp4"),
	}
	jobs := newFakeDownloadJobStore(job)
	dl := &fakeDownloader{}

	err := newTestDownloadExecutor(jobs, videosWith("vid1"), dl, true).Execute(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Zero(t, dl.calls, "existing output skips the download")

	final := jobs.updates[len(jobs.updates)-1]
	assert.Equal(t, domain.StatusSuccess, final.Status)
	assert.Equal(t, 100, final.Progress)
}

func TestDownloadExecute_VideoMissing(t *testing.T) {
	job := &domain.DownloadJob{JobID: "job-1", VideoID: "ghost", Status: domain.StatusQueued}
	jobs := newFakeDownloadJobStore(job)
	videos := &fakeVideoStore{videos: map[string]*domain.Video{}}

	err := newTestDownloadExecutor(jobs, videos, &fakeDownloader{}, false).Execute(context.Background(), "job-1")
	require.Error(t, err)

	final := jobs.updates[len(jobs.updates)-1]
	assert.Equal(t, domain.StatusFailed, final.Status)
}
