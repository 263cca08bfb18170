package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/video-catalog/internal/domain"
	"github.com/jonesrussell/video-catalog/internal/queue"
	"github.com/jonesrussell/video-catalog/internal/testhelpers"
)

type fakeScanJobStore struct {
	created *domain.ScanJob
}

func (f *fakeScanJobStore) Create(_ context.Context, job *domain.ScanJob) error {
	f.created = job
	return nil
}

func TestCreateScan(t *testing.T) {
	jobs := &fakeScanJobStore{}
	tasks := &fakeSubmitter{}
	o := NewScanOrchestrator(jobs, tasks, 5000, testhelpers.NewTestLogger())

	job, err := o.CreateScan(context.Background(), &ScanRequest{
		Channel:       "https://youtube.com/@Example",
		IncludeShorts: true,
		MaxItems:      10,
	})
	require.NoError(t, err)
	assert.Equal(t, "Example", job.Channel, "channel URL normalizes to the handle")
	assert.Equal(t, domain.StatusQueued, job.Status)
	assert.Equal(t, 10, job.MaxItems)
	assert.NotEmpty(t, job.ScanID)
	require.NotNil(t, jobs.created)
	require.Len(t, tasks.submitted, 1)
	assert.Equal(t, queue.TaskScan, tasks.submitted[0].Type)
	assert.Equal(t, job.ScanID, tasks.submitted[0].JobID)
}

func TestCreateScan_NoCategories(t *testing.T) {
	jobs := &fakeScanJobStore{}
	o := NewScanOrchestrator(jobs, &fakeSubmitter{}, 5000, testhelpers.NewTestLogger())

	_, err := o.CreateScan(context.Background(), &ScanRequest{Channel: "@Example"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.Nil(t, jobs.created, "invalid requests never create a job")
}

func TestCreateScan_InvalidChannel(t *testing.T) {
	o := NewScanOrchestrator(&fakeScanJobStore{}, &fakeSubmitter{}, 5000, testhelpers.NewTestLogger())

	_, err := o.CreateScan(context.Background(), &ScanRequest{
		Channel:       "not a handle/with/slashes",
		IncludeVideos: true,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestCreateScan_MaxItemsClamping(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		expected  int
	}{
		{"unset maps to cap", 0, 5000},
		{"above cap clamps", 10000, 5000},
		{"within cap kept", 10, 10},
		{"negative maps to cap", -1, 5000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs := &fakeScanJobStore{}
			o := NewScanOrchestrator(jobs, &fakeSubmitter{}, 5000, testhelpers.NewTestLogger())

			job, err := o.CreateScan(context.Background(), &ScanRequest{
				Channel:       "@Example",
				IncludeShorts: true,
				MaxItems:      tt.requested,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, job.MaxItems)
		})
	}
}
